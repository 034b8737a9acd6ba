package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	App struct {
		ENV string
	}

	Log struct {
		Level     string
		Format    string
		Component string
		Source    bool
		SQL       bool
	}

	DB struct {
		Driver     string
		DSN        string
		Host       string
		Port       string
		User       string
		Password   string
		Name       string
		SQLitePath string
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
		TokenTTL time.Duration
	}

	GRPC struct {
		Host string
		Port string
	}

	HTTP struct {
		Host               string
		Port               string
		CORSOrigins        []string
		RateLimitPerMinute int
		// applies to /login and /user on top of RateLimitPerMinute
		AuthRateLimitPerMinute int
	}

	TMDB struct {
		APIKey  string
		BaseURL string
		Timeout time.Duration
		MaxPage int
	}
}

func New() *Config {
	cfg := &Config{}

	cfg.App.ENV = getEnvDefault("APP_ENV", "production")

	// Logger
	cfg.Log.Level = getEnvDefault("LOG_LEVEL", "info")
	cfg.Log.Format = getEnvDefault("LOG_FORMAT", "text")
	cfg.Log.Component = getEnvDefault("LOG_COMPONENT", "movienight")
	cfg.Log.Source = isTruthy(os.Getenv("LOG_SOURCE"))
	cfg.Log.SQL = isTruthy(os.Getenv("LOG_SQL"))

	// Database
	cfg.DB.Driver = strings.ToLower(getEnvDefault("DB_DRIVER", "mysql"))
	cfg.DB.SQLitePath = getEnvDefault("SQLITE_PATH", "./data/movienight.db")
	cfg.DB.DSN = os.Getenv("MYSQL_DSN")
	if cfg.DB.DSN == "" {
		cfg.DB.Host = getEnvDefault("DB_HOST", "localhost")
		cfg.DB.Port = getEnvDefault("DB_PORT", "3306")
		cfg.DB.User = getEnvDefault("DB_USER", "root")
		cfg.DB.Password = getEnvDefault("DB_PASSWORD", "root")
		cfg.DB.Name = getEnvDefault("DB_NAME", "movienight")

		cfg.DB.DSN = fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
			cfg.DB.User, cfg.DB.Password, cfg.DB.Host, cfg.DB.Port, cfg.DB.Name,
		)
	}

	// Redis
	cfg.Redis.Addr = getEnvDefault("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnvDefault("REDIS_PASSWORD", "")
	if dbStr := getEnvDefault("REDIS_DB", "0"); dbStr != "" {
		if dbInt, err := strconv.Atoi(dbStr); err == nil {
			cfg.Redis.DB = dbInt
		}
	}
	cfg.Redis.TokenTTL = getDurationDefault("TOKEN_CACHE_TTL", time.Hour)

	// gRPC
	cfg.GRPC.Host = getEnvDefault("GRPC_HOST", "127.0.0.1")
	cfg.GRPC.Port = getEnvDefault("GRPC_PORT", "50051")

	// HTTP
	cfg.HTTP.Host = getEnvDefault("HTTP_HOST", "127.0.0.1")
	cfg.HTTP.Port = getEnvDefault("HTTP_PORT", "3001")
	cfg.HTTP.CORSOrigins = splitList(getEnvDefault("CORS_ORIGINS", "http://localhost:3000"))
	cfg.HTTP.RateLimitPerMinute = getIntDefault("RATE_LIMIT_PER_MINUTE", 120)
	cfg.HTTP.AuthRateLimitPerMinute = getIntDefault("AUTH_RATE_LIMIT_PER_MINUTE", 20)

	// TMDB
	cfg.TMDB.APIKey = os.Getenv("TMDB_API_KEY")
	cfg.TMDB.BaseURL = strings.TrimRight(getEnvDefault("TMDB_BASE_URL", "https://api.themoviedb.org/3"), "/")
	cfg.TMDB.Timeout = getDurationDefault("TMDB_TIMEOUT", 10*time.Second)
	cfg.TMDB.MaxPage = getIntDefault("TMDB_MAX_PAGE", 5)
	if cfg.TMDB.MaxPage < 1 {
		cfg.TMDB.MaxPage = 1
	}

	return cfg
}

func getEnvDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getIntDefault(k string, def int) int {
	if n, err := strconv.Atoi(getEnvDefault(k, "")); err == nil {
		return n
	}
	return def
}

// getDurationDefault accepts Go duration strings ("90s") or plain seconds ("90").
func getDurationDefault(k string, def time.Duration) time.Duration {
	v := getEnvDefault(k, "")
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return def
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}
