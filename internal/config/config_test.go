package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew_Defaults(t *testing.T) {
	t.Setenv("MYSQL_DSN", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("TMDB_MAX_PAGE", "")
	t.Setenv("AUTH_RATE_LIMIT_PER_MINUTE", "")

	cfg := New()

	assert.Equal(t, "mysql", cfg.DB.Driver)
	assert.Equal(t, "root:root@tcp(localhost:3306)/movienight?parseTime=true&charset=utf8mb4&loc=UTC", cfg.DB.DSN)
	assert.Equal(t, "50051", cfg.GRPC.Port)
	assert.Equal(t, "3001", cfg.HTTP.Port)
	assert.Equal(t, time.Hour, cfg.Redis.TokenTTL)
	assert.Equal(t, 5, cfg.TMDB.MaxPage)
	assert.Equal(t, 20, cfg.HTTP.AuthRateLimitPerMinute)
}

func TestNew_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("MYSQL_DSN", "u:p@tcp(db:3306)/x")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("TOKEN_CACHE_TTL", "90")
	t.Setenv("TMDB_TIMEOUT", "2s")
	t.Setenv("TMDB_MAX_PAGE", "0")
	t.Setenv("TMDB_BASE_URL", "http://tmdb.local/3/")
	t.Setenv("CORS_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("LOG_SQL", "yes")
	t.Setenv("AUTH_RATE_LIMIT_PER_MINUTE", "0")

	cfg := New()

	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, "u:p@tcp(db:3306)/x", cfg.DB.DSN)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, 90*time.Second, cfg.Redis.TokenTTL)
	assert.Equal(t, 2*time.Second, cfg.TMDB.Timeout)
	assert.Equal(t, 1, cfg.TMDB.MaxPage)
	assert.Equal(t, "http://tmdb.local/3", cfg.TMDB.BaseURL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.HTTP.CORSOrigins)
	assert.True(t, cfg.Log.SQL)
	assert.Equal(t, 0, cfg.HTTP.AuthRateLimitPerMinute)
}
