package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/oggyb/movienight/internal/api"
	"github.com/oggyb/movienight/internal/app"
	"github.com/oggyb/movienight/internal/cache"
	"github.com/oggyb/movienight/internal/config"
	"github.com/oggyb/movienight/internal/db"
	"github.com/oggyb/movienight/internal/logger"
	"github.com/oggyb/movienight/internal/server"
	"github.com/oggyb/movienight/internal/service/movienight"
	"github.com/oggyb/movienight/internal/tmdb"
)

func main() {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		os.Exit(1)
	}
	sqlDB, err := database.DB()
	if err != nil {
		log.Error("failed to get sql handle", "err", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(ctx); err != nil {
		log.Error("failed to connect to redis", "err", err)
		os.Exit(1)
	}
	defer redisCache.Client.Close()

	if cfg.TMDB.APIKey == "" {
		log.Warn("TMDB_API_KEY is empty, GET /movie will fail")
	}
	movies := tmdb.NewCircuitBreakerProvider(tmdb.NewClient(cfg), log.With("component", "tmdb"))

	appCtx := app.New(database, redisCache, log, movies)
	svc := movienight.NewService(appCtx)

	if cfg.App.ENV == "development" {
		if err := app.SeedDemo(ctx, appCtx); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	health := func(ctx context.Context) error {
		return errors.Join(sqlDB.PingContext(ctx), redisCache.Ping(ctx))
	}
	router := api.NewRouter(svc, health, log, api.RouterConfig{
		CORSOrigins:            cfg.HTTP.CORSOrigins,
		RateLimitPerMinute:     cfg.HTTP.RateLimitPerMinute,
		AuthRateLimitPerMinute: cfg.HTTP.AuthRateLimitPerMinute,
		MovieProviderState:     func() string { return movies.State().String() },
	})

	registrars := []server.Registrar{
		movienight.NewRegistrarFor(svc),
	}

	errCh := make(chan error, 2)
	go func() {
		log.Info("starting gRPC server", "addr", cfg.GRPC.Host+":"+cfg.GRPC.Port)
		errCh <- server.StartGRPCServer(ctx, cfg, log, registrars...)
	}()
	go func() {
		errCh <- server.StartHTTPServer(ctx, cfg, router, log)
	}()

	// first failure (or shutdown) stops both servers
	exitCode := 0
	for i := 0; i < 2; i++ {
		if err := <-errCh; err != nil {
			log.Error("server stopped", "err", err)
			exitCode = 1
			stop()
		}
	}
	log.Info("shutdown complete")
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
