package main

import (
	"context"
	"os"
	"time"

	"github.com/oggyb/movienight/internal/app"
	"github.com/oggyb/movienight/internal/cache"
	"github.com/oggyb/movienight/internal/config"
	"github.com/oggyb/movienight/internal/db"
	"github.com/oggyb/movienight/internal/logger"
)

func main() {
	// Load configuration
	cfg := config.New()
	logger.InitFromConfig(cfg)
	log := logger.L()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		os.Exit(1)
	}

	// a server running against this database caches tokens in Redis
	redisCache := cache.NewRedisCache(cfg)
	defer redisCache.Client.Close()
	if err := redisCache.Ping(ctx); err != nil {
		log.Warn("redis unreachable, cached tokens are not cleared", "err", err)
		redisCache = nil
	}

	if err := app.SeedDemo(ctx, app.New(database, redisCache, log, nil)); err != nil {
		log.Error("failed to seed", "err", err)
		os.Exit(1)
	}

	log.Info("Seeding completed.")
}
