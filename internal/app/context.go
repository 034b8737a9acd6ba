package app

import (
	"log/slog"

	"github.com/oggyb/movienight/internal/cache"
	"github.com/oggyb/movienight/internal/tmdb"
	"gorm.io/gorm"
)

// AppContext holds shared dependencies (DB, Redis, Logger, movie provider).
type AppContext struct {
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Logger     *slog.Logger
	Movies     tmdb.Provider
	// BcryptCost of 0 means bcrypt.DefaultCost.
	BcryptCost int
}

// New creates a new AppContext
func New(db *gorm.DB, rdb *cache.RedisCache, logger *slog.Logger, movies tmdb.Provider) *AppContext {
	return &AppContext{
		DB:         db,
		RedisCache: rdb,
		Logger:     logger,
		Movies:     movies,
	}
}
