package app

import (
	"context"
	"fmt"

	"github.com/oggyb/movienight/internal/db"
)

// SeedDemo resets the database to the demo data set and drops the cached
// tokens of the wiped users. Seeded ids start over, so a cached token of an
// old user would otherwise resolve to a new one.
func SeedDemo(ctx context.Context, appCtx *AppContext) error {
	if err := db.SeedDemoData(appCtx.DB, appCtx.Logger); err != nil {
		return err
	}
	if appCtx.RedisCache == nil {
		return nil
	}
	if err := appCtx.RedisCache.PurgeAuthKeys(ctx); err != nil {
		return fmt.Errorf("purge cached tokens: %w", err)
	}
	appCtx.Logger.Info("Cleared cached tokens")
	return nil
}
