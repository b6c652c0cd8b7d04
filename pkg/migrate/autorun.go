package migrate

import (
	"context"
	"fmt"

	"github.com/poornima-canteen/canteen-backend/pkg/config"
	"github.com/poornima-canteen/canteen-backend/pkg/db"
	"github.com/poornima-canteen/canteen-backend/pkg/db/models"
	"github.com/poornima-canteen/canteen-backend/pkg/logger"
)

// MaybeRunDev migrates the menu schema automatically when the app runs in dev
// mode and the feature flag is enabled.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	ctx = logg.WithField(ctx, "env", cfg.App.Env)
	logg.Info(ctx, "running schema auto-migration (dev auto-run)")

	if err := client.DB().WithContext(ctx).AutoMigrate(
		&models.MenuSection{},
		&models.MenuItem{},
	); err != nil {
		return fmt.Errorf("auto-migrating menu schema: %w", err)
	}

	logg.Info(ctx, "schema auto-migration completed")
	return nil
}
