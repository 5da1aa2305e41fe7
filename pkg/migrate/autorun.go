package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/stashkeeper-backend/pkg/config"
	"github.com/angelmondragon/stashkeeper-backend/pkg/db"
	"github.com/angelmondragon/stashkeeper-backend/pkg/logger"
)

// MaybeRunDev brings the schema up to date on startup, but only in dev with
// STASHKEEPER_AUTO_MIGRATE set.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}
	ctx = logg.WithField(ctx, "trigger", "dev_auto_run")
	return Up(ctx, cfg.DB, logg, client, DefaultDir)
}

// Up applies every pending migration. Postgres runs the goose SQL files in
// dir; SQLite has no equivalent DDL, so its schema comes from the models.
func Up(ctx context.Context, cfg config.DBConfig, logg *logger.Logger, client *db.Client, dir string) error {
	if cfg.IsSQLite() {
		ctx = logg.WithField(ctx, "driver", config.DBDriverSQLite)
		logg.Info(ctx, "migrate.sqlite.start")
		if err := AutoMigrate(ctx, client.DB()); err != nil {
			return err
		}
		logg.Info(ctx, "migrate.sqlite.done")
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}
	ctx = logg.WithFields(ctx, map[string]any{"driver": cfg.Driver, "dir": dir})
	logg.Info(ctx, "migrate.goose.start")
	if err := Run(ctx, sqlDB, dir, "up"); err != nil {
		return err
	}
	logg.Info(ctx, "migrate.goose.done")
	return nil
}
