package migrate

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/angelmondragon/customorder-backend/pkg/config"
	"github.com/angelmondragon/customorder-backend/pkg/logger"
	"github.com/pressly/goose/v3"
)

// AutoApplyEnabled reports whether the api should bring the audit schema
// up to date on boot. Only dev builds with the audit table in use do.
func AutoApplyEnabled(cfg *config.Config) bool {
	if cfg == nil {
		return false
	}
	return cfg.App.IsDev() && cfg.FeatureFlags.AutoMigrate && cfg.FeatureFlags.AuditEnabled
}

// AutoApply checks the embedded set and migrates the audit schema up,
// logging the version it moved from and to.
func AutoApply(ctx context.Context, cfg *config.Config, logg *logger.Logger, sqlDB *sql.DB) error {
	if !AutoApplyEnabled(cfg) {
		return nil
	}
	if sqlDB == nil {
		return fmt.Errorf("database handle required for auto-migrate")
	}
	if err := ValidateFS(Embedded(), embeddedDir); err != nil {
		return fmt.Errorf("embedded migrations: %w", err)
	}

	resolved, err := configure("")
	if err != nil {
		return err
	}
	from, err := goose.GetDBVersionContext(ctx, sqlDB)
	if err != nil {
		return fmt.Errorf("get db version: %w", err)
	}
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "from_version": from})

	if err := goose.UpContext(ctx, sqlDB, resolved); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	to, err := goose.GetDBVersionContext(ctx, sqlDB)
	if err != nil {
		return fmt.Errorf("get db version: %w", err)
	}
	if to == from {
		logg.Debug(ctx, "audit schema already current")
		return nil
	}
	logg.Info(logg.WithField(ctx, "to_version", to), "audit schema migrated")
	return nil
}
