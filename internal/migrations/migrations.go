package migrations

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"

	"github.com/Petrenko-Anton/HW-13-REST/internal/config"
)

// Run applies all pending schema migrations from cfg.MigrationsPath. Called on
// startup when auto_migrate is enabled.
func Run(cfg config.DatabaseConfig, logger *zap.Logger) error {
	migrator, err := migrate.New(fmt.Sprintf("file://%s", cfg.MigrationsPath), cfg.DSN())
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	defer func() {
		srcErr, dbErr := migrator.Close()
		if srcErr != nil || dbErr != nil {
			logger.Warn("failed to close migrator",
				zap.NamedError("source_error", srcErr),
				zap.NamedError("database_error", dbErr))
		}
	}()

	err = migrator.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migrations to apply")
	} else {
		logger.Info("migrations applied")
	}
	return nil
}
