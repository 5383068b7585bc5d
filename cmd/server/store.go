package main

import (
	"context"
	"fmt"

	"github.com/pesio-ai/be-product-catalog/internal/platform/config"
	"github.com/pesio-ai/be-product-catalog/internal/platform/database"
	"github.com/pesio-ai/be-product-catalog/internal/platform/logger"
	"github.com/pesio-ai/be-product-catalog/internal/repository"
	"github.com/pesio-ai/be-product-catalog/internal/repository/memory"
	"github.com/pesio-ai/be-product-catalog/internal/repository/postgres"
	"github.com/pesio-ai/be-product-catalog/internal/repository/sqlite"
)

// openStore opens the configured storage driver. When migrate is set the
// schema is created or updated first. The returned func releases the store.
func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger, migrate bool) (repository.Store, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		db, err := database.New(ctx, database.Config{
			Host:        cfg.Database.Host,
			Port:        cfg.Database.Port,
			User:        cfg.Database.User,
			Password:    cfg.Database.Password,
			Database:    cfg.Database.Database,
			SSLMode:     cfg.Database.SSLMode,
			MaxConns:    cfg.Database.MaxConns,
			MinConns:    cfg.Database.MinConns,
			MaxConnTime: cfg.Database.MaxConnTime,
			MaxIdleTime: cfg.Database.MaxIdleTime,
			HealthCheck: cfg.Database.HealthCheck,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if migrate {
			if err := postgres.Migrate(ctx, db); err != nil {
				db.Close()
				return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
			}
		}
		log.Info().Str("host", cfg.Database.Host).Str("database", cfg.Database.Database).Msg("Database connection established")
		return postgres.NewStore(db), db.Close, nil

	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		closeDB := func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		// The embedded database is always migrated; it has no separate deploy step.
		if err := sqlite.Migrate(db); err != nil {
			closeDB()
			return nil, nil, fmt.Errorf("failed to migrate sqlite database: %w", err)
		}
		log.Info().Str("path", cfg.Storage.SQLitePath).Msg("SQLite database opened")
		return sqlite.New(db), closeDB, nil

	case config.DriverMemory:
		log.Warn().Msg("Using in-memory storage; data is lost on exit")
		return memory.New(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func migrate(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	if cfg.Storage.Driver == config.DriverMemory {
		log.Info().Msg("Memory storage has no schema; nothing to migrate")
		return nil
	}
	_, closeStore, err := openStore(ctx, cfg, log, true)
	if err != nil {
		return err
	}
	defer closeStore()

	log.Info().Str("driver", cfg.Storage.Driver).Msg("Schema migrated")
	return nil
}
