// Package database opens the configured card store backend.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/BogdanBedrinec/cards/internal/config"
	"github.com/BogdanBedrinec/cards/internal/platform/postgres"
	"github.com/BogdanBedrinec/cards/internal/platform/sqlite"
	"github.com/BogdanBedrinec/cards/internal/store"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
)

// pingTimeout bounds the connectivity check in Open.
const pingTimeout = 5 * time.Second

// Open connects to the database described by cfg and verifies the
// connection. Pool settings apply to PostgreSQL only; SQLite always uses a
// single connection.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*sql.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Driver {
	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.URL)
		if err != nil {
			return nil, err
		}
		logger.Info("database connection established", slog.String("driver", cfg.Driver))
		return db, nil

	case config.DriverPostgres:
		db, err := sql.Open("pgx", cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to open database connection: %w", err)
		}

		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
		db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)

		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}

		logger.Info("database connection established", slog.String("driver", cfg.Driver))
		return db, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// NewCardStore returns the CardStore implementation for driver.
func NewCardStore(driver string, db store.DBTX, logger *slog.Logger) (store.CardStore, error) {
	switch driver {
	case config.DriverSQLite:
		return sqlite.NewCardStore(db, logger), nil
	case config.DriverPostgres:
		return postgres.NewPostgresCardStore(db, logger), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}
