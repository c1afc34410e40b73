// Package migrations applies the embedded schema migrations with goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/BogdanBedrinec/cards/internal/config"
	"github.com/pressly/goose/v3"
)

//go:embed postgres/*.sql sqlite/*.sql
var embedded embed.FS

// Status describes one known migration.
type Status struct {
	Version   int64
	Path      string
	Applied   bool
	AppliedAt time.Time
}

// Runner applies migrations for one database driver.
type Runner struct {
	provider *goose.Provider
	logger   *slog.Logger
}

// NewRunner creates a Runner for db using the migration set of driver
// (config.DriverPostgres or config.DriverSQLite).
func NewRunner(db *sql.DB, driver string, logger *slog.Logger) (*Runner, error) {
	if db == nil {
		return nil, fmt.Errorf("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	var dialect goose.Dialect
	switch driver {
	case config.DriverPostgres:
		dialect = goose.DialectPostgres
	case config.DriverSQLite:
		dialect = goose.DialectSQLite3
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	fsys, err := fs.Sub(embedded, driver)
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	provider, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration provider: %w", err)
	}

	return &Runner{
		provider: provider,
		logger:   logger.With(slog.String("component", "migrations"), slog.String("driver", driver)),
	}, nil
}

// Up applies every pending migration.
func (r *Runner) Up(ctx context.Context) error {
	results, err := r.provider.Up(ctx)
	for _, res := range results {
		r.logResult(res)
	}
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	if len(results) == 0 {
		r.logger.Info("database schema is up to date")
	}
	return nil
}

// Down rolls back the most recent migration.
func (r *Runner) Down(ctx context.Context) error {
	res, err := r.provider.Down(ctx)
	if res != nil {
		r.logResult(res)
	}
	if err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}
	return nil
}

// Version returns the current schema version.
func (r *Runner) Version(ctx context.Context) (int64, error) {
	v, err := r.provider.GetDBVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return v, nil
}

// Status lists every known migration and whether it has been applied.
func (r *Runner) Status(ctx context.Context) ([]Status, error) {
	statuses, err := r.provider.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration status: %w", err)
	}

	out := make([]Status, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, Status{
			Version:   s.Source.Version,
			Path:      s.Source.Path,
			Applied:   s.State == goose.StateApplied,
			AppliedAt: s.AppliedAt,
		})
	}
	return out, nil
}

func (r *Runner) logResult(res *goose.MigrationResult) {
	attrs := []any{
		slog.Int64("version", res.Source.Version),
		slog.String("path", res.Source.Path),
		slog.String("direction", res.Direction),
		slog.Duration("duration", res.Duration),
	}
	if res.Error != nil {
		r.logger.Error("migration failed", append(attrs, slog.String("error", res.Error.Error()))...)
		return
	}
	r.logger.Info("migration applied", attrs...)
}
