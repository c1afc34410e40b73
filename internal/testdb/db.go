package testdb

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/BogdanBedrinec/cards/internal/config"
	"github.com/BogdanBedrinec/cards/internal/platform/migrations"
	"github.com/BogdanBedrinec/cards/internal/platform/sqlite"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/stretchr/testify/require"
)

// TestTimeout defines a default timeout for test database operations.
const TestTimeout = 5 * time.Second

// GetTestDatabaseURL returns the PostgreSQL URL for tests.
// It checks DATABASE_URL and CARDS_TEST_DB_URL in that order.
func GetTestDatabaseURL() string {
	if u := os.Getenv("DATABASE_URL"); u != "" {
		return u
	}
	return os.Getenv("CARDS_TEST_DB_URL")
}

// ShouldSkipDatabaseTest reports whether no PostgreSQL database is configured.
func ShouldSkipDatabaseTest() bool {
	return GetTestDatabaseURL() == ""
}

// NewSQLite opens a fresh, migrated SQLite database under t.TempDir().
// The database is closed when the test finishes.
func NewSQLite(t *testing.T) *sql.DB {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "cards.db"))
	require.NoError(t, err, "failed to open sqlite test database")
	t.Cleanup(func() { _ = db.Close() })

	migrate(t, db, config.DriverSQLite)
	return db
}

// NewPostgres opens the configured PostgreSQL test database and applies
// migrations. The test is skipped when no database is configured.
func NewPostgres(t *testing.T) *sql.DB {
	t.Helper()

	if ShouldSkipDatabaseTest() {
		t.Skip("DATABASE_URL not set - skipping PostgreSQL test")
	}

	db, err := sql.Open("pgx", GetTestDatabaseURL())
	require.NoError(t, err, "failed to open postgres test database")
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()
	require.NoError(t, db.PingContext(ctx), "failed to ping postgres test database")

	migrate(t, db, config.DriverPostgres)
	return db
}

func migrate(t *testing.T, db *sql.DB, driver string) {
	t.Helper()

	runner, err := migrations.NewRunner(db, driver, nil)
	require.NoError(t, err, "failed to create migration runner")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, runner.Up(ctx), "failed to apply migrations")
}

// WithTx runs fn inside a transaction that is always rolled back, so
// changes made by the test never persist.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err, "failed to begin transaction")

	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			t.Errorf("failed to roll back test transaction: %v", err)
		}
	}()

	fn(t, tx)
}
