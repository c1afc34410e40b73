// Package sqlite implements store.CardStore on an embedded SQLite database
// using the pure Go modernc.org/sqlite driver. It backs local single-user
// deployments and the hermetic test suites.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// DriverName is the database/sql driver name registered by modernc.org/sqlite.
const DriverName = "sqlite"

// Open opens the SQLite database at path with WAL journaling and a busy
// timeout. Path may be ":memory:" for a private in-memory database.
//
// The pool is limited to one connection: SQLite serializes writers anyway and
// an in-memory database only exists on the connection that created it.
// Callers must close result sets before issuing the next statement.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path cannot be empty")
	}

	db, err := sql.Open(DriverName, dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	return db, nil
}

func dsn(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	pragmas := "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	if path != ":memory:" {
		pragmas += "&_pragma=journal_mode(WAL)"
	}
	return path + sep + pragmas
}
