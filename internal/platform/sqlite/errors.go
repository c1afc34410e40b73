package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/BogdanBedrinec/cards/internal/store"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// IsUniqueViolation checks if err is a SQLite UNIQUE constraint failure.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqlErr *msqlite.Error
	if errors.As(err, &sqlErr) {
		if sqlErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			sqlErr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY {
			return true
		}
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// MapError maps a database error to the matching store error.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}
	if IsUniqueViolation(err) {
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	}
	if strings.Contains(err.Error(), "CHECK constraint failed") ||
		strings.Contains(err.Error(), "NOT NULL constraint failed") {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	return err
}
