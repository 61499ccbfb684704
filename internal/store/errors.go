package store

import (
	"database/sql"
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrNotFound is returned when a referenced row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when a unique user-facing name is taken.
	ErrDuplicate = errors.New("already exists")

	// ErrInvariantViolation marks a broken storage invariant: a second
	// study record for the same subject and date, a second unlock record
	// for one achievement, or a subject counter that drifted from its
	// records. These are programming errors.
	ErrInvariantViolation = errors.New("invariant violation")
)

// isUniqueViolation reports whether err is a SQLite unique or primary
// key constraint failure.
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}

// notFound converts sql.ErrNoRows into ErrNotFound with context.
func notFound(err error, what string, id any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %v: %w", what, id, ErrNotFound)
	}
	return fmt.Errorf("get %s %v: %w", what, id, err)
}
