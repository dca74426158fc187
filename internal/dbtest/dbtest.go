// Package dbtest provides helpers for testing database code.
package dbtest

import (
	"database/sql"
	"errors"
	"os"
	"testing"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // SQLite driver for the in-memory test databases.
)

// Open opens an in-memory database with migrations applied.
// goose must already be configured, see db.SetupGoose.
func Open(t *testing.T) *sql.DB {
	t.Helper()

	conn := OpenUnmigrated(t)

	if err := goose.UpContext(t.Context(), conn, "."); err != nil {
		t.Fatalf("error running migrations: %v", err)
	}

	return conn
}

// OpenUnmigrated opens an in-memory database without migrations applied. It is closed when the test ends.
func OpenUnmigrated(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("error opening SQLite database: %v", err)
	}
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	t.Cleanup(func() {
		if closeErr := conn.Close(); closeErr != nil {
			t.Errorf("error closing SQLite database: %v", closeErr)
		}
	})

	return conn
}

// SetupTestDB creates an empty database file in a temporary directory and returns its URI.
// The returned cleanup removes the file.
func SetupTestDB(t *testing.T) (string, func()) {
	t.Helper()

	f, err := os.CreateTemp(t.TempDir(), "quizgen-test-*.sqlite")
	if err != nil {
		t.Fatalf("failed to create temp db: %v", err)
	}
	path := f.Name()
	if err = f.Close(); err != nil {
		t.Fatalf("failed to close temp db: %v", err)
	}

	uri := "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)"

	return uri, func() {
		if removeErr := os.Remove(path); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
			t.Errorf("failed to remove temp db: %v", removeErr)
		}
	}
}
