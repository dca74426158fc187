// Package db provides database access for the SQLite question store.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // Registers the "sqlite" driver.

	"github.com/starquake/quizgen/internal/migrations"
)

// ErrUnsupportedDriver is returned when the database driver is not supported. We only support sqlite for now.
var ErrUnsupportedDriver = errors.New("unsupported database driver")

const gooseDialect = "sqlite3"

// SetupGoose configures global settings for goose.
// Call it once before Migrate; goose keeps this state in package variables.
func SetupGoose() error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect(gooseDialect); err != nil {
		return fmt.Errorf("error setting dialect: %w", err)
	}

	return nil
}

// Open opens a database connection and verifies it with a ping.
func Open(
	ctx context.Context,
	driver, uri string,
	dbMaxOpenConns, dbMaxIdleConns int,
	dbConnMaxLifetime time.Duration,
) (*sql.DB, error) {
	switch driver {
	case "sqlite", "sqlite3":
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDriver, driver)
	}

	conn, err := sql.Open("sqlite", uri)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err = conn.PingContext(ctx); err != nil {
		_ = conn.Close()

		return nil, fmt.Errorf("error pinging database: %w", err)
	}

	conn.SetMaxOpenConns(dbMaxOpenConns)
	conn.SetMaxIdleConns(dbMaxIdleConns)
	conn.SetConnMaxLifetime(dbConnMaxLifetime)

	return conn, nil
}

// Migrate runs database migrations.
func Migrate(ctx context.Context, conn *sql.DB) error {
	if err := goose.UpContext(ctx, conn, "."); err != nil {
		return fmt.Errorf("error running migrations: %w", err)
	}

	return nil
}
