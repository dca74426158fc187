// Package config provides configuration for the application.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

var (
	// ErrDBUriNotSetInProduction is returned when the sqlite store is selected in production without DB_URI. We need
	// this to prevent accidental production deployments against a scratch database.
	ErrDBUriNotSetInProduction = errors.New("DB_URI must be set in production")
	// ErrUnknownStoreDriver is returned when STORE_DRIVER names a store that does not exist.
	ErrUnknownStoreDriver = errors.New("unknown STORE_DRIVER")
)

const (
	// AppEnvironmentDefault is the default application environment.
	AppEnvironmentDefault = "development"
	// AppEnvironmentProduction is the production application environment.
	AppEnvironmentProduction = "production"
	// HostDefault is the default host to listen on. Can be an IP address or hostname.
	HostDefault = "localhost"
	// PortDefault is the default port to listen on.
	PortDefault = "8080"
	// LogLevelDefault is the default log level.
	LogLevelDefault = "info"

	// StoreDriverFile stores questions in a line-delimited JSON file.
	StoreDriverFile = "file"
	// StoreDriverSQLite stores questions in a SQLite database.
	StoreDriverSQLite = "sqlite"
	// StoreDriverDefault is the default store driver.
	StoreDriverDefault = StoreDriverFile
	// QuizFileDefault is the default question file, relative to the working directory.
	QuizFileDefault = "quiz_generator.txt"

	// DBURIDefault is the default database URI. Default is quizgen.sqlite in the current directory.
	DBURIDefault = "file:quizgen.sqlite?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)"
	// DBMaxOpenConnsDefault is the default maximum number of open database connections.
	DBMaxOpenConnsDefault = 10
	// DBMaxIdleConnsDefault is the default maximum number of idle database connections.
	DBMaxIdleConnsDefault = 10
	// DBConnMaxLifetimeDefault is the default maximum lifetime of a database connection.
	DBConnMaxLifetimeDefault = 5 * time.Minute

	// SessionTTLDefault is how long an answering session is kept.
	SessionTTLDefault = 2 * time.Hour
)

// Config represents the application configuration.
type Config struct {
	AppEnvironment string

	Host     string
	Port     string
	LogLevel string

	StoreDriver   string
	QuizFile      string
	SkipMalformed bool

	DBURI string

	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	SessionTTL time.Duration

	ClientDir string
}

// IsProduction reports whether the application runs in production.
func (c *Config) IsProduction() bool {
	return c.AppEnvironment == AppEnvironmentProduction
}

// Parse parses environment variables into the config.
func Parse(getenv func(string) string) (*Config, error) {
	c := Config{
		AppEnvironment:    AppEnvironmentDefault,
		Host:              HostDefault,
		Port:              PortDefault,
		LogLevel:          LogLevelDefault,
		StoreDriver:       StoreDriverDefault,
		QuizFile:          QuizFileDefault,
		DBURI:             DBURIDefault,
		DBMaxOpenConns:    DBMaxOpenConnsDefault,
		DBMaxIdleConns:    DBMaxIdleConnsDefault,
		DBConnMaxLifetime: DBConnMaxLifetimeDefault,
		SessionTTL:        SessionTTLDefault,
	}
	// Overwrite defaults with environment variables.
	if val := getenv("APP_ENV"); val != "" {
		c.AppEnvironment = val
	}
	if val := getenv("HOST"); val != "" {
		c.Host = val
	}
	if val := getenv("PORT"); val != "" {
		c.Port = val
	}
	if val := getenv("LOG_LEVEL"); val != "" {
		c.LogLevel = val
	}
	if val := getenv("STORE_DRIVER"); val != "" {
		c.StoreDriver = val
	}
	if val := getenv("QUIZ_FILE"); val != "" {
		c.QuizFile = val
	}
	if val := getenv("DB_URI"); val != "" {
		c.DBURI = val
	}
	// The client is always served from the embedded files in production.
	if val := getenv("CLIENT_DIR"); val != "" && !c.IsProduction() {
		c.ClientDir = val
	}

	// Strict validation for types
	if val := getenv("SKIP_MALFORMED"); val != "" {
		var err error
		c.SkipMalformed, err = strconv.ParseBool(val)
		if err != nil {
			return nil, fmt.Errorf("invalid SKIP_MALFORMED: %q, err: %w", val, err)
		}
	}

	if val := getenv("DB_MAX_OPEN_CONNS"); val != "" {
		var err error
		c.DBMaxOpenConns, err = strconv.Atoi(val)
		if err != nil {
			return nil, fmt.Errorf("invalid DB_MAX_OPEN_CONNS: %q, err: %w", val, err)
		}
	}

	if val := getenv("DB_MAX_IDLE_CONNS"); val != "" {
		var err error
		c.DBMaxIdleConns, err = strconv.Atoi(val)
		if err != nil {
			return nil, fmt.Errorf("invalid DB_MAX_IDLE_CONNS: %q, err: %w", val, err)
		}
	}

	if val := getenv("DB_CONN_MAX_LIFETIME"); val != "" {
		var err error
		c.DBConnMaxLifetime, err = time.ParseDuration(val)
		if err != nil {
			return nil, fmt.Errorf("invalid DB_CONN_MAX_LIFETIME: %q, err: %w", val, err)
		}
	}

	if val := getenv("SESSION_TTL"); val != "" {
		var err error
		c.SessionTTL, err = time.ParseDuration(val)
		if err != nil {
			return nil, fmt.Errorf("invalid SESSION_TTL: %q, err: %w", val, err)
		}
	}

	switch c.StoreDriver {
	case StoreDriverFile, StoreDriverSQLite:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStoreDriver, c.StoreDriver)
	}

	// Mandatory fields
	if c.IsProduction() && c.StoreDriver == StoreDriverSQLite && getenv("DB_URI") == "" {
		return nil, ErrDBUriNotSetInProduction
	}

	return &c, nil
}
