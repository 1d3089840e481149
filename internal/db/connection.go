// Package db contains code for connecting to the sync store.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // Needs to be imported for Postgres driver
	_ "github.com/mattn/go-sqlite3"    // Needs to be imported for SQLite driver

	"github.com/NikolayVerchenko/wb-analytics-sub001/database"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/config"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/db/queries"
)

const (
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 5
	defaultConnMaxLifetime = 5 * time.Minute
	defaultConnectTimeout  = 10 * time.Second

	sqliteBusyTimeoutMillis = 5000
)

// Connection wraps the database connection and query interface
type Connection struct {
	DB      *sql.DB
	Queries *queries.Queries
	Dialect database.Dialect

	migrationURL string
}

// Open opens the store selected by the storage configuration.
func Open(ctx context.Context, cfg *config.StorageConfig) (*Connection, error) {
	switch cfg.GetType() {
	case config.StorageTypeFile:
		return OpenSQLite(ctx, cfg.GetFilePath())
	case config.StorageTypeDatabase:
		return NewConnection(ctx, cfg.Database)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", cfg.GetType())
	}
}

// OpenSQLite opens (creating if needed) a SQLite store at path.
// The pool is limited to one connection so that writers serialize.
func OpenSQLite(ctx context.Context, path string) (*Connection, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite file path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=%d&_journal_mode=WAL&_foreign_keys=on",
		path, sqliteBusyTimeoutMillis)
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.PingContext(ctx); err != nil {
		closeQuietly(sqlDB)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("SQLite store opened", "path", path)

	return &Connection{
		DB:           sqlDB,
		Queries:      queries.New(sqlDB),
		Dialect:      database.DialectSQLite,
		migrationURL: "sqlite3://" + path,
	}, nil
}

// NewConnection creates a new PostgreSQL connection from the provided configuration
func NewConnection(ctx context.Context, cfg *config.DatabaseConfig) (*Connection, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database configuration is required")
	}

	if cfg.Host == "" {
		return nil, fmt.Errorf("database host is required")
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("database port is required")
	}
	if cfg.User == "" {
		return nil, fmt.Errorf("database user is required")
	}
	if cfg.Database == "" {
		return nil, fmt.Errorf("database name is required")
	}

	maxOpenConns := int(cfg.MaxOpenConns)
	if maxOpenConns == 0 {
		maxOpenConns = defaultMaxOpenConns
	}

	maxIdleConns := int(cfg.MaxIdleConns)
	if maxIdleConns == 0 {
		maxIdleConns = defaultMaxIdleConns
	}

	connMaxLifetime := defaultConnMaxLifetime
	if cfg.ConnMaxLifetime != "" {
		duration, err := time.ParseDuration(cfg.ConnMaxLifetime)
		if err != nil {
			return nil, fmt.Errorf("invalid connection max lifetime: %w", err)
		}
		connMaxLifetime = duration
	}

	connStr, err := cfg.GetConnectionString()
	if err != nil {
		return nil, fmt.Errorf("failed to get database password: %w", err)
	}
	connStr += fmt.Sprintf("&connect_timeout=%d", int(defaultConnectTimeout.Seconds()))

	sqlDB, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)

	if err := sqlDB.PingContext(ctx); err != nil {
		closeQuietly(sqlDB)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("Database connection established",
		"user", cfg.User, "host", cfg.Host, "port", cfg.Port, "database", cfg.Database)

	return &Connection{
		DB:           sqlDB,
		Queries:      queries.New(sqlDB),
		Dialect:      database.DialectPostgres,
		migrationURL: "pgx5://" + strings.TrimPrefix(connStr, "postgres://"),
	}, nil
}

// MigrationURL returns the golang-migrate URL addressing this store.
func (c *Connection) MigrationURL() string {
	return c.migrationURL
}

// Migrate applies pending schema migrations.
func (c *Connection) Migrate() error {
	return database.MigrateUp(c.Dialect, c.migrationURL)
}

// Close closes the database connection
func (c *Connection) Close() error {
	if c.DB != nil {
		slog.Info("Closing database connection")
		return c.DB.Close()
	}
	return nil
}

// Ping verifies the database connection is still alive
func (c *Connection) Ping(ctx context.Context) error {
	if c.DB != nil {
		return c.DB.PingContext(ctx)
	}
	return fmt.Errorf("database connection is nil")
}

func closeQuietly(sqlDB *sql.DB) {
	if err := sqlDB.Close(); err != nil {
		slog.Error("Failed to close database connection after ping failure", "error", err)
	}
}
