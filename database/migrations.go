// Package database provides the embedded schema and migration tooling for both storage backends.
package database

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	// Registers the pgx5:// database driver.
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	// Registers the sqlite3:// database driver.
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// Dialect names a schema flavour
type Dialect string

const (
	// DialectSQLite is the embedded file store
	DialectSQLite Dialect = "sqlite"
	// DialectPostgres is the server store
	DialectPostgres Dialect = "postgres"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

// Migrator is the interface for the migration tooling.
type Migrator interface {
	Up() error
	Down() error
	Steps(int) error
	Version() (uint, bool, error)
	Close() (error, error)
}

// migrationsFromSource returns a migration source driver for the dialect's embedded scripts.
func migrationsFromSource(dialect Dialect) (source.Driver, error) {
	switch dialect {
	case DialectSQLite, DialectPostgres:
		return iofs.New(migrationsFS, "migrations/"+string(dialect))
	default:
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}
}

// NewFromConnectionString returns a migration instance for a sqlite3:// or pgx5:// URL.
// The migrator opens its own connection; Close releases it.
func NewFromConnectionString(dialect Dialect, connString string) (Migrator, error) {
	d, err := migrationsFromSource(dialect)
	if err != nil {
		return nil, err
	}
	m, err := migrate.NewWithSourceInstance("iofs", d, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	return m, nil
}

// MigrateUp applies every pending migration. An up-to-date schema is not an error.
func MigrateUp(dialect Dialect, connString string) error {
	m, err := NewFromConnectionString(dialect, connString)
	if err != nil {
		return err
	}
	defer closeMigrator(m)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// MigrateDown rolls back steps migrations; a non-positive steps rolls back everything.
func MigrateDown(dialect Dialect, connString string, steps int) error {
	m, err := NewFromConnectionString(dialect, connString)
	if err != nil {
		return err
	}
	defer closeMigrator(m)

	if steps <= 0 {
		err = m.Down()
	} else {
		err = m.Steps(-steps)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to roll back migrations: %w", err)
	}
	return nil
}

func closeMigrator(m Migrator) {
	_, _ = m.Close()
}
