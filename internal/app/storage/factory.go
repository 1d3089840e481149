// Package storage provides factory functions for creating storage-dependent components.
// A factory owns one open store and builds the registry, the sync writer and the
// sync service over it so they always share the same backend.
package storage

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/config"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/db"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/service"
	database "github.com/NikolayVerchenko/wb-analytics-sub001/internal/service/db"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/sync/coordinator"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/sync/state"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/sync/writer"
)

// Factory creates storage-dependent components as a family.
type Factory interface {
	// Connection returns the store the factory was opened on
	Connection() *db.Connection

	// CreateRegistry creates the period registry.
	CreateRegistry(ctx context.Context) (*state.DBRegistry, error)

	// CreateSyncWriter creates the atomic writer. The registry is re-bound to each write transaction.
	CreateSyncWriter(ctx context.Context, registry state.TxBinder) (writer.SyncWriter, error)

	// CreateSyncService creates the read/refresh service behind the HTTP API.
	// coord may be nil, in which case refresh and background status are unavailable.
	CreateSyncService(ctx context.Context, registry state.Registry, coord coordinator.Coordinator) (service.SyncService, error)

	// Cleanup closes the store.
	Cleanup()
}

// FactoryOption configures a store factory
type FactoryOption func(*storeFactory)

// WithTracer sets the OpenTelemetry tracer for the sync service.
// If not set, tracing will be disabled (no-op).
func WithTracer(tracer trace.Tracer) FactoryOption {
	return func(f *storeFactory) {
		f.tracer = tracer
	}
}

// WithoutMigrations skips applying pending migrations when the store is opened.
func WithoutMigrations() FactoryOption {
	return func(f *storeFactory) {
		f.skipMigrations = true
	}
}

// WithoutLock opens a SQLite store without taking the process lock.
// Meant for read-only inspection next to a running service.
func WithoutLock() FactoryOption {
	return func(f *storeFactory) {
		f.skipLock = true
	}
}

// NewStorageFactory opens the configured store and applies pending migrations.
// Returns a FileFactory for the SQLite store or a DatabaseFactory for PostgreSQL.
func NewStorageFactory(ctx context.Context, cfg *config.Config, opts ...FactoryOption) (Factory, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	switch cfg.Storage.GetType() {
	case config.StorageTypeDatabase:
		f, err := NewDatabaseFactory(ctx, cfg.Storage, opts...)
		if err != nil {
			return nil, err
		}
		return f, nil
	case config.StorageTypeFile:
		f, err := NewFileFactory(ctx, cfg.Storage, opts...)
		if err != nil {
			return nil, err
		}
		return f, nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Storage.GetType())
	}
}

// storeFactory holds what both backends share once the connection is open.
type storeFactory struct {
	conn           *db.Connection
	tracer         trace.Tracer
	skipMigrations bool
	skipLock       bool
}

func newStoreFactory(opts []FactoryOption) *storeFactory {
	f := &storeFactory{}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// attach stores conn and migrates it. conn is closed if migrating fails.
func (f *storeFactory) attach(conn *db.Connection) error {
	f.conn = conn
	if f.skipMigrations {
		return nil
	}
	if err := conn.Migrate(); err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			slog.Error("Failed to close store after migration failure", "error", closeErr)
		}
		return fmt.Errorf("failed to migrate %s store: %w", conn.Dialect, err)
	}
	slog.Info("Store schema is up to date", "dialect", conn.Dialect)
	return nil
}

func (f *storeFactory) Connection() *db.Connection {
	return f.conn
}

func (f *storeFactory) CreateRegistry(_ context.Context) (*state.DBRegistry, error) {
	slog.Debug("Creating period registry", "dialect", f.conn.Dialect)
	return state.NewDBRegistry(f.conn.DB), nil
}

func (f *storeFactory) CreateSyncWriter(_ context.Context, registry state.TxBinder) (writer.SyncWriter, error) {
	slog.Debug("Creating sync writer", "dialect", f.conn.Dialect)
	return writer.NewSyncWriter(f.conn.Dialect, f.conn.DB, registry)
}

func (f *storeFactory) CreateSyncService(
	_ context.Context, registry state.Registry, coord coordinator.Coordinator,
) (service.SyncService, error) {
	slog.Debug("Creating sync service", "dialect", f.conn.Dialect)

	opts := []database.Option{database.WithDialect(string(f.conn.Dialect))}
	if coord != nil {
		opts = append(opts, database.WithCoordinator(coord))
	}
	if f.tracer != nil {
		opts = append(opts, database.WithTracer(f.tracer))
		slog.Debug("Sync service tracing enabled")
	}
	return database.New(f.conn, registry, opts...), nil
}

func (f *storeFactory) Cleanup() {
	if f.conn == nil {
		return
	}
	if err := f.conn.Close(); err != nil {
		slog.Error("Failed to close store", "error", err)
	}
}
