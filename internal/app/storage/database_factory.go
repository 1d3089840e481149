package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/config"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/db"
)

// DatabaseFactory creates components over PostgreSQL.
type DatabaseFactory struct {
	*storeFactory
}

var _ Factory = (*DatabaseFactory)(nil)

// NewDatabaseFactory connects to the configured PostgreSQL database.
func NewDatabaseFactory(ctx context.Context, cfg *config.StorageConfig, opts ...FactoryOption) (*DatabaseFactory, error) {
	if cfg == nil || cfg.Database == nil {
		return nil, fmt.Errorf("database configuration is required for database storage type")
	}

	slog.Info("Creating database-backed storage factory",
		"host", cfg.Database.Host, "database", cfg.Database.Database)

	conn, err := db.NewConnection(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	f := &DatabaseFactory{storeFactory: newStoreFactory(opts)}
	if err := f.attach(conn); err != nil {
		return nil, err
	}
	return f, nil
}
