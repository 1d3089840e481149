package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NikolayVerchenko/wb-analytics-sub001/database"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/config"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/period"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/service"
)

func fileConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Upstream: &config.UpstreamConfig{},
		Storage: &config.StorageConfig{
			Type: config.StorageTypeFile,
			File: &config.FileConfig{Path: filepath.Join(t.TempDir(), "nested", "wb-sync.db")},
		},
	}
}

func TestNewStorageFactory_File(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f, err := NewStorageFactory(ctx, fileConfig(t))
	require.NoError(t, err)
	t.Cleanup(f.Cleanup)

	_, ok := f.(*FileFactory)
	require.True(t, ok)
	assert.Equal(t, database.DialectSQLite, f.Connection().Dialect)

	registry, err := f.CreateRegistry(ctx)
	require.NoError(t, err)

	// The schema is migrated: registering a period works straight away.
	created, err := registry.RegisterPending(ctx, "2024-03-05", period.KindDaily)
	require.NoError(t, err)
	assert.True(t, created)

	w, err := f.CreateSyncWriter(ctx, registry)
	require.NoError(t, err)
	assert.NotNil(t, w)

	svc, err := f.CreateSyncService(ctx, registry, nil)
	require.NoError(t, err)
	require.NoError(t, svc.CheckReadiness(ctx))

	_, err = svc.Refresh(ctx)
	assert.ErrorIs(t, err, service.ErrRefreshUnavailable)
}

func TestNewStorageFactory_WithoutMigrations(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f, err := NewStorageFactory(ctx, fileConfig(t), WithoutMigrations())
	require.NoError(t, err)
	t.Cleanup(f.Cleanup)

	registry, err := f.CreateRegistry(ctx)
	require.NoError(t, err)

	_, err = registry.RegisterPending(ctx, "2024-03-05", period.KindDaily)
	assert.Error(t, err, "tables do not exist before migrating")
}

func TestNewStorageFactory_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  *config.Config
	}{
		{name: "nil config", cfg: nil},
		{
			name: "unknown type",
			cfg:  &config.Config{Storage: &config.StorageConfig{Type: "s3"}},
		},
		{
			name: "database without settings",
			cfg:  &config.Config{Storage: &config.StorageConfig{Type: config.StorageTypeDatabase}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f, err := NewStorageFactory(context.Background(), tt.cfg)
			require.Error(t, err)
			assert.Nil(t, f)
		})
	}
}

func TestCleanupWithoutConnection(t *testing.T) {
	t.Parallel()
	assert.NotPanics(t, func() { newStoreFactory(nil).Cleanup() })
}

func TestFileFactory_Lock(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cfg := fileConfig(t)

	first, err := NewFileFactory(ctx, cfg.Storage)
	require.NoError(t, err)

	_, err = NewFileFactory(ctx, cfg.Storage)
	require.ErrorIs(t, err, ErrStoreLocked)

	// Readers may still open it.
	reader, err := NewFileFactory(ctx, cfg.Storage, WithoutLock())
	require.NoError(t, err)
	reader.Cleanup()

	first.Cleanup()

	second, err := NewFileFactory(ctx, cfg.Storage)
	require.NoError(t, err)
	t.Cleanup(second.Cleanup)
	assert.Equal(t, cfg.Storage.GetFilePath(), second.Path())
}
