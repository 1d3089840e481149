package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gofrs/flock"

	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/config"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/db"
)

// ErrStoreLocked is returned when another process holds the SQLite store.
var ErrStoreLocked = errors.New("store is locked by another process")

// FileFactory creates components over a local SQLite file.
// The file is locked for the lifetime of the factory so that only one process syncs into it.
type FileFactory struct {
	*storeFactory
	path string
	lock *flock.Flock
}

var _ Factory = (*FileFactory)(nil)

// NewFileFactory opens (creating if needed) the SQLite store named by cfg.
func NewFileFactory(ctx context.Context, cfg *config.StorageConfig, opts ...FactoryOption) (*FileFactory, error) {
	path := cfg.GetFilePath()
	slog.Info("Creating file-based storage factory", "path", path)

	conn, err := db.OpenSQLite(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite store: %w", err)
	}

	f := &FileFactory{storeFactory: newStoreFactory(opts), path: path}
	if !f.skipLock {
		lock := flock.New(path + ".lock")
		locked, err := lock.TryLock()
		if err != nil || !locked {
			_ = conn.Close()
			if err == nil {
				err = ErrStoreLocked
			}
			return nil, fmt.Errorf("failed to lock %s: %w", path, err)
		}
		f.lock = lock
	}

	if err := f.attach(conn); err != nil {
		f.unlock()
		return nil, err
	}
	return f, nil
}

// Path returns the SQLite file path
func (f *FileFactory) Path() string {
	return f.path
}

// Cleanup closes the store and releases the file lock.
func (f *FileFactory) Cleanup() {
	f.storeFactory.Cleanup()
	f.unlock()
}

func (f *FileFactory) unlock() {
	if f.lock == nil {
		return
	}
	if err := f.lock.Unlock(); err != nil {
		slog.Warn("Failed to release store lock", "path", f.path, "error", err)
	}
}
