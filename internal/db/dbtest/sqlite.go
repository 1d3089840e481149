// Package dbtest opens throwaway migrated stores for tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/db"
)

// OpenSQLite returns a migrated SQLite store in a temp directory, closed on cleanup.
func OpenSQLite(t *testing.T) *db.Connection {
	t.Helper()
	conn, err := db.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "wb-sync.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, conn.Migrate())
	return conn
}
