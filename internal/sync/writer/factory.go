package writer

import (
	"database/sql"

	"github.com/NikolayVerchenko/wb-analytics-sub001/database"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/sync/state"
)

// NewSyncWriter creates a SyncWriter for the store dialect.
//
// PostgreSQL writes run serializable. SQLite already serializes writers on its
// single connection and uses the driver default.
func NewSyncWriter(dialect database.Dialect, db *sql.DB, registry state.TxBinder) (SyncWriter, error) {
	switch dialect {
	case database.DialectPostgres:
		return NewDBSyncWriter(db, registry, WithIsolation(sql.LevelSerializable))
	default:
		return NewDBSyncWriter(db, registry)
	}
}
