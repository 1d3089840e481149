// Package queries is the dialect-neutral query layer shared by the SQLite and PostgreSQL stores.
//
// Placeholders use the $N form. SQLite binds them by order of first appearance, so every
// statement introduces $1..$N in ascending order.
package queries

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New creates a Queries bound to db.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// Queries executes the statements of the sync store.
type Queries struct {
	db DBTX
}

// WithTx returns a copy bound to tx.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}
