package state

import (
	"database/sql"
)

// TxBinder yields a Registry whose statements join an open transaction.
type TxBinder interface {
	WithTx(tx *sql.Tx) Registry
}

var (
	_ Registry = (*DBRegistry)(nil)
	_ TxBinder = (*DBRegistry)(nil)
)
