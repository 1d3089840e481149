package queries

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

const periodStateColumns = `id, period_id, kind, status, last_attempt_at, next_retry_at, is_final, error_msg, created_at, updated_at`

func scanPeriodState(row interface{ Scan(dest ...any) error }) (PeriodState, error) {
	var i PeriodState
	err := row.Scan(
		&i.ID,
		&i.PeriodID,
		&i.Kind,
		&i.Status,
		&i.LastAttemptAt,
		&i.NextRetryAt,
		&i.IsFinal,
		&i.ErrorMsg,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

func (q *Queries) listPeriodStates(ctx context.Context, query string, args ...any) ([]PeriodState, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []PeriodState
	for rows.Next() {
		i, err := scanPeriodState(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getPeriodState = `SELECT ` + periodStateColumns + `
FROM period_states
WHERE period_id = $1 AND kind = $2`

// GetPeriodState returns sql.ErrNoRows when the entry does not exist.
func (q *Queries) GetPeriodState(ctx context.Context, periodID, kind string) (PeriodState, error) {
	return scanPeriodState(q.db.QueryRowContext(ctx, getPeriodState, periodID, kind))
}

// UpsertPeriodStateParams holds the columns written by UpsertPeriodState.
type UpsertPeriodStateParams struct {
	ID            uuid.UUID
	PeriodID      string
	Kind          string
	Status        string
	LastAttemptAt sql.NullTime
	NextRetryAt   sql.NullTime
	IsFinal       bool
	ErrorMsg      sql.NullString
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// is_final can only be raised here; ResetPeriodState is the only statement that lowers it.
const upsertPeriodState = `INSERT INTO period_states (` + periodStateColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (period_id, kind) DO UPDATE SET
    status = excluded.status,
    last_attempt_at = excluded.last_attempt_at,
    next_retry_at = excluded.next_retry_at,
    is_final = (period_states.is_final OR excluded.is_final),
    error_msg = excluded.error_msg,
    updated_at = excluded.updated_at`

func (q *Queries) UpsertPeriodState(ctx context.Context, arg UpsertPeriodStateParams) error {
	_, err := q.db.ExecContext(ctx, upsertPeriodState,
		arg.ID,
		arg.PeriodID,
		arg.Kind,
		arg.Status,
		arg.LastAttemptAt,
		arg.NextRetryAt,
		arg.IsFinal,
		arg.ErrorMsg,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const insertPeriodStateIfAbsent = `INSERT INTO period_states (` + periodStateColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (period_id, kind) DO NOTHING`

// InsertPeriodStateIfAbsent reports whether a row was inserted.
func (q *Queries) InsertPeriodStateIfAbsent(ctx context.Context, arg UpsertPeriodStateParams) (bool, error) {
	res, err := q.db.ExecContext(ctx, insertPeriodStateIfAbsent,
		arg.ID,
		arg.PeriodID,
		arg.Kind,
		arg.Status,
		arg.LastAttemptAt,
		arg.NextRetryAt,
		arg.IsFinal,
		arg.ErrorMsg,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

const listPendingOrWaitingPeriodStates = `SELECT ` + periodStateColumns + `
FROM period_states
WHERE status IN ('pending', 'waiting')
ORDER BY period_id, kind`

func (q *Queries) ListPendingOrWaitingPeriodStates(ctx context.Context) ([]PeriodState, error) {
	return q.listPeriodStates(ctx, listPendingOrWaitingPeriodStates)
}

const listNonSuccessPeriodStates = `SELECT ` + periodStateColumns + `
FROM period_states
WHERE status <> 'success'
ORDER BY period_id, kind`

func (q *Queries) ListNonSuccessPeriodStates(ctx context.Context) ([]PeriodState, error) {
	return q.listPeriodStates(ctx, listNonSuccessPeriodStates)
}

const listPeriodStatesByKind = `SELECT ` + periodStateColumns + `
FROM period_states
WHERE kind = $1
ORDER BY period_id`

func (q *Queries) ListPeriodStatesByKind(ctx context.Context, kind string) ([]PeriodState, error) {
	return q.listPeriodStates(ctx, listPeriodStatesByKind, kind)
}

const listPeriodStatesInRange = `SELECT ` + periodStateColumns + `
FROM period_states
WHERE kind = $1 AND period_id BETWEEN $2 AND $3
ORDER BY period_id`

// ListPeriodStatesInRange lists entries of a kind whose identifiers sort between from and to.
func (q *Queries) ListPeriodStatesInRange(ctx context.Context, kind, from, to string) ([]PeriodState, error) {
	return q.listPeriodStates(ctx, listPeriodStatesInRange, kind, from, to)
}

const markPeriodFinal = `UPDATE period_states
SET is_final = TRUE, updated_at = $1
WHERE period_id = $2 AND kind = $3`

// MarkPeriodFinal reports whether an entry was updated.
func (q *Queries) MarkPeriodFinal(ctx context.Context, updatedAt time.Time, periodID, kind string) (bool, error) {
	res, err := q.db.ExecContext(ctx, markPeriodFinal, updatedAt, periodID, kind)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

const resetPeriodState = `INSERT INTO period_states (` + periodStateColumns + `)
VALUES ($1, $2, $3, 'pending', NULL, NULL, FALSE, NULL, $4, $4)
ON CONFLICT (period_id, kind) DO UPDATE SET
    status = 'pending',
    last_attempt_at = NULL,
    next_retry_at = NULL,
    is_final = FALSE,
    error_msg = NULL,
    updated_at = excluded.updated_at`

// ResetPeriodState puts an entry (creating it if needed) back to a never-attempted Pending state.
func (q *Queries) ResetPeriodState(ctx context.Context, id uuid.UUID, periodID, kind string, now time.Time) error {
	_, err := q.db.ExecContext(ctx, resetPeriodState, id, periodID, kind, now)
	return err
}
