package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/db/queries"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/period"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/status"
)

// DBRegistry is the SQL-backed Registry. It works on both storage dialects.
type DBRegistry struct {
	queries *queries.Queries
	now     func() time.Time
}

// Option configures a DBRegistry.
type Option func(*DBRegistry)

// WithClock overrides the clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *DBRegistry) {
		r.now = now
	}
}

// NewDBRegistry creates a registry over db, which may be a pool or a transaction.
func NewDBRegistry(db queries.DBTX, opts ...Option) *DBRegistry {
	r := &DBRegistry{
		queries: queries.New(db),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WithTx returns a registry whose statements run inside tx.
func (r *DBRegistry) WithTx(tx *sql.Tx) Registry {
	return &DBRegistry{
		queries: r.queries.WithTx(tx),
		now:     r.now,
	}
}

func (r *DBRegistry) GetByPeriod(ctx context.Context, periodID string, kind period.Kind) (*status.Entry, error) {
	row, err := r.queries.GetPeriodState(ctx, periodID, string(kind))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s (%s)", ErrPeriodNotFound, periodID, kind)
		}
		return nil, err
	}
	return rowToEntry(row), nil
}

func (r *DBRegistry) Upsert(ctx context.Context, entry *status.Entry) error {
	if err := validateEntry(entry); err != nil {
		return err
	}

	now := r.now().UTC()
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	if entry.UpdatedAt.IsZero() {
		entry.UpdatedAt = now
	}

	return r.queries.UpsertPeriodState(ctx, entryToParams(entry))
}

func (r *DBRegistry) RegisterPending(ctx context.Context, periodID string, kind period.Kind) (bool, error) {
	if !kind.Valid() {
		return false, fmt.Errorf("invalid period kind %q", kind)
	}
	entry := status.NewPending(periodID, kind, r.now().UTC())
	return r.queries.InsertPeriodStateIfAbsent(ctx, entryToParams(entry))
}

func (r *DBRegistry) ListPendingOrWaiting(ctx context.Context) ([]*status.Entry, error) {
	return collect(r.queries.ListPendingOrWaitingPeriodStates(ctx))
}

func (r *DBRegistry) ListNonSuccess(ctx context.Context) ([]*status.Entry, error) {
	return collect(r.queries.ListNonSuccessPeriodStates(ctx))
}

func (r *DBRegistry) ListByKind(ctx context.Context, kind period.Kind) ([]*status.Entry, error) {
	return collect(r.queries.ListPeriodStatesByKind(ctx, string(kind)))
}

func (r *DBRegistry) ListInRange(ctx context.Context, kind period.Kind, from, to string) ([]*status.Entry, error) {
	return collect(r.queries.ListPeriodStatesInRange(ctx, string(kind), from, to))
}

func (r *DBRegistry) MarkFinal(ctx context.Context, periodID string, kind period.Kind) error {
	if kind != period.KindWeekly {
		return ErrFinalNotWeekly
	}
	updated, err := r.queries.MarkPeriodFinal(ctx, r.now().UTC(), periodID, string(kind))
	if err != nil {
		return err
	}
	if !updated {
		return fmt.Errorf("%w: %s (%s)", ErrPeriodNotFound, periodID, kind)
	}
	return nil
}

func (r *DBRegistry) Reset(ctx context.Context, periodID string, kind period.Kind) error {
	if !kind.Valid() {
		return fmt.Errorf("invalid period kind %q", kind)
	}
	return r.queries.ResetPeriodState(ctx, uuid.New(), periodID, string(kind), r.now().UTC())
}

func validateEntry(entry *status.Entry) error {
	if entry == nil {
		return fmt.Errorf("entry is required")
	}
	if entry.PeriodID == "" {
		return fmt.Errorf("period identifier is required")
	}
	if !entry.Kind.Valid() {
		return fmt.Errorf("invalid period kind %q", entry.Kind)
	}
	if !entry.Status.Valid() {
		return fmt.Errorf("invalid status %q", entry.Status)
	}
	if entry.IsFinal && entry.Kind != period.KindWeekly {
		return ErrFinalNotWeekly
	}
	return nil
}

func collect(rows []queries.PeriodState, err error) ([]*status.Entry, error) {
	if err != nil {
		return nil, err
	}
	entries := make([]*status.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, rowToEntry(row))
	}
	return entries, nil
}

// rowToEntry converts a period_states row to a registry entry
func rowToEntry(row queries.PeriodState) *status.Entry {
	entry := &status.Entry{
		ID:        row.ID,
		PeriodID:  row.PeriodID,
		Kind:      period.Kind(row.Kind),
		Status:    status.Status(row.Status),
		IsFinal:   row.IsFinal,
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
	if row.LastAttemptAt.Valid {
		t := row.LastAttemptAt.Time.UTC()
		entry.LastAttemptAt = &t
	}
	if row.NextRetryAt.Valid {
		t := row.NextRetryAt.Time.UTC()
		entry.NextRetryAt = &t
	}
	if row.ErrorMsg.Valid {
		entry.ErrorMessage = row.ErrorMsg.String
	}
	return entry
}

// entryToParams converts a registry entry to upsert parameters, normalizing times to UTC
func entryToParams(entry *status.Entry) queries.UpsertPeriodStateParams {
	params := queries.UpsertPeriodStateParams{
		ID:        entry.ID,
		PeriodID:  entry.PeriodID,
		Kind:      string(entry.Kind),
		Status:    string(entry.Status),
		IsFinal:   entry.IsFinal,
		CreatedAt: entry.CreatedAt.UTC(),
		UpdatedAt: entry.UpdatedAt.UTC(),
	}
	if entry.LastAttemptAt != nil {
		params.LastAttemptAt = sql.NullTime{Time: entry.LastAttemptAt.UTC(), Valid: true}
	}
	if entry.NextRetryAt != nil {
		params.NextRetryAt = sql.NullTime{Time: entry.NextRetryAt.UTC(), Valid: true}
	}
	if entry.ErrorMessage != "" {
		params.ErrorMsg = sql.NullString{String: entry.ErrorMessage, Valid: true}
	}
	return params
}
