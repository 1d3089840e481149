// Package state contains the period registry: one persisted sync state per (period, kind).
package state

import (
	"context"
	"errors"

	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/period"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/status"
)

var (
	// ErrPeriodNotFound is returned when no entry exists for a (period, kind).
	ErrPeriodNotFound = errors.New("period not found")

	// ErrFinalNotWeekly is returned when a daily entry would be marked final.
	ErrFinalNotWeekly = errors.New("only weekly periods can be final")
)

// Registry provides methods for reading and updating the sync state of periods.
//
//go:generate mockgen -destination=mocks/mock_registry.go -package=mocks github.com/NikolayVerchenko/wb-analytics-sub001/internal/sync/state Registry
type Registry interface {
	// GetByPeriod returns the entry for periodID and kind, or ErrPeriodNotFound.
	GetByPeriod(ctx context.Context, periodID string, kind period.Kind) (*status.Entry, error)
	// Upsert writes entry, keyed by (PeriodID, Kind). An existing final flag is never cleared.
	Upsert(ctx context.Context, entry *status.Entry) error
	// RegisterPending creates a Pending entry if none exists and reports whether it did.
	// Existing entries are left untouched whatever their status.
	RegisterPending(ctx context.Context, periodID string, kind period.Kind) (bool, error)
	// ListPendingOrWaiting lists entries in the Pending or Waiting status.
	ListPendingOrWaiting(ctx context.Context) ([]*status.Entry, error)
	// ListNonSuccess lists every entry whose status is not Success.
	ListNonSuccess(ctx context.Context) ([]*status.Entry, error)
	// ListByKind lists every entry of kind ordered by period identifier.
	ListByKind(ctx context.Context, kind period.Kind) ([]*status.Entry, error)
	// ListInRange lists entries of kind whose identifiers sort between from and to inclusive.
	ListInRange(ctx context.Context, kind period.Kind, from, to string) ([]*status.Entry, error)
	// MarkFinal sets the final flag of a weekly entry.
	MarkFinal(ctx context.Context, periodID string, kind period.Kind) error
	// Reset returns an entry to a never-attempted Pending state and clears its final flag.
	// It is reserved for corruption repair.
	Reset(ctx context.Context, periodID string, kind period.Kind) error
}
