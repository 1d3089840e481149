// Package writer contains the SyncWriter interface and implementations
package writer

import (
	"context"

	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/aggregate"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/period"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/sync/state"
)

//go:generate mockgen -destination=mocks/mock_sync_writer.go -package=mocks -source=writer.go SyncWriter

// SyncData bundles the aggregated records produced by one task.
type SyncData struct {
	Sales   []aggregate.Record
	Returns []aggregate.Record
}

// NewSyncData creates SyncData from aggregator output.
func NewSyncData(sales, returns []aggregate.Record) *SyncData {
	return &SyncData{Sales: sales, Returns: returns}
}

// Empty reports whether there is nothing to write.
func (d *SyncData) Empty() bool {
	return d == nil || (len(d.Sales) == 0 && len(d.Returns) == 0)
}

// RegistryUpdate runs inside the write transaction with a registry bound to it.
// Returning an error rolls back the whole write.
type RegistryUpdate func(ctx context.Context, registry state.Registry) error

// Result summarizes a committed write.
type Result struct {
	// Deleted is the number of stored records removed from the range
	Deleted int64
	// Sales and Returns count the records written to each collection
	Sales   int
	Returns int
	// Skipped counts records dated outside the range, which are not written
	Skipped int
}

// SyncWriter defines the interface needed to persist aggregated period data.
type SyncWriter interface {
	// SaveFinal replaces every stored record in rng, final or temporary, with data marked final.
	SaveFinal(ctx context.Context, data *SyncData, rng period.Range, update RegistryUpdate) (Result, error)
	// SaveTemporary replaces the temporary records in rng with data marked temporary.
	// Final records in rng are kept.
	SaveTemporary(ctx context.Context, data *SyncData, rng period.Range, update RegistryUpdate) (Result, error)
	// ClearRange deletes every stored record in rng.
	ClearRange(ctx context.Context, rng period.Range, update RegistryUpdate) (int64, error)
}
