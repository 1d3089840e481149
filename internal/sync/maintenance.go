package sync

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/aggregate"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/db/queries"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/period"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/status"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/sync/state"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/sync/writer"
)

// DefaultSuspiciousQuantity is the sale quantity above which a record without a size label
// is treated as corrupted.
const DefaultSuspiciousQuantity = 1000

// SuspectScanner finds stored sale records that look corrupted.
type SuspectScanner interface {
	ListSuspiciousSales(ctx context.Context, threshold int64) ([]queries.RecordRow, error)
}

// Maintenance runs the startup recovery and corruption repair sweeps.
type Maintenance struct {
	registry  state.Registry
	writer    writer.SyncWriter
	scanner   SuspectScanner
	calendar  *period.Calendar
	threshold int64
	observer  Observer
	now       func() time.Time
}

// NewMaintenance creates the maintenance sweeps. A non-positive threshold uses DefaultSuspiciousQuantity.
func NewMaintenance(
	registry state.Registry,
	w writer.SyncWriter,
	scanner SuspectScanner,
	calendar *period.Calendar,
	threshold int64,
	observer Observer,
) *Maintenance {
	if threshold <= 0 {
		threshold = DefaultSuspiciousQuantity
	}
	if observer == nil {
		observer = NopObserver{}
	}
	return &Maintenance{
		registry:  registry,
		writer:    w,
		scanner:   scanner,
		calendar:  calendar,
		threshold: threshold,
		observer:  observer,
		now:       time.Now,
	}
}

// WithClock overrides the wall clock and returns m.
func (m *Maintenance) WithClock(now func() time.Time) *Maintenance {
	m.now = now
	return m
}

// Recover makes every non-Success entry immediately eligible again: it becomes Waiting with
// a retry time of now and no error. It returns the number of recovered entries.
func (m *Maintenance) Recover(ctx context.Context) (int, error) {
	entries, err := m.registry.ListNonSuccess(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list unfinished periods: %w", err)
	}

	now := m.now()
	recovered := 0
	for _, entry := range entries {
		entry.Status = status.StatusWaiting
		entry.NextRetryAt = &now
		entry.ErrorMessage = ""
		entry.UpdatedAt = now
		if err := m.registry.Upsert(ctx, entry); err != nil {
			return recovered, fmt.Errorf("failed to recover %s (%s): %w", entry.PeriodID, entry.Kind, err)
		}
		recovered++
		m.observer.Observe(ctx, Event{Type: EventPeriodRecovered, Time: now, PeriodID: entry.PeriodID})
	}
	return recovered, nil
}

// RepairCorruption clears every week holding a suspicious sale record and resets its registry
// entries to Pending so the normal scheduling rules fetch it again. It returns the repaired week IDs.
func (m *Maintenance) RepairCorruption(ctx context.Context) ([]string, error) {
	suspects, err := m.scanner.ListSuspiciousSales(ctx, m.threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to scan for corrupted records: %w", err)
	}
	if len(suspects) == 0 {
		return nil, nil
	}

	perWeek := make(map[period.Week]int)
	for _, row := range suspects {
		day, err := period.ParseDay(aggregate.NormalizeDate(row.Date))
		if err != nil {
			return nil, fmt.Errorf("corrupted record %d has an invalid date: %w", row.ID, err)
		}
		perWeek[period.WeekOf(day)]++
	}

	weeks := make([]period.Week, 0, len(perWeek))
	for w := range perWeek {
		weeks = append(weeks, w)
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].Before(weeks[j]) })

	repaired := make([]string, 0, len(weeks))
	for _, w := range weeks {
		deleted, err := m.writer.ClearRange(ctx, m.calendar.WeekRange(w), resetWeek(w))
		if err != nil {
			return repaired, fmt.Errorf("failed to repair %s: %w", w.ID(), err)
		}
		repaired = append(repaired, w.ID())
		m.observer.Observe(ctx, Event{
			Type: EventWeekRepaired, Time: m.now(), PeriodID: w.ID(), Records: int(deleted),
		})
	}
	return repaired, nil
}

// resetWeek resets the weekly entry and any daily entries of the week.
func resetWeek(w period.Week) writer.RegistryUpdate {
	return func(ctx context.Context, registry state.Registry) error {
		if err := registry.Reset(ctx, w.ID(), period.KindWeekly); err != nil {
			return err
		}
		for _, dayID := range w.DayIDs() {
			_, err := registry.GetByPeriod(ctx, dayID, period.KindDaily)
			if errors.Is(err, state.ErrPeriodNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			if err := registry.Reset(ctx, dayID, period.KindDaily); err != nil {
				return err
			}
		}
		return nil
	}
}
