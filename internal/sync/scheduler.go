package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/period"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/status"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/sync/state"
)

// Scheduler picks the next period to synchronize from registry state and wall-clock time.
// It holds no state of its own; a nil task means there is nothing to do.
//
//go:generate mockgen -destination=mocks/mock_scheduler.go -package=mocks github.com/NikolayVerchenko/wb-analytics-sub001/internal/sync Scheduler
type Scheduler interface {
	// NextForeground returns the most urgent day of the current week.
	NextForeground(ctx context.Context, now time.Time, excluded Exclusions) (*Task, error)
	// NextBackground returns the most recent unfinished past week.
	NextBackground(ctx context.Context, now time.Time, excluded Exclusions) (*Task, error)
}

type defaultScheduler struct {
	registry state.Registry
	calendar *period.Calendar
	minWeek  period.Week
	checker  eligibilityChecker
}

// NewScheduler creates a scheduler. Background scheduling never goes before the week containing minDate.
func NewScheduler(
	registry state.Registry, calendar *period.Calendar, minDate time.Time, pendingLease time.Duration,
) Scheduler {
	return &defaultScheduler{
		registry: registry,
		calendar: calendar,
		minWeek:  period.WeekOf(minDate),
		checker:  eligibilityChecker{pendingLease: pendingLease},
	}
}

func (s *defaultScheduler) NextForeground(ctx context.Context, now time.Time, excluded Exclusions) (*Task, error) {
	week := s.calendar.CurrentWeek(now)
	final, err := s.weekFinal(ctx, week.ID())
	if err != nil || final {
		return nil, err
	}

	monday := week.Monday().Format(period.DayLayout)
	today := period.DayID(s.calendar.Today(now))

	// Retry-due entries of this week, oldest attempt first.
	open, err := s.registry.ListPendingOrWaiting(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list open periods: %w", err)
	}
	var oldest *status.Entry
	for _, entry := range open {
		if entry.Kind != period.KindDaily || entry.PeriodID < monday || entry.PeriodID > today {
			continue
		}
		if excluded.Has(entry.PeriodID) || !s.checker.dueForRetry(entry, now) {
			continue
		}
		if oldest == nil || olderAttempt(entry, oldest) {
			oldest = entry
		}
	}
	if oldest != nil {
		return NewDailyTask(s.calendar, oldest.PeriodID)
	}

	// Walk back from today to Monday.
	for day := s.calendar.Today(now); ; day = day.AddDate(0, 0, -1) {
		id := period.DayID(day)
		if id < monday {
			break
		}
		if excluded.Has(id) {
			continue
		}
		entry, err := s.lookup(ctx, id, period.KindDaily)
		if err != nil {
			return nil, err
		}
		if s.checker.dayNeedsSync(entry, now) {
			return NewDailyTask(s.calendar, id)
		}
	}
	return nil, nil
}

func (s *defaultScheduler) NextBackground(ctx context.Context, now time.Time, excluded Exclusions) (*Task, error) {
	current := s.calendar.CurrentWeek(now)
	last := current.Prev()
	if last.Before(s.minWeek) {
		return nil, nil
	}

	entries, err := s.registry.ListByKind(ctx, period.KindWeekly)
	if err != nil {
		return nil, fmt.Errorf("failed to list weekly periods: %w", err)
	}
	byID := make(map[string]*status.Entry, len(entries))
	for _, entry := range entries {
		byID[entry.PeriodID] = entry
	}

	eligible := func(w period.Week) bool {
		if w == current || excluded.Has(w.ID()) {
			return false
		}
		return s.checker.weekNeedsSync(byID[w.ID()], now)
	}

	// Last week first, then everything older, most recent first.
	for w := last; !w.Before(s.minWeek); w = w.Prev() {
		if eligible(w) {
			return NewWeeklyTask(s.calendar, w), nil
		}
	}
	return nil, nil
}

func (s *defaultScheduler) weekFinal(ctx context.Context, weekID string) (bool, error) {
	entry, err := s.lookup(ctx, weekID, period.KindWeekly)
	if err != nil || entry == nil {
		return false, err
	}
	return entry.IsFinal, nil
}

// lookup returns the entry or nil when the period has never been registered.
func (s *defaultScheduler) lookup(ctx context.Context, periodID string, kind period.Kind) (*status.Entry, error) {
	entry, err := s.registry.GetByPeriod(ctx, periodID, kind)
	if errors.Is(err, state.ErrPeriodNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s (%s): %w", periodID, kind, err)
	}
	return entry, nil
}
