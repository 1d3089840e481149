package sync

import (
	"fmt"

	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/period"
)

// Task is one unit of sync work: a period, its kind and its concrete range.
type Task struct {
	PeriodID string
	Kind     period.Kind
	Range    period.Range
	// WeekID is the week the period belongs to (the period itself for weekly tasks).
	WeekID string
}

func (t Task) String() string {
	return fmt.Sprintf("%s(%s)", t.PeriodID, t.Kind)
}

// NewDailyTask builds the task for a YYYY-MM-DD day.
func NewDailyTask(cal *period.Calendar, dayID string) (*Task, error) {
	rng, err := cal.DayRange(dayID)
	if err != nil {
		return nil, err
	}
	day, _ := period.ParseDay(dayID)
	return &Task{
		PeriodID: dayID,
		Kind:     period.KindDaily,
		Range:    rng,
		WeekID:   period.WeekID(day),
	}, nil
}

// NewWeeklyTask builds the task for a week.
func NewWeeklyTask(cal *period.Calendar, w period.Week) *Task {
	return &Task{
		PeriodID: w.ID(),
		Kind:     period.KindWeekly,
		Range:    cal.WeekRange(w),
		WeekID:   w.ID(),
	}
}

// NewTask builds a task from a period identifier, inferring the kind from its shape.
func NewTask(cal *period.Calendar, periodID string) (*Task, error) {
	if period.IsWeekID(periodID) {
		w, err := period.ParseWeek(periodID)
		if err != nil {
			return nil, err
		}
		return NewWeeklyTask(cal, w), nil
	}
	return NewDailyTask(cal, periodID)
}

// Exclusions is a set of period identifiers a scheduling pass must not return again.
type Exclusions map[string]struct{}

// Add excludes periodID for the rest of the pass.
func (e Exclusions) Add(periodID string) {
	e[periodID] = struct{}{}
}

// Has reports whether periodID is excluded. A nil set excludes nothing.
func (e Exclusions) Has(periodID string) bool {
	_, ok := e[periodID]
	return ok
}
