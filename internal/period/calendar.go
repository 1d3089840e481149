package period

import (
	"fmt"
	"time"
)

// DefaultOffset is the fixed UTC offset the upstream API expects (Moscow time).
const DefaultOffset = "+03:00"

// endParamLayout formats range ends with an explicit end-of-day clock and offset.
const endParamLayout = "2006-01-02T15:04:05Z07:00"

// Range is an inclusive date range expressed in the calendar's fixed offset.
type Range struct {
	Start time.Time
	End   time.Time
}

// StartParam formats the start of the range as a date without a time component.
func (r Range) StartParam() string {
	return r.Start.Format(DayLayout)
}

// EndParam formats the end of the range with an explicit end-of-day time and offset,
// e.g. 2024-03-10T23:59:59+03:00.
func (r Range) EndParam() string {
	return r.End.Format(endParamLayout)
}

// StartDate is the first calendar day of the range (YYYY-MM-DD).
func (r Range) StartDate() string {
	return r.Start.Format(DayLayout)
}

// EndDate is the last calendar day of the range (YYYY-MM-DD).
func (r Range) EndDate() string {
	return r.End.Format(DayLayout)
}

// ContainsDate reports whether a YYYY-MM-DD date lies inside the range.
func (r Range) ContainsDate(date string) bool {
	return date >= r.StartDate() && date <= r.EndDate()
}

func (r Range) String() string {
	return r.StartParam() + ".." + r.EndParam()
}

// Calendar resolves period identifiers into concrete ranges in a fixed UTC offset.
// System-local time is never consulted.
type Calendar struct {
	loc *time.Location
}

// NewCalendar creates a calendar for an offset such as "+03:00" or "-05:00".
// An empty offset selects DefaultOffset.
func NewCalendar(offset string) (*Calendar, error) {
	if offset == "" {
		offset = DefaultOffset
	}
	t, err := time.Parse("-07:00", offset)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone offset %q: %w", offset, err)
	}
	_, seconds := t.Zone()
	return &Calendar{loc: time.FixedZone("UTC"+offset, seconds)}, nil
}

// MustCalendar is like NewCalendar but panics on an invalid offset.
func MustCalendar(offset string) *Calendar {
	c, err := NewCalendar(offset)
	if err != nil {
		panic(err)
	}
	return c
}

// Location returns the fixed-offset location of the calendar.
func (c *Calendar) Location() *time.Location {
	return c.loc
}

// Today returns the calendar date of now in the calendar's offset, at midnight.
func (c *Calendar) Today(now time.Time) time.Time {
	local := now.In(c.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, c.loc)
}

// CurrentWeek returns the week containing now in the calendar's offset.
func (c *Calendar) CurrentWeek(now time.Time) Week {
	return WeekOf(now.In(c.loc))
}

// DayRange returns the range covering a single day identifier.
func (c *Calendar) DayRange(dayID string) (Range, error) {
	d, err := ParseDay(dayID)
	if err != nil {
		return Range{}, err
	}
	return c.span(d, d), nil
}

// WeekRange returns the Monday-Sunday range of a week.
func (c *Calendar) WeekRange(w Week) Range {
	return c.span(w.Monday(), w.Sunday())
}

func (c *Calendar) span(first, last time.Time) Range {
	return Range{
		Start: time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, c.loc),
		End:   time.Date(last.Year(), last.Month(), last.Day(), 23, 59, 59, 0, c.loc),
	}
}
