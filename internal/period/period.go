// Package period names the days and weeks the sync engine works on.
//
// A day is identified as YYYY-MM-DD. A week is identified as YYYY-Www and runs
// Monday through Sunday. Week 1 of a year is the week that contains the first
// Monday of that year; days before that Monday belong to the last week of the
// previous year. This is not ISO-8601 week numbering (which anchors on the
// first Thursday) but matches the convention of the upstream reporting API.
package period

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Kind is the granularity of a period.
type Kind string

const (
	// KindDaily is a single calendar day backed by the frequently refreshed, non-final report.
	KindDaily Kind = "daily"
	// KindWeekly is a Monday-Sunday week backed by the authoritative weekly report.
	KindWeekly Kind = "weekly"
)

// DayLayout is the layout of day identifiers and of stored record dates.
const DayLayout = "2006-01-02"

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindDaily || k == KindWeekly
}

func (k Kind) String() string {
	return string(k)
}

var weekIDPattern = regexp.MustCompile(`^(\d{4})-W(\d{2})$`)

// Week is a week number within a week-year.
type Week struct {
	Year   int
	Number int
}

// ID returns the YYYY-Www identifier of the week.
func (w Week) ID() string {
	return fmt.Sprintf("%04d-W%02d", w.Year, w.Number)
}

func (w Week) String() string {
	return w.ID()
}

// Monday returns the first day of the week as a UTC calendar date.
func (w Week) Monday() time.Time {
	return firstMonday(w.Year).AddDate(0, 0, (w.Number-1)*7)
}

// Sunday returns the last day of the week as a UTC calendar date.
func (w Week) Sunday() time.Time {
	return w.Monday().AddDate(0, 0, 6)
}

// Prev returns the week immediately before w.
func (w Week) Prev() Week {
	return WeekOf(w.Monday().AddDate(0, 0, -7))
}

// Before reports whether w starts before o.
func (w Week) Before(o Week) bool {
	if w.Year != o.Year {
		return w.Year < o.Year
	}
	return w.Number < o.Number
}

// DayIDs returns the identifiers of the seven days of the week, Monday first.
func (w Week) DayIDs() []string {
	monday := w.Monday()
	ids := make([]string, 0, 7)
	for i := 0; i < 7; i++ {
		ids = append(ids, monday.AddDate(0, 0, i).Format(DayLayout))
	}
	return ids
}

// WeekOf returns the week containing the calendar date of t.
// Only the year, month and day of t in its own location are considered.
func WeekOf(t time.Time) Week {
	d := dateOf(t)
	year := d.Year()
	start := firstMonday(year)
	if d.Before(start) {
		year--
		start = firstMonday(year)
	}
	days := int(d.Sub(start).Hours() / 24)
	return Week{Year: year, Number: days/7 + 1}
}

// WeekID returns the identifier of the week containing t.
func WeekID(t time.Time) string {
	return WeekOf(t).ID()
}

// DayID returns the identifier of the calendar date of t.
func DayID(t time.Time) string {
	return t.Format(DayLayout)
}

// WeeksInYear returns how many weeks the week-year has (52 or 53).
func WeeksInYear(year int) int {
	days := int(firstMonday(year + 1).Sub(firstMonday(year)).Hours() / 24)
	return days / 7
}

// ParseWeek parses a YYYY-Www identifier.
func ParseWeek(id string) (Week, error) {
	m := weekIDPattern.FindStringSubmatch(id)
	if m == nil {
		return Week{}, fmt.Errorf("invalid week identifier %q", id)
	}
	year, _ := strconv.Atoi(m[1])
	number, _ := strconv.Atoi(m[2])
	if number < 1 || number > WeeksInYear(year) {
		return Week{}, fmt.Errorf("week %d out of range for year %d", number, year)
	}
	return Week{Year: year, Number: number}, nil
}

// ParseDay parses a YYYY-MM-DD identifier into a UTC calendar date.
func ParseDay(id string) (time.Time, error) {
	d, err := time.Parse(DayLayout, id)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day identifier %q: %w", id, err)
	}
	return d, nil
}

// IsWeekID reports whether id looks like a week identifier.
func IsWeekID(id string) bool {
	return weekIDPattern.MatchString(id)
}

// firstMonday returns the first Monday of year as a UTC date.
func firstMonday(year int) time.Time {
	jan1 := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(time.Monday) - int(jan1.Weekday()) + 7) % 7
	return jan1.AddDate(0, 0, offset)
}

// dateOf drops the clock and the location of t, keeping its calendar date.
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
