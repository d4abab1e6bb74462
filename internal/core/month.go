package core

import (
	"fmt"
	"time"
)

// Month identifies one calendar month. Its label form ("Jan 2025") is the
// period key used for memory anchors and for the HTTP API's month parameter.
type Month struct {
	Year  int
	Month time.Month
}

const monthLabelLayout = "Jan 2006"

// MonthOf returns the calendar month containing the given instant (UTC).
func MonthOf(t time.Time) Month {
	u := t.UTC()
	return Month{Year: u.Year(), Month: u.Month()}
}

// ParseMonth parses a "Jan 2006" period label.
func ParseMonth(label string) (Month, error) {
	t, err := time.Parse(monthLabelLayout, label)
	if err != nil {
		return Month{}, fmt.Errorf("parse month label %q: %w", label, err)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// Label renders the canonical period label, e.g. "Jan 2025".
func (m Month) Label() string {
	return m.Start().Format(monthLabelLayout)
}

func (m Month) String() string { return m.Label() }

func (m Month) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}

// Start returns UTC midnight on the first day of the month.
func (m Month) Start() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End returns UTC midnight on the last day of the month.
func (m Month) End() time.Time {
	return m.Start().AddDate(0, 1, -1)
}

// Days returns the number of calendar days in the month.
func (m Month) Days() int {
	return m.End().Day()
}

// Prev returns the immediately preceding calendar month. This is calendar
// arithmetic, never an index into a sorted transaction list.
func (m Month) Prev() Month {
	return MonthOf(m.Start().AddDate(0, -1, 0))
}

// AddMonths shifts the month by n (negative for past months).
func (m Month) AddMonths(n int) Month {
	return MonthOf(m.Start().AddDate(0, n, 0))
}

// Contains reports whether the date falls inside this month.
func (m Month) Contains(d Date) bool {
	return d.Year() == m.Year && d.Month() == m.Month
}

func (m Month) MarshalText() ([]byte, error) {
	return []byte(m.Label()), nil
}

func (m *Month) UnmarshalText(b []byte) error {
	parsed, err := ParseMonth(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
