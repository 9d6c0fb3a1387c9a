package domain

import (
	"fmt"
	"time"
)

// DayLayout is the calendar date layout used for task dates.
const DayLayout = "2006-01-02"

// Day is a calendar date in ISO "YYYY-MM-DD" form.
// The zero value ("") means "no date".
// Days compare correctly with plain string comparison.
type Day string

// DayOf returns the calendar day of t in t's location.
func DayOf(t time.Time) Day {
	return Day(t.Format(DayLayout))
}

// ParseDay parses and normalizes an ISO date string.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return DayOf(t), nil
}

// IsZero returns true if no date is set.
func (d Day) IsZero() bool {
	return d == ""
}

// IsValid returns true if d is a well-formed calendar date.
func (d Day) IsValid() bool {
	_, err := time.Parse(DayLayout, string(d))
	return err == nil
}

// Before reports whether d is strictly before other.
func (d Day) Before(other Day) bool {
	return d < other
}

// Time returns midnight of d in loc.
func (d Day) Time(loc *time.Location) time.Time {
	t, err := time.ParseInLocation(DayLayout, string(d), loc)
	if err != nil {
		return time.Time{}
	}
	return t
}

// AddDays returns the day n days after d.
func (d Day) AddDays(n int) Day {
	t, err := time.Parse(DayLayout, string(d))
	if err != nil {
		return d
	}
	return DayOf(t.AddDate(0, 0, n))
}

// Weekday returns the day of the week of d.
func (d Day) Weekday() time.Weekday {
	return d.Time(time.UTC).Weekday()
}

// String returns the ISO form.
func (d Day) String() string {
	return string(d)
}
