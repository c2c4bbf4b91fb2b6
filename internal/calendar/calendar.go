// Package calendar holds the date and clock-time primitives shared by the
// scheduling engine: calendar dates without a time component, times of day
// without a date, and half-open time intervals.
package calendar

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidInput = errors.New("invalid date or time input")

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Date is a calendar date with no time-of-day component, normalized to UTC
// midnight so values compare with ==.
type Date struct {
	t time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: parse date %q", ErrInvalidInput, s)
	}
	return Date{t: t}, nil
}

// DateOf truncates t to its calendar date in UTC.
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return NewDate(y, m, d)
}

func Today() Date {
	return DateOf(time.Now())
}

func (d Date) String() string        { return d.t.Format(DateLayout) }
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }
func (d Date) Time() time.Time       { return d.t }
func (d Date) IsZero() bool          { return d.t.IsZero() }

func (d Date) Before(other Date) bool { return d.t.Before(other.t) }
func (d Date) After(other Date) bool  { return d.t.After(other.t) }

func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

// At combines the date with a time of day into an absolute UTC instant.
func (d Date) At(tod TimeOfDay) time.Time {
	return d.t.Add(time.Duration(tod) * time.Minute)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return fmt.Errorf("%w: date must be a JSON string", ErrInvalidInput)
	}
	parsed, err := ParseDate(string(b[1 : len(b)-1]))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// TimeOfDay is a clock time expressed as minutes since midnight. The wire
// format is HH:MM.
type TimeOfDay int

// ParseTimeOfDay parses an HH:MM string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return 0, fmt.Errorf("%w: parse time %q", ErrInvalidInput, s)
	}
	return TimeOfDay(t.Hour()*60 + t.Minute()), nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

func (t TimeOfDay) Valid() bool {
	return t >= 0 && t < 24*60
}

func (t TimeOfDay) Add(d time.Duration) TimeOfDay {
	return t + TimeOfDay(d/time.Minute)
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

func (t *TimeOfDay) UnmarshalJSON(b []byte) error {
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return fmt.Errorf("%w: time must be a JSON string", ErrInvalidInput)
	}
	parsed, err := ParseTimeOfDay(string(b[1 : len(b)-1]))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Interval is a half-open time window [Start, End) within a single day.
type Interval struct {
	Start TimeOfDay
	End   TimeOfDay
}

func (iv Interval) Valid() bool {
	return iv.Start.Valid() && iv.End.Valid() && iv.Start < iv.End
}

// Overlaps reports whether two half-open intervals intersect. Back-to-back
// intervals do not overlap.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start < other.End && other.Start < iv.End
}

func (iv Interval) String() string {
	return iv.Start.String() + "-" + iv.End.String()
}
