package appointment

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// Date is a calendar day with no time-of-day and no zone. It is always taken
// from the wall clock of a timestamp in its own location, so an 00:30 local
// appointment never lands on the previous day the way a UTC conversion would.
type Date struct {
	year  int
	month time.Month
	day   int
}

func NewDate(year int, month time.Month, day int) Date {
	// round-trip through time.Date to normalise overflow like Feb 30
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{year: y, month: m, day: d}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return DateOf(t), nil
}

func (d Date) Year() int { return d.year }
func (d Date) Month() time.Month { return d.month }
func (d Date) Day() int { return d.day }
func (d Date) IsZero() bool { return d.year == 0 && d.month == 0 && d.day == 0 }
func (d Date) Weekday() time.Weekday { return d.Midnight(time.UTC).Weekday() }

// Key is the stable YYYY-MM-DD form used for grouping and lookups.
func (d Date) Key() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.year, int(d.month), d.day)
}

func (d Date) String() string {
	return d.Key()
}

// Midnight returns the start of the day in loc.
func (d Date) Midnight(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, loc)
}

// At returns hour:00 on this day in loc.
func (d Date) At(hour int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.year, d.month, d.day, hour, 0, 0, 0, loc)
}

// AddDays shifts by n calendar days. Computed on UTC midnight so DST
// transitions can never skip or repeat a day.
func (d Date) AddDays(n int) Date {
	return DateOf(d.Midnight(time.UTC).AddDate(0, 0, n))
}

func (d Date) Before(o Date) bool {
	return d.Midnight(time.UTC).Before(o.Midnight(time.UTC))
}

func (d Date) Equal(o Date) bool {
	return d == o
}

// Range returns n consecutive days starting at d.
func (d Date) Range(n int) []Date {
	if n <= 0 {
		return nil
	}
	days := make([]Date, n)
	for i := range days {
		days[i] = d.AddDays(i)
	}
	return days
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.Key()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
