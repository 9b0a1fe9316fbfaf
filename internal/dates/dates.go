package dates

import (
	"errors"
	"fmt"
	"time"
)

// Layout is the only accepted textual form of a Date.
const Layout = "2006-01-02"

// ErrInvalidDateFormat is returned by Parse for anything that is not a real YYYY-MM-DD date.
var ErrInvalidDateFormat = errors.New("invalid date format, expected YYYY-MM-DD")

// Date is a calendar day with no time-of-day or timezone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// Of returns the calendar date of t in t's own location.
func Of(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Yesterday returns the day before now's date, in now's location.
func Yesterday(now time.Time) Date {
	return AddDays(Of(now), -1)
}

// Parse reads a strict YYYY-MM-DD string. Out-of-range days such as 2025-02-30 are rejected.
func Parse(s string) (Date, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, s)
	}
	return Of(t), nil
}

// AddDays returns d shifted by n days (n may be negative).
func AddDays(d Date, n int) Date {
	return Of(time.Date(d.Year, d.Month, d.Day+n, 0, 0, 0, 0, time.UTC))
}

// Format renders d as YYYY-MM-DD.
func Format(d Date) string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

func (d Date) String() string { return Format(d) }

// Time returns midnight of d in loc.
func (d Date) Time(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

func (d Date) Equal(o Date) bool { return d == o }

func (d Date) Before(o Date) bool {
	return d.Time(time.UTC).Before(o.Time(time.UTC))
}

func (d Date) After(o Date) bool { return o.Before(d) }

const secondsPerDay = 24 * 60 * 60

// DaysBetween returns the signed number of days from a to b.
func DaysBetween(a, b Date) int {
	return int((b.Time(time.UTC).Unix() - a.Time(time.UTC).Unix()) / secondsPerDay)
}
