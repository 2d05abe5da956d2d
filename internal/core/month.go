package core

import (
	"fmt"
	"regexp"
	"time"
)

// MonthYear is a calendar month in canonical "YYYY-MM" form. The string
// representation sorts chronologically, so plain < and > comparisons are
// safe anywhere months need ordering.
type MonthYear string

var monthYearRe = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// ParseMonthYear validates a "YYYY-MM" string.
func ParseMonthYear(s string) (MonthYear, error) {
	if !monthYearRe.MatchString(s) {
		return "", fmt.Errorf("%w: invalid month %q, want YYYY-MM", ErrInvalidArgument, s)
	}
	return MonthYear(s), nil
}

// MonthYearOf returns the MonthYear containing t.
func MonthYearOf(t time.Time) MonthYear {
	return MonthYear(t.Format("2006-01"))
}

func (m MonthYear) String() string { return string(m) }

// IsZero reports whether the month is unset.
func (m MonthYear) IsZero() bool { return m == "" }

func (m MonthYear) parts() (year, month int) {
	y, _ := time.Parse("2006-01", string(m))
	return y.Year(), int(y.Month())
}

// AddMonths returns the month n calendar months after m (n may be negative).
func (m MonthYear) AddMonths(n int) MonthYear {
	year, month := m.parts()
	total := year*12 + (month - 1) + n
	return MonthYear(fmt.Sprintf("%04d-%02d", total/12, total%12+1))
}

// Prev returns the previous calendar month.
func (m MonthYear) Prev() MonthYear { return m.AddMonths(-1) }

// Next returns the following calendar month.
func (m MonthYear) Next() MonthYear { return m.AddMonths(1) }

// MonthsBetween returns the signed number of calendar months from m to other.
// MonthsBetween("2026-02", "2026-04") == 2.
func MonthsBetween(m, other MonthYear) int {
	ay, am := m.parts()
	by, bm := other.parts()
	return (by-ay)*12 + (bm - am)
}

// TodayContext is "today" in the user's timezone, supplied by the caller.
// The engine never reads the system clock: a user at 22:00 local time may
// already be on the next UTC day, and month boundaries must follow the
// user's calendar, not the server's.
type TodayContext struct {
	Month MonthYear
	Day   int // 1-31
}

// TodayIn builds a TodayContext for the current instant in loc.
func TodayIn(now time.Time, loc *time.Location) TodayContext {
	local := now.In(loc)
	return TodayContext{Month: MonthYearOf(local), Day: local.Day()}
}
