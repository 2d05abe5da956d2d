package core

import (
	"testing"
	"time"
)

func TestParseMonthYear(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"2026-01", true},
		{"2026-12", true},
		{"1999-02", true},
		{"2026-13", false},
		{"2026-00", false},
		{"2026-1", false},
		{"202601", false},
		{"2026-01-15", false},
		{"", false},
	}
	for _, tc := range cases {
		_, err := ParseMonthYear(tc.in)
		if tc.ok && err != nil {
			t.Errorf("ParseMonthYear(%q) unexpected error: %v", tc.in, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("ParseMonthYear(%q) expected error", tc.in)
		}
	}
}

func TestMonthYearAddMonths(t *testing.T) {
	cases := []struct {
		start MonthYear
		n     int
		want  MonthYear
	}{
		{"2026-01", 1, "2026-02"},
		{"2026-12", 1, "2027-01"},
		{"2026-01", -1, "2025-12"},
		{"2026-02", 11, "2027-01"},
		{"2026-02", 0, "2026-02"},
		{"2026-06", -18, "2024-12"},
		{"2026-01", 24, "2028-01"},
	}
	for _, tc := range cases {
		if got := tc.start.AddMonths(tc.n); got != tc.want {
			t.Errorf("%s.AddMonths(%d) = %s, want %s", tc.start, tc.n, got, tc.want)
		}
	}
}

func TestMonthYearPrevNext(t *testing.T) {
	if got := MonthYear("2026-01").Prev(); got != "2025-12" {
		t.Errorf("Prev() = %s, want 2025-12", got)
	}
	if got := MonthYear("2025-12").Next(); got != "2026-01" {
		t.Errorf("Next() = %s, want 2026-01", got)
	}
}

func TestMonthsBetween(t *testing.T) {
	cases := []struct {
		a, b MonthYear
		want int
	}{
		{"2026-02", "2026-04", 2},
		{"2026-04", "2026-02", -2},
		{"2025-11", "2026-02", 3},
		{"2026-03", "2026-03", 0},
	}
	for _, tc := range cases {
		if got := MonthsBetween(tc.a, tc.b); got != tc.want {
			t.Errorf("MonthsBetween(%s, %s) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestTodayIn(t *testing.T) {
	// 01:30 UTC on Feb 4th is still Feb 3rd in Sao Paulo (UTC-3).
	loc := time.FixedZone("america-sao_paulo", -3*60*60)
	now := time.Date(2026, 2, 4, 1, 30, 0, 0, time.UTC)

	today := TodayIn(now, loc)
	if today.Month != "2026-02" || today.Day != 3 {
		t.Errorf("TodayIn() = %+v, want month 2026-02 day 3", today)
	}
}
