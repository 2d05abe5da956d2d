package core

import "testing"

func TestEndMonth(t *testing.T) {
	if got := EndMonth("2026-02", 3); got != "2026-04" {
		t.Errorf("EndMonth(2026-02, 3) = %s, want 2026-04", got)
	}
	if got := EndMonth("2025-11", 4); got != "2026-02" {
		t.Errorf("EndMonth(2025-11, 4) = %s, want 2026-02", got)
	}
}

func TestInstallmentNumberForMonth(t *testing.T) {
	tests := []struct {
		start, month MonthYear
		want         int
	}{
		{"2026-02", "2026-02", 1},
		{"2026-02", "2026-04", 3},
		{"2025-11", "2026-01", 3},
		{"2026-02", "2026-01", 0},
	}
	for _, tt := range tests {
		if got := InstallmentNumberForMonth(tt.start, tt.month); got != tt.want {
			t.Errorf("InstallmentNumberForMonth(%s, %s) = %d, want %d", tt.start, tt.month, got, tt.want)
		}
	}
}

func TestDebtVisibleInMonth(t *testing.T) {
	t.Run("non-negotiated always visible", func(t *testing.T) {
		d := &Debt{Name: "Solta"}
		for _, m := range []MonthYear{"2020-01", "2026-06", "2030-12"} {
			if !d.VisibleInMonth(m) {
				t.Errorf("non-negotiated debt hidden in %s", m)
			}
		}
	})

	t.Run("active within window only", func(t *testing.T) {
		d := negotiatedDebt(3, 1, DebtStatusActive)
		tests := []struct {
			month MonthYear
			want  bool
		}{
			{"2025-12", false},
			{"2026-01", true},
			{"2026-02", true},
			{"2026-03", true},
			{"2026-04", false},
		}
		for _, tt := range tests {
			if got := d.VisibleInMonth(tt.month); got != tt.want {
				t.Errorf("VisibleInMonth(%s) = %v, want %v", tt.month, got, tt.want)
			}
		}
	})

	t.Run("paid off keeps history but not future", func(t *testing.T) {
		d := negotiatedDebt(3, 4, DebtStatusPaidOff)
		if !d.VisibleInMonth("2025-06") {
			t.Error("paid_off debt hidden before start, want visible history")
		}
		if !d.VisibleInMonth("2026-03") {
			t.Error("paid_off debt hidden at end month")
		}
		if d.VisibleInMonth("2026-04") {
			t.Error("paid_off debt visible past end month")
		}
	})

	t.Run("defaulted always visible", func(t *testing.T) {
		d := negotiatedDebt(3, 2, DebtStatusDefaulted)
		if !d.VisibleInMonth("2027-01") {
			t.Error("defaulted debt hidden past window")
		}
	})

	t.Run("missing schedule falls back to visible", func(t *testing.T) {
		d := negotiatedDebt(3, 1, DebtStatusActive)
		d.TotalInstallments = nil
		if !d.VisibleInMonth("2030-01") {
			t.Error("debt without total installments hidden")
		}
	})
}

func TestClassifyInstallment(t *testing.T) {
	month := func(m MonthYear) *MonthYear { return &m }

	tests := []struct {
		name        string
		month       MonthYear
		paidInMonth *MonthYear
		dueDay      int
		today       TodayContext
		want        InstallmentStatus
	}{
		{"paid in its month", "2026-05", month("2026-05"), 10, TodayContext{"2026-05", 20}, InstallmentPaid},
		{"paid ahead of schedule", "2026-05", month("2026-04"), 10, TodayContext{"2026-04", 15}, InstallmentPaidEarly},
		{"unpaid past month", "2026-03", nil, 10, TodayContext{"2026-05", 1}, InstallmentOverdue},
		{"unpaid past due day", "2026-05", nil, 10, TodayContext{"2026-05", 11}, InstallmentOverdue},
		{"unpaid on due day", "2026-05", nil, 10, TodayContext{"2026-05", 10}, InstallmentPending},
		{"future month", "2026-06", nil, 10, TodayContext{"2026-05", 25}, InstallmentPending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyInstallment(tt.month, tt.paidInMonth, tt.dueDay, tt.today); got != tt.want {
				t.Errorf("ClassifyInstallment() = %s, want %s", got, tt.want)
			}
		})
	}
}
