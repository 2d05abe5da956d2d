// Month-window visibility and installment classification for debts.
//
// These are pure functions: no clock reads, no store access. "Today" always
// arrives as an explicit TodayContext computed by the caller in the user's
// timezone.
package core

const (
	InstallmentPaid      InstallmentStatus = "paid"
	InstallmentPaidEarly InstallmentStatus = "paid_early"
	InstallmentPending   InstallmentStatus = "pending"
	InstallmentOverdue   InstallmentStatus = "overdue"
)

// InstallmentStatus classifies one scheduled installment within a month.
type InstallmentStatus string

// EndMonth returns the scheduled month of the last installment.
func EndMonth(start MonthYear, totalInstallments int) MonthYear {
	return start.AddMonths(totalInstallments - 1)
}

// VisibleInMonth reports whether the debt belongs in month's view.
// Non-negotiated and defaulted debts are always shown. Finished debts
// (paid_off, settled) remain visible through their historical window.
// Active or overdue negotiated debts show only between their start and end
// months; there is no grace period before the first installment's month.
func (d *Debt) VisibleInMonth(month MonthYear) bool {
	if !d.IsNegotiated {
		return true
	}
	if d.Status == DebtStatusDefaulted {
		return true
	}
	if d.StartMonthYear.IsZero() || d.TotalInstallments == nil {
		return true
	}

	end := EndMonth(d.StartMonthYear, *d.TotalInstallments)
	if d.Status == DebtStatusPaidOff || d.Status == DebtStatusSettled {
		return month <= end
	}
	return d.StartMonthYear <= month && month <= end
}

// InstallmentNumberForMonth maps a calendar month to its 1-based installment
// number. Results outside [1, totalInstallments] mean no installment is
// scheduled for that month.
func InstallmentNumberForMonth(start, month MonthYear) int {
	return MonthsBetween(start, month) + 1
}

// ShouldBeOverdue reports whether an active negotiated debt has fallen
// behind schedule by month: fewer installments paid than months elapsed
// since the start, capped at the total.
func (d *Debt) ShouldBeOverdue(month MonthYear) bool {
	if !d.IsNegotiated || d.Status != DebtStatusActive {
		return false
	}
	if d.StartMonthYear.IsZero() || d.TotalInstallments == nil {
		return false
	}
	expected := MonthsBetween(d.StartMonthYear, month) + 1
	if expected > *d.TotalInstallments {
		expected = *d.TotalInstallments
	}
	return d.PaidInstallments() < expected
}

// ClassifyInstallment determines the status of the installment scheduled for
// month. paidInMonth is the month the payment was actually recorded in the
// user's timezone, nil when unpaid. An unpaid installment is overdue once
// its month has passed, or within its month once today is past the due day.
func ClassifyInstallment(month MonthYear, paidInMonth *MonthYear, dueDay int, today TodayContext) InstallmentStatus {
	if paidInMonth != nil {
		if *paidInMonth < month {
			return InstallmentPaidEarly
		}
		return InstallmentPaid
	}
	if month < today.Month {
		return InstallmentOverdue
	}
	if month == today.Month && today.Day > dueDay {
		return InstallmentOverdue
	}
	return InstallmentPending
}
