package services

import (
	"math"
	"sort"
	"time"

	"github.com/oeduardop1/life-assistant-sub001/internal/core"
)

// PaymentVelocity describes the observed payment rhythm of a debt.
type PaymentVelocity struct {
	AvgPaymentsPerMonth float64
	IsRegular           bool
}

// PayoffProjection estimates when a debt will be fully paid.
type PayoffProjection struct {
	EstimatedPayoffMonth core.MonthYear
	RemainingMonths      int
	Velocity             PaymentVelocity
}

// ProjectPayoff estimates the payoff month of a negotiated debt from its
// ledger. With no payment history the schedule itself is the estimate, one
// installment per month from the start. Otherwise the average velocity since
// the first payment drives the projection, and the rhythm counts as regular
// when the per-month payment counts vary by less than 30% around their mean.
// Returns nil when the debt is paid off or has no schedule.
func ProjectPayoff(debt core.Debt, payments []core.DebtPayment, nowMonth core.MonthYear, loc *time.Location) *PayoffProjection {
	if debt.Status == core.DebtStatusPaidOff {
		return nil
	}
	if !debt.IsNegotiated || debt.TotalInstallments == nil {
		return nil
	}

	paid := debt.PaidInstallments()
	remaining := *debt.TotalInstallments - paid
	if remaining <= 0 {
		return nil
	}

	if paid == 0 || len(payments) == 0 {
		start := debt.StartMonthYear
		if start.IsZero() {
			start = nowMonth
		}
		return &PayoffProjection{
			EstimatedPayoffMonth: start.AddMonths(remaining - 1),
			RemainingMonths:      remaining,
			Velocity:             PaymentVelocity{AvgPaymentsPerMonth: 1.0, IsRegular: true},
		}
	}

	byMonth := make(map[core.MonthYear]int)
	for _, p := range payments {
		byMonth[core.MonthYearOf(p.PaidAt.In(loc))]++
	}

	months := make([]core.MonthYear, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i] < months[j] })

	elapsed := core.MonthsBetween(months[0], months[len(months)-1]) + 1
	if elapsed < 1 {
		elapsed = 1
	}
	avg := float64(paid) / float64(elapsed)

	mean := 0.0
	for _, m := range months {
		mean += float64(byMonth[m])
	}
	mean /= float64(len(months))

	isRegular := true
	if mean > 0 {
		variance := 0.0
		for _, m := range months {
			d := float64(byMonth[m]) - mean
			variance += d * d
		}
		variance /= float64(len(months))
		isRegular = math.Sqrt(variance)/mean < 0.3
	}

	remainingMonths := int(math.Ceil(float64(remaining) / math.Max(avg, 0.01)))

	return &PayoffProjection{
		EstimatedPayoffMonth: nowMonth.AddMonths(remainingMonths),
		RemainingMonths:      remainingMonths,
		Velocity: PaymentVelocity{
			AvgPaymentsPerMonth: math.Round(avg*100) / 100,
			IsRegular:           isRegular,
		},
	}
}
