package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	DebtStatusActive    DebtStatus = "active"
	DebtStatusOverdue   DebtStatus = "overdue"
	DebtStatusPaidOff   DebtStatus = "paid_off"
	DebtStatusSettled   DebtStatus = "settled"
	DebtStatusDefaulted DebtStatus = "defaulted"
)

type (
	DebtStatus string

	// Debt is a single debt, not a month-instance. Installment fields are
	// populated only once the debt has been negotiated.
	Debt struct {
		ID                 uuid.UUID
		UserID             uuid.UUID
		Name               string
		Creditor           *string
		TotalAmount        decimal.Decimal
		IsNegotiated       bool
		TotalInstallments  *int
		InstallmentAmount  *decimal.Decimal
		CurrentInstallment int
		DueDay             *int
		StartMonthYear     MonthYear
		Status             DebtStatus
		Notes              *string
		Currency           string
		CreatedAt          time.Time
		UpdatedAt          time.Time
	}

	// DebtPayment is one append-only ledger row per paid installment.
	// MonthYear is the installment's scheduled month (startMonthYear advanced
	// by installmentNumber-1), never the month payment happened in.
	DebtPayment struct {
		ID                uuid.UUID
		UserID            uuid.UUID
		DebtID            uuid.UUID
		InstallmentNumber int
		Amount            decimal.Decimal
		MonthYear         MonthYear
		PaidAt            time.Time
		CreatedAt         time.Time
	}

	// NegotiationTerms carries the installment schedule agreed with the creditor.
	NegotiationTerms struct {
		TotalInstallments int
		InstallmentAmount decimal.Decimal
		DueDay            int
		StartMonthYear    MonthYear // optional; defaults to today's month
	}
)

func (d *Debt) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidArgument)
	}
	if d.TotalAmount.IsNegative() {
		return fmt.Errorf("%w: negative total amount", ErrInvalidArgument)
	}
	if d.IsNegotiated {
		if d.TotalInstallments == nil || *d.TotalInstallments < 1 {
			return fmt.Errorf("%w: negotiated debts require totalInstallments", ErrInvalidArgument)
		}
		if d.InstallmentAmount == nil || d.InstallmentAmount.IsNegative() {
			return fmt.Errorf("%w: negotiated debts require installmentAmount", ErrInvalidArgument)
		}
		if d.DueDay == nil || *d.DueDay < 1 || *d.DueDay > 31 {
			return fmt.Errorf("%w: negotiated debts require dueDay in 1-31", ErrInvalidArgument)
		}
	}
	return nil
}

// PaidInstallments returns how many installments have been paid so far.
func (d *Debt) PaidInstallments() int {
	if d.CurrentInstallment < 1 {
		return 0
	}
	return d.CurrentInstallment - 1
}

// RemainingInstallments returns how many installments are still unpaid.
func (d *Debt) RemainingInstallments() int {
	if d.TotalInstallments == nil {
		return 0
	}
	n := *d.TotalInstallments - d.PaidInstallments()
	if n < 0 {
		return 0
	}
	return n
}

// Negotiate transitions a non-negotiated debt to a fixed installment
// schedule. The transition is one-way: renegotiating fails with ErrInvalidState.
func (d *Debt) Negotiate(terms NegotiationTerms, today TodayContext) error {
	if d.IsNegotiated {
		return fmt.Errorf("%w: debt is already negotiated", ErrInvalidState)
	}
	if terms.TotalInstallments < 1 {
		return fmt.Errorf("%w: totalInstallments must be at least 1", ErrInvalidArgument)
	}
	if terms.InstallmentAmount.IsNegative() {
		return fmt.Errorf("%w: negative installment amount", ErrInvalidArgument)
	}
	if terms.DueDay < 1 || terms.DueDay > 31 {
		return fmt.Errorf("%w: due day %d out of range 1-31", ErrInvalidArgument, terms.DueDay)
	}

	start := terms.StartMonthYear
	if start.IsZero() {
		start = today.Month
	}

	d.IsNegotiated = true
	total := terms.TotalInstallments
	d.TotalInstallments = &total
	amount := terms.InstallmentAmount
	d.InstallmentAmount = &amount
	dueDay := terms.DueDay
	d.DueDay = &dueDay
	d.StartMonthYear = start
	d.CurrentInstallment = 1
	return nil
}

// ApplyPayment consumes quantity installments, returning the ledger rows to
// append. It advances CurrentInstallment, flips status to paid_off once the
// schedule is exhausted, and resolves an overdue status back to active.
// The caller persists the mutated debt and the returned payments in a single
// transaction.
func (d *Debt) ApplyPayment(quantity int, now time.Time) ([]DebtPayment, error) {
	if !d.IsNegotiated {
		return nil, fmt.Errorf("%w: cannot pay installment on non-negotiated debt", ErrInvalidState)
	}
	if d.Status == DebtStatusPaidOff {
		return nil, fmt.Errorf("%w: debt is already paid off", ErrInvalidState)
	}
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrInvalidArgument)
	}
	if remaining := d.RemainingInstallments(); quantity > remaining {
		return nil, fmt.Errorf("%w: cannot pay %d installments, only %d remaining",
			ErrInvalidArgument, quantity, remaining)
	}

	total := *d.TotalInstallments
	newInstallment := d.CurrentInstallment + quantity
	if newInstallment > total+1 {
		newInstallment = total + 1
	}

	amount := decimal.Zero
	if d.InstallmentAmount != nil {
		amount = *d.InstallmentAmount
	}

	payments := make([]DebtPayment, 0, newInstallment-d.CurrentInstallment)
	for n := d.CurrentInstallment; n < newInstallment; n++ {
		payments = append(payments, DebtPayment{
			ID:                uuid.New(),
			UserID:            d.UserID,
			DebtID:            d.ID,
			InstallmentNumber: n,
			Amount:            amount,
			MonthYear:         d.StartMonthYear.AddMonths(n - 1),
			PaidAt:            now,
		})
	}

	d.CurrentInstallment = newInstallment
	switch {
	case newInstallment > total:
		d.Status = DebtStatusPaidOff
	case d.Status == DebtStatusOverdue:
		d.Status = DebtStatusActive
	}
	return payments, nil
}
