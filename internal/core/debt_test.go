package core

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func negotiatedDebt(total, current int, status DebtStatus) *Debt {
	amount := decimal.RequireFromString("100.00")
	dueDay := 10
	return &Debt{
		ID:                 uuid.New(),
		UserID:             uuid.New(),
		Name:               "Cartão",
		TotalAmount:        decimal.RequireFromString("1200.00"),
		IsNegotiated:       true,
		TotalInstallments:  &total,
		InstallmentAmount:  &amount,
		CurrentInstallment: current,
		DueDay:             &dueDay,
		StartMonthYear:     "2026-01",
		Status:             status,
		Currency:           "BRL",
	}
}

func TestDebtValidate(t *testing.T) {
	t.Run("negotiated without installment fields", func(t *testing.T) {
		d := &Debt{Name: "Empréstimo", TotalAmount: decimal.NewFromInt(500), IsNegotiated: true}
		if err := d.Validate(); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("Validate() = %v, want ErrInvalidArgument", err)
		}
	})

	t.Run("non-negotiated needs no installment fields", func(t *testing.T) {
		d := &Debt{Name: "Empréstimo", TotalAmount: decimal.NewFromInt(500)}
		if err := d.Validate(); err != nil {
			t.Fatalf("Validate() unexpected error: %v", err)
		}
	})
}

func TestDebtNegotiate(t *testing.T) {
	today := TodayContext{Month: "2026-03", Day: 15}
	terms := NegotiationTerms{
		TotalInstallments: 6,
		InstallmentAmount: decimal.RequireFromString("150.00"),
		DueDay:            5,
	}

	t.Run("defaults start month to today", func(t *testing.T) {
		d := &Debt{Name: "Financiamento", TotalAmount: decimal.NewFromInt(900)}
		if err := d.Negotiate(terms, today); err != nil {
			t.Fatalf("Negotiate() unexpected error: %v", err)
		}
		if !d.IsNegotiated || d.CurrentInstallment != 1 {
			t.Errorf("negotiate did not initialize schedule: %+v", d)
		}
		if d.StartMonthYear != "2026-03" {
			t.Errorf("StartMonthYear = %s, want 2026-03", d.StartMonthYear)
		}
	})

	t.Run("explicit start month wins", func(t *testing.T) {
		d := &Debt{Name: "Financiamento", TotalAmount: decimal.NewFromInt(900)}
		withStart := terms
		withStart.StartMonthYear = "2026-06"
		if err := d.Negotiate(withStart, today); err != nil {
			t.Fatalf("Negotiate() unexpected error: %v", err)
		}
		if d.StartMonthYear != "2026-06" {
			t.Errorf("StartMonthYear = %s, want 2026-06", d.StartMonthYear)
		}
	})

	t.Run("one-way transition", func(t *testing.T) {
		d := negotiatedDebt(6, 1, DebtStatusActive)
		if err := d.Negotiate(terms, today); !errors.Is(err, ErrInvalidState) {
			t.Fatalf("Negotiate() on negotiated debt = %v, want ErrInvalidState", err)
		}
	})
}

func TestDebtApplyPayment(t *testing.T) {
	now := time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC)

	t.Run("advances counter and writes scheduled months", func(t *testing.T) {
		d := negotiatedDebt(12, 2, DebtStatusActive)
		payments, err := d.ApplyPayment(3, now)
		if err != nil {
			t.Fatalf("ApplyPayment() unexpected error: %v", err)
		}
		if d.CurrentInstallment != 5 {
			t.Errorf("CurrentInstallment = %d, want 5", d.CurrentInstallment)
		}
		if len(payments) != 3 {
			t.Fatalf("got %d payments, want 3", len(payments))
		}
		// Installment 2 of a 2026-01 schedule belongs to 2026-02.
		wantMonths := []MonthYear{"2026-02", "2026-03", "2026-04"}
		for i, p := range payments {
			if p.InstallmentNumber != i+2 {
				t.Errorf("payment %d InstallmentNumber = %d, want %d", i, p.InstallmentNumber, i+2)
			}
			if p.MonthYear != wantMonths[i] {
				t.Errorf("payment %d MonthYear = %s, want %s", i, p.MonthYear, wantMonths[i])
			}
			if !p.PaidAt.Equal(now) {
				t.Errorf("payment %d PaidAt = %v, want %v", i, p.PaidAt, now)
			}
		}
		if d.Status != DebtStatusActive {
			t.Errorf("Status = %s, want active", d.Status)
		}
	})

	t.Run("last installment pays off", func(t *testing.T) {
		d := negotiatedDebt(12, 12, DebtStatusActive)
		if _, err := d.ApplyPayment(1, now); err != nil {
			t.Fatalf("ApplyPayment() unexpected error: %v", err)
		}
		if d.Status != DebtStatusPaidOff {
			t.Errorf("Status = %s, want paid_off", d.Status)
		}
	})

	t.Run("paid off rejects further payment", func(t *testing.T) {
		d := negotiatedDebt(12, 13, DebtStatusPaidOff)
		if _, err := d.ApplyPayment(1, now); !errors.Is(err, ErrInvalidState) {
			t.Fatalf("ApplyPayment() = %v, want ErrInvalidState", err)
		}
	})

	t.Run("payment resolves overdue", func(t *testing.T) {
		d := negotiatedDebt(12, 3, DebtStatusOverdue)
		if _, err := d.ApplyPayment(1, now); err != nil {
			t.Fatalf("ApplyPayment() unexpected error: %v", err)
		}
		if d.Status != DebtStatusActive {
			t.Errorf("Status = %s, want active", d.Status)
		}
	})

	t.Run("non-negotiated rejected", func(t *testing.T) {
		d := &Debt{Name: "Solta", TotalAmount: decimal.NewFromInt(300)}
		if _, err := d.ApplyPayment(1, now); !errors.Is(err, ErrInvalidState) {
			t.Fatalf("ApplyPayment() = %v, want ErrInvalidState", err)
		}
	})

	t.Run("quantity beyond remaining rejected", func(t *testing.T) {
		d := negotiatedDebt(12, 11, DebtStatusActive)
		if _, err := d.ApplyPayment(3, now); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("ApplyPayment() = %v, want ErrInvalidArgument", err)
		}
	})
}
