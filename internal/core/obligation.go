package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Statuses per obligation kind. A canceled bill or excluded expense is a
// display state only: recurrence generation ignores it (see services.EnsureForMonth).
const (
	BillStatusPending  BillStatus = "pending"
	BillStatusPaid     BillStatus = "paid"
	BillStatusOverdue  BillStatus = "overdue"
	BillStatusCanceled BillStatus = "canceled"

	IncomeStatusActive   IncomeStatus = "active"
	IncomeStatusReceived IncomeStatus = "received"

	ExpenseStatusActive   ExpenseStatus = "active"
	ExpenseStatusExcluded ExpenseStatus = "excluded"
)

type (
	BillStatus    string
	IncomeStatus  string
	ExpenseStatus string

	// Bill is one month-instance of a fixed monthly obligation.
	Bill struct {
		ID               uuid.UUID
		UserID           uuid.UUID
		Name             string
		Category         string
		Amount           decimal.Decimal
		DueDay           int
		Status           BillStatus
		PaidAt           *time.Time
		IsRecurring      bool
		RecurringGroupID *uuid.UUID
		MonthYear        MonthYear
		Currency         string
		CreatedAt        time.Time
		UpdatedAt        time.Time
	}

	// Income is one month-instance of an expected income.
	Income struct {
		ID               uuid.UUID
		UserID           uuid.UUID
		Name             string
		Type             string
		Frequency        string
		ExpectedAmount   decimal.Decimal
		ActualAmount     *decimal.Decimal
		Status           IncomeStatus
		IsRecurring      bool
		RecurringGroupID *uuid.UUID
		MonthYear        MonthYear
		Currency         string
		CreatedAt        time.Time
		UpdatedAt        time.Time
	}

	// VariableExpense is one month-instance of a budgeted variable expense.
	VariableExpense struct {
		ID               uuid.UUID
		UserID           uuid.UUID
		Name             string
		Category         string
		ExpectedAmount   decimal.Decimal
		ActualAmount     decimal.Decimal
		Status           ExpenseStatus
		IsRecurring      bool
		RecurringGroupID *uuid.UUID
		MonthYear        MonthYear
		Currency         string
		CreatedAt        time.Time
		UpdatedAt        time.Time
	}
)

// Recurrable is the capability surface the recurrence engine needs from an
// obligation kind. CloneForMonth carries template fields forward and resets
// the kind's per-month state (status, actual amount, paid timestamp).
type Recurrable[T any] interface {
	ItemID() uuid.UUID
	GroupID() *uuid.UUID
	Month() MonthYear
	CloneForMonth(m MonthYear) T
}

func (b Bill) ItemID() uuid.UUID   { return b.ID }
func (b Bill) GroupID() *uuid.UUID { return b.RecurringGroupID }
func (b Bill) Month() MonthYear    { return b.MonthYear }

func (b Bill) CloneForMonth(m MonthYear) Bill {
	clone := b
	clone.ID = uuid.New()
	clone.MonthYear = m
	clone.Status = BillStatusPending
	clone.PaidAt = nil
	clone.IsRecurring = true
	clone.CreatedAt = time.Time{}
	clone.UpdatedAt = time.Time{}
	return clone
}

func (i Income) ItemID() uuid.UUID   { return i.ID }
func (i Income) GroupID() *uuid.UUID { return i.RecurringGroupID }
func (i Income) Month() MonthYear    { return i.MonthYear }

func (i Income) CloneForMonth(m MonthYear) Income {
	clone := i
	clone.ID = uuid.New()
	clone.MonthYear = m
	clone.Status = IncomeStatusActive
	clone.ActualAmount = nil
	clone.IsRecurring = true
	clone.CreatedAt = time.Time{}
	clone.UpdatedAt = time.Time{}
	return clone
}

func (e VariableExpense) ItemID() uuid.UUID   { return e.ID }
func (e VariableExpense) GroupID() *uuid.UUID { return e.RecurringGroupID }
func (e VariableExpense) Month() MonthYear    { return e.MonthYear }

func (e VariableExpense) CloneForMonth(m MonthYear) VariableExpense {
	clone := e
	clone.ID = uuid.New()
	clone.MonthYear = m
	clone.Status = ExpenseStatusActive
	clone.ActualAmount = decimal.Zero
	clone.IsRecurring = true
	clone.CreatedAt = time.Time{}
	clone.UpdatedAt = time.Time{}
	return clone
}

func (b Bill) Validate() error {
	if err := validateObligation(b.Name, b.MonthYear, b.Amount); err != nil {
		return err
	}
	if b.DueDay < 1 || b.DueDay > 31 {
		return fmt.Errorf("%w: due day %d out of range 1-31", ErrInvalidArgument, b.DueDay)
	}
	return nil
}

func (i Income) Validate() error {
	return validateObligation(i.Name, i.MonthYear, i.ExpectedAmount)
}

func (e VariableExpense) Validate() error {
	return validateObligation(e.Name, e.MonthYear, e.ExpectedAmount)
}

func validateObligation(name string, month MonthYear, amount decimal.Decimal) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidArgument)
	}
	if len(name) > 255 {
		return fmt.Errorf("%w: name too long (max 255 characters)", ErrInvalidArgument)
	}
	if _, err := ParseMonthYear(string(month)); err != nil {
		return err
	}
	if amount.IsNegative() {
		return fmt.Errorf("%w: negative amount", ErrInvalidArgument)
	}
	return nil
}
