package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/oeduardop1/life-assistant-sub001/internal/core"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "finance.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testBill(userID uuid.UUID, month core.MonthYear, groupID *uuid.UUID) core.Bill {
	return core.Bill{
		ID:               uuid.New(),
		UserID:           userID,
		Name:             "Aluguel",
		Category:         "housing",
		Amount:           decimal.RequireFromString("1500.00"),
		DueDay:           5,
		Status:           core.BillStatusPending,
		IsRecurring:      groupID != nil,
		RecurringGroupID: groupID,
		MonthYear:        month,
		Currency:         "BRL",
	}
}

func TestBillRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	userID := uuid.New()

	bill := testBill(userID, "2026-03", nil)
	if err := s.Bills.Insert(ctx, bill); err != nil {
		t.Fatalf("insert bill: %v", err)
	}

	got, err := s.Bills.Get(ctx, userID, bill.ID)
	if err != nil {
		t.Fatalf("get bill: %v", err)
	}
	if got.Name != bill.Name || !got.Amount.Equal(bill.Amount) || got.MonthYear != bill.MonthYear {
		t.Errorf("round trip mismatch: got %+v", got)
	}
	if got.Status != core.BillStatusPending || got.PaidAt != nil {
		t.Errorf("unexpected status: %+v", got)
	}

	if _, err := s.Bills.Get(ctx, uuid.New(), bill.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("cross-user get = %v, want ErrNotFound", err)
	}
}

func TestBillInsertBatchSkipsDuplicates(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	userID := uuid.New()
	groupID := uuid.New()

	first := testBill(userID, "2026-04", &groupID)
	n, err := s.Bills.InsertBatch(ctx, []core.Bill{first})
	if err != nil {
		t.Fatalf("insert batch: %v", err)
	}
	if n != 1 {
		t.Fatalf("inserted = %d, want 1", n)
	}

	// Same user, group and month again: the unique index swallows it.
	dup := testBill(userID, "2026-04", &groupID)
	n, err = s.Bills.InsertBatch(ctx, []core.Bill{dup})
	if err != nil {
		t.Fatalf("insert duplicate batch: %v", err)
	}
	if n != 0 {
		t.Errorf("inserted = %d, want 0", n)
	}

	bills, err := s.Bills.ListByMonth(ctx, userID, "2026-04")
	if err != nil {
		t.Fatalf("list by month: %v", err)
	}
	if len(bills) != 1 {
		t.Errorf("got %d bills, want 1", len(bills))
	}
}

func TestIncomeInsertBatchSkipsDuplicates(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	userID := uuid.New()
	groupID := uuid.New()

	income := core.Income{
		ID:               uuid.New(),
		UserID:           userID,
		Name:             "Salário",
		Type:             "salary",
		Frequency:        "monthly",
		ExpectedAmount:   decimal.RequireFromString("7000.00"),
		Status:           core.IncomeStatusActive,
		IsRecurring:      true,
		RecurringGroupID: &groupID,
		MonthYear:        "2026-04",
		Currency:         "BRL",
	}
	n, err := s.Incomes.InsertBatch(ctx, []core.Income{income})
	if err != nil {
		t.Fatalf("insert batch: %v", err)
	}
	if n != 1 {
		t.Fatalf("inserted = %d, want 1", n)
	}

	dup := income
	dup.ID = uuid.New()
	n, err = s.Incomes.InsertBatch(ctx, []core.Income{dup})
	if err != nil {
		t.Fatalf("insert duplicate batch: %v", err)
	}
	if n != 0 {
		t.Errorf("inserted = %d, want 0", n)
	}
}

func TestExpenseInsertBatchSkipsDuplicates(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	userID := uuid.New()
	groupID := uuid.New()

	expense := core.VariableExpense{
		ID:               uuid.New(),
		UserID:           userID,
		Name:             "Mercado",
		Category:         "food",
		ExpectedAmount:   decimal.RequireFromString("800.00"),
		ActualAmount:     decimal.Zero,
		Status:           core.ExpenseStatusActive,
		IsRecurring:      true,
		RecurringGroupID: &groupID,
		MonthYear:        "2026-04",
		Currency:         "BRL",
	}
	n, err := s.Expenses.InsertBatch(ctx, []core.VariableExpense{expense})
	if err != nil {
		t.Fatalf("insert batch: %v", err)
	}
	if n != 1 {
		t.Fatalf("inserted = %d, want 1", n)
	}

	dup := expense
	dup.ID = uuid.New()
	n, err = s.Expenses.InsertBatch(ctx, []core.VariableExpense{dup})
	if err != nil {
		t.Fatalf("insert duplicate batch: %v", err)
	}
	if n != 0 {
		t.Errorf("inserted = %d, want 0", n)
	}
}

func TestBillGroupMutations(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	userID := uuid.New()
	groupID := uuid.New()

	months := []core.MonthYear{"2026-01", "2026-02", "2026-03"}
	for _, m := range months {
		if err := s.Bills.Insert(ctx, testBill(userID, m, &groupID)); err != nil {
			t.Fatalf("insert bill for %s: %v", m, err)
		}
	}

	p := NewPatch().Set("amount", "1600.00")
	affected, err := s.Bills.UpdateGroupAfter(ctx, userID, groupID, "2026-01", p)
	if err != nil {
		t.Fatalf("update group after: %v", err)
	}
	if affected != 2 {
		t.Errorf("affected = %d, want 2", affected)
	}

	jan, err := s.Bills.ListByMonth(ctx, userID, "2026-01")
	if err != nil {
		t.Fatalf("list january: %v", err)
	}
	if !jan[0].Amount.Equal(decimal.RequireFromString("1500.00")) {
		t.Errorf("january amount changed: %s", jan[0].Amount)
	}
	feb, err := s.Bills.ListByMonth(ctx, userID, "2026-02")
	if err != nil {
		t.Fatalf("list february: %v", err)
	}
	if !feb[0].Amount.Equal(decimal.RequireFromString("1600.00")) {
		t.Errorf("february amount = %s, want 1600.00", feb[0].Amount)
	}

	deleted, err := s.Bills.DeleteGroupAfter(ctx, userID, groupID, "2026-01")
	if err != nil {
		t.Fatalf("delete group after: %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted = %d, want 2", deleted)
	}
	left, err := s.Bills.ListByMonth(ctx, userID, "2026-01")
	if err != nil {
		t.Fatalf("list after delete: %v", err)
	}
	if len(left) != 1 {
		t.Errorf("january rows = %d, want 1", len(left))
	}
}

func TestBillTemplatesIncludeCanceled(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	userID := uuid.New()
	groupID := uuid.New()

	bill := testBill(userID, "2026-05", &groupID)
	bill.Status = core.BillStatusCanceled
	if err := s.Bills.Insert(ctx, bill); err != nil {
		t.Fatalf("insert canceled bill: %v", err)
	}

	templates, err := s.Bills.ListTemplates(ctx, userID, "2026-05")
	if err != nil {
		t.Fatalf("list templates: %v", err)
	}
	if len(templates) != 1 {
		t.Fatalf("templates = %d, want 1", len(templates))
	}
	if templates[0].Status != core.BillStatusCanceled {
		t.Errorf("template status = %s, want canceled", templates[0].Status)
	}
}

func TestDebtApplyPaymentPersistsAtomically(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	userID := uuid.New()

	total := 6
	amount := decimal.RequireFromString("200.00")
	dueDay := 10
	debt := core.Debt{
		ID:                 uuid.New(),
		UserID:             userID,
		Name:               "Empréstimo",
		TotalAmount:        decimal.RequireFromString("1200.00"),
		IsNegotiated:       true,
		TotalInstallments:  &total,
		InstallmentAmount:  &amount,
		CurrentInstallment: 1,
		DueDay:             &dueDay,
		StartMonthYear:     "2026-01",
		Status:             core.DebtStatusActive,
		Currency:           "BRL",
	}
	if err := s.Debts.Insert(ctx, debt); err != nil {
		t.Fatalf("insert debt: %v", err)
	}

	payments, err := debt.ApplyPayment(2, time.Date(2026, 2, 8, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("apply payment: %v", err)
	}
	if err := s.Debts.ApplyPayment(ctx, debt, payments); err != nil {
		t.Fatalf("persist payment: %v", err)
	}

	got, err := s.Debts.Get(ctx, userID, debt.ID)
	if err != nil {
		t.Fatalf("get debt: %v", err)
	}
	if got.CurrentInstallment != 3 {
		t.Errorf("CurrentInstallment = %d, want 3", got.CurrentInstallment)
	}

	ledger, err := s.Debts.ListPayments(ctx, userID, debt.ID)
	if err != nil {
		t.Fatalf("list payments: %v", err)
	}
	if len(ledger) != 2 {
		t.Fatalf("ledger rows = %d, want 2", len(ledger))
	}
	if ledger[0].MonthYear != "2026-01" || ledger[1].MonthYear != "2026-02" {
		t.Errorf("scheduled months = %s, %s", ledger[0].MonthYear, ledger[1].MonthYear)
	}

	sum, err := s.Debts.SumPaymentsByMonth(ctx, userID, "2026-02")
	if err != nil {
		t.Fatalf("sum payments: %v", err)
	}
	if !sum.Equal(amount) {
		t.Errorf("february payments = %s, want %s", sum, amount)
	}
}

func TestExpenseTotalsExcludeExcluded(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	userID := uuid.New()

	active := core.VariableExpense{
		ID:             uuid.New(),
		UserID:         userID,
		Name:           "Mercado",
		Category:       "food",
		ExpectedAmount: decimal.RequireFromString("800.00"),
		ActualAmount:   decimal.RequireFromString("750.50"),
		Status:         core.ExpenseStatusActive,
		MonthYear:      "2026-03",
		Currency:       "BRL",
	}
	excluded := active
	excluded.ID = uuid.New()
	excluded.Name = "Viagem"
	excluded.Status = core.ExpenseStatusExcluded

	for _, e := range []core.VariableExpense{active, excluded} {
		if err := s.Expenses.Insert(ctx, e); err != nil {
			t.Fatalf("insert expense: %v", err)
		}
	}

	expected, actual, err := s.Expenses.Totals(ctx, userID, "2026-03")
	if err != nil {
		t.Fatalf("expense totals: %v", err)
	}
	if !expected.Equal(decimal.RequireFromString("800.00")) {
		t.Errorf("expected total = %s, want 800.00", expected)
	}
	if !actual.Equal(decimal.RequireFromString("750.50")) {
		t.Errorf("actual total = %s, want 750.50", actual)
	}
}
