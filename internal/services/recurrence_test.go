package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/oeduardop1/life-assistant-sub001/internal/core"
	"github.com/oeduardop1/life-assistant-sub001/internal/storage"
)

func openTestStore(t *testing.T) *storage.Store {
	t.Helper()
	s, err := storage.Open(filepath.Join(t.TempDir(), "finance.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func createRecurringBill(t *testing.T, svc *BillService, userID uuid.UUID, month core.MonthYear) core.Bill {
	t.Helper()
	bill, err := svc.Create(context.Background(), CreateBillInput{
		UserID:      userID,
		Name:        "Internet",
		Category:    "utilities",
		Amount:      decimal.RequireFromString("99.90"),
		DueDay:      10,
		MonthYear:   month,
		IsRecurring: true,
	})
	if err != nil {
		t.Fatalf("create bill: %v", err)
	}
	return bill
}

func TestEnsureForMonthMaterializesOnce(t *testing.T) {
	store := openTestStore(t)
	svc := NewBillService(store.Bills, nil)
	ctx := context.Background()
	userID := uuid.New()

	createRecurringBill(t, svc, userID, "2026-01")

	feb, err := svc.ListMonth(ctx, userID, "2026-02")
	if err != nil {
		t.Fatalf("list february: %v", err)
	}
	if len(feb) != 1 {
		t.Fatalf("february bills = %d, want 1", len(feb))
	}
	if feb[0].MonthYear != "2026-02" || feb[0].Status != core.BillStatusPending {
		t.Errorf("materialized bill = %+v", feb[0])
	}
	if feb[0].PaidAt != nil {
		t.Error("materialized bill carries paid_at")
	}

	// Second call finds the occurrence and creates nothing.
	again, err := svc.ListMonth(ctx, userID, "2026-02")
	if err != nil {
		t.Fatalf("list february again: %v", err)
	}
	if len(again) != 1 {
		t.Errorf("february bills after second list = %d, want 1", len(again))
	}
}

func TestEnsureForMonthLooksBackOneHopOnly(t *testing.T) {
	store := openTestStore(t)
	svc := NewBillService(store.Bills, nil)
	ctx := context.Background()
	userID := uuid.New()

	createRecurringBill(t, svc, userID, "2026-01")

	// Jumping straight to April finds no March templates.
	apr, err := svc.ListMonth(ctx, userID, "2026-04")
	if err != nil {
		t.Fatalf("list april: %v", err)
	}
	if len(apr) != 0 {
		t.Errorf("april bills = %d, want 0", len(apr))
	}

	// Walking month by month fills the gap.
	for _, m := range []core.MonthYear{"2026-02", "2026-03", "2026-04"} {
		if _, err := svc.ListMonth(ctx, userID, m); err != nil {
			t.Fatalf("list %s: %v", m, err)
		}
	}
	apr, err = svc.ListMonth(ctx, userID, "2026-04")
	if err != nil {
		t.Fatalf("relist april: %v", err)
	}
	if len(apr) != 1 {
		t.Errorf("april bills after walking = %d, want 1", len(apr))
	}
}

func TestEnsureForMonthCopiesCanceledTemplates(t *testing.T) {
	store := openTestStore(t)
	svc := NewBillService(store.Bills, nil)
	ctx := context.Background()
	userID := uuid.New()

	bill := createRecurringBill(t, svc, userID, "2026-01")

	// Canceling one occurrence keeps the chain alive: the canceled row is
	// still a template and the next month starts fresh as pending.
	if err := svc.Delete(ctx, userID, bill.ID, ScopeThis); err != nil {
		t.Fatalf("cancel bill: %v", err)
	}

	feb, err := svc.ListMonth(ctx, userID, "2026-02")
	if err != nil {
		t.Fatalf("list february: %v", err)
	}
	if len(feb) != 1 {
		t.Fatalf("february bills = %d, want 1", len(feb))
	}
	if feb[0].Status != core.BillStatusPending {
		t.Errorf("february status = %s, want pending", feb[0].Status)
	}

	jan, err := svc.ListMonth(ctx, userID, "2026-01")
	if err != nil {
		t.Fatalf("list january: %v", err)
	}
	if jan[0].Status != core.BillStatusCanceled {
		t.Errorf("january status = %s, want canceled", jan[0].Status)
	}
}

func TestEnsureForMonthIncomeResetsActual(t *testing.T) {
	store := openTestStore(t)
	svc := NewIncomeService(store.Incomes, nil)
	ctx := context.Background()
	userID := uuid.New()

	income, err := svc.Create(ctx, CreateIncomeInput{
		UserID:         userID,
		Name:           "Salário",
		Type:           "salary",
		Frequency:      "monthly",
		ExpectedAmount: decimal.RequireFromString("5000.00"),
		MonthYear:      "2026-01",
		IsRecurring:    true,
	})
	if err != nil {
		t.Fatalf("create income: %v", err)
	}
	if err := svc.MarkReceived(ctx, userID, income.ID, decimal.RequireFromString("5100.00")); err != nil {
		t.Fatalf("mark received: %v", err)
	}

	feb, err := svc.ListMonth(ctx, userID, "2026-02")
	if err != nil {
		t.Fatalf("list february: %v", err)
	}
	if len(feb) != 1 {
		t.Fatalf("february incomes = %d, want 1", len(feb))
	}
	if feb[0].Status != core.IncomeStatusActive || feb[0].ActualAmount != nil {
		t.Errorf("materialized income not reset: %+v", feb[0])
	}
	if !feb[0].ExpectedAmount.Equal(decimal.RequireFromString("5000.00")) {
		t.Errorf("expected amount = %s, want 5000.00", feb[0].ExpectedAmount)
	}
}
