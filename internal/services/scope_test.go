package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/oeduardop1/life-assistant-sub001/internal/core"
)

func TestParseScope(t *testing.T) {
	tests := []struct {
		in      string
		want    Scope
		wantErr bool
	}{
		{"", ScopeThis, false},
		{"this", ScopeThis, false},
		{"future", ScopeFuture, false},
		{"all", ScopeAll, false},
		{"everything", "", true},
	}
	for _, tt := range tests {
		got, err := ParseScope(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseScope(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseScope(%q) = %s, want %s", tt.in, got, tt.want)
		}
		if tt.wantErr && !errors.Is(err, core.ErrInvalidArgument) {
			t.Errorf("ParseScope(%q) error = %v, want ErrInvalidArgument", tt.in, err)
		}
	}
}

// seedChain creates a recurring bill in January and walks the chain to March,
// returning the three occurrences in month order.
func seedChain(t *testing.T, svc *BillService, userID uuid.UUID) []core.Bill {
	t.Helper()
	ctx := context.Background()

	createRecurringBill(t, svc, userID, "2026-01")
	var chain []core.Bill
	for _, m := range []core.MonthYear{"2026-01", "2026-02", "2026-03"} {
		bills, err := svc.ListMonth(ctx, userID, m)
		if err != nil {
			t.Fatalf("list %s: %v", m, err)
		}
		if len(bills) != 1 {
			t.Fatalf("%s bills = %d, want 1", m, len(bills))
		}
		chain = append(chain, bills[0])
	}
	return chain
}

func TestUpdateScopeThis(t *testing.T) {
	store := openTestStore(t)
	svc := NewBillService(store.Bills, nil)
	ctx := context.Background()
	userID := uuid.New()
	chain := seedChain(t, svc, userID)

	newAmount := decimal.RequireFromString("120.00")
	affected, err := svc.Update(ctx, userID, chain[1].ID, ScopeThis, UpdateBillInput{Amount: &newAmount})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if affected != 1 {
		t.Errorf("affected = %d, want 1", affected)
	}

	for i, want := range []string{"99.9", "120", "99.9"} {
		got, err := svc.Get(ctx, userID, chain[i].ID)
		if err != nil {
			t.Fatalf("get %s: %v", chain[i].MonthYear, err)
		}
		if !got.Amount.Equal(decimal.RequireFromString(want)) {
			t.Errorf("%s amount = %s, want %s", got.MonthYear, got.Amount, want)
		}
	}
}

func TestUpdateScopeFuture(t *testing.T) {
	store := openTestStore(t)
	svc := NewBillService(store.Bills, nil)
	ctx := context.Background()
	userID := uuid.New()
	chain := seedChain(t, svc, userID)

	newAmount := decimal.RequireFromString("150.00")
	affected, err := svc.Update(ctx, userID, chain[1].ID, ScopeFuture, UpdateBillInput{Amount: &newAmount})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if affected != 2 {
		t.Errorf("affected = %d, want 2", affected)
	}

	for i, want := range []string{"99.9", "150", "150"} {
		got, err := svc.Get(ctx, userID, chain[i].ID)
		if err != nil {
			t.Fatalf("get %s: %v", chain[i].MonthYear, err)
		}
		if !got.Amount.Equal(decimal.RequireFromString(want)) {
			t.Errorf("%s amount = %s, want %s", got.MonthYear, got.Amount, want)
		}
	}
}

func TestUpdateScopeAll(t *testing.T) {
	store := openTestStore(t)
	svc := NewBillService(store.Bills, nil)
	ctx := context.Background()
	userID := uuid.New()
	chain := seedChain(t, svc, userID)

	name := "Fibra"
	affected, err := svc.Update(ctx, userID, chain[1].ID, ScopeAll, UpdateBillInput{Name: &name})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if affected != 3 {
		t.Errorf("affected = %d, want 3", affected)
	}
	for _, b := range chain {
		got, err := svc.Get(ctx, userID, b.ID)
		if err != nil {
			t.Fatalf("get %s: %v", b.MonthYear, err)
		}
		if got.Name != "Fibra" {
			t.Errorf("%s name = %s, want Fibra", got.MonthYear, got.Name)
		}
	}
}

func TestBillDeleteScopeFutureKeepsDetachedTarget(t *testing.T) {
	store := openTestStore(t)
	svc := NewBillService(store.Bills, nil)
	ctx := context.Background()
	userID := uuid.New()
	chain := seedChain(t, svc, userID)

	if err := svc.Delete(ctx, userID, chain[1].ID, ScopeFuture); err != nil {
		t.Fatalf("delete future: %v", err)
	}

	// Target survives but no longer recurs.
	feb, err := svc.Get(ctx, userID, chain[1].ID)
	if err != nil {
		t.Fatalf("get february: %v", err)
	}
	if feb.IsRecurring {
		t.Error("february still recurring after future delete")
	}

	// March is gone.
	if _, err := svc.Get(ctx, userID, chain[2].ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("march get = %v, want ErrNotFound", err)
	}

	// And the engine does not bring it back.
	mar, err := svc.ListMonth(ctx, userID, "2026-03")
	if err != nil {
		t.Fatalf("list march: %v", err)
	}
	if len(mar) != 0 {
		t.Errorf("march bills = %d, want 0", len(mar))
	}
}

func TestBillDeleteScopeAllRemovesChain(t *testing.T) {
	store := openTestStore(t)
	svc := NewBillService(store.Bills, nil)
	ctx := context.Background()
	userID := uuid.New()
	chain := seedChain(t, svc, userID)

	if err := svc.Delete(ctx, userID, chain[1].ID, ScopeAll); err != nil {
		t.Fatalf("delete all: %v", err)
	}
	for _, b := range chain {
		if _, err := svc.Get(ctx, userID, b.ID); !errors.Is(err, core.ErrNotFound) {
			t.Errorf("%s get = %v, want ErrNotFound", b.MonthYear, err)
		}
	}
}

func TestExpenseDeleteScopeThisHardDeletes(t *testing.T) {
	store := openTestStore(t)
	svc := NewExpenseService(store.Expenses, nil)
	ctx := context.Background()
	userID := uuid.New()

	expense, err := svc.Create(ctx, CreateExpenseInput{
		UserID:         userID,
		Name:           "Mercado",
		Category:       "food",
		ExpectedAmount: decimal.RequireFromString("800.00"),
		MonthYear:      "2026-01",
		IsRecurring:    true,
	})
	if err != nil {
		t.Fatalf("create expense: %v", err)
	}

	if err := svc.Delete(ctx, userID, expense.ID, ScopeThis); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, userID, expense.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("get after delete = %v, want ErrNotFound", err)
	}
}
