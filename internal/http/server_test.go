package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/oeduardop1/life-assistant-sub001/internal/services"
	"github.com/oeduardop1/life-assistant-sub001/internal/storage"
)

const testSecret = "test-secret-test-secret-123"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store, err := storage.Open(filepath.Join(t.TempDir(), "finance.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	debts := services.NewDebtService(store.Debts, nil)
	srv := NewServer(":0", Deps{
		Store:           store,
		Bills:           services.NewBillService(store.Bills, nil),
		Incomes:         services.NewIncomeService(store.Incomes, nil),
		Expenses:        services.NewExpenseService(store.Expenses, nil),
		Debts:           debts,
		Summaries:       services.NewSummaryService(store, debts),
		JWTSecret:       testSecret,
		DefaultLocation: time.UTC,
	})
	t.Cleanup(func() { srv.rateLimiter.stop() })

	ts := httptest.NewServer(srv.Server.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func signToken(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID.String(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func doRequest(t *testing.T, ts *httptest.Server, token, method, path string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, raw
}

func TestHealthEndpointsSkipAuth(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		resp, _ := doRequest(t, ts, "", http.MethodGet, path, nil)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, resp.StatusCode)
		}
	}
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := doRequest(t, ts, "", http.MethodGet, "/api/bills", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", resp.StatusCode)
	}

	resp, _ = doRequest(t, ts, "not-a-jwt", http.MethodGet, "/api/bills", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("bad token: status = %d, want 401", resp.StatusCode)
	}

	// Token signed with a different secret is rejected.
	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	forgedString, _ := forged.SignedString([]byte("another-secret-entirely-xyz"))
	resp, _ = doRequest(t, ts, forgedString, http.MethodGet, "/api/bills", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("forged token: status = %d, want 401", resp.StatusCode)
	}
}

func TestBillLifecycleOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	token := signToken(t, uuid.New())

	resp, raw := doRequest(t, ts, token, http.MethodPost, "/api/bills", map[string]any{
		"name":        "Aluguel",
		"category":    "housing",
		"amount":      "1500.00",
		"dueDay":      5,
		"monthYear":   "2026-03",
		"isRecurring": true,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create bill: status = %d, body %s", resp.StatusCode, raw)
	}
	var created billResponse
	if err := json.Unmarshal(raw, &created); err != nil {
		t.Fatalf("decode bill: %v", err)
	}
	if created.Status != "pending" || created.RecurringGroupID == nil {
		t.Errorf("created bill = %+v", created)
	}
	if !created.Amount.Equal(decimal.RequireFromString("1500.00")) {
		t.Errorf("amount = %s, want 1500.00", created.Amount)
	}

	resp, raw = doRequest(t, ts, token, http.MethodGet, "/api/bills?month=2026-03", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list bills: status = %d", resp.StatusCode)
	}
	var listed []billResponse
	if err := json.Unmarshal(raw, &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("listed = %d bills, want 1", len(listed))
	}

	resp, raw = doRequest(t, ts, token, http.MethodPost, fmt.Sprintf("/api/bills/%s/pay", created.ID), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("pay bill: status = %d, body %s", resp.StatusCode, raw)
	}
	var paid billResponse
	if err := json.Unmarshal(raw, &paid); err != nil {
		t.Fatalf("decode paid bill: %v", err)
	}
	if paid.Status != "paid" || paid.PaidAt == nil {
		t.Errorf("paid bill = %+v", paid)
	}

	// Listing a later month materializes the next occurrence as pending.
	resp, raw = doRequest(t, ts, token, http.MethodGet, "/api/bills?month=2026-04", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list next month: status = %d", resp.StatusCode)
	}
	listed = nil
	if err := json.Unmarshal(raw, &listed); err != nil {
		t.Fatalf("decode next month: %v", err)
	}
	if len(listed) != 1 || listed[0].Status != "pending" || listed[0].PaidAt != nil {
		t.Errorf("next month = %+v", listed)
	}

	resp, _ = doRequest(t, ts, token, http.MethodPatch, fmt.Sprintf("/api/bills/%s?scope=bogus", created.ID), map[string]any{"name": "x"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bogus scope: status = %d, want 400", resp.StatusCode)
	}
}

func TestBillsAreTenantScoped(t *testing.T) {
	ts := newTestServer(t)
	owner := signToken(t, uuid.New())
	stranger := signToken(t, uuid.New())

	_, raw := doRequest(t, ts, owner, http.MethodPost, "/api/bills", map[string]any{
		"name":      "Luz",
		"category":  "utilities",
		"amount":    "200.00",
		"dueDay":    10,
		"monthYear": "2026-03",
	})
	var created billResponse
	if err := json.Unmarshal(raw, &created); err != nil {
		t.Fatalf("decode bill: %v", err)
	}

	resp, _ := doRequest(t, ts, stranger, http.MethodGet, "/api/bills/"+created.ID.String(), nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("cross-tenant get: status = %d, want 404", resp.StatusCode)
	}
}

func TestDebtFlowOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	token := signToken(t, uuid.New())

	resp, raw := doRequest(t, ts, token, http.MethodPost, "/api/debts", map[string]any{
		"name":        "Empréstimo",
		"totalAmount": "1200.00",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create debt: status = %d, body %s", resp.StatusCode, raw)
	}
	var debt debtResponse
	if err := json.Unmarshal(raw, &debt); err != nil {
		t.Fatalf("decode debt: %v", err)
	}

	// Paying before negotiation conflicts.
	resp, _ = doRequest(t, ts, token, http.MethodPost, fmt.Sprintf("/api/debts/%s/pay", debt.ID), map[string]any{"quantity": 1})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("pay before negotiate: status = %d, want 409", resp.StatusCode)
	}

	resp, raw = doRequest(t, ts, token, http.MethodPost, fmt.Sprintf("/api/debts/%s/negotiate", debt.ID), map[string]any{
		"totalInstallments": 4,
		"installmentAmount": "300.00",
		"dueDay":            10,
		"startMonthYear":    "2026-01",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("negotiate: status = %d, body %s", resp.StatusCode, raw)
	}
	var negotiated debtResponse
	if err := json.Unmarshal(raw, &negotiated); err != nil {
		t.Fatalf("decode negotiated: %v", err)
	}
	if !negotiated.IsNegotiated || negotiated.StartMonthYear != "2026-01" {
		t.Errorf("negotiated = %+v", negotiated)
	}

	resp, raw = doRequest(t, ts, token, http.MethodPost, fmt.Sprintf("/api/debts/%s/pay", debt.ID), map[string]any{"quantity": 2})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("pay: status = %d, body %s", resp.StatusCode, raw)
	}
	var payResult payDebtResponse
	if err := json.Unmarshal(raw, &payResult); err != nil {
		t.Fatalf("decode pay result: %v", err)
	}
	if len(payResult.Payments) != 2 || payResult.Debt.CurrentInstallment != 3 {
		t.Errorf("pay result = %+v", payResult)
	}
	if payResult.Payments[0].MonthYear != "2026-01" || payResult.Payments[1].MonthYear != "2026-02" {
		t.Errorf("scheduled months = %+v", payResult.Payments)
	}

	resp, raw = doRequest(t, ts, token, http.MethodGet, fmt.Sprintf("/api/debts/%s/payments", debt.ID), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("payments: status = %d", resp.StatusCode)
	}
	var history paymentHistoryResponse
	if err := json.Unmarshal(raw, &history); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(history.Payments) != 2 || !history.TotalAmount.Equal(decimal.RequireFromString("600.00")) {
		t.Errorf("history = %+v", history)
	}

	resp, raw = doRequest(t, ts, token, http.MethodGet, "/api/debts/summary", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("debt summary: status = %d", resp.StatusCode)
	}
	var summary debtSummaryResponse
	if err := json.Unmarshal(raw, &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.TotalDebts != 1 || !summary.TotalPaid.Equal(decimal.RequireFromString("600.00")) {
		t.Errorf("summary = %+v", summary)
	}
}

func TestFinanceSummaryOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	token := signToken(t, uuid.New())

	_, _ = doRequest(t, ts, token, http.MethodPost, "/api/incomes", map[string]any{
		"name":           "Salário",
		"type":           "salary",
		"frequency":      "monthly",
		"expectedAmount": "5000.00",
		"monthYear":      "2026-03",
	})
	_, _ = doRequest(t, ts, token, http.MethodPost, "/api/bills", map[string]any{
		"name":      "Internet",
		"category":  "utilities",
		"amount":    "99.90",
		"dueDay":    10,
		"monthYear": "2026-03",
	})

	resp, raw := doRequest(t, ts, token, http.MethodGet, "/api/summary?month=2026-03", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("summary: status = %d, body %s", resp.StatusCode, raw)
	}
	var summary financeSummaryResponse
	if err := json.Unmarshal(raw, &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.MonthYear != "2026-03" {
		t.Errorf("month = %s", summary.MonthYear)
	}
	if !summary.TotalIncomeExpected.Equal(decimal.RequireFromString("5000.00")) {
		t.Errorf("income expected = %s", summary.TotalIncomeExpected)
	}
	if !summary.TotalBills.Equal(decimal.RequireFromString("99.90")) {
		t.Errorf("bills total = %s", summary.TotalBills)
	}
	if summary.BillCounts.Pending != 1 || summary.BillCounts.Total != 1 {
		t.Errorf("bill counts = %+v", summary.BillCounts)
	}
}
