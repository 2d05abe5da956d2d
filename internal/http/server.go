package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	applog "github.com/oeduardop1/life-assistant-sub001/internal/log"
	"github.com/oeduardop1/life-assistant-sub001/internal/services"
	"github.com/oeduardop1/life-assistant-sub001/internal/storage"
)

// Server wires the JSON API over the finance services.
type Server struct {
	http.Server

	store     *storage.Store
	bills     *services.BillService
	incomes   *services.IncomeService
	expenses  *services.ExpenseService
	debts     *services.DebtService
	summaries *services.SummaryService

	jwtSecret   []byte
	defaultLoc  *time.Location
	rateLimiter *rateLimiter

	shutdownOnce sync.Once
}

// Deps carries everything the server needs beyond the listen address.
type Deps struct {
	Store     *storage.Store
	Bills     *services.BillService
	Incomes   *services.IncomeService
	Expenses  *services.ExpenseService
	Debts     *services.DebtService
	Summaries *services.SummaryService

	JWTSecret       string
	DefaultLocation *time.Location
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	mux := http.NewServeMux()

	loc := deps.DefaultLocation
	if loc == nil {
		loc = time.UTC
	}

	s := &Server{
		store:       deps.Store,
		bills:       deps.Bills,
		incomes:     deps.Incomes,
		expenses:    deps.Expenses,
		debts:       deps.Debts,
		summaries:   deps.Summaries,
		jwtSecret:   []byte(deps.JWTSecret),
		defaultLoc:  loc,
		rateLimiter: newRateLimiter(),
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /api/bills", s.handleCreateBill)
	mux.HandleFunc("GET /api/bills", s.handleListBills)
	mux.HandleFunc("GET /api/bills/{id}", s.handleGetBill)
	mux.HandleFunc("PATCH /api/bills/{id}", s.handleUpdateBill)
	mux.HandleFunc("DELETE /api/bills/{id}", s.handleDeleteBill)
	mux.HandleFunc("POST /api/bills/{id}/pay", s.handlePayBill)
	mux.HandleFunc("POST /api/bills/{id}/unpay", s.handleUnpayBill)

	mux.HandleFunc("POST /api/incomes", s.handleCreateIncome)
	mux.HandleFunc("GET /api/incomes", s.handleListIncomes)
	mux.HandleFunc("GET /api/incomes/{id}", s.handleGetIncome)
	mux.HandleFunc("PATCH /api/incomes/{id}", s.handleUpdateIncome)
	mux.HandleFunc("DELETE /api/incomes/{id}", s.handleDeleteIncome)
	mux.HandleFunc("POST /api/incomes/{id}/receive", s.handleReceiveIncome)

	mux.HandleFunc("POST /api/expenses", s.handleCreateExpense)
	mux.HandleFunc("GET /api/expenses", s.handleListExpenses)
	mux.HandleFunc("GET /api/expenses/{id}", s.handleGetExpense)
	mux.HandleFunc("PATCH /api/expenses/{id}", s.handleUpdateExpense)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)
	mux.HandleFunc("POST /api/expenses/{id}/actual", s.handleRecordExpenseActual)
	mux.HandleFunc("POST /api/expenses/{id}/exclude", s.handleExcludeExpense)

	mux.HandleFunc("POST /api/debts", s.handleCreateDebt)
	mux.HandleFunc("GET /api/debts", s.handleListDebts)
	mux.HandleFunc("GET /api/debts/summary", s.handleDebtSummary)
	mux.HandleFunc("GET /api/debts/upcoming", s.handleUpcomingInstallments)
	mux.HandleFunc("GET /api/debts/{id}", s.handleGetDebt)
	mux.HandleFunc("PATCH /api/debts/{id}", s.handleUpdateDebt)
	mux.HandleFunc("DELETE /api/debts/{id}", s.handleDeleteDebt)
	mux.HandleFunc("POST /api/debts/{id}/negotiate", s.handleNegotiateDebt)
	mux.HandleFunc("POST /api/debts/{id}/pay", s.handlePayDebt)
	mux.HandleFunc("GET /api/debts/{id}/payments", s.handleDebtPayments)
	mux.HandleFunc("GET /api/debts/{id}/projection", s.handleDebtProjection)

	mux.HandleFunc("GET /api/summary", s.handleFinanceSummary)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.withMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	return s
}

// withMiddleware adds request logging, request IDs, rate limiting and
// bearer auth. Health endpoints skip auth.
func (s *Server) withMiddleware(next http.Handler) http.Handler {
	authed := s.withAuth(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		logger := applog.FromContext(r.Context()).
			WithComponent(applog.ComponentHTTP).
			With(applog.FieldRequestID, requestID)
		ctx := context.WithValue(r.Context(), applog.LoggerContextKey, logger)
		r = r.WithContext(ctx)

		if !s.rateLimiter.allow(clientIP) {
			logger.WarnContext(ctx, "Rate limit exceeded",
				"client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		if r.URL.Path == "/healthz" || r.URL.Path == "/readyz" {
			next.ServeHTTP(rw, r)
		} else {
			authed.ServeHTTP(rw, r)
		}

		logger.InfoContext(ctx, "Request completed",
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds())
	})
}

// Shutdown stops the listener and the rate limiter cleanup goroutine.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.store != nil {
		if err := s.store.Ping(r.Context()); err != nil {
			slog.ErrorContext(r.Context(), "Readiness check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}
