package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/oeduardop1/life-assistant-sub001/internal/core"
	"github.com/oeduardop1/life-assistant-sub001/internal/services"
)

type createExpenseRequest struct {
	Name           string          `json:"name"`
	Category       string          `json:"category"`
	ExpectedAmount decimal.Decimal `json:"expectedAmount"`
	MonthYear      string          `json:"monthYear"`
	IsRecurring    bool            `json:"isRecurring"`
	Currency       string          `json:"currency"`
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if err := readJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	month, err := core.ParseMonthYear(req.MonthYear)
	if err != nil {
		writeError(w, r, err)
		return
	}

	expense, err := s.expenses.Create(r.Context(), services.CreateExpenseInput{
		UserID:         userIDFrom(r),
		Name:           req.Name,
		Category:       req.Category,
		ExpectedAmount: req.ExpectedAmount,
		MonthYear:      month,
		IsRecurring:    req.IsRecurring,
		Currency:       req.Currency,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toExpenseResponse(expense))
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	month, err := s.monthFromQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	expenses, err := s.expenses.ListMonth(r.Context(), userIDFrom(r), month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseResponses(expenses))
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, "invalid id")
		return
	}
	expense, err := s.expenses.Get(r.Context(), userIDFrom(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseResponse(expense))
}

type updateExpenseRequest struct {
	Name           *string          `json:"name"`
	Category       *string          `json:"category"`
	ExpectedAmount *decimal.Decimal `json:"expectedAmount"`
	Currency       *string          `json:"currency"`
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, "invalid id")
		return
	}
	scope, err := scopeFromQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req updateExpenseRequest
	if err := readJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	affected, err := s.expenses.Update(r.Context(), userIDFrom(r), id, scope, services.UpdateExpenseInput{
		Name:           req.Name,
		Category:       req.Category,
		ExpectedAmount: req.ExpectedAmount,
		Currency:       req.Currency,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"affected": affected})
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, "invalid id")
		return
	}
	scope, err := scopeFromQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.expenses.Delete(r.Context(), userIDFrom(r), id, scope); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type recordActualRequest struct {
	ActualAmount decimal.Decimal `json:"actualAmount"`
}

func (s *Server) handleRecordExpenseActual(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, "invalid id")
		return
	}
	var req recordActualRequest
	if err := readJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if err := s.expenses.RecordActual(r.Context(), userIDFrom(r), id, req.ActualAmount); err != nil {
		writeError(w, r, err)
		return
	}
	expense, err := s.expenses.Get(r.Context(), userIDFrom(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseResponse(expense))
}

type excludeExpenseRequest struct {
	Excluded bool `json:"excluded"`
}

func (s *Server) handleExcludeExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, "invalid id")
		return
	}
	var req excludeExpenseRequest
	if err := readJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if err := s.expenses.SetExcluded(r.Context(), userIDFrom(r), id, req.Excluded); err != nil {
		writeError(w, r, err)
		return
	}
	expense, err := s.expenses.Get(r.Context(), userIDFrom(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseResponse(expense))
}
