package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/oeduardop1/life-assistant-sub001/internal/core"
	"github.com/oeduardop1/life-assistant-sub001/internal/services"
)

type createIncomeRequest struct {
	Name           string          `json:"name"`
	Type           string          `json:"type"`
	Frequency      string          `json:"frequency"`
	ExpectedAmount decimal.Decimal `json:"expectedAmount"`
	MonthYear      string          `json:"monthYear"`
	IsRecurring    bool            `json:"isRecurring"`
	Currency       string          `json:"currency"`
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	var req createIncomeRequest
	if err := readJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	month, err := core.ParseMonthYear(req.MonthYear)
	if err != nil {
		writeError(w, r, err)
		return
	}

	income, err := s.incomes.Create(r.Context(), services.CreateIncomeInput{
		UserID:         userIDFrom(r),
		Name:           req.Name,
		Type:           req.Type,
		Frequency:      req.Frequency,
		ExpectedAmount: req.ExpectedAmount,
		MonthYear:      month,
		IsRecurring:    req.IsRecurring,
		Currency:       req.Currency,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toIncomeResponse(income))
}

func (s *Server) handleListIncomes(w http.ResponseWriter, r *http.Request) {
	month, err := s.monthFromQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	incomes, err := s.incomes.ListMonth(r.Context(), userIDFrom(r), month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toIncomeResponses(incomes))
}

func (s *Server) handleGetIncome(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, "invalid id")
		return
	}
	income, err := s.incomes.Get(r.Context(), userIDFrom(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toIncomeResponse(income))
}

type updateIncomeRequest struct {
	Name           *string          `json:"name"`
	Type           *string          `json:"type"`
	Frequency      *string          `json:"frequency"`
	ExpectedAmount *decimal.Decimal `json:"expectedAmount"`
	Currency       *string          `json:"currency"`
}

func (s *Server) handleUpdateIncome(w http.ResponseWriter, r *http.Request) {
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
	var req updateIncomeRequest
	if err := readJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	affected, err := s.incomes.Update(r.Context(), userIDFrom(r), id, scope, services.UpdateIncomeInput{
		Name:           req.Name,
		Type:           req.Type,
		Frequency:      req.Frequency,
		ExpectedAmount: req.ExpectedAmount,
		Currency:       req.Currency,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"affected": affected})
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
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
	if err := s.incomes.Delete(r.Context(), userIDFrom(r), id, scope); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type receiveIncomeRequest struct {
	ActualAmount decimal.Decimal `json:"actualAmount"`
}

func (s *Server) handleReceiveIncome(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, "invalid id")
		return
	}
	var req receiveIncomeRequest
	if err := readJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if err := s.incomes.MarkReceived(r.Context(), userIDFrom(r), id, req.ActualAmount); err != nil {
		writeError(w, r, err)
		return
	}
	income, err := s.incomes.Get(r.Context(), userIDFrom(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toIncomeResponse(income))
}
