package http

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/oeduardop1/life-assistant-sub001/internal/core"
	"github.com/oeduardop1/life-assistant-sub001/internal/services"
)

type createBillRequest struct {
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	DueDay      int             `json:"dueDay"`
	MonthYear   string          `json:"monthYear"`
	IsRecurring bool            `json:"isRecurring"`
	Currency    string          `json:"currency"`
}

func (s *Server) handleCreateBill(w http.ResponseWriter, r *http.Request) {
	var req createBillRequest
	if err := readJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	month, err := core.ParseMonthYear(req.MonthYear)
	if err != nil {
		writeError(w, r, err)
		return
	}

	bill, err := s.bills.Create(r.Context(), services.CreateBillInput{
		UserID:      userIDFrom(r),
		Name:        req.Name,
		Category:    req.Category,
		Amount:      req.Amount,
		DueDay:      req.DueDay,
		MonthYear:   month,
		IsRecurring: req.IsRecurring,
		Currency:    req.Currency,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBillResponse(bill))
}

func (s *Server) handleListBills(w http.ResponseWriter, r *http.Request) {
	month, err := s.monthFromQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	bills, err := s.bills.ListMonth(r.Context(), userIDFrom(r), month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBillResponses(bills))
}

func (s *Server) handleGetBill(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, "invalid id")
		return
	}
	bill, err := s.bills.Get(r.Context(), userIDFrom(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBillResponse(bill))
}

type updateBillRequest struct {
	Name     *string          `json:"name"`
	Category *string          `json:"category"`
	Amount   *decimal.Decimal `json:"amount"`
	DueDay   *int             `json:"dueDay"`
	Currency *string          `json:"currency"`
}

func (s *Server) handleUpdateBill(w http.ResponseWriter, r *http.Request) {
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
	var req updateBillRequest
	if err := readJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	affected, err := s.bills.Update(r.Context(), userIDFrom(r), id, scope, services.UpdateBillInput{
		Name:     req.Name,
		Category: req.Category,
		Amount:   req.Amount,
		DueDay:   req.DueDay,
		Currency: req.Currency,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"affected": affected})
}

func (s *Server) handleDeleteBill(w http.ResponseWriter, r *http.Request) {
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
	if err := s.bills.Delete(r.Context(), userIDFrom(r), id, scope); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handlePayBill(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, "invalid id")
		return
	}
	if err := s.bills.MarkPaid(r.Context(), userIDFrom(r), id, time.Now()); err != nil {
		writeError(w, r, err)
		return
	}
	bill, err := s.bills.Get(r.Context(), userIDFrom(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBillResponse(bill))
}

func (s *Server) handleUnpayBill(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, "invalid id")
		return
	}
	if err := s.bills.MarkUnpaid(r.Context(), userIDFrom(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	bill, err := s.bills.Get(r.Context(), userIDFrom(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBillResponse(bill))
}
