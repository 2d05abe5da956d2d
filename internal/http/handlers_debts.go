package http

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/oeduardop1/life-assistant-sub001/internal/core"
	"github.com/oeduardop1/life-assistant-sub001/internal/services"
)

type createDebtRequest struct {
	Name              string           `json:"name"`
	Creditor          *string          `json:"creditor"`
	TotalAmount       decimal.Decimal  `json:"totalAmount"`
	IsNegotiated      bool             `json:"isNegotiated"`
	TotalInstallments *int             `json:"totalInstallments"`
	InstallmentAmount *decimal.Decimal `json:"installmentAmount"`
	DueDay            *int             `json:"dueDay"`
	StartMonthYear    string           `json:"startMonthYear"`
	Notes             *string          `json:"notes"`
	Currency          string           `json:"currency"`
}

func (s *Server) handleCreateDebt(w http.ResponseWriter, r *http.Request) {
	var req createDebtRequest
	if err := readJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	var start core.MonthYear
	if req.StartMonthYear != "" {
		parsed, err := core.ParseMonthYear(req.StartMonthYear)
		if err != nil {
			writeError(w, r, err)
			return
		}
		start = parsed
	}

	debt, err := s.debts.Create(r.Context(), services.CreateDebtInput{
		UserID:            userIDFrom(r),
		Name:              req.Name,
		Creditor:          req.Creditor,
		TotalAmount:       req.TotalAmount,
		IsNegotiated:      req.IsNegotiated,
		TotalInstallments: req.TotalInstallments,
		InstallmentAmount: req.InstallmentAmount,
		DueDay:            req.DueDay,
		StartMonthYear:    start,
		Notes:             req.Notes,
		Currency:          req.Currency,
	}, s.todayFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toDebtResponse(debt))
}

// handleListDebts lists all debts, or only the ones visible in ?month=.
func (s *Server) handleListDebts(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r)

	if r.URL.Query().Get("month") == "" {
		debts, err := s.debts.List(r.Context(), userID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toDebtResponses(debts))
		return
	}

	month, err := s.monthFromQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	debts, err := s.debts.ListForMonth(r.Context(), userID, month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDebtResponses(debts))
}

func (s *Server) handleGetDebt(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, "invalid id")
		return
	}
	debt, err := s.debts.Get(r.Context(), userIDFrom(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDebtResponse(debt))
}

type updateDebtRequest struct {
	Name        *string          `json:"name"`
	Creditor    *string          `json:"creditor"`
	TotalAmount *decimal.Decimal `json:"totalAmount"`
	Notes       *string          `json:"notes"`
	Currency    *string          `json:"currency"`
}

func (s *Server) handleUpdateDebt(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, "invalid id")
		return
	}
	var req updateDebtRequest
	if err := readJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	debt, err := s.debts.Update(r.Context(), userIDFrom(r), id, services.UpdateDebtInput{
		Name:        req.Name,
		Creditor:    req.Creditor,
		TotalAmount: req.TotalAmount,
		Notes:       req.Notes,
		Currency:    req.Currency,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDebtResponse(debt))
}

func (s *Server) handleDeleteDebt(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, "invalid id")
		return
	}
	if err := s.debts.Delete(r.Context(), userIDFrom(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type negotiateDebtRequest struct {
	TotalInstallments int             `json:"totalInstallments"`
	InstallmentAmount decimal.Decimal `json:"installmentAmount"`
	DueDay            int             `json:"dueDay"`
	StartMonthYear    string          `json:"startMonthYear"`
}

func (s *Server) handleNegotiateDebt(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, "invalid id")
		return
	}
	var req negotiateDebtRequest
	if err := readJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	terms := core.NegotiationTerms{
		TotalInstallments: req.TotalInstallments,
		InstallmentAmount: req.InstallmentAmount,
		DueDay:            req.DueDay,
	}
	if req.StartMonthYear != "" {
		start, err := core.ParseMonthYear(req.StartMonthYear)
		if err != nil {
			writeError(w, r, err)
			return
		}
		terms.StartMonthYear = start
	}

	debt, err := s.debts.Negotiate(r.Context(), userIDFrom(r), id, terms, s.todayFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDebtResponse(debt))
}

type payDebtRequest struct {
	Quantity int `json:"quantity"`
}

type payDebtResponse struct {
	Debt     debtResponse      `json:"debt"`
	Payments []paymentResponse `json:"payments"`
}

func (s *Server) handlePayDebt(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, "invalid id")
		return
	}
	req := payDebtRequest{Quantity: 1}
	if r.ContentLength > 0 {
		if err := readJSON(r, &req); err != nil {
			writeBadRequest(w, "invalid request body")
			return
		}
	}

	debt, payments, err := s.debts.PayInstallment(r.Context(), userIDFrom(r), id, req.Quantity, time.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := payDebtResponse{Debt: toDebtResponse(debt)}
	for _, p := range payments {
		resp.Payments = append(resp.Payments, paymentResponse{
			ID:                p.ID,
			InstallmentNumber: p.InstallmentNumber,
			Amount:            p.Amount,
			MonthYear:         string(p.MonthYear),
			PaidAt:            p.PaidAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDebtPayments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, "invalid id")
		return
	}
	history, err := s.debts.PaymentHistory(r.Context(), userIDFrom(r), id, s.locationFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentHistoryResponse(history))
}

func (s *Server) handleUpcomingInstallments(w http.ResponseWriter, r *http.Request) {
	month, err := s.monthFromQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	upcoming, err := s.debts.UpcomingInstallments(r.Context(), userIDFrom(r), month, s.todayFrom(r), s.locationFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUpcomingResponse(upcoming))
}

func (s *Server) handleDebtProjection(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, "invalid id")
		return
	}
	projection, err := s.debts.Projection(r.Context(), userIDFrom(r), id, s.todayFrom(r), s.locationFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if projection == nil {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, projectionResponse{
		EstimatedPayoffMonth: string(projection.EstimatedPayoffMonth),
		RemainingMonths:      projection.RemainingMonths,
		AvgPaymentsPerMonth:  projection.Velocity.AvgPaymentsPerMonth,
		IsRegular:            projection.Velocity.IsRegular,
	})
}

func (s *Server) handleDebtSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.debts.Summary(r.Context(), userIDFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDebtSummaryResponse(summary))
}
