package http

import (
	"net/http"
)

func (s *Server) handleFinanceSummary(w http.ResponseWriter, r *http.Request) {
	month, err := s.monthFromQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	summary, err := s.summaries.ForMonth(r.Context(), userIDFrom(r), month)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, financeSummaryResponse{
		MonthYear:             string(summary.MonthYear),
		TotalIncomeExpected:   summary.TotalIncomeExpected,
		TotalIncomeActual:     summary.TotalIncomeActual,
		TotalBills:            summary.TotalBills,
		TotalExpensesExpected: summary.TotalExpensesExpected,
		TotalExpensesActual:   summary.TotalExpensesActual,
		TotalBudgeted:         summary.TotalBudgeted,
		TotalSpent:            summary.TotalSpent,
		Balance:               summary.Balance,
		DebtPaymentsThisMonth: summary.DebtPaymentsThisMonth,
		BillCounts: billCountsResponse{
			Total:    summary.BillCounts.Total,
			Pending:  summary.BillCounts.Pending,
			Paid:     summary.BillCounts.Paid,
			Overdue:  summary.BillCounts.Overdue,
			Canceled: summary.BillCounts.Canceled,
		},
		Debts: toDebtSummaryResponse(summary.Debts),
	})
}
