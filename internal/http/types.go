package http

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/oeduardop1/life-assistant-sub001/internal/core"
	"github.com/oeduardop1/life-assistant-sub001/internal/services"
)

// Wire representations. Amounts travel as JSON strings so decimal values
// survive the trip exactly.

type billResponse struct {
	ID               uuid.UUID       `json:"id"`
	Name             string          `json:"name"`
	Category         string          `json:"category"`
	Amount           decimal.Decimal `json:"amount"`
	DueDay           int             `json:"dueDay"`
	Status           string          `json:"status"`
	PaidAt           *time.Time      `json:"paidAt,omitempty"`
	IsRecurring      bool            `json:"isRecurring"`
	RecurringGroupID *uuid.UUID      `json:"recurringGroupId,omitempty"`
	MonthYear        string          `json:"monthYear"`
	Currency         string          `json:"currency"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

func toBillResponse(b core.Bill) billResponse {
	return billResponse{
		ID:               b.ID,
		Name:             b.Name,
		Category:         b.Category,
		Amount:           b.Amount,
		DueDay:           b.DueDay,
		Status:           string(b.Status),
		PaidAt:           b.PaidAt,
		IsRecurring:      b.IsRecurring,
		RecurringGroupID: b.RecurringGroupID,
		MonthYear:        string(b.MonthYear),
		Currency:         b.Currency,
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
	}
}

func toBillResponses(bills []core.Bill) []billResponse {
	out := make([]billResponse, 0, len(bills))
	for _, b := range bills {
		out = append(out, toBillResponse(b))
	}
	return out
}

type incomeResponse struct {
	ID               uuid.UUID        `json:"id"`
	Name             string           `json:"name"`
	Type             string           `json:"type"`
	Frequency        string           `json:"frequency"`
	ExpectedAmount   decimal.Decimal  `json:"expectedAmount"`
	ActualAmount     *decimal.Decimal `json:"actualAmount,omitempty"`
	Status           string           `json:"status"`
	IsRecurring      bool             `json:"isRecurring"`
	RecurringGroupID *uuid.UUID       `json:"recurringGroupId,omitempty"`
	MonthYear        string           `json:"monthYear"`
	Currency         string           `json:"currency"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

func toIncomeResponse(i core.Income) incomeResponse {
	return incomeResponse{
		ID:               i.ID,
		Name:             i.Name,
		Type:             i.Type,
		Frequency:        i.Frequency,
		ExpectedAmount:   i.ExpectedAmount,
		ActualAmount:     i.ActualAmount,
		Status:           string(i.Status),
		IsRecurring:      i.IsRecurring,
		RecurringGroupID: i.RecurringGroupID,
		MonthYear:        string(i.MonthYear),
		Currency:         i.Currency,
		CreatedAt:        i.CreatedAt,
		UpdatedAt:        i.UpdatedAt,
	}
}

func toIncomeResponses(incomes []core.Income) []incomeResponse {
	out := make([]incomeResponse, 0, len(incomes))
	for _, i := range incomes {
		out = append(out, toIncomeResponse(i))
	}
	return out
}

type expenseResponse struct {
	ID               uuid.UUID       `json:"id"`
	Name             string          `json:"name"`
	Category         string          `json:"category"`
	ExpectedAmount   decimal.Decimal `json:"expectedAmount"`
	ActualAmount     decimal.Decimal `json:"actualAmount"`
	Status           string          `json:"status"`
	IsRecurring      bool            `json:"isRecurring"`
	RecurringGroupID *uuid.UUID      `json:"recurringGroupId,omitempty"`
	MonthYear        string          `json:"monthYear"`
	Currency         string          `json:"currency"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

func toExpenseResponse(e core.VariableExpense) expenseResponse {
	return expenseResponse{
		ID:               e.ID,
		Name:             e.Name,
		Category:         e.Category,
		ExpectedAmount:   e.ExpectedAmount,
		ActualAmount:     e.ActualAmount,
		Status:           string(e.Status),
		IsRecurring:      e.IsRecurring,
		RecurringGroupID: e.RecurringGroupID,
		MonthYear:        string(e.MonthYear),
		Currency:         e.Currency,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}

func toExpenseResponses(expenses []core.VariableExpense) []expenseResponse {
	out := make([]expenseResponse, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, toExpenseResponse(e))
	}
	return out
}

type debtResponse struct {
	ID                 uuid.UUID        `json:"id"`
	Name               string           `json:"name"`
	Creditor           *string          `json:"creditor,omitempty"`
	TotalAmount        decimal.Decimal  `json:"totalAmount"`
	IsNegotiated       bool             `json:"isNegotiated"`
	TotalInstallments  *int             `json:"totalInstallments,omitempty"`
	InstallmentAmount  *decimal.Decimal `json:"installmentAmount,omitempty"`
	CurrentInstallment int              `json:"currentInstallment"`
	PaidInstallments   int              `json:"paidInstallments"`
	DueDay             *int             `json:"dueDay,omitempty"`
	StartMonthYear     string           `json:"startMonthYear,omitempty"`
	Status             string           `json:"status"`
	Notes              *string          `json:"notes,omitempty"`
	Currency           string           `json:"currency"`
	CreatedAt          time.Time        `json:"createdAt"`
	UpdatedAt          time.Time        `json:"updatedAt"`
}

func toDebtResponse(d core.Debt) debtResponse {
	return debtResponse{
		ID:                 d.ID,
		Name:               d.Name,
		Creditor:           d.Creditor,
		TotalAmount:        d.TotalAmount,
		IsNegotiated:       d.IsNegotiated,
		TotalInstallments:  d.TotalInstallments,
		InstallmentAmount:  d.InstallmentAmount,
		CurrentInstallment: d.CurrentInstallment,
		PaidInstallments:   d.PaidInstallments(),
		DueDay:             d.DueDay,
		StartMonthYear:     string(d.StartMonthYear),
		Status:             string(d.Status),
		Notes:              d.Notes,
		Currency:           d.Currency,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
}

func toDebtResponses(debts []core.Debt) []debtResponse {
	out := make([]debtResponse, 0, len(debts))
	for _, d := range debts {
		out = append(out, toDebtResponse(d))
	}
	return out
}

type paymentResponse struct {
	ID                uuid.UUID       `json:"id"`
	InstallmentNumber int             `json:"installmentNumber"`
	Amount            decimal.Decimal `json:"amount"`
	MonthYear         string          `json:"monthYear"`
	PaidAt            time.Time       `json:"paidAt"`
	PaidEarly         bool            `json:"paidEarly"`
}

type paymentHistoryResponse struct {
	Debt           debtResponse      `json:"debt"`
	Payments       []paymentResponse `json:"payments"`
	TotalAmount    decimal.Decimal   `json:"totalAmount"`
	PaidEarlyCount int               `json:"paidEarlyCount"`
}

func toPaymentHistoryResponse(h services.PaymentHistory) paymentHistoryResponse {
	out := paymentHistoryResponse{
		Debt:           toDebtResponse(h.Debt),
		Payments:       make([]paymentResponse, 0, len(h.Payments)),
		TotalAmount:    h.TotalAmount,
		PaidEarlyCount: h.PaidEarlyCount,
	}
	for _, p := range h.Payments {
		out.Payments = append(out.Payments, paymentResponse{
			ID:                p.ID,
			InstallmentNumber: p.InstallmentNumber,
			Amount:            p.Amount,
			MonthYear:         string(p.MonthYear),
			PaidAt:            p.PaidAt,
			PaidEarly:         p.PaidEarly,
		})
	}
	return out
}

type upcomingInstallmentResponse struct {
	DebtID            uuid.UUID       `json:"debtId"`
	DebtName          string          `json:"debtName"`
	Creditor          *string         `json:"creditor,omitempty"`
	InstallmentNumber int             `json:"installmentNumber"`
	TotalInstallments int             `json:"totalInstallments"`
	Amount            decimal.Decimal `json:"amount"`
	DueDay            int             `json:"dueDay"`
	MonthYear         string          `json:"monthYear"`
	Status            string          `json:"status"`
	PaidAt            *time.Time      `json:"paidAt,omitempty"`
}

type upcomingInstallmentsResponse struct {
	Installments   []upcomingInstallmentResponse `json:"installments"`
	TotalAmount    decimal.Decimal               `json:"totalAmount"`
	PendingCount   int                           `json:"pendingCount"`
	PaidCount      int                           `json:"paidCount"`
	PaidEarlyCount int                           `json:"paidEarlyCount"`
	OverdueCount   int                           `json:"overdueCount"`
}

func toUpcomingResponse(u services.UpcomingInstallments) upcomingInstallmentsResponse {
	out := upcomingInstallmentsResponse{
		Installments:   make([]upcomingInstallmentResponse, 0, len(u.Installments)),
		TotalAmount:    u.TotalAmount,
		PendingCount:   u.PendingCount,
		PaidCount:      u.PaidCount,
		PaidEarlyCount: u.PaidEarlyCount,
		OverdueCount:   u.OverdueCount,
	}
	for _, item := range u.Installments {
		out.Installments = append(out.Installments, upcomingInstallmentResponse{
			DebtID:            item.DebtID,
			DebtName:          item.DebtName,
			Creditor:          item.Creditor,
			InstallmentNumber: item.InstallmentNumber,
			TotalInstallments: item.TotalInstallments,
			Amount:            item.Amount,
			DueDay:            item.DueDay,
			MonthYear:         string(item.MonthYear),
			Status:            string(item.Status),
			PaidAt:            item.PaidAt,
		})
	}
	return out
}

type projectionResponse struct {
	EstimatedPayoffMonth string  `json:"estimatedPayoffMonth"`
	RemainingMonths      int     `json:"remainingMonths"`
	AvgPaymentsPerMonth  float64 `json:"avgPaymentsPerMonth"`
	IsRegular            bool    `json:"isRegular"`
}

type debtSummaryResponse struct {
	TotalDebts            int             `json:"totalDebts"`
	TotalAmount           decimal.Decimal `json:"totalAmount"`
	TotalPaid             decimal.Decimal `json:"totalPaid"`
	TotalRemaining        decimal.Decimal `json:"totalRemaining"`
	NegotiatedCount       int             `json:"negotiatedCount"`
	MonthlyInstallmentSum decimal.Decimal `json:"monthlyInstallmentSum"`
}

func toDebtSummaryResponse(s services.DebtSummary) debtSummaryResponse {
	return debtSummaryResponse{
		TotalDebts:            s.TotalDebts,
		TotalAmount:           s.TotalAmount,
		TotalPaid:             s.TotalPaid,
		TotalRemaining:        s.TotalRemaining,
		NegotiatedCount:       s.NegotiatedCount,
		MonthlyInstallmentSum: s.MonthlyInstallmentSum,
	}
}

type financeSummaryResponse struct {
	MonthYear             string              `json:"monthYear"`
	TotalIncomeExpected   decimal.Decimal     `json:"totalIncomeExpected"`
	TotalIncomeActual     decimal.Decimal     `json:"totalIncomeActual"`
	TotalBills            decimal.Decimal     `json:"totalBills"`
	TotalExpensesExpected decimal.Decimal     `json:"totalExpensesExpected"`
	TotalExpensesActual   decimal.Decimal     `json:"totalExpensesActual"`
	TotalBudgeted         decimal.Decimal     `json:"totalBudgeted"`
	TotalSpent            decimal.Decimal     `json:"totalSpent"`
	Balance               decimal.Decimal     `json:"balance"`
	DebtPaymentsThisMonth decimal.Decimal     `json:"debtPaymentsThisMonth"`
	BillCounts            billCountsResponse  `json:"billCounts"`
	Debts                 debtSummaryResponse `json:"debts"`
}

type billCountsResponse struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Paid     int `json:"paid"`
	Overdue  int `json:"overdue"`
	Canceled int `json:"canceled"`
}
