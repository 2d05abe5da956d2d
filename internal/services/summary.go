package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/oeduardop1/life-assistant-sub001/internal/core"
	"github.com/oeduardop1/life-assistant-sub001/internal/storage"
)

// SummaryService aggregates the whole month view: incomes, bills, variable
// expenses and debts.
type SummaryService struct {
	store *storage.Store
	debts *DebtService
}

func NewSummaryService(store *storage.Store, debts *DebtService) *SummaryService {
	return &SummaryService{
		store: store,
		debts: debts,
	}
}

type BillStatusCounts struct {
	Total    int
	Pending  int
	Paid     int
	Overdue  int
	Canceled int
}

type FinanceSummary struct {
	MonthYear core.MonthYear

	TotalIncomeExpected decimal.Decimal
	TotalIncomeActual   decimal.Decimal

	TotalBills decimal.Decimal
	BillCounts BillStatusCounts

	TotalExpensesExpected decimal.Decimal
	TotalExpensesActual   decimal.Decimal

	// TotalBudgeted is bills plus expected expenses plus the monthly
	// installment load of active negotiated debts.
	TotalBudgeted decimal.Decimal
	// TotalSpent is paid bills plus actual expenses plus this month's
	// debt payments.
	TotalSpent decimal.Decimal
	// Balance is actual income minus total spent.
	Balance decimal.Decimal

	Debts                 DebtSummary
	DebtPaymentsThisMonth decimal.Decimal
}

// ForMonth builds the month's finance summary. The individual aggregates are
// fetched in parallel.
func (s *SummaryService) ForMonth(ctx context.Context, userID uuid.UUID, month core.MonthYear) (FinanceSummary, error) {
	var (
		incomeExpected, incomeActual     decimal.Decimal
		billsTotal, billsPaid            decimal.Decimal
		billCounts                       map[core.BillStatus]int
		expensesExpected, expensesActual decimal.Decimal
		debtSummary                      DebtSummary
		debtPayments                     decimal.Decimal
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		incomeExpected, incomeActual, err = s.store.Incomes.Totals(gctx, userID, month)
		return err
	})
	g.Go(func() error {
		var err error
		billsTotal, billsPaid, err = s.store.Bills.Totals(gctx, userID, month)
		return err
	})
	g.Go(func() error {
		var err error
		billCounts, err = s.store.Bills.CountsByStatus(gctx, userID, month)
		return err
	})
	g.Go(func() error {
		var err error
		expensesExpected, expensesActual, err = s.store.Expenses.Totals(gctx, userID, month)
		return err
	})
	g.Go(func() error {
		var err error
		debtSummary, err = s.debts.Summary(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		debtPayments, err = s.debts.SumPaymentsByMonth(gctx, userID, month)
		return err
	})
	if err := g.Wait(); err != nil {
		return FinanceSummary{}, err
	}

	counts := BillStatusCounts{
		Pending:  billCounts[core.BillStatusPending],
		Paid:     billCounts[core.BillStatusPaid],
		Overdue:  billCounts[core.BillStatusOverdue],
		Canceled: billCounts[core.BillStatusCanceled],
	}
	counts.Total = counts.Pending + counts.Paid + counts.Overdue + counts.Canceled

	totalBudgeted := billsTotal.Add(expensesExpected).Add(debtSummary.MonthlyInstallmentSum)
	totalSpent := billsPaid.Add(expensesActual).Add(debtPayments)

	return FinanceSummary{
		MonthYear:             month,
		TotalIncomeExpected:   incomeExpected,
		TotalIncomeActual:     incomeActual,
		TotalBills:            billsTotal,
		BillCounts:            counts,
		TotalExpensesExpected: expensesExpected,
		TotalExpensesActual:   expensesActual,
		TotalBudgeted:         totalBudgeted,
		TotalSpent:            totalSpent,
		Balance:               incomeActual.Sub(totalSpent),
		Debts:                 debtSummary,
		DebtPaymentsThisMonth: debtPayments,
	}, nil
}
