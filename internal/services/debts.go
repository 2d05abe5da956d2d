package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/oeduardop1/life-assistant-sub001/internal/amqp"
	"github.com/oeduardop1/life-assistant-sub001/internal/core"
	"github.com/oeduardop1/life-assistant-sub001/internal/storage"
)

// DebtService manages debts and their installment lifecycle.
type DebtService struct {
	debts      *storage.DebtRepo
	amqpClient *amqp.Client
}

func NewDebtService(debts *storage.DebtRepo, amqpClient *amqp.Client) *DebtService {
	return &DebtService{
		debts:      debts,
		amqpClient: amqpClient,
	}
}

type CreateDebtInput struct {
	UserID            uuid.UUID
	Name              string
	Creditor          *string
	TotalAmount       decimal.Decimal
	IsNegotiated      bool
	TotalInstallments *int
	InstallmentAmount *decimal.Decimal
	DueDay            *int
	StartMonthYear    core.MonthYear
	Notes             *string
	Currency          string
}

func (s *DebtService) Create(ctx context.Context, in CreateDebtInput, today core.TodayContext) (core.Debt, error) {
	debt := core.Debt{
		ID:                uuid.New(),
		UserID:            in.UserID,
		Name:              in.Name,
		Creditor:          in.Creditor,
		TotalAmount:       in.TotalAmount,
		IsNegotiated:      in.IsNegotiated,
		TotalInstallments: in.TotalInstallments,
		InstallmentAmount: in.InstallmentAmount,
		DueDay:            in.DueDay,
		StartMonthYear:    in.StartMonthYear,
		Status:            core.DebtStatusActive,
		Notes:             in.Notes,
		Currency:          currencyOrDefault(in.Currency),
	}
	if in.IsNegotiated {
		debt.CurrentInstallment = 1
		if debt.StartMonthYear.IsZero() {
			debt.StartMonthYear = today.Month
		}
	}
	if err := debt.Validate(); err != nil {
		return core.Debt{}, err
	}

	if err := s.debts.Insert(ctx, debt); err != nil {
		return core.Debt{}, fmt.Errorf("create debt: %w", err)
	}

	s.publish(ctx, amqp.NewEvent(amqp.EventDebtCreated, debt.UserID.String(), debt.ID.String()))
	return debt, nil
}

func (s *DebtService) Get(ctx context.Context, userID, id uuid.UUID) (core.Debt, error) {
	return s.debts.Get(ctx, userID, id)
}

// List returns every debt of the user.
func (s *DebtService) List(ctx context.Context, userID uuid.UUID) ([]core.Debt, error) {
	return s.debts.List(ctx, userID)
}

// ListForMonth returns the debts that belong in month's view.
func (s *DebtService) ListForMonth(ctx context.Context, userID uuid.UUID, month core.MonthYear) ([]core.Debt, error) {
	debts, err := s.debts.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	visible := debts[:0]
	for _, d := range debts {
		if d.VisibleInMonth(month) {
			visible = append(visible, d)
		}
	}
	return visible, nil
}

type UpdateDebtInput struct {
	Name        *string
	Creditor    *string
	TotalAmount *decimal.Decimal
	Notes       *string
	Currency    *string
}

// Update edits the descriptive fields of a debt. Schedule fields only change
// through Negotiate and PayInstallment.
func (s *DebtService) Update(ctx context.Context, userID, id uuid.UUID, in UpdateDebtInput) (core.Debt, error) {
	debt, err := s.debts.Get(ctx, userID, id)
	if err != nil {
		return core.Debt{}, err
	}

	if in.Name != nil {
		if *in.Name == "" {
			return core.Debt{}, fmt.Errorf("%w: empty name", core.ErrInvalidArgument)
		}
		debt.Name = *in.Name
	}
	if in.Creditor != nil {
		debt.Creditor = in.Creditor
	}
	if in.TotalAmount != nil {
		if in.TotalAmount.IsNegative() {
			return core.Debt{}, fmt.Errorf("%w: negative total amount", core.ErrInvalidArgument)
		}
		debt.TotalAmount = *in.TotalAmount
	}
	if in.Notes != nil {
		debt.Notes = in.Notes
	}
	if in.Currency != nil {
		debt.Currency = *in.Currency
	}

	if err := s.debts.Save(ctx, debt); err != nil {
		return core.Debt{}, err
	}
	return debt, nil
}

func (s *DebtService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.debts.Delete(ctx, userID, id)
}

// Negotiate fixes an installment schedule on a debt. One-way: renegotiating
// an already negotiated debt fails.
func (s *DebtService) Negotiate(ctx context.Context, userID, id uuid.UUID, terms core.NegotiationTerms, today core.TodayContext) (core.Debt, error) {
	debt, err := s.debts.Get(ctx, userID, id)
	if err != nil {
		return core.Debt{}, err
	}
	if err := debt.Negotiate(terms, today); err != nil {
		return core.Debt{}, err
	}
	if err := s.debts.Save(ctx, debt); err != nil {
		return core.Debt{}, err
	}

	s.publish(ctx, amqp.NewEvent(amqp.EventDebtNegotiated, userID.String(), id.String()).
		WithMonth(string(debt.StartMonthYear)))
	return debt, nil
}

// PayInstallment consumes quantity installments. The counter update and the
// ledger rows are persisted in one transaction.
func (s *DebtService) PayInstallment(ctx context.Context, userID, id uuid.UUID, quantity int, now time.Time) (core.Debt, []core.DebtPayment, error) {
	debt, err := s.debts.Get(ctx, userID, id)
	if err != nil {
		return core.Debt{}, nil, err
	}

	payments, err := debt.ApplyPayment(quantity, now)
	if err != nil {
		return core.Debt{}, nil, err
	}
	if err := s.debts.ApplyPayment(ctx, debt, payments); err != nil {
		return core.Debt{}, nil, err
	}

	s.publish(ctx, amqp.NewEvent(amqp.EventDebtPaymentRecorded, userID.String(), id.String()).
		WithCount(len(payments)))
	return debt, payments, nil
}

// PaymentRecord is a ledger row annotated with whether it was paid before
// its scheduled month.
type PaymentRecord struct {
	core.DebtPayment
	PaidEarly bool
}

type PaymentHistory struct {
	Debt           core.Debt
	Payments       []PaymentRecord
	TotalAmount    decimal.Decimal
	PaidEarlyCount int
}

// PaymentHistory returns the full ledger of a debt. Early payment is judged
// by the calendar month of paid_at in loc against the scheduled month.
func (s *DebtService) PaymentHistory(ctx context.Context, userID, debtID uuid.UUID, loc *time.Location) (PaymentHistory, error) {
	debt, err := s.debts.Get(ctx, userID, debtID)
	if err != nil {
		return PaymentHistory{}, err
	}
	payments, err := s.debts.ListPayments(ctx, userID, debtID)
	if err != nil {
		return PaymentHistory{}, err
	}

	history := PaymentHistory{Debt: debt, TotalAmount: decimal.Zero}
	for _, p := range payments {
		paidInMonth := core.MonthYearOf(p.PaidAt.In(loc))
		record := PaymentRecord{DebtPayment: p, PaidEarly: paidInMonth < p.MonthYear}
		if record.PaidEarly {
			history.PaidEarlyCount++
		}
		history.TotalAmount = history.TotalAmount.Add(p.Amount)
		history.Payments = append(history.Payments, record)
	}
	return history, nil
}

// UpcomingInstallment is one scheduled installment in a month's view.
type UpcomingInstallment struct {
	DebtID            uuid.UUID
	DebtName          string
	Creditor          *string
	InstallmentNumber int
	TotalInstallments int
	Amount            decimal.Decimal
	DueDay            int
	MonthYear         core.MonthYear
	Status            core.InstallmentStatus
	PaidAt            *time.Time
	PaidInMonth       *core.MonthYear
}

type UpcomingInstallments struct {
	Installments   []UpcomingInstallment
	TotalAmount    decimal.Decimal
	PendingCount   int
	PaidCount      int
	PaidEarlyCount int
	OverdueCount   int
}

// UpcomingInstallments lists, for every negotiated debt visible in month,
// the installment scheduled for that month with its payment state.
func (s *DebtService) UpcomingInstallments(ctx context.Context, userID uuid.UUID, month core.MonthYear, today core.TodayContext, loc *time.Location) (UpcomingInstallments, error) {
	debts, err := s.debts.List(ctx, userID)
	if err != nil {
		return UpcomingInstallments{}, err
	}

	result := UpcomingInstallments{TotalAmount: decimal.Zero}
	for _, d := range debts {
		if !d.IsNegotiated || d.TotalInstallments == nil || d.StartMonthYear.IsZero() {
			continue
		}
		if !d.VisibleInMonth(month) {
			continue
		}
		n := core.InstallmentNumberForMonth(d.StartMonthYear, month)
		if n < 1 || n > *d.TotalInstallments {
			continue
		}

		item := UpcomingInstallment{
			DebtID:            d.ID,
			DebtName:          d.Name,
			Creditor:          d.Creditor,
			InstallmentNumber: n,
			TotalInstallments: *d.TotalInstallments,
			MonthYear:         month,
		}
		if d.InstallmentAmount != nil {
			item.Amount = *d.InstallmentAmount
		}
		if d.DueDay != nil {
			item.DueDay = *d.DueDay
		}

		payment, err := s.debts.GetPayment(ctx, userID, d.ID, n)
		switch {
		case err == nil:
			paidAt := payment.PaidAt
			paidInMonth := core.MonthYearOf(paidAt.In(loc))
			item.PaidAt = &paidAt
			item.PaidInMonth = &paidInMonth
		case errors.Is(err, core.ErrNotFound):
			// unpaid
		default:
			return UpcomingInstallments{}, err
		}

		item.Status = core.ClassifyInstallment(month, item.PaidInMonth, item.DueDay, today)
		switch item.Status {
		case core.InstallmentPaid:
			result.PaidCount++
		case core.InstallmentPaidEarly:
			result.PaidEarlyCount++
		case core.InstallmentOverdue:
			result.OverdueCount++
		default:
			result.PendingCount++
		}

		result.TotalAmount = result.TotalAmount.Add(item.Amount)
		result.Installments = append(result.Installments, item)
	}
	return result, nil
}

// Projection estimates when a debt will be paid off from its payment velocity.
func (s *DebtService) Projection(ctx context.Context, userID, debtID uuid.UUID, today core.TodayContext, loc *time.Location) (*PayoffProjection, error) {
	debt, err := s.debts.Get(ctx, userID, debtID)
	if err != nil {
		return nil, err
	}
	payments, err := s.debts.ListPayments(ctx, userID, debtID)
	if err != nil {
		return nil, err
	}
	return ProjectPayoff(debt, payments, today.Month, loc), nil
}

// DebtSummary aggregates the debt book for the finance summary.
type DebtSummary struct {
	TotalDebts            int
	TotalAmount           decimal.Decimal
	TotalPaid             decimal.Decimal
	TotalRemaining        decimal.Decimal
	NegotiatedCount       int
	MonthlyInstallmentSum decimal.Decimal
}

// Summary totals the user's debts. Paid value is derived from the installment
// counter, not the ledger, so non-ledger history still counts.
func (s *DebtService) Summary(ctx context.Context, userID uuid.UUID) (DebtSummary, error) {
	debts, err := s.debts.List(ctx, userID)
	if err != nil {
		return DebtSummary{}, err
	}

	summary := DebtSummary{
		TotalAmount:           decimal.Zero,
		TotalPaid:             decimal.Zero,
		TotalRemaining:        decimal.Zero,
		MonthlyInstallmentSum: decimal.Zero,
	}
	for _, d := range debts {
		summary.TotalDebts++
		summary.TotalAmount = summary.TotalAmount.Add(d.TotalAmount)

		if d.IsNegotiated && d.InstallmentAmount != nil {
			summary.NegotiatedCount++
			paid := d.InstallmentAmount.Mul(decimal.NewFromInt(int64(d.PaidInstallments())))
			summary.TotalPaid = summary.TotalPaid.Add(paid)

			if d.Status == core.DebtStatusActive {
				summary.MonthlyInstallmentSum = summary.MonthlyInstallmentSum.Add(*d.InstallmentAmount)
			}
		}
	}
	summary.TotalRemaining = summary.TotalAmount.Sub(summary.TotalPaid)
	if summary.TotalRemaining.IsNegative() {
		summary.TotalRemaining = decimal.Zero
	}
	return summary, nil
}

// SumPaymentsByMonth totals ledger rows scheduled for month.
func (s *DebtService) SumPaymentsByMonth(ctx context.Context, userID uuid.UUID, month core.MonthYear) (decimal.Decimal, error) {
	return s.debts.SumPaymentsByMonth(ctx, userID, month)
}

func (s *DebtService) publish(ctx context.Context, event *amqp.Event) {
	if s.amqpClient == nil {
		return
	}
	if err := s.amqpClient.PublishEvent(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish debt event",
			"type", event.Type, "error", err)
	}
}
