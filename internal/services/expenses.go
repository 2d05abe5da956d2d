package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/oeduardop1/life-assistant-sub001/internal/amqp"
	"github.com/oeduardop1/life-assistant-sub001/internal/core"
	"github.com/oeduardop1/life-assistant-sub001/internal/storage"
)

// ExpenseService manages variable monthly expenses.
type ExpenseService struct {
	expenses   *storage.ExpenseRepo
	amqpClient *amqp.Client
}

func NewExpenseService(expenses *storage.ExpenseRepo, amqpClient *amqp.Client) *ExpenseService {
	return &ExpenseService{
		expenses:   expenses,
		amqpClient: amqpClient,
	}
}

type CreateExpenseInput struct {
	UserID         uuid.UUID
	Name           string
	Category       string
	ExpectedAmount decimal.Decimal
	MonthYear      core.MonthYear
	IsRecurring    bool
	Currency       string
}

func (s *ExpenseService) Create(ctx context.Context, in CreateExpenseInput) (core.VariableExpense, error) {
	expense := core.VariableExpense{
		ID:             uuid.New(),
		UserID:         in.UserID,
		Name:           in.Name,
		Category:       in.Category,
		ExpectedAmount: in.ExpectedAmount,
		ActualAmount:   decimal.Zero,
		Status:         core.ExpenseStatusActive,
		IsRecurring:    in.IsRecurring,
		MonthYear:      in.MonthYear,
		Currency:       currencyOrDefault(in.Currency),
	}
	if in.IsRecurring {
		groupID := uuid.New()
		expense.RecurringGroupID = &groupID
	}
	if err := expense.Validate(); err != nil {
		return core.VariableExpense{}, err
	}

	if err := s.expenses.Insert(ctx, expense); err != nil {
		return core.VariableExpense{}, fmt.Errorf("create expense: %w", err)
	}

	s.publish(ctx, amqp.NewEvent(amqp.EventExpenseCreated, expense.UserID.String(), expense.ID.String()).
		WithMonth(string(expense.MonthYear)))
	return expense, nil
}

// ListMonth materializes month's recurring expenses and returns every occurrence.
func (s *ExpenseService) ListMonth(ctx context.Context, userID uuid.UUID, month core.MonthYear) ([]core.VariableExpense, error) {
	created, err := EnsureForMonth[core.VariableExpense](ctx, s.expenses, userID, month)
	if err != nil {
		return nil, err
	}
	if created > 0 {
		s.publish(ctx, amqp.NewEvent(amqp.EventRecurrenceMaterialized, userID.String(), "").
			WithMonth(string(month)).WithCount(created))
	}
	return s.expenses.ListByMonth(ctx, userID, month)
}

func (s *ExpenseService) Get(ctx context.Context, userID, id uuid.UUID) (core.VariableExpense, error) {
	return s.expenses.Get(ctx, userID, id)
}

type UpdateExpenseInput struct {
	Name           *string
	Category       *string
	ExpectedAmount *decimal.Decimal
	Currency       *string
}

func (in UpdateExpenseInput) patch() (*storage.Patch, error) {
	p := storage.NewPatch()
	if in.Name != nil {
		if *in.Name == "" {
			return nil, fmt.Errorf("%w: empty name", core.ErrInvalidArgument)
		}
		p.Set("name", *in.Name)
	}
	if in.Category != nil {
		p.Set("category", *in.Category)
	}
	if in.ExpectedAmount != nil {
		if in.ExpectedAmount.IsNegative() {
			return nil, fmt.Errorf("%w: negative amount", core.ErrInvalidArgument)
		}
		p.Set("expected_amount", in.ExpectedAmount.String())
	}
	if in.Currency != nil {
		p.Set("currency", *in.Currency)
	}
	if p.Empty() {
		return nil, fmt.Errorf("%w: no fields to update", core.ErrInvalidArgument)
	}
	return p, nil
}

func (s *ExpenseService) Update(ctx context.Context, userID, id uuid.UUID, scope Scope, in UpdateExpenseInput) (int64, error) {
	p, err := in.patch()
	if err != nil {
		return 0, err
	}
	affected, err := updateWithScope[core.VariableExpense](ctx, s.expenses, userID, id, scope, p)
	if err != nil {
		return 0, err
	}
	s.publish(ctx, amqp.NewEvent(amqp.EventExpenseUpdated, userID.String(), id.String()))
	return affected, nil
}

// RecordActual sets the amount actually spent this month.
func (s *ExpenseService) RecordActual(ctx context.Context, userID, id uuid.UUID, actual decimal.Decimal) error {
	if actual.IsNegative() {
		return fmt.Errorf("%w: negative amount", core.ErrInvalidArgument)
	}
	p := storage.NewPatch().Set("actual_amount", actual.String())
	if err := s.expenses.Update(ctx, userID, id, p); err != nil {
		return err
	}
	s.publish(ctx, amqp.NewEvent(amqp.EventExpenseUpdated, userID.String(), id.String()))
	return nil
}

// SetExcluded removes an expense from month totals without deleting the row,
// or restores it.
func (s *ExpenseService) SetExcluded(ctx context.Context, userID, id uuid.UUID, excluded bool) error {
	status := core.ExpenseStatusActive
	if excluded {
		status = core.ExpenseStatusExcluded
	}
	p := storage.NewPatch().Set("status", string(status))
	if err := s.expenses.Update(ctx, userID, id, p); err != nil {
		return err
	}
	s.publish(ctx, amqp.NewEvent(amqp.EventExpenseUpdated, userID.String(), id.String()))
	return nil
}

// Delete removes an expense occurrence, widening along the chain per scope.
func (s *ExpenseService) Delete(ctx context.Context, userID, id uuid.UUID, scope Scope) error {
	expense, err := s.expenses.Get(ctx, userID, id)
	if err != nil {
		return err
	}

	switch {
	case expense.RecurringGroupID == nil || scope == ScopeThis:
		if err := s.expenses.Delete(ctx, userID, id); err != nil {
			return err
		}
	case scope == ScopeFuture:
		if _, err := detachAndDeleteFuture[core.VariableExpense](ctx, s.expenses, userID, expense); err != nil {
			return err
		}
	case scope == ScopeAll:
		if _, err := s.expenses.DeleteGroup(ctx, userID, *expense.RecurringGroupID); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: unknown scope %q", core.ErrInvalidArgument, scope)
	}
	return nil
}

func (s *ExpenseService) publish(ctx context.Context, event *amqp.Event) {
	if s.amqpClient == nil {
		return
	}
	if err := s.amqpClient.PublishEvent(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish expense event",
			"type", event.Type, "error", err)
	}
}
