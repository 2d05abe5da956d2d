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

// IncomeService manages expected and received incomes.
type IncomeService struct {
	incomes    *storage.IncomeRepo
	amqpClient *amqp.Client
}

func NewIncomeService(incomes *storage.IncomeRepo, amqpClient *amqp.Client) *IncomeService {
	return &IncomeService{
		incomes:    incomes,
		amqpClient: amqpClient,
	}
}

type CreateIncomeInput struct {
	UserID         uuid.UUID
	Name           string
	Type           string
	Frequency      string
	ExpectedAmount decimal.Decimal
	MonthYear      core.MonthYear
	IsRecurring    bool
	Currency       string
}

func (s *IncomeService) Create(ctx context.Context, in CreateIncomeInput) (core.Income, error) {
	income := core.Income{
		ID:             uuid.New(),
		UserID:         in.UserID,
		Name:           in.Name,
		Type:           in.Type,
		Frequency:      in.Frequency,
		ExpectedAmount: in.ExpectedAmount,
		Status:         core.IncomeStatusActive,
		IsRecurring:    in.IsRecurring,
		MonthYear:      in.MonthYear,
		Currency:       currencyOrDefault(in.Currency),
	}
	if in.IsRecurring {
		groupID := uuid.New()
		income.RecurringGroupID = &groupID
	}
	if err := income.Validate(); err != nil {
		return core.Income{}, err
	}

	if err := s.incomes.Insert(ctx, income); err != nil {
		return core.Income{}, fmt.Errorf("create income: %w", err)
	}

	s.publish(ctx, amqp.NewEvent(amqp.EventIncomeCreated, income.UserID.String(), income.ID.String()).
		WithMonth(string(income.MonthYear)))
	return income, nil
}

// ListMonth materializes month's recurring incomes and returns every occurrence.
func (s *IncomeService) ListMonth(ctx context.Context, userID uuid.UUID, month core.MonthYear) ([]core.Income, error) {
	created, err := EnsureForMonth[core.Income](ctx, s.incomes, userID, month)
	if err != nil {
		return nil, err
	}
	if created > 0 {
		s.publish(ctx, amqp.NewEvent(amqp.EventRecurrenceMaterialized, userID.String(), "").
			WithMonth(string(month)).WithCount(created))
	}
	return s.incomes.ListByMonth(ctx, userID, month)
}

func (s *IncomeService) Get(ctx context.Context, userID, id uuid.UUID) (core.Income, error) {
	return s.incomes.Get(ctx, userID, id)
}

type UpdateIncomeInput struct {
	Name           *string
	Type           *string
	Frequency      *string
	ExpectedAmount *decimal.Decimal
	Currency       *string
}

func (in UpdateIncomeInput) patch() (*storage.Patch, error) {
	p := storage.NewPatch()
	if in.Name != nil {
		if *in.Name == "" {
			return nil, fmt.Errorf("%w: empty name", core.ErrInvalidArgument)
		}
		p.Set("name", *in.Name)
	}
	if in.Type != nil {
		p.Set("type", *in.Type)
	}
	if in.Frequency != nil {
		p.Set("frequency", *in.Frequency)
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

func (s *IncomeService) Update(ctx context.Context, userID, id uuid.UUID, scope Scope, in UpdateIncomeInput) (int64, error) {
	p, err := in.patch()
	if err != nil {
		return 0, err
	}
	affected, err := updateWithScope[core.Income](ctx, s.incomes, userID, id, scope, p)
	if err != nil {
		return 0, err
	}
	s.publish(ctx, amqp.NewEvent(amqp.EventIncomeUpdated, userID.String(), id.String()))
	return affected, nil
}

// MarkReceived records the actually received amount for the month.
func (s *IncomeService) MarkReceived(ctx context.Context, userID, id uuid.UUID, actual decimal.Decimal) error {
	if actual.IsNegative() {
		return fmt.Errorf("%w: negative amount", core.ErrInvalidArgument)
	}
	p := storage.NewPatch().
		Set("status", string(core.IncomeStatusReceived)).
		Set("actual_amount", actual.String())
	if err := s.incomes.Update(ctx, userID, id, p); err != nil {
		return err
	}
	s.publish(ctx, amqp.NewEvent(amqp.EventIncomeUpdated, userID.String(), id.String()))
	return nil
}

// Delete removes an income occurrence. Unlike bills, a single occurrence is
// hard-deleted; the recurrence chain only stops when scope widens.
func (s *IncomeService) Delete(ctx context.Context, userID, id uuid.UUID, scope Scope) error {
	income, err := s.incomes.Get(ctx, userID, id)
	if err != nil {
		return err
	}

	switch {
	case income.RecurringGroupID == nil || scope == ScopeThis:
		if err := s.incomes.Delete(ctx, userID, id); err != nil {
			return err
		}
	case scope == ScopeFuture:
		if _, err := detachAndDeleteFuture[core.Income](ctx, s.incomes, userID, income); err != nil {
			return err
		}
	case scope == ScopeAll:
		if _, err := s.incomes.DeleteGroup(ctx, userID, *income.RecurringGroupID); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: unknown scope %q", core.ErrInvalidArgument, scope)
	}
	return nil
}

func (s *IncomeService) publish(ctx context.Context, event *amqp.Event) {
	if s.amqpClient == nil {
		return
	}
	if err := s.amqpClient.PublishEvent(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish income event",
			"type", event.Type, "error", err)
	}
}
