package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/oeduardop1/life-assistant-sub001/internal/amqp"
	"github.com/oeduardop1/life-assistant-sub001/internal/core"
	"github.com/oeduardop1/life-assistant-sub001/internal/storage"
)

// BillService orchestrates fixed monthly obligations: creation, lazy
// recurrence materialization, scoped edits and payment marking.
type BillService struct {
	bills      *storage.BillRepo
	amqpClient *amqp.Client
}

func NewBillService(bills *storage.BillRepo, amqpClient *amqp.Client) *BillService {
	return &BillService{
		bills:      bills,
		amqpClient: amqpClient,
	}
}

type CreateBillInput struct {
	UserID      uuid.UUID
	Name        string
	Category    string
	Amount      decimal.Decimal
	DueDay      int
	MonthYear   core.MonthYear
	IsRecurring bool
	Currency    string
}

func (s *BillService) Create(ctx context.Context, in CreateBillInput) (core.Bill, error) {
	bill := core.Bill{
		ID:          uuid.New(),
		UserID:      in.UserID,
		Name:        in.Name,
		Category:    in.Category,
		Amount:      in.Amount,
		DueDay:      in.DueDay,
		Status:      core.BillStatusPending,
		IsRecurring: in.IsRecurring,
		MonthYear:   in.MonthYear,
		Currency:    currencyOrDefault(in.Currency),
	}
	if in.IsRecurring {
		groupID := uuid.New()
		bill.RecurringGroupID = &groupID
	}
	if err := bill.Validate(); err != nil {
		return core.Bill{}, err
	}

	if err := s.bills.Insert(ctx, bill); err != nil {
		return core.Bill{}, fmt.Errorf("create bill: %w", err)
	}

	s.publish(ctx, amqp.NewEvent(amqp.EventBillCreated, bill.UserID.String(), bill.ID.String()).
		WithMonth(string(bill.MonthYear)))
	return bill, nil
}

// ListMonth materializes month's recurring bills and returns every
// occurrence, canceled ones included so clients can show chain state.
func (s *BillService) ListMonth(ctx context.Context, userID uuid.UUID, month core.MonthYear) ([]core.Bill, error) {
	created, err := EnsureForMonth[core.Bill](ctx, s.bills, userID, month)
	if err != nil {
		return nil, err
	}
	if created > 0 {
		s.publish(ctx, amqp.NewEvent(amqp.EventRecurrenceMaterialized, userID.String(), "").
			WithMonth(string(month)).WithCount(created))
	}
	return s.bills.ListByMonth(ctx, userID, month)
}

func (s *BillService) Get(ctx context.Context, userID, id uuid.UUID) (core.Bill, error) {
	return s.bills.Get(ctx, userID, id)
}

type UpdateBillInput struct {
	Name     *string
	Category *string
	Amount   *decimal.Decimal
	DueDay   *int
	Currency *string
}

func (in UpdateBillInput) patch() (*storage.Patch, error) {
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
	if in.Amount != nil {
		if in.Amount.IsNegative() {
			return nil, fmt.Errorf("%w: negative amount", core.ErrInvalidArgument)
		}
		p.Set("amount", in.Amount.String())
	}
	if in.DueDay != nil {
		if *in.DueDay < 1 || *in.DueDay > 31 {
			return nil, fmt.Errorf("%w: due day %d out of range 1-31", core.ErrInvalidArgument, *in.DueDay)
		}
		p.Set("due_day", *in.DueDay)
	}
	if in.Currency != nil {
		p.Set("currency", *in.Currency)
	}
	if p.Empty() {
		return nil, fmt.Errorf("%w: no fields to update", core.ErrInvalidArgument)
	}
	return p, nil
}

// Update applies the changes to the target bill and, per scope, to the rest
// of its recurrence chain.
func (s *BillService) Update(ctx context.Context, userID, id uuid.UUID, scope Scope, in UpdateBillInput) (int64, error) {
	p, err := in.patch()
	if err != nil {
		return 0, err
	}
	affected, err := updateWithScope[core.Bill](ctx, s.bills, userID, id, scope, p)
	if err != nil {
		return 0, err
	}
	s.publish(ctx, amqp.NewEvent(amqp.EventBillUpdated, userID.String(), id.String()))
	return affected, nil
}

// Delete stops a bill according to scope. A single occurrence is canceled
// rather than removed: a hard delete would let the recurrence engine
// re-create the month from the previous one, resurrecting the bill. "future"
// keeps the target but detaches it and removes later occurrences; "all"
// removes the whole chain.
func (s *BillService) Delete(ctx context.Context, userID, id uuid.UUID, scope Scope) error {
	bill, err := s.bills.Get(ctx, userID, id)
	if err != nil {
		return err
	}

	switch {
	case bill.RecurringGroupID == nil || scope == ScopeThis:
		cancel := storage.NewPatch().Set("status", string(core.BillStatusCanceled))
		if err := s.bills.Update(ctx, userID, id, cancel); err != nil {
			return err
		}
	case scope == ScopeFuture:
		if _, err := detachAndDeleteFuture[core.Bill](ctx, s.bills, userID, bill); err != nil {
			return err
		}
	case scope == ScopeAll:
		if _, err := s.bills.DeleteGroup(ctx, userID, *bill.RecurringGroupID); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: unknown scope %q", core.ErrInvalidArgument, scope)
	}

	s.publish(ctx, amqp.NewEvent(amqp.EventBillCanceled, userID.String(), id.String()).
		WithMonth(string(bill.MonthYear)))
	return nil
}

// MarkPaid records a payment timestamp and flips the bill to paid.
func (s *BillService) MarkPaid(ctx context.Context, userID, id uuid.UUID, paidAt time.Time) error {
	p := storage.NewPatch().
		Set("status", string(core.BillStatusPaid)).
		SetTime("paid_at", paidAt)
	if err := s.bills.Update(ctx, userID, id, p); err != nil {
		return err
	}
	s.publish(ctx, amqp.NewEvent(amqp.EventBillUpdated, userID.String(), id.String()))
	return nil
}

// MarkUnpaid reverts a paid bill to pending and clears the payment stamp.
func (s *BillService) MarkUnpaid(ctx context.Context, userID, id uuid.UUID) error {
	p := storage.NewPatch().
		Set("status", string(core.BillStatusPending)).
		Set("paid_at", nil)
	if err := s.bills.Update(ctx, userID, id, p); err != nil {
		return err
	}
	s.publish(ctx, amqp.NewEvent(amqp.EventBillUpdated, userID.String(), id.String()))
	return nil
}

func (s *BillService) publish(ctx context.Context, event *amqp.Event) {
	if s.amqpClient == nil {
		return
	}
	if err := s.amqpClient.PublishEvent(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish bill event",
			"type", event.Type, "error", err)
	}
}

func currencyOrDefault(c string) string {
	if c == "" {
		return "BRL"
	}
	return c
}
