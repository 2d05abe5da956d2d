package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/oeduardop1/life-assistant-sub001/internal/amqp"
	"github.com/oeduardop1/life-assistant-sub001/internal/core"
	"github.com/oeduardop1/life-assistant-sub001/internal/storage"
)

// OverdueChecker flips active negotiated debts to overdue once they fall
// behind their schedule.
type OverdueChecker struct {
	debts      *storage.DebtRepo
	amqpClient *amqp.Client
	loc        *time.Location
}

func NewOverdueChecker(debts *storage.DebtRepo, amqpClient *amqp.Client, loc *time.Location) *OverdueChecker {
	if loc == nil {
		loc = time.UTC
	}
	return &OverdueChecker{
		debts:      debts,
		amqpClient: amqpClient,
		loc:        loc,
	}
}

// Sweep walks every active negotiated debt and marks the ones behind
// schedule as overdue. Returns how many debts were flipped.
func (c *OverdueChecker) Sweep(ctx context.Context, now time.Time) (int, error) {
	month := core.MonthYearOf(now.In(c.loc))

	candidates, err := c.debts.ListActiveNegotiated(ctx)
	if err != nil {
		return 0, fmt.Errorf("list active negotiated debts: %w", err)
	}

	flipped := 0
	for _, d := range candidates {
		if !d.ShouldBeOverdue(month) {
			continue
		}
		if err := c.debts.UpdateStatus(ctx, d.ID, core.DebtStatusOverdue); err != nil {
			slog.ErrorContext(ctx, "Failed to mark debt overdue",
				"debt_id", d.ID, "error", err)
			continue
		}
		flipped++
		slog.InfoContext(ctx, "Debt marked overdue",
			"debt_id", d.ID,
			"user_id", d.UserID,
			"paid", d.PaidInstallments(),
			"month_year", month)

		if c.amqpClient != nil {
			event := amqp.NewEvent(amqp.EventDebtOverdue, d.UserID.String(), d.ID.String()).
				WithMonth(string(month))
			if err := c.amqpClient.PublishEvent(ctx, event); err != nil {
				slog.ErrorContext(ctx, "Failed to publish overdue event",
					"debt_id", d.ID, "error", err)
			}
		}
	}
	return flipped, nil
}
