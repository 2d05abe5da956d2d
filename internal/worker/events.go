package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/oeduardop1/life-assistant-sub001/internal/amqp"
)

// EventLogger drains the finance queue and records every event as a
// structured log line. It gives the worker a durable audit trail of state
// changes published by the API without requiring a downstream system.
type EventLogger struct{}

func NewEventLogger() *EventLogger {
	return &EventLogger{}
}

// Handle records one event. Events missing a type or user are rejected so
// the consumer dead-letters them instead of acking garbage.
func (l *EventLogger) Handle(event *amqp.Event) error {
	if event.Type == "" {
		return errors.New("event missing type")
	}
	if event.UserID == "" {
		return fmt.Errorf("event %s missing user id", event.Type)
	}

	attrs := []any{
		"type", event.Type,
		"user_id", event.UserID,
		"timestamp", event.Timestamp,
	}
	if event.EntityID != "" {
		attrs = append(attrs, "entity_id", event.EntityID)
	}
	if event.MonthYear != "" {
		attrs = append(attrs, "month_year", event.MonthYear)
	}
	if event.Count != 0 {
		attrs = append(attrs, "count", event.Count)
	}

	slog.Info("Finance event received", attrs...)
	return nil
}

// Run consumes events until ctx is canceled. A canceled context is a normal
// shutdown, not an error.
func (l *EventLogger) Run(ctx context.Context, client *amqp.Client) error {
	err := client.Consume(ctx, l.Handle)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
