package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/oeduardop1/life-assistant-sub001/internal/core"
)

// RecurrenceStore is the slice of a repository the materialization step
// needs. All three obligation repos satisfy it for their own row type.
type RecurrenceStore[T any] interface {
	ListTemplates(ctx context.Context, userID uuid.UUID, month core.MonthYear) ([]T, error)
	ExistingGroupIDs(ctx context.Context, userID uuid.UUID, month core.MonthYear) (map[uuid.UUID]struct{}, error)
	InsertBatch(ctx context.Context, items []T) (int, error)
}

// EnsureForMonth materializes month's recurring occurrences by copying the
// previous month's recurring rows, one hop back only. Already-present groups
// are skipped, and the conflict-tolerant insert makes concurrent calls for
// the same month converge on a single row per group. Returns how many rows
// were created.
//
// Canceled and excluded rows propagate like any other: the copy resets
// status, so a group keeps flowing forward until the user stops it with a
// scoped delete.
func EnsureForMonth[T core.Recurrable[T]](ctx context.Context, store RecurrenceStore[T], userID uuid.UUID, month core.MonthYear) (int, error) {
	templates, err := store.ListTemplates(ctx, userID, month.Prev())
	if err != nil {
		return 0, fmt.Errorf("list recurrence templates: %w", err)
	}
	if len(templates) == 0 {
		return 0, nil
	}

	existing, err := store.ExistingGroupIDs(ctx, userID, month)
	if err != nil {
		return 0, fmt.Errorf("list existing groups: %w", err)
	}

	var missing []T
	for _, tpl := range templates {
		groupID := tpl.GroupID()
		if groupID == nil {
			continue
		}
		if _, ok := existing[*groupID]; ok {
			continue
		}
		missing = append(missing, tpl.CloneForMonth(month))
	}
	if len(missing) == 0 {
		return 0, nil
	}

	created, err := store.InsertBatch(ctx, missing)
	if err != nil {
		return 0, fmt.Errorf("insert materialized occurrences: %w", err)
	}
	if created > 0 {
		slog.InfoContext(ctx, "Materialized recurring occurrences",
			"user_id", userID, "month_year", month, "created_count", created)
	}
	return created, nil
}
