package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/oeduardop1/life-assistant-sub001/internal/core"
	"github.com/oeduardop1/life-assistant-sub001/internal/storage"
)

// Scope selects how far along a recurrence chain a mutation reaches.
type Scope string

const (
	ScopeThis   Scope = "this"
	ScopeFuture Scope = "future"
	ScopeAll    Scope = "all"
)

// ParseScope validates a scope string, defaulting empty to "this".
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case "":
		return ScopeThis, nil
	case ScopeThis, ScopeFuture, ScopeAll:
		return Scope(s), nil
	default:
		return "", fmt.Errorf("%w: unknown scope %q", core.ErrInvalidArgument, s)
	}
}

// ChainStore is the slice of a repository scoped mutations need.
type ChainStore[T any] interface {
	Get(ctx context.Context, userID, id uuid.UUID) (T, error)
	Update(ctx context.Context, userID, id uuid.UUID, p *storage.Patch) error
	UpdateGroup(ctx context.Context, userID, groupID uuid.UUID, p *storage.Patch) (int64, error)
	UpdateGroupAfter(ctx context.Context, userID, groupID uuid.UUID, after core.MonthYear, p *storage.Patch) (int64, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	DeleteGroup(ctx context.Context, userID, groupID uuid.UUID) (int64, error)
	DeleteGroupAfter(ctx context.Context, userID, groupID uuid.UUID, after core.MonthYear) (int64, error)
}

// updateWithScope applies p to the target row and, depending on scope, the
// rest of its recurrence chain. A row without a group always behaves as
// scope "this". Returns how many rows changed.
func updateWithScope[T core.Recurrable[T]](ctx context.Context, store ChainStore[T], userID, id uuid.UUID, scope Scope, p *storage.Patch) (int64, error) {
	item, err := store.Get(ctx, userID, id)
	if err != nil {
		return 0, err
	}

	groupID := item.GroupID()
	if groupID == nil || scope == ScopeThis {
		if err := store.Update(ctx, userID, id, p); err != nil {
			return 0, err
		}
		return 1, nil
	}

	switch scope {
	case ScopeFuture:
		if err := store.Update(ctx, userID, id, p); err != nil {
			return 0, err
		}
		later, err := store.UpdateGroupAfter(ctx, userID, *groupID, item.Month(), p)
		if err != nil {
			return 0, err
		}
		return later + 1, nil
	case ScopeAll:
		return store.UpdateGroup(ctx, userID, *groupID, p)
	default:
		return 0, fmt.Errorf("%w: unknown scope %q", core.ErrInvalidArgument, scope)
	}
}

// detachAndDeleteFuture implements the "future" delete: the target row is
// kept but unhooked from recurrence so the engine stops copying it forward,
// and already-materialized later rows are removed.
func detachAndDeleteFuture[T core.Recurrable[T]](ctx context.Context, store ChainStore[T], userID uuid.UUID, item T) (int64, error) {
	groupID := item.GroupID()
	if groupID == nil {
		return 0, nil
	}
	detach := storage.NewPatch().Set("is_recurring", 0)
	if err := store.Update(ctx, userID, item.ItemID(), detach); err != nil {
		return 0, err
	}
	return store.DeleteGroupAfter(ctx, userID, *groupID, item.Month())
}
