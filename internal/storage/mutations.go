package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/oeduardop1/life-assistant-sub001/internal/core"
)

// Shared single-row and recurrence-chain mutations. The bills, incomes and
// variable_expenses tables share the same ownership and grouping columns, so
// the WHERE shapes are identical and only the table name varies.

func updateOne(ctx context.Context, db *sql.DB, table string, userID, id uuid.UUID, p *Patch) error {
	if p.Empty() {
		return fmt.Errorf("%w: empty update", core.ErrInvalidArgument)
	}
	set, args := p.setClause(formatTime(time.Now()))
	query := fmt.Sprintf("UPDATE %s SET %s WHERE user_id = ? AND id = ?", table, set)
	args = append(args, userID.String(), id.String())

	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update %s rows affected: %w", table, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", table, id, core.ErrNotFound)
	}
	return nil
}

func updateGroup(ctx context.Context, db *sql.DB, table string, userID, groupID uuid.UUID, p *Patch) (int64, error) {
	if p.Empty() {
		return 0, fmt.Errorf("%w: empty update", core.ErrInvalidArgument)
	}
	set, args := p.setClause(formatTime(time.Now()))
	query := fmt.Sprintf("UPDATE %s SET %s WHERE user_id = ? AND recurring_group_id = ?", table, set)
	args = append(args, userID.String(), groupID.String())

	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("update %s group: %w", table, err)
	}
	return res.RowsAffected()
}

func updateGroupAfter(ctx context.Context, db *sql.DB, table string, userID, groupID uuid.UUID, after core.MonthYear, p *Patch) (int64, error) {
	if p.Empty() {
		return 0, fmt.Errorf("%w: empty update", core.ErrInvalidArgument)
	}
	set, args := p.setClause(formatTime(time.Now()))
	query := fmt.Sprintf("UPDATE %s SET %s WHERE user_id = ? AND recurring_group_id = ? AND month_year > ?", table, set)
	args = append(args, userID.String(), groupID.String(), string(after))

	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("update %s group after %s: %w", table, after, err)
	}
	return res.RowsAffected()
}

func deleteOne(ctx context.Context, db *sql.DB, table string, userID, id uuid.UUID) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE user_id = ? AND id = ?", table)
	res, err := db.ExecContext(ctx, query, userID.String(), id.String())
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete from %s rows affected: %w", table, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", table, id, core.ErrNotFound)
	}
	return nil
}

func deleteGroup(ctx context.Context, db *sql.DB, table string, userID, groupID uuid.UUID) (int64, error) {
	query := fmt.Sprintf("DELETE FROM %s WHERE user_id = ? AND recurring_group_id = ?", table)
	res, err := db.ExecContext(ctx, query, userID.String(), groupID.String())
	if err != nil {
		return 0, fmt.Errorf("delete %s group: %w", table, err)
	}
	return res.RowsAffected()
}

func deleteGroupAfter(ctx context.Context, db *sql.DB, table string, userID, groupID uuid.UUID, after core.MonthYear) (int64, error) {
	query := fmt.Sprintf("DELETE FROM %s WHERE user_id = ? AND recurring_group_id = ? AND month_year > ?", table)
	res, err := db.ExecContext(ctx, query, userID.String(), groupID.String(), string(after))
	if err != nil {
		return 0, fmt.Errorf("delete %s group after %s: %w", table, after, err)
	}
	return res.RowsAffected()
}

func queryGroupIDs(ctx context.Context, db *sql.DB, query string, userID uuid.UUID, month core.MonthYear) (map[uuid.UUID]struct{}, error) {
	rows, err := db.QueryContext(ctx, query, userID.String(), string(month))
	if err != nil {
		return nil, fmt.Errorf("query group ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[uuid.UUID]struct{})
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan group id: %w", err)
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse group id: %w", err)
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}
