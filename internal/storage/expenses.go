package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/oeduardop1/life-assistant-sub001/internal/core"
)

// ExpenseRepo persists variable monthly expenses.
type ExpenseRepo struct {
	db *sql.DB
}

const expenseColumns = `id, user_id, name, category, expected_amount, actual_amount, status,
	is_recurring, recurring_group_id, month_year, currency, created_at, updated_at`

func scanExpense(row rowScanner) (core.VariableExpense, error) {
	var (
		e                core.VariableExpense
		id, userID       string
		expected, actual string
		status           string
		groupID          sql.NullString
		isRecurring      int
		created, updated string
	)
	err := row.Scan(&id, &userID, &e.Name, &e.Category, &expected, &actual, &status,
		&isRecurring, &groupID, &e.MonthYear, &e.Currency, &created, &updated)
	if err != nil {
		return core.VariableExpense{}, err
	}

	if e.ID, err = uuid.Parse(id); err != nil {
		return core.VariableExpense{}, fmt.Errorf("parse expense id: %w", err)
	}
	if e.UserID, err = uuid.Parse(userID); err != nil {
		return core.VariableExpense{}, fmt.Errorf("parse expense user id: %w", err)
	}
	if e.ExpectedAmount, err = decimal.NewFromString(expected); err != nil {
		return core.VariableExpense{}, fmt.Errorf("parse expense expected amount: %w", err)
	}
	if e.ActualAmount, err = decimal.NewFromString(actual); err != nil {
		return core.VariableExpense{}, fmt.Errorf("parse expense actual amount: %w", err)
	}
	e.Status = core.ExpenseStatus(status)
	e.IsRecurring = isRecurring != 0
	if groupID.Valid {
		g, err := uuid.Parse(groupID.String)
		if err != nil {
			return core.VariableExpense{}, fmt.Errorf("parse expense group id: %w", err)
		}
		e.RecurringGroupID = &g
	}
	if e.CreatedAt, err = parseTime(created); err != nil {
		return core.VariableExpense{}, fmt.Errorf("parse expense created_at: %w", err)
	}
	if e.UpdatedAt, err = parseTime(updated); err != nil {
		return core.VariableExpense{}, fmt.Errorf("parse expense updated_at: %w", err)
	}
	return e, nil
}

func expenseArgs(e core.VariableExpense, now time.Time) []any {
	created, updated := e.CreatedAt, e.UpdatedAt
	if created.IsZero() {
		created = now
	}
	if updated.IsZero() {
		updated = now
	}
	var groupID sql.NullString
	if e.RecurringGroupID != nil {
		groupID = sql.NullString{String: e.RecurringGroupID.String(), Valid: true}
	}
	return []any{
		e.ID.String(), e.UserID.String(), e.Name, e.Category,
		e.ExpectedAmount.String(), e.ActualAmount.String(), string(e.Status),
		boolToInt(e.IsRecurring), groupID, string(e.MonthYear), e.Currency,
		formatTime(created), formatTime(updated),
	}
}

func (r *ExpenseRepo) Insert(ctx context.Context, e core.VariableExpense) error {
	query := `INSERT INTO variable_expenses (` + expenseColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, expenseArgs(e, time.Now())...); err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	return nil
}

// InsertBatch inserts the given expenses, skipping (user, group, month)
// collisions. Returns how many rows were actually written.
func (r *ExpenseRepo) InsertBatch(ctx context.Context, expenses []core.VariableExpense) (int, error) {
	if len(expenses) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin insert batch: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO variable_expenses (` + expenseColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, recurring_group_id, month_year) WHERE recurring_group_id IS NOT NULL DO NOTHING`
	now := time.Now()
	inserted := 0
	for _, e := range expenses {
		res, err := tx.ExecContext(ctx, query, expenseArgs(e, now)...)
		if err != nil {
			return 0, fmt.Errorf("insert expense batch: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("insert expense batch rows affected: %w", err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit insert batch: %w", err)
	}
	return inserted, nil
}

func (r *ExpenseRepo) Get(ctx context.Context, userID, id uuid.UUID) (core.VariableExpense, error) {
	query := `SELECT ` + expenseColumns + ` FROM variable_expenses WHERE user_id = ? AND id = ?`
	e, err := scanExpense(r.db.QueryRowContext(ctx, query, userID.String(), id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return core.VariableExpense{}, fmt.Errorf("expense %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.VariableExpense{}, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

func (r *ExpenseRepo) ListByMonth(ctx context.Context, userID uuid.UUID, month core.MonthYear) ([]core.VariableExpense, error) {
	query := `SELECT ` + expenseColumns + ` FROM variable_expenses
		WHERE user_id = ? AND month_year = ?
		ORDER BY name`
	return r.queryExpenses(ctx, query, userID.String(), string(month))
}

func (r *ExpenseRepo) ListTemplates(ctx context.Context, userID uuid.UUID, month core.MonthYear) ([]core.VariableExpense, error) {
	query := `SELECT ` + expenseColumns + ` FROM variable_expenses
		WHERE user_id = ? AND month_year = ? AND is_recurring = 1 AND recurring_group_id IS NOT NULL`
	return r.queryExpenses(ctx, query, userID.String(), string(month))
}

func (r *ExpenseRepo) ExistingGroupIDs(ctx context.Context, userID uuid.UUID, month core.MonthYear) (map[uuid.UUID]struct{}, error) {
	query := `SELECT recurring_group_id FROM variable_expenses
		WHERE user_id = ? AND month_year = ? AND recurring_group_id IS NOT NULL`
	return queryGroupIDs(ctx, r.db, query, userID, month)
}

func (r *ExpenseRepo) Update(ctx context.Context, userID, id uuid.UUID, p *Patch) error {
	return updateOne(ctx, r.db, "variable_expenses", userID, id, p)
}

func (r *ExpenseRepo) UpdateGroup(ctx context.Context, userID, groupID uuid.UUID, p *Patch) (int64, error) {
	return updateGroup(ctx, r.db, "variable_expenses", userID, groupID, p)
}

func (r *ExpenseRepo) UpdateGroupAfter(ctx context.Context, userID, groupID uuid.UUID, after core.MonthYear, p *Patch) (int64, error) {
	return updateGroupAfter(ctx, r.db, "variable_expenses", userID, groupID, after, p)
}

func (r *ExpenseRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return deleteOne(ctx, r.db, "variable_expenses", userID, id)
}

func (r *ExpenseRepo) DeleteGroup(ctx context.Context, userID, groupID uuid.UUID) (int64, error) {
	return deleteGroup(ctx, r.db, "variable_expenses", userID, groupID)
}

func (r *ExpenseRepo) DeleteGroupAfter(ctx context.Context, userID, groupID uuid.UUID, after core.MonthYear) (int64, error) {
	return deleteGroupAfter(ctx, r.db, "variable_expenses", userID, groupID, after)
}

// Totals returns the month's expected and actual spend over non-excluded rows.
func (r *ExpenseRepo) Totals(ctx context.Context, userID uuid.UUID, month core.MonthYear) (expected, actual decimal.Decimal, err error) {
	query := `SELECT expected_amount, actual_amount FROM variable_expenses
		WHERE user_id = ? AND month_year = ? AND status != ?`
	rows, err := r.db.QueryContext(ctx, query, userID.String(), string(month), string(core.ExpenseStatusExcluded))
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("expense totals: %w", err)
	}
	defer rows.Close()

	expected, actual = decimal.Zero, decimal.Zero
	for rows.Next() {
		var exp, act string
		if err := rows.Scan(&exp, &act); err != nil {
			return decimal.Zero, decimal.Zero, fmt.Errorf("scan expense totals: %w", err)
		}
		d, err := decimal.NewFromString(exp)
		if err != nil {
			return decimal.Zero, decimal.Zero, fmt.Errorf("parse expense expected amount: %w", err)
		}
		a, err := decimal.NewFromString(act)
		if err != nil {
			return decimal.Zero, decimal.Zero, fmt.Errorf("parse expense actual amount: %w", err)
		}
		expected = expected.Add(d)
		actual = actual.Add(a)
	}
	return expected, actual, rows.Err()
}

func (r *ExpenseRepo) queryExpenses(ctx context.Context, query string, args ...any) ([]core.VariableExpense, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.VariableExpense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}
