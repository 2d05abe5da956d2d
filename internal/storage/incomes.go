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

// IncomeRepo persists expected and received incomes.
type IncomeRepo struct {
	db *sql.DB
}

const incomeColumns = `id, user_id, name, type, frequency, expected_amount, actual_amount, status,
	is_recurring, recurring_group_id, month_year, currency, created_at, updated_at`

func scanIncome(row rowScanner) (core.Income, error) {
	var (
		in               core.Income
		id, userID       string
		expected, status string
		actual, groupID  sql.NullString
		isRecurring      int
		created, updated string
	)
	err := row.Scan(&id, &userID, &in.Name, &in.Type, &in.Frequency, &expected, &actual, &status,
		&isRecurring, &groupID, &in.MonthYear, &in.Currency, &created, &updated)
	if err != nil {
		return core.Income{}, err
	}

	if in.ID, err = uuid.Parse(id); err != nil {
		return core.Income{}, fmt.Errorf("parse income id: %w", err)
	}
	if in.UserID, err = uuid.Parse(userID); err != nil {
		return core.Income{}, fmt.Errorf("parse income user id: %w", err)
	}
	if in.ExpectedAmount, err = decimal.NewFromString(expected); err != nil {
		return core.Income{}, fmt.Errorf("parse income expected amount: %w", err)
	}
	if actual.Valid {
		d, err := decimal.NewFromString(actual.String)
		if err != nil {
			return core.Income{}, fmt.Errorf("parse income actual amount: %w", err)
		}
		in.ActualAmount = &d
	}
	in.Status = core.IncomeStatus(status)
	in.IsRecurring = isRecurring != 0
	if groupID.Valid {
		g, err := uuid.Parse(groupID.String)
		if err != nil {
			return core.Income{}, fmt.Errorf("parse income group id: %w", err)
		}
		in.RecurringGroupID = &g
	}
	if in.CreatedAt, err = parseTime(created); err != nil {
		return core.Income{}, fmt.Errorf("parse income created_at: %w", err)
	}
	if in.UpdatedAt, err = parseTime(updated); err != nil {
		return core.Income{}, fmt.Errorf("parse income updated_at: %w", err)
	}
	return in, nil
}

func incomeArgs(in core.Income, now time.Time) []any {
	created, updated := in.CreatedAt, in.UpdatedAt
	if created.IsZero() {
		created = now
	}
	if updated.IsZero() {
		updated = now
	}
	var actual, groupID sql.NullString
	if in.ActualAmount != nil {
		actual = sql.NullString{String: in.ActualAmount.String(), Valid: true}
	}
	if in.RecurringGroupID != nil {
		groupID = sql.NullString{String: in.RecurringGroupID.String(), Valid: true}
	}
	return []any{
		in.ID.String(), in.UserID.String(), in.Name, in.Type, in.Frequency,
		in.ExpectedAmount.String(), actual, string(in.Status),
		boolToInt(in.IsRecurring), groupID, string(in.MonthYear), in.Currency,
		formatTime(created), formatTime(updated),
	}
}

func (r *IncomeRepo) Insert(ctx context.Context, in core.Income) error {
	query := `INSERT INTO incomes (` + incomeColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, incomeArgs(in, time.Now())...); err != nil {
		return fmt.Errorf("insert income: %w", err)
	}
	return nil
}

// InsertBatch inserts the given incomes, skipping (user, group, month)
// collisions. Returns how many rows were actually written.
func (r *IncomeRepo) InsertBatch(ctx context.Context, incomes []core.Income) (int, error) {
	if len(incomes) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin insert batch: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO incomes (` + incomeColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, recurring_group_id, month_year) WHERE recurring_group_id IS NOT NULL DO NOTHING`
	now := time.Now()
	inserted := 0
	for _, in := range incomes {
		res, err := tx.ExecContext(ctx, query, incomeArgs(in, now)...)
		if err != nil {
			return 0, fmt.Errorf("insert income batch: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("insert income batch rows affected: %w", err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit insert batch: %w", err)
	}
	return inserted, nil
}

func (r *IncomeRepo) Get(ctx context.Context, userID, id uuid.UUID) (core.Income, error) {
	query := `SELECT ` + incomeColumns + ` FROM incomes WHERE user_id = ? AND id = ?`
	in, err := scanIncome(r.db.QueryRowContext(ctx, query, userID.String(), id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Income{}, fmt.Errorf("income %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Income{}, fmt.Errorf("get income: %w", err)
	}
	return in, nil
}

func (r *IncomeRepo) ListByMonth(ctx context.Context, userID uuid.UUID, month core.MonthYear) ([]core.Income, error) {
	query := `SELECT ` + incomeColumns + ` FROM incomes
		WHERE user_id = ? AND month_year = ?
		ORDER BY name`
	return r.queryIncomes(ctx, query, userID.String(), string(month))
}

func (r *IncomeRepo) ListTemplates(ctx context.Context, userID uuid.UUID, month core.MonthYear) ([]core.Income, error) {
	query := `SELECT ` + incomeColumns + ` FROM incomes
		WHERE user_id = ? AND month_year = ? AND is_recurring = 1 AND recurring_group_id IS NOT NULL`
	return r.queryIncomes(ctx, query, userID.String(), string(month))
}

func (r *IncomeRepo) ExistingGroupIDs(ctx context.Context, userID uuid.UUID, month core.MonthYear) (map[uuid.UUID]struct{}, error) {
	query := `SELECT recurring_group_id FROM incomes
		WHERE user_id = ? AND month_year = ? AND recurring_group_id IS NOT NULL`
	return queryGroupIDs(ctx, r.db, query, userID, month)
}

func (r *IncomeRepo) Update(ctx context.Context, userID, id uuid.UUID, p *Patch) error {
	return updateOne(ctx, r.db, "incomes", userID, id, p)
}

func (r *IncomeRepo) UpdateGroup(ctx context.Context, userID, groupID uuid.UUID, p *Patch) (int64, error) {
	return updateGroup(ctx, r.db, "incomes", userID, groupID, p)
}

func (r *IncomeRepo) UpdateGroupAfter(ctx context.Context, userID, groupID uuid.UUID, after core.MonthYear, p *Patch) (int64, error) {
	return updateGroupAfter(ctx, r.db, "incomes", userID, groupID, after, p)
}

func (r *IncomeRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return deleteOne(ctx, r.db, "incomes", userID, id)
}

func (r *IncomeRepo) DeleteGroup(ctx context.Context, userID, groupID uuid.UUID) (int64, error) {
	return deleteGroup(ctx, r.db, "incomes", userID, groupID)
}

func (r *IncomeRepo) DeleteGroupAfter(ctx context.Context, userID, groupID uuid.UUID, after core.MonthYear) (int64, error) {
	return deleteGroupAfter(ctx, r.db, "incomes", userID, groupID, after)
}

// Totals returns the month's expected income and the received amounts summed
// over rows that recorded an actual value.
func (r *IncomeRepo) Totals(ctx context.Context, userID uuid.UUID, month core.MonthYear) (expected, actual decimal.Decimal, err error) {
	query := `SELECT expected_amount, actual_amount FROM incomes WHERE user_id = ? AND month_year = ?`
	rows, err := r.db.QueryContext(ctx, query, userID.String(), string(month))
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("income totals: %w", err)
	}
	defer rows.Close()

	expected, actual = decimal.Zero, decimal.Zero
	for rows.Next() {
		var exp string
		var act sql.NullString
		if err := rows.Scan(&exp, &act); err != nil {
			return decimal.Zero, decimal.Zero, fmt.Errorf("scan income totals: %w", err)
		}
		d, err := decimal.NewFromString(exp)
		if err != nil {
			return decimal.Zero, decimal.Zero, fmt.Errorf("parse income expected amount: %w", err)
		}
		expected = expected.Add(d)
		if act.Valid {
			a, err := decimal.NewFromString(act.String)
			if err != nil {
				return decimal.Zero, decimal.Zero, fmt.Errorf("parse income actual amount: %w", err)
			}
			actual = actual.Add(a)
		}
	}
	return expected, actual, rows.Err()
}

func (r *IncomeRepo) queryIncomes(ctx context.Context, query string, args ...any) ([]core.Income, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query incomes: %w", err)
	}
	defer rows.Close()

	var incomes []core.Income
	for rows.Next() {
		in, err := scanIncome(rows)
		if err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		incomes = append(incomes, in)
	}
	return incomes, rows.Err()
}
