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

// BillRepo persists fixed monthly obligations.
type BillRepo struct {
	db *sql.DB
}

const billColumns = `id, user_id, name, category, amount, due_day, status, paid_at,
	is_recurring, recurring_group_id, month_year, currency, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBill(row rowScanner) (core.Bill, error) {
	var (
		b                  core.Bill
		id, userID         string
		amount, status     string
		paidAt, groupID    sql.NullString
		isRecurring        int
		created, updated   string
	)
	err := row.Scan(&id, &userID, &b.Name, &b.Category, &amount, &b.DueDay, &status, &paidAt,
		&isRecurring, &groupID, &b.MonthYear, &b.Currency, &created, &updated)
	if err != nil {
		return core.Bill{}, err
	}

	if b.ID, err = uuid.Parse(id); err != nil {
		return core.Bill{}, fmt.Errorf("parse bill id: %w", err)
	}
	if b.UserID, err = uuid.Parse(userID); err != nil {
		return core.Bill{}, fmt.Errorf("parse bill user id: %w", err)
	}
	if b.Amount, err = decimal.NewFromString(amount); err != nil {
		return core.Bill{}, fmt.Errorf("parse bill amount: %w", err)
	}
	b.Status = core.BillStatus(status)
	b.IsRecurring = isRecurring != 0
	if groupID.Valid {
		g, err := uuid.Parse(groupID.String)
		if err != nil {
			return core.Bill{}, fmt.Errorf("parse bill group id: %w", err)
		}
		b.RecurringGroupID = &g
	}
	if paidAt.Valid {
		t, err := parseTime(paidAt.String)
		if err != nil {
			return core.Bill{}, fmt.Errorf("parse bill paid_at: %w", err)
		}
		b.PaidAt = &t
	}
	if b.CreatedAt, err = parseTime(created); err != nil {
		return core.Bill{}, fmt.Errorf("parse bill created_at: %w", err)
	}
	if b.UpdatedAt, err = parseTime(updated); err != nil {
		return core.Bill{}, fmt.Errorf("parse bill updated_at: %w", err)
	}
	return b, nil
}

func billArgs(b core.Bill, now time.Time) []any {
	created, updated := b.CreatedAt, b.UpdatedAt
	if created.IsZero() {
		created = now
	}
	if updated.IsZero() {
		updated = now
	}
	var groupID sql.NullString
	if b.RecurringGroupID != nil {
		groupID = sql.NullString{String: b.RecurringGroupID.String(), Valid: true}
	}
	return []any{
		b.ID.String(), b.UserID.String(), b.Name, b.Category, b.Amount.String(), b.DueDay,
		string(b.Status), formatNullTime(b.PaidAt), boolToInt(b.IsRecurring), groupID,
		string(b.MonthYear), b.Currency, formatTime(created), formatTime(updated),
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (r *BillRepo) Insert(ctx context.Context, b core.Bill) error {
	query := `INSERT INTO bills (` + billColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, billArgs(b, time.Now())...); err != nil {
		return fmt.Errorf("insert bill: %w", err)
	}
	return nil
}

// InsertBatch inserts the given bills, silently skipping rows that collide
// with an existing (user, group, month) occurrence. Returns how many rows
// were actually written.
func (r *BillRepo) InsertBatch(ctx context.Context, bills []core.Bill) (int, error) {
	if len(bills) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin insert batch: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO bills (` + billColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, recurring_group_id, month_year) WHERE recurring_group_id IS NOT NULL DO NOTHING`
	now := time.Now()
	inserted := 0
	for _, b := range bills {
		res, err := tx.ExecContext(ctx, query, billArgs(b, now)...)
		if err != nil {
			return 0, fmt.Errorf("insert bill batch: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("insert bill batch rows affected: %w", err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit insert batch: %w", err)
	}
	return inserted, nil
}

func (r *BillRepo) Get(ctx context.Context, userID, id uuid.UUID) (core.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE user_id = ? AND id = ?`
	b, err := scanBill(r.db.QueryRowContext(ctx, query, userID.String(), id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Bill{}, fmt.Errorf("bill %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Bill{}, fmt.Errorf("get bill: %w", err)
	}
	return b, nil
}

func (r *BillRepo) ListByMonth(ctx context.Context, userID uuid.UUID, month core.MonthYear) ([]core.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills
		WHERE user_id = ? AND month_year = ?
		ORDER BY due_day, name`
	return r.queryBills(ctx, query, userID.String(), string(month))
}

// ListTemplates returns the recurring rows of month regardless of status.
// Canceled occurrences still act as templates so that a series stopped in
// one month stays stopped in the next.
func (r *BillRepo) ListTemplates(ctx context.Context, userID uuid.UUID, month core.MonthYear) ([]core.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills
		WHERE user_id = ? AND month_year = ? AND is_recurring = 1 AND recurring_group_id IS NOT NULL`
	return r.queryBills(ctx, query, userID.String(), string(month))
}

func (r *BillRepo) ExistingGroupIDs(ctx context.Context, userID uuid.UUID, month core.MonthYear) (map[uuid.UUID]struct{}, error) {
	query := `SELECT recurring_group_id FROM bills
		WHERE user_id = ? AND month_year = ? AND recurring_group_id IS NOT NULL`
	return queryGroupIDs(ctx, r.db, query, userID, month)
}

func (r *BillRepo) Update(ctx context.Context, userID, id uuid.UUID, p *Patch) error {
	return updateOne(ctx, r.db, "bills", userID, id, p)
}

func (r *BillRepo) UpdateGroup(ctx context.Context, userID, groupID uuid.UUID, p *Patch) (int64, error) {
	return updateGroup(ctx, r.db, "bills", userID, groupID, p)
}

func (r *BillRepo) UpdateGroupAfter(ctx context.Context, userID, groupID uuid.UUID, after core.MonthYear, p *Patch) (int64, error) {
	return updateGroupAfter(ctx, r.db, "bills", userID, groupID, after, p)
}

func (r *BillRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return deleteOne(ctx, r.db, "bills", userID, id)
}

func (r *BillRepo) DeleteGroup(ctx context.Context, userID, groupID uuid.UUID) (int64, error) {
	return deleteGroup(ctx, r.db, "bills", userID, groupID)
}

func (r *BillRepo) DeleteGroupAfter(ctx context.Context, userID, groupID uuid.UUID, after core.MonthYear) (int64, error) {
	return deleteGroupAfter(ctx, r.db, "bills", userID, groupID, after)
}

// Totals returns the month's budgeted total (everything not canceled) and
// the paid total. Amounts are summed in Go to keep decimal exactness.
func (r *BillRepo) Totals(ctx context.Context, userID uuid.UUID, month core.MonthYear) (budgeted, paid decimal.Decimal, err error) {
	query := `SELECT amount, status FROM bills WHERE user_id = ? AND month_year = ? AND status != ?`
	rows, err := r.db.QueryContext(ctx, query, userID.String(), string(month), string(core.BillStatusCanceled))
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("bill totals: %w", err)
	}
	defer rows.Close()

	budgeted, paid = decimal.Zero, decimal.Zero
	for rows.Next() {
		var amount, status string
		if err := rows.Scan(&amount, &status); err != nil {
			return decimal.Zero, decimal.Zero, fmt.Errorf("scan bill totals: %w", err)
		}
		d, err := decimal.NewFromString(amount)
		if err != nil {
			return decimal.Zero, decimal.Zero, fmt.Errorf("parse bill amount: %w", err)
		}
		budgeted = budgeted.Add(d)
		if core.BillStatus(status) == core.BillStatusPaid {
			paid = paid.Add(d)
		}
	}
	return budgeted, paid, rows.Err()
}

// CountsByStatus tallies the month's bills per status.
func (r *BillRepo) CountsByStatus(ctx context.Context, userID uuid.UUID, month core.MonthYear) (map[core.BillStatus]int, error) {
	query := `SELECT status, COUNT(*) FROM bills
		WHERE user_id = ? AND month_year = ?
		GROUP BY status`
	rows, err := r.db.QueryContext(ctx, query, userID.String(), string(month))
	if err != nil {
		return nil, fmt.Errorf("count bills by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[core.BillStatus]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan bill status count: %w", err)
		}
		counts[core.BillStatus(status)] = n
	}
	return counts, rows.Err()
}

func (r *BillRepo) queryBills(ctx context.Context, query string, args ...any) ([]core.Bill, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query bills: %w", err)
	}
	defer rows.Close()

	var bills []core.Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bill: %w", err)
		}
		bills = append(bills, b)
	}
	return bills, rows.Err()
}
