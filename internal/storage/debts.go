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

// DebtRepo persists debts and their installment payment ledger.
type DebtRepo struct {
	db *sql.DB
}

const debtColumns = `id, user_id, name, creditor, total_amount, is_negotiated, total_installments,
	installment_amount, current_installment, due_day, start_month_year, status, notes, currency,
	created_at, updated_at`

const debtPaymentColumns = `id, user_id, debt_id, installment_number, amount, month_year, paid_at, created_at`

func scanDebt(row rowScanner) (core.Debt, error) {
	var (
		d                 core.Debt
		id, userID        string
		total, status     string
		creditor, notes   sql.NullString
		installmentAmount sql.NullString
		totalInstallments sql.NullInt64
		dueDay            sql.NullInt64
		isNegotiated      int
		start             string
		created, updated  string
	)
	err := row.Scan(&id, &userID, &d.Name, &creditor, &total, &isNegotiated, &totalInstallments,
		&installmentAmount, &d.CurrentInstallment, &dueDay, &start, &status, &notes, &d.Currency,
		&created, &updated)
	if err != nil {
		return core.Debt{}, err
	}

	if d.ID, err = uuid.Parse(id); err != nil {
		return core.Debt{}, fmt.Errorf("parse debt id: %w", err)
	}
	if d.UserID, err = uuid.Parse(userID); err != nil {
		return core.Debt{}, fmt.Errorf("parse debt user id: %w", err)
	}
	if d.TotalAmount, err = decimal.NewFromString(total); err != nil {
		return core.Debt{}, fmt.Errorf("parse debt total amount: %w", err)
	}
	d.IsNegotiated = isNegotiated != 0
	d.Status = core.DebtStatus(status)
	d.StartMonthYear = core.MonthYear(start)
	if creditor.Valid {
		d.Creditor = &creditor.String
	}
	if notes.Valid {
		d.Notes = &notes.String
	}
	if totalInstallments.Valid {
		n := int(totalInstallments.Int64)
		d.TotalInstallments = &n
	}
	if dueDay.Valid {
		n := int(dueDay.Int64)
		d.DueDay = &n
	}
	if installmentAmount.Valid {
		a, err := decimal.NewFromString(installmentAmount.String)
		if err != nil {
			return core.Debt{}, fmt.Errorf("parse debt installment amount: %w", err)
		}
		d.InstallmentAmount = &a
	}
	if d.CreatedAt, err = parseTime(created); err != nil {
		return core.Debt{}, fmt.Errorf("parse debt created_at: %w", err)
	}
	if d.UpdatedAt, err = parseTime(updated); err != nil {
		return core.Debt{}, fmt.Errorf("parse debt updated_at: %w", err)
	}
	return d, nil
}

func scanDebtPayment(row rowScanner) (core.DebtPayment, error) {
	var (
		p                  core.DebtPayment
		id, userID, debtID string
		amount             string
		paidAt, created    string
	)
	err := row.Scan(&id, &userID, &debtID, &p.InstallmentNumber, &amount, &p.MonthYear, &paidAt, &created)
	if err != nil {
		return core.DebtPayment{}, err
	}

	if p.ID, err = uuid.Parse(id); err != nil {
		return core.DebtPayment{}, fmt.Errorf("parse payment id: %w", err)
	}
	if p.UserID, err = uuid.Parse(userID); err != nil {
		return core.DebtPayment{}, fmt.Errorf("parse payment user id: %w", err)
	}
	if p.DebtID, err = uuid.Parse(debtID); err != nil {
		return core.DebtPayment{}, fmt.Errorf("parse payment debt id: %w", err)
	}
	if p.Amount, err = decimal.NewFromString(amount); err != nil {
		return core.DebtPayment{}, fmt.Errorf("parse payment amount: %w", err)
	}
	if p.PaidAt, err = parseTime(paidAt); err != nil {
		return core.DebtPayment{}, fmt.Errorf("parse payment paid_at: %w", err)
	}
	if p.CreatedAt, err = parseTime(created); err != nil {
		return core.DebtPayment{}, fmt.Errorf("parse payment created_at: %w", err)
	}
	return p, nil
}

func debtMutableArgs(d core.Debt, now time.Time) []any {
	return []any{
		d.Name, nullStr(d.Creditor), d.TotalAmount.String(), boolToInt(d.IsNegotiated),
		nullIntPtr(d.TotalInstallments), nullDecPtr(d.InstallmentAmount), d.CurrentInstallment,
		nullIntPtr(d.DueDay), string(d.StartMonthYear), string(d.Status), nullStr(d.Notes),
		d.Currency, formatTime(now),
	}
}

func (r *DebtRepo) Insert(ctx context.Context, d core.Debt) error {
	now := time.Now()
	created := d.CreatedAt
	if created.IsZero() {
		created = now
	}
	query := `INSERT INTO debts (` + debtColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	args := []any{
		d.ID.String(), d.UserID.String(), d.Name, nullStr(d.Creditor), d.TotalAmount.String(),
		boolToInt(d.IsNegotiated), nullIntPtr(d.TotalInstallments), nullDecPtr(d.InstallmentAmount),
		d.CurrentInstallment, nullIntPtr(d.DueDay), string(d.StartMonthYear), string(d.Status),
		nullStr(d.Notes), d.Currency, formatTime(created), formatTime(now),
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert debt: %w", err)
	}
	return nil
}

func nullStr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullIntPtr(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}

func nullDecPtr(d *decimal.Decimal) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func (r *DebtRepo) Get(ctx context.Context, userID, id uuid.UUID) (core.Debt, error) {
	query := `SELECT ` + debtColumns + ` FROM debts WHERE user_id = ? AND id = ?`
	d, err := scanDebt(r.db.QueryRowContext(ctx, query, userID.String(), id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Debt{}, fmt.Errorf("debt %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Debt{}, fmt.Errorf("get debt: %w", err)
	}
	return d, nil
}

func (r *DebtRepo) List(ctx context.Context, userID uuid.UUID) ([]core.Debt, error) {
	query := `SELECT ` + debtColumns + ` FROM debts WHERE user_id = ? ORDER BY created_at, name`
	return r.queryDebts(ctx, query, userID.String())
}

// ListActiveNegotiated returns every active negotiated debt with a complete
// schedule, across all users. The overdue sweep walks this set.
func (r *DebtRepo) ListActiveNegotiated(ctx context.Context) ([]core.Debt, error) {
	query := `SELECT ` + debtColumns + ` FROM debts
		WHERE status = ? AND is_negotiated = 1
		AND total_installments IS NOT NULL AND start_month_year != ''`
	return r.queryDebts(ctx, query, string(core.DebtStatusActive))
}

// Save writes back every mutable column of the debt.
func (r *DebtRepo) Save(ctx context.Context, d core.Debt) error {
	query := `UPDATE debts SET name = ?, creditor = ?, total_amount = ?, is_negotiated = ?,
		total_installments = ?, installment_amount = ?, current_installment = ?, due_day = ?,
		start_month_year = ?, status = ?, notes = ?, currency = ?, updated_at = ?
		WHERE user_id = ? AND id = ?`
	args := append(debtMutableArgs(d, time.Now()), d.UserID.String(), d.ID.String())
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("save debt: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save debt rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("debt %s: %w", d.ID, core.ErrNotFound)
	}
	return nil
}

func (r *DebtRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return deleteOne(ctx, r.db, "debts", userID, id)
}

// UpdateStatus flips a debt's status without touching its schedule. Used by
// the overdue sweep, which operates across users.
func (r *DebtRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status core.DebtStatus) error {
	query := `UPDATE debts SET status = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, string(status), formatTime(time.Now()), id.String())
	if err != nil {
		return fmt.Errorf("update debt status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update debt status rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("debt %s: %w", id, core.ErrNotFound)
	}
	return nil
}

// ApplyPayment persists an installment payment atomically: the advanced
// counter and status on the debt row, plus one ledger row per consumed
// installment.
func (r *DebtRepo) ApplyPayment(ctx context.Context, d core.Debt, payments []core.DebtPayment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin payment: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	res, err := tx.ExecContext(ctx,
		`UPDATE debts SET current_installment = ?, status = ?, updated_at = ? WHERE user_id = ? AND id = ?`,
		d.CurrentInstallment, string(d.Status), formatTime(now), d.UserID.String(), d.ID.String())
	if err != nil {
		return fmt.Errorf("update debt on payment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update debt on payment rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("debt %s: %w", d.ID, core.ErrNotFound)
	}

	insert := `INSERT INTO debt_payments (` + debtPaymentColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	for _, p := range payments {
		_, err := tx.ExecContext(ctx, insert,
			p.ID.String(), p.UserID.String(), p.DebtID.String(), p.InstallmentNumber,
			p.Amount.String(), string(p.MonthYear), formatTime(p.PaidAt), formatTime(now))
		if err != nil {
			return fmt.Errorf("insert debt payment: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit payment: %w", err)
	}
	return nil
}

func (r *DebtRepo) ListPayments(ctx context.Context, userID, debtID uuid.UUID) ([]core.DebtPayment, error) {
	query := `SELECT ` + debtPaymentColumns + ` FROM debt_payments
		WHERE user_id = ? AND debt_id = ?
		ORDER BY installment_number`
	rows, err := r.db.QueryContext(ctx, query, userID.String(), debtID.String())
	if err != nil {
		return nil, fmt.Errorf("query debt payments: %w", err)
	}
	defer rows.Close()

	var payments []core.DebtPayment
	for rows.Next() {
		p, err := scanDebtPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan debt payment: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// GetPayment returns the ledger row for one scheduled installment.
func (r *DebtRepo) GetPayment(ctx context.Context, userID, debtID uuid.UUID, installmentNumber int) (core.DebtPayment, error) {
	query := `SELECT ` + debtPaymentColumns + ` FROM debt_payments
		WHERE user_id = ? AND debt_id = ? AND installment_number = ?`
	p, err := scanDebtPayment(r.db.QueryRowContext(ctx, query, userID.String(), debtID.String(), installmentNumber))
	if errors.Is(err, sql.ErrNoRows) {
		return core.DebtPayment{}, fmt.Errorf("payment for installment %d: %w", installmentNumber, core.ErrNotFound)
	}
	if err != nil {
		return core.DebtPayment{}, fmt.Errorf("get debt payment: %w", err)
	}
	return p, nil
}

// SumPaymentsByMonth totals the ledger rows whose scheduled month is month.
func (r *DebtRepo) SumPaymentsByMonth(ctx context.Context, userID uuid.UUID, month core.MonthYear) (decimal.Decimal, error) {
	query := `SELECT amount FROM debt_payments WHERE user_id = ? AND month_year = ?`
	rows, err := r.db.QueryContext(ctx, query, userID.String(), string(month))
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum debt payments: %w", err)
	}
	defer rows.Close()

	sum := decimal.Zero
	for rows.Next() {
		var amount string
		if err := rows.Scan(&amount); err != nil {
			return decimal.Zero, fmt.Errorf("scan debt payment amount: %w", err)
		}
		d, err := decimal.NewFromString(amount)
		if err != nil {
			return decimal.Zero, fmt.Errorf("parse debt payment amount: %w", err)
		}
		sum = sum.Add(d)
	}
	return sum, rows.Err()
}

func (r *DebtRepo) queryDebts(ctx context.Context, query string, args ...any) ([]core.Debt, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query debts: %w", err)
	}
	defer rows.Close()

	var debts []core.Debt
	for rows.Next() {
		d, err := scanDebt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan debt: %w", err)
		}
		debts = append(debts, d)
	}
	return debts, rows.Err()
}
