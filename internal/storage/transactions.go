package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"resourceguardian/internal/core"
)

const transactionColumns = `id, user_id, amount_cents, type, category, source, status,
	description, merchant, location, notes,
	mpesa_receipt_number, mpesa_transaction_id, recipient_phone,
	transaction_date, created_at, updated_at`

func scanTransaction(row interface{ Scan(...any) error }) (*core.Transaction, error) {
	var t core.Transaction
	err := row.Scan(
		&t.ID, &t.UserID, &t.Amount.Cents, &t.Type, &t.Category, &t.Source, &t.Status,
		&t.Description, &t.Merchant, &t.Location, &t.Notes,
		&t.MpesaReceiptNumber, &t.MpesaTransactionID, &t.RecipientPhone,
		&t.TransactionDate, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	return &t, nil
}

func (r *Repository) CreateTransaction(ctx context.Context, t *core.Transaction) (*core.Transaction, error) {
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	if t.TransactionDate.IsZero() {
		t.TransactionDate = now
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (
			user_id, amount_cents, type, category, source, status,
			description, merchant, location, notes,
			mpesa_receipt_number, mpesa_transaction_id, recipient_phone,
			transaction_date, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.UserID, t.Amount.Cents, t.Type, t.Category, t.Source, t.Status,
		t.Description, t.Merchant, t.Location, t.Notes,
		t.MpesaReceiptNumber, t.MpesaTransactionID, t.RecipientPhone,
		t.TransactionDate, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("transaction insert id: %w", err)
	}
	t.ID = id
	return t, nil
}

func (r *Repository) GetTransaction(ctx context.Context, id, userID int64) (*core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	return scanTransaction(row)
}

// TransactionFilter narrows ListTransactions. Zero values mean "no
// filter"; Search matches description and merchant, case-insensitively.
type TransactionFilter struct {
	Type      core.TransactionType
	Category  core.TransactionCategory
	Source    core.TransactionSource
	Status    core.TransactionStatus
	From      *time.Time
	To        *time.Time
	MinAmount *core.Money
	MaxAmount *core.Money
	Search    string
	Limit     int
}

func (r *Repository) ListTransactions(ctx context.Context, userID int64, f TransactionFilter) ([]core.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE user_id = ?`
	args := []any{userID}
	if f.Type != "" {
		query += ` AND type = ?`
		args = append(args, f.Type)
	}
	if f.Category != "" {
		query += ` AND category = ?`
		args = append(args, f.Category)
	}
	if f.Source != "" {
		query += ` AND source = ?`
		args = append(args, f.Source)
	}
	if f.Status != "" {
		query += ` AND status = ?`
		args = append(args, f.Status)
	}
	if f.From != nil {
		query += ` AND transaction_date >= ?`
		args = append(args, *f.From)
	}
	if f.To != nil {
		query += ` AND transaction_date < ?`
		args = append(args, *f.To)
	}
	if f.MinAmount != nil {
		query += ` AND amount_cents >= ?`
		args = append(args, f.MinAmount.Cents)
	}
	if f.MaxAmount != nil {
		query += ` AND amount_cents <= ?`
		args = append(args, f.MaxAmount.Cents)
	}
	if f.Search != "" {
		query += ` AND (description LIKE ? COLLATE NOCASE OR merchant LIKE ? COLLATE NOCASE)`
		pattern := "%" + f.Search + "%"
		args = append(args, pattern, pattern)
	}
	query += ` ORDER BY transaction_date DESC, id DESC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, *t)
	}
	return txs, rows.Err()
}

func (r *Repository) UpdateTransaction(ctx context.Context, t *core.Transaction) (*core.Transaction, error) {
	t.UpdatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions SET
			amount_cents = ?, type = ?, category = ?, source = ?, status = ?,
			description = ?, merchant = ?, location = ?, notes = ?,
			mpesa_receipt_number = ?, mpesa_transaction_id = ?, recipient_phone = ?,
			transaction_date = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		t.Amount.Cents, t.Type, t.Category, t.Source, t.Status,
		t.Description, t.Merchant, t.Location, t.Notes,
		t.MpesaReceiptNumber, t.MpesaTransactionID, t.RecipientPhone,
		t.TransactionDate, t.UpdatedAt, t.ID, t.UserID,
	)
	if err != nil {
		return nil, fmt.Errorf("update transaction: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update transaction rows: %w", err)
	}
	if n == 0 {
		return nil, core.ErrNotFound
	}
	return t, nil
}

func (r *Repository) UpdateTransactionStatus(ctx context.Context, id, userID int64, status core.TransactionStatus) (*core.Transaction, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET status = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		status, time.Now().UTC(), id, userID)
	if err != nil {
		return nil, fmt.Errorf("update transaction status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update transaction status rows: %w", err)
	}
	if n == 0 {
		return nil, core.ErrNotFound
	}
	return r.GetTransaction(ctx, id, userID)
}

func (r *Repository) DeleteTransaction(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction rows: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// MonthlySummary aggregates one calendar month of transactions. The
// month boundaries are computed in UTC.
func (r *Repository) MonthlySummary(ctx context.Context, userID int64, year int, month time.Month) (core.MonthlySummary, error) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	s := core.MonthlySummary{
		Month:             from.Format("2006-01"),
		CategoryBreakdown: map[core.TransactionCategory]core.Money{},
	}

	err := r.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN type = 'INCOME' THEN amount_cents ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN type = 'EXPENSE' THEN amount_cents ELSE 0 END), 0),
			COUNT(1)
		FROM transactions
		WHERE user_id = ? AND transaction_date >= ? AND transaction_date < ?`,
		userID, from, to).Scan(&s.TotalIncome.Cents, &s.TotalExpense.Cents, &s.TransactionCount)
	if err != nil {
		return core.MonthlySummary{}, fmt.Errorf("monthly summary totals: %w", err)
	}
	s.NetBalance = s.TotalIncome.Sub(s.TotalExpense)

	rows, err := r.db.QueryContext(ctx, `
		SELECT category, COALESCE(SUM(amount_cents), 0)
		FROM transactions
		WHERE user_id = ? AND type = 'EXPENSE' AND transaction_date >= ? AND transaction_date < ?
		GROUP BY category`,
		userID, from, to)
	if err != nil {
		return core.MonthlySummary{}, fmt.Errorf("monthly summary breakdown: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cat core.TransactionCategory
		var cents int64
		if err := rows.Scan(&cat, &cents); err != nil {
			return core.MonthlySummary{}, fmt.Errorf("scan breakdown row: %w", err)
		}
		s.CategoryBreakdown[cat] = core.Money{Cents: cents}
	}
	return s, rows.Err()
}

// CategorySummary returns expense totals per category. A nil bound
// leaves that side of the range open; both nil covers all time. The
// upper bound is exclusive, matching ListTransactions.
func (r *Repository) CategorySummary(ctx context.Context, userID int64, from, to *time.Time) (map[core.TransactionCategory]core.Money, error) {
	query := `
		SELECT category, COALESCE(SUM(amount_cents), 0)
		FROM transactions
		WHERE user_id = ? AND type = 'EXPENSE'`
	args := []any{userID}
	if from != nil {
		query += ` AND transaction_date >= ?`
		args = append(args, *from)
	}
	if to != nil {
		query += ` AND transaction_date < ?`
		args = append(args, *to)
	}
	query += ` GROUP BY category`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("category summary: %w", err)
	}
	defer rows.Close()

	out := map[core.TransactionCategory]core.Money{}
	for rows.Next() {
		var cat core.TransactionCategory
		var cents int64
		if err := rows.Scan(&cat, &cents); err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		out[cat] = core.Money{Cents: cents}
	}
	return out, rows.Err()
}

// TransactionStatistics aggregates all of a user's transactions.
func (r *Repository) TransactionStatistics(ctx context.Context, userID int64) (core.TransactionStatistics, error) {
	s := core.TransactionStatistics{
		ByCategory: map[core.TransactionCategory]int64{},
	}

	var totalCents int64
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(1),
			COALESCE(SUM(CASE WHEN type = 'INCOME' THEN amount_cents ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN type = 'EXPENSE' THEN amount_cents ELSE 0 END), 0),
			COALESCE(SUM(amount_cents), 0)
		FROM transactions WHERE user_id = ?`,
		userID).Scan(&s.TotalTransactions, &s.TotalIncome.Cents, &s.TotalExpense.Cents, &totalCents)
	if err != nil {
		return core.TransactionStatistics{}, fmt.Errorf("transaction statistics: %w", err)
	}
	s.NetBalance = s.TotalIncome.Sub(s.TotalExpense)
	s.AverageAmount = core.AverageCents(totalCents, s.TotalTransactions)

	rows, err := r.db.QueryContext(ctx, `
		SELECT category, COUNT(1)
		FROM transactions WHERE user_id = ?
		GROUP BY category`, userID)
	if err != nil {
		return core.TransactionStatistics{}, fmt.Errorf("statistics by category: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cat core.TransactionCategory
		var n int64
		if err := rows.Scan(&cat, &n); err != nil {
			return core.TransactionStatistics{}, fmt.Errorf("scan statistics row: %w", err)
		}
		s.ByCategory[cat] = n
	}
	return s, rows.Err()
}
