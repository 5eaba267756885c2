package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"resourceguardian/internal/core"
)

const savingsGoalColumns = `id, user_id, name, description, category, priority,
	target_amount_cents, current_amount_cents, target_date,
	is_time_locked, time_locked_until, is_completed, completed_at,
	created_at, updated_at`

func scanSavingsGoal(row interface{ Scan(...any) error }) (*core.SavingsGoal, error) {
	var g core.SavingsGoal
	var targetDate, lockedUntil, completedAt sql.NullTime
	err := row.Scan(
		&g.ID, &g.UserID, &g.Name, &g.Description, &g.Category, &g.Priority,
		&g.TargetAmount.Cents, &g.CurrentAmount.Cents, &targetDate,
		&g.TimeLocked, &lockedUntil, &g.Completed, &completedAt,
		&g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("scan savings goal: %w", err)
	}
	g.TargetDate = timePtr(targetDate)
	g.TimeLockedUntil = timePtr(lockedUntil)
	g.CompletedAt = timePtr(completedAt)
	return &g, nil
}

func (r *Repository) CreateSavingsGoal(ctx context.Context, g *core.SavingsGoal) (*core.SavingsGoal, error) {
	now := time.Now().UTC()
	g.CreatedAt = now
	g.UpdatedAt = now

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO savings_goals (
			user_id, name, description, category, priority,
			target_amount_cents, current_amount_cents, target_date,
			is_time_locked, time_locked_until, is_completed, completed_at,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.UserID, g.Name, g.Description, g.Category, g.Priority,
		g.TargetAmount.Cents, g.CurrentAmount.Cents, nullTime(g.TargetDate),
		g.TimeLocked, nullTime(g.TimeLockedUntil), g.Completed, nullTime(g.CompletedAt),
		g.CreatedAt, g.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert savings goal: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("savings goal insert id: %w", err)
	}
	g.ID = id
	return g, nil
}

func (r *Repository) GetSavingsGoal(ctx context.Context, id, userID int64) (*core.SavingsGoal, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+savingsGoalColumns+` FROM savings_goals WHERE id = ? AND user_id = ?`, id, userID)
	return scanSavingsGoal(row)
}

// SavingsGoalFilter narrows ListSavingsGoals. Zero values mean "no filter".
type SavingsGoalFilter struct {
	Category  core.SavingsCategory
	Completed *bool
}

func (r *Repository) ListSavingsGoals(ctx context.Context, userID int64, f SavingsGoalFilter) ([]core.SavingsGoal, error) {
	query := `SELECT ` + savingsGoalColumns + ` FROM savings_goals WHERE user_id = ?`
	args := []any{userID}
	if f.Category != "" {
		query += ` AND category = ?`
		args = append(args, f.Category)
	}
	if f.Completed != nil {
		query += ` AND is_completed = ?`
		args = append(args, *f.Completed)
	}
	query += ` ORDER BY priority DESC, created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list savings goals: %w", err)
	}
	defer rows.Close()

	var goals []core.SavingsGoal
	for rows.Next() {
		g, err := scanSavingsGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, *g)
	}
	return goals, rows.Err()
}

// MutateSavingsGoal runs fn on the stored goal inside a transaction and
// writes the result back. It is the single path for amount, lock, and
// completion changes so concurrent mutations never interleave.
func (r *Repository) MutateSavingsGoal(ctx context.Context, id, userID int64, fn func(*core.SavingsGoal) error) (*core.SavingsGoal, error) {
	var out *core.SavingsGoal
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			`SELECT `+savingsGoalColumns+` FROM savings_goals WHERE id = ? AND user_id = ?`, id, userID)
		g, err := scanSavingsGoal(row)
		if err != nil {
			return err
		}

		if err := fn(g); err != nil {
			return err
		}
		g.UpdatedAt = time.Now().UTC()

		_, err = tx.ExecContext(ctx, `
			UPDATE savings_goals SET
				name = ?, description = ?, category = ?, priority = ?,
				target_amount_cents = ?, current_amount_cents = ?, target_date = ?,
				is_time_locked = ?, time_locked_until = ?, is_completed = ?, completed_at = ?,
				updated_at = ?
			WHERE id = ? AND user_id = ?`,
			g.Name, g.Description, g.Category, g.Priority,
			g.TargetAmount.Cents, g.CurrentAmount.Cents, nullTime(g.TargetDate),
			g.TimeLocked, nullTime(g.TimeLockedUntil), g.Completed, nullTime(g.CompletedAt),
			g.UpdatedAt, g.ID, userID,
		)
		if err != nil {
			return fmt.Errorf("update savings goal: %w", err)
		}
		out = g
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repository) DeleteSavingsGoal(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM savings_goals WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete savings goal: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete savings goal rows: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// SavingsSummary aggregates a user's goals in the database rather than
// loading them all.
func (r *Repository) SavingsSummary(ctx context.Context, userID int64) (core.SavingsSummary, error) {
	var s core.SavingsSummary
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(current_amount_cents), 0),
			COALESCE(SUM(CASE WHEN is_completed = 0 THEN target_amount_cents ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN is_completed = 0 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN is_completed = 1 THEN 1 ELSE 0 END), 0)
		FROM savings_goals WHERE user_id = ?`, userID).Scan(
		&s.TotalSaved.Cents, &s.TotalTarget.Cents, &s.ActiveCount, &s.CompletedCount)
	if err != nil {
		return core.SavingsSummary{}, fmt.Errorf("savings summary: %w", err)
	}
	return s, nil
}
