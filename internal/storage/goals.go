package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"resourceguardian/internal/core"
)

const goalColumns = `id, user_id, title, description, type, category, priority, unit,
	target_value, current_value, progress,
	target_date, is_completed, completed_at, is_active, streak_count,
	created_at, updated_at`

func scanGoal(row interface{ Scan(...any) error }) (*core.Goal, error) {
	var g core.Goal
	var targetDate, completedAt sql.NullTime
	err := row.Scan(
		&g.ID, &g.UserID, &g.Title, &g.Description, &g.Type, &g.Category, &g.Priority, &g.Unit,
		&g.TargetValue, &g.CurrentValue, &g.Progress,
		&targetDate, &g.Completed, &completedAt, &g.Active, &g.StreakCount,
		&g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("scan goal: %w", err)
	}
	g.TargetDate = timePtr(targetDate)
	g.CompletedAt = timePtr(completedAt)
	return &g, nil
}

func (r *Repository) CreateGoal(ctx context.Context, g *core.Goal) (*core.Goal, error) {
	now := time.Now().UTC()
	g.CreatedAt = now
	g.UpdatedAt = now

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO goals (
			user_id, title, description, type, category, priority, unit,
			target_value, current_value, progress,
			target_date, is_completed, completed_at, is_active, streak_count,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.UserID, g.Title, g.Description, g.Type, g.Category, g.Priority, g.Unit,
		g.TargetValue, g.CurrentValue, g.Progress,
		nullTime(g.TargetDate), g.Completed, nullTime(g.CompletedAt), g.Active, g.StreakCount,
		g.CreatedAt, g.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert goal: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("goal insert id: %w", err)
	}
	g.ID = id
	return g, nil
}

func (r *Repository) GetGoal(ctx context.Context, id, userID int64) (*core.Goal, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+goalColumns+` FROM goals WHERE id = ? AND user_id = ?`, id, userID)
	return scanGoal(row)
}

// GoalFilter narrows ListGoals. Zero values mean "no filter". Overdue
// and DueWithinDays both imply not-completed; their cutoffs are taken
// against the current UTC time.
type GoalFilter struct {
	Type          core.GoalType
	Category      string
	Completed     *bool
	Active        *bool
	MinProgress   *int
	From          *time.Time
	To            *time.Time
	Overdue       bool
	DueWithinDays int
}

func (r *Repository) ListGoals(ctx context.Context, userID int64, f GoalFilter) ([]core.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals WHERE user_id = ?`
	args := []any{userID}
	if f.Type != "" {
		query += ` AND type = ?`
		args = append(args, f.Type)
	}
	if f.Category != "" {
		query += ` AND category = ?`
		args = append(args, f.Category)
	}
	if f.Completed != nil {
		query += ` AND is_completed = ?`
		args = append(args, *f.Completed)
	}
	if f.Active != nil {
		query += ` AND is_active = ?`
		args = append(args, *f.Active)
	}
	if f.MinProgress != nil {
		query += ` AND progress >= ?`
		args = append(args, *f.MinProgress)
	}
	if f.From != nil {
		query += ` AND target_date >= ?`
		args = append(args, *f.From)
	}
	if f.To != nil {
		query += ` AND target_date <= ?`
		args = append(args, *f.To)
	}
	now := time.Now().UTC()
	if f.Overdue {
		query += ` AND target_date < ? AND is_completed = 0`
		args = append(args, now)
	}
	if f.DueWithinDays > 0 {
		query += ` AND target_date >= ? AND target_date <= ? AND is_completed = 0`
		args = append(args, now, now.AddDate(0, 0, f.DueWithinDays))
	}

	// Completed goals list newest completion first, everything else by
	// priority then recency.
	if f.Completed != nil && *f.Completed {
		query += ` ORDER BY completed_at DESC`
	} else {
		query += ` ORDER BY priority DESC, created_at DESC`
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var goals []core.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, *g)
	}
	return goals, rows.Err()
}

// MutateGoal runs fn on the stored goal inside a transaction and writes
// the result back, mirroring MutateSavingsGoal.
func (r *Repository) MutateGoal(ctx context.Context, id, userID int64, fn func(*core.Goal) error) (*core.Goal, error) {
	var out *core.Goal
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			`SELECT `+goalColumns+` FROM goals WHERE id = ? AND user_id = ?`, id, userID)
		g, err := scanGoal(row)
		if err != nil {
			return err
		}

		if err := fn(g); err != nil {
			return err
		}
		g.UpdatedAt = time.Now().UTC()

		_, err = tx.ExecContext(ctx, `
			UPDATE goals SET
				title = ?, description = ?, type = ?, category = ?, priority = ?, unit = ?,
				target_value = ?, current_value = ?, progress = ?,
				target_date = ?, is_completed = ?, completed_at = ?, is_active = ?, streak_count = ?,
				updated_at = ?
			WHERE id = ? AND user_id = ?`,
			g.Title, g.Description, g.Type, g.Category, g.Priority, g.Unit,
			g.TargetValue, g.CurrentValue, g.Progress,
			nullTime(g.TargetDate), g.Completed, nullTime(g.CompletedAt), g.Active, g.StreakCount,
			g.UpdatedAt, g.ID, userID,
		)
		if err != nil {
			return fmt.Errorf("update goal: %w", err)
		}
		out = g
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repository) DeleteGoal(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM goals WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete goal rows: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// GoalSummary counts active and completed goals. The progress average
// covers only goals still open; completed ones would pin it to 100.
func (r *Repository) GoalSummary(ctx context.Context, userID int64) (core.GoalSummary, error) {
	var s core.GoalSummary
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN is_completed = 0 AND is_active = 1 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN is_completed = 1 THEN 1 ELSE 0 END), 0),
			COALESCE(AVG(CASE WHEN is_completed = 0 THEN progress END), 0)
		FROM goals WHERE user_id = ?`, userID).Scan(
		&s.ActiveCount, &s.CompletedCount, &s.AverageProgress)
	if err != nil {
		return core.GoalSummary{}, fmt.Errorf("goal summary: %w", err)
	}
	return s, nil
}
