package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"resourceguardian/internal/core"
)

const appUsageColumns = `id, user_id, app_name, package_name, duration_minutes,
	category, usage_date, blocked, warning_shown, created_at`

func scanAppUsage(row interface{ Scan(...any) error }) (*core.AppUsage, error) {
	var u core.AppUsage
	err := row.Scan(
		&u.ID, &u.UserID, &u.AppName, &u.PackageName, &u.Minutes,
		&u.Category, &u.UsageDate, &u.Blocked, &u.WarningShown, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("scan app usage: %w", err)
	}
	return &u, nil
}

func (r *Repository) CreateAppUsage(ctx context.Context, u *core.AppUsage) (*core.AppUsage, error) {
	u.CreatedAt = time.Now().UTC()
	if u.UsageDate.IsZero() {
		u.UsageDate = u.CreatedAt
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO app_usage (
			user_id, app_name, package_name, duration_minutes,
			category, usage_date, blocked, warning_shown, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.UserID, u.AppName, u.PackageName, u.Minutes,
		u.Category, u.UsageDate, u.Blocked, u.WarningShown, u.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert app usage: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("app usage insert id: %w", err)
	}
	u.ID = id
	return u, nil
}

// AppUsageFilter narrows ListAppUsage. Zero values mean "no filter".
type AppUsageFilter struct {
	Category core.AppCategory
	From     *time.Time
	To       *time.Time
	Limit    int
}

func (r *Repository) ListAppUsage(ctx context.Context, userID int64, f AppUsageFilter) ([]core.AppUsage, error) {
	query := `SELECT ` + appUsageColumns + ` FROM app_usage WHERE user_id = ?`
	args := []any{userID}
	if f.Category != "" {
		query += ` AND category = ?`
		args = append(args, f.Category)
	}
	if f.From != nil {
		query += ` AND usage_date >= ?`
		args = append(args, *f.From)
	}
	if f.To != nil {
		query += ` AND usage_date < ?`
		args = append(args, *f.To)
	}
	query += ` ORDER BY usage_date DESC, id DESC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list app usage: %w", err)
	}
	defer rows.Close()

	var entries []core.AppUsage
	for rows.Next() {
		u, err := scanAppUsage(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *u)
	}
	return entries, rows.Err()
}

func (r *Repository) DeleteAppUsage(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM app_usage WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete app usage: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete app usage rows: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// UsageSummary totals minutes per category in [from, to).
func (r *Repository) UsageSummary(ctx context.Context, userID int64, from, to time.Time) (core.UsageSummary, error) {
	s := core.UsageSummary{
		From:       from,
		To:         to,
		ByCategory: map[core.AppCategory]int{},
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT category, COALESCE(SUM(duration_minutes), 0)
		FROM app_usage
		WHERE user_id = ? AND usage_date >= ? AND usage_date < ?
		GROUP BY category`, userID, from, to)
	if err != nil {
		return core.UsageSummary{}, fmt.Errorf("usage summary: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cat core.AppCategory
		var minutes int
		if err := rows.Scan(&cat, &minutes); err != nil {
			return core.UsageSummary{}, fmt.Errorf("scan usage row: %w", err)
		}
		s.ByCategory[cat] = minutes
		s.TotalMinutes += minutes
	}
	return s, rows.Err()
}
