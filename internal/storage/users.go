package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"resourceguardian/internal/core"
)

const userColumns = `id, username, email, phone_number, first_name, last_name, password_hash,
	role, status, email_verified, phone_verified, last_login,
	theme, language, currency, monthly_budget_cents,
	social_media_time_limit, content_blocking, strict_mode, warning_threshold,
	notifications_enabled, motivational_quotes, spending_alerts, time_warnings, goal_reminders,
	created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*core.User, error) {
	var u core.User
	var phone sql.NullString
	var lastLogin sql.NullTime
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &phone, &u.FirstName, &u.LastName, &u.PasswordHash,
		&u.Role, &u.Status, &u.EmailVerified, &u.PhoneVerified, &lastLogin,
		&u.Preferences.Theme, &u.Preferences.Language, &u.Preferences.Currency, &u.Preferences.MonthlyBudget.Cents,
		&u.Behavior.SocialMediaTimeLimit, &u.Behavior.ContentBlocking, &u.Behavior.StrictMode, &u.Behavior.WarningThreshold,
		&u.Notifications.Enabled, &u.Notifications.MotivationalQuotes, &u.Notifications.SpendingAlerts,
		&u.Notifications.TimeWarnings, &u.Notifications.GoalReminders,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.PhoneNumber = phone.String
	u.LastLogin = timePtr(lastLogin)
	return &u, nil
}

func (r *Repository) CreateUser(ctx context.Context, u *core.User) (*core.User, error) {
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO users (
			username, email, phone_number, first_name, last_name, password_hash,
			role, status, email_verified, phone_verified,
			theme, language, currency, monthly_budget_cents,
			social_media_time_limit, content_blocking, strict_mode, warning_threshold,
			notifications_enabled, motivational_quotes, spending_alerts, time_warnings, goal_reminders,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.Username, u.Email, nullString(u.PhoneNumber), u.FirstName, u.LastName, u.PasswordHash,
		u.Role, u.Status, u.EmailVerified, u.PhoneVerified,
		u.Preferences.Theme, u.Preferences.Language, u.Preferences.Currency, u.Preferences.MonthlyBudget.Cents,
		u.Behavior.SocialMediaTimeLimit, u.Behavior.ContentBlocking, u.Behavior.StrictMode, u.Behavior.WarningThreshold,
		u.Notifications.Enabled, u.Notifications.MotivationalQuotes, u.Notifications.SpendingAlerts,
		u.Notifications.TimeWarnings, u.Notifications.GoalReminders,
		u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, core.ErrDuplicate
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("user insert id: %w", err)
	}
	u.ID = id
	return u, nil
}

func (r *Repository) GetUser(ctx context.Context, id int64) (*core.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*core.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	return scanUser(row)
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (r *Repository) UpdateUser(ctx context.Context, u *core.User) (*core.User, error) {
	u.UpdatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET
			username = ?, email = ?, phone_number = ?, first_name = ?, last_name = ?, password_hash = ?,
			role = ?, status = ?, email_verified = ?, phone_verified = ?, last_login = ?,
			theme = ?, language = ?, currency = ?, monthly_budget_cents = ?,
			social_media_time_limit = ?, content_blocking = ?, strict_mode = ?, warning_threshold = ?,
			notifications_enabled = ?, motivational_quotes = ?, spending_alerts = ?, time_warnings = ?, goal_reminders = ?,
			updated_at = ?
		WHERE id = ?`,
		u.Username, u.Email, nullString(u.PhoneNumber), u.FirstName, u.LastName, u.PasswordHash,
		u.Role, u.Status, u.EmailVerified, u.PhoneVerified, nullTime(u.LastLogin),
		u.Preferences.Theme, u.Preferences.Language, u.Preferences.Currency, u.Preferences.MonthlyBudget.Cents,
		u.Behavior.SocialMediaTimeLimit, u.Behavior.ContentBlocking, u.Behavior.StrictMode, u.Behavior.WarningThreshold,
		u.Notifications.Enabled, u.Notifications.MotivationalQuotes, u.Notifications.SpendingAlerts,
		u.Notifications.TimeWarnings, u.Notifications.GoalReminders,
		u.UpdatedAt, u.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, core.ErrDuplicate
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update user rows: %w", err)
	}
	if n == 0 {
		return nil, core.ErrNotFound
	}
	return u, nil
}

func (r *Repository) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET last_login = ?, updated_at = ? WHERE id = ?`,
		at, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	return nil
}

func (r *Repository) DeleteUser(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user rows: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *Repository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM users WHERE username = ?`, username).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("count username: %w", err)
	}
	return n > 0, nil
}

func (r *Repository) EmailExists(ctx context.Context, email string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM users WHERE email = ?`, email).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("count email: %w", err)
	}
	return n > 0, nil
}

func (r *Repository) PhoneExists(ctx context.Context, phone string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM users WHERE phone_number = ?`, phone).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("count phone: %w", err)
	}
	return n > 0, nil
}

// CountActiveUsers counts accounts in the ACTIVE status.
func (r *Repository) CountActiveUsers(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM users WHERE status = ?`, core.StatusActive).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count active users: %w", err)
	}
	return n, nil
}
