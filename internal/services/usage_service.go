package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"resourceguardian/internal/core"
	"resourceguardian/internal/storage"
)

// UsageService records app time and evaluates it against the user's
// behavior settings. Usage entries stay independent of the financial
// entities.
type UsageService struct {
	storage *storage.Repository
	now     func() time.Time
}

func NewUsageService(storage *storage.Repository) *UsageService {
	return &UsageService{
		storage: storage,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Record stores a usage entry. Social media entries are checked
// against the owner's daily limit: crossing the warning threshold sets
// the warning flag, and exceeding the limit under strict mode marks
// the entry blocked.
func (s *UsageService) Record(ctx context.Context, u *core.AppUsage) (*core.AppUsage, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}

	if u.Category == core.AppSocialMedia {
		if err := s.applyLimits(ctx, u); err != nil {
			slog.WarnContext(ctx, "Failed to evaluate usage limits", "user_id", u.UserID, "error", err)
		}
	}

	created, err := s.storage.CreateAppUsage(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("record app usage: %w", err)
	}
	return created, nil
}

func (s *UsageService) applyLimits(ctx context.Context, u *core.AppUsage) error {
	owner, err := s.storage.GetUser(ctx, u.UserID)
	if err != nil {
		return err
	}

	limit := owner.Behavior.SocialMediaTimeLimit
	if limit <= 0 {
		return nil
	}

	day := u.UsageDate
	if day.IsZero() {
		day = s.now()
	}
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	summary, err := s.storage.UsageSummary(ctx, u.UserID, from, from.AddDate(0, 0, 1))
	if err != nil {
		return err
	}

	total := summary.ByCategory[core.AppSocialMedia] + u.Minutes
	if total*100 >= limit*owner.Behavior.WarningThreshold {
		u.WarningShown = true
	}
	if total >= limit && owner.Behavior.StrictMode {
		u.Blocked = true
		slog.InfoContext(ctx, "Social media limit exceeded",
			"user_id", u.UserID,
			"app", u.AppName,
			"total_minutes", total,
			"limit_minutes", limit)
	}
	return nil
}

func (s *UsageService) List(ctx context.Context, userID int64, f storage.AppUsageFilter) ([]core.AppUsage, error) {
	return s.storage.ListAppUsage(ctx, userID, f)
}

// Summary totals minutes per category over [from, to).
func (s *UsageService) Summary(ctx context.Context, userID int64, from, to time.Time) (core.UsageSummary, error) {
	if !to.After(from) {
		return core.UsageSummary{}, core.Validationf("to", "must be after from")
	}
	return s.storage.UsageSummary(ctx, userID, from, to)
}

func (s *UsageService) Delete(ctx context.Context, id, userID int64) error {
	return s.storage.DeleteAppUsage(ctx, id, userID)
}
