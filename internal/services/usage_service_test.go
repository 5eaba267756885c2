package services

import (
	"context"
	"testing"
	"time"

	"resourceguardian/internal/core"
	"resourceguardian/internal/storage"
)

func newTestUsage(t *testing.T) (*UsageService, *storage.Repository, int64) {
	t.Helper()
	repo := newTestStorage(t)
	return NewUsageService(repo), repo, newTestAccount(t, repo, "scroller")
}

func recordUsage(t *testing.T, svc *UsageService, userID int64, app string, cat core.AppCategory, minutes int, day time.Time) *core.AppUsage {
	t.Helper()
	u, err := svc.Record(context.Background(), &core.AppUsage{
		UserID:    userID,
		AppName:   app,
		Category:  cat,
		Minutes:   minutes,
		UsageDate: day,
	})
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	return u
}

func TestRecordRejectsInvalidUsage(t *testing.T) {
	svc, _, userID := newTestUsage(t)
	ctx := context.Background()

	_, err := svc.Record(ctx, &core.AppUsage{UserID: userID, AppName: "", Category: core.AppOther, Minutes: 5})
	if !core.IsValidation(err) {
		t.Errorf("empty app name error = %v, want validation error", err)
	}

	_, err = svc.Record(ctx, &core.AppUsage{UserID: userID, AppName: "X", Category: core.AppOther, Minutes: 0})
	if !core.IsValidation(err) {
		t.Errorf("zero minutes error = %v, want validation error", err)
	}
}

func TestSocialMediaWarningThreshold(t *testing.T) {
	svc, _, userID := newTestUsage(t)
	day := time.Date(2025, time.August, 20, 10, 0, 0, 0, time.UTC)

	// default limit 30 min, warning at 75% = 22.5 min
	first := recordUsage(t, svc, userID, "Instagram", core.AppSocialMedia, 10, day)
	if first.WarningShown {
		t.Error("warning shown at 10 of 30 minutes")
	}

	second := recordUsage(t, svc, userID, "TikTok", core.AppSocialMedia, 15, day)
	if !second.WarningShown {
		t.Error("no warning at 25 of 30 minutes (threshold 75%)")
	}
	if second.Blocked {
		t.Error("blocked without strict mode")
	}
}

func TestStrictModeBlocksOverLimit(t *testing.T) {
	svc, repo, userID := newTestUsage(t)
	ctx := context.Background()
	day := time.Date(2025, time.August, 21, 10, 0, 0, 0, time.UTC)

	u, err := repo.GetUser(ctx, userID)
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	u.Behavior.StrictMode = true
	if _, err := repo.UpdateUser(ctx, u); err != nil {
		t.Fatalf("UpdateUser() error = %v", err)
	}

	recordUsage(t, svc, userID, "Instagram", core.AppSocialMedia, 20, day)
	over := recordUsage(t, svc, userID, "TikTok", core.AppSocialMedia, 15, day)
	if !over.Blocked {
		t.Error("strict mode did not block past the limit")
	}
}

func TestNonSocialUsageIgnoresLimits(t *testing.T) {
	svc, _, userID := newTestUsage(t)
	day := time.Date(2025, time.August, 22, 10, 0, 0, 0, time.UTC)

	u := recordUsage(t, svc, userID, "VS Code", core.AppProductive, 300, day)
	if u.WarningShown || u.Blocked {
		t.Error("productive usage flagged by social media limits")
	}
}

func TestSummaryRejectsEmptyRange(t *testing.T) {
	svc, _, userID := newTestUsage(t)
	now := time.Now().UTC()

	if _, err := svc.Summary(context.Background(), userID, now, now); !core.IsValidation(err) {
		t.Errorf("empty range error = %v, want validation error", err)
	}
}
