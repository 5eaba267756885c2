package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"resourceguardian/internal/auth"
	"resourceguardian/internal/core"
)

func newTestUsers(t *testing.T) *UserService {
	t.Helper()
	repo := newTestStorage(t)
	return NewUserService(repo, auth.NewTokenIssuer("test-secret", time.Hour))
}

func register(t *testing.T, svc *UserService, username string) *core.User {
	t.Helper()
	u, err := svc.Register(context.Background(), Registration{
		Username:  username,
		Email:     username + "@example.com",
		Password:  "sufficiently long",
		FirstName: "Test",
		LastName:  "User",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	return u
}

func TestRegisterAppliesDefaults(t *testing.T) {
	svc := newTestUsers(t)
	u := register(t, svc, "alice")

	if u.Role != core.RoleUser || u.Status != core.StatusPendingVerification {
		t.Errorf("Role/Status = %q/%q, want USER/PENDING_VERIFICATION", u.Role, u.Status)
	}
	if u.Preferences.Currency != "KES" {
		t.Errorf("Currency = %q, want KES", u.Preferences.Currency)
	}
	if !u.Notifications.Enabled {
		t.Error("notifications not enabled by default")
	}
	if u.Behavior.SocialMediaTimeLimit != 30 {
		t.Errorf("SocialMediaTimeLimit = %d, want 30", u.Behavior.SocialMediaTimeLimit)
	}
	if u.PasswordHash == "sufficiently long" {
		t.Error("password stored in plaintext")
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	svc := newTestUsers(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, Registration{
		Username: "bob", Email: "bob@example.com", Password: "password123",
		PhoneNumber: "254700000001", FirstName: "B",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	_, err = svc.Register(ctx, Registration{
		Username: "bob", Email: "new@example.com", Password: "password123", FirstName: "B",
	})
	if !errors.Is(err, core.ErrDuplicate) {
		t.Errorf("duplicate username error = %v, want ErrDuplicate", err)
	}

	_, err = svc.Register(ctx, Registration{
		Username: "bob2", Email: "bob@example.com", Password: "password123", FirstName: "B",
	})
	if !errors.Is(err, core.ErrDuplicate) {
		t.Errorf("duplicate email error = %v, want ErrDuplicate", err)
	}

	_, err = svc.Register(ctx, Registration{
		Username: "bob3", Email: "bob3@example.com", Password: "password123",
		PhoneNumber: "254700000001", FirstName: "B",
	})
	if !errors.Is(err, core.ErrDuplicate) {
		t.Errorf("duplicate phone error = %v, want ErrDuplicate", err)
	}
}

func TestAuthenticateByUsernameOrEmail(t *testing.T) {
	svc := newTestUsers(t)
	register(t, svc, "carol")
	ctx := context.Background()

	for _, login := range []string{"carol", "carol@example.com"} {
		u, token, err := svc.Authenticate(ctx, login, "sufficiently long")
		if err != nil {
			t.Fatalf("Authenticate(%q) error = %v", login, err)
		}
		if token == "" {
			t.Error("empty token")
		}
		if u.LastLogin == nil {
			t.Error("LastLogin not recorded")
		}
	}
}

func TestAuthenticateRejectsBadCredentials(t *testing.T) {
	svc := newTestUsers(t)
	register(t, svc, "dave")
	ctx := context.Background()

	if _, _, err := svc.Authenticate(ctx, "dave", "wrong password"); !errors.Is(err, core.ErrInvalidCredentials) {
		t.Errorf("wrong password error = %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := svc.Authenticate(ctx, "nobody", "whatever else"); !errors.Is(err, core.ErrInvalidCredentials) {
		t.Errorf("unknown user error = %v, want ErrInvalidCredentials", err)
	}
}

func TestChangePassword(t *testing.T) {
	svc := newTestUsers(t)
	u := register(t, svc, "erin")
	ctx := context.Background()

	if err := svc.ChangePassword(ctx, u.ID, "wrong current", "next password"); !errors.Is(err, core.ErrInvalidCredentials) {
		t.Errorf("wrong current password error = %v, want ErrInvalidCredentials", err)
	}

	if err := svc.ChangePassword(ctx, u.ID, "sufficiently long", "next password"); err != nil {
		t.Fatalf("ChangePassword() error = %v", err)
	}

	if _, _, err := svc.Authenticate(ctx, "erin", "next password"); err != nil {
		t.Errorf("Authenticate() with new password error = %v", err)
	}
	if _, _, err := svc.Authenticate(ctx, "erin", "sufficiently long"); !errors.Is(err, core.ErrInvalidCredentials) {
		t.Errorf("old password still accepted")
	}
}

func TestUpdatePreferencesValidatesEnums(t *testing.T) {
	svc := newTestUsers(t)
	u := register(t, svc, "fred")
	ctx := context.Background()

	_, err := svc.UpdatePreferences(ctx, u.ID, core.Preferences{
		Theme: "NEON", Language: core.LanguageEN, Currency: "KES",
	})
	if !core.IsValidation(err) {
		t.Errorf("bad theme error = %v, want validation error", err)
	}

	updated, err := svc.UpdatePreferences(ctx, u.ID, core.Preferences{
		Theme:         core.ThemeDark,
		Language:      core.LanguageSW,
		Currency:      "USD",
		MonthlyBudget: core.Money{Cents: 30000_00},
	})
	if err != nil {
		t.Fatalf("UpdatePreferences() error = %v", err)
	}
	if updated.Preferences.Theme != core.ThemeDark || updated.Preferences.Language != core.LanguageSW {
		t.Errorf("preferences not applied: %+v", updated.Preferences)
	}
}

func TestUpdateProfileClearsPhoneVerification(t *testing.T) {
	svc := newTestUsers(t)
	u := register(t, svc, "gina")
	ctx := context.Background()

	updated, err := svc.UpdateProfile(ctx, u.ID, ProfileUpdate{
		FirstName: "Gina", LastName: "R", PhoneNumber: "254711000111",
	})
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if updated.PhoneVerified {
		t.Error("PhoneVerified should reset when the number changes")
	}
	if updated.PhoneNumber != "254711000111" {
		t.Errorf("PhoneNumber = %q", updated.PhoneNumber)
	}
}

func TestVerifyEmailActivatesAccount(t *testing.T) {
	svc := newTestUsers(t)
	u := register(t, svc, "ivan")
	ctx := context.Background()

	if u.Status != core.StatusPendingVerification {
		t.Fatalf("Status after register = %q, want PENDING_VERIFICATION", u.Status)
	}

	verified, err := svc.VerifyEmail(ctx, u.ID)
	if err != nil {
		t.Fatalf("VerifyEmail() error = %v", err)
	}
	if !verified.EmailVerified {
		t.Error("EmailVerified not set")
	}
	if verified.Status != core.StatusActive {
		t.Errorf("Status after verify = %q, want ACTIVE", verified.Status)
	}

	// A second verification is a no-op on the status.
	again, err := svc.VerifyEmail(ctx, u.ID)
	if err != nil {
		t.Fatalf("VerifyEmail() second call error = %v", err)
	}
	if again.Status != core.StatusActive {
		t.Errorf("Status after second verify = %q, want ACTIVE", again.Status)
	}
}

func TestVerifyPhone(t *testing.T) {
	svc := newTestUsers(t)
	u := register(t, svc, "judy")
	ctx := context.Background()

	if _, err := svc.VerifyPhone(ctx, u.ID); !core.IsValidation(err) {
		t.Errorf("verify without number error = %v, want validation error", err)
	}

	if _, err := svc.UpdateProfile(ctx, u.ID, ProfileUpdate{
		FirstName: "Judy", PhoneNumber: "254722000333",
	}); err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}

	verified, err := svc.VerifyPhone(ctx, u.ID)
	if err != nil {
		t.Fatalf("VerifyPhone() error = %v", err)
	}
	if !verified.PhoneVerified {
		t.Error("PhoneVerified not set")
	}
	if verified.Status != core.StatusPendingVerification {
		t.Errorf("Status = %q, phone verification must not change it", verified.Status)
	}
}

func TestActiveUserCount(t *testing.T) {
	svc := newTestUsers(t)
	ctx := context.Background()

	a := register(t, svc, "kevin")
	register(t, svc, "laura")

	n, err := svc.ActiveUserCount(ctx)
	if err != nil {
		t.Fatalf("ActiveUserCount() error = %v", err)
	}
	if n != 0 {
		t.Errorf("ActiveUserCount() = %d before any verification, want 0", n)
	}

	if _, err := svc.VerifyEmail(ctx, a.ID); err != nil {
		t.Fatalf("VerifyEmail() error = %v", err)
	}
	n, err = svc.ActiveUserCount(ctx)
	if err != nil {
		t.Fatalf("ActiveUserCount() error = %v", err)
	}
	if n != 1 {
		t.Errorf("ActiveUserCount() = %d, want 1", n)
	}
}

func TestUpdateBehaviorValidatesThreshold(t *testing.T) {
	svc := newTestUsers(t)
	u := register(t, svc, "hana")

	_, err := svc.UpdateBehavior(context.Background(), u.ID, core.BehaviorSettings{
		SocialMediaTimeLimit: 60,
		WarningThreshold:     140,
	})
	if !core.IsValidation(err) {
		t.Errorf("threshold 140 error = %v, want validation error", err)
	}
}
