package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"resourceguardian/internal/auth"
	"resourceguardian/internal/cache"
	"resourceguardian/internal/core"
	"resourceguardian/internal/storage"
)

// UserService owns registration, authentication, and the settings
// bags. Passwords never leave the auth package as anything but a
// bcrypt hash.
//
// Profile reads go through a small TTL cache; every write either
// refreshes or drops the cached entry.
type UserService struct {
	storage  *storage.Repository
	tokens   *auth.TokenIssuer
	profiles *cache.TTLCache[*core.User]
	now      func() time.Time
}

func NewUserService(storage *storage.Repository, tokens *auth.TokenIssuer) *UserService {
	return &UserService{
		storage:  storage,
		tokens:   tokens,
		profiles: cache.New[*core.User](256, 5*time.Minute),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func profileKey(id int64) string { return strconv.FormatInt(id, 10) }

// saveUser writes through storage and refreshes the profile cache.
func (s *UserService) saveUser(ctx context.Context, u *core.User) (*core.User, error) {
	updated, err := s.storage.UpdateUser(ctx, u)
	if err != nil {
		return nil, err
	}
	s.profiles.Set(profileKey(updated.ID), updated)
	return updated, nil
}

// Registration is the signup payload.
type Registration struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
}

// Register creates a user with default settings. New accounts start as
// PENDING_VERIFICATION until the email is verified. Username, email
// and phone number must all be unused; a taken one surfaces as
// ErrDuplicate.
func (s *UserService) Register(ctx context.Context, reg Registration) (*core.User, error) {
	u := &core.User{
		Username:      reg.Username,
		Email:         reg.Email,
		PhoneNumber:   reg.PhoneNumber,
		FirstName:     reg.FirstName,
		LastName:      reg.LastName,
		Role:          core.RoleUser,
		Status:        core.StatusPendingVerification,
		Preferences:   core.DefaultPreferences(),
		Notifications: core.DefaultNotificationSettings(),
		Behavior:      core.DefaultBehaviorSettings(),
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}

	if taken, err := s.storage.UsernameExists(ctx, reg.Username); err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	} else if taken {
		return nil, fmt.Errorf("username: %w", core.ErrDuplicate)
	}
	if taken, err := s.storage.EmailExists(ctx, reg.Email); err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	} else if taken {
		return nil, fmt.Errorf("email: %w", core.ErrDuplicate)
	}
	if reg.PhoneNumber != "" {
		if taken, err := s.storage.PhoneExists(ctx, reg.PhoneNumber); err != nil {
			return nil, fmt.Errorf("check phone: %w", err)
		} else if taken {
			return nil, fmt.Errorf("phoneNumber: %w", core.ErrDuplicate)
		}
	}

	hash, err := auth.HashPassword(reg.Password)
	if err != nil {
		return nil, core.Validationf("password", "%v", err)
	}
	u.PasswordHash = hash

	created, err := s.storage.CreateUser(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	slog.InfoContext(ctx, "User registered", "user_id", created.ID, "username", created.Username)
	return created, nil
}

// Authenticate verifies credentials and mints an access token. The
// login name matches either username or email; every failure mode
// reports the same invalid-credentials error.
func (s *UserService) Authenticate(ctx context.Context, login, password string) (*core.User, string, error) {
	u, err := s.storage.GetUserByUsername(ctx, login)
	if err != nil {
		u, err = s.storage.GetUserByEmail(ctx, login)
	}
	if err != nil {
		return nil, "", core.ErrInvalidCredentials
	}

	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, "", core.ErrInvalidCredentials
	}
	if u.Status == core.StatusLocked || u.Status == core.StatusExpired {
		return nil, "", core.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(u)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	now := s.now()
	if err := s.storage.TouchLastLogin(ctx, u.ID, now); err != nil {
		slog.WarnContext(ctx, "Failed to record last login", "user_id", u.ID, "error", err)
	}
	u.LastLogin = &now
	s.profiles.Set(profileKey(u.ID), u)

	slog.InfoContext(ctx, "User authenticated", "user_id", u.ID)
	return u, token, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*core.User, error) {
	if u, ok := s.profiles.Get(profileKey(id)); ok {
		return u, nil
	}
	u, err := s.storage.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	s.profiles.Set(profileKey(id), u)
	return u, nil
}

// ProfileUpdate carries the editable profile fields.
type ProfileUpdate struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber"`
}

func (s *UserService) UpdateProfile(ctx context.Context, id int64, p ProfileUpdate) (*core.User, error) {
	u, err := s.storage.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	u.FirstName = p.FirstName
	u.LastName = p.LastName
	if u.PhoneNumber != p.PhoneNumber {
		u.PhoneNumber = p.PhoneNumber
		u.PhoneVerified = false
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return s.saveUser(ctx, u)
}

func (s *UserService) UpdatePreferences(ctx context.Context, id int64, p core.Preferences) (*core.User, error) {
	if _, err := core.ParseTheme(string(p.Theme)); err != nil {
		return nil, err
	}
	if _, err := core.ParseLanguage(string(p.Language)); err != nil {
		return nil, err
	}
	if p.MonthlyBudget.Cents < 0 {
		return nil, core.Validationf("monthlyBudget", "must not be negative")
	}

	u, err := s.storage.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Preferences = p
	return s.saveUser(ctx, u)
}

func (s *UserService) UpdateNotifications(ctx context.Context, id int64, n core.NotificationSettings) (*core.User, error) {
	u, err := s.storage.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Notifications = n
	return s.saveUser(ctx, u)
}

func (s *UserService) UpdateBehavior(ctx context.Context, id int64, b core.BehaviorSettings) (*core.User, error) {
	if b.SocialMediaTimeLimit < 0 {
		return nil, core.Validationf("socialMediaTimeLimit", "must not be negative")
	}
	if b.WarningThreshold < 0 || b.WarningThreshold > 100 {
		return nil, core.Validationf("warningThreshold", "must be between 0 and 100")
	}

	u, err := s.storage.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Behavior = b
	return s.saveUser(ctx, u)
}

// VerifyEmail marks the account's email as verified. An account still
// pending verification becomes active.
func (s *UserService) VerifyEmail(ctx context.Context, id int64) (*core.User, error) {
	u, err := s.storage.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	u.EmailVerified = true
	if u.Status == core.StatusPendingVerification {
		u.Status = core.StatusActive
	}
	updated, err := s.saveUser(ctx, u)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Email verified", "user_id", id, "status", updated.Status)
	return updated, nil
}

// VerifyPhone marks the account's phone number as verified. Unlike
// email verification it never changes the account status.
func (s *UserService) VerifyPhone(ctx context.Context, id int64) (*core.User, error) {
	u, err := s.storage.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.PhoneNumber == "" {
		return nil, core.Validationf("phoneNumber", "no phone number on file")
	}
	u.PhoneVerified = true
	return s.saveUser(ctx, u)
}

// ActiveUserCount reports how many accounts are in the ACTIVE status.
func (s *UserService) ActiveUserCount(ctx context.Context) (int64, error) {
	return s.storage.CountActiveUsers(ctx)
}

// ChangePassword verifies the current password before storing a new
// hash.
func (s *UserService) ChangePassword(ctx context.Context, id int64, current, next string) error {
	u, err := s.storage.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(u.PasswordHash, current) {
		return core.ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(next)
	if err != nil {
		return core.Validationf("password", "%v", err)
	}
	u.PasswordHash = hash
	if _, err := s.saveUser(ctx, u); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Password changed", "user_id", id)
	return nil
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.storage.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.profiles.Delete(profileKey(id))
	return nil
}
