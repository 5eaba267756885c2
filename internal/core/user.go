package core

import (
	"strings"
	"time"
)

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"

	StatusActive              AccountStatus = "ACTIVE"
	StatusLocked              AccountStatus = "LOCKED"
	StatusExpired             AccountStatus = "EXPIRED"
	StatusPendingVerification AccountStatus = "PENDING_VERIFICATION"

	ThemeLight Theme = "LIGHT"
	ThemeDark  Theme = "DARK"
	ThemeAuto  Theme = "AUTO"

	LanguageEN Language = "EN"
	LanguageSW Language = "SW"
)

type (
	Role          string
	AccountStatus string
	Theme         string
	Language      string
)

// User is a plain data struct. Credential verification lives in the
// auth package; the password hash is carried here only so storage can
// round-trip it and is never serialized.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PhoneNumber  string `json:"phoneNumber,omitempty"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	PasswordHash string `json:"-"`

	Role          Role          `json:"role"`
	Status        AccountStatus `json:"status"`
	EmailVerified bool          `json:"emailVerified"`
	PhoneVerified bool          `json:"phoneVerified"`
	LastLogin     *time.Time    `json:"lastLogin,omitempty"`

	Preferences   Preferences          `json:"preferences"`
	Notifications NotificationSettings `json:"notifications"`
	Behavior      BehaviorSettings     `json:"behavior"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Preferences is the user's display and budgeting settings bag.
type Preferences struct {
	Theme         Theme    `json:"theme"`
	Language      Language `json:"language"`
	Currency      string   `json:"currency"`
	MonthlyBudget Money    `json:"monthlyBudget"`
}

// NotificationSettings toggles the individual notification channels.
type NotificationSettings struct {
	Enabled            bool `json:"enabled"`
	MotivationalQuotes bool `json:"motivationalQuotes"`
	SpendingAlerts     bool `json:"spendingAlerts"`
	TimeWarnings       bool `json:"timeWarnings"`
	GoalReminders      bool `json:"goalReminders"`
}

// BehaviorSettings governs the app-usage tracking side of the product.
type BehaviorSettings struct {
	SocialMediaTimeLimit int  `json:"socialMediaTimeLimit"` // minutes per day
	ContentBlocking      bool `json:"contentBlocking"`
	StrictMode           bool `json:"strictMode"`
	WarningThreshold     int  `json:"warningThreshold"` // percent of limit
}

// DefaultPreferences returns the settings assigned at registration.
func DefaultPreferences() Preferences {
	return Preferences{
		Theme:    ThemeLight,
		Language: LanguageEN,
		Currency: "KES",
	}
}

// DefaultNotificationSettings enables everything except nothing: the
// product opts users in and lets them switch channels off.
func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{
		Enabled:            true,
		MotivationalQuotes: true,
		SpendingAlerts:     true,
		TimeWarnings:       true,
		GoalReminders:      true,
	}
}

// DefaultBehaviorSettings returns the registration-time usage limits.
func DefaultBehaviorSettings() BehaviorSettings {
	return BehaviorSettings{
		SocialMediaTimeLimit: 30,
		WarningThreshold:     75,
	}
}

// Validate checks the registration-time required fields.
func (u User) Validate() error {
	if strings.TrimSpace(u.Username) == "" {
		return Validationf("username", "must not be empty")
	}
	if strings.TrimSpace(u.Email) == "" || !strings.Contains(u.Email, "@") {
		return Validationf("email", "must be a valid email address")
	}
	if strings.TrimSpace(u.FirstName) == "" {
		return Validationf("firstName", "must not be empty")
	}
	return nil
}

// ParseTheme validates a theme name.
func ParseTheme(s string) (Theme, error) {
	switch Theme(s) {
	case ThemeLight, ThemeDark, ThemeAuto:
		return Theme(s), nil
	}
	return "", Validationf("theme", "unknown theme %q", s)
}

// ParseLanguage validates a language code.
func ParseLanguage(s string) (Language, error) {
	switch Language(s) {
	case LanguageEN, LanguageSW:
		return Language(s), nil
	}
	return "", Validationf("language", "unknown language %q", s)
}
