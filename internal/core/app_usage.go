package core

import (
	"strings"
	"time"
)

const (
	AppSocialMedia   AppCategory = "SOCIAL_MEDIA"
	AppProductive    AppCategory = "PRODUCTIVE"
	AppEntertainment AppCategory = "ENTERTAINMENT"
	AppEducation     AppCategory = "EDUCATION"
	AppOther         AppCategory = "OTHER"
)

// AppCategory classifies a tracked application.
type AppCategory string

// ParseAppCategory validates an app category name.
func ParseAppCategory(s string) (AppCategory, error) {
	switch AppCategory(s) {
	case AppSocialMedia, AppProductive, AppEntertainment, AppEducation, AppOther:
		return AppCategory(s), nil
	}
	return "", Validationf("category", "unknown app category %q", s)
}

// AppUsage records one slice of app time for a user. Independent of
// the financial entities; never cross-referenced.
type AppUsage struct {
	ID           int64       `json:"id"`
	UserID       int64       `json:"userId"`
	AppName      string      `json:"appName"`
	PackageName  string      `json:"packageName,omitempty"`
	Minutes      int         `json:"duration"`
	Category     AppCategory `json:"category"`
	UsageDate    time.Time   `json:"usageDate"`
	Blocked      bool        `json:"blocked"`
	WarningShown bool        `json:"warningShown"`
	CreatedAt    time.Time   `json:"createdAt"`
}

// Validate checks creation-time constraints.
func (u AppUsage) Validate() error {
	if strings.TrimSpace(u.AppName) == "" {
		return Validationf("appName", "must not be empty")
	}
	if u.Minutes <= 0 {
		return Validationf("duration", "must be positive minutes")
	}
	if _, err := ParseAppCategory(string(u.Category)); err != nil {
		return err
	}
	return nil
}

// UsageSummary totals minutes per category over a date range.
type UsageSummary struct {
	From         time.Time           `json:"from"`
	To           time.Time           `json:"to"`
	TotalMinutes int                 `json:"totalMinutes"`
	ByCategory   map[AppCategory]int `json:"minutesByCategory"`
}
