package core

import (
	"strings"
	"time"
)

const (
	SavingsEmergency  SavingsCategory = "EMERGENCY"
	SavingsInvestment SavingsCategory = "INVESTMENT"
	SavingsPurchase   SavingsCategory = "PURCHASE"
	SavingsEducation  SavingsCategory = "EDUCATION"
	SavingsOther      SavingsCategory = "OTHER"
)

// SavingsCategory classifies what a savings goal is for.
type SavingsCategory string

// ParseSavingsCategory validates a savings goal category name.
func ParseSavingsCategory(s string) (SavingsCategory, error) {
	switch SavingsCategory(s) {
	case SavingsEmergency, SavingsInvestment, SavingsPurchase, SavingsEducation, SavingsOther:
		return SavingsCategory(s), nil
	}
	return "", Validationf("category", "unknown savings category %q", s)
}

// SavingsGoal is a money-backed goal with an optional time lock.
//
// Completed is a cached derivation of CurrentAmount >= TargetAmount;
// every amount mutation must keep the two in agreement, in both
// directions.
type SavingsGoal struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"userId"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Category    SavingsCategory `json:"category"`
	Priority    int             `json:"priority"`

	TargetAmount  Money `json:"targetAmount"`
	CurrentAmount Money `json:"currentAmount"`

	TargetDate *time.Time `json:"targetDate,omitempty"`

	TimeLocked      bool       `json:"isTimeLocked"`
	TimeLockedUntil *time.Time `json:"timeLockedUntil,omitempty"`

	Completed   bool       `json:"isCompleted"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Validate checks creation-time constraints.
func (g SavingsGoal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return Validationf("name", "must not be empty")
	}
	if len(g.Description) > 500 {
		return Validationf("description", "too long (max 500 characters)")
	}
	if g.TargetAmount.Cents <= 0 {
		return Validationf("targetAmount", "must be positive")
	}
	if g.CurrentAmount.Cents < 0 {
		return Validationf("currentAmount", "must not be negative")
	}
	if _, err := ParseSavingsCategory(string(g.Category)); err != nil {
		return err
	}
	return nil
}

// LockedAt reports whether the time lock is in effect at now. A set
// flag with no unlock timestamp does not lock anything.
func (g SavingsGoal) LockedAt(now time.Time) bool {
	return g.TimeLocked && g.TimeLockedUntil != nil && now.Before(*g.TimeLockedUntil)
}

// RemainingAmount returns how much is still missing, never negative.
func (g SavingsGoal) RemainingAmount() Money {
	if g.CurrentAmount.Cents >= g.TargetAmount.Cents {
		return Money{}
	}
	return g.TargetAmount.Sub(g.CurrentAmount)
}

// ProgressPercent returns saved/target as a whole percentage capped at
// 100. A zero target reports zero rather than dividing.
func (g SavingsGoal) ProgressPercent() int {
	if g.TargetAmount.Cents <= 0 {
		return 0
	}
	p := g.CurrentAmount.Cents * 100 / g.TargetAmount.Cents
	if p > 100 {
		return 100
	}
	return int(p)
}

// SavingsSummary aggregates a user's savings goals. TotalTarget
// excludes completed goals: it is the amount still being saved toward.
type SavingsSummary struct {
	TotalSaved     Money `json:"totalSaved"`
	TotalTarget    Money `json:"totalTarget"`
	ActiveCount    int64 `json:"activeGoals"`
	CompletedCount int64 `json:"completedGoals"`
}
