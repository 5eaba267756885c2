package core

import (
	"strings"
	"time"
)

const (
	GoalFinancial  GoalType = "FINANCIAL"
	GoalBehavioral GoalType = "BEHAVIORAL"
	GoalPersonal   GoalType = "PERSONAL"
)

// GoalType distinguishes financial from behavioral/personal goals.
type GoalType string

// ParseGoalType validates a goal type name.
func ParseGoalType(s string) (GoalType, error) {
	switch GoalType(s) {
	case GoalFinancial, GoalBehavioral, GoalPersonal:
		return GoalType(s), nil
	}
	return "", Validationf("type", "unknown goal type %q", s)
}

// Goal is a progress-tracked goal measured against a numeric target
// (pages read, workouts, shillings saved outside the ledger, ...).
//
// Progress is the stored percentage; ProgressPercentage and
// DerivedCompleted recompute the same facts from current/target. The
// stored Completed flag must agree with the 100% threshold after every
// mutation.
type Goal struct {
	ID          int64    `json:"id"`
	UserID      int64    `json:"userId"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Type        GoalType `json:"type"`
	Category    string   `json:"category,omitempty"`
	Priority    int      `json:"priority"`
	Unit        string   `json:"unit"`

	TargetValue  float64 `json:"targetValue"`
	CurrentValue float64 `json:"currentValue"`
	Progress     int     `json:"progress"`

	TargetDate  *time.Time `json:"targetDate,omitempty"`
	Completed   bool       `json:"isCompleted"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Active      bool       `json:"isActive"`
	StreakCount int        `json:"streakCount"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Validate checks creation-time constraints.
func (g Goal) Validate() error {
	if strings.TrimSpace(g.Title) == "" {
		return Validationf("title", "must not be empty")
	}
	if len(g.Description) > 500 {
		return Validationf("description", "too long (max 500 characters)")
	}
	if _, err := ParseGoalType(string(g.Type)); err != nil {
		return err
	}
	if g.TargetValue < 0 {
		return Validationf("targetValue", "must not be negative")
	}
	if g.Progress < 0 || g.Progress > 100 {
		return Validationf("progress", "must be between 0 and 100")
	}
	return nil
}

// ProgressPercentage derives the completion percentage from the value
// pair, capped at 100. A zero target reports zero.
func (g Goal) ProgressPercentage() float64 {
	if g.TargetValue == 0 {
		return 0
	}
	p := g.CurrentValue / g.TargetValue * 100
	if p > 100 {
		return 100
	}
	return p
}

// DerivedCompleted recomputes completion from the value pair. It must
// agree with the stored Completed flag after every mutation.
func (g Goal) DerivedCompleted() bool {
	return g.CurrentValue >= g.TargetValue
}

// GoalSummary aggregates a user's progress-tracked goals.
type GoalSummary struct {
	ActiveCount     int64   `json:"activeGoals"`
	CompletedCount  int64   `json:"completedGoals"`
	AverageProgress float64 `json:"averageProgress"`
}
