package services

import (
	"context"
	"fmt"
	"time"

	"resourceguardian/internal/core"
	"resourceguardian/internal/storage"
)

// GoalTracker manages progress-tracked goals. The stored Progress and
// Completed fields are kept in agreement with the value pair after
// every mutation, and completion toggles symmetrically: progress can
// complete a goal and regressing can reopen it.
type GoalTracker struct {
	storage *storage.Repository
	now     func() time.Time
}

func NewGoalTracker(storage *storage.Repository) *GoalTracker {
	return &GoalTracker{
		storage: storage,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *GoalTracker) Create(ctx context.Context, g *core.Goal) (*core.Goal, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	g.Active = true
	s.reconcile(g)

	created, err := s.storage.CreateGoal(ctx, g)
	if err != nil {
		return nil, fmt.Errorf("create goal: %w", err)
	}
	return created, nil
}

func (s *GoalTracker) Get(ctx context.Context, id, userID int64) (*core.Goal, error) {
	return s.storage.GetGoal(ctx, id, userID)
}

func (s *GoalTracker) List(ctx context.Context, userID int64, f storage.GoalFilter) ([]core.Goal, error) {
	return s.storage.ListGoals(ctx, userID, f)
}

func (s *GoalTracker) Summary(ctx context.Context, userID int64) (core.GoalSummary, error) {
	return s.storage.GoalSummary(ctx, userID)
}

// Update changes the descriptive fields and the target value. The
// progress pair is reconciled afterwards so a lowered target can
// complete the goal and a raised one can reopen it.
func (s *GoalTracker) Update(ctx context.Context, userID int64, in *core.Goal) (*core.Goal, error) {
	return s.storage.MutateGoal(ctx, in.ID, userID, func(g *core.Goal) error {
		g.Title = in.Title
		g.Description = in.Description
		g.Type = in.Type
		g.Category = in.Category
		g.Priority = in.Priority
		g.Unit = in.Unit
		g.TargetValue = in.TargetValue
		g.TargetDate = in.TargetDate
		if err := g.Validate(); err != nil {
			return err
		}
		s.reconcile(g)
		return nil
	})
}

// UpdateProgress sets the goal's current value. Negative values are
// rejected outright rather than clamped.
func (s *GoalTracker) UpdateProgress(ctx context.Context, id, userID int64, value float64) (*core.Goal, error) {
	if value < 0 {
		return nil, core.Validationf("currentValue", "must not be negative")
	}

	return s.storage.MutateGoal(ctx, id, userID, func(g *core.Goal) error {
		g.CurrentValue = value
		s.reconcile(g)
		return nil
	})
}

// Complete forces the goal to its completed state regardless of the
// tracked value. Progress reads 100 afterwards.
func (s *GoalTracker) Complete(ctx context.Context, id, userID int64) (*core.Goal, error) {
	return s.storage.MutateGoal(ctx, id, userID, func(g *core.Goal) error {
		now := s.now()
		g.Completed = true
		g.CompletedAt = &now
		g.Progress = 100
		return nil
	})
}

// Reopen clears the completion state. The tracked value and stored
// progress stay where they were.
func (s *GoalTracker) Reopen(ctx context.Context, id, userID int64) (*core.Goal, error) {
	return s.storage.MutateGoal(ctx, id, userID, func(g *core.Goal) error {
		g.Completed = false
		g.CompletedAt = nil
		return nil
	})
}

// IncrementStreak bumps the goal's streak counter by one.
func (s *GoalTracker) IncrementStreak(ctx context.Context, id, userID int64) (*core.Goal, error) {
	return s.storage.MutateGoal(ctx, id, userID, func(g *core.Goal) error {
		g.StreakCount++
		return nil
	})
}

func (s *GoalTracker) Delete(ctx context.Context, id, userID int64) error {
	return s.storage.DeleteGoal(ctx, id, userID)
}

// reconcile recomputes the stored progress percentage and completion
// flag from the value pair.
func (s *GoalTracker) reconcile(g *core.Goal) {
	g.Progress = int(g.ProgressPercentage())

	if g.TargetValue > 0 && g.DerivedCompleted() {
		if !g.Completed {
			now := s.now()
			g.Completed = true
			g.CompletedAt = &now
		}
		return
	}
	g.Completed = false
	g.CompletedAt = nil
}
