package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"resourceguardian/internal/amqp"
	"resourceguardian/internal/core"
	"resourceguardian/internal/storage"
)

// SavingsLedger owns the money side of savings goals: deposits,
// withdrawals, time locks, and the completion flag all flow through
// here. Amount changes happen inside a storage transaction so
// concurrent requests cannot interleave a read-modify-write.
type SavingsLedger struct {
	storage    *storage.Repository
	amqpClient *amqp.Client
	now        func() time.Time
}

func NewSavingsLedger(storage *storage.Repository, amqpClient *amqp.Client) *SavingsLedger {
	return &SavingsLedger{
		storage:    storage,
		amqpClient: amqpClient,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Create stores a new savings goal. The completion flag is derived
// from the starting amount so a goal created at or past its target is
// born completed.
func (s *SavingsLedger) Create(ctx context.Context, g *core.SavingsGoal) (*core.SavingsGoal, error) {
	if g.Category == "" {
		g.Category = core.SavingsOther
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}

	if g.CurrentAmount.Cents >= g.TargetAmount.Cents {
		now := s.now()
		g.Completed = true
		g.CompletedAt = &now
	}

	created, err := s.storage.CreateSavingsGoal(ctx, g)
	if err != nil {
		return nil, fmt.Errorf("create savings goal: %w", err)
	}
	return created, nil
}

func (s *SavingsLedger) Get(ctx context.Context, id, userID int64) (*core.SavingsGoal, error) {
	return s.storage.GetSavingsGoal(ctx, id, userID)
}

func (s *SavingsLedger) List(ctx context.Context, userID int64, f storage.SavingsGoalFilter) ([]core.SavingsGoal, error) {
	return s.storage.ListSavingsGoals(ctx, userID, f)
}

func (s *SavingsLedger) Summary(ctx context.Context, userID int64) (core.SavingsSummary, error) {
	return s.storage.SavingsSummary(ctx, userID)
}

// Update changes the descriptive fields and the target. Amounts and
// locks are untouchable here; use Deposit, Withdraw, Lock, Unlock.
// Changing the target re-derives completion in both directions.
func (s *SavingsLedger) Update(ctx context.Context, userID int64, in *core.SavingsGoal) (*core.SavingsGoal, error) {
	return s.storage.MutateSavingsGoal(ctx, in.ID, userID, func(g *core.SavingsGoal) error {
		g.Name = in.Name
		g.Description = in.Description
		g.Category = in.Category
		g.Priority = in.Priority
		g.TargetDate = in.TargetDate
		if in.TargetAmount.Cents > 0 {
			g.TargetAmount = in.TargetAmount
		}
		if err := g.Validate(); err != nil {
			return err
		}
		s.reconcileCompletion(g)
		return nil
	})
}

// Deposit adds amount to the goal. A time-locked goal rejects the
// deposit; crossing the target marks the goal completed and announces
// it on the queue.
func (s *SavingsLedger) Deposit(ctx context.Context, id, userID int64, amount core.Money) (*core.SavingsGoal, error) {
	if err := amount.Validate(); err != nil {
		return nil, core.ErrInvalidAmount
	}

	var becameCompleted bool
	goal, err := s.storage.MutateSavingsGoal(ctx, id, userID, func(g *core.SavingsGoal) error {
		if g.LockedAt(s.now()) {
			return core.ErrGoalLocked
		}
		wasCompleted := g.Completed
		g.CurrentAmount = g.CurrentAmount.Add(amount)
		s.reconcileCompletion(g)
		becameCompleted = g.Completed && !wasCompleted
		return nil
	})
	if err != nil {
		return nil, err
	}

	if becameCompleted {
		s.announceCompletion(ctx, goal)
	}
	return goal, nil
}

// Withdraw removes amount from the goal. Rejected when the goal is
// time-locked or the balance is too small; the stored state is
// untouched on rejection. Dropping below the target clears the
// completion flag.
func (s *SavingsLedger) Withdraw(ctx context.Context, id, userID int64, amount core.Money) (*core.SavingsGoal, error) {
	if err := amount.Validate(); err != nil {
		return nil, core.ErrInvalidAmount
	}

	return s.storage.MutateSavingsGoal(ctx, id, userID, func(g *core.SavingsGoal) error {
		if g.LockedAt(s.now()) {
			return core.ErrGoalLocked
		}
		if amount.Cents > g.CurrentAmount.Cents {
			return core.ErrInsufficientFunds
		}
		g.CurrentAmount = g.CurrentAmount.Sub(amount)
		s.reconcileCompletion(g)
		return nil
	})
}

// Lock sets a time lock until the given instant. The instant must be
// in the future.
func (s *SavingsLedger) Lock(ctx context.Context, id, userID int64, until time.Time) (*core.SavingsGoal, error) {
	if !until.After(s.now()) {
		return nil, core.Validationf("lockedUntil", "must be in the future")
	}

	return s.storage.MutateSavingsGoal(ctx, id, userID, func(g *core.SavingsGoal) error {
		g.TimeLocked = true
		g.TimeLockedUntil = &until
		return nil
	})
}

// Unlock clears an expired time lock. Unlocking a goal that is not
// locked fails, as does unlocking before the lock expires.
func (s *SavingsLedger) Unlock(ctx context.Context, id, userID int64) (*core.SavingsGoal, error) {
	return s.storage.MutateSavingsGoal(ctx, id, userID, func(g *core.SavingsGoal) error {
		if !g.TimeLocked {
			return core.ErrNotLocked
		}
		if g.LockedAt(s.now()) {
			return core.ErrStillLocked
		}
		g.TimeLocked = false
		g.TimeLockedUntil = nil
		return nil
	})
}

// Delete removes the goal. A time-locked goal cannot be deleted.
func (s *SavingsLedger) Delete(ctx context.Context, id, userID int64) error {
	g, err := s.storage.GetSavingsGoal(ctx, id, userID)
	if err != nil {
		return err
	}
	if g.LockedAt(s.now()) {
		return core.ErrGoalLocked
	}
	return s.storage.DeleteSavingsGoal(ctx, id, userID)
}

// reconcileCompletion keeps the cached flag in agreement with the
// amounts, in both directions.
func (s *SavingsLedger) reconcileCompletion(g *core.SavingsGoal) {
	if g.CurrentAmount.Cents >= g.TargetAmount.Cents {
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

func (s *SavingsLedger) announceCompletion(ctx context.Context, g *core.SavingsGoal) {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping goal completed message")
		return
	}

	if err := s.amqpClient.PublishGoalCompleted(ctx, amqp.NewGoalCompletedMessage(g)); err != nil {
		// Don't fail the deposit - the goal state is already saved
		slog.ErrorContext(ctx, "Failed to publish goal completed message",
			"goal_id", g.ID, "error", err)
	}
}
