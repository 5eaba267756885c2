package http

import (
	"net/http"
	"time"

	"resourceguardian/internal/core"
	"resourceguardian/internal/storage"
)

type savingsGoalRequest struct {
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	Category      string     `json:"category"`
	Priority      int        `json:"priority"`
	TargetAmount  core.Money `json:"targetAmount"`
	CurrentAmount core.Money `json:"currentAmount"`
	TargetDate    *time.Time `json:"targetDate"`
}

func (s *Server) handleCreateSavingsGoal(w http.ResponseWriter, r *http.Request) {
	var req savingsGoalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	g, err := s.ledger.Create(r.Context(), &core.SavingsGoal{
		UserID:        userID(r),
		Name:          req.Name,
		Description:   req.Description,
		Category:      core.SavingsCategory(req.Category),
		Priority:      req.Priority,
		TargetAmount:  req.TargetAmount,
		CurrentAmount: req.CurrentAmount,
		TargetDate:    req.TargetDate,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

func (s *Server) handleListSavingsGoals(w http.ResponseWriter, r *http.Request) {
	var filter storage.SavingsGoalFilter
	if v := r.URL.Query().Get("category"); v != "" {
		category, err := core.ParseSavingsCategory(v)
		if err != nil {
			writeError(w, r, err)
			return
		}
		filter.Category = category
	}
	if v := r.URL.Query().Get("completed"); v != "" {
		completed := v == "true"
		filter.Completed = &completed
	}

	s.writeSavingsGoals(w, r, filter)
}

func (s *Server) handleActiveSavingsGoals(w http.ResponseWriter, r *http.Request) {
	completed := false
	s.writeSavingsGoals(w, r, storage.SavingsGoalFilter{Completed: &completed})
}

func (s *Server) handleCompletedSavingsGoals(w http.ResponseWriter, r *http.Request) {
	completed := true
	s.writeSavingsGoals(w, r, storage.SavingsGoalFilter{Completed: &completed})
}

// handleTimeLockedSavingsGoals returns goals whose lock is currently in
// effect. The lock window is evaluated here rather than in SQL so
// expired locks never show up.
func (s *Server) handleTimeLockedSavingsGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.ledger.List(r.Context(), userID(r), storage.SavingsGoalFilter{})
	if err != nil {
		writeError(w, r, err)
		return
	}

	now := time.Now().UTC()
	locked := []core.SavingsGoal{}
	for _, g := range goals {
		if g.LockedAt(now) {
			locked = append(locked, g)
		}
	}
	writeJSON(w, http.StatusOK, locked)
}

func (s *Server) writeSavingsGoals(w http.ResponseWriter, r *http.Request, filter storage.SavingsGoalFilter) {
	goals, err := s.ledger.List(r.Context(), userID(r), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if goals == nil {
		goals = []core.SavingsGoal{}
	}
	writeJSON(w, http.StatusOK, goals)
}

func (s *Server) handleGetSavingsGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	g, err := s.ledger.Get(r.Context(), id, userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleUpdateSavingsGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req savingsGoalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	g, err := s.ledger.Update(r.Context(), userID(r), &core.SavingsGoal{
		ID:           id,
		Name:         req.Name,
		Description:  req.Description,
		Category:     core.SavingsCategory(req.Category),
		Priority:     req.Priority,
		TargetAmount: req.TargetAmount,
		TargetDate:   req.TargetDate,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleDeleteSavingsGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.ledger.Delete(r.Context(), id, userID(r)); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type amountRequest struct {
	Amount core.Money `json:"amount"`
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req amountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	g, err := s.ledger.Deposit(r.Context(), id, userID(r), req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req amountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	g, err := s.ledger.Withdraw(r.Context(), id, userID(r), req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

type lockRequest struct {
	LockedUntil time.Time `json:"lockedUntil"`
}

func (s *Server) handleLock(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req lockRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	g, err := s.ledger.Lock(r.Context(), id, userID(r), req.LockedUntil)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleUnlock(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	g, err := s.ledger.Unlock(r.Context(), id, userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleSavingsSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.ledger.Summary(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
