package http

import (
	"net/http"
	"strconv"
	"time"

	"resourceguardian/internal/core"
	"resourceguardian/internal/storage"
)

type goalRequest struct {
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Type         string     `json:"type"`
	Category     string     `json:"category"`
	Priority     int        `json:"priority"`
	Unit         string     `json:"unit"`
	TargetValue  float64    `json:"targetValue"`
	CurrentValue float64    `json:"currentValue"`
	TargetDate   *time.Time `json:"targetDate"`
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	g, err := s.goals.Create(r.Context(), &core.Goal{
		UserID:       userID(r),
		Title:        req.Title,
		Description:  req.Description,
		Type:         core.GoalType(req.Type),
		Category:     req.Category,
		Priority:     req.Priority,
		Unit:         req.Unit,
		TargetValue:  req.TargetValue,
		CurrentValue: req.CurrentValue,
		TargetDate:   req.TargetDate,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	var filter storage.GoalFilter
	if v := r.URL.Query().Get("type"); v != "" {
		goalType, err := core.ParseGoalType(v)
		if err != nil {
			writeError(w, r, err)
			return
		}
		filter.Type = goalType
	}
	filter.Category = r.URL.Query().Get("category")
	if v := r.URL.Query().Get("completed"); v != "" {
		completed := v == "true"
		filter.Completed = &completed
	}
	if v := r.URL.Query().Get("active"); v != "" {
		active := v == "true"
		filter.Active = &active
	}
	if v := r.URL.Query().Get("minProgress"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p < 0 || p > 100 {
			writeError(w, r, core.Validationf("minProgress", "must be an integer between 0 and 100"))
			return
		}
		filter.MinProgress = &p
	}
	from, err := queryDate(r, "from")
	if err != nil {
		writeError(w, r, err)
		return
	}
	filter.From = from
	to, err := queryDate(r, "to")
	if err != nil {
		writeError(w, r, err)
		return
	}
	filter.To = to
	filter.Overdue = r.URL.Query().Get("overdue") == "true"
	if v := r.URL.Query().Get("dueInDays"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil || days <= 0 {
			writeError(w, r, core.Validationf("dueInDays", "must be a positive integer"))
			return
		}
		filter.DueWithinDays = days
	}

	goals, err := s.goals.List(r.Context(), userID(r), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if goals == nil {
		goals = []core.Goal{}
	}
	writeJSON(w, http.StatusOK, goals)
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	g, err := s.goals.Get(r.Context(), id, userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req goalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	g, err := s.goals.Update(r.Context(), userID(r), &core.Goal{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		Type:        core.GoalType(req.Type),
		Category:    req.Category,
		Priority:    req.Priority,
		Unit:        req.Unit,
		TargetValue: req.TargetValue,
		TargetDate:  req.TargetDate,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.goals.Delete(r.Context(), id, userID(r)); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type progressRequest struct {
	CurrentValue float64 `json:"currentValue"`
}

func (s *Server) handleUpdateProgress(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req progressRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	g, err := s.goals.UpdateProgress(r.Context(), id, userID(r), req.CurrentValue)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleCompleteGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	g, err := s.goals.Complete(r.Context(), id, userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleReopenGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	g, err := s.goals.Reopen(r.Context(), id, userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleIncrementStreak(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	g, err := s.goals.IncrementStreak(r.Context(), id, userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleGoalSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.goals.Summary(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
