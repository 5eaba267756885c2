package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"resourceguardian/internal/core"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError maps domain errors onto HTTP statuses. Unknown errors are
// logged and surface as an opaque 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Reason, Field: verr.Field})
	case errors.Is(err, core.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, core.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid credentials"})
	case errors.Is(err, core.ErrDuplicate):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "already exists"})
	case errors.Is(err, core.ErrGoalLocked):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "goal is time-locked"})
	case errors.Is(err, core.ErrStillLocked):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "time lock has not expired"})
	case errors.Is(err, core.ErrNotLocked):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "goal is not locked"})
	case errors.Is(err, core.ErrInsufficientFunds):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "insufficient funds"})
	case errors.Is(err, core.ErrInvalidAmount):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "amount must be positive"})
	default:
		slog.ErrorContext(r.Context(), "Unhandled error", "error", err, "path", r.URL.Path)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
