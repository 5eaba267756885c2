package http

import (
	"net/http"

	"resourceguardian/internal/core"
	"resourceguardian/internal/services"
)

func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	u, err := s.users.Get(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var p services.ProfileUpdate
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, r, err)
		return
	}

	u, err := s.users.UpdateProfile(r.Context(), userID(r), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleDeleteMe(w http.ResponseWriter, r *http.Request) {
	if err := s.users.Delete(r.Context(), userID(r)); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleUpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var p core.Preferences
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, r, err)
		return
	}

	u, err := s.users.UpdatePreferences(r.Context(), userID(r), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleUpdateNotifications(w http.ResponseWriter, r *http.Request) {
	var n core.NotificationSettings
	if err := decodeJSON(r, &n); err != nil {
		writeError(w, r, err)
		return
	}

	u, err := s.users.UpdateNotifications(r.Context(), userID(r), n)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	u, err := s.users.VerifyEmail(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleVerifyPhone(w http.ResponseWriter, r *http.Request) {
	u, err := s.users.VerifyPhone(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleActiveUserCount(w http.ResponseWriter, r *http.Request) {
	n, err := s.users.ActiveUserCount(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"activeUsers": n})
}

func (s *Server) handleUpdateBehavior(w http.ResponseWriter, r *http.Request) {
	var b core.BehaviorSettings
	if err := decodeJSON(r, &b); err != nil {
		writeError(w, r, err)
		return
	}

	u, err := s.users.UpdateBehavior(r.Context(), userID(r), b)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
