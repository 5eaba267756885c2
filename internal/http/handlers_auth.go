package http

import (
	"net/http"

	"resourceguardian/internal/core"
	"resourceguardian/internal/services"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var reg services.Registration
	if err := decodeJSON(r, &reg); err != nil {
		writeError(w, r, err)
		return
	}

	u, err := s.users.Register(r.Context(), reg)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string     `json:"token"`
	User  *core.User `json:"user"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	u, token, err := s.users.Authenticate(r.Context(), req.Login, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token, User: u})
}

// handleVerifyToken confirms the bearer token is valid and returns the
// account it belongs to.
func (s *Server) handleVerifyToken(w http.ResponseWriter, r *http.Request) {
	u, err := s.users.Get(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.users.ChangePassword(r.Context(), userID(r), req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
