package http

import (
	"context"
	"net/http"
	"strings"

	"resourceguardian/internal/auth"
	"resourceguardian/internal/core"
)

type contextKey string

const claimsKey contextKey = "claims"

// withAuth verifies the bearer token and stores its claims in the
// request context. Handlers behind it can assume a valid user ID.
func (s *Server) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, r, core.ErrInvalidCredentials)
			return
		}

		claims, err := s.tokens.Verify(token)
		if err != nil {
			writeError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next(w, r.WithContext(ctx))
	}
}

// claimsFrom returns the verified claims stored by withAuth.
func claimsFrom(r *http.Request) *auth.Claims {
	claims, _ := r.Context().Value(claimsKey).(*auth.Claims)
	return claims
}

// userID is the authenticated caller's ID. Zero outside withAuth.
func userID(r *http.Request) int64 {
	if c := claimsFrom(r); c != nil {
		return c.UserID
	}
	return 0
}
