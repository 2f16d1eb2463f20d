package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/homeplanner/homeplanner/internal/audit"
	"github.com/homeplanner/homeplanner/internal/auth"
)

// loginRequest represents the login payload. The access code travels as
// "password" to match the web client's form.
type loginRequest struct {
	Password string `json:"password"`
}

// tokenResponse represents a successful login.
type tokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	Label       string    `json:"label"`
	Role        auth.Role `json:"role"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// sessionResponse describes the caller's current session.
type sessionResponse struct {
	Label         string    `json:"label"`
	Role          auth.Role `json:"role"`
	ExpiresAt     time.Time `json:"expires_at"`
	Authenticated bool      `json:"authenticated"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// The audit write must outlive a client that hangs up mid-check.
	auditCtx := context.WithoutCancel(r.Context())

	// An empty code goes through MatchCode too so the attempt is audited.
	code, err := s.auth.MatchCode(req.Password)
	if err != nil {
		if s.audit != nil {
			s.audit.Record(auditCtx, audit.Attempt{Submitted: req.Password, ClientIP: clientIP(r)})
		}
		if errors.Is(err, auth.ErrInvalidCode) {
			writeError(w, http.StatusUnauthorized, "invalid access code")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to verify access code")
		return
	}

	token, expires, err := s.auth.GenerateJWT(code.Label, code.Role)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	if s.audit != nil {
		s.audit.Record(auditCtx, audit.Attempt{Submitted: req.Password, Code: &code, ClientIP: clientIP(r)})
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		Label:       code.Label,
		Role:        code.Role,
		ExpiresAt:   expires.UTC(),
	})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	resp := sessionResponse{
		Label:         claims.Label,
		Role:          claims.Role,
		Authenticated: true,
	}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.UTC()
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleLogout is stateless: tokens are dropped client-side and expire on
// their own.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}
