package api

import (
	"context"
	"net/http"
	"time"

	"github.com/homeplanner/homeplanner/internal/aggregator"
	"github.com/homeplanner/homeplanner/internal/audit"
	"github.com/homeplanner/homeplanner/internal/auth"
	"github.com/homeplanner/homeplanner/internal/report"
)

// SourceFunc returns a data source authenticated with token.
type SourceFunc func(token string) aggregator.Source

// Pinger is checked by the health endpoint. *db.DB satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures a Server.
type Options struct {
	Auth     *auth.Auth
	Audit    *audit.Logger
	Source   SourceFunc
	Reporter report.Reporter

	// ServiceToken, when set, is used for data API reads instead of the
	// caller's session token.
	ServiceToken string
	Location     *time.Location
	CORSOrigins  []string
	DB           Pinger // optional
}

// Server holds all dependencies for the HTTP API.
type Server struct {
	auth         *auth.Auth
	audit        *audit.Logger
	source       SourceFunc
	reporter     report.Reporter
	serviceToken string
	loc          *time.Location
	origins      []string
	db           Pinger
	now          func() time.Time
	loginLimit   *rateLimiter
	mux          *http.ServeMux
}

// NewServer creates a new API server with all routes configured.
func NewServer(opts Options) *Server {
	s := &Server{
		auth:         opts.Auth,
		audit:        opts.Audit,
		source:       opts.Source,
		reporter:     opts.Reporter,
		serviceToken: opts.ServiceToken,
		loc:          opts.Location,
		origins:      opts.CORSOrigins,
		db:           opts.DB,
		now:          time.Now,
		loginLimit:   newRateLimiter(0.2, 5),
		mux:          http.NewServeMux(),
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.reporter == nil {
		s.reporter = report.Log{}
	}

	s.setupRoutes()
	return s
}

// Handler returns the HTTP handler with middleware applied.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.mux
	h = s.loggingMiddleware(h)
	h = corsMiddleware(s.origins)(h)
	h = securityHeadersMiddleware(h)
	h = requestIDMiddleware(h)
	return h
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check
	s.mux.HandleFunc("GET /health", s.handleHealth)

	// Auth endpoints (no auth required)
	s.mux.Handle("POST /api/v1/auth/login", rateLimitMiddleware(s.loginLimit)(http.HandlerFunc(s.handleLogin)))
	s.mux.HandleFunc("POST /api/v1/auth/logout", s.handleLogout)

	// Auth-required endpoints
	s.mux.Handle("GET /api/v1/auth/session", s.authMiddleware(http.HandlerFunc(s.handleSession)))
	s.mux.Handle("GET /api/v1/dashboard", s.authMiddleware(http.HandlerFunc(s.handleDashboard)))

	// Admin
	s.mux.Handle("GET /api/v1/admin/login-attempts", s.authMiddleware(s.adminOnly(http.HandlerFunc(s.handleListLoginAttempts))))
	s.mux.Handle("GET /api/v1/admin/access-codes", s.authMiddleware(s.adminOnly(http.HandlerFunc(s.handleListAccessCodes))))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			s.reporter.Report(r.Context(), "database", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "database": "unreachable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
