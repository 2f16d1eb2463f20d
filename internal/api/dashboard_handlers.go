package api

import (
	"net/http"

	"github.com/homeplanner/homeplanner/internal/aggregator"
	"github.com/homeplanner/homeplanner/internal/dashboard"
)

// handleDashboard computes the dashboard for the requested window. Source
// failures never fail the request; they are listed in the view's failures.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	window, err := dashboard.ParseWindow(r.URL.Query().Get("window"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	token := s.serviceToken
	if token == "" {
		token = getToken(r.Context())
	}

	view := aggregator.Build(r.Context(), s.source(token), s.reporter, window, s.now().In(s.loc))
	writeJSON(w, http.StatusOK, view)
}
