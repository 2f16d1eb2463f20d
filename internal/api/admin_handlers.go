package api

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/homeplanner/homeplanner/internal/auth"
	"github.com/homeplanner/homeplanner/internal/db"
)

func (s *Server) handleListLoginAttempts(w http.ResponseWriter, r *http.Request) {
	if s.audit == nil {
		writeJSON(w, http.StatusOK, []db.LoginAttempt{})
		return
	}

	limit := db.DefaultAttemptLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}

	attempts, err := s.audit.List(r.Context(), limit)
	if err != nil {
		s.reporter.Report(r.Context(), "audit", err)
		writeError(w, http.StatusInternalServerError, "failed to list login attempts")
		return
	}

	if attempts == nil {
		attempts = []db.LoginAttempt{}
	}

	writeJSON(w, http.StatusOK, attempts)
}

func (s *Server) handleListAccessCodes(w http.ResponseWriter, r *http.Request) {
	codes := s.auth.Codes()
	sort.SliceStable(codes, func(i, j int) bool { return codes[i].Label < codes[j].Label })
	if codes == nil {
		codes = []auth.AccessCode{}
	}
	writeJSON(w, http.StatusOK, codes)
}
