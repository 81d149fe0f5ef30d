package http

import (
	"net/http"
	"strconv"
	"time"
)

// handleDashboard returns the month's aggregated numbers. year and month
// default to the current month.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	year, month := now.Year(), int(now.Month())
	if raw := r.URL.Query().Get("year"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			year = n
		}
	}
	if raw := r.URL.Query().Get("month"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			month = n
		}
	}

	res := s.svc.DashboardStats(r.Context(), r.URL.Query().Get("familyUuid"), year, month)
	if redirectOnFailure(w, r, res) {
		return
	}
	writeResult(w, r, res)
}
