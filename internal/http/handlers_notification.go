package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	page, size := pageParams(r)
	res := s.svc.Notifications(r.Context(), page, size)
	if redirectOnFailure(w, r, res) {
		return
	}
	writeResult(w, r, res)
}

func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	writeResult(w, r, s.svc.MarkNotificationRead(r.Context(), chi.URLParam(r, "uuid")))
}
