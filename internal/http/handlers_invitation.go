package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleCreateInvitation(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	writeResult(w, r, s.svc.CreateInvitation(r.Context(), r.PostFormValue("familyUuid")))
}

// handleResolveInvitation serves the public invitation landing page data; no
// session is required to look at an invitation.
func (s *Server) handleResolveInvitation(w http.ResponseWriter, r *http.Request) {
	writeResult(w, r, s.svc.ResolveInvitation(r.Context(), r.URL.Query().Get("token")))
}

func (s *Server) handleAcceptInvitation(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	res := s.svc.AcceptInvitation(r.Context(), r.PostFormValue("token"))
	if redirectOnFailure(w, r, res) {
		return
	}
	writeResult(w, r, res)
}

func (s *Server) handleCancelInvitation(w http.ResponseWriter, r *http.Request) {
	writeResult(w, r, s.svc.CancelInvitation(r.Context(), chi.URLParam(r, "uuid")))
}
