package http

import (
	"net/http"
)

func (s *Server) handleCreateFamily(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	writeResult(w, r, s.svc.CreateFamily(r.Context(), r.PostFormValue("name")))
}

func (s *Server) handleMyFamilies(w http.ResponseWriter, r *http.Request) {
	res := s.svc.MyFamilies(r.Context())
	if redirectOnFailure(w, r, res) {
		return
	}
	writeResult(w, r, res)
}

func (s *Server) handleSelectFamily(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	writeResult(w, r, s.svc.SelectFamily(r.Context(), r.PostFormValue("familyUuid")))
}

func (s *Server) handleFamilyMembers(w http.ResponseWriter, r *http.Request) {
	res := s.svc.FamilyMembers(r.Context(), r.URL.Query().Get("familyUuid"))
	if redirectOnFailure(w, r, res) {
		return
	}
	writeResult(w, r, res)
}
