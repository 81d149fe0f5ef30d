package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"famiglia/internal/actions"
)

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	in := actions.CreateCategoryInput{
		FamilyUUID: r.PostFormValue("familyUuid"),
		Name:       r.PostFormValue("name"),
		Icon:       r.PostFormValue("icon"),
	}
	writeResult(w, r, s.svc.CreateCategory(r.Context(), in))
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var in actions.UpdateCategoryInput
	if err := decodeJSON(r, &in); err != nil {
		http.Error(w, "bad request body", http.StatusBadRequest)
		return
	}
	writeResult(w, r, s.svc.UpdateCategory(r.Context(), chi.URLParam(r, "uuid"), in))
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	writeResult(w, r, s.svc.DeleteCategory(r.Context(), chi.URLParam(r, "uuid")))
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	res := s.svc.ListCategories(r.Context(), r.URL.Query().Get("familyUuid"))
	if redirectOnFailure(w, r, res) {
		return
	}
	writeResult(w, r, res)
}
