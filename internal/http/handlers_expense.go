package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"famiglia/internal/actions"
)

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	in := actions.CreateExpenseInput{
		FamilyUUID:   r.PostFormValue("familyUuid"),
		Description:  r.PostFormValue("description"),
		Amount:       r.PostFormValue("amount"),
		AmountCents:  formAmountCents(r.PostFormValue("amount")),
		CategoryUUID: r.PostFormValue("categoryUuid"),
		SpentAt:      formDate(r.PostFormValue("spentAt")),
	}
	writeResult(w, r, s.svc.CreateExpense(r.Context(), in))
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	var in actions.UpdateExpenseInput
	if err := decodeJSON(r, &in); err != nil {
		http.Error(w, "bad request body", http.StatusBadRequest)
		return
	}
	writeResult(w, r, s.svc.UpdateExpense(r.Context(), chi.URLParam(r, "uuid"), in))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	writeResult(w, r, s.svc.DeleteExpense(r.Context(), chi.URLParam(r, "uuid")))
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	page, size := pageParams(r)
	res := s.svc.ListExpenses(r.Context(), r.URL.Query().Get("familyUuid"), page, size)
	if redirectOnFailure(w, r, res) {
		return
	}
	writeResult(w, r, res)
}
