package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"famiglia/internal/actions"
)

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	in := actions.CreateIncomeInput{
		FamilyUUID:  r.PostFormValue("familyUuid"),
		Description: r.PostFormValue("description"),
		Amount:      r.PostFormValue("amount"),
		AmountCents: formAmountCents(r.PostFormValue("amount")),
		ReceivedAt:  formDate(r.PostFormValue("receivedAt")),
	}
	writeResult(w, r, s.svc.CreateIncome(r.Context(), in))
}

func (s *Server) handleUpdateIncome(w http.ResponseWriter, r *http.Request) {
	var in actions.UpdateIncomeInput
	if err := decodeJSON(r, &in); err != nil {
		http.Error(w, "bad request body", http.StatusBadRequest)
		return
	}
	writeResult(w, r, s.svc.UpdateIncome(r.Context(), chi.URLParam(r, "uuid"), in))
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	writeResult(w, r, s.svc.DeleteIncome(r.Context(), chi.URLParam(r, "uuid")))
}

func (s *Server) handleListIncomes(w http.ResponseWriter, r *http.Request) {
	page, size := pageParams(r)
	res := s.svc.ListIncomes(r.Context(), r.URL.Query().Get("familyUuid"), page, size)
	if redirectOnFailure(w, r, res) {
		return
	}
	writeResult(w, r, res)
}
