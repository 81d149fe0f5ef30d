package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"famiglia/internal/action"
	"famiglia/internal/storage"
)

// The legacy family routes read and write the local SQLite store instead of
// the backend API. They wear the same Result envelope so clients cannot tell
// the two paths apart.

func (s *Server) legacyIdentity(r *http.Request) (*action.Identity, bool) {
	id, _ := r.Context().Value(identityKey).(*action.Identity)
	return id, id != nil
}

func (s *Server) handleLegacyCreateFamily(w http.ResponseWriter, r *http.Request) {
	id, ok := s.legacyIdentity(r)
	if !ok {
		writeResult(w, r, action.Fail[storage.FamilyRecord](action.Unauthorized(), ""))
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	name := r.PostFormValue("name")
	if name == "" {
		writeResult(w, r, action.Fail[storage.FamilyRecord](
			action.InvalidInput("name", name, "가족 이름을 입력해주세요"), ""))
		return
	}

	rec, err := s.legacy.Create(r.Context(), name, id.ID)
	if err != nil {
		writeResult(w, r, action.Fail[storage.FamilyRecord](err, "가족을 저장하지 못했습니다"))
		return
	}
	writeResult(w, r, action.OK(rec))
}

func (s *Server) handleLegacyGetFamily(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.legacyIdentity(r); !ok {
		writeResult(w, r, action.Fail[storage.FamilyRecord](action.Unauthorized(), ""))
		return
	}
	rec, err := s.legacy.GetByUUID(r.Context(), chi.URLParam(r, "uuid"))
	if errors.Is(err, storage.ErrFamilyNotFound) {
		writeResult(w, r, action.Fail[storage.FamilyRecord](action.EntityNotFound("가족"), ""))
		return
	}
	if err != nil {
		writeResult(w, r, action.Fail[storage.FamilyRecord](err, "가족을 불러오지 못했습니다"))
		return
	}
	writeResult(w, r, action.OK(rec))
}

func (s *Server) handleLegacyListFamilies(w http.ResponseWriter, r *http.Request) {
	id, ok := s.legacyIdentity(r)
	if !ok {
		writeResult(w, r, action.Fail[[]storage.FamilyRecord](action.Unauthorized(), ""))
		return
	}
	recs, err := s.legacy.ListByOwner(r.Context(), id.ID)
	if err != nil {
		writeResult(w, r, action.Fail[[]storage.FamilyRecord](err, "가족 목록을 불러오지 못했습니다"))
		return
	}
	writeResult(w, r, action.OK(recs))
}

func (s *Server) handleLegacyRenameFamily(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.legacyIdentity(r); !ok {
		writeResult(w, r, action.Fail[struct{}](action.Unauthorized(), ""))
		return
	}
	var in struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &in); err != nil || in.Name == "" {
		writeResult(w, r, action.Fail[struct{}](
			action.InvalidInput("name", in.Name, "가족 이름을 입력해주세요"), ""))
		return
	}

	err := s.legacy.Rename(r.Context(), chi.URLParam(r, "uuid"), in.Name)
	if errors.Is(err, storage.ErrFamilyNotFound) {
		writeResult(w, r, action.Fail[struct{}](action.EntityNotFound("가족"), ""))
		return
	}
	if err != nil {
		writeResult(w, r, action.Fail[struct{}](err, "가족 이름을 바꾸지 못했습니다"))
		return
	}
	writeResult(w, r, action.OK(struct{}{}))
}

func (s *Server) handleLegacyDeleteFamily(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.legacyIdentity(r); !ok {
		writeResult(w, r, action.Fail[struct{}](action.Unauthorized(), ""))
		return
	}
	err := s.legacy.SoftDelete(r.Context(), chi.URLParam(r, "uuid"))
	if errors.Is(err, storage.ErrFamilyNotFound) {
		writeResult(w, r, action.Fail[struct{}](action.EntityNotFound("가족"), ""))
		return
	}
	if err != nil {
		writeResult(w, r, action.Fail[struct{}](err, "가족을 삭제하지 못했습니다"))
		return
	}
	writeResult(w, r, action.OK(struct{}{}))
}
