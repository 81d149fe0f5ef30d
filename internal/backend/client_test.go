package backend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientGet_DecodesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("Authorization = %q, want Bearer tok-1", got)
		}
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("Accept = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":{"uuid":"f-1","name":"우리집"}}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	var out struct {
		UUID string `json:"uuid"`
		Name string `json:"name"`
	}
	if err := c.Get(context.Background(), "tok-1", "/families/f-1", &out); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if out.UUID != "f-1" || out.Name != "우리집" {
		t.Errorf("decoded = %+v", out)
	}
}

func TestClientGetPublic_OmitsCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("Authorization = %q, want empty", got)
		}
		w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	if err := New(srv.URL).GetPublic(context.Background(), "/invitations/resolve?token=x", nil); err != nil {
		t.Fatalf("GetPublic() error = %v", err)
	}
}

func TestClientDo_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"success":false,"message":"없는 가족입니다","error":"FAMILY_NOT_FOUND"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).Do(context.Background(), http.MethodGet, "/families/missing", "tok", nil)

	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("error = %v, want *StatusError", err)
	}
	if se.Status != http.StatusNotFound {
		t.Errorf("Status = %d, want 404", se.Status)
	}
	if se.Code != "FAMILY_NOT_FOUND" {
		t.Errorf("Code = %q", se.Code)
	}
	if se.Message != "없는 가족입니다" {
		t.Errorf("Message = %q", se.Message)
	}
}

func TestClientDo_StatusErrorWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Do(context.Background(), http.MethodGet, "/anything", "", nil)

	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("error = %v, want *StatusError", err)
	}
	if se.Status != http.StatusBadGateway || se.Message != "" {
		t.Errorf("StatusError = %+v", se)
	}
}

func TestClientDo_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections from here on

	_, err := New(srv.URL).Do(context.Background(), http.MethodGet, "/families", "tok", nil)

	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("error = %v, want *TransportError", err)
	}
	var se *StatusError
	if errors.As(err, &se) {
		t.Error("transport failure must never look like a status error")
	}
}

func TestEnvelopeDecode_EmptyData(t *testing.T) {
	env := &Envelope{Success: true}
	var out struct{ Name string }
	if err := env.Decode(&out); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
}
