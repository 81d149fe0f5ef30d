package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"famiglia/internal/action"
	"famiglia/internal/actions"
	"famiglia/internal/backend"
	"famiglia/internal/session"
	"famiglia/internal/storage"
)

type fakeVerifier struct {
	profile session.Profile
	err     error
}

func (v fakeVerifier) Verify(_ context.Context, _, _ string) (session.Profile, error) {
	return v.profile, v.err
}

type testApp struct {
	server   *Server
	sessions *session.MemoryStore
	backend  *httptest.Server
}

// newTestApp wires a full server against a canned backend. routes maps
// "METHOD /path" to envelope bodies.
func newTestApp(t *testing.T, routes map[string]string) *testApp {
	t.Helper()

	backendSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.RequestURI()
		body, ok := routes[key]
		if !ok {
			t.Errorf("unexpected backend request: %s", key)
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"success":false}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(backendSrv.Close)

	db, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	api := backend.New(backendSrv.URL)
	resolver := &action.Resolver{
		Sessions:  ContextSessions{},
		Selection: ContextSelection{},
		Families:  &actions.Directory{API: api},
	}
	svc := actions.New(api, resolver, ContextViews{}, nil)

	sessions := session.NewMemoryStore()
	srv := NewServer(":0", Deps{
		Actions:         svc,
		Sessions:        sessions,
		Verifier:        fakeVerifier{profile: session.Profile{ID: "u1", Name: "영희", Email: "y@example.com"}},
		Legacy:          storage.NewFamilyRepository(db),
		SessionTTL:      time.Hour,
		FamilyCookieTTL: 365 * 24 * time.Hour,
	})
	t.Cleanup(func() { srv.limiter.Stop() })

	return &testApp{server: srv, sessions: sessions, backend: backendSrv}
}

func (a *testApp) signIn(t *testing.T) *http.Cookie {
	t.Helper()
	sess := session.Session{
		Token:     session.NewToken(),
		UserID:    "u1",
		Name:      "영희",
		Email:     "y@example.com",
		Provider:  session.ProviderGoogle,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	if err := a.sessions.Create(context.Background(), sess); err != nil {
		t.Fatal(err)
	}
	return &http.Cookie{Name: sessionCookie, Value: sess.Token}
}

func (a *testApp) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	a.server.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) (bool, map[string]any) {
	t.Helper()
	var body struct {
		Success bool           `json:"success"`
		Error   map[string]any `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return body.Success, body.Error
}

func TestCreateCategory_EndToEnd(t *testing.T) {
	app := newTestApp(t, map[string]string{
		"POST /families/fam-1/categories": `{"success":true,"data":{"uuid":"c-1","name":"식비"}}`,
	})
	sessCookie := app.signIn(t)

	form := strings.NewReader("name=식비")
	req := httptest.NewRequest(http.MethodPost, "/api/categories/", form)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(sessCookie)
	req.AddCookie(&http.Cookie{Name: familyCookie, Value: "fam-1"})

	rec := app.do(t, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	success, _ := decodeResult(t, rec)
	if !success {
		t.Fatalf("success = false: %s", rec.Body.String())
	}

	trigger := rec.Header().Get(triggerHeader)
	want := "refresh:/, refresh:/expenses, refresh:/categories"
	if trigger != want {
		t.Errorf("HX-Trigger = %q, want %q", trigger, want)
	}
}

func TestCreateCategory_NoFamilySelected(t *testing.T) {
	app := newTestApp(t, nil)
	sessCookie := app.signIn(t)

	req := httptest.NewRequest(http.MethodPost, "/api/categories/", strings.NewReader("name=식비"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(sessCookie)

	rec := app.do(t, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	success, errObj := decodeResult(t, rec)
	if success {
		t.Fatal("success = true without a family selection")
	}
	if errObj["code"] != "FAMILY_NOT_SELECTED" {
		t.Errorf("code = %v", errObj["code"])
	}
	if rec.Header().Get(triggerHeader) != "" {
		t.Errorf("HX-Trigger set on failure: %q", rec.Header().Get(triggerHeader))
	}
}

func TestCreateExpense_Unauthorized(t *testing.T) {
	app := newTestApp(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/expenses/", strings.NewReader("description=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := app.do(t, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	_, errObj := decodeResult(t, rec)
	if errObj["code"] != "UNAUTHORIZED" {
		t.Errorf("code = %v", errObj["code"])
	}
}

func TestListFamilies_RedirectsWhenSignedOut(t *testing.T) {
	app := newTestApp(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/families/", nil)
	rec := app.do(t, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/auth/signin?reason=unauthorized" {
		t.Errorf("Location = %q", loc)
	}
}

func TestSelectFamily_SetsCookie(t *testing.T) {
	app := newTestApp(t, nil)
	sessCookie := app.signIn(t)

	req := httptest.NewRequest(http.MethodPost, "/api/families/select", strings.NewReader("familyUuid=fam-7"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(sessCookie)

	rec := app.do(t, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var found *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == familyCookie {
			found = c
		}
	}
	if found == nil {
		t.Fatal("family cookie not set")
	}
	if found.Value != "fam-7" {
		t.Errorf("cookie value = %q, want fam-7", found.Value)
	}
	if !found.HttpOnly {
		t.Error("family cookie not HttpOnly")
	}
	if found.MaxAge != int((365 * 24 * time.Hour).Seconds()) {
		t.Errorf("cookie MaxAge = %d, want one year", found.MaxAge)
	}
}

func TestAuthCallback_OpensSession(t *testing.T) {
	app := newTestApp(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?code=abc", nil)
	rec := app.do(t, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("Location = %q, want /", loc)
	}

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookie {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("session cookie not set")
	}
	if _, ok, _ := app.sessions.Get(context.Background(), cookie.Value); !ok {
		t.Error("session cookie does not match a stored session")
	}
}

func TestAuthCallback_UnknownProvider(t *testing.T) {
	app := newTestApp(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/auth/github/callback?code=abc", nil)
	rec := app.do(t, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestSignOut_DeletesSession(t *testing.T) {
	app := newTestApp(t, nil)
	sessCookie := app.signIn(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/signout", nil)
	req.AddCookie(sessCookie)
	rec := app.do(t, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if _, ok, _ := app.sessions.Get(context.Background(), sessCookie.Value); ok {
		t.Error("session survived sign-out")
	}
}

func TestLegacyFamilies_RoundTrip(t *testing.T) {
	app := newTestApp(t, nil)
	sessCookie := app.signIn(t)

	// Create.
	req := httptest.NewRequest(http.MethodPost, "/legacy/families/", strings.NewReader("name=우리집"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(sessCookie)
	rec := app.do(t, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("create status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var created struct {
		Data storage.FamilyRecord `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created.Data.UUID == "" {
		t.Fatal("created family has no UUID")
	}

	// List.
	req = httptest.NewRequest(http.MethodGet, "/legacy/families/", nil)
	req.AddCookie(sessCookie)
	rec = app.do(t, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}

	// Delete, then reads miss.
	req = httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/legacy/families/%s", created.Data.UUID), nil)
	req.AddCookie(sessCookie)
	rec = app.do(t, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d, body = %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, fmt.Sprintf("/legacy/families/%s", created.Data.UUID), nil)
	req.AddCookie(sessCookie)
	rec = app.do(t, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", rec.Code)
	}
}

func TestLegacyFamilies_Unauthorized(t *testing.T) {
	app := newTestApp(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/legacy/families/", nil)
	rec := app.do(t, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	app := newTestApp(t, nil)

	rec := app.do(t, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q; security headers not applied", got)
	}
}
