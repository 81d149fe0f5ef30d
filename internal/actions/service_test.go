package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"famiglia/internal/action"
	"famiglia/internal/backend"
	"famiglia/internal/events"
)

type fakeSessions struct {
	id *action.Identity
}

func (f fakeSessions) Identity(_ context.Context) (*action.Identity, error) {
	return f.id, nil
}

type mapSelection struct {
	m map[string]string
}

func (s *mapSelection) Selected(_ context.Context, userID string) (string, bool) {
	v, ok := s.m[userID]
	return v, ok
}

func (s *mapSelection) Select(_ context.Context, userID, familyUUID string) error {
	s.m[userID] = familyUUID
	return nil
}

type recordedViews struct {
	paths []string
}

func (v *recordedViews) Invalidate(_ context.Context, paths ...string) {
	v.paths = append(v.paths, paths...)
}

type recordedEvents struct {
	published []events.Event
}

func (p *recordedEvents) Publish(_ context.Context, e events.Event) error {
	p.published = append(p.published, e)
	return nil
}

// testBackend serves canned envelope responses keyed by "METHOD /path" and
// counts every request it receives.
type testBackend struct {
	srv      *httptest.Server
	requests atomic.Int64
	routes   map[string]string
}

func newTestBackend(t *testing.T, routes map[string]string) *testBackend {
	t.Helper()
	b := &testBackend{routes: routes}
	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.requests.Add(1)
		key := r.Method + " " + r.URL.RequestURI()
		body, ok := b.routes[key]
		if !ok {
			t.Errorf("unexpected backend request: %s", key)
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"success":false,"message":"not found"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(b.srv.Close)
	return b
}

type testEnv struct {
	svc       *Service
	backend   *testBackend
	selection *mapSelection
	views     *recordedViews
	events    *recordedEvents
}

func newTestEnv(t *testing.T, selected string, routes map[string]string) *testEnv {
	t.Helper()
	b := newTestBackend(t, routes)
	api := backend.New(b.srv.URL)

	sel := &mapSelection{m: map[string]string{}}
	if selected != "" {
		sel.m["u1"] = selected
	}
	views := &recordedViews{}
	published := &recordedEvents{}

	resolver := &action.Resolver{
		Sessions:  fakeSessions{id: &action.Identity{ID: "u1", Name: "영희", Token: "tok"}},
		Selection: sel,
		Families:  &Directory{API: api},
	}
	return &testEnv{
		svc:       New(api, resolver, views, published),
		backend:   b,
		selection: sel,
		views:     views,
		events:    published,
	}
}

func envelope(data string) string {
	return fmt.Sprintf(`{"success":true,"data":%s}`, data)
}

func assertViews(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("invalidated views = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("invalidated views = %v, want %v", got, want)
		}
	}
}

func TestCreateCategory_NoSelectionFailsBeforeNetwork(t *testing.T) {
	env := newTestEnv(t, "", nil)

	res := env.svc.CreateCategory(context.Background(), CreateCategoryInput{Name: "식비"})

	if res.Success {
		t.Fatal("CreateCategory() succeeded without a family selection")
	}
	if res.Error.Code != action.CodeFamilyNotSelected {
		t.Errorf("Code = %s, want FAMILY_NOT_SELECTED", res.Error.Code)
	}
	if n := env.backend.requests.Load(); n != 0 {
		t.Errorf("backend received %d requests, want 0", n)
	}
	if len(env.views.paths) != 0 {
		t.Errorf("views invalidated on failure: %v", env.views.paths)
	}
}

func TestCreateCategory_InvalidatesExactViews(t *testing.T) {
	env := newTestEnv(t, "fam-1", map[string]string{
		"POST /families/fam-1/categories": envelope(`{"uuid":"c-1","name":"식비","icon":"🍚"}`),
	})

	res := env.svc.CreateCategory(context.Background(), CreateCategoryInput{Name: "식비", Icon: "🍚"})

	if !res.Success {
		t.Fatalf("CreateCategory() failed: %+v", res.Error)
	}
	if res.Data.UUID != "c-1" {
		t.Errorf("Data.UUID = %s", res.Data.UUID)
	}
	assertViews(t, env.views.paths, []string{ViewRoot, ViewExpenses, ViewCategories})
}

func TestUpdateCategory_EmptyPatch(t *testing.T) {
	env := newTestEnv(t, "fam-1", nil)

	res := env.svc.UpdateCategory(context.Background(), "c-1", UpdateCategoryInput{})

	if res.Success {
		t.Fatal("UpdateCategory() succeeded with an empty patch")
	}
	if res.Error.Code != action.CodeInvalidInput {
		t.Errorf("Code = %s, want INVALID_INPUT", res.Error.Code)
	}
	if res.Error.Message != "수정할 내용이 없습니다" {
		t.Errorf("Message = %q", res.Error.Message)
	}
	if n := env.backend.requests.Load(); n != 0 {
		t.Errorf("backend received %d requests, want 0", n)
	}
}

func TestCreateExpense_Validation(t *testing.T) {
	tests := []struct {
		name      string
		input     CreateExpenseInput
		wantField string
	}{
		{
			name:      "empty description",
			input:     CreateExpenseInput{Description: "  ", AmountCents: 100, CategoryUUID: "c-1"},
			wantField: "description",
		},
		{
			name:      "zero amount",
			input:     CreateExpenseInput{Description: "점심", AmountCents: 0, CategoryUUID: "c-1"},
			wantField: "amount",
		},
		{
			name:      "missing category",
			input:     CreateExpenseInput{Description: "점심", AmountCents: 100},
			wantField: "categoryUuid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, "fam-1", nil)

			res := env.svc.CreateExpense(context.Background(), tt.input)

			if res.Success {
				t.Fatal("CreateExpense() succeeded with invalid input")
			}
			if res.Error.Code != action.CodeInvalidInput {
				t.Errorf("Code = %s, want INVALID_INPUT", res.Error.Code)
			}
			if res.Error.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", res.Error.Field, tt.wantField)
			}
			if n := env.backend.requests.Load(); n != 0 {
				t.Errorf("backend received %d requests, want 0", n)
			}
		})
	}
}

func TestCreateExpense_EchoesSubmittedAmount(t *testing.T) {
	env := newTestEnv(t, "fam-1", nil)

	// "만원" fails coercion in the web layer, which hands the action zero
	// cents plus the original text.
	res := env.svc.CreateExpense(context.Background(), CreateExpenseInput{
		Description:  "점심",
		Amount:       "만원",
		AmountCents:  0,
		CategoryUUID: "c-1",
	})

	if res.Success {
		t.Fatal("CreateExpense() accepted an uncoercible amount")
	}
	if res.Error.Code != action.CodeInvalidInput {
		t.Errorf("Code = %s, want INVALID_INPUT", res.Error.Code)
	}
	if res.Error.Field != "amount" {
		t.Errorf("Field = %q, want %q", res.Error.Field, "amount")
	}
	if res.Error.Value != "만원" {
		t.Errorf("Value = %q, want the submitted text %q", res.Error.Value, "만원")
	}
}

func TestCreateExpense_PublishesEvent(t *testing.T) {
	env := newTestEnv(t, "fam-1", map[string]string{
		"POST /families/fam-1/expenses": envelope(`{"uuid":"e-1","description":"점심","amount":{"cents":1200}}`),
	})

	res := env.svc.CreateExpense(context.Background(), CreateExpenseInput{
		Description:  "점심",
		AmountCents:  1200,
		CategoryUUID: "c-1",
		SpentAt:      time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
	})

	if !res.Success {
		t.Fatalf("CreateExpense() failed: %+v", res.Error)
	}
	assertViews(t, env.views.paths, []string{ViewRoot, ViewExpenses})

	if len(env.events.published) != 1 {
		t.Fatalf("published %d events, want 1", len(env.events.published))
	}
	e := env.events.published[0]
	if e.Type != events.TypeExpenseCreated {
		t.Errorf("event type = %s, want %s", e.Type, events.TypeExpenseCreated)
	}
	if e.FamilyUUID != "fam-1" || e.ActorID != "u1" || e.Subject != "e-1" {
		t.Errorf("event = %+v", e)
	}
}

func TestListExpenses_TranslatesPageNumbering(t *testing.T) {
	env := newTestEnv(t, "fam-1", map[string]string{
		"GET /families/fam-1/expenses?page=1&size=10": envelope(`{"items":[],"totalElements":0,"totalPages":0,"currentPage":1}`),
	})

	res := env.svc.ListExpenses(context.Background(), "", 2, 10)
	if !res.Success {
		t.Fatalf("ListExpenses() failed: %+v", res.Error)
	}
}

func TestListExpenses_PageBoundsRejectedBeforeNetwork(t *testing.T) {
	tests := []struct {
		name       string
		selected   string
		page, size int
	}{
		{"page zero with persisted selection", "fam-1", 0, 20},
		{"oversize page with persisted selection", "fam-1", 1, 101},
		// Without a selection the read-only fallback would list the user's
		// families; the bound check must fire before that request too.
		{"page zero without selection", "", 0, 20},
		{"oversize page without selection", "", 1, 101},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, tt.selected, map[string]string{
				"GET /users/me/families": envelope(`[{"uuid":"fam-1","name":"우리집"}]`),
			})

			res := env.svc.ListExpenses(context.Background(), "", tt.page, tt.size)

			if res.Success {
				t.Fatalf("ListExpenses(%d, %d) accepted out-of-range page", tt.page, tt.size)
			}
			if res.Error.Code != action.CodeInvalidInput {
				t.Errorf("Code = %s, want INVALID_INPUT", res.Error.Code)
			}
			if n := env.backend.requests.Load(); n != 0 {
				t.Errorf("backend received %d requests, want 0", n)
			}
		})
	}
}

func TestListIncomes_PageBoundsRejectedBeforeNetwork(t *testing.T) {
	env := newTestEnv(t, "", map[string]string{
		"GET /users/me/families": envelope(`[{"uuid":"fam-1","name":"우리집"}]`),
	})

	res := env.svc.ListIncomes(context.Background(), "", 1, 101)

	if res.Success {
		t.Fatal("ListIncomes() accepted size 101")
	}
	if res.Error.Code != action.CodeInvalidInput {
		t.Errorf("Code = %s, want INVALID_INPUT", res.Error.Code)
	}
	if n := env.backend.requests.Load(); n != 0 {
		t.Errorf("backend received %d requests, want 0", n)
	}
}

func TestResolveInvitation_Validity(t *testing.T) {
	future := time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339)
	past := time.Now().Add(-time.Hour).UTC().Format(time.RFC3339)

	tests := []struct {
		name        string
		invitation  string
		wantValid   bool
		wantMessage string
	}{
		{
			name:       "pending and not expired",
			invitation: fmt.Sprintf(`{"uuid":"i-1","token":"t","status":"PENDING","expiresAt":%q}`, future),
			wantValid:  true,
		},
		{
			name:        "already accepted",
			invitation:  fmt.Sprintf(`{"uuid":"i-1","token":"t","status":"ACCEPTED","expiresAt":%q}`, future),
			wantValid:   false,
			wantMessage: "이미 사용된 초대장입니다",
		},
		{
			name:        "cancelled",
			invitation:  fmt.Sprintf(`{"uuid":"i-1","token":"t","status":"CANCELLED","expiresAt":%q}`, future),
			wantValid:   false,
			wantMessage: "취소된 초대장입니다",
		},
		{
			name:        "expired by backend",
			invitation:  fmt.Sprintf(`{"uuid":"i-1","token":"t","status":"EXPIRED","expiresAt":%q}`, future),
			wantValid:   false,
			wantMessage: "만료된 초대장입니다",
		},
		{
			name:        "pending but past expiry locally",
			invitation:  fmt.Sprintf(`{"uuid":"i-1","token":"t","status":"PENDING","expiresAt":%q}`, past),
			wantValid:   false,
			wantMessage: "만료된 초대장입니다",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, "", map[string]string{
				"GET /invitations/resolve?token=t": envelope(tt.invitation),
			})

			res := env.svc.ResolveInvitation(context.Background(), "t")
			if !res.Success {
				t.Fatalf("ResolveInvitation() failed: %+v", res.Error)
			}
			if res.Data.Valid != tt.wantValid {
				t.Errorf("Valid = %v, want %v", res.Data.Valid, tt.wantValid)
			}
			if res.Data.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", res.Data.Message, tt.wantMessage)
			}
		})
	}
}

func TestAcceptInvitation_RejectsUsedInvitation(t *testing.T) {
	future := time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339)
	env := newTestEnv(t, "", map[string]string{
		"GET /invitations/resolve?token=t": envelope(
			fmt.Sprintf(`{"uuid":"i-1","token":"t","status":"ACCEPTED","expiresAt":%q}`, future)),
	})

	res := env.svc.AcceptInvitation(context.Background(), "t")

	if res.Success {
		t.Fatal("AcceptInvitation() accepted a used invitation")
	}
	if res.Error.Code != action.CodeInvalidInput {
		t.Errorf("Code = %s, want INVALID_INPUT", res.Error.Code)
	}
	if res.Error.Message != "이미 사용된 초대장입니다" {
		t.Errorf("Message = %q", res.Error.Message)
	}
	// Only the resolve call may have gone out; never the accept.
	if n := env.backend.requests.Load(); n != 1 {
		t.Errorf("backend received %d requests, want 1", n)
	}
}

func TestAcceptInvitation_PersistsSelection(t *testing.T) {
	future := time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339)
	env := newTestEnv(t, "", map[string]string{
		"GET /invitations/resolve?token=t": envelope(
			fmt.Sprintf(`{"uuid":"i-1","token":"t","status":"PENDING","expiresAt":%q}`, future)),
		"POST /invitations/accept": envelope(`{"uuid":"fam-9","name":"새가족"}`),
	})

	res := env.svc.AcceptInvitation(context.Background(), "t")

	if !res.Success {
		t.Fatalf("AcceptInvitation() failed: %+v", res.Error)
	}
	if res.Data.UUID != "fam-9" {
		t.Errorf("Data.UUID = %s", res.Data.UUID)
	}
	if env.selection.m["u1"] != "fam-9" {
		t.Errorf("selection = %q, want fam-9", env.selection.m["u1"])
	}
	assertViews(t, env.views.paths, []string{ViewRoot, ViewFamilies, ViewMembers})

	if len(env.events.published) != 1 || env.events.published[0].Type != events.TypeInvitationAccepted {
		t.Errorf("published events = %+v", env.events.published)
	}
}

func TestSelectFamily_PersistsExplicitChoice(t *testing.T) {
	env := newTestEnv(t, "fam-a", nil)

	res := env.svc.SelectFamily(context.Background(), "fam-b")

	if !res.Success {
		t.Fatalf("SelectFamily() failed: %+v", res.Error)
	}
	if res.Data != "fam-b" {
		t.Errorf("Data = %s, want fam-b", res.Data)
	}
	if env.selection.m["u1"] != "fam-b" {
		t.Errorf("selection = %q, want fam-b", env.selection.m["u1"])
	}
}

func TestDashboardStats(t *testing.T) {
	env := newTestEnv(t, "fam-1", map[string]string{
		"GET /families/fam-1/expenses/summary?year=2026&month=3": envelope(
			`{"total":{"cents":50000},"byCategory":[{"name":"식비","amount":{"cents":30000}}]}`),
		"GET /families/fam-1/incomes/summary?year=2026&month=3": envelope(
			`{"total":{"cents":120000}}`),
	})

	res := env.svc.DashboardStats(context.Background(), "", 2026, 3)

	if !res.Success {
		t.Fatalf("DashboardStats() failed: %+v", res.Error)
	}
	if res.Data.Expenses.Cents != 50000 || res.Data.Incomes.Cents != 120000 {
		t.Errorf("stats = %+v", res.Data)
	}
	if res.Data.Balance.Cents != 70000 {
		t.Errorf("Balance = %d, want 70000", res.Data.Balance.Cents)
	}
	if len(res.Data.ByCategory) != 1 || res.Data.ByCategory[0].Name != "식비" {
		t.Errorf("ByCategory = %+v", res.Data.ByCategory)
	}
}

func TestDashboardStats_InvalidMonth(t *testing.T) {
	env := newTestEnv(t, "fam-1", nil)

	res := env.svc.DashboardStats(context.Background(), "", 2026, 13)

	if res.Success {
		t.Fatal("DashboardStats() accepted month 13")
	}
	if res.Error.Code != action.CodeInvalidInput {
		t.Errorf("Code = %s, want INVALID_INPUT", res.Error.Code)
	}
}

// Every action wraps failure in a Result instead of panicking or leaking the
// raw error, even when the caller is signed out entirely.
func TestActions_SignedOut(t *testing.T) {
	b := newTestBackend(t, nil)
	api := backend.New(b.srv.URL)
	resolver := &action.Resolver{
		Sessions:  fakeSessions{id: nil},
		Selection: &mapSelection{m: map[string]string{}},
		Families:  &Directory{API: api},
	}
	svc := New(api, resolver, &recordedViews{}, nil)

	results := []struct {
		name string
		code action.Code
	}{
		{"CreateExpense", resultCode(svc.CreateExpense(context.Background(), CreateExpenseInput{}))},
		{"CreateCategory", resultCode(svc.CreateCategory(context.Background(), CreateCategoryInput{}))},
		{"MyFamilies", resultCode(svc.MyFamilies(context.Background()))},
		{"Notifications", resultCode(svc.Notifications(context.Background(), 1, 20))},
	}
	for _, r := range results {
		if r.code != action.CodeUnauthorized {
			t.Errorf("%s code = %s, want UNAUTHORIZED", r.name, r.code)
		}
	}
	if n := b.requests.Load(); n != 0 {
		t.Errorf("backend received %d requests, want 0", n)
	}
}

func resultCode[T any](res action.Result[T]) action.Code {
	if res.Success || res.Error == nil {
		return ""
	}
	return res.Error.Code
}

func TestNotifications_ListAndMarkRead(t *testing.T) {
	items := `{"items":[{"uuid":"n-1","message":"영희님이 새 지출을 등록했습니다","read":false}],"totalElements":1,"totalPages":1,"currentPage":0}`
	env := newTestEnv(t, "", map[string]string{
		"GET /notifications?page=0&size=20": envelope(items),
		"PATCH /notifications/n-1":          envelope(`{"uuid":"n-1","read":true}`),
	})

	list := env.svc.Notifications(context.Background(), 1, 20)
	if !list.Success {
		t.Fatalf("Notifications() failed: %+v", list.Error)
	}
	if len(list.Data.Items) != 1 || list.Data.Items[0].UUID != "n-1" {
		t.Errorf("Items = %+v", list.Data.Items)
	}

	marked := env.svc.MarkNotificationRead(context.Background(), "n-1")
	if !marked.Success {
		t.Fatalf("MarkNotificationRead() failed: %+v", marked.Error)
	}
	assertViews(t, env.views.paths, []string{ViewNotifications})
}

// A result round-trips to the exact JSON shape the UI contract expects.
func TestResultWireShape(t *testing.T) {
	res := action.Fail[struct{}](action.FamilyNotSelected(), "")
	raw, err := json.Marshal(res)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["success"] != false {
		t.Errorf("success = %v", decoded["success"])
	}
	errObj, ok := decoded["error"].(map[string]any)
	if !ok {
		t.Fatalf("error field missing: %s", raw)
	}
	if errObj["code"] != "FAMILY_NOT_SELECTED" {
		t.Errorf("code = %v", errObj["code"])
	}
}
