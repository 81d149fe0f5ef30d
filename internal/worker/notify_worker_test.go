package worker

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"famiglia/internal/backend"
	"famiglia/internal/events"
)

func TestHandleEvent_CreatesNotification(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/notifications" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer svc-token" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	w := New(backend.New(srv.URL), "svc-token")
	e := events.NewEvent(events.TypeExpenseCreated, "fam-1", "u1", "영희", "e-1")

	if err := w.HandleEvent(context.Background(), e); err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}

	if got["familyUuid"] != "fam-1" {
		t.Errorf("familyUuid = %v", got["familyUuid"])
	}
	if got["message"] != "영희님이 새 지출을 등록했습니다" {
		t.Errorf("message = %v", got["message"])
	}
	if got["excludeUserId"] != "u1" {
		t.Errorf("excludeUserId = %v", got["excludeUserId"])
	}
}

func TestHandleEvent_DropsUnknownType(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	w := New(backend.New(srv.URL), "svc-token")
	e := events.NewEvent("something.else", "fam-1", "u1", "영희", "x")

	if err := w.HandleEvent(context.Background(), e); err != nil {
		t.Fatalf("HandleEvent() error = %v, want nil for unknown type", err)
	}
	if calls != 0 {
		t.Errorf("backend called %d times for unknown event type", calls)
	}
}

func TestMessageFor(t *testing.T) {
	tests := []struct {
		eventType string
		want      string
	}{
		{events.TypeExpenseCreated, "영희님이 새 지출을 등록했습니다"},
		{events.TypeIncomeCreated, "영희님이 새 수입을 등록했습니다"},
		{events.TypeInvitationCreated, "영희님이 새 구성원을 초대했습니다"},
		{events.TypeInvitationAccepted, "영희님이 가족에 합류했습니다"},
	}
	for _, tt := range tests {
		t.Run(tt.eventType, func(t *testing.T) {
			msg, ok := messageFor(events.Event{Type: tt.eventType, ActorName: "영희"})
			if !ok {
				t.Fatalf("messageFor(%s) not ok", tt.eventType)
			}
			if msg != tt.want {
				t.Errorf("messageFor(%s) = %q, want %q", tt.eventType, msg, tt.want)
			}
		})
	}
}
