package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"famiglia/internal/action"
)

type ctxKey int

const (
	identityKey ctxKey = iota
	selectionKey
	viewsKey
	requestIDKey
)

// Cookie names. The family cookie outlives the session cookie: the selection
// belongs to the browser, not to one sign-in.
const (
	sessionCookie = "famiglia_session"
	familyCookie  = "famiglia_family"
)

// ContextSessions implements action.SessionReader by reading the identity the
// session middleware planted in the request context.
type ContextSessions struct{}

func (ContextSessions) Identity(ctx context.Context) (*action.Identity, error) {
	id, _ := ctx.Value(identityKey).(*action.Identity)
	return id, nil
}

// cookieSelection carries the per-request family-selection cookie state.
// Reads come from the inbound cookie; writes become a Set-Cookie on the
// response.
type cookieSelection struct {
	w       http.ResponseWriter
	current string
	ttl     time.Duration
	secure  bool
}

// ContextSelection implements action.SelectionStore on top of the per-request
// cookie state planted by the middleware.
type ContextSelection struct{}

func (ContextSelection) Selected(ctx context.Context, _ string) (string, bool) {
	cs, _ := ctx.Value(selectionKey).(*cookieSelection)
	if cs == nil || cs.current == "" {
		return "", false
	}
	return cs.current, true
}

func (ContextSelection) Select(ctx context.Context, _ string, familyUUID string) error {
	cs, _ := ctx.Value(selectionKey).(*cookieSelection)
	if cs == nil {
		return nil
	}
	cs.current = familyUUID
	http.SetCookie(cs.w, &http.Cookie{
		Name:     familyCookie,
		Value:    familyUUID,
		Path:     "/",
		MaxAge:   int(cs.ttl.Seconds()),
		HttpOnly: true,
		Secure:   cs.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// viewRecorder accumulates the views invalidated during one request. The
// response writer turns the set into client refresh triggers; tests read it
// directly.
type viewRecorder struct {
	mu    sync.Mutex
	paths []string
}

func (vr *viewRecorder) add(paths ...string) {
	vr.mu.Lock()
	defer vr.mu.Unlock()
	for _, p := range paths {
		seen := false
		for _, have := range vr.paths {
			if have == p {
				seen = true
				break
			}
		}
		if !seen {
			vr.paths = append(vr.paths, p)
		}
	}
}

func (vr *viewRecorder) snapshot() []string {
	vr.mu.Lock()
	defer vr.mu.Unlock()
	return append([]string(nil), vr.paths...)
}

// ContextViews implements actions.ViewInvalidator on the per-request
// recorder.
type ContextViews struct{}

func (ContextViews) Invalidate(ctx context.Context, paths ...string) {
	vr, _ := ctx.Value(viewsKey).(*viewRecorder)
	if vr == nil {
		return
	}
	vr.add(paths...)
}

// RequestID returns the id assigned by the tracing middleware, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
