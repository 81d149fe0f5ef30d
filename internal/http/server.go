package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"famiglia/internal/action"
	"famiglia/internal/actions"
	"famiglia/internal/log"
	"famiglia/internal/middleware/ratelimit"
	"famiglia/internal/middleware/security"
	"famiglia/internal/session"
	"famiglia/internal/storage"
)

// Deps collects everything the web server needs from the composition root.
type Deps struct {
	Actions  *actions.Service
	Sessions session.Store
	Verifier session.Verifier
	Legacy   *storage.FamilyRepository

	SessionTTL      time.Duration
	FamilyCookieTTL time.Duration
	SecureCookies   bool
}

// Server is the HTTP front of the application. It owns the router, the
// per-request adapters and the rate limiter.
type Server struct {
	http.Server

	svc      *actions.Service
	sessions session.Store
	verifier session.Verifier
	legacy   *storage.FamilyRepository
	limiter  *ratelimit.Limiter
	logger   *log.Logger

	sessionTTL time.Duration
	familyTTL  time.Duration
	secure     bool
}

func NewServer(addr string, deps Deps) *Server {
	s := &Server{
		svc:        deps.Actions,
		sessions:   deps.Sessions,
		verifier:   deps.Verifier,
		legacy:     deps.Legacy,
		limiter:    ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		logger:     log.New(log.Config{Component: log.ComponentHTTP}),
		sessionTTL: deps.SessionTTL,
		familyTTL:  deps.FamilyCookieTTL,
		secure:     deps.SecureCookies,
	}

	r := chi.NewRouter()
	r.Use(s.tracing)
	r.Use(security.Headers(security.DefaultHeadersConfig()))
	r.Use(s.rateLimit)
	r.Use(s.withSession)

	r.Get("/healthz", s.handleHealth)

	r.Route("/auth", func(r chi.Router) {
		r.Get("/{provider}/callback", s.handleAuthCallback)
		r.Post("/signout", s.handleSignOut)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/dashboard", s.handleDashboard)

		r.Route("/expenses", func(r chi.Router) {
			r.Get("/", s.handleListExpenses)
			r.Post("/", s.handleCreateExpense)
			r.Patch("/{uuid}", s.handleUpdateExpense)
			r.Delete("/{uuid}", s.handleDeleteExpense)
		})

		r.Route("/incomes", func(r chi.Router) {
			r.Get("/", s.handleListIncomes)
			r.Post("/", s.handleCreateIncome)
			r.Patch("/{uuid}", s.handleUpdateIncome)
			r.Delete("/{uuid}", s.handleDeleteIncome)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", s.handleListCategories)
			r.Post("/", s.handleCreateCategory)
			r.Patch("/{uuid}", s.handleUpdateCategory)
			r.Delete("/{uuid}", s.handleDeleteCategory)
		})

		r.Route("/families", func(r chi.Router) {
			r.Get("/", s.handleMyFamilies)
			r.Post("/", s.handleCreateFamily)
			r.Post("/select", s.handleSelectFamily)
			r.Get("/members", s.handleFamilyMembers)
		})

		r.Route("/invitations", func(r chi.Router) {
			r.Post("/", s.handleCreateInvitation)
			r.Get("/resolve", s.handleResolveInvitation)
			r.Post("/accept", s.handleAcceptInvitation)
			r.Post("/{uuid}/cancel", s.handleCancelInvitation)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", s.handleNotifications)
			r.Patch("/{uuid}/read", s.handleMarkNotificationRead)
		})
	})

	r.Route("/legacy/families", func(r chi.Router) {
		r.Get("/", s.handleLegacyListFamilies)
		r.Post("/", s.handleLegacyCreateFamily)
		r.Get("/{uuid}", s.handleLegacyGetFamily)
		r.Patch("/{uuid}", s.handleLegacyRenameFamily)
		r.Delete("/{uuid}", s.handleLegacyDeleteFamily)
	})

	s.Server = http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	return s.Server.Shutdown(ctx)
}

// tracing assigns a request id and logs one line per request.
func (s *Server) tracing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, 8)
		if _, err := rand.Read(buf); err == nil {
			ctx := context.WithValue(r.Context(), requestIDKey, hex.EncodeToString(buf))
			r = r.WithContext(ctx)
		}
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", RequestID(r.Context()),
		)
	})
}

// withSession resolves the session cookie into an identity and plants the
// per-request selection and view-recorder state.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
			if sess, ok, err := s.sessions.Get(ctx, c.Value); err == nil && ok {
				ctx = context.WithValue(ctx, identityKey, &action.Identity{
					ID:    sess.UserID,
					Name:  sess.Name,
					Email: sess.Email,
					Token: sess.Token,
				})
			}
		}

		sel := &cookieSelection{w: w, ttl: s.familyTTL, secure: s.secure}
		if c, err := r.Cookie(familyCookie); err == nil {
			sel.current = c.Value
		}
		ctx = context.WithValue(ctx, selectionKey, sel)
		ctx = context.WithValue(ctx, viewsKey, &viewRecorder{})

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
