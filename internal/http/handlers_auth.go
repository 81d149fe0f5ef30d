package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"famiglia/internal/log"
	"famiglia/internal/session"
)

// handleAuthCallback finishes the OAuth round trip: it exchanges the
// provider's code for a verified profile, opens a session and hands the
// browser its cookie.
func (s *Server) handleAuthCallback(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	if !session.ValidProvider(provider) {
		http.Error(w, "unknown provider", http.StatusNotFound)
		return
	}
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Redirect(w, r, "/auth/signin?reason=denied", http.StatusSeeOther)
		return
	}

	profile, err := s.verifier.Verify(r.Context(), provider, code)
	if err != nil {
		s.logger.Warn("sign-in verification failed",
			log.FieldProvider, provider,
			log.FieldError, err.Error(),
		)
		http.Redirect(w, r, "/auth/signin?reason=verify", http.StatusSeeOther)
		return
	}

	now := time.Now()
	sess := session.Session{
		Token:     session.NewToken(),
		UserID:    profile.ID,
		Name:      profile.Name,
		Email:     profile.Email,
		Provider:  provider,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.sessions.Create(r.Context(), sess); err != nil {
		s.logger.Error("failed to persist session", log.FieldError, err.Error())
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.Token,
		Path:     "/",
		MaxAge:   int(s.sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})

	s.logger.Info("user signed in",
		log.FieldProvider, provider,
		log.FieldUserID, profile.ID,
	)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleSignOut deletes the session server-side and expires the cookie. The
// family-selection cookie survives: it belongs to the browser, not the
// sign-in.
func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		if err := s.sessions.Delete(r.Context(), c.Value); err != nil {
			s.logger.Warn("failed to delete session", log.FieldError, err.Error())
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/auth/signin", http.StatusSeeOther)
}
