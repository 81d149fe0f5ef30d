// Package session owns sign-in state. Sessions are opaque tokens handed to
// the browser as a cookie and stored locally; the OAuth exchange with the
// identity provider happens behind the Verifier port.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"
)

// Supported sign-in providers.
const (
	ProviderGoogle = "google"
	ProviderNaver  = "naver"
)

var ErrUnknownProvider = errors.New("unknown provider")

// Session is one signed-in browser.
type Session struct {
	Token     string
	UserID    string
	Name      string
	Email     string
	Provider  string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is past its TTL at the given instant.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Profile is the verified identity returned by an OAuth provider.
type Profile struct {
	ID    string
	Name  string
	Email string
}

// Verifier exchanges a provider callback code for a verified profile. The
// provider's protocol is an external collaborator; this port is all the app
// sees of it.
type Verifier interface {
	Verify(ctx context.Context, provider, code string) (Profile, error)
}

// Store persists sessions. Lookups past expiry are misses.
type Store interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, token string) (Session, bool, error)
	Delete(ctx context.Context, token string) error
}

// ValidProvider reports whether the provider id is one we can sign in with.
func ValidProvider(provider string) bool {
	return provider == ProviderGoogle || provider == ProviderNaver
}

// NewToken returns a fresh opaque session token.
func NewToken() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the process is in serious trouble
		panic("session: cannot read random bytes: " + err.Error())
	}
	return hex.EncodeToString(buf)
}
