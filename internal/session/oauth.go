package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// naverEndpoint is Naver's OAuth 2.0 endpoint; x/oauth2 ships no preset for
// it.
var naverEndpoint = oauth2.Endpoint{
	AuthURL:  "https://nid.naver.com/oauth2.0/authorize",
	TokenURL: "https://nid.naver.com/oauth2.0/token",
}

const (
	googleUserinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	naverUserinfoURL  = "https://openapi.naver.com/v1/nid/me"
)

// OAuthConfig carries the provider credentials for the verifier.
type OAuthConfig struct {
	RedirectBase       string
	GoogleClientID     string
	GoogleClientSecret string
	NaverClientID      string
	NaverClientSecret  string
}

// OAuthVerifier exchanges callback codes with Google and Naver and fetches
// the signed-in user's profile.
type OAuthVerifier struct {
	configs map[string]*oauth2.Config
	client  *http.Client
}

// NewOAuthVerifier builds a verifier for every provider with credentials
// configured. Providers without credentials stay unknown.
func NewOAuthVerifier(cfg OAuthConfig) *OAuthVerifier {
	configs := map[string]*oauth2.Config{}
	if cfg.GoogleClientID != "" {
		configs[ProviderGoogle] = &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.RedirectBase + "/auth/google/callback",
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		}
	}
	if cfg.NaverClientID != "" {
		configs[ProviderNaver] = &oauth2.Config{
			ClientID:     cfg.NaverClientID,
			ClientSecret: cfg.NaverClientSecret,
			RedirectURL:  cfg.RedirectBase + "/auth/naver/callback",
			Endpoint:     naverEndpoint,
		}
	}
	return &OAuthVerifier{
		configs: configs,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (v *OAuthVerifier) Verify(ctx context.Context, provider, code string) (Profile, error) {
	cfg, ok := v.configs[provider]
	if !ok {
		return Profile{}, ErrUnknownProvider
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, v.client)
	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return Profile{}, fmt.Errorf("exchange %s code: %w", provider, err)
	}

	switch provider {
	case ProviderGoogle:
		return v.googleProfile(ctx, cfg, token)
	case ProviderNaver:
		return v.naverProfile(ctx, cfg, token)
	}
	return Profile{}, ErrUnknownProvider
}

func (v *OAuthVerifier) googleProfile(ctx context.Context, cfg *oauth2.Config, token *oauth2.Token) (Profile, error) {
	var payload struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := v.fetchJSON(ctx, cfg, token, googleUserinfoURL, &payload); err != nil {
		return Profile{}, err
	}
	return Profile{ID: payload.ID, Name: payload.Name, Email: payload.Email}, nil
}

func (v *OAuthVerifier) naverProfile(ctx context.Context, cfg *oauth2.Config, token *oauth2.Token) (Profile, error) {
	// Naver nests the profile under a response envelope.
	var payload struct {
		Response struct {
			ID    string `json:"id"`
			Name  string `json:"name"`
			Email string `json:"email"`
		} `json:"response"`
	}
	if err := v.fetchJSON(ctx, cfg, token, naverUserinfoURL, &payload); err != nil {
		return Profile{}, err
	}
	return Profile{ID: payload.Response.ID, Name: payload.Response.Name, Email: payload.Response.Email}, nil
}

func (v *OAuthVerifier) fetchJSON(ctx context.Context, cfg *oauth2.Config, token *oauth2.Token, url string, out any) error {
	resp, err := cfg.Client(ctx, token).Get(url)
	if err != nil {
		return fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch userinfo: unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode userinfo: %w", err)
	}
	return nil
}
