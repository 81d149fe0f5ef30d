// Package backend wraps outbound calls to the family-budget backend API.
//
// Every backend response body is an envelope {success, data, message, error}.
// The client attaches the caller's bearer credential, decodes the envelope,
// and turns non-2xx statuses into *StatusError and transport failures into
// *TransportError so callers can map the two classes differently.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 15 * time.Second

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a Client targeting the given backend base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Envelope is the wire shape every backend endpoint returns.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Decode unmarshals the envelope's data field into out.
func (e *Envelope) Decode(out any) error {
	if out == nil {
		return nil
	}
	if len(e.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(e.Data, out); err != nil {
		return fmt.Errorf("decode envelope data: %w", err)
	}
	return nil
}

// Do performs one request against the backend. token may be empty for public
// endpoints (e.g. resolving an invitation by its token). body, when non-nil,
// is JSON-encoded.
func (c *Client) Do(ctx context.Context, method, path, token string, body any) (*Envelope, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// DNS, connection refused, timeout: keep these distinguishable from
		// HTTP-status errors so the action layer can map them to NETWORK_ERROR.
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &StatusError{Status: resp.StatusCode}
		var env Envelope
		if json.Unmarshal(raw, &env) == nil {
			se.Code = env.Error
			se.Message = env.Message
		}
		slog.WarnContext(ctx, "Backend request failed",
			"method", method,
			"path", path,
			"status", resp.StatusCode)
		return nil, se
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode response body: %w", err)
	}
	return &env, nil
}

// Get performs a GET request and decodes the envelope's data into out.
func (c *Client) Get(ctx context.Context, token, path string, out any) error {
	env, err := c.Do(ctx, http.MethodGet, path, token, nil)
	if err != nil {
		return err
	}
	return env.Decode(out)
}

// GetPublic performs a GET without attaching credentials.
func (c *Client) GetPublic(ctx context.Context, path string, out any) error {
	return c.Get(ctx, "", path, out)
}

// Post performs a POST request and decodes the envelope's data into out.
func (c *Client) Post(ctx context.Context, token, path string, body, out any) error {
	env, err := c.Do(ctx, http.MethodPost, path, token, body)
	if err != nil {
		return err
	}
	return env.Decode(out)
}

// Patch performs a PATCH request and decodes the envelope's data into out.
func (c *Client) Patch(ctx context.Context, token, path string, body, out any) error {
	env, err := c.Do(ctx, http.MethodPatch, path, token, body)
	if err != nil {
		return err
	}
	return env.Decode(out)
}

// Delete performs a DELETE request. The backend returns an empty data field
// on deletes, so nothing is decoded.
func (c *Client) Delete(ctx context.Context, token, path string) error {
	_, err := c.Do(ctx, http.MethodDelete, path, token, nil)
	return err
}
