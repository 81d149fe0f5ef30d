package http

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"famiglia/internal/core"
	"famiglia/internal/log"
)

var helperLogger = log.New(log.Config{Component: log.ComponentHTTP})

func logEncodeFailure(r *http.Request, err error) {
	helperLogger.Error("failed to encode response",
		log.FieldPath, r.URL.Path,
		log.FieldError, err.Error(),
		log.FieldRequestID, RequestID(r.Context()),
	)
}

// clientIP prefers proxy headers and falls back to the socket address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	if real := r.Header.Get("X-Real-IP"); real != "" {
		return real
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !s.limiter.Allow(ip) {
			s.logger.Warn("rate limit exceeded", log.FieldClientIP, ip, log.FieldPath, r.URL.Path)
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// decodeJSON reads a JSON body into out, capping the body size.
func decodeJSON(r *http.Request, out any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}

// formAmountCents coerces a decimal form value ("12.34", "12,34") to cents.
// A missing or malformed value yields 0; the action layer rejects it with a
// user-facing message, echoing the raw text it receives alongside the cents.
func formAmountCents(raw string) int64 {
	cents, err := core.ParseDecimalToCents(raw)
	if err != nil {
		return 0
	}
	return cents
}

// formDate parses a form date, accepting both plain dates and RFC 3339
// timestamps. The zero time means "not provided".
func formDate(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t
	}
	return time.Time{}
}

// pageParams reads 1-based pagination from the query string, defaulting to
// the first page of twenty items.
func pageParams(r *http.Request) (page, size int) {
	page, size = 1, 20
	if raw := r.URL.Query().Get("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			page = n
		}
	}
	if raw := r.URL.Query().Get("size"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			size = n
		}
	}
	return page, size
}
