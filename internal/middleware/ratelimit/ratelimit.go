// Package ratelimit throttles requests per client over a fixed one-minute
// window.
package ratelimit

import (
	"sync"
	"time"
)

const staleAfter = 10 * time.Minute

type Config struct {
	RequestsPerMinute int
	CleanupInterval   time.Duration
}

func DefaultConfig() Config {
	return Config{RequestsPerMinute: 60, CleanupInterval: 5 * time.Minute}
}

// Limiter counts requests per client key. A background sweeper drops clients
// that have been quiet long enough that their window no longer matters.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window
	done    chan struct{}
	once    sync.Once

	requestsPerMinute int
}

type window struct {
	start time.Time
	count int
}

func NewLimiter(cfg Config) *Limiter {
	if cfg.RequestsPerMinute <= 0 {
		cfg = DefaultConfig()
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = DefaultConfig().CleanupInterval
	}

	l := &Limiter{
		windows:           make(map[string]*window),
		done:              make(chan struct{}),
		requestsPerMinute: cfg.RequestsPerMinute,
	}
	go l.sweep(cfg.CleanupInterval)
	return l
}

// Allow reports whether another request from key fits in the current window.
// The window starts at the first request and resets a minute later.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	w := l.windows[key]
	if w == nil || now.Sub(w.start) >= time.Minute {
		l.windows[key] = &window{start: now, count: 1}
		return true
	}
	w.count++
	return w.count <= l.requestsPerMinute
}

func (l *Limiter) sweep(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-l.done:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-staleAfter)
			l.mu.Lock()
			for key, w := range l.windows {
				if w.start.Before(cutoff) {
					delete(l.windows, key)
				}
			}
			l.mu.Unlock()
		}
	}
}

// Stop terminates the sweeper. Safe to call more than once.
func (l *Limiter) Stop() {
	l.once.Do(func() { close(l.done) })
}
