// Package ratelimit implements a fixed-window request counter keyed by
// string. Counters live in process memory only: they do not survive restarts
// and are not shared between instances, so this is a best-effort guard that
// must be combined with upstream controls in a multi-instance deployment.
package ratelimit

import (
	"strings"
	"sync"
	"time"
)

// Policy presets used by the handlers.
const (
	LoginMaxAttempts = 5
	LoginWindow      = 15 * time.Minute

	APIMaxRequests = 100
	APIWindow      = time.Minute

	UploadMaxRequests = 10
	UploadWindow      = time.Minute
)

type record struct {
	count     int
	resetTime time.Time
}

// Limiter counts requests per key within a rolling window. Construct one at
// process start and pass it to every handler that needs gating.
type Limiter struct {
	mu      sync.Mutex
	records map[string]*record
	now     func() time.Time
}

// New creates an empty Limiter.
func New() *Limiter {
	return &Limiter{
		records: make(map[string]*record),
		now:     time.Now,
	}
}

// Allow reports whether a request under key may proceed, counting it if so.
// A missing or expired record starts a fresh window with count 1. A full
// window denies without incrementing.
func (l *Limiter) Allow(key string, maxRequests int, window time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	rec, ok := l.records[key]
	if !ok || now.After(rec.resetTime) {
		l.records[key] = &record{count: 1, resetTime: now.Add(window)}
		return true
	}

	if rec.count >= maxRequests {
		return false
	}

	rec.count++
	return true
}

// Remaining returns how many requests are left in the key's current window,
// or maxRequests when no live window exists.
func (l *Limiter) Remaining(key string, maxRequests int) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[key]
	if !ok || l.now().After(rec.resetTime) {
		return maxRequests
	}
	if rec.count >= maxRequests {
		return 0
	}
	return maxRequests - rec.count
}

// Reset deletes the key's record, unconditionally re-enabling requests.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.records, key)
}

// AllowLogin gates sign-in attempts, keyed by normalized email.
func (l *Limiter) AllowLogin(email string) bool {
	return l.Allow(LoginKey(email), LoginMaxAttempts, LoginWindow)
}

// AllowAPI gates generic API calls under a caller-supplied key.
func (l *Limiter) AllowAPI(key string) bool {
	return l.Allow("api:"+key, APIMaxRequests, APIWindow)
}

// AllowUpload gates file uploads under a single shared key.
func (l *Limiter) AllowUpload() bool {
	return l.Allow("file-upload", UploadMaxRequests, UploadWindow)
}

// LoginKey builds the limiter key for an email's sign-in attempts.
func LoginKey(email string) string {
	return "login:" + strings.ToLower(email)
}
