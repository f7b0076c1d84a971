package devserver

import (
	"sync"
	"time"
)

// LoginLimiter counts failed login attempts per email inside a sliding
// window. In-memory, matching the fixture server's scope.
type LoginLimiter struct {
	mu          sync.Mutex
	window      time.Duration
	maxAttempts int
	failures    map[string][]time.Time
}

// NewLoginLimiter creates a limiter allowing maxAttempts failures per window
func NewLoginLimiter(window time.Duration, maxAttempts int) *LoginLimiter {
	return &LoginLimiter{
		window:      window,
		maxAttempts: maxAttempts,
		failures:    make(map[string][]time.Time),
	}
}

// Allow reports whether a login attempt for the email may proceed
func (l *LoginLimiter) Allow(email string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.recent(email)) < l.maxAttempts
}

// RecordFailure records a failed attempt
func (l *LoginLimiter) RecordFailure(email string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failures[email] = append(l.recent(email), time.Now())
}

// RecordSuccess clears the failure history for the email
func (l *LoginLimiter) RecordSuccess(email string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.failures, email)
}

func (l *LoginLimiter) recent(email string) []time.Time {
	cutoff := time.Now().Add(-l.window)
	var kept []time.Time
	for _, t := range l.failures[email] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	l.failures[email] = kept
	return kept
}
