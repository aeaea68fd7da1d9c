package cache

import "time"

// DefaultTTL is the lifetime of a freshly persisted store.
const DefaultTTL = 3 * 24 * time.Hour

// Expiry tracks the single "valid until" timestamp shared by every entry.
// A zero value means no window has been established yet.
type Expiry struct {
	ttl        time.Duration
	validUntil time.Time
}

// NewExpiry returns an expiry policy with the given window length.
// A non-positive ttl falls back to DefaultTTL.
func NewExpiry(ttl time.Duration) Expiry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return Expiry{ttl: ttl}
}

// IsExpired reports whether a window exists and now is at or past its end.
func (e *Expiry) IsExpired(now time.Time) bool {
	if e.validUntil.IsZero() {
		return false
	}
	return !now.Before(e.validUntil)
}

// ValidUntil returns the end of the current window, or the zero time.
func (e *Expiry) ValidUntil() time.Time {
	return e.validUntil
}

// Reset starts a new window at now and returns its end.
func (e *Expiry) Reset(now time.Time) time.Time {
	e.validUntil = now.Add(e.ttl)
	return e.validUntil
}

// Set restores a window end read from disk.
func (e *Expiry) Set(t time.Time) {
	e.validUntil = t
}

// Clear drops the window; the next persist establishes a new one.
func (e *Expiry) Clear() {
	e.validUntil = time.Time{}
}

// TTL returns the configured window length.
func (e *Expiry) TTL() time.Duration {
	return e.ttl
}
