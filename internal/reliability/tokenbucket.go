package reliability

import (
	"sync"
	"time"
)

// TokenBucket is a simple per-minute rate limiter gating outbound
// calls to a rate-limited upstream (spec.md §4.5: "respect a
// per-minute token bucket"). It refills to capacity once per minute
// rather than continuously, matching the coarse-grained budgets the
// upstream APIs in this domain actually publish.
type TokenBucket struct {
	mu           sync.Mutex
	capacity     int
	tokens       int
	refillPeriod time.Duration
	lastRefill   time.Time
	now          func() time.Time
}

// NewTokenBucket creates a bucket that allows up to ratePerMinute
// calls per 1-minute window, starting full.
func NewTokenBucket(ratePerMinute int) *TokenBucket {
	return &TokenBucket{
		capacity:     ratePerMinute,
		tokens:       ratePerMinute,
		refillPeriod: time.Minute,
		lastRefill:   time.Now(),
		now:          time.Now,
	}
}

// Allow reports whether a call may proceed now, consuming a token if
// so.
func (t *TokenBucket) Allow() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if now.Sub(t.lastRefill) >= t.refillPeriod {
		t.tokens = t.capacity
		t.lastRefill = now
	}
	if t.tokens <= 0 {
		return false
	}
	t.tokens--
	return true
}
