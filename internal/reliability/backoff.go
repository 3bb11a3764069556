// Package reliability provides the small scheduling and retry
// primitives shared by every upstream client and periodic loop:
// exponential backoff, a per-minute token bucket, and a
// ticker-driven loop with hard-cap cancellation. Grounded on the
// teacher's reconnect-with-backoff pattern in
// internal/clients/tradernet/websocket_client.go, generalized from a
// websocket-specific reconnector to a reusable retry helper.
package reliability

import (
	"math"
	"time"
)

// Backoff computes exponential retry delays doubling from a base,
// capped at a maximum. spec.md §4.5 names 1s -> 16s, cap 5 attempts
// for upstream HTTP clients.
type Backoff struct {
	Base       time.Duration
	Max        time.Duration
	MaxRetries int
}

// DefaultClientBackoff matches spec.md §4.5's retry policy for
// external data clients.
func DefaultClientBackoff() Backoff {
	return Backoff{Base: 1 * time.Second, Max: 16 * time.Second, MaxRetries: 5}
}

// Delay returns the backoff delay before retry attempt n (1-indexed):
// base * 2^(n-1), capped at Max.
func (b Backoff) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := float64(b.Base) * math.Pow(2, float64(attempt-1))
	if delay > float64(b.Max) {
		delay = float64(b.Max)
	}
	return time.Duration(delay)
}

// Exhausted reports whether attempt has used up the retry budget.
func (b Backoff) Exhausted(attempt int) bool {
	return attempt >= b.MaxRetries
}
