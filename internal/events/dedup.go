package events

import (
	"context"
	"sync"
	"time"
)

// Deduper suppresses repeat deliveries of the same Alert.Key() within
// a rolling TTL window, so a threshold that stays breached for many
// consecutive risk-monitor iterations pages once, not every iteration.
type Deduper struct {
	mu   sync.Mutex
	ttl  time.Duration
	seen map[string]time.Time
}

// DefaultDedupWindow is the default suppression window (spec.md §4.7
// EXPANDED: avoid alert storms from a threshold oscillating around its
// boundary on every 60s risk-monitor tick).
const DefaultDedupWindow = 10 * time.Minute

// NewDeduper creates a Deduper with the given TTL.
func NewDeduper(ttl time.Duration) *Deduper {
	return &Deduper{ttl: ttl, seen: make(map[string]time.Time)}
}

// Allow reports whether an alert with this key should be delivered
// now, given the last delivery time (if any). It records the delivery
// time as a side effect when it returns true.
func (d *Deduper) Allow(key string, now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	last, ok := d.seen[key]
	if ok && now.Sub(last) < d.ttl {
		return false
	}
	d.seen[key] = now
	return true
}

// Cleanup drops entries older than the TTL, bounding map growth across
// a long-running process. Intended to be called periodically from
// housekeeping.
func (d *Deduper) Cleanup(now time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for k, t := range d.seen {
		if now.Sub(t) >= d.ttl {
			delete(d.seen, k)
		}
	}
}

// DedupingSink wraps a Sink, dropping alerts the Deduper rejects.
type DedupingSink struct {
	inner Sink
	dedup *Deduper
	now   func() time.Time
}

// NewDedupingSink wraps inner with deduplication using ttl.
func NewDedupingSink(inner Sink, ttl time.Duration) *DedupingSink {
	return &DedupingSink{inner: inner, dedup: NewDeduper(ttl), now: time.Now}
}

// Send delivers to inner only if the Deduper allows this alert's key.
func (s *DedupingSink) Send(ctx context.Context, alert Alert) error {
	if !s.dedup.Allow(alert.Key(), s.now()) {
		return nil
	}
	return s.inner.Send(ctx, alert)
}

// Deduper returns the sink's underlying Deduper, so a housekeeping job
// can periodically call its Cleanup without reaching past the sink's
// own encapsulation to construct a second, unrelated Deduper.
func (s *DedupingSink) Deduper() *Deduper {
	return s.dedup
}
