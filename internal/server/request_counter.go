package server

import (
	"sort"
	"sync"

	"github.com/tonsurance/core/internal/catalog"
)

// RequestCounter tallies quote requests per product and implements
// keeper.VolumeTracker's TopByVolume port, so the oracle keeper's hot
// set tracks what callers are actually quoting. Grounded on
// riskmonitor.topProducts' sort-by-count-then-name ranking.
type RequestCounter struct {
	mu     sync.Mutex
	counts map[catalog.ProductKey]int64
}

// NewRequestCounter returns an empty counter.
func NewRequestCounter() *RequestCounter {
	return &RequestCounter{counts: make(map[catalog.ProductKey]int64)}
}

// Record increments the tally for one quote request against product.
func (c *RequestCounter) Record(product catalog.ProductKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[product]++
}

// TopByVolume returns the n most-requested products, most requested
// first, ties broken by product name for determinism.
func (c *RequestCounter) TopByVolume(n int) []catalog.ProductKey {
	c.mu.Lock()
	type entry struct {
		product catalog.ProductKey
		count   int64
	}
	entries := make([]entry, 0, len(c.counts))
	for p, count := range c.counts {
		entries = append(entries, entry{p, count})
	}
	c.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].product.Name() < entries[j].product.Name()
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	out := make([]catalog.ProductKey, len(entries))
	for i, e := range entries {
		out[i] = e.product
	}
	return out
}
