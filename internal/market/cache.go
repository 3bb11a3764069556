package market

import "sync/atomic"

// Cache is a single-writer/multi-reader holder for the last-known
// value of a type T, published atomically once per iteration (spec.md
// §5 "Shared resources"). Zero value is ready to use; Load returns
// the zero value and false until the first Store.
type Cache[T any] struct {
	ptr atomic.Pointer[T]
}

// Store atomically publishes a new value, replacing whatever was
// cached before. Readers never observe a partially-written value.
func (c *Cache[T]) Store(v T) {
	c.ptr.Store(&v)
}

// Load returns the most recently stored value and true, or the zero
// value and false if nothing has been stored yet.
func (c *Cache[T]) Load() (T, bool) {
	p := c.ptr.Load()
	if p == nil {
		var zero T
		return zero, false
	}
	return *p, true
}
