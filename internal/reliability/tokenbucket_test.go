package reliability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenBucketExhaustsThenRefills(t *testing.T) {
	b := NewTokenBucket(2)
	t0 := time.Unix(1_700_000_000, 0)
	b.now = func() time.Time { return t0 }
	b.lastRefill = t0

	assert.True(t, b.Allow())
	assert.True(t, b.Allow())
	assert.False(t, b.Allow())

	b.now = func() time.Time { return t0.Add(time.Minute) }
	assert.True(t, b.Allow())
}
