package reliability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoffDoublesUntilCap(t *testing.T) {
	b := DefaultClientBackoff()
	assert.Equal(t, 1*time.Second, b.Delay(1))
	assert.Equal(t, 2*time.Second, b.Delay(2))
	assert.Equal(t, 4*time.Second, b.Delay(3))
	assert.Equal(t, 8*time.Second, b.Delay(4))
	assert.Equal(t, 16*time.Second, b.Delay(5))
	assert.Equal(t, 16*time.Second, b.Delay(6)) // capped
}

func TestBackoffExhausted(t *testing.T) {
	b := DefaultClientBackoff()
	assert.False(t, b.Exhausted(4))
	assert.True(t, b.Exhausted(5))
}

func TestBackoffDelayClampsAttemptBelowOne(t *testing.T) {
	b := DefaultClientBackoff()
	assert.Equal(t, b.Delay(1), b.Delay(0))
}
