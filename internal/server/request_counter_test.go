package server

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tonsurance/core/internal/catalog"
)

func depegUSDC() catalog.ProductKey {
	return catalog.ProductKey{Coverage: catalog.Depeg, Chain: catalog.Ethereum, Asset: catalog.USDC}
}

func depegDAI() catalog.ProductKey {
	return catalog.ProductKey{Coverage: catalog.Depeg, Chain: catalog.Ethereum, Asset: catalog.DAI}
}

func TestTopByVolumeOrdersByCountDescending(t *testing.T) {
	c := NewRequestCounter()
	c.Record(depegUSDC())
	c.Record(depegUSDC())
	c.Record(depegDAI())

	top := c.TopByVolume(2)
	assert.Equal(t, []catalog.ProductKey{depegUSDC(), depegDAI()}, top)
}

func TestTopByVolumeTruncatesToN(t *testing.T) {
	c := NewRequestCounter()
	c.Record(depegUSDC())
	c.Record(depegDAI())

	top := c.TopByVolume(1)
	assert.Len(t, top, 1)
}

func TestTopByVolumeEmptyCounterReturnsEmpty(t *testing.T) {
	c := NewRequestCounter()
	assert.Empty(t, c.TopByVolume(10))
}
