package riskmonitor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tonsurance/core/internal/catalog"
	"github.com/tonsurance/core/internal/policy"
)

func TestBridgeExposureUSDBucketsByDestinationChain(t *testing.T) {
	policies := []policy.Policy{
		{Coverage: catalog.Bridge, Chain: catalog.Arbitrum, CoverageAmountCents: 100_00},
		{Coverage: catalog.Bridge, Chain: catalog.Base, CoverageAmountCents: 200_00},
		{Coverage: catalog.Bridge, Chain: catalog.Solana, CoverageAmountCents: 50_00},
		{Coverage: catalog.Depeg, Chain: catalog.Arbitrum, CoverageAmountCents: 999_00},
	}
	out := bridgeExposureUSD(policies)
	assert.InDelta(t, 100.0, out["arbitrum-bridge"], 1e-9)
	assert.InDelta(t, 200.0, out["base-bridge"], 1e-9)
	assert.InDelta(t, 50.0, out["wormhole"], 1e-9)
	assert.Len(t, out, 3)
}

func TestBridgeExposureUSDIgnoresChainsWithNoBridge(t *testing.T) {
	policies := []policy.Policy{
		{Coverage: catalog.Bridge, Chain: catalog.Ethereum, CoverageAmountCents: 100_00},
	}
	out := bridgeExposureUSD(policies)
	assert.Empty(t, out)
}
