package hedge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonsurance/core/internal/catalog"
)

func f(v float64) *float64 { return &v }

func TestDepegQuotesPolymarketAndAllianzOnly(t *testing.T) {
	product := catalog.ProductKey{Coverage: catalog.Depeg, Chain: catalog.Ethereum, Asset: catalog.USDC}
	b := Quote(product, 100_000, VenueInputs{PolymarketOdds: f(0.1)}, time.Now())

	require.NotNil(t, b.Polymarket)
	assert.InDelta(t, 100_000*0.30*0.20*0.1, *b.Polymarket, 1e-6)
	require.NotNil(t, b.Allianz)
	assert.InDelta(t, 100_000*0.10*0.20*0.0045, *b.Allianz, 1e-6)
	assert.Nil(t, b.Hyperliquid)
	assert.Nil(t, b.Binance)
}

func TestCexLiquidationQuotesBinanceAndAllianzOnly(t *testing.T) {
	product := catalog.ProductKey{Coverage: catalog.CexLiquidation, Chain: catalog.Ethereum, Asset: catalog.USDC}
	b := Quote(product, 100_000, VenueInputs{HourlyFunding: f(0.0001)}, time.Now())

	require.NotNil(t, b.Binance)
	assert.InDelta(t, 100_000*0.30*0.20*(0.0001*24*30+0.001), *b.Binance, 1e-6)
	assert.Nil(t, b.Polymarket)
}

func TestMissingVenueDataLeavesFieldNil(t *testing.T) {
	product := catalog.ProductKey{Coverage: catalog.Depeg, Chain: catalog.Ethereum, Asset: catalog.USDC}
	b := Quote(product, 100_000, VenueInputs{}, time.Now())
	assert.Nil(t, b.Polymarket)
	require.NotNil(t, b.Allianz) // allianz needs no live data
}

func TestTotalHedgeCostSumsPresentComponents(t *testing.T) {
	product := catalog.ProductKey{Coverage: catalog.Depeg, Chain: catalog.Ethereum, Asset: catalog.USDC}
	b := Quote(product, 100_000, VenueInputs{PolymarketOdds: f(0.1)}, time.Now())
	assert.InDelta(t, *b.Polymarket+*b.Allianz, b.TotalHedgeCost, 1e-9)
	assert.InDelta(t, b.TotalHedgeCost/100_000, b.EffectivePremiumAddition, 1e-9)
}

func TestNegativeFundingUsesAbsoluteValue(t *testing.T) {
	product := catalog.ProductKey{Coverage: catalog.SmartContract, Chain: catalog.Ethereum, Asset: catalog.USDC}
	positive := Quote(product, 100_000, VenueInputs{DailyFunding: f(0.01)}, time.Now())
	negative := Quote(product, 100_000, VenueInputs{DailyFunding: f(-0.01)}, time.Now())
	assert.InDelta(t, *positive.Hyperliquid, *negative.Hyperliquid, 1e-9)
}
