// Package market defines the point-in-time market data and pricing
// output types produced by the oracle keeper and hedge-cost fetcher,
// plus the single-writer/multi-reader cache they are published
// through (spec.md §3, §5).
package market

import (
	"time"

	"github.com/tonsurance/core/internal/catalog"
)

// ConsensusPrice is the oracle aggregator's output for one asset: a
// median-of-N price across providers with a confidence score.
type ConsensusPrice struct {
	Asset       catalog.Asset
	MedianPrice float64
	Sources     []SourceQuote
	Confidence  float64
	Timestamp   time.Time
}

// SourceQuote is one provider's contribution to a ConsensusPrice.
type SourceQuote struct {
	Provider string
	Price    float64
}

// BridgeHealth captures one bridge's operational posture.
type BridgeHealth struct {
	BridgeID           string
	HealthScore        float64 // [0,1]
	TVLUSD             float64
	TVLDelta24h        float64
	TxFailureRate      float64
	CompletionTimeSecs float64
}

// Conditions is the atomically-produced, point-in-time market
// snapshot consumed by the pricing engine, risk monitor, and oracle
// keeper (spec.md §3 MarketConditions).
type Conditions struct {
	StablecoinPrices        map[catalog.Asset]ConsensusPrice
	BridgeHealthScores      map[string]float64
	CEXLiquidationRate      float64
	ChainGasPrices          map[catalog.Blockchain]float64
	ProtocolExploitCount24h uint32
	OverallVolatilityIndex  float64
	Timestamp               time.Time
}

// PriceFor returns the consensus price for an asset and whether it
// was present in the snapshot.
func (c Conditions) PriceFor(asset catalog.Asset) (ConsensusPrice, bool) {
	p, ok := c.StablecoinPrices[asset]
	return p, ok
}

// HedgeCostBreakdown is the per-product output of the hedge-cost
// fetcher (spec.md §3, §4.4). Absent components (nil) mean no hedge
// was available at that venue for this product.
type HedgeCostBreakdown struct {
	Polymarket               *float64
	Hyperliquid              *float64
	Binance                  *float64
	Allianz                  *float64
	TotalHedgeCost           float64
	HedgeRatio               float64
	EffectivePremiumAddition float64
	Timestamp                time.Time
}

// SwingPremium is the keeper's real-time-hedge-adjusted pricing
// output for one product (spec.md §3, §4.8).
type SwingPremium struct {
	Product        catalog.ProductKey
	BasePremium    float64
	HedgeCosts     HedgeCostBreakdown
	RiskMultiplier float64
	TotalPremium   float64
	Timestamp      time.Time
}

// MultiplierComponents is the circuit-breaker-clamped multiplier the
// keeper publishes for one product (spec.md §3, §4.8).
type MultiplierComponents struct {
	BaseBps              int32
	MarketAdjustmentBps  int32
	VolatilityPremiumBps int32
	TotalBps             int32
}

// Clamp enforces the invariant that TotalBps always lies in
// [5000, 20000] before publishing (the circuit breaker).
func (m MultiplierComponents) Clamp() MultiplierComponents {
	total := m.BaseBps + m.MarketAdjustmentBps + m.VolatilityPremiumBps
	if total < 5000 {
		total = 5000
	}
	if total > 20000 {
		total = 20000
	}
	m.TotalBps = total
	return m
}
