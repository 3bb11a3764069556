// Package keeper implements the oracle keeper of spec.md §4.8: a
// periodic loop that computes per-product market multipliers and
// swing premiums and publishes them on-chain. Grounded on the
// teacher's periodic-job shape (internal/reliability/monitoring_service.go)
// generalized from a single alert check to a batched, adaptively
// scheduled publish loop.
package keeper

import (
	"math"

	"github.com/tonsurance/core/internal/catalog"
	"github.com/tonsurance/core/internal/market"
)

// baseMultiplierBps is the 1.0x neutral multiplier before any
// adjustment or volatility premium is applied (spec.md §4.8's
// [5000,20000] clamp is centered on it).
const baseMultiplierBps = 10000

// maxAdjustmentBps bounds the sum of per-factor adjustments before
// the volatility premium and the final [5000,20000] clamp are applied
// (spec.md §4.8: "capped at ±3000 bps total").
const maxAdjustmentBps = 3000

// maxVolatilityPremiumBps caps the volatility contribution (spec.md
// §4.8: "min(5000, vol_index·5000)").
const maxVolatilityPremiumBps = 5000

// chainBridgeID maps a destination chain to the bridge whose health
// gates that chain's Bridge-coverage multiplier, mirroring
// internal/riskmonitor/bridges.go's attribution for the same bridge
// identities internal/clients/bridge_health.go fetches.
var chainBridgeID = map[catalog.Blockchain]string{
	catalog.Arbitrum: "arbitrum-bridge",
	catalog.Base:     "base-bridge",
	catalog.Polygon:  "polygon-bridge",
	catalog.TON:      "wormhole",
	catalog.Solana:   "wormhole",
}

// computeMultiplier derives the circuit-breaker-clamped multiplier
// for one product from the latest market conditions (spec.md §4.8).
func computeMultiplier(product catalog.ProductKey, cond market.Conditions) market.MultiplierComponents {
	adj := stablecoinDeviationAdjBps(product, cond)
	if product.Coverage == catalog.Bridge {
		adj += bridgeHealthAdjBps(product, cond)
	}
	if product.Coverage == catalog.CexLiquidation {
		adj += cexLiquidationAdjBps(cond)
	}
	if product.Chain == catalog.Ethereum {
		adj += chainGasAdjBps(cond)
	}
	adj += protocolExploitAdjBps(cond)
	adj = clampInt32(adj, -maxAdjustmentBps, maxAdjustmentBps)

	m := market.MultiplierComponents{
		BaseBps:              baseMultiplierBps,
		MarketAdjustmentBps:  adj,
		VolatilityPremiumBps: volatilityPremiumBps(cond),
	}
	return m.Clamp()
}

// stablecoinDeviationAdjBps charges a premium that steps up with how far
// a product's priced stablecoin has drifted from its $1.00 peg
// (spec.md §4.8). A missing price is treated as no signal (0), not as
// the "else" branch's -100, since the absence of data is a different
// condition than an observed small deviation.
func stablecoinDeviationAdjBps(product catalog.ProductKey, cond market.Conditions) int32 {
	price, ok := cond.PriceFor(product.Asset)
	if !ok {
		return 0
	}
	deviation := math.Abs(price.MedianPrice - 1.0)
	switch {
	case deviation > 0.03:
		return 400
	case deviation > 0.02:
		return 250
	case deviation > 0.01:
		return 150
	default:
		return -100
	}
}

// bridgeHealthAdjBps charges a premium on Bridge-coverage products
// when the underlying bridge's health score is degraded.
func bridgeHealthAdjBps(product catalog.ProductKey, cond market.Conditions) int32 {
	id, ok := chainBridgeID[product.Chain]
	if !ok {
		return 200
	}
	score, ok := cond.BridgeHealthScores[id]
	if !ok {
		return 200
	}
	switch {
	case score < 0.5:
		return 600
	case score < 0.7:
		return 300
	case score > 0.9:
		return -100
	default:
		return 0
	}
}

// cexLiquidationAdjBps charges a premium on CexLiquidation-coverage
// products when the liquidation rate across venues is elevated.
func cexLiquidationAdjBps(cond market.Conditions) int32 {
	switch {
	case cond.CEXLiquidationRate > 100:
		return 500
	case cond.CEXLiquidationRate > 50:
		return 250
	default:
		return -50
	}
}

// chainGasAdjBps charges a premium when Ethereum gas is elevated,
// applied to every Ethereum product regardless of coverage type
// (spec.md §4.8: "chain gas (Ethereum only)").
func chainGasAdjBps(cond market.Conditions) int32 {
	gas := cond.ChainGasPrices[catalog.Ethereum]
	switch {
	case gas > 200:
		return 150
	case gas > 100:
		return 75
	default:
		return 0
	}
}

// protocolExploitAdjBps charges a premium on every product when
// recent protocol exploits have been observed portfolio-wide.
func protocolExploitAdjBps(cond market.Conditions) int32 {
	switch {
	case cond.ProtocolExploitCount24h > 2:
		return 200
	case cond.ProtocolExploitCount24h > 0:
		return 100
	default:
		return 0
	}
}

// volatilityPremiumBps is the volatility-indexed premium component,
// independent of and additive to the capped adjustment sum.
func volatilityPremiumBps(cond market.Conditions) int32 {
	bps := cond.OverallVolatilityIndex * 5000
	if bps > maxVolatilityPremiumBps {
		bps = maxVolatilityPremiumBps
	}
	if bps < 0 {
		bps = 0
	}
	return int32(bps)
}

func clampInt32(v, min, max int32) int32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
