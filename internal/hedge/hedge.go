// Package hedge computes the per-product hedge-cost breakdown across
// the four venues named in spec.md §4.4: Polymarket, Hyperliquid,
// Binance, and Allianz. Each venue has its own pricing formula and
// its own applicability rule per coverage type.
package hedge

import (
	"time"

	"github.com/tonsurance/core/internal/catalog"
	"github.com/tonsurance/core/internal/market"
)

// HedgeRatio is the nominal fraction of coverage allocated to hedging
// (spec.md §4.4).
const HedgeRatio = 0.20

// Weights are the static per-venue allocation shares of HedgeRatio.
var Weights = struct {
	Polymarket  float64
	Hyperliquid float64
	Binance     float64
	Allianz     float64
}{0.30, 0.30, 0.30, 0.10}

// allianzRates are the parametric rates per coverage type (spec.md
// §4.4).
var allianzRates = map[catalog.CoverageType]float64{
	catalog.Depeg:          0.0045,
	catalog.Bridge:         0.0065,
	catalog.SmartContract:  0.0085,
	catalog.Oracle:         0.0075,
	catalog.CexLiquidation: 0.0055,
}

// VenueInputs bundles the live market data each venue formula needs.
// A field the aggregator could not obtain for this product is nil, and
// the venue that needs it then has no cost component in the quote.
type VenueInputs struct {
	PolymarketOdds *float64 // market_odds(asset) or market_odds(bridge), [0,1]
	DailyFunding   *float64 // hyperliquid funding rate (fraction), for smart-contract/oracle products
	HourlyFunding  *float64 // binance funding rate (fraction), for CEX-liquidation products
}

// Quote computes the hedge cost breakdown for one product and
// coverage amount (spec.md §4.4). Venues without an applicable market
// for this product/coverage-type combination are left absent (nil).
func Quote(product catalog.ProductKey, coverageUSD float64, inputs VenueInputs, now time.Time) market.HedgeCostBreakdown {
	var b market.HedgeCostBreakdown
	b.Timestamp = now
	b.HedgeRatio = HedgeRatio

	if v := polymarketCost(product, coverageUSD, inputs); v != nil {
		b.Polymarket = v
	}
	if v := hyperliquidCost(product, coverageUSD, inputs); v != nil {
		b.Hyperliquid = v
	}
	if v := binanceCost(product, coverageUSD, inputs); v != nil {
		b.Binance = v
	}
	if v := allianzCost(product, coverageUSD); v != nil {
		b.Allianz = v
	}

	var total float64
	for _, v := range []*float64{b.Polymarket, b.Hyperliquid, b.Binance, b.Allianz} {
		if v != nil {
			total += *v
		}
	}
	b.TotalHedgeCost = total
	if coverageUSD > 0 {
		b.EffectivePremiumAddition = total / coverageUSD
	}
	return b
}

// polymarketCost applies to Depeg and Bridge coverage: coverage *
// 0.30 * 0.20 * market_odds(asset|bridge).
func polymarketCost(product catalog.ProductKey, coverageUSD float64, inputs VenueInputs) *float64 {
	if product.Coverage != catalog.Depeg && product.Coverage != catalog.Bridge {
		return nil
	}
	if inputs.PolymarketOdds == nil {
		return nil
	}
	v := coverageUSD * Weights.Polymarket * HedgeRatio * (*inputs.PolymarketOdds)
	return &v
}

// hyperliquidCost applies to SmartContract and Oracle coverage (short
// the underlying/LINK): coverage * 0.30 * 0.20 *
// (|daily_funding|*30 + 0.002).
func hyperliquidCost(product catalog.ProductKey, coverageUSD float64, inputs VenueInputs) *float64 {
	if product.Coverage != catalog.SmartContract && product.Coverage != catalog.Oracle {
		return nil
	}
	if inputs.DailyFunding == nil {
		return nil
	}
	funding := *inputs.DailyFunding
	if funding < 0 {
		funding = -funding
	}
	v := coverageUSD * Weights.Hyperliquid * HedgeRatio * (funding*30 + 0.002)
	return &v
}

// binanceCost applies to CexLiquidation coverage: coverage * 0.30 *
// 0.20 * (|hourly_funding|*24*30 + 0.001).
func binanceCost(product catalog.ProductKey, coverageUSD float64, inputs VenueInputs) *float64 {
	if product.Coverage != catalog.CexLiquidation {
		return nil
	}
	if inputs.HourlyFunding == nil {
		return nil
	}
	funding := *inputs.HourlyFunding
	if funding < 0 {
		funding = -funding
	}
	v := coverageUSD * Weights.Binance * HedgeRatio * (funding*24*30 + 0.001)
	return &v
}

// allianzCost is always applicable (a static parametric rate exists
// for all five coverage types): coverage * 0.10 * 0.20 * rate(type).
func allianzCost(product catalog.ProductKey, coverageUSD float64) *float64 {
	rate, ok := allianzRates[product.Coverage]
	if !ok {
		return nil
	}
	v := coverageUSD * Weights.Allianz * HedgeRatio * rate
	return &v
}
