package keeper

import (
	"time"

	"github.com/tonsurance/core/internal/catalog"
	"github.com/tonsurance/core/internal/market"
)

// daysPerYear anchors the annualized-to-term premium conversion,
// matching pricing.Engine's pro-rata step.
const daysPerYear = 365.0

// computeSwingPremium derives the real-time-hedge-adjusted premium
// for one product (spec.md §4.8): base = coverage·APR·days/365;
// risk-adjusted = base · (total_bps/10000); final = risk-adjusted +
// total_hedge_cost.
func computeSwingPremium(product catalog.ProductKey, coverageUSD, apr float64, termDays int, multiplier market.MultiplierComponents, hedge market.HedgeCostBreakdown, now time.Time) market.SwingPremium {
	base := coverageUSD * apr * float64(termDays) / daysPerYear
	riskMultiplier := float64(multiplier.TotalBps) / 10000
	riskAdjusted := base * riskMultiplier

	return market.SwingPremium{
		Product:        product,
		BasePremium:    base,
		HedgeCosts:     hedge,
		RiskMultiplier: riskMultiplier,
		TotalPremium:   riskAdjusted + hedge.TotalHedgeCost,
		Timestamp:      now,
	}
}
