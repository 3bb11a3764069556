// Package pricing implements calculate_premium: the ten-step
// composition pipeline that turns a coverage request into a premium
// in cents (spec.md §4.3). Every step is a pure rate transform; the
// engine itself holds no state beyond the config it was built from.
package pricing

import (
	"math"

	"github.com/tonsurance/core/internal/catalog"
	"github.com/tonsurance/core/internal/riskmodel"
)

// Request is the caller-supplied quote input.
type Request struct {
	Product      catalog.ProductKey
	CoverageUSD  float64
	DurationDays int
	TriggerPrice float64
}

// VaultState is the pool state consulted for size/utilization
// adjustments.
type VaultState struct {
	CoverageSoldCents int64
	TotalCapitalCents int64
}

// Utilization returns coverage_sold/capital, clamped to [0,1]; 0 if
// capital is 0 (same rule as tranche.Utilization, spec.md §4.2/§4.3).
func (v VaultState) Utilization() float64 {
	if v.TotalCapitalCents <= 0 {
		return 0
	}
	u := float64(v.CoverageSoldCents) / float64(v.TotalCapitalCents)
	if u > 1 {
		u = 1
	}
	if u < 0 {
		u = 0
	}
	return u
}

// Breakdown carries every intermediate factor the pipeline computes,
// so quote_with_breakdown can return them verbatim without
// diverging from CalculatePremium (spec.md §4.3 "side contract").
type Breakdown struct {
	BaseRate        float64
	RiskAdjusted    float64
	SizeDiscount    float64
	DurationAdj     float64
	TriggerAdj      float64
	UtilizationAdj  float64
	MarketStressAdj float64
	ClaimsAdj       float64
	AnnualPremium   float64
	ProRataPremium  float64
	PremiumCents    int64
}

// Engine composes the pricing pipeline from process-owned reference
// data loaded at startup (spec.md §3 "Ownership").
type Engine struct {
	BaseAPR     map[catalog.Asset]float64
	RiskFactors map[catalog.Asset]riskmodel.StablecoinRiskFactors
}

// NewEngine builds an Engine from the reference tables the rest of the
// process also loads from config.
func NewEngine(baseAPR map[catalog.Asset]float64, riskFactors map[catalog.Asset]riskmodel.StablecoinRiskFactors) *Engine {
	return &Engine{BaseAPR: baseAPR, RiskFactors: riskFactors}
}

// CalculatePremium runs the full composition and returns only the
// final premium in cents, rounded half-to-even.
func (e *Engine) CalculatePremium(req Request, vault VaultState, marketStress float64, lossRatio *float64) int64 {
	return e.quote(req, vault, marketStress, lossRatio).PremiumCents
}

// QuoteWithBreakdown runs the identical pipeline and returns every
// intermediate factor for transparency (spec.md §4.3).
func (e *Engine) QuoteWithBreakdown(req Request, vault VaultState, marketStress float64, lossRatio *float64) Breakdown {
	return e.quote(req, vault, marketStress, lossRatio)
}

func (e *Engine) quote(req Request, vault VaultState, marketStress float64, lossRatio *float64) Breakdown {
	var b Breakdown

	// 1. base_rate(asset)
	b.BaseRate = e.BaseAPR[req.Product.Asset]
	rate := b.BaseRate

	// 2. risk_adjusted = rate * (1 + Σ weighted_risk_factors)
	rf := e.RiskFactors[req.Product.Asset]
	weightedSum := 0.30*rf.ReserveQuality + 0.25*rf.BankingExposure + 0.20*rf.RedemptionVelocity +
		0.15*rf.MarketDepth - 0.10*rf.RegulatoryClarity
	rate = rate * (1 + weightedSum)
	b.RiskAdjusted = rate

	// 3. size_discount(coverage_usd)
	b.SizeDiscount = sizeDiscount(req.CoverageUSD)
	rate *= b.SizeDiscount

	// 4. duration_adj(days) = sqrt(days/90)
	b.DurationAdj = math.Sqrt(float64(req.DurationDays) / 90.0)
	rate *= b.DurationAdj

	// 5. trigger_adj(trigger) = 1 + (0.97 - trigger)/0.07 * 0.5
	b.TriggerAdj = 1 + (0.97-req.TriggerPrice)/0.07*0.5
	rate *= b.TriggerAdj

	// 6. utilization_adj(vault)
	b.UtilizationAdj = utilizationAdj(vault.Utilization())
	rate *= b.UtilizationAdj

	// 7. market_stress_adj = 1 + stress*2
	b.MarketStressAdj = 1 + marketStress*2
	rate *= b.MarketStressAdj

	// 8. claims_adj(loss_ratio) relative to target 0.40
	b.ClaimsAdj = claimsAdj(lossRatio)
	rate *= b.ClaimsAdj

	// 9. annual_premium = coverage_usd * rate; pro_rata = annual_premium * days/365
	b.AnnualPremium = req.CoverageUSD * rate
	b.ProRataPremium = b.AnnualPremium * float64(req.DurationDays) / 365.0

	// 10. premium = max(pro_rata, max(100, coverage_usd*0.01))
	floor := math.Max(100, req.CoverageUSD*0.01)
	premiumUSD := math.Max(b.ProRataPremium, floor)

	b.PremiumCents = roundHalfToEvenCents(premiumUSD)
	return b
}

// sizeDiscount is the stepwise discount from spec.md §4.3 step 3.
func sizeDiscount(coverageUSD float64) float64 {
	switch {
	case coverageUSD >= 10_000_000:
		return 0.80
	case coverageUSD >= 1_000_000:
		return 0.90
	case coverageUSD >= 100_000:
		return 0.95
	default:
		return 1.0
	}
}

// utilizationAdj is the stepwise surcharge from spec.md §4.3 step 6.
func utilizationAdj(utilization float64) float64 {
	switch {
	case utilization > 0.90:
		return 1.50
	case utilization > 0.75:
		return 1.25
	case utilization > 0.50:
		return 1.10
	default:
		return 1.0
	}
}

// claimsAdj implements spec.md §4.3 step 8: relative to a 0.40 target
// loss ratio, above target increases linearly, below decreases at
// half slope. A nil lossRatio (no claims history yet) is neutral.
func claimsAdj(lossRatio *float64) float64 {
	const target = 0.40
	if lossRatio == nil {
		return 1.0
	}
	delta := *lossRatio - target
	if delta >= 0 {
		return 1.0 + delta
	}
	return 1.0 + delta*0.5
}

// roundHalfToEvenCents converts a dollar amount to an integer cent
// count using round-half-to-even (banker's rounding), per spec.md
// §4.3: "rounded half-to-even to cents".
func roundHalfToEvenCents(usd float64) int64 {
	cents := usd * 100
	floor := math.Floor(cents)
	diff := cents - floor
	switch {
	case diff < 0.5:
		return int64(floor)
	case diff > 0.5:
		return int64(floor) + 1
	default:
		if int64(floor)%2 == 0 {
			return int64(floor)
		}
		return int64(floor) + 1
	}
}
