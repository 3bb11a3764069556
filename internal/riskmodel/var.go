package riskmodel

import "github.com/tonsurance/core/internal/catalog"

// VaR confidence multipliers (spec.md §4.6). The source commentary
// describes a 10,000-path Monte Carlo method, but the shipping
// computation is this closed-form approximation; both are documented
// as acceptable, and this is the one actually wired into the risk
// monitor.
const (
	kVaR95 = 1.5
	kVaR99 = 2.0
	cvarMultiplier = 1.3
)

// DepegAssumption is the per-policy (or portfolio-average) depeg
// probability and severity-given-depeg used by the closed-form VaR
// and expected-loss formulas. Values are typically derived from
// StablecoinRiskFactors and historical depeg frequency, supplied by
// the caller rather than computed here (this package stays pure).
type DepegAssumption struct {
	Probability95 float64 // avg depeg probability at the 95% horizon
	Probability99 float64 // avg depeg probability at the 99% horizon
	Severity      float64 // avg loss severity given a depeg occurs, in [0,1]
}

// ValueAtRisk computes VaR-95, VaR-99, and CVaR-95 for total coverage,
// per spec.md §4.6: VaR_q ≈ total_coverage · avg_depeg_prob_q ·
// avg_severity · k_q; CVaR ≈ 1.3·VaR. Returns a MathError if
// totalCoverageUSD is negative (a programmer error upstream, not a
// data-absence case, but still represented as Math per spec.md §4.6).
func ValueAtRisk(totalCoverageUSD float64, assumption DepegAssumption) (var95, var99, cvar95 float64, err error) {
	if totalCoverageUSD < 0 {
		return 0, 0, 0, &MathError{Reason: "negative total coverage"}
	}
	var95 = totalCoverageUSD * assumption.Probability95 * assumption.Severity * kVaR95
	var99 = totalCoverageUSD * assumption.Probability99 * assumption.Severity * kVaR99
	cvar95 = var95 * cvarMultiplier
	return var95, var99, cvar95, nil
}

// ExpectedLoss computes the expected loss for a single policy:
// coverage · depeg_prob · severity_given_depeg (spec.md §4.6).
func ExpectedLoss(coverageUSD, depegProb, severityGivenDepeg float64) float64 {
	return coverageUSD * depegProb * severityGivenDepeg
}

// PortfolioExpectedLoss sums ExpectedLoss across policies sharing one
// depeg-probability/severity assumption per asset.
func PortfolioExpectedLoss(policies []PolicyExposure, depegProb, severity map[catalog.Asset]float64) float64 {
	var total float64
	for _, p := range policies {
		coverageUSD := float64(p.CoverageCents) / 100
		total += ExpectedLoss(coverageUSD, depegProb[p.Product.Asset], severity[p.Product.Asset])
	}
	return total
}
