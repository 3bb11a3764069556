// Package riskmodel implements the pure, I/O-free risk primitives used
// by the risk monitor and the pricing engine: concentration,
// correlated-group exposure, correlation regime detection,
// closed-form VaR/CVaR, a deterministic stress-test suite, and
// expected-loss-per-policy (spec.md §4.6). Grounded on the teacher's
// pkg/formulas package (stats.go, for correlation) for the statistical
// primitives, generalized from portfolio-of-securities to
// portfolio-of-policies.
package riskmodel

import (
	"fmt"

	"github.com/tonsurance/core/internal/catalog"
)

// MathError marks a computation that cannot proceed on its input,
// e.g. an empty price history or a degenerate correlation matrix
// (spec.md §4.6: "only Math(reason)").
type MathError struct {
	Reason string
}

func (e *MathError) Error() string {
	return fmt.Sprintf("riskmodel: %s", e.Reason)
}

// StablecoinRiskFactors are the static, process-owned inputs to the
// pricing engine's risk-adjustment step and to expected-loss
// estimation (spec.md §4.3 step 2, §4.6).
type StablecoinRiskFactors struct {
	ReserveQuality       float64
	BankingExposure      float64
	RedemptionVelocity   float64
	MarketDepth          float64
	RegulatoryClarity    float64
	HistoricalVolatility float64
}

// CorrelationRegime classifies how tightly the priced assets are
// moving together.
type CorrelationRegime string

const (
	RegimeLow    CorrelationRegime = "low"
	RegimeMedium CorrelationRegime = "medium"
	RegimeHigh   CorrelationRegime = "high"
)

// Group is a named set of stablecoins that are believed to share a
// depeg risk driver (spec.md §4.6).
type Group struct {
	Name   string
	Assets []catalog.Asset
}

// CorrelatedGroups are the three groups named in spec.md §4.6. The
// order is significant only for deterministic iteration in tests.
func CorrelatedGroups() []Group {
	return []Group{
		{Name: "fiat-backed", Assets: []catalog.Asset{catalog.USDC, catalog.USDT, catalog.USDP}},
		{Name: "crypto-collateralized", Assets: []catalog.Asset{catalog.DAI, catalog.LUSD, catalog.GHO, catalog.CRVUSD, catalog.MKUSD}},
		{Name: "yield-bearing", Assets: []catalog.Asset{catalog.USDe, catalog.SUSDe, catalog.USDY}},
	}
}

// PolicyExposure is the minimal per-policy view the risk model needs:
// enough to bucket and sum coverage without depending on the policy
// package's full Policy type.
type PolicyExposure struct {
	Product       catalog.ProductKey
	CoverageCents int64
	TriggerPrice  float64
	FloorPrice    float64
}

// StressScenario is one named, deterministic shock applied to a
// policy set.
type StressScenario struct {
	Name    string
	LossUSD float64
}

// StressResult is the output of running the full suite.
type StressResult struct {
	Scenarios []StressScenario
	WorstCase StressScenario
}
