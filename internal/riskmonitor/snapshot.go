// Package riskmonitor runs the periodic portfolio-risk surveillance
// loop of spec.md §4.7: assemble a RiskSnapshot from the risk model's
// pure primitives, check it against configured thresholds, and emit
// Alerts through an injected sink. Grounded on the teacher's
// scheduler/monitoring-service shape (internal/reliability/monitoring_service.go,
// internal/scheduler/scheduler.go), generalized from a stock-portfolio
// health check to a parametric-insurance risk check.
package riskmonitor

import (
	"time"

	"github.com/tonsurance/core/internal/catalog"
	"github.com/tonsurance/core/internal/events"
	"github.com/tonsurance/core/internal/riskmodel"
)

// Snapshot is the immutable, portfolio-level risk record one monitor
// iteration produces (spec.md §3 RiskSnapshot).
type Snapshot struct {
	VaR95                float64
	VaR99                float64
	CVaR95               float64
	ExpectedLoss         float64
	WorstCaseStress      riskmodel.StressScenario
	StressResults        riskmodel.StressResult
	LTV                  float64
	ReserveRatio         float64
	UtilizationByProduct map[catalog.ProductKey]float64
	AssetConcentration   map[catalog.Asset]float64
	ChainConcentration   map[catalog.Blockchain]float64
	BridgeExposureUSD    map[string]float64
	ExposureByProduct    map[catalog.ProductKey]float64
	TopProducts          []ProductExposure
	Correlation          riskmodel.CorrelationMatrix
	CorrelationRegime    riskmodel.CorrelationRegime
	ActivePolicyCount    int
	Alerts               []events.Alert
	Timestamp            time.Time
}

// ProductExposure pairs a product with its total coverage, used for
// the top-10-products ranking.
type ProductExposure struct {
	Product       catalog.ProductKey
	CoverageCents int64
}

// RiskAdjustedMultiplier delegates to riskmodel.RiskAdjustedMultiplier
// using this snapshot's portfolio metrics, per spec.md §4.7's
// risk_adjusted_multiplier(snapshot, policy_request) exposure.
func (s Snapshot) RiskAdjustedMultiplier() float64 {
	return riskmodel.RiskAdjustedMultiplier(riskmodel.PortfolioMetrics{
		LTV:               s.LTV,
		ReserveRatio:      s.ReserveRatio,
		ConcentrationMax:  maxConcentration(s.AssetConcentration),
		CorrelationRegime: s.CorrelationRegime,
	})
}

func maxConcentration(byAsset map[catalog.Asset]float64) float64 {
	var max float64
	for _, v := range byAsset {
		if v > max {
			max = v
		}
	}
	return max
}
