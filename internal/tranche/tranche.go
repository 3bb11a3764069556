// Package tranche maps per-tranche utilization to annualized yield,
// dispatching through the bonding curve each tranche is configured
// with. The model carries no state beyond its static configuration.
package tranche

import "github.com/tonsurance/core/internal/curves"

// Name identifies one of the six capital tranches.
type Name string

const (
	SureBTC  Name = "SURE_BTC"
	SureSnr  Name = "SURE_SNR"
	SureMezz Name = "SURE_MEZZ"
	SureJnr  Name = "SURE_JNR"
	SureJnrPlus Name = "SURE_JNR+"
	SureEqt  Name = "SURE_EQT"
)

// Config describes one tranche's yield band, its capital allocation
// share, and which bonding curve maps utilization to APY within that
// band. Tranche configs are immutable once loaded at startup.
type Config struct {
	Name              Name
	APYMin            float64
	APYMax            float64
	AllocationPercent float64
	Curve             curves.Kind
}

// DefaultConfigs returns the six built-in tranche configurations.
// Allocation percentages sum to 100.
func DefaultConfigs() map[Name]Config {
	return map[Name]Config{
		SureBTC:     {Name: SureBTC, APYMin: 4.0, APYMax: 4.0, AllocationPercent: 10, Curve: curves.Flat},
		SureSnr:     {Name: SureSnr, APYMin: 5.0, APYMax: 8.0, AllocationPercent: 25, Curve: curves.Logarithmic},
		SureMezz:    {Name: SureMezz, APYMin: 9.0, APYMax: 15.0, AllocationPercent: 30, Curve: curves.Linear},
		SureJnr:     {Name: SureJnr, APYMin: 12.0, APYMax: 22.0, AllocationPercent: 20, Curve: curves.Sigmoidal},
		SureJnrPlus: {Name: SureJnrPlus, APYMin: 15.0, APYMax: 35.0, AllocationPercent: 10, Curve: curves.Quadratic},
		SureEqt:     {Name: SureEqt, APYMin: 20.0, APYMax: 60.0, AllocationPercent: 5, Curve: curves.Exponential},
	}
}

// APY returns the annualized yield (as a percent) for a tranche at
// the given utilization, dispatching to the tranche's bonding curve.
func APY(cfg Config, utilization float64) float64 {
	return curves.Evaluate(cfg.Curve, utilization, cfg.APYMin, cfg.APYMax)
}

// Utilization computes min(1, coverageSoldCents/totalCapitalCents),
// returning 0 when capital is 0 (spec.md §4.2 boundary behavior).
func Utilization(coverageSoldCents, totalCapitalCents int64) float64 {
	if totalCapitalCents <= 0 {
		return 0
	}
	u := float64(coverageSoldCents) / float64(totalCapitalCents)
	if u > 1 {
		return 1
	}
	if u < 0 {
		return 0
	}
	return u
}
