package riskmodel

import "github.com/tonsurance/core/internal/catalog"

// StressShocks are the shock vectors the suite applies. They are
// process-owned constants, not fetched at runtime, so the suite stays
// deterministic and reproducible given the same policy set (spec.md
// §4.6: "Scenarios are deterministic functions of policy set and
// shock vectors").
var StressShocks = struct {
	StableDepegPct     float64
	BridgeExploitLoss  float64
	CorrelatedDepegPct float64
	ReserveRunWithdraw float64
}{
	StableDepegPct:     0.10, // stable depeg 10%
	BridgeExploitLoss:  1.00, // bridge exploit: full loss of bridge-exposed coverage
	CorrelatedDepegPct: 0.10, // correlated depeg 10%, applied across the dominant group
	ReserveRunWithdraw: 0.30, // reserve run: 30% of reserves withdrawn, shortfall becomes loss
}

// RunStressSuite executes the minimum named scenarios from spec.md
// §4.6 against a policy set and returns their losses plus the worst
// case. reserveUSD is the vault's liquid reserve, used by the
// reserve-run scenario.
func RunStressSuite(policies []PolicyExposure, reserveUSD float64) StressResult {
	scenarios := []StressScenario{
		stableDepegScenario(policies),
		bridgeExploitScenario(policies),
		correlatedDepegScenario(policies),
		reserveRunScenario(policies, reserveUSD),
	}

	worst := scenarios[0]
	for _, s := range scenarios[1:] {
		if s.LossUSD > worst.LossUSD {
			worst = s
		}
	}
	return StressResult{Scenarios: scenarios, WorstCase: worst}
}

func totalCoverageUSD(policies []PolicyExposure) float64 {
	var total int64
	for _, p := range policies {
		total += p.CoverageCents
	}
	return float64(total) / 100
}

// stableDepegScenario assumes every stablecoin-backed Depeg policy
// pays out StableDepegPct of its coverage.
func stableDepegScenario(policies []PolicyExposure) StressScenario {
	var loss float64
	for _, p := range policies {
		if p.Product.Coverage == catalog.Depeg {
			loss += float64(p.CoverageCents) / 100 * StressShocks.StableDepegPct
		}
	}
	return StressScenario{Name: "stable_depeg_10pct", LossUSD: loss}
}

// bridgeExploitScenario assumes total loss of Bridge-coverage
// exposure.
func bridgeExploitScenario(policies []PolicyExposure) StressScenario {
	var loss float64
	for _, p := range policies {
		if p.Product.Coverage == catalog.Bridge {
			loss += float64(p.CoverageCents) / 100 * StressShocks.BridgeExploitLoss
		}
	}
	return StressScenario{Name: "bridge_exploit", LossUSD: loss}
}

// correlatedDepegScenario applies CorrelatedDepegPct to the dominant
// correlated group's Depeg coverage (the group most exposed, from
// MaxGroupExposure).
func correlatedDepegScenario(policies []PolicyExposure) StressScenario {
	group, _ := MaxGroupExposure(policies)
	var members = make(map[catalog.Asset]bool)
	for _, g := range CorrelatedGroups() {
		if g.Name == group {
			for _, a := range g.Assets {
				members[a] = true
			}
		}
	}

	var loss float64
	for _, p := range policies {
		if p.Product.Coverage == catalog.Depeg && members[p.Product.Asset] {
			loss += float64(p.CoverageCents) / 100 * StressShocks.CorrelatedDepegPct
		}
	}
	return StressScenario{Name: "correlated_depeg", LossUSD: loss}
}

// reserveRunScenario models a run on reserves: if the withdrawn
// fraction of reserves is less than total coverage, the shortfall
// between available reserves and a full-portfolio payout is the loss.
func reserveRunScenario(policies []PolicyExposure, reserveUSD float64) StressScenario {
	available := reserveUSD * (1 - StressShocks.ReserveRunWithdraw)
	total := totalCoverageUSD(policies)
	loss := total - available
	if loss < 0 {
		loss = 0
	}
	return StressScenario{Name: "reserve_run", LossUSD: loss}
}
