package riskmodel

import "github.com/tonsurance/core/internal/catalog"

// AssetConcentration returns, for each asset with nonzero coverage,
// its share of total coverage: Σ(coverage | asset=A) / Σ(coverage)
// (spec.md §4.6). Returns an empty map if there is no coverage at all.
func AssetConcentration(policies []PolicyExposure) map[catalog.Asset]float64 {
	totals := make(map[catalog.Asset]int64)
	var grand int64
	for _, p := range policies {
		totals[p.Product.Asset] += p.CoverageCents
		grand += p.CoverageCents
	}
	out := make(map[catalog.Asset]float64, len(totals))
	if grand == 0 {
		return out
	}
	for k, v := range totals {
		out[k] = float64(v) / float64(grand)
	}
	return out
}

// ChainConcentration is the per-chain analogue of AssetConcentration.
func ChainConcentration(policies []PolicyExposure) map[catalog.Blockchain]float64 {
	totals := make(map[catalog.Blockchain]int64)
	var grand int64
	for _, p := range policies {
		totals[p.Product.Chain] += p.CoverageCents
		grand += p.CoverageCents
	}
	out := make(map[catalog.Blockchain]float64, len(totals))
	if grand == 0 {
		return out
	}
	for k, v := range totals {
		out[k] = float64(v) / float64(grand)
	}
	return out
}

// GroupExposure returns, for each correlated group, its cumulative
// share of total coverage (spec.md §4.6: "max over correlated
// groups... of the group's cumulative exposure share").
func GroupExposure(policies []PolicyExposure) map[string]float64 {
	var grand int64
	for _, p := range policies {
		grand += p.CoverageCents
	}

	out := make(map[string]float64)
	groups := CorrelatedGroups()
	if grand == 0 {
		for _, g := range groups {
			out[g.Name] = 0
		}
		return out
	}

	inGroup := make(map[catalog.Asset]string)
	for _, g := range groups {
		for _, a := range g.Assets {
			inGroup[a] = g.Name
		}
	}

	groupTotals := make(map[string]int64)
	for _, p := range policies {
		if name, ok := inGroup[p.Product.Asset]; ok {
			groupTotals[name] += p.CoverageCents
		}
	}
	for _, g := range groups {
		out[g.Name] = float64(groupTotals[g.Name]) / float64(grand)
	}
	return out
}

// MaxGroupExposure returns the highest single group's exposure share,
// consulted for concentration-risk thresholding and for the
// correlation-adjustment multiplier (spec.md §4.6, §4.7).
func MaxGroupExposure(policies []PolicyExposure) (group string, share float64) {
	for name, s := range GroupExposure(policies) {
		if s > share {
			share = s
			group = name
		}
	}
	return group, share
}
