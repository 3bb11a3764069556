package riskmonitor

import (
	"github.com/tonsurance/core/internal/catalog"
	"github.com/tonsurance/core/internal/policy"
)

// chainBridgeID maps a chain to the bridge an off-Ethereum policy's
// assets are assumed to have crossed, matching the bridge identities
// internal/clients/bridge_health.go knows how to fetch. Ethereum and
// Bitcoin/Lightning are settlement layers, not bridge destinations,
// so they carry no bridge exposure.
var chainBridgeID = map[catalog.Blockchain]string{
	catalog.Arbitrum: "arbitrum-bridge",
	catalog.Base:     "base-bridge",
	catalog.Polygon:  "polygon-bridge",
	catalog.TON:      "wormhole",
	catalog.Solana:   "wormhole",
}

// bridgeExposureUSD buckets Bridge-coverage policies by the bridge
// their destination chain relies on (spec.md §4.6 concentration
// EXPANDED to bridges, alongside asset and chain).
func bridgeExposureUSD(policies []policy.Policy) map[string]float64 {
	out := make(map[string]float64)
	for _, p := range policies {
		if p.Coverage != catalog.Bridge {
			continue
		}
		id, ok := chainBridgeID[p.Chain]
		if !ok {
			continue
		}
		out[id] += float64(p.CoverageAmountCents) / 100
	}
	return out
}
