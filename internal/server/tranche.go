package server

import (
	"net/http"

	"github.com/tonsurance/core/internal/tranche"
)

// trancheAPYResponse reports every configured tranche's current APY
// at the vault-wide utilization derived from the pool reader, the
// same utilization the pricing engine's VaultState computes.
type trancheAPYResponse struct {
	Tranche           string  `json:"tranche"`
	APYPercent        float64 `json:"apy_percent"`
	AllocationPercent float64 `json:"allocation_percent"`
}

// handleTrancheAPY serves C1's APY model independently of policy
// pricing (spec.md §2: "APY queries independent; serve
// frontend/vault"), computed from the same vault-wide capital and
// coverage-sold totals the quote handler already reads.
func (s *Server) handleTrancheAPY(w http.ResponseWriter, r *http.Request) {
	pool, err := s.vault.Read(r.Context())
	if err != nil {
		s.writeError(w, r, http.StatusServiceUnavailable, "vault state unavailable: "+err.Error())
		return
	}

	snap, err := s.policies.Read(r.Context())
	if err != nil {
		s.writeError(w, r, http.StatusServiceUnavailable, "policy snapshot unavailable: "+err.Error())
		return
	}

	var coverageSoldCents int64
	for _, p := range snap.ActivePolicies() {
		coverageSoldCents += p.CoverageAmountCents
	}
	utilization := tranche.Utilization(coverageSoldCents, pool.TotalCapitalCents)

	configs := tranche.DefaultConfigs()
	out := make([]trancheAPYResponse, 0, len(configs))
	for _, name := range []tranche.Name{tranche.SureBTC, tranche.SureSnr, tranche.SureMezz, tranche.SureJnr, tranche.SureJnrPlus, tranche.SureEqt} {
		cfg := configs[name]
		out = append(out, trancheAPYResponse{
			Tranche:           string(cfg.Name),
			APYPercent:        tranche.APY(cfg, utilization),
			AllocationPercent: cfg.AllocationPercent,
		})
	}

	s.writeData(w, r, http.StatusOK, out)
}
