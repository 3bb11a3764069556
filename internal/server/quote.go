package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/tonsurance/core/internal/catalog"
	"github.com/tonsurance/core/internal/pricing"
)

// quoteResponse mirrors pricing.Breakdown plus the staleness marking
// spec.md §7 requires of the REST quote endpoint.
type quoteResponse struct {
	Product         string  `json:"product"`
	PremiumCents    int64   `json:"premium_cents"`
	BaseRate        float64 `json:"base_rate"`
	RiskAdjusted    float64 `json:"risk_adjusted"`
	SizeDiscount    float64 `json:"size_discount"`
	DurationAdj     float64 `json:"duration_adj"`
	TriggerAdj      float64 `json:"trigger_adj"`
	UtilizationAdj  float64 `json:"utilization_adj"`
	MarketStressAdj float64 `json:"market_stress_adj"`
	ClaimsAdj       float64 `json:"claims_adj"`
	Stale           bool    `json:"stale"`
	SnapshotAge     string  `json:"snapshot_age"`
}

// handleQuote implements spec.md §7's REST quote behavior: render the
// last-known valid MarketConditions snapshot, priced through the same
// pricing.Engine the rest of the process uses, marked stale past a
// 10-minute validity window. No valid snapshot at all returns
// Unavailable.
func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	product, req, err := parseQuoteRequest(r)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	cond, ok := s.market.Load()
	if !ok {
		s.writeError(w, r, http.StatusServiceUnavailable, "no market snapshot available yet")
		return
	}

	if s.requests != nil {
		s.requests.Record(product)
	}

	age := time.Since(cond.Timestamp)
	stale := age > quoteValidityWindow

	vault, err := s.vaultStateFor(r.Context(), product)
	if err != nil {
		s.writeError(w, r, http.StatusServiceUnavailable, "vault state unavailable: "+err.Error())
		return
	}

	marketStress := cond.OverallVolatilityIndex
	if marketStress < 0 {
		marketStress = 0
	}
	if marketStress > 1 {
		marketStress = 1
	}

	b := s.pricing.QuoteWithBreakdown(req, vault, marketStress, nil)

	s.writeData(w, r, http.StatusOK, quoteResponse{
		Product:         product.Name(),
		PremiumCents:    b.PremiumCents,
		BaseRate:        b.BaseRate,
		RiskAdjusted:    b.RiskAdjusted,
		SizeDiscount:    b.SizeDiscount,
		DurationAdj:     b.DurationAdj,
		TriggerAdj:      b.TriggerAdj,
		UtilizationAdj:  b.UtilizationAdj,
		MarketStressAdj: b.MarketStressAdj,
		ClaimsAdj:       b.ClaimsAdj,
		Stale:           stale,
		SnapshotAge:     age.Round(time.Second).String(),
	})
}

func parseQuoteRequest(r *http.Request) (catalog.ProductKey, pricing.Request, error) {
	q := r.URL.Query()

	coverage, err := catalog.ParseCoverageType(q.Get("coverage"))
	if err != nil {
		return catalog.ProductKey{}, pricing.Request{}, err
	}
	chain, err := catalog.ParseBlockchain(q.Get("chain"))
	if err != nil {
		return catalog.ProductKey{}, pricing.Request{}, err
	}
	asset, err := catalog.ParseAsset(q.Get("asset"))
	if err != nil {
		return catalog.ProductKey{}, pricing.Request{}, err
	}
	product := catalog.ProductKey{Coverage: coverage, Chain: chain, Asset: asset}
	if !product.IsValid() {
		return catalog.ProductKey{}, pricing.Request{}, fmt.Errorf("product not offered in the catalog: %s", product.Name())
	}

	coverageUSD, err := parseFloatParam(q, "coverage_usd", 100_000)
	if err != nil {
		return catalog.ProductKey{}, pricing.Request{}, err
	}
	durationDays, err := parseIntParam(q, "duration_days", 90)
	if err != nil {
		return catalog.ProductKey{}, pricing.Request{}, err
	}
	triggerPrice, err := parseFloatParam(q, "trigger_price", 0.95)
	if err != nil {
		return catalog.ProductKey{}, pricing.Request{}, err
	}

	return product, pricing.Request{
		Product:      product,
		CoverageUSD:  coverageUSD,
		DurationDays: durationDays,
		TriggerPrice: triggerPrice,
	}, nil
}

func parseFloatParam(q map[string][]string, key string, fallback float64) (float64, error) {
	v, ok := q[key]
	if !ok || len(v) == 0 || v[0] == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(v[0], 64)
}

func parseIntParam(q map[string][]string, key string, fallback int) (int, error) {
	v, ok := q[key]
	if !ok || len(v) == 0 || v[0] == "" {
		return fallback, nil
	}
	return strconv.Atoi(v[0])
}

// vaultStateFor assembles pricing.VaultState for one product from the
// policy snapshot (coverage sold) and the pool reader (total capital),
// the same two external collaborators the risk monitor reads.
func (s *Server) vaultStateFor(ctx context.Context, product catalog.ProductKey) (pricing.VaultState, error) {
	snap, err := s.policies.Read(ctx)
	if err != nil {
		return pricing.VaultState{}, err
	}
	pool, err := s.vault.Read(ctx)
	if err != nil {
		return pricing.VaultState{}, err
	}

	var coverageSoldCents int64
	for _, p := range snap.ActivePolicies() {
		if p.ProductKey() == product {
			coverageSoldCents += p.CoverageAmountCents
		}
	}

	return pricing.VaultState{
		CoverageSoldCents: coverageSoldCents,
		TotalCapitalCents: pool.TotalCapitalCents,
	}, nil
}
