package riskmonitor

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tonsurance/core/internal/catalog"
	"github.com/tonsurance/core/internal/config"
	"github.com/tonsurance/core/internal/events"
	"github.com/tonsurance/core/internal/market"
	"github.com/tonsurance/core/internal/policy"
	"github.com/tonsurance/core/internal/reliability"
	"github.com/tonsurance/core/internal/riskmodel"
)

// DefaultInterval and DefaultHardCap are the risk monitor's scheduling
// defaults (spec.md §4.7).
const (
	DefaultInterval = 60 * time.Second
	DefaultHardCap  = 30 * time.Second
)

// topProductCount bounds the TopProducts ranking carried on a Snapshot.
const topProductCount = 10

// PoolState is the vault-level view the risk monitor needs beyond
// what the policy store carries: total underwriting capital and
// liquid reserves, used for LTV, reserve ratio, and the reserve-run
// stress scenario.
type PoolState struct {
	TotalCapitalCents  int64
	LiquidReserveCents int64
}

// LTV is coverage_sold/total_capital, the same ratio
// pricing.VaultState.Utilization and tranche.Utilization compute
// (spec.md §4.6 "LTV — loan-to-value: coverage_sold / total_capital").
func (v PoolState) LTV(coverageSoldCents int64) float64 {
	if v.TotalCapitalCents <= 0 {
		return 0
	}
	ltv := float64(coverageSoldCents) / float64(v.TotalCapitalCents)
	if ltv > 1 {
		ltv = 1
	}
	if ltv < 0 {
		ltv = 0
	}
	return ltv
}

// ReserveRatio is liquid_reserves/total_capital, the spec's LTV
// precedent applied to the liquid side of the balance sheet. 0 if
// there is no capital to hold reserves against.
func (v PoolState) ReserveRatio() float64 {
	if v.TotalCapitalCents <= 0 {
		return 0
	}
	return float64(v.LiquidReserveCents) / float64(v.TotalCapitalCents)
}

// PoolReader is the port onto the vault's capital and reserve
// balances; the real implementation lives with the policy store's
// backing ledger, outside this module's scope (spec.md §1).
type PoolReader interface {
	Read(ctx context.Context) (PoolState, error)
}

// Monitor runs the periodic portfolio-risk check (spec.md §4.7):
// read the policy snapshot and pool state, run the risk model's pure
// primitives, assemble a Snapshot, check it against thresholds, and
// emit Alerts through a Sink. Grounded on the teacher's
// internal/reliability/monitoring_service.go loop shape.
type Monitor struct {
	Policies    policy.Store
	Pool        PoolReader
	RiskFactors map[catalog.Asset]riskmodel.StablecoinRiskFactors
	Thresholds  config.RiskThresholds
	Sink        events.Sink
	Log         zerolog.Logger

	latest market.Cache[Snapshot]
}

// NewMonitor builds a Monitor from its dependencies.
func NewMonitor(policies policy.Store, pool PoolReader, riskFactors map[catalog.Asset]riskmodel.StablecoinRiskFactors, thresholds config.RiskThresholds, sink events.Sink, log zerolog.Logger) *Monitor {
	return &Monitor{
		Policies:    policies,
		Pool:        pool,
		RiskFactors: riskFactors,
		Thresholds:  thresholds,
		Sink:        sink,
		Log:         log.With().Str("component", "risk_monitor").Logger(),
	}
}

// Latest returns the most recently published Snapshot, and whether
// one has been computed yet.
func (m *Monitor) Latest() (Snapshot, bool) {
	return m.latest.Load()
}

// Run drives RunOnce on a fixed interval until ctx is cancelled
// (spec.md §4.7's 60s default, 30s hard cap).
func (m *Monitor) Run(ctx context.Context, loop reliability.Loop) {
	loop.Run(ctx, func(iterCtx context.Context) {
		if _, err := m.RunOnce(iterCtx); err != nil {
			m.Log.Error().Err(err).Msg("risk monitor iteration failed")
		}
	})
}

// RunOnce executes a single monitor iteration: fetch, compute,
// threshold-check, and alert. It always publishes a Snapshot to
// Latest on success, even when alerts fire.
func (m *Monitor) RunOnce(ctx context.Context) (Snapshot, error) {
	now := time.Now()

	var snap policy.Snapshot
	var pool PoolState
	var snapErr, poolErr error

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		snap, snapErr = m.Policies.Read(ctx)
	}()
	go func() {
		defer wg.Done()
		pool, poolErr = m.Pool.Read(ctx)
	}()
	wg.Wait()

	if snapErr != nil {
		return Snapshot{}, snapErr
	}
	if poolErr != nil {
		return Snapshot{}, poolErr
	}

	active := snap.ActivePolicies()
	exposures := toExposures(active)

	var coverageSoldCents int64
	for _, e := range exposures {
		coverageSoldCents += e.CoverageCents
	}

	assumptions := buildAssumptions(m.RiskFactors)
	depegProb, severity := expectedLossInputs(assumptions)
	assumption := aggregateAssumption(exposures, assumptions)

	var95, var99, cvar95, err := riskmodel.ValueAtRisk(float64(coverageSoldCents)/100, assumption)
	if err != nil {
		return Snapshot{}, err
	}
	expectedLoss := riskmodel.PortfolioExpectedLoss(exposures, depegProb, severity)
	stress := riskmodel.RunStressSuite(exposures, float64(pool.LiquidReserveCents)/100)

	var corrMatrix riskmodel.CorrelationMatrix
	histories := make(map[catalog.Asset][]float64, len(snap.History))
	for asset, h := range snap.History {
		histories[asset] = h.Prices
	}
	if cm, cerr := riskmodel.BuildCorrelationMatrix(histories); cerr == nil {
		corrMatrix = cm
	}

	byProductCents := exposureByProductCents(exposures)
	byProductUSD := make(map[catalog.ProductKey]float64, len(byProductCents))
	for k, v := range byProductCents {
		byProductUSD[k] = float64(v) / 100
	}

	s := Snapshot{
		VaR95:                var95,
		VaR99:                var99,
		CVaR95:               cvar95,
		ExpectedLoss:         expectedLoss,
		WorstCaseStress:      stress.WorstCase,
		StressResults:        stress,
		LTV:                  pool.LTV(coverageSoldCents),
		ReserveRatio:         pool.ReserveRatio(),
		UtilizationByProduct: utilizationByProduct(exposures),
		AssetConcentration:   riskmodel.AssetConcentration(exposures),
		ChainConcentration:   riskmodel.ChainConcentration(exposures),
		BridgeExposureUSD:    bridgeExposureUSD(active),
		ExposureByProduct:    byProductUSD,
		Correlation:          corrMatrix,
		CorrelationRegime:    corrMatrix.Regime(),
		ActivePolicyCount:    len(active),
		Timestamp:            now,
	}
	s.TopProducts = topProducts(byProductCents, topProductCount)

	s.Alerts = checkThresholds(s, m.Thresholds, now)
	m.latest.Store(s)

	for _, a := range s.Alerts {
		if sendErr := m.Sink.Send(ctx, a); sendErr != nil {
			m.Log.Warn().Err(sendErr).Str("alert", a.Key()).Msg("alert delivery failed")
		}
	}

	return s, nil
}

func toExposures(policies []policy.Policy) []riskmodel.PolicyExposure {
	out := make([]riskmodel.PolicyExposure, len(policies))
	for i, p := range policies {
		out[i] = riskmodel.PolicyExposure{
			Product:       p.ProductKey(),
			CoverageCents: p.CoverageAmountCents,
			TriggerPrice:  p.TriggerPrice,
			FloorPrice:    p.FloorPrice,
		}
	}
	return out
}

func exposureByProductCents(exposures []riskmodel.PolicyExposure) map[catalog.ProductKey]int64 {
	out := make(map[catalog.ProductKey]int64)
	for _, e := range exposures {
		out[e.Product] += e.CoverageCents
	}
	return out
}

func utilizationByProduct(exposures []riskmodel.PolicyExposure) map[catalog.ProductKey]float64 {
	byProduct := exposureByProductCents(exposures)
	out := make(map[catalog.ProductKey]float64, len(byProduct))
	var total int64
	for _, v := range byProduct {
		total += v
	}
	if total == 0 {
		return out
	}
	for k, v := range byProduct {
		out[k] = float64(v) / float64(total)
	}
	return out
}

func topProducts(byProduct map[catalog.ProductKey]int64, n int) []ProductExposure {
	out := make([]ProductExposure, 0, len(byProduct))
	for k, v := range byProduct {
		out = append(out, ProductExposure{Product: k, CoverageCents: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CoverageCents != out[j].CoverageCents {
			return out[i].CoverageCents > out[j].CoverageCents
		}
		return out[i].Product.Name() < out[j].Product.Name()
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
