package riskmonitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonsurance/core/internal/catalog"
	"github.com/tonsurance/core/internal/config"
	"github.com/tonsurance/core/internal/events"
	"github.com/tonsurance/core/internal/policy"
	"github.com/tonsurance/core/internal/riskmodel"
)

type fixedPool struct {
	state PoolState
	err   error
}

func (p fixedPool) Read(ctx context.Context) (PoolState, error) { return p.state, p.err }

type recordingSink struct {
	alerts []events.Alert
}

func (s *recordingSink) Send(ctx context.Context, a events.Alert) error {
	s.alerts = append(s.alerts, a)
	return nil
}

func testRiskFactors() map[catalog.Asset]riskmodel.StablecoinRiskFactors {
	return map[catalog.Asset]riskmodel.StablecoinRiskFactors{
		catalog.USDC: {ReserveQuality: 0.1, BankingExposure: 0.1, RedemptionVelocity: 0.1, MarketDepth: 0.1, RegulatoryClarity: 0.8, HistoricalVolatility: 0.05},
		catalog.USDT: {ReserveQuality: 0.3, BankingExposure: 0.3, RedemptionVelocity: 0.2, MarketDepth: 0.2, RegulatoryClarity: 0.4, HistoricalVolatility: 0.10},
	}
}

func testThresholds() config.RiskThresholds {
	return config.RiskThresholds{
		LTVWarn: 0.70, LTVCrit: 0.75,
		ReserveWarn: 0.20, ReserveCrit: 0.15,
		ConcentrationWarn: 0.25, ConcentrationCrit: 0.30,
		CorrelationWarn: 0.70, CorrelationCrit: 0.85,
	}
}

func testPolicies() []policy.Policy {
	start := time.Unix(1_700_000_000, 0)
	return []policy.Policy{
		{
			ID: "p1", Coverage: catalog.Depeg, Chain: catalog.Ethereum, Asset: catalog.USDC,
			CoverageAmountCents: 50_000_000, TriggerPrice: 0.97, FloorPrice: 0.50,
			StartTS: start, ExpiryTS: start.Add(30 * 24 * time.Hour), Status: policy.StatusActive,
		},
		{
			ID: "p2", Coverage: catalog.Bridge, Chain: catalog.Arbitrum, Asset: catalog.USDT,
			CoverageAmountCents: 50_000_000, TriggerPrice: 0.97, FloorPrice: 0.50,
			StartTS: start, ExpiryTS: start.Add(30 * 24 * time.Hour), Status: policy.StatusActive,
		},
		{
			ID: "p3", Coverage: catalog.Depeg, Chain: catalog.Ethereum, Asset: catalog.USDC,
			CoverageAmountCents: 1_000_000, TriggerPrice: 0.97, FloorPrice: 0.50,
			StartTS: start, ExpiryTS: start.Add(30 * 24 * time.Hour), Status: policy.StatusExpired,
		},
	}
}

func testHistory() map[catalog.Asset]policy.PriceHistory {
	usdc := make([]float64, 0, 10)
	usdt := make([]float64, 0, 10)
	for i := 0; i < 10; i++ {
		usdc = append(usdc, 1.0+0.001*float64(i%3))
		usdt = append(usdt, 1.0-0.001*float64(i%2))
	}
	return map[catalog.Asset]policy.PriceHistory{
		catalog.USDC: {Asset: catalog.USDC, Prices: usdc},
		catalog.USDT: {Asset: catalog.USDT, Prices: usdt},
	}
}

func newTestMonitor(t *testing.T, pool PoolState, sink events.Sink) *Monitor {
	t.Helper()
	store := policy.NewMemoryStore(policy.Snapshot{Policies: testPolicies(), History: testHistory()})
	return NewMonitor(store, fixedPool{state: pool}, testRiskFactors(), testThresholds(), sink, zerolog.Nop())
}

func TestRunOnceAssemblesSnapshotFromActivePoliciesOnly(t *testing.T) {
	sink := &recordingSink{}
	m := newTestMonitor(t, PoolState{TotalCapitalCents: 500_000_000, LiquidReserveCents: 150_000_000}, sink)

	snap, err := m.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, snap.ActivePolicyCount)
	assert.InDelta(t, 0.20, snap.LTV, 1e-9) // 100_000_000 / 500_000_000
	assert.InDelta(t, 0.30, snap.ReserveRatio, 1e-9)
	assert.Greater(t, snap.VaR95, 0.0)
	assert.Greater(t, snap.VaR99, snap.VaR95)
	assert.InDelta(t, snap.VaR95*1.3, snap.CVaR95, 1e-9)
	assert.Len(t, snap.StressResults.Scenarios, 4)
	assert.Contains(t, snap.BridgeExposureUSD, "arbitrum-bridge")
	assert.InDelta(t, 500_000.0, snap.BridgeExposureUSD["arbitrum-bridge"], 1e-9)
}

func TestRunOnceStoresLatestSnapshot(t *testing.T) {
	m := newTestMonitor(t, PoolState{TotalCapitalCents: 500_000_000, LiquidReserveCents: 150_000_000}, &recordingSink{})

	_, ok := m.Latest()
	assert.False(t, ok)

	snap, err := m.RunOnce(context.Background())
	require.NoError(t, err)

	latest, ok := m.Latest()
	require.True(t, ok)
	assert.Equal(t, snap.ActivePolicyCount, latest.ActivePolicyCount)
}

func TestRunOnceFiresReserveBreachAlertWhenReservesThin(t *testing.T) {
	sink := &recordingSink{}
	m := newTestMonitor(t, PoolState{TotalCapitalCents: 500_000_000, LiquidReserveCents: 10_000_000}, sink)

	snap, err := m.RunOnce(context.Background())
	require.NoError(t, err)

	found := false
	for _, a := range snap.Alerts {
		if a.Kind == events.KindReserveBreach {
			found = true
		}
	}
	assert.True(t, found)
	assert.NotEmpty(t, sink.alerts)
}

func TestRunOnceNoAlertsWhenHealthy(t *testing.T) {
	m := newTestMonitor(t, PoolState{TotalCapitalCents: 10_000_000_000, LiquidReserveCents: 5_000_000_000}, &recordingSink{})

	snap, err := m.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Alerts)
}

func TestRunOncePropagatesPolicyStoreError(t *testing.T) {
	failing := failingStore{err: errors.New("store unavailable")}
	m := NewMonitor(failing, fixedPool{state: PoolState{TotalCapitalCents: 1}}, testRiskFactors(), testThresholds(), &recordingSink{}, zerolog.Nop())

	_, err := m.RunOnce(context.Background())
	assert.Error(t, err)
}

func TestRunOncePropagatesPoolError(t *testing.T) {
	store := policy.NewMemoryStore(policy.Snapshot{})
	m := NewMonitor(store, fixedPool{err: errors.New("pool unavailable")}, testRiskFactors(), testThresholds(), &recordingSink{}, zerolog.Nop())

	_, err := m.RunOnce(context.Background())
	assert.Error(t, err)
}

type failingStore struct{ err error }

func (f failingStore) Read(ctx context.Context) (policy.Snapshot, error) { return policy.Snapshot{}, f.err }

func TestTopProductsBoundedAndSortedDescending(t *testing.T) {
	byProduct := map[catalog.ProductKey]int64{
		{Coverage: catalog.Depeg, Chain: catalog.Ethereum, Asset: catalog.USDC}: 300,
		{Coverage: catalog.Depeg, Chain: catalog.Ethereum, Asset: catalog.USDT}: 100,
		{Coverage: catalog.Depeg, Chain: catalog.Ethereum, Asset: catalog.DAI}:  200,
	}
	top := topProducts(byProduct, 2)
	require.Len(t, top, 2)
	assert.Equal(t, int64(300), top[0].CoverageCents)
	assert.Equal(t, int64(200), top[1].CoverageCents)
}

func TestPoolStateLTVAndReserveRatioZeroCapital(t *testing.T) {
	var p PoolState
	assert.Equal(t, 0.0, p.LTV(1000))
	assert.Equal(t, 0.0, p.ReserveRatio())
}
