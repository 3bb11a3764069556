package server

import (
	"context"
	"time"

	"github.com/tonsurance/core/internal/catalog"
	"github.com/tonsurance/core/internal/config"
	"github.com/tonsurance/core/internal/events"
	"github.com/tonsurance/core/internal/policy"
	"github.com/tonsurance/core/internal/riskmonitor"
)

type fixedPoolReader struct {
	state riskmonitor.PoolState
	err   error
}

func (f fixedPoolReader) Read(ctx context.Context) (riskmonitor.PoolState, error) {
	return f.state, f.err
}

type discardSink struct{}

func (discardSink) Send(ctx context.Context, a events.Alert) error { return nil }

func testThresholds() config.RiskThresholds {
	return config.RiskThresholds{
		LTVWarn: 0.70, LTVCrit: 0.75,
		ReserveWarn: 0.20, ReserveCrit: 0.15,
		ConcentrationWarn: 0.25, ConcentrationCrit: 0.30,
		CorrelationWarn: 0.70, CorrelationCrit: 0.85,
	}
}

func testPolicySnapshot() policy.Snapshot {
	start := time.Unix(1_700_000_000, 0)
	return policy.Snapshot{
		Policies: []policy.Policy{
			{
				ID: "p1", Coverage: catalog.Depeg, Chain: catalog.Ethereum, Asset: catalog.USDC,
				CoverageAmountCents: 50_000_000, TriggerPrice: 0.97, FloorPrice: 0.50,
				StartTS: start, ExpiryTS: start.Add(30 * 24 * time.Hour), Status: policy.StatusActive,
			},
		},
		AsOf: start,
	}
}
