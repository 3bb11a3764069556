package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/tonsurance/core/internal/market"
)

// BridgeHealthClient polls DefiLlama for a bridge's TVL and combines
// it with a static per-bridge factors table for transaction failure
// rate and completion time (spec.md §4.5: "per-bridge TVL with 24h
// delta, transaction failure rate, completion time; static factors
// table").
type BridgeHealthClient struct {
	base    Base
	baseURL string
	factors map[string]bridgeFactors
}

// bridgeFactors holds the operational characteristics DefiLlama does
// not publish; these are maintained by hand per bridge, the same way
// the teacher hand-maintains exchangerate-api's currency set.
type bridgeFactors struct {
	txFailureRate      float64
	completionTimeSecs float64
}

func defaultBridgeFactors() map[string]bridgeFactors {
	return map[string]bridgeFactors{
		"arbitrum-bridge": {txFailureRate: 0.002, completionTimeSecs: 900},
		"base-bridge":     {txFailureRate: 0.002, completionTimeSecs: 900},
		"optimism-bridge": {txFailureRate: 0.002, completionTimeSecs: 900},
		"polygon-bridge":  {txFailureRate: 0.004, completionTimeSecs: 1800},
		"wormhole":        {txFailureRate: 0.01, completionTimeSecs: 300},
	}
}

// NewBridgeHealthClient wires a client against baseURL (DefiLlama's
// bridges endpoint).
func NewBridgeHealthClient(baseURL string, log zerolog.Logger) *BridgeHealthClient {
	return &BridgeHealthClient{
		base:    NewBase("bridge_health", 30, log),
		baseURL: baseURL,
		factors: defaultBridgeFactors(),
	}
}

type defiLlamaBridgeResponse struct {
	CurrentTVL  float64 `json:"currentTVL"`
	PreviousTVL float64 `json:"previousDayTVL"`
}

// Fetch returns the health snapshot for one bridge by its DefiLlama
// slug.
func (c *BridgeHealthClient) Fetch(ctx context.Context, bridgeID string, now time.Time) (market.BridgeHealth, error) {
	url := fmt.Sprintf("%s/bridges/%s", c.baseURL, bridgeID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return market.BridgeHealth{}, &ClientError{Provider: "defillama", Kind: KindParse, Err: err}
	}

	resp, err := c.base.Do(ctx, req)
	if err != nil {
		return market.BridgeHealth{}, err
	}
	defer resp.Body.Close()

	var out defiLlamaBridgeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return market.BridgeHealth{}, &ClientError{Provider: "defillama", Kind: KindParse, Err: err}
	}

	delta := 0.0
	if out.PreviousTVL != 0 {
		delta = (out.CurrentTVL - out.PreviousTVL) / out.PreviousTVL
	}

	f, ok := c.factors[bridgeID]
	if !ok {
		f = bridgeFactors{txFailureRate: 0.02, completionTimeSecs: 1800}
	}

	return market.BridgeHealth{
		BridgeID:           bridgeID,
		HealthScore:        healthScore(f.txFailureRate, delta),
		TVLUSD:             out.CurrentTVL,
		TVLDelta24h:        delta,
		TxFailureRate:      f.txFailureRate,
		CompletionTimeSecs: f.completionTimeSecs,
	}, nil
}

// healthScore folds failure rate and TVL drawdown into a single
// [0,1] score: a bridge with no failures and flat/growing TVL scores
// near 1; high failure rates or a sharp TVL outflow pull it toward 0.
func healthScore(txFailureRate, tvlDelta24h float64) float64 {
	score := 1.0 - txFailureRate*10
	if tvlDelta24h < 0 {
		score += tvlDelta24h // a negative delta subtracts directly
	}
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
