// Package marketfeed assembles one market.Conditions snapshot per
// tick by polling the external-data clients of spec.md §4.5 and
// publishing the result into the shared market.Cache, the same
// concurrent-fan-out-then-join shape riskmonitor.Monitor.RunOnce uses
// for its own per-iteration reads.
package marketfeed

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tonsurance/core/internal/catalog"
	"github.com/tonsurance/core/internal/clients"
	"github.com/tonsurance/core/internal/market"
	"github.com/tonsurance/core/internal/reliability"
	"github.com/tonsurance/core/internal/utils"
)

// knownBridges is the fixed bridge set the health client polls,
// mirroring clients.defaultBridgeFactors' hand-maintained keys.
var knownBridges = []string{"arbitrum-bridge", "base-bridge", "optimism-bridge", "polygon-bridge", "wormhole"}

// Fetcher polls every configured client and assembles a single
// market.Conditions snapshot, publishing it to Cache each tick. A nil
// client is simply skipped, leaving its fields at their zero value —
// the same degrade-gracefully posture every clients.Base caller
// already follows.
type Fetcher struct {
	Oracle  *clients.OracleAggregator
	Bridges *clients.BridgeHealthClient
	CEX     *clients.CEXClient
	Chains  *clients.ChainMetricsClient
	Cache   *market.Cache[market.Conditions]
	Log     zerolog.Logger

	// Persist, if set, writes every published snapshot to disk for
	// warm restart. A failed write is logged and never aborts
	// publishing to Cache — the on-disk copy is a recovery aid, not
	// the source of truth.
	Persist *market.SnapshotStore
}

// Run drives RunOnce on a fixed interval until ctx is cancelled.
func (f *Fetcher) Run(ctx context.Context, loop reliability.Loop) {
	loop.Run(ctx, func(iterCtx context.Context) {
		if err := f.RunOnce(iterCtx); err != nil {
			f.Log.Error().Err(err).Msg("market feed iteration failed")
		}
	})
}

// RunOnce fetches every source concurrently, assembles a Conditions
// snapshot, and publishes it. Partial failures degrade that field to
// its zero value rather than aborting the whole snapshot — a single
// flaky upstream must never stall oracle prices for every other
// asset.
func (f *Fetcher) RunOnce(ctx context.Context) error {
	defer utils.OperationTimer("market_feed_tick", f.Log)()

	now := time.Now()

	cond := market.Conditions{
		StablecoinPrices:   make(map[catalog.Asset]market.ConsensusPrice),
		BridgeHealthScores: make(map[string]float64),
		ChainGasPrices:     make(map[catalog.Blockchain]float64),
		Timestamp:          now,
	}

	var wg sync.WaitGroup
	var mu sync.Mutex

	if f.Oracle != nil {
		for _, asset := range catalog.Stablecoins() {
			wg.Add(1)
			go func(asset catalog.Asset) {
				defer wg.Done()
				price, err := f.Oracle.Fetch(ctx, asset, now)
				if err != nil {
					f.Log.Warn().Err(err).Str("asset", asset.String()).Msg("oracle fetch failed")
					return
				}
				mu.Lock()
				cond.StablecoinPrices[asset] = price
				mu.Unlock()
			}(asset)
		}
	}

	if f.Bridges != nil {
		for _, bridgeID := range knownBridges {
			wg.Add(1)
			go func(bridgeID string) {
				defer wg.Done()
				health, err := f.Bridges.Fetch(ctx, bridgeID, now)
				if err != nil {
					f.Log.Warn().Err(err).Str("bridge", bridgeID).Msg("bridge health fetch failed")
					return
				}
				mu.Lock()
				cond.BridgeHealthScores[bridgeID] = health.HealthScore
				mu.Unlock()
			}(bridgeID)
		}
	}

	if f.CEX != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rate, err := f.CEX.LiquidationRate(ctx)
			if err != nil {
				f.Log.Warn().Err(err).Msg("cex liquidation rate fetch failed")
				return
			}
			mu.Lock()
			cond.CEXLiquidationRate = rate
			mu.Unlock()
		}()
	}

	if f.Chains != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			prices := f.Chains.FetchAll(ctx)
			mu.Lock()
			for chain, price := range prices {
				cond.ChainGasPrices[chain] = price
			}
			mu.Unlock()
		}()
	}

	wg.Wait()

	cond.OverallVolatilityIndex = f.overallVolatility(cond)
	f.logDeepDepegs(cond)

	f.Cache.Store(cond)

	if f.Persist != nil {
		if err := f.Persist.Save(cond); err != nil {
			f.Log.Warn().Err(err).Msg("failed to persist market snapshot")
		}
	}

	return nil
}

// depegWarnDrawdown is the peak-to-trough drop that triggers a warn
// log, independent of the risk monitor's own LTV/threshold checks —
// this flags a stablecoin that recovered after a deep wobble, which a
// point-in-time price read alone would miss.
const depegWarnDrawdown = 0.03

// logDeepDepegs warns on any stablecoin whose recent price history
// shows a deeper peak-to-trough drop than depegWarnDrawdown, using
// the oracle aggregator's retained per-asset history.
func (f *Fetcher) logDeepDepegs(cond market.Conditions) {
	if f.Oracle == nil {
		return
	}
	for asset := range cond.StablecoinPrices {
		dd := f.Oracle.MaxDepegDrawdown(asset)
		if dd != nil && *dd >= depegWarnDrawdown {
			f.Log.Warn().Str("asset", asset.String()).Float64("max_drawdown", *dd).Msg("deep de-peg drawdown observed in recent price history")
		}
	}
}

// overallVolatility averages each stablecoin's realized volatility
// (when the oracle aggregator has enough history to compute one),
// clamped to [0,1]. Assets with no history yet simply don't
// contribute, rather than pulling the average toward zero.
func (f *Fetcher) overallVolatility(cond market.Conditions) float64 {
	if f.Oracle == nil {
		return 0
	}
	var sum float64
	var n int
	for asset := range cond.StablecoinPrices {
		if v := f.Oracle.RealizedVolatility(asset); v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	avg := sum / float64(n)
	if avg < 0 {
		avg = 0
	}
	if avg > 1 {
		avg = 1
	}
	return avg
}
