package keeper

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tonsurance/core/internal/catalog"
	"github.com/tonsurance/core/internal/hedge"
	"github.com/tonsurance/core/internal/market"
	"github.com/tonsurance/core/internal/metrics"
	"github.com/tonsurance/core/internal/onchain"
	"github.com/tonsurance/core/internal/policy"
	"github.com/tonsurance/core/internal/reliability"
)

// DefaultTermDays is the nominal policy term the swing premium is
// quoted over. The real-time repricing loop runs independently of any
// single policy's actual remaining term; spec.md §4.8 names the
// base = coverage·APR·days/365 formula without pinning "days" to a
// per-policy value, so this is a process-owned constant.
const DefaultTermDays = 30

// batchSize bounds how many products one on-chain write batch covers
// (spec.md §4.8: "parallel batches of 10").
const batchSize = 10

// confirmationAttempts and confirmationInterval bound how long the
// keeper waits for a submitted transaction, informational only: the
// actual polling is the Signer implementation's responsibility
// (spec.md §4.8, §1 "external collaborator").
const (
	confirmationAttempts = 30
	confirmationInterval = time.Second
)

// VenueDataProvider supplies the live funding-rate/odds inputs
// internal/hedge.Quote needs per product. Absent data (false) leaves
// that venue's hedge-cost component nil, per hedge.Quote's contract.
// The real implementation composes the Polymarket client (not part of
// this core) and internal/clients.HyperliquidStream.
type VenueDataProvider interface {
	PolymarketOdds(product catalog.ProductKey) (float64, bool)
	DailyFunding(product catalog.ProductKey) (float64, bool)
	HourlyFunding(product catalog.ProductKey) (float64, bool)
}

// Keeper runs spec.md §4.8's oracle keeper loop: adaptively select a
// product set, compute each product's multiplier and swing premium,
// and publish both on-chain in batches, with exponential backoff on
// iteration failure.
type Keeper struct {
	Policies    policy.Store
	Conditions  *market.Cache[market.Conditions]
	BaseAPR     map[catalog.Asset]float64
	Venues      VenueDataProvider
	Volume      VolumeTracker
	StaleIndex  indexTouchStore
	Signer      onchain.Signer
	Archiver    *Archiver
	Metrics     *metrics.Registry
	Log         zerolog.Logger

	lastFull            time.Time
	consecutiveFailures int
	backoff             reliability.Backoff
	lastError           string
	successfulRuns      int
	avgDurationSeconds  float64
}

// indexTouchStore is the subset of index.Store the keeper writes to
// and reads from, kept narrow so tests can fake it in-process.
type indexTouchStore interface {
	StaleIndex
	Touch(ctx context.Context, product catalog.ProductKey, ts time.Time) error
}

// NewKeeper builds a Keeper from its dependencies. archiver may be nil
// (archival disabled, see NewArchiver).
func NewKeeper(policies policy.Store, conditions *market.Cache[market.Conditions], baseAPR map[catalog.Asset]float64, venues VenueDataProvider, volume VolumeTracker, staleIndex indexTouchStore, signer onchain.Signer, archiver *Archiver, m *metrics.Registry, log zerolog.Logger) *Keeper {
	return &Keeper{
		Policies:   policies,
		Conditions: conditions,
		BaseAPR:    baseAPR,
		Venues:     venues,
		Volume:     volume,
		StaleIndex: staleIndex,
		Signer:     signer,
		Archiver:   archiver,
		Metrics:    m,
		Log:        log.With().Str("component", "oracle_keeper").Logger(),
		backoff:    reliability.Backoff{Base: time.Second, Max: 16 * time.Second, MaxRetries: 1<<31 - 1},
	}
}

// Run drives RunOnce on the fixed 5s scheduler tick until ctx is
// cancelled, sleeping an exponential backoff after a failed iteration
// (spec.md §4.8).
func (k *Keeper) Run(ctx context.Context) {
	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := k.RunOnce(ctx); err != nil {
				k.consecutiveFailures++
				k.lastError = err.Error()
				if k.Metrics != nil {
					k.Metrics.Keeper.UpdateFailureTotal.Inc()
					k.Metrics.Keeper.ConsecutiveFailures.Set(float64(k.consecutiveFailures))
				}
				k.Log.Error().Err(err).Int("consecutive_failures", k.consecutiveFailures).Msg("keeper iteration failed")

				// reliability.Backoff.Delay(n) = Base*2^(n-1); spec.md §4.8
				// wants 1s*2^consecutive_failures, so shift by one.
				delay := k.backoff.Delay(k.consecutiveFailures + 1)
				select {
				case <-ctx.Done():
					return
				case <-time.After(delay):
				}
				continue
			}
			k.consecutiveFailures = 0
			k.lastError = ""
			if k.Metrics != nil {
				k.Metrics.Keeper.ConsecutiveFailures.Set(0)
			}
		}
	}
}

// RunOnce executes one adaptive-scheduling iteration: pick a strategy,
// resolve its product set, and publish each product's multiplier and
// swing premium in batches.
func (k *Keeper) RunOnce(ctx context.Context) error {
	start := time.Now()
	strategy := selectStrategy(start, k.lastFull)

	products, err := productsFor(ctx, strategy, k.Volume, k.StaleIndex, start)
	if err != nil {
		return err
	}

	cond, ok := k.Conditions.Load()
	if !ok {
		cond = market.Conditions{Timestamp: start}
	}

	snap, err := k.Policies.Read(ctx)
	if err != nil {
		return err
	}
	coverageByProduct := coverageUSDByProduct(snap.ActivePolicies())

	var firstErr error
	var records []PublishRecord
	for i := 0; i < len(products); i += batchSize {
		end := i + batchSize
		if end > len(products) {
			end = len(products)
		}
		batchRecords, err := k.publishBatch(ctx, products[i:end], cond, coverageByProduct, start)
		records = append(records, batchRecords...)
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if k.Archiver != nil && len(records) > 0 {
		if err := k.Archiver.ArchiveBatch(ctx, strategy, records, start); err != nil {
			k.Log.Warn().Err(err).Msg("archive upload failed")
		}
	}

	if strategy == StrategyFull {
		k.lastFull = start
	}
	if firstErr != nil {
		return firstErr
	}

	duration := time.Since(start)
	k.successfulRuns++
	k.avgDurationSeconds += (duration.Seconds() - k.avgDurationSeconds) / float64(k.successfulRuns)
	if k.Metrics != nil {
		k.Metrics.Keeper.UpdateSuccessTotal.Inc()
		k.Metrics.Keeper.AvgDurationSeconds.Set(k.avgDurationSeconds)
		k.Metrics.Keeper.LastUpdateTimestamp.Set(float64(start.Unix()))
	}
	return nil
}

// publishBatch computes and submits one batch's worth of products.
// Failures are collected, not aborted on, so one bad product doesn't
// block the rest of the batch (spec.md §4.8: "does not abort the
// loop").
func (k *Keeper) publishBatch(ctx context.Context, products []catalog.ProductKey, cond market.Conditions, coverageByProduct map[catalog.ProductKey]float64, now time.Time) ([]PublishRecord, error) {
	var firstErr error
	records := make([]PublishRecord, 0, len(products))
	for _, product := range products {
		record, err := k.publishOne(ctx, product, cond, coverageByProduct[product], now)
		if err != nil {
			k.Log.Warn().Err(err).Str("product", product.Name()).Msg("product update failed")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		records = append(records, record)
		if k.StaleIndex != nil {
			_ = k.StaleIndex.Touch(ctx, product, now)
		}
	}
	return records, firstErr
}

func (k *Keeper) publishOne(ctx context.Context, product catalog.ProductKey, cond market.Conditions, coverageUSD float64, now time.Time) (PublishRecord, error) {
	multiplier := computeMultiplier(product, cond)

	payload := onchain.EncodeMultiplierUpdate(product, multiplier)
	if _, err := k.Signer.Submit(ctx, payload); err != nil {
		return PublishRecord{}, &onchain.OnChainError{Op: "update_multiplier", Err: err}
	}

	apr := k.BaseAPR[product.Asset]
	hedgeCosts := hedge.Quote(product, coverageUSD, k.venueInputs(product), now)
	swing := computeSwingPremium(product, coverageUSD, apr, DefaultTermDays, multiplier, hedgeCosts, now)

	swingPayload := onchain.EncodeSwingPremiumUpdate(
		product,
		int64(swing.BasePremium*100),
		int32(swing.RiskMultiplier*10000),
		int64(swing.TotalPremium*100),
	)
	if _, err := k.Signer.Submit(ctx, swingPayload); err != nil {
		return PublishRecord{}, &onchain.OnChainError{Op: "update_swing_premium", Err: err}
	}
	return PublishRecord{Product: product, Multiplier: multiplier, SwingPremium: swing}, nil
}

func (k *Keeper) venueInputs(product catalog.ProductKey) hedge.VenueInputs {
	var inputs hedge.VenueInputs
	if k.Venues == nil {
		return inputs
	}
	if v, ok := k.Venues.PolymarketOdds(product); ok {
		inputs.PolymarketOdds = &v
	}
	if v, ok := k.Venues.DailyFunding(product); ok {
		inputs.DailyFunding = &v
	}
	if v, ok := k.Venues.HourlyFunding(product); ok {
		inputs.HourlyFunding = &v
	}
	return inputs
}

func coverageUSDByProduct(policies []policy.Policy) map[catalog.ProductKey]float64 {
	out := make(map[catalog.ProductKey]float64)
	for _, p := range policies {
		out[p.ProductKey()] += float64(p.CoverageAmountCents) / 100
	}
	return out
}
