package keeper

import (
	"context"
	"time"

	"github.com/tonsurance/core/internal/catalog"
)

// TickInterval is the single timer period the adaptive scheduler runs
// on (spec.md §4.8: "a single timer fires every 5s").
const TickInterval = 5 * time.Second

// Strategy names which product set an iteration updates.
type Strategy string

const (
	StrategyFull  Strategy = "full"
	StrategyHot   Strategy = "hot"
	StrategyStale Strategy = "stale"
)

// fullUpdateAfter and hotUpdateAfter are the spec.md §4.8 staging
// thresholds: beyond 60s since the last full sweep, sweep everything;
// beyond 10s, refresh the hot set; otherwise just the stale set.
const (
	fullUpdateAfter = 60 * time.Second
	hotUpdateAfter  = 10 * time.Second
)

// selectStrategy picks this iteration's strategy from how long it has
// been since the last full update completed.
func selectStrategy(now, lastFull time.Time) Strategy {
	since := now.Sub(lastFull)
	switch {
	case since > fullUpdateAfter:
		return StrategyFull
	case since > hotUpdateAfter:
		return StrategyHot
	default:
		return StrategyStale
	}
}

// hotProductCount bounds the top-N-by-volume set a hot update covers.
const hotProductCount = 20

// VolumeTracker reports the products most frequently quoted recently,
// used to pick the hot set. The real implementation lives with the
// HTTP server's quote handler, outside this module's scope.
type VolumeTracker interface {
	TopByVolume(n int) []catalog.ProductKey
}

// StaleIndex reports which known products have not been updated
// recently, resolving spec.md §9's stale-product Open Question
// (internal/keeper/index.Store is the production implementation).
type StaleIndex interface {
	StaleSince(ctx context.Context, cutoff time.Time) ([]catalog.ProductKey, error)
}

// productsFor resolves a Strategy to the concrete product set an
// iteration should update.
func productsFor(ctx context.Context, strategy Strategy, volume VolumeTracker, staleIndex StaleIndex, now time.Time) ([]catalog.ProductKey, error) {
	switch strategy {
	case StrategyFull:
		return catalog.AllProducts(), nil
	case StrategyHot:
		return volume.TopByVolume(hotProductCount), nil
	default:
		return staleIndex.StaleSince(ctx, now.Add(-hotUpdateAfter))
	}
}
