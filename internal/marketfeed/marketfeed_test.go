package marketfeed

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonsurance/core/internal/market"
)

func TestRunOnceWithNoClientsPublishesEmptyConditions(t *testing.T) {
	f := &Fetcher{
		Cache: &market.Cache[market.Conditions]{},
		Log:   zerolog.Nop(),
	}

	require.NoError(t, f.RunOnce(context.Background()))

	cond, ok := f.Cache.Load()
	require.True(t, ok)
	assert.Empty(t, cond.StablecoinPrices)
	assert.Empty(t, cond.BridgeHealthScores)
	assert.Empty(t, cond.ChainGasPrices)
	assert.Zero(t, cond.OverallVolatilityIndex)
	assert.False(t, cond.Timestamp.IsZero())
}

func TestRunOnceWithoutOracleLeavesVolatilityZero(t *testing.T) {
	f := &Fetcher{
		Cache: &market.Cache[market.Conditions]{},
		Log:   zerolog.Nop(),
	}

	require.NoError(t, f.RunOnce(context.Background()))

	cond, _ := f.Cache.Load()
	assert.Equal(t, 0.0, cond.OverallVolatilityIndex)
}

func TestRunOnceWithPersistWritesSnapshotToDisk(t *testing.T) {
	store := market.NewSnapshotStore(filepath.Join(t.TempDir(), "snapshot.msgpack"))
	f := &Fetcher{
		Cache:   &market.Cache[market.Conditions]{},
		Log:     zerolog.Nop(),
		Persist: store,
	}

	require.NoError(t, f.RunOnce(context.Background()))

	_, ok, err := store.Load()
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRunOncePublishesIntoEmptyCache(t *testing.T) {
	f := &Fetcher{
		Cache: &market.Cache[market.Conditions]{},
		Log:   zerolog.Nop(),
	}

	_, ok := f.Cache.Load()
	require.False(t, ok)

	require.NoError(t, f.RunOnce(context.Background()))

	_, ok = f.Cache.Load()
	require.True(t, ok)
}
