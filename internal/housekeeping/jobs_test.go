package housekeeping

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonsurance/core/internal/events"
)

func TestDedupCleanupJobName(t *testing.T) {
	assert.Equal(t, "dedup_cleanup", DedupCleanupJob{}.Name())
}

func TestDedupCleanupJobDropsExpiredEntries(t *testing.T) {
	d := events.NewDeduper(time.Minute)
	base := time.Unix(1700000000, 0)
	d.Allow("alert-1", base)

	called := base.Add(2 * time.Minute)
	job := DedupCleanupJob{Deduper: d, Now: func() time.Time { return called }}
	require.NoError(t, job.Run())

	// After cleanup, the same key is allowed again immediately (its
	// prior record was dropped, not merely expired-but-present).
	assert.True(t, d.Allow("alert-1", called))
}

func TestDedupCleanupJobDefaultsToRealClockWhenNowNil(t *testing.T) {
	d := events.NewDeduper(time.Hour)
	job := DedupCleanupJob{Deduper: d}
	assert.NoError(t, job.Run())
}

type fakePruner struct {
	calledWith time.Time
	removed    int64
	err        error
}

func (f *fakePruner) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	f.calledWith = cutoff
	return f.removed, f.err
}

func TestIndexPruneJobName(t *testing.T) {
	assert.Equal(t, "keeper_index_prune", IndexPruneJob{}.Name())
}

func TestIndexPruneJobCallsPruneWithRetentionCutoff(t *testing.T) {
	pruner := &fakePruner{removed: 5}
	now := time.Unix(1700000000, 0)
	job := IndexPruneJob{Index: pruner, Retention: 24 * time.Hour, Now: func() time.Time { return now }}

	require.NoError(t, job.Run())
	assert.Equal(t, now.Add(-24*time.Hour), pruner.calledWith)
}

func TestIndexPruneJobPropagatesPruneError(t *testing.T) {
	pruner := &fakePruner{err: assert.AnError}
	job := IndexPruneJob{Index: pruner, Retention: time.Hour, Now: func() time.Time { return time.Unix(0, 0) }}
	assert.ErrorIs(t, job.Run(), assert.AnError)
}
