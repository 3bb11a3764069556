package housekeeping

import (
	"context"
	"time"

	"github.com/tonsurance/core/internal/events"
)

// DedupCleanupJob drops expired entries from an events.Deduper so its
// seen-key map does not grow without bound across the process
// lifetime (events.Deduper.Cleanup's own doc comment names this as
// its caller's responsibility).
type DedupCleanupJob struct {
	Deduper *events.Deduper
	Now     func() time.Time
}

func (j DedupCleanupJob) Name() string { return "dedup_cleanup" }

func (j DedupCleanupJob) Run() error {
	now := time.Now
	if j.Now != nil {
		now = j.Now
	}
	j.Deduper.Cleanup(now())
	return nil
}

// StaleIndexPruner is the subset of index.Store a prune job needs.
type StaleIndexPruner interface {
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}

// IndexPruneJob deletes product_updates rows older than Retention,
// keeping internal/keeper/index.Store's table from growing forever.
type IndexPruneJob struct {
	Index     StaleIndexPruner
	Retention time.Duration
	Now       func() time.Time
}

func (j IndexPruneJob) Name() string { return "keeper_index_prune" }

func (j IndexPruneJob) Run() error {
	now := time.Now
	if j.Now != nil {
		now = j.Now
	}
	_, err := j.Index.Prune(context.Background(), now().Add(-j.Retention))
	return err
}
