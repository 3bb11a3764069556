package reliability

import (
	"context"
	"time"
)

// Loop runs a function on a fixed interval until its context is
// cancelled, the way the teacher's reconnectLoop runs a select over a
// timer and a stop channel (internal/clients/tradernet/websocket_client.go),
// generalized from "retry until connected" to "run forever on a tick".
//
// Ordering and overrun handling follow spec.md §4.7: iterations never
// interleave, and if one iteration overruns Interval the next is
// scheduled immediately on completion rather than queuing a backlog.
// Each iteration's context is cancelled once HardCap elapses. Loop
// calls fn synchronously and waits for it to return before taking the
// next tick, so an fn that ignores its context can still overrun
// HardCap.
type Loop struct {
	Interval time.Duration
	HardCap  time.Duration
}

// Run invokes fn once per Interval until ctx is cancelled. fn receives
// a context that is cancelled either when ctx is cancelled or when
// the iteration's HardCap elapses, whichever comes first.
func (l Loop) Run(ctx context.Context, fn func(context.Context)) {
	ticker := time.NewTicker(l.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.runOnce(ctx, fn)
		}
	}
}

func (l Loop) runOnce(ctx context.Context, fn func(context.Context)) {
	iterCtx := ctx
	if l.HardCap > 0 {
		var cancel context.CancelFunc
		iterCtx, cancel = context.WithTimeout(ctx, l.HardCap)
		defer cancel()
	}
	fn(iterCtx)
}
