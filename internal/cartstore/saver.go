package cartstore

import (
	"context"
	"time"
)

// The write-through mirror is deliberate last-writer-wins: mutations mark
// the store dirty and a single saver goroutine snapshots and pushes the
// whole cart after a debounce window, so bursts of mutations collapse into
// one replace instead of racing unawaited requests.

// markDirty coalesces: at most one mark is ever pending.
func (s *Store) markDirty() {
	select {
	case s.dirty <- struct{}{}:
	default:
	}
}

// Run drives the background saver until ctx is cancelled. Call it from a
// goroutine owned by the session; a store without a running saver still
// works, mutations just stay local until an explicit Flush or SaveToServer.
func (s *Store) Run(ctx context.Context) error {
	timer := time.NewTimer(s.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.dirty:
			timer.Reset(s.debounce)
			select {
			case <-ctx.Done():
				if !timer.Stop() {
					<-timer.C
				}
				return ctx.Err()
			case <-timer.C:
			}
			// Absorb marks that arrived during the debounce window; the
			// snapshot below covers them.
			select {
			case <-s.dirty:
			default:
			}
			s.SaveToServer(ctx)
		}
	}
}

// Flush pushes immediately if a mutation is pending, bypassing the debounce.
// One-shot callers (the CLI) use this instead of running the saver loop.
func (s *Store) Flush(ctx context.Context) {
	select {
	case <-s.dirty:
		s.SaveToServer(ctx)
	default:
	}
}
