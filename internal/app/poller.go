package app

import (
	"context"
	"time"

	"github.com/five82/hudsync/internal/dispatch"
	"github.com/five82/hudsync/internal/state"
)

const defaultPollInterval = 250 * time.Millisecond

// statsSource is satisfied by *dispatch.Dispatcher.
type statsSource interface {
	Stats() dispatch.Stats
}

// StartPoller launches a background goroutine that copies dispatcher counters
// into the store at a fixed cadence, so throttled and failed requests show up
// between publishes. It returns immediately.
func StartPoller(ctx context.Context, store *state.Store, source statsSource, interval time.Duration) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			refresh(store, source)
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

func refresh(store *state.Store, source statsSource) {
	stats := source.Stats()
	store.Update(func(snap *state.Snapshot) {
		// A publish in flight may already have counted itself.
		if stats.Publishes > snap.Publishes {
			snap.Publishes = stats.Publishes
		}
		if stats.Forced > snap.Forced {
			snap.Forced = stats.Forced
		}
		snap.Throttled = stats.Throttled
		snap.Failures = stats.Failures
		snap.Enabled = stats.Enabled
	})
}
