package dispatch

import (
	"context"
	"time"
)

// DefaultTickInterval is the driver cadence used when none is given.
const DefaultTickInterval = 50 * time.Millisecond

// Run calls Tick on a fixed cadence until ctx is cancelled. It blocks.
func (d *Dispatcher) Run(ctx context.Context, every time.Duration) {
	if every <= 0 {
		every = DefaultTickInterval
	}
	ticker := d.clock.Ticker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			d.Tick(now)
		}
	}
}

// Start launches Run in a background goroutine. It returns immediately.
func (d *Dispatcher) Start(ctx context.Context, every time.Duration) {
	go d.Run(ctx, every)
}
