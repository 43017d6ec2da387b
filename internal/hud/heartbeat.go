package hud

import (
	"context"
	"time"
)

// DefaultHeartbeat is the cadence of forced resyncs during a session.
const DefaultHeartbeat = 3 * time.Second

// RunHeartbeat calls Heartbeat on a fixed cadence until ctx is done.
func (s *Session) RunHeartbeat(ctx context.Context, every time.Duration) {
	if every <= 0 {
		every = DefaultHeartbeat
	}
	ticker := s.clock.Ticker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Heartbeat()
		}
	}
}

// StartHeartbeat launches RunHeartbeat in a background goroutine.
func (s *Session) StartHeartbeat(ctx context.Context, every time.Duration) {
	go s.RunHeartbeat(ctx, every)
}
