package dispatch

import (
	"sync/atomic"
	"time"
)

const (
	// DefaultUrgentInterval applies while the host reports an urgent condition.
	DefaultUrgentInterval = 100 * time.Millisecond
	// DefaultIdleInterval applies otherwise.
	DefaultIdleInterval = 500 * time.Millisecond
)

// Policy selects the minimum spacing between two non-forced publishes.
type Policy interface {
	Interval(urgent bool) time.Duration
}

// PolicyFunc adapts a function to Policy.
type PolicyFunc func(urgent bool) time.Duration

// Interval implements Policy.
func (f PolicyFunc) Interval(urgent bool) time.Duration {
	return f(urgent)
}

// AdaptivePolicy uses one interval while urgent and another while idle. Both
// can be replaced at runtime.
type AdaptivePolicy struct {
	urgent atomic.Int64
	idle   atomic.Int64
}

// NewAdaptivePolicy returns a policy; non-positive values use the defaults.
func NewAdaptivePolicy(urgent, idle time.Duration) *AdaptivePolicy {
	p := &AdaptivePolicy{}
	p.Set(urgent, idle)
	return p
}

// Set replaces both intervals. Non-positive values use the defaults.
func (p *AdaptivePolicy) Set(urgent, idle time.Duration) {
	if urgent <= 0 {
		urgent = DefaultUrgentInterval
	}
	if idle <= 0 {
		idle = DefaultIdleInterval
	}
	p.urgent.Store(int64(urgent))
	p.idle.Store(int64(idle))
}

// Interval implements Policy.
func (p *AdaptivePolicy) Interval(urgent bool) time.Duration {
	if urgent {
		return time.Duration(p.urgent.Load())
	}
	return time.Duration(p.idle.Load())
}
