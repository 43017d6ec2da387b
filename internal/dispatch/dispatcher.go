package dispatch

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

// Host is the capability set the Dispatcher needs from its owner.
type Host interface {
	// Publish pushes the current state. A returned error means the attempt
	// accomplished nothing; the Dispatcher does not retry it.
	Publish(force bool) error
	// Urgent reports whether the shorter throttle interval applies.
	Urgent() bool
}

// HostFuncs adapts a pair of closures to Host. Nil fields are no-ops.
type HostFuncs struct {
	PublishFunc func(force bool) error
	UrgentFunc  func() bool
}

// Publish implements Host.
func (h HostFuncs) Publish(force bool) error {
	if h.PublishFunc == nil {
		return nil
	}
	return h.PublishFunc(force)
}

// Urgent implements Host.
func (h HostFuncs) Urgent() bool {
	return h.UrgentFunc != nil && h.UrgentFunc()
}

// Options configure a Dispatcher.
type Options struct {
	Clock   clock.Clock // nil uses the wall clock
	Policy  Policy      // nil uses NewAdaptivePolicy(0, 0)
	Logger  *zap.Logger
	Metrics *Metrics
	Enabled bool // initial state; a disabled Dispatcher ignores requests
}

// Stats is a point-in-time view of the dispatcher counters.
type Stats struct {
	Publishes        uint64
	Forced           uint64
	Throttled        uint64
	Failures         uint64
	Panics           uint64
	LastPublishAt    time.Time
	PendingForced    bool
	PendingThrottled bool
	InFlight         bool
	Enabled          bool
}

// Dispatcher coalesces update requests into a single-flight, throttled
// stream of Publish calls.
type Dispatcher struct {
	host    Host
	clock   clock.Clock
	policy  Policy
	logger  *zap.Logger
	metrics *Metrics

	inFlight atomic.Bool

	mu               sync.Mutex
	enabled          bool
	pendingThrottled bool
	pendingForced    bool
	scheduled        bool
	scheduledDueAt   time.Time
	lastPublishAt    time.Time
	stats            Stats
}

// New creates a Dispatcher that publishes through host.
func New(host Host, opts Options) *Dispatcher {
	if host == nil {
		host = HostFuncs{}
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.New()
	}
	policy := opts.Policy
	if policy == nil {
		policy = NewAdaptivePolicy(0, 0)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		host:    host,
		clock:   clk,
		policy:  policy,
		logger:  logger,
		metrics: opts.Metrics,
		enabled: opts.Enabled,
	}
}

// RequestUpdate records that the host state changed. It never runs Publish
// itself; the next Tick or Drain does.
func (d *Dispatcher) RequestUpdate(force bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.enabled {
		return
	}
	if force {
		d.pendingForced = true
	} else {
		d.pendingThrottled = true
	}
}

// ScheduleRecheckAfter arranges a forced publish no earlier than now+delay.
// Only the soonest outstanding recheck is kept.
func (d *Dispatcher) ScheduleRecheckAfter(delay time.Duration) {
	if delay < 0 {
		delay = 0
	}
	due := d.clock.Now().Add(delay)

	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.enabled {
		return
	}
	if d.scheduled && !due.Before(d.scheduledDueAt) {
		return
	}
	d.scheduled = true
	d.scheduledDueAt = due
	d.logger.Debug("recheck scheduled", zap.Duration("delay", delay), zap.Time("due", due))
}

// ScheduledDue returns the outstanding recheck time, if any.
func (d *Dispatcher) ScheduledDue() (time.Time, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.scheduledDueAt, d.scheduled
}

// Tick promotes a due recheck into a forced request and drains pending work.
// Concurrent callers that lose the in-flight race return immediately.
func (d *Dispatcher) Tick(now time.Time) {
	d.mu.Lock()
	if d.scheduled && !now.Before(d.scheduledDueAt) {
		d.scheduled = false
		d.scheduledDueAt = time.Time{}
		if d.enabled {
			d.pendingForced = true
		}
	}
	d.mu.Unlock()

	d.Drain()
}

// Drain runs the publish loop on the calling goroutine if nothing else is.
func (d *Dispatcher) Drain() {
	if !d.inFlight.CompareAndSwap(false, true) {
		return
	}
	for {
		force, pending := d.takePending()
		if !pending {
			d.inFlight.Store(false)
			// A request that landed between takePending and the Store above
			// would otherwise wait for the next external trigger.
			if !d.hasPending() || !d.inFlight.CompareAndSwap(false, true) {
				return
			}
			continue
		}
		if !d.admit(force) {
			continue
		}
		d.invoke(force)
	}
}

// SetEnabled starts or ends a session. Disabling drops every pending request
// and the scheduled recheck. Enabling does not publish.
func (d *Dispatcher) SetEnabled(enabled bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.enabled = enabled
	if !enabled {
		d.pendingForced = false
		d.pendingThrottled = false
		d.scheduled = false
		d.scheduledDueAt = time.Time{}
	}
}

// Enabled reports whether requests are currently accepted.
func (d *Dispatcher) Enabled() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.enabled
}

// Stats returns a copy of the dispatcher counters.
func (d *Dispatcher) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()

	s := d.stats
	s.LastPublishAt = d.lastPublishAt
	s.PendingForced = d.pendingForced
	s.PendingThrottled = d.pendingThrottled
	s.InFlight = d.inFlight.Load()
	s.Enabled = d.enabled
	return s
}

func (d *Dispatcher) takePending() (force, pending bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	force = d.pendingForced
	pending = d.pendingForced || d.pendingThrottled
	d.pendingForced = false
	d.pendingThrottled = false
	return force, pending
}

func (d *Dispatcher) hasPending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pendingForced || d.pendingThrottled
}

// admit applies the throttle gate. Only the goroutine holding inFlight calls it.
func (d *Dispatcher) admit(force bool) bool {
	now := d.clock.Now()
	if force {
		d.mu.Lock()
		d.lastPublishAt = now
		d.mu.Unlock()
		return true
	}

	interval := d.policy.Interval(d.host.Urgent())

	d.mu.Lock()
	defer d.mu.Unlock()

	if now.Sub(d.lastPublishAt) < interval {
		d.stats.Throttled++
		d.metrics.throttled()
		return false
	}
	d.lastPublishAt = now
	return true
}

func (d *Dispatcher) invoke(force bool) {
	start := d.clock.Now()
	err := d.safePublish(force)
	elapsed := d.clock.Since(start)

	d.mu.Lock()
	d.stats.Publishes++
	if force {
		d.stats.Forced++
	}
	if err != nil {
		d.stats.Failures++
	}
	d.mu.Unlock()

	d.metrics.published(force, elapsed, err)
	if err != nil {
		d.logger.Debug("publish accomplished nothing", zap.Bool("force", force), zap.Error(err))
	}
}

func (d *Dispatcher) safePublish(force bool) (err error) {
	defer func() {
		if r := recover(); r != nil {
			d.mu.Lock()
			d.stats.Panics++
			d.mu.Unlock()
			d.logger.Error("publish panicked", zap.Bool("force", force), zap.Any("panic", r))
			err = fmt.Errorf("publish panicked: %v", r)
		}
	}()
	return d.host.Publish(force)
}
