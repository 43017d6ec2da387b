package dispatch

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "hudsync"
	subsystem = "dispatch"
)

// Metrics holds the dispatcher's prometheus collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	publishes     *prometheus.CounterVec
	throttledHits prometheus.Counter
	errors        prometheus.Counter
	duration      prometheus.Histogram
}

// NewMetrics registers the dispatcher collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		publishes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "publishes_total",
				Help:      "Publish invocations by mode (forced or throttled)",
			},
			[]string{"mode"},
		),
		throttledHits: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "throttled_total",
				Help:      "Non-forced requests dropped by the throttle gate",
			},
		),
		errors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "publish_errors_total",
				Help:      "Publish invocations that returned an error",
			},
		),
		duration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "publish_duration_seconds",
				Help:      "Time spent inside Publish",
				Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
			},
		),
	}
}

func (m *Metrics) published(force bool, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	mode := "throttled"
	if force {
		mode = "forced"
	}
	m.publishes.WithLabelValues(mode).Inc()
	m.duration.Observe(elapsed.Seconds())
	if err != nil {
		m.errors.Inc()
	}
}

func (m *Metrics) throttled() {
	if m == nil {
		return
	}
	m.throttledHits.Inc()
}
