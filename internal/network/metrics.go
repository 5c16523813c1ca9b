package network

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Lookup outcomes reported by Metrics.
const (
	outcomeFound        = "found"
	outcomeShuttingDown = "shutting_down"
	outcomeNotStarted   = "not_started"
	outcomeCanceled     = "canceled"
)

// Metrics instruments a NetworkClient. A nil *Metrics is a no-op.
type Metrics struct {
	lookups       *prometheus.CounterVec
	discoveryWait *prometheus.HistogramVec
	forwardErrors *prometheus.CounterVec
	handlers      *prometheus.GaugeVec
}

// NewMetrics creates the client metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "validator",
			Subsystem: "network",
			Name:      "lookups_total",
			Help:      "Handler lookups by role and outcome",
		}, []string{"role", "outcome"}),
		discoveryWait: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "validator",
			Subsystem: "network",
			Name:      "discovery_wait_seconds",
			Help:      "Time spent resolving a local handler",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 2, 5, 10},
		}, []string{"role"}),
		forwardErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "validator",
			Subsystem: "network",
			Name:      "forward_errors_total",
			Help:      "Calls whose resolved handler returned an error",
		}, []string{"method"}),
		handlers: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "validator",
			Subsystem: "network",
			Name:      "registered_handlers",
			Help:      "Local handlers currently registered",
		}, []string{"role"}),
	}

	if reg != nil {
		reg.MustRegister(m.lookups, m.discoveryWait, m.forwardErrors, m.handlers)
	}
	return m
}

func (m *Metrics) observeLookup(r role, outcome string, waited time.Duration) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(r.String(), outcome).Inc()
	if outcome == outcomeFound {
		m.discoveryWait.WithLabelValues(r.String()).Observe(waited.Seconds())
	}
}

func (m *Metrics) forwardError(method string) {
	if m == nil {
		return
	}
	m.forwardErrors.WithLabelValues(method).Inc()
}

func (m *Metrics) setHandlers(r role, n int) {
	if m == nil {
		return
	}
	m.handlers.WithLabelValues(r.String()).Set(float64(n))
}
