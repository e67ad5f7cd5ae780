package metrics

import (
	"sync"

	"github.com/arloliu/presence/types"
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
//
// Collectors are created and registered lazily on first use, so constructing
// a PrometheusCollector that is never exercised leaves the registry untouched.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	// Ingest metrics
	heartbeats     prometheus.Counter
	playerCount    prometheus.Gauge
	playerUpdates  prometheus.Counter
	rejectedUpdate *prometheus.CounterVec

	// Monitor metrics
	transitions   *prometheus.CounterVec
	livenessState prometheus.Gauge
	heartbeatAge  prometheus.Gauge

	// Reconciler metrics
	sinkCalls        *prometheus.CounterVec
	sinkCallDuration *prometheus.HistogramVec
	coalescedWrites  prometheus.Histogram
	sinkRetries      prometheus.Counter
	sinkRetryBackoff prometheus.Histogram
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer interface (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Prometheus metrics namespace (defaults to "presence" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "presence"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.heartbeats = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "ingest",
			Name:      "heartbeats_total",
			Help:      "Total heartbeats accepted.",
		})
		p.playerCount = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "ingest",
			Name:      "player_count",
			Help:      "Last reported player count.",
		})
		p.playerUpdates = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "ingest",
			Name:      "player_updates_total",
			Help:      "Total player count updates accepted.",
		})
		p.rejectedUpdate = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "ingest",
			Name:      "rejected_total",
			Help:      "Total rejected ingest requests by reason (invalid_count, not_found).",
		}, []string{"reason"})

		p.transitions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "monitor",
			Name:      "state_transitions_total",
			Help:      "Total liveness transitions by source and target state.",
		}, []string{"from", "to"})
		p.livenessState = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "monitor",
			Name:      "state",
			Help:      "Current liveness state (0=unknown,1=online,2=offline).",
		})
		p.heartbeatAge = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "monitor",
			Name:      "heartbeat_age_seconds",
			Help:      "Seconds since the last heartbeat (-1 before the first one).",
		})

		p.sinkCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "reconciler",
			Name:      "sink_calls_total",
			Help:      "Total sink applications by operation and result (success,failure).",
		}, []string{"op", "result"})
		p.sinkCallDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "reconciler",
			Name:      "sink_call_duration_seconds",
			Help:      "Latency of sink applications in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms .. ~5s
		}, []string{"op"})
		p.coalescedWrites = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "reconciler",
			Name:      "coalesced_writes",
			Help:      "Store writes folded into a single sink application.",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250},
		})
		p.sinkRetries = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "reconciler",
			Name:      "sink_retries_total",
			Help:      "Total retries scheduled after sink failures.",
		})
		p.sinkRetryBackoff = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "reconciler",
			Name:      "sink_retry_backoff_seconds",
			Help:      "Backoff delays scheduled after sink failures in seconds.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		})

		p.reg.MustRegister(
			p.heartbeats,
			p.playerCount,
			p.playerUpdates,
			p.rejectedUpdate,
			p.transitions,
			p.livenessState,
			p.heartbeatAge,
			p.sinkCalls,
			p.sinkCallDuration,
			p.coalescedWrites,
			p.sinkRetries,
			p.sinkRetryBackoff,
		)
	})
}

// IngestMetrics implementation

// RecordHeartbeat increments the accepted heartbeat counter.
func (p *PrometheusCollector) RecordHeartbeat() {
	p.ensureRegistered()
	p.heartbeats.Inc()
}

// RecordPlayerCount sets the player count gauge and counts the update.
func (p *PrometheusCollector) RecordPlayerCount(count int) {
	p.ensureRegistered()
	p.playerCount.Set(float64(count))
	p.playerUpdates.Inc()
}

// RecordRejectedUpdate increments the rejection counter for reason.
func (p *PrometheusCollector) RecordRejectedUpdate(reason string) {
	p.ensureRegistered()
	p.rejectedUpdate.WithLabelValues(reason).Inc()
}

// MonitorMetrics implementation

// RecordStateTransition counts the transition and updates the state gauge.
func (p *PrometheusCollector) RecordStateTransition(from, to types.LivenessState) {
	p.ensureRegistered()
	p.transitions.WithLabelValues(from.String(), to.String()).Inc()
	p.livenessState.Set(float64(to))
}

// RecordHeartbeatAge sets the heartbeat age gauge.
func (p *PrometheusCollector) RecordHeartbeatAge(seconds float64) {
	p.ensureRegistered()
	p.heartbeatAge.Set(seconds)
}

// ReconcilerMetrics implementation

// RecordSinkCall counts a sink application and observes its latency.
func (p *PrometheusCollector) RecordSinkCall(op string, success bool, duration float64) {
	p.ensureRegistered()
	result := "failure"
	if success {
		result = "success"
	}
	p.sinkCalls.WithLabelValues(op, result).Inc()
	p.sinkCallDuration.WithLabelValues(op).Observe(duration)
}

// RecordCoalescedWrites observes how many writes one application covered.
func (p *PrometheusCollector) RecordCoalescedWrites(count int) {
	p.ensureRegistered()
	p.coalescedWrites.Observe(float64(count))
}

// RecordSinkRetry counts a scheduled retry and observes its delay.
func (p *PrometheusCollector) RecordSinkRetry(delay float64) {
	p.ensureRegistered()
	p.sinkRetries.Inc()
	p.sinkRetryBackoff.Observe(delay)
}

