// Package metrics provides types.MetricsCollector implementations.
package metrics

import "github.com/arloliu/presence/types"

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. Useful for testing or when external
// metrics collection is used.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
//
// Example:
//
//	mgr, _ := presence.NewManager(&cfg, sink, presence.WithMetrics(metrics.NewNop()))
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// IngestMetrics implementation

// RecordHeartbeat discards the heartbeat metric.
func (n *NopMetrics) RecordHeartbeat() {
	// No-op
}

// RecordPlayerCount discards the player count metric.
func (n *NopMetrics) RecordPlayerCount(_ /* count */ int) {
	// No-op
}

// RecordRejectedUpdate discards the rejected update metric.
func (n *NopMetrics) RecordRejectedUpdate(_ /* reason */ string) {
	// No-op
}

// MonitorMetrics implementation

// RecordStateTransition discards the state transition metric.
func (n *NopMetrics) RecordStateTransition(_ /* from */, _ /* to */ types.LivenessState) {
	// No-op
}

// RecordHeartbeatAge discards the heartbeat age metric.
func (n *NopMetrics) RecordHeartbeatAge(_ /* seconds */ float64) {
	// No-op
}

// ReconcilerMetrics implementation

// RecordSinkCall discards the sink call metric.
func (n *NopMetrics) RecordSinkCall(_ /* op */ string, _ /* success */ bool, _ /* duration */ float64) {
	// No-op
}

// RecordCoalescedWrites discards the coalesced writes metric.
func (n *NopMetrics) RecordCoalescedWrites(_ /* count */ int) {
	// No-op
}

// RecordSinkRetry discards the sink retry metric.
func (n *NopMetrics) RecordSinkRetry(_ /* delay */ float64) {
	// No-op
}
