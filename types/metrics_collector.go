package types

// MetricsCollector defines methods for recording operational metrics.
//
// Implementations should be non-blocking and handle failures gracefully.
// Methods are called from request handlers and internal goroutines and must be
// thread-safe.
type MetricsCollector interface {
	IngestMetrics
	MonitorMetrics
	ReconcilerMetrics
}

// IngestMetrics defines metrics for inbound heartbeat traffic.
type IngestMetrics interface {
	// RecordHeartbeat records one accepted heartbeat.
	RecordHeartbeat()

	// RecordPlayerCount records an accepted player count update.
	//
	// Parameters:
	//   - count: The reported player count
	RecordPlayerCount(count int)

	// RecordRejectedUpdate records an update rejected as invalid.
	//
	// Parameters:
	//   - reason: Rejection reason ("invalid_count", "not_found")
	RecordRejectedUpdate(reason string)
}

// MonitorMetrics defines metrics for liveness detection.
type MonitorMetrics interface {
	// RecordStateTransition records a liveness transition.
	RecordStateTransition(from, to LivenessState)

	// RecordHeartbeatAge sets the time since the last heartbeat (gauge metric).
	//
	// Parameters:
	//   - seconds: Age in seconds, or -1 if no heartbeat was ever seen
	RecordHeartbeatAge(seconds float64)
}

// ReconcilerMetrics defines metrics for sink application.
type ReconcilerMetrics interface {
	// RecordSinkCall records one sink application.
	//
	// Parameters:
	//   - op: "set_online" or "set_offline"
	//   - success: true if the sink accepted the update
	//   - duration: Time taken in seconds
	RecordSinkCall(op string, success bool, duration float64)

	// RecordCoalescedWrites records how many store writes one sink call covered.
	RecordCoalescedWrites(count int)

	// RecordSinkRetry records a scheduled retry after a sink failure.
	//
	// Parameters:
	//   - delay: Backoff delay in seconds
	RecordSinkRetry(delay float64)
}
