package metrics

import (
	"testing"

	"github.com/arloliu/presence/types"
	"github.com/stretchr/testify/require"
)

func TestNewNop(t *testing.T) {
	metrics := NewNop()

	require.NotNil(t, metrics)
	require.IsType(t, &NopMetrics{}, metrics)
}

func TestNopMetrics_Ingest(t *testing.T) {
	metrics := NewNop()

	require.NotPanics(t, func() {
		metrics.RecordHeartbeat()
		metrics.RecordPlayerCount(0)
		metrics.RecordPlayerCount(-1)
		metrics.RecordRejectedUpdate("invalid_count")
		metrics.RecordRejectedUpdate("")
	})
}

func TestNopMetrics_Monitor(t *testing.T) {
	metrics := NewNop()

	require.NotPanics(t, func() {
		metrics.RecordStateTransition(types.StateUnknown, types.StateOnline)
		metrics.RecordStateTransition(types.LivenessState(99), types.LivenessState(100))
		metrics.RecordHeartbeatAge(-1)
		metrics.RecordHeartbeatAge(12.5)
	})
}

func TestNopMetrics_Reconciler(t *testing.T) {
	metrics := NewNop()

	require.NotPanics(t, func() {
		metrics.RecordSinkCall("set_online", true, 0.01)
		metrics.RecordSinkCall("set_offline", false, -1)
		metrics.RecordCoalescedWrites(100)
		metrics.RecordSinkRetry(2.5)
	})
}

func TestNopMetrics_InterfaceCompliance(t *testing.T) {
	var _ types.MetricsCollector = NewNop()
}
