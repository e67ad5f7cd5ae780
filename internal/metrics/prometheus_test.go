package metrics

import (
	"testing"

	"github.com/arloliu/presence/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestNewPrometheus_Defaults(t *testing.T) {
	p := NewPrometheus(nil, "")

	require.Equal(t, prometheus.DefaultRegisterer, p.reg)
	require.Equal(t, "presence", p.namespace)
}

func TestPrometheusCollector_LazyRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_ = NewPrometheus(reg, "test")

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Empty(t, families, "nothing is registered until a metric is recorded")
}

func TestPrometheusCollector_Records(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg, "test")

	t.Run("ingest counters and gauge", func(t *testing.T) {
		p.RecordHeartbeat()
		p.RecordHeartbeat()
		p.RecordPlayerCount(7)
		p.RecordRejectedUpdate("invalid_count")

		require.InDelta(t, 2, testutil.ToFloat64(p.heartbeats), 0)
		require.InDelta(t, 7, testutil.ToFloat64(p.playerCount), 0)
		require.InDelta(t, 1, testutil.ToFloat64(p.playerUpdates), 0)
		require.InDelta(t, 1, testutil.ToFloat64(p.rejectedUpdate.WithLabelValues("invalid_count")), 0)
	})

	t.Run("state transitions update the state gauge", func(t *testing.T) {
		p.RecordStateTransition(types.StateUnknown, types.StateOnline)
		require.InDelta(t, float64(types.StateOnline), testutil.ToFloat64(p.livenessState), 0)

		p.RecordStateTransition(types.StateOnline, types.StateOffline)
		require.InDelta(t, float64(types.StateOffline), testutil.ToFloat64(p.livenessState), 0)
		require.InDelta(t, 1, testutil.ToFloat64(p.transitions.WithLabelValues("Online", "Offline")), 0)

		p.RecordHeartbeatAge(3.5)
		require.InDelta(t, 3.5, testutil.ToFloat64(p.heartbeatAge), 0)
	})

	t.Run("sink calls split by result", func(t *testing.T) {
		p.RecordSinkCall("set_online", true, 0.02)
		p.RecordSinkCall("set_online", false, 0.03)
		p.RecordSinkCall("set_online", true, 0.01)
		p.RecordSinkRetry(1)

		require.InDelta(t, 2, testutil.ToFloat64(p.sinkCalls.WithLabelValues("set_online", "success")), 0)
		require.InDelta(t, 1, testutil.ToFloat64(p.sinkCalls.WithLabelValues("set_online", "failure")), 0)
		require.InDelta(t, 1, testutil.ToFloat64(p.sinkRetries), 0)
	})

	t.Run("all families are gathered", func(t *testing.T) {
		p.RecordCoalescedWrites(100)

		families, err := reg.Gather()
		require.NoError(t, err)

		names := make(map[string]bool, len(families))
		for _, f := range families {
			names[f.GetName()] = true
		}
		require.True(t, names["test_ingest_heartbeats_total"])
		require.True(t, names["test_monitor_state"])
		require.True(t, names["test_reconciler_coalesced_writes"])
		require.True(t, names["test_reconciler_sink_call_duration_seconds"])
	})
}
