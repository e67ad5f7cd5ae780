package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestJitterBackoff_StartsAtBase(t *testing.T) {
	require.Equal(t, time.Second, jitterBackoff(0, time.Second, 2, 30*time.Second, newRetryRNG(1)))
	require.Equal(t, time.Second, jitterBackoff(-5, time.Second, 2, 30*time.Second, nil))
}

func TestJitterBackoff_BoundsAndCapStickiness(t *testing.T) {
	base := time.Second
	capDur := 30 * time.Second
	rng := newRetryRNG(42)

	prev := time.Duration(0)
	for i := 0; i < 20; i++ {
		next := jitterBackoff(prev, base, 2, capDur, rng)
		require.GreaterOrEqual(t, next, base)
		require.LessOrEqual(t, next, capDur)
		prev = next
	}

	for i := 0; i < 5; i++ {
		next := jitterBackoff(capDur, base, 2, capDur, rng)
		require.GreaterOrEqual(t, next, base)
		require.LessOrEqual(t, next, capDur)
	}
}

func TestJitterBackoff_CapLessThanBase(t *testing.T) {
	capDur := 100 * time.Millisecond

	require.Equal(t, capDur, jitterBackoff(0, time.Second, 2, capDur, nil))
	require.Equal(t, capDur, jitterBackoff(time.Second, time.Second, 2, capDur, nil))
}

func TestJitterBackoff_Deterministic(t *testing.T) {
	seq := func(seed int64) []time.Duration {
		rng := newRetryRNG(seed)
		out := make([]time.Duration, 0, 8)
		prev := time.Duration(0)
		for i := 0; i < 8; i++ {
			prev = jitterBackoff(prev, 100*time.Millisecond, 2, 5*time.Second, rng)
			out = append(out, prev)
		}

		return out
	}

	require.Equal(t, seq(7), seq(7))
	require.Nil(t, newRetryRNG(0))
}
