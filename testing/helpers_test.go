package testing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFakeClock(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("advance moves now", func(t *testing.T) {
		clk := NewFakeClock(start)
		clk.Advance(3 * time.Second)
		require.Equal(t, start.Add(3*time.Second), clk.Now())
	})

	t.Run("ticker fires once per period and drops unread ticks", func(t *testing.T) {
		clk := NewFakeClock(start)
		tk := clk.NewTicker(time.Second)
		require.Equal(t, 1, clk.TickerCount())

		clk.Advance(500 * time.Millisecond)
		require.Empty(t, tk.C())

		clk.Advance(500 * time.Millisecond)
		require.Equal(t, start.Add(time.Second), <-tk.C())

		clk.Advance(5 * time.Second)
		require.Len(t, tk.C(), 1)
		require.Equal(t, start.Add(2*time.Second), <-tk.C())

		tk.Stop()
		require.Zero(t, clk.TickerCount())
	})
}

func TestRecordingSink(t *testing.T) {
	t.Run("records calls in order", func(t *testing.T) {
		s := NewRecordingSink()
		require.NoError(t, s.SetOffline(t.Context()))
		require.NoError(t, s.SetOnline(t.Context(), 3))

		require.Equal(t, []SinkCall{{Online: false}, {Online: true, PlayerCount: 3}}, s.Calls())
		last, ok := s.Last()
		require.True(t, ok)
		require.Equal(t, 3, last.PlayerCount)
	})

	t.Run("fails the configured number of calls", func(t *testing.T) {
		s := NewRecordingSink()
		s.FailNext(1, nil)

		require.ErrorIs(t, s.SetOnline(t.Context(), 1), ErrInjected)
		require.NoError(t, s.SetOnline(t.Context(), 1))
		require.Equal(t, 2, s.Len())
	})

	t.Run("blocked calls honor context", func(t *testing.T) {
		s := NewRecordingSink()
		s.Block()

		ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
		defer cancel()
		err := s.SetOffline(ctx)
		require.True(t, errors.Is(err, context.DeadlineExceeded))
		require.Zero(t, s.Len())

		s.Release()
		require.NoError(t, s.SetOffline(t.Context()))
	})
}
