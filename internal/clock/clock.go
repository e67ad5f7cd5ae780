// Package clock provides the wall clock used outside of tests.
package clock

import (
	"time"

	"github.com/arloliu/presence/types"
)

// Real implements types.Clock with the time package.
type Real struct{}

// Compile-time assertion that Real implements types.Clock.
var _ types.Clock = Real{}

// New returns the real clock.
func New() Real {
	return Real{}
}

// Now returns time.Now(), monotonic reading included.
func (Real) Now() time.Time {
	return time.Now()
}

// NewTicker wraps time.NewTicker.
func (Real) NewTicker(d time.Duration) types.Ticker {
	return &ticker{t: time.NewTicker(d)}
}

type ticker struct {
	t *time.Ticker
}

func (t *ticker) C() <-chan time.Time {
	return t.t.C
}

func (t *ticker) Stop() {
	t.t.Stop()
}
