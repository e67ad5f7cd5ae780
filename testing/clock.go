package testing

import (
	"sync"
	"time"

	"github.com/arloliu/presence/types"
)

// FakeClock is a types.Clock that only moves when Advance is called.
//
// Tickers created from a FakeClock fire once per elapsed period during
// Advance. Like time.Ticker, a tick is dropped when the previous one has not
// been received yet.
type FakeClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*fakeTicker
}

var _ types.Clock = (*FakeClock)(nil)

// NewFakeClock creates a fake clock set to start.
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

// Now returns the fake current time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

// NewTicker creates a ticker driven by Advance.
func (c *FakeClock) NewTicker(d time.Duration) types.Ticker {
	if d <= 0 {
		panic("non-positive interval for FakeClock.NewTicker")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	tk := &fakeTicker{
		clock:  c,
		period: d,
		next:   c.now.Add(d),
		ch:     make(chan time.Time, 1),
	}
	c.tickers = append(c.tickers, tk)

	return tk
}

// Advance moves the clock forward by d, firing due tickers in order.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	target := c.now.Add(d)
	for _, tk := range c.tickers {
		for !tk.next.After(target) {
			select {
			case tk.ch <- tk.next:
			default:
			}
			tk.next = tk.next.Add(tk.period)
		}
	}
	c.now = target
}

// TickerCount returns the number of active tickers. Tests use it to wait
// until a component has started its loop.
func (c *FakeClock) TickerCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.tickers)
}

type fakeTicker struct {
	clock  *FakeClock
	period time.Duration
	next   time.Time
	ch     chan time.Time
}

func (t *fakeTicker) C() <-chan time.Time {
	return t.ch
}

func (t *fakeTicker) Stop() {
	c := t.clock
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, tk := range c.tickers {
		if tk == t {
			c.tickers = append(c.tickers[:i], c.tickers[i+1:]...)
			return
		}
	}
}
