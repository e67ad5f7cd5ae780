package types

import "time"

// Clock supplies time to the monitor and the ingest path.
//
// The real implementation returns time.Now values, which carry a monotonic
// reading, so timeout arithmetic is immune to wall-clock adjustments.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// NewTicker returns a ticker firing every d.
	NewTicker(d time.Duration) Ticker
}

// Ticker is the subset of time.Ticker used by the monitor.
type Ticker interface {
	// C returns the channel on which ticks are delivered.
	C() <-chan time.Time

	// Stop turns off the ticker.
	Stop()
}
