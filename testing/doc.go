// Package testing provides test utilities for the presence library.
//
// It follows Go's convention of providing testing utilities in a dedicated
// package (similar to net/http/httptest).
//
// Key utilities:
//   - StartEmbeddedNATS: Single NATS server with JetStream
//   - CreateJetStreamKV: Convenience wrapper for KV bucket creation
//   - FakeClock: Manually advanced clock whose tickers fire on Advance
//   - RecordingSink: PresenceSink that records every call, with optional failures
//   - NewTestLogger: Logger that writes through t.Logf
//
// Example usage:
//
//	import (
//	    "testing"
//	    presencetest "github.com/arloliu/presence/testing"
//	)
//
//	func TestTimeout(t *testing.T) {
//	    clk := presencetest.NewFakeClock(time.Now())
//	    sink := presencetest.NewRecordingSink()
//	    // Build a manager with presence.WithClock(clk) and drive clk.Advance
//	}
package testing
