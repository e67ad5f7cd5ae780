// Package heartbeat detects a silent game server.
//
// The Monitor wakes every check interval and asks the presence store whether
// the last heartbeat is older than the configured timeout. When it is, the
// store moves the record from Online to Offline and wakes the reconciler;
// the monitor itself never talks to the sink.
//
// # Detection Latency
//
// A timeout is observed at the first tick after the breach, so a silent
// server is reported offline between timeout and timeout+interval after its
// last heartbeat (10s to 11s with the defaults).
//
// # Lifecycle
//
//  1. Create the monitor with New(target, clock, interval, timeout, logger)
//  2. Start the tick loop with Start(ctx)
//  3. Stop it with Stop(); cancelling ctx also ends the loop
//
// A stopped monitor cannot be restarted.
package heartbeat
