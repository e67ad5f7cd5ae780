package types

import "context"

// PresenceSink displays the current presence somewhere outside the process.
//
// A sink is assumed to be slow (network bound) and may fail. It is only ever
// called from the reconciler goroutine and never while internal locks are held.
//
// Implementations must tolerate the same state being applied repeatedly: after
// a transient failure the reconciler re-applies whatever is current.
type PresenceSink interface {
	// SetOffline shows the monitored server as offline.
	SetOffline(ctx context.Context) error

	// SetOnline shows the monitored server as online with playerCount players.
	SetOnline(ctx context.Context, playerCount int) error
}
