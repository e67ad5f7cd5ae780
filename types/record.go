package types

import "time"

// Record is the authoritative presence snapshot.
//
// Exactly one Record exists per Manager. It is owned by the internal store and
// handed out by value only, so callers can never observe a State/PlayerCount
// pair that did not exist at the same moment.
type Record struct {
	// LastHeartbeatAt is the time of the most recent heartbeat. It carries a
	// monotonic clock reading when produced by the real clock.
	LastHeartbeatAt time.Time

	// State is the current liveness state.
	State LivenessState

	// PlayerCount is the last reported player count. It is only forwarded to the
	// sink while State is StateOnline.
	PlayerCount int

	// Dirty reports that the externally visible projection changed since the
	// last reconciliation pass.
	Dirty bool
}

// Online reports whether the record should be applied with SetOnline.
func (r Record) Online() bool {
	return r.State == StateOnline
}
