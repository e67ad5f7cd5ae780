package types

import "time"

// LivenessState represents what the service believes about the monitored server.
//
// States follow this progression:
//
//	StateUnknown → StateOnline ⇄ StateOffline
//
// StateUnknown is only held until the first heartbeat arrives. It is applied to
// a PresenceSink exactly like StateOffline, but keeps "never contacted"
// distinguishable from "lost contact".
type LivenessState int

const (
	// StateUnknown is the initial state before any heartbeat was seen.
	StateUnknown LivenessState = iota

	// StateOnline indicates heartbeats are arriving within the timeout.
	StateOnline

	// StateOffline indicates the heartbeat timeout elapsed.
	StateOffline
)

// String returns the string representation of the state.
func (s LivenessState) String() string {
	switch s {
	case StateUnknown:
		return "Unknown"
	case StateOnline:
		return "Online"
	case StateOffline:
		return "Offline"
	default:
		return "Invalid"
	}
}

// StateChange describes one liveness transition.
type StateChange struct {
	From LivenessState
	To   LivenessState
	At   time.Time
}
