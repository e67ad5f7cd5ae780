package presence

import "github.com/arloliu/presence/types"

// Re-export types from the types package.
//
// Internal packages depend on types without depending on the root package,
// while users get presence.Record, presence.Logger and so on.
type (
	LivenessState = types.LivenessState
	Record        = types.Record
	StateChange   = types.StateChange
)

// Re-export interfaces from the types package for convenience.
type (
	PresenceSink     = types.PresenceSink
	Clock            = types.Clock
	Ticker           = types.Ticker
	MetricsCollector = types.MetricsCollector
	Logger           = types.Logger
	Hooks            = types.Hooks
)

// Re-export LivenessState constants from the types package.
const (
	StateUnknown = types.StateUnknown
	StateOnline  = types.StateOnline
	StateOffline = types.StateOffline
)
