package presence

import "github.com/arloliu/presence/types"

// Sentinel errors re-exported from the types package. Check them with errors.Is.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = types.ErrInvalidConfig

	// ErrSinkRequired is returned when NewManager is called without a sink.
	ErrSinkRequired = types.ErrSinkRequired

	// ErrAlreadyStarted is returned when Start is called on an already running manager.
	ErrAlreadyStarted = types.ErrAlreadyStarted

	// ErrNotStarted is returned when Stop is called on a manager that is not running.
	ErrNotStarted = types.ErrNotStarted

	// ErrInvalidCount is returned for a malformed or negative player count.
	ErrInvalidCount = types.ErrInvalidCount

	// ErrRouteNotFound is returned for an unknown ingest route.
	ErrRouteNotFound = types.ErrRouteNotFound

	// ErrSinkFailure wraps errors returned by a presence sink.
	ErrSinkFailure = types.ErrSinkFailure

	// ErrSinkUnavailable marks sink errors caused by an unreachable backend.
	ErrSinkUnavailable = types.ErrSinkUnavailable
)
