package types

import "errors"

// Sentinel errors for the presence library.
//
// These errors provide type-safe error checking using errors.Is().
// External errors are wrapped with context using fmt.Errorf("%s: %w", msg, err).

// Manager errors - Public API errors returned by the Manager.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrSinkRequired is returned when no presence sink is supplied.
	ErrSinkRequired = errors.New("presence sink is required")

	// ErrAlreadyStarted is returned when Start is called on an already running manager.
	ErrAlreadyStarted = errors.New("manager already started")

	// ErrNotStarted is returned when operations require a started manager.
	ErrNotStarted = errors.New("manager not started")
)

// Ingest errors - Returned to heartbeat senders.
var (
	// ErrInvalidCount is returned for a malformed or negative player count.
	ErrInvalidCount = errors.New("invalid player count")

	// ErrRouteNotFound is returned for an unknown ingest route.
	ErrRouteNotFound = errors.New("route not found")
)

// Sink errors - Contained inside the reconciler, never returned to ingest callers.
var (
	// ErrSinkFailure wraps any error returned by a presence sink.
	ErrSinkFailure = errors.New("presence sink failure")

	// ErrSinkUnavailable indicates the sink backend could not be reached.
	// The update is expected to succeed once connectivity returns.
	ErrSinkUnavailable = errors.New("presence sink unavailable")
)

// Monitor errors - Internal heartbeat monitor lifecycle errors.
var (
	// ErrMonitorAlreadyStarted is returned when Start is called on a running monitor.
	ErrMonitorAlreadyStarted = errors.New("heartbeat monitor already started")

	// ErrMonitorAlreadyStopped is returned when Start is called on a stopped monitor.
	ErrMonitorAlreadyStopped = errors.New("heartbeat monitor already stopped")

	// ErrMonitorNotStarted is returned when Stop is called before Start.
	ErrMonitorNotStarted = errors.New("heartbeat monitor not started")
)

// Reconciler errors - Internal reconciler lifecycle errors.
var (
	// ErrReconcilerAlreadyStarted is returned when Start is called on a running reconciler.
	ErrReconcilerAlreadyStarted = errors.New("reconciler already started")

	// ErrReconcilerAlreadyStopped is returned when Start is called on a stopped reconciler.
	ErrReconcilerAlreadyStopped = errors.New("reconciler already stopped")

	// ErrReconcilerNotStarted is returned when Stop is called before Start.
	ErrReconcilerNotStarted = errors.New("reconciler not started")
)
