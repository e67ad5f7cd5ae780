package types

import "context"

// Hooks defines callbacks for presence lifecycle events.
//
// All hooks are optional and called asynchronously in background goroutines
// so they can never delay the ingest path, the monitor or the reconciler.
// Hook errors are logged and otherwise ignored.
//
// Example:
//
//	hooks := &presence.Hooks{
//	    OnStateChanged: func(ctx context.Context, from, to presence.LivenessState) error {
//	        log.Printf("server went %s", to)
//	        return nil
//	    },
//	}
type Hooks struct {
	// OnStateChanged is called after every liveness transition.
	OnStateChanged func(ctx context.Context, from, to LivenessState) error

	// OnSinkError is called when applying presence to the sink failed.
	OnSinkError func(ctx context.Context, err error) error
}
