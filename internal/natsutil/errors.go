// Package natsutil classifies NATS errors for presence sinks.
package natsutil

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/arloliu/presence/types"
)

// IsConnectivityError checks if an error is caused by connectivity issues.
//
// This includes NATS timeouts, connection refused, disconnections, a missing
// JetStream response and sink deadlines.
//
// Kept in internal/natsutil to avoid importing NATS dependencies in the types package.
//
// Parameters:
//   - err: Error to check
//
// Returns:
//   - bool: true if error indicates connectivity issue
func IsConnectivityError(err error) bool {
	if err == nil {
		return false
	}

	return errors.Is(err, types.ErrSinkUnavailable) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, nats.ErrTimeout) ||
		errors.Is(err, nats.ErrNoServers) ||
		errors.Is(err, nats.ErrDisconnected) ||
		errors.Is(err, nats.ErrConnectionClosed) ||
		errors.Is(err, nats.ErrConnectionDraining) ||
		errors.Is(err, nats.ErrNoResponders) ||
		errors.Is(err, jetstream.ErrNoStreamResponse) ||
		strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "i/o timeout")
}

// SinkError wraps err with types.ErrSinkUnavailable when it is a
// connectivity error, so the reconciler can tell an outage from a fault.
// Other errors are returned with op as context.
func SinkError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, types.ErrSinkUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}
	if IsConnectivityError(err) {
		return fmt.Errorf("%s: %w: %w", op, types.ErrSinkUnavailable, err)
	}

	return fmt.Errorf("%s: %w", op, err)
}
