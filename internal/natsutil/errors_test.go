package natsutil

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/presence/types"
)

func TestIsConnectivityError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"nats timeout", nats.ErrTimeout, true},
		{"no servers", fmt.Errorf("put: %w", nats.ErrNoServers), true},
		{"closed connection", nats.ErrConnectionClosed, true},
		{"no stream response", jetstream.ErrNoStreamResponse, true},
		{"deadline", context.DeadlineExceeded, true},
		{"refused by text", errors.New("dial tcp: connection refused"), true},
		{"already unavailable", types.ErrSinkUnavailable, true},
		{"bucket missing", jetstream.ErrBucketNotFound, false},
		{"plain error", errors.New("bad payload"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, IsConnectivityError(tt.err))
		})
	}
}

func TestSinkError(t *testing.T) {
	require.NoError(t, SinkError("put", nil))

	err := SinkError("put", nats.ErrTimeout)
	require.ErrorIs(t, err, types.ErrSinkUnavailable)
	require.ErrorIs(t, err, nats.ErrTimeout)

	err = SinkError("put", errors.New("bad payload"))
	require.NotErrorIs(t, err, types.ErrSinkUnavailable)
	require.Contains(t, err.Error(), "put: bad payload")
}
