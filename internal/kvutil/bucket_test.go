package kvutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/require"

	presencetest "github.com/arloliu/presence/testing"
)

func TestEnsureBucket(t *testing.T) {
	_, nc := presencetest.StartEmbeddedNATS(t)
	js, err := jetstream.New(nc)
	require.NoError(t, err)

	t.Run("creates a missing bucket", func(t *testing.T) {
		kv, err := EnsureBucket(t.Context(), js, BucketConfig{Name: "presence-create", Memory: true}, 0)
		require.NoError(t, err)
		require.Equal(t, "presence-create", kv.Bucket())

		status, err := kv.Status(t.Context())
		require.NoError(t, err)
		require.Equal(t, int64(1), status.History())
	})

	t.Run("opens an existing bucket without touching its data", func(t *testing.T) {
		cfg := BucketConfig{Name: "presence-open", History: 5, Memory: true}
		kv, err := EnsureBucket(t.Context(), js, cfg, 0)
		require.NoError(t, err)
		_, err = kv.Put(t.Context(), "status", []byte("online"))
		require.NoError(t, err)

		again, err := EnsureBucket(t.Context(), js, cfg, 0)
		require.NoError(t, err)
		entry, err := again.Get(t.Context(), "status")
		require.NoError(t, err)
		require.Equal(t, "online", string(entry.Value()))
	})

	t.Run("concurrent callers share one bucket", func(t *testing.T) {
		const callers = 5
		var wg sync.WaitGroup
		errs := make(chan error, callers)

		for i := 0; i < callers; i++ {
			wg.Go(func() {
				_, err := EnsureBucket(t.Context(), js, BucketConfig{Name: "presence-race", Memory: true}, 5)
				errs <- err
			})
		}
		wg.Wait()
		close(errs)

		for err := range errs {
			require.NoError(t, err)
		}
	})

	t.Run("rejects an empty name", func(t *testing.T) {
		_, err := EnsureBucket(t.Context(), js, BucketConfig{}, 0)
		require.Error(t, err)
	})

	t.Run("honors a cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(t.Context(), time.Nanosecond)
		defer cancel()
		time.Sleep(time.Millisecond)

		_, err := EnsureBucket(ctx, js, BucketConfig{Name: "presence-cancelled", Memory: true}, 3)
		require.Error(t, err)
	})
}
