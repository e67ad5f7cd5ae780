// Package kvutil opens the NATS JetStream KV buckets used by presence sinks.
package kvutil

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// DefaultAttempts is used when EnsureBucket is given a non-positive attempt count.
const DefaultAttempts = 3

// BucketConfig describes a presence bucket.
type BucketConfig struct {
	Name        string
	Description string
	// History is the number of revisions kept per key (1 when zero).
	History uint8
	// Memory selects memory storage instead of file storage.
	Memory bool
}

func (c BucketConfig) keyValueConfig() jetstream.KeyValueConfig {
	history := c.History
	if history == 0 {
		history = 1
	}
	storage := jetstream.FileStorage
	if c.Memory {
		storage = jetstream.MemoryStorage
	}

	return jetstream.KeyValueConfig{
		Bucket:      c.Name,
		Description: c.Description,
		History:     history,
		Storage:     storage,
	}
}

// EnsureBucket opens the bucket, creating it when it does not exist yet.
//
// Several processes may race to create the same bucket; losing the race
// (ErrBucketExists) simply leads to opening it on the next attempt.
// Attempts are spaced 10ms, 20ms, 40ms...
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - js: JetStream context
//   - cfg: Bucket description
//   - attempts: Maximum number of attempts (DefaultAttempts when <= 0)
//
// Returns:
//   - jetstream.KeyValue: The opened bucket
//   - error: The last error once all attempts failed
//
// Example:
//
//	kv, err := kvutil.EnsureBucket(ctx, js, kvutil.BucketConfig{Name: "presence"}, 0)
func EnsureBucket(ctx context.Context, js jetstream.JetStream, cfg BucketConfig, attempts int) (jetstream.KeyValue, error) {
	if cfg.Name == "" {
		return nil, errors.New("bucket name is required")
	}
	if attempts <= 0 {
		attempts = DefaultAttempts
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		kv, err := js.KeyValue(ctx, cfg.Name)
		if err == nil {
			return kv, nil
		}

		if errors.Is(err, jetstream.ErrBucketNotFound) {
			kv, err = js.CreateKeyValue(ctx, cfg.keyValueConfig())
			if err == nil {
				return kv, nil
			}
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, fmt.Errorf("context done while opening KV bucket %s: %w", cfg.Name, ctx.Err())
		}

		if attempt < attempts-1 {
			backoff := time.Duration(1<<uint(attempt)) * 10 * time.Millisecond //nolint:gosec // attempt is small
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	return nil, fmt.Errorf("failed to open KV bucket %s after %d attempts: %w", cfg.Name, attempts, lastErr)
}
