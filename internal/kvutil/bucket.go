// Package kvutil bootstraps the NATS JetStream KeyValue buckets used for
// topology snapshots and node status.
package kvutil

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// DefaultAttempts is used when EnsureBucket is called with a non-positive attempt count.
const DefaultAttempts = 3

// baseBackoff is the delay before the second attempt; it doubles per attempt.
const baseBackoff = 10 * time.Millisecond

// EnsureBucket creates the KV bucket described by cfg, or opens it when another
// process created it first.
//
// Several nodes commonly bootstrap the same bucket at the same time, so a
// creation race is resolved by opening the existing bucket. Other failures are
// retried with exponential backoff until attempts run out or ctx ends.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - js: JetStream context
//   - cfg: Bucket configuration
//   - attempts: Maximum number of attempts (DefaultAttempts if <= 0)
//
// Returns:
//   - jetstream.KeyValue: The bucket handle
//   - error: Last failure after all attempts
//
// Example:
//
//	kv, err := kvutil.EnsureBucket(ctx, js, jetstream.KeyValueConfig{
//	    Bucket: "warden-status",
//	    TTL:    30 * time.Second,
//	}, 0)
func EnsureBucket(
	ctx context.Context,
	js jetstream.JetStream,
	cfg jetstream.KeyValueConfig,
	attempts int,
) (jetstream.KeyValue, error) {
	if attempts <= 0 {
		attempts = DefaultAttempts
	}

	var lastErr error
	for attempt := range attempts {
		kv, err := openOrCreate(ctx, js, cfg)
		if err == nil {
			return kv, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, fmt.Errorf("ensure KV bucket %s: %w", cfg.Bucket, ctx.Err())
		}

		if attempt == attempts-1 {
			break
		}

		timer := time.NewTimer(baseBackoff << attempt)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("ensure KV bucket %s: %w", cfg.Bucket, ctx.Err())
		case <-timer.C:
		}
	}

	return nil, fmt.Errorf("ensure KV bucket %s after %d attempts: %w", cfg.Bucket, attempts, lastErr)
}

func openOrCreate(ctx context.Context, js jetstream.JetStream, cfg jetstream.KeyValueConfig) (jetstream.KeyValue, error) {
	kv, err := js.CreateKeyValue(ctx, cfg)
	if err == nil {
		return kv, nil
	}
	if !errors.Is(err, jetstream.ErrBucketExists) {
		return nil, err
	}

	kv, err = js.KeyValue(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("bucket exists but failed to open: %w", err)
	}

	return kv, nil
}
