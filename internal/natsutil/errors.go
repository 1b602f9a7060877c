// Package natsutil classifies NATS transport errors.
package natsutil

import (
	"errors"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/xiaoshi2013/warden/types"
)

// IsConnectivityError reports whether err is caused by losing the NATS connection.
//
// Topology sources use it to keep serving the last known snapshot instead of
// failing the delivery loop. Kept out of types/ so that package stays free of
// NATS imports.
//
// Parameters:
//   - err: Error to check
//
// Returns:
//   - bool: true if the error indicates a connectivity issue
func IsConnectivityError(err error) bool {
	if err == nil {
		return false
	}

	switch {
	case errors.Is(err, types.ErrConnectivity),
		errors.Is(err, nats.ErrTimeout),
		errors.Is(err, nats.ErrNoServers),
		errors.Is(err, nats.ErrDisconnected),
		errors.Is(err, nats.ErrConnectionClosed),
		errors.Is(err, jetstream.ErrNoStreamResponse):
		return true
	}

	msg := err.Error()

	return strings.Contains(msg, "connection refused") || strings.Contains(msg, "i/o timeout")
}

// IsNotFound reports whether err means a KV key or bucket does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, jetstream.ErrKeyNotFound) ||
		errors.Is(err, jetstream.ErrBucketNotFound) ||
		errors.Is(err, jetstream.ErrKeyDeleted) ||
		types.IsNoKeysFoundError(err)
}
