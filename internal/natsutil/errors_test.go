package natsutil

import (
	"errors"
	"fmt"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/require"

	"github.com/xiaoshi2013/warden/types"
)

func TestIsConnectivityError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"sentinel", types.ErrConnectivity, true},
		{"wrapped timeout", fmt.Errorf("get: %w", nats.ErrTimeout), true},
		{"no servers", nats.ErrNoServers, true},
		{"closed", nats.ErrConnectionClosed, true},
		{"no stream response", jetstream.ErrNoStreamResponse, true},
		{"refused text", errors.New("dial tcp: connection refused"), true},
		{"other", errors.New("bad json"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, IsConnectivityError(tt.err))
		})
	}
}

func TestIsNotFound(t *testing.T) {
	require.True(t, IsNotFound(jetstream.ErrKeyNotFound))
	require.True(t, IsNotFound(fmt.Errorf("load: %w", jetstream.ErrBucketNotFound)))
	require.True(t, IsNotFound(errors.New("nats: no keys found")))
	require.False(t, IsNotFound(nil))
	require.False(t, IsNotFound(nats.ErrTimeout))
}
