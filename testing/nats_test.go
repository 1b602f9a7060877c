package testing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStartEmbeddedNATS(t *testing.T) {
	ns, nc := StartEmbeddedNATS(t)

	require.NotNil(t, ns)
	require.True(t, nc.IsConnected())
	require.True(t, ns.JetStreamEnabled())
}

func TestStartEmbeddedNATS_Parallel(t *testing.T) {
	for _, name := range []string{"a", "b", "c"} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, nc := StartEmbeddedNATS(t)
			require.True(t, nc.IsConnected())
		})
	}
}

func TestCreateJetStreamKV(t *testing.T) {
	_, nc := StartEmbeddedNATS(t)
	kv := CreateJetStreamKV(t, nc, "topology")

	require.Equal(t, "topology", kv.Bucket())

	_, err := kv.PutString(t.Context(), "snapshot", "{}")
	require.NoError(t, err)

	entry, err := kv.Get(t.Context(), "snapshot")
	require.NoError(t, err)
	require.Equal(t, "{}", string(entry.Value()))

	status, err := kv.Status(t.Context())
	require.NoError(t, err)
	require.Equal(t, int64(5), status.History())
}

func TestCreateJetStreamKV_Options(t *testing.T) {
	_, nc := StartEmbeddedNATS(t)
	kv := CreateJetStreamKV(t, nc, "status", WithKVTTL(time.Minute), WithKVHistory(1))

	status, err := kv.Status(t.Context())
	require.NoError(t, err)
	require.Equal(t, time.Minute, status.TTL())
	require.Equal(t, int64(1), status.History())
}

func TestLogger_Captures(t *testing.T) {
	logger := NewTestLogger(t)

	logger.Info("pass reconciled", "version", 3)
	logger.Warn("format too old", "index", ".watches")
	logger.Warn("odd fields", "dangling")

	require.Len(t, logger.Entries(""), 3)
	require.Len(t, logger.Entries("WARN"), 2)
	require.True(t, logger.Logged("WARN", "format too old"))
	require.False(t, logger.Logged("ERROR", "format too old"))
	require.Equal(t, []any{"version", 3}, logger.Entries("INFO")[0].Fields)
	require.Equal(t, " index=.watches", formatFields([]any{"index", ".watches"}))
	require.Equal(t, " dangling", formatFields([]any{"dangling"}))
}
