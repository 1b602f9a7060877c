package testing

import (
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const natsReadyTimeout = 5 * time.Second

// StartEmbeddedNATS starts a JetStream-enabled NATS server inside the test
// process and connects a client to it.
//
// The server picks a free local port and keeps its store under tb.TempDir().
// Both are torn down by tb.Cleanup.
//
// Example:
//
//	func TestKVSource(t *testing.T) {
//	    _, nc := wardentest.StartEmbeddedNATS(t)
//	    kv := wardentest.CreateJetStreamKV(t, nc, "topology")
//	}
func StartEmbeddedNATS(tb testing.TB) (*server.Server, *nats.Conn) {
	tb.Helper()

	ns, err := server.NewServer(&server.Options{
		Host:      "127.0.0.1",
		Port:      server.RANDOM_PORT,
		JetStream: true,
		StoreDir:  tb.TempDir(),
		NoLog:     true,
		NoSigs:    true,
	})
	if err != nil {
		tb.Fatalf("embedded NATS: create server: %v", err)
	}

	go ns.Start()
	if !ns.ReadyForConnections(natsReadyTimeout) {
		ns.Shutdown()
		tb.Fatalf("embedded NATS: not ready after %v", natsReadyTimeout)
	}

	nc, err := nats.Connect(ns.ClientURL(), nats.Name(tb.Name()), nats.Timeout(2*time.Second))
	if err != nil {
		ns.Shutdown()
		tb.Fatalf("embedded NATS: connect: %v", err)
	}

	tb.Cleanup(func() {
		nc.Close()
		ns.Shutdown()
		ns.WaitForShutdown()
	})

	return ns, nc
}

// KVOption adjusts the bucket created by CreateJetStreamKV.
type KVOption func(*jetstream.KeyValueConfig)

// WithKVTTL expires entries that are not rewritten within ttl.
func WithKVTTL(ttl time.Duration) KVOption {
	return func(cfg *jetstream.KeyValueConfig) {
		cfg.TTL = ttl
	}
}

// WithKVHistory keeps n revisions per key.
func WithKVHistory(n uint8) KVOption {
	return func(cfg *jetstream.KeyValueConfig) {
		cfg.History = n
	}
}

// CreateJetStreamKV creates a memory-backed KV bucket keeping five revisions per key.
func CreateJetStreamKV(tb testing.TB, nc *nats.Conn, bucket string, opts ...KVOption) jetstream.KeyValue {
	tb.Helper()

	js, err := jetstream.New(nc)
	if err != nil {
		tb.Fatalf("jetstream: %v", err)
	}

	cfg := jetstream.KeyValueConfig{
		Bucket:  bucket,
		History: 5,
		Storage: jetstream.MemoryStorage,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	kv, err := js.CreateKeyValue(tb.Context(), cfg)
	if err != nil {
		tb.Fatalf("create KV bucket %q: %v", bucket, err)
	}

	return kv
}
