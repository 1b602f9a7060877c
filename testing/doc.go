// Package testing provides test utilities for the warden library.
//
// It follows the net/http/httptest convention of shipping test helpers in a
// dedicated package:
//   - StartEmbeddedNATS: in-process NATS server with JetStream enabled
//   - CreateJetStreamKV: KV bucket with test-friendly defaults
//   - NewSnapshot: fluent builder for topology snapshots
//   - RecordingService: controlled service fake that records every command
//   - NewTestLogger: logger writing to t.Logf that keeps records for assertions
//
// Example usage:
//
//	import (
//	    "testing"
//	    wardentest "github.com/xiaoshi2013/warden/testing"
//	)
//
//	func TestMyHost(t *testing.T) {
//	    svc := wardentest.NewRecordingService()
//	    snap := wardentest.NewSnapshot("node-1").
//	        WithDataNode("node-1").
//	        WithIndex(".watches", 6).
//	        WithShard(".watches", 0, "node-1", true).
//	        Build()
//	    // hand svc and snap to a controller
//	}
package testing
