// Package warden provides a cluster-state-driven lifecycle controller for a
// background service that must run where its system index shards live.
//
// A Controller watches successive topology snapshots of a cluster (node
// roster, shard routing, index metadata) and decides, for the node it runs
// on, whether the co-located service should be started, paused, reloaded or
// left alone. It never starts the service before the cluster has recovered
// its state or while a system index uses an unsupported format, and it
// respects an operator's manual stop.
//
// # Quick Start
//
//	import (
//	    "github.com/xiaoshi2013/warden"
//	    "github.com/xiaoshi2013/warden/source"
//	)
//
//	cfg := warden.DefaultConfig()
//	src := source.NewMemory()
//
//	ctrl, err := warden.NewController(&cfg, watcherService, src)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	runner, _ := warden.NewRunner(ctrl, src)
//	if err := runner.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer runner.Stop(context.Background())
//
//	// Host side: hand every committed snapshot to the source.
//	src.Apply(snapshot)
//
// # Decisions
//
// Each pass compares the shard copies of the watch index hosted locally with
// the copies tracked from the previous pass:
//
//	transition  | STARTED | STOPPED                          | STOPPING
//	------------+---------+----------------------------------+---------
//	unchanged   | none    | none                             | none
//	lost all    | pause   | none                             | none
//	changed     | reload  | start (override, format guarded) | none
//
// A watch index that disappears from the metadata pauses the service once.
// Nodes without the data role never act.
//
// # Manual Override
//
// Controller.Stop stops the service and records an override. With
// OverrideSticky (default) automatic starts stay suppressed until
// Controller.Start; with OverrideAdvisory a genuine change of the local shard
// set starts the service again and clears the override.
//
// # NATS Integration
//
// source.KV watches a JetStream KV key holding JSON snapshots. A Runner
// created with WithNATS and Config.Status.Enabled publishes every node's
// Status to a KV bucket.
//
// See the examples/ directory for a complete working example.
package warden
