// Package allocation computes and tracks the shard copies of a system index
// hosted on the local node.
//
// A Set is rebuilt from scratch on every topology snapshot; the Tracker keeps
// only the previous Set per index so that a pass can classify the transition.
package allocation
