package warden

import "github.com/xiaoshi2013/warden/types"

// Re-export types from the types package.
//
// Internal packages depend on types without depending on the root warden
// package; users get warden.TopologySnapshot, warden.Logger and so on.
type (
	TopologySnapshot = types.TopologySnapshot
	ShardCopy        = types.ShardCopy
	IndexSettings    = types.IndexSettings
	Node             = types.Node
	NodeRole         = types.NodeRole
	BlockKind        = types.BlockKind
	CopyState        = types.CopyState
	RunState         = types.RunState
	Action           = types.Action
	Decision         = types.Decision
	Status           = types.Status
	TrackedIndex     = types.TrackedIndex
)

// Re-export interfaces from the types package.
type (
	ControlledService = types.ControlledService
	SnapshotProvider  = types.SnapshotProvider
	TopologyListener  = types.TopologyListener
	TopologySource    = types.TopologySource
	MetricsCollector  = types.MetricsCollector
	Logger            = types.Logger
	Hooks             = types.Hooks
)

// Re-export run states.
const (
	RunStateStopped  = types.RunStateStopped
	RunStateStarted  = types.RunStateStarted
	RunStateStopping = types.RunStateStopping
)

// Re-export actions.
const (
	ActionNone   = types.ActionNone
	ActionPause  = types.ActionPause
	ActionReload = types.ActionReload
	ActionStart  = types.ActionStart
	ActionStop   = types.ActionStop
)

// Re-export snapshot enums.
const (
	BlockStateNotRecovered = types.BlockStateNotRecovered
	BlockNoMaster          = types.BlockNoMaster
	BlockReadOnly          = types.BlockReadOnly

	CopyInitializing = types.CopyInitializing
	CopyStarted      = types.CopyStarted
	CopyRelocating   = types.CopyRelocating

	RoleMaster = types.RoleMaster
	RoleData   = types.RoleData
	RoleIngest = types.RoleIngest
)
