package warden

import "github.com/xiaoshi2013/warden/types"

// Sentinel errors returned by the Controller and Runner.
//
// Policy outcomes are never errors; see Decision for why a pass took no action.
var (
	ErrInvalidConfig            = types.ErrInvalidConfig
	ErrServiceRequired          = types.ErrServiceRequired
	ErrSnapshotProviderRequired = types.ErrSnapshotProviderRequired
	ErrControllerRequired       = types.ErrControllerRequired
	ErrSourceRequired           = types.ErrSourceRequired
	ErrNilSnapshot              = types.ErrNilSnapshot
	ErrAlreadyStarted           = types.ErrAlreadyStarted
	ErrNotStarted               = types.ErrNotStarted
	ErrListenerRegistered       = types.ErrListenerRegistered
	ErrSourceClosed             = types.ErrSourceClosed
)
