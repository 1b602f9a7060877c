package testing

import (
	"context"
	"sync"

	"github.com/xiaoshi2013/warden/types"
)

// Call is one command received by a RecordingService.
type Call struct {
	Action   types.Action
	Reason   string
	Snapshot *types.TopologySnapshot
}

// RecordingService is a ControlledService fake that records commands.
//
// Start and Stop move the run state the way a synchronous service would
// (Start to STARTED, Stop to STOPPED) unless an error is injected. The run
// state and validation result can be forced for a test. Safe for concurrent use.
type RecordingService struct {
	mu            sync.Mutex
	state         types.RunState
	valid         bool
	validateCalls int
	calls         []Call
	errs          map[types.Action]error
}

var _ types.ControlledService = (*RecordingService)(nil)

// NewRecordingService creates a stopped service that validates every snapshot.
func NewRecordingService() *RecordingService {
	return &RecordingService{
		state: types.RunStateStopped,
		valid: true,
		errs:  make(map[types.Action]error),
	}
}

// SetState forces the run state.
func (s *RecordingService) SetState(state types.RunState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

// SetValid sets the result of Validate.
func (s *RecordingService) SetValid(valid bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.valid = valid
}

// FailWith makes the given command return err. A nil err clears the failure.
func (s *RecordingService) FailWith(action types.Action, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.errs, action)
		return
	}
	s.errs[action] = err
}

// Calls returns a copy of the recorded commands in order.
func (s *RecordingService) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]Call(nil), s.calls...)
}

// Count returns how many times action was issued.
func (s *RecordingService) Count(action types.Action) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, c := range s.calls {
		if c.Action == action {
			n++
		}
	}

	return n
}

// ValidateCalls returns how many times Validate was called.
func (s *RecordingService) ValidateCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.validateCalls
}

// Reset forgets recorded commands and validate calls, keeping state and failures.
func (s *RecordingService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
	s.validateCalls = 0
}

// State implements types.ControlledService.
func (s *RecordingService) State() types.RunState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// Validate implements types.ControlledService.
func (s *RecordingService) Validate(_ *types.TopologySnapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.validateCalls++

	return s.valid
}

// Start implements types.ControlledService.
func (s *RecordingService) Start(_ context.Context, snapshot *types.TopologySnapshot) error {
	return s.record(Call{Action: types.ActionStart, Snapshot: snapshot}, types.RunStateStarted)
}

// Stop implements types.ControlledService.
func (s *RecordingService) Stop(_ context.Context, reason string) error {
	return s.record(Call{Action: types.ActionStop, Reason: reason}, types.RunStateStopped)
}

// Pause implements types.ControlledService.
func (s *RecordingService) Pause(_ context.Context, reason string) error {
	return s.record(Call{Action: types.ActionPause, Reason: reason}, -1)
}

// Reload implements types.ControlledService.
func (s *RecordingService) Reload(_ context.Context, snapshot *types.TopologySnapshot, reason string) error {
	return s.record(Call{Action: types.ActionReload, Reason: reason, Snapshot: snapshot}, -1)
}

// record appends c and moves to next unless next is negative or the command fails.
func (s *RecordingService) record(c Call, next types.RunState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, c)
	if err := s.errs[c.Action]; err != nil {
		return err
	}
	if next >= 0 {
		s.state = next
	}

	return nil
}
