package execution

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// State constants for statekit integration.
// These must remain as untyped string constants for statekit.StateID
// compatibility. Values are kept in sync with the Status constants.
const (
	StatePending    = "pending"
	StateInProgress = "in_progress"
	StateCompleted  = "completed"
)

// init validates at startup that FSM state constants match Status values.
func init() {
	stateMap := map[string]Status{
		StatePending:    StatusPending,
		StateInProgress: StatusInProgress,
		StateCompleted:  StatusCompleted,
	}
	for fsmState, status := range stateMap {
		if fsmState != string(status) {
			panic(fmt.Sprintf("FSM state %q does not match Status %q - constants are out of sync", fsmState, status))
		}
	}
}

// StepContext carries state data for one step's machine.
type StepContext struct {
	StepID string
}

// StepStateMachine enforces the monotonic step lifecycle. The same transition
// table backs the Status value object; the machine exists for interpreters
// that drive steps by event name ("start", "complete") rather than by target
// status.
type StepStateMachine struct {
	interpreter *statekit.Interpreter[StepContext]
}

// NewStepStateMachine builds a machine starting in the given state.
func NewStepStateMachine(initialState string, stepID string) (*StepStateMachine, error) {
	builder := statekit.NewMachine[StepContext]("step-machine").
		WithInitial(statekit.StateID(initialState)).
		WithContext(StepContext{StepID: stepID})

	builder.State(StatePending).
		On("start").Target(StateInProgress).
		On("complete").Target(StateCompleted).
		Done()

	builder.State(StateInProgress).
		On("complete").Target(StateCompleted).
		Done()

	// Completed is terminal: progress never regresses.
	builder.State(StateCompleted).
		Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build state machine: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()

	return &StepStateMachine{interpreter: interpreter}, nil
}

// Transition attempts to advance the step with the given event.
func (sm *StepStateMachine) Transition(event string) error {
	before := sm.Current()
	sm.interpreter.Send(statekit.Event{Type: statekit.EventType(event)})
	after := sm.Current()

	if before != after {
		return nil
	}
	return fmt.Errorf("the action '%s' is not allowed while the step is in the '%s' state", event, before)
}

// Current returns the current state value.
func (sm *StepStateMachine) Current() string {
	return string(sm.interpreter.State().Value)
}

// CurrentStatus returns the current state as a Status value object.
func (sm *StepStateMachine) CurrentStatus() Status {
	return Status(sm.Current())
}

// CanTransition checks if the given event is valid for the current state.
// This delegates to the Status value object for consistency.
func (sm *StepStateMachine) CanTransition(event string) bool {
	_, err := sm.CurrentStatus().TransitionWith(event)
	return err == nil
}

// ValidEvents returns the valid events for the current state.
func (sm *StepStateMachine) ValidEvents() []string {
	return sm.CurrentStatus().ValidEvents()
}

// IsFinal returns true if the step can advance no further.
func (sm *StepStateMachine) IsFinal() bool {
	return sm.CurrentStatus().IsComplete()
}
