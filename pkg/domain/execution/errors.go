package execution

import (
	"errors"
	"fmt"
)

// Domain errors for the execution plan engine.
var (
	// ErrUnknownWorkflowType indicates the catalog has no template for the
	// requested workflow type. There is no default fallback.
	ErrUnknownWorkflowType = errors.New("unknown workflow type")

	// ErrStepNotFound indicates a reference to a step id absent from the plan.
	// This is caller misuse, not a soft gate issue.
	ErrStepNotFound = errors.New("step not found in plan")

	// ErrNoPlan indicates no execution plan exists for the workspace.
	ErrNoPlan = errors.New("no execution plan found")

	// ErrInvalidTransition indicates a status change that would regress a step.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidCatalog indicates a catalog that violates structural rules
	// (duplicate step ids, forward dependencies, cycles).
	ErrInvalidCatalog = errors.New("invalid workflow catalog")
)

// UnknownWorkflowTypeError reports which workflow type had no template.
type UnknownWorkflowTypeError struct {
	Type WorkflowType
}

func (e *UnknownWorkflowTypeError) Error() string {
	return fmt.Sprintf("unknown workflow type: %s", e.Type)
}

// Is allows errors.Is to match ErrUnknownWorkflowType.
func (e *UnknownWorkflowTypeError) Is(target error) bool {
	return target == ErrUnknownWorkflowType
}

// StepNotFoundError reports which step id was not in the plan.
type StepNotFoundError struct {
	StepID string
}

func (e *StepNotFoundError) Error() string {
	return fmt.Sprintf("step not found in plan: %s", e.StepID)
}

// Is allows errors.Is to match ErrStepNotFound.
func (e *StepNotFoundError) Is(target error) bool {
	return target == ErrStepNotFound
}

// TransitionError reports a rejected status regression.
type TransitionError struct {
	StepID string
	From   Status
	To     Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move step %s from %s back to %s", e.StepID, e.From, e.To)
}

// Is allows errors.Is to match ErrInvalidTransition.
func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// PersistenceError reports an I/O or parse failure on save/load. The absence
// of a state file is not an error and is never wrapped in this type.
type PersistenceError struct {
	Op   string // "save" or "load"
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s execution state %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
