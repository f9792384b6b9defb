package cli

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/workbench/pkg/domain/execution"
)

// CLIError wraps domain errors with user-facing messages and actionable hints.
type CLIError struct {
	Message  string
	Hint     string
	Err      error
	ExitCode int
}

func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a CLIError with a default exit code of 1.
func NewCLIError(msg, hint string, err error) *CLIError {
	return &CLIError{
		Message:  msg,
		Hint:     hint,
		Err:      err,
		ExitCode: 1,
	}
}

// MapError converts known domain errors into CLIErrors with actionable hints.
// Unmapped errors are returned as-is.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	var stepErr *execution.StepNotFoundError
	if errors.As(err, &stepErr) {
		return NewCLIError(
			stepErr.Error(),
			"Run 'workbench plan show' to list the step ids in this plan",
			err,
		)
	}

	var transErr *execution.TransitionError
	if errors.As(err, &transErr) {
		return NewCLIError(
			transErr.Error(),
			fmt.Sprintf("Step '%s' is '%s' — statuses only move forward; check 'workbench status'", transErr.StepID, transErr.From),
			err,
		)
	}

	var persistErr *execution.PersistenceError
	if errors.As(err, &persistErr) {
		return NewCLIError(
			persistErr.Error(),
			"The state file may be corrupted. Inspect .workbench/execution.json or regenerate the plan",
			err,
		)
	}

	var typeErr *execution.UnknownWorkflowTypeError
	if errors.As(err, &typeErr) {
		return NewCLIError(
			typeErr.Error(),
			"Valid workflow types: issue-fix, feature-development, maintenance, exploration",
			err,
		)
	}

	switch {
	case errors.Is(err, execution.ErrNoPlan):
		return NewCLIError("no execution plan found", "Run 'workbench task new <issue>' or 'workbench plan generate' first", err)
	case errors.Is(err, execution.ErrInvalidCatalog):
		return NewCLIError("invalid workflow catalog", "Review .workbench/catalog.yaml for duplicate ids, unknown or forward dependencies, and cycles", err)
	}

	return err
}
