package cli

import (
	"errors"
	"strings"
	"testing"

	"github.com/felixgeelhaar/workbench/pkg/domain/execution"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantHint string
	}{
		{
			name:     "no plan",
			err:      execution.ErrNoPlan,
			wantHint: "workbench task new",
		},
		{
			name:     "step not found",
			err:      &execution.StepNotFoundError{StepID: "nope"},
			wantHint: "workbench plan show",
		},
		{
			name: "invalid transition",
			err: &execution.TransitionError{
				StepID: "analyze-requirements",
				From:   execution.StatusCompleted,
				To:     execution.StatusPending,
			},
			wantHint: "statuses only move forward",
		},
		{
			name:     "persistence",
			err:      &execution.PersistenceError{Op: "load", Path: "/x/.workbench/execution.json", Err: errors.New("bad json")},
			wantHint: "execution.json",
		},
		{
			name:     "unknown workflow",
			err:      &execution.UnknownWorkflowTypeError{Type: "yolo"},
			wantHint: "issue-fix",
		},
		{
			name:     "invalid catalog",
			err:      execution.ErrInvalidCatalog,
			wantHint: "catalog.yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := MapError(tt.err)

			var cliErr *CLIError
			if !errors.As(result, &cliErr) {
				t.Fatalf("MapError(%v) = %T, want *CLIError", tt.err, result)
			}
			if !strings.Contains(cliErr.Hint, tt.wantHint) {
				t.Errorf("hint = %q, want substring %q", cliErr.Hint, tt.wantHint)
			}
			if !errors.Is(result, tt.err) {
				t.Error("wrapped error lost")
			}
		})
	}
}

func TestMapError_PassThrough(t *testing.T) {
	if MapError(nil) != nil {
		t.Error("nil should map to nil")
	}

	plain := errors.New("something else")
	if got := MapError(plain); got != plain {
		t.Errorf("unmapped error changed: %v", got)
	}
}

func TestCLIError_Error(t *testing.T) {
	e := NewCLIError("broken", "fix it", errors.New("cause"))
	if !strings.Contains(e.Error(), "broken") || !strings.Contains(e.Error(), "cause") {
		t.Errorf("error = %q", e.Error())
	}
	if e.ExitCode != 1 {
		t.Errorf("exit code = %d", e.ExitCode)
	}

	bare := NewCLIError("broken", "", nil)
	if bare.Error() != "broken" {
		t.Errorf("error = %q", bare.Error())
	}
}
