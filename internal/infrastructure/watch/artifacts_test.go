package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/felixgeelhaar/workbench/pkg/application"
	"github.com/felixgeelhaar/workbench/pkg/domain/execution"
	"github.com/felixgeelhaar/workbench/pkg/storage"
)

func TestArtifactMatcher(t *testing.T) {
	workspace := "/ws"
	artifacts := []execution.Artifact{
		{Kind: execution.ArtifactExact, Path: "BUGREPORT.md"},
		{Kind: execution.ArtifactGlob, Path: "coverage/*.json"},
	}
	m := NewArtifactMatcher(workspace, artifacts)

	tests := []struct {
		path string
		want bool
	}{
		{"/ws/BUGREPORT.md", true},
		{"/ws/coverage/run1.json", true},
		{"/ws/coverage/run1.txt", false},
		{"/ws/other.md", false},
		{"/ws/sub/BUGREPORT.md", false},
	}

	for _, tt := range tests {
		if _, got := m.Match(tt.path); got != tt.want {
			t.Errorf("Match(%s) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func newWatchedService(t *testing.T) (*application.PlanService, string) {
	t.Helper()
	root := t.TempDir()
	svc := application.NewPlanService(storage.NewFilesystemRepository(root), nil, root)
	if _, err := svc.GeneratePlan(execution.GenerateRequest{
		WorkflowType: execution.WorkflowIssueFix,
		BranchName:   "fix/issue-1",
	}); err != nil {
		t.Fatal(err)
	}
	return svc, root
}

func TestArtifactWatcher_ActiveStep(t *testing.T) {
	svc, root := newWatchedService(t)
	w := NewArtifactWatcher(svc, root, time.Millisecond, nil)

	// Fresh plan: the next pending step is active.
	step := w.activeStep()
	if step == nil || step.ID != "analyze-requirements" {
		t.Fatalf("active = %v", step)
	}

	if _, err := svc.TransitionStep("analyze-requirements", "complete", false); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.TransitionStep("reproduce-issue", "start", false); err != nil {
		t.Fatal(err)
	}

	step = w.activeStep()
	if step == nil || step.ID != "reproduce-issue" {
		t.Fatalf("active = %v", step)
	}
}

func TestArtifactWatcher_HandleChange(t *testing.T) {
	svc, root := newWatchedService(t)
	if _, err := svc.TransitionStep("analyze-requirements", "complete", false); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.TransitionStep("reproduce-issue", "start", false); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"BUGREPORT.md", "reproduction-tests.js"} {
		if err := os.WriteFile(filepath.Join(root, name), []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}

	var gotStep *execution.Step
	var gotResult execution.GateResult
	w := NewArtifactWatcher(svc, root, time.Millisecond, func(step *execution.Step, result execution.GateResult) {
		gotStep, gotResult = step, result
	})

	w.handleChange(ChangeEvent{Path: filepath.Join(root, "BUGREPORT.md"), ChangeType: "create"})

	if gotStep == nil || gotStep.ID != "reproduce-issue" {
		t.Fatalf("checked step = %v", gotStep)
	}
	if !gotResult.CanProceed {
		t.Errorf("gate = %+v", gotResult)
	}
}

func TestArtifactWatcher_HandleChange_IgnoresUnrelatedFiles(t *testing.T) {
	svc, root := newWatchedService(t)

	called := false
	w := NewArtifactWatcher(svc, root, time.Millisecond, func(*execution.Step, execution.GateResult) {
		called = true
	})

	w.handleChange(ChangeEvent{Path: filepath.Join(root, "scratch.txt"), ChangeType: "write"})
	w.handleChange(ChangeEvent{Path: filepath.Join(root, "BUGREPORT.md"), ChangeType: "remove"})

	if called {
		t.Error("gate ran for an unrelated change")
	}
}

func TestUnderSkippedDir(t *testing.T) {
	if !underSkippedDir("/ws/.workbench/execution.json") {
		t.Error(".workbench not skipped")
	}
	if !underSkippedDir("/ws/.git/HEAD") {
		t.Error(".git not skipped")
	}
	if underSkippedDir("/ws/src/main.go") {
		t.Error("regular path skipped")
	}
}
