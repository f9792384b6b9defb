package execution

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeArtifact(t *testing.T, dir, name string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
}

func TestEnforceStepCompletion_UnknownStep(t *testing.T) {
	plan := mustGenerate(t, WorkflowIssueFix)
	_, err := EnforceStepCompletion(t.TempDir(), plan, "no-such-step")
	if !errors.Is(err, ErrStepNotFound) {
		t.Fatalf("expected ErrStepNotFound, got %v", err)
	}
}

func TestEnforceStepCompletion_UnmetDependency(t *testing.T) {
	dir := t.TempDir()
	plan := mustGenerate(t, WorkflowIssueFix)
	writeArtifact(t, dir, "BUGREPORT.md")
	writeArtifact(t, dir, "reproduction-tests.js")

	// analyze-requirements has not been completed yet.
	result, err := EnforceStepCompletion(dir, plan, "reproduce-issue")
	if err != nil {
		t.Fatal(err)
	}
	if result.CanProceed {
		t.Error("expected CanProceed=false with unmet dependency")
	}
	found := false
	for _, issue := range result.Issues {
		if strings.Contains(issue, "Analyze Requirements") {
			found = true
		}
	}
	if !found {
		t.Errorf("issues do not name the unmet dependency: %v", result.Issues)
	}
}

func TestEnforceStepCompletion_Satisfied(t *testing.T) {
	dir := t.TempDir()
	plan := mustGenerate(t, WorkflowIssueFix)
	plan = mustUpdate(t, plan, "analyze-requirements", StatusCompleted)
	writeArtifact(t, dir, "BUGREPORT.md")
	writeArtifact(t, dir, "reproduction-tests.js")

	result, err := EnforceStepCompletion(dir, plan, "reproduce-issue")
	if err != nil {
		t.Fatal(err)
	}
	if !result.CanProceed {
		t.Errorf("expected CanProceed=true, issues: %v", result.Issues)
	}
	if len(result.Issues) != 0 {
		t.Errorf("expected no issues, got %v", result.Issues)
	}
}

func TestEnforceStepCompletion_MissingArtifacts(t *testing.T) {
	dir := t.TempDir()
	plan := mustGenerate(t, WorkflowIssueFix)
	plan = mustUpdate(t, plan, "analyze-requirements", StatusCompleted)
	writeArtifact(t, dir, "BUGREPORT.md")
	// reproduction-tests.js deliberately absent.

	result, err := EnforceStepCompletion(dir, plan, "reproduce-issue")
	if err != nil {
		t.Fatal(err)
	}
	if result.CanProceed {
		t.Error("expected CanProceed=false with missing artifact")
	}
	found := false
	for _, issue := range result.Issues {
		if strings.Contains(issue, "reproduction-tests.js") {
			found = true
		}
	}
	if !found {
		t.Errorf("issues do not name the missing artifact: %v", result.Issues)
	}
}

func TestEnforceStepCompletion_GlobArtifactsOptimistic(t *testing.T) {
	dir := t.TempDir()
	plan := mustGenerate(t, WorkflowIssueFix)
	for _, id := range []string{"analyze-requirements", "reproduce-issue", "root-cause-analysis", "design-fix", "implement-fix"} {
		plan = mustUpdate(t, plan, id, StatusCompleted)
	}

	// run-regression-suite requires only the glob coverage/*.json; no file
	// exists, but globs are evaluated optimistically.
	result, err := EnforceStepCompletion(dir, plan, "run-regression-suite")
	if err != nil {
		t.Fatal(err)
	}
	if !result.CanProceed {
		t.Errorf("glob artifact blocked the gate: %v", result.Issues)
	}
}

func TestEnforceStepCompletion_NonRequiredAlwaysProceeds(t *testing.T) {
	plan := mustGenerate(t, WorkflowIssueFix)

	// review-affected-surface is optional and its dependency is incomplete.
	result, err := EnforceStepCompletion(t.TempDir(), plan, "review-affected-surface")
	if err != nil {
		t.Fatal(err)
	}
	if !result.CanProceed {
		t.Error("non-required step must always proceed")
	}
}

func TestCheckStepDependencies(t *testing.T) {
	plan := mustGenerate(t, WorkflowIssueFix)

	// Artifacts are ignored here: reproduce-issue requires files that do not
	// exist, but only its dependency matters.
	result, err := CheckStepDependencies(plan, "reproduce-issue")
	if err != nil {
		t.Fatal(err)
	}
	if result.CanProceed {
		t.Error("expected CanProceed=false with unmet dependency")
	}

	plan = mustUpdate(t, plan, "analyze-requirements", StatusCompleted)
	result, err = CheckStepDependencies(plan, "reproduce-issue")
	if err != nil {
		t.Fatal(err)
	}
	if !result.CanProceed {
		t.Errorf("expected CanProceed=true, issues: %v", result.Issues)
	}

	if _, err := CheckStepDependencies(plan, "no-such-step"); !errors.Is(err, ErrStepNotFound) {
		t.Errorf("err = %v, want ErrStepNotFound", err)
	}
}

func TestValidateStepArtifacts(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "BUGREPORT.md")

	step := &Step{
		ID:   "check",
		Name: "Check",
		Artifacts: []Artifact{
			{Kind: ArtifactExact, Path: "BUGREPORT.md"},
			{Kind: ArtifactExact, Path: "missing.md"},
			{Kind: ArtifactGlob, Path: "logs/*.txt"},
		},
	}

	check := ValidateStepArtifacts(dir, step)
	if check.Valid {
		t.Error("expected invalid with a missing exact artifact")
	}
	if len(check.Missing) != 1 || check.Missing[0] != "missing.md" {
		t.Errorf("missing = %v, want [missing.md]", check.Missing)
	}
}
