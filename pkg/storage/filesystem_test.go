package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/felixgeelhaar/workbench/pkg/domain/execution"
)

func newTestPlan(t *testing.T) *execution.ExecutionPlan {
	t.Helper()
	gen := execution.NewGenerator(execution.DefaultCatalog())
	plan, err := gen.Generate(execution.GenerateRequest{
		WorkflowType:  execution.WorkflowIssueFix,
		WorkspacePath: t.TempDir(),
		BranchName:    "fix/issue-2312",
		IssueIDs:      []int{2312},
	})
	if err != nil {
		t.Fatal(err)
	}
	return plan
}

func TestFilesystemRepository_SaveAndLoadExecution(t *testing.T) {
	repo := NewFilesystemRepository(t.TempDir())
	plan := newTestPlan(t)

	state := &execution.ExecutionState{ExecutionPlan: plan}
	if err := repo.SaveExecution(state); err != nil {
		t.Fatal(err)
	}
	if state.LastSaved.IsZero() {
		t.Error("LastSaved not stamped")
	}

	loaded, err := repo.LoadExecution()
	if err != nil {
		t.Fatal(err)
	}
	if loaded == nil || loaded.ExecutionPlan == nil {
		t.Fatal("loaded state is empty")
	}
	if loaded.ExecutionPlan.ID != plan.ID {
		t.Errorf("plan id = %s, want %s", loaded.ExecutionPlan.ID, plan.ID)
	}
	if loaded.ExecutionPlan.BranchName != "fix/issue-2312" {
		t.Errorf("branch = %s", loaded.ExecutionPlan.BranchName)
	}
	if got, want := loaded.ExecutionPlan.StepCount(), plan.StepCount(); got != want {
		t.Errorf("step count = %d, want %d", got, want)
	}
}

func TestFilesystemRepository_LoadExecution_NeverSaved(t *testing.T) {
	repo := NewFilesystemRepository(t.TempDir())

	state, err := repo.LoadExecution()
	if err != nil {
		t.Fatalf("absent state file should not be an error, got %v", err)
	}
	if state != nil {
		t.Errorf("state = %+v, want nil", state)
	}
}

func TestFilesystemRepository_LoadExecution_Corrupt(t *testing.T) {
	root := t.TempDir()
	repo := NewFilesystemRepository(root)
	if err := repo.Initialize(); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(root, WorkbenchDir, ExecutionFile)
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := repo.LoadExecution()
	var perr *execution.PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("err = %v, want PersistenceError", err)
	}
	if perr.Op != "load" {
		t.Errorf("op = %s", perr.Op)
	}
}

func TestFilesystemRepository_LoadExecution_MissingPlan(t *testing.T) {
	root := t.TempDir()
	repo := NewFilesystemRepository(root)
	if err := repo.Initialize(); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(root, WorkbenchDir, ExecutionFile)
	if err := os.WriteFile(path, []byte(`{"checkpoints": []}`), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := repo.LoadExecution()
	var perr *execution.PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("err = %v, want PersistenceError", err)
	}
}

func TestFilesystemRepository_CheckpointsSurviveRoundTrip(t *testing.T) {
	repo := NewFilesystemRepository(t.TempDir())
	plan := newTestPlan(t)

	state := &execution.ExecutionState{ExecutionPlan: plan}
	state = state.WithCheckpoint(execution.NewCheckpoint("analyze", "analyze-requirements", "requirements captured", nil))
	if err := repo.SaveExecution(state); err != nil {
		t.Fatal(err)
	}

	loaded, err := repo.LoadExecution()
	if err != nil {
		t.Fatal(err)
	}
	next := loaded.WithCheckpoint(execution.NewCheckpoint("analyze", "reproduce-issue", "bug reproduced", []string{"BUGREPORT.md"}))
	if err := repo.SaveExecution(next); err != nil {
		t.Fatal(err)
	}

	final, err := repo.LoadExecution()
	if err != nil {
		t.Fatal(err)
	}
	if len(final.Checkpoints) != 2 {
		t.Fatalf("checkpoints = %d, want 2", len(final.Checkpoints))
	}
	if final.Checkpoints[0].Message != "requirements captured" || final.Checkpoints[1].Message != "bug reproduced" {
		t.Error("checkpoints out of append order")
	}
	if final.Checkpoints[0].ID == final.Checkpoints[1].ID {
		t.Error("checkpoint ids collide")
	}
}

func TestFilesystemRepository_SaveExecution_Empty(t *testing.T) {
	repo := NewFilesystemRepository(t.TempDir())
	if err := repo.SaveExecution(nil); err == nil {
		t.Error("expected error saving nil state")
	}
	if err := repo.SaveExecution(&execution.ExecutionState{}); err == nil {
		t.Error("expected error saving state without plan")
	}
}

func TestFilesystemRepository_ResolvePath(t *testing.T) {
	repo := NewFilesystemRepository(t.TempDir())

	tests := []struct {
		name     string
		filename string
		wantErr  bool
	}{
		{"valid file", "execution.json", false},
		{"empty", "", true},
		{"traversal", "../../etc/passwd", true},
		{"nested", "sub/execution.json", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.ResolvePath(tt.filename)
			if (err != nil) != tt.wantErr {
				t.Errorf("ResolvePath(%q) error = %v, wantErr %v", tt.filename, err, tt.wantErr)
			}
		})
	}
}

func TestFilesystemRepository_LoadCatalog_Absent(t *testing.T) {
	repo := NewFilesystemRepository(t.TempDir())

	catalog, err := repo.LoadCatalog()
	if err != nil {
		t.Fatalf("absent catalog should not be an error, got %v", err)
	}
	if catalog != nil {
		t.Errorf("catalog = %v, want nil", catalog)
	}
}

func TestFilesystemRepository_LoadCatalog_Valid(t *testing.T) {
	root := t.TempDir()
	repo := NewFilesystemRepository(root)
	if err := repo.Initialize(); err != nil {
		t.Fatal(err)
	}

	doc := `workflows:
  hotfix:
    phases:
      - id: analyze
        name: Analyze
        required: true
        steps:
          - id: triage
            name: Triage
            required: true
      - id: implement
        name: Implement
        required: true
        steps:
          - id: patch
            name: Patch
            required: true
            depends_on: [triage]
            artifacts: [PATCH.md]
`
	path := filepath.Join(root, WorkbenchDir, CatalogFile)
	if err := os.WriteFile(path, []byte(doc), 0600); err != nil {
		t.Fatal(err)
	}

	catalog, err := repo.LoadCatalog()
	if err != nil {
		t.Fatal(err)
	}
	tmpl, ok := catalog[execution.WorkflowType("hotfix")]
	if !ok {
		t.Fatalf("hotfix workflow missing, catalog = %v", catalog)
	}
	if len(tmpl.Phases) != 2 {
		t.Fatalf("phases = %d, want 2", len(tmpl.Phases))
	}
	step := tmpl.Phases[1].Steps[0]
	if step.ID != "patch" || len(step.DependsOn) != 1 || step.DependsOn[0] != "triage" {
		t.Errorf("step = %+v", step)
	}
	if len(step.Artifacts) != 1 || step.Artifacts[0] != "PATCH.md" {
		t.Errorf("artifacts = %v", step.Artifacts)
	}
}

func TestFilesystemRepository_LoadCatalog_SchemaViolation(t *testing.T) {
	root := t.TempDir()
	repo := NewFilesystemRepository(root)
	if err := repo.Initialize(); err != nil {
		t.Fatal(err)
	}

	// Steps missing the required name field.
	doc := `workflows:
  hotfix:
    phases:
      - id: analyze
        name: Analyze
        steps:
          - id: triage
`
	path := filepath.Join(root, WorkbenchDir, CatalogFile)
	if err := os.WriteFile(path, []byte(doc), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := repo.LoadCatalog(); err == nil {
		t.Error("expected schema validation error")
	}
}

func TestFilesystemRepository_LoadCatalog_StructuralViolation(t *testing.T) {
	root := t.TempDir()
	repo := NewFilesystemRepository(root)
	if err := repo.Initialize(); err != nil {
		t.Fatal(err)
	}

	// Schema-valid but depends on a step in a later phase.
	doc := `workflows:
  hotfix:
    phases:
      - id: analyze
        name: Analyze
        steps:
          - id: triage
            name: Triage
            depends_on: [patch]
      - id: implement
        name: Implement
        steps:
          - id: patch
            name: Patch
`
	path := filepath.Join(root, WorkbenchDir, CatalogFile)
	if err := os.WriteFile(path, []byte(doc), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := repo.LoadCatalog()
	if !errors.Is(err, execution.ErrInvalidCatalog) {
		t.Errorf("err = %v, want ErrInvalidCatalog", err)
	}
}

func TestFilesystemRepository_Initialize(t *testing.T) {
	root := t.TempDir()
	repo := NewFilesystemRepository(root)

	if repo.IsInitialized() {
		t.Error("fresh workspace reported initialized")
	}
	if err := repo.Initialize(); err != nil {
		t.Fatal(err)
	}
	if !repo.IsInitialized() {
		t.Error("workspace not initialized after Initialize")
	}

	info, err := os.Stat(filepath.Join(root, WorkbenchDir))
	if err != nil {
		t.Fatal(err)
	}
	if !info.IsDir() {
		t.Error(".workbench is not a directory")
	}
}
