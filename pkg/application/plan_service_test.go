package application

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/felixgeelhaar/workbench/pkg/domain/execution"
)

// memoryRepo is an in-memory StateRepository for service tests.
type memoryRepo struct {
	state *execution.ExecutionState
	saves int
	fail  error
}

func (m *memoryRepo) SaveExecution(state *execution.ExecutionState) error {
	if m.fail != nil {
		return m.fail
	}
	m.state = state
	m.saves++
	return nil
}

func (m *memoryRepo) LoadExecution() (*execution.ExecutionState, error) {
	return m.state, nil
}

type memoryCatalogs struct {
	catalog execution.Catalog
	err     error
}

func (m *memoryCatalogs) LoadCatalog() (execution.Catalog, error) {
	return m.catalog, m.err
}

func newService(t *testing.T) (*PlanService, *memoryRepo, string) {
	t.Helper()
	root := t.TempDir()
	repo := &memoryRepo{}
	return NewPlanService(repo, nil, root), repo, root
}

func generate(t *testing.T, svc *PlanService) *execution.ExecutionPlan {
	t.Helper()
	plan, err := svc.GeneratePlan(execution.GenerateRequest{
		WorkflowType: execution.WorkflowIssueFix,
		BranchName:   "fix/issue-2312",
		IssueIDs:     []int{2312},
	})
	if err != nil {
		t.Fatal(err)
	}
	return plan
}

func writeWorkspaceFile(t *testing.T, root, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(root, name), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
}

func TestPlanService_GeneratePlan(t *testing.T) {
	svc, repo, root := newService(t)

	plan := generate(t, svc)

	if plan.WorkspacePath != root {
		t.Errorf("workspace = %s, want %s", plan.WorkspacePath, root)
	}
	if repo.state == nil || repo.state.ExecutionPlan.ID != plan.ID {
		t.Error("plan not persisted")
	}
	if plan.Status != execution.StatusPending {
		t.Errorf("status = %s", plan.Status)
	}
}

func TestPlanService_LoadState_NoPlan(t *testing.T) {
	svc, _, _ := newService(t)

	_, err := svc.LoadState()
	if !errors.Is(err, execution.ErrNoPlan) {
		t.Errorf("err = %v, want ErrNoPlan", err)
	}
}

func TestPlanService_TransitionStep_Start(t *testing.T) {
	svc, repo, _ := newService(t)
	generate(t, svc)

	result, err := svc.TransitionStep("analyze-requirements", "start", false)
	if err != nil {
		t.Fatal(err)
	}
	_, step, _ := result.Plan.FindStep("analyze-requirements")
	if step.Status != execution.StatusInProgress {
		t.Errorf("status = %s", step.Status)
	}
	if result.Checkpoint != nil {
		t.Error("start recorded a checkpoint")
	}
	if repo.state.ExecutionPlan.CurrentStep != "analyze-requirements" {
		t.Error("transition not persisted")
	}
}

func TestPlanService_TransitionStep_StartBlockedByDependency(t *testing.T) {
	svc, _, _ := newService(t)
	generate(t, svc)

	_, err := svc.TransitionStep("reproduce-issue", "start", false)
	if err == nil {
		t.Fatal("expected blocked start")
	}
	if !strings.Contains(err.Error(), "blocked") {
		t.Errorf("err = %v", err)
	}
}

func TestPlanService_TransitionStep_CompleteRecordsCheckpoint(t *testing.T) {
	svc, repo, _ := newService(t)
	generate(t, svc)

	result, err := svc.TransitionStep("analyze-requirements", "complete", false)
	if err != nil {
		t.Fatal(err)
	}
	if result.Checkpoint == nil {
		t.Fatal("complete did not record a checkpoint")
	}
	if result.Checkpoint.StepID != "analyze-requirements" || result.Checkpoint.PhaseID != "analyze" {
		t.Errorf("checkpoint = %+v", result.Checkpoint)
	}
	if len(repo.state.Checkpoints) != 1 {
		t.Errorf("persisted checkpoints = %d", len(repo.state.Checkpoints))
	}
}

func TestPlanService_TransitionStep_CompleteBlockedByArtifacts(t *testing.T) {
	svc, repo, _ := newService(t)
	generate(t, svc)
	if _, err := svc.TransitionStep("analyze-requirements", "complete", false); err != nil {
		t.Fatal(err)
	}
	savesBefore := repo.saves

	// reproduce-issue requires BUGREPORT.md and reproduction-tests.js.
	result, err := svc.TransitionStep("reproduce-issue", "complete", false)
	if err == nil {
		t.Fatal("expected blocked completion")
	}
	if result == nil || result.Gate.CanProceed {
		t.Error("gate result not surfaced")
	}
	if repo.saves != savesBefore {
		t.Error("blocked transition was persisted")
	}
}

func TestPlanService_TransitionStep_CompleteWithArtifacts(t *testing.T) {
	svc, _, root := newService(t)
	generate(t, svc)
	if _, err := svc.TransitionStep("analyze-requirements", "complete", false); err != nil {
		t.Fatal(err)
	}
	writeWorkspaceFile(t, root, "BUGREPORT.md")
	writeWorkspaceFile(t, root, "reproduction-tests.js")

	result, err := svc.TransitionStep("reproduce-issue", "complete", false)
	if err != nil {
		t.Fatal(err)
	}
	_, step, _ := result.Plan.FindStep("reproduce-issue")
	if !step.Status.IsComplete() {
		t.Errorf("status = %s", step.Status)
	}
}

func TestPlanService_TransitionStep_Force(t *testing.T) {
	svc, _, _ := newService(t)
	generate(t, svc)
	if _, err := svc.TransitionStep("analyze-requirements", "complete", false); err != nil {
		t.Fatal(err)
	}

	// Artifacts are missing, but force bypasses the gate.
	result, err := svc.TransitionStep("reproduce-issue", "complete", true)
	if err != nil {
		t.Fatal(err)
	}
	_, step, _ := result.Plan.FindStep("reproduce-issue")
	if !step.Status.IsComplete() {
		t.Errorf("status = %s", step.Status)
	}
}

func TestPlanService_TransitionStep_UnknownStep(t *testing.T) {
	svc, _, _ := newService(t)
	generate(t, svc)

	_, err := svc.TransitionStep("no-such-step", "start", false)
	if !errors.Is(err, execution.ErrStepNotFound) {
		t.Errorf("err = %v, want ErrStepNotFound", err)
	}
}

func TestPlanService_TransitionStep_InvalidEvent(t *testing.T) {
	svc, _, _ := newService(t)
	generate(t, svc)
	if _, err := svc.TransitionStep("analyze-requirements", "complete", false); err != nil {
		t.Fatal(err)
	}

	// Completed steps accept no further events.
	if _, err := svc.TransitionStep("analyze-requirements", "start", false); err == nil {
		t.Error("expected invalid transition error")
	}
}

func TestPlanService_CheckStep(t *testing.T) {
	svc, _, _ := newService(t)
	generate(t, svc)

	gate, err := svc.CheckStep("reproduce-issue")
	if err != nil {
		t.Fatal(err)
	}
	if gate.CanProceed {
		t.Error("expected gate issues on a fresh plan")
	}
}

func TestPlanService_NextAndSummary(t *testing.T) {
	svc, _, _ := newService(t)
	generate(t, svc)

	next, err := svc.Next()
	if err != nil {
		t.Fatal(err)
	}
	if next == nil || next.ID != "analyze-requirements" {
		t.Errorf("next = %v", next)
	}

	summary, err := svc.Summary()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(summary, "issue-fix") {
		t.Errorf("summary = %q", summary)
	}
}

func TestPlanService_CreateCheckpoint(t *testing.T) {
	svc, repo, _ := newService(t)
	generate(t, svc)

	cp, err := svc.CreateCheckpoint("design reviewed", []string{"FIX_DESIGN.md"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(cp.ID, "checkpoint-") {
		t.Errorf("id = %s", cp.ID)
	}
	if len(repo.state.Checkpoints) != 1 {
		t.Error("checkpoint not persisted")
	}
}

func TestPlanService_ValidateCompletion(t *testing.T) {
	svc, _, _ := newService(t)
	generate(t, svc)

	check, err := svc.ValidateCompletion()
	if err != nil {
		t.Fatal(err)
	}
	if check.Valid {
		t.Error("fresh plan reported complete")
	}
}

func TestPlanService_CustomCatalog(t *testing.T) {
	custom := execution.Catalog{
		execution.WorkflowType("hotfix"): {
			Phases: []execution.PhaseTemplate{
				{ID: "implement", Name: "Implement", Required: true, Steps: []execution.StepTemplate{
					{ID: "patch", Name: "Patch", Required: true},
				}},
			},
		},
	}
	repo := &memoryRepo{}
	svc := NewPlanService(repo, &memoryCatalogs{catalog: custom}, t.TempDir())

	plan, err := svc.GeneratePlan(execution.GenerateRequest{
		WorkflowType: execution.WorkflowType("hotfix"),
		BranchName:   "hotfix/now",
	})
	if err != nil {
		t.Fatal(err)
	}
	if plan.StepCount() != 1 {
		t.Errorf("steps = %d", plan.StepCount())
	}

	// The built-in workflow types are not reachable through a custom catalog.
	if _, err := svc.GeneratePlan(execution.GenerateRequest{
		WorkflowType: execution.WorkflowIssueFix,
		BranchName:   "fix/x",
	}); !errors.Is(err, execution.ErrUnknownWorkflowType) {
		t.Errorf("err = %v, want ErrUnknownWorkflowType", err)
	}
}
