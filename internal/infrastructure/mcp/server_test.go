package mcp

import (
	"context"
	"testing"

	"github.com/felixgeelhaar/workbench/pkg/application"
	"github.com/felixgeelhaar/workbench/pkg/domain/execution"
	"github.com/felixgeelhaar/workbench/pkg/storage"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	root := t.TempDir()
	s, err := NewServer(root)
	if err != nil {
		t.Fatal(err)
	}
	return s, root
}

func seedPlan(t *testing.T, root string) {
	t.Helper()
	svc := application.NewPlanService(storage.NewFilesystemRepository(root), nil, root)
	if _, err := svc.GeneratePlan(execution.GenerateRequest{
		WorkflowType: execution.WorkflowIssueFix,
		BranchName:   "fix/issue-1",
	}); err != nil {
		t.Fatal(err)
	}
}

func TestHandleGetPlan_NoPlan(t *testing.T) {
	s, _ := newTestServer(t)

	if _, err := s.handleGetPlan(context.Background(), struct{}{}); err == nil {
		t.Error("expected error without a plan")
	}
}

func TestHandleGetPlan(t *testing.T) {
	s, root := newTestServer(t)
	seedPlan(t, root)

	result, err := s.handleGetPlan(context.Background(), struct{}{})
	if err != nil {
		t.Fatal(err)
	}
	plan, ok := result.(*execution.ExecutionPlan)
	if !ok {
		t.Fatalf("result type %T", result)
	}
	if plan.WorkflowType != execution.WorkflowIssueFix {
		t.Errorf("workflow = %s", plan.WorkflowType)
	}
}

func TestHandleNextStep(t *testing.T) {
	s, root := newTestServer(t)
	seedPlan(t, root)

	result, err := s.handleNextStep(context.Background(), struct{}{})
	if err != nil {
		t.Fatal(err)
	}
	step, ok := result.(*execution.Step)
	if !ok {
		t.Fatalf("result type %T", result)
	}
	if step.ID != "analyze-requirements" {
		t.Errorf("next = %s", step.ID)
	}
}

func TestHandleUpdateStep(t *testing.T) {
	s, root := newTestServer(t)
	seedPlan(t, root)

	result, err := s.handleUpdateStep(context.Background(), UpdateStepArgs{
		StepID: "analyze-requirements",
		Event:  "complete",
	})
	if err != nil {
		t.Fatal(err)
	}
	response := result.(map[string]any)
	if response["applied"] != true {
		t.Errorf("response = %v", response)
	}
	if _, ok := response["checkpoint_id"]; !ok {
		t.Error("completion did not report a checkpoint")
	}
}

func TestHandleUpdateStep_GateBlocked(t *testing.T) {
	s, root := newTestServer(t)
	seedPlan(t, root)

	// reproduce-issue cannot complete: dependency and artifacts are missing.
	result, err := s.handleUpdateStep(context.Background(), UpdateStepArgs{
		StepID: "reproduce-issue",
		Event:  "complete",
	})
	if err != nil {
		t.Fatal(err)
	}
	response := result.(map[string]any)
	if response["applied"] != false {
		t.Errorf("response = %v", response)
	}
	if issues, ok := response["issues"].([]string); !ok || len(issues) == 0 {
		t.Errorf("issues = %v", response["issues"])
	}
}

func TestHandleCheckStep_Unknown(t *testing.T) {
	s, root := newTestServer(t)
	seedPlan(t, root)

	if _, err := s.handleCheckStep(context.Background(), CheckStepArgs{StepID: "nope"}); err == nil {
		t.Error("expected error for unknown step")
	}
}

func TestHandleCheckpointAndStatus(t *testing.T) {
	s, root := newTestServer(t)
	seedPlan(t, root)

	result, err := s.handleCheckpoint(context.Background(), CheckpointArgs{Message: "kickoff"})
	if err != nil {
		t.Fatal(err)
	}
	cp := result.(execution.Checkpoint)
	if cp.Message != "kickoff" {
		t.Errorf("checkpoint = %+v", cp)
	}

	summary, err := s.handleStatus(context.Background(), struct{}{})
	if err != nil {
		t.Fatal(err)
	}
	if summary == "" {
		t.Error("summary empty")
	}
}
