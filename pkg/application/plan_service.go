// Package application orchestrates the execution engine over persistence
// and the outer collaborators. Services hold small repository interfaces so
// tests can swap in fakes.
package application

import (
	"fmt"

	"github.com/felixgeelhaar/workbench/pkg/domain/execution"
)

// PlanService drives plan generation and step transitions for one workspace.
type PlanService struct {
	repo     execution.StateRepository
	catalogs execution.CatalogRepository
	root     string
}

func NewPlanService(repo execution.StateRepository, catalogs execution.CatalogRepository, root string) *PlanService {
	return &PlanService{repo: repo, catalogs: catalogs, root: root}
}

// Catalog returns the workspace's custom catalog if one is configured,
// otherwise the built-in default.
func (s *PlanService) Catalog() (execution.Catalog, error) {
	if s.catalogs != nil {
		catalog, err := s.catalogs.LoadCatalog()
		if err != nil {
			return nil, err
		}
		if catalog != nil {
			return catalog, nil
		}
	}
	return execution.DefaultCatalog(), nil
}

// GeneratePlan builds a fresh plan and persists it, replacing any previous
// plan and its checkpoints for this workspace.
func (s *PlanService) GeneratePlan(req execution.GenerateRequest) (*execution.ExecutionPlan, error) {
	catalog, err := s.Catalog()
	if err != nil {
		return nil, err
	}
	if req.WorkspacePath == "" {
		req.WorkspacePath = s.root
	}

	plan, err := execution.NewGenerator(catalog).Generate(req)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SaveExecution(&execution.ExecutionState{ExecutionPlan: plan}); err != nil {
		return nil, err
	}
	return plan, nil
}

// LoadState returns the persisted state, or ErrNoPlan when nothing has been
// generated in this workspace yet.
func (s *PlanService) LoadState() (*execution.ExecutionState, error) {
	state, err := s.repo.LoadExecution()
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, execution.ErrNoPlan
	}
	return state, nil
}

// TransitionResult reports one step transition: the updated plan, the gate
// decision that admitted it, and the checkpoint recorded for completions.
type TransitionResult struct {
	Plan       *execution.ExecutionPlan
	Gate       execution.GateResult
	Checkpoint *execution.Checkpoint
}

// TransitionStep applies a start or complete event to a step. Starting runs
// the dependency half of the gate; completing runs the full gate including
// artifact checks. A blocked gate refuses the transition unless force is
// set. Completions append an automatic checkpoint. The new state is
// persisted before returning.
func (s *PlanService) TransitionStep(stepID, event string, force bool) (*TransitionResult, error) {
	state, err := s.LoadState()
	if err != nil {
		return nil, err
	}
	plan := state.ExecutionPlan

	_, step, ok := plan.FindStep(stepID)
	if !ok {
		return nil, &execution.StepNotFoundError{StepID: stepID}
	}

	fsm, err := execution.NewStepStateMachine(string(step.Status), stepID)
	if err != nil {
		return nil, err
	}
	if err := fsm.Transition(event); err != nil {
		return nil, err
	}
	target := fsm.CurrentStatus()

	var gate execution.GateResult
	if target.IsComplete() {
		gate, err = execution.EnforceStepCompletion(plan.WorkspacePath, plan, stepID)
	} else {
		gate, err = execution.CheckStepDependencies(plan, stepID)
	}
	if err != nil {
		return nil, err
	}
	if !gate.CanProceed && !force {
		return &TransitionResult{Plan: plan, Gate: gate}, fmt.Errorf("step %s is blocked: %d issue(s)", stepID, len(gate.Issues))
	}

	next, err := execution.UpdateStepStatus(plan, stepID, target)
	if err != nil {
		return nil, err
	}

	result := &TransitionResult{Plan: next, Gate: gate}
	nextState := &execution.ExecutionState{ExecutionPlan: next, Checkpoints: state.Checkpoints}
	if target.IsComplete() {
		phase, _, _ := next.FindStep(stepID)
		cp := execution.NewCheckpoint(phase.ID, stepID, fmt.Sprintf("step %s completed", stepID), artifactPaths(step))
		nextState = nextState.WithCheckpoint(cp)
		result.Checkpoint = &cp
	}

	if err := s.repo.SaveExecution(nextState); err != nil {
		return nil, err
	}
	return result, nil
}

// CheckStep runs the full gate for a step without changing any state.
func (s *PlanService) CheckStep(stepID string) (execution.GateResult, error) {
	state, err := s.LoadState()
	if err != nil {
		return execution.GateResult{}, err
	}
	plan := state.ExecutionPlan
	return execution.EnforceStepCompletion(plan.WorkspacePath, plan, stepID)
}

// Next returns the first pending step in canonical order, or nil when the
// plan has none left.
func (s *PlanService) Next() (*execution.Step, error) {
	state, err := s.LoadState()
	if err != nil {
		return nil, err
	}
	return execution.NextStep(state.ExecutionPlan), nil
}

// Summary renders the deterministic plan summary.
func (s *PlanService) Summary() (string, error) {
	state, err := s.LoadState()
	if err != nil {
		return "", err
	}
	return execution.PlanSummary(state.ExecutionPlan), nil
}

// CreateCheckpoint appends a manual checkpoint at the plan's current
// position and persists it.
func (s *PlanService) CreateCheckpoint(message string, artifacts []string) (execution.Checkpoint, error) {
	state, err := s.LoadState()
	if err != nil {
		return execution.Checkpoint{}, err
	}

	plan := state.ExecutionPlan
	cp := execution.NewCheckpoint(plan.CurrentPhase, plan.CurrentStep, message, artifacts)
	if err := s.repo.SaveExecution(state.WithCheckpoint(cp)); err != nil {
		return execution.Checkpoint{}, err
	}
	return cp, nil
}

// ValidateCompletion reports whether every required step is completed.
func (s *PlanService) ValidateCompletion() (execution.CompletionCheck, error) {
	state, err := s.LoadState()
	if err != nil {
		return execution.CompletionCheck{}, err
	}
	return execution.ValidateRequiredSteps(state.ExecutionPlan), nil
}

func artifactPaths(step *execution.Step) []string {
	if len(step.Artifacts) == 0 {
		return nil
	}
	paths := make([]string, len(step.Artifacts))
	for i, a := range step.Artifacts {
		paths[i] = a.Path
	}
	return paths
}
