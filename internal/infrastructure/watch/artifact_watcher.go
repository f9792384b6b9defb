package watch

import (
	"context"
	"time"

	"github.com/felixgeelhaar/workbench/pkg/application"
	"github.com/felixgeelhaar/workbench/pkg/domain/execution"
)

// CheckFunc receives the gate verdict for a step after a matching artifact
// changed on disk.
type CheckFunc func(step *execution.Step, result execution.GateResult)

// ArtifactWatcher watches a workspace and re-runs the completion gate for
// the active step whenever one of its expected artifacts appears or changes.
type ArtifactWatcher struct {
	plans    *application.PlanService
	root     string
	debounce time.Duration
	onCheck  CheckFunc
}

func NewArtifactWatcher(plans *application.PlanService, root string, debounce time.Duration, onCheck CheckFunc) *ArtifactWatcher {
	return &ArtifactWatcher{plans: plans, root: root, debounce: debounce, onCheck: onCheck}
}

// Run blocks until the context is cancelled.
func (w *ArtifactWatcher) Run(ctx context.Context) error {
	fsw, err := NewFSWatcher(w.debounce, w.handleChange)
	if err != nil {
		return err
	}
	if err := fsw.WatchRecursive(w.root); err != nil {
		return err
	}
	return fsw.Run(ctx)
}

func (w *ArtifactWatcher) handleChange(event ChangeEvent) {
	if event.ChangeType != "create" && event.ChangeType != "write" {
		return
	}

	step := w.activeStep()
	if step == nil {
		return
	}
	matcher := NewArtifactMatcher(w.root, step.Artifacts)
	if _, ok := matcher.Match(event.Path); !ok {
		return
	}

	result, err := w.plans.CheckStep(step.ID)
	if err != nil {
		return
	}
	if w.onCheck != nil {
		w.onCheck(step, result)
	}
}

// activeStep is the in-progress step if one exists, otherwise the next
// pending step in canonical order.
func (w *ArtifactWatcher) activeStep() *execution.Step {
	state, err := w.plans.LoadState()
	if err != nil {
		return nil
	}
	plan := state.ExecutionPlan

	if plan.CurrentStep != "" {
		if _, step, ok := plan.FindStep(plan.CurrentStep); ok && step.Status == execution.StatusInProgress {
			return step
		}
	}
	return execution.NextStep(plan)
}
