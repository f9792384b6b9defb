package execution

import "time"

// UpdateStepStatus applies a status transition to one step and rolls the
// change up into phase and plan status. It is a pure function over plan
// values: the input plan is never mutated, and applying the same transition
// twice yields an equivalent plan.
//
// Moving to in_progress stamps StartedAt and points CurrentStep at the step;
// moving to completed stamps CompletedAt. Status regression is rejected with
// a TransitionError.
func UpdateStepStatus(plan *ExecutionPlan, stepID string, status Status) (*ExecutionPlan, error) {
	if plan == nil {
		return nil, ErrNoPlan
	}
	if !status.IsValid() {
		return nil, &TransitionError{StepID: stepID, From: "", To: status}
	}

	next := plan.Clone()
	phase, step, ok := next.FindStep(stepID)
	if !ok {
		return nil, &StepNotFoundError{StepID: stepID}
	}
	if !step.Status.CanAdvanceTo(status) {
		return nil, &TransitionError{StepID: stepID, From: step.Status, To: status}
	}

	now := time.Now()
	if step.Status != status {
		switch status {
		case StatusInProgress:
			if step.StartedAt == nil {
				step.StartedAt = &now
			}
		case StatusCompleted:
			if step.CompletedAt == nil {
				step.CompletedAt = &now
			}
		}
		step.Status = status
		next.UpdatedAt = now
	}
	if status == StatusInProgress {
		next.CurrentStep = stepID
		next.CurrentPhase = phase.ID
	}

	rollUp(next)
	return next, nil
}

// rollUp recomputes phase and plan status bottom-up. It is unconditional and
// idempotent: the result depends only on step statuses.
func rollUp(plan *ExecutionPlan) {
	for i := range plan.Phases {
		plan.Phases[i].Status = phaseStatus(&plan.Phases[i])
	}
	plan.Status = planStatus(plan)

	// Keep the current-phase pointer on the first phase that still has work.
	for i := range plan.Phases {
		if !plan.Phases[i].Status.IsComplete() {
			plan.CurrentPhase = plan.Phases[i].ID
			return
		}
	}
	if n := len(plan.Phases); n > 0 {
		plan.CurrentPhase = plan.Phases[n-1].ID
	}
}

// phaseStatus derives a phase's status from its steps: completed when every
// required step is completed, in_progress when any step has moved off
// pending, otherwise pending. A phase with no required steps completes only
// when all of its steps do.
func phaseStatus(phase *Phase) Status {
	required := 0
	requiredDone := 0
	allDone := len(phase.Steps) > 0
	anyStarted := false
	for _, step := range phase.Steps {
		if step.Required {
			required++
			if step.Status.IsComplete() {
				requiredDone++
			}
		}
		if !step.Status.IsComplete() {
			allDone = false
		}
		if !step.Status.IsPending() {
			anyStarted = true
		}
	}

	switch {
	case required > 0 && requiredDone == required:
		return StatusCompleted
	case required == 0 && allDone:
		return StatusCompleted
	case anyStarted:
		return StatusInProgress
	default:
		return StatusPending
	}
}

// planStatus derives the plan's status from its phases: completed when every
// required phase is completed, in_progress when any phase has moved off
// pending, otherwise pending.
func planStatus(plan *ExecutionPlan) Status {
	required := 0
	requiredDone := 0
	anyStarted := false
	for _, phase := range plan.Phases {
		if phase.Required {
			required++
			if phase.Status.IsComplete() {
				requiredDone++
			}
		}
		if !phase.Status.IsPending() {
			anyStarted = true
		}
	}

	switch {
	case required > 0 && requiredDone == required:
		return StatusCompleted
	case anyStarted:
		return StatusInProgress
	default:
		return StatusPending
	}
}
