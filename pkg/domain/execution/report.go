package execution

import (
	"fmt"
	"strings"
)

// NextStep returns the first step in canonical order whose status is pending,
// or nil if every step has been started or completed. Canonical order is
// phase array order then step array order; it is the single source of truth
// for "what to do next".
func NextStep(plan *ExecutionPlan) *Step {
	for pi := range plan.Phases {
		for si := range plan.Phases[pi].Steps {
			if plan.Phases[pi].Steps[si].Status.IsPending() {
				return &plan.Phases[pi].Steps[si]
			}
		}
	}
	return nil
}

// MandatoryIncompleteSteps returns all required steps not yet completed, in
// canonical order.
func MandatoryIncompleteSteps(plan *ExecutionPlan) []Step {
	var steps []Step
	for _, phase := range plan.Phases {
		for _, step := range phase.Steps {
			if step.Required && !step.Status.IsComplete() {
				steps = append(steps, step)
			}
		}
	}
	return steps
}

// CompletionCheck aggregates the whole-plan completion state.
type CompletionCheck struct {
	Valid        bool     `json:"valid"`
	MissingSteps []string `json:"missing_steps,omitempty"`
}

// ValidateRequiredSteps reports whether every required step is completed.
func ValidateRequiredSteps(plan *ExecutionPlan) CompletionCheck {
	check := CompletionCheck{Valid: true}
	for _, step := range MandatoryIncompleteSteps(plan) {
		check.Valid = false
		check.MissingSteps = append(check.MissingSteps, step.ID)
	}
	return check
}

// PlanSummary renders a deterministic human-readable report of the plan for
// terminal or agent consumption.
func PlanSummary(plan *ExecutionPlan) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Workflow:  %s\n", plan.WorkflowType)
	fmt.Fprintf(&b, "Branch:    %s\n", plan.BranchName)
	fmt.Fprintf(&b, "Status:    %s (%d/%d steps completed)\n",
		plan.Status.DisplayName(), plan.CompletedStepCount(), plan.StepCount())
	if len(plan.IssueIDs) > 0 {
		ids := make([]string, len(plan.IssueIDs))
		for i, id := range plan.IssueIDs {
			ids[i] = fmt.Sprintf("#%d", id)
		}
		fmt.Fprintf(&b, "Issues:    %s\n", strings.Join(ids, ", "))
	}

	b.WriteString("\nPhases:\n")
	for _, phase := range plan.Phases {
		marker := " "
		if phase.ID == plan.CurrentPhase {
			marker = ">"
		}
		fmt.Fprintf(&b, "%s %-12s %s\n", marker, phase.Name, phase.Status.DisplayName())
	}

	if next := NextStep(plan); next != nil {
		fmt.Fprintf(&b, "\nNext step: %s (%s)\n", next.Name, next.ID)
	}

	if mandatory := MandatoryIncompleteSteps(plan); len(mandatory) > 0 {
		b.WriteString("\nRemaining mandatory steps:\n")
		for _, step := range mandatory {
			fmt.Fprintf(&b, "  - %s (%s)\n", step.Name, step.ID)
		}
	}

	if len(plan.Metadata.RequiredArtifacts) > 0 {
		b.WriteString("\nRequired artifacts:\n")
		for _, artifact := range plan.Metadata.RequiredArtifacts {
			fmt.Fprintf(&b, "  - %s\n", artifact)
		}
	}

	return b.String()
}
