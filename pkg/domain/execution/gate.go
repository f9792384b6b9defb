package execution

import (
	"fmt"
	"os"
	"path/filepath"
)

// GateResult is the admission decision for one candidate step. Issues are
// human-readable strings naming the specific unmet dependency or missing
// artifact, never bare booleans, so callers can present actionable next steps.
type GateResult struct {
	CanProceed bool     `json:"can_proceed"`
	Issues     []string `json:"issues,omitempty"`
}

// ArtifactCheck is the result of checking one step's artifacts on disk.
type ArtifactCheck struct {
	Valid   bool     `json:"valid"`
	Missing []string `json:"missing,omitempty"`
}

// EnforceStepCompletion decides whether the candidate step's dependencies and
// required artifacts are satisfied well enough to proceed.
//
// An unknown step id is a hard error (caller misuse). Unmet dependencies and
// missing exact artifacts are soft issues collected into the result; artifact
// checks apply only to required steps. Non-required steps always proceed —
// gating is reserved for mandatory work, so optional or exploratory steps
// never block the plan — though dependency issues are still reported for
// information.
func EnforceStepCompletion(workspacePath string, plan *ExecutionPlan, stepID string) (GateResult, error) {
	if plan == nil {
		return GateResult{}, ErrNoPlan
	}
	_, step, ok := plan.FindStep(stepID)
	if !ok {
		return GateResult{}, &StepNotFoundError{StepID: stepID}
	}

	var issues []string
	for _, depID := range step.DependsOn {
		_, dep, ok := plan.FindStep(depID)
		if !ok {
			issues = append(issues, fmt.Sprintf("dependency not satisfied: unknown step %s", depID))
			continue
		}
		if !dep.Status.IsComplete() {
			issues = append(issues, fmt.Sprintf("dependency not satisfied: %s is not completed (status: %s)", dep.Name, dep.Status))
		}
	}

	if step.Required {
		check := ValidateStepArtifacts(workspacePath, step)
		for _, missing := range check.Missing {
			issues = append(issues, fmt.Sprintf("missing required artifact: %s", missing))
		}
	}

	return GateResult{
		CanProceed: !step.Required || len(issues) == 0,
		Issues:     issues,
	}, nil
}

// CheckStepDependencies is the dependency half of the gate on its own, used
// when a step is being started: its artifacts cannot exist yet, so only the
// upstream steps are checked. Unknown step ids are hard errors as above.
func CheckStepDependencies(plan *ExecutionPlan, stepID string) (GateResult, error) {
	if plan == nil {
		return GateResult{}, ErrNoPlan
	}
	_, step, ok := plan.FindStep(stepID)
	if !ok {
		return GateResult{}, &StepNotFoundError{StepID: stepID}
	}

	var issues []string
	for _, depID := range step.DependsOn {
		_, dep, ok := plan.FindStep(depID)
		if !ok {
			issues = append(issues, fmt.Sprintf("dependency not satisfied: unknown step %s", depID))
			continue
		}
		if !dep.Status.IsComplete() {
			issues = append(issues, fmt.Sprintf("dependency not satisfied: %s is not completed (status: %s)", dep.Name, dep.Status))
		}
	}

	return GateResult{
		CanProceed: !step.Required || len(issues) == 0,
		Issues:     issues,
	}, nil
}

// ValidateStepArtifacts checks that each of the step's exact artifacts exists
// under workspacePath. Glob artifacts cannot be resolved generically and are
// treated as satisfied without touching the filesystem.
func ValidateStepArtifacts(workspacePath string, step *Step) ArtifactCheck {
	check := ArtifactCheck{Valid: true}
	for _, artifact := range step.Artifacts {
		if artifact.IsGlob() {
			continue
		}
		if _, err := os.Stat(filepath.Join(workspacePath, artifact.Path)); err != nil {
			check.Valid = false
			check.Missing = append(check.Missing, artifact.Path)
		}
	}
	return check
}
