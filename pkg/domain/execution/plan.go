package execution

import "time"

// Step is the smallest trackable unit of work.
type Step struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Required    bool       `json:"required"`
	Status      Status     `json:"status"`
	DependsOn   []string   `json:"depends_on,omitempty"`
	Artifacts   []Artifact `json:"artifacts,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Phase is an ordered, named grouping of steps representing a stage of work.
type Phase struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Required bool   `json:"required"`
	Status   Status `json:"status"`
	Steps    []Step `json:"steps"`
}

// ValidationRule is a plan-level completion condition surfaced in reports
// ("has the bug been reproduced", "do all tests pass").
type ValidationRule struct {
	ID          string `json:"id" yaml:"id"`
	Required    bool   `json:"required" yaml:"required"`
	Target      string `json:"target" yaml:"target"`
	Description string `json:"description" yaml:"description"`
}

// IssueRecord is a fetched issue or pull request. The engine treats it as
// opaque metadata beyond copying it into the plan for prompt rendering.
type IssueRecord struct {
	Number int      `json:"number"`
	Title  string   `json:"title"`
	Body   string   `json:"body,omitempty"`
	Labels []string `json:"labels,omitempty"`
	State  string   `json:"state,omitempty"`
	URL    string   `json:"url,omitempty"`
}

// PlanMetadata aggregates workflow-level data so downstream components never
// need to know per-workflow catalog details.
type PlanMetadata struct {
	ProjectKey        string           `json:"project_key,omitempty"`
	RequiredArtifacts []string         `json:"required_artifacts,omitempty"`
	ValidationRules   []ValidationRule `json:"validation_rules,omitempty"`
	Issues            []IssueRecord    `json:"issues,omitempty"`
	SelectedPrompts   []string         `json:"selected_prompts,omitempty"`
}

// ExecutionPlan is the dependency-gated, checkpointable record of one
// multi-phase development task. It is created once by the generator and
// mutated only through UpdateStepStatus, which returns a new value.
type ExecutionPlan struct {
	ID            string       `json:"id"`
	WorkflowType  WorkflowType `json:"workflow_type"`
	WorkspacePath string       `json:"workspace_path"`
	BranchName    string       `json:"branch_name"`
	IssueIDs      []int        `json:"issue_ids,omitempty"`
	Status        Status       `json:"status"`
	CurrentPhase  string       `json:"current_phase"`
	CurrentStep   string       `json:"current_step,omitempty"`
	Phases        []Phase      `json:"phases"`
	Metadata      PlanMetadata `json:"metadata"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// FindStep returns the step with the given id and the phase containing it.
// The returned pointers alias the plan's own slices.
func (p *ExecutionPlan) FindStep(stepID string) (*Phase, *Step, bool) {
	for pi := range p.Phases {
		phase := &p.Phases[pi]
		for si := range phase.Steps {
			if phase.Steps[si].ID == stepID {
				return phase, &phase.Steps[si], true
			}
		}
	}
	return nil, nil, false
}

// Steps returns all steps in canonical order: phase array order, then step
// array order within each phase. This is the plan's single total order.
func (p *ExecutionPlan) Steps() []Step {
	var steps []Step
	for _, phase := range p.Phases {
		steps = append(steps, phase.Steps...)
	}
	return steps
}

// StepCount returns the total number of steps across all phases.
func (p *ExecutionPlan) StepCount() int {
	n := 0
	for _, phase := range p.Phases {
		n += len(phase.Steps)
	}
	return n
}

// CompletedStepCount returns the number of completed steps.
func (p *ExecutionPlan) CompletedStepCount() int {
	n := 0
	for _, phase := range p.Phases {
		for _, step := range phase.Steps {
			if step.Status.IsComplete() {
				n++
			}
		}
	}
	return n
}

// Progress returns completion as a fraction in [0, 1].
func (p *ExecutionPlan) Progress() float64 {
	total := p.StepCount()
	if total == 0 {
		return 0
	}
	return float64(p.CompletedStepCount()) / float64(total)
}

// Clone returns a deep copy. Callers holding the original are never affected
// by changes to the copy.
func (p *ExecutionPlan) Clone() *ExecutionPlan {
	clone := *p
	clone.IssueIDs = append([]int(nil), p.IssueIDs...)
	clone.Phases = make([]Phase, len(p.Phases))
	for i, phase := range p.Phases {
		cp := phase
		cp.Steps = make([]Step, len(phase.Steps))
		for j, step := range phase.Steps {
			cs := step
			cs.DependsOn = append([]string(nil), step.DependsOn...)
			cs.Artifacts = append([]Artifact(nil), step.Artifacts...)
			if step.StartedAt != nil {
				t := *step.StartedAt
				cs.StartedAt = &t
			}
			if step.CompletedAt != nil {
				t := *step.CompletedAt
				cs.CompletedAt = &t
			}
			cp.Steps[j] = cs
		}
		clone.Phases[i] = cp
	}
	clone.Metadata.RequiredArtifacts = append([]string(nil), p.Metadata.RequiredArtifacts...)
	clone.Metadata.ValidationRules = append([]ValidationRule(nil), p.Metadata.ValidationRules...)
	clone.Metadata.SelectedPrompts = append([]string(nil), p.Metadata.SelectedPrompts...)
	clone.Metadata.Issues = make([]IssueRecord, len(p.Metadata.Issues))
	for i, issue := range p.Metadata.Issues {
		ci := issue
		ci.Labels = append([]string(nil), issue.Labels...)
		clone.Metadata.Issues[i] = ci
	}
	return &clone
}
