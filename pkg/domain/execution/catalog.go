package execution

import "fmt"

// StepTemplate seeds one step of a generated plan.
type StepTemplate struct {
	ID        string   `json:"id" yaml:"id"`
	Name      string   `json:"name" yaml:"name"`
	Required  bool     `json:"required" yaml:"required"`
	DependsOn []string `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`
	Artifacts []string `json:"artifacts,omitempty" yaml:"artifacts,omitempty"`
}

// PhaseTemplate seeds one phase of a generated plan.
type PhaseTemplate struct {
	ID       string         `json:"id" yaml:"id"`
	Name     string         `json:"name" yaml:"name"`
	Required bool           `json:"required" yaml:"required"`
	Steps    []StepTemplate `json:"steps" yaml:"steps"`
}

// WorkflowTemplate is the full phase/step catalog for one workflow type.
type WorkflowTemplate struct {
	Phases          []PhaseTemplate  `json:"phases" yaml:"phases"`
	ValidationRules []ValidationRule `json:"validation_rules,omitempty" yaml:"validation_rules,omitempty"`
}

// Catalog maps workflow types to their templates. It is plain configuration
// data passed into the generator, never hidden global state, so callers can
// supply custom catalogs for testing or project-specific workflows.
type Catalog map[WorkflowType]WorkflowTemplate

// Validate checks structural rules across every template in the catalog:
// step ids unique within a workflow, dependencies reference earlier-or-same-
// phase steps only, and the dependency graph is a DAG.
func (c Catalog) Validate() error {
	for wt, tmpl := range c {
		if err := tmpl.validate(); err != nil {
			return fmt.Errorf("%w: workflow %s: %v", ErrInvalidCatalog, wt, err)
		}
	}
	return nil
}

func (t WorkflowTemplate) validate() error {
	// phaseIndex records the phase each step is declared in; a dependency may
	// only point at a step in the same or an earlier phase.
	phaseIndex := make(map[string]int)
	for pi, phase := range t.Phases {
		if phase.ID == "" {
			return fmt.Errorf("phase %d has an empty id", pi)
		}
		for _, step := range phase.Steps {
			if step.ID == "" {
				return fmt.Errorf("phase %s contains a step with an empty id", phase.ID)
			}
			if _, dup := phaseIndex[step.ID]; dup {
				return fmt.Errorf("duplicate step id: %s", step.ID)
			}
			phaseIndex[step.ID] = pi
		}
	}

	deps := make(map[string][]string)
	for pi, phase := range t.Phases {
		for _, step := range phase.Steps {
			for _, dep := range step.DependsOn {
				depPhase, ok := phaseIndex[dep]
				if !ok {
					return fmt.Errorf("step %s depends on unknown step %s", step.ID, dep)
				}
				if depPhase > pi {
					return fmt.Errorf("step %s depends on %s in a later phase", step.ID, dep)
				}
				deps[step.ID] = append(deps[step.ID], dep)
			}
		}
	}

	// Cycle check via depth-first walk: 0 unvisited, 1 on stack, 2 done.
	state := make(map[string]int)
	var visit func(id string) error
	visit = func(id string) error {
		switch state[id] {
		case 1:
			return fmt.Errorf("dependency cycle through step %s", id)
		case 2:
			return nil
		}
		state[id] = 1
		for _, dep := range deps[id] {
			if err := visit(dep); err != nil {
				return err
			}
		}
		state[id] = 2
		return nil
	}
	for id := range phaseIndex {
		if err := visit(id); err != nil {
			return err
		}
	}
	return nil
}

// Phase ids shared by every default workflow.
const (
	PhaseAnalyze   = "analyze"
	PhaseDesign    = "design"
	PhaseImplement = "implement"
	PhaseValidate  = "validate"
	PhaseDocument  = "document"
	PhaseFinalize  = "finalize"
)

// DefaultCatalog returns the built-in phase/step catalog for the four
// standard workflow types. The returned value is freshly built on each call;
// callers may modify it freely.
func DefaultCatalog() Catalog {
	return Catalog{
		WorkflowIssueFix: {
			Phases: []PhaseTemplate{
				{ID: PhaseAnalyze, Name: "Analyze", Required: true, Steps: []StepTemplate{
					{ID: "analyze-requirements", Name: "Analyze Requirements", Required: true},
					{ID: "reproduce-issue", Name: "Reproduce Issue", Required: true,
						DependsOn: []string{"analyze-requirements"},
						Artifacts: []string{"BUGREPORT.md", "reproduction-tests.js"}},
					{ID: "root-cause-analysis", Name: "Root Cause Analysis", Required: true,
						DependsOn: []string{"reproduce-issue"}},
				}},
				{ID: PhaseDesign, Name: "Design", Required: true, Steps: []StepTemplate{
					{ID: "design-fix", Name: "Design Fix", Required: true,
						DependsOn: []string{"root-cause-analysis"},
						Artifacts: []string{"FIX_DESIGN.md"}},
					{ID: "review-affected-surface", Name: "Review Affected Surface",
						DependsOn: []string{"design-fix"}},
				}},
				{ID: PhaseImplement, Name: "Implement", Required: true, Steps: []StepTemplate{
					{ID: "implement-fix", Name: "Implement Fix", Required: true,
						DependsOn: []string{"design-fix"}},
					{ID: "update-sample-app", Name: "Update Sample App",
						DependsOn: []string{"implement-fix"}},
				}},
				{ID: PhaseValidate, Name: "Validate", Required: true, Steps: []StepTemplate{
					{ID: "run-reproduction-tests", Name: "Run Reproduction Tests", Required: true,
						DependsOn: []string{"implement-fix"},
						Artifacts: []string{"TEST_RESULTS.md"}},
					{ID: "run-regression-suite", Name: "Run Regression Suite", Required: true,
						DependsOn: []string{"implement-fix"},
						Artifacts: []string{"coverage/*.json"}},
				}},
				{ID: PhaseDocument, Name: "Document", Required: true, Steps: []StepTemplate{
					{ID: "generate-pr-description", Name: "Generate PR Description", Required: true,
						DependsOn: []string{"run-reproduction-tests"},
						Artifacts: []string{"CHANGES_PR_DESCRIPTION.md"}},
					{ID: "update-changelog", Name: "Update Changelog",
						DependsOn: []string{"generate-pr-description"}},
				}},
				{ID: PhaseFinalize, Name: "Finalize", Required: true, Steps: []StepTemplate{
					{ID: "prepare-final-report", Name: "Prepare Final Report", Required: true,
						DependsOn: []string{"generate-pr-description"},
						Artifacts: []string{"FINAL_REPORT.md"}},
					{ID: "cleanup-workspace", Name: "Clean Up Workspace",
						DependsOn: []string{"prepare-final-report"}},
				}},
			},
			ValidationRules: []ValidationRule{
				{ID: "bug-reproduced", Required: true, Target: "BUGREPORT.md",
					Description: "The reported bug has been reproduced with a failing test"},
				{ID: "tests-pass", Required: true, Target: "test suite",
					Description: "All tests pass with the fix applied"},
				{ID: "pr-description-written", Required: true, Target: "CHANGES_PR_DESCRIPTION.md",
					Description: "The change is described for review"},
			},
		},
		WorkflowFeatureDevelopment: {
			Phases: []PhaseTemplate{
				{ID: PhaseAnalyze, Name: "Analyze", Required: true, Steps: []StepTemplate{
					{ID: "analyze-requirements", Name: "Analyze Requirements", Required: true},
					{ID: "survey-existing-behavior", Name: "Survey Existing Behavior",
						DependsOn: []string{"analyze-requirements"}},
				}},
				{ID: PhaseDesign, Name: "Design", Required: true, Steps: []StepTemplate{
					{ID: "define-api-contract", Name: "Define API Contract", Required: true,
						DependsOn: []string{"analyze-requirements"},
						Artifacts: []string{"API_CONTRACT.md"}},
					{ID: "design-feature", Name: "Design Feature", Required: true,
						DependsOn: []string{"define-api-contract"},
						Artifacts: []string{"FEATURE_DESIGN.md"}},
				}},
				{ID: PhaseImplement, Name: "Implement", Required: true, Steps: []StepTemplate{
					{ID: "implement-feature", Name: "Implement Feature", Required: true,
						DependsOn: []string{"design-feature"}},
					{ID: "add-sample-usage", Name: "Add Sample Usage",
						DependsOn: []string{"implement-feature"}},
				}},
				{ID: PhaseValidate, Name: "Validate", Required: true, Steps: []StepTemplate{
					{ID: "write-feature-tests", Name: "Write Feature Tests", Required: true,
						DependsOn: []string{"implement-feature"},
						Artifacts: []string{"feature-tests.js"}},
					{ID: "run-regression-suite", Name: "Run Regression Suite", Required: true,
						DependsOn: []string{"implement-feature"}},
				}},
				{ID: PhaseDocument, Name: "Document", Required: true, Steps: []StepTemplate{
					{ID: "generate-pr-description", Name: "Generate PR Description", Required: true,
						DependsOn: []string{"write-feature-tests"},
						Artifacts: []string{"CHANGES_PR_DESCRIPTION.md"}},
					{ID: "update-docs", Name: "Update Documentation",
						DependsOn: []string{"generate-pr-description"}},
				}},
				{ID: PhaseFinalize, Name: "Finalize", Required: true, Steps: []StepTemplate{
					{ID: "prepare-final-report", Name: "Prepare Final Report", Required: true,
						DependsOn: []string{"generate-pr-description"},
						Artifacts: []string{"FINAL_REPORT.md"}},
				}},
			},
			ValidationRules: []ValidationRule{
				{ID: "api-contract-defined", Required: true, Target: "API_CONTRACT.md",
					Description: "The public API surface is agreed before implementation"},
				{ID: "tests-pass", Required: true, Target: "test suite",
					Description: "Feature and regression tests pass"},
			},
		},
		WorkflowMaintenance: {
			Phases: []PhaseTemplate{
				{ID: PhaseAnalyze, Name: "Analyze", Required: true, Steps: []StepTemplate{
					{ID: "assess-scope", Name: "Assess Scope", Required: true},
				}},
				{ID: PhaseDesign, Name: "Design", Required: true, Steps: []StepTemplate{
					{ID: "plan-changes", Name: "Plan Changes", Required: true,
						DependsOn: []string{"assess-scope"}},
				}},
				{ID: PhaseImplement, Name: "Implement", Required: true, Steps: []StepTemplate{
					{ID: "apply-changes", Name: "Apply Changes", Required: true,
						DependsOn: []string{"plan-changes"}},
				}},
				{ID: PhaseValidate, Name: "Validate", Required: true, Steps: []StepTemplate{
					{ID: "run-regression-suite", Name: "Run Regression Suite", Required: true,
						DependsOn: []string{"apply-changes"}},
				}},
				{ID: PhaseDocument, Name: "Document", Required: true, Steps: []StepTemplate{
					{ID: "generate-pr-description", Name: "Generate PR Description", Required: true,
						DependsOn: []string{"run-regression-suite"},
						Artifacts: []string{"CHANGES_PR_DESCRIPTION.md"}},
				}},
				{ID: PhaseFinalize, Name: "Finalize", Required: true, Steps: []StepTemplate{
					{ID: "prepare-final-report", Name: "Prepare Final Report", Required: true,
						DependsOn: []string{"generate-pr-description"},
						Artifacts: []string{"FINAL_REPORT.md"}},
				}},
			},
			ValidationRules: []ValidationRule{
				{ID: "tests-pass", Required: true, Target: "test suite",
					Description: "The full suite passes after maintenance changes"},
			},
		},
		WorkflowExploration: {
			Phases: []PhaseTemplate{
				{ID: PhaseAnalyze, Name: "Analyze", Required: true, Steps: []StepTemplate{
					{ID: "frame-questions", Name: "Frame Questions", Required: true},
				}},
				{ID: PhaseDesign, Name: "Design", Required: true, Steps: []StepTemplate{
					{ID: "outline-experiments", Name: "Outline Experiments", Required: true,
						DependsOn: []string{"frame-questions"}},
				}},
				{ID: PhaseImplement, Name: "Implement", Required: false, Steps: []StepTemplate{
					{ID: "run-experiments", Name: "Run Experiments",
						DependsOn: []string{"outline-experiments"},
						Artifacts: []string{"notes/*.md"}},
				}},
				{ID: PhaseValidate, Name: "Validate", Required: false, Steps: []StepTemplate{
					{ID: "capture-findings", Name: "Capture Findings",
						DependsOn: []string{"run-experiments"}},
				}},
				{ID: PhaseDocument, Name: "Document", Required: true, Steps: []StepTemplate{
					{ID: "summarize-findings", Name: "Summarize Findings", Required: true,
						DependsOn: []string{"outline-experiments"},
						Artifacts: []string{"FINDINGS.md"}},
				}},
				{ID: PhaseFinalize, Name: "Finalize", Required: false, Steps: []StepTemplate{
					{ID: "prepare-final-report", Name: "Prepare Final Report",
						DependsOn: []string{"summarize-findings"}},
				}},
			},
			ValidationRules: []ValidationRule{
				{ID: "findings-recorded", Required: true, Target: "FINDINGS.md",
					Description: "Exploration outcomes are written up"},
			},
		},
	}
}
