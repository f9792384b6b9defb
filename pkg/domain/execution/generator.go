package execution

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Generator builds execution plans from a workflow catalog. The catalog is
// explicit configuration: there is no module-level default lookup, so tests
// and callers with custom workflows pass their own.
type Generator struct {
	catalog Catalog
}

// NewGenerator creates a generator over the given catalog.
func NewGenerator(catalog Catalog) *Generator {
	return &Generator{catalog: catalog}
}

// GenerateRequest carries the inputs supplied by the surrounding CLI.
type GenerateRequest struct {
	WorkflowType    WorkflowType
	WorkspacePath   string
	BranchName      string
	IssueIDs        []int
	ProjectKey      string
	Issues          []IssueRecord
	SelectedPrompts []string
}

// Generate instantiates a plan from the template for the requested workflow
// type. Every phase and step starts pending, the current phase points at the
// first phase, and each step's artifacts are flattened into the plan-level
// required-artifact list. An unrecognized workflow type is a hard error;
// there is no silent fallback catalog.
func (g *Generator) Generate(req GenerateRequest) (*ExecutionPlan, error) {
	tmpl, ok := g.catalog[req.WorkflowType]
	if !ok {
		return nil, &UnknownWorkflowTypeError{Type: req.WorkflowType}
	}
	if err := tmpl.validate(); err != nil {
		return nil, fmt.Errorf("%w: workflow %s: %v", ErrInvalidCatalog, req.WorkflowType, err)
	}

	now := time.Now()
	plan := &ExecutionPlan{
		ID:            fmt.Sprintf("plan-%s", uuid.NewString()),
		WorkflowType:  req.WorkflowType,
		WorkspacePath: req.WorkspacePath,
		BranchName:    req.BranchName,
		IssueIDs:      append([]int(nil), req.IssueIDs...),
		Status:        StatusPending,
		Phases:        make([]Phase, 0, len(tmpl.Phases)),
		Metadata: PlanMetadata{
			ProjectKey:      req.ProjectKey,
			ValidationRules: append([]ValidationRule(nil), tmpl.ValidationRules...),
			Issues:          append([]IssueRecord(nil), req.Issues...),
			SelectedPrompts: append([]string(nil), req.SelectedPrompts...),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	for _, pt := range tmpl.Phases {
		phase := Phase{
			ID:       pt.ID,
			Name:     pt.Name,
			Required: pt.Required,
			Status:   StatusPending,
			Steps:    make([]Step, 0, len(pt.Steps)),
		}
		for _, st := range pt.Steps {
			step := Step{
				ID:        st.ID,
				Name:      st.Name,
				Required:  st.Required,
				Status:    StatusPending,
				DependsOn: append([]string(nil), st.DependsOn...),
				Artifacts: ParseArtifacts(st.Artifacts),
			}
			phase.Steps = append(phase.Steps, step)
			plan.Metadata.RequiredArtifacts = append(plan.Metadata.RequiredArtifacts, st.Artifacts...)
		}
		plan.Phases = append(plan.Phases, phase)
	}

	if len(plan.Phases) > 0 {
		plan.CurrentPhase = plan.Phases[0].ID
	}

	return plan, nil
}
