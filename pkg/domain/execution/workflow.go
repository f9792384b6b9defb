package execution

import "fmt"

// WorkflowType selects the phase/step catalog used to generate a plan.
type WorkflowType string

const (
	WorkflowIssueFix           WorkflowType = "issue-fix"
	WorkflowFeatureDevelopment WorkflowType = "feature-development"
	WorkflowMaintenance        WorkflowType = "maintenance"
	WorkflowExploration        WorkflowType = "exploration"
)

// AllWorkflowTypes returns the workflow types known to the default catalog.
func AllWorkflowTypes() []WorkflowType {
	return []WorkflowType{
		WorkflowIssueFix,
		WorkflowFeatureDevelopment,
		WorkflowMaintenance,
		WorkflowExploration,
	}
}

// IsValid returns true for the workflow types in the default catalog.
// A custom catalog may define additional types; validity against a
// specific catalog is decided by the generator, not here.
func (w WorkflowType) IsValid() bool {
	switch w {
	case WorkflowIssueFix, WorkflowFeatureDevelopment, WorkflowMaintenance, WorkflowExploration:
		return true
	default:
		return false
	}
}

// String returns the string representation of the workflow type.
func (w WorkflowType) String() string {
	return string(w)
}

// ParseWorkflowType parses a string into a WorkflowType.
func ParseWorkflowType(s string) (WorkflowType, error) {
	w := WorkflowType(s)
	if !w.IsValid() {
		return "", fmt.Errorf("invalid workflow type: %s", s)
	}
	return w, nil
}
