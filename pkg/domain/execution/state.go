package execution

import "time"

// ExecutionState is the persisted envelope: the plan plus its append-only
// checkpoint log. One document per workspace; each CLI invocation is a new
// process, so everything it needs to resume lives here.
type ExecutionState struct {
	ExecutionPlan *ExecutionPlan `json:"execution_plan"`
	Checkpoints   []Checkpoint   `json:"checkpoints"`
	LastSaved     time.Time      `json:"last_saved"`
}

// WithCheckpoint returns a copy of the state with the checkpoint appended.
func (s *ExecutionState) WithCheckpoint(cp Checkpoint) *ExecutionState {
	next := *s
	next.Checkpoints = make([]Checkpoint, 0, len(s.Checkpoints)+1)
	next.Checkpoints = append(next.Checkpoints, s.Checkpoints...)
	next.Checkpoints = append(next.Checkpoints, cp)
	return &next
}

// StateRepository handles persistence of execution state.
//
// Load returns (nil, nil) when no state has ever been saved for the
// workspace — "never started" is a normal outcome, distinct from a file that
// exists but cannot be parsed, which is a PersistenceError.
type StateRepository interface {
	SaveExecution(state *ExecutionState) error
	LoadExecution() (*ExecutionState, error)
}

// CatalogRepository loads an optional user-supplied workflow catalog.
// A nil catalog with nil error means "no custom catalog configured".
type CatalogRepository interface {
	LoadCatalog() (Catalog, error)
}
