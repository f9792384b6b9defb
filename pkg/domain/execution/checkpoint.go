package execution

import (
	"fmt"
	"sync"
	"time"
)

// Checkpoint is an immutable, timestamped note appended to the plan's audit
// trail. Checkpoints are only ever appended, never replaced, so the trail
// survives process restarts intact.
type Checkpoint struct {
	ID        string    `json:"id"`
	PhaseID   string    `json:"phase_id"`
	StepID    string    `json:"step_id"`
	Message   string    `json:"message"`
	Artifacts []string  `json:"artifacts,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

var (
	checkpointMu     sync.Mutex
	lastCheckpointMS int64
)

// NewCheckpoint produces a checkpoint stamped with the current time. Ids use
// the form checkpoint-<epoch-ms>; a process-local monotonic guard keeps two
// checkpoints created in the same millisecond distinguishable.
func NewCheckpoint(phaseID, stepID, message string, artifacts []string) Checkpoint {
	now := time.Now()

	checkpointMu.Lock()
	ms := now.UnixMilli()
	if ms <= lastCheckpointMS {
		ms = lastCheckpointMS + 1
	}
	lastCheckpointMS = ms
	checkpointMu.Unlock()

	return Checkpoint{
		ID:        fmt.Sprintf("checkpoint-%d", ms),
		PhaseID:   phaseID,
		StepID:    stepID,
		Message:   message,
		Artifacts: append([]string(nil), artifacts...),
		CreatedAt: now,
	}
}
