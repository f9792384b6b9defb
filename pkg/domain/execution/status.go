package execution

import (
	"encoding/json"
	"fmt"
)

// Status tracks progress of a step, a phase, or the whole plan.
// It only ever advances: pending -> in_progress -> completed. A step may
// also jump straight from pending to completed when the work needed no
// explicit start (e.g. completion detected from artifacts).
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// advanceEvents maps the current status to the events that may advance it.
// Map: currentStatus -> event -> targetStatus
var advanceEvents = map[Status]map[string]Status{
	StatusPending: {
		"start":    StatusInProgress,
		"complete": StatusCompleted,
	},
	StatusInProgress: {
		"complete": StatusCompleted,
	},
	StatusCompleted: {},
}

// AllStatuses returns all valid statuses in advancement order.
func AllStatuses() []Status {
	return []Status{StatusPending, StatusInProgress, StatusCompleted}
}

// IsValid returns true if the status is one of the known values.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	default:
		return false
	}
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// rank orders statuses for monotonicity checks.
func (s Status) rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusInProgress:
		return 1
	case StatusCompleted:
		return 2
	default:
		return -1
	}
}

// CanAdvanceTo returns true if moving from s to target is a forward move.
// Re-applying the current status is allowed (idempotent no-op).
func (s Status) CanAdvanceTo(target Status) bool {
	if !s.IsValid() || !target.IsValid() {
		return false
	}
	return target.rank() >= s.rank()
}

// TransitionWith returns the target status for a given event, or an error
// if the event is not allowed from this status.
func (s Status) TransitionWith(event string) (Status, error) {
	events, ok := advanceEvents[s]
	if !ok {
		return s, fmt.Errorf("no transitions defined for status: %s", s)
	}
	target, ok := events[event]
	if !ok {
		return s, fmt.Errorf("event '%s' not allowed from status '%s'", event, s)
	}
	return target, nil
}

// ValidEvents returns the events that can advance this status.
func (s Status) ValidEvents() []string {
	events, ok := advanceEvents[s]
	if !ok {
		return nil
	}
	var names []string
	for name := range events {
		names = append(names, name)
	}
	return names
}

// IsComplete returns true if no further work is expected.
func (s Status) IsComplete() bool {
	return s == StatusCompleted
}

// IsPending returns true if work has not started yet.
func (s Status) IsPending() bool {
	return s == StatusPending
}

// DisplayName returns a human-readable name for the status.
func (s Status) DisplayName() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	default:
		return string(s)
	}
}

// ParseStatus parses a string into a Status.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid status: %s", s)
	}
	return status, nil
}

// MarshalJSON implements json.Marshaler.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

// UnmarshalJSON implements json.Unmarshaler.
// An empty string is accepted as pending so hand-edited state files stay loadable.
func (s *Status) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	if str == "" {
		*s = StatusPending
		return nil
	}

	status := Status(str)
	if !status.IsValid() {
		return fmt.Errorf("invalid status: %s", str)
	}

	*s = status
	return nil
}
