package graph

// Status is the lifecycle state of a task. Only the four constants below are
// valid values.
type Status string

// Task status constants
const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusBlocked    Status = "blocked"
)

// AllStatuses returns every valid status in display order.
func AllStatuses() []Status {
	return []Status{StatusPending, StatusInProgress, StatusCompleted, StatusBlocked}
}

// Valid reports whether s is one of the four enumerated statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusBlocked:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// ParseStatus converts user input into a Status. The value must be one of the
// four status names exactly.
func ParseStatus(value string) (Status, error) {
	s := Status(value)
	if !s.Valid() {
		return "", &InvalidStatusError{Value: value}
	}
	return s, nil
}

// DeriveStatus applies the derivation rule to a task given its current status
// and the live statuses of its direct dependencies:
//
//  1. completed is sticky and is never changed
//  2. no dependencies: in_progress
//  3. any dependency blocked: blocked
//  4. every dependency completed: in_progress
//  5. otherwise: pending
func DeriveStatus(current Status, deps []Status) Status {
	if current == StatusCompleted {
		return current
	}
	if len(deps) == 0 {
		return StatusInProgress
	}
	allCompleted := true
	for _, d := range deps {
		if d == StatusBlocked {
			return StatusBlocked
		}
		if d != StatusCompleted {
			allCompleted = false
		}
	}
	if allCompleted {
		return StatusInProgress
	}
	return StatusPending
}
