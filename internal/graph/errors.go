package graph

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. Every typed error below matches exactly one of these
// through errors.Is, so callers can branch on the kind without caring about
// the carried context.
var (
	// ErrSelfDependency indicates a task was asked to depend on itself.
	ErrSelfDependency = errors.New("task cannot depend on itself")
	// ErrDuplicateDependency indicates the dependency edge already exists.
	ErrDuplicateDependency = errors.New("dependency already exists")
	// ErrCircularDependency indicates the edge would close a dependency cycle.
	ErrCircularDependency = errors.New("circular dependency detected")
	// ErrInvalidStatus indicates a status outside the four enumerated values.
	ErrInvalidStatus = errors.New("invalid status")
	// ErrTaskNotFound indicates a referenced task does not exist.
	ErrTaskNotFound = errors.New("task not found")
)

// SelfDependencyError is returned when task == depends_on.
type SelfDependencyError struct {
	TaskID string
}

func (e *SelfDependencyError) Error() string {
	return fmt.Sprintf("task '%s' cannot depend on itself", e.TaskID)
}

// Is reports whether target is ErrSelfDependency.
func (e *SelfDependencyError) Is(target error) bool { return target == ErrSelfDependency }

// DuplicateDependencyError is returned when the (task, depends_on) pair is
// already present in the edge set.
type DuplicateDependencyError struct {
	TaskID      string
	DependsOnID string
}

func (e *DuplicateDependencyError) Error() string {
	return fmt.Sprintf("task '%s' already depends on '%s'", e.TaskID, e.DependsOnID)
}

// Is reports whether target is ErrDuplicateDependency.
func (e *DuplicateDependencyError) Is(target error) bool { return target == ErrDuplicateDependency }

// CircularDependencyError is returned when inserting the candidate edge would
// create a cycle. Path starts and ends with TaskID; PathTitles, when resolved,
// holds the task title for each element of Path.
type CircularDependencyError struct {
	TaskID      string
	DependsOnID string
	Path        []string
	PathTitles  []string
}

func (e *CircularDependencyError) Error() string {
	if len(e.Path) == 0 {
		return fmt.Sprintf("task '%s' cannot depend on '%s': creates a circular dependency", e.TaskID, e.DependsOnID)
	}
	return fmt.Sprintf("task '%s' cannot depend on '%s': creates a circular dependency (%s)",
		e.TaskID, e.DependsOnID, strings.Join(e.Path, " -> "))
}

// Is reports whether target is ErrCircularDependency.
func (e *CircularDependencyError) Is(target error) bool { return target == ErrCircularDependency }

// InvalidStatusError is returned for a status value outside the enumeration.
type InvalidStatusError struct {
	Value string
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("invalid status '%s': must be one of: pending, in_progress, completed, blocked", e.Value)
}

// Is reports whether target is ErrInvalidStatus.
func (e *InvalidStatusError) Is(target error) bool { return target == ErrInvalidStatus }

// TaskNotFoundError is returned when a referenced task id does not exist.
type TaskNotFoundError struct {
	TaskID string
}

func (e *TaskNotFoundError) Error() string {
	return fmt.Sprintf("task '%s' not found", e.TaskID)
}

// Is reports whether target is ErrTaskNotFound.
func (e *TaskNotFoundError) Is(target error) bool { return target == ErrTaskNotFound }

// CascadeError reports a storage failure part-way through a cascade. Changes
// lists the writes that completed before the failure; they are independently
// re-derivable and are not undone by the core.
type CascadeError struct {
	TaskID  string
	Changes []Change
	Err     error
}

func (e *CascadeError) Error() string {
	return fmt.Sprintf("cascade aborted at task '%s' after %d change(s): %v", e.TaskID, len(e.Changes), e.Err)
}

func (e *CascadeError) Unwrap() error { return e.Err }
