// Package graph is the dependency-graph core: it rejects dependency edges
// that would create a cycle, reports the offending cycle path, and keeps
// every task's status consistent with its dependencies by cascading changes
// through the graph.
//
// The package performs no I/O of its own. Storage is reached through the
// Store interface, and callers are expected to run each mutating operation
// inside a serializing boundary (a transaction) so the edge snapshot used
// for a check or a cascade matches what is finally persisted.
package graph

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
)

// Task is the core's read view of a task.
type Task struct {
	ID     string
	Title  string
	Status Status
}

// Store is the persistence the core depends on. Implementations must return
// a *TaskNotFoundError (or any error matching ErrTaskNotFound) from Task for
// unknown ids. Statuses omits ids that do not exist.
type Store interface {
	Edges() ([]Edge, error)
	Task(id string) (*Task, error)
	Statuses(ids []string) (map[string]Status, error)
	WriteStatus(id string, status Status, changedBy string) error
}

// CircularCheck is the answer to a read-only cycle preview.
type CircularCheck struct {
	Circular   bool     `json:"is_circular"`
	Path       []string `json:"path,omitempty"`
	PathTitles []string `json:"path_titles,omitempty"`
	Reason     string   `json:"message,omitempty"`
}

// Option configures a Core.
type Option func(*Core)

// WithObserver registers an observer for cascade trace events.
func WithObserver(o Observer) Option {
	return func(c *Core) { c.observer = o }
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *log.Logger) Option {
	return func(c *Core) {
		if l != nil {
			c.logger = l
		}
	}
}

// Core is the entry point used by the persistence/API layer.
type Core struct {
	store    Store
	observer Observer
	logger   *log.Logger
}

// New returns a Core over store.
func New(store Store, opts ...Option) *Core {
	c := &Core{
		store:  store,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Core) propagator() *Propagator {
	return NewPropagator(c.store, c.observer)
}

// ProposeDependency validates the candidate edge (task depends on dependsOn)
// against the current edge set. A nil error means the edge is safe to persist.
// On a cycle the returned *CircularDependencyError carries the path and the
// titles of the tasks along it.
func (c *Core) ProposeDependency(task, dependsOn string) (Edge, error) {
	edge := Edge{TaskID: task, DependsOnID: dependsOn}
	if _, err := c.store.Task(task); err != nil {
		return edge, err
	}
	if _, err := c.store.Task(dependsOn); err != nil {
		return edge, err
	}
	edges, err := c.store.Edges()
	if err != nil {
		return edge, fmt.Errorf("failed to load dependency edges: %w", err)
	}
	err = Validate(NewIndex(edges), task, dependsOn)
	var circ *CircularDependencyError
	if errors.As(err, &circ) {
		titles, terr := c.titles(circ.Path)
		if terr != nil {
			return edge, terr
		}
		circ.PathTitles = titles
		c.logger.Debug("rejected circular dependency", "task", task, "depends_on", dependsOn, "path", circ.Path)
	}
	if err != nil {
		return edge, err
	}
	return edge, nil
}

// OnDependencyPersisted recomputes the dependent endpoint of a newly stored
// edge and cascades from it.
func (c *Core) OnDependencyPersisted(task, dependsOn string) (*Result, error) {
	c.logger.Debug("dependency persisted", "task", task, "depends_on", dependsOn)
	return c.propagator().RecomputeStatus(task)
}

// OnDependencyRemoved recomputes the former dependent of a removed edge and
// cascades from it. A task that no longer exists yields an empty result.
func (c *Core) OnDependencyRemoved(task string) (*Result, error) {
	c.logger.Debug("dependency removed", "task", task)
	res, err := c.propagator().RecomputeStatus(task)
	if errors.Is(err, ErrTaskNotFound) {
		return &Result{Root: task}, nil
	}
	return res, err
}

// SetStatus validates and writes an explicit status, then cascades to every
// dependent. It returns the task as stored after the write.
func (c *Core) SetStatus(task, status string) (*Task, *Result, error) {
	s, err := ParseStatus(status)
	if err != nil {
		return nil, nil, err
	}
	res, err := c.propagator().SetStatusExplicit(task, s)
	if err != nil {
		return nil, res, err
	}
	t, err := c.store.Task(task)
	if err != nil {
		return nil, res, err
	}
	c.logger.Debug("status set", "task", task, "status", s, "cascaded", len(res.Changes))
	return t, res, nil
}

// OnTaskDeleted is informational. The store removes the task's edges; later
// traversals simply no longer see it.
func (c *Core) OnTaskDeleted(task string) {
	c.logger.Debug("task deleted", "task", task)
}

// DeriveStatus previews the status the derivation rule would assign right
// now. It never writes.
func (c *Core) DeriveStatus(task string) (Status, error) {
	return c.propagator().Derive(task)
}

// CheckCircular previews whether adding the edge would create a cycle. A
// self-dependency is reported as circular with a one-element path. An
// already existing edge is not circular. It never writes.
func (c *Core) CheckCircular(task, dependsOn string) (*CircularCheck, error) {
	if _, err := c.store.Task(task); err != nil {
		return nil, err
	}
	if _, err := c.store.Task(dependsOn); err != nil {
		return nil, err
	}
	if task == dependsOn {
		return &CircularCheck{Circular: true, Path: []string{task}, Reason: ErrSelfDependency.Error()}, nil
	}
	edges, err := c.store.Edges()
	if err != nil {
		return nil, fmt.Errorf("failed to load dependency edges: %w", err)
	}
	idx := NewIndex(edges)
	if !CreatesCycle(idx, task, dependsOn) {
		return &CircularCheck{Reason: "No circular dependency detected"}, nil
	}
	path := FindCyclePath(idx, task, dependsOn)
	titles, err := c.titles(path)
	if err != nil {
		return nil, err
	}
	return &CircularCheck{Circular: true, Path: path, PathTitles: titles, Reason: ErrCircularDependency.Error()}, nil
}

func (c *Core) titles(path []string) ([]string, error) {
	titles := make([]string, 0, len(path))
	for _, id := range path {
		t, err := c.store.Task(id)
		if err != nil {
			return nil, err
		}
		titles = append(titles, t.Title)
	}
	return titles, nil
}
