package service

import (
	"errors"
	"fmt"

	"taskgraph/internal/db"
	"taskgraph/internal/graph"
	"taskgraph/internal/models"
)

// DependencyResult is a stored edge and the cascade it caused.
type DependencyResult struct {
	Dependency *models.Dependency `json:"dependency"`
	Cascade    *graph.Result      `json:"cascade"`
}

// AddDependency records that task depends on dependsOn. The edge is checked
// for self-reference, duplication and cycles before it is stored, and the
// dependent's status is recomputed afterwards.
func (s *Service) AddDependency(task, dependsOn string) (*DependencyResult, error) {
	var out *DependencyResult
	err := s.store.Atomic(func(tx *db.Store) error {
		var err error
		out, err = s.addDependency(tx, s.core(tx), task, dependsOn)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) addDependency(tx *db.Store, core *graph.Core, task, dependsOn string) (*DependencyResult, error) {
	if _, err := core.ProposeDependency(task, dependsOn); err != nil {
		return nil, err
	}
	dep, err := tx.AddDependency(task, dependsOn)
	if err != nil {
		return nil, err
	}
	res, err := core.OnDependencyPersisted(task, dependsOn)
	if err != nil {
		return nil, err
	}
	return &DependencyResult{Dependency: dep, Cascade: res}, nil
}

// BatchError is one rejected edge of a batch.
type BatchError struct {
	DependsOnID string `json:"depends_on"`
	Message     string `json:"error"`
	Err         error  `json:"-"`
}

// BatchResult reports AddDependencies.
type BatchResult struct {
	Created []models.Dependency `json:"created"`
	Skipped []string            `json:"skipped"`
	Errors  []BatchError        `json:"errors"`
	Changes []graph.Change      `json:"changes"`
}

// AddDependencies adds several prerequisites to one task. Pairs that already
// exist are skipped; rejected pairs are collected and do not stop the batch.
// Storage failures abort the whole batch.
func (s *Service) AddDependencies(task string, dependsOn []string) (*BatchResult, error) {
	out := &BatchResult{
		Created: []models.Dependency{},
		Skipped: []string{},
		Errors:  []BatchError{},
		Changes: []graph.Change{},
	}
	err := s.store.Atomic(func(tx *db.Store) error {
		if _, err := tx.GetTask(task); err != nil {
			return err
		}
		core := s.core(tx)
		for _, dep := range dependsOn {
			res, err := s.addDependency(tx, core, task, dep)
			switch {
			case err == nil:
				out.Created = append(out.Created, *res.Dependency)
				out.Changes = append(out.Changes, res.Cascade.Changes...)
			case errors.Is(err, graph.ErrDuplicateDependency):
				out.Skipped = append(out.Skipped, dep)
			case errors.Is(err, graph.ErrTaskNotFound),
				errors.Is(err, graph.ErrSelfDependency),
				errors.Is(err, graph.ErrCircularDependency):
				out.Errors = append(out.Errors, BatchError{DependsOnID: dep, Message: err.Error(), Err: err})
			default:
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RemoveDependency deletes the edge and recomputes the former dependent.
func (s *Service) RemoveDependency(task, dependsOn string) (*graph.Result, error) {
	var out *graph.Result
	err := s.store.Atomic(func(tx *db.Store) error {
		removed, err := tx.RemoveDependency(task, dependsOn)
		if err != nil {
			return err
		}
		if !removed {
			return fmt.Errorf("%w: task '%s' does not depend on '%s'", ErrDependencyNotFound, task, dependsOn)
		}
		out, err = s.core(tx).OnDependencyRemoved(task)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CheckCircular previews whether task depending on dependsOn would close a cycle.
func (s *Service) CheckCircular(task, dependsOn string) (*graph.CircularCheck, error) {
	var out *graph.CircularCheck
	err := s.store.Atomic(func(tx *db.Store) error {
		var err error
		out, err = s.core(tx).CheckCircular(task, dependsOn)
		return err
	})
	return out, err
}

// Derivation is a status preview.
type Derivation struct {
	TaskID  string       `json:"task_id"`
	Current graph.Status `json:"current_status"`
	Derived graph.Status `json:"derived_status"`
}

// Changed reports whether a recompute would write.
func (d *Derivation) Changed() bool {
	return d.Current != d.Derived
}

// DeriveStatus previews the status the dependency rule would assign now.
func (s *Service) DeriveStatus(id string) (*Derivation, error) {
	var out *Derivation
	err := s.store.Atomic(func(tx *db.Store) error {
		task, err := tx.GetTask(id)
		if err != nil {
			return err
		}
		derived, err := s.core(tx).DeriveStatus(id)
		if err != nil {
			return err
		}
		out = &Derivation{TaskID: id, Current: task.Status, Derived: derived}
		return nil
	})
	return out, err
}

// Blocking returns the direct dependencies of id that are not completed.
func (s *Service) Blocking(id string) ([]models.Task, error) {
	if _, err := s.store.GetTask(id); err != nil {
		return nil, err
	}
	deps, err := s.store.Dependencies(id)
	if err != nil {
		return nil, err
	}
	out := []models.Task{}
	for _, t := range deps {
		if !t.IsCompleted() {
			out = append(out, t)
		}
	}
	return out, nil
}

// BlockedBy returns the direct dependents of id that are pending or blocked.
func (s *Service) BlockedBy(id string) ([]models.Task, error) {
	if _, err := s.store.GetTask(id); err != nil {
		return nil, err
	}
	dependents, err := s.store.Dependents(id)
	if err != nil {
		return nil, err
	}
	out := []models.Task{}
	for _, t := range dependents {
		if t.Status == graph.StatusPending || t.Status == graph.StatusBlocked {
			out = append(out, t)
		}
	}
	return out, nil
}

// Dependencies returns the tasks id depends on.
func (s *Service) Dependencies(id string) ([]models.Task, error) {
	if _, err := s.store.GetTask(id); err != nil {
		return nil, err
	}
	return s.store.Dependencies(id)
}

// Dependents returns the tasks that depend on id.
func (s *Service) Dependents(id string) ([]models.Task, error) {
	if _, err := s.store.GetTask(id); err != nil {
		return nil, err
	}
	return s.store.Dependents(id)
}

// GraphNode is a task in the exported graph.
type GraphNode struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Status       graph.Status `json:"status"`
	Description  string       `json:"description"`
	Dependencies []string     `json:"dependencies"`
}

// GraphEdge points from a prerequisite to the task that depends on it.
type GraphEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Graph is the whole dependency graph.
type Graph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// Graph returns every task and edge, oldest task first.
func (s *Service) Graph() (*Graph, error) {
	out := &Graph{Nodes: []GraphNode{}, Edges: []GraphEdge{}}
	err := s.store.Atomic(func(tx *db.Store) error {
		tasks, err := oldestFirst(tx)
		if err != nil {
			return err
		}
		edges, err := tx.Edges()
		if err != nil {
			return err
		}
		idx := graph.NewIndex(edges)
		for _, t := range tasks {
			out.Nodes = append(out.Nodes, GraphNode{
				ID:           t.ID,
				Title:        t.Title,
				Status:       t.Status,
				Description:  t.Description,
				Dependencies: orEmpty(idx.DependenciesOf(t.ID)),
			})
		}
		for _, e := range edges {
			out.Edges = append(out.Edges, GraphEdge{From: e.DependsOnID, To: e.TaskID})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func oldestFirst(tx *db.Store) ([]models.Task, error) {
	tasks, err := tx.ListTasks(db.TaskFilter{})
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(tasks)-1; i < j; i, j = i+1, j-1 {
		tasks[i], tasks[j] = tasks[j], tasks[i]
	}
	return tasks, nil
}
