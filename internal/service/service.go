// Package service implements taskgraph's operations on top of the store and
// the graph core. Every mutating call runs inside one store transaction, so a
// failed check or cascade leaves the database untouched.
package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"taskgraph/internal/db"
	"taskgraph/internal/graph"
	"taskgraph/internal/logging"
	"taskgraph/internal/models"
)

// ErrDependencyNotFound is returned when removing an edge that does not exist.
var ErrDependencyNotFound = errors.New("dependency not found")

// Service exposes task and dependency operations.
type Service struct {
	store    *db.Store
	logger   *log.Logger
	observer graph.Observer
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the diagnostic logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithObserver receives every cascade step.
func WithObserver(o graph.Observer) Option {
	return func(s *Service) { s.observer = o }
}

// New returns a Service over store.
func New(store *db.Store, opts ...Option) *Service {
	s := &Service{store: store, logger: logging.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) core(tx *db.Store) *graph.Core {
	opts := []graph.Option{graph.WithLogger(s.logger)}
	if s.observer != nil {
		opts = append(opts, graph.WithObserver(s.observer))
	}
	return graph.New(tx, opts...)
}

// CreateTaskInput holds the fields for a new task.
type CreateTaskInput struct {
	Title       string
	Description string
	Status      string
}

// CreateTask validates and inserts a task. Status defaults to pending.
func (s *Service) CreateTask(in CreateTaskInput) (*models.Task, error) {
	title, err := models.ValidateTitle(in.Title)
	if err != nil {
		return nil, err
	}
	status := graph.StatusPending
	if in.Status != "" {
		if status, err = graph.ParseStatus(in.Status); err != nil {
			return nil, err
		}
	}

	task := &models.Task{
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Status:      status,
	}
	err = s.store.Atomic(func(tx *db.Store) error {
		return tx.CreateTask(task)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	s.logger.Debug("task created", "task", task.ID, "status", task.Status)
	return task, nil
}

// TaskView is a task with its direct edges.
type TaskView struct {
	models.Task
	Dependencies []string `json:"dependencies"`
	Dependents   []string `json:"dependents"`
}

// GetTask returns the task with the ids it depends on and the ids depending on it.
func (s *Service) GetTask(id string) (*TaskView, error) {
	var view *TaskView
	err := s.store.Atomic(func(tx *db.Store) error {
		task, err := tx.GetTask(id)
		if err != nil {
			return err
		}
		edges, err := tx.Edges()
		if err != nil {
			return err
		}
		idx := graph.NewIndex(edges)
		view = &TaskView{
			Task:         *task,
			Dependencies: orEmpty(idx.DependenciesOf(id)),
			Dependents:   orEmpty(idx.DependentsOf(id)),
		}
		return nil
	})
	return view, err
}

// ListFilter narrows ListTasks. Status "all" or "" matches every status.
// Query matches title or description.
type ListFilter struct {
	Status string
	Title  string
	Query  string
	Limit  int
}

// ListTasks returns matching tasks, newest first.
func (s *Service) ListTasks(f ListFilter) ([]models.Task, error) {
	filter := db.TaskFilter{
		Title: strings.TrimSpace(f.Title),
		Query: strings.TrimSpace(f.Query),
		Limit: f.Limit,
	}
	if f.Status != "" && !strings.EqualFold(f.Status, "all") {
		status, err := graph.ParseStatus(f.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = status
	}
	return s.store.ListTasks(filter)
}

// UpdateTaskInput holds optional field changes. A non-nil Status is applied
// as an explicit status write and cascades.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *string
}

// StatusResult is a task after a status write and the cascade it caused.
type StatusResult struct {
	Task    *models.Task  `json:"task"`
	Cascade *graph.Result `json:"cascade,omitempty"`
}

// UpdateTask edits title and description and optionally sets the status.
func (s *Service) UpdateTask(id string, in UpdateTaskInput) (*StatusResult, error) {
	changes := db.TaskChanges{Description: in.Description}
	if in.Title != nil {
		title, err := models.ValidateTitle(*in.Title)
		if err != nil {
			return nil, err
		}
		changes.Title = &title
	}
	if in.Status != nil {
		if _, err := graph.ParseStatus(*in.Status); err != nil {
			return nil, err
		}
	}

	var out StatusResult
	err := s.store.Atomic(func(tx *db.Store) error {
		task, err := tx.UpdateTask(id, changes)
		if err != nil {
			return err
		}
		out.Task = task
		if in.Status == nil {
			return nil
		}
		res, err := s.setStatus(tx, id, *in.Status)
		if err != nil {
			return err
		}
		out = *res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SetStatus writes an explicit status and cascades it to every dependent.
func (s *Service) SetStatus(id, status string) (*StatusResult, error) {
	var out *StatusResult
	err := s.store.Atomic(func(tx *db.Store) error {
		var err error
		out, err = s.setStatus(tx, id, status)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) setStatus(tx *db.Store, id, status string) (*StatusResult, error) {
	_, res, err := s.core(tx).SetStatus(id, status)
	if err != nil {
		return nil, err
	}
	task, err := tx.GetTask(id)
	if err != nil {
		return nil, err
	}
	return &StatusResult{Task: task, Cascade: res}, nil
}

// BulkResult reports a multi-task status write.
type BulkResult struct {
	Updated  []StatusResult `json:"updated"`
	NotFound []string       `json:"not_found,omitempty"`
}

// BulkSetStatus applies the same explicit status to every id in one
// transaction. Unknown ids are reported rather than failing the batch.
func (s *Service) BulkSetStatus(ids []string, status string) (*BulkResult, error) {
	if _, err := graph.ParseStatus(status); err != nil {
		return nil, err
	}

	out := &BulkResult{}
	err := s.store.Atomic(func(tx *db.Store) error {
		for _, id := range ids {
			res, err := s.setStatus(tx, id, status)
			if errors.Is(err, graph.ErrTaskNotFound) {
				out.NotFound = append(out.NotFound, id)
				continue
			}
			if err != nil {
				return err
			}
			out.Updated = append(out.Updated, *res)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteResult reports a task deletion.
type DeleteResult struct {
	TaskID        string         `json:"task_id"`
	AffectedTasks []string       `json:"affected_tasks"`
	Changes       []graph.Change `json:"changes"`
}

// DeleteTask removes a task and its edges, then recomputes every task that
// depended on it.
func (s *Service) DeleteTask(id string) (*DeleteResult, error) {
	var out *DeleteResult
	err := s.store.Atomic(func(tx *db.Store) error {
		var err error
		out, err = s.deleteTask(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) deleteTask(tx *db.Store, id string) (*DeleteResult, error) {
	dependents, err := tx.DeleteTask(id)
	if err != nil {
		return nil, err
	}
	out := &DeleteResult{TaskID: id, AffectedTasks: orEmpty(dependents), Changes: []graph.Change{}}
	core := s.core(tx)
	core.OnTaskDeleted(id)
	for _, dep := range dependents {
		res, err := core.OnDependencyRemoved(dep)
		if err != nil {
			return nil, err
		}
		out.Changes = append(out.Changes, res.Changes...)
	}
	s.logger.Debug("task deleted", "task", id, "affected", len(out.AffectedTasks))
	return out, nil
}

// Stats summarizes the graph.
type Stats struct {
	Total        int64                  `json:"total"`
	ByStatus     map[graph.Status]int64 `json:"by_status"`
	Dependencies int64                  `json:"dependencies"`
}

// Stats counts tasks per status and the number of edges.
func (s *Service) Stats() (*Stats, error) {
	counts, err := s.store.StatusCounts()
	if err != nil {
		return nil, err
	}
	deps, err := s.store.CountDependencies()
	if err != nil {
		return nil, err
	}

	out := &Stats{ByStatus: make(map[graph.Status]int64), Dependencies: deps}
	for _, st := range graph.AllStatuses() {
		out.ByStatus[st] = counts[st]
		out.Total += counts[st]
	}
	return out, nil
}

// History returns recent changes to a task, newest first.
func (s *Service) History(id string, limit int) ([]models.TaskHistory, error) {
	if _, err := s.store.GetTask(id); err != nil {
		return nil, err
	}
	return s.store.History(id, limit)
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
