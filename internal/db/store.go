package db

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"taskgraph/internal/graph"
	"taskgraph/internal/models"
)

// Store is the gorm-backed persistence for tasks, edges and history. It
// satisfies graph.Store.
type Store struct {
	db   *gorm.DB
	mu   *sync.Mutex
	inTx bool
}

var _ graph.Store = (*Store)(nil)

// NewStore wraps an open database.
func NewStore(database *gorm.DB) *Store {
	return &Store{db: database, mu: &sync.Mutex{}}
}

// DB returns the underlying handle (the transaction inside Atomic).
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Atomic runs fn inside one transaction, serialized against every other
// Atomic call on this store. Any error returned by fn rolls the whole
// operation back. Calling Atomic on the store passed to fn runs inline.
func (s *Store) Atomic(fn func(tx *Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, mu: s.mu, inTx: true})
	})
}

// Edges returns every dependency edge in insertion order.
func (s *Store) Edges() ([]graph.Edge, error) {
	var deps []models.Dependency
	if err := s.db.Order("id ASC").Find(&deps).Error; err != nil {
		return nil, err
	}
	edges := make([]graph.Edge, len(deps))
	for i := range deps {
		edges[i] = deps[i].Edge()
	}
	return edges, nil
}

// Task returns the core's view of a task.
func (s *Store) Task(id string) (*graph.Task, error) {
	t, err := s.GetTask(id)
	if err != nil {
		return nil, err
	}
	return t.View(), nil
}

// Statuses returns the status of each existing id.
func (s *Store) Statuses(ids []string) (map[string]graph.Status, error) {
	out := make(map[string]graph.Status, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.Task
	if err := s.db.Select("id", "status").Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.ID] = r.Status
	}
	return out, nil
}

// WriteStatus stores a status and records it in the task history.
func (s *Store) WriteStatus(id string, status graph.Status, changedBy string) error {
	task, err := s.GetTask(id)
	if err != nil {
		return err
	}
	if err := s.db.Model(&models.Task{}).Where("id = ?", id).Update("status", status).Error; err != nil {
		return err
	}
	return models.RecordChange(s.db, id, models.FieldStatus, string(task.Status), string(status), changedBy)
}

// GetTask loads a full task row.
func (s *Store) GetTask(id string) (*models.Task, error) {
	var task models.Task
	if err := s.db.Where("id = ?", id).First(&task).Error; err != nil {
		return nil, notFound(id, err)
	}
	return &task, nil
}

// CreateTask inserts a task and records its creation.
func (s *Store) CreateTask(task *models.Task) error {
	if err := s.db.Create(task).Error; err != nil {
		return err
	}
	return models.RecordChange(s.db, task.ID, models.FieldCreated, "", string(task.Status), graph.ChangedByUser)
}

// TaskChanges holds the optional field updates for UpdateTask.
type TaskChanges struct {
	Title       *string
	Description *string
}

// UpdateTask applies non-status field changes and records each one.
func (s *Store) UpdateTask(id string, changes TaskChanges) (*models.Task, error) {
	task, err := s.GetTask(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if changes.Title != nil && *changes.Title != task.Title {
		if err := models.RecordChange(s.db, id, models.FieldTitle, task.Title, *changes.Title, graph.ChangedByUser); err != nil {
			return nil, err
		}
		updates["title"] = *changes.Title
	}
	if changes.Description != nil && *changes.Description != task.Description {
		if err := models.RecordChange(s.db, id, models.FieldDescription, task.Description, *changes.Description, graph.ChangedByUser); err != nil {
			return nil, err
		}
		updates["description"] = *changes.Description
	}
	if len(updates) > 0 {
		if err := s.db.Model(task).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.GetTask(id)
}

// DeleteTask removes a task with its edges and history. It returns the ids
// of the tasks that depended on it.
func (s *Store) DeleteTask(id string) ([]string, error) {
	if _, err := s.GetTask(id); err != nil {
		return nil, err
	}

	var dependents []string
	if err := s.db.Model(&models.Dependency{}).
		Where("depends_on_id = ?", id).
		Order("id ASC").
		Pluck("task_id", &dependents).Error; err != nil {
		return nil, err
	}

	if err := s.db.Where("task_id = ? OR depends_on_id = ?", id, id).Delete(&models.Dependency{}).Error; err != nil {
		return nil, fmt.Errorf("failed to delete dependencies: %w", err)
	}
	if err := s.db.Where("task_id = ?", id).Delete(&models.TaskHistory{}).Error; err != nil {
		return nil, fmt.Errorf("failed to delete history: %w", err)
	}
	if err := s.db.Where("id = ?", id).Delete(&models.Task{}).Error; err != nil {
		return nil, err
	}
	return dependents, nil
}

// TaskFilter narrows ListTasks. Zero values match everything.
type TaskFilter struct {
	Status graph.Status
	Title  string
	Query  string // title or description
	Limit  int
}

// ListTasks returns matching tasks, newest first.
func (s *Store) ListTasks(filter TaskFilter) ([]models.Task, error) {
	query := s.db.Model(&models.Task{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Title != "" {
		query = query.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(filter.Title)+"%")
	}
	if filter.Query != "" {
		q := "%" + strings.ToLower(filter.Query) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", q, q)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var tasks []models.Task
	if err := query.Order("created_at DESC, id DESC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// AddDependency stores an edge. Callers validate it first.
func (s *Store) AddDependency(task, dependsOn string) (*models.Dependency, error) {
	dep := &models.Dependency{TaskID: task, DependsOnID: dependsOn}
	if err := s.db.Create(dep).Error; err != nil {
		return nil, fmt.Errorf("failed to add dependency: %w", err)
	}
	if err := models.RecordChange(s.db, task, models.FieldDependency, "", dependsOn, graph.ChangedByUser); err != nil {
		return nil, err
	}
	return dep, nil
}

// RemoveDependency deletes an edge and reports whether it existed.
func (s *Store) RemoveDependency(task, dependsOn string) (bool, error) {
	result := s.db.Where("task_id = ? AND depends_on_id = ?", task, dependsOn).Delete(&models.Dependency{})
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}
	if err := models.RecordChange(s.db, task, models.FieldDependency, dependsOn, "", graph.ChangedByUser); err != nil {
		return false, err
	}
	return true, nil
}

// Dependencies returns the tasks id depends on.
func (s *Store) Dependencies(id string) ([]models.Task, error) {
	var tasks []models.Task
	err := s.db.Joins("JOIN task_dependencies ON task_dependencies.depends_on_id = tasks.id").
		Where("task_dependencies.task_id = ?", id).
		Order("task_dependencies.id ASC").
		Find(&tasks).Error
	return tasks, err
}

// Dependents returns the tasks that depend on id.
func (s *Store) Dependents(id string) ([]models.Task, error) {
	var tasks []models.Task
	err := s.db.Joins("JOIN task_dependencies ON task_dependencies.task_id = tasks.id").
		Where("task_dependencies.depends_on_id = ?", id).
		Order("task_dependencies.id ASC").
		Find(&tasks).Error
	return tasks, err
}

// StatusCounts returns the number of tasks per status.
func (s *Store) StatusCounts() (map[graph.Status]int64, error) {
	var rows []struct {
		Status graph.Status
		Count  int64
	}
	if err := s.db.Model(&models.Task{}).Select("status, COUNT(*) as count").Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[graph.Status]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

// CountDependencies returns the number of stored edges.
func (s *Store) CountDependencies() (int64, error) {
	var n int64
	err := s.db.Model(&models.Dependency{}).Count(&n).Error
	return n, err
}

// History returns the task's history, newest first. A limit of zero means no limit.
func (s *Store) History(id string, limit int) ([]models.TaskHistory, error) {
	query := s.db.Where("task_id = ?", id).Order("changed_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var entries []models.TaskHistory
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// OrphanCounts holds edge and history rows that reference a missing task.
type OrphanCounts struct {
	Dependencies int64 `json:"dependencies"`
	History      int64 `json:"history"`
}

// Total returns the number of orphaned rows.
func (o OrphanCounts) Total() int64 {
	return o.Dependencies + o.History
}

const missingTask = "NOT IN (SELECT id FROM tasks)"

// Orphans counts rows left behind by tasks removed outside DeleteTask,
// e.g. by a connection opened without foreign keys.
func (s *Store) Orphans() (OrphanCounts, error) {
	var out OrphanCounts
	if err := s.db.Model(&models.Dependency{}).
		Where("task_id " + missingTask).
		Or("depends_on_id " + missingTask).
		Count(&out.Dependencies).Error; err != nil {
		return out, err
	}
	err := s.db.Model(&models.TaskHistory{}).
		Where("task_id " + missingTask).
		Count(&out.History).Error
	return out, err
}

// DeleteOrphans removes the rows counted by Orphans.
func (s *Store) DeleteOrphans() (OrphanCounts, error) {
	var out OrphanCounts
	result := s.db.Where("task_id " + missingTask).
		Or("depends_on_id " + missingTask).
		Delete(&models.Dependency{})
	if result.Error != nil {
		return out, result.Error
	}
	out.Dependencies = result.RowsAffected

	result = s.db.Where("task_id " + missingTask).Delete(&models.TaskHistory{})
	if result.Error != nil {
		return out, result.Error
	}
	out.History = result.RowsAffected
	return out, nil
}

// CompletedBefore returns completed tasks last updated before cutoff, oldest first.
func (s *Store) CompletedBefore(cutoff time.Time) ([]models.Task, error) {
	var tasks []models.Task
	err := s.db.Where("status = ? AND updated_at < ?", graph.StatusCompleted, cutoff).
		Order("updated_at ASC, id ASC").
		Find(&tasks).Error
	return tasks, err
}
