package service

import (
	"errors"
	"fmt"

	"taskgraph/internal/db"
	"taskgraph/internal/graph"
	"taskgraph/internal/manifest"
	"taskgraph/internal/models"
)

// ImportResult reports a manifest import.
type ImportResult struct {
	IDs          map[string]string `json:"ids"`
	Tasks        int               `json:"tasks"`
	Dependencies int               `json:"dependencies"`
	Changes      []graph.Change    `json:"changes"`
}

// Import creates every manifest task, then its edges in manifest order, then
// applies explicit statuses with prerequisites before their dependents. Each edge goes through the cycle detector; any
// rejection rolls back the whole import.
func (s *Service) Import(m *manifest.Manifest) (*ImportResult, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	out := &ImportResult{IDs: make(map[string]string, len(m.Tasks)), Changes: []graph.Change{}}
	err := s.store.Atomic(func(tx *db.Store) error {
		for _, mt := range m.Tasks {
			title, err := models.ValidateTitle(mt.Title)
			if err != nil {
				return fmt.Errorf("task %q: %w", mt.Key, err)
			}
			task := &models.Task{Title: title, Description: mt.Description}
			if err := tx.CreateTask(task); err != nil {
				return fmt.Errorf("task %q: %w", mt.Key, err)
			}
			out.IDs[mt.Key] = task.ID
			out.Tasks++
		}

		core := s.core(tx)
		for _, mt := range m.Tasks {
			for _, depKey := range mt.DependsOn {
				res, err := s.addDependency(tx, core, out.IDs[mt.Key], out.IDs[depKey])
				if errors.Is(err, graph.ErrDuplicateDependency) {
					continue
				}
				if err != nil {
					return fmt.Errorf("task %q depends on %q: %w", mt.Key, depKey, err)
				}
				out.Dependencies++
				out.Changes = append(out.Changes, res.Cascade.Changes...)
			}
		}

		// A status write cascades to dependents only, so setting
		// prerequisites first leaves every explicit status in place.
		var edges []graph.Edge
		keys := make([]string, len(m.Tasks))
		for i, mt := range m.Tasks {
			keys[i] = mt.Key
			for _, depKey := range mt.DependsOn {
				edges = append(edges, graph.Edge{TaskID: mt.Key, DependsOnID: depKey})
			}
		}
		for _, key := range graph.NewIndex(edges).PrerequisitesFirst(keys) {
			mt, _ := m.Lookup(key)
			if mt.Status == "" {
				continue
			}
			res, err := s.setStatus(tx, out.IDs[key], mt.Status)
			if err != nil {
				return fmt.Errorf("task %q: %w", key, err)
			}
			out.Changes = append(out.Changes, res.Cascade.Changes...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("manifest imported", "tasks", out.Tasks, "dependencies", out.Dependencies)
	return out, nil
}

// Export returns the whole graph as a manifest keyed by task id.
func (s *Service) Export() (*manifest.Manifest, error) {
	m := &manifest.Manifest{}
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
			m.Tasks = append(m.Tasks, manifest.Task{
				Key:         t.ID,
				Title:       t.Title,
				Description: t.Description,
				Status:      string(t.Status),
				DependsOn:   idx.DependenciesOf(t.ID),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}
