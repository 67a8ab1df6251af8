package graph

import (
	"errors"
	"fmt"
)

// memStore is an in-memory Store for exercising the core without SQLite.
type memStore struct {
	tasks    map[string]*Task
	edges    []Edge
	writes   []string
	failOn   string
	edgesErr error
}

func newMemStore() *memStore {
	return &memStore{tasks: make(map[string]*Task)}
}

func (m *memStore) add(id string, status Status) *memStore {
	m.tasks[id] = &Task{ID: id, Title: "Task " + id, Status: status}
	return m
}

func (m *memStore) link(task, dependsOn string) *memStore {
	m.edges = append(m.edges, Edge{TaskID: task, DependsOnID: dependsOn})
	return m
}

func (m *memStore) unlink(task, dependsOn string) {
	for i, e := range m.edges {
		if e.TaskID == task && e.DependsOnID == dependsOn {
			m.edges = append(m.edges[:i], m.edges[i+1:]...)
			return
		}
	}
}

func (m *memStore) remove(id string) {
	delete(m.tasks, id)
	kept := m.edges[:0]
	for _, e := range m.edges {
		if e.TaskID != id && e.DependsOnID != id {
			kept = append(kept, e)
		}
	}
	m.edges = kept
}

func (m *memStore) status(id string) Status {
	return m.tasks[id].Status
}

func (m *memStore) Edges() ([]Edge, error) {
	if m.edgesErr != nil {
		return nil, m.edgesErr
	}
	out := make([]Edge, len(m.edges))
	copy(out, m.edges)
	return out, nil
}

func (m *memStore) Task(id string) (*Task, error) {
	t, ok := m.tasks[id]
	if !ok {
		return nil, &TaskNotFoundError{TaskID: id}
	}
	cp := *t
	return &cp, nil
}

func (m *memStore) Statuses(ids []string) (map[string]Status, error) {
	out := make(map[string]Status, len(ids))
	for _, id := range ids {
		if t, ok := m.tasks[id]; ok {
			out[id] = t.Status
		}
	}
	return out, nil
}

func (m *memStore) WriteStatus(id string, status Status, changedBy string) error {
	if id == m.failOn {
		return errors.New("disk full")
	}
	t, ok := m.tasks[id]
	if !ok {
		return &TaskNotFoundError{TaskID: id}
	}
	t.Status = status
	m.writes = append(m.writes, fmt.Sprintf("%s=%s(%s)", id, status, changedBy))
	return nil
}

// recorder is an Observer that keeps every step.
type recorder struct {
	steps []Step
}

func (r *recorder) CascadeStep(s Step) {
	r.steps = append(r.steps, s)
}
