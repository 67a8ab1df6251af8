package graph

import "fmt"

// Values passed to Store.WriteStatus identifying who caused the write.
const (
	ChangedByUser    = "user"
	ChangedByCascade = "cascade"
)

// Change is one persisted status transition.
type Change struct {
	TaskID string `json:"task_id"`
	From   Status `json:"from"`
	To     Status `json:"to"`
	Depth  int    `json:"depth"`
}

// Step is one evaluation of the derivation rule during a cascade, whether or
// not it changed anything.
type Step struct {
	Root    string
	TaskID  string
	From    Status
	To      Status
	Depth   int
	Changed bool
}

// Observer receives a trace event for every cascade step.
type Observer interface {
	CascadeStep(step Step)
}

// Result summarizes one top-level status operation.
type Result struct {
	Root    string   `json:"root"`
	Changes []Change `json:"changes"`
	Visited int      `json:"visited"`
}

// Changed reports whether any status was written.
func (r *Result) Changed() bool {
	return r != nil && len(r.Changes) > 0
}

// Propagator keeps task statuses consistent with their dependencies. It has
// two entry points: SetStatusExplicit for caller-directed writes, which are
// authoritative, and RecomputeStatus for derived writes.
type Propagator struct {
	store    Store
	observer Observer
}

// NewPropagator returns a Propagator over store. observer may be nil.
func NewPropagator(store Store, observer Observer) *Propagator {
	return &Propagator{store: store, observer: observer}
}

// SetStatusExplicit writes status to the task as given, bypassing derivation,
// then cascades to every dependent regardless of whether the value changed.
func (p *Propagator) SetStatusExplicit(id string, status Status) (*Result, error) {
	if !status.Valid() {
		return nil, &InvalidStatusError{Value: string(status)}
	}
	task, err := p.store.Task(id)
	if err != nil {
		return nil, err
	}
	res := &Result{Root: id}
	if task.Status != status {
		if err := p.store.WriteStatus(id, status, ChangedByUser); err != nil {
			return nil, fmt.Errorf("failed to write status of task '%s': %w", id, err)
		}
		res.Changes = append(res.Changes, Change{TaskID: id, From: task.Status, To: status})
	}
	p.notify(Step{Root: id, TaskID: id, From: task.Status, To: status, Changed: task.Status != status})

	idx, err := p.index()
	if err != nil {
		return res, err
	}
	return res, p.cascade(idx, id, res)
}

// RecomputeStatus re-derives the task's own status from its dependencies. If
// the derived value differs from the stored one it is written and the change
// cascades to dependents; otherwise nothing happens.
func (p *Propagator) RecomputeStatus(id string) (*Result, error) {
	if _, err := p.store.Task(id); err != nil {
		return nil, err
	}
	idx, err := p.index()
	if err != nil {
		return nil, err
	}
	res := &Result{Root: id}
	changed, err := p.step(idx, id, id, 0, res)
	if err != nil {
		return res, err
	}
	if !changed {
		return res, nil
	}
	return res, p.cascade(idx, id, res)
}

// Derive computes what the task's status would be right now without writing.
func (p *Propagator) Derive(id string) (Status, error) {
	task, err := p.store.Task(id)
	if err != nil {
		return "", err
	}
	idx, err := p.index()
	if err != nil {
		return "", err
	}
	deps := idx.DependenciesOf(id)
	statuses, err := p.store.Statuses(deps)
	if err != nil {
		return "", fmt.Errorf("failed to read dependency statuses of task '%s': %w", id, err)
	}
	return DeriveStatus(task.Status, collect(deps, statuses)), nil
}

// cascade walks dependents breadth-first from root. A dependent is enqueued
// only when its stored status actually changed, which bounds the walk on an
// acyclic graph even when a task is reachable along several paths.
func (p *Propagator) cascade(idx *Index, root string, res *Result) error {
	type item struct {
		id    string
		depth int
	}
	queue := []item{{id: root}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, dep := range idx.DependentsOf(cur.id) {
			changed, err := p.step(idx, root, dep, cur.depth+1, res)
			if err != nil {
				return err
			}
			if changed {
				queue = append(queue, item{id: dep, depth: cur.depth + 1})
			}
		}
	}
	return nil
}

// step re-derives one task against live statuses and persists a change.
func (p *Propagator) step(idx *Index, root, id string, depth int, res *Result) (bool, error) {
	res.Visited++
	deps := idx.DependenciesOf(id)
	statuses, err := p.store.Statuses(append([]string{id}, deps...))
	if err != nil {
		return false, &CascadeError{TaskID: id, Changes: res.Changes, Err: err}
	}
	current, ok := statuses[id]
	if !ok {
		// Deleted since the snapshot was taken; nothing to derive.
		return false, nil
	}
	derived := DeriveStatus(current, collect(deps, statuses))
	changed := derived != current
	p.notify(Step{Root: root, TaskID: id, From: current, To: derived, Depth: depth, Changed: changed})
	if !changed {
		return false, nil
	}
	if err := p.store.WriteStatus(id, derived, ChangedByCascade); err != nil {
		return false, &CascadeError{TaskID: id, Changes: res.Changes, Err: err}
	}
	res.Changes = append(res.Changes, Change{TaskID: id, From: current, To: derived, Depth: depth})
	return true, nil
}

func (p *Propagator) index() (*Index, error) {
	edges, err := p.store.Edges()
	if err != nil {
		return nil, fmt.Errorf("failed to load dependency edges: %w", err)
	}
	return NewIndex(edges), nil
}

func (p *Propagator) notify(s Step) {
	if p.observer != nil {
		p.observer.CascadeStep(s)
	}
}

// collect returns the statuses of ids that are still present in statuses.
func collect(ids []string, statuses map[string]Status) []Status {
	out := make([]Status, 0, len(ids))
	for _, id := range ids {
		if s, ok := statuses[id]; ok {
			out = append(out, s)
		}
	}
	return out
}
