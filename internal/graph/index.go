package graph

// Edge is a directed "depends-on" relation: TaskID cannot be satisfied until
// DependsOnID is.
type Edge struct {
	TaskID      string `json:"task"`
	DependsOnID string `json:"depends_on"`
}

// Index is a read-only adjacency view over one snapshot of the edge set. Both
// directions are derived from the same edge list. It is cheap to build and is
// rebuilt whenever the edge set may have changed; nothing caches it.
type Index struct {
	deps       map[string][]string // task -> depends_on
	dependents map[string][]string // depends_on -> task
	order      []string
	edges      int
}

// NewIndex builds an Index from the full edge set. Neighbour lists keep the
// order in which edges were supplied. Repeated pairs are collapsed.
func NewIndex(edges []Edge) *Index {
	idx := &Index{
		deps:       make(map[string][]string),
		dependents: make(map[string][]string),
	}
	seen := make(map[Edge]bool, len(edges))
	known := make(map[string]bool)
	note := func(id string) {
		if !known[id] {
			known[id] = true
			idx.order = append(idx.order, id)
		}
	}
	for _, e := range edges {
		if seen[e] {
			continue
		}
		seen[e] = true
		note(e.TaskID)
		note(e.DependsOnID)
		idx.deps[e.TaskID] = append(idx.deps[e.TaskID], e.DependsOnID)
		idx.dependents[e.DependsOnID] = append(idx.dependents[e.DependsOnID], e.TaskID)
		idx.edges++
	}
	return idx
}

// DependenciesOf returns the tasks id directly depends on.
func (idx *Index) DependenciesOf(id string) []string {
	return clone(idx.deps[id])
}

// DependentsOf returns the tasks that directly depend on id.
func (idx *Index) DependentsOf(id string) []string {
	return clone(idx.dependents[id])
}

// HasEdge reports whether task already depends on dependsOn.
func (idx *Index) HasEdge(task, dependsOn string) bool {
	for _, d := range idx.deps[task] {
		if d == dependsOn {
			return true
		}
	}
	return false
}

// Tasks returns every task id that appears on at least one edge.
func (idx *Index) Tasks() []string {
	return clone(idx.order)
}

// Len returns the number of distinct edges.
func (idx *Index) Len() int {
	return idx.edges
}

// PrerequisitesFirst orders ids so that each id comes after every id in ids
// it depends on, directly or through tasks outside ids. Unrelated ids keep
// their input order. The edge set must be acyclic.
func (idx *Index) PrerequisitesFirst(ids []string) []string {
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	visited := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))

	var visit func(id string)
	visit = func(id string) {
		if visited[id] {
			return
		}
		visited[id] = true
		for _, d := range idx.deps[id] {
			visit(d)
		}
		if wanted[id] {
			out = append(out, id)
		}
	}
	for _, id := range ids {
		visit(id)
	}
	return out
}

// neighbours returns the internal slice without copying; traversal only.
func (idx *Index) neighbours(id string) []string {
	return idx.deps[id]
}

func clone(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
