package graph

// CreatesCycle reports whether adding the candidate edge (task depends on
// dependsOn) would close a cycle, i.e. whether task is already reachable from
// dependsOn over the existing edges. The candidate itself must not be in idx.
//
// A node is marked visited only when it is expanded, and expanding it pushes
// every neighbour, so reaching a visited node by a second route can never hide
// a path to task.
func CreatesCycle(idx *Index, task, dependsOn string) bool {
	visited := make(map[string]bool)
	stack := []string{dependsOn}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == task {
			return true
		}
		if visited[cur] {
			continue
		}
		visited[cur] = true
		next := idx.neighbours(cur)
		for i := len(next) - 1; i >= 0; i-- {
			if !visited[next[i]] {
				stack = append(stack, next[i])
			}
		}
	}
	return false
}

// FindCyclePath returns one concrete cycle closed by the candidate edge, as
// [task, dependsOn, ..., task], or nil if the edge closes no cycle. The path
// is not necessarily the shortest cycle.
//
// Unlike CreatesCycle this search keeps no global visited set. A neighbour is
// skipped only while it is on the current path, so a node abandoned on one
// branch stays explorable from another. Descent is limited to nodes that can
// reach task at all; that prunes dead ends without changing which path is
// found first.
func FindCyclePath(idx *Index, task, dependsOn string) []string {
	if task == dependsOn {
		return nil
	}
	reaches := canReach(idx, task)
	if !reaches[dependsOn] {
		return nil
	}

	type frame struct {
		node string
		next int
	}
	path := []string{dependsOn}
	onStack := map[string]bool{dependsOn: true}
	frames := []frame{{node: dependsOn}}

	for len(frames) > 0 {
		top := &frames[len(frames)-1]
		neighbours := idx.neighbours(top.node)
		if top.next >= len(neighbours) {
			delete(onStack, top.node)
			path = path[:len(path)-1]
			frames = frames[:len(frames)-1]
			continue
		}
		n := neighbours[top.next]
		top.next++
		if onStack[n] || !reaches[n] {
			continue
		}
		path = append(path, n)
		if n == task && len(path) > 1 {
			cycle := make([]string, 0, len(path)+1)
			cycle = append(cycle, task)
			return append(cycle, path...)
		}
		onStack[n] = true
		frames = append(frames, frame{node: n})
	}
	return nil
}

// canReach returns the set of nodes from which target is reachable,
// target included, by walking dependents breadth-first.
func canReach(idx *Index, target string) map[string]bool {
	reach := map[string]bool{target: true}
	queue := []string{target}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, d := range idx.dependents[cur] {
			if !reach[d] {
				reach[d] = true
				queue = append(queue, d)
			}
		}
	}
	return reach
}

// Validate checks a candidate edge against idx. It returns a
// *SelfDependencyError, *DuplicateDependencyError or *CircularDependencyError,
// in that order of precedence, or nil if the edge is safe to persist.
func Validate(idx *Index, task, dependsOn string) error {
	if task == dependsOn {
		return &SelfDependencyError{TaskID: task}
	}
	if idx.HasEdge(task, dependsOn) {
		return &DuplicateDependencyError{TaskID: task, DependsOnID: dependsOn}
	}
	if CreatesCycle(idx, task, dependsOn) {
		return &CircularDependencyError{
			TaskID:      task,
			DependsOnID: dependsOn,
			Path:        FindCyclePath(idx, task, dependsOn),
		}
	}
	return nil
}
