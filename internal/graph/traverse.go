package graph

// HasDirectEdge reports whether an edge from->to exists.
func (s *Snapshot) HasDirectEdge(from, to string) bool {
	return s.Connection(from, to) != nil
}

// Downstream returns every component reachable from start by following
// outgoing edges, excluding start itself.
func (s *Snapshot) Downstream(start string) []string {
	visited := map[string]bool{start: true}
	queue := []string{start}
	var out []string

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, conn := range s.outgoing[current] {
			if visited[conn.To] {
				continue
			}
			visited[conn.To] = true
			out = append(out, conn.To)
			queue = append(queue, conn.To)
		}
	}
	return out
}

// MediatedBy walks forward from source and reports whether a component
// accepted by the guard predicate sits on the way before target is reached.
// Returns false if target is reachable without passing such a component.
func (s *Snapshot) MediatedBy(source, target string, guard func(id string) bool) bool {
	visited := make(map[string]bool)
	queue := []string{source}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true

		if current == target {
			return false
		}
		if current != source && guard(current) {
			return true
		}
		for _, conn := range s.outgoing[current] {
			queue = append(queue, conn.To)
		}
	}
	return false
}

// SimplePaths enumerates every simple path from start to end following
// outgoing edges, bounded by maxDepth hops. All paths are returned, not
// just the shortest; each has at least two nodes.
func (s *Snapshot) SimplePaths(start, end string, maxDepth int) [][]string {
	var paths [][]string
	onPath := make(map[string]bool)

	var dfs func(current string, path []string, depth int)
	dfs = func(current string, path []string, depth int) {
		if depth > maxDepth {
			return
		}
		if current == end {
			full := make([]string, 0, len(path)+1)
			full = append(full, path...)
			full = append(full, current)
			if len(full) > 1 {
				paths = append(paths, full)
			}
			return
		}
		if onPath[current] {
			return
		}
		onPath[current] = true
		for _, conn := range s.outgoing[current] {
			next := make([]string, 0, len(path)+1)
			next = append(next, path...)
			next = append(next, current)
			dfs(conn.To, next, depth+1)
		}
		delete(onPath, current)
	}

	dfs(start, nil, 0)
	return paths
}

// DetectCycles finds simple cycles via DFS with an explicit recursion
// stack. Each reported cycle is closed (first id repeated at the end).
// Traversal order follows the component slice, so results are stable for
// a given graph.
func (s *Snapshot) DetectCycles() [][]string {
	var cycles [][]string
	visited := make(map[string]bool)
	onStack := make(map[string]bool)

	var dfs func(id string, path []string)
	dfs = func(id string, path []string) {
		visited[id] = true
		onStack[id] = true
		path = append(path, id)

		for _, conn := range s.outgoing[id] {
			target := conn.To
			if !visited[target] {
				dfs(target, append([]string(nil), path...))
			} else if onStack[target] {
				for i, p := range path {
					if p == target {
						cycle := append([]string(nil), path[i:]...)
						cycle = append(cycle, target)
						cycles = append(cycles, cycle)
						break
					}
				}
			}
		}

		delete(onStack, id)
	}

	for i := range s.Components {
		if !visited[s.Components[i].ID] {
			dfs(s.Components[i].ID, nil)
		}
	}
	return cycles
}
