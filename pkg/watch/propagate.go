package watch

import "github.com/matzehuels/ember/pkg/arena"

const (
	white = iota
	gray
	black
)

// Propagate returns every transitive dependent of src in discovery order,
// each at most once, together with the cycles met on the way. src itself is
// never part of order. A cycle is an edge back to a handle that is still on
// the walk stack; the tail of that edge is reported as frozen.
func (g *Graph) Propagate(src arena.Handle) (order []arena.Handle, cycles []Cycle) {
	color := make(map[arena.Handle]int)
	var stack []arena.Handle

	var dfs func(h arena.Handle)
	dfs = func(h arena.Handle) {
		color[h] = gray
		stack = append(stack, h)
		for _, dep := range g.Dependents(h) {
			switch color[dep] {
			case white:
				order = append(order, dep)
				dfs(dep)
			case gray:
				cycles = append(cycles, Cycle{Path: loopPath(stack, dep), Frozen: h})
			}
		}
		stack = stack[:len(stack)-1]
		color[h] = black
	}
	dfs(src)
	return order, cycles
}

// FindCycles walks the whole graph and returns one cycle per back edge.
func (g *Graph) FindCycles() []Cycle {
	color := make(map[arena.Handle]int)
	var stack []arena.Handle
	var cycles []Cycle

	var dfs func(h arena.Handle)
	dfs = func(h arena.Handle) {
		color[h] = gray
		stack = append(stack, h)
		for _, dep := range g.Dependents(h) {
			switch color[dep] {
			case white:
				dfs(dep)
			case gray:
				cycles = append(cycles, Cycle{Path: loopPath(stack, dep), Frozen: h})
			}
		}
		stack = stack[:len(stack)-1]
		color[h] = black
	}

	for _, h := range g.sortedSources() {
		if color[h] == white {
			dfs(h)
		}
	}
	return cycles
}

// loopPath returns the stack suffix starting at start, closed with start.
func loopPath(stack []arena.Handle, start arena.Handle) []arena.Handle {
	for i, h := range stack {
		if h == start {
			path := append([]arena.Handle(nil), stack[i:]...)
			return append(path, start)
		}
	}
	return []arena.Handle{start}
}
