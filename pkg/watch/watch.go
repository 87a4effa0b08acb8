// Package watch implements the dependency graph between elements.
//
// An edge records that a dependent element reads a value of a source element
// (its resolved extent, its gauge value, ...). When the source changes, every
// transitive dependent must be re-resolved before the next render.
//
// Edges are index-based: both endpoints are [arena.Handle] values and the
// graph never keeps an element alive. Removing an element prunes every edge
// that names it. Cycles are allowed to exist in the graph; [Graph.Propagate]
// detects them with a visited-set walk and reports them instead of looping.
package watch

import (
	"errors"
	"slices"

	"github.com/matzehuels/ember/pkg/arena"
)

var (
	// ErrSelfWatch is returned by [Graph.Link] when dependent and source are
	// the same element.
	ErrSelfWatch = errors.New("element cannot watch itself")

	// ErrNilHandle is returned by [Graph.Link] when either endpoint is nil.
	ErrNilHandle = errors.New("watch endpoint is nil")
)

// Edge is a directed subscription: Dependent reads Trait of Source.
type Edge struct {
	Dependent arena.Handle
	Source    arena.Handle
	Trait     string
}

// Cycle is a dependency loop found during propagation. Path starts and ends
// with the same handle. Frozen is the participant that closed the loop; it
// keeps its last good value for the current frame.
type Cycle struct {
	Path   []arena.Handle
	Frozen arena.Handle
}

// Graph stores watch edges indexed in both directions.
//
// The zero value is not usable; use New. A Graph is not safe for concurrent
// use.
type Graph struct {
	bySource    map[arena.Handle][]Edge
	byDependent map[arena.Handle][]Edge
	count       int
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		bySource:    make(map[arena.Handle][]Edge),
		byDependent: make(map[arena.Handle][]Edge),
	}
}

// Link records that dep reads trait of src. Linking an existing edge again
// is a no-op.
func (g *Graph) Link(dep, src arena.Handle, trait string) error {
	if dep.IsNil() || src.IsNil() {
		return ErrNilHandle
	}
	if dep == src {
		return ErrSelfWatch
	}
	e := Edge{Dependent: dep, Source: src, Trait: trait}
	if slices.Contains(g.bySource[src], e) {
		return nil
	}
	g.bySource[src] = append(g.bySource[src], e)
	g.byDependent[dep] = append(g.byDependent[dep], e)
	g.count++
	return nil
}

// Unlink removes a single edge. It reports whether the edge existed.
func (g *Graph) Unlink(dep, src arena.Handle, trait string) bool {
	e := Edge{Dependent: dep, Source: src, Trait: trait}
	i := slices.Index(g.bySource[src], e)
	if i < 0 {
		return false
	}
	g.bySource[src] = slices.Delete(g.bySource[src], i, i+1)
	if j := slices.Index(g.byDependent[dep], e); j >= 0 {
		g.byDependent[dep] = slices.Delete(g.byDependent[dep], j, j+1)
	}
	g.compact(src)
	g.compact(dep)
	g.count--
	return true
}

// Prune removes every edge naming h as source or dependent and returns the
// number of edges removed.
func (g *Graph) Prune(h arena.Handle) int {
	removed := 0
	for _, e := range slices.Clone(g.bySource[h]) {
		if g.Unlink(e.Dependent, e.Source, e.Trait) {
			removed++
		}
	}
	for _, e := range slices.Clone(g.byDependent[h]) {
		if g.Unlink(e.Dependent, e.Source, e.Trait) {
			removed++
		}
	}
	return removed
}

func (g *Graph) compact(h arena.Handle) {
	if len(g.bySource[h]) == 0 {
		delete(g.bySource, h)
	}
	if len(g.byDependent[h]) == 0 {
		delete(g.byDependent, h)
	}
}

// Dependents returns the distinct elements that watch src, in link order.
func (g *Graph) Dependents(src arena.Handle) []arena.Handle {
	var out []arena.Handle
	for _, e := range g.bySource[src] {
		if !slices.Contains(out, e.Dependent) {
			out = append(out, e.Dependent)
		}
	}
	return out
}

// Sources returns the distinct elements dep watches, in link order.
func (g *Graph) Sources(dep arena.Handle) []arena.Handle {
	var out []arena.Handle
	for _, e := range g.byDependent[dep] {
		if !slices.Contains(out, e.Source) {
			out = append(out, e.Source)
		}
	}
	return out
}

// Edges returns every edge ordered by source then link order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, g.count)
	for _, src := range g.sortedSources() {
		out = append(out, g.bySource[src]...)
	}
	return out
}

// Len returns the number of edges.
func (g *Graph) Len() int { return g.count }

func (g *Graph) sortedSources() []arena.Handle {
	keys := make([]arena.Handle, 0, len(g.bySource))
	for h := range g.bySource {
		keys = append(keys, h)
	}
	slices.SortFunc(keys, compareHandles)
	return keys
}

func compareHandles(a, b arena.Handle) int {
	if a.Index != b.Index {
		if a.Index < b.Index {
			return -1
		}
		return 1
	}
	if a.Gen < b.Gen {
		return -1
	}
	if a.Gen > b.Gen {
		return 1
	}
	return 0
}
