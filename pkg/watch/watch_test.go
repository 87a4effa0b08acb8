package watch

import (
	"errors"
	"slices"
	"testing"

	"github.com/matzehuels/ember/pkg/arena"
)

func h(i uint32) arena.Handle { return arena.Handle{Index: i, Gen: 1} }

func TestLink(t *testing.T) {
	g := New()
	if err := g.Link(h(1), h(2), "w"); err != nil {
		t.Fatalf("Link() error = %v", err)
	}
	if err := g.Link(h(1), h(2), "w"); err != nil {
		t.Fatalf("duplicate Link() error = %v", err)
	}
	if g.Len() != 1 {
		t.Errorf("Len() = %d, want 1", g.Len())
	}
	if err := g.Link(h(1), h(1), "w"); !errors.Is(err, ErrSelfWatch) {
		t.Errorf("self Link() error = %v, want ErrSelfWatch", err)
	}
	if err := g.Link(arena.Nil, h(1), "w"); !errors.Is(err, ErrNilHandle) {
		t.Errorf("nil Link() error = %v, want ErrNilHandle", err)
	}

	g.Link(h(1), h(2), "value")
	if deps := g.Dependents(h(2)); len(deps) != 1 || deps[0] != h(1) {
		t.Errorf("Dependents() = %v, want [h1] once", deps)
	}
	if srcs := g.Sources(h(1)); len(srcs) != 1 || srcs[0] != h(2) {
		t.Errorf("Sources() = %v", srcs)
	}
}

func TestPrune(t *testing.T) {
	g := New()
	g.Link(h(1), h(2), "w")
	g.Link(h(2), h(3), "w")
	g.Link(h(4), h(2), "h")

	if n := g.Prune(h(2)); n != 3 {
		t.Errorf("Prune() removed %d, want 3", n)
	}
	if g.Len() != 0 {
		t.Errorf("Len() after prune = %d, want 0", g.Len())
	}
	if len(g.Dependents(h(3))) != 0 || len(g.Sources(h(1))) != 0 {
		t.Error("pruned handle still referenced")
	}
}

func TestPropagateChain(t *testing.T) {
	g := New()
	// 2 watches 1, 3 watches 2, 4 watches 1 and 3.
	g.Link(h(2), h(1), "w")
	g.Link(h(3), h(2), "w")
	g.Link(h(4), h(1), "w")
	g.Link(h(4), h(3), "w")

	order, cycles := g.Propagate(h(1))
	if len(cycles) != 0 {
		t.Fatalf("unexpected cycles %v", cycles)
	}
	want := []arena.Handle{h(2), h(3), h(4)}
	if !slices.Equal(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestPropagateCycleTerminates(t *testing.T) {
	g := New()
	g.Link(h(2), h(1), "w") // B watches A
	g.Link(h(1), h(2), "w") // A watches B

	order, cycles := g.Propagate(h(1))
	if !slices.Equal(order, []arena.Handle{h(2)}) {
		t.Errorf("order = %v, want [B]", order)
	}
	if len(cycles) != 1 {
		t.Fatalf("cycles = %v, want 1", cycles)
	}
	c := cycles[0]
	if !slices.Equal(c.Path, []arena.Handle{h(1), h(2), h(1)}) {
		t.Errorf("Path = %v", c.Path)
	}
	if c.Frozen != h(2) {
		t.Errorf("Frozen = %v, want B", c.Frozen)
	}
}

func TestFindCycles(t *testing.T) {
	g := New()
	g.Link(h(2), h(1), "w")
	g.Link(h(3), h(2), "w")
	if len(g.FindCycles()) != 0 {
		t.Error("acyclic graph reported cycles")
	}
	g.Link(h(1), h(3), "w")
	cycles := g.FindCycles()
	if len(cycles) != 1 {
		t.Fatalf("FindCycles() = %v, want 1 cycle", cycles)
	}
	if len(cycles[0].Path) != 4 {
		t.Errorf("triangle path = %v", cycles[0].Path)
	}
}

func TestEdgesOrdered(t *testing.T) {
	g := New()
	g.Link(h(9), h(5), "w")
	g.Link(h(8), h(1), "h")
	edges := g.Edges()
	if len(edges) != 2 || edges[0].Source != h(1) || edges[1].Source != h(5) {
		t.Errorf("Edges() = %v", edges)
	}
}
