package cascade

import (
	"testing"

	"github.com/matzehuels/ember/pkg/arena"
)

func TestWithReplacesInPlace(t *testing.T) {
	origin := arena.Handle{Index: 1, Gen: 1}
	var t0 *Table
	t1 := t0.With("alpha", 0.5, origin).With("w", 10, origin)
	t2 := t1.With("alpha", 0.8, origin)

	if t1.Len() != 2 || t2.Len() != 2 {
		t.Fatalf("Len() = %d, %d, want 2, 2", t1.Len(), t2.Len())
	}
	if e, _ := t1.Lookup("alpha"); e.Value != 0.5 {
		t.Errorf("published snapshot mutated: alpha = %v", e.Value)
	}
	if e, _ := t2.Lookup("alpha"); e.Value != 0.8 || e.Origin != origin {
		t.Errorf("t2 alpha = %+v", e)
	}
	if t2.Entries()[0].Trait != "alpha" {
		t.Errorf("replacement changed order: %v", t2.Entries())
	}
}

func TestWithout(t *testing.T) {
	tb := (*Table)(nil).With("a", 1, arena.Nil).With("b", 2, arena.Nil)
	got := tb.Without("a")
	if got.Has("a") || !got.Has("b") {
		t.Errorf("Without(a) = %v", got.Entries())
	}
	if !tb.Has("a") {
		t.Error("Without mutated the receiver")
	}
	if tb.Without("zzz") != tb {
		t.Error("Without(missing) should return the receiver")
	}
}

func TestNilTable(t *testing.T) {
	var tb *Table
	if _, ok := tb.Lookup("x"); ok {
		t.Error("nil table lookup succeeded")
	}
	if tb.Len() != 0 || tb.Entries() != nil {
		t.Error("nil table not empty")
	}
	if tb.Without("x") != nil {
		t.Error("nil Without should stay nil")
	}
}
