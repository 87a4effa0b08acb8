// Package cascade holds the per-container tables of ambient trait overrides.
//
// A container publishes a [Table] of entries (trait, value, origin). Each
// descendant that has no local override for a cascading trait inherits the
// value of the nearest ancestor table carrying that trait.
//
// Tables are immutable once published: [Table.With] and [Table.Without]
// return a new snapshot and leave the receiver untouched, so a reader holding
// the previous snapshot for the current frame never observes a partial
// update. The nil *Table is a valid empty table.
package cascade

import (
	"github.com/matzehuels/ember/pkg/arena"
)

// Entry is one cascaded override.
type Entry struct {
	Trait  string
	Value  any
	Origin arena.Handle // container that published the entry
}

// Table is an immutable, insertion-ordered set of entries keyed by trait.
type Table struct {
	entries []Entry
}

// Lookup returns the entry for trait, if present.
func (t *Table) Lookup(trait string) (Entry, bool) {
	if t == nil {
		return Entry{}, false
	}
	for _, e := range t.entries {
		if e.Trait == trait {
			return e, true
		}
	}
	return Entry{}, false
}

// Has reports whether the table carries an entry for trait.
func (t *Table) Has(trait string) bool {
	_, ok := t.Lookup(trait)
	return ok
}

// With returns a new table in which trait maps to value, replacing any
// existing entry for trait in place.
func (t *Table) With(trait string, value any, origin arena.Handle) *Table {
	e := Entry{Trait: trait, Value: value, Origin: origin}
	var src []Entry
	if t != nil {
		src = t.entries
	}
	out := make([]Entry, 0, len(src)+1)
	replaced := false
	for _, old := range src {
		if old.Trait == trait {
			out = append(out, e)
			replaced = true
			continue
		}
		out = append(out, old)
	}
	if !replaced {
		out = append(out, e)
	}
	return &Table{entries: out}
}

// Without returns a new table without an entry for trait. It returns the
// receiver unchanged when there is nothing to remove.
func (t *Table) Without(trait string) *Table {
	if !t.Has(trait) {
		return t
	}
	out := make([]Entry, 0, len(t.entries)-1)
	for _, e := range t.entries {
		if e.Trait != trait {
			out = append(out, e)
		}
	}
	return &Table{entries: out}
}

// Entries returns a copy of the entries in insertion order.
func (t *Table) Entries() []Entry {
	if t == nil {
		return nil
	}
	return append([]Entry(nil), t.entries...)
}

// Len returns the number of entries.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}
