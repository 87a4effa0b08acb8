// Package arena provides a generational slot arena addressed by stable handles.
//
// Elements of the layout tree and the edges of the watch graph refer to each
// other through [Handle] values rather than pointers. A handle pairs a slot
// index with the generation the slot had when the value was inserted; once
// the slot is freed and reused, old handles stop resolving instead of
// aliasing the new occupant.
//
// The zero Handle ([Nil]) never refers to a live value. An Arena is not safe
// for concurrent use.
package arena

import (
	"errors"
	"fmt"
)

// ErrStaleHandle is returned by callers that look up a handle whose slot has
// been freed or reused.
var ErrStaleHandle = errors.New("stale or nil handle")

// Handle addresses a value stored in an [Arena].
type Handle struct {
	Index uint32
	Gen   uint32
}

// Nil is the zero handle. It is never valid.
var Nil Handle

// IsNil reports whether h is the zero handle.
func (h Handle) IsNil() bool { return h.Gen == 0 }

// String formats the handle as index@generation.
func (h Handle) String() string {
	if h.IsNil() {
		return "nil"
	}
	return fmt.Sprintf("%d@%d", h.Index, h.Gen)
}

type slot[T any] struct {
	gen  uint32
	live bool
	val  T
}

// Arena stores values of type T in recyclable slots.
type Arena[T any] struct {
	slots []slot[T]
	free  []uint32
	live  int
}

// New returns an empty arena.
func New[T any]() *Arena[T] {
	return &Arena[T]{}
}

// Insert stores v and returns its handle.
func (a *Arena[T]) Insert(v T) Handle {
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		s := &a.slots[idx]
		s.gen++
		s.live = true
		s.val = v
		a.live++
		return Handle{Index: idx, Gen: s.gen}
	}
	a.slots = append(a.slots, slot[T]{gen: 1, live: true, val: v})
	a.live++
	return Handle{Index: uint32(len(a.slots) - 1), Gen: 1}
}

// Get returns a pointer to the value addressed by h. The pointer is valid
// until the next Insert, which may grow the backing storage.
func (a *Arena[T]) Get(h Handle) (*T, bool) {
	if !a.Valid(h) {
		return nil, false
	}
	return &a.slots[h.Index].val, true
}

// Valid reports whether h addresses a live value.
func (a *Arena[T]) Valid(h Handle) bool {
	if h.IsNil() || int(h.Index) >= len(a.slots) {
		return false
	}
	s := &a.slots[h.Index]
	return s.live && s.gen == h.Gen
}

// Remove frees the slot addressed by h. It reports whether h was live.
func (a *Arena[T]) Remove(h Handle) bool {
	if !a.Valid(h) {
		return false
	}
	s := &a.slots[h.Index]
	var zero T
	s.val = zero
	s.live = false
	a.free = append(a.free, h.Index)
	a.live--
	return true
}

// Len returns the number of live values.
func (a *Arena[T]) Len() int { return a.live }

// Each calls fn for every live value in slot order.
func (a *Arena[T]) Each(fn func(Handle, *T)) {
	for i := range a.slots {
		s := &a.slots[i]
		if s.live {
			fn(Handle{Index: uint32(i), Gen: s.gen}, &s.val)
		}
	}
}
