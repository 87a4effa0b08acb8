// Package focus implements directional focus navigation over an element tree.
//
// The engine owns the focus target; a [Navigator] only answers "where does
// focus go from here". The default navigator moves forward and back in tree
// order and spatially (left, right, up, down) using the resolved rectangles
// of focusable elements.
package focus

import (
	"github.com/matzehuels/ember/pkg/arena"
	"github.com/matzehuels/ember/pkg/geom"
)

// Direction is a navigation request.
type Direction uint8

const (
	Forward Direction = iota
	Back
	Left
	Right
	Up
	Down
)

func (d Direction) String() string {
	return [...]string{"forward", "back", "left", "right", "up", "down"}[d]
}

// Tree is the read-only view of the element tree a navigator works on.
type Tree interface {
	Root() arena.Handle
	Children(h arena.Handle) []arena.Handle
	// Focusable reports whether h can receive focus right now.
	Focusable(h arena.Handle) bool
	// Bounds returns h's resolved rectangle in root coordinates.
	Bounds(h arena.Handle) geom.Rect
}

// Navigator chooses the next focus target.
type Navigator interface {
	Navigate(t Tree, from arena.Handle, dir Direction) (arena.Handle, bool)
}

// Default is the standard navigator. With Wrap set, forward and back
// navigation cycle past the ends of the focus order.
type Default struct {
	Wrap bool
}

// Navigate implements Navigator.
func (d Default) Navigate(t Tree, from arena.Handle, dir Direction) (arena.Handle, bool) {
	order := Order(t)
	if len(order) == 0 {
		return arena.Nil, false
	}
	idx := -1
	for i, h := range order {
		if h == from {
			idx = i
			break
		}
	}

	switch dir {
	case Forward:
		switch {
		case idx < 0:
			return order[0], true
		case idx+1 < len(order):
			return order[idx+1], true
		case d.Wrap:
			return order[0], true
		}
		return arena.Nil, false
	case Back:
		switch {
		case idx < 0:
			return order[len(order)-1], true
		case idx > 0:
			return order[idx-1], true
		case d.Wrap:
			return order[len(order)-1], true
		}
		return arena.Nil, false
	}

	if idx < 0 {
		return order[0], true
	}
	return spatial(t, order, from, dir)
}

// Order returns the focusable elements in depth-first tree order.
func Order(t Tree) []arena.Handle {
	var out []arena.Handle
	var walk func(h arena.Handle)
	walk = func(h arena.Handle) {
		if t.Focusable(h) {
			out = append(out, h)
		}
		for _, c := range t.Children(h) {
			walk(c)
		}
	}
	if root := t.Root(); !root.IsNil() {
		walk(root)
	}
	return out
}

// spatial picks the candidate whose center lies in direction dir from the
// current center, minimizing distance along dir plus twice the lateral drift.
func spatial(t Tree, order []arena.Handle, from arena.Handle, dir Direction) (arena.Handle, bool) {
	c := t.Bounds(from).Center()
	best := arena.Nil
	bestScore := 0
	for _, h := range order {
		if h == from {
			continue
		}
		p := t.Bounds(h).Center()
		dx, dy := p.X-c.X, p.Y-c.Y
		var along, lateral int
		switch dir {
		case Left:
			along, lateral = -dx, dy
		case Right:
			along, lateral = dx, dy
		case Up:
			along, lateral = -dy, dx
		case Down:
			along, lateral = dy, dx
		}
		if along <= 0 {
			continue
		}
		if lateral < 0 {
			lateral = -lateral
		}
		score := along + 2*lateral
		if best.IsNil() || score < bestScore {
			best, bestScore = h, score
		}
	}
	return best, !best.IsNil()
}
