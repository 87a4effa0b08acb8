// Package geom defines the integer geometry shared by the layout engine and
// its render sinks.
//
// Rectangles use integer pixel coordinates with X/Y at the top-left corner.
// Layout code is written once per axis and uses [Axis] to select the
// component it works on (see [Rect.Extent], [Rect.Offset]).
package geom

import "fmt"

// Axis selects the horizontal or vertical component of a geometry value.
type Axis uint8

const (
	Horizontal Axis = iota
	Vertical
)

// Axes lists both axes in resolution order.
var Axes = [2]Axis{Horizontal, Vertical}

// Cross returns the other axis.
func (a Axis) Cross() Axis {
	if a == Horizontal {
		return Vertical
	}
	return Horizontal
}

func (a Axis) String() string {
	if a == Horizontal {
		return "horizontal"
	}
	return "vertical"
}

// ParseAxis accepts "horizontal"/"h"/"x" and "vertical"/"v"/"y".
func ParseAxis(s string) (Axis, error) {
	switch s {
	case "horizontal", "h", "x", "row":
		return Horizontal, nil
	case "vertical", "v", "y", "column":
		return Vertical, nil
	}
	return Horizontal, fmt.Errorf("unknown axis %q", s)
}

// Point is an integer coordinate.
type Point struct {
	X int `json:"x" bson:"x"`
	Y int `json:"y" bson:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y int) Point { return Point{X: x, Y: y} }

// Rect is an axis-aligned rectangle.
type Rect struct {
	X int `json:"x" bson:"x"`
	Y int `json:"y" bson:"y"`
	W int `json:"w" bson:"w"`
	H int `json:"h" bson:"h"`
}

// R is shorthand for Rect{X: x, Y: y, W: w, H: h}.
func R(x, y, w, h int) Rect { return Rect{X: x, Y: y, W: w, H: h} }

func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d %dx%d)", r.X, r.Y, r.W, r.H)
}

// Right returns the x-coordinate of the right edge (exclusive).
func (r Rect) Right() int { return r.X + r.W }

// Bottom returns the y-coordinate of the bottom edge (exclusive).
func (r Rect) Bottom() int { return r.Y + r.H }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Center returns the rectangle's center point, rounded toward the origin.
func (r Rect) Center() Point { return Point{X: r.X + r.W/2, Y: r.Y + r.H/2} }

// Contains reports whether p lies inside r. Left and top edges are inside.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.Right() && p.Y >= r.Y && p.Y < r.Bottom()
}

// ContainsRect reports whether o lies entirely inside r.
func (r Rect) ContainsRect(o Rect) bool {
	if o.Empty() {
		return true
	}
	return o.X >= r.X && o.Y >= r.Y && o.Right() <= r.Right() && o.Bottom() <= r.Bottom()
}

// Intersect returns the overlap of r and o, or the zero Rect.
func (r Rect) Intersect(o Rect) Rect {
	x := max(r.X, o.X)
	y := max(r.Y, o.Y)
	right := min(r.Right(), o.Right())
	bottom := min(r.Bottom(), o.Bottom())
	if right <= x || bottom <= y {
		return Rect{}
	}
	return Rect{X: x, Y: y, W: right - x, H: bottom - y}
}

// Translate returns r moved by (dx, dy).
func (r Rect) Translate(dx, dy int) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W, H: r.H}
}

// Extent returns the size along a.
func (r Rect) Extent(a Axis) int {
	if a == Horizontal {
		return r.W
	}
	return r.H
}

// Offset returns the origin coordinate along a.
func (r Rect) Offset(a Axis) int {
	if a == Horizontal {
		return r.X
	}
	return r.Y
}

// WithExtent returns r with its size along a replaced.
func (r Rect) WithExtent(a Axis, v int) Rect {
	if a == Horizontal {
		r.W = v
	} else {
		r.H = v
	}
	return r
}

// WithOffset returns r with its origin along a replaced.
func (r Rect) WithOffset(a Axis, v int) Rect {
	if a == Horizontal {
		r.X = v
	} else {
		r.Y = v
	}
	return r
}
