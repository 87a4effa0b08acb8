// Package trait declares the typed attribute slots of element classes.
//
// Every element class statically declares its slots: name, value kind, default
// value and whether unset instances inherit from an ancestor's cascade. A
// [Class] also carries a capability set (clickable, focusable, disableable,
// container, ...) composed as flags rather than through a type hierarchy, and
// the arrangement its children are laid out with.
//
// The engine resolves an effective value from a slot in a fixed order: local
// override, nearest ancestor cascade entry (cascading slots only), theme
// default, class default. This package holds the declarations and value
// helpers; resolution lives in the engine.
package trait

import (
	"fmt"
	"strings"

	"github.com/matzehuels/ember/pkg/geom"
	"github.com/matzehuels/ember/pkg/position"
	"github.com/matzehuels/ember/pkg/size"
)

// Kind is the value type a slot holds.
type Kind uint8

const (
	KindSize Kind = iota
	KindPosition
	KindFloat
	KindInt
	KindBool
	KindAxis
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindSize:
		return "size"
	case KindPosition:
		return "position"
	case KindFloat:
		return "float"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindAxis:
		return "axis"
	case KindString:
		return "string"
	}
	return fmt.Sprintf("kind(%d)", k)
}

// Well-known slot names.
const (
	X        = "x"
	Y        = "y"
	W        = "w"
	H        = "h"
	Alpha    = "alpha"
	Visible  = "visible"
	Disabled = "disabled"
	Spacing  = "spacing"
	Axis     = "axis"
	Value    = "value"
	Min      = "min"
	Max      = "max"
	Active   = "active"
	Label    = "label"
)

// SizeSlot returns the name of the size slot for axis a.
func SizeSlot(a geom.Axis) string {
	if a == geom.Horizontal {
		return W
	}
	return H
}

// PositionSlot returns the name of the position slot for axis a.
func PositionSlot(a geom.Axis) string {
	if a == geom.Horizontal {
		return X
	}
	return Y
}

// Slot declares a typed attribute.
type Slot struct {
	Name      string
	Kind      Kind
	Default   any
	Cascading bool // unset instances inherit from ancestor cascade entries
	Geometry  bool // changes to the effective value invalidate layout
}

// Base returns the slots every class carries.
func Base() []Slot {
	return []Slot{
		{Name: X, Kind: KindPosition, Default: position.Left(0), Cascading: true, Geometry: true},
		{Name: Y, Kind: KindPosition, Default: position.Top(0), Cascading: true, Geometry: true},
		{Name: W, Kind: KindSize, Default: size.Fill(1), Cascading: true, Geometry: true},
		{Name: H, Kind: KindSize, Default: size.Fill(1), Cascading: true, Geometry: true},
		{Name: Alpha, Kind: KindFloat, Default: 1.0, Cascading: true},
		{Name: Visible, Kind: KindBool, Default: true, Cascading: true},
		{Name: Disabled, Kind: KindBool, Default: false, Cascading: true},
	}
}

// Caps is a set of capabilities attached to a class.
type Caps uint16

const (
	CapContainer Caps = 1 << iota
	CapClickable
	CapFocusable
	CapDisableable
	CapGauge
	CapToggle
)

var capNames = []struct {
	c    Caps
	name string
}{
	{CapContainer, "container"},
	{CapClickable, "clickable"},
	{CapFocusable, "focusable"},
	{CapDisableable, "disableable"},
	{CapGauge, "gauge"},
	{CapToggle, "toggle"},
}

// Has reports whether every capability in o is present.
func (c Caps) Has(o Caps) bool { return c&o == o }

func (c Caps) String() string {
	var parts []string
	for _, n := range capNames {
		if c.Has(n.c) {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// Arrange is how a container positions its children.
type Arrange uint8

const (
	// ArrangeOverlay resolves every child independently against the full
	// content box.
	ArrangeOverlay Arrange = iota
	// ArrangeStack packs children one after another along the axis given by
	// the class's axis slot; the cross axis behaves like an overlay.
	ArrangeStack
)

// Class is a named set of slots plus capabilities.
type Class struct {
	Name    string
	Caps    Caps
	Arrange Arrange

	slots map[string]Slot
	order []string
}

// NewClass declares a class with the base slots plus extra. A slot in extra
// with a base name replaces the base declaration.
func NewClass(name string, caps Caps, arrange Arrange, extra ...Slot) *Class {
	c := &Class{
		Name:    name,
		Caps:    caps,
		Arrange: arrange,
		slots:   make(map[string]Slot),
	}
	for _, s := range Base() {
		c.define(s)
	}
	for _, s := range extra {
		c.define(s)
	}
	return c
}

func (c *Class) define(s Slot) {
	if _, ok := c.slots[s.Name]; !ok {
		c.order = append(c.order, s.Name)
	}
	c.slots[s.Name] = s
}

// WithDefault replaces the class default of a declared slot and returns c.
// It panics if the slot is unknown or v does not fit its kind; it is meant
// for package-level class declarations.
func (c *Class) WithDefault(name string, v any) *Class {
	s, ok := c.slots[name]
	if !ok {
		panic(fmt.Sprintf("trait: class %s has no slot %q", c.Name, name))
	}
	cv, err := Coerce(s, v)
	if err != nil {
		panic(fmt.Sprintf("trait: class %s: %v", c.Name, err))
	}
	s.Default = cv
	c.slots[name] = s
	return c
}

// Slot returns the declaration of a named slot.
func (c *Class) Slot(name string) (Slot, bool) {
	s, ok := c.slots[name]
	return s, ok
}

// Slots returns the declared slots in declaration order.
func (c *Class) Slots() []Slot {
	out := make([]Slot, 0, len(c.order))
	for _, n := range c.order {
		out = append(out, c.slots[n])
	}
	return out
}

// Has reports whether the class carries every capability in caps.
func (c *Class) Has(caps Caps) bool { return c.Caps.Has(caps) }

func (c *Class) String() string { return c.Name }

// Values maps slot names to values, used for constructor-supplied overrides.
type Values map[string]any
