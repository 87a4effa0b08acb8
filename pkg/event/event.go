// Package event defines the semantic events routed through the engine's
// dispatch, and the raw input records the input collaborator feeds in.
package event

import (
	"fmt"

	"github.com/matzehuels/ember/pkg/arena"
	"github.com/matzehuels/ember/pkg/geom"
)

// Kind is a semantic event kind.
type Kind uint8

const (
	// Any matches every kind when used in a handler registration.
	Any Kind = iota
	ValueChanged
	ClickedDown
	Clicked
	FocusChanged
	HoverChanged
	GeometryChanged
	ToggledOn
	ToggledOff
)

var kindNames = map[Kind]string{
	Any:             "any",
	ValueChanged:    "value_changed",
	ClickedDown:     "clicked_down",
	Clicked:         "clicked",
	FocusChanged:    "focus_changed",
	HoverChanged:    "hover_changed",
	GeometryChanged: "geometry_changed",
	ToggledOn:       "toggled_on",
	ToggledOff:      "toggled_off",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("kind(%d)", k)
}

// Event is a semantic event addressed to a target element. Dispatch walks
// from Target to the root until a handler consumes it.
type Event struct {
	Kind   Kind
	Target arena.Handle
	// Value carries kind-specific data: the new gauge value for
	// ValueChanged, whether focus/hover was gained for FocusChanged and
	// HoverChanged.
	Value any
	// Rect is the new rectangle for GeometryChanged.
	Rect geom.Rect

	consumed bool
}

// New returns an event of kind k addressed to target.
func New(k Kind, target arena.Handle, value any) *Event {
	return &Event{Kind: k, Target: target, Value: value}
}

// Consume stops propagation to ancestors once the handlers of the current
// element have run.
func (e *Event) Consume() { e.consumed = true }

// Consumed reports whether a handler consumed the event.
func (e *Event) Consumed() bool { return e.consumed }

// Matches reports whether a handler registered for k receives e.
func (e *Event) Matches(k Kind) bool { return k == Any || k == e.Kind }

func (e *Event) String() string {
	return fmt.Sprintf("%s -> %s", e.Kind, e.Target)
}
