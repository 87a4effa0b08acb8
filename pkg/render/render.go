package render

import (
	"github.com/matzehuels/ember/pkg/arena"
	"github.com/matzehuels/ember/pkg/geom"
)

// State is the render-state token of an element.
type State string

const (
	StateDefault  State = "default"
	StateHovered  State = "hovered"
	StateFocused  State = "focused"
	StatePressed  State = "pressed"
	StateActive   State = "active"
	StateDisabled State = "disabled"
)

// Item is what a target receives for one element in one frame.
type Item struct {
	Handle arena.Handle `json:"-" bson:"-"`
	Name   string       `json:"name" bson:"name"`
	Class  string       `json:"class" bson:"class"`
	Rect   geom.Rect    `json:"rect" bson:"rect"` // root coordinates, clamped to the target
	Alpha  float64      `json:"alpha" bson:"alpha"`
	State  State        `json:"state" bson:"state"`
	Depth  int          `json:"depth" bson:"depth"`
}

// Target consumes draw items in paint order (parents before children,
// siblings in child order).
type Target interface {
	// Bounds is the drawable area in root coordinates.
	Bounds() geom.Rect
	Draw(it Item)
}

// Collector is a Target that keeps every item it receives.
type Collector struct {
	Area  geom.Rect
	Items []Item
}

// NewCollector returns a collector for a w x h surface.
func NewCollector(w, h int) *Collector {
	return &Collector{Area: geom.R(0, 0, w, h)}
}

// Bounds implements Target.
func (c *Collector) Bounds() geom.Rect { return c.Area }

// Draw implements Target.
func (c *Collector) Draw(it Item) { c.Items = append(c.Items, it) }

// Find returns the first collected item with the given name.
func (c *Collector) Find(name string) (Item, bool) {
	for _, it := range c.Items {
		if it.Name == name {
			return it, true
		}
	}
	return Item{}, false
}

// Multi fans draws out to several targets. Its bounds are those of the
// first target.
type Multi []Target

// Bounds implements Target.
func (m Multi) Bounds() geom.Rect {
	if len(m) == 0 {
		return geom.Rect{}
	}
	return m[0].Bounds()
}

// Draw implements Target.
func (m Multi) Draw(it Item) {
	for _, t := range m {
		t.Draw(it)
	}
}
