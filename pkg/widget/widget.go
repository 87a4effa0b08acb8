// Package widget declares the standard element classes and their behavior.
//
// Classes:
//
//   - panel: overlay container
//   - hstack, vstack: stacking containers with a spacing slot
//   - label: leaf carrying a text label
//   - button: clickable, focusable, disableable container
//   - toggle: a button with an active state that flips on press
//   - bar: a progress gauge built from a fill and a track panel
//
// [Install] registers the class handlers that give toggles and bars their
// behavior; [New] returns an engine with everything installed.
package widget

import (
	"github.com/matzehuels/ember/pkg/engine"
	"github.com/matzehuels/ember/pkg/errors"
	"github.com/matzehuels/ember/pkg/event"
	"github.com/matzehuels/ember/pkg/geom"
	"github.com/matzehuels/ember/pkg/position"
	"github.com/matzehuels/ember/pkg/size"
	"github.com/matzehuels/ember/pkg/trait"
)

var (
	spacingSlot = trait.Slot{Name: trait.Spacing, Kind: trait.KindInt, Default: 0, Geometry: true}
	labelSlot   = trait.Slot{Name: trait.Label, Kind: trait.KindString, Default: ""}

	Panel  = trait.NewClass("panel", trait.CapContainer, trait.ArrangeOverlay)
	HStack = trait.NewClass("hstack", trait.CapContainer, trait.ArrangeStack, spacingSlot,
		trait.Slot{Name: trait.Axis, Kind: trait.KindAxis, Default: geom.Horizontal, Geometry: true})
	VStack = trait.NewClass("vstack", trait.CapContainer, trait.ArrangeStack, spacingSlot,
		trait.Slot{Name: trait.Axis, Kind: trait.KindAxis, Default: geom.Vertical, Geometry: true})
	Label  = trait.NewClass("label", 0, trait.ArrangeOverlay, labelSlot)
	Button = trait.NewClass("button",
		trait.CapContainer|trait.CapClickable|trait.CapFocusable|trait.CapDisableable,
		trait.ArrangeOverlay, labelSlot)
	Toggle = trait.NewClass("toggle",
		trait.CapContainer|trait.CapClickable|trait.CapFocusable|trait.CapDisableable|trait.CapToggle,
		trait.ArrangeOverlay, labelSlot,
		trait.Slot{Name: trait.Active, Kind: trait.KindBool, Default: false})
	Bar = trait.NewClass("bar", trait.CapContainer|trait.CapGauge, trait.ArrangeOverlay,
		trait.Slot{Name: trait.Value, Kind: trait.KindFloat, Default: 0.0},
		trait.Slot{Name: trait.Min, Kind: trait.KindFloat, Default: 0.0},
		trait.Slot{Name: trait.Max, Kind: trait.KindFloat, Default: 1.0},
		trait.Slot{Name: trait.Axis, Kind: trait.KindAxis, Default: geom.Horizontal, Geometry: true})
)

// Classes returns every standard class.
func Classes() []*trait.Class {
	return []*trait.Class{Panel, HStack, VStack, Label, Button, Toggle, Bar}
}

// Registry returns a registry holding the standard classes.
func Registry() *trait.Registry {
	return trait.NewRegistry(Classes()...)
}

// New returns an engine with the standard classes registered and their
// handlers installed.
func New(opts ...engine.Option) *engine.Engine {
	opts = append([]engine.Option{engine.WithRegistry(Registry())}, opts...)
	e := engine.New(opts...)
	Install(e)
	return e
}

// Install registers the class handlers of the standard widgets on e. Call it
// once per engine.
func Install(e *engine.Engine) {
	e.On(Toggle.Name, event.ClickedDown, func(e *engine.Engine, ev *event.Event) {
		h := ev.Target
		if e.Class(h) != Toggle {
			return
		}
		_ = SetActive(e, h, !e.Bool(h, trait.Active))
	})
	e.On(Bar.Name, event.ValueChanged, func(e *engine.Engine, ev *event.Event) {
		if e.Class(ev.Target) == Bar {
			_ = syncBar(e, ev.Target)
		}
	})
}

// SetActive sets a toggle's active state, dispatching ToggledOn or
// ToggledOff when it changes.
func SetActive(e *engine.Engine, h engine.Handle, on bool) error {
	cls := e.Class(h)
	if cls == nil || !cls.Has(trait.CapToggle) {
		return errors.New(errors.ErrCodeInvalidInput, "element is not a toggle").At(e.Path(h))
	}
	if e.Bool(h, trait.Active) == on {
		return nil
	}
	if err := e.Set(h, trait.Active, on); err != nil {
		return err
	}
	kind := event.ToggledOff
	if on {
		kind = event.ToggledOn
	}
	return e.Emit(kind, h, on)
}

// NewBar creates a detached bar with its fill and track parts. The fill
// covers the bar's progress along its axis starting at the left (or the
// bottom for a vertical bar); the track covers the rest.
func NewBar(e *engine.Engine, name string, vals trait.Values) (engine.Handle, error) {
	bar, err := e.Create(Bar, name, vals)
	if err != nil {
		return engine.Nil, err
	}
	base := e.Name(bar)
	fill, err := e.Create(Panel, base+".fill", nil)
	if err != nil {
		return engine.Nil, err
	}
	track, err := e.Create(Panel, base+".track", nil)
	if err != nil {
		return engine.Nil, err
	}
	if err := e.Append(bar, fill); err != nil {
		return engine.Nil, err
	}
	if err := e.Append(bar, track); err != nil {
		return engine.Nil, err
	}
	if err := syncBar(e, bar); err != nil {
		return engine.Nil, err
	}
	return bar, nil
}

// BarParts returns the fill and track of a bar made by NewBar.
func BarParts(e *engine.Engine, bar engine.Handle) (fill, track engine.Handle, ok bool) {
	kids := e.Children(bar)
	if e.Class(bar) != Bar || len(kids) < 2 {
		return engine.Nil, engine.Nil, false
	}
	return kids[0], kids[1], true
}

// syncBar publishes the bar's progress to its fill and sets the complement
// on its track. Both read the bar's value, so they stay complementary for
// any bar extent.
func syncBar(e *engine.Engine, bar engine.Handle) error {
	_, track, ok := BarParts(e, bar)
	if !ok {
		return nil
	}
	axis := e.Axis(bar)
	primary := size.Pivot(size.Fill(e.Progress(bar)), bar)
	start, end := position.Position(position.Left(0)), position.Position(position.Right(0))
	if axis == geom.Vertical {
		start, end = position.Bottom(0), position.Top(0)
	}
	cross := axis.Cross()
	for _, err := range []error{
		e.Cascade(bar, trait.SizeSlot(axis), primary),
		e.Cascade(bar, trait.PositionSlot(axis), start),
		e.Cascade(bar, trait.SizeSlot(cross), size.Fill(1)),
		e.Cascade(bar, trait.PositionSlot(cross), position.Top(0)),
		e.Set(track, trait.SizeSlot(axis), size.Complement(primary)),
		e.Set(track, trait.PositionSlot(axis), end),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}
