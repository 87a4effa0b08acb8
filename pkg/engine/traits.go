package engine

import (
	"github.com/matzehuels/ember/pkg/anim"
	"github.com/matzehuels/ember/pkg/cascade"
	"github.com/matzehuels/ember/pkg/errors"
	"github.com/matzehuels/ember/pkg/geom"
	"github.com/matzehuels/ember/pkg/position"
	"github.com/matzehuels/ember/pkg/size"
	"github.com/matzehuels/ember/pkg/trait"
)

// Origin says where an effective value came from.
type Origin uint8

const (
	OriginNone Origin = iota
	OriginLocal
	OriginCascade
	OriginTheme
	OriginDefault
)

func (o Origin) String() string {
	return [...]string{"none", "local", "cascade", "theme", "default"}[o]
}

// Provenance identifies the source of an effective value. From is the
// publishing container for OriginCascade.
type Provenance struct {
	Origin Origin
	From   Handle
}

// Set stores a local override on h. Only slots declared by h's class can be
// set.
func (e *Engine) Set(h Handle, name string, v any) error {
	el := e.el(h)
	if el == nil {
		return e.stale("set", h)
	}
	slot, ok := el.class.Slot(name)
	if !ok {
		return errors.New(errors.ErrCodeInvalidTrait, "class %s has no slot %q", el.class.Name, name).At(e.ident(h))
	}
	cv, err := trait.Coerce(slot, v)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidTrait, err, "set %s", name).At(e.ident(h))
	}
	before := e.Effective(h, name)
	el.local[name] = cv
	e.changed(h, slot, before)
	return nil
}

// Unset removes a local override so the slot falls back to cascaded, theme
// or class default values.
func (e *Engine) Unset(h Handle, name string) error {
	el := e.el(h)
	if el == nil {
		return e.stale("unset", h)
	}
	slot, ok := el.class.Slot(name)
	if !ok {
		return errors.New(errors.ErrCodeInvalidTrait, "class %s has no slot %q", el.class.Name, name).At(e.ident(h))
	}
	if _, ok := el.local[name]; !ok {
		return nil
	}
	before := e.Effective(h, name)
	delete(el.local, name)
	e.changed(h, slot, before)
	return nil
}

// Local returns h's local override for a slot.
func (e *Engine) Local(h Handle, name string) (any, bool) {
	el := e.el(h)
	if el == nil {
		return nil, false
	}
	v, ok := el.local[name]
	return v, ok
}

// Effective returns the value of a slot on h: the local override, else the
// nearest ancestor's cascade entry (cascading slots only), else the theme
// default, else the class default. It is nil when h's class does not declare
// the slot.
func (e *Engine) Effective(h Handle, name string) any {
	v, _ := e.Explain(h, name)
	return v
}

// Explain is Effective plus the provenance of the value.
func (e *Engine) Explain(h Handle, name string) (any, Provenance) {
	el := e.el(h)
	if el == nil {
		return nil, Provenance{}
	}
	slot, ok := el.class.Slot(name)
	if !ok {
		return nil, Provenance{}
	}
	if v, ok := el.local[name]; ok {
		return v, Provenance{Origin: OriginLocal}
	}
	if slot.Cascading {
		for p := el.parent; !p.IsNil(); {
			pe := e.el(p)
			if entry, ok := pe.cascade.Lookup(name); ok {
				return entry.Value, Provenance{Origin: OriginCascade, From: p}
			}
			p = pe.parent
		}
	}
	if e.theme != nil {
		if v, ok := e.theme.Default(el.class.Name, name); ok {
			return v, Provenance{Origin: OriginTheme}
		}
	}
	return slot.Default, Provenance{Origin: OriginDefault}
}

// Cascade publishes a value for a cascading slot to h's descendants. It
// does not apply to h itself. Publishing the value already published is a
// no-op.
func (e *Engine) Cascade(h Handle, name string, v any) error {
	el := e.el(h)
	if el == nil {
		return e.stale("cascade", h)
	}
	slot, err := e.cascadeSlot(h, el.class, name)
	if err != nil {
		return err
	}
	cv, err := trait.Coerce(slot, v)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidTrait, err, "cascade %s", name).At(e.ident(h))
	}
	if cur, ok := el.cascade.Lookup(name); ok && trait.Equal(cur.Value, cv) {
		return nil
	}
	e.recascade(h, slot, func(t *cascade.Table) *cascade.Table {
		return t.With(name, cv, h)
	})
	return nil
}

// Uncascade withdraws a published value.
func (e *Engine) Uncascade(h Handle, name string) error {
	el := e.el(h)
	if el == nil {
		return e.stale("uncascade", h)
	}
	if !el.cascade.Has(name) {
		return nil
	}
	slot, err := e.cascadeSlot(h, el.class, name)
	if err != nil {
		return err
	}
	e.recascade(h, slot, func(t *cascade.Table) *cascade.Table {
		return t.Without(name)
	})
	return nil
}

// CascadeTable returns the table h publishes. It is nil when h publishes
// nothing.
func (e *Engine) CascadeTable(h Handle) *cascade.Table {
	if el := e.el(h); el != nil {
		return el.cascade
	}
	return nil
}

func (e *Engine) cascadeSlot(h Handle, cls *trait.Class, name string) (trait.Slot, error) {
	slot, ok := cls.Slot(name)
	if !ok {
		slot, ok = e.registry.Slot(name)
	}
	if !ok {
		return trait.Slot{}, errors.New(errors.ErrCodeInvalidTrait, "unknown slot %q", name).At(e.ident(h))
	}
	if !slot.Cascading {
		return trait.Slot{}, errors.New(errors.ErrCodeInvalidTrait, "slot %q does not cascade", name).At(e.ident(h))
	}
	return slot, nil
}

// recascade swaps h's table and invalidates exactly the descendants whose
// effective value changed.
func (e *Engine) recascade(h Handle, slot trait.Slot, update func(*cascade.Table) *cascade.Table) {
	scope := e.cascadeScope(h, slot.Name)
	before := make([]any, len(scope))
	for i, d := range scope {
		before[i] = e.Effective(d, slot.Name)
	}
	el := e.el(h)
	el.cascade = update(el.cascade)
	for i, d := range scope {
		e.changed(d, slot, before[i])
	}
}

// cascadeScope lists the descendants of h that read slot name from h's
// table: it stops below any descendant that publishes its own entry.
func (e *Engine) cascadeScope(h Handle, name string) []Handle {
	var out []Handle
	var visit func(Handle)
	visit = func(c Handle) {
		el := e.el(c)
		if _, ok := el.class.Slot(name); ok {
			out = append(out, c)
		}
		if el.cascade.Has(name) {
			return
		}
		for _, gc := range el.children {
			visit(gc)
		}
	}
	for _, c := range e.el(h).children {
		visit(c)
	}
	return out
}

// changed invalidates h if the effective value of slot moved away from
// before.
func (e *Engine) changed(h Handle, slot trait.Slot, before any) {
	if trait.Equal(before, e.Effective(h, slot.Name)) {
		return
	}
	if slot.Geometry {
		e.markDirty(h)
	}
	for _, dep := range e.watch.Dependents(h) {
		e.markDirty(dep)
	}
}

func (e *Engine) markDirty(h Handle) {
	el := e.el(h)
	if el == nil || !el.attached || el.dirty {
		return
	}
	el.dirty = true
	e.queue = append(e.queue, h)
}

func (e *Engine) sizeOf(h Handle, a geom.Axis) size.Size {
	if s, ok := e.Effective(h, trait.SizeSlot(a)).(size.Size); ok {
		return s
	}
	return size.Absolute(0)
}

func (e *Engine) positionOf(h Handle, a geom.Axis) position.Position {
	if p, ok := e.Effective(h, trait.PositionSlot(a)).(position.Position); ok {
		return p
	}
	return position.Absolute(0)
}

// Float returns a float slot, sampling it if it is bound to an animation
// source.
func (e *Engine) Float(h Handle, name string) float64 {
	switch v := e.Effective(h, name).(type) {
	case float64:
		return v
	case anim.Source:
		return e.sample(v)
	}
	return 0
}

// Int returns an int slot.
func (e *Engine) Int(h Handle, name string) int {
	v, _ := e.Effective(h, name).(int)
	return v
}

// Bool returns a bool slot.
func (e *Engine) Bool(h Handle, name string) bool {
	v, _ := e.Effective(h, name).(bool)
	return v
}

// Text returns a string slot.
func (e *Engine) Text(h Handle, name string) string {
	v, _ := e.Effective(h, name).(string)
	return v
}

// Axis returns the stacking axis of h.
func (e *Engine) Axis(h Handle) geom.Axis {
	v, _ := e.Effective(h, trait.Axis).(geom.Axis)
	return v
}

// Visible reports whether h and all of its ancestors are visible.
func (e *Engine) Visible(h Handle) bool {
	for ; e.valid(h); h = e.el(h).parent {
		if !e.Bool(h, trait.Visible) {
			return false
		}
	}
	return true
}

// Disabled reports whether h is disabled. Only disableable classes can be.
func (e *Engine) Disabled(h Handle) bool {
	el := e.el(h)
	if el == nil || !el.class.Has(trait.CapDisableable) {
		return false
	}
	return e.Bool(h, trait.Disabled)
}
