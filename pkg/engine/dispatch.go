package engine

import (
	"github.com/matzehuels/ember/pkg/errors"
	"github.com/matzehuels/ember/pkg/event"
	"github.com/matzehuels/ember/pkg/observability"
	"github.com/matzehuels/ember/pkg/trait"
)

// Handler reacts to an event delivered to an element. It may mutate the
// tree; the changes are settled before the current frame ends.
type Handler func(e *Engine, ev *event.Event)

type binding struct {
	kind event.Kind
	fn   Handler
}

// On registers a handler for every element of a class. Class handlers run
// before the element's own handlers.
func (e *Engine) On(class string, kind event.Kind, fn Handler) {
	e.classHandlers[class] = append(e.classHandlers[class], binding{kind: kind, fn: fn})
	e.wanted[kind]++
}

// OnElement registers a handler on a single element.
func (e *Engine) OnElement(h Handle, kind event.Kind, fn Handler) error {
	el := e.el(h)
	if el == nil {
		return e.stale("on", h)
	}
	el.handlers = append(el.handlers, binding{kind: kind, fn: fn})
	e.wanted[kind]++
	return nil
}

func (e *Engine) wants(k event.Kind) bool {
	return e.wanted[k] > 0 || e.wanted[event.Any] > 0
}

func isClick(k event.Kind) bool {
	return k == event.ClickedDown || k == event.Clicked
}

// Dispatch delivers ev to its target and then to each ancestor until a
// handler consumes it. Click events skip disabled elements but still
// propagate past them. Handlers may dispatch further events; nesting deeper
// than the dispatch cap fails with LAYOUT_RESOLUTION, reported by the
// outermost Dispatch.
func (e *Engine) Dispatch(ev *event.Event) error {
	if e.depth >= e.maxDepth {
		err := errors.New(errors.ErrCodeLayoutResolution,
			"dispatch depth %d exceeded delivering %s", e.maxDepth, ev.Kind).At(e.ident(ev.Target))
		e.log.Error(err.Message, "code", err.Code, "element", err.Element)
		e.dispatchErrs = append(e.dispatchErrs, err)
		return err
	}
	e.depth++
	func() {
		defer func() { e.depth-- }()
		e.deliver(ev)
	}()
	if e.depth > 0 {
		return nil
	}
	err := errors.Join(e.dispatchErrs...)
	e.dispatchErrs = nil
	return err
}

func (e *Engine) deliver(ev *event.Event) {
	ran := 0
	for h := ev.Target; e.valid(h); {
		el := e.el(h)
		if isClick(ev.Kind) && e.Disabled(h) {
			h = el.parent
			continue
		}
		class := el.class.Name
		own := append([]binding(nil), el.handlers...)
		for _, b := range e.classHandlers[class] {
			if ev.Matches(b.kind) {
				b.fn(e, ev)
				ran++
			}
		}
		for _, b := range own {
			if !e.valid(h) {
				break
			}
			if ev.Matches(b.kind) {
				b.fn(e, ev)
				ran++
			}
		}
		if ev.Consumed() || !e.valid(h) {
			break
		}
		h = e.el(h).parent
	}
	observability.Engine().OnDispatch(ev.Kind.String(), ran, ev.Consumed())
}

// Emit dispatches an event of kind k to target.
func (e *Engine) Emit(k event.Kind, target Handle, value any) error {
	if !e.valid(target) {
		return e.stale("emit", target)
	}
	return e.Dispatch(event.New(k, target, value))
}

// Value returns the value of a gauge element.
func (e *Engine) Value(h Handle) float64 { return e.Float(h, trait.Value) }

// Progress returns a gauge's value as a fraction of its range.
func (e *Engine) Progress(h Handle) float64 {
	lo, hi := e.Float(h, trait.Min), e.Float(h, trait.Max)
	if hi <= lo {
		return 0
	}
	return min(max((e.Value(h)-lo)/(hi-lo), 0), 1)
}

// SetValue clamps v to a gauge's range, stores it and dispatches
// ValueChanged to the gauge. Setting the current value does nothing.
func (e *Engine) SetValue(h Handle, v float64) error {
	el := e.el(h)
	if el == nil {
		return e.stale("set value", h)
	}
	if !el.class.Has(trait.CapGauge) {
		return errors.New(errors.ErrCodeInvalidInput, "class %s is not a gauge", el.class.Name).At(e.ident(h))
	}
	lo, hi := e.Float(h, trait.Min), e.Float(h, trait.Max)
	if hi > lo {
		v = min(max(v, lo), hi)
	}
	if cur, ok := e.Effective(h, trait.Value).(float64); ok && cur == v {
		return nil
	}
	if err := e.Set(h, trait.Value, v); err != nil {
		return err
	}
	return e.Dispatch(event.New(event.ValueChanged, h, v))
}
