package engine

import (
	"github.com/matzehuels/ember/pkg/errors"
	"github.com/matzehuels/ember/pkg/event"
	"github.com/matzehuels/ember/pkg/focus"
	"github.com/matzehuels/ember/pkg/geom"
	"github.com/matzehuels/ember/pkg/trait"
)

// PostInput queues raw input for the next tick.
func (e *Engine) PostInput(in ...event.Input) {
	e.pending = append(e.pending, in...)
}

// Focus returns the focused element, or Nil.
func (e *Engine) Focus() Handle { return e.focus }

// Hover returns the element under the pointer, or Nil.
func (e *Engine) Hover() Handle { return e.hover }

// Pressed returns the element holding a pointer press, or Nil.
func (e *Engine) Pressed() Handle { return e.pressed }

// Focusable reports whether h can take focus now.
func (e *Engine) Focusable(h Handle) bool {
	el := e.el(h)
	if el == nil || !el.attached || !el.class.Has(trait.CapFocusable) {
		return false
	}
	return e.Visible(h) && !e.Disabled(h)
}

// SetFocus moves focus to h, or clears it when h is Nil, dispatching
// FocusChanged to the element losing and the element gaining focus.
func (e *Engine) SetFocus(h Handle) error {
	if h == e.focus {
		return nil
	}
	if !h.IsNil() && !e.Focusable(h) {
		return errors.New(errors.ErrCodeInvalidInput, "element cannot take focus").At(e.ident(h))
	}
	old := e.focus
	e.focus = h
	var errs []error
	if e.valid(old) {
		errs = append(errs, e.Dispatch(event.New(event.FocusChanged, old, false)))
	}
	if !h.IsNil() {
		errs = append(errs, e.Dispatch(event.New(event.FocusChanged, h, true)))
	}
	return errors.Join(errs...)
}

// Navigate moves focus in direction dir using the engine's navigator.
func (e *Engine) Navigate(dir focus.Direction) error {
	next, ok := e.nav.Navigate(e, e.focus, dir)
	if !ok {
		return nil
	}
	return e.SetFocus(next)
}

// HitTest returns the topmost visible element containing p, in root
// coordinates.
func (e *Engine) HitTest(p geom.Point) Handle {
	if !e.valid(e.root) {
		return Nil
	}
	return e.hit(e.root, 0, 0, p)
}

func (e *Engine) hit(h Handle, dx, dy int, p geom.Point) Handle {
	if !e.Bool(h, trait.Visible) {
		return Nil
	}
	el := e.el(h)
	r := el.rect.Translate(dx, dy)
	if !r.Contains(p) {
		return Nil
	}
	found := h
	for _, c := range el.children {
		if got := e.hit(c, r.X, r.Y, p); !got.IsNil() {
			found = got
		}
	}
	return found
}

// clickTarget returns the nearest clickable element at or above h.
func (e *Engine) clickTarget(h Handle) Handle {
	for c := h; e.valid(c); c = e.el(c).parent {
		if e.el(c).class.Has(trait.CapClickable) {
			return c
		}
	}
	return h
}

func (e *Engine) focusTarget(h Handle) Handle {
	for c := h; e.valid(c); c = e.el(c).parent {
		if e.Focusable(c) {
			return c
		}
	}
	return Nil
}

// handleInput maps one raw input to semantic events.
func (e *Engine) handleInput(in event.Input) {
	var err error
	switch v := in.(type) {
	case event.PointerMove:
		err = e.moveHover(e.HitTest(v.Pos))
	case event.PointerButton:
		if v.Button != 1 {
			return
		}
		if v.Down {
			err = e.press(e.HitTest(v.Pos))
		} else {
			err = e.release(v.Pos)
		}
	case event.Key:
		if !v.Down {
			return
		}
		err = e.key(v.Code)
	case event.ControllerButton:
		if v.Down && v.Button == 0 {
			err = e.activate()
		}
	}
	if err != nil {
		e.errs = append(e.errs, err)
	}
}

func (e *Engine) moveHover(h Handle) error {
	if h == e.hover {
		return nil
	}
	old := e.hover
	e.hover = h
	var errs []error
	if e.valid(old) {
		errs = append(errs, e.Dispatch(event.New(event.HoverChanged, old, false)))
	}
	if !h.IsNil() {
		errs = append(errs, e.Dispatch(event.New(event.HoverChanged, h, true)))
	}
	return errors.Join(errs...)
}

func (e *Engine) press(hit Handle) error {
	if hit.IsNil() {
		return nil
	}
	var errs []error
	if f := e.focusTarget(hit); !f.IsNil() {
		errs = append(errs, e.SetFocus(f))
	}
	target := e.clickTarget(hit)
	if !e.valid(target) {
		return errors.Join(errs...)
	}
	e.pressed = target
	errs = append(errs, e.Dispatch(event.New(event.ClickedDown, target, nil)))
	return errors.Join(errs...)
}

// release completes a click when the pointer comes up over the element that
// took the press.
func (e *Engine) release(p geom.Point) error {
	target := e.pressed
	e.pressed = Nil
	if !e.valid(target) || !e.Bounds(target).Contains(p) {
		return nil
	}
	return e.Dispatch(event.New(event.Clicked, target, nil))
}

func (e *Engine) key(code event.KeyCode) error {
	switch code {
	case event.KeyEnter, event.KeySpace:
		return e.activate()
	case event.KeyTab:
		return e.Navigate(focus.Forward)
	case event.KeyBackTab:
		return e.Navigate(focus.Back)
	case event.KeyLeft:
		return e.Navigate(focus.Left)
	case event.KeyRight:
		return e.Navigate(focus.Right)
	case event.KeyUp:
		return e.Navigate(focus.Up)
	case event.KeyDown:
		return e.Navigate(focus.Down)
	case event.KeyEscape:
		return e.SetFocus(Nil)
	}
	return nil
}

// activate clicks the focused element.
func (e *Engine) activate() error {
	if !e.valid(e.focus) {
		return nil
	}
	target := e.focus
	if err := e.Dispatch(event.New(event.ClickedDown, target, nil)); err != nil {
		return err
	}
	if !e.valid(target) {
		return nil
	}
	return e.Dispatch(event.New(event.Clicked, target, nil))
}
