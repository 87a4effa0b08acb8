package engine

import (
	"github.com/matzehuels/ember/pkg/errors"
	"github.com/matzehuels/ember/pkg/render"
	"github.com/matzehuels/ember/pkg/trait"
)

// Render hands every visible element to t in paint order, parents before
// children. Alpha multiplies down the tree. Items that extend past the
// target's bounds are drawn clamped and reported as RENDER_TARGET failures;
// items clamped away entirely are skipped.
func (e *Engine) Render(t render.Target) error {
	if !e.valid(e.root) {
		return nil
	}
	bounds := t.Bounds()
	var errs []error
	var paint func(h Handle, dx, dy int, alpha float64, depth int)
	paint = func(h Handle, dx, dy int, alpha float64, depth int) {
		if !e.Bool(h, trait.Visible) {
			return
		}
		el := e.el(h)
		abs := el.rect.Translate(dx, dy)
		alpha = min(max(alpha*e.Float(h, trait.Alpha), 0), 1)

		clipped := abs.Intersect(bounds)
		if clipped != abs && !abs.Empty() {
			err := errors.New(errors.ErrCodeRenderTarget, "%s exceeds target %s, clamped", abs, bounds).At(e.ident(h))
			e.log.Warn(err.Message, "code", err.Code, "element", err.Element)
			errs = append(errs, err)
		}
		if !clipped.Empty() {
			t.Draw(render.Item{
				Handle: h,
				Name:   el.name,
				Class:  el.class.Name,
				Rect:   clipped,
				Alpha:  alpha,
				State:  e.State(h),
				Depth:  depth,
			})
		}
		for _, c := range el.children {
			paint(c, abs.X, abs.Y, alpha, depth+1)
		}
	}
	paint(e.root, 0, 0, 1, 0)
	return errors.Join(errs...)
}

// State returns the render-state token of h.
func (e *Engine) State(h Handle) render.State {
	el := e.el(h)
	if el == nil {
		return render.StateDefault
	}
	switch {
	case e.Disabled(h):
		return render.StateDisabled
	case h == e.pressed:
		return render.StatePressed
	case el.class.Has(trait.CapToggle) && e.Bool(h, trait.Active):
		return render.StateActive
	case h == e.focus:
		return render.StateFocused
	case h == e.hover && el.class.Has(trait.CapClickable):
		return render.StateHovered
	}
	return render.StateDefault
}
