package engine

import (
	"github.com/matzehuels/ember/pkg/anim"
	"github.com/matzehuels/ember/pkg/errors"
	"github.com/matzehuels/ember/pkg/geom"
	"github.com/matzehuels/ember/pkg/position"
	"github.com/matzehuels/ember/pkg/size"
	"github.com/matzehuels/ember/pkg/trait"
)

type fitKey struct {
	h Handle
	a geom.Axis
}

type fitResult struct {
	v   int
	err *errors.Error
}

type linkKey struct {
	src   Handle
	trait string
}

// pass carries the state of one settle pass through the resolver.
type pass struct {
	fit      map[fitKey]fitResult
	links    map[Handle]map[linkKey]struct{}
	reported map[*errors.Error]bool
	changed  []Handle
	resolved int
}

func newPass() *pass {
	return &pass{
		fit:      make(map[fitKey]fitResult),
		links:    make(map[Handle]map[linkKey]struct{}),
		reported: make(map[*errors.Error]bool),
	}
}

// resolveRoot resolves the root against the viewport, then its subtree.
func (e *Engine) resolveRoot(p *pass) {
	root := e.root
	r := e.viewport
	for _, a := range geom.Axes {
		s := e.sizeOf(root, a)
		in, err := e.inputs(p, root, a, s)
		if err != nil {
			e.fail(p, err)
			return
		}
		ext := size.Resolve(s, e.viewport.Extent(a), in)
		off := position.Resolve(e.positionOf(root, a), ext, e.viewport.Extent(a), e.sampler(root))
		r = r.WithExtent(a, ext).WithOffset(a, e.viewport.Offset(a)+off)
	}
	e.place(p, root, r)
	e.arrange(p, root)
}

// arrange lays out the children of h inside h's current rectangle and
// recurses into each of them.
func (e *Engine) arrange(p *pass, h Handle) {
	el := e.el(h)
	kids := append([]Handle(nil), el.children...)
	if len(kids) == 0 {
		return
	}
	box := el.rect
	stack := el.class.Arrange == trait.ArrangeStack
	along := e.Axis(h)
	spacing := max(e.Int(h, trait.Spacing), 0)

	rects := make([]geom.Rect, len(kids))
	failed := make([]*errors.Error, len(kids))
	for i, c := range kids {
		rects[i] = e.el(c).rect
	}

	for _, a := range geom.Axes {
		extent := box.Extent(a)
		sizes := make([]size.Size, len(kids))
		ins := make([]size.Inputs, len(kids))
		for i, c := range kids {
			sizes[i] = e.sizeOf(c, a)
			in, err := e.inputs(p, c, a, sizes[i])
			if err != nil && failed[i] == nil {
				failed[i] = err
			}
			ins[i] = in
		}

		if stack && a == along {
			exts := size.Distribute(sizes, extent, spacing, func(i int) size.Inputs { return ins[i] })
			cursor := 0
			for i := range kids {
				rects[i] = rects[i].WithExtent(a, exts[i]).WithOffset(a, cursor)
				cursor += exts[i] + spacing
			}
			continue
		}
		for i, c := range kids {
			ext := size.Resolve(sizes[i], extent, ins[i])
			off := position.Resolve(e.positionOf(c, a), ext, extent, e.sampler(c))
			rects[i] = rects[i].WithExtent(a, ext).WithOffset(a, off)
		}
	}

	for i, c := range kids {
		if failed[i] != nil {
			e.fail(p, failed[i])
			continue
		}
		if e.el(c).frozen == e.frame {
			continue
		}
		e.place(p, c, rects[i])
		e.arrange(p, c)
	}
}

// place commits a resolved rectangle and the watch links read to get it.
func (e *Engine) place(p *pass, h Handle, r geom.Rect) {
	el := e.el(h)
	el.gen = e.pass
	p.resolved++
	if el.rect != r || !el.resolved {
		el.rect = r
		p.changed = append(p.changed, h)
	}
	el.resolved = true
	e.relink(h, p.links[h])
}

// relink replaces the links h's size expressions created last time with
// want. Links made through Watch are left alone.
func (e *Engine) relink(h Handle, want map[linkKey]struct{}) {
	el := e.el(h)
	for k := range el.auto {
		if _, ok := want[k]; ok {
			continue
		}
		if _, ok := el.manual[k]; ok {
			continue
		}
		e.watch.Unlink(h, k.src, k.trait)
	}
	for k := range want {
		_ = e.watch.Link(h, k.src, k.trait)
	}
	el.auto = want
}

func (e *Engine) fail(p *pass, err *errors.Error) {
	if p.reported[err] {
		return
	}
	p.reported[err] = true
	e.report(err)
}

// inputs gathers what s needs besides the container extent: the measured
// content extent for Fit, the extent of a watched element, and animation
// samples. Watched elements are recorded as links of h.
func (e *Engine) inputs(p *pass, h Handle, a geom.Axis, s size.Size) (size.Inputs, *errors.Error) {
	in := size.Inputs{
		Extent: func(src Handle) int {
			if el := e.el(src); el != nil {
				return el.rect.Extent(a)
			}
			return 0
		},
		Sample: e.sampler(h),
	}
	if src, ok := size.Watched(s); ok && src != h && e.valid(src) {
		name := trait.SizeSlot(a)
		if _, pivot := s.(size.Pivotable); pivot {
			name = trait.Value
		}
		if p.links[h] == nil {
			p.links[h] = make(map[linkKey]struct{})
		}
		p.links[h][linkKey{src: src, trait: name}] = struct{}{}
	}
	if size.UsesFit(s) {
		fit, err := e.measure(p, h, a)
		if err != nil {
			return in, err
		}
		in.Fit = fit
	}
	return in, nil
}

// measure returns the content extent of h along a: the sum of its stacked
// children plus spacing, or the furthest edge of its overlaid children.
func (e *Engine) measure(p *pass, h Handle, a geom.Axis) (int, *errors.Error) {
	key := fitKey{h: h, a: a}
	if r, ok := p.fit[key]; ok {
		return r.v, r.err
	}
	el := e.el(h)
	stack := el.class.Arrange == trait.ArrangeStack && e.Axis(h) == a
	total, n := 0, 0
	var ferr *errors.Error
	for _, c := range el.children {
		s := e.sizeOf(c, a)
		if size.NeedsExtent(s) {
			ferr = errors.New(errors.ErrCodeConfiguration,
				"%s %s cannot resolve inside %s, which fits its content", trait.SizeSlot(a), s, e.ident(h)).At(e.ident(c))
			break
		}
		in, err := e.inputs(p, c, a, s)
		if err != nil {
			ferr = err
			break
		}
		ext := size.Resolve(s, 0, in)
		if stack {
			total += ext
			n++
			continue
		}
		total = max(total, leadingOffset(e.positionOf(c, a))+ext)
	}
	if stack && n > 1 {
		total += max(e.Int(h, trait.Spacing), 0) * (n - 1)
	}
	p.fit[key] = fitResult{v: total, err: ferr}
	return total, ferr
}

// leadingOffset is the part of a position that adds to a fitted
// container's extent.
func leadingOffset(pos position.Position) int {
	switch v := pos.(type) {
	case position.Absolute:
		return max(int(v), 0)
	case position.Anchor:
		if v.Align == position.AlignStart {
			return max(v.Offset, 0)
		}
	}
	return 0
}

// sampler returns a sample function that binds the sources it reads to h,
// so h is re-resolved when they move.
func (e *Engine) sampler(h Handle) func(anim.Source) float64 {
	return func(src anim.Source) float64 {
		set, ok := e.users[src]
		if !ok {
			set = make(map[Handle]struct{})
			e.users[src] = set
		}
		set[h] = struct{}{}
		return e.sample(src)
	}
}

func (e *Engine) sample(src anim.Source) float64 {
	if v, ok := e.samples[src]; ok {
		return v
	}
	v := src.Sample(e.now)
	e.samples[src] = v
	return v
}

// fits reports whether h's extent depends on its content on either axis.
func (e *Engine) fits(h Handle) bool {
	return size.UsesFit(e.sizeOf(h, geom.Horizontal)) || size.UsesFit(e.sizeOf(h, geom.Vertical))
}

// boundary returns the element whose children must be re-arranged when d
// changes: d's parent, or further up while that parent fits its content.
// Nil means the root itself must be re-resolved.
func (e *Engine) boundary(d Handle) Handle {
	if d == e.root {
		return Nil
	}
	b := e.el(d).parent
	for b != e.root && e.fits(b) {
		b = e.el(b).parent
	}
	if b == e.root && e.fits(b) {
		return Nil
	}
	return b
}
