package engine

import (
	"sort"
	"strings"
	"time"

	"github.com/matzehuels/ember/pkg/anim"
	"github.com/matzehuels/ember/pkg/errors"
	"github.com/matzehuels/ember/pkg/event"
	"github.com/matzehuels/ember/pkg/geom"
	"github.com/matzehuels/ember/pkg/observability"
)

// Resolve makes root the tree root if it is not already, resolves the whole
// tree against avail and returns every attached element's rectangle in root
// coordinates. Failures are isolated per subtree and returned joined; the
// map is complete either way.
func (e *Engine) Resolve(root Handle, avail geom.Rect) (map[Handle]geom.Rect, error) {
	if root != e.root {
		if err := e.SetRoot(root); err != nil {
			return nil, err
		}
	}
	e.beginFrame(e.clock())
	e.resample()
	e.viewport = avail
	e.markDirty(root)
	e.settle()
	return e.Layout(), e.drainErrors()
}

// Layout returns the current rectangle of every attached element in root
// coordinates.
func (e *Engine) Layout() map[Handle]geom.Rect {
	out := make(map[Handle]geom.Rect, e.elems.Len())
	if !e.valid(e.root) {
		return out
	}
	var visit func(h Handle, dx, dy int)
	visit = func(h Handle, dx, dy int) {
		el := e.el(h)
		r := el.rect.Translate(dx, dy)
		out[h] = r
		for _, c := range el.children {
			visit(c, r.X, r.Y)
		}
	}
	visit(e.root, 0, 0)
	return out
}

// Tick runs one frame at time now: animation sources are sampled, queued
// input is mapped and dispatched, and the tree is settled.
func (e *Engine) Tick(now time.Time) error {
	e.beginFrame(now)
	e.resample()
	queued := e.pending
	e.pending = nil
	for _, in := range queued {
		e.handleInput(in)
	}
	e.settle()
	return e.drainErrors()
}

// Watch makes dep re-resolve whenever src's geometry or value changes.
func (e *Engine) Watch(dep, src Handle, name string) error {
	el := e.el(dep)
	if el == nil {
		return e.stale("watch", dep)
	}
	if !e.valid(src) {
		return e.stale("watch", src)
	}
	if err := e.watch.Link(dep, src, name); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "watch %s", e.ident(src)).At(e.ident(dep))
	}
	if el.manual == nil {
		el.manual = make(map[linkKey]struct{})
	}
	el.manual[linkKey{src: src, trait: name}] = struct{}{}
	e.markDirty(dep)
	return nil
}

// Unwatch removes a link made with Watch.
func (e *Engine) Unwatch(dep, src Handle, name string) bool {
	el := e.el(dep)
	if el == nil {
		return false
	}
	delete(el.manual, linkKey{src: src, trait: name})
	return e.watch.Unlink(dep, src, name)
}

func (e *Engine) beginFrame(now time.Time) {
	e.frame++
	e.now = now
}

// resample takes this frame's sample of every bound animation source and
// invalidates the elements of the sources that moved.
func (e *Engine) resample() {
	prev := e.samples
	e.samples = make(map[anim.Source]float64, len(e.users))
	for src, set := range e.users {
		v := src.Sample(e.now)
		e.samples[src] = v
		if old, ok := prev[src]; ok && old == v {
			continue
		}
		for h := range set {
			if !e.valid(h) {
				delete(set, h)
				continue
			}
			e.markDirty(h)
		}
	}
}

// settle resolves queued elements until nothing is dirty or the pass cap is
// reached.
func (e *Engine) settle() {
	start := time.Now()
	st := Stats{Frame: e.frame}
	nerrs := len(e.errs)

	for len(e.queue) > 0 {
		if st.Passes >= e.maxPasses {
			for _, h := range e.queue {
				if el := e.el(h); el != nil {
					el.dirty = false
					e.report(errors.New(errors.ErrCodeLayoutResolution,
						"still invalid after %d settle passes", e.maxPasses).At(e.ident(h)))
				}
			}
			e.queue = nil
			break
		}
		st.Passes++
		e.pass++

		batch := e.queue
		e.queue = nil
		for _, h := range batch {
			if el := e.el(h); el != nil {
				el.dirty = false
			}
		}

		p := newPass()
		for _, b := range e.boundaries(batch) {
			if b.IsNil() {
				e.resolveRoot(p)
			} else {
				e.arrange(p, b)
			}
		}
		st.Resolved += p.resolved
		st.Changed += len(p.changed)

		for _, h := range p.changed {
			if !e.valid(h) {
				continue
			}
			e.notify(h)
			if e.wants(event.GeometryChanged) {
				ev := event.New(event.GeometryChanged, h, nil)
				ev.Rect = e.el(h).rect
				if err := e.Dispatch(ev); err != nil {
					e.errs = append(e.errs, err)
				}
			}
		}
	}

	st.Elements = e.elems.Len()
	st.Links = e.watch.Len()
	e.stats = st
	if st.Passes > 0 {
		e.log.Debug("settled", "frame", e.frame, "passes", st.Passes, "resolved", st.Resolved, "changed", st.Changed)
		observability.Engine().OnSettle(e.frame, st.Passes, st.Resolved, time.Since(start), errors.Join(e.errs[nerrs:]...))
	}
}

// boundaries maps dirty elements to the subtrees that must be re-arranged,
// dropping any nested inside another. A Nil entry means the root.
func (e *Engine) boundaries(batch []Handle) []Handle {
	seen := make(map[Handle]bool)
	var out []Handle
	for _, h := range batch {
		el := e.el(h)
		if el == nil || !el.attached {
			continue
		}
		b := e.boundary(h)
		if b.IsNil() {
			return []Handle{Nil}
		}
		if !seen[b] {
			seen[b] = true
			out = append(out, b)
		}
	}
	kept := out[:0]
	for _, b := range out {
		nested := false
		for a := e.el(b).parent; !a.IsNil(); a = e.el(a).parent {
			if seen[a] {
				nested = true
				break
			}
		}
		if !nested {
			kept = append(kept, b)
		}
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].Index < kept[j].Index })
	return kept
}

// notify queues the transitive watchers of h. A watcher that closes a cycle
// is frozen for the rest of the frame and keeps its last good geometry.
func (e *Engine) notify(h Handle) {
	if e.el(h).frozen == e.frame {
		return
	}
	order, cycles := e.watch.Propagate(h)
	for _, c := range cycles {
		fe := e.el(c.Frozen)
		if fe == nil || fe.frozen == e.frame {
			continue
		}
		fe.frozen = e.frame
		names := make([]string, len(c.Path))
		for i, p := range c.Path {
			names[i] = e.Name(p)
		}
		frozen := e.ident(c.Frozen)
		e.report(errors.New(errors.ErrCodeCascadeResolution,
			"watch cycle %s, keeping last good geometry", strings.Join(names, " -> ")).At(frozen))
		observability.Engine().OnCycle(e.frame, frozen, len(c.Path)-1)
	}
	for _, d := range order {
		if de := e.el(d); de != nil && de.frozen != e.frame {
			e.markDirty(d)
		}
	}
}
