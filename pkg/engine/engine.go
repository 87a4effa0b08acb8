package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/ember/pkg/anim"
	"github.com/matzehuels/ember/pkg/arena"
	"github.com/matzehuels/ember/pkg/cascade"
	"github.com/matzehuels/ember/pkg/errors"
	"github.com/matzehuels/ember/pkg/event"
	"github.com/matzehuels/ember/pkg/focus"
	"github.com/matzehuels/ember/pkg/geom"
	"github.com/matzehuels/ember/pkg/trait"
	"github.com/matzehuels/ember/pkg/watch"
)

// Handle addresses an element.
type Handle = arena.Handle

// Nil is the handle of no element.
var Nil = arena.Nil

type element struct {
	class    *trait.Class
	name     string
	parent   Handle
	children []Handle
	attached bool // reachable from the root

	local    map[string]any
	cascade  *cascade.Table
	handlers []binding
	auto     map[linkKey]struct{} // links read by size expressions
	manual   map[linkKey]struct{} // links made with Watch

	rect     geom.Rect // parent content space
	dirty    bool      // queued for the next settle pass
	gen      uint64    // settle pass that last resolved the element
	frozen   uint64    // frame in which a watch cycle froze the element
	resolved bool
}

// Engine owns an element tree and resolves it. It is not safe for concurrent
// use; see package loop for a driver that serializes access.
type Engine struct {
	elems    *arena.Arena[element]
	root     Handle
	registry *trait.Registry
	theme    Theme
	watch    *watch.Graph
	nav      focus.Navigator
	log      *log.Logger
	clock    func() time.Time

	maxPasses int
	maxDepth  int

	viewport geom.Rect
	queue    []Handle
	frame    uint64
	pass     uint64
	now      time.Time

	classHandlers map[string][]binding
	wanted        map[event.Kind]int
	depth         int
	dispatchErrs  []error

	pending []event.Input
	focus   Handle
	hover   Handle
	pressed Handle

	samples map[anim.Source]float64
	users   map[anim.Source]map[Handle]struct{}

	errs  []error
	stats Stats
}

// Stats describes the most recent settle.
type Stats struct {
	Frame    uint64
	Passes   int
	Resolved int
	Changed  int
	Elements int
	Links    int
}

// New returns an empty engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		elems:         arena.New[element](),
		registry:      trait.NewRegistry(),
		watch:         watch.New(),
		nav:           focus.Default{Wrap: true},
		log:           discardLogger(),
		clock:         time.Now,
		maxPasses:     DefaultMaxPasses,
		maxDepth:      DefaultMaxDispatchDepth,
		classHandlers: make(map[string][]binding),
		wanted:        make(map[event.Kind]int),
		samples:       make(map[anim.Source]float64),
		users:         make(map[anim.Source]map[Handle]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry returns the class registry the engine types values against.
func (e *Engine) Registry() *trait.Registry { return e.registry }

// Logger returns the engine's logger.
func (e *Engine) Logger() *log.Logger { return e.log }

// SetTheme replaces the theme and re-resolves the whole tree.
func (e *Engine) SetTheme(t Theme) {
	e.theme = t
	if e.valid(e.root) {
		e.markDirty(e.root)
	}
}

func (e *Engine) el(h Handle) *element {
	el, _ := e.elems.Get(h)
	return el
}

func (e *Engine) valid(h Handle) bool { return e.elems.Valid(h) }

// Valid reports whether h addresses a live element.
func (e *Engine) Valid(h Handle) bool { return e.valid(h) }

// Len returns the number of live elements, attached or not.
func (e *Engine) Len() int { return e.elems.Len() }

// Create allocates a detached element of class cls. An empty name is
// replaced by the class name and the element's index. Locals are coerced
// against the class's slots.
func (e *Engine) Create(cls *trait.Class, name string, locals trait.Values) (Handle, error) {
	if cls == nil {
		return Nil, errors.New(errors.ErrCodeInvalidInput, "create: nil class")
	}
	if known, ok := e.registry.Lookup(cls.Name); !ok {
		if err := e.registry.Register(cls); err != nil {
			return Nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "create %s", cls.Name)
		}
	} else if known != cls {
		return Nil, errors.New(errors.ErrCodeInvalidInput, "create: another class is registered as %q", cls.Name)
	}
	if name != "" {
		if err := errors.ValidateElementName(name); err != nil {
			return Nil, err
		}
	}

	local := make(map[string]any, len(locals))
	for k, v := range locals {
		slot, ok := cls.Slot(k)
		if !ok {
			return Nil, errors.New(errors.ErrCodeInvalidTrait, "class %s has no slot %q", cls.Name, k).At(name)
		}
		cv, err := trait.Coerce(slot, v)
		if err != nil {
			return Nil, errors.Wrap(errors.ErrCodeInvalidTrait, err, "create %s", cls.Name).At(name)
		}
		local[k] = cv
	}

	h := e.elems.Insert(element{class: cls, name: name, local: local})
	if name == "" {
		e.el(h).name = fmt.Sprintf("%s%d", cls.Name, h.Index)
	}
	return h, nil
}

// SetRoot makes a detached element the root of the tree. The previous root,
// if any, is detached but not released.
func (e *Engine) SetRoot(h Handle) error {
	el := e.el(h)
	if el == nil {
		return e.stale("set root", h)
	}
	if !el.parent.IsNil() {
		return errors.New(errors.ErrCodeInvalidInput, "set root: element has a parent").At(e.ident(h))
	}
	if h == e.root {
		return nil
	}
	if e.valid(e.root) {
		e.setAttached(e.root, false)
	}
	e.root = h
	e.setAttached(h, true)
	e.markDirty(h)
	return nil
}

// Root returns the root element.
func (e *Engine) Root() Handle { return e.root }

// Append adds child as the last child of parent.
func (e *Engine) Append(parent, child Handle) error {
	return e.Insert(parent, -1, child)
}

// Insert adds child to parent at index; a negative or out of range index
// appends. The child must be detached.
func (e *Engine) Insert(parent Handle, index int, child Handle) error {
	p, c := e.el(parent), e.el(child)
	if p == nil {
		return e.stale("insert", parent)
	}
	if c == nil {
		return e.stale("insert", child)
	}
	if !p.class.Has(trait.CapContainer) {
		return errors.New(errors.ErrCodeInvalidInput, "class %s cannot hold children", p.class.Name).At(e.ident(parent))
	}
	if !c.parent.IsNil() || child == e.root {
		return errors.New(errors.ErrCodeInvalidInput, "element already has a parent").At(e.ident(child))
	}
	for a := parent; !a.IsNil(); a = e.el(a).parent {
		if a == child {
			return errors.New(errors.ErrCodeInvalidInput, "insert would create a loop").At(e.ident(child))
		}
	}

	c.parent = parent
	if index < 0 || index >= len(p.children) {
		p.children = append(p.children, child)
	} else {
		p.children = append(p.children, Nil)
		copy(p.children[index+1:], p.children[index:])
		p.children[index] = child
	}
	if p.attached {
		e.setAttached(child, true)
		e.markDirty(child)
		e.markDirty(parent)
	}
	return nil
}

// Remove detaches h from its parent and releases h and its descendants.
// Their watch links, animation bindings, handlers, focus and hover are
// dropped with them.
func (e *Engine) Remove(h Handle) error {
	el := e.el(h)
	if el == nil {
		return e.stale("remove", h)
	}
	if p := e.el(el.parent); p != nil {
		for i, c := range p.children {
			if c == h {
				p.children = append(p.children[:i], p.children[i+1:]...)
				break
			}
		}
		if p.attached {
			e.markDirty(el.parent)
		}
	}
	if h == e.root {
		e.root = Nil
	}

	var doomed []Handle
	e.walk(h, 0, func(d Handle, _ int) bool {
		doomed = append(doomed, d)
		return true
	})
	gone := make(map[Handle]bool, len(doomed))
	for _, d := range doomed {
		gone[d] = true
	}
	for _, d := range doomed {
		for _, dep := range e.watch.Dependents(d) {
			if !gone[dep] {
				e.markDirty(dep)
			}
		}
	}
	for _, d := range doomed {
		e.watch.Prune(d)
		for src, set := range e.users {
			delete(set, d)
			if len(set) == 0 {
				delete(e.users, src)
			}
		}
		if d == e.focus {
			e.focus = Nil
		}
		if d == e.hover {
			e.hover = Nil
		}
		if d == e.pressed {
			e.pressed = Nil
		}
		e.elems.Remove(d)
	}
	return nil
}

// Parent returns h's parent, or Nil.
func (e *Engine) Parent(h Handle) Handle {
	if el := e.el(h); el != nil {
		return el.parent
	}
	return Nil
}

// Children returns a copy of h's children in order.
func (e *Engine) Children(h Handle) []Handle {
	el := e.el(h)
	if el == nil {
		return nil
	}
	return append([]Handle(nil), el.children...)
}

// Name returns the element's name.
func (e *Engine) Name(h Handle) string {
	if el := e.el(h); el != nil {
		return el.name
	}
	return ""
}

// Class returns the element's class.
func (e *Engine) Class(h Handle) *trait.Class {
	if el := e.el(h); el != nil {
		return el.class
	}
	return nil
}

// Find returns the first element in tree order with the given name. A name
// containing "/" is matched as a path from the root.
func (e *Engine) Find(name string) (Handle, bool) {
	found := Nil
	e.Walk(func(h Handle, _ int) bool {
		if !found.IsNil() {
			return false
		}
		if e.el(h).name == name || (strings.Contains(name, "/") && e.ident(h) == name) {
			found = h
			return false
		}
		return true
	})
	return found, !found.IsNil()
}

// Rect returns h's resolved rectangle in its parent's content space.
func (e *Engine) Rect(h Handle) geom.Rect {
	if el := e.el(h); el != nil {
		return el.rect
	}
	return geom.Rect{}
}

// Bounds returns h's resolved rectangle in root coordinates.
func (e *Engine) Bounds(h Handle) geom.Rect {
	el := e.el(h)
	if el == nil {
		return geom.Rect{}
	}
	r := el.rect
	for p := el.parent; !p.IsNil(); {
		pe := e.el(p)
		r = r.Translate(pe.rect.X, pe.rect.Y)
		p = pe.parent
	}
	return r
}

// Generation returns the settle pass that last resolved h. It only grows.
func (e *Engine) Generation(h Handle) uint64 {
	if el := e.el(h); el != nil {
		return el.gen
	}
	return 0
}

// Frame returns the number of frames started so far.
func (e *Engine) Frame() uint64 { return e.frame }

// Stats returns statistics about the last settle.
func (e *Engine) Stats() Stats { return e.stats }

// Viewport returns the rectangle the root is resolved against.
func (e *Engine) Viewport() geom.Rect { return e.viewport }

// SetViewport changes the rectangle the root is resolved against.
func (e *Engine) SetViewport(r geom.Rect) {
	if r == e.viewport {
		return
	}
	e.viewport = r
	if e.valid(e.root) {
		e.markDirty(e.root)
	}
}

// Walk visits the attached tree in pre-order. Returning false from fn skips
// the element's descendants.
func (e *Engine) Walk(fn func(h Handle, depth int) bool) {
	if e.valid(e.root) {
		e.walk(e.root, 0, fn)
	}
}

func (e *Engine) walk(h Handle, depth int, fn func(Handle, int) bool) {
	if !fn(h, depth) {
		return
	}
	for _, c := range e.Children(h) {
		if e.valid(c) {
			e.walk(c, depth+1, fn)
		}
	}
}

// WatchEdges returns the current watch links.
func (e *Engine) WatchEdges() []watch.Edge { return e.watch.Edges() }

// Path returns the slash separated names from the root to h.
func (e *Engine) Path(h Handle) string { return e.ident(h) }

func (e *Engine) ident(h Handle) string {
	el := e.el(h)
	if el == nil {
		return h.String()
	}
	parts := []string{el.name}
	for p := el.parent; !p.IsNil(); {
		pe := e.el(p)
		parts = append(parts, pe.name)
		p = pe.parent
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "/")
}

func (e *Engine) setAttached(h Handle, attached bool) {
	e.walk(h, 0, func(d Handle, _ int) bool {
		e.el(d).attached = attached
		return true
	})
}

func (e *Engine) stale(op string, h Handle) error {
	return errors.Wrap(errors.ErrCodeNotFound, arena.ErrStaleHandle, "%s: %s", op, h)
}

// report records a per-subtree failure for the current frame and logs it.
func (e *Engine) report(err *errors.Error) {
	e.errs = append(e.errs, err)
	kv := []any{"code", err.Code, "element", err.Element}
	switch err.Code {
	case errors.ErrCodeCascadeResolution, errors.ErrCodeRenderTarget:
		e.log.Warn(err.Message, kv...)
	default:
		e.log.Error(err.Message, kv...)
	}
}

func (e *Engine) drainErrors() error {
	err := errors.Join(e.errs...)
	e.errs = nil
	return err
}
