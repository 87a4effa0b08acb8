package scene

import (
	"sort"

	"github.com/matzehuels/ember/pkg/engine"
	"github.com/matzehuels/ember/pkg/errors"
	"github.com/matzehuels/ember/pkg/geom"
	"github.com/matzehuels/ember/pkg/trait"
	"github.com/matzehuels/ember/pkg/widget"
)

// Viewport returns the scene's viewport rectangle.
func (s *Scene) Viewport() geom.Rect {
	return geom.R(0, 0, s.Width, s.Height)
}

// Build creates the scene's element tree in e and returns the detached root.
// Classes are looked up in e's registry; bars are built with their parts.
func Build(e *engine.Engine, s *Scene) (engine.Handle, error) {
	b := builder{e: e}
	return b.node(&s.Root, label(&s.Root, 0))
}

// Instantiate returns a new engine holding the scene's tree as its root,
// themed by the scene's theme unless opts supply another.
func Instantiate(s *Scene, opts ...engine.Option) (*engine.Engine, engine.Handle, error) {
	th, err := s.LoadTheme(widget.Registry())
	if err != nil {
		return nil, engine.Nil, err
	}
	if th != nil {
		opts = append([]engine.Option{engine.WithTheme(th)}, opts...)
	}
	e := widget.New(opts...)
	root, err := Build(e, s)
	if err != nil {
		return nil, engine.Nil, err
	}
	if err := e.SetRoot(root); err != nil {
		return nil, engine.Nil, err
	}
	return e, root, nil
}

type builder struct {
	e *engine.Engine
}

func (b *builder) node(n *Node, at string) (engine.Handle, error) {
	cls, ok := b.e.Registry().Lookup(n.Class)
	if !ok {
		return engine.Nil, errors.New(errors.ErrCodeInvalidScene, "unknown class %q", n.Class).At(at)
	}
	vals, err := typed(n.Traits(), at, func(name string) (trait.Slot, bool) { return cls.Slot(name) })
	if err != nil {
		return engine.Nil, err
	}
	var h engine.Handle
	if cls == widget.Bar {
		h, err = widget.NewBar(b.e, n.Name, vals)
	} else {
		h, err = b.e.Create(cls, n.Name, vals)
	}
	if err != nil {
		return engine.Nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "create %s", n.Class).At(at)
	}

	cascaded, err := typed(n.Cascade, at, b.e.Registry().Slot)
	if err != nil {
		return engine.Nil, err
	}
	for _, name := range sortedKeys(cascaded) {
		if err := b.e.Cascade(h, name, cascaded[name]); err != nil {
			return engine.Nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "cascade %s", name).At(at)
		}
	}

	for i := range n.Children {
		c := &n.Children[i]
		ch, err := b.node(c, at+"/"+label(c, i))
		if err != nil {
			return engine.Nil, err
		}
		if err := b.e.Append(h, ch); err != nil {
			return engine.Nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "append child").At(at)
		}
	}
	return h, nil
}

// typed parses raw scene values against the slots returned by lookup.
func typed(raw map[string]any, at string, lookup func(string) (trait.Slot, bool)) (trait.Values, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	vals := make(trait.Values, len(raw))
	for _, name := range sortedKeys(raw) {
		slot, ok := lookup(name)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidScene, "unknown trait %q", name).At(at)
		}
		v, err := trait.Parse(slot, raw[name])
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "trait %s", name).At(at)
		}
		vals[name] = v
	}
	return vals, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
