package trait

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrDuplicateClass is returned by [Registry.Register] when a class with
	// the same name is already registered.
	ErrDuplicateClass = errors.New("duplicate class name")

	// ErrUnknownClass is returned by [Registry.Resolve] when no class is
	// registered under the requested name.
	ErrUnknownClass = errors.New("unknown class")
)

// Registry maps class names to declarations. Scenes and themes refer to
// classes by name through a registry.
type Registry struct {
	classes map[string]*Class
}

// NewRegistry returns a registry holding the given classes.
func NewRegistry(classes ...*Class) *Registry {
	r := &Registry{classes: make(map[string]*Class)}
	for _, c := range classes {
		_ = r.Register(c)
	}
	return r
}

// Register adds a class.
func (r *Registry) Register(c *Class) error {
	if _, ok := r.classes[c.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateClass, c.Name)
	}
	r.classes[c.Name] = c
	return nil
}

// Lookup returns the class registered under name.
func (r *Registry) Lookup(name string) (*Class, bool) {
	c, ok := r.classes[name]
	return c, ok
}

// Resolve is like Lookup but returns ErrUnknownClass for a missing name.
func (r *Registry) Resolve(name string) (*Class, error) {
	c, ok := r.classes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownClass, name)
	}
	return c, nil
}

// Names returns the registered class names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.classes))
	for n := range r.classes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Slot finds a slot declaration by name on any registered class. It is used
// to type values cascaded by containers whose own class does not declare the
// slot.
func (r *Registry) Slot(name string) (Slot, bool) {
	for _, n := range r.Names() {
		if s, ok := r.classes[n].Slot(name); ok {
			return s, true
		}
	}
	for _, s := range Base() {
		if s.Name == name {
			return s, true
		}
	}
	return Slot{}, false
}
