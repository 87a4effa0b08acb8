// Package scene loads declarative element trees from TOML.
//
// A scene names a viewport, an optional theme and a root node:
//
//	name   = "hud"
//	width  = 320
//	height = 200
//	theme  = "pixel_dark"
//
//	[root]
//	class   = "vstack"
//	spacing = 4
//
//	[[root.children]]
//	class = "bar"
//	name  = "hp"
//	h     = 12
//	value = 40
//	max   = 100
//
//	[root.cascade]
//	w = "fill:2"
//
// Size and position traits accept the textual forms understood by
// [size.Parse] and [position.Parse]; plain integers are absolute values.
// Unknown keys, classes and traits are INVALID_SCENE errors.
package scene

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/ember/pkg/errors"
	"github.com/matzehuels/ember/pkg/theme"
	"github.com/matzehuels/ember/pkg/trait"
)

// Scene is a decoded scene document.
type Scene struct {
	Name   string `toml:"name"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Theme  string `toml:"theme"`
	Root   Node   `toml:"root"`

	// Dir is the directory of the scene file, used to resolve relative
	// theme paths. It is empty for scenes parsed from memory.
	Dir string `toml:"-"`
}

// Node is one element of a scene. Trait fields hold the raw decoded value
// (string, int64, float64 or bool) and are typed against the node's class
// at build time.
type Node struct {
	Class    string         `toml:"class"`
	Name     string         `toml:"name"`
	W        any            `toml:"w"`
	H        any            `toml:"h"`
	X        any            `toml:"x"`
	Y        any            `toml:"y"`
	Spacing  any            `toml:"spacing"`
	Value    any            `toml:"value"`
	Min      any            `toml:"min"`
	Max      any            `toml:"max"`
	Active   any            `toml:"active"`
	Disabled any            `toml:"disabled"`
	Visible  any            `toml:"visible"`
	Alpha    any            `toml:"alpha"`
	Axis     any            `toml:"axis"`
	Label    any            `toml:"label"`
	Cascade  map[string]any `toml:"cascade"`
	Children []Node         `toml:"children"`
}

// Traits returns the trait values set on the node, keyed by slot name.
func (n *Node) Traits() map[string]any {
	out := make(map[string]any)
	for name, v := range map[string]any{
		trait.W: n.W, trait.H: n.H, trait.X: n.X, trait.Y: n.Y,
		trait.Spacing: n.Spacing, trait.Value: n.Value, trait.Min: n.Min, trait.Max: n.Max,
		trait.Active: n.Active, trait.Disabled: n.Disabled, trait.Visible: n.Visible,
		trait.Alpha: n.Alpha, trait.Axis: n.Axis, trait.Label: n.Label,
	} {
		if v != nil {
			out[name] = v
		}
	}
	return out
}

// Count returns the number of nodes in the subtree rooted at n.
func (n *Node) Count() int {
	c := 1
	for i := range n.Children {
		c += n.Children[i].Count()
	}
	return c
}

// Parse decodes a scene document.
func Parse(data []byte) (*Scene, error) {
	var sc Scene
	md, err := toml.Decode(string(data), &sc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "parse scene")
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		names := make([]string, len(keys))
		for i, k := range keys {
			names[i] = k.String()
		}
		sort.Strings(names)
		return nil, errors.New(errors.ErrCodeInvalidScene, "unknown keys: %s", strings.Join(names, ", "))
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Load reads and parses a scene file.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read scene %s", path)
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	sc.Dir = filepath.Dir(path)
	return sc, nil
}

// Validate checks the document structure. Classes and traits are checked
// by Build, which knows the registry.
func (s *Scene) Validate() error {
	if s.Width < 0 || s.Height < 0 {
		return errors.New(errors.ErrCodeInvalidScene, "negative viewport %dx%d", s.Width, s.Height)
	}
	if s.Root.Class == "" {
		return errors.New(errors.ErrCodeInvalidScene, "scene has no root class")
	}
	var check func(n *Node, at string) error
	check = func(n *Node, at string) error {
		if n.Class == "" {
			return errors.New(errors.ErrCodeInvalidScene, "node without class").At(at)
		}
		if n.Name != "" {
			if err := errors.ValidateElementName(n.Name); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidScene, err, "node name").At(at)
			}
		}
		for i := range n.Children {
			c := &n.Children[i]
			if err := check(c, at+"/"+label(c, i)); err != nil {
				return err
			}
		}
		return nil
	}
	return check(&s.Root, label(&s.Root, 0))
}

// LoadTheme resolves the scene's theme against reg. A scene without a
// theme yields a nil theme. Theme files are resolved relative to the scene
// file and must stay inside its directory.
func (s *Scene) LoadTheme(reg *trait.Registry) (*theme.Theme, error) {
	if s.Theme == "" {
		return nil, nil
	}
	if !strings.HasSuffix(s.Theme, ".toml") {
		return theme.Builtin(s.Theme, reg)
	}
	if err := errors.ValidatePath(s.Theme); err != nil {
		return nil, err
	}
	return theme.Load(filepath.Join(s.Dir, s.Theme), reg)
}

func label(n *Node, i int) string {
	if n.Name != "" {
		return n.Name
	}
	return n.Class + "#" + strconv.Itoa(i)
}
