// Package theme supplies default trait values and render colors.
//
// A theme is consulted by the engine only when an element has neither a
// local override nor a cascaded value for a slot, and before the class
// default. Themes are TOML documents:
//
//	name = "pixel_dark"
//
//	[defaults.hstack]
//	spacing = 6
//
//	[defaults.button]
//	w = "fit"
//
//	[palette]
//	default = "#3b4252"
//	focused = "#88c0d0"
//
// Values are parsed against the slot declarations of a [trait.Registry].
// Sections for classes the registry does not know are ignored so one theme
// can serve engines with different widget sets.
package theme

import (
	"embed"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/ember/pkg/errors"
	"github.com/matzehuels/ember/pkg/trait"
)

//go:embed themes/*.toml
var builtins embed.FS

// DefaultName is the theme used when none is configured.
const DefaultName = "pixel_dark"

// Theme holds per-class trait defaults and a color palette.
type Theme struct {
	Name     string
	Palette  map[string]string
	defaults map[string]map[string]any
}

type document struct {
	Name     string                    `toml:"name"`
	Defaults map[string]map[string]any `toml:"defaults"`
	Palette  map[string]string         `toml:"palette"`
}

// Parse decodes a theme document, typing every default against reg.
func Parse(data []byte, reg *trait.Registry) (*Theme, error) {
	var doc document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse theme")
	}
	t := &Theme{
		Name:     doc.Name,
		Palette:  doc.Palette,
		defaults: make(map[string]map[string]any),
	}
	if t.Palette == nil {
		t.Palette = map[string]string{}
	}
	for className, values := range doc.Defaults {
		cls, ok := reg.Lookup(className)
		if !ok {
			continue
		}
		typed := make(map[string]any, len(values))
		for name, raw := range values {
			slot, ok := cls.Slot(name)
			if !ok {
				return nil, errors.New(errors.ErrCodeInvalidTrait, "theme %q: class %s has no slot %q", doc.Name, className, name)
			}
			v, err := trait.Parse(slot, raw)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidTrait, err, "theme %q: class %s", doc.Name, className)
			}
			typed[name] = v
		}
		t.defaults[className] = typed
	}
	return t, nil
}

// Load reads and parses a theme file.
func Load(file string, reg *trait.Registry) (*Theme, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read theme %s", file)
	}
	return Parse(data, reg)
}

// Builtin returns one of the embedded themes by name.
func Builtin(name string, reg *trait.Registry) (*Theme, error) {
	data, err := builtins.ReadFile(path.Join("themes", name+".toml"))
	if err != nil {
		return nil, errors.New(errors.ErrCodeNotFound, "unknown theme %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return Parse(data, reg)
}

// Resolve loads name as a builtin theme, or as a file path when it ends in
// ".toml".
func Resolve(name string, reg *trait.Registry) (*Theme, error) {
	if strings.HasSuffix(name, ".toml") {
		return Load(name, reg)
	}
	return Builtin(name, reg)
}

// Names lists the embedded themes.
func Names() []string {
	entries, _ := builtins.ReadDir("themes")
	var names []string
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".toml"))
	}
	sort.Strings(names)
	return names
}

// Default returns the theme's value for a class slot. A nil theme has no
// defaults.
func (t *Theme) Default(class, slot string) (any, bool) {
	if t == nil {
		return nil, false
	}
	v, ok := t.defaults[class][slot]
	return v, ok
}

// Color returns the palette entry for key, falling back to the "default"
// entry and then to a neutral grey.
func (t *Theme) Color(key string) string {
	if t != nil {
		if c, ok := t.Palette[key]; ok {
			return c
		}
		if c, ok := t.Palette["default"]; ok {
			return c
		}
	}
	return "#808080"
}

func (t *Theme) String() string {
	if t == nil {
		return "<none>"
	}
	return fmt.Sprintf("theme(%s)", t.Name)
}
