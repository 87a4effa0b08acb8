package scene

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/ember/pkg/errors"
	"github.com/matzehuels/ember/pkg/geom"
	"github.com/matzehuels/ember/pkg/widget"
)

const hud = `
name   = "hud"
width  = 100
height = 50

[root]
class   = "vstack"
name    = "root"
spacing = 4

[[root.children]]
class = "bar"
name  = "hp"
h     = 10
value = 25
max   = 100

[[root.children]]
class = "hstack"
name  = "row"
h     = "20px"

[root.children.cascade]
w = "fill:2"

[[root.children.children]]
class = "button"
name  = "ok"

[[root.children.children]]
class    = "button"
name     = "cancel"
disabled = true
`

func TestParseAndBuild(t *testing.T) {
	sc, err := Parse([]byte(hud))
	if err != nil {
		t.Fatal(err)
	}
	if sc.Name != "hud" || sc.Viewport() != geom.R(0, 0, 100, 50) {
		t.Fatalf("header = %q %v", sc.Name, sc.Viewport())
	}
	if got := sc.Root.Count(); got != 5 {
		t.Errorf("Count() = %d, want 5", got)
	}

	e, root, err := Instantiate(sc)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.Resolve(root, sc.Viewport()); err != nil {
		t.Fatal(err)
	}

	got := map[string]geom.Rect{}
	for _, name := range []string{"hp", "hp.fill", "row", "ok", "cancel"} {
		h, ok := e.Find(name)
		if !ok {
			t.Fatalf("element %q not built", name)
		}
		got[name] = e.Bounds(h)
	}
	want := map[string]geom.Rect{
		"hp":      geom.R(0, 0, 100, 10),
		"hp.fill": geom.R(0, 0, 25, 10),
		"row":     geom.R(0, 14, 100, 20),
		"ok":      geom.R(0, 14, 50, 20),
		"cancel":  geom.R(50, 14, 50, 20),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("bounds (-want +got):\n%s", diff)
	}

	cancel, _ := e.Find("cancel")
	if !e.Disabled(cancel) {
		t.Error("cancel should be disabled")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"syntax", `[root`},
		{"no root", `name = "x"`},
		{"unknown key", "[root]\nclass = \"panel\"\ncolour = \"red\""},
		{"bad name", "[root]\nclass = \"panel\"\nname = \"a b\""},
		{"child without class", "[root]\nclass = \"panel\"\n[[root.children]]\nname = \"x\""},
		{"negative viewport", "width = -1\n[root]\nclass = \"panel\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			if !errors.Is(err, errors.ErrCodeInvalidScene) {
				t.Errorf("Parse() error = %v, want INVALID_SCENE", err)
			}
		})
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown class", "[root]\nclass = \"slider\""},
		{"trait not on class", "[root]\nclass = \"panel\"\nspacing = 3"},
		{"bad size", "[root]\nclass = \"panel\"\nw = \"wide\""},
		{"unknown cascade trait", "[root]\nclass = \"panel\"\n[root.cascade]\ncolour = 1"},
		{"non cascading trait", "[root]\nclass = \"panel\"\n[root.cascade]\nspacing = 1"},
		{"child of leaf", "[root]\nclass = \"label\"\n[[root.children]]\nclass = \"panel\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc, err := Parse([]byte(tt.doc))
			if err != nil {
				t.Fatal(err)
			}
			_, err = Build(widget.New(), sc)
			if !errors.Is(err, errors.ErrCodeInvalidScene) {
				t.Errorf("Build() error = %v, want INVALID_SCENE", err)
			}
		})
	}
}

func TestLoadWithThemeFile(t *testing.T) {
	dir := t.TempDir()
	doc := "theme = \"local.toml\"\nwidth = 60\nheight = 10\n[root]\nclass = \"hstack\"\n" +
		"[[root.children]]\nclass = \"panel\"\nname = \"a\"\nw = 10\n" +
		"[[root.children]]\nclass = \"panel\"\nname = \"b\"\nw = 10\n"
	th := "name = \"local\"\n[defaults.hstack]\nspacing = 9\n"
	if err := os.WriteFile(filepath.Join(dir, "scene.toml"), []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "local.toml"), []byte(th), 0o644); err != nil {
		t.Fatal(err)
	}

	sc, err := Load(filepath.Join(dir, "scene.toml"))
	if err != nil {
		t.Fatal(err)
	}
	e, root, err := Instantiate(sc)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.Resolve(root, sc.Viewport()); err != nil {
		t.Fatal(err)
	}
	b, _ := e.Find("b")
	if got := e.Bounds(b); got != geom.R(19, 0, 10, 10) {
		t.Errorf("b = %v, want spacing from theme file", got)
	}
}

func TestThemePathEscape(t *testing.T) {
	sc, err := Parse([]byte("theme = \"../evil.toml\"\n[root]\nclass = \"panel\""))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := sc.LoadTheme(widget.Registry()); !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("LoadTheme() error = %v, want INVALID_PATH", err)
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load() error = %v", err)
	}
}
