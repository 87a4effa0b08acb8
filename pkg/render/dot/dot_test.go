package dot

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matzehuels/ember/pkg/engine"
	"github.com/matzehuels/ember/pkg/geom"
	"github.com/matzehuels/ember/pkg/trait"
	"github.com/matzehuels/ember/pkg/widget"
)

func barScene(t *testing.T) *engine.Engine {
	t.Helper()
	e := widget.New()
	root, _ := e.Create(widget.Panel, "root", nil)
	bar, err := widget.NewBar(e, "hp", trait.Values{trait.Max: 10, trait.Value: 4})
	if err != nil {
		t.Fatal(err)
	}
	_ = e.Append(root, bar)
	if _, err := e.Resolve(root, geom.R(0, 0, 100, 10)); err != nil {
		t.Fatal(err)
	}
	return e
}

func TestToDOT(t *testing.T) {
	src := ToDOT(barScene(t), Options{})
	for _, want := range []string{
		`"root" [label="root"];`,
		`"root" -> "root/hp";`,
		`"root/hp" -> "root/hp/hp.fill";`,
		`"root/hp" -> "root/hp/hp.fill" [style=dashed`,
		`"root/hp" -> "root/hp/hp.track" [style=dashed`,
	} {
		if !strings.Contains(src, want) {
			t.Errorf("DOT missing %s\n%s", want, src)
		}
	}
}

func TestToDOTDetailed(t *testing.T) {
	src := ToDOT(barScene(t), Options{Detailed: true})
	if !strings.Contains(src, `label="hp.fill\npanel\n(0,0 40x10)\ngen `) {
		t.Errorf("detailed label missing fill rect:\n%s", src)
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(ToDOT(barScene(t), Options{}))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(svg, []byte(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0`)) {
		t.Errorf("svg header not normalized: %.200s", svg)
	}
}
