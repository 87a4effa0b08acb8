package engine

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/ember/pkg/errors"
	"github.com/matzehuels/ember/pkg/geom"
	"github.com/matzehuels/ember/pkg/position"
	"github.com/matzehuels/ember/pkg/size"
	"github.com/matzehuels/ember/pkg/trait"
)

var (
	panelClass = trait.NewClass("panel", trait.CapContainer, trait.ArrangeOverlay)
	stackClass = trait.NewClass("stack", trait.CapContainer, trait.ArrangeStack,
		trait.Slot{Name: trait.Axis, Kind: trait.KindAxis, Default: geom.Horizontal, Geometry: true},
		trait.Slot{Name: trait.Spacing, Kind: trait.KindInt, Default: 0, Geometry: true})
	buttonClass = trait.NewClass("button",
		trait.CapContainer|trait.CapClickable|trait.CapFocusable|trait.CapDisableable, trait.ArrangeOverlay)
	gaugeClass = trait.NewClass("gauge", trait.CapGauge, trait.ArrangeOverlay,
		trait.Slot{Name: trait.Value, Kind: trait.KindFloat, Default: 0.0},
		trait.Slot{Name: trait.Min, Kind: trait.KindFloat, Default: 0.0},
		trait.Slot{Name: trait.Max, Kind: trait.KindFloat, Default: 1.0})
	labelClass = trait.NewClass("label", 0, trait.ArrangeOverlay)
)

type fixture struct {
	t *testing.T
	e *Engine
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	return &fixture{t: t, e: New(opts...)}
}

// add creates an element under parent, or as the root when parent is Nil.
func (f *fixture) add(parent Handle, cls *trait.Class, name string, vals trait.Values) Handle {
	f.t.Helper()
	h, err := f.e.Create(cls, name, vals)
	if err != nil {
		f.t.Fatalf("Create(%s) error = %v", name, err)
	}
	if parent.IsNil() {
		err = f.e.SetRoot(h)
	} else {
		err = f.e.Append(parent, h)
	}
	if err != nil {
		f.t.Fatalf("attach %s: %v", name, err)
	}
	return h
}

func (f *fixture) resolve(w, h int) map[Handle]geom.Rect {
	f.t.Helper()
	got, err := f.e.Resolve(f.e.Root(), geom.R(0, 0, w, h))
	if err != nil {
		f.t.Fatalf("Resolve() error = %v", err)
	}
	return got
}

func (f *fixture) rects(hs ...Handle) []geom.Rect {
	out := make([]geom.Rect, len(hs))
	for i, h := range hs {
		out[i] = f.e.Bounds(h)
	}
	return out
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	if _, err := f.e.Create(panelClass, "p", trait.Values{"glow": 1}); !errors.Is(err, errors.ErrCodeInvalidTrait) {
		t.Errorf("unknown slot: error = %v, want INVALID_TRAIT", err)
	}
	if _, err := f.e.Create(panelClass, "p", trait.Values{trait.W: "wide"}); !errors.Is(err, errors.ErrCodeInvalidTrait) {
		t.Errorf("bad value: error = %v, want INVALID_TRAIT", err)
	}
	if _, err := f.e.Create(panelClass, "1bad name", nil); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("bad name: error = %v, want INVALID_INPUT", err)
	}
	other := trait.NewClass("panel", 0, trait.ArrangeOverlay)
	if _, err := f.e.Create(panelClass, "", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := f.e.Create(other, "", nil); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("class name clash: error = %v, want INVALID_INPUT", err)
	}
}

func TestTreeOps(t *testing.T) {
	f := newFixture(t)
	root := f.add(Nil, panelClass, "root", nil)
	a := f.add(root, panelClass, "a", nil)
	b := f.add(root, panelClass, "b", nil)
	label := f.add(a, labelClass, "", nil)

	mid, _ := f.e.Create(panelClass, "mid", nil)
	if err := f.e.Insert(root, 1, mid); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]Handle{a, mid, b}, f.e.Children(root)); diff != "" {
		t.Errorf("Children() mismatch (-want +got):\n%s", diff)
	}
	if got := f.e.Path(label); got != fmt.Sprintf("root/a/label%d", label.Index) {
		t.Errorf("Path() = %q", got)
	}
	if h, ok := f.e.Find("root/a"); !ok || h != a {
		t.Errorf("Find(root/a) = %v, %v", h, ok)
	}

	x, _ := f.e.Create(panelClass, "x", nil)
	if err := f.e.Append(label, x); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("append to label: error = %v, want INVALID_INPUT", err)
	}
	if err := f.e.Append(a, root); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("append root: error = %v, want INVALID_INPUT", err)
	}
	if err := f.e.Append(b, a); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("reparent without detach: error = %v, want INVALID_INPUT", err)
	}

	if err := f.e.Remove(a); err != nil {
		t.Fatal(err)
	}
	if f.e.Valid(a) || f.e.Valid(label) {
		t.Error("removed subtree still valid")
	}
	if diff := cmp.Diff([]Handle{mid, b}, f.e.Children(root)); diff != "" {
		t.Errorf("Children() after remove (-want +got):\n%s", diff)
	}
	reused, _ := f.e.Create(panelClass, "reused", nil)
	if !f.e.Valid(reused) || f.e.Valid(a) || f.e.Valid(label) {
		t.Error("stale handle resolves after its slot was reused")
	}
	if err := f.e.Set(a, trait.W, 10); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Set on stale handle: error = %v, want NOT_FOUND", err)
	}
}

func TestStackFillSplit(t *testing.T) {
	tests := []struct {
		name    string
		width   int
		spacing int
		weights []float64
		want    []geom.Rect
	}{
		{
			name:    "weighted",
			width:   300,
			weights: []float64{1, 1, 2},
			want:    []geom.Rect{geom.R(0, 0, 75, 50), geom.R(75, 0, 75, 50), geom.R(150, 0, 150, 50)},
		},
		{
			name:    "remainder to last",
			width:   100,
			weights: []float64{1, 1, 1},
			want:    []geom.Rect{geom.R(0, 0, 33, 50), geom.R(33, 0, 33, 50), geom.R(66, 0, 34, 50)},
		},
		{
			name:    "spacing",
			width:   100,
			spacing: 5,
			weights: []float64{1, 1, 1},
			want:    []geom.Rect{geom.R(0, 0, 30, 50), geom.R(35, 0, 30, 50), geom.R(70, 0, 30, 50)},
		},
		{
			name:    "overfull clamps to zero",
			width:   10,
			spacing: 20,
			weights: []float64{1, 1},
			want:    []geom.Rect{geom.R(0, 0, 0, 50), geom.R(20, 0, 0, 50)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			root := f.add(Nil, stackClass, "row", trait.Values{trait.Spacing: tt.spacing})
			var kids []Handle
			for _, w := range tt.weights {
				kids = append(kids, f.add(root, panelClass, "", trait.Values{trait.W: size.Fill(w)}))
			}
			f.resolve(tt.width, 50)
			if diff := cmp.Diff(tt.want, f.rects(kids...)); diff != "" {
				t.Errorf("rects mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestVerticalStackMixed(t *testing.T) {
	f := newFixture(t)
	col := f.add(Nil, stackClass, "col", trait.Values{trait.Axis: geom.Vertical})
	head := f.add(col, panelClass, "head", trait.Values{trait.H: 20})
	body := f.add(col, panelClass, "body", trait.Values{trait.H: size.Fill(1), trait.W: size.Fill(0.5)})
	foot := f.add(col, panelClass, "foot", trait.Values{trait.H: 10, trait.X: position.Right(0), trait.W: 30})
	f.resolve(100, 200)

	want := []geom.Rect{geom.R(0, 0, 100, 20), geom.R(0, 20, 50, 170), geom.R(70, 190, 30, 10)}
	if diff := cmp.Diff(want, f.rects(head, body, foot)); diff != "" {
		t.Errorf("rects mismatch (-want +got):\n%s", diff)
	}
}

func TestFitContainer(t *testing.T) {
	f := newFixture(t)
	root := f.add(Nil, panelClass, "root", nil)
	col := f.add(root, stackClass, "col", trait.Values{
		trait.Axis: geom.Vertical, trait.Spacing: 6, trait.W: 80, trait.H: size.Fit,
		trait.Y: position.Center(0),
	})
	a := f.add(col, panelClass, "a", trait.Values{trait.H: 20})
	b := f.add(col, panelClass, "b", trait.Values{trait.H: 30})
	f.resolve(200, 200)

	want := []geom.Rect{geom.R(0, 72, 80, 56), geom.R(0, 72, 80, 20), geom.R(0, 98, 80, 30)}
	if diff := cmp.Diff(want, f.rects(col, a, b)); diff != "" {
		t.Errorf("rects mismatch (-want +got):\n%s", diff)
	}

	// Growing a child re-measures the fitted parent.
	if err := f.e.Set(b, trait.H, 50); err != nil {
		t.Fatal(err)
	}
	f.resolve(200, 200)
	if got := f.e.Bounds(col); got != geom.R(0, 62, 80, 76) {
		t.Errorf("col after grow = %v", got)
	}
}

func TestFitOverlayUsesFurthestEdge(t *testing.T) {
	f := newFixture(t)
	root := f.add(Nil, panelClass, "root", nil)
	box := f.add(root, panelClass, "box", trait.Values{trait.W: size.Fit, trait.H: size.Fit})
	f.add(box, panelClass, "a", trait.Values{trait.W: 40, trait.H: 10, trait.X: 15})
	f.add(box, panelClass, "b", trait.Values{trait.W: 20, trait.H: 30})
	f.resolve(300, 300)
	if got := f.e.Bounds(box); got != geom.R(0, 0, 55, 30) {
		t.Errorf("box = %v, want (0,0 55x30)", got)
	}
}

func TestFitWithFillChildFails(t *testing.T) {
	f := newFixture(t)
	root := f.add(Nil, panelClass, "root", nil)
	col := f.add(root, stackClass, "col", trait.Values{trait.Axis: geom.Vertical, trait.W: 50, trait.H: size.Fit})
	f.add(col, panelClass, "c", trait.Values{trait.H: size.Fill(1)})
	side := f.add(root, panelClass, "side", trait.Values{trait.W: 50, trait.X: 100})

	_, err := f.e.Resolve(root, geom.R(0, 0, 200, 100))
	if !errors.Is(err, errors.ErrCodeConfiguration) {
		t.Fatalf("Resolve() error = %v, want CONFIGURATION", err)
	}
	all := errors.All(err)
	if len(all) != 1 || all[0].Element != "root/col/c" {
		t.Errorf("errors = %v, want one naming root/col/c", err)
	}
	if got := f.e.Bounds(side); got != geom.R(100, 0, 50, 100) {
		t.Errorf("sibling subtree = %v, want it resolved", got)
	}
	if got := f.e.Rect(col); got != (geom.Rect{}) {
		t.Errorf("failed container = %v, want previous (zero) rect", got)
	}
}

func TestPivotableSums(t *testing.T) {
	primary := size.Pivot(size.Fill(0.25), Nil)
	for _, extent := range []int{0, 1, 7, 99, 200, 333} {
		f := newFixture(t)
		root := f.add(Nil, panelClass, "root", nil)
		p := f.add(root, panelClass, "p", trait.Values{trait.W: primary})
		q := f.add(root, panelClass, "q", trait.Values{trait.W: size.Complement(primary), trait.X: position.Right(0)})
		f.resolve(extent, 10)
		pw, qw := f.e.Rect(p).W, f.e.Rect(q).W
		if pw+qw != extent {
			t.Errorf("extent %d: %d + %d != extent", extent, pw, qw)
		}
		if f.e.Rect(q).X != pw {
			t.Errorf("extent %d: complement starts at %d, want %d", extent, f.e.Rect(q).X, pw)
		}
	}
}

func TestCascade(t *testing.T) {
	f := newFixture(t)
	root := f.add(Nil, panelClass, "root", nil)
	a := f.add(root, panelClass, "a", nil)
	b := f.add(root, panelClass, "b", trait.Values{trait.W: 10})
	g := f.add(a, panelClass, "g", nil)

	if err := f.e.Cascade(root, trait.W, 40); err != nil {
		t.Fatal(err)
	}
	f.resolve(200, 100)
	widths := func() []int {
		return []int{f.e.Rect(root).W, f.e.Rect(a).W, f.e.Rect(b).W, f.e.Rect(g).W}
	}
	if diff := cmp.Diff([]int{200, 40, 10, 40}, widths()); diff != "" {
		t.Errorf("widths (-want +got):\n%s", diff)
	}
	if _, prov := f.e.Explain(g, trait.W); prov.Origin != OriginCascade || prov.From != root {
		t.Errorf("Explain(g) = %+v, want cascade from root", prov)
	}

	if err := f.e.Cascade(root, trait.W, size.Absolute(40)); err != nil {
		t.Fatal(err)
	}
	if len(f.e.queue) != 0 {
		t.Errorf("re-publishing the same value queued %d elements", len(f.e.queue))
	}

	if err := f.e.Cascade(a, trait.W, 20); err != nil {
		t.Fatal(err)
	}
	f.resolve(200, 100)
	if diff := cmp.Diff([]int{200, 40, 10, 20}, widths()); diff != "" {
		t.Errorf("after nested cascade (-want +got):\n%s", diff)
	}

	if err := f.e.Uncascade(root, trait.W); err != nil {
		t.Fatal(err)
	}
	f.resolve(200, 100)
	if diff := cmp.Diff([]int{200, 200, 10, 20}, widths()); diff != "" {
		t.Errorf("after uncascade (-want +got):\n%s", diff)
	}

	if err := f.e.Cascade(root, trait.Value, 1); !errors.Is(err, errors.ErrCodeInvalidTrait) {
		t.Errorf("cascading an unknown slot: error = %v, want INVALID_TRAIT", err)
	}
}

type stubTheme map[string]map[string]any

func (s stubTheme) Default(class, slot string) (any, bool) {
	v, ok := s[class][slot]
	return v, ok
}

func TestEffectiveOrder(t *testing.T) {
	f := newFixture(t, WithTheme(stubTheme{"button": {trait.W: size.Absolute(33)}}))
	root := f.add(Nil, panelClass, "root", nil)
	btn := f.add(root, buttonClass, "btn", nil)

	check := func(want size.Size, origin Origin) {
		t.Helper()
		v, prov := f.e.Explain(btn, trait.W)
		if v != want || prov.Origin != origin {
			t.Errorf("Explain() = %v from %s, want %v from %s", v, prov.Origin, want, origin)
		}
	}
	check(size.Absolute(33), OriginTheme)
	_ = f.e.Cascade(root, trait.W, 44)
	check(size.Absolute(44), OriginCascade)
	_ = f.e.Set(btn, trait.W, 55)
	check(size.Absolute(55), OriginLocal)
	_ = f.e.Unset(btn, trait.W)
	check(size.Absolute(44), OriginCascade)

	if v, prov := f.e.Explain(root, trait.W); v != size.Fill(1) || prov.Origin != OriginDefault {
		t.Errorf("root width = %v from %s, want class default", v, prov.Origin)
	}
	if f.e.Effective(root, trait.Value) != nil {
		t.Error("undeclared slot should have no effective value")
	}
}

func TestIncrementalResolve(t *testing.T) {
	f := newFixture(t)
	root := f.add(Nil, panelClass, "root", nil)
	left := f.add(root, panelClass, "left", trait.Values{trait.W: 100})
	right := f.add(root, panelClass, "right", trait.Values{trait.W: 100, trait.X: 100})
	lc := f.add(left, panelClass, "lc", nil)
	rc := f.add(right, panelClass, "rc", nil)
	f.resolve(200, 200)

	genLeft, genRight := f.e.Generation(left), f.e.Generation(rc)
	if err := f.e.Set(lc, trait.W, 30); err != nil {
		t.Fatal(err)
	}
	if err := f.e.Tick(f.e.clock()); err != nil {
		t.Fatal(err)
	}
	if f.e.Rect(lc).W != 30 {
		t.Errorf("lc width = %d, want 30", f.e.Rect(lc).W)
	}
	if f.e.Generation(rc) != genRight || f.e.Generation(left) != genLeft {
		t.Error("elements outside the layout boundary were re-resolved")
	}
	if f.e.Generation(lc) <= genLeft {
		t.Error("lc was not re-resolved")
	}
	if st := f.e.Stats(); st.Passes != 1 || st.Resolved != 1 {
		t.Errorf("Stats() = %+v, want one pass resolving one element", st)
	}

	// A second invalidation of the same element in one frame resolves once.
	_ = f.e.Set(lc, trait.W, 31)
	_ = f.e.Set(lc, trait.W, 32)
	_ = f.e.Tick(f.e.clock())
	if st := f.e.Stats(); st.Resolved != 1 || f.e.Rect(lc).W != 32 {
		t.Errorf("Stats() = %+v, width %d", st, f.e.Rect(lc).W)
	}
}

func TestResolveIdempotent(t *testing.T) {
	f := newFixture(t)
	root := f.add(Nil, stackClass, "root", trait.Values{trait.Spacing: 3})
	f.add(root, panelClass, "", trait.Values{trait.W: size.Fill(2)})
	f.add(root, panelClass, "", trait.Values{trait.W: 17})
	f.add(root, panelClass, "", nil)
	first := f.resolve(250, 40)
	second := f.resolve(250, 40)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second Resolve differs (-first +second):\n%s", diff)
	}
}
