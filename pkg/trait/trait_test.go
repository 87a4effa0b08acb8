package trait

import (
	"errors"
	"testing"

	"github.com/matzehuels/ember/pkg/anim"
	"github.com/matzehuels/ember/pkg/arena"
	"github.com/matzehuels/ember/pkg/geom"
	"github.com/matzehuels/ember/pkg/position"
	"github.com/matzehuels/ember/pkg/size"
)

func TestNewClassIncludesBase(t *testing.T) {
	c := NewClass("panel", CapContainer, ArrangeOverlay,
		Slot{Name: Spacing, Kind: KindInt, Default: 0, Geometry: true})

	for _, name := range []string{X, Y, W, H, Alpha, Visible, Disabled, Spacing} {
		if _, ok := c.Slot(name); !ok {
			t.Errorf("class missing slot %q", name)
		}
	}
	slots := c.Slots()
	if slots[0].Name != X || slots[len(slots)-1].Name != Spacing {
		t.Errorf("slot order = %v", slots)
	}
}

func TestWithDefault(t *testing.T) {
	c := NewClass("button", CapClickable, ArrangeOverlay).WithDefault(W, size.Fit)
	s, _ := c.Slot(W)
	if s.Default != size.Fit {
		t.Errorf("w default = %v, want fit", s.Default)
	}

	defer func() {
		if recover() == nil {
			t.Error("WithDefault on unknown slot should panic")
		}
	}()
	c.WithDefault("nope", 1)
}

func TestCaps(t *testing.T) {
	c := CapClickable | CapFocusable
	if !c.Has(CapClickable) || c.Has(CapContainer) {
		t.Errorf("Has() wrong for %v", c)
	}
	if c.String() != "clickable|focusable" {
		t.Errorf("String() = %q", c.String())
	}
	if Caps(0).String() != "none" {
		t.Errorf("empty caps String() = %q", Caps(0).String())
	}
}

func TestCoerce(t *testing.T) {
	tests := []struct {
		name    string
		slot    Slot
		in      any
		want    any
		wantErr bool
	}{
		{"size expr", Slot{Name: W, Kind: KindSize}, size.Fill(2), size.Fill(2), false},
		{"size int", Slot{Name: W, Kind: KindSize}, 40, size.Absolute(40), false},
		{"size string rejected", Slot{Name: W, Kind: KindSize}, "fill", nil, true},
		{"position int", Slot{Name: X, Kind: KindPosition}, 3, position.Absolute(3), false},
		{"float from int", Slot{Name: Alpha, Kind: KindFloat}, 1, 1.0, false},
		{"float source", Slot{Name: Alpha, Kind: KindFloat}, anim.Constant(0.5), anim.Constant(0.5), false},
		{"int from whole float", Slot{Name: Spacing, Kind: KindInt}, 6.0, 6, false},
		{"int from fractional float", Slot{Name: Spacing, Kind: KindInt}, 6.5, nil, true},
		{"bool", Slot{Name: Visible, Kind: KindBool}, false, false, false},
		{"bool rejected", Slot{Name: Visible, Kind: KindBool}, 0, nil, true},
		{"axis", Slot{Name: Axis, Kind: KindAxis}, geom.Vertical, geom.Vertical, false},
		{"string", Slot{Name: Label, Kind: KindString}, "ok", "ok", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Coerce(tt.slot, tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Coerce() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !Equal(got, tt.want) {
				t.Errorf("Coerce() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		slot    Slot
		raw     any
		want    any
		wantErr bool
	}{
		{"size string", Slot{Name: W, Kind: KindSize}, "fill:2", size.Fill(2), false},
		{"size toml int", Slot{Name: W, Kind: KindSize}, int64(120), size.Absolute(120), false},
		{"size toml float", Slot{Name: W, Kind: KindSize}, 12.6, size.Absolute(13), false},
		{"position string", Slot{Name: X, Kind: KindPosition}, "right:4", position.Right(4), false},
		{"axis string", Slot{Name: Axis, Kind: KindAxis}, "vertical", geom.Vertical, false},
		{"int toml", Slot{Name: Spacing, Kind: KindInt}, int64(6), 6, false},
		{"float toml", Slot{Name: Value, Kind: KindFloat}, 0.2, 0.2, false},
		{"bad size", Slot{Name: W, Kind: KindSize}, "huge", nil, true},
		{"bad axis", Slot{Name: Axis, Kind: KindAxis}, "z", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.slot, tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !Equal(got, tt.want) {
				t.Errorf("Parse() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestEqual(t *testing.T) {
	h := arena.Handle{Index: 1, Gen: 1}
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"same fill", size.Fill(1), size.Fill(1), true},
		{"different kind", size.Fill(1), size.Absolute(1), false},
		{"pivot equal", size.Pivot(size.Fill(0.2), h), size.Pivot(size.Fill(0.2), h), true},
		{"pivot differs", size.Pivot(size.Fill(0.2), h), size.Pivot(size.Fill(0.3), h), false},
		{"slice deep", []int{1, 2}, []int{1, 2}, true},
		{"nil nil", nil, nil, true},
		{"nil value", nil, 1, false},
		{"float int", 1.0, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestRegistry(t *testing.T) {
	panel := NewClass("panel", CapContainer, ArrangeOverlay)
	stack := NewClass("stack", CapContainer, ArrangeStack,
		Slot{Name: Spacing, Kind: KindInt, Default: 0, Geometry: true})
	r := NewRegistry(panel, stack)

	if err := r.Register(NewClass("panel", 0, ArrangeOverlay)); !errors.Is(err, ErrDuplicateClass) {
		t.Errorf("Register(dup) error = %v, want ErrDuplicateClass", err)
	}
	if c, ok := r.Lookup("stack"); !ok || c != stack {
		t.Error("Lookup(stack) failed")
	}
	if _, err := r.Resolve("slider"); !errors.Is(err, ErrUnknownClass) {
		t.Errorf("Resolve(slider) error = %v", err)
	}
	if s, ok := r.Slot(Spacing); !ok || s.Kind != KindInt {
		t.Errorf("Slot(spacing) = %v, %v", s, ok)
	}
	if _, ok := r.Slot("bogus"); ok {
		t.Error("Slot(bogus) found")
	}
	names := r.Names()
	if len(names) != 2 || names[0] != "panel" {
		t.Errorf("Names() = %v", names)
	}
}
