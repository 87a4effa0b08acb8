package position

import (
	"testing"

	"github.com/matzehuels/ember/pkg/anim"
)

func TestResolve(t *testing.T) {
	sample := func(anim.Source) float64 { return 7.6 }
	tests := []struct {
		name string
		p    Position
		size int
		want int
	}{
		{"absolute", Absolute(12), 30, 12},
		{"left", Left(0), 30, 0},
		{"left offset", Left(4), 30, 4},
		{"right", Right(0), 30, 70},
		{"bottom offset", Bottom(5), 30, 65},
		{"center", Center(0), 30, 35},
		{"center odd", Center(0), 31, 34},
		{"center shifted", Center(-5), 30, 30},
		{"animated", Animated{Source: anim.Constant(7.6)}, 30, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.p, tt.size, 100, sample); got != tt.want {
				t.Errorf("Resolve(%v, %d, 100) = %d, want %d", tt.p, tt.size, got, tt.want)
			}
		})
	}
}

func TestPivotPairAnchorsTile(t *testing.T) {
	// A primary anchored left and its complement anchored right share an edge.
	extent := 250
	primary := 50
	track := extent - primary
	if Resolve(Left(0), primary, extent, nil)+primary != Resolve(Right(0), track, extent, nil) {
		t.Error("left primary and right complement do not meet")
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Position
		wantErr bool
	}{
		{"left", Left(0), false},
		{"TOP", Top(0), false},
		{"right:8", Right(8), false},
		{"bottom", Bottom(0), false},
		{"center:-2", Center(-2), false},
		{"42", Absolute(42), false},
		{"42px", Absolute(42), false},
		{"end", Anchor{Align: AlignEnd}, false},

		{"", nil, true},
		{"left:x", nil, true},
		{"upper:3", nil, true},
		{"far", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestAnchorString(t *testing.T) {
	if Right(3).String() != "end:3" || Left(0).String() != "start" {
		t.Errorf("String() = %q, %q", Right(3).String(), Left(0).String())
	}
}
