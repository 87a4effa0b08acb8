// Package size implements the size expression algebra used by the layout engine.
//
// A size expression describes how an element's extent along one axis is
// derived from the space its container offers:
//
//   - [Absolute]: a fixed number of pixels
//   - [Fill]: a share of the space left after fixed siblings, proportional to weight
//   - [Fit]: the measured extent of the element's children
//   - [Pivotable]: one side of a complementary pair that always sums to the container extent
//
// plus [Relative] (a fraction of another element's resolved extent), [Animated]
// (a per-tick sampled value) and the [Scale] and [Complement] combinators.
//
// Expressions are immutable, comparable values. Resolution helpers ([Resolve],
// [Distribute]) are pure functions; the engine supplies everything an
// expression may read through [Inputs].
package size

import (
	"fmt"
	"math"

	"github.com/matzehuels/ember/pkg/anim"
	"github.com/matzehuels/ember/pkg/arena"
)

// Kind identifies the variant of a size expression.
type Kind uint8

const (
	KindAbsolute Kind = iota
	KindFill
	KindFit
	KindPivotable
	KindRelative
	KindAnimated
	KindScaled
)

func (k Kind) String() string {
	switch k {
	case KindAbsolute:
		return "absolute"
	case KindFill:
		return "fill"
	case KindFit:
		return "fit"
	case KindPivotable:
		return "pivotable"
	case KindRelative:
		return "relative"
	case KindAnimated:
		return "animated"
	case KindScaled:
		return "scaled"
	}
	return fmt.Sprintf("kind(%d)", k)
}

// Size is a size expression.
type Size interface {
	Kind() Kind
	String() string
}

// Absolute is a fixed extent in pixels.
type Absolute int

func (Absolute) Kind() Kind       { return KindAbsolute }
func (a Absolute) String() string { return fmt.Sprintf("%dpx", int(a)) }

// Fill takes a share of the remaining space proportional to its weight among
// Fill siblings on the same axis.
type Fill float64

func (Fill) Kind() Kind { return KindFill }
func (f Fill) String() string {
	if f == 1 {
		return "fill"
	}
	return fmt.Sprintf("fill:%g", float64(f))
}

// FitSize sizes an element to its measured content. Use the [Fit] value.
type FitSize struct{}

// Fit is the fit-to-content expression.
var Fit Size = FitSize{}

func (FitSize) Kind() Kind     { return KindFit }
func (FitSize) String() string { return "fit" }

// Pivotable is one side of a complementary pair. The primary side resolves
// Primary against the container extent (clamped to [0, extent]); the
// complemented side is extent minus that value. Watch names the element whose
// value drives Primary, if any; the engine links the two in the watch graph.
type Pivotable struct {
	Primary      Size
	Watch        arena.Handle
	Complemented bool
}

// Pivot returns the primary side of a pair driven by primary.
func Pivot(primary Size, watch arena.Handle) Pivotable {
	return Pivotable{Primary: primary, Watch: watch}
}

func (Pivotable) Kind() Kind { return KindPivotable }
func (p Pivotable) String() string {
	prefix := ""
	if p.Complemented {
		prefix = "~"
	}
	return fmt.Sprintf("%spivot:%s", prefix, p.Primary)
}

// Relative is Fraction of another element's resolved extent on the same axis.
type Relative struct {
	Source   arena.Handle
	Fraction float64
}

// Match returns an expression tracking the extent of source.
func Match(source arena.Handle, fraction float64) Relative {
	return Relative{Source: source, Fraction: fraction}
}

func (Relative) Kind() Kind { return KindRelative }
func (r Relative) String() string {
	return fmt.Sprintf("match(%s)*%g", r.Source, r.Fraction)
}

// Animated is an extent in pixels sampled from Source once per tick.
type Animated struct {
	Source anim.Source
}

func (Animated) Kind() Kind     { return KindAnimated }
func (Animated) String() string { return "animated" }

// Scaled multiplies the resolved value of Inner by Fraction. It is produced
// by [Scale] for expressions that cannot absorb the factor directly.
type Scaled struct {
	Inner    Size
	Fraction float64
}

func (Scaled) Kind() Kind { return KindScaled }
func (s Scaled) String() string {
	return fmt.Sprintf("%s*%g", s.Inner, s.Fraction)
}

// Scale multiplies an expression by fraction. Fill(w) becomes Fill(w*f) and
// Absolute(px) becomes Absolute(round(px*f)); other kinds are wrapped.
func Scale(s Size, fraction float64) Size {
	switch v := s.(type) {
	case Fill:
		return Fill(float64(v) * fraction)
	case Absolute:
		return Absolute(math.Round(float64(v) * fraction))
	case Scaled:
		return Scaled{Inner: v.Inner, Fraction: v.Fraction * fraction}
	case Relative:
		return Relative{Source: v.Source, Fraction: v.Fraction * fraction}
	}
	return Scaled{Inner: s, Fraction: fraction}
}

// Complement swaps which side of a pair is derived. Applied to a Pivotable
// it flips the pair; any other expression becomes the complemented side of a
// new pair whose primary is that expression.
func Complement(s Size) Pivotable {
	if p, ok := s.(Pivotable); ok {
		p.Complemented = !p.Complemented
		return p
	}
	return Pivotable{Primary: s, Complemented: true}
}

// NeedsExtent reports whether s can only be resolved once its container's
// extent is known. Such expressions are invalid under a Fit container on the
// same axis.
func NeedsExtent(s Size) bool {
	switch v := s.(type) {
	case Fill, Pivotable:
		return true
	case Scaled:
		return NeedsExtent(v.Inner)
	}
	return false
}

// UsesFit reports whether s reads its element's measured content extent.
func UsesFit(s Size) bool {
	switch v := s.(type) {
	case FitSize:
		return true
	case Pivotable:
		return UsesFit(v.Primary)
	case Scaled:
		return UsesFit(v.Inner)
	}
	return false
}

// Watched returns the element an expression reads, if any.
func Watched(s Size) (arena.Handle, bool) {
	switch v := s.(type) {
	case Pivotable:
		if !v.Watch.IsNil() {
			return v.Watch, true
		}
		return Watched(v.Primary)
	case Relative:
		return v.Source, true
	case Scaled:
		return Watched(v.Inner)
	}
	return arena.Nil, false
}

// Sources returns the animation sources an expression samples.
func Sources(s Size) []anim.Source {
	switch v := s.(type) {
	case Animated:
		return []anim.Source{v.Source}
	case Pivotable:
		return Sources(v.Primary)
	case Scaled:
		return Sources(v.Inner)
	}
	return nil
}
