package size

import (
	"math"

	"github.com/matzehuels/ember/pkg/anim"
	"github.com/matzehuels/ember/pkg/arena"
)

// Inputs supplies the values an expression may read besides its container's
// extent. Nil functions read as zero.
type Inputs struct {
	// Fit is the element's measured content extent on the axis.
	Fit int
	// Extent returns the resolved extent of another element on the same axis.
	Extent func(arena.Handle) int
	// Sample returns the current tick's sample of an animation source.
	Sample func(anim.Source) float64
}

func (in Inputs) extent(h arena.Handle) int {
	if in.Extent == nil {
		return 0
	}
	return in.Extent(h)
}

func (in Inputs) sample(src anim.Source) float64 {
	if in.Sample == nil {
		return 0
	}
	return in.Sample(src)
}

// Resolve computes the extent of s when it is resolved on its own against
// extent, outside a Fill split. A Fill of weight w covers min(w, 1) of the
// extent. The result is never negative.
func Resolve(s Size, extent int, in Inputs) int {
	return max(0, resolve(s, extent, in))
}

func resolve(s Size, extent int, in Inputs) int {
	switch v := s.(type) {
	case Absolute:
		return int(v)
	case Fill:
		w := min(max(float64(v), 0), 1)
		return int(math.Round(float64(extent) * w))
	case FitSize:
		return in.Fit
	case Pivotable:
		p := min(max(resolve(v.Primary, extent, in), 0), max(extent, 0))
		if v.Complemented {
			return extent - p
		}
		return p
	case Relative:
		return int(math.Round(float64(in.extent(v.Source)) * v.Fraction))
	case Animated:
		return int(math.Round(in.sample(v.Source)))
	case Scaled:
		return int(math.Round(float64(resolve(v.Inner, extent, in)) * v.Fraction))
	}
	return 0
}

// Distribute allocates extent among sizes laid out one after another along a
// single axis with spacing between neighbours.
//
// Non-Fill expressions resolve first (Pivotable and Relative against the
// full extent). The space that remains, clamped at zero, is split across Fill
// entries in proportion to weight with each share truncated; the pixels lost
// to truncation go to the last Fill entry so the Fill shares always sum to
// the remaining space. inputs(i) supplies measurement inputs for entry i.
func Distribute(sizes []Size, extent, spacing int, inputs func(i int) Inputs) []int {
	out := make([]int, len(sizes))
	if len(sizes) == 0 {
		return out
	}

	fixed := spacing * (len(sizes) - 1)
	var total float64
	last := -1
	for i, s := range sizes {
		if w, ok := s.(Fill); ok {
			total += max(float64(w), 0)
			last = i
			continue
		}
		var in Inputs
		if inputs != nil {
			in = inputs(i)
		}
		out[i] = Resolve(s, extent, in)
		fixed += out[i]
	}
	if last < 0 {
		return out
	}

	remaining := max(extent-fixed, 0)
	given := 0
	if total > 0 {
		for i, s := range sizes {
			w, ok := s.(Fill)
			if !ok {
				continue
			}
			share := int(math.Floor(float64(remaining) * max(float64(w), 0) / total))
			out[i] = share
			given += share
		}
	}
	out[last] += remaining - given
	return out
}
