// Package position implements position expressions for the layout engine.
//
// A position places an element along one axis inside its container once the
// element's own extent is known. Anchors are axis-neutral: LEFT and TOP are
// both [AlignStart], RIGHT and BOTTOM are both [AlignEnd].
package position

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/ember/pkg/anim"
)

// Kind identifies the variant of a position expression.
type Kind uint8

const (
	KindAbsolute Kind = iota
	KindAnchor
	KindAnimated
)

// Position is a position expression.
type Position interface {
	Kind() Kind
	String() string
}

// Absolute is a fixed offset from the container's start edge.
type Absolute int

func (Absolute) Kind() Kind       { return KindAbsolute }
func (a Absolute) String() string { return strconv.Itoa(int(a)) }

// Align selects the container edge an anchor is measured from.
type Align uint8

const (
	AlignStart Align = iota
	AlignCenter
	AlignEnd
)

func (a Align) String() string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignEnd:
		return "end"
	}
	return "start"
}

// Anchor positions an element relative to a container edge or its center.
// For AlignEnd the offset is measured inward from the far edge.
type Anchor struct {
	Align  Align
	Offset int
}

func (Anchor) Kind() Kind { return KindAnchor }
func (a Anchor) String() string {
	if a.Offset == 0 {
		return a.Align.String()
	}
	return fmt.Sprintf("%s:%d", a.Align, a.Offset)
}

// Left anchors to the start edge of the horizontal axis.
func Left(offset int) Anchor { return Anchor{Align: AlignStart, Offset: offset} }

// Top anchors to the start edge of the vertical axis.
func Top(offset int) Anchor { return Anchor{Align: AlignStart, Offset: offset} }

// Right anchors to the end edge of the horizontal axis.
func Right(offset int) Anchor { return Anchor{Align: AlignEnd, Offset: offset} }

// Bottom anchors to the end edge of the vertical axis.
func Bottom(offset int) Anchor { return Anchor{Align: AlignEnd, Offset: offset} }

// Center centers the element, shifted by offset.
func Center(offset int) Anchor { return Anchor{Align: AlignCenter, Offset: offset} }

// Animated is an absolute offset sampled from Source once per tick.
type Animated struct {
	Source anim.Source
}

func (Animated) Kind() Kind     { return KindAnimated }
func (Animated) String() string { return "animated" }

// Resolve returns the offset of an element of the given size inside a
// container of the given extent. sample may be nil when p is not animated.
func Resolve(p Position, size, extent int, sample func(anim.Source) float64) int {
	switch v := p.(type) {
	case Absolute:
		return int(v)
	case Anchor:
		switch v.Align {
		case AlignCenter:
			return (extent-size)/2 + v.Offset
		case AlignEnd:
			return extent - size - v.Offset
		}
		return v.Offset
	case Animated:
		if sample == nil {
			return 0
		}
		return int(math.Round(sample(v.Source)))
	}
	return 0
}

// Parse reads the textual form of a position: "left", "top", "start",
// "center", "right", "bottom", "end", each with an optional ":offset", or a
// bare integer for an absolute offset.
func Parse(s string) (Position, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return nil, fmt.Errorf("empty position expression")
	}
	name, off, hasOff := strings.Cut(s, ":")
	offset := 0
	if hasOff {
		n, err := strconv.Atoi(off)
		if err != nil {
			return nil, fmt.Errorf("invalid offset in %q", s)
		}
		offset = n
	}
	switch name {
	case "left", "top", "start":
		return Anchor{Align: AlignStart, Offset: offset}, nil
	case "center", "middle":
		return Anchor{Align: AlignCenter, Offset: offset}, nil
	case "right", "bottom", "end":
		return Anchor{Align: AlignEnd, Offset: offset}, nil
	}
	if hasOff {
		return nil, fmt.Errorf("unknown anchor %q", name)
	}
	n, err := strconv.Atoi(strings.TrimSuffix(s, "px"))
	if err != nil {
		return nil, fmt.Errorf("unknown position expression %q", s)
	}
	return Absolute(n), nil
}

// Sources returns the animation sources a position samples.
func Sources(p Position) []anim.Source {
	if v, ok := p.(Animated); ok {
		return []anim.Source{v.Source}
	}
	return nil
}
