package size

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/ember/pkg/arena"
)

// Parse reads the textual form of a size expression as used in scene and
// theme files:
//
//	fit            fit to content
//	fill           Fill(1)
//	fill:2         Fill(2)
//	120, 120px     Absolute(120)
//	EXPR*0.5       Scale(EXPR, 0.5)
//	pivot:EXPR     primary side of a pair driven by EXPR
//	~EXPR          Complement(EXPR)
func Parse(s string) (Size, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return nil, fmt.Errorf("empty size expression")
	}

	if rest, ok := strings.CutPrefix(s, "~"); ok {
		inner, err := Parse(rest)
		if err != nil {
			return nil, err
		}
		return Complement(inner), nil
	}
	if rest, ok := strings.CutPrefix(s, "pivot:"); ok {
		inner, err := Parse(rest)
		if err != nil {
			return nil, err
		}
		return Pivot(inner, arena.Nil), nil
	}
	if i := strings.LastIndexByte(s, '*'); i >= 0 {
		inner, err := Parse(s[:i])
		if err != nil {
			return nil, err
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s[i+1:]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid scale factor in %q", s)
		}
		return Scale(inner, f), nil
	}

	switch {
	case s == "fit":
		return Fit, nil
	case s == "fill":
		return Fill(1), nil
	case strings.HasPrefix(s, "fill:"):
		w, err := strconv.ParseFloat(strings.TrimPrefix(s, "fill:"), 64)
		if err != nil || w < 0 {
			return nil, fmt.Errorf("invalid fill weight in %q", s)
		}
		return Fill(w), nil
	}

	px, err := strconv.Atoi(strings.TrimSuffix(s, "px"))
	if err != nil {
		return nil, fmt.Errorf("unknown size expression %q", s)
	}
	if px < 0 {
		return nil, fmt.Errorf("negative size %q", s)
	}
	return Absolute(px), nil
}

// MustParse is like Parse but panics on error. It is meant for literals.
func MustParse(s string) Size {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}
