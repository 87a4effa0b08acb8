package trait

import (
	"fmt"
	"math"
	"reflect"

	"github.com/matzehuels/ember/pkg/anim"
	"github.com/matzehuels/ember/pkg/geom"
	"github.com/matzehuels/ember/pkg/position"
	"github.com/matzehuels/ember/pkg/size"
)

// Coerce validates v against the slot's kind and normalizes numeric types
// (ints to float64 for float slots, integral floats to int for int slots,
// plain ints to Absolute for size and position slots). Float slots also
// accept an [anim.Source].
func Coerce(s Slot, v any) (any, error) {
	bad := func() (any, error) {
		return nil, fmt.Errorf("slot %q expects %s, got %T", s.Name, s.Kind, v)
	}
	switch s.Kind {
	case KindSize:
		switch x := v.(type) {
		case size.Size:
			return x, nil
		case int:
			return size.Absolute(x), nil
		}
	case KindPosition:
		switch x := v.(type) {
		case position.Position:
			return x, nil
		case int:
			return position.Absolute(x), nil
		}
	case KindFloat:
		switch x := v.(type) {
		case float64:
			return x, nil
		case float32:
			return float64(x), nil
		case int:
			return float64(x), nil
		case anim.Source:
			return x, nil
		}
	case KindInt:
		switch x := v.(type) {
		case int:
			return x, nil
		case int64:
			return int(x), nil
		case float64:
			if x == math.Trunc(x) {
				return int(x), nil
			}
		}
	case KindBool:
		if x, ok := v.(bool); ok {
			return x, nil
		}
	case KindAxis:
		if x, ok := v.(geom.Axis); ok {
			return x, nil
		}
	case KindString:
		if x, ok := v.(string); ok {
			return x, nil
		}
	}
	return bad()
}

// Parse converts a scalar decoded from a scene or theme file (string, int64,
// float64 or bool) into a value of the slot's kind.
func Parse(s Slot, raw any) (any, error) {
	switch x := raw.(type) {
	case int64:
		raw = int(x)
	case string:
		switch s.Kind {
		case KindSize:
			v, err := size.Parse(x)
			if err != nil {
				return nil, fmt.Errorf("slot %q: %w", s.Name, err)
			}
			return v, nil
		case KindPosition:
			v, err := position.Parse(x)
			if err != nil {
				return nil, fmt.Errorf("slot %q: %w", s.Name, err)
			}
			return v, nil
		case KindAxis:
			v, err := geom.ParseAxis(x)
			if err != nil {
				return nil, fmt.Errorf("slot %q: %w", s.Name, err)
			}
			return v, nil
		}
	case float64:
		if s.Kind == KindSize || s.Kind == KindPosition {
			raw = int(math.Round(x))
		}
	}
	return Coerce(s, raw)
}

// Equal reports whether two slot values are equal. Comparable values are
// compared with ==, others structurally.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta.Comparable() && comparableValue(a) && comparableValue(b) {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}

// comparableValue guards against structs whose interface fields hold
// uncomparable dynamic values, which would panic under ==.
func comparableValue(v any) bool {
	return reflect.ValueOf(v).Comparable()
}
