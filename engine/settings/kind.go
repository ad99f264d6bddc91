package settings

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
)

// Kind is the variant of a setting.
type Kind int

const (
	KindBool Kind = iota + 1
	KindText
	KindNumber
	KindEnum
	KindDict
	KindAction
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindEnum:
		return "enum"
	case KindDict:
		return "dict"
	case KindAction:
		return "action"
	default:
		return "unknown"
	}
}

// Choice is one option of an Enum setting.
type Choice struct {
	Label string
	Value any
}

// normalize converts v, typically freshly decoded from JSON, to the Go type
// the setting's kind exposes.
func (s *Setting) normalize(v any) (any, error) {
	switch s.kind {
	case KindBool:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: %s expects a bool, got %T", ErrInvalidValue, s.id, v)
		}
		return b, nil
	case KindText:
		str, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s expects a string, got %T", ErrInvalidValue, s.id, v)
		}
		return str, nil
	case KindNumber:
		n, ok := toInt(v)
		if !ok {
			return nil, fmt.Errorf("%w: %s expects a number, got %T", ErrInvalidValue, s.id, v)
		}
		return n, nil
	case KindEnum:
		if i := s.choiceIndex(v); i >= 0 {
			return s.choices[i].Value, nil
		}
		return nil, fmt.Errorf("%w: %v is not an option of %s", ErrInvalidValue, v, s.id)
	case KindDict:
		return v, nil
	default:
		return nil, fmt.Errorf("%w: %s holds no value", ErrInvalidValue, s.id)
	}
}

// FromText parses the legacy text form of a value.
func (s *Setting) FromText(text string) (any, error) {
	switch s.kind {
	case KindBool:
		return text == "true", nil
	case KindText:
		return text, nil
	case KindNumber:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidValue, s.id, err)
		}
		n, ok := truncate(f)
		if !ok {
			return nil, fmt.Errorf("%w: %s: %q is not a finite number", ErrInvalidValue, s.id, text)
		}
		return n, nil
	case KindEnum:
		i, err := strconv.Atoi(text)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidValue, s.id, err)
		}
		if i < 0 || i >= len(s.choices) {
			return nil, fmt.Errorf("%w: %s has no option %d", ErrInvalidValue, s.id, i)
		}
		return s.choices[i].Value, nil
	case KindDict:
		var v any
		if err := json.Unmarshal([]byte(text), &v); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidValue, s.id, err)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("%w: %s holds no value", ErrInvalidValue, s.id)
	}
}

func (s *Setting) choiceIndex(v any) int {
	for i, c := range s.choices {
		if valuesEqual(c.Value, v) {
			return i
		}
	}
	return -1
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		switch {
		case n > math.MaxInt:
			return math.MaxInt, true
		case n < math.MinInt:
			return math.MinInt, true
		}
		return int(n), true
	case uint:
		return saturate(uint64(n)), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return saturate(uint64(n)), true
	case uint64:
		return saturate(n), true
	case float32:
		return truncate(float64(n))
	case float64:
		return truncate(n)
	case json.Number:
		if i, err := n.Int64(); err == nil && int64(int(i)) == i {
			return int(i), true
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return truncate(f)
	default:
		return 0, false
	}
}

func saturate(n uint64) int {
	if n > math.MaxInt {
		return math.MaxInt
	}
	return int(n)
}

// truncate drops the fraction of f, saturating at the int range. NaN and
// infinities are rejected.
func truncate(f float64) (int, bool) {
	switch {
	case math.IsNaN(f) || math.IsInf(f, 0):
		return 0, false
	case f >= math.MaxInt:
		return math.MaxInt, true
	case f <= math.MinInt:
		return math.MinInt, true
	default:
		return int(math.Trunc(f)), true
	}
}
