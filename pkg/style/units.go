package style

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/graphview/pkg/errors"
)

// Units tags a measurement.
type Units int

const (
	// GU is the graph unit, the logical coordinate space of the graph.
	GU Units = iota
	// PX is a screen pixel.
	PX
	// Percents is a percentage; its base depends on the property (graph
	// diagonal for lengths and sprite positions).
	Percents
)

// String returns the canonical suffix for the unit.
func (u Units) String() string {
	switch u {
	case PX:
		return "px"
	case Percents:
		return "%"
	default:
		return "gu"
	}
}

// ParseUnits parses a unit tag. It accepts "gu", "px", "%", "percent" and
// "percents", case-insensitively.
func ParseUnits(s string) (Units, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gu":
		return GU, true
	case "px":
		return PX, true
	case "%", "percent", "percents":
		return Percents, true
	}
	return GU, false
}

// Value is a single measurement.
type Value struct {
	Number float64
	Units  Units
}

// String renders the value with its unit suffix.
func (v Value) String() string {
	return strconv.FormatFloat(v.Number, 'g', -1, 64) + v.Units.String()
}

// Values is a multi-component measurement sharing one unit, such as a size
// (width, height) or a position (x, y, z).
type Values struct {
	Numbers []float64
	Units   Units
}

// Len returns the number of components.
func (v Values) Len() int { return len(v.Numbers) }

// At returns component i, falling back to the last component when i is out of
// range, and 0 for an empty value. A single-component size therefore reads as
// a uniform width and height.
func (v Values) At(i int) float64 {
	switch {
	case len(v.Numbers) == 0:
		return 0
	case i < len(v.Numbers):
		return v.Numbers[i]
	default:
		return v.Numbers[len(v.Numbers)-1]
	}
}

// Value returns component i as a Value.
func (v Values) Value(i int) Value { return Value{Number: v.At(i), Units: v.Units} }

// String renders the values as "a,b,c unit".
func (v Values) String() string {
	parts := make([]string, len(v.Numbers))
	for i, n := range v.Numbers {
		parts[i] = strconv.FormatFloat(n, 'g', -1, 64)
	}
	return strings.Join(parts, ",") + v.Units.String()
}

// Vals builds a Values.
func Vals(u Units, numbers ...float64) Values {
	return Values{Numbers: numbers, Units: u}
}

// ParseValues converts an attribute or style value into Values. Accepted
// shapes are numbers, numeric slices (optionally with one unit tag as first or
// last entry), Value/Values, and strings such as "12", "12px", "1,2 gu",
// "1 2 3px" or "50%". Bare numbers take def as their unit.
func ParseValues(v any, def Units) (Values, error) {
	switch x := v.(type) {
	case nil:
		return Values{}, errors.New(errors.ErrCodeInvalidStyleValue, "missing value")
	case Values:
		return x, nil
	case Value:
		return Values{Numbers: []float64{x.Number}, Units: x.Units}, nil
	case string:
		return parseValuesString(x, def)
	case []float64:
		if len(x) == 0 {
			return Values{}, errors.New(errors.ErrCodeInvalidStyleValue, "empty value list")
		}
		return Values{Numbers: append([]float64(nil), x...), Units: def}, nil
	case []any:
		return parseValuesList(x, def)
	}
	if n, ok := ToFloat(v); ok {
		return Values{Numbers: []float64{n}, Units: def}, nil
	}
	return Values{}, errors.New(errors.ErrCodeInvalidStyleValue, "unsupported value type %T", v)
}

func parseValuesList(list []any, def Units) (Values, error) {
	out := Values{Units: def}
	tagged := false
	for i, item := range list {
		if s, ok := item.(string); ok {
			if u, ok := ParseUnits(s); ok && !tagged && (i == 0 || i == len(list)-1) {
				out.Units = u
				tagged = true
				continue
			}
		}
		if u, ok := item.(Units); ok && !tagged && (i == 0 || i == len(list)-1) {
			out.Units = u
			tagged = true
			continue
		}
		n, ok := ToFloat(item)
		if !ok {
			return Values{}, errors.New(errors.ErrCodeInvalidStyleValue, "component %d is not a number: %v", i, item)
		}
		out.Numbers = append(out.Numbers, n)
	}
	if len(out.Numbers) == 0 {
		return Values{}, errors.New(errors.ErrCodeInvalidStyleValue, "no numeric components")
	}
	return out, nil
}

func parseValuesString(s string, def Units) (Values, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Values{}, errors.New(errors.ErrCodeInvalidStyleValue, "empty value")
	}

	units := def
	lower := strings.ToLower(s)
	for _, suffix := range []string{"percents", "percent", "px", "gu", "%"} {
		if strings.HasSuffix(lower, suffix) {
			units, _ = ParseUnits(suffix)
			s = strings.TrimSpace(s[:len(s)-len(suffix)])
			break
		}
	}

	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
	if len(fields) == 0 {
		return Values{}, errors.New(errors.ErrCodeInvalidStyleValue, "no numeric components in %q", s)
	}
	out := Values{Numbers: make([]float64, 0, len(fields)), Units: units}
	for _, f := range fields {
		n, err := strconv.ParseFloat(f, 64)
		if err != nil || math.IsNaN(n) {
			return Values{}, errors.Wrap(errors.ErrCodeInvalidStyleValue, err, "invalid number %q", f)
		}
		out.Numbers = append(out.Numbers, n)
	}
	return out, nil
}

// ToFloat converts any Go numeric type, or a numeric string, to float64.
func ToFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, !math.IsNaN(x)
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	}
	return 0, false
}

// MustValues is like ParseValues but panics on error. Intended for literals.
func MustValues(v any, def Units) Values {
	out, err := ParseValues(v, def)
	if err != nil {
		panic(fmt.Sprintf("style: %v", err))
	}
	return out
}
