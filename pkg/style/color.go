package style

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/graphview/pkg/errors"
)

// Color is an 8-bit RGBA color.
type Color struct {
	R, G, B, A uint8
}

// RGBA returns an opaque or translucent color.
func RGBA(r, g, b, a uint8) Color { return Color{R: r, G: g, B: b, A: a} }

// Common colors.
var (
	Black       = Color{0, 0, 0, 255}
	White       = Color{255, 255, 255, 255}
	Red         = Color{255, 0, 0, 255}
	Blue        = Color{0, 0, 255, 255}
	Transparent = Color{0, 0, 0, 0}
)

var namedColors = map[string]Color{
	"black":       Black,
	"white":       White,
	"red":         Red,
	"green":       {0, 128, 0, 255},
	"lime":        {0, 255, 0, 255},
	"blue":        Blue,
	"yellow":      {255, 255, 0, 255},
	"orange":      {255, 165, 0, 255},
	"purple":      {128, 0, 128, 255},
	"cyan":        {0, 255, 255, 255},
	"magenta":     {255, 0, 255, 255},
	"gray":        {128, 128, 128, 255},
	"grey":        {128, 128, 128, 255},
	"lightgray":   {211, 211, 211, 255},
	"lightgrey":   {211, 211, 211, 255},
	"darkgray":    {169, 169, 169, 255},
	"darkgrey":    {169, 169, 169, 255},
	"navy":        {0, 0, 128, 255},
	"teal":        {0, 128, 128, 255},
	"maroon":      {128, 0, 0, 255},
	"olive":       {128, 128, 0, 255},
	"pink":        {255, 192, 203, 255},
	"brown":       {165, 42, 42, 255},
	"transparent": Transparent,
}

// ParseColor converts a style or attribute value into a Color. Accepted forms:
// named colors, "#rgb", "#rrggbb", "#rrggbbaa", "rgb(r,g,b)", "rgba(r,g,b,a)"
// (alpha in 0..1 or 0..255), a Color, and 3 or 4 element numeric slices.
func ParseColor(v any) (Color, error) {
	switch x := v.(type) {
	case Color:
		return x, nil
	case string:
		return parseColorString(x)
	case []any:
		nums := make([]float64, 0, len(x))
		for _, item := range x {
			n, ok := ToFloat(item)
			if !ok {
				return Color{}, errors.New(errors.ErrCodeInvalidStyleValue, "color component %v is not a number", item)
			}
			nums = append(nums, n)
		}
		return colorFromComponents(nums)
	case []float64:
		return colorFromComponents(x)
	}
	return Color{}, errors.New(errors.ErrCodeInvalidStyleValue, "unsupported color type %T", v)
}

func parseColorString(s string) (Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[s]; ok {
		return c, nil
	}

	if strings.HasPrefix(s, "#") {
		alpha := uint8(255)
		if len(s) == 9 {
			a, err := strconv.ParseUint(s[7:], 16, 8)
			if err != nil {
				return Color{}, errors.Wrap(errors.ErrCodeInvalidStyleValue, err, "invalid alpha in %q", s)
			}
			alpha = uint8(a)
			s = s[:7]
		}
		c, err := colorful.Hex(s)
		if err != nil {
			return Color{}, errors.Wrap(errors.ErrCodeInvalidStyleValue, err, "invalid hex color %q", s)
		}
		r, g, b := c.RGB255()
		return Color{r, g, b, alpha}, nil
	}

	for _, fn := range []string{"rgba(", "rgb("} {
		if strings.HasPrefix(s, fn) && strings.HasSuffix(s, ")") {
			body := s[len(fn) : len(s)-1]
			parts := strings.Split(body, ",")
			nums := make([]float64, 0, len(parts))
			for _, p := range parts {
				n, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
				if err != nil {
					return Color{}, errors.Wrap(errors.ErrCodeInvalidStyleValue, err, "invalid component in %q", s)
				}
				nums = append(nums, n)
			}
			return colorFromComponents(nums)
		}
	}

	return Color{}, errors.New(errors.ErrCodeInvalidStyleValue, "unknown color %q", s)
}

func colorFromComponents(nums []float64) (Color, error) {
	if len(nums) != 3 && len(nums) != 4 {
		return Color{}, errors.New(errors.ErrCodeInvalidStyleValue, "color needs 3 or 4 components, got %d", len(nums))
	}
	c := Color{A: 255}
	c.R = clampByte(nums[0])
	c.G = clampByte(nums[1])
	c.B = clampByte(nums[2])
	if len(nums) == 4 {
		a := nums[3]
		if a <= 1 {
			a *= 255
		}
		c.A = clampByte(a)
	}
	return c, nil
}

func clampByte(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(255, v))))
}

// Hex returns the color as "#rrggbb", ignoring alpha.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Opacity returns the alpha channel in [0, 1].
func (c Color) Opacity() float64 { return float64(c.A) / 255 }

// String returns "#rrggbbaa".
func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

func (c Color) colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// Blend returns the linear RGBA mix of c and o at t in [0, 1].
func (c Color) Blend(o Color, t float64) Color {
	mixed := c.colorful().BlendRgb(o.colorful(), t)
	r, g, b := mixed.RGB255()
	a := float64(c.A) + (float64(o.A)-float64(c.A))*t
	return Color{r, g, b, clampByte(a)}
}

// Interpolate picks a color along an N-stop palette for a driver value in
// [0, 1]. Values outside the range are clamped. An empty palette yields black.
func Interpolate(palette []Color, v float64) Color {
	switch len(palette) {
	case 0:
		return Black
	case 1:
		return palette[0]
	}
	if math.IsNaN(v) || v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	pos := v * float64(len(palette)-1)
	i := int(math.Floor(pos))
	if i >= len(palette)-1 {
		return palette[len(palette)-1]
	}
	return palette[i].Blend(palette[i+1], pos-float64(i))
}
