package style

import (
	"strings"

	"github.com/matzehuels/graphview/pkg/errors"
)

// Kind is the class of graphic element a rule or group applies to.
type Kind int

const (
	KindGraph Kind = iota
	KindNode
	KindEdge
	KindSprite
)

var kindNames = [...]string{"graph", "node", "edge", "sprite"}

// String returns the selector keyword for the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// ParseKind parses a selector keyword.
func ParseKind(s string) (Kind, bool) {
	for i, n := range kindNames {
		if n == s {
			return Kind(i), true
		}
	}
	return 0, false
}

// Property identifies a style property.
type Property int

const (
	FillMode Property = iota
	FillColor
	StrokeMode
	StrokeColor
	StrokeWidth
	SizeMode
	Size
	Shape
	ArrowShape
	ArrowSize
	TextMode
	TextSize
	TextColor
	ZIndex
	ShadowMode
	ShadowColor
	ShadowOffset
	VisibilityMode
	Visibility
	Padding
	numProperties
)

var propertyNames = [numProperties]string{
	"fill-mode", "fill-color", "stroke-mode", "stroke-color", "stroke-width",
	"size-mode", "size", "shape", "arrow-shape", "arrow-size",
	"text-mode", "text-size", "text-color", "z-index",
	"shadow-mode", "shadow-color", "shadow-offset",
	"visibility-mode", "visibility", "padding",
}

// String returns the document name of the property.
func (p Property) String() string {
	if p >= 0 && p < numProperties {
		return propertyNames[p]
	}
	return "unknown"
}

// ParseProperty looks up a property by its document name.
func ParseProperty(name string) (Property, bool) {
	for i, n := range propertyNames {
		if n == name {
			return Property(i), true
		}
	}
	return 0, false
}

// enum is a small string<->int table shared by the keyword-valued properties.
type enum []string

func (e enum) name(v int) string {
	if v >= 0 && v < len(e) {
		return e[v]
	}
	return "unknown"
}

func (e enum) parse(prop Property, v any) (int, error) {
	s, ok := v.(string)
	if !ok {
		return 0, errors.New(errors.ErrCodeInvalidStyleValue, "%s: expected keyword, got %T", prop, v)
	}
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range e {
		if n == s {
			return i, nil
		}
	}
	return 0, errors.New(errors.ErrCodeInvalidStyleValue, "%s: unknown keyword %q", prop, s)
}

// FillModeValue controls how an element interior is painted.
type FillModeValue int

const (
	FillNone FillModeValue = iota
	FillPlain
	// FillDynPlain interpolates the fill palette with the ui.color attribute.
	FillDynPlain
)

var fillModes = enum{"none", "plain", "dyn-plain"}

func (m FillModeValue) String() string { return fillModes.name(int(m)) }

// StrokeModeValue controls element outlines.
type StrokeModeValue int

const (
	StrokeNone StrokeModeValue = iota
	StrokePlain
	StrokeDashes
	StrokeDots
)

var strokeModes = enum{"none", "plain", "dashes", "dots"}

func (m StrokeModeValue) String() string { return strokeModes.name(int(m)) }

// SizeModeValue controls how element size is computed.
type SizeModeValue int

const (
	SizeNormal SizeModeValue = iota
	// SizeDyn reads the ui.size attribute.
	SizeDyn
)

var sizeModes = enum{"normal", "dyn-size"}

func (m SizeModeValue) String() string { return sizeModes.name(int(m)) }

// ShapeValue is the drawn shape of a node, sprite or edge.
type ShapeValue int

const (
	ShapeCircle ShapeValue = iota
	ShapeBox
	ShapeRoundedBox
	ShapeDiamond
	ShapeCross
	ShapeLine
	ShapeCubicCurve
	ShapePolyline
	ShapeVectors
)

var shapes = enum{"circle", "box", "rounded-box", "diamond", "cross", "line", "cubic-curve", "polyline", "vectors"}

func (s ShapeValue) String() string { return shapes.name(int(s)) }

// IsEdgeShape reports whether the shape describes an edge connector.
func (s ShapeValue) IsEdgeShape() bool { return s >= ShapeLine }

// ArrowShapeValue is the decoration at the target end of directed edges.
type ArrowShapeValue int

const (
	ArrowNone ArrowShapeValue = iota
	ArrowTriangle
	ArrowDiamond
	ArrowCircle
)

var arrowShapes = enum{"none", "arrow", "diamond", "circle"}

func (s ArrowShapeValue) String() string { return arrowShapes.name(int(s)) }

// TextModeValue controls label rendering.
type TextModeValue int

const (
	TextNormal TextModeValue = iota
	TextHidden
)

var textModes = enum{"normal", "hidden"}

func (m TextModeValue) String() string { return textModes.name(int(m)) }

// ShadowModeValue controls drop shadows.
type ShadowModeValue int

const (
	ShadowNone ShadowModeValue = iota
	ShadowPlain
)

var shadowModes = enum{"none", "plain"}

func (m ShadowModeValue) String() string { return shadowModes.name(int(m)) }

// VisibilityModeValue restricts when an element is drawn.
type VisibilityModeValue int

const (
	VisibilityNormal VisibilityModeValue = iota
	VisibilityHidden
	// VisibilityUnderZoom shows the element while zoom <= visibility[0].
	VisibilityUnderZoom
	// VisibilityOverZoom shows the element while zoom >= visibility[0].
	VisibilityOverZoom
	// VisibilityZoomRange shows the element while visibility[0] <= zoom <= visibility[1].
	VisibilityZoomRange
)

var visibilityModes = enum{"normal", "hidden", "under-zoom", "over-zoom", "zoom-range"}

func (m VisibilityModeValue) String() string { return visibilityModes.name(int(m)) }

// ParsePropertyValue converts a raw document value into the typed value stored
// for prop. Colors become []Color, measurements Values, keywords their enum.
func ParsePropertyValue(prop Property, v any) (any, error) {
	switch prop {
	case FillMode:
		i, err := fillModes.parse(prop, v)
		return FillModeValue(i), err
	case StrokeMode:
		i, err := strokeModes.parse(prop, v)
		return StrokeModeValue(i), err
	case SizeMode:
		i, err := sizeModes.parse(prop, v)
		return SizeModeValue(i), err
	case Shape:
		i, err := shapes.parse(prop, v)
		return ShapeValue(i), err
	case ArrowShape:
		i, err := arrowShapes.parse(prop, v)
		return ArrowShapeValue(i), err
	case TextMode:
		i, err := textModes.parse(prop, v)
		return TextModeValue(i), err
	case ShadowMode:
		i, err := shadowModes.parse(prop, v)
		return ShadowModeValue(i), err
	case VisibilityMode:
		i, err := visibilityModes.parse(prop, v)
		return VisibilityModeValue(i), err
	case FillColor:
		return parsePalette(v)
	case StrokeColor, TextColor, ShadowColor:
		return ParseColor(v)
	case StrokeWidth, Size, ArrowSize, ShadowOffset, Padding:
		return ParseValues(v, PX)
	case Visibility:
		return ParseValues(v, GU)
	case TextSize:
		n, ok := ToFloat(v)
		if !ok || n < 0 {
			return nil, errors.New(errors.ErrCodeInvalidStyleValue, "%s: expected non-negative number, got %v", prop, v)
		}
		return n, nil
	case ZIndex:
		n, ok := ToFloat(v)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidStyleValue, "%s: expected integer, got %v", prop, v)
		}
		return int(n), nil
	}
	return nil, errors.New(errors.ErrCodeInvalidStyleValue, "unknown property %d", int(prop))
}

// parsePalette accepts a single color or a list of colors.
func parsePalette(v any) ([]Color, error) {
	if list, ok := v.([]any); ok {
		// A 3/4 element numeric list is a single color, not a palette.
		if _, isNum := ToFloat(firstOrNil(list)); !isNum {
			out := make([]Color, 0, len(list))
			for _, item := range list {
				c, err := ParseColor(item)
				if err != nil {
					return nil, err
				}
				out = append(out, c)
			}
			if len(out) == 0 {
				return nil, errors.New(errors.ErrCodeInvalidStyleValue, "fill-color: empty palette")
			}
			return out, nil
		}
	}
	if list, ok := v.([]Color); ok {
		return list, nil
	}
	if s, ok := v.(string); ok && strings.Contains(s, ",") && !strings.Contains(s, "(") {
		parts := strings.Split(s, ",")
		out := make([]Color, 0, len(parts))
		for _, p := range parts {
			c, err := ParseColor(p)
			if err != nil {
				return nil, err
			}
			out = append(out, c)
		}
		return out, nil
	}
	c, err := ParseColor(v)
	if err != nil {
		return nil, err
	}
	return []Color{c}, nil
}

func firstOrNil(list []any) any {
	if len(list) == 0 {
		return nil
	}
	return list[0]
}
