package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"

	"github.com/matzehuels/graphview/pkg/geom"
	"github.com/matzehuels/graphview/pkg/style"
)

const defaultFontFamily = "Helvetica, Arial, sans-serif"

// SVGOption configures an SVG backend.
type SVGOption func(*SVG)

// WithTitle adds a <title> element.
func WithTitle(t string) SVGOption { return func(s *SVG) { s.title = t } }

// WithFontFamily sets the label font stack.
func WithFontFamily(f string) SVGOption { return func(s *SVG) { s.font = f } }

// WithElementIDs tags shapes and connectors with id attributes.
func WithElementIDs() SVGOption { return func(s *SVG) { s.ids = true } }

// SVG renders frames as standalone SVG documents sized to the viewport.
type SVG struct {
	buf   bytes.Buffer
	title string
	font  string
	ids   bool
}

var _ Backend = (*SVG)(nil)

// NewSVG creates an SVG backend.
func NewSVG(opts ...SVGOption) *SVG {
	s := &SVG{font: defaultFontFamily}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Bytes returns the last completed document. The slice is reused by the
// next frame.
func (s *SVG) Bytes() []byte { return s.buf.Bytes() }

// Begin starts a document of w by h pixels filled with bg.
func (s *SVG) Begin(w, h float64, bg style.Color) error {
	s.buf.Reset()
	fmt.Fprintf(&s.buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n", w, h, w, h)
	if s.title != "" {
		fmt.Fprintf(&s.buf, "  <title>%s</title>\n", escapeXML(s.title))
	}
	fmt.Fprintf(&s.buf, `  <rect width="100%%" height="100%%" fill="%s"%s/>`+"\n", bg.Hex(), opacity("fill", bg))
	return nil
}

// End closes the document. Bytes returns it afterwards.
func (s *SVG) End() error {
	s.buf.WriteString("</svg>\n")
	return nil
}

// Shadow draws sh displaced by offset, in the shadow class.
func (s *SVG) Shadow(sh Shape, offset geom.Vector2) error {
	sh.Center = sh.Center.Add(offset)
	sh.Paint.StrokeWidth = 0
	sh.ID = ""
	return s.shape(sh, "shadow")
}

// Shape draws a node or sprite shape.
func (s *SVG) Shape(sh Shape) error { return s.shape(sh, sh.Kind.String()) }

func (s *SVG) shape(sh Shape, class string) error {
	x, y := sh.Center.X, sh.Center.Y
	w, h := sh.Width, sh.Height
	attrs := s.idAttr(sh.ID) + fmt.Sprintf(` class="%s"`, class) + paintAttrs(sh.Paint)

	switch sh.Shape {
	case style.ShapeBox, style.ShapeRoundedBox:
		r := 0.0
		if sh.Shape == style.ShapeRoundedBox {
			r = math.Min(w, h) / 4
		}
		fmt.Fprintf(&s.buf, `  <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" rx="%.2f"%s/>`+"\n",
			x-w/2, y-h/2, w, h, r, attrs)
	case style.ShapeDiamond:
		fmt.Fprintf(&s.buf, `  <polygon points="%.2f,%.2f %.2f,%.2f %.2f,%.2f %.2f,%.2f"%s/>`+"\n",
			x, y-h/2, x+w/2, y, x, y+h/2, x-w/2, y, attrs)
	case style.ShapeCross:
		// A cross has no interior: its fill color becomes the stroke.
		width := math.Max(1, math.Min(w, h)/5)
		fmt.Fprintf(&s.buf, `  <path d="M%.2f,%.2f L%.2f,%.2f M%.2f,%.2f L%.2f,%.2f"%s class="%s" fill="none" stroke="%s" stroke-width="%.2f"/>`+"\n",
			x-w/2, y-h/2, x+w/2, y+h/2, x-w/2, y+h/2, x+w/2, y-h/2,
			s.idAttr(sh.ID), class, sh.Paint.Fill.Hex(), width)
	default:
		fmt.Fprintf(&s.buf, `  <ellipse cx="%.2f" cy="%.2f" rx="%.2f" ry="%.2f"%s/>`+"\n", x, y, w/2, h/2, attrs)
	}
	return nil
}

// Connector draws an edge segment as a straight line or a cubic path.
func (s *SVG) Connector(c Connector) error {
	attrs := fmt.Sprintf(`%s class="edge" fill="none" stroke="%s"%s stroke-width="%.2f"`,
		s.idAttr(c.ID), c.Color.Hex(), opacity("stroke", c.Color), math.Max(c.Width, 0.5))
	if !c.Curve {
		fmt.Fprintf(&s.buf, `  <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f"%s/>`+"\n",
			c.P[0].X, c.P[0].Y, c.P[3].X, c.P[3].Y, attrs)
		return nil
	}
	fmt.Fprintf(&s.buf, `  <path d="M%.2f,%.2f C%.2f,%.2f %.2f,%.2f %.2f,%.2f"%s/>`+"\n",
		c.P[0].X, c.P[0].Y, c.P[1].X, c.P[1].Y, c.P[2].X, c.P[2].Y, c.P[3].X, c.P[3].Y, attrs)
	return nil
}

// Arrow draws an arrow head.
func (s *SVG) Arrow(a Arrow) error {
	fill := fmt.Sprintf(` class="arrow" fill="%s"%s`, a.Color.Hex(), opacity("fill", a.Color))
	back := a.Tip.Add(a.Direction.Scale(-a.Length))
	side := a.Direction.Perpendicular().Scale(a.Width / 2)

	switch a.Shape {
	case style.ArrowCircle:
		mid := a.Tip.Add(a.Direction.Scale(-a.Length / 2))
		fmt.Fprintf(&s.buf, `  <circle cx="%.2f" cy="%.2f" r="%.2f"%s/>`+"\n", mid.X, mid.Y, a.Length/2, fill)
	case style.ArrowDiamond:
		mid := a.Tip.Add(a.Direction.Scale(-a.Length / 2))
		l, r := mid.Add(side), mid.Add(side.Scale(-1))
		fmt.Fprintf(&s.buf, `  <polygon points="%.2f,%.2f %.2f,%.2f %.2f,%.2f %.2f,%.2f"%s/>`+"\n",
			a.Tip.X, a.Tip.Y, l.X, l.Y, back.X, back.Y, r.X, r.Y, fill)
	default:
		l, r := back.Add(side), back.Add(side.Scale(-1))
		fmt.Fprintf(&s.buf, `  <polygon points="%.2f,%.2f %.2f,%.2f %.2f,%.2f"%s/>`+"\n",
			a.Tip.X, a.Tip.Y, l.X, l.Y, r.X, r.Y, fill)
	}
	return nil
}

// Text draws a label.
func (s *SVG) Text(t Text) error {
	fmt.Fprintf(&s.buf, `  <text x="%.2f" y="%.2f" font-family="%s" font-size="%.1f" fill="%s" text-anchor="middle" dominant-baseline="central">%s</text>`+"\n",
		t.At.X, t.At.Y, escapeXML(s.font), t.Size, t.Color.Hex(), escapeXML(t.Text))
	return nil
}

func (s *SVG) idAttr(id string) string {
	if !s.ids || id == "" {
		return ""
	}
	return fmt.Sprintf(` id="%s"`, escapeXML(id))
}

func paintAttrs(p Paint) string {
	var b bytes.Buffer
	if p.NoFill {
		b.WriteString(` fill="none"`)
	} else {
		fmt.Fprintf(&b, ` fill="%s"%s`, p.Fill.Hex(), opacity("fill", p.Fill))
	}
	if p.StrokeWidth > 0 {
		fmt.Fprintf(&b, ` stroke="%s"%s stroke-width="%.2f"`, p.Stroke.Hex(), opacity("stroke", p.Stroke), p.StrokeWidth)
		if p.Dashed {
			fmt.Fprintf(&b, ` stroke-dasharray="%.2f"`, 3*p.StrokeWidth)
		}
	}
	return b.String()
}

func opacity(attr string, c style.Color) string {
	if c.A == 255 {
		return ""
	}
	return fmt.Sprintf(` %s-opacity="%.3f"`, attr, c.Opacity())
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
