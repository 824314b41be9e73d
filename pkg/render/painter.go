package render

import (
	"github.com/matzehuels/graphview/pkg/camera"
	"github.com/matzehuels/graphview/pkg/errors"
	"github.com/matzehuels/graphview/pkg/geom"
	"github.com/matzehuels/graphview/pkg/graphic"
	"github.com/matzehuels/graphview/pkg/metrics"
	"github.com/matzehuels/graphview/pkg/skeleton"
	"github.com/matzehuels/graphview/pkg/style"
	"github.com/matzehuels/graphview/pkg/stylegroup"
)

// appearance is what the painter reads from a skeleton.
type appearance interface {
	skeleton.Skeleton
	IsDynamic() bool
}

// painter implements stylegroup.Painter. It resolves the pushed style into
// pixel-space commands for a Backend.
type painter struct {
	cam   *camera.Camera
	m     *metrics.GraphMetrics
	b     Backend
	stats *Stats

	cur     style.Style
	dynamic bool
	first   error
}

var _ stylegroup.Painter = (*painter)(nil)

func (p *painter) keep(err error) {
	if err != nil && p.first == nil {
		p.first = err
	}
}

func (p *painter) Visible(e stylegroup.Element) bool {
	ge, ok := e.(graphic.Element)
	return ok && p.cam.IsVisible(ge)
}

func (p *painter) PushStyle(g *stylegroup.Group) error {
	p.cur = g.Style()
	p.dynamic = false
	p.stats.StylePushes++
	return nil
}

func (p *painter) PushDynamicStyle(g *stylegroup.Group, _ stylegroup.Element) error {
	p.cur = g.Style()
	p.dynamic = true
	p.stats.StylePushes++
	return nil
}

func (p *painter) ElementInvisible(*stylegroup.Group, stylegroup.Element) { p.stats.Culled++ }

func (p *painter) RenderElement(_ *stylegroup.Group, e stylegroup.Element) error {
	p.stats.Drawn++
	switch x := e.(type) {
	case *graphic.Edge:
		return p.edge(x)
	case *graphic.Node, *graphic.Sprite:
		s, _ := p.shapeOf(e)
		if err := p.b.Shape(s); err != nil {
			return err
		}
		return p.label(e.(graphic.Element), s.Center)
	}
	return errors.Unsupported("cannot draw %s %q", e.Kind(), e.ID())
}

// shapeOf resolves a node or sprite to a pixel-space shape.
func (p *painter) shapeOf(e stylegroup.Element) (Shape, bool) {
	var skel appearance
	var center geom.Point3
	switch x := e.(type) {
	case *graphic.Node:
		skel = x.NodeSkeleton()
		center = x.Center()
	case *graphic.Sprite:
		sk := x.SpriteSkeleton()
		skel = sk
		center = sk.Position(p.m)
	default:
		return Shape{}, false
	}
	shape := p.cur.Shape()
	if shape.IsEdgeShape() {
		shape = style.ShapeCircle
	}
	size := p.size(skel)
	return Shape{
		ID:     e.ID(),
		Kind:   e.Kind(),
		Shape:  shape,
		Center: p.cam.TransformGUToPX(center),
		Width:  size.X,
		Height: size.Y,
		Paint:  p.paint(skel),
	}, true
}

func (p *painter) edge(e *graphic.Edge) error {
	skel := e.EdgeSkeleton()
	geo := skel.Geometry(p.m)
	if geo.Kind == skeleton.GeometryPoints || geo.Kind == skeleton.GeometryVectors {
		return errors.Unsupported("edge %q: %s geometry cannot be drawn", e.ID(), geo.Kind)
	}
	color := p.fill(skel)
	c := Connector{
		ID:    e.ID(),
		Curve: geo.Kind == skeleton.GeometryCurve,
		Width: p.size(skel).X,
		Color: color,
	}
	for i, pt := range geo.P {
		c.P[i] = p.cam.TransformGUToPX(pt)
	}
	if err := p.b.Connector(c); err != nil {
		return err
	}

	if e.Directed() && p.cur.ArrowShape() != style.ArrowNone {
		tip, dir := skel.ArrowAnchor(p.m)
		size := p.cur.ArrowSize()
		a := Arrow{
			Shape:     p.cur.ArrowShape(),
			Tip:       p.cam.TransformGUToPX(tip),
			Direction: p.m.Transform.ApplyVector(dir).Normalize(),
			Length:    p.m.ComponentPX(size, 0),
			Width:     p.m.ComponentPX(size, 1),
			Color:     color,
		}
		if err := p.b.Arrow(a); err != nil {
			return err
		}
	}
	return p.label(e, p.cam.TransformGUToPX(skel.Position(p.m)))
}

func (p *painter) label(e graphic.Element, at geom.Point3) error {
	if e.Label() == "" || p.cur.TextMode() == style.TextHidden {
		return nil
	}
	return p.b.Text(Text{At: at, Text: e.Label(), Size: p.cur.TextSize(), Color: p.cur.TextColor()})
}

// size returns the element size in pixels. Per-element sizes only apply to
// dynamic pushes; bulk members share the group size.
func (p *painter) size(skel appearance) geom.Vector2 {
	if p.dynamic && skel.IsDynamic() {
		return skel.SizePX(p.m)
	}
	v := p.cur.Size()
	return geom.Vector2{X: p.m.ComponentPX(v, 0), Y: p.m.ComponentPX(v, 1)}
}

func (p *painter) fill(skel appearance) style.Color {
	if p.dynamic && skel.IsDynamic() {
		return skel.Color()
	}
	return p.cur.FillColor(0)
}

func (p *painter) paint(skel appearance) Paint {
	pt := Paint{Stroke: p.cur.StrokeColor()}
	if p.cur.FillMode() == style.FillNone {
		pt.NoFill = true
	} else {
		pt.Fill = p.fill(skel)
	}
	if mode := p.cur.StrokeMode(); mode != style.StrokeNone {
		pt.StrokeWidth = p.m.LengthPX(p.cur.StrokeWidth())
		pt.Dashed = mode == style.StrokeDashes || mode == style.StrokeDots
	}
	return pt
}
