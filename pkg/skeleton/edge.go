package skeleton

import (
	"math"

	"github.com/matzehuels/graphview/pkg/errors"
	"github.com/matzehuels/graphview/pkg/geom"
	"github.com/matzehuels/graphview/pkg/metrics"
	"github.com/matzehuels/graphview/pkg/style"
)

// GeometryKind is the shape of an edge connector.
type GeometryKind int

const (
	GeometryLine GeometryKind = iota
	GeometryCurve
	GeometryPoints
	GeometryVectors
)

// String returns the lower-case kind name.
func (k GeometryKind) String() string {
	switch k {
	case GeometryCurve:
		return "curve"
	case GeometryPoints:
		return "points"
	case GeometryVectors:
		return "vectors"
	default:
		return "line"
	}
}

// Geometry is a computed edge connector in graph units.
type Geometry struct {
	Kind GeometryKind

	// P holds the cubic control points. A line keeps its endpoints in P[0]
	// and P[3] with P[1] and P[2] on the segment.
	P [4]geom.Point3

	// Points is the polyline for GeometryPoints and GeometryVectors,
	// starting at the source center and ending at the target center.
	Points []geom.Point3
}

const (
	// multiSpacing is the gap between parallel edges as a fraction of the
	// endpoint distance.
	multiSpacing = 0.15

	// loopAngle is the angle of the loop control points from the node center.
	loopAngle = 45
)

// Edge is the skeleton of an edge.
type Edge struct {
	base
	edge EdgeElement

	geomDirty bool
	geomRatio float64
	geometry  Geometry

	points []geom.Point3
}

var _ Skeleton = (*Edge)(nil)

// StyleChanged also invalidates the geometry, which depends on the shape.
func (e *Edge) StyleChanged() {
	e.base.StyleChanged()
	e.geomDirty = true
}

// PositionChanged invalidates the geometry after an endpoint moved.
func (e *Edge) PositionChanged() { e.geomDirty = true }

// PointsChanged records ui.points. It accepts a flat numeric list of xyz
// triplets, or a list of [x, y] / [x, y, z] entries. Polyline edges read
// them as absolute intermediate points, vectors edges as successive
// displacements from the source. A nil value clears them.
func (e *Edge) PointsChanged(v any) {
	if v == nil {
		e.points = nil
		e.geomDirty = true
		return
	}
	pts, err := parsePoints(v)
	if err != nil {
		e.log.Warn("ignoring malformed points", "edge", e.edge.ID(), "value", v, "err", err)
		return
	}
	e.points = pts
	e.geomDirty = true
}

// Geometry returns the connector, recomputing it after invalidation or when
// the pixel ratio changed (loop sizes follow node sizes, which may be in
// pixels).
func (e *Edge) Geometry(m *metrics.GraphMetrics) Geometry {
	if e.geomDirty || e.geomRatio != m.RatioPx2Gu {
		e.geometry = e.compute(m)
		e.geomRatio = m.RatioPx2Gu
		e.geomDirty = false
	}
	return e.geometry
}

func (e *Edge) compute(m *metrics.GraphMetrics) Geometry {
	src, dst := e.edge.Source(), e.edge.Target()
	a, b := src.Center(), dst.Center()

	switch e.edge.Style().Shape() {
	case style.ShapePolyline:
		pts := make([]geom.Point3, 0, len(e.points)+2)
		pts = append(pts, a)
		pts = append(pts, e.points...)
		return Geometry{Kind: GeometryPoints, Points: append(pts, b)}
	case style.ShapeVectors:
		pts := make([]geom.Point3, 0, len(e.points)+2)
		pts = append(pts, a)
		cur := a
		for _, d := range e.points {
			cur = geom.Pt(cur.X+d.X, cur.Y+d.Y, cur.Z+d.Z)
			pts = append(pts, cur)
		}
		return Geometry{Kind: GeometryVectors, Points: append(pts, b)}
	}

	index, count := e.edge.Multi()
	if src.ID() == dst.ID() {
		return loop(a, 2*src.NodeSkeleton().Radius(m), index)
	}
	if count > 1 {
		if off := multiOffset(index, count); off != 0 {
			// Parallel edges of opposite direction must not share a side.
			if src.ID() > dst.ID() {
				off = -off
			}
			return bend(a, b, off*multiSpacing*a.Distance(b))
		}
	}
	if e.edge.Style().Shape() == style.ShapeCubicCurve {
		return bend(a, b, multiSpacing*a.Distance(b))
	}
	return Geometry{Kind: GeometryLine, P: [4]geom.Point3{a, a.Lerp(b, 1.0/3), a.Lerp(b, 2.0/3), b}}
}

// multiOffset returns the signed offset rank of edge i in a group of n
// parallel edges. Ranks grow outwards and alternate sides by parity. The
// middle edge of an odd group has rank 0.
func multiOffset(i, n int) float64 {
	var k int
	if n%2 == 1 {
		k = (i + 1) / 2
	} else {
		k = i/2 + 1
	}
	if i%2 == 1 {
		return -float64(k)
	}
	return float64(k)
}

// bend builds a cubic from a to b whose control points are pushed d graph
// units along the left-hand perpendicular.
func bend(a, b geom.Point3, d float64) Geometry {
	perp := b.Sub(a).Perpendicular().Normalize().Scale(d)
	return Geometry{
		Kind: GeometryCurve,
		P:    [4]geom.Point3{a, a.Lerp(b, 1.0/3).Add(perp), a.Lerp(b, 2.0/3).Add(perp), b},
	}
}

// loop builds a self-loop leaving and re-entering the node center. Control
// points sit at +/-45 degrees, further out for each extra loop on the node.
func loop(c geom.Point3, size float64, index int) Geometry {
	if size <= geom.Epsilon {
		size = 1
	}
	d := size * (1.5 + 0.75*float64(index))
	return Geometry{
		Kind: GeometryCurve,
		P: [4]geom.Point3{
			c,
			c.Add(geom.Polar(d, loopAngle)),
			c.Add(geom.Polar(d, -loopAngle)),
			c,
		},
	}
}

// PointAt returns the point at fraction t along the connector, moved offset
// graph units along the perpendicular to the connector direction.
func (e *Edge) PointAt(m *metrics.GraphMetrics, t, offset float64) geom.Point3 {
	g := e.Geometry(m)
	t = geom.Clamp(t, 0, 1)
	var p geom.Point3
	var dir geom.Vector2
	switch g.Kind {
	case GeometryLine:
		p = g.P[0].Lerp(g.P[3], t)
		dir = g.P[3].Sub(g.P[0])
	case GeometryCurve:
		p = geom.CubicPoint(g.P[0], g.P[1], g.P[2], g.P[3], t)
		dir = geom.CubicTangent(g.P[0], g.P[1], g.P[2], g.P[3], t)
	default:
		p, dir = geom.PolylinePoint(g.Points, t)
	}
	if offset != 0 {
		p = p.Add(dir.Normalize().Perpendicular().Scale(offset))
	}
	return p
}

// ArrowAnchor returns where the arrow tip touches the target node and the
// direction it points in.
func (e *Edge) ArrowAnchor(m *metrics.GraphMetrics) (geom.Point3, geom.Vector2) {
	g := e.Geometry(m)
	var dir geom.Vector2
	end := g.P[3]
	switch g.Kind {
	case GeometryLine:
		dir = g.P[3].Sub(g.P[0])
	case GeometryCurve:
		dir = geom.CubicTangent(g.P[0], g.P[1], g.P[2], g.P[3], 1)
	default:
		n := len(g.Points)
		end = g.Points[n-1]
		dir = g.Points[n-1].Sub(g.Points[n-2])
	}
	dir = dir.Normalize()
	r := e.edge.Target().NodeSkeleton().Radius(m)
	return end.Add(dir.Scale(-r)), dir
}

// Position returns the middle of the connector.
func (e *Edge) Position(m *metrics.GraphMetrics) geom.Point3 { return e.PointAt(m, 0.5, 0) }

// Bounds returns a box containing the connector and its control points.
func (e *Edge) Bounds(m *metrics.GraphMetrics) geom.Box {
	g := e.Geometry(m)
	box := geom.EmptyBox()
	if g.Kind == GeometryLine || g.Kind == GeometryCurve {
		for _, p := range g.P {
			box.Expand(p)
		}
	} else {
		for _, p := range g.Points {
			box.Expand(p)
		}
	}
	return box
}

// Contains reports whether (x, y) lies within half the edge width of the
// connector, sampled along its length.
func (e *Edge) Contains(m *metrics.GraphMetrics, x, y float64) bool {
	tol := math.Max(e.SizeGU(m).X/2, m.PixelsToGU(2))
	b := e.Bounds(m)
	if x < b.Lo.X-tol || x > b.Hi.X+tol || y < b.Lo.Y-tol || y > b.Hi.Y+tol {
		return false
	}
	q := geom.Pt(x, y, 0)
	const samples = 32
	prev := e.PointAt(m, 0, 0)
	for i := 1; i <= samples; i++ {
		cur := e.PointAt(m, float64(i)/samples, 0)
		if segmentDistance(q, prev, cur) <= tol {
			return true
		}
		prev = cur
	}
	return false
}

func segmentDistance(q, a, b geom.Point3) float64 {
	ab := b.Sub(a)
	l2 := ab.X*ab.X + ab.Y*ab.Y
	if l2 < geom.Epsilon {
		return q.Distance(a)
	}
	aq := q.Sub(a)
	t := geom.Clamp((aq.X*ab.X+aq.Y*ab.Y)/l2, 0, 1)
	return q.Distance(a.Add(ab.Scale(t)))
}

func parsePoints(v any) ([]geom.Point3, error) {
	var flat []float64
	switch x := v.(type) {
	case []float64:
		flat = x
	case []any:
		if len(x) > 0 {
			if _, nested := x[0].([]any); nested {
				return parseNestedPoints(x)
			}
		}
		for i, item := range x {
			n, ok := style.ToFloat(item)
			if !ok {
				return nil, errors.New(errors.ErrCodeInvalidAttribute, "ui.points entry %d is not a number", i)
			}
			flat = append(flat, n)
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidAttribute, "ui.points: unsupported type %T", v)
	}
	if len(flat)%3 != 0 {
		return nil, errors.New(errors.ErrCodeInvalidAttribute, "ui.points: %d numbers is not a list of xyz triplets", len(flat))
	}
	pts := make([]geom.Point3, 0, len(flat)/3)
	for i := 0; i < len(flat); i += 3 {
		pts = append(pts, geom.Pt(flat[i], flat[i+1], flat[i+2]))
	}
	return pts, nil
}

func parseNestedPoints(list []any) ([]geom.Point3, error) {
	pts := make([]geom.Point3, 0, len(list))
	for i, item := range list {
		coords, ok := item.([]any)
		if !ok || len(coords) < 2 || len(coords) > 3 {
			return nil, errors.New(errors.ErrCodeInvalidAttribute, "ui.points entry %d must have 2 or 3 coordinates", i)
		}
		var c [3]float64
		for j, cv := range coords {
			n, ok := style.ToFloat(cv)
			if !ok {
				return nil, errors.New(errors.ErrCodeInvalidAttribute, "ui.points entry %d: coordinate %d is not a number", i, j)
			}
			c[j] = n
		}
		pts = append(pts, geom.Pt(c[0], c[1], c[2]))
	}
	return pts, nil
}
