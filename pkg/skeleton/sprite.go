package skeleton

import (
	"github.com/matzehuels/graphview/pkg/geom"
	"github.com/matzehuels/graphview/pkg/metrics"
	"github.com/matzehuels/graphview/pkg/style"
)

// Sprite is the skeleton of a sprite.
type Sprite struct {
	base
	sprite SpriteElement

	posDirty bool
	pos      geom.Point3
	posView  viewKey
}

var _ Skeleton = (*Sprite)(nil)

// viewKey captures the metrics a sprite position depends on besides its own
// components and attachment.
type viewKey struct {
	ratio  float64
	lo, hi geom.Point3
	inv    geom.Matrix
}

func keyFor(m *metrics.GraphMetrics) viewKey {
	return viewKey{ratio: m.RatioPx2Gu, lo: m.Lo, hi: m.Hi, inv: m.Inverse}
}

// PositionChanged invalidates the resolved position after the sprite moved,
// was attached or detached, or its attachment moved.
func (s *Sprite) PositionChanged() { s.posDirty = true }

// Position resolves the sprite to graph units.
//
// Free sprites read their components as a point: graph units directly,
// pixels through the inverse view transform, and percentages as a fraction
// of the graph bounds along each axis from the low corner.
//
// A node-attached sprite reads (radius, angle in degrees, z) as a polar
// offset from the node center. An edge-attached sprite reads (t, offset, z):
// t is the fraction along the edge (0..1, or 0..100 with the percent unit)
// and offset a perpendicular distance.
func (s *Sprite) Position(m *metrics.GraphMetrics) geom.Point3 {
	if key := keyFor(m); s.posDirty || key != s.posView {
		s.pos = s.resolve(m)
		s.posView = key
		s.posDirty = false
	}
	return s.pos
}

func (s *Sprite) resolve(m *metrics.GraphMetrics) geom.Point3 {
	off := s.sprite.Offset()
	x, y, z := off.At(0), off.At(1), off.At(2)
	if off.Len() < 3 {
		z = 0
	}
	if off.Len() < 2 {
		y = 0
	}

	if n := s.sprite.AttachedNode(); n != nil {
		r := m.LengthGU(style.Value{Number: x, Units: off.Units})
		p := n.Center().Add(geom.Polar(r, y))
		p.Z += z
		return p
	}
	if e := s.sprite.AttachedEdge(); e != nil {
		t := x
		offUnits := off.Units
		if off.Units == style.Percents {
			t /= 100
			offUnits = style.GU
		}
		d := m.LengthGU(style.Value{Number: y, Units: offUnits})
		p := e.EdgeSkeleton().PointAt(m, t, d)
		p.Z += z
		return p
	}

	switch off.Units {
	case style.PX:
		return m.Inverse.Apply(geom.Pt(x, y, z))
	case style.Percents:
		return geom.Pt(
			m.Lo.X+(m.Hi.X-m.Lo.X)*x/100,
			m.Lo.Y+(m.Hi.Y-m.Lo.Y)*y/100,
			m.Lo.Z+(m.Hi.Z-m.Lo.Z)*z/100,
		)
	default:
		return geom.Pt(x, y, z)
	}
}

// Bounds returns the sprite box in graph units.
func (s *Sprite) Bounds(m *metrics.GraphMetrics) geom.Box {
	sz := s.SizeGU(m)
	return geom.BoxAround(s.Position(m), sz.X, sz.Y)
}

// Contains reports whether the graph-unit point (x, y) hits the sprite.
func (s *Sprite) Contains(m *metrics.GraphMetrics, x, y float64) bool {
	return s.Bounds(m).Contains(x, y)
}
