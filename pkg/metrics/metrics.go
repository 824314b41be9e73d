// Package metrics holds the per-frame measurements shared by the camera,
// skeletons and renderers: graph bounds, viewport size and the ratio between
// graph units and pixels.
package metrics

import (
	"math"

	"github.com/matzehuels/graphview/pkg/geom"
	"github.com/matzehuels/graphview/pkg/style"
)

// GraphMetrics converts style lengths between units for the current view.
// The camera owns one instance and refreshes it every frame before any
// skeleton is read.
type GraphMetrics struct {
	// Lo and Hi are the graph bounds in graph units.
	Lo, Hi geom.Point3

	// ViewportW and ViewportH are the output surface size in pixels.
	ViewportW, ViewportH float64

	// RatioPx2Gu is the number of pixels per graph unit.
	RatioPx2Gu float64

	// Transform maps graph units to pixels; Inverse maps back.
	Transform, Inverse geom.Matrix

	diagonal float64
}

// New returns metrics for an empty unit graph on a 1x1 viewport.
func New() *GraphMetrics {
	m := &GraphMetrics{
		RatioPx2Gu: 1,
		ViewportW:  1,
		ViewportH:  1,
		Transform:  geom.Identity(),
		Inverse:    geom.Identity(),
	}
	m.SetBounds(geom.Pt(-1, -1, 0), geom.Pt(1, 1, 0))
	return m
}

// SetBounds updates the graph bounds and the derived diagonal.
func (m *GraphMetrics) SetBounds(lo, hi geom.Point3) {
	m.Lo, m.Hi = lo, hi
	m.diagonal = math.Sqrt((hi.X-lo.X)*(hi.X-lo.X) + (hi.Y-lo.Y)*(hi.Y-lo.Y) + (hi.Z-lo.Z)*(hi.Z-lo.Z))
}

// SetViewport records the surface size in pixels.
func (m *GraphMetrics) SetViewport(w, h float64) {
	m.ViewportW, m.ViewportH = w, h
}

// SetRatio records pixels per graph unit. Non-positive ratios are ignored.
func (m *GraphMetrics) SetRatio(r float64) {
	if r > 0 && !math.IsInf(r, 0) {
		m.RatioPx2Gu = r
	}
}

// SetTransform records the view transform and its inverse.
func (m *GraphMetrics) SetTransform(t geom.Matrix) {
	m.Transform = t
	m.Inverse = t.Invert()
}

// Diagonal is the length of the bounds diagonal in graph units.
func (m *GraphMetrics) Diagonal() float64 { return m.diagonal }

// Size is the bounds extent in graph units.
func (m *GraphMetrics) Size() geom.Vector2 {
	return geom.Vector2{X: m.Hi.X - m.Lo.X, Y: m.Hi.Y - m.Lo.Y}
}

// LengthGU converts a length to graph units. Percentages are of the diagonal.
func (m *GraphMetrics) LengthGU(v style.Value) float64 {
	switch v.Units {
	case style.PX:
		return v.Number / m.RatioPx2Gu
	case style.Percents:
		return m.diagonal * v.Number / 100
	default:
		return v.Number
	}
}

// LengthPX converts a length to pixels.
func (m *GraphMetrics) LengthPX(v style.Value) float64 {
	switch v.Units {
	case style.GU:
		return v.Number * m.RatioPx2Gu
	case style.Percents:
		return m.diagonal * v.Number / 100 * m.RatioPx2Gu
	default:
		return v.Number
	}
}

// ComponentGU converts component i of a multi-valued length to graph units.
func (m *GraphMetrics) ComponentGU(v style.Values, i int) float64 {
	return m.LengthGU(v.Value(i))
}

// ComponentPX converts component i of a multi-valued length to pixels.
func (m *GraphMetrics) ComponentPX(v style.Values, i int) float64 {
	return m.LengthPX(v.Value(i))
}

// PixelsToGU converts a pixel distance to graph units.
func (m *GraphMetrics) PixelsToGU(px float64) float64 { return px / m.RatioPx2Gu }
