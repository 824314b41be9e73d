// Package geom provides the small set of geometric primitives used by the
// rendering pipeline: 3D points in graph units, 2D vectors, axis-aligned boxes
// and a 2D affine matrix with its inverse.
//
// All types are plain values. Methods never mutate their receiver unless the
// method name says so (Move, Expand).
package geom

import "math"

// Epsilon is the tolerance used for degenerate extents and float comparisons.
const Epsilon = 1e-6

// Point3 is a point in graph space. The Z coordinate is carried through but the
// camera projects onto the XY plane.
type Point3 struct {
	X, Y, Z float64
}

// Pt returns a Point3.
func Pt(x, y, z float64) Point3 { return Point3{X: x, Y: y, Z: z} }

// Add returns p translated by v.
func (p Point3) Add(v Vector2) Point3 { return Point3{X: p.X + v.X, Y: p.Y + v.Y, Z: p.Z} }

// Sub returns the XY displacement from q to p.
func (p Point3) Sub(q Point3) Vector2 { return Vector2{X: p.X - q.X, Y: p.Y - q.Y} }

// Distance returns the XY distance between p and q.
func (p Point3) Distance(q Point3) float64 { return math.Hypot(p.X-q.X, p.Y-q.Y) }

// Lerp returns the point at fraction t of the segment p→q.
func (p Point3) Lerp(q Point3, t float64) Point3 {
	return Point3{
		X: p.X + (q.X-p.X)*t,
		Y: p.Y + (q.Y-p.Y)*t,
		Z: p.Z + (q.Z-p.Z)*t,
	}
}

// Vector2 is a 2D displacement.
type Vector2 struct {
	X, Y float64
}

// Length returns the Euclidean length of v.
func (v Vector2) Length() float64 { return math.Hypot(v.X, v.Y) }

// Scale returns v multiplied by k.
func (v Vector2) Scale(k float64) Vector2 { return Vector2{X: v.X * k, Y: v.Y * k} }

// Add returns v + w.
func (v Vector2) Add(w Vector2) Vector2 { return Vector2{X: v.X + w.X, Y: v.Y + w.Y} }

// Normalize returns v scaled to unit length. The zero vector is returned as is.
func (v Vector2) Normalize() Vector2 {
	l := v.Length()
	if l < Epsilon {
		return v
	}
	return Vector2{X: v.X / l, Y: v.Y / l}
}

// Perpendicular returns v rotated by +90 degrees.
func (v Vector2) Perpendicular() Vector2 { return Vector2{X: -v.Y, Y: v.X} }

// Polar returns the vector of the given length at angle degrees from +X.
func Polar(length, degrees float64) Vector2 {
	rad := degrees * math.Pi / 180
	return Vector2{X: length * math.Cos(rad), Y: length * math.Sin(rad)}
}

// Box is an axis-aligned bounding box.
type Box struct {
	Lo, Hi Point3
}

// EmptyBox returns a box that contains nothing; expanding it by any point
// yields that point.
func EmptyBox() Box {
	inf := math.Inf(1)
	return Box{
		Lo: Point3{X: inf, Y: inf, Z: inf},
		Hi: Point3{X: -inf, Y: -inf, Z: -inf},
	}
}

// IsEmpty reports whether the box has not been expanded yet.
func (b Box) IsEmpty() bool { return b.Lo.X > b.Hi.X }

// Expand grows the box to contain p.
func (b *Box) Expand(p Point3) {
	b.Lo.X = math.Min(b.Lo.X, p.X)
	b.Lo.Y = math.Min(b.Lo.Y, p.Y)
	b.Lo.Z = math.Min(b.Lo.Z, p.Z)
	b.Hi.X = math.Max(b.Hi.X, p.X)
	b.Hi.Y = math.Max(b.Hi.Y, p.Y)
	b.Hi.Z = math.Max(b.Hi.Z, p.Z)
}

// Center returns the middle of the box.
func (b Box) Center() Point3 { return b.Lo.Lerp(b.Hi, 0.5) }

// Size returns the extent of the box along each axis.
func (b Box) Size() Point3 {
	return Point3{X: b.Hi.X - b.Lo.X, Y: b.Hi.Y - b.Lo.Y, Z: b.Hi.Z - b.Lo.Z}
}

// Contains reports whether (x, y) lies inside the box XY projection.
func (b Box) Contains(x, y float64) bool {
	return x >= b.Lo.X && x <= b.Hi.X && y >= b.Lo.Y && y <= b.Hi.Y
}

// Intersects reports whether the XY projections of b and o overlap.
func (b Box) Intersects(o Box) bool {
	return b.Lo.X <= o.Hi.X && b.Hi.X >= o.Lo.X && b.Lo.Y <= o.Hi.Y && b.Hi.Y >= o.Lo.Y
}

// BoxAround returns the box centered on c with the given width and height.
func BoxAround(c Point3, w, h float64) Box {
	return Box{
		Lo: Point3{X: c.X - w/2, Y: c.Y - h/2, Z: c.Z},
		Hi: Point3{X: c.X + w/2, Y: c.Y + h/2, Z: c.Z},
	}
}
