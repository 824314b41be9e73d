package geom

import "math"

// Matrix is a 2D affine transformation matrix.
// Layout: [a, b, c, d, e, f] representing:
//
//	| a  c  e |
//	| b  d  f |
//	| 0  0  1 |
type Matrix [6]float64

// Identity returns the identity matrix.
func Identity() Matrix {
	return Matrix{1, 0, 0, 1, 0, 0}
}

// Translate returns a translation matrix.
func Translate(tx, ty float64) Matrix {
	return Matrix{1, 0, 0, 1, tx, ty}
}

// Scale returns a scale matrix.
func Scale(sx, sy float64) Matrix {
	return Matrix{sx, 0, 0, sy, 0, 0}
}

// Rotate returns a rotation matrix (angle in degrees).
func Rotate(degrees float64) Matrix {
	rad := degrees * math.Pi / 180
	cos := math.Cos(rad)
	sin := math.Sin(rad)
	return Matrix{cos, sin, -sin, cos, 0, 0}
}

// Multiply returns m * o: o is applied first, then m.
func (m Matrix) Multiply(o Matrix) Matrix {
	return Matrix{
		m[0]*o[0] + m[2]*o[1],
		m[1]*o[0] + m[3]*o[1],
		m[0]*o[2] + m[2]*o[3],
		m[1]*o[2] + m[3]*o[3],
		m[0]*o[4] + m[2]*o[5] + m[4],
		m[1]*o[4] + m[3]*o[5] + m[5],
	}
}

// Then composes a chain left to right as written: Identity().Then(A).Then(B)
// equals A * B, so B is applied to points first.
func (m Matrix) Then(o Matrix) Matrix { return m.Multiply(o) }

// Apply transforms the XY coordinates of p. Z is passed through.
func (m Matrix) Apply(p Point3) Point3 {
	return Point3{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
		Z: p.Z,
	}
}

// ApplyVector transforms a displacement (no translation).
func (m Matrix) ApplyVector(v Vector2) Vector2 {
	return Vector2{X: m[0]*v.X + m[2]*v.Y, Y: m[1]*v.X + m[3]*v.Y}
}

// ApplyBox transforms the four XY corners of b and returns their bounding box.
func (m Matrix) ApplyBox(b Box) Box {
	out := EmptyBox()
	for _, p := range [4]Point3{
		{X: b.Lo.X, Y: b.Lo.Y}, {X: b.Hi.X, Y: b.Lo.Y},
		{X: b.Hi.X, Y: b.Hi.Y}, {X: b.Lo.X, Y: b.Hi.Y},
	} {
		out.Expand(m.Apply(p))
	}
	out.Lo.Z, out.Hi.Z = b.Lo.Z, b.Hi.Z
	return out
}

// Determinant returns the determinant of the linear part.
func (m Matrix) Determinant() float64 {
	return m[0]*m[3] - m[1]*m[2]
}

// Invert returns the inverse of the matrix, or Identity if it is singular.
func (m Matrix) Invert() Matrix {
	det := m.Determinant()
	if det == 0 {
		return Identity()
	}

	inv := 1.0 / det
	return Matrix{
		m[3] * inv,
		-m[1] * inv,
		-m[2] * inv,
		m[0] * inv,
		(m[2]*m[5] - m[3]*m[4]) * inv,
		(m[1]*m[4] - m[0]*m[5]) * inv,
	}
}

// ScaleFactor returns the length a unit X vector has after transformation.
func (m Matrix) ScaleFactor() float64 {
	return math.Hypot(m[0], m[1])
}
