package geom

// CubicPoint evaluates the cubic Bézier curve p0..p3 at t in [0, 1].
func CubicPoint(p0, p1, p2, p3 Point3, t float64) Point3 {
	u := 1 - t
	a := u * u * u
	b := 3 * u * u * t
	c := 3 * u * t * t
	d := t * t * t
	return Point3{
		X: a*p0.X + b*p1.X + c*p2.X + d*p3.X,
		Y: a*p0.Y + b*p1.Y + c*p2.Y + d*p3.Y,
		Z: a*p0.Z + b*p1.Z + c*p2.Z + d*p3.Z,
	}
}

// CubicTangent returns the derivative of the cubic Bézier curve at t.
func CubicTangent(p0, p1, p2, p3 Point3, t float64) Vector2 {
	u := 1 - t
	a := 3 * u * u
	b := 6 * u * t
	c := 3 * t * t
	return Vector2{
		X: a*(p1.X-p0.X) + b*(p2.X-p1.X) + c*(p3.X-p2.X),
		Y: a*(p1.Y-p0.Y) + b*(p2.Y-p1.Y) + c*(p3.Y-p2.Y),
	}
}

// PolylineLength returns the XY length of the polyline through pts.
func PolylineLength(pts []Point3) float64 {
	var l float64
	for i := 1; i < len(pts); i++ {
		l += pts[i].Distance(pts[i-1])
	}
	return l
}

// PolylinePoint returns the point at fraction t of the total polyline length
// and the direction of the segment it falls on.
func PolylinePoint(pts []Point3, t float64) (Point3, Vector2) {
	switch len(pts) {
	case 0:
		return Point3{}, Vector2{}
	case 1:
		return pts[0], Vector2{}
	}
	t = Clamp(t, 0, 1)
	target := PolylineLength(pts) * t
	for i := 1; i < len(pts); i++ {
		seg := pts[i].Distance(pts[i-1])
		if target <= seg || i == len(pts)-1 {
			f := 0.0
			if seg > Epsilon {
				f = target / seg
			}
			return pts[i-1].Lerp(pts[i], Clamp(f, 0, 1)), pts[i].Sub(pts[i-1])
		}
		target -= seg
	}
	return pts[len(pts)-1], pts[len(pts)-1].Sub(pts[len(pts)-2])
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
