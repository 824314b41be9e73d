package geom

import (
	"math"
	"testing"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestMatrixInvertRoundTrip(t *testing.T) {
	m := Translate(400, 300).Then(Rotate(30)).Then(Scale(2.5, -2.5)).Then(Translate(-10, 4))
	inv := m.Invert()

	for _, p := range []Point3{{0, 0, 0}, {1, 2, 0}, {-7.5, 3, 1}} {
		q := inv.Apply(m.Apply(p))
		if !near(q.X, p.X) || !near(q.Y, p.Y) {
			t.Errorf("inverse(apply(%v)) = %v", p, q)
		}
		if q.Z != p.Z {
			t.Errorf("Z = %v, want %v", q.Z, p.Z)
		}
	}
}

func TestMatrixChainOrder(t *testing.T) {
	// Translate is applied last: the scaled point is shifted by (10, 0).
	m := Translate(10, 0).Then(Scale(2, 2))
	p := m.Apply(Pt(1, 1, 0))
	if p.X != 12 || p.Y != 2 {
		t.Errorf("Apply = %v, want (12, 2)", p)
	}
}

func TestSingularInvert(t *testing.T) {
	if got := Scale(0, 1).Invert(); got != Identity() {
		t.Errorf("Invert(singular) = %v, want identity", got)
	}
}

func TestBox(t *testing.T) {
	b := EmptyBox()
	if !b.IsEmpty() {
		t.Fatal("EmptyBox should be empty")
	}
	b.Expand(Pt(0, 1, 0))
	b.Expand(Pt(1, 0, 0))
	b.Expand(Pt(-1, 0, 0))

	if b.Lo != Pt(-1, 0, 0) || b.Hi != Pt(1, 1, 0) {
		t.Errorf("box = %v..%v", b.Lo, b.Hi)
	}
	if c := b.Center(); c != Pt(0, 0.5, 0) {
		t.Errorf("Center = %v", c)
	}
	if !b.Contains(0.5, 0.5) || b.Contains(2, 0) {
		t.Error("Contains mismatch")
	}
	if !b.Intersects(BoxAround(Pt(1, 1, 0), 1, 1)) {
		t.Error("touching boxes should intersect")
	}
	if b.Intersects(BoxAround(Pt(5, 5, 0), 1, 1)) {
		t.Error("distant boxes should not intersect")
	}
}

func TestPolar(t *testing.T) {
	v := Polar(2, 90)
	if !near(v.X, 0) || !near(v.Y, 2) {
		t.Errorf("Polar(2, 90) = %v", v)
	}
}

func TestCubicEndpoints(t *testing.T) {
	p0, p1, p2, p3 := Pt(0, 0, 0), Pt(1, 2, 0), Pt(3, 2, 0), Pt(4, 0, 0)
	if got := CubicPoint(p0, p1, p2, p3, 0); got != p0 {
		t.Errorf("t=0 -> %v", got)
	}
	if got := CubicPoint(p0, p1, p2, p3, 1); got != p3 {
		t.Errorf("t=1 -> %v", got)
	}
	mid := CubicPoint(p0, p1, p2, p3, 0.5)
	if !near(mid.X, 2) || !near(mid.Y, 1.5) {
		t.Errorf("t=0.5 -> %v", mid)
	}
}

func TestPolylinePoint(t *testing.T) {
	pts := []Point3{{0, 0, 0}, {2, 0, 0}, {2, 2, 0}}
	tests := []struct {
		t    float64
		want Point3
	}{
		{0, Pt(0, 0, 0)},
		{0.25, Pt(1, 0, 0)},
		{0.75, Pt(2, 1, 0)},
		{1, Pt(2, 2, 0)},
		{2, Pt(2, 2, 0)},
	}
	for _, tt := range tests {
		got, _ := PolylinePoint(pts, tt.t)
		if !near(got.X, tt.want.X) || !near(got.Y, tt.want.Y) {
			t.Errorf("PolylinePoint(%v) = %v, want %v", tt.t, got, tt.want)
		}
	}
}
