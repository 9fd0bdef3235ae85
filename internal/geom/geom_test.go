package geom

import (
	"image"
	"math"
	"slices"
	"testing"
)

func TestLineVertical(t *testing.T) {
	got := Line(image.Pt(3, 1), image.Pt(3, 4))
	want := []image.Point{{3, 1}, {3, 2}, {3, 3}, {3, 4}}
	if !slices.Equal(got, want) {
		t.Fatalf("vertical line = %v, expected %v", got, want)
	}
}

func TestLineDiagonalIsContiguous(t *testing.T) {
	pts := Line(image.Pt(0, 0), image.Pt(5, -3))
	if pts[0] != image.Pt(0, 0) || pts[len(pts)-1] != image.Pt(5, -3) {
		t.Fatalf("line endpoints wrong: %v", pts)
	}
	for i := 1; i < len(pts); i++ {
		dx := pts[i].X - pts[i-1].X
		dy := pts[i].Y - pts[i-1].Y
		if dx < -1 || dx > 1 || dy < -1 || dy > 1 {
			t.Fatalf("gap between %v and %v", pts[i-1], pts[i])
		}
	}
}

func TestLineReversedVisitsSameCells(t *testing.T) {
	a, b := image.Pt(2, 7), image.Pt(9, 3)
	fwd := Line(a, b)
	rev := Line(b, a)
	slices.Reverse(rev)
	if len(fwd) != len(rev) {
		t.Fatalf("forward %d cells, reverse %d", len(fwd), len(rev))
	}
}

func TestWalkLineStopsEarly(t *testing.T) {
	visited := 0
	WalkLine(image.Pt(0, 0), image.Pt(0, 10), func(p image.Point) bool {
		visited++
		return p.Y < 3
	})
	if visited != 3 {
		t.Fatalf("expected walk to stop after 3 cells, visited %d", visited)
	}
}

func TestRayIntersectBox(t *testing.T) {
	r := NewRay(V(-2, 0.5), V(1, 0))
	in := r.IntersectBox(Box(V(0, 0), 1))
	if math.Abs(in.TMin-2) > 1e-9 || math.Abs(in.TMax-3) > 1e-9 {
		t.Fatalf("interval = %+v, expected [2,3]", in)
	}
	if !in.Hit() {
		t.Fatal("expected hit")
	}

	miss := NewRay(V(-2, 5), V(1, 0)).IntersectBox(Box(V(0, 0), 1))
	if miss.Hit() {
		t.Fatalf("expected miss, got %+v", miss)
	}
}

func TestRayAxisParallelCrossing(t *testing.T) {
	r := NewRay(V(1, 1), V(0, 1))
	if !math.IsInf(r.TX(4), 1) || !math.IsInf(r.TX(0), -1) {
		t.Fatalf("unexpected crossings %f %f", r.TX(4), r.TX(0))
	}
}

func TestAABBIntersects(t *testing.T) {
	a := Box(V(0, 0), 2)
	if !a.Intersects(Box(V(2, 2), 1)) {
		t.Fatal("touching boxes should intersect")
	}
	if a.Intersects(Box(V(3, 0), 1)) {
		t.Fatal("separated boxes should not intersect")
	}
}

func TestVecNormAndClamp(t *testing.T) {
	if n := V(3, 4).Norm(); math.Abs(n.Len()-1) > 1e-12 {
		t.Fatalf("norm length %f", n.Len())
	}
	if z := (Vec{}).Norm(); z != (Vec{}) {
		t.Fatalf("zero norm = %v", z)
	}
	if c := V(3, 4).ClampLen(1); math.Abs(c.Len()-1) > 1e-12 {
		t.Fatalf("clamped length %f", c.Len())
	}
}
