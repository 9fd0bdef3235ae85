package geom

import "math"

// Ray is a half line with a unit direction. Inv caches 1/Dir per axis.
type Ray struct {
	Origin Vec
	Dir    Vec
	Inv    Vec
}

// NewRay normalizes dir and precomputes the inverse direction.
func NewRay(origin, dir Vec) Ray {
	d := dir.Norm()
	return Ray{Origin: origin, Dir: d, Inv: Vec{1 / d.X, 1 / d.Y}}
}

// TX returns the ray parameter at which it crosses the vertical line x.
func (r Ray) TX(x float64) float64 { return crossing(x-r.Origin.X, r.Dir.X, r.Inv.X) }

// TY returns the ray parameter at which it crosses the horizontal line y.
func (r Ray) TY(y float64) float64 { return crossing(y-r.Origin.Y, r.Dir.Y, r.Inv.Y) }

// An axis-parallel ray never crosses lines on that axis; report the crossing
// as already behind (or at) the origin or infinitely far ahead.
func crossing(delta, dir, inv float64) float64 {
	if dir == 0 {
		if delta > 0 {
			return math.Inf(1)
		}
		return math.Inf(-1)
	}
	return delta * inv
}

// Point returns Origin + t*Dir.
func (r Ray) Point(t float64) Vec { return r.Origin.Add(r.Dir.Scale(t)) }

// IntersectBox returns the slab intersection of the ray with b.
func (r Ray) IntersectBox(b AABB) Interval {
	tx0, tx1 := r.TX(b.Min.X), r.TX(b.Max.X)
	if tx0 > tx1 {
		tx0, tx1 = tx1, tx0
	}
	ty0, ty1 := r.TY(b.Min.Y), r.TY(b.Max.Y)
	if ty0 > ty1 {
		ty0, ty1 = ty1, ty0
	}
	return Interval{TMin: math.Max(tx0, ty0), TMax: math.Min(tx1, ty1)}
}
