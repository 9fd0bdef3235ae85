// Package geom holds the small amount of 2D geometry the simulation and the
// spatial index share: float vectors, axis-aligned boxes, rays and grid line
// walks.
package geom

import "math"

// Vec is a 2D floating point vector.
type Vec struct {
	X, Y float64
}

// V is shorthand for Vec{X: x, Y: y}.
func V(x, y float64) Vec { return Vec{X: x, Y: y} }

// Add returns v+o.
func (v Vec) Add(o Vec) Vec { return Vec{v.X + o.X, v.Y + o.Y} }

// Sub returns v-o.
func (v Vec) Sub(o Vec) Vec { return Vec{v.X - o.X, v.Y - o.Y} }

// AddScalar adds s to both components.
func (v Vec) AddScalar(s float64) Vec { return Vec{v.X + s, v.Y + s} }

// Scale multiplies both components by s.
func (v Vec) Scale(s float64) Vec { return Vec{v.X * s, v.Y * s} }

// Len returns the euclidean length.
func (v Vec) Len() float64 { return math.Hypot(v.X, v.Y) }

// Norm returns v scaled to unit length. The zero vector is returned as is.
func (v Vec) Norm() Vec {
	l := v.Len()
	if l == 0 {
		return v
	}
	return Vec{v.X / l, v.Y / l}
}

// Abs returns the component-wise absolute value.
func (v Vec) Abs() Vec { return Vec{math.Abs(v.X), math.Abs(v.Y)} }

// ClampLen shortens v to at most max length, keeping its direction.
func (v Vec) ClampLen(max float64) Vec {
	l := v.Len()
	if l <= max || l == 0 {
		return v
	}
	return v.Scale(max / l)
}

// AABB is an axis-aligned box spanning [Min, Max].
type AABB struct {
	Min, Max Vec
}

// Box builds an AABB from an origin and a side length.
func Box(origin Vec, size float64) AABB {
	return AABB{Min: origin, Max: origin.AddScalar(size)}
}

// Intersects reports whether the two boxes overlap (touching edges count).
func (b AABB) Intersects(o AABB) bool {
	xi := math.Max(b.Min.X, o.Min.X)-math.Min(b.Max.X, o.Max.X) <= 0
	yi := math.Max(b.Min.Y, o.Min.Y)-math.Min(b.Max.Y, o.Max.Y) <= 0
	return xi && yi
}

// Contains reports whether p lies inside the half-open box [Min, Max).
func (b AABB) Contains(p Vec) bool {
	return p.X >= b.Min.X && p.X < b.Max.X && p.Y >= b.Min.Y && p.Y < b.Max.Y
}

// Interval is the parametric range [TMin, TMax] a ray spends inside a box.
// The ray misses the box when TMin > TMax.
type Interval struct {
	TMin, TMax float64
}

// Hit reports whether the interval is non-empty and not entirely behind the
// ray origin.
func (i Interval) Hit() bool { return i.TMin <= i.TMax && i.TMax > 0 }
