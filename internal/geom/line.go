package geom

import (
	"image"
	"math"
)

// Line returns the grid cells on the segment from a to b, both ends included.
// Cells are sampled at evenly spaced parameters and rounded, so the walk is
// the same cell set in either direction and diagonal steps are allowed.
func Line(a, b image.Point) []image.Point {
	pts := make([]image.Point, 0, steps(a, b)+1)
	pts = append(pts, a)
	WalkLine(a, b, func(p image.Point) bool {
		pts = append(pts, p)
		return true
	})
	return pts
}

// WalkLine visits the cells after a up to and including b, in order. The walk
// stops early when visit returns false.
func WalkLine(a, b image.Point, visit func(p image.Point) bool) {
	n := steps(a, b)
	if n == 0 {
		return
	}
	dx := float64(b.X-a.X) / float64(n)
	dy := float64(b.Y-a.Y) / float64(n)
	for i := 1; i <= n; i++ {
		p := image.Point{
			X: a.X + int(math.Round(dx*float64(i))),
			Y: a.Y + int(math.Round(dy*float64(i))),
		}
		if !visit(p) {
			return
		}
	}
}

func steps(a, b image.Point) int {
	dx, dy := b.X-a.X, b.Y-a.Y
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}
