package spatial

import (
	"image"
	"math"

	"dustfall/internal/geom"
)

// axisEpsilon replaces a zero direction component after mirroring so that
// every crossing parameter stays finite and ordered.
const axisEpsilon = 1e-12

type rayConfig struct {
	length   float64
	maxDepth int
	pending  *ChangeLog
}

// RayOption adjusts a TraceRay query.
type RayOption func(*rayConfig)

// WithLength bounds the ray. Hits at or behind the origin are ignored and hits
// beyond length report no hit.
func WithLength(length float64) RayOption {
	return func(c *rayConfig) { c.length = length }
}

// WithMaxDepth stops descending below depth, treating nodes there as leaves.
func WithMaxDepth(depth int) RayOption {
	return func(c *rayConfig) { c.maxDepth = depth }
}

// WithPending lets the traversal apply pending changes for every leaf it
// visits before trusting that leaf's class.
func WithPending(log *ChangeLog) RayOption {
	return func(c *rayConfig) { c.pending = log }
}

type rayFrame struct {
	index   int
	ox, oy  float64
	descend bool
	node    int32
}

// TraceRay returns the ray parameter at which the ray from origin along dir
// first enters a region whose class satisfies stop, or +Inf when no such
// region lies inside the tree. For unbounded rays a non-positive result means
// the origin itself lies inside a stopping region.
//
// The ray is mirrored so both direction components are non-negative; mask
// maps mirrored child indices back to the real ones. Children are visited in
// the order the ray crosses them, using an explicit stack.
func (t *Tree) TraceRay(origin, dir geom.Vec, stop Predicate, opts ...RayOption) float64 {
	cfg := rayConfig{maxDepth: t.maxDepth}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.maxDepth <= 0 || cfg.maxDepth > t.maxDepth {
		cfg.maxDepth = t.maxDepth
	}
	d := dir.Norm()
	if d.X == 0 && d.Y == 0 {
		return math.Inf(1)
	}

	size := float64(t.scale)
	mask := 0
	o := origin
	if d.X <= 0 {
		mask |= 1
		o.X = size - o.X
	}
	if d.Y <= 0 {
		mask |= 2
		o.Y = size - o.Y
	}
	md := d.Abs()
	if md.X == 0 {
		md.X = axisEpsilon
	}
	if md.Y == 0 {
		md.Y = axisEpsilon
	}
	ray := geom.Ray{Origin: o, Dir: md, Inv: geom.V(1/md.X, 1/md.Y)}

	if !ray.IntersectBox(geom.Box(geom.Vec{}, size)).Hit() {
		return math.Inf(1)
	}

	stack := make([]rayFrame, 1, t.maxDepth+1)
	stack[0] = rayFrame{descend: cfg.maxDepth > 0, node: t.root}

	for len(stack) > 0 {
		depth := len(stack) - 1
		top := &stack[depth]
		scale := size / float64(int(1)<<depth)
		tx1 := ray.TX(top.ox + scale)
		ty1 := ray.TY(top.oy + scale)
		ahead := math.Min(tx1, ty1) > 0

		leaf := t.nodes[top.node].child == noChild
		if leaf && ahead && cfg.pending != nil && cfg.pending.Len() > 0 {
			if t.flushFootprint(cfg.pending, footprint(top.ox, top.oy, scale, size, mask)) {
				if k := t.firstDetached(stack, mask); k > 0 {
					stack = stack[:k]
				}
				// The frame left on top may have collapsed into a leaf or
				// divided again; walk its children only in the second case.
				top = &stack[len(stack)-1]
				top.descend = t.nodes[top.node].child != noChild && len(stack)-1 < cfg.maxDepth
				continue
			}
		}

		n := &t.nodes[top.node]
		if ahead {
			if stop(n.class) && (leaf || depth >= cfg.maxDepth) {
				hit := math.Max(ray.TX(top.ox), ray.TY(top.oy))
				if cfg.length <= 0 {
					return hit
				}
				if hit > cfg.length {
					return math.Inf(1)
				}
				if hit > 0 {
					return hit
				}
			}
			if top.descend && !leaf && depth < cfg.maxDepth {
				half := scale / 2
				first := firstChild(ray, top.ox, top.oy, half)
				stack = append(stack, rayFrame{
					index:   first,
					ox:      top.ox + float64(first&1)*half,
					oy:      top.oy + float64(first>>1)*half,
					descend: depth+1 < cfg.maxDepth,
					node:    n.child + int32(first^mask),
				})
				continue
			}
		}

		if depth == 0 {
			break
		}
		next := nextSibling(top.index, tx1, ty1)
		if next < 0 {
			stack = stack[:depth]
			stack[depth-1].descend = false
			continue
		}
		parent := stack[depth-1]
		*top = rayFrame{
			index:   next,
			ox:      parent.ox + float64(next&1)*scale,
			oy:      parent.oy + float64(next>>1)*scale,
			descend: depth < cfg.maxDepth,
			node:    t.nodes[parent.node].child + int32(next^mask),
		}
	}
	return math.Inf(1)
}

// firstChild picks the quadrant the (mirrored) ray enters first: it lands in
// the lower half when it crosses the horizontal midline before entering the
// node through its left side, and in the right half symmetrically.
func firstChild(ray geom.Ray, ox, oy, half float64) int {
	tx0, txm := ray.TX(ox), ray.TX(ox+half)
	ty0, tym := ray.TY(oy), ray.TY(oy+half)
	idx := 0
	if tym < tx0 {
		idx |= 2
	}
	if txm < ty0 {
		idx |= 1
	}
	return idx
}

// nextSibling returns the quadrant the ray moves into after leaving index
// through its right or bottom side, or -1 when it leaves the parent.
func nextSibling(index int, tRight, tBottom float64) int {
	bit := 2
	if tRight < tBottom {
		bit = 1
	}
	if index&bit != 0 {
		return -1
	}
	return index | bit
}

// footprint converts a mirrored node origin back into grid cells.
func footprint(ox, oy, scale, size float64, mask int) image.Rectangle {
	x, y := ox, oy
	if mask&1 != 0 {
		x = size - ox - scale
	}
	if mask&2 != 0 {
		y = size - oy - scale
	}
	x0, y0 := int(math.Round(x)), int(math.Round(y))
	s := int(math.Round(scale))
	return image.Rect(x0, y0, x0+s, y0+s)
}

func (t *Tree) flushFootprint(log *ChangeLog, r image.Rectangle) bool {
	r = r.Intersect(image.Rect(0, 0, t.w, t.h))
	changes := log.TakeIn(r)
	for _, c := range changes {
		t.Replace(c.X, c.Y, c.Before, c.After)
	}
	return len(changes) > 0
}

// firstDetached returns the shallowest stack depth whose frame no longer
// matches its parent's child block, or 0 when the whole stack is attached.
func (t *Tree) firstDetached(stack []rayFrame, mask int) int {
	for k := 1; k < len(stack); k++ {
		p := t.nodes[stack[k-1].node]
		if p.child == noChild || p.child+int32(stack[k].index^mask) != stack[k].node {
			return k
		}
	}
	return 0
}
