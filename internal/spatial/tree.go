package spatial

import "math/bits"

// node is one square region. Children live in the arena as a block of four
// consecutive nodes ordered top-left, top-right, bottom-left, bottom-right.
type node struct {
	counts [MaxClasses]int32
	class  Class
	kinds  uint8
	child  int32
}

const noChild int32 = -1

func (n *node) reset() {
	*n = node{child: noChild}
}

func (n *node) add(c Class, delta int32) {
	before := n.counts[c]
	after := before + delta
	n.counts[c] = after
	switch {
	case before <= 0 && after > 0:
		n.kinds++
	case before > 0 && after <= 0:
		n.kinds--
	}
}

// settle recomputes the dominant class. Ties go to the lower class value.
func (n *node) settle() {
	best := Class(0)
	for c := 1; c < MaxClasses; c++ {
		if n.counts[c] > n.counts[best] {
			best = Class(c)
		}
	}
	n.class = best
}

// Tree is a region quad-tree over a w x h grid. The root covers the smallest
// power-of-two square containing the grid, anchored at (0, 0). Nodes holding
// a single class are never divided.
type Tree struct {
	nodes []node
	free  []int32
	root  int32

	w, h     int
	scale    int
	maxDepth int
}

// NewTree creates an empty tree for a w x h grid. maxDepth <= 0 or a depth
// beyond single-cell resolution selects single-cell resolution.
func NewTree(w, h, maxDepth int) *Tree {
	side := max(w, h, 1)
	scale := 1
	if side > 1 {
		scale = 1 << bits.Len(uint(side-1))
	}
	full := bits.TrailingZeros(uint(scale))
	if maxDepth <= 0 || maxDepth > full {
		maxDepth = full
	}
	t := &Tree{w: w, h: h, scale: scale, maxDepth: maxDepth}
	t.nodes = append(t.nodes, node{child: noChild})
	t.nodes[0].counts[Nothing] = int32(scale * scale)
	t.nodes[0].kinds = 1
	return t
}

// Scale returns the side length of the root region.
func (t *Tree) Scale() int { return t.scale }

// MaxDepth returns the depth at which nodes stop dividing.
func (t *Tree) MaxDepth() int { return t.maxDepth }

// Nodes reports how many nodes are currently attached to the tree.
func (t *Tree) Nodes() int { return len(t.nodes) - 4*len(t.free) }

// Build classifies src from scratch, discarding the previous structure.
func (t *Tree) Build(src Source) {
	t.nodes = t.nodes[:0]
	t.free = t.free[:0]
	t.nodes = append(t.nodes, node{child: noChild})
	t.root = 0
	t.build(src, t.root, 0, 0, t.scale, 0)
}

func (t *Tree) build(src Source, id int32, ox, oy, scale, depth int) {
	if ox >= t.w || oy >= t.h {
		n := &t.nodes[id]
		n.reset()
		n.add(Nothing, int32(scale*scale))
		n.class = Nothing
		return
	}
	if depth >= t.maxDepth || scale == 1 {
		n := &t.nodes[id]
		n.reset()
		for y := oy; y < oy+scale; y++ {
			for x := ox; x < ox+scale; x++ {
				c := Nothing
				if x < t.w && y < t.h {
					c = src.ClassAt(x, y)
				}
				n.add(c, 1)
			}
		}
		n.settle()
		return
	}

	first := t.allocChildren()
	half := scale / 2
	for i := int32(0); i < 4; i++ {
		t.build(src, first+i, ox+int(i&1)*half, oy+int(i>>1)*half, half, depth+1)
	}

	n := &t.nodes[id]
	n.reset()
	for i := int32(0); i < 4; i++ {
		ch := &t.nodes[first+i]
		for c, v := range ch.counts {
			if v != 0 {
				n.add(Class(c), v)
			}
		}
	}
	n.settle()
	if n.kinds == 1 {
		t.freeChildren(first)
		return
	}
	n.child = first
}

// Replace moves one cell at (x, y) from class from to class to, updating the
// path from the root to the leaf that holds it. Nodes that become uniform drop
// their children; uniform nodes that gain a second class divide, seeding the
// four children with their former class.
func (t *Tree) Replace(x, y int, from, to Class) {
	if from == to || x < 0 || y < 0 || x >= t.scale || y >= t.scale {
		return
	}
	id := t.root
	ox, oy, scale, depth := 0, 0, t.scale, 0
	for {
		n := &t.nodes[id]
		former := n.class
		n.add(from, -1)
		n.add(to, 1)
		n.settle()
		if n.kinds <= 1 {
			if n.child != noChild {
				first := n.child
				n.child = noChild
				t.freeChildren(first)
			}
			return
		}
		if n.child == noChild {
			if depth >= t.maxDepth || scale == 1 {
				return
			}
			first := t.allocChildren()
			seed := int32((scale / 2) * (scale / 2))
			for i := int32(0); i < 4; i++ {
				ch := &t.nodes[first+i]
				ch.add(former, seed)
				ch.class = former
			}
			t.nodes[id].child = first
		}

		half := scale / 2
		dx, dy := 0, 0
		if x >= ox+half {
			dx = 1
		}
		if y >= oy+half {
			dy = 1
		}
		id = t.nodes[id].child + int32(dx+2*dy)
		ox += dx * half
		oy += dy * half
		scale = half
		depth++
	}
}

// Flush drains up to limit pending changes from log into the tree, in log
// order. A negative limit drains everything. It returns the number applied.
func (t *Tree) Flush(log *ChangeLog, limit int) int {
	return log.Drain(limit, func(c Change) {
		t.Replace(c.X, c.Y, c.Before, c.After)
	})
}

// ClassAt returns the classification of the deepest node containing (x, y).
func (t *Tree) ClassAt(x, y int) Class {
	id := t.root
	ox, oy, scale := 0, 0, t.scale
	for t.nodes[id].child != noChild {
		half := scale / 2
		dx, dy := 0, 0
		if x >= ox+half {
			dx = 1
		}
		if y >= oy+half {
			dy = 1
		}
		id = t.nodes[id].child + int32(dx+2*dy)
		ox += dx * half
		oy += dy * half
		scale = half
	}
	return t.nodes[id].class
}

// Region describes one node during Walk.
type Region struct {
	X, Y, Scale int
	Depth       int
	Class       Class
	Divided     bool
}

// Walk visits every attached node depth first, parents before children.
// Returning false from fn skips that node's children.
func (t *Tree) Walk(fn func(Region) bool) {
	t.walk(t.root, 0, 0, t.scale, 0, fn)
}

func (t *Tree) walk(id int32, ox, oy, scale, depth int, fn func(Region) bool) {
	n := t.nodes[id]
	if !fn(Region{X: ox, Y: oy, Scale: scale, Depth: depth, Class: n.class, Divided: n.child != noChild}) {
		return
	}
	if n.child == noChild {
		return
	}
	half := scale / 2
	for i := int32(0); i < 4; i++ {
		t.walk(n.child+i, ox+int(i&1)*half, oy+int(i>>1)*half, half, depth+1, fn)
	}
}

// Equal reports whether both trees have the same shape, classes and counts.
func (t *Tree) Equal(o *Tree) bool {
	if t.scale != o.scale || t.maxDepth != o.maxDepth {
		return false
	}
	return t.equal(t.root, o, o.root)
}

func (t *Tree) equal(id int32, o *Tree, oid int32) bool {
	a, b := t.nodes[id], o.nodes[oid]
	if a.class != b.class || a.counts != b.counts {
		return false
	}
	if (a.child == noChild) != (b.child == noChild) {
		return false
	}
	if a.child == noChild {
		return true
	}
	for i := int32(0); i < 4; i++ {
		if !t.equal(a.child+i, o, b.child+i) {
			return false
		}
	}
	return true
}

func (t *Tree) allocChildren() int32 {
	if n := len(t.free); n > 0 {
		first := t.free[n-1]
		t.free = t.free[:n-1]
		for i := int32(0); i < 4; i++ {
			t.nodes[first+i].reset()
		}
		return first
	}
	first := int32(len(t.nodes))
	for i := 0; i < 4; i++ {
		t.nodes = append(t.nodes, node{child: noChild})
	}
	return first
}

func (t *Tree) freeChildren(first int32) {
	for i := int32(0); i < 4; i++ {
		if c := t.nodes[first+i].child; c != noChild {
			t.nodes[first+i].child = noChild
			t.freeChildren(c)
		}
	}
	t.free = append(t.free, first)
}
