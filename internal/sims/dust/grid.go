package dust

import (
	"image"
	"image/color"
	"math"

	"dustfall/internal/core"
	"dustfall/internal/geom"
	"dustfall/internal/spatial"
)

// Painter receives the new display color whenever a cell is written.
type Painter func(x, y int, c color.RGBA)

// Grid owns every particle of the world in a fixed-size arena, together with
// the spatial tree that classifies it and the log of changes the tree has
// not absorbed yet.
type Grid struct {
	w, h  int
	cells []Dust
	count int
	frame uint64

	gravity    float64
	mats       Materials
	flushLimit int
	maxPending int

	rng   *core.RNG
	tree  *spatial.Tree
	log   *spatial.ChangeLog
	paint Painter
}

// NewGrid allocates a grid per cfg, lays down the solid floor and builds the
// spatial tree over it.
func NewGrid(cfg Config, rng *core.RNG) *Grid {
	cfg = cfg.normalized()
	if rng == nil {
		rng = core.NewRNG(cfg.Seed)
	}
	g := &Grid{
		w:          cfg.Width,
		h:          cfg.Height,
		cells:      make([]Dust, cfg.Width*cfg.Height),
		gravity:    cfg.Gravity,
		mats:       cfg.Materials,
		flushLimit: cfg.FlushLimit,
		maxPending: cfg.MaxPending,
		rng:        rng,
		log:        spatial.NewChangeLog(cfg.Width),
	}
	floor := int(math.Floor(float64(g.h) * (1 - cfg.FloorFraction)))
	for y := max(floor, 0); y < g.h; y++ {
		for x := 0; x < g.w; x++ {
			g.cells[y*g.w+x] = g.NewDust(KindSolid)
			g.count++
		}
	}
	g.tree = spatial.NewTree(g.w, g.h, cfg.TreeMaxDepth)
	g.tree.Build(g)
	return g
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.w }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.h }

// Frame returns the number of ticks stepped so far.
func (g *Grid) Frame() uint64 { return g.frame }

// Gravity returns the per-tick downward acceleration.
func (g *Grid) Gravity() float64 { return g.gravity }

// Count returns the number of non-empty cells.
func (g *Grid) Count() int { return g.count }

// Tree exposes the spatial tree. It may lag behind the grid by Changes().Len()
// cells.
func (g *Grid) Tree() *spatial.Tree { return g.tree }

// Changes exposes the pending change log.
func (g *Grid) Changes() *spatial.ChangeLog { return g.log }

// SetPainter installs the display hook. A nil painter disables painting.
func (g *Grid) SetPainter(p Painter) { g.paint = p }

// Dims implements spatial.Source.
func (g *Grid) Dims() (int, int) { return g.w, g.h }

// ClassAt implements spatial.Source; cells outside the grid are Nothing.
func (g *Grid) ClassAt(x, y int) spatial.Class {
	if !g.inBounds(x, y) {
		return FamilyNothing
	}
	return g.cells[y*g.w+x].Family()
}

func (g *Grid) inBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.w && y < g.h
}

// Get returns the particle at (x, y). ok is false outside the grid; the
// returned pointer is nil for empty cells. The pointer stays valid until the
// next write to that cell.
func (g *Grid) Get(x, y int) (*Dust, bool) {
	if !g.inBounds(x, y) {
		return nil, false
	}
	d := &g.cells[y*g.w+x]
	if d.Kind == KindEmpty {
		return nil, true
	}
	return d, true
}

// Set writes d at (x, y), records the family change, repaints the cell and
// wakes its eight neighbours. Writes outside the grid are ignored.
func (g *Grid) Set(x, y int, d Dust) {
	if !g.put(x, y, d) {
		return
	}
	g.ActivateAround(x, y)
}

func (g *Grid) put(x, y int, d Dust) bool {
	if !g.inBounds(x, y) {
		return false
	}
	i := y*g.w + x
	prev := &g.cells[i]
	before := prev.Family()
	switch {
	case prev.Empty() && !d.Empty():
		g.count++
	case !prev.Empty() && d.Empty():
		g.count--
	}
	if d.Kind == KindEmpty {
		d = Dust{}
	}
	g.cells[i] = d
	g.log.Record(x, y, before, d.Family())
	if g.paint != nil {
		g.paint(x, y, d.Color())
	}
	return true
}

// NewDust creates a particle using the grid's material tuning and RNG.
func (g *Grid) NewDust(k Kind) Dust {
	return NewDust(k, g.mats, g.rng)
}

// Brush returns a factory that paints fresh particles of kind k.
func (g *Grid) Brush(k Kind) func(x, y int) Dust {
	return func(int, int) Dust { return g.NewDust(k) }
}

// Neighbor is a non-empty cell near a query position.
type Neighbor struct {
	D      *Dust
	DistSq int
}

// Neighbors returns the non-empty cells within Chebyshev distance r of
// (x, y), excluding (x, y) itself, in row-major order.
func (g *Grid) Neighbors(x, y, r int) []Neighbor {
	var out []Neighbor
	g.EachNeighbor(x, y, r, func(d *Dust, _, _, distSq int) {
		out = append(out, Neighbor{D: d, DistSq: distSq})
	})
	return out
}

// EachNeighbor calls fn for every non-empty cell within Chebyshev distance r
// of (x, y), excluding (x, y) itself, along with its position and squared
// distance.
func (g *Grid) EachNeighbor(x, y, r int, fn func(d *Dust, nx, ny, distSq int)) {
	for ny := max(y-r, 0); ny <= min(y+r, g.h-1); ny++ {
		for nx := max(x-r, 0); nx <= min(x+r, g.w-1); nx++ {
			if nx == x && ny == y {
				continue
			}
			d := &g.cells[ny*g.w+nx]
			if d.Kind == KindEmpty {
				continue
			}
			dx, dy := nx-x, ny-y
			fn(d, nx, ny, dx*dx+dy*dy)
		}
	}
}

// ActivateAround sets the active flag on the eight neighbours of (x, y).
func (g *Grid) ActivateAround(x, y int) {
	g.EachNeighbor(x, y, 1, func(d *Dust, _, _, _ int) {
		d.Active = true
	})
}

// wake activates every particle within r of (x, y), resetting idle counters.
func (g *Grid) wake(x, y, r int) {
	g.EachNeighbor(x, y, r, func(d *Dust, _, _, _ int) {
		d.Activate()
	})
}

// FillCircle paints the disc of the given radius around center with particles
// from factory. A cell is only replaced when it is empty, the new particle is
// empty, or the families differ, so repainting a material over itself keeps
// the existing particles. Every cell of the disc wakes its neighbours. A zero
// radius writes the center cell unconditionally.
func (g *Grid) FillCircle(center image.Point, radius int, factory func(x, y int) Dust) {
	if radius < 0 {
		return
	}
	if radius == 0 {
		g.Set(center.X, center.Y, factory(center.X, center.Y))
		return
	}
	r2 := radius * radius
	for y := max(center.Y-radius, 0); y <= min(center.Y+radius, g.h-1); y++ {
		for x := max(center.X-radius, 0); x <= min(center.X+radius, g.w-1); x++ {
			dx, dy := x-center.X, y-center.Y
			if dx*dx+dy*dy > r2 {
				continue
			}
			next := factory(x, y)
			prev := &g.cells[y*g.w+x]
			if prev.Empty() || next.Empty() || prev.Family() != next.Family() {
				g.put(x, y, next)
			}
			g.ActivateAround(x, y)
		}
	}
}

// move swaps the mover d at (x, y) with whatever occupies (nx, ny). The
// displaced particle is woken.
func (g *Grid) move(x, y, nx, ny int, d Dust) {
	displaced := g.cells[ny*g.w+nx]
	if !displaced.Empty() {
		displaced.Activate()
	}
	g.Set(x, y, displaced)
	g.Set(nx, ny, d)
}

// RebuildQuadTree applies up to limit pending changes to the tree. A negative
// limit applies all of them. It returns the number applied.
func (g *Grid) RebuildQuadTree(limit int) int {
	return g.tree.Flush(g.log, limit)
}

// TraceRay casts a ray through the spatial tree, applying pending changes on
// the way so the answer reflects the current grid. See spatial.Tree.TraceRay.
func (g *Grid) TraceRay(origin, dir geom.Vec, stop spatial.Predicate, opts ...spatial.RayOption) float64 {
	opts = append(opts, spatial.WithPending(g.log))
	return g.tree.TraceRay(origin, dir, stop, opts...)
}

// RenderAll repaints every cell through the painter.
func (g *Grid) RenderAll() {
	if g.paint == nil {
		return
	}
	for y := 0; y < g.h; y++ {
		for x := 0; x < g.w; x++ {
			g.paint(x, y, g.cells[y*g.w+x].Color())
		}
	}
}
