package dust

import (
	"image"
	"math"

	"dustfall/internal/geom"
)

const (
	// idleShort and idleLong are the idle tick counts after which a liquid or
	// gas that could not fall goes to sleep.
	idleShort = 10
	idleLong  = 50

	dispersionDecay = 0.8
	fluidDecay      = 0.9
)

// enterable reports whether a particle of kind mover may move into target.
// Empty cells are always enterable; otherwise only strictly lighter fluids
// can be displaced, and gas displaces nothing.
func enterable(mover Kind, target *Dust) bool {
	if target.Empty() {
		return true
	}
	if target.Kind != KindLiquid && target.Kind != KindGas {
		return false
	}
	return mover != KindGas && mover.density() > target.Kind.density()
}

// falls reports whether the particle at (x, y) keeps accelerating along dir
// (+1 down, -1 up). It does when the next cell is outside the grid or
// enterable, or when it holds the same family moving faster than d.
func (g *Grid) falls(d *Dust, x, y, dir int) bool {
	next, ok := g.Get(x, y+dir)
	if !ok {
		return true
	}
	if enterable(d.Kind, next) {
		return true
	}
	return next.Family() == d.Family() && d.Velocity.Y*float64(dir) < next.Velocity.Y*float64(dir)
}

// disperse searches sideways for a cell to slide into, up to d.Dispersion
// cells away, starting on a random side and alternating. A candidate cell is
// taken with probability dist/amount, or one half when the cell past it along
// dir is open too, in which case the particle drops into that cell instead.
// A side closes at the first blocked cell; once both are closed the particle
// settles at the furthest open cell on the side that closed last.
func (g *Grid) disperse(d *Dust, x, y, dir int) (int, int, bool) {
	amount := d.Dispersion
	if amount <= 0 {
		return x, y, false
	}
	sides := [2]int{-1, 1}
	if g.rng.Bool() {
		sides = [2]int{1, -1}
	}
	open := [2]bool{true, true}
	var reach [2]int
	fluid := d.Kind == KindLiquid || d.Kind == KindGas

	for dist := 1; float64(dist) <= amount; dist++ {
		for i, side := range sides {
			if !open[i] {
				continue
			}
			tx := x + side*dist
			c, ok := g.Get(tx, y)
			merge := fluid && ok && c != nil && c.Kind == d.Kind
			if !ok || !(merge || enterable(d.Kind, c)) {
				open[i] = false
				if !open[1-i] {
					if reach[i] > 0 {
						return x + side*reach[i], y, true
					}
					return x, y, false
				}
				continue
			}
			if !merge {
				reach[i] = dist
			}
			below, bok := g.Get(tx, y+dir)
			drop := !merge && bok && enterable(d.Kind, below)
			r := g.rng.Float64()
			if (drop && r < 0.5) || r < float64(dist)/amount {
				switch {
				case merge:
					return x, y, false
				case drop:
					return tx, y + dir, true
				}
				return tx, y, true
			}
		}
	}
	for i, side := range sides {
		if open[i] && reach[i] > 0 {
			return x + side*reach[i], y, true
		}
	}
	return x, y, false
}

// advance moves the vertical sub-pixel accumulator forward by the current
// velocity and returns the target row. The leftover fraction stays in
// SubPixel so slow particles still move on average at their velocity.
func (d *Dust) advance(y int) int {
	exact := float64(y) + d.Velocity.Y + d.SubPixel
	target := math.Ceil(exact)
	d.SubPixel = exact - target
	return int(target)
}

// walk steps d from (x, y) towards (tx, ty) one cell at a time and returns
// the last cell it could enter. out reports that the path left the grid;
// blocked reports that it stopped short of the target.
func (g *Grid) walk(d *Dust, x, y, tx, ty int) (nx, ny int, out, blocked bool) {
	nx, ny = x, y
	geom.WalkLine(image.Pt(x, y), image.Pt(tx, ty), func(p image.Point) bool {
		c, ok := g.Get(p.X, p.Y)
		if !ok {
			out = true
			return false
		}
		if !enterable(d.Kind, c) {
			blocked = true
			return false
		}
		nx, ny = p.X, p.Y
		return true
	})
	return nx, ny, out, blocked
}

// settle stores d back into its own cell without touching the tree or the
// display; only motion state changed.
func (g *Grid) settle(x, y int, d Dust) {
	g.cells[y*g.w+x] = d
}

func (g *Grid) stepCell(x, y int) {
	d := g.cells[y*g.w+x]
	switch d.Kind {
	case KindSolid:
		d.Active = false
		g.settle(x, y, d)
	case KindSand, KindGravel:
		g.stepGranular(x, y, d)
	case KindLiquid:
		g.stepLiquid(x, y, d)
	case KindGas:
		g.stepGas(x, y, d)
	}
}

// stepGranular moves sand and gravel: fall while the cell below gives way,
// otherwise slide sideways with a dispersion that decays every blocked tick.
// A moving grain agitates the grains it leaves behind.
func (g *Grid) stepGranular(x, y int, d Dust) {
	m := g.mats.of(d.Kind)
	nx, ny := x, y
	if g.falls(&d, x, y, 1) {
		d.Dispersion = math.Sqrt(math.Max(d.Velocity.Y, 0)) * m.DispersionFactor
		d.Velocity.Y += g.gravity * m.GravityScale
	} else {
		var moved bool
		nx, ny, moved = g.disperse(&d, x, y, 1)
		if !moved {
			d.Velocity = geom.Vec{}
			d.SubPixel = 0
			d.Dispersion = 0
		}
		d.Dispersion = math.Max(0, d.Dispersion*dispersionDecay-1)
	}

	fx, fy, out, blocked := g.walk(&d, nx, ny, nx, d.advance(ny))
	if out {
		g.Set(x, y, Dust{})
		return
	}
	if blocked {
		d.SubPixel = 0
	}
	if fx == x && fy == y {
		if d.Velocity.Y == 0 && d.Dispersion == 0 {
			d.Active = false
		}
		g.settle(x, y, d)
		return
	}
	g.move(x, y, fx, fy, d)
	g.agitate(x, y, m.WakeRadius, d.Dispersion)
}

// agitate spreads a moving grain's dispersion to the grains around the cell
// it left, scaled down by distance, and wakes them.
func (g *Grid) agitate(x, y, r int, dispersion float64) {
	g.EachNeighbor(x, y, r, func(n *Dust, _, _, distSq int) {
		if n.Kind != KindSand && n.Kind != KindGravel {
			return
		}
		n.Dispersion = math.Max(n.Dispersion, math.Max(0, dispersion-math.Sqrt(float64(distSq))))
		n.Active = true
	})
}

// stepLiquid moves water: fall like sand but keep a resting dispersion so
// pools level out. A liquid that has not moved vertically for a while goes
// to sleep instead of wandering sideways.
func (g *Grid) stepLiquid(x, y int, d Dust) {
	g.stepFluid(x, y, d, 1, nil)
}

// stepGas is a liquid falling upwards, with damped random horizontal drift
// and a capped speed.
func (g *Grid) stepGas(x, y int, d Dust) {
	g.stepFluid(x, y, d, -1, func(d *Dust, m *Material) {
		if m.Drift > 0 {
			d.Velocity.X = d.Velocity.X*fluidDecay + (g.rng.Float64()-0.5)*m.Drift
		}
		if m.MaxSpeed > 0 {
			d.Velocity = d.Velocity.ClampLen(m.MaxSpeed)
		}
	})
}

func (g *Grid) stepFluid(x, y int, d Dust, dir int, drift func(*Dust, *Material)) {
	m := g.mats.of(d.Kind)
	sleepy := d.Idle > idleShort
	nx, ny := x, y
	if g.falls(&d, x, y, dir) {
		d.Dispersion = math.Max(d.Dispersion, math.Abs(d.Velocity.Y)*m.DispersionFactor)
		d.Idle = 0
		d.Velocity.Y += g.gravity * m.GravityScale * float64(dir)
		sleepy = false
	} else {
		var moved bool
		nx, ny, moved = g.disperse(&d, x, y, dir)
		sleepy = sleepy && d.Idle > idleLong
		if !moved {
			d.Velocity = geom.Vec{}
			d.SubPixel = 0
			d.Dispersion = 0
		}
		d.Dispersion = math.Max(m.RestDispersion, math.Floor(d.Dispersion*fluidDecay)-0.5)
	}
	if drift != nil {
		drift(&d, m)
	}

	tx := nx + int(math.Round(d.Velocity.X))
	fx, fy, out, blocked := g.walk(&d, nx, ny, tx, d.advance(ny))
	if out {
		g.Set(x, y, Dust{})
		return
	}
	if blocked {
		d.SubPixel = 0
	}
	d.Idle++
	if fy != y {
		d.Idle = 0
		sleepy = false
		g.wake(x, y, m.WakeRadius)
	}
	if sleepy || (fx == x && fy == y) {
		if sleepy {
			d.Active = false
		}
		g.settle(x, y, d)
		return
	}
	g.move(x, y, fx, fy, d)
}
