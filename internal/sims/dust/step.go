package dust

// StepStats summarises one tick.
type StepStats struct {
	Frame     uint64
	Active    int
	Particles int
	Flushed   int
	Pending   int
}

// Step advances the world one tick. Rows are swept bottom to top so a falling
// particle is never revisited below; columns alternate direction every frame.
// Each particle is stepped at most once per frame even when it moves into a
// cell the sweep has not reached yet. Afterwards up to FlushLimit pending
// changes are applied to the tree, plus whatever exceeds MaxPending.
func (g *Grid) Step() StepStats {
	g.frame++
	ltr := g.frame%2 == 0
	active := 0
	for y := g.h - 1; y >= 0; y-- {
		row := g.cells[y*g.w : (y+1)*g.w]
		for i := range row {
			x := i
			if !ltr {
				x = g.w - 1 - i
			}
			d := &row[x]
			if d.Kind == KindEmpty || !d.Active || d.stepped == g.frame {
				continue
			}
			d.stepped = g.frame
			active++
			g.stepCell(x, y)
		}
	}

	flushed := g.tree.Flush(g.log, g.flushLimit)
	if g.maxPending > 0 && g.log.Len() > g.maxPending {
		flushed += g.tree.Flush(g.log, g.log.Len()-g.maxPending)
	}
	return StepStats{
		Frame:     g.frame,
		Active:    active,
		Particles: g.count,
		Flushed:   flushed,
		Pending:   g.log.Len(),
	}
}
