package spatial

import (
	"math"
	"math/rand/v2"
	"testing"

	"dustfall/internal/geom"
)

var stopSolid = Any(1)

// firstStop scans a row or column from (x, y) in direction (dx, dy) and
// returns the distance from the cell center to the entry edge of the first
// stopping cell, or +Inf.
func firstStop(g *classGrid, stop Predicate, x, y, dx, dy int) float64 {
	for i := 0; ; i++ {
		cx, cy := x+dx*i, y+dy*i
		if cx < 0 || cy < 0 || cx >= g.w || cy >= g.h {
			return math.Inf(1)
		}
		if stop(g.ClassAt(cx, cy)) {
			return float64(i) - 0.5
		}
	}
}

func randomGrid(rng *rand.Rand, w, h int, density float64) *classGrid {
	g := newClassGrid(w, h)
	for i := range g.cells {
		if rng.Float64() < density {
			g.cells[i] = Class(1 + rng.IntN(3))
		}
	}
	return g
}

var axes = [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

func TestTraceRayEmptyTree(t *testing.T) {
	tr := NewTree(20, 13, 0)
	tr.Build(newClassGrid(20, 13))
	rays := [][4]float64{
		{0.5, 0.5, 1, 0},
		{10, 6, -1, -1},
		{-3, -3, 1, 1},
		{19.5, 12.5, -0.2, 1},
		{5, 5, 0, -1},
	}
	for _, r := range rays {
		if got := tr.TraceRay(geom.V(r[0], r[1]), geom.V(r[2], r[3]), stopSolid); !math.IsInf(got, 1) {
			t.Fatalf("ray %v hit %v in an empty tree", r, got)
		}
	}
}

func TestTraceRayZeroDirection(t *testing.T) {
	g := newClassGrid(4, 4)
	for i := range g.cells {
		g.cells[i] = 1
	}
	tr := NewTree(4, 4, 0)
	tr.Build(g)
	if got := tr.TraceRay(geom.V(1, 1), geom.Vec{}, stopSolid); !math.IsInf(got, 1) {
		t.Fatalf("expected zero direction to report no hit, got %v", got)
	}
}

func TestTraceRayMatchesScan(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	g := randomGrid(rng, 29, 21, 0.08)
	tr := NewTree(g.w, g.h, 0)
	tr.Build(g)
	for trial := 0; trial < 300; trial++ {
		x, y := rng.IntN(g.w), rng.IntN(g.h)
		if stopSolid(g.ClassAt(x, y)) {
			continue
		}
		ax := axes[rng.IntN(len(axes))]
		want := firstStop(g, stopSolid, x, y, ax[0], ax[1])
		got := tr.TraceRay(geom.V(float64(x)+0.5, float64(y)+0.5), geom.V(float64(ax[0]), float64(ax[1])), stopSolid)
		if got != want && math.Abs(got-want) > 1e-9 {
			t.Fatalf("ray from (%d,%d) along %v: got %v want %v", x, y, ax, got, want)
		}
	}
}

func TestTraceRayAppliesPendingChanges(t *testing.T) {
	rng := rand.New(rand.NewPCG(11, 12))
	g := randomGrid(rng, 32, 32, 0.05)
	l := NewChangeLog(g.w)
	tr := NewTree(g.w, g.h, 0)
	tr.Build(g)

	for round := 0; round < 40; round++ {
		for i := 0; i < 30; i++ {
			g.set(l, rng.IntN(g.w), rng.IntN(g.h), Class(rng.IntN(3)))
		}
		// Clear a block so some divided nodes collapse while a ray is in them.
		bx, by := rng.IntN(g.w-8), rng.IntN(g.h-8)
		for y := by; y < by+8; y++ {
			for x := bx; x < bx+8; x++ {
				g.set(l, x, y, Nothing)
			}
		}
		for trial := 0; trial < 10; trial++ {
			x, y := rng.IntN(g.w), rng.IntN(g.h)
			if stopSolid(g.ClassAt(x, y)) {
				continue
			}
			ax := axes[rng.IntN(len(axes))]
			want := firstStop(g, stopSolid, x, y, ax[0], ax[1])
			got := tr.TraceRay(geom.V(float64(x)+0.5, float64(y)+0.5), geom.V(float64(ax[0]), float64(ax[1])), stopSolid, WithPending(l))
			if got != want && math.Abs(got-want) > 1e-9 {
				t.Fatalf("round %d ray from (%d,%d) along %v: got %v want %v", round, x, y, ax, got, want)
			}
		}
	}

	tr.Flush(l, -1)
	fresh := NewTree(g.w, g.h, 0)
	fresh.Build(g)
	if !tr.Equal(fresh) {
		t.Fatalf("tree diverged after lazy flushes")
	}
}

func TestTraceRayWalksAncestorDividedAgain(t *testing.T) {
	g := newClassGrid(4, 4)
	g.cells[0] = 1
	l := NewChangeLog(g.w)
	tr := NewTree(g.w, g.h, 0)
	tr.Build(g)

	// Emptying (0,0) collapses the whole tree while the ray sits in that
	// leaf; flushing the root footprint then divides it again for (1,0).
	g.set(l, 0, 0, Nothing)
	g.set(l, 1, 0, 1)

	got := tr.TraceRay(geom.V(0.5, 0.5), geom.V(1, 0), stopSolid, WithPending(l))
	if math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("expected hit at 0.5 after the root divided again, got %v", got)
	}
	if l.Len() != 0 {
		t.Fatalf("expected every pending change on the path to be applied, %d left", l.Len())
	}
	fresh := NewTree(g.w, g.h, 0)
	fresh.Build(g)
	if !tr.Equal(fresh) {
		t.Fatalf("tree diverged from a fresh build")
	}
	if eager := fresh.TraceRay(geom.V(0.5, 0.5), geom.V(1, 0), stopSolid); eager != got {
		t.Fatalf("lazy hit %v differs from fresh tree hit %v", got, eager)
	}
}

func TestTraceRayDiagonal(t *testing.T) {
	g := newClassGrid(16, 16)
	g.cells[10*16+10] = 1
	tr := NewTree(16, 16, 0)
	tr.Build(g)
	got := tr.TraceRay(geom.V(0, 0), geom.V(1, 1), stopSolid)
	want := 10 * math.Sqrt2
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected diagonal hit at %v, got %v", want, got)
	}
	back := tr.TraceRay(geom.V(16, 16), geom.V(-1, -1), stopSolid)
	if math.Abs(back-5*math.Sqrt2) > 1e-9 {
		t.Fatalf("expected mirrored diagonal hit at %v, got %v", 5*math.Sqrt2, back)
	}
}

func TestTraceRayMaxDepthUsesMajority(t *testing.T) {
	g := newClassGrid(8, 8)
	for y := 4; y < 8; y++ {
		for x := 4; x < 8; x++ {
			if x != 7 || y != 7 {
				g.cells[y*8+x] = 1
			}
		}
	}
	tr := NewTree(8, 8, 0)
	tr.Build(g)
	origin, dir := geom.V(7.5, 0.5), geom.V(0, 1)
	if got := tr.TraceRay(origin, dir, stopSolid); math.Abs(got-3.5) > 1e-9 {
		t.Fatalf("expected full depth hit at 3.5, got %v", got)
	}
	if got := tr.TraceRay(geom.V(7.5, 6.5), dir, stopSolid); got > 0 {
		t.Fatalf("expected origin inside a stopping cell column, got %v", got)
	}

	sparse := newClassGrid(8, 8)
	sparse.cells[5*8+5] = 1
	tr.Build(sparse)
	if got := tr.TraceRay(geom.V(5.5, 0.5), dir, stopSolid); math.Abs(got-4.5) > 1e-9 {
		t.Fatalf("expected full depth hit at 4.5, got %v", got)
	}
	if got := tr.TraceRay(geom.V(5.5, 0.5), dir, stopSolid, WithMaxDepth(1)); !math.IsInf(got, 1) {
		t.Fatalf("expected a quadrant dominated by Nothing to let the coarse ray through, got %v", got)
	}
}
