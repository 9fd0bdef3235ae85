package dust

import (
	"image"
	"math"
	"testing"

	"dustfall/internal/geom"
	"dustfall/internal/spatial"
)

func scatter(g *Grid) {
	g.FillCircle(image.Pt(8, 6), 4, g.Brush(KindSand))
	g.FillCircle(image.Pt(22, 9), 5, g.Brush(KindLiquid))
	g.FillCircle(image.Pt(30, 20), 3, g.Brush(KindGas))
	g.FillCircle(image.Pt(14, 14), 2, g.Brush(KindGravel))
	g.FillCircle(image.Pt(3, 25), 2, g.Brush(KindSolid))
}

func TestTreeMatchesGridAfterFullFlush(t *testing.T) {
	for _, depth := range []int{0, 2, 4} {
		cfg := testConfig(37, 29)
		cfg.TreeMaxDepth = depth
		cfg.FlushLimit = 16
		g := newTestGrid(cfg)
		scatter(g)
		for tick := 0; tick < 120; tick++ {
			g.Step()
		}
		g.RebuildQuadTree(-1)
		if g.Changes().Len() != 0 {
			t.Fatalf("depth %d: full flush left %d changes", depth, g.Changes().Len())
		}

		fresh := spatial.NewTree(cfg.Width, cfg.Height, depth)
		fresh.Build(g)
		if !g.Tree().Equal(fresh) {
			t.Fatalf("depth %d: incremental tree differs from a fresh build", depth)
		}
		if depth != 0 {
			continue
		}
		for y := 0; y < cfg.Height; y++ {
			for x := 0; x < cfg.Width; x++ {
				if got, want := g.Tree().ClassAt(x, y), g.ClassAt(x, y); got != want {
					t.Fatalf("cell (%d,%d): tree class %d, grid family %d", x, y, got, want)
				}
			}
		}
	}
}

func TestStepFlushRespectsLimits(t *testing.T) {
	cfg := testConfig(32, 32)
	cfg.FlushLimit = 0
	cfg.MaxPending = 0
	g := newTestGrid(cfg)
	g.FillCircle(image.Pt(16, 10), 4, g.Brush(KindSand))
	stats := g.Step()
	if stats.Flushed != 0 {
		t.Fatalf("expected no flush with a zero limit, got %d", stats.Flushed)
	}
	if stats.Pending == 0 || stats.Pending != g.Changes().Len() {
		t.Fatalf("expected pending changes to be reported, got %d (log has %d)", stats.Pending, g.Changes().Len())
	}

	g.maxPending = 10
	stats = g.Step()
	if stats.Pending > 10 {
		t.Fatalf("expected pending changes capped at 10, got %d", stats.Pending)
	}

	g.flushLimit = -1
	stats = g.Step()
	if stats.Pending != 0 {
		t.Fatalf("expected unbounded flush to drain the log, got %d", stats.Pending)
	}
}

func TestRayFlushesPendingChangesOnItsPath(t *testing.T) {
	cfg := testConfig(32, 32)
	cfg.FloorFraction = 0
	cfg.FlushLimit = 0
	g := newTestGrid(cfg)
	for y := 0; y < cfg.Height; y++ {
		g.Set(10, y, g.NewDust(KindSolid))
	}
	if g.Tree().ClassAt(10, 5) != FamilyNothing {
		t.Fatalf("expected tree to lag behind the grid before the query")
	}

	got := g.TraceRay(geom.V(0.5, 5.5), geom.V(1, 0), solidOrSand)
	if math.Abs(got-9.5) > 1e-9 {
		t.Fatalf("expected hit at 9.5, got %v", got)
	}

	g.Set(3, 20, g.NewDust(KindSand))
	got = g.TraceRay(geom.V(0.5, 5.5), geom.V(1, 0), solidOrSand)
	if math.Abs(got-9.5) > 1e-9 {
		t.Fatalf("expected hit at 9.5 after an off-path write, got %v", got)
	}
	if _, ok := g.Changes().Get(3, 20); !ok {
		t.Fatalf("expected the off-path change to stay pending")
	}

	g.RebuildQuadTree(-1)
	fresh := spatial.NewTree(cfg.Width, cfg.Height, 0)
	fresh.Build(g)
	if !g.Tree().Equal(fresh) {
		t.Fatalf("tree diverged after lazy flushes")
	}
}

func TestRayBoundedLength(t *testing.T) {
	cfg := testConfig(16, 16)
	cfg.FloorFraction = 0.25
	g := newTestGrid(cfg)
	origin := geom.V(8.5, 0.5)
	down := geom.V(0, 1)
	if got := g.TraceRay(origin, down, solidOrSand, spatial.WithLength(5)); !math.IsInf(got, 1) {
		t.Fatalf("expected short ray to miss, got %v", got)
	}
	if got := g.TraceRay(origin, down, solidOrSand, spatial.WithLength(20)); got != 11.5 {
		t.Fatalf("expected long ray to hit at 11.5, got %v", got)
	}
	inside := geom.V(8.5, 13.5)
	if got := g.TraceRay(inside, down, solidOrSand); got > 0 {
		t.Fatalf("expected non-positive hit from inside the floor, got %v", got)
	}
	if got := g.TraceRay(inside, down, solidOrSand, spatial.WithLength(20)); !math.IsInf(got, 1) {
		t.Fatalf("expected bounded ray from inside the floor to report no hit ahead, got %v", got)
	}
}
