package dust

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"go.uber.org/zap"

	"dustfall/internal/core"
	"dustfall/internal/geom"
	"dustfall/internal/render"
	"dustfall/internal/spatial"
)

// Option customises a World.
type Option func(*World)

// WithLogger routes world logging to l.
func WithLogger(l *zap.Logger) Option {
	return func(w *World) {
		if l != nil {
			w.log = l
		}
	}
}

// World adapts a Grid to the core.Sim contract and keeps an RGBA frame that
// is repainted cell by cell as the grid changes.
type World struct {
	cfg Config
	log *zap.Logger

	grid    *Grid
	display *core.ByteGrid
	pixels  []byte
	stats   StepStats
}

// New returns a dust world with the provided dimensions using defaults.
func New(w, h int) *World {
	cfg := DefaultConfig()
	cfg.Width = w
	cfg.Height = h
	return NewWithConfig(cfg)
}

// NewWithConfig returns a dust world configured from the provided options.
func NewWithConfig(cfg Config, opts ...Option) *World {
	cfg = cfg.normalized()
	w := &World{
		cfg:     cfg,
		log:     zap.NewNop(),
		display: core.NewByteGrid(cfg.Width, cfg.Height),
		pixels:  make([]byte, cfg.Width*cfg.Height*4),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.log = w.log.With(zap.String("sim", w.Name()))
	w.Reset(cfg.Seed)
	return w
}

// Name returns the simulation identifier.
func (w *World) Name() string { return "dust" }

// Size reports the grid dimensions.
func (w *World) Size() core.Size { return core.Size{W: w.cfg.Width, H: w.cfg.Height} }

// Config returns the active configuration.
func (w *World) Config() Config { return w.cfg }

// Grid exposes the underlying grid.
func (w *World) Grid() *Grid { return w.grid }

// LastStats returns the statistics of the most recent Step.
func (w *World) LastStats() StepStats { return w.stats }

// Summary describes the last tick in a few short lines.
func (w *World) Summary() []string {
	s := w.stats
	return []string{
		fmt.Sprintf("frame %d", s.Frame),
		fmt.Sprintf("particles %d active %d", s.Particles, s.Active),
		fmt.Sprintf("pending %d nodes %d", s.Pending, w.grid.Tree().Nodes()),
	}
}

// Pixels exposes the RGBA frame buffer.
func (w *World) Pixels() []byte { return w.pixels }

// Cells returns the material family of every cell.
func (w *World) Cells() []uint8 {
	cells := w.display.Cells()
	for i := range w.grid.cells {
		cells[i] = uint8(w.grid.cells[i].Family())
	}
	return cells
}

// Reset rebuilds the grid with its floor. A zero seed keeps the configured one.
func (w *World) Reset(seed int64) {
	if seed == 0 {
		seed = w.cfg.Seed
	}
	cfg := w.cfg
	cfg.Seed = seed
	w.grid = NewGrid(cfg, core.NewRNG(seed))
	w.grid.SetPainter(w.paint)
	clear(w.pixels)
	w.grid.RenderAll()
	w.stats = StepStats{Particles: w.grid.Count(), Pending: w.grid.Changes().Len()}
	w.log.Info("world reset",
		zap.Int64("seed", seed),
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height),
		zap.Int("particles", w.grid.Count()),
		zap.Int("tree_nodes", w.grid.Tree().Nodes()),
	)
}

// Step advances the grid one tick.
func (w *World) Step() {
	start := time.Now()
	w.stats = w.grid.Step()
	if ce := w.log.Check(zap.DebugLevel, "tick"); ce != nil {
		ce.Write(
			zap.Uint64("frame", w.stats.Frame),
			zap.Int("active", w.stats.Active),
			zap.Int("particles", w.stats.Particles),
			zap.Int("flushed", w.stats.Flushed),
			zap.Int("pending", w.stats.Pending),
			zap.Duration("took", time.Since(start)),
		)
	}
}

func (w *World) paint(x, y int, c color.RGBA) {
	render.PutPixel(w.pixels, w.cfg.Width, x, y, c)
}

// Paint fills a disc of kind k around (x, y).
func (w *World) Paint(x, y, radius int, k Kind) {
	w.grid.FillCircle(image.Pt(x, y), radius, w.grid.Brush(k))
}

// Materials lists the paintable material names in selector order.
func (w *World) Materials() []string {
	kinds := Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return names
}

// PaintCircle paints the named material. It implements core.Brush.
func (w *World) PaintCircle(x, y, radius int, material string) error {
	k, err := ParseKind(material)
	if err != nil {
		return fmt.Errorf("paint at (%d,%d): %w", x, y, err)
	}
	w.Paint(x, y, radius, k)
	return nil
}

// BrushRadius returns the configured default brush radius.
func (w *World) BrushRadius() int { return w.cfg.BrushRadius }

// TraceRay casts a ray from (ox, oy) along (dx, dy) and returns the distance
// to the first solid or sand region, or +Inf.
func (w *World) TraceRay(ox, oy, dx, dy float64) float64 {
	return w.grid.TraceRay(geom.V(ox, oy), geom.V(dx, dy), spatial.Any(FamilySolid, FamilySand))
}

// WalkRegions visits the undivided regions of the spatial tree that overlap
// the grid. occluder reports whether the region counts as solid or sand.
func (w *World) WalkRegions(fn func(x, y, scale int, occluder bool)) {
	bounds := image.Rect(0, 0, w.cfg.Width, w.cfg.Height)
	w.grid.Tree().Walk(func(r spatial.Region) bool {
		if !image.Rect(r.X, r.Y, r.X+r.Scale, r.Y+r.Scale).Overlaps(bounds) {
			return false
		}
		if !r.Divided {
			fn(r.X, r.Y, r.Scale, r.Class == FamilySolid || r.Class == FamilySand)
		}
		return true
	})
}

// EachPending visits the cells whose family change has not reached the
// spatial tree yet.
func (w *World) EachPending(fn func(x, y int)) {
	w.grid.Changes().Each(func(c spatial.Change) { fn(c.X, c.Y) })
}

func init() {
	core.Register("dust", func(cfg map[string]string) core.Sim {
		c := FromMap(cfg)
		return NewWithConfig(c)
	})
}
