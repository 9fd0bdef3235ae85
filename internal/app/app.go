//go:build ebiten

package app

import (
	"image"
	"image/color"
	"strconv"
	"time"

	"go.uber.org/zap"

	"dustfall/internal/core"
	"dustfall/internal/geom"
	"dustfall/internal/render"
	"dustfall/internal/ui"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const hudWidth = 280

type paletteProvider interface {
	Palette() []color.RGBA
}

type radiusProvider interface {
	BrushRadius() int
}

type summaryProvider interface {
	Summary() []string
}

var binaryPalette = []color.RGBA{{A: 255}, {R: 255, G: 255, B: 255, A: 255}}

var digitKeys = []ebiten.Key{
	ebiten.KeyDigit0, ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3, ebiten.KeyDigit4,
	ebiten.KeyDigit5, ebiten.KeyDigit6, ebiten.KeyDigit7, ebiten.KeyDigit8, ebiten.KeyDigit9,
}

// Game adapts a core simulation to the ebiten.Game interface.
type Game struct {
	sim     core.Sim
	log     *zap.Logger
	painter *render.GridPainter
	overlay *ui.Overlay
	hud     *ui.HUD
	buf     []byte

	brush     core.Brush
	materials []string
	material  int
	radius    int
	last      image.Point
	stroking  bool

	scale      int
	paused     bool
	tickOnce   bool
	familyView bool
	seed       int64
}

// New constructs a Game for the provided simulation.
func New(sim core.Sim, scale int, seed int64, log *zap.Logger) *Game {
	if log == nil {
		log = zap.NewNop()
	}
	size := sim.Size()
	g := &Game{
		sim:     sim,
		log:     log,
		painter: render.NewGridPainter(size.W, size.H),
		overlay: ui.NewOverlay(sim, scale),
		hud:     ui.NewHUD(sim, hudWidth),
		buf:     make([]byte, 4*size.W*size.H),
		scale:   scale,
		seed:    seed,
		radius:  4,
	}
	if b, ok := sim.(core.Brush); ok && len(b.Materials()) > 0 {
		g.brush = b
		g.materials = b.Materials()
		g.material = min(2, len(g.materials)-1)
	}
	if r, ok := sim.(radiusProvider); ok {
		g.radius = r.BrushRadius()
	}
	return g
}

// Reset reinitializes the simulation state with the provided seed.
func (g *Game) Reset(seed int64) {
	g.seed = seed
	g.sim.Reset(seed)
	g.tickOnce = false
	g.log.Info("reset", zap.Int64("seed", seed))
}

// Update handles per-frame logic and advances the simulation.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		g.paused = false
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		g.tickOnce = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		g.Reset(g.seed)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.Reset(time.Now().UnixNano())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF) {
		g.familyView = !g.familyView
	}
	g.updateBrush()

	g.overlay.Update()
	size := g.sim.Size()
	g.hud.SetStatus(g.status()...)
	g.hud.Update(size.W * g.scale)

	if (!g.paused) || g.tickOnce {
		g.sim.Step()
		g.tickOnce = false
	}
	return nil
}

func (g *Game) updateBrush() {
	if g.brush == nil {
		return
	}
	for i, key := range digitKeys {
		if i < len(g.materials) && inpututil.IsKeyJustPressed(key) {
			g.material = i
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		g.material = (g.material + 1) % len(g.materials)
	}
	if r, ok := g.sim.(radiusProvider); ok {
		g.radius = r.BrushRadius()
	}
	radius := g.radius
	_, wheel := ebiten.Wheel()
	switch {
	case wheel > 0, inpututil.IsKeyJustPressed(ebiten.KeyEqual):
		radius++
	case wheel < 0, inpututil.IsKeyJustPressed(ebiten.KeyMinus):
		radius = max(0, radius-1)
	}
	if radius != g.radius {
		// keep the HUD control in step with the wheel
		if setter, ok := g.sim.(core.IntParameterSetter); !ok || setter.SetIntParameter("brush_radius", radius) {
			g.radius = radius
		}
	}

	material := ""
	switch {
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		material = g.materials[g.material]
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight):
		material = g.materials[0]
	}
	mx, my := ebiten.CursorPosition()
	size := g.sim.Size()
	cur := image.Pt(mx/g.scale, my/g.scale)
	if material == "" || !cur.In(image.Rect(0, 0, size.W, size.H)) {
		g.stroking = false
		return
	}
	from := cur
	if g.stroking {
		from = g.last
	}
	for _, p := range geom.Line(from, cur) {
		if err := g.brush.PaintCircle(p.X, p.Y, g.radius, material); err != nil {
			g.log.Warn("paint failed", zap.Error(err))
			break
		}
	}
	g.last = cur
	g.stroking = true
}

func (g *Game) status() []string {
	var lines []string
	if g.brush != nil {
		lines = append(lines, "brush "+g.materials[g.material]+" r="+strconv.Itoa(g.radius))
	}
	if s, ok := g.sim.(summaryProvider); ok {
		lines = append(lines, s.Summary()...)
	}
	if g.paused {
		lines = append(lines, "paused")
	}
	return append(lines, g.overlay.Status()...)
}

// Draw renders the current simulation state.
func (g *Game) Draw(screen *ebiten.Image) {
	g.painter.Blit(screen, g.frame(), g.scale)
	g.overlay.Draw(screen)
	g.hud.Draw(screen, g.sim.Size().W*g.scale, g.scale)
}

func (g *Game) frame() []byte {
	if src, ok := g.sim.(core.PixelSource); ok && !g.familyView {
		return src.Pixels()
	}
	palette := binaryPalette
	if p, ok := g.sim.(paletteProvider); ok {
		palette = p.Palette()
	}
	render.FillPalette(g.buf, g.sim.Cells(), palette)
	return g.buf
}

// Layout returns the logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	s := g.sim.Size()
	return s.W*g.scale + g.hud.Width(), s.H * g.scale
}
