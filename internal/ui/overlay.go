//go:build ebiten

package ui

import (
	"fmt"
	"image/color"
	"math"

	"dustfall/internal/core"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

type regionProvider interface {
	WalkRegions(fn func(x, y, scale int, occluder bool))
}

type pendingProvider interface {
	EachPending(fn func(x, y int))
}

type rayTracer interface {
	TraceRay(ox, oy, dx, dy float64) float64
}

// Overlay draws optional debugging visuals on top of the base simulation.
type Overlay struct {
	sim         core.Sim
	scale       int
	showRegions bool
	showPending bool
	showRays    bool

	maskImg *ebiten.Image
	maskBuf []byte
	pixel   *ebiten.Image

	rays     int
	hits     int
	nearest  float64
	cursorX  float64
	cursorY  float64
	rayCache []float64
}

// NewOverlay constructs a new overlay instance.
func NewOverlay(sim core.Sim, scale int) *Overlay {
	if scale <= 0 {
		scale = 1
	}
	o := &Overlay{sim: sim, scale: scale, rays: 64, nearest: math.Inf(1)}
	o.pixel = ebiten.NewImage(1, 1)
	o.pixel.Fill(color.White)
	return o
}

// Update toggles layers and, when the ray probe is on, casts a fan of rays
// from the cursor.
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyT) {
		o.showRegions = !o.showRegions
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		o.showPending = !o.showPending
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		o.showRays = !o.showRays
	}
	if !o.showRays {
		return
	}
	tracer, ok := o.sim.(rayTracer)
	if !ok {
		return
	}
	mx, my := ebiten.CursorPosition()
	o.cursorX = float64(mx) / float64(o.scale)
	o.cursorY = float64(my) / float64(o.scale)
	if cap(o.rayCache) < o.rays {
		o.rayCache = make([]float64, o.rays)
	}
	o.rayCache = o.rayCache[:o.rays]
	o.hits = 0
	o.nearest = math.Inf(1)
	for i := range o.rayCache {
		a := 2 * math.Pi * float64(i) / float64(o.rays)
		d := tracer.TraceRay(o.cursorX, o.cursorY, math.Cos(a), math.Sin(a))
		o.rayCache[i] = d
		if !math.IsInf(d, 1) && d > 0 {
			o.hits++
			o.nearest = math.Min(o.nearest, d)
		}
	}
}

// Status returns a short description of the active layers for the HUD.
func (o *Overlay) Status() []string {
	lines := []string{layerLine("T regions", o.showRegions), layerLine("P pending", o.showPending), layerLine("R rays", o.showRays)}
	if o.showRays {
		near := "none"
		if !math.IsInf(o.nearest, 1) {
			near = formatFloat(0.1, o.nearest)
		}
		lines = append(lines, fmt.Sprintf("hits %d/%d nearest %s", o.hits, o.rays, near))
	}
	return lines
}

func layerLine(name string, on bool) string {
	if on {
		return name + ": on"
	}
	return name + ": off"
}

// Draw renders the overlay onto the provided screen.
func (o *Overlay) Draw(screen *ebiten.Image) {
	size := o.sim.Size()
	if size.W <= 0 || size.H <= 0 {
		return
	}
	if o.showPending {
		if provider, ok := o.sim.(pendingProvider); ok {
			o.drawPending(screen, provider, size)
		}
	}
	if o.showRegions {
		if provider, ok := o.sim.(regionProvider); ok {
			o.drawRegions(screen, provider)
		}
	}
	if o.showRays {
		o.drawRays(screen, size)
	}
}

func (o *Overlay) drawRegions(screen *ebiten.Image, provider regionProvider) {
	s := float64(o.scale)
	open := color.NRGBA{R: 70, G: 90, B: 120, A: 140}
	blocked := color.NRGBA{R: 220, G: 40, B: 40, A: 200}
	provider.WalkRegions(func(x, y, scale int, occluder bool) {
		col := open
		if occluder {
			col = blocked
		}
		x0, y0 := float64(x)*s, float64(y)*s
		x1, y1 := float64(x+scale)*s, float64(y+scale)*s
		o.drawLine(screen, x0, y0, x1, y0, 1, col)
		o.drawLine(screen, x0, y0, x0, y1, 1, col)
		o.drawLine(screen, x1, y0, x1, y1, 1, col)
		o.drawLine(screen, x0, y1, x1, y1, 1, col)
	})
}

func (o *Overlay) drawPending(screen *ebiten.Image, provider pendingProvider, size core.Size) {
	total := size.W * size.H
	if o.maskImg == nil || len(o.maskBuf) != 4*total {
		o.maskImg = ebiten.NewImage(size.W, size.H)
		o.maskBuf = make([]byte, 4*total)
	}
	clear(o.maskBuf)
	provider.EachPending(func(x, y int) {
		if x < 0 || y < 0 || x >= size.W || y >= size.H {
			return
		}
		i := 4 * (y*size.W + x)
		// premultiplied amber
		o.maskBuf[i] = 160
		o.maskBuf[i+1] = 125
		o.maskBuf[i+3] = 160
	})
	o.maskImg.WritePixels(o.maskBuf)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(o.scale), float64(o.scale))
	screen.DrawImage(o.maskImg, op)
}

func (o *Overlay) drawRays(screen *ebiten.Image, size core.Size) {
	s := float64(o.scale)
	far := math.Hypot(float64(size.W), float64(size.H))
	hit := color.NRGBA{R: 250, G: 220, B: 90, A: 220}
	miss := color.NRGBA{R: 120, G: 120, B: 140, A: 90}
	for i, d := range o.rayCache {
		a := 2 * math.Pi * float64(i) / float64(len(o.rayCache))
		col := hit
		if math.IsInf(d, 1) || d <= 0 {
			d = far
			col = miss
		}
		ex := o.cursorX + math.Cos(a)*d
		ey := o.cursorY + math.Sin(a)*d
		o.drawLine(screen, o.cursorX*s, o.cursorY*s, ex*s, ey*s, 1, col)
		if col == hit {
			o.drawPoint(screen, ex*s, ey*s, 3, col)
		}
	}
}

func (o *Overlay) drawPoint(screen *ebiten.Image, x, y, size float64, col color.NRGBA) {
	if o.pixel == nil || size <= 0 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(size, size)
	op.GeoM.Translate(x-size*0.5, y-size*0.5)
	op.ColorScale.ScaleWithColor(col)
	screen.DrawImage(o.pixel, op)
}

func (o *Overlay) drawLine(screen *ebiten.Image, x1, y1, x2, y2, thickness float64, col color.NRGBA) {
	if o.pixel == nil || thickness <= 0 {
		return
	}
	dx := x2 - x1
	dy := y2 - y1
	length := math.Hypot(dx, dy)
	if length <= 1e-4 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(length, thickness)
	op.GeoM.Translate(0, -thickness/2)
	op.GeoM.Rotate(math.Atan2(dy, dx))
	op.GeoM.Translate(x1, y1)
	op.ColorScale.ScaleWithColor(col)
	screen.DrawImage(o.pixel, op)
}
