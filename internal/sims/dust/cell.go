package dust

import (
	"image/color"

	"dustfall/internal/core"
	"dustfall/internal/geom"
)

// Dust is the content of one grid cell. The zero value is an empty cell.
// A Dust value lives in exactly one slot of the grid arena; moving a particle
// copies it into the destination slot and writes the displaced value back.
type Dust struct {
	Kind   Kind
	Noise  float64
	Active bool

	// Velocity in cells per tick; +Y points down.
	Velocity geom.Vec
	// SubPixel carries the fractional vertical motion left over from the last
	// tick. It is always <= 0.
	SubPixel float64
	// Dispersion is how many cells sideways the particle may search.
	Dispersion float64
	// Idle counts ticks since the last vertical move (liquid and gas).
	Idle int

	stepped uint64
}

// NewDust creates a particle of kind k with fresh per-particle noise.
func NewDust(k Kind, m Materials, rng *core.RNG) Dust {
	if k == KindEmpty {
		return Dust{}
	}
	d := Dust{Kind: k, Noise: rng.Float64(), Active: k != KindSolid}
	if mat := m.of(k); mat != nil {
		d.Dispersion = mat.InitialDispersion
	}
	return d
}

// Empty reports whether the cell holds no particle.
func (d *Dust) Empty() bool { return d == nil || d.Kind == KindEmpty }

// Family returns the spatial classification of the cell.
func (d *Dust) Family() Family {
	if d == nil {
		return FamilyNothing
	}
	return d.Kind.Family()
}

// Activate wakes the particle. Liquids and gases also restart their idle
// count so they do not fall asleep right after being disturbed.
func (d *Dust) Activate() {
	d.Active = true
	if d.Kind == KindLiquid || d.Kind == KindGas {
		d.Idle = 0
	}
}

// Color returns the display color: the material color darkened by a fixed
// per-particle factor in (0.8, 1].
func (d *Dust) Color() color.RGBA {
	if d.Empty() {
		return color.RGBA{}
	}
	c := d.Kind.baseColor()
	alpha := 1 - d.Noise*0.2
	return color.RGBA{
		R: uint8(float64(c.R) * alpha),
		G: uint8(float64(c.G) * alpha),
		B: uint8(float64(c.B) * alpha),
		A: 255,
	}
}

// Render hands the display color to setColor.
func (d *Dust) Render(setColor func(color.RGBA)) {
	setColor(d.Color())
}
