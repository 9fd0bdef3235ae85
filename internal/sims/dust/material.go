package dust

import (
	"errors"
	"fmt"
	"image/color"
	"strings"

	"dustfall/internal/spatial"
)

// Kind is the material variant of a cell. The zero Kind is empty space.
type Kind uint8

const (
	KindEmpty Kind = iota
	KindSolid
	KindSand
	KindGravel
	KindLiquid
	KindGas
)

// Family is the coarse classification the spatial tree counts.
type Family = spatial.Class

const (
	FamilyNothing Family = spatial.Nothing
	FamilySolid   Family = 1
	FamilySand    Family = 2
	FamilyLiquid  Family = 3
	FamilyGas     Family = 4
)

// ErrUnknownMaterial is returned when a material name cannot be parsed.
var ErrUnknownMaterial = errors.New("unknown material")

var kindNames = [...]string{
	KindEmpty:  "none",
	KindSolid:  "solid",
	KindSand:   "sand",
	KindGravel: "gravel",
	KindLiquid: "water",
	KindGas:    "gas",
}

// Kinds lists every paintable kind in selector order.
func Kinds() []Kind {
	return []Kind{KindEmpty, KindSolid, KindSand, KindGravel, KindLiquid, KindGas}
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind maps a material name to its Kind.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "none", "empty", "erase":
		return KindEmpty, nil
	case "solid", "wall":
		return KindSolid, nil
	case "sand":
		return KindSand, nil
	case "gravel":
		return KindGravel, nil
	case "water", "liquid":
		return KindLiquid, nil
	case "gas", "steam":
		return KindGas, nil
	}
	return KindEmpty, fmt.Errorf("%w: %q", ErrUnknownMaterial, name)
}

// Family returns the tree classification of the kind. Gravel counts as sand.
func (k Kind) Family() Family {
	switch k {
	case KindSolid:
		return FamilySolid
	case KindSand, KindGravel:
		return FamilySand
	case KindLiquid:
		return FamilyLiquid
	case KindGas:
		return FamilyGas
	}
	return FamilyNothing
}

// density orders the moving materials; a mover may displace strictly lighter
// ones.
func (k Kind) density() int {
	switch k {
	case KindGas:
		return 1
	case KindLiquid:
		return 2
	case KindSand, KindGravel:
		return 3
	}
	return 0
}

func (k Kind) baseColor() color.RGBA {
	switch k {
	case KindSolid:
		return color.RGBA{R: 100, G: 100, B: 100, A: 255}
	case KindSand:
		return color.RGBA{R: 230, G: 220, B: 10, A: 255}
	case KindGravel:
		return color.RGBA{R: 180, G: 180, B: 120, A: 255}
	case KindLiquid:
		return color.RGBA{R: 40, G: 67, B: 250, A: 255}
	case KindGas:
		return color.RGBA{R: 180, G: 30, B: 170, A: 255}
	}
	return color.RGBA{}
}

// Material holds the tunables of one moving material.
type Material struct {
	// DispersionFactor converts fall speed into sideways spread.
	DispersionFactor float64 `yaml:"dispersion_factor"`
	// InitialDispersion is the dispersion a freshly painted particle starts with.
	InitialDispersion float64 `yaml:"initial_dispersion"`
	// RestDispersion is the floor dispersion decays to after a blocked tick.
	RestDispersion float64 `yaml:"rest_dispersion"`
	// WakeRadius is how far a move wakes neighbours.
	WakeRadius int `yaml:"wake_radius"`
	// GravityScale multiplies world gravity.
	GravityScale float64 `yaml:"gravity_scale"`
	// MaxSpeed clamps the velocity length; 0 disables the clamp.
	MaxSpeed float64 `yaml:"max_speed"`
	// Drift is the horizontal jitter added per tick.
	Drift float64 `yaml:"drift"`
}

// Materials groups the per-kind tunables.
type Materials struct {
	Sand   Material `yaml:"sand"`
	Gravel Material `yaml:"gravel"`
	Liquid Material `yaml:"liquid"`
	Gas    Material `yaml:"gas"`
}

// DefaultMaterials returns the stock material tuning.
func DefaultMaterials() Materials {
	return Materials{
		Sand:   Material{DispersionFactor: 10, WakeRadius: 1, GravityScale: 1},
		Gravel: Material{DispersionFactor: 14, InitialDispersion: 1, WakeRadius: 1, GravityScale: 1},
		Liquid: Material{DispersionFactor: 5, RestDispersion: 20, WakeRadius: 2, GravityScale: 1},
		Gas: Material{
			DispersionFactor:  5,
			InitialDispersion: 1,
			RestDispersion:    20,
			WakeRadius:        2,
			GravityScale:      0.5,
			MaxSpeed:          1,
			Drift:             0.3,
		},
	}
}

func (m *Materials) of(k Kind) *Material {
	switch k {
	case KindSand:
		return &m.Sand
	case KindGravel:
		return &m.Gravel
	case KindLiquid:
		return &m.Liquid
	case KindGas:
		return &m.Gas
	}
	return nil
}
