package dust

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config controls the dust world dimensions, physics and index upkeep.
type Config struct {
	Width  int   `yaml:"width"`
	Height int   `yaml:"height"`
	Seed   int64 `yaml:"seed"`

	// Gravity is the downward acceleration in cells per tick squared.
	Gravity float64 `yaml:"gravity"`
	// FloorFraction is the share of rows at the bottom filled with solid.
	FloorFraction float64 `yaml:"floor_fraction"`

	// TreeMaxDepth caps quad-tree division; 0 means single-cell resolution.
	TreeMaxDepth int `yaml:"tree_max_depth"`
	// FlushLimit is how many pending changes each tick applies to the tree.
	// A negative value applies all of them.
	FlushLimit int `yaml:"flush_limit"`
	// MaxPending bounds the change log; anything above is flushed at the end
	// of the tick. 0 disables the bound.
	MaxPending int `yaml:"max_pending"`

	BrushRadius int `yaml:"brush_radius"`

	Materials Materials `yaml:"materials"`
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		Width:         300,
		Height:        300,
		Seed:          1337,
		Gravity:       0.1,
		FloorFraction: 0.1,
		FlushLimit:    256,
		MaxPending:    1 << 16,
		BrushRadius:   10,
		Materials:     DefaultMaterials(),
	}
}

// normalized clamps values the grid cannot work with.
func (c Config) normalized() Config {
	if c.Width <= 0 {
		c.Width = 1
	}
	if c.Height <= 0 {
		c.Height = 1
	}
	if c.FloorFraction < 0 {
		c.FloorFraction = 0
	}
	if c.FloorFraction > 1 {
		c.FloorFraction = 1
	}
	if c.TreeMaxDepth < 0 {
		c.TreeMaxDepth = 0
	}
	if c.MaxPending < 0 {
		c.MaxPending = 0
	}
	if c.BrushRadius < 0 {
		c.BrushRadius = 0
	}
	return c
}

// LoadConfig reads a YAML config file on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return c, fmt.Errorf("dust config %s: %w", path, err)
	}
	return c.normalized(), nil
}

// FromMap populates the config from a string map (flag-style key/value pairs).
func FromMap(cfg map[string]string) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	if path, ok := cfg["config"]; ok && path != "" {
		if loaded, err := LoadConfig(path); err == nil {
			c = loaded
		}
	}
	c.Apply(cfg)
	return c
}

// Apply overrides fields named in cfg. Values that fail to parse or fall
// outside their valid range are ignored. It returns the keys it did not
// recognise.
func (c *Config) Apply(cfg map[string]string) []string {
	var unknown []string
	for key, v := range cfg {
		if !c.set(key, v) {
			unknown = append(unknown, key)
		}
	}
	return unknown
}

func (c *Config) set(key, v string) bool {
	m := &c.Materials
	switch key {
	case "config":
	case "w", "width":
		setInt(&c.Width, v, 1)
	case "h", "height":
		setInt(&c.Height, v, 1)
	case "seed":
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Seed = parsed
		}
	case "gravity":
		setFloat(&c.Gravity, v, 0)
	case "floor_fraction", "floor":
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= 0 && parsed <= 1 {
			c.FloorFraction = parsed
		}
	case "tree_max_depth", "depth":
		setInt(&c.TreeMaxDepth, v, 0)
	case "flush_limit", "flush":
		if parsed, err := strconv.Atoi(v); err == nil {
			c.FlushLimit = parsed
		}
	case "max_pending", "max-pending":
		setInt(&c.MaxPending, v, 0)
	case "brush_radius":
		setInt(&c.BrushRadius, v, 0)
	case "sand_dispersion_factor":
		setFloat(&m.Sand.DispersionFactor, v, 0)
	case "gravel_dispersion_factor":
		setFloat(&m.Gravel.DispersionFactor, v, 0)
	case "liquid_dispersion_factor":
		setFloat(&m.Liquid.DispersionFactor, v, 0)
	case "liquid_rest_dispersion":
		setFloat(&m.Liquid.RestDispersion, v, 0)
	case "gas_rest_dispersion":
		setFloat(&m.Gas.RestDispersion, v, 0)
	case "gas_max_speed":
		setFloat(&m.Gas.MaxSpeed, v, 0)
	case "gas_drift":
		setFloat(&m.Gas.Drift, v, 0)
	default:
		return false
	}
	return true
}

func setInt(dst *int, v string, lo int) {
	if parsed, err := strconv.Atoi(v); err == nil && parsed >= lo {
		*dst = parsed
	}
}

func setFloat(dst *float64, v string, lo float64) {
	if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= lo {
		*dst = parsed
	}
}

// Bind registers command-line flags for the common fields on fs. Defaults are
// the current field values.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.IntVar(&c.Width, "w", c.Width, "grid width in cells")
	fs.IntVar(&c.Height, "h", c.Height, "grid height in cells")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "random seed")
	fs.Float64Var(&c.Gravity, "gravity", c.Gravity, "downward acceleration per tick")
	fs.Float64Var(&c.FloorFraction, "floor", c.FloorFraction, "share of rows filled with solid floor")
	fs.IntVar(&c.TreeMaxDepth, "depth", c.TreeMaxDepth, "quad-tree max depth (0 = single cell)")
	fs.IntVar(&c.FlushLimit, "flush", c.FlushLimit, "pending changes flushed into the tree per tick (-1 = all)")
	fs.IntVar(&c.MaxPending, "max-pending", c.MaxPending, "pending change cap (0 = unbounded)")
}
