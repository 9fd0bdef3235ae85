package dust

import (
	"strconv"

	"dustfall/internal/core"
)

func (w *World) Parameters() core.ParameterSnapshot {
	c := w.cfg
	m := c.Materials
	groups := []core.ParameterGroup{
		{
			Name: "World",
			Params: []core.Parameter{
				intParam("w", "Width", c.Width),
				intParam("h", "Height", c.Height),
				int64Param("seed", "Seed", c.Seed),
				floatParam("floor_fraction", "Floor fraction", c.FloorFraction),
			},
		},
		{
			Name: "Physics",
			Params: []core.Parameter{
				floatParam("gravity", "Gravity", c.Gravity),
				floatParam("sand_dispersion_factor", "Sand dispersion factor", m.Sand.DispersionFactor),
				floatParam("gravel_dispersion_factor", "Gravel dispersion factor", m.Gravel.DispersionFactor),
				floatParam("liquid_dispersion_factor", "Liquid dispersion factor", m.Liquid.DispersionFactor),
				floatParam("liquid_rest_dispersion", "Liquid rest dispersion", m.Liquid.RestDispersion),
				floatParam("gas_rest_dispersion", "Gas rest dispersion", m.Gas.RestDispersion),
				floatParam("gas_max_speed", "Gas max speed", m.Gas.MaxSpeed),
				floatParam("gas_drift", "Gas drift", m.Gas.Drift),
			},
		},
		{
			Name: "Index",
			Params: []core.Parameter{
				intParam("tree_max_depth", "Tree max depth", w.grid.Tree().MaxDepth()),
				intParam("flush_limit", "Flush limit", c.FlushLimit),
				intParam("max_pending", "Max pending", c.MaxPending),
			},
		},
		{
			Name: "Brush",
			Params: []core.Parameter{
				intParam("brush_radius", "Brush radius", c.BrushRadius),
			},
		},
	}
	return core.ParameterSnapshot{Groups: groups}
}

// ParameterControls lists the values that can be tuned while running.
func (w *World) ParameterControls() []core.ParameterControl {
	return []core.ParameterControl{
		{Key: "gravity", Label: "Gravity", Type: core.ParamTypeFloat, Step: 0.01, Bounds: core.Within(0, 2)},
		{Key: "liquid_rest_dispersion", Label: "Liquid rest dispersion", Type: core.ParamTypeFloat, Step: 1, Bounds: core.AtLeast(0)},
		{Key: "gas_drift", Label: "Gas drift", Type: core.ParamTypeFloat, Step: 0.05, Bounds: core.AtLeast(0)},
		{Key: "flush_limit", Label: "Flush limit", Type: core.ParamTypeInt, Step: 32, Bounds: core.AtLeast(-1)},
		{Key: "brush_radius", Label: "Brush radius", Type: core.ParamTypeInt, Step: 1, Bounds: core.Within(0, 64)},
	}
}

// SetIntParameter updates an integer tunable on the live world.
func (w *World) SetIntParameter(key string, value int) bool {
	switch key {
	case "flush_limit":
		if value < -1 {
			return false
		}
		w.cfg.FlushLimit = value
		w.grid.flushLimit = value
	case "max_pending":
		if value < 0 {
			return false
		}
		w.cfg.MaxPending = value
		w.grid.maxPending = value
	case "brush_radius":
		if value < 0 {
			return false
		}
		w.cfg.BrushRadius = value
	default:
		return false
	}
	return true
}

// SetFloatParameter updates a floating point tunable on the live world.
func (w *World) SetFloatParameter(key string, value float64) bool {
	if value < 0 {
		return false
	}
	m := &w.cfg.Materials
	switch key {
	case "gravity":
		w.cfg.Gravity = value
		w.grid.gravity = value
		return true
	case "sand_dispersion_factor":
		m.Sand.DispersionFactor = value
	case "gravel_dispersion_factor":
		m.Gravel.DispersionFactor = value
	case "liquid_dispersion_factor":
		m.Liquid.DispersionFactor = value
	case "liquid_rest_dispersion":
		m.Liquid.RestDispersion = value
	case "gas_rest_dispersion":
		m.Gas.RestDispersion = value
	case "gas_max_speed":
		m.Gas.MaxSpeed = value
	case "gas_drift":
		m.Gas.Drift = value
	default:
		return false
	}
	w.grid.mats = *m
	return true
}

func intParam(key, label string, value int) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeInt,
		Value: strconv.Itoa(value),
	}
}

func int64Param(key, label string, value int64) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeInt,
		Value: strconv.FormatInt(value, 10),
	}
}

func floatParam(key, label string, value float64) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeFloat,
		Value: strconv.FormatFloat(value, 'f', -1, 64),
	}
}
