package core

import "math"

// ParamType says how a tunable's value is stepped and displayed.
type ParamType string

const (
	ParamTypeInt   ParamType = "int"
	ParamTypeFloat ParamType = "float"
)

// Parameter is one tunable value as reported by a running sim. Value is
// already formatted for display.
type Parameter struct {
	Key   string
	Label string
	Type  ParamType
	Value string
}

// ParameterGroup clusters related parameters under a HUD heading.
type ParameterGroup struct {
	Name   string
	Params []Parameter
}

// ParameterSnapshot is the full set of tunables at one point in time.
type ParameterSnapshot struct {
	Groups []ParameterGroup
}

// Find returns the parameter stored under key, searching every group.
func (s ParameterSnapshot) Find(key string) (Parameter, bool) {
	for _, g := range s.Groups {
		for _, p := range g.Params {
			if p.Key == key {
				return p, true
			}
		}
	}
	return Parameter{}, false
}

// Range bounds a control. The zero Range is unbounded.
type Range struct {
	lo, hi       float64
	hasLo, hasHi bool
}

// AtLeast bounds a control from below only.
func AtLeast(lo float64) Range {
	return Range{lo: lo, hasLo: true}
}

// Within bounds a control on both sides.
func Within(lo, hi float64) Range {
	return Range{lo: lo, hi: hi, hasLo: true, hasHi: true}
}

// Clamp pulls v into the range.
func (r Range) Clamp(v float64) float64 {
	if r.hasLo {
		v = math.Max(v, r.lo)
	}
	if r.hasHi {
		v = math.Min(v, r.hi)
	}
	return v
}

// ParameterControl is a parameter the HUD can nudge with +/- buttons.
type ParameterControl struct {
	Key    string
	Label  string
	Type   ParamType
	Step   float64
	Bounds Range
}

// Next returns v moved one step in direction (+1 or -1), clamped to Bounds.
// Integer controls step by at least one; a float control without a step
// moves by 0.05.
func (c ParameterControl) Next(v float64, direction int) float64 {
	step := c.Step
	switch {
	case c.Type == ParamTypeInt:
		step = math.Max(1, math.Round(step))
	case step <= 0:
		step = 0.05
	}
	return c.Bounds.Clamp(v + float64(direction)*step)
}

// ParameterControlsProvider is implemented by sims with live HUD controls.
type ParameterControlsProvider interface {
	ParameterControls() []ParameterControl
}

// IntParameterSetter applies an integer control change. It reports whether
// the key was recognised.
type IntParameterSetter interface {
	SetIntParameter(key string, value int) bool
}

// FloatParameterSetter applies a float control change.
type FloatParameterSetter interface {
	SetFloatParameter(key string, value float64) bool
}
