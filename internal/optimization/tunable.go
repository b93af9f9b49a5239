package optimization

import (
	"errors"
	"fmt"

	"irrigation-engine/internal/model"
)

var ErrUnknownParameter = errors.New("unknown tunable parameter")

const (
	ParamDesignVelocity      = "design_velocity"
	ParamPressureVariation   = "allowed_pressure_variation"
	ParamOperatingPressure   = "operating_pressure"
	ParamIrrigationFrequency = "irrigation_frequency"
)

// candidate is one point of the search space in engineering units.
type candidate struct {
	design model.IrrigationDesignParameters
	hp     model.HydraulicParameters
}

type tunable struct {
	name          string
	lower         float64
	upper         float64
	justification string
	get           func(c *candidate) float64
	set           func(c *candidate, v float64)
}

var tunables = map[string]tunable{
	ParamDesignVelocity: {
		name:          ParamDesignVelocity,
		lower:         0.5,
		upper:         2.5,
		justification: "balances pipe sizing cost against friction and minor losses",
		get:           func(c *candidate) float64 { return c.hp.DesignVelocity },
		set:           func(c *candidate, v float64) { c.hp.DesignVelocity = v },
	},
	ParamPressureVariation: {
		name:          ParamPressureVariation,
		lower:         4,
		upper:         40,
		justification: "trades emitter cost against distribution uniformity",
		get:           func(c *candidate) float64 { return c.hp.AllowedPressureVariation },
		set:           func(c *candidate, v float64) { c.hp.AllowedPressureVariation = v },
	},
	ParamOperatingPressure: {
		name:          ParamOperatingPressure,
		lower:         0.5,
		upper:         4.0,
		justification: "lowers pumping energy while keeping emitters above their working pressure",
		get:           func(c *candidate) float64 { return c.hp.OperatingPressure },
		set:           func(c *candidate, v float64) { c.hp.OperatingPressure = v },
	},
	ParamIrrigationFrequency: {
		name:          ParamIrrigationFrequency,
		lower:         1,
		upper:         24,
		justification: "fewer, longer cycles lower the peak flow the pipe network must carry",
		get:           func(c *candidate) float64 { return c.design.IrrigationFrequency },
		set:           func(c *candidate, v float64) { c.design.IrrigationFrequency = v },
	},
}

var defaultTunables = []string{ParamDesignVelocity, ParamPressureVariation, ParamOperatingPressure}

// space maps the unit cube onto the selected tunables. Bounds are widened to contain
// the submitted value so the current design is always a feasible start.
type space struct {
	params []tunable
	lower  []float64
	upper  []float64
	base   candidate
}

func newSpace(base candidate, names []string) (*space, error) {
	if len(names) == 0 {
		names = defaultTunables
	}
	s := &space{base: base}
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		t, ok := tunables[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownParameter, name)
		}
		cur := t.get(&base)
		lo, hi := t.lower, t.upper
		if cur < lo {
			lo = cur
		}
		if cur > hi {
			hi = cur
		}
		s.params = append(s.params, t)
		s.lower = append(s.lower, lo)
		s.upper = append(s.upper, hi)
	}
	return s, nil
}

func (s *space) dim() int { return len(s.params) }

// start returns the unit-cube coordinates of the base candidate.
func (s *space) start() []float64 {
	x := make([]float64, s.dim())
	for i, t := range s.params {
		x[i] = s.normalize(i, t.get(&s.base))
	}
	return x
}

func (s *space) normalize(i int, v float64) float64 {
	span := s.upper[i] - s.lower[i]
	if span <= 0 {
		return 0
	}
	return (v - s.lower[i]) / span
}

func (s *space) decode(x []float64) candidate {
	c := s.base
	for i, t := range s.params {
		t.set(&c, s.lower[i]+clamp(x[i], 0, 1)*(s.upper[i]-s.lower[i]))
	}
	return c
}

func unitBounds(dim int) (lower, upper []float64) {
	lower = make([]float64, dim)
	upper = make([]float64, dim)
	for i := range upper {
		upper[i] = 1
	}
	return lower, upper
}
