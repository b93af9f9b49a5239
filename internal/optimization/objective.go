package optimization

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"irrigation-engine/internal/economic"
	"irrigation-engine/internal/hydraulic"
	"irrigation-engine/internal/model"
)

const (
	invalidPenalty    = 1e6
	constraintPenalty = 10.0
	emitterCostExp    = 0.5
)

// weights order: capital, energy, water, efficiency.
var goalWeights = map[string][]float64{
	model.GoalMinimizeCost:       {0.6, 0.2, 0.1, 0.1},
	model.GoalMaximizeEfficiency: {0.1, 0.1, 0.2, 0.6},
	model.GoalMinimizeWater:      {0.1, 0.1, 0.6, 0.2},
	model.GoalMinimizeEnergy:     {0.1, 0.6, 0.1, 0.2},
	model.GoalBalanced:           {0.25, 0.25, 0.25, 0.25},
}

func weightsFor(goal string) ([]float64, error) {
	if goal == "" {
		goal = model.GoalBalanced
	}
	w, ok := goalWeights[goal]
	if !ok {
		return nil, fmt.Errorf("unknown optimization goal %q", goal)
	}
	return w, nil
}

// evaluation holds the proxies a candidate is scored on.
type evaluation struct {
	hyd     model.HydraulicCalculationResult
	capital float64
	energy  float64
	eff     float64
	penalty float64
}

// scorer compares candidates against the submitted design. Every ratio equals 1 at the
// baseline so the objective of an unchanged, feasible design is 1.
type scorer struct {
	weights  []float64
	cm       model.CostModel
	criteria model.ValidationCriteria
	baseline evaluation
	baseHP   model.HydraulicParameters
}

func newScorer(base candidate, weights []float64, cm model.CostModel) *scorer {
	s := &scorer{
		weights:  weights,
		cm:       cm,
		criteria: model.DefaultValidationCriteria(),
		baseHP:   base.hp,
	}
	s.baseline = s.evaluate(base)
	return s
}

func (s *scorer) evaluate(c candidate) evaluation {
	hyd := hydraulic.Calculate(c.design, c.hp)
	ev := evaluation{hyd: hyd}
	if !hyd.IsValid {
		ev.penalty = invalidPenalty
		return ev
	}
	ev.eff = hyd.ApplicationEfficiency
	ev.capital = s.capital(c, hyd)
	if ev.eff > 0 {
		ev.energy = (c.hp.OperatingPressure + hyd.TotalPressureLoss) / ev.eff
	}
	ev.penalty = s.penalties(c, hyd)
	return ev
}

// capital scales the pipe share with flow over velocity and the emitter share with the
// inverse square root of the allowed pressure variation.
func (s *scorer) capital(c candidate, hyd model.HydraulicCalculationResult) float64 {
	costs := economic.CapitalCosts(c.design.TotalArea, s.cm)
	fixed := costs.PumpingCost + costs.ControlCost + costs.InstallationCost
	base := s.baseline
	if base.hyd.SystemFlowRate <= 0 || !base.hyd.IsValid {
		return costs.TotalInvestment
	}
	pipe := costs.PipelineCost * ratio(hyd.SystemFlowRate, base.hyd.SystemFlowRate) * ratio(s.baseHP.DesignVelocity, c.hp.DesignVelocity)
	emitters := costs.EmitterCost
	if c.hp.AllowedPressureVariation > 0 && s.baseHP.AllowedPressureVariation > 0 {
		emitters *= math.Pow(s.baseHP.AllowedPressureVariation/c.hp.AllowedPressureVariation, emitterCostExp)
	}
	return fixed + pipe + emitters
}

func (s *scorer) penalties(c candidate, hyd model.HydraulicCalculationResult) float64 {
	var p float64
	op := c.hp.OperatingPressure
	if c.hp.EmitterPressure > 0 && op < c.hp.EmitterPressure {
		p += constraintPenalty * (c.hp.EmitterPressure - op) / c.hp.EmitterPressure
	}
	if op > 0 && hyd.TotalPressureLoss > s.criteria.MaxPressureLossRatio*op {
		p += constraintPenalty * (hyd.TotalPressureLoss - s.criteria.MaxPressureLossRatio*op) / op
	}
	if c.hp.TargetUniformity > 0 && hyd.DistributionUniformity < c.hp.TargetUniformity {
		p += constraintPenalty * (c.hp.TargetUniformity - hyd.DistributionUniformity) / c.hp.TargetUniformity
	}
	if c.hp.DesignVelocity > s.criteria.MaxVelocity {
		p += constraintPenalty * (c.hp.DesignVelocity - s.criteria.MaxVelocity) / s.criteria.MaxVelocity
	}
	return p
}

// objective is the weighted sum of the candidate's ratios against the baseline plus
// any constraint penalty.
func (s *scorer) objective(ev evaluation) float64 {
	if ev.penalty >= invalidPenalty {
		return invalidPenalty
	}
	b := s.baseline
	terms := []float64{
		ratio(ev.capital, b.capital),
		ratio(ev.energy, b.energy),
		ratio(b.eff, ev.eff),
		ratio(100-ev.eff, 100-b.eff),
	}
	return floats.Dot(s.weights, terms) + ev.penalty
}

// ratio returns a/b, or 1 when the baseline b carries no information.
func ratio(a, b float64) float64 {
	if !(b > 0) || math.IsInf(b, 0) {
		return 1
	}
	r := a / b
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return invalidPenalty
	}
	return r
}
