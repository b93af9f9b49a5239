package optimization

import (
	"context"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"irrigation-engine/internal/designpatch"
	"irrigation-engine/internal/economic"
	"irrigation-engine/internal/hydraulic"
	"irrigation-engine/internal/logging"
	"irrigation-engine/internal/model"
)

const (
	MaxIterationCap      = 1000
	DefaultMaxIterations = 200
	DefaultEpsilon       = 1e-6
	DefaultStall         = 5
	maxWarmup            = 500
	efficiencyCeiling    = 95.0
	efficiencyHeadroom   = 5.0
	changeTolerance      = 1e-9
)

type Input struct {
	Design     model.IrrigationDesignParameters
	Hydraulics model.HydraulicParameters
	// Current is the hydraulic result of the submitted design, when the caller has one.
	Current   *model.HydraulicCalculationResult
	Params    model.OptimizationParameters
	Goal      string
	CostModel *model.CostModel
}

type snapshot struct {
	Design     model.IrrigationDesignParameters `json:"design"`
	Hydraulics model.HydraulicParameters        `json:"hydraulics"`
}

// Optimize searches the tunable parameters for a design that scores better on the
// goal than the submitted one. A MaxIterations of zero evaluates the submitted design
// without searching. Errors are fatal: unknown method, goal or parameter, an
// uncomputable submitted design, or a done context.
func Optimize(ctx context.Context, in Input) (model.DesignOptimizationResult, error) {
	method := in.Params.Method
	if method == "" {
		method = model.MethodCoordinateDescent
	}
	strategy, err := Get(method)
	if err != nil {
		return model.DesignOptimizationResult{}, err
	}
	weights, err := weightsFor(in.Goal)
	if err != nil {
		return model.DesignOptimizationResult{}, err
	}
	goal := in.Goal
	if goal == "" {
		goal = model.GoalBalanced
	}

	if h := hydraulic.Calculate(in.Design, in.Hydraulics); !h.IsValid {
		return model.DesignOptimizationResult{}, fmt.Errorf("current design is not computable: %s", h.ErrorMessage)
	}

	base := candidate{design: in.Design, hp: in.Hydraulics}
	sp, err := newSpace(base, in.Params.Parameters)
	if err != nil {
		return model.DesignOptimizationResult{}, err
	}
	cm := economic.CostModelOrDefault(in.CostModel)
	sc := newScorer(base, weights, cm)

	lower, upper := unitBounds(sp.dim())
	problem := Problem{
		Lower: lower,
		Upper: upper,
		Start: sp.start(),
		Objective: func(x []float64) float64 {
			return sc.objective(sc.evaluate(sp.decode(x)))
		},
	}
	outcome, err := strategy.Search(ctx, problem, settingsFor(in.Params))
	if err != nil {
		return model.DesignOptimizationResult{}, fmt.Errorf("optimize design: %w", err)
	}

	initial := sc.objective(sc.baseline)
	best := sp.decode(outcome.X)
	bestEval := sc.evaluate(best)
	final := sc.objective(bestEval)
	if !(final <= initial) {
		best, bestEval, final = base, sc.baseline, initial
	}

	res := model.DesignOptimizationResult{
		Method:              method,
		Goal:                goal,
		Iterations:          outcome.Iterations,
		Converged:           outcome.Converged,
		InitialObjective:    initial,
		FinalObjective:      final,
		OptimizedHydraulics: best.hp,
		OptimizedDesign:     best.design,
	}

	currentEff := sc.baseline.eff
	if in.Current != nil && in.Current.IsValid {
		currentEff = in.Current.ApplicationEfficiency
	}
	res.CurrentEfficiency = currentEff
	res.AchievedEfficiency = math.Min(bestEval.eff, math.Min(efficiencyCeiling, currentEff+efficiencyHeadroom))
	res.EfficiencyGain = res.AchievedEfficiency - currentEff
	res.CostReduction = percentDrop(sc.baseline.capital, bestEval.capital)
	res.EnergySavings = percentDrop(sc.baseline.energy, bestEval.energy)
	if res.AchievedEfficiency > 0 {
		res.WaterSavings = (1 - currentEff/res.AchievedEfficiency) * 100
	}
	res.OverallScore = overallScore(initial, final)
	res.Recommendations = recommend(sp, sc, best, initial)

	res.Changes, err = designpatch.Diff(snapshot{base.design, base.hp}, snapshot{best.design, best.hp})
	if err != nil {
		return model.DesignOptimizationResult{}, fmt.Errorf("diff optimized design: %w", err)
	}

	logging.FromContext(ctx).Debug("design optimized",
		zap.String("method", method),
		zap.String("goal", goal),
		zap.Int("iterations", res.Iterations),
		zap.Bool("converged", res.Converged),
		zap.Float64("objective", final),
	)
	return res, nil
}

// settingsFor clamps the iteration budget to MaxIterationCap and derives the warm-up
// as min(500, budget/2).
func settingsFor(p model.OptimizationParameters) Settings {
	limit := p.MaxIterations
	if limit < 0 {
		limit = 0
	}
	if limit > MaxIterationCap {
		limit = MaxIterationCap
	}
	warmup := limit / 2
	if warmup > maxWarmup {
		warmup = maxWarmup
	}
	s := Settings{
		MaxIterations:   limit,
		Warmup:          warmup,
		StallIterations: p.StallIterations,
		Epsilon:         p.Epsilon,
	}
	if s.StallIterations <= 0 {
		s.StallIterations = DefaultStall
	}
	if s.Epsilon <= 0 {
		s.Epsilon = DefaultEpsilon
	}
	return s
}

// recommend scores each changed parameter on its own against the submitted design.
func recommend(sp *space, sc *scorer, best candidate, initial float64) []model.OptimizationRecommendation {
	recs := []model.OptimizationRecommendation{}
	for _, t := range sp.params {
		cur := t.get(&sp.base)
		next := t.get(&best)
		if math.Abs(next-cur) <= changeTolerance*math.Max(1, math.Abs(cur)) {
			continue
		}
		single := sp.base
		t.set(&single, next)
		ev := sc.evaluate(single)
		recs = append(recs, model.OptimizationRecommendation{
			Parameter:          t.name,
			CurrentValue:       cur,
			RecommendedValue:   next,
			ImprovementPercent: percentDrop(initial, sc.objective(ev)),
			Justification:      t.justification,
			CostImpact:         ev.capital - sc.baseline.capital,
		})
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].ImprovementPercent > recs[j].ImprovementPercent
	})
	for i := range recs {
		recs[i].Rank = i + 1
	}
	return recs
}

func overallScore(initial, final float64) float64 {
	if !(final > 0) {
		return 100
	}
	return clamp(initial/final*50, 0, 100)
}

func percentDrop(from, to float64) float64 {
	if !(from > 0) {
		return 0
	}
	return (from - to) / from * 100
}
