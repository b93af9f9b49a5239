package optimization

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"irrigation-engine/internal/model"
)

func testInput() Input {
	return Input{
		Design: model.IrrigationDesignParameters{
			TotalArea:             1000,
			NumberOfSectors:       4,
			PlantDensity:          2,
			DailyWaterRequirement: 4,
			IrrigationFrequency:   2,
			PipeNetwork: model.PipeNetwork{
				Main:    model.PipeSegment{Diameter: 63, Length: 120, Material: "PVC"},
				Lateral: model.PipeSegment{Diameter: 16, Length: 1500, Material: "PE"},
			},
			Components: model.SystemComponents{HasFiltration: true, HasAutomation: true},
		},
		Hydraulics: model.HydraulicParameters{
			OperatingPressure:        2,
			DesignVelocity:           1.5,
			FrictionLossCoefficient:  0.02,
			MinorLossCoefficient:     0.01,
			ElevationChange:          2,
			EmitterFlowRate:          2,
			EmitterSpacing:           0.5,
			EmitterPressure:          1,
			TargetUniformity:         90,
			AllowedPressureVariation: 20,
		},
		Params: model.OptimizationParameters{MaxIterations: DefaultMaxIterations},
		Goal:   model.GoalBalanced,
	}
}

func TestOptimizeImprovesObjective(t *testing.T) {
	res, err := Optimize(context.Background(), testInput())
	require.NoError(t, err)

	assert.Equal(t, model.MethodCoordinateDescent, res.Method)
	assert.InDelta(t, 1.0, res.InitialObjective, 1e-9)
	assert.LessOrEqual(t, res.FinalObjective, res.InitialObjective)
	assert.GreaterOrEqual(t, res.OverallScore, 50.0)
	assert.LessOrEqual(t, res.Iterations, DefaultMaxIterations)
	assert.NotEmpty(t, res.Changes)
}

func TestIterationsNeverExceedCap(t *testing.T) {
	in := testInput()
	in.Params.MaxIterations = 5000

	res, err := Optimize(context.Background(), in)
	require.NoError(t, err)
	assert.LessOrEqual(t, res.Iterations, MaxIterationCap)
}

func TestZeroIterationsKeepsDesign(t *testing.T) {
	in := testInput()
	in.Params.MaxIterations = 0

	res, err := Optimize(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Iterations)
	assert.False(t, res.Converged)
	assert.Equal(t, res.InitialObjective, res.FinalObjective)
	assert.Equal(t, in.Hydraulics, res.OptimizedHydraulics)
	assert.Empty(t, res.Changes)
	assert.Empty(t, res.Recommendations)
	assert.InDelta(t, 0, res.CostReduction, 1e-12)
}

func TestMinimizeEnergyLowersOperatingPressure(t *testing.T) {
	in := testInput()
	in.Goal = model.GoalMinimizeEnergy

	res, err := Optimize(context.Background(), in)
	require.NoError(t, err)

	op := res.OptimizedHydraulics.OperatingPressure
	assert.Less(t, op, in.Hydraulics.OperatingPressure)
	assert.GreaterOrEqual(t, op, 0.95*in.Hydraulics.EmitterPressure)
	assert.Greater(t, res.EnergySavings, 0.0)

	var paths []string
	for _, c := range res.Changes {
		paths = append(paths, c.Path)
	}
	assert.Contains(t, paths, "/hydraulics/operating_pressure")
}

func TestAchievedEfficiencyIsCapped(t *testing.T) {
	in := testInput()
	in.Goal = model.GoalMaximizeEfficiency

	res, err := Optimize(context.Background(), in)
	require.NoError(t, err)

	// 20 % pressure variation gives 90 % uniformity and 85.5 % application efficiency
	assert.InDelta(t, 85.5, res.CurrentEfficiency, 1e-9)
	assert.Less(t, res.OptimizedHydraulics.AllowedPressureVariation, in.Hydraulics.AllowedPressureVariation)
	assert.InDelta(t, 90.5, res.AchievedEfficiency, 1e-9)
	assert.InDelta(t, 5.0, res.EfficiencyGain, 1e-9)
	assert.Greater(t, res.WaterSavings, 0.0)
}

func TestCurrentResultDrivesEfficiencyBaseline(t *testing.T) {
	in := testInput()
	in.Goal = model.GoalMaximizeEfficiency
	in.Current = &model.HydraulicCalculationResult{IsValid: true, ApplicationEfficiency: 91}

	res, err := Optimize(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 91.0, res.CurrentEfficiency)
	assert.LessOrEqual(t, res.AchievedEfficiency, 95.0)
}

func TestFrequencyIsOptIn(t *testing.T) {
	in := testInput()
	in.Goal = model.GoalMinimizeCost
	in.Params.Parameters = []string{ParamIrrigationFrequency}

	res, err := Optimize(context.Background(), in)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, res.OptimizedDesign.IrrigationFrequency, 1e-9)
	assert.Equal(t, in.Hydraulics, res.OptimizedHydraulics)
	require.Len(t, res.Recommendations, 1)
	assert.Equal(t, ParamIrrigationFrequency, res.Recommendations[0].Parameter)
	assert.Less(t, res.Recommendations[0].RecommendedValue, res.Recommendations[0].CurrentValue)
	assert.Contains(t, res.Recommendations[0].Justification, "fewer")
	assert.Less(t, res.Recommendations[0].CostImpact, 0.0)
	assert.Greater(t, res.CostReduction, 0.0)
}

func TestRecommendationsRanked(t *testing.T) {
	res, err := Optimize(context.Background(), testInput())
	require.NoError(t, err)
	require.NotEmpty(t, res.Recommendations)

	for i, r := range res.Recommendations {
		assert.Equal(t, i+1, r.Rank)
		assert.NotEmpty(t, r.Justification)
		if i > 0 {
			assert.LessOrEqual(t, r.ImprovementPercent, res.Recommendations[i-1].ImprovementPercent)
		}
	}
}

func TestOptimizeIsDeterministic(t *testing.T) {
	a, err := Optimize(context.Background(), testInput())
	require.NoError(t, err)
	b, err := Optimize(context.Background(), testInput())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestNelderMeadStrategy(t *testing.T) {
	in := testInput()
	in.Params.Method = model.MethodNelderMead

	res, err := Optimize(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, model.MethodNelderMead, res.Method)
	assert.LessOrEqual(t, res.FinalObjective, res.InitialObjective)
	assert.LessOrEqual(t, res.Iterations, DefaultMaxIterations)
}

func TestCancelledContextAborts(t *testing.T) {
	for _, method := range Methods() {
		t.Run(method, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			in := testInput()
			in.Params.Method = method
			_, err := Optimize(ctx, in)
			require.Error(t, err)
			assert.ErrorIs(t, err, context.Canceled)
		})
	}
}

func TestUnknownMethod(t *testing.T) {
	in := testInput()
	in.Params.Method = "simulated_annealing"

	_, err := Optimize(context.Background(), in)
	assert.ErrorIs(t, err, ErrUnknownMethod)
}

func TestUnknownParameter(t *testing.T) {
	in := testInput()
	in.Params.Parameters = []string{"pipe_colour"}

	_, err := Optimize(context.Background(), in)
	assert.ErrorIs(t, err, ErrUnknownParameter)
}

func TestUnknownGoal(t *testing.T) {
	in := testInput()
	in.Goal = "maximize_profit"

	_, err := Optimize(context.Background(), in)
	assert.Error(t, err)
}

func TestUncomputableDesignIsAnError(t *testing.T) {
	in := testInput()
	in.Design.IrrigationFrequency = 0

	_, err := Optimize(context.Background(), in)
	assert.Error(t, err)
}

func TestSettingsFor(t *testing.T) {
	s := settingsFor(model.OptimizationParameters{MaxIterations: 5000})
	assert.Equal(t, MaxIterationCap, s.MaxIterations)
	assert.Equal(t, 500, s.Warmup)
	assert.Equal(t, DefaultStall, s.StallIterations)
	assert.Equal(t, DefaultEpsilon, s.Epsilon)

	s = settingsFor(model.OptimizationParameters{MaxIterations: 200, StallIterations: 3, Epsilon: 1e-3})
	assert.Equal(t, 200, s.MaxIterations)
	assert.Equal(t, 100, s.Warmup)
	assert.Equal(t, 3, s.StallIterations)

	s = settingsFor(model.OptimizationParameters{MaxIterations: -4})
	assert.Equal(t, 0, s.MaxIterations)
	assert.Equal(t, 0, s.Warmup)
}

func TestInputIsNotMutated(t *testing.T) {
	in := testInput()
	in.Params.Parameters = []string{ParamDesignVelocity, ParamIrrigationFrequency}
	before := testInput()

	_, err := Optimize(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, before.Design, in.Design)
	assert.Equal(t, before.Hydraulics, in.Hydraulics)
}

func TestRatioWithoutBaseline(t *testing.T) {
	assert.Equal(t, 1.0, ratio(5, 0))
	assert.Equal(t, 1.0, ratio(5, math.Inf(1)))
	assert.Equal(t, 0.5, ratio(1, 2))
}
