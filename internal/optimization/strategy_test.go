package optimization

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bowl(x []float64) float64 {
	return math.Pow(x[0]-0.3, 2) + math.Pow(x[1]-0.7, 2)
}

func bowlProblem() Problem {
	return Problem{
		Lower:     []float64{0, 0},
		Upper:     []float64{1, 1},
		Start:     []float64{0.9, 0.1},
		Objective: bowl,
	}
}

func TestStrategiesFindMinimum(t *testing.T) {
	settings := Settings{MaxIterations: 1000, Warmup: 10, StallIterations: 50, Epsilon: 1e-12}
	for _, method := range Methods() {
		t.Run(method, func(t *testing.T) {
			s, err := Get(method)
			require.NoError(t, err)

			out, err := s.Search(context.Background(), bowlProblem(), settings)
			require.NoError(t, err)
			assert.InDelta(t, 0.3, out.X[0], 1e-3)
			assert.InDelta(t, 0.7, out.X[1], 1e-3)
			assert.True(t, out.Converged)
			assert.LessOrEqual(t, out.Iterations, settings.MaxIterations)
		})
	}
}

func TestCoordinateDescentRespectsBounds(t *testing.T) {
	p := Problem{
		Lower:     []float64{0},
		Upper:     []float64{1},
		Start:     []float64{0.5},
		Objective: func(x []float64) float64 { return -x[0] },
	}
	out, err := (&CoordinateDescent{}).Search(context.Background(), p, Settings{MaxIterations: 50, Epsilon: 1e-9, StallIterations: 3})
	require.NoError(t, err)
	assert.Equal(t, 1.0, out.X[0])
}

func TestNoConvergenceDuringWarmup(t *testing.T) {
	flat := Problem{
		Lower:     []float64{0},
		Upper:     []float64{1},
		Start:     []float64{0.5},
		Objective: func([]float64) float64 { return 1 },
	}
	out, err := (&CoordinateDescent{}).Search(context.Background(), flat, Settings{MaxIterations: 100, Warmup: 50, StallIterations: 5, Epsilon: 1e-6})
	require.NoError(t, err)
	assert.True(t, out.Converged)
	assert.Equal(t, 51, out.Iterations)
}

func TestGetDefaultsToCoordinateDescent(t *testing.T) {
	s, err := Get("")
	require.NoError(t, err)
	assert.IsType(t, &CoordinateDescent{}, s)
}

func TestStallTracker(t *testing.T) {
	tr := stallTracker{settings: Settings{Warmup: 2, StallIterations: 2, Epsilon: 0.1}}
	assert.False(t, tr.converged(1, 0))
	assert.False(t, tr.converged(2, 0))
	assert.True(t, tr.converged(3, 0))

	tr = stallTracker{settings: Settings{StallIterations: 2, Epsilon: 0.1}}
	assert.False(t, tr.converged(1, 0))
	assert.False(t, tr.converged(2, 1))
	assert.False(t, tr.converged(3, 0))
	assert.True(t, tr.converged(4, 0))
}
