package optimization

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/optimize"
)

const defaultSimplexSize = 0.1

// NelderMead runs gonum's downhill simplex. Coordinates are clamped into bounds before
// every evaluation since the method itself is unconstrained.
type NelderMead struct {
	SimplexSize float64
}

func (n *NelderMead) Search(ctx context.Context, p Problem, s Settings) (Outcome, error) {
	start := clampVec(p.Start, p.Lower, p.Upper)
	if s.MaxIterations <= 0 {
		return Outcome{X: start, F: p.Objective(start)}, nil
	}
	size := n.SimplexSize
	if size <= 0 {
		size = defaultSimplexSize
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			return p.Objective(clampVec(x, p.Lower, p.Upper))
		},
		Status: func() (optimize.Status, error) {
			if err := ctx.Err(); err != nil {
				return optimize.Failure, err
			}
			return optimize.NotTerminated, nil
		},
	}
	settings := &optimize.Settings{
		MajorIterations: s.MaxIterations,
		Converger: &warmupConverger{
			warmup: s.Warmup,
			inner:  &optimize.FunctionConverge{Absolute: s.Epsilon, Iterations: s.StallIterations},
		},
	}

	res, err := optimize.Minimize(problem, start, settings, &optimize.NelderMead{SimplexSize: size})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Outcome{}, ctxErr
	}
	if err != nil {
		return Outcome{}, fmt.Errorf("nelder-mead: %w", err)
	}

	x := clampVec(res.X, p.Lower, p.Upper)
	return Outcome{
		X:          x,
		F:          p.Objective(x),
		Iterations: res.MajorIterations,
		Converged:  res.Status == optimize.FunctionConvergence || res.Status == optimize.MethodConverge,
	}, nil
}

// warmupConverger feeds every location to inner but holds back its verdict until the
// warm-up iterations have passed.
type warmupConverger struct {
	warmup int
	iter   int
	inner  optimize.Converger
}

func (c *warmupConverger) Init(dim int) {
	c.iter = 0
	c.inner.Init(dim)
}

func (c *warmupConverger) Converged(loc *optimize.Location) optimize.Status {
	c.iter++
	status := c.inner.Converged(loc)
	if c.iter <= c.warmup {
		return optimize.NotTerminated
	}
	return status
}
