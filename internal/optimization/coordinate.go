package optimization

import "context"

const defaultStepFraction = 0.1

// CoordinateDescent is a compass search. Every iteration probes each coordinate in both
// directions and halves the step of coordinates that did not improve.
type CoordinateDescent struct {
	// InitialStep is the first probe as a fraction of each range. Zero means 0.1.
	InitialStep float64
}

func (c *CoordinateDescent) Search(ctx context.Context, p Problem, s Settings) (Outcome, error) {
	frac := c.InitialStep
	if frac <= 0 {
		frac = defaultStepFraction
	}

	x := clampVec(p.Start, p.Lower, p.Upper)
	f := p.Objective(x)
	step := make([]float64, len(x))
	for i := range step {
		step[i] = (p.Upper[i] - p.Lower[i]) * frac
	}

	var out Outcome
	tracker := stallTracker{settings: s}
	cand := make([]float64, len(x))
	for it := 1; it <= s.MaxIterations; it++ {
		if err := ctx.Err(); err != nil {
			return Outcome{}, err
		}
		prev := f
		for i := range x {
			improved := false
			for _, dir := range [2]float64{1, -1} {
				copy(cand, x)
				cand[i] = clamp(x[i]+dir*step[i], p.Lower[i], p.Upper[i])
				if cand[i] == x[i] {
					continue
				}
				if fc := p.Objective(cand); fc < f {
					x[i], f = cand[i], fc
					improved = true
					break
				}
			}
			if !improved {
				step[i] /= 2
			}
		}
		out.Iterations = it
		if tracker.converged(it, prev-f) {
			out.Converged = true
			break
		}
	}
	out.X, out.F = x, f
	return out, nil
}
