package optimization

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"irrigation-engine/internal/model"
)

var ErrUnknownMethod = errors.New("unknown optimization method")

// Problem is a bounded minimisation over len(Start) coordinates.
type Problem struct {
	Lower     []float64
	Upper     []float64
	Start     []float64
	Objective func(x []float64) float64
}

type Settings struct {
	MaxIterations   int
	Warmup          int
	StallIterations int
	Epsilon         float64
}

type Outcome struct {
	X          []float64
	F          float64
	Iterations int
	Converged  bool
}

// Strategy searches a Problem within the budget of Settings. Implementations return
// ctx.Err() once the context is done.
type Strategy interface {
	Search(ctx context.Context, p Problem, s Settings) (Outcome, error)
}

var registry = map[string]Strategy{
	model.MethodCoordinateDescent: &CoordinateDescent{},
	model.MethodNelderMead:        &NelderMead{},
}

// Get resolves a strategy by method name. The empty name selects coordinate descent.
func Get(method string) (Strategy, error) {
	if method == "" {
		method = model.MethodCoordinateDescent
	}
	s, ok := registry[method]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
	return s, nil
}

func Methods() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// stallTracker counts consecutive iterations whose improvement stayed below epsilon.
// Convergence is only reported once the warm-up is over.
type stallTracker struct {
	settings Settings
	stalled  int
}

func (t *stallTracker) converged(iter int, improvement float64) bool {
	if improvement < t.settings.Epsilon {
		t.stalled++
	} else {
		t.stalled = 0
	}
	return iter > t.settings.Warmup && t.stalled >= t.settings.StallIterations
}

func clampVec(x, lower, upper []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = clamp(v, lower[i], upper[i])
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
