package bo

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"golang.org/x/exp/constraints"
)

//////
// Exported functionalities.
//////

// DefaultConfig returns a default configuration: 25 steps of UCB-driven
// minimization with a moderate exploration weight.
func DefaultConfig() Config {
	return Config{
		Steps:       25,
		Maximize:    false,
		Acquisition: UCB,
		AcqParams: AcquisitionParams{
			Beta:        2.0,
			Xi:          0.01,
			RandomState: rand.New(rand.NewSource(time.Now().UnixNano())),
		},
		ProgressChan: nil, // Default to no progress updates.
	}
}

// Optimize runs the sequential acquisition loop: it repeatedly fits the
// Gaussian Process posterior over a fixed candidate pool, scores every pool
// point with the acquisition function, evaluates the objective at the
// best-scoring candidate, and feeds the observation back into the model.
//
// Parameters:
// - config: Config controlling the run (steps, direction, acquisition)
// - objective: The external evaluation collaborator; called exactly once
//   per iteration with the selected pool point
// - pool: Fixed, finite candidate pool; never modified by the loop
// - gp: The Gaussian Process model, which may already hold observations
//   (e.g. from SeedObservations); the loop appends to it
//
// Returns:
// - *Result: The accumulated observation set with the best entry found.
//   Also returned on mid-run failure, holding the partial progress up to
//   the failing iteration
// - error: Nil after a complete run; a wrapped model error
//   (ErrSingularCovariance, ErrDimensionMismatch) if a fit fails, which
//   aborts the run
//
// Usage example:
//
//	kernel, _ := NewRBF(1.0, 0.3)
//	gp, _ := NewGaussianProcess(kernel, 0.01)
//
//	config := DefaultConfig()
//	config.Steps = 30
//	config.Maximize = true
//
//	result, err := Optimize(
//	    config,
//	    func(x []float64) float64 { return -(x[0] - 0.3) * (x[0] - 0.3) },
//	    GridPool(0, 1, 100),
//	    gp,
//	)
//
// How it works, per iteration:
//  1. Predict the posterior mean and covariance over the full pool with a
//     single fit of the current observation set
//  2. Score every pool point with config.Acquisition (BestSoFar refreshed
//     from the observations made so far)
//  3. Select the point with the maximal score; ties break to the first
//     occurrence in pool order, so selection is deterministic
//  4. Evaluate the objective there and append the observation to the model
//
// Termination:
// - After exactly config.Steps iterations; no early stopping and no
//   convergence check. Steps == 0 returns the observation set unchanged.
//
// Failure semantics:
// - A failing fit (for example ErrSingularCovariance from degenerate
//   hyperparameters) aborts the whole run; the partial Result accumulated
//   up to that iteration is returned together with the error. Failures are
//   not retried: they reflect a modeling problem the caller must correct.
//
// Important notes:
// - The pool is read-only; a point may be selected in more than one
//   iteration. With zero observation noise a repeated selection makes the
//   training covariance singular, which aborts the run; use nonzero noise
//   or SetJitter when repeats are possible
// - Determinism: with a fixed seed in every random source involved (the
//   objective's noise and AcqParams.RandomState), two runs select
//   identical point sequences.
func Optimize(config Config, objective Objective, pool [][]float64, gp *GaussianProcess) (*Result, error) {
	if gp == nil {
		return nil, fmt.Errorf("model must not be nil")
	}

	if objective == nil {
		return nil, fmt.Errorf("objective must not be nil")
	}

	if config.Steps < 0 {
		return nil, fmt.Errorf("steps must be >= 0, got %d", config.Steps)
	}

	if config.Steps > 0 && len(pool) == 0 {
		return nil, fmt.Errorf("candidate pool must not be empty")
	}

	if config.Acquisition == nil {
		config.Acquisition = UCB
	}

	config.AcqParams.Maximize = config.Maximize

	// Best value among observations already in the model, if any.
	bestSoFar := math.Inf(-1)
	if !config.Maximize {
		bestSoFar = math.Inf(1)
	}

	if _, initialY := gp.Observations(); len(initialY) > 0 {
		for _, y := range initialY {
			if isBetter(y, bestSoFar, config.Maximize) {
				bestSoFar = y
			}
		}
	}

	// sendProgress delivers one update per completed iteration without ever
	// blocking the loop.
	sendProgress := func(step int, selected []float64, value float64) {
		if config.ProgressChan == nil {
			return
		}

		update := ProgressUpdate{
			Step:          step,
			TotalSteps:    config.Steps,
			SelectedPoint: selected,
			ObservedValue: value,
			BestValue:     bestSoFar,
		}

		select {
		case config.ProgressChan <- update:
		default:
			// Skip update if channel is full.
		}
	}

	for step := 1; step <= config.Steps; step++ {
		// Refresh the posterior over the full pool with one fit.
		mean, cov, err := gp.Predict(pool)
		if err != nil {
			X, Y := gp.Observations()

			return newResult(X, Y, config.Maximize), fmt.Errorf(
				"fitting the posterior at step %d: %w", step, err,
			)
		}

		config.AcqParams.BestSoFar = bestSoFar

		// Argmax over acquisition scores; strict > keeps the first
		// occurrence on ties.
		bestIndex := 0
		bestScore := math.Inf(-1)

		for i := range pool {
			variance := cov.At(i, i)
			if variance < 0 {
				variance = 0
			}

			score := config.Acquisition(mean.AtVec(i), variance, config.AcqParams)

			if i == 0 || score > bestScore {
				bestIndex = i
				bestScore = score
			}
		}

		selected := pool[bestIndex]

		// Observe the true (possibly noisy) value at the selected point.
		value := objective(selected)

		if err := gp.Observe(selected, value); err != nil {
			X, Y := gp.Observations()

			return newResult(X, Y, config.Maximize), fmt.Errorf(
				"recording the observation at step %d: %w", step, err,
			)
		}

		if isBetter(value, bestSoFar, config.Maximize) {
			bestSoFar = value
		}

		sendProgress(step, selected, value)
	}

	X, Y := gp.Observations()

	return newResult(X, Y, config.Maximize), nil
}

// SeedObservations bootstraps a model with n observations at random points,
// mirroring the usual random initial-sampling phase before acquisition-driven
// selection takes over.
//
// Type Parameter:
//   - T: The numeric type for the ranges (int64 or float64)
//
// Parameters:
// - gp: The model to seed
// - objective: Evaluated once per seed point
// - rng: Random source for the points (seed it for reproducible runs)
// - n: Number of seed observations
// - ranges: One ParameterRange per input dimension
//
// Returns:
// - error: The first Observe failure, if any
//
// Usage example:
//
//	rng := rand.New(rand.NewSource(42))
//	err := SeedObservations(gp, objective, rng, 5,
//	    ParameterRange[float64]{Min: 0, Max: 1},
//	)
func SeedObservations[T constraints.Integer | constraints.Float](
	gp *GaussianProcess,
	objective Objective,
	rng *rand.Rand,
	n int,
	ranges ...ParameterRange[T],
) error {
	for i := 0; i < n; i++ {
		x := randomPoint(rng, ranges)

		if err := gp.Observe(x, objective(x)); err != nil {
			return err
		}
	}

	return nil
}

// RandomPool builds a candidate pool of n points drawn uniformly at random
// from the given per-dimension ranges. Integer ranges produce whole-valued
// coordinates, float ranges continuous ones.
//
// Type Parameter:
//   - T: The numeric type for the ranges (int64 or float64)
//
// Usage example:
//
//	rng := rand.New(rand.NewSource(42))
//	pool := RandomPool(rng, 200,
//	    ParameterRange[float64]{Min: 0, Max: 1},
//	    ParameterRange[float64]{Min: -5, Max: 5},
//	)
func RandomPool[T constraints.Integer | constraints.Float](
	rng *rand.Rand,
	n int,
	ranges ...ParameterRange[T],
) [][]float64 {
	pool := make([][]float64, n)

	for i := range pool {
		pool[i] = randomPoint(rng, ranges)
	}

	return pool
}

// GridPool builds a 1-D candidate pool of n evenly spaced points covering
// [min, max] inclusive.
//
// Usage example:
//
//	pool := GridPool(0, 1, 101) // 0.00, 0.01, ..., 1.00
func GridPool(min, max float64, n int) [][]float64 {
	if n <= 0 {
		return nil
	}

	pool := make([][]float64, n)

	if n == 1 {
		pool[0] = []float64{min}

		return pool
	}

	step := (max - min) / float64(n-1)

	for i := range pool {
		pool[i] = []float64{min + float64(i)*step}
	}

	return pool
}

//////
// Unexported functionalities.
//////

// randomPoint draws one point uniformly from the given ranges, one
// coordinate per range. Integer ranges are inclusive on both ends.
func randomPoint[T constraints.Integer | constraints.Float](
	rng *rand.Rand,
	ranges []ParameterRange[T],
) []float64 {
	point := make([]float64, len(ranges))

	for i, r := range ranges {
		switch any(r.Min).(type) {
		case float32, float64:
			// For float types, draw a continuous value in range.
			min := float64(r.Min)
			max := float64(r.Max)
			point[i] = min + rng.Float64()*(max-min)
		default:
			// For integer types, draw a whole value in range.
			min := int64(r.Min)
			max := int64(r.Max)
			point[i] = float64(min + rng.Int63n(max-min+1))
		}
	}

	return point
}

// newResult assembles a Result from an observation set, locating the best
// entry under the given direction.
func newResult(X [][]float64, Y []float64, maximize bool) *Result {
	result := &Result{
		X:         X,
		Y:         Y,
		BestIndex: -1,
		Maximize:  maximize,
	}

	for i, y := range Y {
		if result.BestIndex == -1 || isBetter(y, result.BestY, maximize) {
			result.BestIndex = i
			result.BestX = X[i]
			result.BestY = y
		}
	}

	return result
}
