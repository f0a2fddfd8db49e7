package bo

import (
	"math/rand"

	"golang.org/x/exp/constraints"
)

// ProgressUpdate represents the state of the optimization loop after one
// iteration. Updates are delivered through Config.ProgressChan, one per
// completed iteration.
type ProgressUpdate struct {
	// Step is the iteration that just completed (1-based).
	Step int

	// TotalSteps is the configured number of iterations for this run.
	TotalSteps int

	// SelectedPoint is the pool point chosen by the acquisition function
	// in this iteration.
	SelectedPoint []float64

	// ObservedValue is the objective value observed at SelectedPoint.
	ObservedValue float64

	// BestValue is the best objective value observed so far in this run,
	// under the run's maximize/minimize convention.
	BestValue float64
}

// ParameterRange defines the valid range of one input dimension when
// building a random candidate pool. Each dimension must have a minimum and
// maximum value to define its search space.
//
// Type Parameter:
//   - T: The numeric type for this range (e.g. int64 or float64)
//
// Usage:
//
//	// Example 1: Batch size from 1 to 512
//	batchRange := ParameterRange[int64]{
//	    Min: 1,
//	    Max: 512,
//	}
//
//	// Example 2: Learning rate from 0.0001 to 0.1
//	lrRange := ParameterRange[float64]{
//	    Min: 0.0001,
//	    Max: 0.1,
//	}
//
// Validation:
// - Min must be less than or equal to Max
// - The range is inclusive of both Min and Max values
//
// Warning:
//   - A very wide range spreads the candidate pool thin; prefer ranges
//     that reflect genuine prior knowledge of the search space.
type ParameterRange[T constraints.Integer | constraints.Float] struct {
	// Min defines the minimum allowed value (inclusive) for this dimension.
	Min T

	// Max defines the maximum allowed value (inclusive) for this dimension.
	Max T
}

// Objective is the external collaborator that evaluates a candidate point
// and returns its (possibly noisy) scalar value. The optimization loop calls
// it exactly once per iteration, with exactly one pool point.
//
// Parameters:
//   - x: The input point to evaluate. The loop retains ownership of the
//     slice; copy it if the objective needs to keep it.
//
// Returns:
// - float64: The observed value at x
//
// Usage example:
//
//	// A noisy 1-D objective with its own seeded noise source.
//	noise := rand.New(rand.NewSource(7))
//	objective := func(x []float64) float64 {
//	    return math.Sin(3*x[0]) + 0.1*noise.NormFloat64()
//	}
//
// Implementation notes:
// - Must be deterministic given its own random state for reproducible runs
// - Noise, if any, is the objective's responsibility; the loop passes the
//   observed value to the model as-is.
type Objective func(x []float64) float64

// AcquisitionFunc defines the signature for acquisition functions used by
// the optimization loop. These functions rank candidate points by combining
// the model's predicted mean and uncertainty.
//
// Parameters:
// - mean: Posterior mean at the candidate point
// - variance: Posterior variance at the candidate point
// - params: Additional parameters needed by specific acquisition functions
//
// Returns:
// - float64: Acquisition score. Higher values indicate more promising
//   points regardless of whether the objective is maximized or minimized;
//   params.Maximize tells the function which direction the objective runs.
//
// Built-in acquisition functions:
// - UCB: Confidence-bound score, the default
// - ProbabilityOfImprovement: Probability of beating the best observation
// - ExpectedImprovement: Expected magnitude of improvement
// - ThompsonSampling: Random draw from the predictive marginal
//
// Implementation notes for custom acquisition functions:
// - Should handle edge cases (zero variance, extreme means)
// - Should be deterministic apart from params.RandomState
// - Must respect params.Maximize so the loop can always pick the maximal
//   score.
type AcquisitionFunc func(mean, variance float64, params AcquisitionParams) float64

// AcquisitionParams holds parameters used by the acquisition functions to
// trade off exploring uncertain regions against exploiting regions the
// model already believes to be good.
type AcquisitionParams struct {
	// Beta controls the exploration-exploitation trade-off in UCB.
	// - Higher values (e.g., 3.0 or 5.0) encourage exploring uncertain areas
	// - Lower values (e.g., 0.1 or 0.5) focus on known good areas
	// Typical values range from 0.1 to 5.0, with 2.0 being a good default.
	Beta float64

	// Xi is the improvement margin used by ProbabilityOfImprovement and
	// ExpectedImprovement: a candidate only counts as improving if it beats
	// the best observation by at least Xi.
	// Typical values range from 0.01 to 0.1.
	Xi float64

	// BestSoFar is the best objective value observed so far, under the
	// run's maximize/minimize convention. The optimization loop refreshes
	// it before scoring each iteration's pool; set it manually only when
	// calling acquisition functions outside the loop.
	BestSoFar float64

	// Maximize selects the objective direction: true ranks candidates for
	// a maximization run, false for minimization. The loop copies
	// Config.Maximize here before scoring.
	Maximize bool

	// RandomState is the random number generator used by ThompsonSampling.
	//
	// Required initialization (for ThompsonSampling only):
	// - MUST be initialized using rand.New(rand.NewSource(seed))
	// - Use a fixed seed for reproducible runs
	// - Each optimization run should have its own RandomState
	//
	// Warning:
	// - Do NOT share a RandomState between concurrent runs.
	RandomState *rand.Rand
}

// Config holds all parameters controlling one run of the optimization loop.
//
// Usage example:
//
//	config := DefaultConfig()
//	config.Steps = 30
//	config.Maximize = true
//	config.AcqParams.Beta = 1.5
//
// Default values recommendations:
// - Steps: 25-100 (more = better results but more objective evaluations)
// - Acquisition: UCB with Beta 2.0 is a robust general-purpose choice
//
// Note:
// - Create separate configs (and separate models) for parallel runs.
type Config struct {
	// Steps is the exact number of iterations to run. Each iteration
	// evaluates the objective at exactly one pool point. Zero steps is
	// valid and leaves the observation set unchanged.
	Steps int

	// Maximize selects the objective direction for the whole run: true
	// seeks the largest objective value, false the smallest.
	Maximize bool

	// Acquisition determines the strategy for selecting the next point.
	// Defaults to UCB when nil.
	Acquisition AcquisitionFunc

	// AcqParams holds the parameters for the acquisition function.
	AcqParams AcquisitionParams

	// ProgressChan receives one update per completed iteration. Sends are
	// non-blocking: if the channel is full the update is dropped. Nil
	// disables progress reporting.
	ProgressChan chan<- ProgressUpdate
}

// Result is the outcome of an optimization run: the accumulated observation
// set plus the best entry found, including observations that were already in
// the model before the run started.
type Result struct {
	// X holds every observed input point, in observation order.
	X [][]float64

	// Y holds the observed value for each point in X.
	Y []float64

	// BestIndex is the index into X/Y of the best observation, or -1 when
	// there are no observations.
	BestIndex int

	// BestX is the input point of the best observation (nil when empty).
	BestX []float64

	// BestY is the value of the best observation.
	BestY float64

	// Maximize records the direction the run optimized for; Trajectory
	// uses it to build the running best.
	Maximize bool
}

// Trajectory derives the best-so-far curve from the observation set: entry i
// is the best value among Y[0..i] under the run's maximize/minimize
// convention. Useful for plotting convergence.
func (r *Result) Trajectory() []float64 {
	out := make([]float64, len(r.Y))

	for i, y := range r.Y {
		if i == 0 || isBetter(y, out[i-1], r.Maximize) {
			out[i] = y
		} else {
			out[i] = out[i-1]
		}
	}

	return out
}
