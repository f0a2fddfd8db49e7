package bo

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

//////
// Available acquisition functions for Bayesian optimization.
// Each function helps decide which points to evaluate next by balancing
// exploration (trying uncertain areas) and exploitation (focusing on areas
// the model already believes to be good). All of them return scores where
// HIGHER is more promising; the optimization loop always selects the
// maximal score and params.Maximize tells the function which direction the
// underlying objective runs.
//////

// UCB implements the confidence-bound acquisition function.
//
// How it works:
// - Combines the predicted mean with the prediction uncertainty
// - When maximizing the score is mean + Beta*std (upper confidence bound)
// - When minimizing the score is -(mean - Beta*std), so that points with a
//   low lower confidence bound rank first
// - The Beta parameter controls the trade-off between exploration and
//   exploitation
//
// Parameters:
// - mean: Posterior mean at this point
// - variance: Posterior variance at this point
// - params.Beta: Exploration weight (higher = more exploration)
// - params.Maximize: Objective direction
//
// When to use:
// - General purpose, works well in most cases
// - When you want direct control over the exploration-exploitation trade-off
//
// Example:
//
//	params := AcquisitionParams{
//	    Beta:     2.0,
//	    Maximize: true,
//	}
//	score := UCB(0.5, 0.2, params)
func UCB(mean, variance float64, params AcquisitionParams) float64 {
	std := math.Sqrt(math.Max(variance, 0))

	if params.Maximize {
		return mean + params.Beta*std
	}

	return -(mean - params.Beta*std)
}

// ProbabilityOfImprovement (PI) calculates the probability that a point will
// improve upon the best observed value by at least Xi.
//
// How it works:
// - Estimates the probability of beating params.BestSoFar
// - Uses the Gaussian predictive marginal at the point
// - Xi adds a minimum improvement requirement
//
// Parameters:
// - mean: Posterior mean at this point
// - variance: Posterior variance at this point
// - params.BestSoFar: Best value observed so far
// - params.Xi: Minimum improvement desired
// - params.Maximize: Objective direction
//
// When to use:
// - When you want to be conservative in exploring new points
// - When you're fine with small improvements
// - In problems where being "probably better" matters more than "how much
//   better"
//
// Example:
//
//	params := AcquisitionParams{
//	    BestSoFar: 1.0,
//	    Xi:        0.01,
//	    Maximize:  true,
//	}
//	prob := ProbabilityOfImprovement(1.1, 0.2, params)
func ProbabilityOfImprovement(mean, variance float64, params AcquisitionParams) float64 {
	std := math.Sqrt(math.Max(variance, 0))
	improvement := signedImprovement(mean, params)

	// With no uncertainty, improvement is a certainty or an impossibility.
	if std == 0 {
		if improvement > 0 {
			return 1
		}

		return 0
	}

	return distuv.UnitNormal.CDF(improvement / std)
}

// ExpectedImprovement (EI) calculates the expected value of the improvement
// over the current best observation.
//
// How it works:
// - Combines the probability of improvement with the magnitude of
//   improvement
// - Balances how likely and how large the improvement might be
// - Often explores better than ProbabilityOfImprovement
//
// Parameters:
// - mean: Posterior mean at this point
// - variance: Posterior variance at this point
// - params.BestSoFar: Best value observed so far
// - params.Xi: Minimum improvement desired
// - params.Maximize: Objective direction
//
// When to use:
// - Most commonly used acquisition function
// - When you want to balance the size and probability of improvement
// - In problems where the magnitude of improvement matters
//
// Example:
//
//	params := AcquisitionParams{
//	    BestSoFar: 1.0,
//	    Xi:        0.01,
//	    Maximize:  true,
//	}
//	expected := ExpectedImprovement(1.1, 0.2, params)
func ExpectedImprovement(mean, variance float64, params AcquisitionParams) float64 {
	std := math.Sqrt(math.Max(variance, 0))
	improvement := signedImprovement(mean, params)

	// With no uncertainty the expectation collapses to the improvement
	// itself, floored at zero.
	if std == 0 {
		return math.Max(improvement, 0)
	}

	z := improvement / std

	return improvement*distuv.UnitNormal.CDF(z) + std*distuv.UnitNormal.Prob(z)
}

// ThompsonSampling implements Thompson Sampling acquisition by drawing a
// random value from the predictive marginal at the point.
//
// How it works:
// - Takes a random sample from the model's belief about the function value
// - Naturally balances exploration and exploitation
// - Uses randomness instead of an explicit exploration parameter
//
// Parameters:
// - mean: Posterior mean at this point
// - variance: Posterior variance at this point
// - params.RandomState: Random number generator (required!)
// - params.Maximize: Objective direction
//
// When to use:
// - When you want a simple but effective approach
// - When you want to avoid tuning Beta or Xi
// - In problems where random exploration is acceptable
//
// Example:
//
//	params := AcquisitionParams{
//	    RandomState: rand.New(rand.NewSource(42)),
//	    Maximize:    true,
//	}
//	score := ThompsonSampling(0.9, 0.2, params)
//
// Warning:
// - Always initialize RandomState before using this function
// - Don't share a RandomState between concurrent optimization runs.
func ThompsonSampling(mean, variance float64, params AcquisitionParams) float64 {
	std := math.Sqrt(math.Max(variance, 0))

	draw := mean + std*params.RandomState.NormFloat64()

	if params.Maximize {
		return draw
	}

	return -draw
}

// signedImprovement maps a predicted mean to the margin by which it beats
// BestSoFar (minus Xi), oriented so positive always means better.
func signedImprovement(mean float64, params AcquisitionParams) float64 {
	if params.Maximize {
		return mean - params.BestSoFar - params.Xi
	}

	return params.BestSoFar - mean - params.Xi
}
