// Package bo provides Gaussian Process regression and pool-based Bayesian
// optimization. It exposes the three layers of the method separately: an RBF
// covariance kernel, a GP regression model with exact posterior inference and
// sampling, and a sequential acquisition loop that selects the next point to
// evaluate from a fixed candidate pool.
//
// # Features
//
// The package includes the following key features:
//
//   - Exact GP Regression: Closed-form posterior mean and covariance through
//     a Cholesky factorization of the training covariance (no explicit
//     matrix inversion)
//   - Prior and Posterior Sampling: Independent multivariate-Gaussian draws
//     of the latent function at arbitrary query points
//   - Multiple Acquisition Functions: Upper Confidence Bound (UCB),
//     Probability of Improvement (PI), Expected Improvement (EI), and
//     Thompson Sampling
//   - Maximization and Minimization: One flag flips the objective direction
//     for the whole run
//   - Reproducible Runs: Every random draw goes through an explicit,
//     seedable *rand.Rand handle; no global random state
//   - Typed Failures: ErrInvalidHyperparameter, ErrSingularCovariance and
//     ErrDimensionMismatch propagate to the caller and abort the run
//   - Progress Monitoring: Per-iteration updates via an optional channel
//
// # Quick Start
//
// Find the maximum of a noisy 1-D function over a grid of candidates:
//
//	kernel, err := bo.NewRBF(1.0, 0.3)
//	if err != nil { ... }
//
//	gp, err := bo.NewGaussianProcess(kernel, 0.01)
//	if err != nil { ... }
//
//	noise := rand.New(rand.NewSource(7))
//	objective := func(x []float64) float64 {
//	    return math.Sin(3*x[0]) + 0.1*noise.NormFloat64()
//	}
//
//	config := bo.DefaultConfig()
//	config.Steps = 30
//	config.Maximize = true
//
//	result, err := bo.Optimize(config, objective, bo.GridPool(0, 2, 100), gp)
//	if err != nil { ... }
//
//	fmt.Println("best point:", result.BestX, "value:", result.BestY)
//
// # Acquisition Functions
//
// All acquisition functions return scores where higher is more promising;
// the loop always selects the maximal score and the Maximize flag in
// AcquisitionParams orients the underlying objective:
//
// 1. Upper Confidence Bound (UCB):
//
//   - Balances exploration and exploitation
//
//   - Controlled by the Beta parameter (higher = more exploration)
//
//   - Default choice, works well in most cases
//
//     config := bo.DefaultConfig()  // Uses UCB by default
//     config.AcqParams.Beta = 2.0
//
// 2. Probability of Improvement (PI):
//
//   - Conservative exploration strategy
//
//   - Focuses on small, reliable improvements
//
//     config.Acquisition = bo.ProbabilityOfImprovement
//     config.AcqParams.Xi = 0.01
//
// 3. Expected Improvement (EI):
//
//   - Balances improvement probability and magnitude
//
//   - Most commonly used in practice
//
//     config.Acquisition = bo.ExpectedImprovement
//     config.AcqParams.Xi = 0.01
//
// 4. Thompson Sampling:
//
//   - Random draws from the predictive marginal
//
//   - No parameter tuning required
//
//     config.Acquisition = bo.ThompsonSampling
//     config.AcqParams.RandomState = rand.New(rand.NewSource(42))
//
// # Error Handling
//
// Numerical failures are modeling problems, not transient faults: a singular
// training covariance means duplicated points with zero noise or degenerate
// hyperparameters. The loop therefore aborts on the first failure and
// returns the partial observation set together with the wrapped error; test
// for a kind with errors.Is.
//
// # Thread Safety
//
// The GaussianProcess model is safe for concurrent use; an optimization run
// itself is single-threaded and synchronous, with the loop as the only
// writer of the observation set. Use separate models, configs, and random
// sources for concurrent runs.
package bo
