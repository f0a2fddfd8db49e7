package bo

import (
	"fmt"
	"math"
	"math/rand"
	"sync"

	"gonum.org/v1/gonum/mat"
)

//////
// Const, vars, types.
//////

// GaussianProcess implements a thread-safe Gaussian Process regression model
// with multidimensional inputs and a zero prior mean. It is used to predict
// the value and the uncertainty of an objective function at untested points
// based on previously observed results.
//
// Fields:
// - mu: RWMutex for thread-safe access to all fields
// - kernel: RBF covariance kernel (immutable after construction)
// - noiseVariance: Variance of the additive Gaussian observation noise
// - jitter: Optional diagonal regularization, disabled unless requested
// - X: Slice of observed input points (each point is a slice of float64)
// - Y: Slice of observed scalar outputs at each input point
//
// Thread safety:
// - All fields are protected by the RWMutex
// - Uses RLock for read operations (Predict, PredictPoint, Sample)
// - Uses Lock for write operations (Observe, SetJitter)
//
// Memory usage:
// - Grows linearly with number of observations
// - Each observation stores a copy of its input point
// - Each Predict call is O(n^3) in the number of observations n due to the
//   Cholesky factorization of the training covariance matrix.
type GaussianProcess struct {
	// mu protects access to all fields.
	mu sync.RWMutex

	// kernel computes prior covariances between input points.
	kernel RBF

	// noiseVariance is added to the diagonal of the training covariance
	// matrix only, never to cross- or query-covariance blocks.
	noiseVariance float64

	// jitter is extra diagonal regularization applied to the training
	// covariance matrix. Zero by default: a singular matrix is reported as
	// ErrSingularCovariance rather than silently regularized.
	jitter float64

	// X stores the observed input points; inner slices share one
	// dimensionality, checked on every Observe.
	X [][]float64

	// Y stores the observed outputs; always the same length as X.
	Y []float64
}

//////
// Methods.
//////

// Observe appends a new observation to the model. Observations are
// append-only; there is no way to remove or reorder them.
//
// Parameters:
// - x: Input point (deep-copied; the caller keeps ownership of the slice)
// - y: Observed (possibly noisy) scalar output at x
//
// Returns:
// - error: ErrDimensionMismatch if x is empty or its dimensionality differs
//   from prior observations
//
// Usage example:
//
//	gp, _ := NewGaussianProcess(kernel, 0.01)
//	if err := gp.Observe([]float64{0.2}, 0.1); err != nil {
//	    // Dimensionality conflict with earlier observations.
//	}
//
// Thread safety:
// - Protected by write mutex; blocks predictions while running.
func (gp *GaussianProcess) Observe(x []float64, y float64) error {
	if len(x) == 0 {
		return fmt.Errorf("%w: empty input point", ErrDimensionMismatch)
	}

	gp.mu.Lock()
	defer gp.mu.Unlock()

	if len(gp.X) > 0 && len(x) != len(gp.X[0]) {
		return fmt.Errorf(
			"%w: observation has dimensionality %d, model has %d",
			ErrDimensionMismatch, len(x), len(gp.X[0]),
		)
	}

	// Deep copy so later mutation of the caller's slice cannot corrupt the
	// training set.
	newX := make([]float64, len(x))
	copy(newX, x)

	gp.X = append(gp.X, newX)
	gp.Y = append(gp.Y, y)

	return nil
}

// Len returns the number of observations currently in the model.
func (gp *GaussianProcess) Len() int {
	gp.mu.RLock()
	defer gp.mu.RUnlock()

	return len(gp.X)
}

// Observations returns a deep copy of the accumulated observation set, in
// insertion order. Safe to modify by the caller.
func (gp *GaussianProcess) Observations() ([][]float64, []float64) {
	gp.mu.RLock()
	defer gp.mu.RUnlock()

	X := make([][]float64, len(gp.X))
	for i, x := range gp.X {
		X[i] = make([]float64, len(x))
		copy(X[i], x)
	}

	Y := make([]float64, len(gp.Y))
	copy(Y, gp.Y)

	return X, Y
}

// Kernel returns the covariance kernel the model was built with.
func (gp *GaussianProcess) Kernel() RBF {
	gp.mu.RLock()
	defer gp.mu.RUnlock()

	return gp.kernel
}

// NoiseVariance returns the observation noise variance.
func (gp *GaussianProcess) NoiseVariance() float64 {
	gp.mu.RLock()
	defer gp.mu.RUnlock()

	return gp.noiseVariance
}

// SetJitter enables diagonal regularization of the training covariance
// matrix. This is an explicit opt-in: without it a numerically singular
// matrix fails with ErrSingularCovariance instead of being silently patched.
//
// Parameters:
// - jitter: Value added to every diagonal entry of K(X, X) (must be >= 0)
//
// Returns:
// - error: ErrInvalidHyperparameter if jitter is negative
//
// Usage example:
//
//	// Stabilize a noiseless model with near-duplicate training points.
//	if err := gp.SetJitter(1e-8); err != nil { ... }
func (gp *GaussianProcess) SetJitter(jitter float64) error {
	if jitter < 0 {
		return fmt.Errorf(
			"%w: jitter must be >= 0, got %v",
			ErrInvalidHyperparameter, jitter,
		)
	}

	gp.mu.Lock()
	defer gp.mu.Unlock()

	gp.jitter = jitter

	return nil
}

// Jitter returns the current diagonal regularization value.
func (gp *GaussianProcess) Jitter() float64 {
	gp.mu.RLock()
	defer gp.mu.RUnlock()

	return gp.jitter
}

// Predict computes the posterior distribution of the latent function at the
// query points, conditioned on all observations made so far.
//
// Parameters:
// - query: Points at which to predict (all with the model's dimensionality)
//
// Returns:
// - *mat.VecDense: Posterior mean, one entry per query point
// - *mat.SymDense: Posterior covariance between the query points
// - error: ErrDimensionMismatch or ErrSingularCovariance (see below)
//
// Usage example:
//
//	mean, cov, err := gp.Predict([][]float64{{0.2}, {0.5}})
//	if err != nil { ... }
//	fmt.Printf("f(0.2) = %v ± %v\n", mean.AtVec(0), math.Sqrt(cov.At(0, 0)))
//
// Mathematical details (zero prior mean):
//
//	K   = k(X, X) + noiseVariance*I (+ jitter*I when requested)
//	K*  = k(X, X*)
//	K** = k(X*, X*)
//	μ   = K*ᵀ K⁻¹ y
//	Σ   = K** − K*ᵀ K⁻¹ K*
//
// K⁻¹ is never formed explicitly; both solves go through a Cholesky
// factorization of K. If the factorization fails the model is degenerate
// (duplicated points with zero noise, extreme length scale) and the call
// fails with ErrSingularCovariance.
//
// Important notes:
// - With no observations the prior is returned: μ = 0, Σ = K**
// - The posterior is computed fresh on every call; nothing is cached
// - Diagonal entries of Σ can go slightly negative from floating-point
//   cancellation; PredictPoint clamps them when extracting a standard
//   deviation, Predict returns them as computed.
//
// Thread safety:
// - Protected by read mutex; multiple predictions can proceed in parallel.
func (gp *GaussianProcess) Predict(query [][]float64) (*mat.VecDense, *mat.SymDense, error) {
	gp.mu.RLock()
	defer gp.mu.RUnlock()

	return gp.predictLocked(query)
}

// predictLocked is Predict without locking; callers must hold at least a
// read lock.
func (gp *GaussianProcess) predictLocked(query [][]float64) (*mat.VecDense, *mat.SymDense, error) {
	m := len(query)

	if m == 0 {
		return nil, nil, fmt.Errorf("%w: empty query set", ErrDimensionMismatch)
	}

	// Query self-covariance, without noise.
	kss, err := gp.kernel.CovarianceSym(query, 0)
	if err != nil {
		return nil, nil, err
	}

	n := len(gp.X)

	// No observations: the posterior is the prior.
	if n == 0 {
		return mat.NewVecDense(m, nil), kss, nil
	}

	// Training covariance with noise (and jitter when requested).
	kTrain, err := gp.kernel.CovarianceSym(gp.X, gp.noiseVariance)
	if err != nil {
		return nil, nil, err
	}

	if gp.jitter > 0 {
		for i := 0; i < n; i++ {
			kTrain.SetSym(i, i, kTrain.At(i, i)+gp.jitter)
		}
	}

	// Cross covariance between training and query points, without noise.
	ks, err := gp.kernel.CovarianceMatrix(gp.X, query)
	if err != nil {
		return nil, nil, err
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(kTrain); !ok {
		return nil, nil, fmt.Errorf(
			"%w: Cholesky factorization of the %dx%d training covariance failed"+
				" (consider observation noise or SetJitter)",
			ErrSingularCovariance, n, n,
		)
	}

	// α = K⁻¹ y, then μ = K*ᵀ α.
	alpha := mat.NewVecDense(n, nil)
	if err := chol.SolveVecTo(alpha, mat.NewVecDense(n, gp.Y)); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrSingularCovariance, err)
	}

	mean := mat.NewVecDense(m, nil)
	mean.MulVec(ks.T(), alpha)

	// V = K⁻¹ K*, then Σ = K** − K*ᵀ V.
	v := mat.NewDense(n, m, nil)
	if err := chol.SolveTo(v, ks); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrSingularCovariance, err)
	}

	reduction := mat.NewDense(m, m, nil)
	reduction.Mul(ks.T(), v)

	// K*ᵀ K⁻¹ K* is symmetric in exact arithmetic but not in floating
	// point; average the two triangles before subtracting.
	cov := mat.NewSymDense(m, nil)
	for i := 0; i < m; i++ {
		for j := i; j < m; j++ {
			cov.SetSym(i, j, kss.At(i, j)-0.5*(reduction.At(i, j)+reduction.At(j, i)))
		}
	}

	return mean, cov, nil
}

// PredictPoint is a convenience wrapper around Predict for a single query
// point.
//
// Parameters:
// - x: Input point at which to predict
//
// Returns:
// - mean: Posterior mean at x
// - std: Posterior standard deviation at x (negative numerical variance is
//   clamped to 0 before the square root)
// - err: Same failure modes as Predict
//
// Usage example:
//
//	mean, std, err := gp.PredictPoint([]float64{0.2})
//	fmt.Printf("expected value: %v ± %v\n", mean, std)
func (gp *GaussianProcess) PredictPoint(x []float64) (mean, std float64, err error) {
	mu, cov, err := gp.Predict([][]float64{x})
	if err != nil {
		return 0, 0, err
	}

	variance := cov.At(0, 0)
	if variance < 0 {
		variance = 0
	}

	return mu.AtVec(0), math.Sqrt(variance), nil
}

// Sample draws independent realizations of the latent function at the query
// points from the posterior N(μ, Σ), or from the prior when the model has
// no observations yet.
//
// Parameters:
// - query: Points at which to evaluate each sampled function
// - nSamples: Number of independent draws (must be >= 1)
// - rng: Random source for the draws (must not be nil; seed it for
//   reproducible samples)
//
// Returns:
// - [][]float64: nSamples rows, each with one value per query point
// - error: Predict's failure modes, or an argument error
//
// Usage example:
//
//	rng := rand.New(rand.NewSource(42))
//	draws, err := gp.Sample(GridPool(0, 1, 100), 5, rng)
//
// Implementation notes:
// - Σ is factorized with a symmetric eigendecomposition; negative
//   eigenvalues (numerical noise, since a posterior covariance is positive
//   semi-definite and often rank-deficient) are clamped to 0
// - Every call produces fresh draws; nothing is cached across calls.
func (gp *GaussianProcess) Sample(query [][]float64, nSamples int, rng *rand.Rand) ([][]float64, error) {
	if nSamples < 1 {
		return nil, fmt.Errorf("number of samples must be >= 1, got %d", nSamples)
	}

	if rng == nil {
		return nil, fmt.Errorf("random source must not be nil")
	}

	gp.mu.RLock()
	defer gp.mu.RUnlock()

	mean, cov, err := gp.predictLocked(query)
	if err != nil {
		return nil, err
	}

	m := len(query)

	// Σ = Q Λ Qᵀ; a draw is μ + Q Λ^{1/2} z with z ~ N(0, I).
	var eig mat.EigenSym
	if ok := eig.Factorize(cov, true); !ok {
		return nil, fmt.Errorf(
			"%w: eigendecomposition of the %dx%d posterior covariance failed",
			ErrSingularCovariance, m, m,
		)
	}

	scales := eig.Values(nil)
	for i, v := range scales {
		if v < 0 {
			v = 0
		}

		scales[i] = math.Sqrt(v)
	}

	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	samples := make([][]float64, nSamples)

	for s := range samples {
		z := mat.NewVecDense(m, nil)
		for i := 0; i < m; i++ {
			z.SetVec(i, scales[i]*rng.NormFloat64())
		}

		draw := mat.NewVecDense(m, nil)
		draw.MulVec(&vecs, z)
		draw.AddVec(draw, mean)

		out := make([]float64, m)
		for i := 0; i < m; i++ {
			out[i] = draw.AtVec(i)
		}

		samples[s] = out
	}

	return samples, nil
}

//////
// Factory.
//////

// NewGaussianProcess creates a Gaussian Process regression model with the
// given kernel and observation noise. The model starts with no observations;
// predictions made before the first Observe return the prior.
//
// Parameters:
// - kernel: RBF covariance kernel, built with NewRBF
// - noiseVariance: Variance of the additive observation noise (must be >= 0;
//   0 means observations are exact and the posterior interpolates them)
//
// Returns:
// - *GaussianProcess: Pointer to the initialized model
// - error: ErrInvalidHyperparameter for an invalid kernel or negative noise
//
// Usage example:
//
//	kernel, _ := NewRBF(1.0, 0.3)
//	gp, err := NewGaussianProcess(kernel, 0.01)
//
// Best practices:
// - Create a new instance for each optimization run
// - Prefer nonzero noise (or SetJitter) when training points can repeat.
func NewGaussianProcess(kernel RBF, noiseVariance float64) (*GaussianProcess, error) {
	if !kernel.valid() {
		return nil, fmt.Errorf(
			"%w: kernel must be constructed with NewRBF",
			ErrInvalidHyperparameter,
		)
	}

	if noiseVariance < 0 {
		return nil, fmt.Errorf(
			"%w: noise variance must be >= 0, got %v",
			ErrInvalidHyperparameter, noiseVariance,
		)
	}

	return &GaussianProcess{
		kernel:        kernel,
		noiseVariance: noiseVariance,
	}, nil
}
