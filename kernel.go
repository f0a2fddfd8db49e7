package bo

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

//////
// Const, vars, types.
//////

// RBF implements the Radial Basis Function (also known as Gaussian, or squared
// exponential) covariance kernel. It measures the similarity between two points
// in the input space, with the similarity decreasing exponentially with their
// squared Euclidean distance.
//
// Fields (set through NewRBF, immutable afterwards):
// - variance: Signal variance; the prior covariance of a point with itself
// - lengthScale: Kernel width controlling the smoothness of interpolation
//
// Mathematical formula:
//
//	k(x1, x2) = variance * exp(-||x1 - x2||^2 / (2 * lengthScale^2))
//
// Important notes:
// - Larger length scales = smoother interpolation
// - Smaller length scales = more local influence
// - The kernel is stateless and purely functional; an RBF value is safe to
//   copy and share between goroutines.
type RBF struct {
	// variance scales the whole kernel; k(x, x) == variance.
	variance float64

	// lengthScale controls how quickly covariance decays with distance.
	lengthScale float64
}

//////
// Methods.
//////

// Variance returns the signal variance hyperparameter.
func (k RBF) Variance() float64 { return k.variance }

// LengthScale returns the length scale hyperparameter.
func (k RBF) LengthScale() float64 { return k.lengthScale }

// Cov evaluates the kernel at a single pair of points.
//
// Parameters:
// - x1, x2: Input vectors to compare (must have the same length)
//
// Returns:
// - float64: Prior covariance between the two points (0 < value <= variance)
//
// Usage example:
//
//	k, _ := NewRBF(1.0, 0.3)
//	c := k.Cov([]float64{0.2}, []float64{0.5})
//
// Important notes:
// - Returns variance for identical points
// - Returns values close to 0 for points many length scales apart
// - Assumes inputs of equal dimensionality; the matrix builders below check
//   dimensions and return ErrDimensionMismatch before evaluation.
func (k RBF) Cov(x1, x2 []float64) float64 {
	// Squared Euclidean distance.
	var sum float64

	for i := range x1 {
		diff := x1[i] - x2[i]

		sum += diff * diff
	}

	return k.variance * math.Exp(-sum/(2*k.lengthScale*k.lengthScale))
}

// CovarianceMatrix evaluates the kernel pairwise between two point sets.
//
// Parameters:
// - X: First point set (rows of the result)
// - Z: Second point set (columns of the result)
//
// Returns:
// - *mat.Dense: len(X) x len(Z) matrix with entry (i, j) = k(X[i], Z[j])
// - error: ErrDimensionMismatch if point dimensionality is inconsistent
//
// Usage example:
//
//	k, _ := NewRBF(1.0, 0.3)
//	ks, err := k.CovarianceMatrix(train, query)
//
// Important notes:
// - Point order defines row/column correspondence
// - The naive double loop is intentional; matrix sizes in sequential
//   optimization stay small enough that factorization dominates anyway.
func (k RBF) CovarianceMatrix(X, Z [][]float64) (*mat.Dense, error) {
	if len(X) == 0 || len(Z) == 0 {
		return nil, fmt.Errorf("%w: empty point set", ErrDimensionMismatch)
	}

	dim, err := pointSetDim(X)
	if err != nil {
		return nil, err
	}

	dimZ, err := pointSetDim(Z)
	if err != nil {
		return nil, err
	}

	if dim != 0 && dimZ != 0 && dim != dimZ {
		return nil, fmt.Errorf(
			"%w: point sets have dimensionality %d and %d",
			ErrDimensionMismatch, dim, dimZ,
		)
	}

	out := mat.NewDense(len(X), len(Z), nil)

	for i := range X {
		for j := range Z {
			out.Set(i, j, k.Cov(X[i], Z[j]))
		}
	}

	return out, nil
}

// CovarianceSym evaluates the kernel on a point set against itself and adds
// observation noise to the diagonal.
//
// Parameters:
// - X: Point set
// - noiseVariance: Variance of the additive observation noise (may be 0)
//
// Returns:
// - *mat.SymDense: len(X) x len(X) symmetric matrix k(X, X) + noiseVariance*I
// - error: ErrInvalidHyperparameter for negative noise, ErrDimensionMismatch
//   for inconsistent point dimensionality
//
// Important notes:
// - Noise belongs on the training block only; cross- and query-covariance
//   blocks are built with CovarianceMatrix, which never adds noise
// - The result is symmetric positive semi-definite for any valid
//   hyperparameters; positive definiteness additionally requires distinct
//   points or nonzero noise.
func (k RBF) CovarianceSym(X [][]float64, noiseVariance float64) (*mat.SymDense, error) {
	if noiseVariance < 0 {
		return nil, fmt.Errorf(
			"%w: noise variance must be >= 0, got %v",
			ErrInvalidHyperparameter, noiseVariance,
		)
	}

	if len(X) == 0 {
		return nil, fmt.Errorf("%w: empty point set", ErrDimensionMismatch)
	}

	if _, err := pointSetDim(X); err != nil {
		return nil, err
	}

	n := len(X)

	out := mat.NewSymDense(n, nil)

	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := k.Cov(X[i], X[j])

			if i == j {
				v += noiseVariance
			}

			out.SetSym(i, j, v)
		}
	}

	return out, nil
}

// valid reports whether the hyperparameters form a usable kernel. The zero
// value RBF{} is invalid; construct through NewRBF.
func (k RBF) valid() bool {
	return k.variance > 0 && k.lengthScale > 0
}

//////
// Factory.
//////

// NewRBF creates an RBF kernel with the given hyperparameters.
//
// Parameters:
// - variance: Signal variance (must be > 0)
// - lengthScale: Kernel width (must be > 0)
//
// Returns:
// - RBF: The kernel value
// - error: ErrInvalidHyperparameter if either parameter is not positive
//
// Usage example:
//
//	k, err := NewRBF(1.0, 0.3)
//	if err != nil {
//	    // Non-positive variance or length scale.
//	}
//
// Best practices:
// - Choose the length scale based on the expected smoothness of the target
//   function relative to the input scale
// - Normalize inputs so a single length scale fits every dimension.
func NewRBF(variance, lengthScale float64) (RBF, error) {
	k := RBF{variance: variance, lengthScale: lengthScale}

	if !k.valid() {
		return RBF{}, fmt.Errorf(
			"%w: variance and length scale must be > 0, got %v and %v",
			ErrInvalidHyperparameter, variance, lengthScale,
		)
	}

	return k, nil
}
