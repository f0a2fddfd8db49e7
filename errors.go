package bo

import "errors"

//////
// Error kinds.
//////

// Sentinel errors returned by the kernel, the Gaussian Process model, and the
// optimization loop. All of them are raised synchronously at the point of
// detection and propagate to the caller; none are retried or swallowed.
//
// Use errors.Is to test for a specific kind:
//
//	_, _, err := gp.Predict(query)
//	if errors.Is(err, ErrSingularCovariance) {
//	    // Kernel hyperparameters produce a degenerate covariance matrix.
//	    // Fix the model (e.g. add observation noise or jitter); do not retry.
//	}
var (
	// ErrInvalidHyperparameter indicates a non-positive kernel variance or
	// length scale, or a negative noise variance.
	ErrInvalidHyperparameter = errors.New("invalid hyperparameter")

	// ErrSingularCovariance indicates that the training covariance matrix is
	// not safely invertible (its Cholesky factorization failed). This usually
	// means duplicated training points with zero noise, or a length scale far
	// too large for the data. It reflects a genuine modeling problem that the
	// caller must correct.
	ErrSingularCovariance = errors.New("singular covariance matrix")

	// ErrDimensionMismatch indicates inconsistent point dimensionality across
	// a call, or an input/output count mismatch.
	ErrDimensionMismatch = errors.New("dimension mismatch")
)
