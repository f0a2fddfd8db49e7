package bo

import "fmt"

//////
// Helper functions.
//////

// pointSetDim returns the shared dimensionality of a point set, or
// ErrDimensionMismatch if the points disagree or any point is empty.
// An empty set has dimensionality 0.
func pointSetDim(X [][]float64) (int, error) {
	dim := 0

	for i, x := range X {
		if len(x) == 0 {
			return 0, fmt.Errorf("%w: empty point at index %d", ErrDimensionMismatch, i)
		}

		if dim == 0 {
			dim = len(x)

			continue
		}

		if len(x) != dim {
			return 0, fmt.Errorf(
				"%w: point at index %d has dimensionality %d, expected %d",
				ErrDimensionMismatch, i, len(x), dim,
			)
		}
	}

	return dim, nil
}

// isBetter reports whether candidate beats incumbent under the given
// objective direction.
func isBetter(candidate, incumbent float64, maximize bool) bool {
	if maximize {
		return candidate > incumbent
	}

	return candidate < incumbent
}
