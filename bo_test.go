package bo

import (
	"math"
	"math/rand"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptimizeZeroSteps(t *testing.T) {
	// Zero steps is a valid run that leaves the observation set unchanged.
	gp := newTestGP(t, 0.01)

	require.NoError(t, gp.Observe([]float64{0.2}, 0.1))
	require.NoError(t, gp.Observe([]float64{0.5}, -0.3))

	config := DefaultConfig()
	config.Steps = 0

	result, err := Optimize(
		config,
		func(x []float64) float64 { return x[0] },
		GridPool(0, 1, 10),
		gp,
	)
	require.NoError(t, err)

	assert.Equal(t, [][]float64{{0.2}, {0.5}}, result.X)
	assert.Equal(t, []float64{0.1, -0.3}, result.Y)

	// Best under the default minimization convention.
	assert.Equal(t, 1, result.BestIndex)
	assert.Equal(t, -0.3, result.BestY)
}

func TestOptimizeGrowsObservationSetByOnePerStep(t *testing.T) {
	gp := newTestGP(t, 0.01)

	require.NoError(t, gp.Observe([]float64{0.1}, 0.5))

	config := DefaultConfig()
	config.Steps = 6
	config.Maximize = true

	var calls int32

	result, err := Optimize(
		config,
		func(x []float64) float64 {
			atomic.AddInt32(&calls, 1)

			return math.Sin(3 * x[0])
		},
		GridPool(0, 1, 25),
		gp,
	)
	require.NoError(t, err)

	// Exactly one objective evaluation and one new observation per step.
	assert.Equal(t, int32(6), atomic.LoadInt32(&calls))
	assert.Len(t, result.X, 1+6)
	assert.Len(t, result.Y, 1+6)
	assert.Equal(t, 1+6, gp.Len())
}

func TestOptimizeFindsMaximum(t *testing.T) {
	// A smooth concave objective with its peak at 0.3; the loop should
	// discover a near-optimal pool point well within 20 steps.
	gp := newTestGP(t, 0.01)

	config := DefaultConfig()
	config.Steps = 20
	config.Maximize = true

	result, err := Optimize(
		config,
		func(x []float64) float64 { return -(x[0] - 0.3) * (x[0] - 0.3) },
		GridPool(0, 1, 50),
		gp,
	)
	require.NoError(t, err)

	assert.Greater(t, result.BestY, -0.05)
	assert.InDelta(t, 0.3, result.BestX[0], 0.25)

	// The best entry is consistent with the raw observation set.
	assert.Equal(t, result.Y[result.BestIndex], result.BestY)
	assert.Equal(t, result.X[result.BestIndex], result.BestX)
}

func TestOptimizeDeterministicWithFixedSeeds(t *testing.T) {
	// Fixing every random source involved makes two independent runs select
	// identical point sequences.
	run := func() *Result {
		gp := newTestGP(t, 0.01)

		noise := rand.New(rand.NewSource(11))

		config := DefaultConfig()
		config.Steps = 8
		config.Maximize = true
		config.AcqParams.RandomState = rand.New(rand.NewSource(42))

		result, err := Optimize(
			config,
			func(x []float64) float64 {
				return math.Sin(3*x[0]) + 0.1*noise.NormFloat64()
			},
			GridPool(0, 2, 40),
			gp,
		)
		require.NoError(t, err)

		return result
	}

	first := run()
	second := run()

	assert.Equal(t, first.X, second.X)
	assert.Equal(t, first.Y, second.Y)
	assert.Equal(t, first.BestIndex, second.BestIndex)
}

func TestOptimizeAbortsOnSingularCovariance(t *testing.T) {
	// With zero noise and a single-point pool, the loop is forced to
	// re-select the same point and the training covariance degenerates.
	// The run must abort with the partial progress intact.
	gp := newTestGP(t, 0)

	config := DefaultConfig()
	config.Steps = 5

	result, err := Optimize(
		config,
		func(x []float64) float64 { return x[0] },
		[][]float64{{0.5}},
		gp,
	)

	assert.ErrorIs(t, err, ErrSingularCovariance)

	// Two observations were made before the third fit failed.
	require.NotNil(t, result)
	assert.Equal(t, [][]float64{{0.5}, {0.5}}, result.X)
}

func TestOptimizeProgressChannel(t *testing.T) {
	gp := newTestGP(t, 0.01)

	config := DefaultConfig()
	config.Steps = 5
	config.Maximize = true

	// Buffered to hold every update; sends inside the loop never block.
	progressChan := make(chan ProgressUpdate, config.Steps)
	defer close(progressChan)

	// Assign the channel to config (automatically converted to send-only).
	config.ProgressChan = progressChan

	_, err := Optimize(
		config,
		func(x []float64) float64 { return math.Sin(3 * x[0]) },
		GridPool(0, 1, 20),
		gp,
	)
	require.NoError(t, err)

	// One update per step, in order, all buffered by the time the run ends.
	for step := 1; step <= config.Steps; step++ {
		update := <-progressChan

		assert.Equal(t, step, update.Step)
		assert.Equal(t, config.Steps, update.TotalSteps)
		assert.Len(t, update.SelectedPoint, 1)
	}
}

func TestOptimizeArgumentValidation(t *testing.T) {
	gp := newTestGP(t, 0.01)

	objective := func(x []float64) float64 { return x[0] }

	config := DefaultConfig()
	config.Steps = 3

	_, err := Optimize(config, objective, GridPool(0, 1, 5), nil)
	assert.Error(t, err)

	_, err = Optimize(config, nil, GridPool(0, 1, 5), gp)
	assert.Error(t, err)

	_, err = Optimize(config, objective, nil, gp)
	assert.Error(t, err)

	config.Steps = -1

	_, err = Optimize(config, objective, GridPool(0, 1, 5), gp)
	assert.Error(t, err)
}

func TestTrajectoryRunningBest(t *testing.T) {
	result := &Result{
		Y:        []float64{0.5, 0.2, 0.8, 0.1, 0.9},
		Maximize: false,
	}

	assert.Equal(t, []float64{0.5, 0.2, 0.2, 0.1, 0.1}, result.Trajectory())

	result.Maximize = true

	assert.Equal(t, []float64{0.5, 0.5, 0.8, 0.8, 0.9}, result.Trajectory())
}

func TestSeedObservations(t *testing.T) {
	gp := newTestGP(t, 0.01)

	rng := rand.New(rand.NewSource(42))

	err := SeedObservations(gp, func(x []float64) float64 { return x[0] }, rng, 5,
		ParameterRange[float64]{Min: 0, Max: 1},
	)
	require.NoError(t, err)

	assert.Equal(t, 5, gp.Len())

	X, Y := gp.Observations()

	for i := range X {
		assert.GreaterOrEqual(t, X[i][0], 0.0)
		assert.LessOrEqual(t, X[i][0], 1.0)
		assert.Equal(t, X[i][0], Y[i])
	}
}

func TestRandomPool(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	pool := RandomPool(rng, 50,
		ParameterRange[int64]{Min: 1, Max: 8},
		ParameterRange[int64]{Min: -3, Max: 3},
	)

	assert.Len(t, pool, 50)

	for _, point := range pool {
		require.Len(t, point, 2)

		// Integer ranges produce whole-valued, in-range coordinates.
		assert.Equal(t, math.Trunc(point[0]), point[0])
		assert.GreaterOrEqual(t, point[0], 1.0)
		assert.LessOrEqual(t, point[0], 8.0)
		assert.GreaterOrEqual(t, point[1], -3.0)
		assert.LessOrEqual(t, point[1], 3.0)
	}

	// Same seed, same pool.
	again := RandomPool(rand.New(rand.NewSource(42)), 50,
		ParameterRange[int64]{Min: 1, Max: 8},
		ParameterRange[int64]{Min: -3, Max: 3},
	)

	assert.Equal(t, pool, again)
}

func TestGridPool(t *testing.T) {
	pool := GridPool(0, 1, 5)

	assert.Equal(t, [][]float64{{0}, {0.25}, {0.5}, {0.75}, {1}}, pool)

	assert.Equal(t, [][]float64{{0.3}}, GridPool(0.3, 0.9, 1))
	assert.Nil(t, GridPool(0, 1, 0))
}
