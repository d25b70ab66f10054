package affinity_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/manifold/affinity"
	"github.com/hupe1980/manifold/core"
	"github.com/hupe1980/manifold/testutil"
)

func newEC() *core.Context {
	return core.NewContext(context.Background(), nil, nil)
}

func randomData(n, dim int, seed int64) core.SliceDataset[[]float64] {
	rng := testutil.NewRNG(seed)
	data := make([][]float64, n)
	for i := range data {
		data[i] = make([]float64, dim)
		rng.FillGaussian(data[i])
	}
	return data
}

func TestCovarianceMatchesTwoPass(t *testing.T) {
	const n, dim = 100, 5
	ds := randomData(n, dim, 1)
	cb := testutil.Callbacks(dim)

	scatter, err := affinity.Covariance(newEC(), ds, cb.Features)
	require.NoError(t, err)

	// Two-pass reference: mean first, then explicit outer products.
	mean := make([]float64, dim)
	for _, p := range ds {
		for j, v := range p {
			mean[j] += v / float64(n)
		}
	}
	want := mat.NewSymDense(dim, nil)
	for _, p := range ds {
		for a := 0; a < dim; a++ {
			for b := a; b < dim; b++ {
				want.SetSym(a, b, want.At(a, b)+(p[a]-mean[a])*(p[b]-mean[b]))
			}
		}
	}

	for a := 0; a < dim; a++ {
		for b := 0; b < dim; b++ {
			assert.InDelta(t, want.At(a, b), scatter.At(a, b), 1e-9)
		}
	}
}

func TestCovarianceTrace(t *testing.T) {
	const n, dim = 100, 5
	ds := randomData(n, dim, 2)
	cb := testutil.Callbacks(dim)

	scatter, err := affinity.Covariance(newEC(), ds, cb.Features)
	require.NoError(t, err)

	// trace(scatter) = n * sum of population variances.
	mean := make([]float64, dim)
	for _, p := range ds {
		for j, v := range p {
			mean[j] += v / float64(n)
		}
	}
	varSum := 0.0
	for _, p := range ds {
		for j, v := range p {
			varSum += (v - mean[j]) * (v - mean[j]) / float64(n)
		}
	}

	trace := 0.0
	for i := 0; i < dim; i++ {
		trace += scatter.At(i, i)
	}
	assert.InDelta(t, float64(n)*varSum, trace, 1e-8)
}

func TestCovarianceEmpty(t *testing.T) {
	cb := testutil.Callbacks(3)
	_, err := affinity.Covariance(newEC(), core.SliceDataset[[]float64]{}, cb.Features)
	assert.ErrorIs(t, err, core.ErrWrongParameterValue)
}

func TestCenteredKernelRowSums(t *testing.T) {
	const n, dim = 40, 4
	ds := randomData(n, dim, 3)
	cb := testutil.Callbacks(dim)

	gram, err := affinity.CenteredKernel(newEC(), ds, cb.Kernel)
	require.NoError(t, err)

	for i := 0; i < n; i++ {
		sum := 0.0
		for j := 0; j < n; j++ {
			sum += gram.At(i, j)
		}
		assert.InDelta(t, 0, sum, 1e-9, "row %d of a double-centered matrix must sum to zero", i)
	}
}

func TestDistancesSymmetricZeroDiagonal(t *testing.T) {
	const n, dim = 25, 3
	ds := randomData(n, dim, 4)
	cb := testutil.Callbacks(dim)

	dist, err := affinity.Distances(newEC(), ds, cb.Distance)
	require.NoError(t, err)

	for i := 0; i < n; i++ {
		assert.Zero(t, dist.At(i, i))
		for j := 0; j < n; j++ {
			assert.Equal(t, dist.At(i, j), dist.At(j, i))
			assert.GreaterOrEqual(t, dist.At(i, j), 0.0)
		}
	}
}

func TestKernelCancellation(t *testing.T) {
	ds := randomData(10, 3, 5)
	cb := testutil.Callbacks(3)
	ec := core.NewContext(context.Background(), nil, func() bool { return true })

	_, err := affinity.Kernel(ec, ds, cb.Kernel)
	assert.ErrorIs(t, err, core.ErrCancelled)
}
