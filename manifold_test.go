package manifold_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/manifold"
	"github.com/hupe1980/manifold/testutil"
)

func swissRoll(n int) (manifold.SliceDataset[[]float64], manifold.Callbacks[[]float64]) {
	return testutil.SwissRoll(n, 0.05, 17), testutil.Callbacks(3)
}

func TestEmbedMissingMethod(t *testing.T) {
	ds, cb := swissRoll(10)
	_, err := manifold.Embed(context.Background(), ds, cb, manifold.Params{})
	assert.ErrorIs(t, err, manifold.ErrMissingParameter)
}

func TestEmbedWrongMethodType(t *testing.T) {
	ds, cb := swissRoll(10)
	_, err := manifold.Embed(context.Background(), ds, cb, manifold.Params{
		manifold.KeyMethod: "pca",
	})
	assert.ErrorIs(t, err, manifold.ErrWrongParameterType)
}

func TestEmbedUnknownMethod(t *testing.T) {
	ds, cb := swissRoll(10)
	_, err := manifold.Embed(context.Background(), ds, cb, manifold.Params{
		manifold.KeyMethod: manifold.Method(99),
	})
	assert.ErrorIs(t, err, manifold.ErrWrongParameterValue)
}

func TestEmbedMissingCapability(t *testing.T) {
	ds, cb := swissRoll(10)
	cb.Kernel = nil
	_, err := manifold.Embed(context.Background(), ds, cb, manifold.Params{
		manifold.KeyMethod: manifold.KernelPCA,
	})
	assert.ErrorIs(t, err, manifold.ErrUnsupportedMethod)
}

func TestEmbedInvalidTargetDimension(t *testing.T) {
	ds, cb := swissRoll(10)
	_, err := manifold.Embed(context.Background(), ds, cb, manifold.Params{
		manifold.KeyMethod:          manifold.PCA,
		manifold.KeyTargetDimension: 0,
	})
	assert.ErrorIs(t, err, manifold.ErrWrongParameterValue)
}

func TestEmbedDoesNotMutateParams(t *testing.T) {
	ds, cb := swissRoll(20)
	p := manifold.Params{manifold.KeyMethod: manifold.PCA}

	_, err := manifold.Embed(context.Background(), ds, cb, p)
	require.NoError(t, err)
	assert.Len(t, p, 1, "defaults must land on a clone, not the caller's map")
}

func TestEmbedOutputColumns(t *testing.T) {
	ds, cb := swissRoll(30)
	res, err := manifold.Embed(context.Background(), ds, cb, manifold.Params{
		manifold.KeyMethod:        manifold.PCA,
		manifold.KeyOutputColumns: true,
	})
	require.NoError(t, err)

	rows, cols := res.Embedding.Dims()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 30, cols)
}

func TestEmbedOutputColumnsTransposes(t *testing.T) {
	// The column layout must be exactly the transpose of the row layout, not
	// merely the transposed shape. PCA is deterministic, so two runs that
	// differ only in the layout flag are comparable bit for bit.
	ds, cb := swissRoll(30)

	byRows, err := manifold.Embed(context.Background(), ds, cb, manifold.Params{
		manifold.KeyMethod: manifold.PCA,
	})
	require.NoError(t, err)

	byCols, err := manifold.Embed(context.Background(), ds, cb, manifold.Params{
		manifold.KeyMethod:        manifold.PCA,
		manifold.KeyOutputColumns: true,
	})
	require.NoError(t, err)

	assert.True(t, mat.Equal(byRows.Embedding.T(), byCols.Embedding),
		"column output must be the exact transpose of the row output")
}

func TestEmbedTargetDimension(t *testing.T) {
	ds, cb := swissRoll(30)
	res, err := manifold.Embed(context.Background(), ds, cb, manifold.Params{
		manifold.KeyMethod:          manifold.PCA,
		manifold.KeyTargetDimension: 3,
	})
	require.NoError(t, err)

	rows, cols := res.Embedding.Dims()
	assert.Equal(t, 30, rows)
	assert.Equal(t, 3, cols)
	require.Len(t, res.Eigenvalues, 3)
	assert.GreaterOrEqual(t, res.Eigenvalues[0], res.Eigenvalues[1])
	assert.GreaterOrEqual(t, res.Eigenvalues[1], res.Eigenvalues[2])
}

func TestPassThru(t *testing.T) {
	ds, cb := swissRoll(15)
	res, err := manifold.Embed(context.Background(), ds, cb, manifold.Params{
		manifold.KeyMethod: manifold.PassThru,
	})
	require.NoError(t, err)

	rows, cols := res.Embedding.Dims()
	require.Equal(t, 15, rows)
	require.Equal(t, 3, cols)
	for i, p := range ds {
		for j, v := range p {
			assert.Equal(t, v, res.Embedding.At(i, j))
		}
	}
}

func TestProjectRoundTrip(t *testing.T) {
	ds, cb := swissRoll(40)
	res, err := manifold.Embed(context.Background(), ds, cb, manifold.Params{
		manifold.KeyMethod: manifold.PCA,
	})
	require.NoError(t, err)
	require.NotNil(t, res.Projection)

	projected, err := manifold.Project(context.Background(), res.Projection, ds, cb.Features)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(res.Embedding, projected, 1e-8),
		"projecting the training data must reproduce the embedding")
}

func TestProjectLogsCompletion(t *testing.T) {
	ds, cb := swissRoll(25)
	res, err := manifold.Embed(context.Background(), ds, cb, manifold.Params{
		manifold.KeyMethod: manifold.PCA,
	})
	require.NoError(t, err)
	require.NotNil(t, res.Projection)

	var buf bytes.Buffer
	logger := manifold.NewLogger(slog.NewTextHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	_, err = manifold.Project(context.Background(), res.Projection, ds, cb.Features,
		manifold.WithLogger(logger))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "projection completed")
	assert.Contains(t, out, "samples=25")
	assert.Contains(t, out, "dimension=2")
}

func TestProjectDimensionMismatch(t *testing.T) {
	ds, cb := swissRoll(20)
	res, err := manifold.Embed(context.Background(), ds, cb, manifold.Params{
		manifold.KeyMethod: manifold.PCA,
	})
	require.NoError(t, err)

	wrong := testutil.Callbacks(5)
	_, err = manifold.Project(context.Background(), res.Projection, ds, wrong.Features)
	assert.ErrorIs(t, err, manifold.ErrWrongParameterValue)
}

func TestProjectNoArtifact(t *testing.T) {
	ds, cb := swissRoll(10)
	_, err := manifold.Project(context.Background(), nil, ds, cb.Features)
	assert.ErrorIs(t, err, manifold.ErrWrongParameterValue)
}

// methodParams returns working parameters for every method on a 100-sample
// swiss roll.
func methodParams() map[manifold.Method]manifold.Params {
	return map[manifold.Method]manifold.Params{
		manifold.KernelLocallyLinearEmbedding:     {manifold.KeyNumNeighbors: 10},
		manifold.KernelLocalTangentSpaceAlignment: {manifold.KeyNumNeighbors: 10},
		manifold.DiffusionMap:                     {},
		manifold.MultidimensionalScaling:          {},
		manifold.LandmarkMultidimensionalScaling:  {},
		manifold.Isomap:                           {manifold.KeyNumNeighbors: 10},
		manifold.LandmarkIsomap:                   {manifold.KeyNumNeighbors: 10},
		manifold.NeighborhoodPreservingEmbedding:  {manifold.KeyNumNeighbors: 10},
		manifold.LinearLocalTangentSpaceAlignment: {manifold.KeyNumNeighbors: 10},
		manifold.HessianLocallyLinearEmbedding:    {manifold.KeyNumNeighbors: 12},
		manifold.LaplacianEigenmaps:               {manifold.KeyNumNeighbors: 10},
		manifold.LocalityPreservingProjections:    {manifold.KeyNumNeighbors: 10},
		manifold.PCA:                              {},
		manifold.KernelPCA:                        {},
		manifold.RandomProjection:                 {},
		manifold.StochasticProximityEmbedding:     {manifold.KeyMaxIterations: 200},
		manifold.PassThru:                         {},
		manifold.FactorAnalysis:                   {},
		manifold.TDistributedStochasticNeighborEmbedding: {
			manifold.KeyPerplexity:    10.0,
			manifold.KeyMaxIterations: 60,
		},
	}
}

func TestEmbedAllMethods(t *testing.T) {
	ds, cb := swissRoll(100)

	for m, p := range methodParams() {
		t.Run(m.String(), func(t *testing.T) {
			p = p.Clone()
			p[manifold.KeyMethod] = m

			res, err := manifold.Embed(context.Background(), ds, cb, p)
			require.NoError(t, err)
			require.NotNil(t, res.Embedding)

			rows, cols := res.Embedding.Dims()
			assert.Equal(t, 100, rows)
			if m == manifold.PassThru {
				assert.Equal(t, 3, cols)
			} else {
				assert.Equal(t, 2, cols)
			}

			for i := 0; i < rows; i++ {
				for j := 0; j < cols; j++ {
					v := res.Embedding.At(i, j)
					require.False(t, v != v, "NaN at (%d,%d)", i, j)
				}
			}
		})
	}
}

func TestEmbedCancellation(t *testing.T) {
	ds, cb := swissRoll(100)

	for m, p := range methodParams() {
		t.Run(m.String(), func(t *testing.T) {
			p = p.Clone()
			p[manifold.KeyMethod] = m
			p[manifold.KeyCancel] = manifold.CancelFunc(func() bool { return true })

			res, err := manifold.Embed(context.Background(), ds, cb, p)
			assert.ErrorIs(t, err, manifold.ErrCancelled)
			assert.Nil(t, res, "a cancelled run must not yield a partial result")
		})
	}
}

func TestEmbedContextCancellation(t *testing.T) {
	ds, cb := swissRoll(50)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := manifold.Embed(ctx, ds, cb, manifold.Params{
		manifold.KeyMethod: manifold.PCA,
	})
	assert.ErrorIs(t, err, manifold.ErrCancelled)
}

func TestEmbedDeterministic(t *testing.T) {
	ds, cb := swissRoll(80)

	for _, m := range []manifold.Method{
		manifold.RandomProjection,
		manifold.StochasticProximityEmbedding,
		manifold.FactorAnalysis,
	} {
		t.Run(m.String(), func(t *testing.T) {
			p := manifold.Params{
				manifold.KeyMethod: m,
				manifold.KeySeed:   int64(7),
			}
			if m == manifold.StochasticProximityEmbedding {
				p[manifold.KeyMaxIterations] = 100
			}

			first, err := manifold.Embed(context.Background(), ds, cb, p)
			require.NoError(t, err)
			second, err := manifold.Embed(context.Background(), ds, cb, p)
			require.NoError(t, err)

			assert.True(t, mat.Equal(first.Embedding, second.Embedding),
				"same seed must reproduce the embedding bit for bit")
		})
	}
}

func TestEmbedProgressReachesOne(t *testing.T) {
	ds, cb := swissRoll(60)
	last := -1.0
	_, err := manifold.Embed(context.Background(), ds, cb, manifold.Params{
		manifold.KeyMethod:       manifold.MultidimensionalScaling,
		manifold.KeyProgress:     manifold.ProgressFunc(func(v float64) { last = v }),
		manifold.KeyNumNeighbors: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 1.0, last)
}

func TestEmbedPCARecoversVariance(t *testing.T) {
	// Data on a noisy plane: the top two components must carry almost all of
	// the spectrum.
	rng := testutil.NewRNG(5)
	n := 120
	data := make([][]float64, n)
	for i := range data {
		u, v := rng.Float64(), rng.Float64()
		data[i] = []float64{
			u + v,
			u - v,
			0.001 * rng.Float64(),
		}
	}
	cb := testutil.Callbacks(3)

	res, err := manifold.Embed(context.Background(), manifold.SliceDataset[[]float64](data), cb, manifold.Params{
		manifold.KeyMethod:          manifold.PCA,
		manifold.KeyTargetDimension: 3,
	})
	require.NoError(t, err)
	require.Len(t, res.Eigenvalues, 3)
	assert.Greater(t, res.Eigenvalues[1], 1000*res.Eigenvalues[2])
}
