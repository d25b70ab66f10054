// Package manifold provides a dimensionality-reduction engine for Go.
//
// Manifold embeds high-dimensional data into a low-dimensional space using
// spectral, projection and iterative methods: PCA and kernel PCA, (landmark)
// multidimensional scaling, Isomap, locally linear embedding and the tangent
// space alignment family, Laplacian eigenmaps, diffusion maps, t-SNE, SPE,
// factor analysis, random projection and more.
//
// # Quick Start
//
// The engine never touches data directly. Callers register callbacks that
// compute kernels, distances or feature vectors over opaque handles, and the
// engine drives them:
//
//	points := manifold.SliceDataset[[]float64](data)
//	cb := manifold.Callbacks[[]float64]{
//	    Features: manifold.NewFeatureFunc(3, func(p []float64, dst *mat.VecDense) {
//	        for i, v := range p {
//	            dst.SetVec(i, v)
//	        }
//	    }),
//	}
//	result, err := manifold.Embed(ctx, points, cb, manifold.Params{
//	    manifold.KeyMethod:          manifold.PCA,
//	    manifold.KeyTargetDimension: 2,
//	})
//
// result.Embedding has one row per sample. Linear methods additionally return
// a projection artifact for embedding unseen points:
//
//	embedded, err := manifold.Project(ctx, result.Projection, newPoints, cb.Features)
//
// # Configuration
//
// All tuning flows through Params, a map over an enumerated key space.
// Unset keys receive documented defaults; the caller's map is cloned and
// never mutated. Typed getters surface ErrMissingParameter,
// ErrWrongParameterType and ErrWrongParameterValue with the offending key
// named in the message.
//
// # Progress and Cancellation
//
// Long computations poll the KeyCancel hook and the context.Context at
// checkpoints and report through the KeyProgress hook:
//
//	params[manifold.KeyProgress] = manifold.ProgressFunc(func(v float64) { bar.Set(v) })
//	params[manifold.KeyCancel] = manifold.CancelFunc(func() bool { return stopRequested.Load() })
//
// Cancellation surfaces as ErrCancelled with no partial result.
//
// # Key Features
//
//   - 19 embedding methods behind one dispatch call
//   - Callback-driven data access (kernel, distance, feature capabilities)
//   - Iterative (Lanczos) and dense eigensolver backends
//   - Vantage-point tree and brute-force neighbor search
//   - Out-of-sample projection for linear methods
//   - Model persistence to local disk, memory, MinIO and S3
package manifold
