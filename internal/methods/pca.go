package methods

import (
	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/manifold/affinity"
	"github.com/hupe1980/manifold/core"
	"github.com/hupe1980/manifold/eigen"
)

// PCA embeds onto the leading eigenvectors of the feature-space scatter
// matrix and returns the linear projection artifact.
func PCA[D any](r Request[D]) (*core.Result, error) {
	t, err := r.targetDim(r.CB.Features.Dimension())
	if err != nil {
		return nil, err
	}
	backend, err := r.eigenBackend()
	if err != nil {
		return nil, err
	}
	shift, err := r.eigenshift()
	if err != nil {
		return nil, err
	}

	scatter, err := affinity.Covariance(r.EC, r.DS, r.CB.Features)
	if err != nil {
		return nil, err
	}
	vecs, vals, err := eigen.Decompose(backend, scatter, eigen.Largest, t, 0, shift)
	if err != nil {
		return nil, err
	}

	x, mean, err := r.featureMatrix()
	if err != nil {
		return nil, err
	}

	return &core.Result{
		Embedding:   project(x, mean, vecs),
		Eigenvalues: vals,
		Projection:  &core.Projection{Matrix: vecs, Mean: mean},
	}, nil
}

// KernelPCA embeds via the leading eigenpairs of the double-centered Gram
// matrix, scaling each eigenvector by the square root of its eigenvalue.
func KernelPCA[D any](r Request[D]) (*core.Result, error) {
	n := r.DS.Len()
	t, err := r.targetDim(n)
	if err != nil {
		return nil, err
	}
	backend, err := r.eigenBackend()
	if err != nil {
		return nil, err
	}
	shift, err := r.eigenshift()
	if err != nil {
		return nil, err
	}

	gram, err := affinity.CenteredKernel(r.EC, r.DS, r.CB.Kernel)
	if err != nil {
		return nil, err
	}
	vecs, vals, err := eigen.Decompose(backend, gram, eigen.Largest, t, 0, shift)
	if err != nil {
		return nil, err
	}

	return &core.Result{
		Embedding:   scaleColumns(vecs, vals),
		Eigenvalues: vals,
	}, nil
}

// PassThru copies the feature vectors through unchanged; the embedding has
// the callback's full dimensionality regardless of the target dimension.
func PassThru[D any](r Request[D]) (*core.Result, error) {
	x, _, err := r.featureMatrix()
	if err != nil {
		return nil, err
	}
	return &core.Result{Embedding: x}, nil
}

// RandomProjection projects the raw feature vectors onto a seeded Gaussian
// matrix scaled by 1/sqrt(t).
func RandomProjection[D any](r Request[D]) (*core.Result, error) {
	d := r.CB.Features.Dimension()
	t, err := r.targetDim(d)
	if err != nil {
		return nil, err
	}
	seed, err := r.P.Seed()
	if err != nil {
		return nil, err
	}

	x, _, err := r.featureMatrix()
	if err != nil {
		return nil, err
	}

	p := gaussianMatrix(d, t, seed)
	zero := mat.NewVecDense(d, nil)

	return &core.Result{
		Embedding:  project(x, zero, p),
		Projection: &core.Projection{Matrix: p, Mean: zero},
	}, nil
}
