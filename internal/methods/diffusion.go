package methods

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/manifold/affinity"
	"github.com/hupe1980/manifold/core"
	"github.com/hupe1980/manifold/eigen"
)

// DiffusionMap embeds the leading non-stationary eigenpairs of the
// normalized diffusion operator built from pairwise distances, scaled by the
// eigenvalues raised to the configured number of timesteps.
func DiffusionMap[D any](r Request[D]) (*core.Result, error) {
	n := r.DS.Len()
	t, err := r.targetDim(n - 1)
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
	steps, err := r.P.IntDefault(core.KeyDiffusionTimesteps, 1)
	if err != nil {
		return nil, err
	}

	dist, err := affinity.Distances(r.EC, r.DS, r.CB.Distance)
	if err != nil {
		return nil, err
	}

	width, err := r.P.ScalarDefault(core.KeyGaussianKernelWidth, 0)
	if err != nil {
		return nil, err
	}
	if width <= 0 {
		// Mean squared distance keeps the heat kernel responsive at the
		// dataset's own scale.
		sum := 0.0
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				d := dist.At(i, j)
				sum += d * d
			}
		}
		width = sum / float64(n*n)
		if width <= 0 {
			width = 1
		}
	}

	// Heat kernel, alpha=1 density normalization, then the symmetric
	// conjugate of the Markov operator.
	kern := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			d := dist.At(i, j)
			kern.SetSym(i, j, math.Exp(-d*d/width))
		}
	}
	q := make([]float64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			q[i] += kern.At(i, j)
		}
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			kern.SetSym(i, j, kern.At(i, j)/(q[i]*q[j]))
		}
	}
	deg := make([]float64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			deg[i] += kern.At(i, j)
		}
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			kern.SetSym(i, j, kern.At(i, j)/math.Sqrt(deg[i]*deg[j]))
		}
	}
	if err := r.EC.Checkpoint(); err != nil {
		return nil, err
	}

	// The stationary eigenvector (eigenvalue 1) carries no geometry; skip
	// it and power the rest by the diffusion time.
	vecs, vals, err := eigen.Decompose(backend, kern, eigen.Largest, t, 1, shift)
	if err != nil {
		return nil, err
	}

	emb := mat.NewDense(n, t, nil)
	for i := 0; i < n; i++ {
		s := 1 / math.Sqrt(deg[i])
		for j := 0; j < t; j++ {
			emb.Set(i, j, vecs.At(i, j)*math.Pow(vals[j], float64(steps))*s)
		}
	}

	return &core.Result{Embedding: emb, Eigenvalues: vals}, nil
}
