package methods

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/manifold/affinity"
	"github.com/hupe1980/manifold/core"
	"github.com/hupe1980/manifold/eigen"
	"github.com/hupe1980/manifold/neighbors"
)

// ltsaAlignment accumulates the local tangent space alignment matrix. Each
// neighborhood contributes I - G G^T where G stacks the constant vector
// 1/sqrt(k) with the top target-dimension eigenvectors of the neighborhood's
// double-centered kernel Gram matrix.
func ltsaAlignment[D any](r Request[D], graph [][]int, t int) (*mat.SymDense, error) {
	n := len(graph)
	k := len(graph[0])
	if t >= k {
		return nil, fmt.Errorf("%s must exceed the target dimension %d for tangent space alignment: %w",
			core.KeyNumNeighbors, t, core.ErrWrongParameterValue)
	}

	m := mat.NewDense(n, n, nil)
	gram := mat.NewSymDense(k, nil)

	for i, nbrs := range graph {
		if i%checkStride == 0 {
			if err := r.EC.Checkpoint(); err != nil {
				return nil, err
			}
			r.EC.ReportProgress(float64(i) / float64(n))
		}

		for a := 0; a < k; a++ {
			ha := r.DS.At(nbrs[a])
			for b := a; b < k; b++ {
				gram.SetSym(a, b, r.CB.Kernel.Kernel(ha, r.DS.At(nbrs[b])))
			}
		}
		affinity.DoubleCenter(gram)

		var es mat.EigenSym
		if !es.Factorize(gram, true) {
			return nil, fmt.Errorf("local Gram factorization failed at sample %d: %w",
				i, core.ErrEigendecomposition)
		}
		var lv mat.Dense
		es.VectorsTo(&lv)

		// G = [1/sqrt(k) | top-t eigenvectors]; eigenvalues come ascending
		// so the top block sits in the last columns.
		g := mat.NewDense(k, t+1, nil)
		inv := 1 / math.Sqrt(float64(k))
		for a := 0; a < k; a++ {
			g.Set(a, 0, inv)
			for j := 0; j < t; j++ {
				g.Set(a, j+1, lv.At(a, k-1-j))
			}
		}

		var gg mat.Dense
		gg.Mul(g, g.T())
		for a, na := range nbrs {
			for b, nb := range nbrs {
				v := -gg.At(a, b)
				if a == b {
					v += 1
				}
				m.Set(na, nb, m.At(na, nb)+v)
			}
		}
	}

	r.EC.ReportProgress(1)
	return symmetrize(m), nil
}

// KernelLocalTangentSpaceAlignment embeds the null-adjacent spectrum of the
// tangent space alignment matrix built through the kernel callback.
func KernelLocalTangentSpaceAlignment[D any](r Request[D]) (*core.Result, error) {
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
	graph, err := r.knn(neighbors.KernelDistance[D]{K: r.CB.Kernel})
	if err != nil {
		return nil, err
	}
	m, err := ltsaAlignment(r, graph, t)
	if err != nil {
		return nil, err
	}

	vecs, vals, err := eigen.Decompose(backend, m, eigen.Smallest, t, 1, shift)
	if err != nil {
		return nil, err
	}
	return &core.Result{Embedding: vecs, Eigenvalues: vals}, nil
}

// LinearLocalTangentSpaceAlignment constrains the LTSA objective to linear
// projections of the features and returns the projection artifact.
func LinearLocalTangentSpaceAlignment[D any](r Request[D]) (*core.Result, error) {
	d := r.CB.Features.Dimension()
	t, err := r.targetDim(d)
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
	graph, err := r.knn(neighbors.KernelDistance[D]{K: r.CB.Kernel})
	if err != nil {
		return nil, err
	}
	m, err := ltsaAlignment(r, graph, t)
	if err != nil {
		return nil, err
	}

	x, mean, err := r.featureMatrix()
	if err != nil {
		return nil, err
	}
	a, vals, err := linearAlignment(m, t, backend, shift, x, mean)
	if err != nil {
		return nil, err
	}

	return &core.Result{
		Embedding:   project(x, mean, a.Matrix),
		Eigenvalues: vals,
		Projection:  a,
	}, nil
}
