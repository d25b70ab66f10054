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

// HessianLocallyLinearEmbedding estimates a local Hessian over tangent
// coordinates in every neighborhood and embeds the null-adjacent spectrum of
// the accumulated estimator.
func HessianLocallyLinearEmbedding[D any](r Request[D]) (*core.Result, error) {
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

	k := len(graph[0])
	hp := t * (t + 1) / 2
	if k < 1+t+hp {
		return nil, fmt.Errorf("%s must be at least %d for a %d-dimensional hessian estimate, got %d: %w",
			core.KeyNumNeighbors, 1+t+hp, t, k, core.ErrWrongParameterValue)
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
		vals := es.Values(nil)
		var lv mat.Dense
		es.VectorsTo(&lv)

		// Tangent coordinates: top-t eigenvectors scaled by sqrt(lambda).
		u := mat.NewDense(k, t, nil)
		for j := 0; j < t; j++ {
			s := math.Sqrt(math.Max(vals[k-1-j], 0))
			for a := 0; a < k; a++ {
				u.Set(a, j, lv.At(a, k-1-j)*s)
			}
		}

		// Design matrix [1 | U | quadratic terms of U], orthonormalized; the
		// trailing hp columns estimate the Hessian.
		cols := 1 + t + hp
		xi := mat.NewDense(k, cols, nil)
		for a := 0; a < k; a++ {
			xi.Set(a, 0, 1)
			for j := 0; j < t; j++ {
				xi.Set(a, 1+j, u.At(a, j))
			}
			c := 1 + t
			for p := 0; p < t; p++ {
				for q := p; q < t; q++ {
					xi.Set(a, c, u.At(a, p)*u.At(a, q))
					c++
				}
			}
		}
		gramSchmidt(xi)

		// Column sums normalize the estimator rows, matching the standard
		// formulation; near-zero sums are left untouched.
		w := mat.NewDense(k, hp, nil)
		for j := 0; j < hp; j++ {
			sum := 0.0
			for a := 0; a < k; a++ {
				sum += xi.At(a, 1+t+j)
			}
			if math.Abs(sum) < 1e-10 {
				sum = 1
			}
			for a := 0; a < k; a++ {
				w.Set(a, j, xi.At(a, 1+t+j)/sum)
			}
		}

		var ww mat.Dense
		ww.Mul(w, w.T())
		for a, na := range nbrs {
			for b, nb := range nbrs {
				m.Set(na, nb, m.At(na, nb)+ww.At(a, b))
			}
		}
	}
	r.EC.ReportProgress(1)

	vecs, vals, err := eigen.Decompose(backend, symmetrize(m), eigen.Smallest, t, 1, shift)
	if err != nil {
		return nil, err
	}
	return &core.Result{Embedding: vecs, Eigenvalues: vals}, nil
}

// gramSchmidt orthonormalizes the columns of a in place with the modified
// variant; zero-norm columns are left as zeros.
func gramSchmidt(a *mat.Dense) {
	rows, cols := a.Dims()
	for j := 0; j < cols; j++ {
		for p := 0; p < j; p++ {
			dot := 0.0
			for i := 0; i < rows; i++ {
				dot += a.At(i, j) * a.At(i, p)
			}
			for i := 0; i < rows; i++ {
				a.Set(i, j, a.At(i, j)-dot*a.At(i, p))
			}
		}
		norm := 0.0
		for i := 0; i < rows; i++ {
			norm += a.At(i, j) * a.At(i, j)
		}
		norm = math.Sqrt(norm)
		if norm < 1e-12 {
			continue
		}
		for i := 0; i < rows; i++ {
			a.Set(i, j, a.At(i, j)/norm)
		}
	}
}
