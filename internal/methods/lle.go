package methods

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/manifold/core"
	"github.com/hupe1980/manifold/eigen"
	"github.com/hupe1980/manifold/neighbors"
)

// lleAlignment computes locally linear reconstruction weights in kernel form
// and accumulates the alignment matrix M = (I-W)^T (I-W). The local Gram
// uses the identity (x_i - x_a) . (x_i - x_b) =
// k(a,b) - k(i,a) - k(i,b) + k(i,i); the diagonal is regularized by the
// trace shift times the Gram trace, which keeps rank-deficient
// neighborhoods (k greater than the intrinsic dimension) solvable.
func lleAlignment[D any](r Request[D], graph [][]int) (*mat.SymDense, error) {
	n := len(graph)
	k := len(graph[0])

	traceShift, err := r.P.ScalarDefault(core.KeyTraceShift, 1e-3)
	if err != nil {
		return nil, err
	}

	m := mat.NewDense(n, n, nil)
	gram := mat.NewSymDense(k, nil)
	rhs := mat.NewVecDense(k, nil)
	wvec := mat.NewVecDense(k, nil)

	for i, nbrs := range graph {
		if i%checkStride == 0 {
			if err := r.EC.Checkpoint(); err != nil {
				return nil, err
			}
			r.EC.ReportProgress(float64(i) / float64(n))
		}

		hi := r.DS.At(i)
		kii := r.CB.Kernel.Kernel(hi, hi)
		kin := make([]float64, k)
		for a, na := range nbrs {
			kin[a] = r.CB.Kernel.Kernel(hi, r.DS.At(na))
		}
		for a := 0; a < k; a++ {
			ha := r.DS.At(nbrs[a])
			for b := a; b < k; b++ {
				g := r.CB.Kernel.Kernel(ha, r.DS.At(nbrs[b])) - kin[a] - kin[b] + kii
				gram.SetSym(a, b, g)
			}
		}

		trace := 0.0
		for a := 0; a < k; a++ {
			trace += gram.At(a, a)
		}
		reg := traceShift * trace
		if reg <= 0 {
			reg = traceShift
		}
		for a := 0; a < k; a++ {
			gram.SetSym(a, a, gram.At(a, a)+reg)
		}

		for a := 0; a < k; a++ {
			rhs.SetVec(a, 1)
		}
		var chol mat.Cholesky
		if !chol.Factorize(gram) {
			return nil, fmt.Errorf("locally linear system is not solvable at sample %d: %w",
				i, core.ErrEigendecomposition)
		}
		if err := chol.SolveVecTo(wvec, rhs); err != nil {
			return nil, fmt.Errorf("locally linear system is not solvable at sample %d: %w",
				i, core.ErrEigendecomposition)
		}
		total := 0.0
		for a := 0; a < k; a++ {
			total += wvec.AtVec(a)
		}
		if total == 0 {
			total = 1
		}

		// Accumulate (I-W)^T (I-W) contributions of row i.
		m.Set(i, i, m.At(i, i)+1)
		for a, na := range nbrs {
			wa := wvec.AtVec(a) / total
			m.Set(i, na, m.At(i, na)-wa)
			m.Set(na, i, m.At(na, i)-wa)
			for b, nb := range nbrs {
				wb := wvec.AtVec(b) / total
				m.Set(na, nb, m.At(na, nb)+wa*wb)
			}
		}
	}

	r.EC.ReportProgress(1)
	return symmetrize(m), nil
}

// KernelLocallyLinearEmbedding embeds the null-adjacent spectrum of the LLE
// alignment matrix built through the kernel callback.
func KernelLocallyLinearEmbedding[D any](r Request[D]) (*core.Result, error) {
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
	m, err := lleAlignment(r, graph)
	if err != nil {
		return nil, err
	}

	vecs, vals, err := eigen.Decompose(backend, m, eigen.Smallest, t, 1, shift)
	if err != nil {
		return nil, err
	}
	return &core.Result{Embedding: vecs, Eigenvalues: vals}, nil
}

// NeighborhoodPreservingEmbedding constrains the LLE objective to linear
// projections of the features and returns the projection artifact.
func NeighborhoodPreservingEmbedding[D any](r Request[D]) (*core.Result, error) {
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
	m, err := lleAlignment(r, graph)
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

// linearAlignment solves X^T M X a = lambda X^T X a over centered features,
// the shared eigenstep of the linear local methods.
func linearAlignment(m *mat.SymDense, t int, backend eigen.Backend, shift float64, x *mat.Dense, mean *mat.VecDense) (*core.Projection, []float64, error) {
	n, d := x.Dims()

	xc := mat.NewDense(n, d, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < d; j++ {
			xc.Set(i, j, x.At(i, j)-mean.AtVec(j))
		}
	}

	var tmp, lhsD, rhsD mat.Dense
	tmp.Mul(m, xc)
	lhsD.Mul(xc.T(), &tmp)
	rhsD.Mul(xc.T(), xc)

	a, vals, err := generalizedSmallest(backend, symmetrize(&lhsD), symmetrize(&rhsD), t, shift)
	if err != nil {
		return nil, nil, err
	}
	return &core.Projection{Matrix: a, Mean: mean}, vals, nil
}
