package methods

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/manifold/core"
	"github.com/hupe1980/manifold/eigen"
)

// heatWeights builds the symmetric heat-kernel weight matrix over the
// neighbor graph and its degree vector. When no width is configured it is
// estimated as the mean squared neighbor distance, which keeps the weights
// in a usable range for any scale of the input metric.
func heatWeights[D any](r Request[D], graph [][]int) (*mat.SymDense, []float64, error) {
	n := len(graph)

	width, err := r.P.ScalarDefault(core.KeyGaussianKernelWidth, 0)
	if err != nil {
		return nil, nil, err
	}

	// One distance evaluation per directed edge, reused for the width
	// estimate and the weights.
	dists := make([][]float64, n)
	sum, count := 0.0, 0
	for i, nbrs := range graph {
		hi := r.DS.At(i)
		dists[i] = make([]float64, len(nbrs))
		for jj, j := range nbrs {
			d := r.CB.Distance.Distance(hi, r.DS.At(j))
			dists[i][jj] = d
			sum += d * d
			count++
		}
	}
	if width <= 0 {
		width = sum / float64(count)
		if width <= 0 {
			width = 1
		}
	}

	w := mat.NewSymDense(n, nil)
	for i, nbrs := range graph {
		for jj, j := range nbrs {
			d := dists[i][jj]
			w.SetSym(i, j, math.Exp(-d*d/width))
		}
	}

	degrees := make([]float64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			degrees[i] += w.At(i, j)
		}
	}
	return w, degrees, nil
}

// LaplacianEigenmaps embeds the bottom of the normalized graph-Laplacian
// spectrum, skipping the constant eigenvector.
func LaplacianEigenmaps[D any](r Request[D]) (*core.Result, error) {
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
	graph, err := r.knn(r.CB.Distance)
	if err != nil {
		return nil, err
	}
	w, degrees, err := heatWeights(r, graph)
	if err != nil {
		return nil, err
	}
	if err := r.EC.Checkpoint(); err != nil {
		return nil, err
	}

	// L_sym = I - D^-1/2 W D^-1/2. Its null eigenvector is D^1/2 * 1.
	lsym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := -w.At(i, j) / math.Sqrt(degrees[i]*degrees[j])
			if i == j {
				v += 1
			}
			lsym.SetSym(i, j, v)
		}
	}

	vecs, vals, err := eigen.Decompose(backend, lsym, eigen.Smallest, t, 1, shift)
	if err != nil {
		return nil, err
	}

	// Undo the symmetric normalization to recover the random-walk
	// eigenvectors.
	emb := mat.NewDense(n, t, nil)
	for i := 0; i < n; i++ {
		s := 1 / math.Sqrt(degrees[i])
		for j := 0; j < t; j++ {
			emb.Set(i, j, vecs.At(i, j)*s)
		}
	}

	return &core.Result{Embedding: emb, Eigenvalues: vals}, nil
}

// LocalityPreservingProjections is the linear approximation of Laplacian
// eigenmaps: it solves X^T L X a = lambda X^T D X a over centered features
// and returns the projection artifact.
func LocalityPreservingProjections[D any](r Request[D]) (*core.Result, error) {
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
	graph, err := r.knn(r.CB.Distance)
	if err != nil {
		return nil, err
	}
	w, degrees, err := heatWeights(r, graph)
	if err != nil {
		return nil, err
	}
	x, mean, err := r.featureMatrix()
	if err != nil {
		return nil, err
	}

	n := r.DS.Len()
	xc := mat.NewDense(n, d, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < d; j++ {
			xc.Set(i, j, x.At(i, j)-mean.AtVec(j))
		}
	}

	// Dense Laplacian L = D - W and the two d x d quadratic forms.
	l := mat.NewDense(n, n, nil)
	dd := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		dd.Set(i, i, degrees[i])
		for j := 0; j < n; j++ {
			v := -w.At(i, j)
			if i == j {
				v += degrees[i]
			}
			l.Set(i, j, v)
		}
	}

	var tmp, lhsD, rhsD mat.Dense
	tmp.Mul(l, xc)
	lhsD.Mul(xc.T(), &tmp)
	tmp.Reset()
	tmp.Mul(dd, xc)
	rhsD.Mul(xc.T(), &tmp)

	a, vals, err := generalizedSmallest(backend, symmetrize(&lhsD), symmetrize(&rhsD), t, shift)
	if err != nil {
		return nil, err
	}

	return &core.Result{
		Embedding:   project(x, mean, a),
		Eigenvalues: vals,
		Projection:  &core.Projection{Matrix: a, Mean: mean},
	}, nil
}
