package affinity

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/manifold/core"
)

// CenteredKernel evaluates the kernel once per unordered pair (i <= j),
// mirrors the value into the lower triangle, and double-centers the result.
// Every row and column of the returned matrix sums to zero up to floating
// point error.
func CenteredKernel[D any](ec *core.Context, ds core.Dataset[D], k core.KernelCallback[D]) (*mat.SymDense, error) {
	gram, err := Kernel(ec, ds, k)
	if err != nil {
		return nil, err
	}
	DoubleCenter(gram)
	return gram, nil
}

// Kernel builds the raw n x n Gram matrix with one kernel evaluation per
// unordered pair, including the diagonal.
func Kernel[D any](ec *core.Context, ds core.Dataset[D], k core.KernelCallback[D]) (*mat.SymDense, error) {
	n := ds.Len()
	if n == 0 {
		return nil, fmt.Errorf("kernel matrix of an empty data range: %w", core.ErrWrongParameterValue)
	}

	gram := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		if err := ec.Checkpoint(); err != nil {
			return nil, err
		}
		ec.ReportProgress(float64(i) / float64(n))
		a := ds.At(i)
		for j := i; j < n; j++ {
			gram.SetSym(i, j, k.Kernel(a, ds.At(j)))
		}
	}

	ec.ReportProgress(1)
	return gram, nil
}

// Distances builds the n x n pairwise distance matrix with one distance
// evaluation per unordered pair, including the diagonal.
func Distances[D any](ec *core.Context, ds core.Dataset[D], d core.DistanceCallback[D]) (*mat.SymDense, error) {
	n := ds.Len()
	if n == 0 {
		return nil, fmt.Errorf("distance matrix of an empty data range: %w", core.ErrWrongParameterValue)
	}

	dist := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		if err := ec.Checkpoint(); err != nil {
			return nil, err
		}
		ec.ReportProgress(float64(i) / float64(n))
		a := ds.At(i)
		for j := i; j < n; j++ {
			dist.SetSym(i, j, d.Distance(a, ds.At(j)))
		}
	}

	ec.ReportProgress(1)
	return dist, nil
}

// DoubleCenter applies K -= rowMean, K -= colMean, K += grandMean in place,
// using the identity K_centered = K - 1*rowMean - colMean*1^T + grandMean.
// For a symmetric input the row and column mean vectors coincide.
func DoubleCenter(k *mat.SymDense) {
	n := k.SymmetricDim()
	means := make([]float64, n)
	grand := 0.0
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			means[i] += k.At(i, j)
		}
		means[i] /= float64(n)
		grand += means[i]
	}
	grand /= float64(n)

	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			k.SetSym(i, j, k.At(i, j)-means[i]-means[j]+grand)
		}
	}
}
