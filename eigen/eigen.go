package eigen

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/manifold/core"
)

// Backend selects the eigen-solver implementation.
type Backend int

const (
	// Lanczos is the iterative solver. It computes only the requested band
	// and is the default.
	Lanczos Backend = iota
	// Dense is the full-spectrum symmetric solver.
	Dense
)

// String returns the backend name.
func (b Backend) String() string {
	switch b {
	case Lanczos:
		return "lanczos"
	case Dense:
		return "dense"
	}
	return fmt.Sprintf("Backend(%d)", int(b))
}

// Which selects the end of the spectrum to extract.
type Which int

const (
	// Largest extracts the top of the spectrum, ordered descending.
	Largest Which = iota
	// Smallest extracts the bottom of the spectrum, ordered ascending.
	// Null-space methods pass skip > 0 to drop the trivial eigenvectors.
	Smallest
)

// FromParams reads the backend selection out of the configuration store.
func FromParams(p core.Params) (Backend, error) {
	if !p.Has(core.KeyEigenBackend) {
		return Lanczos, nil
	}
	v, _ := p.Get(core.KeyEigenBackend)
	b, ok := v.(Backend)
	if !ok {
		return 0, fmt.Errorf("%s is not an eigen backend: %w", core.KeyEigenBackend, core.ErrWrongParameterType)
	}
	return b, nil
}

// Decompose returns k eigenpairs of a from the chosen end of the spectrum,
// after skipping the skip most extremal ones on that end. Vectors are the
// columns of the returned n x k matrix; values are ordered descending for
// Largest and ascending for Smallest. shift is the diagonal regularization
// used by the shift-invert path.
func Decompose(b Backend, a *mat.SymDense, which Which, k, skip int, shift float64) (*mat.Dense, []float64, error) {
	n := a.SymmetricDim()
	if k <= 0 || k+skip > n {
		return nil, nil, fmt.Errorf("cannot extract %d+%d eigenpairs of a %dx%d matrix: %w",
			k, skip, n, n, core.ErrWrongParameterValue)
	}
	// The iterative band needs room to breathe; small problems go dense.
	if b == Lanczos && n > denseCutover && k+skip+2 < n {
		return lanczos(a, which, k, skip, shift)
	}
	return dense(a, which, k, skip)
}

// denseCutover is the matrix size below which the dense solver is always
// used. At this scale the full factorization is cheaper than the iteration.
const denseCutover = 32

func dense(a *mat.SymDense, which Which, k, skip int) (*mat.Dense, []float64, error) {
	var es mat.EigenSym
	if !es.Factorize(a, true) {
		return nil, nil, fmt.Errorf("dense symmetric factorization did not converge: %w", core.ErrEigendecomposition)
	}

	n := a.SymmetricDim()
	all := es.Values(nil) // ascending
	var vecs mat.Dense
	es.VectorsTo(&vecs)

	out := mat.NewDense(n, k, nil)
	vals := make([]float64, k)
	for j := 0; j < k; j++ {
		var src int
		switch which {
		case Largest:
			src = n - 1 - skip - j
		case Smallest:
			src = skip + j
		}
		vals[j] = all[src]
		for i := 0; i < n; i++ {
			out.Set(i, j, vecs.At(i, src))
		}
	}
	return out, vals, nil
}
