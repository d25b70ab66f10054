package eigen

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/manifold/core"
)

// randomSPD builds a random symmetric positive definite matrix A = B*B^T + I.
func randomSPD(n int, seed int64) *mat.SymDense {
	rng := rand.New(rand.NewSource(seed))
	b := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			b.Set(i, j, rng.NormFloat64())
		}
	}
	var prod mat.Dense
	prod.Mul(b, b.T())

	out := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := prod.At(i, j)
			if i == j {
				v++
			}
			out.SetSym(i, j, v)
		}
	}
	return out
}

func TestDecomposeValidation(t *testing.T) {
	a := randomSPD(10, 1)

	_, _, err := Decompose(Dense, a, Largest, 0, 0, 0)
	assert.ErrorIs(t, err, core.ErrWrongParameterValue)

	_, _, err = Decompose(Dense, a, Largest, 8, 3, 0)
	assert.ErrorIs(t, err, core.ErrWrongParameterValue)
}

func TestDenseOrdering(t *testing.T) {
	a := mat.NewSymDense(4, nil)
	for i, v := range []float64{4, 1, 3, 2} {
		a.SetSym(i, i, v)
	}

	_, vals, err := Decompose(Dense, a, Largest, 3, 0, 0)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{4, 3, 2}, vals, 1e-12)

	_, vals, err = Decompose(Dense, a, Smallest, 3, 0, 0)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, 2, 3}, vals, 1e-12)
}

func TestDenseSkip(t *testing.T) {
	a := mat.NewSymDense(4, nil)
	for i, v := range []float64{4, 1, 3, 2} {
		a.SetSym(i, i, v)
	}

	_, vals, err := Decompose(Dense, a, Smallest, 2, 1, 0)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{2, 3}, vals, 1e-12)
}

func TestBackendsAgreeLargest(t *testing.T) {
	// Big enough that the Lanczos path is actually taken.
	a := randomSPD(60, 2)
	const k = 4

	dv, dvals, err := Decompose(Dense, a, Largest, k, 0, 1e-9)
	require.NoError(t, err)
	lv, lvals, err := Decompose(Lanczos, a, Largest, k, 0, 1e-9)
	require.NoError(t, err)

	assert.InDeltaSlice(t, dvals, lvals, 1e-6)

	// Eigenvectors match up to sign.
	for j := 0; j < k; j++ {
		dot := 0.0
		for i := 0; i < 60; i++ {
			dot += dv.At(i, j) * lv.At(i, j)
		}
		assert.InDelta(t, 1.0, math.Abs(dot), 1e-6, "column %d", j)
	}
}

func TestBackendsAgreeSmallest(t *testing.T) {
	a := randomSPD(60, 3)
	const k = 3

	_, dvals, err := Decompose(Dense, a, Smallest, k, 0, 1e-9)
	require.NoError(t, err)
	_, lvals, err := Decompose(Lanczos, a, Smallest, k, 0, 1e-9)
	require.NoError(t, err)

	assert.InDeltaSlice(t, dvals, lvals, 1e-6)
}

func TestLanczosResidual(t *testing.T) {
	// A*v = lambda*v must hold for the returned pairs.
	a := randomSPD(50, 4)
	vecs, vals, err := Decompose(Lanczos, a, Largest, 3, 0, 1e-9)
	require.NoError(t, err)

	n := a.SymmetricDim()
	for j := 0; j < 3; j++ {
		v := mat.NewVecDense(n, nil)
		for i := 0; i < n; i++ {
			v.SetVec(i, vecs.At(i, j))
		}
		var av mat.VecDense
		av.MulVec(a, v)
		for i := 0; i < n; i++ {
			assert.InDelta(t, vals[j]*v.AtVec(i), av.AtVec(i), 1e-5)
		}
	}
}

func TestLanczosRepeatedEigenvalues(t *testing.T) {
	// Three distinct eigenvalues over sixty dimensions: any single start
	// vector exhausts its Krylov space after a handful of steps, well short
	// of the requested band. The solver must restart into the unexplored
	// part of the eigenspace and report the multiplicity instead of failing.
	const n = 60
	a := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		switch {
		case i < 20:
			a.SetSym(i, i, 9)
		case i < 40:
			a.SetSym(i, i, 5)
		default:
			a.SetSym(i, i, 2)
		}
	}

	vecs, vals, err := Decompose(Lanczos, a, Largest, 5, 0, 1e-9)
	require.NoError(t, err)
	require.Len(t, vals, 5)
	for j, v := range vals {
		assert.InDelta(t, 9.0, v, 1e-6, "eigenvalue %d", j)
	}

	// Each returned vector must actually satisfy A*x = 9*x.
	for j := 0; j < 5; j++ {
		x := mat.NewVecDense(n, nil)
		for i := 0; i < n; i++ {
			x.SetVec(i, vecs.At(i, j))
		}
		var ax mat.VecDense
		ax.MulVec(a, x)
		for i := 0; i < n; i++ {
			assert.InDelta(t, 9*x.AtVec(i), ax.AtVec(i), 1e-6)
		}
	}
}

func TestLanczosRepeatedSmallest(t *testing.T) {
	// Same degeneracy at the bottom of the spectrum through the
	// shift-invert path.
	const n = 40
	a := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		if i < 10 {
			a.SetSym(i, i, 1)
		} else {
			a.SetSym(i, i, 6)
		}
	}

	_, vals, err := Decompose(Lanczos, a, Smallest, 4, 0, 1e-9)
	require.NoError(t, err)
	require.Len(t, vals, 4)
	for j, v := range vals {
		assert.InDelta(t, 1.0, v, 1e-6, "eigenvalue %d", j)
	}
}

func TestFromParams(t *testing.T) {
	b, err := FromParams(core.Params{})
	require.NoError(t, err)
	assert.Equal(t, Lanczos, b)

	b, err = FromParams(core.Params{core.KeyEigenBackend: Dense})
	require.NoError(t, err)
	assert.Equal(t, Dense, b)

	_, err = FromParams(core.Params{core.KeyEigenBackend: "dense"})
	assert.ErrorIs(t, err, core.ErrWrongParameterType)
}
