package eigen

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/manifold/core"
)

// residualTol is the relative Ritz-residual bound below which an eigenpair
// counts as converged.
const residualTol = 1e-5

// lanczosSeed fixes the starting vector so repeated runs on the same matrix
// produce identical output.
const lanczosSeed = 1

// lanczos runs the iterative solver. For the largest eigenpairs it iterates
// on A directly; for the smallest it iterates on (A + shift*I)^-1 through a
// Cholesky factorization, where the largest eigenvalues of the inverse
// operator correspond to the smallest of A.
func lanczos(a *mat.SymDense, which Which, k, skip int, shift float64) (*mat.Dense, []float64, error) {
	n := a.SymmetricDim()

	apply, invert, err := makeOperator(a, which, shift)
	if err != nil {
		return nil, nil, err
	}

	want := k + skip
	m := 4*want + 40
	if m > n {
		m = n
	}

	// Lanczos iteration with full reorthogonalization. The basis is kept
	// dense; affinity matrices are O(n^2) anyway so the O(n*m) basis is not
	// the dominant allocation.
	basis := make([][]float64, 0, m+1)
	alpha := make([]float64, 0, m)
	beta := make([]float64, 0, m)

	rng := rand.New(rand.NewSource(lanczosSeed))
	v := randomUnit(n, rng)
	basis = append(basis, v)

	w := make([]float64, n)
	steps := m
	for j := 0; j < m; j++ {
		apply(w, basis[j])
		if j > 0 {
			floats.AddScaled(w, -beta[j-1], basis[j-1])
		}
		aj := floats.Dot(basis[j], w)
		alpha = append(alpha, aj)
		floats.AddScaled(w, -aj, basis[j])
		// Full reorthogonalization keeps the basis numerically orthogonal;
		// without it spurious duplicate Ritz values appear.
		for _, b := range basis {
			floats.AddScaled(w, -floats.Dot(b, w), b)
		}
		bj := math.Sqrt(floats.Dot(w, w))
		if bj < 1e-12 {
			// Invariant subspace reached. A single start vector sees each
			// eigenvalue at most once, so restart with a fresh direction
			// orthogonal to the basis; the zero beta splits the tridiagonal
			// into exact blocks and repeated eigenvalues reappear in later
			// blocks. Stop only when the basis spans the whole space.
			next, ok := freshDirection(n, basis, rng)
			if !ok {
				steps = j + 1
				break
			}
			beta = append(beta, 0)
			basis = append(basis, next)
			continue
		}
		beta = append(beta, bj)
		next := make([]float64, n)
		copy(next, w)
		floats.Scale(1/bj, next)
		basis = append(basis, next)
	}

	// Eigendecompose the tridiagonal projection.
	tri := mat.NewSymDense(steps, nil)
	for i := 0; i < steps; i++ {
		tri.SetSym(i, i, alpha[i])
		if i+1 < steps {
			tri.SetSym(i, i+1, beta[i])
		}
	}
	var es mat.EigenSym
	if !es.Factorize(tri, true) {
		return nil, nil, fmt.Errorf("lanczos projection factorization failed: %w", core.ErrEigendecomposition)
	}
	ritz := es.Values(nil) // ascending
	var s mat.Dense
	es.VectorsTo(&s)

	if want > steps {
		return nil, nil, fmt.Errorf("lanczos basis exhausted after %d steps, %d eigenpairs requested: %w",
			steps, want, core.ErrEigendecomposition)
	}

	// The requested band sits at the top of the operator spectrum in both
	// modes: largest of A directly, or largest of the inverse operator which
	// are the smallest of A.
	out := mat.NewDense(n, k, nil)
	vals := make([]float64, k)
	lastBeta := 0.0
	if steps-1 < len(beta) {
		lastBeta = beta[steps-1]
	}
	for j := 0; j < k; j++ {
		src := steps - 1 - skip - j
		mu := ritz[src]

		// Ritz residual ||A x - mu x|| = |beta_m * s_m|.
		if steps < n {
			res := math.Abs(lastBeta * s.At(steps-1, src))
			if res > residualTol*math.Max(1, math.Abs(mu)) {
				return nil, nil, fmt.Errorf("lanczos did not converge for eigenpair %d (residual %g): %w",
					j, res, core.ErrEigendecomposition)
			}
		}

		if invert {
			if mu == 0 {
				return nil, nil, fmt.Errorf("singular inverse operator eigenvalue: %w", core.ErrEigendecomposition)
			}
			vals[j] = 1/mu - shift
		} else {
			vals[j] = mu
		}
		for i := 0; i < n; i++ {
			x := 0.0
			for t := 0; t < steps; t++ {
				x += basis[t][i] * s.At(t, src)
			}
			out.Set(i, j, x)
		}
	}

	return out, vals, nil
}

// makeOperator returns the matrix-vector product the iteration runs on and
// whether eigenvalues must be mapped back through the shift-invert
// transform.
func makeOperator(a *mat.SymDense, which Which, shift float64) (func(dst, src []float64), bool, error) {
	n := a.SymmetricDim()

	if which == Largest {
		return func(dst, src []float64) {
			d := mat.NewVecDense(n, dst)
			d.MulVec(a, mat.NewVecDense(n, src))
		}, false, nil
	}

	var chol mat.Cholesky
	if !factorizeShifted(&chol, a, shift) {
		// One escalation for matrices that are only just positive
		// semi-definite, then give up.
		if !factorizeShifted(&chol, a, shift*1e6+1e-6) {
			return nil, false, fmt.Errorf("shift-invert factorization failed: %w", core.ErrEigendecomposition)
		}
	}
	return func(dst, src []float64) {
		d := mat.NewVecDense(n, dst)
		if err := chol.SolveVecTo(d, mat.NewVecDense(n, src)); err != nil {
			// Factorization succeeded, so the solve cannot fail; keep the
			// signature allocation-free by zeroing on the impossible path.
			for i := range dst {
				dst[i] = 0
			}
		}
	}, true, nil
}

func factorizeShifted(chol *mat.Cholesky, a *mat.SymDense, shift float64) bool {
	n := a.SymmetricDim()
	shifted := mat.NewSymDense(n, nil)
	shifted.CopySym(a)
	for i := 0; i < n; i++ {
		shifted.SetSym(i, i, shifted.At(i, i)+shift)
	}
	return chol.Factorize(shifted)
}

func randomUnit(n int, rng *rand.Rand) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = rng.NormFloat64()
	}
	floats.Scale(1/math.Sqrt(floats.Dot(v, v)), v)
	return v
}

// freshDirection draws a random unit vector orthogonal to the current basis.
// It reports false once the basis spans the full space.
func freshDirection(n int, basis [][]float64, rng *rand.Rand) ([]float64, bool) {
	if len(basis) >= n {
		return nil, false
	}
	for try := 0; try < 8; try++ {
		v := make([]float64, n)
		for i := range v {
			v[i] = rng.NormFloat64()
		}
		for _, b := range basis {
			floats.AddScaled(v, -floats.Dot(b, v), b)
		}
		norm := math.Sqrt(floats.Dot(v, v))
		if norm > 1e-8 {
			floats.Scale(1/norm, v)
			return v, true
		}
	}
	return nil, false
}
