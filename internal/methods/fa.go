package methods

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/manifold/core"
)

// FactorAnalysis fits x = W z + mu + eps with isotropic per-dimension noise
// by expectation maximization and embeds the posterior factor means. The
// returned projection artifact reproduces the E-step linearly, so
// out-of-sample points embed consistently.
func FactorAnalysis[D any](r Request[D]) (*core.Result, error) {
	d := r.CB.Features.Dimension()
	t, err := r.targetDim(d)
	if err != nil {
		return nil, err
	}
	iters, err := r.P.IntDefault(core.KeyMaxIterations, 50)
	if err != nil {
		return nil, err
	}
	tol, err := r.P.ScalarDefault(core.KeyTolerance, 1e-5)
	if err != nil {
		return nil, err
	}
	seed, err := r.P.Seed()
	if err != nil {
		return nil, err
	}

	x, mean, err := r.featureMatrix()
	if err != nil {
		return nil, err
	}
	n, _ := x.Dims()
	if n < 2 {
		return nil, errTooFewSamples(n, 2)
	}

	xc := mat.NewDense(n, d, nil)
	varDiag := make([]float64, d)
	for i := 0; i < n; i++ {
		for j := 0; j < d; j++ {
			v := x.At(i, j) - mean.AtVec(j)
			xc.Set(i, j, v)
			varDiag[j] += v * v / float64(n)
		}
	}

	rng := rand.New(rand.NewSource(seed))
	w := mat.NewDense(d, t, nil)
	for i := 0; i < d; i++ {
		for j := 0; j < t; j++ {
			w.Set(i, j, rng.NormFloat64())
		}
	}
	psi := make([]float64, d)
	for j := 0; j < d; j++ {
		psi[j] = math.Max(varDiag[j], 1e-12)
	}

	var minv mat.Dense
	for iter := 0; iter < iters; iter++ {
		if err := r.EC.Checkpoint(); err != nil {
			return nil, err
		}
		r.EC.ReportProgress(float64(iter) / float64(iters))

		// E-step: M = I + W^T Psi^-1 W, posterior moments via M^-1.
		pw := mat.NewDense(d, t, nil)
		for i := 0; i < d; i++ {
			for j := 0; j < t; j++ {
				pw.Set(i, j, w.At(i, j)/psi[i])
			}
		}
		m := mat.NewDense(t, t, nil)
		m.Mul(w.T(), pw)
		for j := 0; j < t; j++ {
			m.Set(j, j, m.At(j, j)+1)
		}
		if err := minv.Inverse(m); err != nil {
			return nil, fmt.Errorf("factor posterior is singular: %w", core.ErrEigendecomposition)
		}

		// E[z|x] for all samples: n x t.
		var ez mat.Dense
		var tmp mat.Dense
		tmp.Mul(xc, pw)
		ez.Mul(&tmp, &minv)

		// Ezz = n*M^-1 + E[z]^T E[z].
		var ezz mat.Dense
		ezz.Mul(ez.T(), &ez)
		for a := 0; a < t; a++ {
			for b := 0; b < t; b++ {
				ezz.Set(a, b, ezz.At(a, b)+float64(n)*minv.At(a, b))
			}
		}

		// M-step.
		var xez mat.Dense
		xez.Mul(xc.T(), &ez)
		var ezzInv mat.Dense
		if err := ezzInv.Inverse(&ezz); err != nil {
			return nil, fmt.Errorf("factor second moment is singular: %w", core.ErrEigendecomposition)
		}
		var wNew mat.Dense
		wNew.Mul(&xez, &ezzInv)

		delta := 0.0
		for i := 0; i < d; i++ {
			for j := 0; j < t; j++ {
				delta = math.Max(delta, math.Abs(wNew.At(i, j)-w.At(i, j)))
			}
		}

		for j := 0; j < d; j++ {
			acc := 0.0
			for a := 0; a < t; a++ {
				acc += wNew.At(j, a) * xez.At(j, a)
			}
			psi[j] = math.Max(varDiag[j]-acc/float64(n), 1e-12)
		}
		w.Copy(&wNew)

		if delta < tol {
			break
		}
	}
	r.EC.ReportProgress(1)

	// Linear map of the final E-step: P = Psi^-1 W M^-1, embedding rows
	// P^T (x - mean).
	pw := mat.NewDense(d, t, nil)
	for i := 0; i < d; i++ {
		for j := 0; j < t; j++ {
			pw.Set(i, j, w.At(i, j)/psi[i])
		}
	}
	m := mat.NewDense(t, t, nil)
	m.Mul(w.T(), pw)
	for j := 0; j < t; j++ {
		m.Set(j, j, m.At(j, j)+1)
	}
	if err := minv.Inverse(m); err != nil {
		return nil, fmt.Errorf("factor posterior is singular: %w", core.ErrEigendecomposition)
	}
	p := mat.NewDense(d, t, nil)
	p.Mul(pw, &minv)

	return &core.Result{
		Embedding:  project(x, mean, p),
		Projection: &core.Projection{Matrix: p, Mean: mean},
	}, nil
}
