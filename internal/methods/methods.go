// Package methods contains the algorithm bodies behind every Method value.
// All of them share one calling convention: a Request carrying the execution
// context, the dataset, the capability-tagged callbacks, the configuration
// and the logger. The dispatcher in the root package is the only caller.
package methods

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/manifold/core"
	"github.com/hupe1980/manifold/eigen"
	"github.com/hupe1980/manifold/neighbors"
)

// Request bundles the inputs every method consumes.
type Request[D any] struct {
	EC  *core.Context
	DS  core.Dataset[D]
	CB  core.Callbacks[D]
	P   core.Params
	Log *slog.Logger
}

// targetDim reads the target dimension. upper bounds it when positive
// (e.g. the feature dimension for linear methods, n-1 for spectral ones).
func (r Request[D]) targetDim(upper int) (int, error) {
	t, err := r.P.IntDefault(core.KeyTargetDimension, 2)
	if err != nil {
		return 0, err
	}
	if t < 1 {
		return 0, fmt.Errorf("%s must be positive, got %d: %w",
			core.KeyTargetDimension, t, core.ErrWrongParameterValue)
	}
	if upper > 0 && t > upper {
		return 0, fmt.Errorf("%s %d exceeds the available dimensionality %d: %w",
			core.KeyTargetDimension, t, upper, core.ErrWrongParameterValue)
	}
	return t, nil
}

func (r Request[D]) eigenBackend() (eigen.Backend, error) {
	return eigen.FromParams(r.P)
}

func (r Request[D]) eigenshift() (float64, error) {
	return r.P.ScalarDefault(core.KeyEigenshift, 1e-9)
}

// featureMatrix materializes the feature vectors as an n x d matrix together
// with the column mean.
func (r Request[D]) featureMatrix() (*mat.Dense, *mat.VecDense, error) {
	n := r.DS.Len()
	if n == 0 {
		return nil, nil, fmt.Errorf("empty data range: %w", core.ErrWrongParameterValue)
	}
	d := r.CB.Features.Dimension()

	x := mat.NewDense(n, d, nil)
	mean := mat.NewVecDense(d, nil)
	buf := mat.NewVecDense(d, nil)
	for i := 0; i < n; i++ {
		if i%64 == 0 {
			if err := r.EC.Checkpoint(); err != nil {
				return nil, nil, err
			}
		}
		r.CB.Features.Features(r.DS.At(i), buf)
		x.SetRow(i, buf.RawVector().Data)
		mean.AddVec(mean, buf)
	}
	mean.ScaleVec(1/float64(n), mean)
	return x, mean, nil
}

// knn resolves the neighborhood structure used by the local methods:
// required neighbor count, backend selection, search, and the connectivity
// check with its warning.
func (r Request[D]) knn(dist core.DistanceCallback[D]) ([][]int, error) {
	k, err := r.P.Int(core.KeyNumNeighbors)
	if err != nil {
		return nil, err
	}
	backend, err := neighbors.FromParams(r.P)
	if err != nil {
		return nil, err
	}
	graph, err := neighbors.Find(r.EC, r.DS, dist, k, backend)
	if err != nil {
		return nil, err
	}

	check, err := r.P.Bool(core.KeyCheckConnectivity)
	if err != nil {
		return nil, err
	}
	if check {
		if c := neighbors.Components(graph); c > 1 {
			r.Log.Warn("neighbor graph is disconnected",
				"components", c,
				"neighbors", k,
			)
		}
	}
	return graph, nil
}

// scaleColumns multiplies eigenvector column j by sqrt(max(vals[j], 0)),
// turning Gram eigenvectors into embedding coordinates.
func scaleColumns(vecs *mat.Dense, vals []float64) *mat.Dense {
	n, k := vecs.Dims()
	out := mat.NewDense(n, k, nil)
	for j := 0; j < k; j++ {
		s := math.Sqrt(math.Max(vals[j], 0))
		for i := 0; i < n; i++ {
			out.Set(i, j, vecs.At(i, j)*s)
		}
	}
	return out
}

// symmetrize copies a into a SymDense, averaging the off-diagonal pairs to
// wash out floating-point asymmetry.
func symmetrize(a *mat.Dense) *mat.SymDense {
	n, _ := a.Dims()
	s := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			s.SetSym(i, j, 0.5*(a.At(i, j)+a.At(j, i)))
		}
	}
	return s
}

// generalizedSmallest solves the generalized symmetric eigenproblem
// lhs*a = lambda*rhs*a for the k smallest eigenpairs by whitening with the
// Cholesky factor of (rhs + shift*I): with rhs = L*L^T the problem becomes
// the ordinary one over C = L^-1 * lhs * L^-T, and a = L^-T * y.
func generalizedSmallest(backend eigen.Backend, lhs, rhs *mat.SymDense, k int, shift float64) (*mat.Dense, []float64, error) {
	d := rhs.SymmetricDim()

	shifted := mat.NewSymDense(d, nil)
	shifted.CopySym(rhs)
	for i := 0; i < d; i++ {
		shifted.SetSym(i, i, shifted.At(i, i)+shift)
	}
	var chol mat.Cholesky
	if !chol.Factorize(shifted) {
		return nil, nil, fmt.Errorf("generalized eigenproblem right-hand side is not positive definite: %w",
			core.ErrEigendecomposition)
	}
	var ltri mat.TriDense
	chol.LTo(&ltri)
	l := mat.DenseCopyOf(&ltri)

	// C = L^-1 * lhs * L^-T, computed by two triangular solves.
	var half, c mat.Dense
	if err := half.Solve(l, lhs); err != nil {
		return nil, nil, fmt.Errorf("whitening solve failed: %w", core.ErrEigendecomposition)
	}
	if err := c.Solve(l, half.T()); err != nil {
		return nil, nil, fmt.Errorf("whitening solve failed: %w", core.ErrEigendecomposition)
	}

	y, vals, err := eigen.Decompose(backend, symmetrize(&c), eigen.Smallest, k, 0, shift)
	if err != nil {
		return nil, nil, err
	}

	// Back-substitute a = L^-T * y.
	var a mat.Dense
	if err := a.Solve(l.T(), y); err != nil {
		return nil, nil, fmt.Errorf("whitening back-substitution failed: %w", core.ErrEigendecomposition)
	}
	return &a, vals, nil
}

func errTooFewSamples(n, min int) error {
	return fmt.Errorf("at least %d samples required, got %d: %w", min, n, core.ErrWrongParameterValue)
}

func boolDefault(p core.Params, k core.Key, def bool) (bool, error) {
	if !p.Has(k) {
		return def, nil
	}
	return p.Bool(k)
}

// gaussianMatrix returns a rows x cols matrix of N(0, 1/cols) entries drawn
// from a seeded source.
func gaussianMatrix(rows, cols int, seed int64) *mat.Dense {
	rng := rand.New(rand.NewSource(seed))
	scale := 1 / math.Sqrt(float64(cols))
	out := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out.Set(i, j, rng.NormFloat64()*scale)
		}
	}
	return out
}

// project computes the embedding rows P^T * (x_i - mean) for every sample of
// the already materialized feature matrix.
func project(x *mat.Dense, mean *mat.VecDense, p *mat.Dense) *mat.Dense {
	n, d := x.Dims()
	_, t := p.Dims()

	centered := mat.NewDense(n, d, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < d; j++ {
			centered.Set(i, j, x.At(i, j)-mean.AtVec(j))
		}
	}
	out := mat.NewDense(n, t, nil)
	out.Mul(centered, p)
	return out
}
