package methods

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/manifold/affinity"
	"github.com/hupe1980/manifold/core"
	"github.com/hupe1980/manifold/eigen"
)

// MultidimensionalScaling is classical metric MDS: double-center the matrix
// of -d^2/2 values and embed its leading eigenpairs.
func MultidimensionalScaling[D any](r Request[D]) (*core.Result, error) {
	n := r.DS.Len()
	t, err := r.targetDim(n)
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

	dist, err := affinity.Distances(r.EC, r.DS, r.CB.Distance)
	if err != nil {
		return nil, err
	}
	vecs, vals, err := gramFromDistances(backend, dist, t, shift)
	if err != nil {
		return nil, err
	}

	return &core.Result{
		Embedding:   scaleColumns(vecs, vals),
		Eigenvalues: vals,
	}, nil
}

// gramFromDistances converts a distance matrix into the Torgerson Gram
// matrix in place and extracts its top eigenpairs.
func gramFromDistances(backend eigen.Backend, dist *mat.SymDense, t int, shift float64) (*mat.Dense, []float64, error) {
	n := dist.SymmetricDim()
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			d := dist.At(i, j)
			dist.SetSym(i, j, -0.5*d*d)
		}
	}
	affinity.DoubleCenter(dist)
	return eigen.Decompose(backend, dist, eigen.Largest, t, 0, shift)
}

// landmarkIndices draws a landmark subset of at least floor+1 points using
// the configured ratio and seed.
func landmarkIndices[D any](r Request[D], floor int) ([]int, error) {
	n := r.DS.Len()
	ratio, err := r.P.ScalarDefault(core.KeyLandmarkRatio, 0.2)
	if err != nil {
		return nil, err
	}
	if ratio <= 0 || ratio > 1 {
		return nil, fmt.Errorf("%s must be in (0, 1], got %g: %w",
			core.KeyLandmarkRatio, ratio, core.ErrWrongParameterValue)
	}
	seed, err := r.P.Seed()
	if err != nil {
		return nil, err
	}

	nl := int(ratio * float64(n))
	if nl < floor+1 {
		nl = floor + 1
	}
	if nl > n {
		nl = n
	}

	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(n)
	landmarks := append([]int(nil), perm[:nl]...)
	return landmarks, nil
}

// triangulate places every sample from its distances to the landmarks using
// the landmark eigensystem: x = -1/2 * pinv(L)^T * (delta^2 - mu), where the
// pseudo-inverse columns are v_j / sqrt(lambda_j) and mu is the mean squared
// landmark-to-landmark distance column.
func triangulate(sqDistToLandmarks *mat.Dense, mu []float64, vecs *mat.Dense, vals []float64) (*mat.Dense, error) {
	n, nl := sqDistToLandmarks.Dims()
	t := len(vals)

	pinv := mat.NewDense(nl, t, nil)
	for j := 0; j < t; j++ {
		if vals[j] <= 0 {
			return nil, fmt.Errorf("landmark eigensystem is rank-deficient for the requested dimension: %w",
				core.ErrEigendecomposition)
		}
		inv := 1 / math.Sqrt(vals[j])
		for i := 0; i < nl; i++ {
			pinv.Set(i, j, vecs.At(i, j)*inv)
		}
	}

	out := mat.NewDense(n, t, nil)
	row := make([]float64, nl)
	for i := 0; i < n; i++ {
		for l := 0; l < nl; l++ {
			row[l] = -0.5 * (sqDistToLandmarks.At(i, l) - mu[l])
		}
		for j := 0; j < t; j++ {
			acc := 0.0
			for l := 0; l < nl; l++ {
				acc += row[l] * pinv.At(l, j)
			}
			out.Set(i, j, acc)
		}
	}
	return out, nil
}

// LandmarkMultidimensionalScaling runs classical MDS on a landmark subset
// and triangulates the remaining samples against it.
func LandmarkMultidimensionalScaling[D any](r Request[D]) (*core.Result, error) {
	n := r.DS.Len()
	t, err := r.targetDim(n)
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
	landmarks, err := landmarkIndices(r, t)
	if err != nil {
		return nil, err
	}
	nl := len(landmarks)

	// Landmark-to-landmark distances, squared for both the Gram step and
	// the triangulation mean.
	ll := mat.NewSymDense(nl, nil)
	mu := make([]float64, nl)
	for a := 0; a < nl; a++ {
		if err := r.EC.Checkpoint(); err != nil {
			return nil, err
		}
		ha := r.DS.At(landmarks[a])
		for b := a; b < nl; b++ {
			d := r.CB.Distance.Distance(ha, r.DS.At(landmarks[b]))
			ll.SetSym(a, b, d)
		}
	}
	for a := 0; a < nl; a++ {
		for b := 0; b < nl; b++ {
			d := ll.At(a, b)
			mu[a] += d * d
		}
		mu[a] /= float64(nl)
	}

	vecs, vals, err := gramFromDistances(backend, ll, t, shift)
	if err != nil {
		return nil, err
	}

	// Squared distances from every sample to every landmark.
	sq := mat.NewDense(n, nl, nil)
	for i := 0; i < n; i++ {
		if i%checkStride == 0 {
			if err := r.EC.Checkpoint(); err != nil {
				return nil, err
			}
			r.EC.ReportProgress(float64(i) / float64(n))
		}
		hi := r.DS.At(i)
		for l := 0; l < nl; l++ {
			d := r.CB.Distance.Distance(hi, r.DS.At(landmarks[l]))
			sq.Set(i, l, d*d)
		}
	}

	emb, err := triangulate(sq, mu, vecs, vals)
	if err != nil {
		return nil, err
	}
	r.EC.ReportProgress(1)
	return &core.Result{Embedding: emb, Eigenvalues: vals}, nil
}

// checkStride is the per-loop cancellation poll granularity shared by the
// method bodies.
const checkStride = 64
