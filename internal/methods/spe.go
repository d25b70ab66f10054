package methods

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/manifold/core"
)

// StochasticProximityEmbedding iteratively nudges random point pairs so
// their embedded distance approaches the observed one, with a linearly
// decaying learning rate. The global strategy samples arbitrary pairs; the
// local strategy samples a point and one of its neighbors.
func StochasticProximityEmbedding[D any](r Request[D]) (*core.Result, error) {
	n := r.DS.Len()
	if n < 2 {
		return nil, errTooFewSamples(n, 2)
	}
	t, err := r.targetDim(0)
	if err != nil {
		return nil, err
	}
	global, err := boolDefault(r.P, core.KeySPEGlobalStrategy, true)
	if err != nil {
		return nil, err
	}
	updates, err := r.P.IntDefault(core.KeySPENumUpdates, 100)
	if err != nil {
		return nil, err
	}
	iters, err := r.P.IntDefault(core.KeyMaxIterations, 2000)
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

	var graph [][]int
	if !global {
		graph, err = r.knn(r.CB.Distance)
		if err != nil {
			return nil, err
		}
	}

	rng := rand.New(rand.NewSource(seed))
	y := mat.NewDense(n, t, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < t; j++ {
			y.Set(i, j, rng.Float64())
		}
	}

	lambda := 1.0
	decay := (lambda - 0.01) / float64(iters)
	for iter := 0; iter < iters; iter++ {
		if err := r.EC.Checkpoint(); err != nil {
			return nil, err
		}
		r.EC.ReportProgress(float64(iter) / float64(iters))

		for u := 0; u < updates; u++ {
			i := rng.Intn(n)
			var j int
			if global {
				for j = rng.Intn(n); j == i; j = rng.Intn(n) {
				}
			} else {
				j = graph[i][rng.Intn(len(graph[i]))]
			}

			target := r.CB.Distance.Distance(r.DS.At(i), r.DS.At(j))
			cur := 0.0
			for c := 0; c < t; c++ {
				d := y.At(i, c) - y.At(j, c)
				cur += d * d
			}
			cur = math.Sqrt(cur)

			step := lambda / 2 * (target - cur) / (cur + tol)
			for c := 0; c < t; c++ {
				d := y.At(i, c) - y.At(j, c)
				y.Set(i, c, y.At(i, c)+step*d)
				y.Set(j, c, y.At(j, c)-step*d)
			}
		}
		lambda -= decay
	}
	r.EC.ReportProgress(1)

	return &core.Result{Embedding: y}, nil
}
