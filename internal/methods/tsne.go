package methods

import (
	"fmt"
	"math"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/manifold/core"
)

// TDistributedStochasticNeighborEmbedding is exact t-SNE over the feature
// vectors: Gaussian input affinities calibrated to the configured
// perplexity, Student-t output affinities, gradient descent with momentum
// and early exaggeration.
func TDistributedStochasticNeighborEmbedding[D any](r Request[D]) (*core.Result, error) {
	n := r.DS.Len()
	t, err := r.targetDim(0)
	if err != nil {
		return nil, err
	}
	perplexity, err := r.P.ScalarDefault(core.KeyPerplexity, 30)
	if err != nil {
		return nil, err
	}
	if perplexity <= 0 || 3*perplexity > float64(n-1) {
		return nil, fmt.Errorf("%s %g requires at least %d samples, got %d: %w",
			core.KeyPerplexity, perplexity, int(3*perplexity)+1, n, core.ErrWrongParameterValue)
	}
	iters, err := r.P.IntDefault(core.KeyMaxIterations, 1000)
	if err != nil {
		return nil, err
	}
	seed, err := r.P.Seed()
	if err != nil {
		return nil, err
	}

	x, _, err := r.featureMatrix()
	if err != nil {
		return nil, err
	}

	// Squared euclidean distances in feature space.
	sq := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		if i%checkStride == 0 {
			if err := r.EC.Checkpoint(); err != nil {
				return nil, err
			}
		}
		for j := i + 1; j < n; j++ {
			d := 0.0
			for c := 0; c < x.RawMatrix().Cols; c++ {
				diff := x.At(i, c) - x.At(j, c)
				d += diff * diff
			}
			sq.Set(i, j, d)
			sq.Set(j, i, d)
		}
	}

	p, err := inputAffinities(r.EC, sq, perplexity)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(seed))
	y := mat.NewDense(n, t, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < t; j++ {
			y.Set(i, j, rng.NormFloat64()*1e-4)
		}
	}

	const (
		exaggeration    = 4.0
		exaggerationEnd = 100
		momentumSwitch  = 250
		earlyMomentum   = 0.5
		lateMomentum    = 0.8
		learningRate    = 200.0
	)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			p.Set(i, j, p.At(i, j)*exaggeration)
		}
	}

	vel := mat.NewDense(n, t, nil)
	grad := mat.NewDense(n, t, nil)
	q := mat.NewDense(n, n, nil)

	for iter := 0; iter < iters; iter++ {
		if err := r.EC.Checkpoint(); err != nil {
			return nil, err
		}
		r.EC.ReportProgress(float64(iter) / float64(iters))

		// Student-t output affinities.
		qsum := 0.0
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				d := 0.0
				for c := 0; c < t; c++ {
					diff := y.At(i, c) - y.At(j, c)
					d += diff * diff
				}
				v := 1 / (1 + d)
				q.Set(i, j, v)
				q.Set(j, i, v)
				qsum += 2 * v
			}
		}

		// Gradient rows are independent once P, Q and Y are fixed; fan out
		// over the cores. No caller callback is on this path.
		var g errgroup.Group
		g.SetLimit(runtime.GOMAXPROCS(0))
		rows := runtime.GOMAXPROCS(0)
		chunk := (n + rows - 1) / rows
		for lo := 0; lo < n; lo += chunk {
			hi := lo + chunk
			if hi > n {
				hi = n
			}
			g.Go(func() error {
				for i := lo; i < hi; i++ {
					for c := 0; c < t; c++ {
						grad.Set(i, c, 0)
					}
					for j := 0; j < n; j++ {
						if j == i {
							continue
						}
						qij := q.At(i, j)
						mult := 4 * (p.At(i, j) - qij/qsum) * qij
						for c := 0; c < t; c++ {
							grad.Set(i, c, grad.At(i, c)+mult*(y.At(i, c)-y.At(j, c)))
						}
					}
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		momentum := earlyMomentum
		if iter >= momentumSwitch {
			momentum = lateMomentum
		}
		for i := 0; i < n; i++ {
			for c := 0; c < t; c++ {
				v := momentum*vel.At(i, c) - learningRate*grad.At(i, c)
				vel.Set(i, c, v)
				y.Set(i, c, y.At(i, c)+v)
			}
		}

		if iter == exaggerationEnd {
			for i := 0; i < n; i++ {
				for j := 0; j < n; j++ {
					p.Set(i, j, p.At(i, j)/exaggeration)
				}
			}
		}
	}
	r.EC.ReportProgress(1)

	return &core.Result{Embedding: y}, nil
}

// inputAffinities calibrates per-point Gaussian bandwidths to the requested
// perplexity by bisection and returns the symmetrized, normalized affinity
// matrix.
func inputAffinities(ec *core.Context, sq *mat.Dense, perplexity float64) (*mat.Dense, error) {
	n, _ := sq.Dims()
	logPerp := math.Log(perplexity)

	p := mat.NewDense(n, n, nil)
	row := make([]float64, n)
	for i := 0; i < n; i++ {
		if i%checkStride == 0 {
			if err := ec.Checkpoint(); err != nil {
				return nil, err
			}
		}

		betaMin, betaMax := math.Inf(-1), math.Inf(1)
		beta := 1.0
		for try := 0; try < 50; try++ {
			sum := 0.0
			for j := 0; j < n; j++ {
				if j == i {
					row[j] = 0
					continue
				}
				row[j] = math.Exp(-sq.At(i, j) * beta)
				sum += row[j]
			}
			if sum == 0 {
				sum = 1e-12
			}
			entropy := 0.0
			for j := 0; j < n; j++ {
				if j == i || row[j] == 0 {
					continue
				}
				pj := row[j] / sum
				entropy -= pj * math.Log(pj)
			}

			diff := entropy - logPerp
			if math.Abs(diff) < 1e-5 {
				break
			}
			if diff > 0 {
				betaMin = beta
				if math.IsInf(betaMax, 1) {
					beta *= 2
				} else {
					beta = (beta + betaMax) / 2
				}
			} else {
				betaMax = beta
				if math.IsInf(betaMin, -1) {
					beta /= 2
				} else {
					beta = (beta + betaMin) / 2
				}
			}
		}

		total := 0.0
		for j := 0; j < n; j++ {
			total += row[j]
		}
		if total == 0 {
			total = 1e-12
		}
		for j := 0; j < n; j++ {
			p.Set(i, j, row[j]/total)
		}
	}

	// Symmetrize and renormalize, flooring to keep the KL gradient finite.
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			v := (p.At(i, j) + p.At(j, i)) / (2 * float64(n))
			if v < 1e-12 {
				v = 1e-12
			}
			p.Set(i, j, v)
			p.Set(j, i, v)
		}
	}
	return p, nil
}
