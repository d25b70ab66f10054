package testutil

import (
	"math"
	"math/rand"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/manifold/core"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// FillUniform fills dst with random values in range [0, 1).
// Locks only once per call (preferred over calling Float64 in a loop).
func (r *RNG) FillUniform(dst []float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range dst {
		dst[i] = r.rand.Float64()
	}
}

// FillGaussian fills dst with standard normal values.
func (r *RNG) FillGaussian(dst []float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range dst {
		dst[i] = r.rand.NormFloat64()
	}
}

// SwissRoll generates n points on the classic 3-D swiss roll manifold with
// additive Gaussian noise. The intrinsic dimensionality is 2.
func SwissRoll(n int, noise float64, seed int64) [][]float64 {
	rng := rand.New(rand.NewSource(seed))
	points := make([][]float64, n)
	for i := range points {
		t := 1.5 * math.Pi * (1 + 2*rng.Float64())
		height := 21 * rng.Float64()
		points[i] = []float64{
			t*math.Cos(t) + noise*rng.NormFloat64(),
			height + noise*rng.NormFloat64(),
			t*math.Sin(t) + noise*rng.NormFloat64(),
		}
	}
	return points
}

// Blobs generates n points split evenly over centers Gaussian clusters in dim
// dimensions. Cluster centers sit on scaled axis directions separation apart,
// so with a small spread the clusters are well separated.
func Blobs(n, dim, centers int, separation float64, seed int64) [][]float64 {
	rng := rand.New(rand.NewSource(seed))
	points := make([][]float64, n)
	for i := range points {
		c := i % centers
		p := make([]float64, dim)
		for j := range p {
			p[j] = rng.NormFloat64()
		}
		p[c%dim] += separation * float64(1+c/dim)
		points[i] = p
	}
	return points
}

// Callbacks returns the standard callback bundle over [][]float64 data:
// euclidean distance, linear (dot-product) kernel and identity features of
// the given dimension.
func Callbacks(dim int) core.Callbacks[[]float64] {
	return core.Callbacks[[]float64]{
		Kernel: core.KernelFunc[[]float64](func(a, b []float64) float64 {
			dot := 0.0
			for i := range a {
				dot += a[i] * b[i]
			}
			return dot
		}),
		Distance: core.DistanceFunc[[]float64](func(a, b []float64) float64 {
			sum := 0.0
			for i := range a {
				d := a[i] - b[i]
				sum += d * d
			}
			return math.Sqrt(sum)
		}),
		Features: core.NewFeatureFunc(dim, func(p []float64, dst *mat.VecDense) {
			for i, v := range p {
				dst.SetVec(i, v)
			}
		}),
	}
}

// GaussianKernel returns an RBF kernel callback with the given width.
func GaussianKernel(width float64) core.KernelCallback[[]float64] {
	return core.KernelFunc[[]float64](func(a, b []float64) float64 {
		sum := 0.0
		for i := range a {
			d := a[i] - b[i]
			sum += d * d
		}
		return math.Exp(-sum / (2 * width * width))
	})
}
