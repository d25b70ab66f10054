package neighbors

import (
	"fmt"
	"math"
	"sort"

	"github.com/hupe1980/manifold/core"
)

// Backend selects the neighbor-search implementation.
type Backend int

const (
	// VPTree is a vantage-point tree. Default; sublinear per query when the
	// distance is metric.
	VPTree Backend = iota
	// BruteForce scans all pairs. Exact for any callback, metric or not.
	BruteForce
)

// String returns the backend name.
func (b Backend) String() string {
	switch b {
	case VPTree:
		return "vptree"
	case BruteForce:
		return "brute force"
	}
	return fmt.Sprintf("Backend(%d)", int(b))
}

// FromParams reads the backend selection out of the configuration store.
func FromParams(p core.Params) (Backend, error) {
	if !p.Has(core.KeyNeighborsBackend) {
		return VPTree, nil
	}
	v, _ := p.Get(core.KeyNeighborsBackend)
	b, ok := v.(Backend)
	if !ok {
		return 0, fmt.Errorf("%s is not a neighbors backend: %w", core.KeyNeighborsBackend, core.ErrWrongParameterType)
	}
	return b, nil
}

// KernelDistance adapts a kernel callback to the distance capability via the
// kernel-induced metric d(a,b) = sqrt(k(a,a) - 2k(a,b) + k(b,b)).
type KernelDistance[D any] struct {
	K core.KernelCallback[D]
}

// Distance implements core.DistanceCallback.
func (kd KernelDistance[D]) Distance(a, b D) float64 {
	d2 := kd.K.Kernel(a, a) - 2*kd.K.Kernel(a, b) + kd.K.Kernel(b, b)
	if d2 < 0 {
		d2 = 0
	}
	return math.Sqrt(d2)
}

// Find returns, for each sample, the indices of its k nearest neighbors
// (self excluded) in ascending distance order.
func Find[D any](ec *core.Context, ds core.Dataset[D], dist core.DistanceCallback[D], k int, b Backend) ([][]int, error) {
	n := ds.Len()
	if k < 1 || k >= n {
		return nil, fmt.Errorf("%s must be in [1, %d), got %d: %w",
			core.KeyNumNeighbors, n, k, core.ErrWrongParameterValue)
	}

	switch b {
	case BruteForce:
		return bruteForce(ec, ds, dist, k)
	case VPTree:
		return vptreeFind(ec, ds, dist, k)
	}
	return nil, fmt.Errorf("unknown neighbors backend %d: %w", b, core.ErrWrongParameterValue)
}

func bruteForce[D any](ec *core.Context, ds core.Dataset[D], dist core.DistanceCallback[D], k int) ([][]int, error) {
	n := ds.Len()
	out := make([][]int, n)

	type cand struct {
		idx int
		d   float64
	}
	cands := make([]cand, 0, n-1)

	for i := 0; i < n; i++ {
		if err := ec.Checkpoint(); err != nil {
			return nil, err
		}
		ec.ReportProgress(float64(i) / float64(n))

		a := ds.At(i)
		cands = cands[:0]
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			cands = append(cands, cand{idx: j, d: dist.Distance(a, ds.At(j))})
		}
		sort.Slice(cands, func(x, y int) bool { return cands[x].d < cands[y].d })
		row := make([]int, k)
		for j := 0; j < k; j++ {
			row[j] = cands[j].idx
		}
		out[i] = row
	}

	ec.ReportProgress(1)
	return out, nil
}

// resultHeap is a max-heap by distance holding the current best k candidates.
type resultHeap []struct {
	idx int
	d   float64
}

func (h resultHeap) Len() int            { return len(h) }
func (h resultHeap) Less(i, j int) bool  { return h[i].d > h[j].d }
func (h resultHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *resultHeap) Push(x any) {
	*h = append(*h, x.(struct {
		idx int
		d   float64
	}))
}
func (h *resultHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

func heapToSorted(h resultHeap) []int {
	tmp := make([]struct {
		idx int
		d   float64
	}, len(h))
	copy(tmp, h)
	sort.Slice(tmp, func(i, j int) bool { return tmp[i].d < tmp[j].d })
	out := make([]int, len(tmp))
	for i, c := range tmp {
		out[i] = c.idx
	}
	return out
}
