package neighbors

import (
	"container/heap"
	"math"
	"math/rand"

	"github.com/hupe1980/manifold/core"
)

// vpSeed fixes vantage-point selection so neighbor sets are reproducible.
const vpSeed = 7

type vpNode struct {
	point   int
	radius  float64
	inside  *vpNode
	outside *vpNode
}

type vptree[D any] struct {
	ds   core.Dataset[D]
	dist core.DistanceCallback[D]
	root *vpNode
}

func vptreeFind[D any](ec *core.Context, ds core.Dataset[D], dist core.DistanceCallback[D], k int) ([][]int, error) {
	n := ds.Len()

	items := make([]int, n)
	for i := range items {
		items[i] = i
	}
	t := &vptree[D]{ds: ds, dist: dist}
	t.root = t.build(items, rand.New(rand.NewSource(vpSeed)))

	out := make([][]int, n)
	for i := 0; i < n; i++ {
		if err := ec.Checkpoint(); err != nil {
			return nil, err
		}
		ec.ReportProgress(float64(i) / float64(n))

		h := make(resultHeap, 0, k+1)
		tau := math.Inf(1)
		t.search(t.root, i, k, &h, &tau)
		out[i] = heapToSorted(h)
	}

	ec.ReportProgress(1)
	return out, nil
}

func (t *vptree[D]) build(items []int, rng *rand.Rand) *vpNode {
	if len(items) == 0 {
		return nil
	}
	if len(items) == 1 {
		return &vpNode{point: items[0], radius: 0}
	}

	// Random vantage point, median split by distance to it.
	vi := rng.Intn(len(items))
	items[0], items[vi] = items[vi], items[0]
	vp := items[0]
	rest := items[1:]

	vpHandle := t.ds.At(vp)
	dists := make([]float64, len(rest))
	for i, it := range rest {
		dists[i] = t.dist.Distance(vpHandle, t.ds.At(it))
	}
	mid := len(rest) / 2
	quickSelect(rest, dists, mid)

	node := &vpNode{point: vp, radius: dists[mid]}
	node.inside = t.build(rest[:mid+1], rng)
	node.outside = t.build(rest[mid+1:], rng)
	return node
}

func (t *vptree[D]) search(node *vpNode, query, k int, h *resultHeap, tau *float64) {
	if node == nil {
		return
	}

	d := 0.0
	if node.point != query {
		d = t.dist.Distance(t.ds.At(query), t.ds.At(node.point))
	}
	if node.point != query && d < *tau {
		heap.Push(h, struct {
			idx int
			d   float64
		}{idx: node.point, d: d})
		if h.Len() > k {
			heap.Pop(h)
		}
		if h.Len() == k {
			*tau = (*h)[0].d
		}
	}

	if node.inside == nil && node.outside == nil {
		return
	}

	if d < node.radius {
		t.search(node.inside, query, k, h, tau)
		if d+*tau >= node.radius {
			t.search(node.outside, query, k, h, tau)
		}
	} else {
		t.search(node.outside, query, k, h, tau)
		if d-*tau <= node.radius {
			t.search(node.inside, query, k, h, tau)
		}
	}
}

// quickSelect partially sorts items/dists in tandem so that position k holds
// the k-th smallest distance.
func quickSelect(items []int, dists []float64, k int) {
	lo, hi := 0, len(dists)-1
	for lo < hi {
		pivot := dists[(lo+hi)/2]
		i, j := lo, hi
		for i <= j {
			for dists[i] < pivot {
				i++
			}
			for dists[j] > pivot {
				j--
			}
			if i <= j {
				dists[i], dists[j] = dists[j], dists[i]
				items[i], items[j] = items[j], items[i]
				i++
				j--
			}
		}
		if k <= j {
			hi = j
		} else if k >= i {
			lo = i
		} else {
			return
		}
	}
}
