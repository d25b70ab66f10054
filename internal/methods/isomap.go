package methods

import (
	"container/heap"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/manifold/core"
)

type wedge struct {
	to int
	w  float64
}

// weightedGraph symmetrizes the kNN index lists into a weighted adjacency
// list, evaluating the distance callback once per directed edge. Callback
// invocation stays sequential; only the traversal below is parallel.
func weightedGraph[D any](r Request[D], graph [][]int) [][]wedge {
	n := len(graph)
	adj := make([][]wedge, n)
	for i, nbrs := range graph {
		hi := r.DS.At(i)
		for _, j := range nbrs {
			w := r.CB.Distance.Distance(hi, r.DS.At(j))
			adj[i] = append(adj[i], wedge{to: j, w: w})
			adj[j] = append(adj[j], wedge{to: i, w: w})
		}
	}
	return adj
}

type pqItem struct {
	node int
	d    float64
}

type pqueue []pqItem

func (q pqueue) Len() int           { return len(q) }
func (q pqueue) Less(i, j int) bool { return q[i].d < q[j].d }
func (q pqueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *pqueue) Push(x any)        { *q = append(*q, x.(pqItem)) }
func (q *pqueue) Pop() any {
	old := *q
	n := len(old)
	x := old[n-1]
	*q = old[:n-1]
	return x
}

// dijkstra fills dst with shortest-path distances from src over adj.
func dijkstra(adj [][]wedge, src int, dst []float64) {
	for i := range dst {
		dst[i] = math.Inf(1)
	}
	dst[src] = 0
	q := pqueue{{node: src, d: 0}}
	for q.Len() > 0 {
		it := heap.Pop(&q).(pqItem)
		if it.d > dst[it.node] {
			continue
		}
		for _, e := range adj[it.node] {
			if nd := it.d + e.w; nd < dst[e.to] {
				dst[e.to] = nd
				heap.Push(&q, pqItem{node: e.to, d: nd})
			}
		}
	}
}

// geodesics runs Dijkstra from every source index in parallel. The graph is
// fully materialized beforehand, so no caller callback is on this path and
// the fan-out stays invisible to the caller.
func geodesics(ec *core.Context, adj [][]wedge, sources []int) (*mat.Dense, error) {
	n := len(adj)
	out := mat.NewDense(len(sources), n, nil)

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for si, src := range sources {
		if si%8 == 0 {
			if err := ec.Checkpoint(); err != nil {
				break
			}
		}
		g.Go(func() error {
			dijkstra(adj, src, out.RawRowView(si))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ec.Checkpoint(); err != nil {
		return nil, err
	}

	// Disconnected pairs come back infinite; cap them at the graph diameter
	// so the Gram step stays finite. The connectivity warning has already
	// fired by this point.
	maxFinite := 0.0
	for i := 0; i < len(sources); i++ {
		for j := 0; j < n; j++ {
			if v := out.At(i, j); !math.IsInf(v, 1) && v > maxFinite {
				maxFinite = v
			}
		}
	}
	for i := 0; i < len(sources); i++ {
		for j := 0; j < n; j++ {
			if math.IsInf(out.At(i, j), 1) {
				out.Set(i, j, maxFinite)
			}
		}
	}
	return out, nil
}

// Isomap embeds classical MDS over geodesic distances estimated on the
// neighbor graph.
func Isomap[D any](r Request[D]) (*core.Result, error) {
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
	graph, err := r.knn(r.CB.Distance)
	if err != nil {
		return nil, err
	}

	adj := weightedGraph(r, graph)
	all := make([]int, n)
	for i := range all {
		all[i] = i
	}
	geo, err := geodesics(r.EC, adj, all)
	if err != nil {
		return nil, err
	}

	sym := symmetrize(geo)
	vecs, vals, err := gramFromDistances(backend, sym, t, shift)
	if err != nil {
		return nil, err
	}

	return &core.Result{
		Embedding:   scaleColumns(vecs, vals),
		Eigenvalues: vals,
	}, nil
}

// LandmarkIsomap triangulates every sample from geodesic distances to a
// landmark subset.
func LandmarkIsomap[D any](r Request[D]) (*core.Result, error) {
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
	graph, err := r.knn(r.CB.Distance)
	if err != nil {
		return nil, err
	}
	landmarks, err := landmarkIndices(r, t)
	if err != nil {
		return nil, err
	}
	nl := len(landmarks)

	adj := weightedGraph(r, graph)
	geo, err := geodesics(r.EC, adj, landmarks)
	if err != nil {
		return nil, err
	}

	// Landmark-to-landmark geodesics feed the Gram step; landmark columns
	// feed the triangulation.
	ll := mat.NewSymDense(nl, nil)
	for a := 0; a < nl; a++ {
		for b := a; b < nl; b++ {
			ll.SetSym(a, b, 0.5*(geo.At(a, landmarks[b])+geo.At(b, landmarks[a])))
		}
	}
	mu := make([]float64, nl)
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

	sq := mat.NewDense(n, nl, nil)
	for i := 0; i < n; i++ {
		for l := 0; l < nl; l++ {
			d := geo.At(l, i)
			sq.Set(i, l, d*d)
		}
	}

	emb, err := triangulate(sq, mu, vecs, vals)
	if err != nil {
		return nil, err
	}
	return &core.Result{Embedding: emb, Eigenvalues: vals}, nil
}
