package neighbors

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// Components counts the connected components of the symmetrized neighbor
// graph. Local methods warn when this is greater than one: a disconnected
// graph means the spectral problem decouples and the embedding degrades.
func Components(graph [][]int) int {
	n := len(graph)
	if n == 0 {
		return 0
	}

	// Symmetrize: kNN relations are not mutual.
	adj := make([][]int, n)
	for i, nbrs := range graph {
		for _, j := range nbrs {
			adj[i] = append(adj[i], j)
			adj[j] = append(adj[j], i)
		}
	}

	visited := roaring.New()
	components := 0
	queue := make([]int, 0, n)
	for start := 0; start < n; start++ {
		if visited.Contains(uint32(start)) {
			continue
		}
		components++
		visited.Add(uint32(start))
		queue = append(queue[:0], start)
		for len(queue) > 0 {
			v := queue[len(queue)-1]
			queue = queue[:len(queue)-1]
			for _, w := range adj[v] {
				if !visited.Contains(uint32(w)) {
					visited.Add(uint32(w))
					queue = append(queue, w)
				}
			}
		}
	}
	return components
}

// Connected reports whether the symmetrized neighbor graph has a single
// connected component.
func Connected(graph [][]int) bool {
	return Components(graph) <= 1
}
