package analysis

import (
	"github.com/openlit/litgraph/pkg/common"
)

// betweenness computes betweenness centrality per node with Brandes'
// algorithm over unweighted shortest paths. Scores are normalized to
// [0, 1] by the maximum possible pair count so graphs of different
// sizes are comparable.
func betweenness(g *graphIndex) []float64 {
	n := len(g.ids)
	scores := make([]float64, n)
	if n < 3 {
		return scores
	}

	// Reused per-source buffers.
	stack := make([]int, 0, n)
	dist := make([]int, n)
	sigma := make([]float64, n)
	delta := make([]float64, n)
	preds := make([][]int, n)
	queue := make([]int, 0, n)

	for source := 0; source < n; source++ {
		stack = stack[:0]
		queue = queue[:0]
		for i := 0; i < n; i++ {
			dist[i] = -1
			sigma[i] = 0
			delta[i] = 0
			preds[i] = preds[i][:0]
		}

		dist[source] = 0
		sigma[source] = 1
		queue = append(queue, source)

		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			stack = append(stack, v)

			for _, nb := range g.adj[v] {
				w := nb.idx
				if dist[w] < 0 {
					dist[w] = dist[v] + 1
					queue = append(queue, w)
				}
				if dist[w] == dist[v]+1 {
					sigma[w] += sigma[v]
					preds[w] = append(preds[w], v)
				}
			}
		}

		for i := len(stack) - 1; i >= 0; i-- {
			w := stack[i]
			for _, v := range preds[w] {
				delta[v] += sigma[v] / sigma[w] * (1 + delta[w])
			}
			if w != source {
				scores[w] += delta[w]
			}
		}
	}

	// Each undirected pair was counted twice; normalize by the number
	// of ordered pairs excluding the node itself.
	norm := float64(n-1) * float64(n-2)
	for i := range scores {
		scores[i] /= norm
	}
	return scores
}

func centralityMetrics(g *graphIndex, scores []float64) []common.CentralityMetric {
	metrics := make([]common.CentralityMetric, len(g.ids))
	for i, id := range g.ids {
		metrics[i] = common.CentralityMetric{EntityID: id, Score: scores[i]}
	}
	return metrics
}
