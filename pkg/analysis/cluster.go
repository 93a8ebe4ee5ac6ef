package analysis

import (
	"sort"

	"github.com/openlit/litgraph/pkg/common"
)

// DefaultMaxClusterIterations bounds the label propagation loop.
const DefaultMaxClusterIterations = 50

// clusterEntities groups entities by weighted label propagation: each
// node repeatedly adopts the label carrying the most edge weight among
// its neighbors until no label changes. Nodes are visited in sorted ID
// order and ties resolve to the smallest label, so the outcome is
// stable across runs.
func clusterEntities(g *graphIndex, maxIterations int) []common.Cluster {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxClusterIterations
	}

	labels := make([]int, len(g.ids))
	for i := range labels {
		labels[i] = i
	}

	for iter := 0; iter < maxIterations; iter++ {
		changed := false
		for node := range g.ids {
			if len(g.adj[node]) == 0 {
				continue
			}

			weightByLabel := make(map[int]float64)
			for _, nb := range g.adj[node] {
				weightByLabel[labels[nb.idx]] += nb.weight
			}

			best := labels[node]
			bestWeight := weightByLabel[best]
			for label, weight := range weightByLabel {
				if weight > bestWeight || (weight == bestWeight && label < best) {
					best = label
					bestWeight = weight
				}
			}

			if best != labels[node] {
				labels[node] = best
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	return collectClusters(g, labels)
}

// collectClusters renumbers raw labels into dense cluster IDs assigned
// in order of each cluster's smallest member entity ID.
func collectClusters(g *graphIndex, labels []int) []common.Cluster {
	members := make(map[int][]string)
	for node, label := range labels {
		members[label] = append(members[label], g.ids[node])
	}

	groups := make([][]string, 0, len(members))
	for _, ids := range members {
		sort.Strings(ids)
		groups = append(groups, ids)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i][0] < groups[j][0] })

	clusters := make([]common.Cluster, len(groups))
	for i, ids := range groups {
		clusters[i] = common.Cluster{ID: i, EntityIDs: ids}
	}
	return clusters
}
