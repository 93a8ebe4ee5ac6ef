// Package analysis computes derived analytics over a project's merged
// knowledge graph: topic clusters, betweenness centrality and
// structural gaps between clusters.
package analysis

import (
	"sort"

	"github.com/openlit/litgraph/pkg/common"
)

type neighbor struct {
	idx    int
	weight float64
}

// graphIndex is the adjacency view the algorithms run on. Node order is
// the sorted entity ID order, so every traversal is deterministic.
type graphIndex struct {
	ids   []string
	index map[string]int
	adj   [][]neighbor
}

func buildIndex(entities []common.Entity, relationships []common.Relationship) *graphIndex {
	ids := make([]string, 0, len(entities))
	for _, entity := range entities {
		ids = append(ids, entity.ID)
	}
	sort.Strings(ids)

	index := make(map[string]int, len(ids))
	for i, id := range ids {
		index[id] = i
	}

	adj := make([][]neighbor, len(ids))
	for _, rel := range relationships {
		source, okSource := index[rel.SourceID]
		target, okTarget := index[rel.TargetID]
		if !okSource || !okTarget || source == target {
			continue
		}
		adj[source] = append(adj[source], neighbor{idx: target, weight: rel.Weight})
		adj[target] = append(adj[target], neighbor{idx: source, weight: rel.Weight})
	}
	for i := range adj {
		sort.Slice(adj[i], func(a, b int) bool { return adj[i][a].idx < adj[i][b].idx })
	}

	return &graphIndex{ids: ids, index: index, adj: adj}
}
