package analysis

import (
	"sort"

	"github.com/openlit/litgraph/pkg/common"
)

// detectGaps emits a candidate gap for every cluster pair that has no
// relationship at or above minWeight between any of their members. The
// gap score is the combined mean centrality of both clusters, so gaps
// between structurally important clusters rank first.
func detectGaps(
	g *graphIndex,
	clusters []common.Cluster,
	scores []float64,
	relationships []common.Relationship,
	minWeight float64,
	maxGaps int,
) []common.Gap {
	if len(clusters) < 2 {
		return nil
	}

	clusterOf := make(map[string]int, len(g.ids))
	for _, cluster := range clusters {
		for _, id := range cluster.EntityIDs {
			clusterOf[id] = cluster.ID
		}
	}

	connected := make(map[[2]int]bool)
	for _, rel := range relationships {
		if rel.Weight < minWeight {
			continue
		}
		a, okA := clusterOf[rel.SourceID]
		b, okB := clusterOf[rel.TargetID]
		if !okA || !okB || a == b {
			continue
		}
		if a > b {
			a, b = b, a
		}
		connected[[2]int{a, b}] = true
	}

	clusterScore := make([]float64, len(clusters))
	for _, cluster := range clusters {
		var total float64
		for _, id := range cluster.EntityIDs {
			total += scores[g.index[id]]
		}
		clusterScore[cluster.ID] = total / float64(len(cluster.EntityIDs))
	}

	var gaps []common.Gap
	for i := 0; i < len(clusters); i++ {
		for j := i + 1; j < len(clusters); j++ {
			if connected[[2]int{i, j}] {
				continue
			}
			gaps = append(gaps, common.Gap{
				ClusterA: i,
				ClusterB: j,
				Score:    clusterScore[i] + clusterScore[j],
			})
		}
	}

	sort.Slice(gaps, func(a, b int) bool {
		if gaps[a].Score != gaps[b].Score {
			return gaps[a].Score > gaps[b].Score
		}
		if gaps[a].ClusterA != gaps[b].ClusterA {
			return gaps[a].ClusterA < gaps[b].ClusterA
		}
		return gaps[a].ClusterB < gaps[b].ClusterB
	})

	if maxGaps > 0 && len(gaps) > maxGaps {
		gaps = gaps[:maxGaps]
	}
	return gaps
}
