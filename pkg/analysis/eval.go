package analysis

import (
	"github.com/openlit/litgraph/pkg/common"
)

// GroundTruthGap names two entities whose clusters are known to be
// under-connected, used to score a detection run.
type GroundTruthGap struct {
	EntityA string `json:"entity_a"`
	EntityB string `json:"entity_b"`
}

// Evaluation compares detected gaps against a ground-truth set. The
// matched and unmatched lists are kept for inspection alongside the
// aggregate scores.
type Evaluation struct {
	Recall    float64 `json:"recall"`
	Precision float64 `json:"precision"`
	F1        float64 `json:"f1"`

	Matched        []common.Gap     `json:"matched"`
	Missed         []GroundTruthGap `json:"missed"`
	FalsePositives []common.Gap     `json:"false_positives"`
}

// EvaluateGaps scores a detection run. A detected gap matches a
// ground-truth pair when the two named entities fall into its two
// clusters, in either order. Ground-truth pairs whose entities share a
// cluster or are missing from the graph count as missed.
func EvaluateGaps(report *common.AnalysisReport, truth []GroundTruthGap) Evaluation {
	clusterOf := make(map[string]int)
	for _, cluster := range report.Clusters {
		for _, id := range cluster.EntityIDs {
			clusterOf[id] = cluster.ID
		}
	}

	detected := make(map[[2]int]int, len(report.Gaps))
	for i, gap := range report.Gaps {
		detected[[2]int{gap.ClusterA, gap.ClusterB}] = i
	}

	eval := Evaluation{}
	matchedIdx := make(map[int]bool)

	for _, pair := range truth {
		a, okA := clusterOf[pair.EntityA]
		b, okB := clusterOf[pair.EntityB]
		if !okA || !okB || a == b {
			eval.Missed = append(eval.Missed, pair)
			continue
		}
		if a > b {
			a, b = b, a
		}
		if idx, ok := detected[[2]int{a, b}]; ok {
			if !matchedIdx[idx] {
				matchedIdx[idx] = true
				eval.Matched = append(eval.Matched, report.Gaps[idx])
			}
		} else {
			eval.Missed = append(eval.Missed, pair)
		}
	}

	for i, gap := range report.Gaps {
		if !matchedIdx[i] {
			eval.FalsePositives = append(eval.FalsePositives, gap)
		}
	}

	if len(truth) > 0 {
		eval.Recall = float64(len(eval.Matched)) / float64(len(truth))
	}
	if len(report.Gaps) > 0 {
		eval.Precision = float64(len(eval.Matched)) / float64(len(report.Gaps))
	}
	if eval.Recall+eval.Precision > 0 {
		eval.F1 = 2 * eval.Recall * eval.Precision / (eval.Recall + eval.Precision)
	}
	return eval
}
