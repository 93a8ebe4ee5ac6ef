package analysis

import (
	"context"
	"testing"

	"github.com/openlit/litgraph/pkg/common"
)

type fakeGraphSource struct {
	snapshot common.GraphSnapshot
	calls    int
}

func (f *fakeGraphSource) GetGraph(ctx context.Context, projectID string) (common.GraphSnapshot, error) {
	f.calls++
	return f.snapshot, nil
}

func entities(ids ...string) []common.Entity {
	out := make([]common.Entity, len(ids))
	for i, id := range ids {
		out[i] = common.Entity{ID: id, Name: id, Type: common.EntityConcept}
	}
	return out
}

func edge(a, b string, weight float64) common.Relationship {
	source, target := common.CanonicalPair(a, b)
	return common.Relationship{
		SourceID: source,
		TargetID: target,
		Type:     common.RelationCooccurrence,
		Weight:   weight,
	}
}

// triangle returns the three edges of a fully connected triple.
func triangle(a, b, c string, weight float64) []common.Relationship {
	return []common.Relationship{edge(a, b, weight), edge(b, c, weight), edge(a, c, weight)}
}

func TestClusterEntitiesSeparatesCommunities(t *testing.T) {
	rels := append(triangle("a1", "a2", "a3", 3), triangle("b1", "b2", "b3", 3)...)
	rels = append(rels, edge("a3", "b1", 1))

	g := buildIndex(entities("a1", "a2", "a3", "b1", "b2", "b3"), rels)
	clusters := clusterEntities(g, 0)

	if len(clusters) != 2 {
		t.Fatalf("expected 2 clusters, got %d", len(clusters))
	}
	if got := clusters[0].EntityIDs; len(got) != 3 || got[0] != "a1" {
		t.Fatalf("unexpected first cluster %v", got)
	}
	if got := clusters[1].EntityIDs; len(got) != 3 || got[0] != "b1" {
		t.Fatalf("unexpected second cluster %v", got)
	}
}

func TestBetweennessRanksBridgeHighest(t *testing.T) {
	g := buildIndex(entities("a", "b", "c"), []common.Relationship{
		edge("a", "b", 1),
		edge("b", "c", 1),
	})
	scores := betweenness(g)

	// Node order is sorted: a, b, c.
	if scores[1] != 1 {
		t.Fatalf("expected bridge score 1, got %v", scores[1])
	}
	if scores[0] != 0 || scores[2] != 0 {
		t.Fatalf("expected endpoint scores 0, got %v / %v", scores[0], scores[2])
	}
}

func TestAnalyzerSingleClusterEmitsNoGaps(t *testing.T) {
	source := &fakeGraphSource{snapshot: common.GraphSnapshot{
		ProjectID:     "proj",
		Entities:      entities("a1", "a2", "a3"),
		Relationships: triangle("a1", "a2", "a3", 3),
	}}

	report, err := NewAnalyzer(source, Config{}).Run(context.Background(), "proj")
	if err != nil {
		t.Fatalf("analysis failed: %v", err)
	}
	if len(report.Clusters) != 1 {
		t.Fatalf("expected 1 cluster, got %d", len(report.Clusters))
	}
	if len(report.Gaps) != 0 {
		t.Fatalf("single cluster must yield no gaps, got %d", len(report.Gaps))
	}
	if source.calls != 1 {
		t.Fatalf("expected a single fetch, got %d", source.calls)
	}
}

func TestAnalyzerDetectsGapBetweenUnlinkedClusters(t *testing.T) {
	source := &fakeGraphSource{snapshot: common.GraphSnapshot{
		ProjectID:     "proj",
		Entities:      entities("a1", "a2", "a3", "b1", "b2", "b3"),
		Relationships: append(triangle("a1", "a2", "a3", 3), triangle("b1", "b2", "b3", 3)...),
	}}

	report, err := NewAnalyzer(source, Config{}).Run(context.Background(), "proj")
	if err != nil {
		t.Fatalf("analysis failed: %v", err)
	}
	if len(report.Clusters) != 2 {
		t.Fatalf("expected 2 clusters, got %d", len(report.Clusters))
	}
	if len(report.Gaps) != 1 {
		t.Fatalf("expected 1 gap, got %d", len(report.Gaps))
	}
	if gap := report.Gaps[0]; gap.ClusterA != 0 || gap.ClusterB != 1 {
		t.Fatalf("unexpected gap %+v", gap)
	}
	if source.calls != 1 {
		t.Fatalf("qualifying edges present, expected a single fetch, got %d", source.calls)
	}
	if len(report.Centrality) != 6 {
		t.Fatalf("expected centrality for every entity, got %d", len(report.Centrality))
	}
}

func TestAnalyzerReanalyzesWithoutQualifyingEdges(t *testing.T) {
	source := &fakeGraphSource{snapshot: common.GraphSnapshot{
		ProjectID: "proj",
		Entities:  entities("a1", "a2", "b1", "b2"),
		Relationships: []common.Relationship{
			edge("a1", "a2", 1),
			edge("b1", "b2", 1),
		},
	}}

	report, err := NewAnalyzer(source, Config{MinEdgeWeight: 2}).Run(context.Background(), "proj")
	if err != nil {
		t.Fatalf("analysis failed: %v", err)
	}
	if source.calls != 2 {
		t.Fatalf("expected re-analysis to fetch the graph twice, got %d", source.calls)
	}
	if len(report.Clusters) != 2 {
		t.Fatalf("expected 2 clusters, got %d", len(report.Clusters))
	}
}

func TestEvaluateGaps(t *testing.T) {
	report := &common.AnalysisReport{
		Clusters: []common.Cluster{
			{ID: 0, EntityIDs: []string{"a1", "a2"}},
			{ID: 1, EntityIDs: []string{"b1", "b2"}},
			{ID: 2, EntityIDs: []string{"c1"}},
		},
		Gaps: []common.Gap{{ClusterA: 0, ClusterB: 1, Score: 0.5}},
	}

	eval := EvaluateGaps(report, []GroundTruthGap{
		{EntityA: "a1", EntityB: "b1"},
		{EntityA: "b1", EntityB: "c1"},
	})

	if len(eval.Matched) != 1 || len(eval.Missed) != 1 || len(eval.FalsePositives) != 0 {
		t.Fatalf("unexpected partition: %d matched, %d missed, %d false positives",
			len(eval.Matched), len(eval.Missed), len(eval.FalsePositives))
	}
	if eval.Recall != 0.5 {
		t.Fatalf("expected recall 0.5, got %v", eval.Recall)
	}
	if eval.Precision != 1 {
		t.Fatalf("expected precision 1, got %v", eval.Precision)
	}
	if f1 := 2 * 0.5 * 1 / 1.5; eval.F1 != f1 {
		t.Fatalf("expected F1 %v, got %v", f1, eval.F1)
	}
}

func TestEvaluateGapsSameClusterTruthIsMissed(t *testing.T) {
	report := &common.AnalysisReport{
		Clusters: []common.Cluster{{ID: 0, EntityIDs: []string{"a1", "a2"}}},
	}

	eval := EvaluateGaps(report, []GroundTruthGap{{EntityA: "a1", EntityB: "a2"}})
	if len(eval.Missed) != 1 || eval.Recall != 0 {
		t.Fatalf("expected same-cluster pair to be missed, got %+v", eval)
	}
}
