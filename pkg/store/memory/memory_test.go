package memory

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/openlit/litgraph/pkg/ai"
	"github.com/openlit/litgraph/pkg/common"
)

type axisEmbeddingClient struct{}

func (axisEmbeddingClient) GenerateCompletion(ctx context.Context, prompt string, opts ...ai.GenerateOption) (string, error) {
	return "", errors.New("not implemented")
}

func (axisEmbeddingClient) GenerateCompletionWithFormat(ctx context.Context, name, description, prompt string, out any, opts ...ai.GenerateOption) error {
	return errors.New("not implemented")
}

func (c axisEmbeddingClient) GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error) {
	if strings.Contains(string(input), "neural") {
		return []float32{1, 0}, nil
	}
	return []float32{0, 1}, nil
}

func (c axisEmbeddingClient) GenerateEmbeddings(ctx context.Context, inputs [][]byte) ([][]float32, error) {
	out := make([][]float32, len(inputs))
	for i, input := range inputs {
		out[i], _ = c.GenerateEmbedding(ctx, input)
	}
	return out, nil
}

func (axisEmbeddingClient) ResetMetrics() {}

func (axisEmbeddingClient) GetMetrics() ai.ModelMetrics { return ai.ModelMetrics{} }

func testEntity(name string, paperID string) common.Entity {
	return common.Entity{
		ID:       common.CanonicalEntityID(name, common.EntityConcept),
		Name:     name,
		Type:     common.EntityConcept,
		PaperIDs: []string{paperID},
		Evidence: []common.Evidence{{PaperID: paperID, Section: "abstract", Quote: name}},
	}
}

func TestSaveEntitiesMergesOnResave(t *testing.T) {
	s := NewGraphMemStorage(nil)
	ctx := context.Background()

	if err := s.SaveEntities(ctx, "proj", []common.Entity{testEntity("graph theory", "p1")}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := s.SaveEntities(ctx, "proj", []common.Entity{testEntity("graph theory", "p2")}); err != nil {
		t.Fatalf("resave failed: %v", err)
	}

	snapshot, err := s.GetGraph(ctx, "proj")
	if err != nil {
		t.Fatalf("get graph failed: %v", err)
	}
	if len(snapshot.Entities) != 1 {
		t.Fatalf("expected 1 merged entity, got %d", len(snapshot.Entities))
	}
	if got := snapshot.Entities[0]; len(got.PaperIDs) != 2 || len(got.Evidence) != 2 {
		t.Fatalf("merge lost data: papers %v, evidence %d", got.PaperIDs, len(got.Evidence))
	}
}

func TestSaveEntitiesIdempotentForSameData(t *testing.T) {
	s := NewGraphMemStorage(nil)
	ctx := context.Background()

	// A redelivered import job saves the exact same entities again.
	for i := 0; i < 2; i++ {
		if err := s.SaveEntities(ctx, "proj", []common.Entity{testEntity("graph theory", "p1")}); err != nil {
			t.Fatalf("save %d failed: %v", i, err)
		}
	}

	snapshot, err := s.GetGraph(ctx, "proj")
	if err != nil {
		t.Fatalf("get graph failed: %v", err)
	}
	if len(snapshot.Entities) != 1 {
		t.Fatalf("expected 1 entity, got %d", len(snapshot.Entities))
	}
	if got := snapshot.Entities[0]; len(got.PaperIDs) != 1 || len(got.Evidence) != 1 {
		t.Fatalf("resave duplicated data: papers %v, evidence %d", got.PaperIDs, len(got.Evidence))
	}
}

func TestUpsertRelationshipsAccumulatesWeight(t *testing.T) {
	s := NewGraphMemStorage(nil)
	ctx := context.Background()

	rel := common.Relationship{SourceID: "a", TargetID: "b", Type: common.RelationCooccurrence, Weight: 2}
	if err := s.UpsertRelationships(ctx, "proj", []common.Relationship{rel}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	// Reversed endpoints must hit the same canonical edge.
	rel.SourceID, rel.TargetID = "b", "a"
	if err := s.UpsertRelationships(ctx, "proj", []common.Relationship{rel}); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	snapshot, _ := s.GetGraph(ctx, "proj")
	if len(snapshot.Relationships) != 1 {
		t.Fatalf("expected 1 edge, got %d", len(snapshot.Relationships))
	}
	if got := snapshot.Relationships[0]; got.Weight != 4 || got.SourceID != "a" {
		t.Fatalf("unexpected edge %+v", got)
	}
}

func TestSimilarEntityPairs(t *testing.T) {
	s := NewGraphMemStorage(axisEmbeddingClient{})
	ctx := context.Background()

	err := s.SaveEntities(ctx, "proj", []common.Entity{
		testEntity("neural network", "p1"),
		testEntity("neural nets", "p2"),
		testEntity("economics", "p3"),
	})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	pairs, err := s.SimilarEntityPairs(ctx, "proj", 0.9, 10)
	if err != nil {
		t.Fatalf("similar pairs failed: %v", err)
	}
	if len(pairs) != 1 {
		t.Fatalf("expected 1 similar pair, got %d", len(pairs))
	}
	if pairs[0].Type != common.RelationSemantic || pairs[0].Similarity < 0.9 {
		t.Fatalf("unexpected pair %+v", pairs[0])
	}
}

func TestSaveEmbeddingsReplacesPaperVectors(t *testing.T) {
	s := NewGraphMemStorage(nil)
	ctx := context.Background()

	first := []common.EmbeddingVector{
		{ChunkID: "run1-c1", PaperID: "p1", Vector: []float32{1, 0}},
		{ChunkID: "run1-c2", PaperID: "p1", Vector: []float32{0, 1}},
		{ChunkID: "run1-c3", PaperID: "p2", Vector: []float32{1, 1}},
	}
	if err := s.SaveEmbeddings(ctx, "proj", first); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	// Re-importing p1 produces fresh chunk IDs; the old p1 vectors
	// must not survive alongside them.
	second := []common.EmbeddingVector{
		{ChunkID: "run2-c1", PaperID: "p1", Vector: []float32{1, 0}},
	}
	if err := s.SaveEmbeddings(ctx, "proj", second); err != nil {
		t.Fatalf("resave failed: %v", err)
	}

	s.mu.Lock()
	stored := s.project("proj").embeddings
	if len(stored) != 2 {
		t.Fatalf("expected 2 vectors after replacement, got %d", len(stored))
	}
	if _, ok := stored["run2-c1"]; !ok {
		t.Fatal("replacement vector missing")
	}
	if _, ok := stored["run1-c3"]; !ok {
		t.Fatal("other paper's vector must survive")
	}
	s.mu.Unlock()
}

func TestRollbackImportPrunesOrphans(t *testing.T) {
	s := NewGraphMemStorage(nil)
	ctx := context.Background()

	papers := []common.Paper{{ID: "p1", Title: "kept"}, {ID: "p2", Title: "rolled back"}}
	if err := s.SavePapers(ctx, "proj", "import-1", papers[:1]); err != nil {
		t.Fatalf("save papers failed: %v", err)
	}
	if err := s.SavePapers(ctx, "proj", "import-2", papers[1:]); err != nil {
		t.Fatalf("save papers failed: %v", err)
	}

	shared := testEntity("shared topic", "p1")
	shared.PaperIDs = []string{"p1", "p2"}
	only2 := testEntity("orphaned topic", "p2")
	if err := s.SaveEntities(ctx, "proj", []common.Entity{shared, only2}); err != nil {
		t.Fatalf("save entities failed: %v", err)
	}
	err := s.UpsertRelationships(ctx, "proj", []common.Relationship{{
		SourceID: shared.ID, TargetID: only2.ID, Type: common.RelationCooccurrence, Weight: 1,
	}})
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	if err := s.RollbackImport(ctx, "proj", "import-2"); err != nil {
		t.Fatalf("rollback failed: %v", err)
	}

	snapshot, _ := s.GetGraph(ctx, "proj")
	if len(snapshot.Entities) != 1 || snapshot.Entities[0].ID != shared.ID {
		t.Fatalf("expected only the shared entity to survive, got %+v", snapshot.Entities)
	}
	if got := snapshot.Entities[0].PaperIDs; len(got) != 1 || got[0] != "p1" {
		t.Fatalf("rolled-back paper still referenced: %v", got)
	}
	if len(snapshot.Relationships) != 0 {
		t.Fatalf("expected orphaned edge to be pruned, got %d", len(snapshot.Relationships))
	}
}

func TestLatestAnalysisSupersedes(t *testing.T) {
	s := NewGraphMemStorage(nil)
	ctx := context.Background()

	first := &common.AnalysisReport{RunID: "run-1", ProjectID: "proj"}
	second := &common.AnalysisReport{RunID: "run-2", ProjectID: "proj"}
	if err := s.SaveAnalysis(ctx, first); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := s.SaveAnalysis(ctx, second); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	latest, err := s.LatestAnalysis(ctx, "proj")
	if err != nil {
		t.Fatalf("latest failed: %v", err)
	}
	if latest.RunID != "run-2" {
		t.Fatalf("expected run-2, got %s", latest.RunID)
	}

	if _, err := s.LatestAnalysis(ctx, "empty"); err == nil {
		t.Fatal("expected error for project without analysis")
	}
}
