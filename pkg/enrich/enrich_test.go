package enrich

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pkoukk/tiktoken-go"

	"github.com/openlit/litgraph/pkg/ai"
	"github.com/openlit/litgraph/pkg/analysis"
	"github.com/openlit/litgraph/pkg/common"
	"github.com/openlit/litgraph/pkg/embed"
	"github.com/openlit/litgraph/pkg/graph"
	"github.com/openlit/litgraph/pkg/store/memory"
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

func testEntity(name, paperID string) common.Entity {
	return common.Entity{
		ID:       common.CanonicalEntityID(name, common.EntityConcept),
		Name:     name,
		Type:     common.EntityConcept,
		PaperIDs: []string{paperID},
		Evidence: []common.Evidence{{PaperID: paperID, Section: "abstract", Quote: name}},
	}
}

func newScheduler(t *testing.T) (*Scheduler, *memory.GraphMemStorage) {
	t.Helper()
	client := axisEmbeddingClient{}
	storage := memory.NewGraphMemStorage(client)
	embedder := embed.NewEmbedder(client, embed.EmbedderConfig{RetryBackoff: time.Millisecond})
	analyzer := analysis.NewAnalyzer(storage, analysis.Config{MinEdgeWeight: 1})
	return NewScheduler(storage, embedder, analyzer, Config{MinSimilarity: 0.9}), storage
}

func TestSchedulerRunsFullChain(t *testing.T) {
	if _, err := tiktoken.GetEncoding(embed.DefaultEncoding); err != nil {
		t.Skipf("encoding unavailable: %v", err)
	}

	scheduler, storage := newScheduler(t)

	body := strings.Repeat("This paper studies neural architectures for literature analysis. ", 5)
	e1 := testEntity("neural network", "p1")
	e2 := testEntity("neural nets", "p2")
	e3 := testEntity("economics", "p2")
	result := &graph.Result{
		Papers: []common.Paper{
			{ID: "p1", Title: "First paper", FullText: body},
			{ID: "p2", Title: "Second paper", FullText: body},
		},
		Entities: []common.Entity{e1, e2, e3},
		Relationships: []common.Relationship{
			{SourceID: e2.ID, TargetID: e3.ID, Type: common.RelationCooccurrence, Weight: 1},
		},
		Processed: 2,
	}

	report, err := scheduler.Run(context.Background(), "proj", "import-1", result)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if report == nil || report.RunID == "" {
		t.Fatal("expected a stored analysis report")
	}

	snapshot, err := storage.GetGraph(context.Background(), "proj")
	if err != nil {
		t.Fatalf("get graph failed: %v", err)
	}

	var semantic int
	for _, rel := range snapshot.Relationships {
		if rel.Type == common.RelationSemantic {
			semantic++
		}
	}
	if semantic != 1 {
		t.Fatalf("expected 1 inferred semantic edge, got %d", semantic)
	}

	if _, err := storage.LatestAnalysis(context.Background(), "proj"); err != nil {
		t.Fatalf("expected stored analysis: %v", err)
	}
}

func TestSemanticFailsFastBeforeEmbeddings(t *testing.T) {
	scheduler, _ := newScheduler(t)

	err := scheduler.RunSemantic(context.Background(), "proj")
	if !errors.Is(err, ErrStageNotReady) {
		t.Fatalf("expected ErrStageNotReady, got %v", err)
	}
}

func TestAnalysisFailsFastBeforePriorStages(t *testing.T) {
	scheduler, _ := newScheduler(t)

	result := &graph.Result{Papers: []common.Paper{{ID: "p1", Title: "Metadata only"}}}
	if err := scheduler.RunCooccurrence(context.Background(), "proj", "import-1", result); err != nil {
		t.Fatalf("cooccurrence failed: %v", err)
	}

	if _, err := scheduler.RunAnalysis(context.Background(), "proj"); !errors.Is(err, ErrStageNotReady) {
		t.Fatalf("expected ErrStageNotReady, got %v", err)
	}
}

func TestSemanticSkipsWithoutStoredEmbeddings(t *testing.T) {
	scheduler, storage := newScheduler(t)

	// Metadata-only papers produce no chunks, so the embeddings stage
	// completes with nothing stored.
	papers := []common.Paper{{ID: "p1", Title: "Metadata only"}}
	if err := scheduler.RunEmbeddings(context.Background(), "proj", papers); err != nil {
		t.Fatalf("embeddings failed: %v", err)
	}

	result := &graph.Result{Papers: papers, Entities: []common.Entity{testEntity("topic", "p1")}}
	if err := scheduler.RunCooccurrence(context.Background(), "proj", "import-1", result); err != nil {
		t.Fatalf("cooccurrence failed: %v", err)
	}
	if err := scheduler.RunSemantic(context.Background(), "proj"); err != nil {
		t.Fatalf("semantic stage must skip cleanly: %v", err)
	}

	snapshot, _ := storage.GetGraph(context.Background(), "proj")
	for _, rel := range snapshot.Relationships {
		if rel.Type == common.RelationSemantic {
			t.Fatal("no semantic edges expected without embeddings")
		}
	}
}
