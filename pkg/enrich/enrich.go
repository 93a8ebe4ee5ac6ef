// Package enrich runs the post-import enrichment stages in their
// dependency order: chunk embeddings and co-occurrence persistence
// first (independent of each other), then semantic relationship
// inference over the stored embeddings, then gap and centrality
// analysis over the completed graph.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/openlit/litgraph/pkg/analysis"
	"github.com/openlit/litgraph/pkg/common"
	"github.com/openlit/litgraph/pkg/embed"
	"github.com/openlit/litgraph/pkg/graph"
	"github.com/openlit/litgraph/pkg/ingest"
	"github.com/openlit/litgraph/pkg/logger"
	"github.com/openlit/litgraph/pkg/store"
)

// Stage names one enrichment step.
type Stage string

const (
	StageEmbeddings   Stage = "embeddings"
	StageCooccurrence Stage = "cooccurrence"
	StageSemantic     Stage = "semantic"
	StageAnalysis     Stage = "analysis"
)

// ErrStageNotReady reports an attempt to run a stage before the stages
// it depends on have completed.
var ErrStageNotReady = errors.New("enrichment stage dependencies not complete")

const (
	DefaultMinSimilarity     = 0.85
	DefaultSemanticPairLimit = 100
)

// Config tunes the enrichment stages. The zero value is usable.
type Config struct {
	// MinSimilarity is the cosine similarity floor for inferring a
	// semantic relationship between two entities.
	MinSimilarity float64

	// SemanticPairLimit caps how many semantic edges one run adds.
	SemanticPairLimit int

	// ChunkEncoding and MaxChunkTokens are passed through to the
	// chunker.
	ChunkEncoding  string
	MaxChunkTokens int
}

func (c Config) withDefaults() Config {
	if c.MinSimilarity <= 0 {
		c.MinSimilarity = DefaultMinSimilarity
	}
	if c.SemanticPairLimit <= 0 {
		c.SemanticPairLimit = DefaultSemanticPairLimit
	}
	return c
}

// Scheduler drives the enrichment stages for one import. A fresh
// scheduler is created per import; stage completion is tracked so an
// out-of-order invocation fails fast instead of operating on partial
// data.
type Scheduler struct {
	cfg      Config
	storage  store.GraphStorage
	embedder *embed.Embedder
	analyzer *analysis.Analyzer

	mu   sync.Mutex
	done map[Stage]bool
}

func NewScheduler(storage store.GraphStorage, embedder *embed.Embedder, analyzer *analysis.Analyzer, cfg Config) *Scheduler {
	return &Scheduler{
		cfg:      cfg.withDefaults(),
		storage:  storage,
		embedder: embedder,
		analyzer: analyzer,
		done:     make(map[Stage]bool),
	}
}

func (s *Scheduler) markDone(stage Stage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.done[stage] = true
}

func (s *Scheduler) requireDone(stage Stage, deps ...Stage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, dep := range deps {
		if !s.done[dep] {
			return fmt.Errorf("%w: %s requires %s", ErrStageNotReady, stage, dep)
		}
	}
	return nil
}

// Run executes all stages for one import result and returns the final
// analysis report. Any stage failure aborts the chain immediately; the
// caller decides whether to roll the import back.
func (s *Scheduler) Run(ctx context.Context, projectID, importID string, result *graph.Result) (*common.AnalysisReport, error) {
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return s.RunEmbeddings(egCtx, projectID, result.Papers)
	})
	eg.Go(func() error {
		return s.RunCooccurrence(egCtx, projectID, importID, result)
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	if err := s.RunSemantic(ctx, projectID); err != nil {
		return nil, err
	}
	return s.RunAnalysis(ctx, projectID)
}

// RunEmbeddings chunks every paper's text and stores the chunk
// vectors. Papers without enough text contribute nothing.
func (s *Scheduler) RunEmbeddings(ctx context.Context, projectID string, papers []common.Paper) error {
	var sections []common.Section
	for _, paperSections := range ingest.SegmentPapers(papers) {
		sections = append(sections, paperSections...)
	}

	chunks, err := embed.ChunkSections(sections, s.cfg.ChunkEncoding, s.cfg.MaxChunkTokens)
	if err != nil {
		return fmt.Errorf("failed to chunk sections: %w", err)
	}

	vectors, err := s.embedder.EmbedChunks(ctx, chunks)
	if err != nil {
		return err
	}
	if err := s.storage.SaveEmbeddings(ctx, projectID, vectors); err != nil {
		return err
	}

	logger.Info("[Enrich] Embeddings stage complete",
		"project", projectID, "chunks", len(chunks), "vectors", len(vectors))
	s.markDone(StageEmbeddings)
	return nil
}

// RunCooccurrence persists the import's papers, merged entities and
// accumulated co-occurrence edges.
func (s *Scheduler) RunCooccurrence(ctx context.Context, projectID, importID string, result *graph.Result) error {
	if err := s.storage.SavePapers(ctx, projectID, importID, result.Papers); err != nil {
		return err
	}
	if err := s.storage.SaveEntities(ctx, projectID, result.Entities); err != nil {
		return err
	}
	if err := s.storage.UpsertRelationships(ctx, projectID, result.Relationships); err != nil {
		return err
	}

	logger.Info("[Enrich] Co-occurrence stage complete",
		"project", projectID,
		"entities", len(result.Entities),
		"relationships", len(result.Relationships))
	s.markDone(StageCooccurrence)
	return nil
}

// RunSemantic links entities whose embeddings are highly similar. It
// refuses to run before the embeddings and co-occurrence stages have
// completed, since partial embeddings would produce spurious links.
func (s *Scheduler) RunSemantic(ctx context.Context, projectID string) error {
	if err := s.requireDone(StageSemantic, StageEmbeddings, StageCooccurrence); err != nil {
		return err
	}
	if ok, err := s.storage.HasEmbeddings(ctx, projectID); err != nil {
		return err
	} else if !ok {
		logger.Warn("[Enrich] No stored embeddings, skipping semantic inference", "project", projectID)
		s.markDone(StageSemantic)
		return nil
	}

	pairs, err := s.storage.SimilarEntityPairs(ctx, projectID, s.cfg.MinSimilarity, s.cfg.SemanticPairLimit)
	if err != nil {
		return err
	}
	if err := s.storage.UpsertRelationships(ctx, projectID, pairs); err != nil {
		return err
	}

	logger.Info("[Enrich] Semantic stage complete", "project", projectID, "pairs", len(pairs))
	s.markDone(StageSemantic)
	return nil
}

// RunAnalysis computes and stores the analysis report over the fully
// merged graph. It requires every prior stage.
func (s *Scheduler) RunAnalysis(ctx context.Context, projectID string) (*common.AnalysisReport, error) {
	if err := s.requireDone(StageAnalysis, StageEmbeddings, StageCooccurrence, StageSemantic); err != nil {
		return nil, err
	}

	report, err := s.analyzer.Run(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.storage.SaveAnalysis(ctx, report); err != nil {
		return nil, err
	}

	s.markDone(StageAnalysis)
	return report, nil
}
