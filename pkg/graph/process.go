package graph

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/openlit/litgraph/internal/util"
	"github.com/openlit/litgraph/pkg/common"
	"github.com/openlit/litgraph/pkg/ingest"
	"github.com/openlit/litgraph/pkg/loader"
	"github.com/openlit/litgraph/pkg/logger"
)

// Result is the outcome of one extraction run: the merged graph plus
// the papers with their entity back-links filled in.
type Result struct {
	Entities      []common.Entity
	Relationships []common.Relationship
	Papers        []common.Paper
	Processed     int
	Failed        int
}

type preparedPaper struct {
	paper    common.Paper
	sections []common.Section
}

// Run processes all papers of one import: documents are loaded and
// segmented by the local worker pool, then papers go through provider
// extraction in batches, each batch awaited before the next starts.
// Individual paper failures are logged and counted, not propagated; Run
// errors only when the context ends.
func (p *Pipeline) Run(ctx context.Context, projectID string, papers []common.Paper) (*Result, error) {
	prepared := p.loadPapers(ctx, papers)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	acc := NewAccumulator(projectID, p.cfg.PerSectionCooccurrence)

	for start := 0; start < len(prepared); start += p.cfg.BatchSize {
		end := util.Min(start+p.cfg.BatchSize, len(prepared))

		eg, batchCtx := errgroup.WithContext(ctx)
		eg.SetLimit(p.cfg.Concurrency)
		for i := start; i < end; i++ {
			pp := &prepared[i]
			eg.Go(func() error {
				return p.extractPaper(batchCtx, acc, pp)
			})
		}
		if err := eg.Wait(); err != nil {
			return nil, err
		}
	}

	entities, relations := acc.Snapshot()
	processed, failed := acc.Stats()

	out := make([]common.Paper, len(prepared))
	for i, pp := range prepared {
		out[i] = pp.paper
	}

	logger.Info("extraction run finished",
		"project", projectID,
		"papers", len(papers),
		"processed", processed,
		"failed", failed,
		"entities", len(entities),
		"relationships", len(relations),
	)

	return &Result{
		Entities:      entities,
		Relationships: relations,
		Papers:        out,
		Processed:     processed,
		Failed:        failed,
	}, nil
}

// loadPapers runs document loading and segmentation over the local
// worker pool. Each worker writes only its own slice index, so no lock
// is needed.
func (p *Pipeline) loadPapers(ctx context.Context, papers []common.Paper) []preparedPaper {
	prepared := make([]preparedPaper, len(papers))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < p.cfg.LocalWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				prepared[i] = p.preparePaper(ctx, papers[i])
			}
		}()
	}

feed:
	for i := range papers {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	return prepared
}

// preparePaper resolves a paper's text: attached documents are fetched
// and extracted, everything else falls back to title and abstract.
// A document that cannot be loaded degrades the paper to metadata-only
// instead of failing it.
func (p *Pipeline) preparePaper(ctx context.Context, paper common.Paper) preparedPaper {
	if paper.FullText == "" && paper.DocumentKey != "" && p.docs != nil {
		text, err := loader.LoadText(ctx, p.docs, paper.DocumentKey)
		if err != nil {
			logger.Warn("failed to load document, using metadata only",
				"paper", paper.ID, "document", paper.DocumentKey, "error", err)
		} else {
			paper.FullText = text
		}
	}

	sections := ingest.SegmentText(paper.ID, paper.FullText)
	if len(sections) == 0 {
		sections = metadataSections(paper)
	}
	return preparedPaper{paper: paper, sections: sections}
}

func metadataSections(paper common.Paper) []common.Section {
	text := strings.TrimSpace(paper.Title)
	if abstract := strings.TrimSpace(paper.Abstract); abstract != "" {
		text += "\n\n" + abstract
	}
	if text == "" {
		return nil
	}
	return []common.Section{{
		PaperID: paper.ID,
		Label:   ingest.UnlabeledSection,
		Text:    text,
		Start:   0,
		End:     len(text),
	}}
}

// extractPaper runs provider extraction over every section of one paper
// and merges the results. Provider errors are retried with backoff; a
// malformed response costs only its section. A paper whose section
// still fails after retries is marked failed but keeps the entities of
// the sections extracted before the failure, and the batch continues.
func (p *Pipeline) extractPaper(ctx context.Context, acc *Accumulator, pp *preparedPaper) error {
	merged := make([]sectionEntities, 0, len(pp.sections))

	for _, section := range pp.sections {
		var parseErr *ParseError
		entities, err := util.RetryWithContext(ctx, p.cfg.MaxRetries, p.cfg.RetryBackoff,
			func(ctx context.Context) ([]common.Entity, error) {
				ents, err := extractFromSection(ctx, section, pp.paper.Title, p.client)
				if err != nil {
					var pe *ParseError
					if errors.As(err, &pe) {
						parseErr = pe
						return nil, nil
					}
					return nil, err
				}
				return ents, nil
			})
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			logger.Error("entity extraction failed, keeping partial sections",
				"paper", pp.paper.ID, "section", section.Label, "error", err)
			acc.MergeFailed(pp.paper.ID, merged)
			pp.paper.EntityIDs = paperEntityIDs(merged)
			return nil
		}
		if parseErr != nil {
			logger.Warn("discarding malformed extraction response",
				"paper", pp.paper.ID, "section", section.Label, "error", parseErr)
			continue
		}

		merged = append(merged, sectionEntities{label: section.Label, entities: entities})
	}

	acc.MergePaper(pp.paper.ID, merged)
	pp.paper.EntityIDs = paperEntityIDs(merged)
	return nil
}

func paperEntityIDs(sections []sectionEntities) []string {
	seen := make(map[string]struct{})
	for _, section := range sections {
		for _, entity := range section.entities {
			seen[entity.ID] = struct{}{}
		}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
