// Package graph turns ingested papers into knowledge-graph entities and
// co-occurrence relationships by driving an AI provider over each
// paper's sections and merging the results into one shared graph.
package graph

import (
	"time"

	"github.com/openlit/litgraph/pkg/ai"
	"github.com/openlit/litgraph/pkg/loader"
)

const (
	// DefaultConcurrency bounds how many papers are in provider
	// extraction at once.
	DefaultConcurrency = 3

	// DefaultBatchSize is how many papers are dispatched and awaited
	// together before the next batch starts.
	DefaultBatchSize = 5

	// DefaultLocalWorkers bounds document loading and text extraction,
	// which is disk and CPU bound rather than provider bound.
	DefaultLocalWorkers = 4

	DefaultMaxRetries   = 3
	DefaultRetryBackoff = 2 * time.Second
)

// PipelineConfig tunes one extraction run. The zero value is usable:
// every field falls back to its default.
type PipelineConfig struct {
	// Concurrency is the number of extraction slots. Incoming papers
	// wait for a free slot.
	Concurrency int

	// BatchSize groups papers into jointly awaited batches.
	BatchSize int

	// LocalWorkers sizes the document loading pool, independent of the
	// extraction slots.
	LocalWorkers int

	// MaxRetries applies to provider calls only. Malformed responses
	// are never retried.
	MaxRetries   int
	RetryBackoff time.Duration

	// PerSectionCooccurrence scopes co-occurrence pairs to individual
	// sections instead of whole papers.
	PerSectionCooccurrence bool
}

func (c PipelineConfig) withDefaults() PipelineConfig {
	if c.Concurrency <= 0 {
		c.Concurrency = DefaultConcurrency
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.LocalWorkers <= 0 {
		c.LocalWorkers = DefaultLocalWorkers
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = DefaultRetryBackoff
	}
	return c
}

// Pipeline runs entity extraction for one project. It is safe to reuse
// a Pipeline across runs; all per-run state lives in the Accumulator.
type Pipeline struct {
	cfg    PipelineConfig
	client ai.GraphAIClient
	docs   loader.DocumentLoader
}

// NewPipeline wires an extraction pipeline to an AI provider and a
// document loader. The loader may be nil when every paper is
// metadata-only.
func NewPipeline(client ai.GraphAIClient, docs loader.DocumentLoader, cfg PipelineConfig) *Pipeline {
	return &Pipeline{
		cfg:    cfg.withDefaults(),
		client: client,
		docs:   docs,
	}
}
