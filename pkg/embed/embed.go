package embed

import (
	"context"
	"errors"
	"time"

	"github.com/openlit/litgraph/internal/util"
	"github.com/openlit/litgraph/pkg/ai"
	"github.com/openlit/litgraph/pkg/common"
	"github.com/openlit/litgraph/pkg/logger"
)

const (
	// DefaultBatchSize is the number of chunks sent to the provider in
	// one embedding request.
	DefaultBatchSize = 50

	DefaultMaxRetries   = 3
	DefaultRetryBackoff = 2 * time.Second
)

// EmbedderConfig tunes batching and retry behavior. The zero value is
// usable.
type EmbedderConfig struct {
	BatchSize    int
	MaxRetries   int
	RetryBackoff time.Duration
}

func (c EmbedderConfig) withDefaults() EmbedderConfig {
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = DefaultRetryBackoff
	}
	return c
}

// Embedder runs chunk batches through a provider's embedding endpoint.
type Embedder struct {
	cfg    EmbedderConfig
	client ai.GraphAIClient
}

func NewEmbedder(client ai.GraphAIClient, cfg EmbedderConfig) *Embedder {
	return &Embedder{cfg: cfg.withDefaults(), client: client}
}

// EmbedChunks embeds all chunks in batches. A failing batch is split in
// half and each half retried, down to single chunks; a chunk that still
// fails is logged and left out of the result rather than filled with a
// placeholder. The error return is reserved for context cancellation.
func (e *Embedder) EmbedChunks(ctx context.Context, chunks []common.Chunk) ([]common.EmbeddingVector, error) {
	vectors := make([]common.EmbeddingVector, 0, len(chunks))

	for start := 0; start < len(chunks); start += e.cfg.BatchSize {
		end := util.Min(start+e.cfg.BatchSize, len(chunks))
		batchVectors, err := e.embedBatch(ctx, chunks[start:end])
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, batchVectors...)
	}

	if dropped := len(chunks) - len(vectors); dropped > 0 {
		logger.Warn("some chunks could not be embedded", "dropped", dropped, "total", len(chunks))
	}
	return vectors, nil
}

// embedBatch tries one provider call for the whole batch and bisects on
// failure, so one poisonous chunk costs only itself.
func (e *Embedder) embedBatch(ctx context.Context, chunks []common.Chunk) ([]common.EmbeddingVector, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	inputs := make([][]byte, len(chunks))
	for i, chunk := range chunks {
		inputs[i] = []byte(chunk.Text)
	}

	results, err := util.RetryWithContext(ctx, e.cfg.MaxRetries, e.cfg.RetryBackoff,
		func(ctx context.Context) ([][]float32, error) {
			return e.client.GenerateEmbeddings(ctx, inputs)
		})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		if len(chunks) == 1 {
			logger.Warn("dropping chunk after failed embedding",
				"chunk", chunks[0].ID, "paper", chunks[0].PaperID, "error", err)
			return nil, nil
		}

		half := len(chunks) / 2
		left, err := e.embedBatch(ctx, chunks[:half])
		if err != nil {
			return nil, err
		}
		right, err := e.embedBatch(ctx, chunks[half:])
		if err != nil {
			return nil, err
		}
		return append(left, right...), nil
	}

	vectors := make([]common.EmbeddingVector, len(chunks))
	for i, chunk := range chunks {
		vectors[i] = common.EmbeddingVector{
			ChunkID: chunk.ID,
			PaperID: chunk.PaperID,
			Vector:  results[i],
		}
	}
	return vectors, nil
}
