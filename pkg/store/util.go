package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/openlit/litgraph/internal/util"
	"github.com/openlit/litgraph/pkg/ai"
	"github.com/openlit/litgraph/pkg/common"
)

// ChunkRange calls fn over [start, end) windows of at most chunkSize
// elements until the range is covered or fn errors.
func ChunkRange(total, chunkSize int, fn func(start, end int) error) error {
	if total <= 0 {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = total
	}
	for start := 0; start < total; start += chunkSize {
		end := util.Min(start+chunkSize, total)
		if err := fn(start, end); err != nil {
			return err
		}
	}
	return nil
}

func DedupeStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// EntityEmbeddingText builds the text an entity is embedded under: the
// surface name plus its evidence quotes.
func EntityEmbeddingText(entity common.Entity) string {
	parts := make([]string, 0, len(entity.Evidence)+1)
	parts = append(parts, entity.Name)
	for _, ev := range entity.Evidence {
		if quote := strings.TrimSpace(ev.Quote); quote != "" {
			parts = append(parts, quote)
		}
	}
	return strings.Join(parts, "\n")
}

// GenerateEmbeddings embeds all inputs through the client's batch
// endpoint, verifying the result keeps input order and size.
func GenerateEmbeddings(
	ctx context.Context,
	client ai.GraphAIClient,
	inputs [][]byte,
) ([][]float32, error) {
	if client == nil {
		return nil, fmt.Errorf("ai client is nil")
	}
	if len(inputs) == 0 {
		return nil, nil
	}

	out, err := client.GenerateEmbeddings(ctx, inputs)
	if err != nil {
		return nil, err
	}
	if len(out) != len(inputs) {
		return nil, fmt.Errorf("embedding count mismatch: got %d for %d inputs", len(out), len(inputs))
	}
	return out, nil
}
