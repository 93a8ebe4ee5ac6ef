package openai

import (
	"github.com/openai/openai-go/v3"

	"github.com/openlit/litgraph/pkg/ai"
)

func aiMetricsFromEmbedding(response *openai.CreateEmbeddingResponse, durationMs int64) ai.ModelMetrics {
	return ai.ModelMetrics{
		InputTokens: int(response.Usage.PromptTokens),
		TotalTokens: int(response.Usage.TotalTokens),
		DurationMs:  durationMs,
	}
}
