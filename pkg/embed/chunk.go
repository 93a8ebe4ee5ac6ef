// Package embed cuts paper sections into token-bounded chunks and runs
// them through the provider's embedding endpoint in batches.
package embed

import (
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/pkoukk/tiktoken-go"

	"github.com/openlit/litgraph/pkg/common"
)

const (
	// DefaultEncoding is the tokenizer used for chunk sizing.
	DefaultEncoding = "o200k_base"

	// DefaultMaxChunkTokens bounds one embedding input.
	DefaultMaxChunkTokens = 512
)

// ChunkSections cuts each section into chunks of at most maxTokens
// tokens, accumulating whole paragraphs where possible. A paragraph
// larger than the budget is split on token boundaries.
func ChunkSections(sections []common.Section, encoding string, maxTokens int) ([]common.Chunk, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxChunkTokens
	}
	if len(sections) == 0 {
		return nil, nil
	}

	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, err
	}

	var chunks []common.Chunk
	for _, section := range sections {
		sectionChunks, err := chunkSection(enc, section, maxTokens)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, sectionChunks...)
	}
	return chunks, nil
}

func chunkSection(enc *tiktoken.Tiktoken, section common.Section, maxTokens int) ([]common.Chunk, error) {
	text := strings.TrimSpace(section.Text)
	if text == "" {
		return nil, nil
	}

	var chunks []common.Chunk
	var currentParts []string
	currentTokens := 0

	flushChunk := func() error {
		if len(currentParts) == 0 {
			return nil
		}

		chunkID, err := gonanoid.New()
		if err != nil {
			return err
		}

		chunks = append(chunks, common.Chunk{
			ID:      chunkID,
			PaperID: section.PaperID,
			Section: section.Label,
			Text:    strings.Join(currentParts, "\n\n"),
		})
		currentParts = nil
		currentTokens = 0
		return nil
	}

	for _, paragraph := range splitParagraphs(text) {
		tokens := enc.Encode(paragraph, nil, nil)

		if len(tokens) > maxTokens {
			if err := flushChunk(); err != nil {
				return nil, err
			}
			for start := 0; start < len(tokens); start += maxTokens {
				end := start + maxTokens
				if end > len(tokens) {
					end = len(tokens)
				}
				currentParts = append(currentParts, enc.Decode(tokens[start:end]))
				if err := flushChunk(); err != nil {
					return nil, err
				}
			}
			continue
		}

		if currentTokens+len(tokens) > maxTokens && len(currentParts) > 0 {
			if err := flushChunk(); err != nil {
				return nil, err
			}
		}
		currentParts = append(currentParts, paragraph)
		currentTokens += len(tokens)
	}

	if err := flushChunk(); err != nil {
		return nil, err
	}
	return chunks, nil
}

func splitParagraphs(text string) []string {
	raw := strings.Split(text, "\n\n")
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
