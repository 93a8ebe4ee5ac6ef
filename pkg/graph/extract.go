package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/openlit/litgraph/pkg/ai"
	"github.com/openlit/litgraph/pkg/common"
)

// ParseError reports a malformed or semantically invalid extraction
// response. The affected section degrades to zero entities; the paper
// continues.
type ParseError struct {
	PaperID string
	Section string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse extraction response for paper %s section %q: %v", e.PaperID, e.Section, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

type extractMention struct {
	Name     string `json:"name" jsonschema_description:"Most common surface name of the entity"`
	Evidence string `json:"evidence" jsonschema_description:"Short verbatim quote from the section text mentioning the entity"`
}

// extractResponse is the tagged-variant envelope of an extraction
// response: each known entity type has its own key, so decoding never
// guesses at string-typed tags.
type extractResponse struct {
	Concepts []extractMention `json:"concepts" jsonschema_description:"Research concepts, topics and techniques"`
	Methods  []extractMention `json:"methods" jsonschema_description:"Concrete methods, algorithms, models or procedures"`
	Datasets []extractMention `json:"datasets" jsonschema_description:"Named datasets, corpora or benchmarks"`
	Results  []extractMention `json:"results" jsonschema_description:"Concrete findings or measured outcomes"`
	Claims   []extractMention `json:"claims" jsonschema_description:"Positions or conclusions asserted by the authors"`
}

func (r *extractResponse) variants() map[common.EntityType][]extractMention {
	return map[common.EntityType][]extractMention{
		common.EntityConcept: r.Concepts,
		common.EntityMethod:  r.Methods,
		common.EntityDataset: r.Datasets,
		common.EntityResult:  r.Results,
		common.EntityClaim:   r.Claims,
	}
}

// extractFromSection asks the provider for the typed entities of one
// section and maps the response onto canonical graph entities. Provider
// errors are returned as-is (the caller retries those); response-shape
// problems come back as *ParseError and are not retried.
func extractFromSection(
	ctx context.Context,
	section common.Section,
	paperTitle string,
	client ai.GraphAIClient,
) ([]common.Entity, error) {
	systemPrompt := extractionPrompt(paperTitle, section.Label)

	var res extractResponse
	err := client.GenerateCompletionWithFormat(
		ctx,
		"extract_paper_entities",
		"Extract typed entities with verbatim evidence from a section of a scientific paper.",
		section.Text,
		&res,
		ai.WithSystemPrompts(systemPrompt),
	)
	if err != nil {
		return nil, err
	}

	return mentionsToEntities(section, res)
}

// mentionsToEntities validates the decoded envelope and converts each
// mention into a canonical entity with a single evidence span. Mentions
// without a usable name make the whole response suspect and yield a
// ParseError.
func mentionsToEntities(section common.Section, res extractResponse) ([]common.Entity, error) {
	entities := make([]common.Entity, 0)
	for _, typ := range common.EntityTypes {
		for _, mention := range res.variants()[typ] {
			name := strings.TrimSpace(mention.Name)
			if name == "" {
				return nil, &ParseError{
					PaperID: section.PaperID,
					Section: section.Label,
					Err:     fmt.Errorf("mention of type %s without a name", typ),
				}
			}

			entities = append(entities, common.Entity{
				ID:       common.CanonicalEntityID(name, typ),
				Name:     name,
				Type:     typ,
				PaperIDs: []string{section.PaperID},
				Evidence: []common.Evidence{{
					PaperID: section.PaperID,
					Section: section.Label,
					Quote:   strings.TrimSpace(mention.Evidence),
				}},
			})
		}
	}
	return entities, nil
}
