package graph

import (
	"errors"
	"strings"
	"testing"

	"github.com/openlit/litgraph/pkg/common"
)

func TestExtractionPromptVariesWithSectionKind(t *testing.T) {
	methods := extractionPrompt("Some Paper", "methods")
	discussion := extractionPrompt("Some Paper", "discussion")

	if methods == discussion {
		t.Fatal("expected section-specific prompts to differ")
	}
	if !strings.Contains(methods, "Some Paper") {
		t.Fatal("prompt missing paper title")
	}
	if !strings.Contains(methods, "Section: methods") {
		t.Fatal("prompt missing section label")
	}
}

func TestKindForLabelFallsBackToAbstract(t *testing.T) {
	if kind := kindForLabel("appendix b"); kind != kindAbstract {
		t.Fatalf("expected abstract profile for unknown label, got %s", kind)
	}
	if kind := kindForLabel("related work"); kind != kindConceptual {
		t.Fatalf("expected conceptual profile, got %s", kind)
	}
}

func TestMentionsToEntitiesCanonicalizes(t *testing.T) {
	section := common.Section{PaperID: "p1", Label: "introduction"}
	res := extractResponse{
		Concepts: []extractMention{{Name: "  Self-Supervised   Learning ", Evidence: "we use self-supervised learning"}},
	}

	entities, err := mentionsToEntities(section, res)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entities) != 1 {
		t.Fatalf("expected 1 entity, got %d", len(entities))
	}
	if entities[0].ID != "concept:self-supervised-learning" {
		t.Fatalf("unexpected canonical ID %s", entities[0].ID)
	}
	if entities[0].Name != "Self-Supervised   Learning" {
		t.Fatalf("surface name must keep original casing, got %q", entities[0].Name)
	}
}

func TestMentionsToEntitiesRejectsNamelessMention(t *testing.T) {
	section := common.Section{PaperID: "p1", Label: "results"}
	res := extractResponse{Results: []extractMention{{Name: "", Evidence: "quote"}}}

	_, err := mentionsToEntities(section, res)
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if parseErr.PaperID != "p1" || parseErr.Section != "results" {
		t.Fatalf("ParseError not attributed: %+v", parseErr)
	}
}
