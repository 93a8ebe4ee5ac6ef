package graph

import (
	"testing"

	"github.com/openlit/litgraph/pkg/common"
)

func entity(name string, typ common.EntityType, paperID string) common.Entity {
	return common.Entity{
		ID:       common.CanonicalEntityID(name, typ),
		Name:     name,
		Type:     typ,
		PaperIDs: []string{paperID},
		Evidence: []common.Evidence{{PaperID: paperID, Section: "abstract", Quote: name}},
	}
}

func TestAccumulatorMergesSameEntityAcrossPapers(t *testing.T) {
	acc := NewAccumulator("proj", false)

	acc.MergePaper("p1", []sectionEntities{{
		label: "abstract",
		entities: []common.Entity{
			entity("Transfer Learning", common.EntityConcept, "p1"),
			entity("BERT", common.EntityMethod, "p1"),
		},
	}})
	acc.MergePaper("p2", []sectionEntities{{
		label: "abstract",
		entities: []common.Entity{
			entity("transfer  learning", common.EntityConcept, "p2"),
			entity("ImageNet", common.EntityDataset, "p2"),
		},
	}})

	entities, relations := acc.Snapshot()
	if len(entities) != 3 {
		t.Fatalf("expected 3 entities after merge, got %d", len(entities))
	}

	var transfer *common.Entity
	for i := range entities {
		if entities[i].ID == "concept:transfer-learning" {
			transfer = &entities[i]
		}
	}
	if transfer == nil {
		t.Fatal("merged transfer learning entity not found")
	}
	if len(transfer.PaperIDs) != 2 {
		t.Fatalf("expected entity in 2 papers, got %v", transfer.PaperIDs)
	}
	if len(transfer.Evidence) != 2 {
		t.Fatalf("expected evidence from both papers, got %d spans", len(transfer.Evidence))
	}

	if len(relations) != 2 {
		t.Fatalf("expected 2 co-occurrence edges, got %d", len(relations))
	}
	for _, rel := range relations {
		if rel.Weight != 1 {
			t.Fatalf("edge %s-%s: expected weight 1, got %v", rel.SourceID, rel.TargetID, rel.Weight)
		}
		if rel.SourceID > rel.TargetID {
			t.Fatalf("edge %s-%s not canonically ordered", rel.SourceID, rel.TargetID)
		}
	}
}

func TestAccumulatorWeightAccumulatesPerPaper(t *testing.T) {
	acc := NewAccumulator("proj", false)

	// The same pair appears in three papers; within one paper a
	// duplicate mention must not double-count.
	for _, paperID := range []string{"p1", "p2", "p3"} {
		acc.MergePaper(paperID, []sectionEntities{{
			label: "abstract",
			entities: []common.Entity{
				entity("graph neural network", common.EntityConcept, paperID),
				entity("node classification", common.EntityConcept, paperID),
				entity("Graph Neural Network", common.EntityConcept, paperID),
			},
		}})
	}

	_, relations := acc.Snapshot()
	if len(relations) != 1 {
		t.Fatalf("expected a single edge, got %d", len(relations))
	}
	if relations[0].Weight != 3 {
		t.Fatalf("expected weight 3 after three papers, got %v", relations[0].Weight)
	}
	if relations[0].Type != common.RelationCooccurrence {
		t.Fatalf("unexpected relation type %s", relations[0].Type)
	}
}

func TestAccumulatorDeduplicatesIdenticalEvidence(t *testing.T) {
	acc := NewAccumulator("proj", false)

	// The same span reported from two sections of one paper.
	span := entity("contrastive pretraining", common.EntityConcept, "p1")
	acc.MergePaper("p1", []sectionEntities{
		{label: "introduction", entities: []common.Entity{span}},
		{label: "discussion", entities: []common.Entity{span}},
	})

	entities, _ := acc.Snapshot()
	if len(entities) != 1 {
		t.Fatalf("expected 1 entity, got %d", len(entities))
	}
	if len(entities[0].Evidence) != 1 {
		t.Fatalf("identical spans must collapse to one, got %d", len(entities[0].Evidence))
	}
}

func TestAccumulatorCooccurrenceScope(t *testing.T) {
	sections := []sectionEntities{
		{label: "introduction", entities: []common.Entity{entity("topic a", common.EntityConcept, "p1")}},
		{label: "methods", entities: []common.Entity{entity("topic b", common.EntityConcept, "p1")}},
	}

	perPaper := NewAccumulator("proj", false)
	perPaper.MergePaper("p1", sections)
	if _, relations := perPaper.Snapshot(); len(relations) != 1 {
		t.Fatalf("per-paper scope: expected cross-section edge, got %d edges", len(relations))
	}

	perSection := NewAccumulator("proj", true)
	perSection.MergePaper("p1", sections)
	if _, relations := perSection.Snapshot(); len(relations) != 0 {
		t.Fatalf("per-section scope: expected no edge across sections, got %d", len(relations))
	}
}

func TestAccumulatorStats(t *testing.T) {
	acc := NewAccumulator("proj", false)
	acc.MergePaper("p1", nil)
	acc.MergeFailed("p2", nil)
	acc.MergePaper("p3", nil)

	processed, failed := acc.Stats()
	if processed != 2 || failed != 1 {
		t.Fatalf("expected 2 processed / 1 failed, got %d / %d", processed, failed)
	}
}
