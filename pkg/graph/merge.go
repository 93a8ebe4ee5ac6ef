package graph

import (
	"sort"
	"sync"

	"github.com/openlit/litgraph/pkg/common"
)

type edgeKey struct {
	source string
	target string
}

// sectionEntities pairs a section label with the entities extracted
// from it, so the accumulator can scope co-occurrence per section when
// configured to.
type sectionEntities struct {
	label    string
	entities []common.Entity
}

// Accumulator is the shared merge state of one import run: the
// entity-name cache and the co-occurrence weights. All mutation happens
// under a single mutex, held for the duration of one merge operation
// and never across a provider call. When two workers contribute
// evidence for the same canonical entity, both evidence lists are kept,
// with identical spans collapsing to one.
type Accumulator struct {
	mu sync.Mutex

	projectID  string
	perSection bool

	entities map[string]*common.Entity
	weights  map[edgeKey]float64

	processed int
	failed    int
}

// NewAccumulator creates an empty accumulator for one project import.
// With perSection set, co-occurrence pairs are derived within each
// section instead of across the whole paper.
func NewAccumulator(projectID string, perSection bool) *Accumulator {
	return &Accumulator{
		projectID:  projectID,
		perSection: perSection,
		entities:   make(map[string]*common.Entity),
		weights:    make(map[edgeKey]float64),
	}
}

// MergePaper folds one paper's extraction results into the shared
// state: entities are deduplicated against the canonical cache with
// evidence merged in, and every co-occurring pair contributes +1 weight
// for this paper.
func (a *Accumulator) MergePaper(paperID string, sections []sectionEntities) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.mergeSections(sections)
	a.processed++
}

// MergeFailed records a paper whose extraction did not complete, still
// folding in the entities of the sections that succeeded before the
// failure.
func (a *Accumulator) MergeFailed(paperID string, sections []sectionEntities) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.mergeSections(sections)
	a.failed++
}

func (a *Accumulator) mergeSections(sections []sectionEntities) {
	for _, section := range sections {
		for _, entity := range section.entities {
			a.mergeEntity(entity)
		}
	}

	for key := range a.cooccurringPairs(sections) {
		a.weights[key] += 1
	}
}

func (a *Accumulator) mergeEntity(entity common.Entity) {
	existing, ok := a.entities[entity.ID]
	if !ok {
		clone := entity
		clone.PaperIDs = append([]string(nil), entity.PaperIDs...)
		clone.Evidence = append([]common.Evidence(nil), entity.Evidence...)
		a.entities[entity.ID] = &clone
		return
	}

	for _, paperID := range entity.PaperIDs {
		if !containsString(existing.PaperIDs, paperID) {
			existing.PaperIDs = append(existing.PaperIDs, paperID)
		}
	}
	for _, ev := range entity.Evidence {
		if !containsEvidence(existing.Evidence, ev) {
			existing.Evidence = append(existing.Evidence, ev)
		}
	}
}

func containsEvidence(list []common.Evidence, ev common.Evidence) bool {
	for _, e := range list {
		if e == ev {
			return true
		}
	}
	return false
}

// cooccurringPairs computes the set of unordered entity pairs this
// paper contributes, scoped per paper or per section.
func (a *Accumulator) cooccurringPairs(sections []sectionEntities) map[edgeKey]struct{} {
	pairs := make(map[edgeKey]struct{})

	addPairs := func(ids []string) {
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				if ids[i] == ids[j] {
					continue
				}
				source, target := common.CanonicalPair(ids[i], ids[j])
				pairs[edgeKey{source: source, target: target}] = struct{}{}
			}
		}
	}

	if a.perSection {
		for _, section := range sections {
			addPairs(uniqueEntityIDs(section.entities))
		}
		return pairs
	}

	all := make([]common.Entity, 0)
	for _, section := range sections {
		all = append(all, section.entities...)
	}
	addPairs(uniqueEntityIDs(all))
	return pairs
}

// Snapshot returns the merged entities and co-occurrence relationships
// in deterministic order. Paper IDs and evidence are sorted per entity,
// so the snapshot does not depend on worker arrival order.
func (a *Accumulator) Snapshot() ([]common.Entity, []common.Relationship) {
	a.mu.Lock()
	defer a.mu.Unlock()

	entities := make([]common.Entity, 0, len(a.entities))
	for _, entity := range a.entities {
		clone := *entity
		clone.PaperIDs = append([]string(nil), entity.PaperIDs...)
		clone.Evidence = append([]common.Evidence(nil), entity.Evidence...)
		sort.Strings(clone.PaperIDs)
		sort.Slice(clone.Evidence, func(i, j int) bool {
			if clone.Evidence[i].PaperID != clone.Evidence[j].PaperID {
				return clone.Evidence[i].PaperID < clone.Evidence[j].PaperID
			}
			if clone.Evidence[i].Section != clone.Evidence[j].Section {
				return clone.Evidence[i].Section < clone.Evidence[j].Section
			}
			return clone.Evidence[i].Quote < clone.Evidence[j].Quote
		})
		entities = append(entities, clone)
	}
	common.SortEntities(entities)

	relations := make([]common.Relationship, 0, len(a.weights))
	for key, weight := range a.weights {
		relations = append(relations, common.Relationship{
			SourceID: key.source,
			TargetID: key.target,
			Type:     common.RelationCooccurrence,
			Weight:   weight,
		})
	}
	common.SortRelationships(relations)

	return entities, relations
}

// Stats returns the number of papers merged and failed so far.
func (a *Accumulator) Stats() (processed, failed int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.processed, a.failed
}

func uniqueEntityIDs(entities []common.Entity) []string {
	seen := make(map[string]struct{}, len(entities))
	ids := make([]string, 0, len(entities))
	for _, entity := range entities {
		if _, ok := seen[entity.ID]; ok {
			continue
		}
		seen[entity.ID] = struct{}{}
		ids = append(ids, entity.ID)
	}
	return ids
}

func containsString(haystack []string, needle string) bool {
	for _, v := range haystack {
		if v == needle {
			return true
		}
	}
	return false
}
