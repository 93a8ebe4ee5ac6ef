// Package memory holds an in-memory GraphStorage used by tests and
// single-process runs without a database.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/openlit/litgraph/pkg/ai"
	"github.com/openlit/litgraph/pkg/common"
	"github.com/openlit/litgraph/pkg/store"
)

type paperRecord struct {
	paper    common.Paper
	importID string
}

type projectState struct {
	papers        map[string]paperRecord
	entities      map[string]common.Entity
	entityVectors map[string][]float32
	relations     map[[2]string]common.Relationship
	embeddings    map[string]common.EmbeddingVector
	analysis      *common.AnalysisReport
}

// GraphMemStorage implements store.GraphStorage on process-local maps.
// The optional AI client powers entity embeddings for semantic pair
// lookup; without one, SimilarEntityPairs finds nothing.
type GraphMemStorage struct {
	mu       sync.Mutex
	aiClient ai.GraphAIClient
	projects map[string]*projectState
}

func NewGraphMemStorage(aiClient ai.GraphAIClient) *GraphMemStorage {
	return &GraphMemStorage{
		aiClient: aiClient,
		projects: make(map[string]*projectState),
	}
}

func (s *GraphMemStorage) project(projectID string) *projectState {
	p, ok := s.projects[projectID]
	if !ok {
		p = &projectState{
			papers:        make(map[string]paperRecord),
			entities:      make(map[string]common.Entity),
			entityVectors: make(map[string][]float32),
			relations:     make(map[[2]string]common.Relationship),
			embeddings:    make(map[string]common.EmbeddingVector),
		}
		s.projects[projectID] = p
	}
	return p
}

func (s *GraphMemStorage) SavePapers(ctx context.Context, projectID, importID string, papers []common.Paper) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.project(projectID)
	for _, paper := range papers {
		if paper.ID == "" {
			return fmt.Errorf("paper without an ID")
		}
		p.papers[paper.ID] = paperRecord{paper: paper, importID: importID}
	}
	return nil
}

func (s *GraphMemStorage) SaveEntities(ctx context.Context, projectID string, entities []common.Entity) error {
	var vectors [][]float32
	if s.aiClient != nil && len(entities) > 0 {
		inputs := make([][]byte, len(entities))
		for i, entity := range entities {
			inputs[i] = []byte(store.EntityEmbeddingText(entity))
		}
		var err error
		vectors, err = store.GenerateEmbeddings(ctx, s.aiClient, inputs)
		if err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.project(projectID)
	for i, entity := range entities {
		if entity.ID == "" {
			return fmt.Errorf("entity without an ID")
		}
		p.entities[entity.ID] = mergeEntity(p.entities[entity.ID], entity)
		if vectors != nil {
			p.entityVectors[entity.ID] = vectors[i]
		}
	}
	return nil
}

func mergeEntity(existing, incoming common.Entity) common.Entity {
	if existing.ID == "" {
		return incoming
	}

	seen := make(map[string]struct{}, len(existing.PaperIDs))
	for _, id := range existing.PaperIDs {
		seen[id] = struct{}{}
	}
	for _, id := range incoming.PaperIDs {
		if _, ok := seen[id]; !ok {
			existing.PaperIDs = append(existing.PaperIDs, id)
		}
	}
	for _, ev := range incoming.Evidence {
		if !containsEvidence(existing.Evidence, ev) {
			existing.Evidence = append(existing.Evidence, ev)
		}
	}
	return existing
}

func containsEvidence(list []common.Evidence, ev common.Evidence) bool {
	for _, e := range list {
		if e == ev {
			return true
		}
	}
	return false
}

func (s *GraphMemStorage) UpsertRelationships(ctx context.Context, projectID string, relations []common.Relationship) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.project(projectID)
	for _, rel := range relations {
		source, target := common.CanonicalPair(rel.SourceID, rel.TargetID)
		key := [2]string{source, target}

		existing, ok := p.relations[key]
		if !ok {
			rel.SourceID, rel.TargetID = source, target
			p.relations[key] = rel
			continue
		}
		existing.Weight += rel.Weight
		if rel.Similarity > existing.Similarity {
			existing.Similarity = rel.Similarity
		}
		p.relations[key] = existing
	}
	return nil
}

func (s *GraphMemStorage) SaveEmbeddings(ctx context.Context, projectID string, vectors []common.EmbeddingVector) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.project(projectID)

	// Replace each affected paper's vectors wholesale: chunk IDs are
	// fresh per run, so stale chunks would otherwise pile up.
	replaced := make(map[string]struct{}, len(vectors))
	for _, vector := range vectors {
		replaced[vector.PaperID] = struct{}{}
	}
	for chunkID, vector := range p.embeddings {
		if _, ok := replaced[vector.PaperID]; ok {
			delete(p.embeddings, chunkID)
		}
	}

	for _, vector := range vectors {
		p.embeddings[vector.ChunkID] = vector
	}
	return nil
}

func (s *GraphMemStorage) HasEmbeddings(ctx context.Context, projectID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.project(projectID).embeddings) > 0, nil
}

func (s *GraphMemStorage) GetGraph(ctx context.Context, projectID string) (common.GraphSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.project(projectID)
	snapshot := common.GraphSnapshot{ProjectID: projectID}

	for _, entity := range p.entities {
		snapshot.Entities = append(snapshot.Entities, entity)
	}
	for _, rel := range p.relations {
		snapshot.Relationships = append(snapshot.Relationships, rel)
	}
	common.SortEntities(snapshot.Entities)
	common.SortRelationships(snapshot.Relationships)
	return snapshot, nil
}

func (s *GraphMemStorage) SimilarEntityPairs(ctx context.Context, projectID string, minSimilarity float64, limit int) ([]common.Relationship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.project(projectID)
	ids := make([]string, 0, len(p.entityVectors))
	for id := range p.entityVectors {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var pairs []common.Relationship
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			similarity := cosine(p.entityVectors[ids[i]], p.entityVectors[ids[j]])
			if similarity < minSimilarity {
				continue
			}
			pairs = append(pairs, common.Relationship{
				SourceID:   ids[i],
				TargetID:   ids[j],
				Type:       common.RelationSemantic,
				Weight:     1,
				Similarity: similarity,
			})
		}
	}

	sort.Slice(pairs, func(a, b int) bool { return pairs[a].Similarity > pairs[b].Similarity })
	if limit > 0 && len(pairs) > limit {
		pairs = pairs[:limit]
	}
	return pairs, nil
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func (s *GraphMemStorage) SaveAnalysis(ctx context.Context, report *common.AnalysisReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *report
	s.project(report.ProjectID).analysis = &clone
	return nil
}

func (s *GraphMemStorage) LatestAnalysis(ctx context.Context, projectID string) (*common.AnalysisReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	report := s.project(projectID).analysis
	if report == nil {
		return nil, fmt.Errorf("no analysis run for project %s", projectID)
	}
	clone := *report
	return &clone, nil
}

func (s *GraphMemStorage) RollbackImport(ctx context.Context, projectID, importID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.project(projectID)

	removed := make(map[string]struct{})
	for id, record := range p.papers {
		if record.importID == importID {
			removed[id] = struct{}{}
			delete(p.papers, id)
		}
	}
	if len(removed) == 0 {
		return nil
	}

	for id, entity := range p.entities {
		kept := entity.PaperIDs[:0]
		for _, paperID := range entity.PaperIDs {
			if _, gone := removed[paperID]; !gone {
				kept = append(kept, paperID)
			}
		}
		if len(kept) == 0 {
			delete(p.entities, id)
			delete(p.entityVectors, id)
			continue
		}
		entity.PaperIDs = kept

		evidence := entity.Evidence[:0]
		for _, ev := range entity.Evidence {
			if _, gone := removed[ev.PaperID]; !gone {
				evidence = append(evidence, ev)
			}
		}
		entity.Evidence = evidence
		p.entities[id] = entity
	}

	for key := range p.relations {
		if _, okA := p.entities[key[0]]; !okA {
			delete(p.relations, key)
			continue
		}
		if _, okB := p.entities[key[1]]; !okB {
			delete(p.relations, key)
		}
	}

	for chunkID, vector := range p.embeddings {
		if _, gone := removed[vector.PaperID]; gone {
			delete(p.embeddings, chunkID)
		}
	}
	return nil
}
