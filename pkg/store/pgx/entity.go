package pgx

import (
	"context"
	"encoding/json"
	"fmt"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/openlit/litgraph/pkg/common"
	"github.com/openlit/litgraph/pkg/logger"
	"github.com/openlit/litgraph/pkg/store"
)

const entityChunk = 250

const upsertEntitySQL = `
INSERT INTO entities (project_id, id, name, type, paper_ids, evidence, embedding)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (project_id, id) DO UPDATE SET
	name = EXCLUDED.name,
	paper_ids = ARRAY(SELECT DISTINCT pid FROM unnest(entities.paper_ids || EXCLUDED.paper_ids) pid),
	evidence = (
		SELECT COALESCE(jsonb_agg(DISTINCT ev), '[]'::jsonb)
		FROM jsonb_array_elements(entities.evidence || EXCLUDED.evidence) ev
	),
	embedding = COALESCE(EXCLUDED.embedding, entities.embedding)
`

// SaveEntities bulk-upserts entities in chunks, generating one
// embedding per entity from its name and evidence. Re-saving an entity
// merges paper references and appends evidence.
func (s *GraphDBStorage) SaveEntities(ctx context.Context, projectID string, entities []common.Entity) error {
	if len(entities) == 0 {
		return nil
	}

	return store.ChunkRange(len(entities), entityChunk, func(start, end int) error {
		part := entities[start:end]

		var vectors [][]float32
		if s.aiClient != nil {
			inputs := make([][]byte, len(part))
			for i, entity := range part {
				inputs[i] = []byte(store.EntityEmbeddingText(entity))
			}
			logger.Debug("[Store][SaveEntities] Generating entity embeddings", "count", len(inputs))
			var err error
			vectors, err = store.GenerateEmbeddings(ctx, s.aiClient, inputs)
			if err != nil {
				return err
			}
		}

		batch := &pgxv5.Batch{}
		for i, entity := range part {
			if entity.ID == "" {
				return fmt.Errorf("entity without an ID")
			}
			evidence, err := json.Marshal(entity.Evidence)
			if err != nil {
				return err
			}

			var embedding any
			if vectors != nil {
				embedding = pgvector.NewVector(vectors[i])
			}
			batch.Queue(upsertEntitySQL,
				projectID, entity.ID, entity.Name, string(entity.Type),
				entity.PaperIDs, evidence, embedding,
			)
		}

		logger.Debug("[Store][SaveEntities] Bulk upserting entities", "count", len(part))

		s.dbLock.Lock()
		defer s.dbLock.Unlock()
		return s.conn.SendBatch(ctx, batch).Close()
	})
}

// SimilarEntityPairs finds entity pairs whose embeddings exceed the
// cosine similarity floor, ranked most similar first.
func (s *GraphDBStorage) SimilarEntityPairs(ctx context.Context, projectID string, minSimilarity float64, limit int) ([]common.Relationship, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT a.id, b.id, 1 - (a.embedding <=> b.embedding) AS similarity
		FROM entities a
		JOIN entities b ON a.project_id = b.project_id AND a.id < b.id
		WHERE a.project_id = $1
			AND a.embedding IS NOT NULL
			AND b.embedding IS NOT NULL
			AND 1 - (a.embedding <=> b.embedding) >= $2
		ORDER BY similarity DESC, a.id, b.id
		LIMIT $3`,
		projectID, minSimilarity, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pairs []common.Relationship
	for rows.Next() {
		var rel common.Relationship
		if err := rows.Scan(&rel.SourceID, &rel.TargetID, &rel.Similarity); err != nil {
			return nil, err
		}
		rel.Type = common.RelationSemantic
		rel.Weight = 1
		pairs = append(pairs, rel)
	}
	return pairs, rows.Err()
}
