package pgx

import (
	"context"

	pgxv5 "github.com/jackc/pgx/v5"

	"github.com/openlit/litgraph/pkg/common"
	"github.com/openlit/litgraph/pkg/logger"
	"github.com/openlit/litgraph/pkg/store"
)

const relationshipChunk = 500

const upsertRelationshipSQL = `
INSERT INTO relationships (project_id, source_id, target_id, type, weight, similarity)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (project_id, source_id, target_id) DO UPDATE SET
	weight = relationships.weight + EXCLUDED.weight,
	similarity = GREATEST(relationships.similarity, EXCLUDED.similarity)
`

// UpsertRelationships accumulates edge weight in chunks. When a chunk's
// batch fails it is replayed row by row, so one bad edge costs only
// itself.
func (s *GraphDBStorage) UpsertRelationships(ctx context.Context, projectID string, relations []common.Relationship) error {
	if len(relations) == 0 {
		return nil
	}

	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	return store.ChunkRange(len(relations), relationshipChunk, func(start, end int) error {
		part := relations[start:end]

		batch := &pgxv5.Batch{}
		for _, rel := range part {
			source, target := common.CanonicalPair(rel.SourceID, rel.TargetID)
			batch.Queue(upsertRelationshipSQL,
				projectID, source, target, string(rel.Type), rel.Weight, rel.Similarity,
			)
		}

		logger.Debug("[Store][UpsertRelationships] Upserting chunk", "relationships", len(part))
		if err := s.conn.SendBatch(ctx, batch).Close(); err == nil {
			return nil
		}

		logger.Warn("[Store][UpsertRelationships] Batch failed, replaying row by row", "relationships", len(part))
		var lastErr error
		for _, rel := range part {
			source, target := common.CanonicalPair(rel.SourceID, rel.TargetID)
			_, err := s.conn.Exec(ctx, upsertRelationshipSQL,
				projectID, source, target, string(rel.Type), rel.Weight, rel.Similarity,
			)
			if err != nil {
				logger.Error("[Store][UpsertRelationships] Failed to upsert edge",
					"source", source, "target", target, "error", err)
				lastErr = err
			}
		}
		return lastErr
	})
}
