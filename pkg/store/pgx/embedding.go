package pgx

import (
	"context"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/openlit/litgraph/pkg/common"
	"github.com/openlit/litgraph/pkg/logger"
	"github.com/openlit/litgraph/pkg/store"
)

const embeddingChunk = 500

const upsertEmbeddingSQL = `
INSERT INTO embeddings (project_id, chunk_id, paper_id, embedding)
VALUES ($1, $2, $3, $4)
ON CONFLICT (project_id, chunk_id) DO UPDATE SET
	paper_id = EXCLUDED.paper_id,
	embedding = EXCLUDED.embedding
`

// SaveEmbeddings stores chunk vectors. Chunk IDs are fresh per run, so
// each affected paper's previous vectors are dropped first and the new
// set replaces them wholesale.
func (s *GraphDBStorage) SaveEmbeddings(ctx context.Context, projectID string, vectors []common.EmbeddingVector) error {
	if len(vectors) == 0 {
		return nil
	}

	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	paperIDs := store.DedupeStrings(paperIDsOf(vectors))
	if _, err := s.conn.Exec(ctx,
		`DELETE FROM embeddings WHERE project_id = $1 AND paper_id = ANY($2)`,
		projectID, paperIDs,
	); err != nil {
		return err
	}

	return store.ChunkRange(len(vectors), embeddingChunk, func(start, end int) error {
		batch := &pgxv5.Batch{}
		for _, vector := range vectors[start:end] {
			batch.Queue(upsertEmbeddingSQL,
				projectID, vector.ChunkID, vector.PaperID, pgvector.NewVector(vector.Vector),
			)
		}

		logger.Debug("[Store][SaveEmbeddings] Saving chunk", "embeddings", end-start)
		return s.conn.SendBatch(ctx, batch).Close()
	})
}

func paperIDsOf(vectors []common.EmbeddingVector) []string {
	ids := make([]string, len(vectors))
	for i, vector := range vectors {
		ids[i] = vector.PaperID
	}
	return ids
}

func (s *GraphDBStorage) HasEmbeddings(ctx context.Context, projectID string) (bool, error) {
	var exists bool
	err := s.conn.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM embeddings WHERE project_id = $1)`,
		projectID,
	).Scan(&exists)
	return exists, err
}
