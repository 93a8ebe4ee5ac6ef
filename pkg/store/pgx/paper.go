package pgx

import (
	"context"
	"encoding/json"
	"fmt"

	pgxv5 "github.com/jackc/pgx/v5"

	"github.com/openlit/litgraph/pkg/common"
	"github.com/openlit/litgraph/pkg/logger"
	"github.com/openlit/litgraph/pkg/store"
)

const paperChunk = 250

const upsertPaperSQL = `
INSERT INTO papers (project_id, id, import_id, title, authors, abstract, venue, year, doi, document_key, entity_ids)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (project_id, id) DO UPDATE SET
	import_id = EXCLUDED.import_id,
	title = EXCLUDED.title,
	authors = EXCLUDED.authors,
	abstract = EXCLUDED.abstract,
	venue = EXCLUDED.venue,
	year = EXCLUDED.year,
	doi = EXCLUDED.doi,
	document_key = EXCLUDED.document_key,
	entity_ids = EXCLUDED.entity_ids
`

// SavePapers persists the papers of one import in chunks. Full text is
// not stored; only metadata and the entity back-links.
func (s *GraphDBStorage) SavePapers(ctx context.Context, projectID, importID string, papers []common.Paper) error {
	if len(papers) == 0 {
		return nil
	}

	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	return store.ChunkRange(len(papers), paperChunk, func(start, end int) error {
		batch := &pgxv5.Batch{}
		for _, paper := range papers[start:end] {
			if paper.ID == "" {
				return fmt.Errorf("paper without an ID")
			}
			authors, err := json.Marshal(paper.Authors)
			if err != nil {
				return err
			}
			batch.Queue(upsertPaperSQL,
				projectID, paper.ID, importID, paper.Title, authors,
				paper.Abstract, paper.Venue, paper.Year, paper.DOI,
				paper.DocumentKey, paper.EntityIDs,
			)
		}

		logger.Debug("[Store][SavePapers] Saving chunk", "papers", end-start)
		return s.conn.SendBatch(ctx, batch).Close()
	})
}

// RollbackImport removes every paper of one import, prunes their
// references from surviving entities, and deletes entities, edges and
// embeddings nothing references anymore. Runs in one transaction.
func (s *GraphDBStorage) RollbackImport(ctx context.Context, projectID, importID string) error {
	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx,
		`DELETE FROM papers WHERE project_id = $1 AND import_id = $2 RETURNING id`,
		projectID, importID,
	)
	if err != nil {
		return err
	}
	var removed []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		removed = append(removed, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}
	if len(removed) == 0 {
		return tx.Commit(ctx)
	}

	_, err = tx.Exec(ctx, `
		UPDATE entities SET
			paper_ids = ARRAY(SELECT pid FROM unnest(paper_ids) pid WHERE NOT pid = ANY($2)),
			evidence = (
				SELECT COALESCE(jsonb_agg(ev), '[]'::jsonb)
				FROM jsonb_array_elements(evidence) ev
				WHERE NOT (ev->>'paper_id' = ANY($2))
			)
		WHERE project_id = $1 AND paper_ids && $2`,
		projectID, removed,
	)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx,
		`DELETE FROM entities WHERE project_id = $1 AND cardinality(paper_ids) = 0`,
		projectID,
	)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		DELETE FROM relationships r
		WHERE r.project_id = $1 AND (
			NOT EXISTS (SELECT 1 FROM entities e WHERE e.project_id = r.project_id AND e.id = r.source_id)
			OR NOT EXISTS (SELECT 1 FROM entities e WHERE e.project_id = r.project_id AND e.id = r.target_id)
		)`,
		projectID,
	)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx,
		`DELETE FROM embeddings WHERE project_id = $1 AND paper_id = ANY($2)`,
		projectID, removed,
	)
	if err != nil {
		return err
	}

	logger.Info("[Store][RollbackImport] Rolled back import",
		"project", projectID, "import", importID, "papers", len(removed))
	return tx.Commit(ctx)
}
