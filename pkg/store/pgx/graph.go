package pgx

import (
	"context"
	"encoding/json"

	"github.com/openlit/litgraph/pkg/common"
)

// GetGraph loads the full merged graph of one project in canonical
// order.
func (s *GraphDBStorage) GetGraph(ctx context.Context, projectID string) (common.GraphSnapshot, error) {
	snapshot := common.GraphSnapshot{ProjectID: projectID}

	rows, err := s.conn.Query(ctx, `
		SELECT id, name, type, paper_ids, evidence
		FROM entities
		WHERE project_id = $1
		ORDER BY id`,
		projectID,
	)
	if err != nil {
		return snapshot, err
	}
	for rows.Next() {
		var entity common.Entity
		var typ string
		var evidence []byte
		if err := rows.Scan(&entity.ID, &entity.Name, &typ, &entity.PaperIDs, &evidence); err != nil {
			rows.Close()
			return snapshot, err
		}
		entity.Type = common.EntityType(typ)
		if len(evidence) > 0 {
			if err := json.Unmarshal(evidence, &entity.Evidence); err != nil {
				rows.Close()
				return snapshot, err
			}
		}
		snapshot.Entities = append(snapshot.Entities, entity)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return snapshot, err
	}

	rows, err = s.conn.Query(ctx, `
		SELECT source_id, target_id, type, weight, similarity
		FROM relationships
		WHERE project_id = $1
		ORDER BY source_id, target_id`,
		projectID,
	)
	if err != nil {
		return snapshot, err
	}
	defer rows.Close()
	for rows.Next() {
		var rel common.Relationship
		var typ string
		if err := rows.Scan(&rel.SourceID, &rel.TargetID, &typ, &rel.Weight, &rel.Similarity); err != nil {
			return snapshot, err
		}
		rel.Type = common.RelationType(typ)
		snapshot.Relationships = append(snapshot.Relationships, rel)
	}
	return snapshot, rows.Err()
}
