package pgx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	pgxv5 "github.com/jackc/pgx/v5"

	"github.com/openlit/litgraph/pkg/common"
	"github.com/openlit/litgraph/pkg/logger"
)

// SaveAnalysis stores one analysis run. Readers always take the newest
// run, so earlier rows are pruned rather than updated.
func (s *GraphDBStorage) SaveAnalysis(ctx context.Context, report *common.AnalysisReport) error {
	clusters, err := json.Marshal(report.Clusters)
	if err != nil {
		return err
	}
	gaps, err := json.Marshal(report.Gaps)
	if err != nil {
		return err
	}
	centrality, err := json.Marshal(report.Centrality)
	if err != nil {
		return err
	}

	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO analysis_runs (project_id, run_id, clusters, gaps, centrality)
		VALUES ($1, $2, $3, $4, $5)`,
		report.ProjectID, report.RunID, clusters, gaps, centrality,
	)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		DELETE FROM analysis_runs
		WHERE project_id = $1 AND run_id <> $2`,
		report.ProjectID, report.RunID,
	)
	if err != nil {
		return err
	}

	logger.Info("[Store][SaveAnalysis] Saved analysis run",
		"project", report.ProjectID, "run", report.RunID)
	return tx.Commit(ctx)
}

// LatestAnalysis returns the newest stored run for the project.
func (s *GraphDBStorage) LatestAnalysis(ctx context.Context, projectID string) (*common.AnalysisReport, error) {
	report := &common.AnalysisReport{ProjectID: projectID}
	var clusters, gaps, centrality []byte

	err := s.conn.QueryRow(ctx, `
		SELECT run_id, clusters, gaps, centrality
		FROM analysis_runs
		WHERE project_id = $1
		ORDER BY created_at DESC
		LIMIT 1`,
		projectID,
	).Scan(&report.RunID, &clusters, &gaps, &centrality)
	if errors.Is(err, pgxv5.ErrNoRows) {
		return nil, fmt.Errorf("no analysis run for project %s", projectID)
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(clusters, &report.Clusters); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(gaps, &report.Gaps); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(centrality, &report.Centrality); err != nil {
		return nil, err
	}
	return report, nil
}
