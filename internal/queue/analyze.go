package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openlit/litgraph/internal/util"
	"github.com/openlit/litgraph/pkg/ai"
	"github.com/openlit/litgraph/pkg/analysis"
	"github.com/openlit/litgraph/pkg/logger"
	graphstorage "github.com/openlit/litgraph/pkg/store/pgx"
)

// ProcessAnalyzeMessage re-runs gap and centrality analysis over a
// project's stored graph and persists the new report.
func ProcessAnalyzeMessage(
	ctx context.Context,
	aiClient ai.GraphAIClient,
	conn *pgxpool.Pool,
	msg string,
) error {
	data := new(AnalyzeJobMsg)
	if err := json.Unmarshal([]byte(msg), data); err != nil {
		return err
	}
	if data.ProjectID == "" {
		return fmt.Errorf("analyze job missing project_id")
	}

	storage, err := graphstorage.NewGraphDBStorageWithConnection(ctx, conn, aiClient)
	if err != nil {
		return err
	}

	analyzer := analysis.NewAnalyzer(storage, analysis.Config{
		MinEdgeWeight: float64(util.GetEnvInt("ANALYSIS_MIN_EDGE_WEIGHT", analysis.DefaultMinEdgeWeight)),
	})

	report, err := analyzer.Run(ctx, data.ProjectID)
	if err != nil {
		return err
	}
	if err := storage.SaveAnalysis(ctx, report); err != nil {
		return err
	}

	logger.Info("[Queue] Analysis job finished",
		"project_id", data.ProjectID,
		"run_id", report.RunID,
		"clusters", len(report.Clusters),
		"gaps", len(report.Gaps))
	return nil
}
