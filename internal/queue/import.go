package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/openlit/litgraph/internal/util"
	"github.com/openlit/litgraph/pkg/ai"
	"github.com/openlit/litgraph/pkg/analysis"
	"github.com/openlit/litgraph/pkg/embed"
	"github.com/openlit/litgraph/pkg/enrich"
	"github.com/openlit/litgraph/pkg/graph"
	"github.com/openlit/litgraph/pkg/ingest"
	"github.com/openlit/litgraph/pkg/loader"
	"github.com/openlit/litgraph/pkg/logger"
	graphstorage "github.com/openlit/litgraph/pkg/store/pgx"
)

// ProcessImportMessage runs one full import: parse the export, extract
// entities over every paper, then run the enrichment chain. A failure
// in enrichment rolls the import's persisted data back before the error
// is returned for redelivery.
func ProcessImportMessage(
	ctx context.Context,
	docLoader loader.DocumentLoader,
	aiClient ai.GraphAIClient,
	conn *pgxpool.Pool,
	msg string,
) error {
	data := new(ImportJobMsg)
	if err := json.Unmarshal([]byte(msg), data); err != nil {
		return err
	}
	if data.ProjectID == "" || data.ExportKey == "" {
		return fmt.Errorf("import job missing project_id or export_key")
	}
	if data.ImportID == "" {
		importID, err := gonanoid.New()
		if err != nil {
			return err
		}
		data.ImportID = importID
	}

	exportData, err := docLoader.LoadDocument(ctx, data.ExportKey)
	if err != nil {
		return fmt.Errorf("failed to load export %s: %w", data.ExportKey, err)
	}

	papers, parseErrs := ingest.ParseExport(exportData)
	for _, parseErr := range parseErrs {
		logger.Warn("[Queue] Skipping malformed export entry",
			"project_id", data.ProjectID, "err", parseErr)
	}
	if len(papers) == 0 {
		return fmt.Errorf("export %s contains no usable papers", data.ExportKey)
	}

	logger.Info("[Queue] Starting import",
		"project_id", data.ProjectID,
		"import_id", data.ImportID,
		"papers", len(papers),
		"skipped_entries", len(parseErrs))

	storage, err := graphstorage.NewGraphDBStorageWithConnection(ctx, conn, aiClient)
	if err != nil {
		return err
	}

	pipeline := graph.NewPipeline(aiClient, docLoader, graph.PipelineConfig{
		Concurrency:            util.GetEnvInt("PIPELINE_CONCURRENCY", graph.DefaultConcurrency),
		BatchSize:              util.GetEnvInt("PIPELINE_BATCH_SIZE", graph.DefaultBatchSize),
		LocalWorkers:           util.GetEnvInt("PIPELINE_LOCAL_WORKERS", graph.DefaultLocalWorkers),
		MaxRetries:             util.GetEnvInt("PIPELINE_MAX_RETRIES", graph.DefaultMaxRetries),
		PerSectionCooccurrence: data.PerSectionCooccurrence,
	})

	result, err := pipeline.Run(ctx, data.ProjectID, papers)
	if err != nil {
		return err
	}
	if result.Processed == 0 {
		return fmt.Errorf("no papers could be processed for project %s", data.ProjectID)
	}

	scheduler := enrich.NewScheduler(
		storage,
		embed.NewEmbedder(aiClient, embed.EmbedderConfig{
			BatchSize: util.GetEnvInt("EMBED_BATCH_SIZE", embed.DefaultBatchSize),
		}),
		analysis.NewAnalyzer(storage, analysis.Config{
			MinEdgeWeight: float64(util.GetEnvInt("ANALYSIS_MIN_EDGE_WEIGHT", analysis.DefaultMinEdgeWeight)),
		}),
		enrich.Config{},
	)

	report, err := scheduler.Run(ctx, data.ProjectID, data.ImportID, result)
	if err != nil {
		logger.Error("[Queue] Enrichment failed, rolling back import",
			"project_id", data.ProjectID,
			"import_id", data.ImportID,
			"processed", result.Processed,
			"failed", result.Failed,
			"err", err)

		rollbackCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if rbErr := storage.RollbackImport(rollbackCtx, data.ProjectID, data.ImportID); rbErr != nil {
			logger.Error("[Queue] Rollback failed",
				"project_id", data.ProjectID, "import_id", data.ImportID, "err", rbErr)
		}
		return fmt.Errorf("enrichment failed after %d papers processed: %w", result.Processed, err)
	}

	logger.Info("[Queue] Import finished",
		"project_id", data.ProjectID,
		"import_id", data.ImportID,
		"processed", result.Processed,
		"failed", result.Failed,
		"entities", len(result.Entities),
		"clusters", len(report.Clusters),
		"gaps", len(report.Gaps))
	return nil
}
