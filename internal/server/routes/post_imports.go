package routes

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/openlit/litgraph/internal/queue"
	"github.com/openlit/litgraph/internal/server/middleware"
	graphstorage "github.com/openlit/litgraph/pkg/store/pgx"
)

// StartImportHandler queues one import job. The export itself must
// already be uploaded; the job references it by key.
func StartImportHandler(c echo.Context) error {
	projectID := c.Param("id")
	if projectID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "missing project id"})
	}

	type importRequest struct {
		ExportKey              string `json:"export_key" validate:"required"`
		PerSectionCooccurrence bool   `json:"per_section_cooccurrence"`
	}

	req := new(importRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	importID, err := gonanoid.New()
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	msg := queue.ImportJobMsg{
		Message:                "Import requested",
		ProjectID:              projectID,
		ImportID:               importID,
		ExportKey:              req.ExportKey,
		PerSectionCooccurrence: req.PerSectionCooccurrence,
	}
	msgBytes, err := json.Marshal(msg)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	app := c.(*middleware.AppContext).App
	if err := queue.PublishFIFO(app.Queue, queue.ImportQueue, msgBytes); err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusAccepted, map[string]string{
		"project_id": projectID,
		"import_id":  importID,
	})
}

// RollbackImportHandler removes everything a finished or stuck import
// wrote.
func RollbackImportHandler(c echo.Context) error {
	projectID := c.Param("id")
	importID := c.Param("import_id")
	if projectID == "" || importID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "missing project or import id"})
	}

	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()

	storage, err := graphstorage.NewGraphDBStorageWithConnection(ctx, app.DBConn, app.AiClient)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	if err := storage.RollbackImport(ctx, projectID, importID); err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	return c.NoContent(http.StatusNoContent)
}

// StartAnalysisHandler queues a standalone re-analysis of the project
// graph.
func StartAnalysisHandler(c echo.Context) error {
	projectID := c.Param("id")
	if projectID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "missing project id"})
	}

	msg := queue.AnalyzeJobMsg{
		Message:   "Analysis requested",
		ProjectID: projectID,
	}
	msgBytes, err := json.Marshal(msg)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	app := c.(*middleware.AppContext).App
	if err := queue.PublishFIFO(app.Queue, queue.AnalyzeQueue, msgBytes); err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusAccepted, map[string]string{"project_id": projectID})
}
