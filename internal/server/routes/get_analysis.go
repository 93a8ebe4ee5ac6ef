package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/openlit/litgraph/internal/server/middleware"
	"github.com/openlit/litgraph/pkg/analysis"
	graphstorage "github.com/openlit/litgraph/pkg/store/pgx"
)

func GetAnalysisHandler(c echo.Context) error {
	projectID := c.Param("id")
	if projectID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "missing project id"})
	}

	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()

	storage, err := graphstorage.NewGraphDBStorageWithConnection(ctx, app.DBConn, app.AiClient)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	report, err := storage.LatestAnalysis(ctx, projectID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, report)
}

// EvaluateGapsHandler scores the latest analysis run against a
// caller-provided ground-truth gap set.
func EvaluateGapsHandler(c echo.Context) error {
	projectID := c.Param("id")
	if projectID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "missing project id"})
	}

	type evaluateRequest struct {
		Truth []analysis.GroundTruthGap `json:"truth" validate:"required,min=1"`
	}

	req := new(evaluateRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()

	storage, err := graphstorage.NewGraphDBStorageWithConnection(ctx, app.DBConn, app.AiClient)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	report, err := storage.LatestAnalysis(ctx, projectID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, analysis.EvaluateGaps(report, req.Truth))
}
