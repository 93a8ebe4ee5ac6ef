package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/openlit/litgraph/internal/server/middleware"
	graphstorage "github.com/openlit/litgraph/pkg/store/pgx"
)

func GetGraphHandler(c echo.Context) error {
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

	snapshot, err := storage.GetGraph(ctx, projectID)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, snapshot)
}
