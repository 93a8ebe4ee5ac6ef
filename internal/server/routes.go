package server

import (
	"github.com/openlit/litgraph/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api")

	// Graph routes
	apiRoutes.GET("/projects/:id/graph", routes.GetGraphHandler)
	apiRoutes.GET("/projects/:id/analysis", routes.GetAnalysisHandler)
	apiRoutes.POST("/projects/:id/analysis/evaluate", routes.EvaluateGapsHandler)
	apiRoutes.POST("/projects/:id/analyze", routes.StartAnalysisHandler)

	// Import routes
	apiRoutes.POST("/projects/:id/imports", routes.StartImportHandler)
	apiRoutes.DELETE("/projects/:id/imports/:import_id", routes.RollbackImportHandler)

	// Document routes
	apiRoutes.POST("/projects/:id/documents", routes.UploadDocumentHandler)
	apiRoutes.DELETE("/projects/:id/documents", routes.DeleteDocumentHandler)
}
