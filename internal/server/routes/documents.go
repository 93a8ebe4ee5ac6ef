package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/openlit/litgraph/internal/server/middleware"
	"github.com/openlit/litgraph/internal/storage"
	"github.com/openlit/litgraph/pkg/logger"
)

type uploadDocumentsResponse struct {
	Message string            `json:"message"`
	Keys    map[string]string `json:"keys,omitempty"`
}

// UploadDocumentHandler stores uploaded exports and full-text documents
// under the project prefix. The returned keys are what import jobs and
// paper metadata reference.
func UploadDocumentHandler(c echo.Context) error {
	projectID := c.Param("id")
	if projectID == "" {
		return c.JSON(http.StatusBadRequest, uploadDocumentsResponse{Message: "Missing project id"})
	}

	form, err := c.MultipartForm()
	if err != nil {
		return c.JSON(http.StatusBadRequest, uploadDocumentsResponse{Message: "Invalid request body"})
	}
	uploads := form.File["files"]
	if len(uploads) == 0 {
		return c.JSON(http.StatusBadRequest, uploadDocumentsResponse{Message: "No files provided"})
	}

	ctx := c.Request().Context()
	s3Client := c.(*middleware.AppContext).App.S3

	keys := make(map[string]string, len(uploads))
	for _, file := range uploads {
		src, err := file.Open()
		if err != nil {
			return c.JSON(http.StatusBadRequest, uploadDocumentsResponse{Message: "Invalid request body"})
		}
		defer src.Close()

		key, err := storage.PutFile(ctx, s3Client, projectID, file.Filename, src)
		if err != nil {
			logger.Error("Failed to upload file", "project_id", projectID, "file", file.Filename, "err", err)
			return c.JSON(http.StatusInternalServerError, uploadDocumentsResponse{Message: "Internal server error"})
		}
		keys[file.Filename] = key
	}

	return c.JSON(http.StatusCreated, uploadDocumentsResponse{
		Message: "Files uploaded",
		Keys:    keys,
	})
}

// DeleteDocumentHandler removes a stored document by key.
func DeleteDocumentHandler(c echo.Context) error {
	projectID := c.Param("id")
	if projectID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "missing project id"})
	}

	type deleteRequest struct {
		Key string `json:"key" validate:"required"`
	}
	req := new(deleteRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	ctx := c.Request().Context()
	s3Client := c.(*middleware.AppContext).App.S3

	if err := storage.DeleteFile(ctx, s3Client, req.Key); err != nil {
		logger.Error("Failed to delete file", "project_id", projectID, "key", req.Key, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}

	return c.NoContent(http.StatusNoContent)
}
