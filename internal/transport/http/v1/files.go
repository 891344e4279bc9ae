package v1

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// FileWriteRequest carries a free-form text file.
type FileWriteRequest struct {
	RelativePath string  `json:"relative_path"`
	Content      *string `json:"content"`
}

// FileReadResponse is the body returned by ReadFile.
type FileReadResponse struct {
	RelativePath string `json:"relative_path"`
	Content      string `json:"content"`
}

// WriteFile writes a text file under the OneDrive-synced base or local storage.
// POST /v1/files/write?use_onedrive=true
func (h *Handler) WriteFile(c echo.Context) error {
	useOneDrive, err := useOneDriveParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "use_onedrive must be a boolean"})
	}

	var req FileWriteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Content == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "content is required"})
	}

	rel, err := h.service.WriteFile(c.Request().Context(), req.RelativePath, *req.Content, useOneDrive)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, OperationStatus{Status: "ok", Detail: "wrote:" + rel})
}

// ReadFile reads a text file.
// GET /v1/files/read?relative_path=...&use_onedrive=true
func (h *Handler) ReadFile(c echo.Context) error {
	useOneDrive, err := useOneDriveParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "use_onedrive must be a boolean"})
	}

	relPath := c.QueryParam("relative_path")
	content, err := h.service.ReadFile(c.Request().Context(), relPath, useOneDrive)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, FileReadResponse{RelativePath: relPath, Content: content})
}

// useOneDriveParam defaults to true when the parameter is absent.
func useOneDriveParam(c echo.Context) (bool, error) {
	raw := c.QueryParam("use_onedrive")
	if raw == "" {
		return true, nil
	}
	return strconv.ParseBool(raw)
}
