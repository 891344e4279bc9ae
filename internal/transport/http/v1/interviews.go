package v1

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/intake/internal/service"
)

// SaveInterviewRequest carries transcript text to store.
type SaveInterviewRequest struct {
	Content *string `json:"content"`
}

// SaveInterview stores interview text for a patient.
// POST /v1/interviews/:patient_id
func (h *Handler) SaveInterview(c echo.Context) error {
	ctx := c.Request().Context()

	var req SaveInterviewRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Content == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "content is required"})
	}

	ref, err := h.service.SaveTranscript(ctx, c.Param("patient_id"), *req.Content)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, OperationStatus{Status: "ok", Detail: "wrote:" + ref})
}

// GetInterview returns stored interview text.
// GET /v1/interviews/:patient_id
func (h *Handler) GetInterview(c echo.Context) error {
	patientID := c.Param("patient_id")

	text, err := h.service.GetTranscript(c.Request().Context(), patientID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"patient_id": patientID,
		"content":    text,
	})
}

// DeleteInterview removes stored interview text.
// DELETE /v1/interviews/:patient_id
func (h *Handler) DeleteInterview(c echo.Context) error {
	if err := h.service.DeleteTranscript(c.Request().Context(), c.Param("patient_id")); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, OperationStatus{Status: "ok", Detail: "deleted"})
}

// RunAdvisorOnInterview runs the advisor over the stored transcript.
// POST /v1/interviews/:patient_id/run-advisor?max_items=3
func (h *Handler) RunAdvisorOnInterview(c echo.Context) error {
	maxItems := service.DefaultAdvisorItems
	if raw := c.QueryParam("max_items"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "max_items must be an integer"})
		}
		maxItems = n
	}

	res, err := h.service.RunAdvisorOnTranscript(c.Request().Context(), c.Param("patient_id"), maxItems)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, res)
}
