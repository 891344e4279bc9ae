package v1

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/intake/internal/service"
)

// AdvisorRunRequest asks for suggestions on free interview text.
type AdvisorRunRequest struct {
	PatientID string `json:"patient_id"`
	Text      string `json:"text"`
	MaxItems  *int   `json:"max_items,omitempty"`
}

// RunAdvisor runs the advisor over the posted text.
// POST /v1/advisor/run
func (h *Handler) RunAdvisor(c echo.Context) error {
	ctx := c.Request().Context()

	var req AdvisorRunRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if strings.TrimSpace(req.PatientID) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "patient_id is required"})
	}

	maxItems := service.DefaultAdvisorItems
	if req.MaxItems != nil {
		maxItems = *req.MaxItems
	}

	res, err := h.service.RunAdvisorOnText(ctx, req.PatientID, req.Text, maxItems)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// AgentInterviewStep answers the retired interview-id step with 410.
// POST /v1/agents/interview/step?interview_id=...
func (h *Handler) AgentInterviewStep(c echo.Context) error {
	return fail(c, h.service.RunInterviewStep(c.Request().Context(), c.QueryParam("interview_id")))
}

// AgentAdvisorRun answers the retired interview-id advisor run with 410.
// POST /v1/agents/advisor/run?interview_id=...
func (h *Handler) AgentAdvisorRun(c echo.Context) error {
	return fail(c, h.service.RunAdvisor(c.Request().Context(), c.QueryParam("interview_id"), service.DefaultAdvisorItems))
}

// AgentCrewRun answers the retired crew workflow with 410.
// POST /v1/agents/crew/run?interview_id=...
func (h *Handler) AgentCrewRun(c echo.Context) error {
	return fail(c, h.service.RunCrew(c.Request().Context(), c.QueryParam("interview_id"), service.DefaultAdvisorItems))
}
