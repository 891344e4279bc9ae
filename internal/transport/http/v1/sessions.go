package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// StartSessionRequest is the optional body of a start call.
type StartSessionRequest struct {
	ChiefComplaint string                 `json:"chief_complaint"`
	Context        map[string]interface{} `json:"context"`
}

// AnswerRequest carries the patient's reply. The field must be present but may be empty.
type AnswerRequest struct {
	Answer *string `json:"answer"`
}

// StartSession starts or resumes an interview session.
// POST /v1/interview-sessions/:patient_id/start
func (h *Handler) StartSession(c echo.Context) error {
	ctx := c.Request().Context()

	var req StartSessionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	resp, err := h.service.StartSession(ctx, c.Param("patient_id"), req.ChiefComplaint, req.Context)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// SubmitAnswer records an answer and returns the next questions.
// POST /v1/interview-sessions/:patient_id/answer
func (h *Handler) SubmitAnswer(c echo.Context) error {
	ctx := c.Request().Context()

	var req AnswerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	if req.Answer == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "answer is required"})
	}

	resp, err := h.service.SubmitAnswer(ctx, c.Param("patient_id"), *req.Answer)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// EndSession ends the session and writes the transcript.
// POST /v1/interview-sessions/:patient_id/end
func (h *Handler) EndSession(c echo.Context) error {
	ctx := c.Request().Context()

	resp, err := h.service.EndSession(ctx, c.Param("patient_id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetSession returns the live session.
// GET /v1/interview-sessions/:patient_id
func (h *Handler) GetSession(c echo.Context) error {
	sess, err := h.service.GetSession(c.Request().Context(), c.Param("patient_id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, sess)
}
