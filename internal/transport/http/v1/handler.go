// Package v1 provides the versioned HTTP handlers for the intake service.
package v1

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/intake/internal/domain"
	"github.com/xiaot623/gogo/intake/internal/service"
)

// Handler handles HTTP requests.
type Handler struct {
	service *service.Service
}

// NewHandler creates a new handler.
func NewHandler(service *service.Service) *Handler {
	return &Handler{
		service: service,
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	// Interview sessions
	e.POST("/v1/interview-sessions/:patient_id/start", h.StartSession)
	e.POST("/v1/interview-sessions/:patient_id/answer", h.SubmitAnswer)
	e.POST("/v1/interview-sessions/:patient_id/end", h.EndSession)
	e.GET("/v1/interview-sessions/:patient_id", h.GetSession)

	// Stored interview transcripts
	e.POST("/v1/interviews/:patient_id", h.SaveInterview)
	e.GET("/v1/interviews/:patient_id", h.GetInterview)
	e.DELETE("/v1/interviews/:patient_id", h.DeleteInterview)
	e.POST("/v1/interviews/:patient_id/run-advisor", h.RunAdvisorOnInterview)

	// Free-form files
	e.POST("/v1/files/write", h.WriteFile)
	e.GET("/v1/files/read", h.ReadFile)

	// Advisor
	e.POST("/v1/advisor/run", h.RunAdvisor)

	// Interview-id based agent runs, kept only to answer with 410
	e.POST("/v1/agents/interview/step", h.AgentInterviewStep)
	e.POST("/v1/agents/advisor/run", h.AgentAdvisorRun)
	e.POST("/v1/agents/crew/run", h.AgentCrewRun)

	// Patients
	e.POST("/v1/patients", h.CreatePatient)
	e.GET("/v1/patients", h.ListPatients)
	e.GET("/v1/patients/by-mrn/:mrn", h.GetPatientByMRN)
	e.GET("/v1/patients/:patient_id", h.GetPatient)
	e.PATCH("/v1/patients/:patient_id", h.UpdatePatient)
	e.DELETE("/v1/patients/:patient_id", h.DeletePatient)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}

// OperationStatus is the generic status body.
type OperationStatus struct {
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrDuplicateMRN):
		return http.StatusConflict
	case errors.Is(err, domain.ErrDeprecatedFlow):
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}

func fail(c echo.Context, err error) error {
	return c.JSON(errorStatus(err), map[string]string{"error": err.Error()})
}
