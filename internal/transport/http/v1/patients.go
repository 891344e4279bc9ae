package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/intake/internal/domain"
)

// CreatePatient registers a patient.
// POST /v1/patients
func (h *Handler) CreatePatient(c echo.Context) error {
	var req domain.PatientCreate
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	p, err := h.service.CreatePatient(c.Request().Context(), req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

// ListPatients lists all patients.
// GET /v1/patients
func (h *Handler) ListPatients(c echo.Context) error {
	patients, err := h.service.ListPatients(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, patients)
}

// GetPatientByMRN looks a patient up by MRN.
// GET /v1/patients/by-mrn/:mrn
func (h *Handler) GetPatientByMRN(c echo.Context) error {
	p, err := h.service.GetPatientByMRN(c.Request().Context(), c.Param("mrn"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// GetPatient gets a patient by ID.
// GET /v1/patients/:patient_id
func (h *Handler) GetPatient(c echo.Context) error {
	p, err := h.service.GetPatient(c.Request().Context(), c.Param("patient_id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// UpdatePatient applies a partial update.
// PATCH /v1/patients/:patient_id
func (h *Handler) UpdatePatient(c echo.Context) error {
	var req domain.PatientUpdate
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	p, err := h.service.UpdatePatient(c.Request().Context(), c.Param("patient_id"), req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// DeletePatient deletes a patient.
// DELETE /v1/patients/:patient_id
func (h *Handler) DeletePatient(c echo.Context) error {
	if err := h.service.DeletePatient(c.Request().Context(), c.Param("patient_id")); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, OperationStatus{Status: "ok", Detail: "deleted"})
}
