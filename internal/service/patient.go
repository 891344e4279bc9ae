package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/xiaot623/gogo/intake/internal/domain"
)

// CreatePatient validates and registers a new patient.
func (s *Service) CreatePatient(ctx context.Context, req domain.PatientCreate) (*domain.Patient, error) {
	if err := validateName("first_name", &req.FirstName); err != nil {
		return nil, err
	}
	if err := validateName("last_name", &req.LastName); err != nil {
		return nil, err
	}
	if req.Age != nil && *req.Age < 0 {
		return nil, domain.InvalidInputf("age must be >= 0")
	}

	now := time.Now().UTC()
	p := &domain.Patient{
		ID:        uuid.New().String(),
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Age:       req.Age,
		Sex:       req.Sex,
		MRN:       trimmed(req.MRN),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.patients.CreatePatient(ctx, p); err != nil {
		return nil, err
	}
	s.log.WithField("id", p.ID).Info("patient created")
	return p, nil
}

// GetPatient returns a patient or domain.ErrPatientNotFound.
func (s *Service) GetPatient(ctx context.Context, id string) (*domain.Patient, error) {
	p, err := s.patients.GetPatient(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrPatientNotFound
	}
	return p, nil
}

// GetPatientByMRN looks a patient up by MRN, ignoring leading zeros on numeric MRNs.
func (s *Service) GetPatientByMRN(ctx context.Context, mrn string) (*domain.Patient, error) {
	p, err := s.patients.GetPatientByMRN(ctx, mrn)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrPatientNotFound
	}
	return p, nil
}

// ListPatients returns all patients.
func (s *Service) ListPatients(ctx context.Context) ([]*domain.Patient, error) {
	return s.patients.ListPatients(ctx)
}

// UpdatePatient applies a partial update.
func (s *Service) UpdatePatient(ctx context.Context, id string, req domain.PatientUpdate) (*domain.Patient, error) {
	p, err := s.GetPatient(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		if err := validateName("first_name", req.FirstName); err != nil {
			return nil, err
		}
		p.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		if err := validateName("last_name", req.LastName); err != nil {
			return nil, err
		}
		p.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Age != nil {
		if *req.Age < 0 {
			return nil, domain.InvalidInputf("age must be >= 0")
		}
		p.Age = req.Age
	}
	if req.Sex != nil {
		p.Sex = req.Sex
	}
	if req.MRN != nil {
		p.MRN = trimmed(req.MRN)
	}
	p.UpdatedAt = time.Now().UTC()

	if err := s.patients.UpdatePatient(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// DeletePatient removes a patient.
func (s *Service) DeletePatient(ctx context.Context, id string) error {
	ok, err := s.patients.DeletePatient(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrPatientNotFound
	}
	return nil
}

func validateName(field string, v *string) error {
	if strings.TrimSpace(*v) == "" {
		return domain.InvalidInputf("%s is required", field)
	}
	return nil
}

// trimmed returns nil for blank values so they are stored as NULL.
func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
