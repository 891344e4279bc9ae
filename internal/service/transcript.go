package service

import (
	"context"

	"github.com/xiaot623/gogo/intake/internal/domain"
)

// SaveTranscript stores interview text directly, outside of a session.
func (s *Service) SaveTranscript(ctx context.Context, patientID, content string) (string, error) {
	ref, err := s.transcripts.Write(ctx, patientID, content)
	if err != nil {
		return "", err
	}
	s.log.WithField("patient_id", patientID).WithField("reference", ref).Info("interview transcript saved")
	return ref, nil
}

// GetTranscript reads a stored transcript.
func (s *Service) GetTranscript(ctx context.Context, patientID string) (string, error) {
	return s.transcripts.Read(ctx, patientID)
}

// DeleteTranscript removes a stored transcript.
func (s *Service) DeleteTranscript(ctx context.Context, patientID string) error {
	ok, err := s.transcripts.Delete(ctx, patientID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrTranscriptNotFound
	}
	return nil
}
