package service

import (
	"context"

	"github.com/xiaot623/gogo/intake/internal/domain"
)

// StartSession creates or resumes the patient's interview session.
func (s *Service) StartSession(ctx context.Context, patientID, chiefComplaint string, sessionCtx map[string]interface{}) (*domain.SessionResponse, error) {
	return s.sessions.Start(ctx, patientID, chiefComplaint, sessionCtx)
}

// SubmitAnswer records a patient answer, which may be empty, and returns the follow-up questions.
func (s *Service) SubmitAnswer(ctx context.Context, patientID, answer string) (*domain.SessionResponse, error) {
	return s.sessions.Answer(ctx, patientID, answer)
}

// EndSession persists the transcript and closes the session.
func (s *Service) EndSession(ctx context.Context, patientID string) (*domain.EndResult, error) {
	return s.sessions.End(ctx, patientID)
}

// GetSession returns a snapshot of the patient's live session.
func (s *Service) GetSession(ctx context.Context, patientID string) (*domain.InterviewSession, error) {
	sess, ok := s.sessions.Snapshot(patientID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return sess, nil
}
