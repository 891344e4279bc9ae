package service

import (
	"context"

	"github.com/xiaot623/gogo/intake/internal/agent"
	"github.com/xiaot623/gogo/intake/internal/domain"
)

// DefaultAdvisorItems is used when a caller does not say how many suggestions it wants.
const DefaultAdvisorItems = 3

// RunAdvisorOnText runs the advisor over already-flattened interview text.
// maxItems outside [1,10] is rejected before any retrieval happens.
func (s *Service) RunAdvisorOnText(ctx context.Context, patientID, text string, maxItems int) (*domain.AdvisorResult, error) {
	if err := s.policyEngine.CheckAdvisorRequest(ctx, patientID, maxItems, len(text)); err != nil {
		return nil, err
	}

	suggestions := s.advisor.Advise(ctx, text, maxItems)

	kind := "evidence"
	if len(suggestions) == 1 && agent.IsNoEvidence(suggestions[0]) {
		kind = "sentinel"
	}
	s.metrics.AdvisorSuggestions.WithLabelValues(kind).Add(float64(len(suggestions)))
	s.log.WithField("patient_id", patientID).WithField("suggestions", len(suggestions)).Info("advisor run completed")

	return &domain.AdvisorResult{
		PatientID:   patientID,
		Suggestions: suggestions,
	}, nil
}

// RunAdvisorOnTranscript loads the stored transcript and runs the advisor on it.
func (s *Service) RunAdvisorOnTranscript(ctx context.Context, patientID string, maxItems int) (*domain.AdvisorResult, error) {
	if err := s.policyEngine.CheckAdvisorRequest(ctx, patientID, maxItems, 0); err != nil {
		return nil, err
	}
	text, err := s.transcripts.Read(ctx, patientID)
	if err != nil {
		return nil, err
	}
	return s.RunAdvisorOnText(ctx, patientID, text, maxItems)
}

// RunInterviewStep was the interview-id based question step. It is unsupported.
func (s *Service) RunInterviewStep(ctx context.Context, interviewID string) error {
	return s.deprecated(interviewID, "interview_step")
}

// RunAdvisor was the interview-id based advisor run. It is unsupported.
func (s *Service) RunAdvisor(ctx context.Context, interviewID string, maxItems int) error {
	return s.deprecated(interviewID, "advisor_run")
}

// RunCrew was the interview step followed by the advisor. It is unsupported.
func (s *Service) RunCrew(ctx context.Context, interviewID string, maxItems int) error {
	return s.deprecated(interviewID, "crew_run")
}

func (s *Service) deprecated(interviewID, flow string) error {
	s.log.WithField("interview_id", interviewID).WithField("flow", flow).Warn("deprecated flow called")
	return domain.ErrDeprecatedFlow
}
