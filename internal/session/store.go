// Package session implements the in-memory interview session lifecycle:
// start (or resume), answer, and end with durable transcript hand-off.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xiaot623/gogo/intake/internal/domain"
	"github.com/xiaot623/gogo/intake/internal/metrics"
	"github.com/xiaot623/gogo/intake/internal/repository"
)

// QuestionAgent produces the next interview questions.
type QuestionAgent interface {
	NextQuestions(chiefComplaint string, transcript []domain.Turn) []string
}

// Notifier receives session events. Publish must not block.
type Notifier interface {
	Publish(patientID string, event domain.SessionEvent)
}

// Option configures a Store.
type Option func(*Store)

// WithNotifier sets the event notifier.
func WithNotifier(n Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store owns every live interview session, keyed by patient id.
// Operations on one patient are serialized; different patients run concurrently.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*domain.InterviewSession
	locks    *keyedMutex

	questions   QuestionAgent
	transcripts repository.TranscriptStore
	notifier    Notifier
	log         logrus.FieldLogger
	metrics     *metrics.Metrics
	now         func() time.Time
}

// NewStore creates a session store.
func NewStore(questions QuestionAgent, transcripts repository.TranscriptStore, log logrus.FieldLogger, m *metrics.Metrics, opts ...Option) *Store {
	s := &Store{
		sessions:    make(map[string]*domain.InterviewSession),
		locks:       newKeyedMutex(),
		questions:   questions,
		transcripts: transcripts,
		log:         log,
		metrics:     m,
		now:         func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start creates a session for the patient, or resumes the live one without
// touching its chief complaint or context, then asks the next questions.
func (s *Store) Start(ctx context.Context, patientID, chiefComplaint string, sessionCtx map[string]interface{}) (*domain.SessionResponse, error) {
	if err := domain.ValidatePatientID(patientID); err != nil {
		return nil, err
	}
	unlock := s.locks.Lock(patientID)
	defer unlock()

	log := s.log.WithField("patient_id", patientID)
	sess := s.get(patientID)
	if sess == nil {
		now := s.now()
		sess = &domain.InterviewSession{
			PatientID:      patientID,
			ChiefComplaint: strings.TrimSpace(chiefComplaint),
			Context:        copyContext(sessionCtx),
			Transcript:     []domain.Turn{},
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		s.put(sess)
		s.metrics.SessionsStarted.WithLabelValues("created").Inc()
		s.metrics.SessionsActive.Inc()
		log.Info("interview session created")
	} else {
		s.metrics.SessionsStarted.WithLabelValues("resumed").Inc()
		log.WithField("turns", len(sess.Transcript)).Info("interview session resumed")
	}

	questions := s.ask(sess)
	return response(sess, questions), nil
}

// Answer records the patient's reply and asks the next questions.
// It returns domain.ErrNoActiveSession when the patient has no live session.
func (s *Store) Answer(ctx context.Context, patientID, text string) (*domain.SessionResponse, error) {
	unlock := s.locks.Lock(patientID)
	defer unlock()

	sess := s.get(patientID)
	if sess == nil || sess.Completed {
		return nil, domain.ErrNoActiveSession
	}

	s.appendTurn(sess, domain.RolePatient, text)
	questions := s.ask(sess)
	return response(sess, questions), nil
}

// End persists the transcript and removes the session. If persistence fails
// the session is left in place, still active, so End can be retried.
func (s *Store) End(ctx context.Context, patientID string) (*domain.EndResult, error) {
	unlock := s.locks.Lock(patientID)
	defer unlock()

	log := s.log.WithField("patient_id", patientID)
	sess := s.get(patientID)
	if sess == nil {
		return nil, domain.ErrSessionNotFound
	}
	sess.Completed = true
	ref, err := s.transcripts.Write(ctx, patientID, sess.Text())
	if err != nil {
		sess.Completed = false
		s.metrics.SessionsEnded.WithLabelValues("persistence_failure").Inc()
		log.WithError(err).Error("failed to persist transcript, session kept")
		return nil, fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}

	s.remove(patientID)
	s.metrics.SessionsEnded.WithLabelValues("ok").Inc()
	s.metrics.SessionsActive.Dec()
	log.WithField("reference", ref).Info("interview session ended, transcript written")

	s.publish(patientID, domain.SessionEvent{
		Type:      domain.EventSessionEnded,
		PatientID: patientID,
		Reference: ref,
		Ts:        s.now().UnixMilli(),
	})

	return &domain.EndResult{
		Status:    "ok",
		Detail:    "transcript_written:" + ref,
		PatientID: patientID,
		Reference: ref,
	}, nil
}

// Snapshot returns a copy of the patient's live session.
func (s *Store) Snapshot(patientID string) (*domain.InterviewSession, bool) {
	unlock := s.locks.Lock(patientID)
	defer unlock()

	sess := s.get(patientID)
	if sess == nil {
		return nil, false
	}
	cp := *sess
	cp.Transcript = sess.TranscriptCopy()
	cp.Context = copyContext(sess.Context)
	return &cp, true
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Store) ask(sess *domain.InterviewSession) []string {
	questions := s.questions.NextQuestions(sess.ChiefComplaint, sess.Transcript)
	for _, q := range questions {
		s.appendTurn(sess, domain.RoleAgent, q)
	}
	return questions
}

func (s *Store) appendTurn(sess *domain.InterviewSession, role domain.Role, content string) {
	turn := sess.AppendTurn(role, content, s.now())
	s.publish(sess.PatientID, domain.SessionEvent{
		Type:      domain.EventTurnAppended,
		PatientID: sess.PatientID,
		Turn:      &turn,
		Ts:        turn.Timestamp.UnixMilli(),
	})
}

func (s *Store) publish(patientID string, event domain.SessionEvent) {
	if s.notifier != nil {
		s.notifier.Publish(patientID, event)
	}
}

func (s *Store) get(patientID string) *domain.InterviewSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[patientID]
}

func (s *Store) put(sess *domain.InterviewSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.PatientID] = sess
}

func (s *Store) remove(patientID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, patientID)
}

func response(sess *domain.InterviewSession, questions []string) *domain.SessionResponse {
	if questions == nil {
		questions = []string{}
	}
	return &domain.SessionResponse{
		PatientID:  sess.PatientID,
		Completed:  sess.Completed,
		Questions:  questions,
		Transcript: sess.TranscriptCopy(),
	}
}

// copyContext returns a shallow copy so callers cannot mutate session state.
func copyContext(in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
