// Package domain contains the core types shared across the intake service.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// Turn is one immutable transcript entry.
type Turn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// InterviewSession is the live state of one patient's interview.
type InterviewSession struct {
	PatientID      string                 `json:"patient_id"`
	ChiefComplaint string                 `json:"chief_complaint"`
	Context        map[string]interface{} `json:"context,omitempty"`
	Transcript     []Turn                 `json:"transcript"`
	Completed      bool                   `json:"completed"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

// AppendTurn appends a turn and refreshes UpdatedAt.
func (s *InterviewSession) AppendTurn(role Role, content string, at time.Time) Turn {
	turn := Turn{Role: role, Content: content, Timestamp: at}
	s.Transcript = append(s.Transcript, turn)
	s.UpdatedAt = at
	return turn
}

// TranscriptCopy returns a copy of the transcript that callers may keep.
func (s *InterviewSession) TranscriptCopy() []Turn {
	out := make([]Turn, len(s.Transcript))
	copy(out, s.Transcript)
	return out
}

const transcriptRule = "------------------------------------------------------------"

// Text renders the session as the plain-text transcript that gets persisted.
func (s *InterviewSession) Text() string {
	var b strings.Builder
	b.WriteString("Patient Interview Transcript\n")
	fmt.Fprintf(&b, "Patient ID: %s\n", s.PatientID)
	fmt.Fprintf(&b, "Chief Complaint: %s\n", s.ChiefComplaint)
	fmt.Fprintf(&b, "Created: %s\n", formatTimestamp(s.CreatedAt))
	fmt.Fprintf(&b, "Updated: %s\n", formatTimestamp(s.UpdatedAt))
	b.WriteString(transcriptRule)
	b.WriteString("\n")
	for _, turn := range s.Transcript {
		fmt.Fprintf(&b, "[%s] %s: %s\n", formatTimestamp(turn.Timestamp), strings.ToUpper(string(turn.Role)), turn.Content)
	}
	return b.String()
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// SessionResponse is returned by start and answer.
type SessionResponse struct {
	PatientID  string   `json:"patient_id"`
	Completed  bool     `json:"completed"`
	Questions  []string `json:"questions"`
	Transcript []Turn   `json:"transcript"`
}

// EndResult is returned when a session is ended and its transcript persisted.
type EndResult struct {
	Status    string `json:"status"`
	Detail    string `json:"detail"`
	PatientID string `json:"patient_id"`
	Reference string `json:"reference"`
}

// SessionEvent is pushed to subscribers of a patient's session feed.
type SessionEvent struct {
	Type      EventType `json:"type"`
	PatientID string    `json:"patient_id"`
	Turn      *Turn     `json:"turn,omitempty"`
	Reference string    `json:"reference,omitempty"`
	Ts        int64     `json:"ts"`
}
