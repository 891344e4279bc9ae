// Package agent holds the interview question agent and the RAG-backed advisor agent.
package agent

import (
	"fmt"
	"strings"

	"github.com/xiaot623/gogo/intake/internal/domain"
)

// topicQuestion is a canned question asked at most once per session. The
// question text carries its own keyword so it is not asked again once it
// appears in the agent's history.
type topicQuestion struct {
	keyword  string
	question string
}

var topicQuestions = []topicQuestion{
	{keyword: "duration", question: "What is the duration of this issue? How long have you been experiencing it?"},
	{keyword: "severity", question: "On a scale from 1 to 10, what is the severity of your symptoms?"},
	{keyword: "triggers", question: "Have you noticed any triggers or patterns that make it better or worse?"},
}

const (
	complaintProbeFormat = "Can you describe more details about: %s?"
	fallbackQuestion     = "Do you have any other symptoms or concerns you'd like to share?"
)

// QuestionAgent produces the next batch of interview questions from keyword
// presence in what the agent has already asked. It has no state and no I/O.
type QuestionAgent struct{}

// NewQuestionAgent creates a question agent.
func NewQuestionAgent() *QuestionAgent {
	return &QuestionAgent{}
}

// NextQuestions returns questions in fixed order: duration, severity,
// triggers, complaint follow-up, then the generic fallback if nothing else applies.
func (a *QuestionAgent) NextQuestions(chiefComplaint string, transcript []domain.Turn) []string {
	var asked strings.Builder
	for _, turn := range transcript {
		if turn.Role == domain.RoleAgent {
			asked.WriteString(strings.ToLower(turn.Content))
			asked.WriteByte(' ')
		}
	}
	haystack := asked.String()

	var questions []string
	for _, tq := range topicQuestions {
		if !strings.Contains(haystack, tq.keyword) {
			questions = append(questions, tq.question)
		}
	}

	if cc := strings.TrimSpace(chiefComplaint); cc != "" {
		questions = append(questions, fmt.Sprintf(complaintProbeFormat, cc))
	}

	if len(questions) == 0 {
		questions = append(questions, fallbackQuestion)
	}
	return questions
}
