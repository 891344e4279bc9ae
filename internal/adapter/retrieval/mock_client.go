package retrieval

import (
	"context"
	"strings"

	"github.com/xiaot623/gogo/intake/internal/domain"
)

// MockClient returns canned snippets without any network access.
type MockClient struct {
	snippets []domain.RetrievalResult
}

// Ensure MockClient implements Retriever interface.
var _ Retriever = (*MockClient)(nil)

// NewMockClient creates a mock retriever with a small fixed corpus.
func NewMockClient() *MockClient {
	scores := []float64{0.91, 0.78, 0.64, 0.52, 0.37}
	texts := []struct{ text, source string }{
		{"Red-flag symptoms such as sudden onset, neurological deficit or fever warrant urgent evaluation.", "mock:triage-red-flags"},
		{"Record onset, duration, severity on a 0-10 scale and known triggers for every presenting complaint.", "mock:history-taking"},
		{"Symptoms persisting beyond two weeks without improvement should be reviewed in primary care.", "mock:follow-up"},
		{"Over-the-counter analgesics are first line for mild to moderate pain without red flags.", "mock:analgesia"},
		{"Lifestyle factors including sleep, hydration and stress commonly modulate symptom severity.", ""},
	}
	snippets := make([]domain.RetrievalResult, len(texts))
	for i, t := range texts {
		s := scores[i]
		snippets[i] = domain.RetrievalResult{Text: t.text, Score: &s, Source: t.source}
	}
	return &MockClient{snippets: snippets}
}

// Query returns up to topK canned snippets; blank queries match nothing.
func (m *MockClient) Query(ctx context.Context, text string, topK int) []domain.RetrievalResult {
	if strings.TrimSpace(text) == "" || topK <= 0 {
		return []domain.RetrievalResult{}
	}
	if topK > len(m.snippets) {
		topK = len(m.snippets)
	}
	out := make([]domain.RetrievalResult, topK)
	copy(out, m.snippets[:topK])
	return out
}
