package agent

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/gogo/intake/internal/domain"
)

type stubRetriever struct {
	results  []domain.RetrievalResult
	gotText  string
	gotTopK  int
	numCalls int
}

func (s *stubRetriever) Query(_ context.Context, text string, topK int) []domain.RetrievalResult {
	s.gotText = text
	s.gotTopK = topK
	s.numCalls++
	return s.results
}

func score(v float64) *float64 { return &v }

func TestTopK(t *testing.T) {
	tests := []struct {
		maxItems int
		want     int
	}{
		{1, 5},
		{2, 5},
		{3, 6},
		{10, 20},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TopK(tt.maxItems), "maxItems=%d", tt.maxItems)
	}
}

func TestAdviseShapesResults(t *testing.T) {
	r := &stubRetriever{results: []domain.RetrievalResult{
		{Text: "Migraine guidance", Score: score(0.8), Source: "nice-cg150"},
		{Text: "Tension headache", Score: score(5.0)},
		{Text: "Cluster headache", Score: score(-1)},
		{Text: "unused", Score: score(0.9)},
	}}
	a := NewAdvisorAgent(r)

	got := a.Advise(context.Background(), "headache for 3 days", 3)

	require.Len(t, got, 3)
	assert.Equal(t, "headache for 3 days", r.gotText)
	assert.Equal(t, 6, r.gotTopK)

	assert.Equal(t, "Suggestion #1", got[0].Title)
	assert.Equal(t, "Based on retrieved evidence: Migraine guidance...", got[0].Rationale)
	assert.Equal(t, []string{"nice-cg150"}, got[0].Citations)
	assert.Equal(t, 0.8, got[0].Confidence)

	assert.Equal(t, "Suggestion #2", got[1].Title)
	assert.Equal(t, []string{"guideline"}, got[1].Citations)
	assert.Equal(t, 1.0, got[1].Confidence)

	assert.Equal(t, 0.0, got[2].Confidence)
}

func TestAdviseDefaultsMissingScore(t *testing.T) {
	nan := math.NaN()
	a := NewAdvisorAgent(&stubRetriever{results: []domain.RetrievalResult{
		{Text: "a"},
		{Text: "b", Score: &nan},
	}})

	got := a.Advise(context.Background(), "x", 5)

	require.Len(t, got, 2)
	assert.Equal(t, 0.5, got[0].Confidence)
	assert.Equal(t, 0.5, got[1].Confidence)
}

func TestAdviseTruncatesRationaleByRune(t *testing.T) {
	long := strings.Repeat("é", 400)
	a := NewAdvisorAgent(&stubRetriever{results: []domain.RetrievalResult{{Text: long, Score: score(0.3)}}})

	got := a.Advise(context.Background(), "x", 1)

	require.Len(t, got, 1)
	body := strings.TrimSuffix(strings.TrimPrefix(got[0].Rationale, rationalePrefix), "...")
	assert.Equal(t, 300, len([]rune(body)))
}

func TestAdviseNoResultsReturnsSentinel(t *testing.T) {
	a := NewAdvisorAgent(&stubRetriever{})

	got := a.Advise(context.Background(), "x", 3)

	require.Len(t, got, 1)
	assert.True(t, IsNoEvidence(got[0]))
	assert.Equal(t, 0.2, got[0].Confidence)
	assert.NotNil(t, got[0].Citations)
	assert.Empty(t, got[0].Citations)
}

func TestAdviseSentinelIsNotShared(t *testing.T) {
	a := NewAdvisorAgent(&stubRetriever{})

	first := a.Advise(context.Background(), "x", 1)
	first[0].Citations = append(first[0].Citations, "mutated")

	assert.Empty(t, a.Advise(context.Background(), "x", 1)[0].Citations)
	assert.Empty(t, NoEvidenceSuggestion.Citations)
}

func TestAdviseLengthIsMinOfBudgetAndResults(t *testing.T) {
	results := make([]domain.RetrievalResult, 4)
	for i := range results {
		results[i] = domain.RetrievalResult{Text: "t", Score: score(0.4)}
	}
	a := NewAdvisorAgent(&stubRetriever{results: results})

	for maxItems := 1; maxItems <= 10; maxItems++ {
		want := maxItems
		if want > len(results) {
			want = len(results)
		}
		assert.Len(t, a.Advise(context.Background(), "x", maxItems), want)
	}
}
