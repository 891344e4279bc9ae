package agent

import (
	"context"
	"fmt"
	"math"

	"github.com/xiaot623/gogo/intake/internal/adapter/retrieval"
	"github.com/xiaot623/gogo/intake/internal/domain"
)

const (
	rationalePrefix  = "Based on retrieved evidence: "
	rationaleMaxRune = 300
	defaultCitation  = "guideline"
	defaultScore     = 0.5
	minTopK          = 5
)

// NoEvidenceSuggestion is returned alone when retrieval yields nothing usable.
var NoEvidenceSuggestion = domain.AdvisorSuggestion{
	Title:      "No strong evidence found",
	Rationale:  "The RAG system did not return relevant matches. Consider broadening the query.",
	Citations:  []string{},
	Confidence: 0.2,
}

// AdvisorAgent turns retrieved evidence into ranked suggestions.
type AdvisorAgent struct {
	retriever retrieval.Retriever
}

// NewAdvisorAgent creates an advisor backed by the given retriever.
func NewAdvisorAgent(retriever retrieval.Retriever) *AdvisorAgent {
	return &AdvisorAgent{retriever: retriever}
}

// Advise returns between 1 and maxItems suggestions for the interview text.
// The result is never empty; with no evidence it is the single sentinel.
func (a *AdvisorAgent) Advise(ctx context.Context, interviewText string, maxItems int) []domain.AdvisorSuggestion {
	results := a.retriever.Query(ctx, interviewText, TopK(maxItems))

	n := maxItems
	if len(results) < n {
		n = len(results)
	}
	if n <= 0 {
		return []domain.AdvisorSuggestion{noEvidence()}
	}

	suggestions := make([]domain.AdvisorSuggestion, 0, n)
	for i, r := range results[:n] {
		source := r.Source
		if source == "" {
			source = defaultCitation
		}
		suggestions = append(suggestions, domain.AdvisorSuggestion{
			Title:      fmt.Sprintf("Suggestion #%d", i+1),
			Rationale:  rationalePrefix + truncateRunes(r.Text, rationaleMaxRune) + "...",
			Citations:  []string{source},
			Confidence: confidence(r.Score),
		})
	}
	return suggestions
}

// TopK is the number of candidates requested for maxItems suggestions.
func TopK(maxItems int) int {
	if k := maxItems * 2; k > minTopK {
		return k
	}
	return minTopK
}

// IsNoEvidence reports whether s is the sentinel suggestion.
func IsNoEvidence(s domain.AdvisorSuggestion) bool {
	return s.Title == NoEvidenceSuggestion.Title && len(s.Citations) == 0
}

func noEvidence() domain.AdvisorSuggestion {
	s := NoEvidenceSuggestion
	s.Citations = []string{}
	return s
}

func confidence(score *float64) float64 {
	if score == nil || math.IsNaN(*score) {
		return defaultScore
	}
	return math.Max(0, math.Min(1, *score))
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
