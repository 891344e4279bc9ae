package domain

// AdvisorSuggestion is one evidence-backed suggestion produced by the advisor.
type AdvisorSuggestion struct {
	Title      string   `json:"title"`
	Rationale  string   `json:"rationale"`
	Citations  []string `json:"citations"`
	Confidence float64  `json:"confidence"`
}

// AdvisorResult wraps advisor suggestions with the patient they were produced for.
type AdvisorResult struct {
	PatientID   string              `json:"patient_id"`
	Suggestions []AdvisorSuggestion `json:"suggestions"`
}

// RetrievalResult is a single snippet returned by the retrieval backend.
// Score is nil when the backend omitted it or sent something non-numeric.
type RetrievalResult struct {
	Text   string   `json:"text"`
	Score  *float64 `json:"score,omitempty"`
	Source string   `json:"source,omitempty"`
}
