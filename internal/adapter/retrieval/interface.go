// Package retrieval provides the client for the external semantic-search backend.
package retrieval

import (
	"context"

	"github.com/xiaot623/gogo/intake/internal/domain"
)

// Retriever fetches ranked snippets for a free-text query.
type Retriever interface {
	// Query never fails. Backend problems are logged and surface as an empty slice.
	Query(ctx context.Context, text string, topK int) []domain.RetrievalResult
}

// Ensure Client implements Retriever interface.
var _ Retriever = (*Client)(nil)
