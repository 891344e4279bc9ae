package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xiaot623/gogo/intake/internal/domain"
	"github.com/xiaot623/gogo/intake/internal/metrics"
)

const (
	maxResponseBytes = 4 << 20
	queryPreviewLen  = 200
)

// Client talks to the vector database query endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        logrus.FieldLogger
	metrics    *metrics.Metrics
}

// NewClient creates a new retrieval client. Requests are bounded by timeout.
func NewClient(baseURL, apiKey string, timeout time.Duration, log logrus.FieldLogger, m *metrics.Metrics) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log:     log,
		metrics: m,
	}
}

type queryRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

type queryResponse struct {
	Results []json.RawMessage `json:"results"`
}

// Query calls Search and swallows its error after logging it.
func (c *Client) Query(ctx context.Context, text string, topK int) []domain.RetrievalResult {
	results, err := c.Search(ctx, text, topK)
	if err != nil {
		entry := c.log.WithError(err).WithField("top_k", topK)
		var rerr *Error
		if errors.As(err, &rerr) {
			entry = entry.WithField("kind", rerr.Kind)
		}
		entry.Warn("retrieval failed, continuing with no results")
		return []domain.RetrievalResult{}
	}
	return results
}

// Search posts the query and returns the decoded results or a classified *Error.
func (c *Client) Search(ctx context.Context, text string, topK int) ([]domain.RetrievalResult, error) {
	c.log.WithField("top_k", topK).Debugf("retrieval query: %s", preview(text))

	start := time.Now()
	results, err := c.search(ctx, text, topK)
	c.metrics.RetrievalDuration.Observe(time.Since(start).Seconds())

	outcome := "ok"
	var rerr *Error
	if errors.As(err, &rerr) {
		outcome = string(rerr.Kind)
	}
	c.metrics.RetrievalRequests.WithLabelValues(outcome).Inc()
	return results, err
}

func (c *Client) search(ctx context.Context, text string, topK int) ([]domain.RetrievalResult, error) {
	body, err := json.Marshal(queryRequest{Query: text, TopK: topK})
	if err != nil {
		return nil, &Error{Kind: KindTransport, Err: fmt.Errorf("failed to marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/query", bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Kind: KindTransport, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil, &Error{Kind: KindStatus, StatusCode: resp.StatusCode}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &Error{Kind: KindTransport, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	var decoded queryResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, &Error{Kind: KindDecode, Err: err}
	}
	return decodeResults(decoded.Results), nil
}

// decodeResults keeps every JSON object in order and ignores anything else.
func decodeResults(items []json.RawMessage) []domain.RetrievalResult {
	results := make([]domain.RetrievalResult, 0, len(items))
	for _, item := range items {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(item, &fields); err != nil || fields == nil {
			continue
		}
		results = append(results, domain.RetrievalResult{
			Text:   decodeString(fields["text"]),
			Score:  decodeScore(fields["score"]),
			Source: decodeString(fields["source"]),
		})
	}
	return results
}

func decodeString(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

// decodeScore accepts a JSON number or a numeric string.
func decodeScore(raw json.RawMessage) *float64 {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return &f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return &f
		}
	}
	return nil
}

func preview(text string) string {
	r := []rune(text)
	if len(r) > queryPreviewLen {
		return string(r[:queryPreviewLen])
	}
	return text
}
