package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/xiaot623/gogo/intake/internal/domain"
)

// Client calls the intake HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Start starts or resumes the patient's session.
func (c *Client) Start(patientID, chiefComplaint string) (*domain.SessionResponse, error) {
	var resp domain.SessionResponse
	body := map[string]interface{}{"chief_complaint": chiefComplaint}
	if err := c.post("/v1/interview-sessions/"+url.PathEscape(patientID)+"/start", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Answer submits one answer.
func (c *Client) Answer(patientID, answer string) (*domain.SessionResponse, error) {
	var resp domain.SessionResponse
	if err := c.post("/v1/interview-sessions/"+url.PathEscape(patientID)+"/answer", map[string]string{"answer": answer}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// End ends the session and returns the transcript reference.
func (c *Client) End(patientID string) (*domain.EndResult, error) {
	var resp domain.EndResult
	if err := c.post("/v1/interview-sessions/"+url.PathEscape(patientID)+"/end", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RunAdvisor runs the advisor over the stored transcript.
func (c *Client) RunAdvisor(patientID string, maxItems int) (*domain.AdvisorResult, error) {
	var resp domain.AdvisorResult
	path := "/v1/interviews/" + url.PathEscape(patientID) + "/run-advisor?max_items=" + strconv.Itoa(maxItems)
	if err := c.post(path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) post(path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s: %s", resp.Status, apiErr.Error)
		}
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Feed is a live subscription to a patient's session events.
type Feed struct {
	conn *websocket.Conn
	done chan struct{}
}

// Watch subscribes to the patient's session event feed.
func (c *Client) Watch(patientID string) (*Feed, error) {
	wsURL := "ws" + strings.TrimPrefix(c.baseURL, "http") + "/v1/interview-sessions/" + url.PathEscape(patientID) + "/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	return &Feed{conn: conn, done: make(chan struct{})}, nil
}

// Print writes every received event to w until the feed closes.
func (f *Feed) Print(w io.Writer) {
	for {
		select {
		case <-f.done:
			return
		default:
			var event domain.SessionEvent
			if err := f.conn.ReadJSON(&event); err != nil {
				return
			}
			switch event.Type {
			case domain.EventTurnAppended:
				if event.Turn != nil {
					fmt.Fprintf(w, "\n[event] %s: %s\n", strings.ToUpper(string(event.Turn.Role)), event.Turn.Content)
				}
			case domain.EventSessionEnded:
				fmt.Fprintf(w, "\n[event] session ended, transcript at %s\n", event.Reference)
			}
		}
	}
}

// Close closes the feed connection.
func (f *Feed) Close() error {
	close(f.done)
	return f.conn.Close()
}
