package execution

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"flowcanvas/internal/domain"
)

// ExecutePath is appended to the backend endpoint
const ExecutePath = "queryplan/execute"

// maxResponseBytes caps how much of a backend reply is kept
const maxResponseBytes = 8 << 20

// ErrBackend is returned when the backend answers with a non-2xx status
var ErrBackend = errors.New("execution backend error")

// Response is what the backend sent back
type Response struct {
	StatusCode int             `json:"statusCode"`
	Body       json.RawMessage `json:"body,omitempty"`
}

// Client posts logical plans to the execution backend
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient returns a client for the backend at endpoint
func NewClient(endpoint string, timeout time.Duration) *Client {
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		http:     &http.Client{Timeout: timeout},
	}
}

// Submit posts the plan. A non-2xx reply returns the response together with
// an error wrapping ErrBackend so callers can still show the error body.
func (c *Client) Submit(ctx context.Context, plan domain.LogicalPlan) (Response, error) {
	body, err := json.Marshal(plan)
	if err != nil {
		return Response{}, fmt.Errorf("encode plan: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/"+ExecutePath, bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("submit plan: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Response{StatusCode: resp.StatusCode}, fmt.Errorf("read response: %w", err)
	}

	out := Response{StatusCode: resp.StatusCode, Body: asJSON(raw)}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return out, fmt.Errorf("%w: status %d", ErrBackend, resp.StatusCode)
	}
	return out, nil
}

// asJSON keeps valid JSON as is and wraps anything else as a JSON string
func asJSON(raw []byte) json.RawMessage {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}
	if json.Valid(raw) {
		return raw
	}
	quoted, _ := json.Marshal(string(raw))
	return quoted
}
