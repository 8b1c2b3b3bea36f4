package ask

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client relays natural-language questions to the query gateway upstream and
// returns its answer untouched. The upstream owns translation and execution;
// this service only proxies.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client for the given upstream base URL. timeout bounds
// the whole round trip.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

type askRequest struct {
	Question string `json:"question"`
	Context  string `json:"context,omitempty"`
}

// Ask posts the question (plus optional caller context) upstream and returns
// the raw JSON answer.
func (c *Client) Ask(ctx context.Context, question, callerContext string) (json.RawMessage, error) {
	payload, err := json.Marshal(askRequest{Question: question, Context: callerContext})
	if err != nil {
		return nil, fmt.Errorf("failed to encode question: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ask", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build upstream request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read upstream response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upstream answered %d: %s", resp.StatusCode, body)
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("upstream answered with invalid JSON")
	}

	return json.RawMessage(body), nil
}
