package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client is an HTTP client for the webhook server
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new webhook client
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Query is the webhook query object
type Query struct {
	Sender           string `json:"sender"`
	Message          string `json:"message"`
	IsGroup          bool   `json:"isGroup"`
	GroupParticipant string `json:"groupParticipant,omitempty"`
}

// Reply is one message returned by the bot
type Reply struct {
	Message string `json:"message"`
}

// SendResult is the webhook response body
type SendResult struct {
	Replies []Reply `json:"replies"`
}

// HealthResult is the health endpoint response body
type HealthResult struct {
	OK bool `json:"ok"`
}

// Send posts a message to the webhook
func (c *Client) Send(ctx context.Context, q Query) (SendResult, error) {
	var result SendResult
	err := c.Do(ctx, http.MethodPost, "/", map[string]Query{"query": q}, &result)
	return result, err
}

// Health checks the server health endpoint
func (c *Client) Health(ctx context.Context) (HealthResult, error) {
	var result HealthResult
	err := c.Do(ctx, http.MethodGet, "/health", nil, &result)
	return result, err
}

// Do performs an HTTP request
func (c *Client) Do(ctx context.Context, method, path string, body, result any) error {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return nil
}
