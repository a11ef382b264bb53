// Package client provides the Agritrack Go SDK for submitting transactions
// to and querying an Agritrack ledger gateway.
package client

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

// APIError is returned when the gateway responds with a non-2xx status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gateway returned %d: %s", e.StatusCode, e.Message)
}

// Client is the Agritrack SDK entry point.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	bearerToken string
}

// Option is a functional option for configuring a Client.
type Option func(*Client)

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBearerToken attaches an access token to every request.
func WithBearerToken(token string) Option {
	return func(c *Client) { c.bearerToken = token }
}

// New creates a Client for the gateway at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type invokeRequest struct {
	Operation string   `json:"operation"`
	Args      []string `json:"args"`
}

type submitResponse struct {
	TxID   string          `json:"tx_id"`
	Result json.RawMessage `json:"result"`
}

type evaluateResponse struct {
	Result json.RawMessage `json:"result"`
}

// Submit executes a state-changing operation and returns the assigned
// transaction ID and the raw result record.
func (c *Client) Submit(ctx context.Context, operation string, args ...string) (string, json.RawMessage, error) {
	body, err := c.post(ctx, "/api/v1/transactions/submit", invokeRequest{Operation: operation, Args: args})
	if err != nil {
		return "", nil, err
	}
	var resp submitResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", nil, fmt.Errorf("decode submit response: %w", err)
	}
	return resp.TxID, resp.Result, nil
}

// Evaluate executes a read-only operation and returns the raw result.
func (c *Client) Evaluate(ctx context.Context, operation string, args ...string) (json.RawMessage, error) {
	body, err := c.post(ctx, "/api/v1/transactions/evaluate", invokeRequest{Operation: operation, Args: args})
	if err != nil {
		return nil, err
	}
	var resp evaluateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode evaluate response: %w", err)
	}
	return resp.Result, nil
}

// EvaluateInto executes a read-only operation and decodes the result into out.
func (c *Client) EvaluateInto(ctx context.Context, out any, operation string, args ...string) error {
	raw, err := c.Evaluate(ctx, operation, args...)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s result: %w", operation, err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearerToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		var e struct {
			Error string `json:"error"`
		}
		msg := string(body)
		if json.Unmarshal(body, &e) == nil && e.Error != "" {
			msg = e.Error
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	return body, nil
}
