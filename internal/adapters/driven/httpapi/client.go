// Package httpapi is the JSON request layer under the model provider
// adapters. It owns authentication headers, timeouts and error decoding.
package httpapi

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

// maxErrorBody bounds how much of a failed response is kept.
const maxErrorBody = 4096

// StatusError is a non-2xx reply.
type StatusError struct {
	Provider string
	Status   int
	Message  string
	// Type is the provider error class when it sends one.
	Type string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s error (status %d): %s", e.Provider, e.Status, e.Message)
}

// Retryable reports rate limiting and server-side failures.
func (e *StatusError) Retryable() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= 500
}

// Client talks to one provider endpoint.
type Client struct {
	provider string
	baseURL  string
	headers  http.Header
	http     *http.Client
}

// New creates a client. headers are added to every request.
func New(provider, baseURL string, timeout time.Duration, headers map[string]string) *Client {
	h := make(http.Header, len(headers))
	for k, v := range headers {
		h.Set(k, v)
	}
	return &Client{
		provider: provider,
		baseURL:  strings.TrimRight(baseURL, "/"),
		headers:  h,
		http:     &http.Client{Timeout: timeout},
	}
}

// BearerAuth returns the Authorization header for key.
func BearerAuth(key string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + key}
}

func (c *Client) Provider() string { return c.provider }
func (c *Client) BaseURL() string  { return c.baseURL }

// Post sends body as JSON and decodes a 2xx reply into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

// Get decodes a 2xx reply into out. A nil out discards the body.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, http.NoBody)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, v := range c.headers {
		req.Header[k] = v
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.statusError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// errorEnvelope covers the shapes providers use:
// {"error":"..."}, {"error":{"message":"...","type":"..."}},
// {"message":"..."} and {"detail":"..."}.
type errorEnvelope struct {
	Error   json.RawMessage `json:"error"`
	Message string          `json:"message"`
	Detail  json.RawMessage `json:"detail"`
}

func (c *Client) statusError(resp *http.Response) error {
	se := &StatusError{Provider: c.provider, Status: resp.StatusCode}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		se.Message = "failed to read response"
		return se
	}
	se.Message, se.Type = parseErrorBody(raw)
	if se.Message == "" {
		se.Message = http.StatusText(resp.StatusCode)
	}
	return se
}

func parseErrorBody(raw []byte) (message, kind string) {
	text := strings.TrimSpace(string(raw))

	var env errorEnvelope
	if json.Unmarshal(raw, &env) != nil {
		return text, ""
	}

	if len(env.Error) > 0 {
		var s string
		if json.Unmarshal(env.Error, &s) == nil && s != "" {
			return s, ""
		}
		var obj struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		}
		if json.Unmarshal(env.Error, &obj) == nil && obj.Message != "" {
			return obj.Message, obj.Type
		}
	}
	if env.Message != "" {
		return env.Message, ""
	}
	if len(env.Detail) > 0 {
		var s string
		if json.Unmarshal(env.Detail, &s) == nil && s != "" {
			return s, ""
		}
		return string(env.Detail), ""
	}
	return text, ""
}
