// ABOUTME: Shared HTTP plumbing for collaborator clients
// ABOUTME: Forwards the caller's bearer token and maps failures to status-classed errors

package collab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/helperhub/agent-gateway/internal/auth"
)

// CallError reports a failed collaborator call. Status is the upstream HTTP
// status, or 0 for network-level failures (which are always transient).
type CallError struct {
	Service string
	Status  int
	Body    string
	Err     error
}

func (e *CallError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Service, e.Err)
	}
	return fmt.Sprintf("%s: upstream status %d: %s", e.Service, e.Status, e.Body)
}

func (e *CallError) Unwrap() error { return e.Err }

// StatusCode returns the upstream HTTP status. Implements the status
// classification interface used by the tool registry.
func (e *CallError) StatusCode() int { return e.Status }

// Client is the shared HTTP transport for collaborator calls.
type Client struct {
	service string
	baseURL string
	http    *http.Client
}

// NewClient creates a collaborator client for the given service name and base URL.
func NewClient(service, baseURL string) *Client {
	return &Client{
		service: service,
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// doJSON performs an authenticated JSON request and decodes the response into
// out (when non-nil). The caller's bearer token is forwarded unchanged.
func (c *Client) doJSON(ctx context.Context, ac *auth.AuthContext, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encoding request: %w", c.service, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: building request: %w", c.service, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if ac != nil && ac.Token != "" {
		req.Header.Set("Authorization", "Bearer "+ac.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &CallError{Service: c.service, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		// Keep a short excerpt for logs; full bodies can be large
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &CallError{
			Service: c.service,
			Status:  resp.StatusCode,
			Body:    strings.TrimSpace(string(excerpt)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decoding response: %w", c.service, err)
	}
	return nil
}
