// Package api provides an HTTP client for the domain health analysis API.
package api

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sudo-tiz/dnshealth-go/internal/tasks"
)

// Client wraps http.Client for API requests.
type Client struct {
	baseURL string
	hc      *http.Client
}

// NewClient configures HTTP client with optional TLS verification skip.
func NewClient(baseURL string, timeout time.Duration, insecure bool) *Client {
	tr := &http.Transport{}
	if insecure {
		//nolint:gosec
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: timeout, Transport: tr},
	}
}

// CSRFToken fetches a fresh CSRF token from the API.
func (c *Client) CSRFToken(ctx context.Context) (string, error) {
	url := c.baseURL + "/api/csrf-token"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.hc.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("api error: %s", string(body))
	}
	var out struct {
		Token string `json:"csrf_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.Token, nil
}

// EnqueueAnalyze fetches a CSRF token then posts the analysis request,
// returning the enqueued task ID.
func (c *Client) EnqueueAnalyze(ctx context.Context, domain string, checks []string) (string, error) {
	token, err := c.CSRFToken(ctx)
	if err != nil {
		return "", fmt.Errorf("fetch csrf token: %w", err)
	}

	payload := struct {
		Domain string   `json:"domain"`
		Checks []string `json:"checks,omitempty"`
	}{Domain: domain, Checks: checks}

	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	url := c.baseURL + "/api/check"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(b)))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-CSRF-Token", token)

	resp, err := c.hc.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("api error: %s", string(body))
	}
	var out struct {
		TaskID string `json:"task_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.TaskID, nil
}

// GetTaskStatus polls task status from API.
func (c *Client) GetTaskStatus(ctx context.Context, taskID string) (*tasks.TaskStatusResponse, error) {
	url := c.baseURL + "/api/check/" + taskID
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.hc.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("api error: %s", string(body))
	}
	var out tasks.TaskStatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}
