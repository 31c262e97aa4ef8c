// Package agent talks to the local automation agent over HTTP.
//
// Every call is best-effort: the agent mirrors checklist state for
// convenience and its availability must never affect checklist data.
// Failures surface only as an offline indicator.
package agent

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Deokateoer1/ksef-checklist-builder/internal/clierr"
)

const (
	maxRetries = 3
	baseDelay  = time.Second
)

// Status is the agent health report from GET /api/stats.
// The structure is consumed as-is, without validation.
type Status struct {
	Status         string `json:"status"`
	KSeFConnected  bool   `json:"ksef_connected"`
	DBHealthy      bool   `json:"db_healthy"`
	RedisQueue     int    `json:"redis_queue"`
	ProcessedToday int    `json:"processed_today"`
}

// LogEntry is one agent log line from GET /api/logs.
type LogEntry struct {
	ID    string `json:"id,omitempty"`
	Text  string `json:"text"`
	Time  string `json:"time"`
	Level string `json:"level,omitempty"`
}

// Client is the HTTP client for the local automation agent.
type Client struct {
	baseURL string
	hc      *http.Client
	sleep   func(time.Duration) // overridable for tests
}

// New creates a Client for the agent at baseURL. The agent serves a
// self-signed certificate on localhost, so verification is skipped.
func New(baseURL string, timeout time.Duration) *Client {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // localhost self-signed cert
	}
	return &Client{
		baseURL: baseURL,
		hc:      &http.Client{Timeout: timeout, Transport: transport},
		sleep:   time.Sleep,
	}
}

// offline wraps any agent failure into the single user-facing signal.
func offline(err error) error {
	return clierr.Newf(clierr.AgentOffline, "automation agent offline: %v", err)
}

// GetStatus queries agent health. Failure means "agent offline" and is
// used purely for a status indicator.
func (c *Client) GetStatus(ctx context.Context) (*Status, error) {
	body, err := c.doWithRetry(ctx, http.MethodGet, "/api/stats", nil)
	if err != nil {
		return nil, offline(err)
	}
	var s Status
	if err := json.Unmarshal(body, &s); err != nil {
		return nil, offline(err)
	}
	return &s, nil
}

// GetLogs fetches recent agent log entries.
func (c *Client) GetLogs(ctx context.Context) ([]LogEntry, error) {
	body, err := c.doWithRetry(ctx, http.MethodGet, "/api/logs", nil)
	if err != nil {
		return nil, offline(err)
	}
	var entries []LogEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, offline(err)
	}
	return entries, nil
}

// UpdateTaskStatus notifies the agent that a task's completion flag
// changed. Callers fire this without awaiting success; the error return
// exists for tests and logging only.
func (c *Client) UpdateTaskStatus(ctx context.Context, taskID string, completed bool) error {
	payload, err := json.Marshal(map[string]any{
		"taskId":    taskID,
		"completed": completed,
	})
	if err != nil {
		return err
	}
	_, err = c.doWithRetry(ctx, http.MethodPost, "/api/task-update", payload)
	return err
}

// TriggerSync asks the agent to run a sync cycle. The response JSON is
// returned raw for display.
func (c *Client) TriggerSync(ctx context.Context) (json.RawMessage, error) {
	body, err := c.doWithRetry(ctx, http.MethodPost, "/api/sync", nil)
	if err != nil {
		return nil, offline(err)
	}
	return json.RawMessage(body), nil
}

// RotateToken asks the agent to rotate its KSeF token.
func (c *Client) RotateToken(ctx context.Context) (json.RawMessage, error) {
	body, err := c.doWithRetry(ctx, http.MethodPost, "/api/auth/rotate", nil)
	if err != nil {
		return nil, offline(err)
	}
	return json.RawMessage(body), nil
}

// doWithRetry performs one HTTP call with the agent retry policy:
// on HTTP 429 or a transport error, retry up to maxRetries times after
// the initial attempt, doubling the wait starting from baseDelay
// (1s, 2s, 4s). Other non-2xx codes fail immediately.
func (c *Client) doWithRetry(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var lastErr error
	delay := baseDelay

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
			c.sleep(delay)
			delay *= 2
		}

		body, retryable, err := c.do(ctx, method, path, payload)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}

	return nil, lastErr
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) (body []byte, retryable bool, err error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, false, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, true, fmt.Errorf("agent rate limited (429)")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, false, fmt.Errorf("agent returned %d", resp.StatusCode)
	}

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, err
	}
	return body, false, nil
}
