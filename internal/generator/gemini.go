package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Deokateoer1/ksef-checklist-builder/internal/profile"
	"github.com/Deokateoer1/ksef-checklist-builder/internal/task"
)

const (
	geminiBaseURL    = "https://generativelanguage.googleapis.com/v1beta"
	geminiMaxRetries = 3
	geminiInitDelay  = time.Second
	requestTimeout   = 90 * time.Second
)

// GeminiClient calls the Google Generative Language API to produce
// checklists. Output is constrained to the task-list JSON shape via a
// response schema, then validated before being handed to the store.
type GeminiClient struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// NewGeminiClient creates a generator backed by the given model.
// An empty baseURL selects the public API endpoint.
func NewGeminiClient(apiKey, model, baseURL string) *GeminiClient {
	if baseURL == "" {
		baseURL = geminiBaseURL
	}
	return &GeminiClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: requestTimeout},
	}
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig geminiGenConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConfig struct {
	ResponseMIMEType string         `json:"responseMimeType"`
	ResponseSchema   map[string]any `json:"responseSchema"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate implements Generator. Retries on rate limiting and transport
// errors with a doubling delay; every failure collapses into ErrGeneration.
func (c *GeminiClient) Generate(ctx context.Context, p profile.Profile) ([]task.Task, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: API key not set", ErrGeneration)
	}

	req := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: buildPrompt(p)}}},
		},
		GenerationConfig: geminiGenConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   responseSchema(),
		},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: marshaling request: %w", ErrGeneration, err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)

	var lastErr error
	for attempt := 0; attempt < geminiMaxRetries; attempt++ {
		if attempt > 0 {
			delay := geminiInitDelay << (attempt - 1)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %w", ErrGeneration, ctx.Err())
			}
		}

		tasks, retryable, err := c.doRequest(ctx, url, body)
		if err == nil {
			return tasks, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}

	return nil, fmt.Errorf("%w: %w", ErrGeneration, lastErr)
}

// doRequest performs one API call. The second return value reports whether
// the failure is worth retrying (rate limit, transport, 5xx).
func (c *GeminiClient) doRequest(ctx context.Context, url string, body []byte) ([]task.Task, bool, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, false, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, true, fmt.Errorf("HTTP request failed: %w", err)
	}

	respBody, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, true, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return nil, retryable, fmt.Errorf("API returned %d", resp.StatusCode)
	}

	var parsed geminiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, false, fmt.Errorf("parsing response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return nil, false, fmt.Errorf("empty response")
	}

	var tasks []task.Task
	if err := json.Unmarshal([]byte(parsed.Candidates[0].Content.Parts[0].Text), &tasks); err != nil {
		return nil, false, fmt.Errorf("parsing task list: %w", err)
	}
	if err := task.ValidateList(tasks); err != nil {
		return nil, false, fmt.Errorf("validating task list: %w", err)
	}

	return tasks, false, nil
}
