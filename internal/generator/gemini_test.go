package generator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Deokateoer1/ksef-checklist-builder/internal/profile"
	"github.com/Deokateoer1/ksef-checklist-builder/internal/task"
)

func genProfile() profile.Profile {
	return profile.Profile{
		CompanySize:     profile.SizeMedium,
		Industry:        "transport",
		ERPSystem:       profile.ERPEnterprise,
		MonthlyInvoices: profile.InvoicesHigh,
	}
}

const validTaskJSON = `[{
	"id": "t-1",
	"title": "Regenerate KSeF tokens",
	"description": "1.0 tokens stop working in 2.0.",
	"priority": "critical",
	"section": "preparatory",
	"estimatedHours": 2,
	"deadlineDays": 14,
	"dependencies": [],
	"completed": false,
	"automatable": true,
	"robotFunction": "Token manager"
}]`

// candidatesBody wraps task-list JSON in the API response envelope.
func candidatesBody(t *testing.T, text string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]string{{"text": text}}}},
		},
	})
	require.NoError(t, err)
	return body
}

func TestGenerateParsesTasks(t *testing.T) {
	var gotPath, gotKey string
	var gotReq geminiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_, _ = w.Write(candidatesBody(t, validTaskJSON))
	}))
	defer srv.Close()

	c := NewGeminiClient("secret", "gemini-flash-latest", srv.URL)
	tasks, err := c.Generate(context.Background(), genProfile())
	require.NoError(t, err)

	require.Len(t, tasks, 1)
	assert.Equal(t, "t-1", tasks[0].ID)
	assert.Equal(t, task.PriorityCritical, tasks[0].Priority)
	assert.True(t, tasks[0].Automatable)

	assert.Equal(t, "/models/gemini-flash-latest:generateContent", gotPath)
	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, "application/json", gotReq.GenerationConfig.ResponseMIMEType)
	require.Len(t, gotReq.Contents, 1)
	prompt := gotReq.Contents[0].Parts[0].Text
	assert.Contains(t, prompt, `industry "transport"`)
	assert.Contains(t, prompt, "21133")
}

func TestGenerateRequiresAPIKey(t *testing.T) {
	c := NewGeminiClient("", "gemini-flash-latest", "http://unused")
	_, err := c.Generate(context.Background(), genProfile())
	require.ErrorIs(t, err, ErrGeneration)
	assert.Contains(t, err.Error(), "API key")
}

func TestGenerateRetriesOnRateLimit(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write(candidatesBody(t, validTaskJSON))
	}))
	defer srv.Close()

	c := NewGeminiClient("secret", "m", srv.URL)
	tasks, err := c.Generate(context.Background(), genProfile())
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
	assert.Equal(t, 2, calls)
}

func TestGenerateDoesNotRetryClientErrors(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewGeminiClient("secret", "m", srv.URL)
	_, err := c.Generate(context.Background(), genProfile())
	require.ErrorIs(t, err, ErrGeneration)
	assert.Equal(t, 1, calls)
}

func TestGenerateRejectsInvalidTaskList(t *testing.T) {
	// Duplicate ids must not reach the store.
	obj := strings.TrimSuffix(strings.TrimPrefix(validTaskJSON, "["), "]")
	dup := "[" + obj + "," + obj + "]"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(candidatesBody(t, dup))
	}))
	defer srv.Close()

	c := NewGeminiClient("secret", "m", srv.URL)
	_, err := c.Generate(context.Background(), genProfile())
	require.ErrorIs(t, err, ErrGeneration)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestGenerateRejectsEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	c := NewGeminiClient("secret", "m", srv.URL)
	_, err := c.Generate(context.Background(), genProfile())
	require.ErrorIs(t, err, ErrGeneration)
}

func TestResponseSchemaMirrorsTaskShape(t *testing.T) {
	schema := responseSchema()
	items, ok := schema["items"].(map[string]any)
	require.True(t, ok)
	props, ok := items["properties"].(map[string]any)
	require.True(t, ok)

	var probe task.Task
	data, err := json.Marshal(probe)
	require.NoError(t, err)
	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))

	// Every always-serialized task field is pinned by the schema.
	for name := range fields {
		assert.Contains(t, props, name, "schema missing field %s", name)
	}
}
