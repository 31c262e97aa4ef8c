package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Deokateoer1/ksef-checklist-builder/internal/clierr"
)

// testClient wires a Client to the test server with sleeping disabled.
func testClient(t *testing.T, srv *httptest.Server) (*Client, *[]time.Duration) {
	t.Helper()
	var slept []time.Duration
	c := New(srv.URL, 2*time.Second)
	c.sleep = func(d time.Duration) { slept = append(slept, d) }
	return c, &slept
}

func TestGetStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/stats", r.URL.Path)
		_ = json.NewEncoder(w).Encode(Status{
			Status: "online", KSeFConnected: true, DBHealthy: true, RedisQueue: 3, ProcessedToday: 42,
		})
	}))
	defer srv.Close()

	c, _ := testClient(t, srv)
	s, err := c.GetStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "online", s.Status)
	assert.True(t, s.KSeFConnected)
	assert.Equal(t, 42, s.ProcessedToday)
}

func TestRetryOnRateLimitThenSuccess(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls <= maxRetries {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_ = json.NewEncoder(w).Encode(Status{Status: "online"})
	}))
	defer srv.Close()

	// Rate limiting exhausts every retry; the last one still lands.
	c, slept := testClient(t, srv)
	s, err := c.GetStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "online", s.Status)
	assert.Equal(t, maxRetries+1, calls)

	// Backoff doubles before each retry of the initial attempt.
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, *slept)
}

func TestRetryGivesUpAfterMaxAttempts(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c, _ := testClient(t, srv)
	_, err := c.GetStatus(context.Background())
	require.Error(t, err)
	assert.Equal(t, maxRetries+1, calls)

	var cliErr *clierr.Error
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, clierr.AgentOffline, cliErr.Code)
}

func TestServerErrorFailsImmediately(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, _ := testClient(t, srv)
	_, err := c.GetStatus(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestUnreachableAgentIsOffline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	srv.Close() // nothing listening anymore

	c, slept := testClient(t, srv)
	_, err := c.GetStatus(context.Background())
	var cliErr *clierr.Error
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, clierr.AgentOffline, cliErr.Code)
	// Transport errors are retried before the offline verdict.
	assert.Len(t, *slept, maxRetries)
}

func TestUpdateTaskStatusPayload(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/task-update", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, _ := testClient(t, srv)
	require.NoError(t, c.UpdateTaskStatus(context.Background(), "task-7", true))
	assert.Equal(t, "task-7", got["taskId"])
	assert.Equal(t, true, got["completed"])
}

func TestGetLogs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/logs", r.URL.Path)
		_ = json.NewEncoder(w).Encode([]LogEntry{
			{ID: "1", Text: "invoice 42 submitted", Time: "10:00", Level: "info"},
			{ID: "2", Text: "KSeF returned 429, backing off", Time: "10:01", Level: "warn"},
		})
	}))
	defer srv.Close()

	c, _ := testClient(t, srv)
	entries, err := c.GetLogs(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "warn", entries[1].Level)
}

func TestTriggerSyncAndRotateToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		switch r.URL.Path {
		case "/api/sync":
			_, _ = w.Write([]byte(`{"queued":5}`))
		case "/api/auth/rotate":
			_, _ = w.Write([]byte(`{"rotated":true}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c, _ := testClient(t, srv)
	sync, err := c.TriggerSync(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"queued":5}`, string(sync))

	rotated, err := c.RotateToken(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"rotated":true}`, string(rotated))
}
