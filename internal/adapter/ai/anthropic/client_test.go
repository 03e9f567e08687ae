package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/interview-oracle/api/internal/config"
	"github.com/interview-oracle/api/internal/domain"
)

func testConfig(baseURL string) config.Config {
	return config.Config{
		AnthropicAPIKey:   "test-key",
		AnthropicBaseURL:  baseURL,
		AnthropicVersion:  "2023-06-01",
		CompletionModel:   "claude-3-haiku-20240307",
		CompletionTimeout: 5 * time.Second,
	}
}

func TestComplete_Success(t *testing.T) {
	t.Parallel()

	var gotReq messagesRequest
	var gotPath, gotKey, gotVersion string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":[{"text":"{\"behavioral\":[]}"}]}`))
	}))
	t.Cleanup(ts.Close)

	c := New(testConfig(ts.URL))
	out, err := c.Complete(context.Background(), "the prompt", 1500)
	require.NoError(t, err)
	assert.Equal(t, `{"behavioral":[]}`, out)

	assert.Equal(t, "/v1/messages", gotPath)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "2023-06-01", gotVersion)
	assert.Equal(t, "claude-3-haiku-20240307", gotReq.Model)
	assert.Equal(t, 1500, gotReq.MaxTokens)
	assert.InDelta(t, temperature, gotReq.Temperature, 0.001)
	require.Len(t, gotReq.Messages, 1)
	assert.Equal(t, "user", gotReq.Messages[0].Role)
	assert.Equal(t, "the prompt", gotReq.Messages[0].Content)
}

func TestComplete_HTTPErrorIsGateway(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"type":"rate_limit_error"}}`))
	}))
	t.Cleanup(ts.Close)

	c := New(testConfig(ts.URL))
	_, err := c.Complete(context.Background(), "p", 100)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGateway)
	assert.Contains(t, err.Error(), "status 429")
	assert.Contains(t, err.Error(), "rate_limit_error")
}

func TestComplete_BadEnvelopeIsGateway(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{"not_json", "plain text"},
		{"empty_content", `{"content":[]}`},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			t.Cleanup(ts.Close)

			c := New(testConfig(ts.URL))
			_, err := c.Complete(context.Background(), "p", 100)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrGateway)
		})
	}
}

func TestComplete_TransportErrorIsGateway(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	ts.Close()

	c := New(testConfig(ts.URL))
	_, err := c.Complete(context.Background(), "p", 100)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGateway)
}

func TestComplete_MissingAPIKey(t *testing.T) {
	t.Parallel()

	cfg := testConfig("http://localhost:0")
	cfg.AnthropicAPIKey = ""
	c := New(cfg)
	_, err := c.Complete(context.Background(), "p", 100)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}
