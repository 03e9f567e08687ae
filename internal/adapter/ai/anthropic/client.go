// Package anthropic implements the completion gateway against the
// Anthropic messages API. One request per call, fixed sampling
// temperature, no retry: a failed call surfaces immediately and every
// retry is a fresh, explicit user action.
package anthropic

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/interview-oracle/api/internal/adapter/observability"
	"github.com/interview-oracle/api/internal/config"
	"github.com/interview-oracle/api/internal/domain"
)

const temperature = 0.7

// bodySnippetLen bounds error-body previews attached to gateway errors.
const bodySnippetLen = 500

// Client is a domain.CompletionClient backed by the messages endpoint.
type Client struct {
	cfg config.Config
	hc  *http.Client
}

// New constructs a client with an OTEL-instrumented transport and the
// configured completion timeout.
func New(cfg config.Config) *Client {
	timeout := cfg.CompletionTimeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &Client{
		cfg: cfg,
		hc: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	Messages    []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

// Complete sends the prompt as a single user message and returns the
// first content block's text. Non-2xx statuses and transport failures
// are both surfaced as domain.ErrGateway.
func (c *Client) Complete(ctx domain.Context, prompt string, maxTokens int) (string, error) {
	if c.cfg.AnthropicAPIKey == "" {
		return "", fmt.Errorf("%w: ANTHROPIC_API_KEY missing", domain.ErrInvalidArgument)
	}
	body, err := json.Marshal(messagesRequest{
		Model:       c.cfg.CompletionModel,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		Messages:    []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("%w: marshal request: %v", domain.ErrInternal, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.AnthropicBaseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", domain.ErrInternal, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.cfg.AnthropicAPIKey)
	req.Header.Set("anthropic-version", c.cfg.AnthropicVersion)

	start := time.Now()
	resp, err := c.hc.Do(req)
	observability.CompletionRequestDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		observability.CompletionRequestsTotal.WithLabelValues("transport_error").Inc()
		return "", fmt.Errorf("%w: %v", domain.ErrGateway, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := readSnippet(resp.Body, bodySnippetLen)
		observability.CompletionRequestsTotal.WithLabelValues("http_error").Inc()
		slog.Error("completion endpoint rejected request",
			slog.Int("status", resp.StatusCode),
			slog.String("body", snippet))
		return "", fmt.Errorf("%w: status %d: %s", domain.ErrGateway, resp.StatusCode, snippet)
	}

	var envelope messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		observability.CompletionRequestsTotal.WithLabelValues("bad_envelope").Inc()
		return "", fmt.Errorf("%w: decode envelope: %v", domain.ErrGateway, err)
	}
	if len(envelope.Content) == 0 {
		observability.CompletionRequestsTotal.WithLabelValues("bad_envelope").Inc()
		return "", fmt.Errorf("%w: empty content array", domain.ErrGateway)
	}
	observability.CompletionRequestsTotal.WithLabelValues("ok").Inc()
	return envelope.Content[0].Text, nil
}

// readSnippet reads up to n bytes from r for diagnostics.
func readSnippet(r io.Reader, n int) string {
	b, _ := io.ReadAll(io.LimitReader(r, int64(n)))
	return string(b)
}
