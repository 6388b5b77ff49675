package llm

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strings"
	"time"

	"BuddyStudio/internal/errors"
)

const (
	anthropicAPIURL  = "https://api.anthropic.com/v1/messages"
	anthropicVersion = "2023-06-01"

	// DefaultModel is used when none is configured.
	DefaultModel = "claude-haiku-4-5"
)

// ErrNoAPIKey is returned by a client built without a key.
var ErrNoAPIKey = errors.New(errors.ErrCodeUnavailable, "no API key configured")

// AnthropicClient talks to the Anthropic messages API.
type AnthropicClient struct {
	apiKey     string
	model      string
	url        string
	httpClient *http.Client
}

// ClientOption configures an AnthropicClient.
type ClientOption func(*AnthropicClient)

// WithBaseURL points the client at another endpoint.
func WithBaseURL(url string) ClientOption {
	return func(c *AnthropicClient) { c.url = url }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *AnthropicClient) { c.httpClient = hc }
}

// NewAnthropicClient creates a client. Instructions are short, so the
// default timeout is a few seconds rather than minutes.
func NewAnthropicClient(apiKey, model string, opts ...ClientOption) *AnthropicClient {
	if model == "" {
		model = DefaultModel
	}
	c := &AnthropicClient{
		apiKey:     apiKey,
		model:      model,
		url:        anthropicAPIURL,
		httpClient: &http.Client{Timeout: 8 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type anthropicRequest struct {
	Model     string         `json:"model"`
	MaxTokens int            `json:"max_tokens"`
	System    string         `json:"system,omitempty"`
	Messages  []anthropicMsg `json:"messages"`
}

type anthropicMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Model      string `json:"model"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

type anthropicError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends one request and returns the concatenated text blocks.
func (c *AnthropicClient) Complete(ctx context.Context, systemPrompt string, messages []Message, opts *RequestOptions) (*Response, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}
	start := time.Now()

	maxTokens := 256
	if opts != nil && opts.MaxTokens > 0 {
		maxTokens = opts.MaxTokens
	}
	msgs := make([]anthropicMsg, len(messages))
	for i, m := range messages {
		msgs[i] = anthropicMsg{Role: m.Role, Content: m.Content}
	}

	body, err := json.Marshal(anthropicRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		System:    systemPrompt,
		Messages:  msgs,
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Wrap(errors.ErrCodeInterrupted, err, "request cancelled")
		}
		return nil, errors.Wrap(errors.ErrCodeUnavailable, err, "request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "read response")
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr anthropicError
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, errors.New(errors.ErrCodeUnavailable, "API error (%d): %s - %s", resp.StatusCode, apiErr.Error.Type, apiErr.Error.Message)
		}
		return nil, errors.New(errors.ErrCodeUnavailable, "API error (%d): %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var apiResp anthropicResponse
	if err := json.Unmarshal(raw, &apiResp); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse response")
	}

	var content strings.Builder
	for _, block := range apiResp.Content {
		if block.Type == "text" {
			content.WriteString(block.Text)
		}
	}

	return &Response{
		Content:      content.String(),
		InputTokens:  apiResp.Usage.InputTokens,
		OutputTokens: apiResp.Usage.OutputTokens,
		Duration:     time.Since(start),
		Model:        apiResp.Model,
		StopReason:   apiResp.StopReason,
	}, nil
}

// CompleteWithRetry retries failed requests with exponential backoff,
// starting at base. Cancellation and a missing key stop at once.
func CompleteWithRetry(ctx context.Context, c Client, systemPrompt string, messages []Message, attempts int, base time.Duration, opts *RequestOptions) (*Response, error) {
	attempts = max(1, attempts)
	var lastErr error
	for i := 0; i < attempts; i++ {
		resp, err := c.Complete(ctx, systemPrompt, messages, opts)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, errors.Wrap(errors.ErrCodeInterrupted, ctx.Err(), "completion cancelled")
		}
		if stderrors.Is(err, ErrNoAPIKey) || i == attempts-1 {
			break
		}
		select {
		case <-time.After(base << uint(i)):
		case <-ctx.Done():
			return nil, errors.Wrap(errors.ErrCodeInterrupted, ctx.Err(), "completion cancelled")
		}
	}
	code := errors.GetCode(lastErr)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	return nil, errors.Wrap(code, lastErr, "completion failed")
}
