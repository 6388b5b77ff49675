// Package llm is a minimal text-completion client used by the optional
// remote instruction strategy.
package llm

import (
	"context"
	"time"
)

// Message is one turn of a conversation.
type Message struct {
	Role    string // "user" or "assistant"
	Content string
}

// RequestOptions tunes a single request.
type RequestOptions struct {
	MaxTokens int
}

// Response is a completed reply.
type Response struct {
	Content      string
	InputTokens  int
	OutputTokens int
	Duration     time.Duration
	Model        string
	StopReason   string // "end_turn", "max_tokens", "stop_sequence"
}

// WasTruncated reports whether the reply hit the token limit.
func (r *Response) WasTruncated() bool {
	return r.StopReason == "max_tokens"
}

// Client is a completion provider.
type Client interface {
	Complete(ctx context.Context, systemPrompt string, messages []Message, opts *RequestOptions) (*Response, error)
}
