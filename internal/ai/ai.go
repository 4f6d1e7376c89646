// Package ai defines the provider interface behind the chat assistant.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Provider is a generative-text backend for the assistant.
type Provider interface {
	// Chat sends a conversation and returns the assistant's reply.
	Chat(ctx context.Context, params ChatParams) (*ChatResult, error)
}

// Message roles, matching the OpenAI chat wire values.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatParams contains the full conversation to complete. Messages must be
// ordered oldest first and include the system prompt.
type ChatParams struct {
	Messages  []Message
	MaxTokens int
	UserID    string // for usage attribution in logs
}

// ChatResult is the assistant's reply plus usage accounting.
type ChatResult struct {
	Content string
	Usage   UsageInfo
}

// UsageInfo tracks token usage for monitoring.
type UsageInfo struct {
	Model        string
	InputTokens  int
	OutputTokens int
	Duration     time.Duration
}

// ProviderConfig contains common tuning for providers.
type ProviderConfig struct {
	MaxRetries     int           // retry attempts for transient errors
	RetryBaseDelay time.Duration // base delay for exponential backoff
	RequestTimeout time.Duration // per-request timeout
}

// Error values for provider operations.
var (
	// ErrRateLimit indicates the API rate limit has been exceeded.
	ErrRateLimit = errors.New("ai provider rate limit exceeded")

	// ErrTimeout indicates the request timed out.
	ErrTimeout = errors.New("ai request timed out")

	// ErrUnavailable indicates the AI service is temporarily unavailable.
	ErrUnavailable = errors.New("ai service temporarily unavailable")

	// ErrUnauthorized indicates invalid API credentials.
	ErrUnauthorized = errors.New("ai provider authentication failed")

	// ErrContentPolicy indicates the request was refused by content policy.
	ErrContentPolicy = errors.New("request violates content policy")
)

// IsRetryable reports whether the error is transient.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRateLimit) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrUnavailable)
}

// WrapError wraps an error with the AI operation that produced it.
func WrapError(operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("ai %s: %w", operation, err)
}
