// Package openai implements the assistant provider on the OpenAI chat API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/distria/distria/internal/ai"
)

// DefaultModel is used when none is configured.
const DefaultModel = "gpt-4o-mini"

// Config contains the provider settings.
type Config struct {
	APIKey         string
	Model          string
	BaseURL        string // optional, for OpenAI-compatible endpoints
	ProviderConfig ai.ProviderConfig
}

// Provider implements ai.Provider using the OpenAI chat completion API.
type Provider struct {
	config Config
	client *openai.Client
	logger *slog.Logger
}

// New creates an OpenAI provider.
func New(config Config, logger *slog.Logger) (*Provider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.ProviderConfig.MaxRetries == 0 {
		config.ProviderConfig.MaxRetries = 3
	}
	if config.ProviderConfig.RetryBaseDelay == 0 {
		config.ProviderConfig.RetryBaseDelay = time.Second
	}
	if config.ProviderConfig.RequestTimeout == 0 {
		config.ProviderConfig.RequestTimeout = 60 * time.Second
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	clientConfig.HTTPClient = &http.Client{
		Timeout: config.ProviderConfig.RequestTimeout,
	}

	return &Provider{
		config: config,
		client: openai.NewClientWithConfig(clientConfig),
		logger: logger,
	}, nil
}

// Chat sends the conversation and returns the reply, retrying transient
// failures with exponential backoff.
func (p *Provider) Chat(ctx context.Context, params ai.ChatParams) (*ai.ChatResult, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(params.Messages))
	for _, m := range params.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	req := openai.ChatCompletionRequest{
		Model:     p.config.Model,
		Messages:  messages,
		MaxTokens: params.MaxTokens,
	}

	start := time.Now()
	var lastErr error
	for attempt := 0; attempt <= p.config.ProviderConfig.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := p.config.ProviderConfig.RetryBaseDelay * time.Duration(1<<(attempt-1))
			p.logger.Warn("retrying chat completion",
				"attempt", attempt,
				"delay", delay,
				"error", lastErr)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ai.WrapError("chat", ctx.Err())
			}
		}

		resp, err := p.client.CreateChatCompletion(ctx, req)
		if err != nil {
			lastErr = mapError(err)
			if ai.IsRetryable(lastErr) {
				continue
			}
			return nil, ai.WrapError("chat", lastErr)
		}

		if len(resp.Choices) == 0 {
			return nil, ai.WrapError("chat", fmt.Errorf("empty completion response"))
		}

		result := &ai.ChatResult{
			Content: resp.Choices[0].Message.Content,
			Usage: ai.UsageInfo{
				Model:        resp.Model,
				InputTokens:  resp.Usage.PromptTokens,
				OutputTokens: resp.Usage.CompletionTokens,
				Duration:     time.Since(start),
			},
		}
		p.logger.Debug("chat completion",
			"model", result.Usage.Model,
			"input_tokens", result.Usage.InputTokens,
			"output_tokens", result.Usage.OutputTokens,
			"duration", result.Usage.Duration,
			"user_id", params.UserID)
		return result, nil
	}

	return nil, ai.WrapError("chat", lastErr)
}

// mapError translates API errors to the package error values.
func mapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return ai.ErrUnauthorized
		case http.StatusTooManyRequests:
			return ai.ErrRateLimit
		case http.StatusBadRequest:
			if apiErr.Code == "content_policy_violation" {
				return ai.ErrContentPolicy
			}
			return err
		case http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return ai.ErrUnavailable
		}
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ai.ErrTimeout
	}
	return ai.ErrUnavailable
}
