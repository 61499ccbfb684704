package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// defaultMaxTokens applies when a Prompt leaves MaxTokens unset. The
// Messages API requires a value.
const defaultMaxTokens = 512

type anthropicChat struct {
	client anthropic.Client
	model  string
}

func newAnthropicChat(cfg Config) (*anthropicChat, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		// WithRetry owns retries.
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &anthropicChat{client: anthropic.NewClient(opts...), model: cfg.ResolvedModel()}, nil
}

func (a *anthropicChat) Complete(ctx context.Context, p Prompt) (*Reply, error) {
	maxTokens := p.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(p.User)),
		},
	}
	if p.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: p.System}}
	}
	if p.Temperature > 0 {
		params.Temperature = anthropic.Float(p.Temperature)
	}

	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return nil, anthropicError(err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	usage := Usage{InputTokens: int(msg.Usage.InputTokens), OutputTokens: int(msg.Usage.OutputTokens)}
	return newReply(text.String(), string(msg.Model), usage, msg.StopReason == "max_tokens")
}

func (a *anthropicChat) Model() string { return a.model }

func anthropicError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		var h http.Header
		if apiErr.Response != nil {
			h = apiErr.Response.Header
		}
		if mapped := classify(apiErr.StatusCode, h, err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("anthropic: %w", err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &ErrProviderUnavailable{Err: err}
}
