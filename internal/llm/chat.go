// Package llm sends short chat prompts to hosted language models and
// returns their text replies. Every platform sits behind Provider; retry
// and request logging are layered on as decorators by NewProvider.
package llm

import (
	"context"
	"errors"
	"strings"
)

// Provider completes a single-turn chat prompt.
type Provider interface {
	Complete(ctx context.Context, p Prompt) (*Reply, error)
	// Model is the model ID requests are sent to.
	Model() string
}

// Prompt is one system instruction plus one user message.
type Prompt struct {
	System string
	User   string
	// MaxTokens caps the reply length. Zero uses the platform default.
	MaxTokens   int
	Temperature float64
}

// Reply is a model's answer to a Prompt.
type Reply struct {
	Text  string
	Model string
	Usage Usage
	// Truncated is set when the reply stopped at MaxTokens.
	Truncated bool
}

// Usage is the token accounting of one call.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Total returns input plus output tokens.
func (u Usage) Total() int { return u.InputTokens + u.OutputTokens }

var errEmptyReply = errors.New("empty reply")

// newReply trims text and rejects a blank answer as ErrInvalidResponse.
func newReply(text, model string, usage Usage, truncated bool) (*Reply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &ErrInvalidResponse{Err: errEmptyReply}
	}
	return &Reply{Text: text, Model: model, Usage: usage, Truncated: truncated}, nil
}
