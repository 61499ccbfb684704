package llm

import (
	"context"
	"fmt"

	"github.com/abhisek/studyhall/internal/logger"
)

// mockMessage is what the mock platform answers with.
const mockMessage = "Every question you finish today is a step forward. Keep going! 🌱"

// NewProvider builds the Provider for cfg.Platform. Calls go through
// retry, then request logging when recorder is non-nil, then the platform
// client.
func NewProvider(ctx context.Context, cfg Config, recorder EventRecorder, log *logger.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		base Provider
		err  error
	)
	switch p := Platforms[cfg.Platform]; {
	case p.Name == "anthropic":
		base, err = newAnthropicChat(cfg)
	case p.Name == "gemini":
		base, err = newGeminiChat(ctx, cfg)
	case p.Name == "mock":
		m := NewMockProvider()
		m.Fallback = mockMessage
		base = m
	case p.Compatible:
		base, err = newOpenAIChat(cfg)
	default:
		return nil, fmt.Errorf("unknown LLM platform: %q", cfg.Platform)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Platform, err)
	}

	if recorder != nil {
		base = WithLogging(base, cfg.Platform, recorder, log)
	}
	return WithRetry(base, cfg.Retry), nil
}
