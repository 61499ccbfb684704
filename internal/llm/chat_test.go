package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockProviderQueueThenFallback(t *testing.T) {
	mock := NewMockProvider(MockReply{Text: "  first  ", Usage: Usage{InputTokens: 10, OutputTokens: 5}})
	mock.Fallback = "fallback"
	ctx := context.Background()

	r, err := mock.Complete(ctx, Prompt{System: "sys", User: "one"})
	require.NoError(t, err)
	assert.Equal(t, "first", r.Text)
	assert.Equal(t, 15, r.Usage.Total())
	assert.Equal(t, "mock", r.Model)

	for range 2 {
		r, err = mock.Complete(ctx, Prompt{User: "again"})
		require.NoError(t, err)
		assert.Equal(t, "fallback", r.Text)
	}
	assert.Equal(t, 3, mock.CallCount())
	assert.Equal(t, "sys", mock.Calls[0].System)
	assert.Equal(t, "again", mock.Calls[2].User)
}

func TestMockProviderEmptyQueue(t *testing.T) {
	_, err := NewMockProvider().Complete(context.Background(), Prompt{})
	var unavail *ErrProviderUnavailable
	assert.True(t, errors.As(err, &unavail), "got %T", err)
}

func TestMockProviderQueuedError(t *testing.T) {
	mock := NewMockProvider()
	mock.Queue(MockReply{Err: &ErrRateLimit{}}, MockReply{Text: "ok"})

	_, err := mock.Complete(context.Background(), Prompt{})
	var rl *ErrRateLimit
	require.True(t, errors.As(err, &rl))

	r, err := mock.Complete(context.Background(), Prompt{})
	require.NoError(t, err)
	assert.Equal(t, "ok", r.Text)
}

func TestBlankReplyIsInvalid(t *testing.T) {
	mock := NewMockProvider(MockReply{Text: " \n\t"})
	_, err := mock.Complete(context.Background(), Prompt{})
	var inv *ErrInvalidResponse
	require.True(t, errors.As(err, &inv))
	assert.ErrorIs(t, err, errEmptyReply)
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "unknown", PurposeFrom(ctx))
	assert.Equal(t, "unknown", PurposeFrom(WithPurpose(ctx, "")))
	assert.Equal(t, "encouragement", PurposeFrom(WithPurpose(ctx, "encouragement")))
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"anthropic without key", Config{Platform: "anthropic"}, true},
		{"anthropic with key", Config{Platform: "anthropic", APIKey: "sk-test"}, false},
		{"deepseek without key", Config{Platform: "deepseek"}, true},
		{"volcengine with key", Config{Platform: "volcengine", APIKey: "ark"}, false},
		{"mock needs no key", Config{Platform: "mock"}, false},
		{"unknown platform", Config{Platform: "unknown", APIKey: "k"}, true},
		{"empty platform", Config{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigResolved(t *testing.T) {
	cfg := Config{Platform: "deepseek"}
	assert.Equal(t, "https://api.deepseek.com/v1", cfg.ResolvedBaseURL())
	assert.Equal(t, "deepseek-chat", cfg.ResolvedModel())

	cfg.BaseURL, cfg.Model = "http://localhost:8080/v1", "deepseek-reasoner"
	assert.Equal(t, "http://localhost:8080/v1", cfg.ResolvedBaseURL())
	assert.Equal(t, "deepseek-reasoner", cfg.ResolvedModel())

	assert.False(t, cfg.Configured())
	assert.True(t, Config{Platform: "mock"}.Configured())
}

func TestModelAliases(t *testing.T) {
	tests := []struct {
		cfg  Config
		want string
	}{
		{Config{Platform: "anthropic"}, "claude-haiku-4-5-20251001"},
		{Config{Platform: "anthropic", Model: "claude-sonnet"}, "claude-sonnet-4-5-20250929"},
		{Config{Platform: "anthropic", Model: "claude-opus-4-1"}, "claude-opus-4-1"},
		{Config{Platform: "gemini"}, "gemini-2.5-flash"},
		{Config{Platform: "gemini", Model: "gemini-pro"}, "gemini-2.5-pro"},
		{Config{Platform: "openrouter", Model: "claude-haiku"}, "claude-haiku"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.cfg.ResolvedModel(), "%+v", tt.cfg)
	}
}

func TestDiscoverConfig(t *testing.T) {
	for _, name := range PlatformNames() {
		if env := Platforms[name].KeyEnv; env != "" {
			t.Setenv(env, "")
		}
	}
	_, ok := DiscoverConfig()
	require.False(t, ok)

	t.Setenv("ARK_API_KEY", "ark-key")
	t.Setenv("OPENROUTER_API_KEY", "or-key")
	cfg, ok := DiscoverConfig()
	require.True(t, ok)
	assert.Equal(t, "openrouter", cfg.Platform)
	assert.Equal(t, "or-key", cfg.APIKey)
}

func TestNewProvider(t *testing.T) {
	repo := &recordingRepo{}
	p, err := NewProvider(context.Background(), Config{Platform: "mock", Retry: fastRetry()}, repo, nil)
	require.NoError(t, err)

	r, err := p.Complete(context.Background(), Prompt{User: "hi"})
	require.NoError(t, err)
	assert.Equal(t, mockMessage, r.Text)
	require.Len(t, repo.events, 1)
	assert.Equal(t, "mock", repo.events[0].Provider)

	_, err = NewProvider(context.Background(), Config{Platform: "deepseek"}, nil, nil)
	assert.Error(t, err)

	p, err = NewProvider(context.Background(), Config{Platform: "volcengine", APIKey: "ark"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "doubao-pro-4k", p.Model())

	p, err = NewProvider(context.Background(), Config{Platform: "anthropic", APIKey: "sk"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "claude-haiku-4-5-20251001", p.Model())
}
