package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func anthropicServer(t *testing.T, handler http.HandlerFunc) *anthropicChat {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := newAnthropicChat(Config{Platform: "anthropic", APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)
	return c
}

func anthropicErrorBody(w http.ResponseWriter, status int, typ, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"type":  "error",
		"error": map[string]any{"type": typ, "message": msg},
	})
}

func TestAnthropicComplete(t *testing.T) {
	var body map[string]any
	c := anthropicServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":   "msg_test",
			"type": "message",
			"role": "assistant",
			"content": []map[string]any{
				{"type": "text", "text": "Seven days straight. "},
				{"type": "text", "text": "Discipline is showing 💪"},
			},
			"model":       "claude-haiku-4-5-20251001",
			"stop_reason": "end_turn",
			"usage":       map[string]any{"input_tokens": 50, "output_tokens": 30},
		})
	})

	reply, err := c.Complete(context.Background(), Prompt{
		System:    "You are a strict but caring teacher.",
		User:      "The student hit a 7 day streak.",
		MaxTokens: 256,
	})
	require.NoError(t, err)
	assert.Equal(t, "Seven days straight. Discipline is showing 💪", reply.Text)
	assert.Equal(t, Usage{InputTokens: 50, OutputTokens: 30}, reply.Usage)
	assert.False(t, reply.Truncated)

	assert.Equal(t, "claude-haiku-4-5-20251001", body["model"])
	assert.Equal(t, float64(256), body["max_tokens"])
	system, _ := body["system"].([]any)
	require.Len(t, system, 1)
}

func TestAnthropicTruncatedAndDefaultMaxTokens(t *testing.T) {
	var body map[string]any
	c := anthropicServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id": "msg_test", "type": "message", "role": "assistant",
			"content":     []map[string]any{{"type": "text", "text": "Keep"}},
			"model":       "claude-haiku-4-5-20251001",
			"stop_reason": "max_tokens",
			"usage":       map[string]any{"input_tokens": 5, "output_tokens": 1},
		})
	})

	reply, err := c.Complete(context.Background(), Prompt{User: "go"})
	require.NoError(t, err)
	assert.True(t, reply.Truncated)
	assert.Equal(t, float64(defaultMaxTokens), body["max_tokens"])
}

func TestAnthropicErrors(t *testing.T) {
	t.Run("rate limit with retry-after", func(t *testing.T) {
		c := anthropicServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", "7")
			anthropicErrorBody(w, http.StatusTooManyRequests, "rate_limit_error", "Rate limit exceeded")
		})
		_, err := c.Complete(context.Background(), Prompt{User: "test"})
		var rl *ErrRateLimit
		require.True(t, errors.As(err, &rl), "got %T (%v)", err, err)
		assert.Equal(t, 7*time.Second, rl.RetryAfter)
	})

	t.Run("unauthorized", func(t *testing.T) {
		c := anthropicServer(t, func(w http.ResponseWriter, r *http.Request) {
			anthropicErrorBody(w, http.StatusUnauthorized, "authentication_error", "invalid x-api-key")
		})
		_, err := c.Complete(context.Background(), Prompt{User: "test"})
		var auth *ErrAuthentication
		require.True(t, errors.As(err, &auth), "got %T (%v)", err, err)
		assert.Equal(t, 401, auth.StatusCode)
	})

	t.Run("server error", func(t *testing.T) {
		c := anthropicServer(t, func(w http.ResponseWriter, r *http.Request) {
			anthropicErrorBody(w, http.StatusInternalServerError, "api_error", "Internal server error")
		})
		_, err := c.Complete(context.Background(), Prompt{User: "test"})
		var unavail *ErrProviderUnavailable
		assert.True(t, errors.As(err, &unavail), "got %T (%v)", err, err)
	})
}

func TestNewAnthropicChatRequiresKey(t *testing.T) {
	_, err := newAnthropicChat(Config{Platform: "anthropic"})
	assert.Error(t, err)
}
