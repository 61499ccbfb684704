package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func geminiServer(t *testing.T, handler http.HandlerFunc) *geminiChat {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := newGeminiChat(context.Background(), Config{Platform: "gemini", APIKey: "g-key", BaseURL: server.URL})
	require.NoError(t, err)
	return c
}

func TestGeminiComplete(t *testing.T) {
	var path string
	var body map[string]any
	c := geminiServer(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content":      map[string]any{"role": "model", "parts": []map[string]any{{"text": "Halfway there, keep going!"}}},
				"finishReason": "STOP",
			}},
			"usageMetadata": map[string]any{"promptTokenCount": 20, "candidatesTokenCount": 8, "totalTokenCount": 28},
		})
	})
	assert.Equal(t, "gemini-2.5-flash", c.Model())

	reply, err := c.Complete(context.Background(), Prompt{System: "Be upbeat.", User: "10 of 20 done", MaxTokens: 100})
	require.NoError(t, err)
	assert.Equal(t, "Halfway there, keep going!", reply.Text)
	assert.Equal(t, Usage{InputTokens: 20, OutputTokens: 8}, reply.Usage)
	assert.False(t, reply.Truncated)

	assert.True(t, strings.HasSuffix(path, "models/gemini-2.5-flash:generateContent"), path)
	assert.Contains(t, body, "systemInstruction")
}

func TestGeminiUnauthorized(t *testing.T) {
	c := geminiServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": 403, "message": "API key not valid", "status": "PERMISSION_DENIED"},
		})
	})
	_, err := c.Complete(context.Background(), Prompt{User: "hi"})
	var auth *ErrAuthentication
	require.True(t, errors.As(err, &auth), "got %T (%v)", err, err)
	assert.Equal(t, 403, auth.StatusCode)
}

func TestNewGeminiChatRequiresKey(t *testing.T) {
	_, err := newGeminiChat(context.Background(), Config{Platform: "gemini"})
	assert.Error(t, err)
}
