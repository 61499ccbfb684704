package llm

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

type geminiChat struct {
	client *genai.Client
	model  string
}

func newGeminiChat(ctx context.Context, cfg Config) (*geminiChat, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions.BaseURL = cfg.BaseURL
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}
	return &geminiChat{client: client, model: cfg.ResolvedModel()}, nil
}

func (g *geminiChat) Complete(ctx context.Context, p Prompt) (*Reply, error) {
	gc := &genai.GenerateContentConfig{}
	if p.MaxTokens > 0 {
		gc.MaxOutputTokens = int32(p.MaxTokens)
	}
	if p.Temperature > 0 {
		t := float32(p.Temperature)
		gc.Temperature = &t
	}
	if p.System != "" {
		gc.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: p.System}}}
	}
	contents := []*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: p.User}}}}

	res, err := g.client.Models.GenerateContent(ctx, g.model, contents, gc)
	if err != nil {
		return nil, geminiError(err)
	}

	var usage Usage
	if res.UsageMetadata != nil {
		usage.InputTokens = int(res.UsageMetadata.PromptTokenCount)
		usage.OutputTokens = int(res.UsageMetadata.CandidatesTokenCount)
	}
	truncated := len(res.Candidates) > 0 && res.Candidates[0].FinishReason == "MAX_TOKENS"
	return newReply(res.Text(), g.model, usage, truncated)
}

func (g *geminiChat) Model() string { return g.model }

func geminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if mapped := classify(apiErr.Code, nil, err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("gemini: %w", err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &ErrProviderUnavailable{Err: err}
}
