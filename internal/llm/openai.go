package llm

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// openAIChat speaks the chat completions API of OpenAI and of every
// compatible platform in Platforms.
type openAIChat struct {
	client *openai.Client
	model  string
	// legacyMaxTokens sends max_tokens instead of max_completion_tokens.
	// Compatible platforms only understand the former.
	legacyMaxTokens bool
}

func newOpenAIChat(cfg Config) (*openAIChat, error) {
	p, ok := Platforms[cfg.Platform]
	if !ok || !p.Compatible {
		return nil, fmt.Errorf("%q is not an OpenAI-compatible platform", cfg.Platform)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s API key is required", p.DisplayName)
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	if u := cfg.ResolvedBaseURL(); u != "" {
		oc.BaseURL = u
	}
	return &openAIChat{
		client:          openai.NewClientWithConfig(oc),
		model:           cfg.ResolvedModel(),
		legacyMaxTokens: p.Name != "openai",
	}, nil
}

func (o *openAIChat) Complete(ctx context.Context, p Prompt) (*Reply, error) {
	req := openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: float32(p.Temperature),
	}
	if p.System != "" {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: p.System})
	}
	req.Messages = append(req.Messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: p.User})
	if o.legacyMaxTokens {
		req.MaxTokens = p.MaxTokens
	} else {
		req.MaxCompletionTokens = p.MaxTokens
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, openAIError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, &ErrInvalidResponse{Err: errors.New("no choices in response")}
	}
	choice := resp.Choices[0]
	usage := Usage{InputTokens: resp.Usage.PromptTokens, OutputTokens: resp.Usage.CompletionTokens}
	return newReply(choice.Message.Content, resp.Model, usage, choice.FinishReason == openai.FinishReasonLength)
}

func (o *openAIChat) Model() string { return o.model }

func openAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if mapped := classify(apiErr.HTTPStatusCode, nil, err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("chat completion: %w", err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if mapped := classify(reqErr.HTTPStatusCode, nil, err); mapped != nil {
			return mapped
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &ErrProviderUnavailable{Err: err}
}
