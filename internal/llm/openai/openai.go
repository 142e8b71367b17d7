package openai

import (
	"context"
	"fmt"

	oai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/ufilesorg/promptly/internal/engine"
	"github.com/ufilesorg/promptly/internal/llm"
)

// Provider dispatches to OpenAI-compatible chat completion endpoints.
// The engine profile supplies the base URL, so the same provider
// serves api.openai.com and vendor proxies alike.
type Provider struct{}

// New creates a new OpenAI-compatible provider
func New() *Provider {
	return &Provider{}
}

// Name returns the provider name
func (p *Provider) Name() string {
	return "openai"
}

// Call performs one chat completion against the profile's endpoint
func (p *Provider) Call(ctx context.Context, profile *engine.Profile, req *llm.Request) (*llm.Response, error) {
	client := oai.NewClient(
		option.WithAPIKey(profile.APIKey()),
		option.WithBaseURL(profile.BaseURL),
	)

	params := oai.ChatCompletionNewParams{
		Model:       oai.ChatModel(profile.Name),
		Messages:    llm.OpenAIMessages(req.System, req.User, req.Images, req.LowRes),
		Temperature: oai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = oai.Int(int64(req.MaxTokens))
	}

	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices returned from API")
	}

	return &llm.Response{
		Text: resp.Choices[0].Message.Content,
		Usage: llm.Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
		},
	}, nil
}
