package perplexity

import (
	"context"
	"fmt"

	pplx "github.com/sgaunet/perplexity-go/v2"

	"github.com/ufilesorg/promptly/internal/engine"
	"github.com/ufilesorg/promptly/internal/llm"
)

// Provider dispatches to Perplexity's sonar models. Image payloads are
// not supported on this path and are ignored.
type Provider struct{}

// New creates a new Perplexity provider
func New() *Provider {
	return &Provider{}
}

// Name returns the provider name
func (p *Provider) Name() string {
	return "perplexity"
}

// Call performs one completion request against the Perplexity API
func (p *Provider) Call(ctx context.Context, profile *engine.Profile, req *llm.Request) (*llm.Response, error) {
	client := pplx.NewClient(profile.APIKey())

	messages := []pplx.Message{}
	if req.System != "" {
		messages = append(messages, pplx.Message{Role: "system", Content: req.System})
	}
	messages = append(messages, pplx.Message{Role: "user", Content: req.User})

	opts := []pplx.CompletionRequestOption{
		pplx.WithMessages(messages),
		pplx.WithModel(profile.Name),
		pplx.WithTemperature(req.Temperature),
	}
	if req.MaxTokens > 0 {
		opts = append(opts, pplx.WithMaxTokens(req.MaxTokens))
	}

	resp, err := client.SendCompletionRequest(pplx.NewCompletionRequest(opts...))
	if err != nil {
		return nil, fmt.Errorf("Perplexity API error: %w", err)
	}

	content := resp.GetLastContent()
	if content == "" {
		return nil, fmt.Errorf("no choices returned from API")
	}

	return &llm.Response{
		Text: content,
		Usage: llm.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
		},
	}, nil
}
