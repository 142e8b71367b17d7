package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/ufilesorg/promptly/internal/engine"
	"github.com/ufilesorg/promptly/internal/llm"
)

// Provider dispatches to the Gemini generate-content endpoint through
// the vendor proxy named in the engine profile
type Provider struct{}

// New creates a new Gemini provider
func New() *Provider {
	return &Provider{}
}

// Name returns the provider name
func (p *Provider) Name() string {
	return "gemini"
}

// Call performs one generate-content request. Images travel as inline
// binary parts rather than URLs.
func (p *Provider) Call(ctx context.Context, profile *engine.Profile, req *llm.Request) (*llm.Response, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      profile.APIKey(),
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: profile.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	contents := []*genai.Content{
		{Parts: llm.GeminiParts(req.System, req.User, req.Images)},
	}

	generationConfig := &genai.GenerateContentConfig{
		Temperature: float32Ptr(float32(req.Temperature)),
	}
	if req.MaxTokens > 0 {
		generationConfig.MaxOutputTokens = int32(req.MaxTokens)
	}

	result, err := client.Models.GenerateContent(ctx, profile.Name, contents, generationConfig)
	if err != nil {
		return nil, fmt.Errorf("Gemini API error: %w", err)
	}

	var text string
	if len(result.Candidates) > 0 && result.Candidates[0].Content != nil {
		for _, part := range result.Candidates[0].Content.Parts {
			text += part.Text
		}
	}

	usage := llm.Usage{}
	if result.UsageMetadata != nil {
		usage.PromptTokens = int(result.UsageMetadata.PromptTokenCount)
		usage.CompletionTokens = int(result.UsageMetadata.CandidatesTokenCount)
	}

	return &llm.Response{Text: text, Usage: usage}, nil
}

func float32Ptr(f float32) *float32 {
	return &f
}
