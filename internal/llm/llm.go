package llm

import (
	"context"
	"fmt"

	"github.com/ufilesorg/promptly/internal/engine"
)

// Request carries everything a provider call needs beyond the engine
// profile. Images are encoded payloads in caller order: data URIs for
// the OpenAI family, bare base64 for Gemini.
type Request struct {
	System      string
	User        string
	Images      []string
	LowRes      bool
	MaxTokens   int
	Temperature float64
}

// Usage is the provider-reported token accounting for one call
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

// Response is the raw outcome of one provider call
type Response struct {
	Text  string
	Usage Usage
}

// Provider executes a request against one engine family
type Provider interface {
	// Name returns the provider family identifier, used in error
	// context and logs
	Name() string

	// Call performs a single attempt against the engine
	Call(ctx context.Context, profile *engine.Profile, req *Request) (*Response, error)
}

// ProviderCallError is returned after the retry policy is exhausted.
// It carries full context for logs; callers should surface it as an
// opaque failure.
type ProviderCallError struct {
	Provider string
	Err      error
}

func (e *ProviderCallError) Error() string {
	return fmt.Sprintf("provider %s call failed: %v", e.Provider, e.Err)
}

func (e *ProviderCallError) Unwrap() error {
	return e.Err
}
