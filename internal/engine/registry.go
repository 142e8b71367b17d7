package engine

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// Family identifies which dispatch path an engine uses
type Family string

const (
	FamilyOpenAI     Family = "openai"
	FamilyGemini     Family = "gemini"
	FamilyPerplexity Family = "perplexity"
	FamilyMetisBot   Family = "metisbot"
)

// Profile holds the static configuration and price table for one engine
type Profile struct {
	Name        string
	BaseURL     string
	Family      Family
	InputPrice  float64 // per 1K input tokens
	OutputPrice float64 // per 1K output tokens
	ImagePrice  float64 // per image
	RatePerSec  float64 // dispatcher rate limit, 0 means default
	apiKeyEnv   string
}

// APIKey returns the credential for this profile from the environment
func (p *Profile) APIKey() string {
	return os.Getenv(p.apiKeyEnv)
}

// Cost computes the coin price of a call from reported usage
func (p *Profile) Cost(inputTokens, outputTokens, imageCount int) float64 {
	return float64(inputTokens)*p.InputPrice/1000 +
		float64(outputTokens)*p.OutputPrice/1000 +
		float64(imageCount)*p.ImagePrice
}

// UnknownEngineError is returned when a model name has no catalog entry
type UnknownEngineError struct {
	Name string
}

func (e *UnknownEngineError) Error() string {
	return fmt.Sprintf("unknown engine: %s", e.Name)
}

const (
	metisBaseURL      = "https://api.metisai.ir/openai/v1"
	perplexityBaseURL = "https://api.perplexity.ai"

	// gpt-4o image price from the source catalog: 85 tiles * 1.5 / 1000
	gptImagePrice = 85 * 1.5 / 1000
)

// catalog is the canonical price table. Several profiles share the Metis
// proxy credential; grok-2 routes through it too even though the name
// suggests x.ai (intentional vendor consolidation).
var catalog = map[string]*Profile{
	"gpt-4o": {
		Name: "gpt-4o", BaseURL: metisBaseURL, Family: FamilyOpenAI,
		InputPrice: 0.27, OutputPrice: 1.5, ImagePrice: gptImagePrice,
		apiKeyEnv: "METIS_API_KEY",
	},
	"gpt-4o-mini": {
		Name: "gpt-4o-mini", BaseURL: metisBaseURL, Family: FamilyOpenAI,
		InputPrice: 0.02, OutputPrice: 0.07, ImagePrice: gptImagePrice,
		apiKeyEnv: "METIS_API_KEY",
	},
	"o3-mini": {
		Name: "o3-mini", BaseURL: metisBaseURL, Family: FamilyOpenAI,
		InputPrice: 0.12, OutputPrice: 0.48, ImagePrice: gptImagePrice,
		apiKeyEnv: "METIS_API_KEY",
	},
	"gemini-1.5-flash": {
		Name: "gemini-1.5-flash", BaseURL: "https://api.metisai.ir", Family: FamilyGemini,
		InputPrice: 0.01, OutputPrice: 0.03, ImagePrice: 0.00004,
		apiKeyEnv: "METIS_API_KEY",
	},
	"gemini-1.5-flash-8b": {
		Name: "gemini-1.5-flash-8b", BaseURL: "https://api.metisai.ir", Family: FamilyGemini,
		InputPrice: 0.0, OutputPrice: 0.02, ImagePrice: 0.00004,
		apiKeyEnv: "METIS_API_KEY",
	},
	"gemini-1.5-pro": {
		Name: "gemini-1.5-pro", BaseURL: "https://api.metisai.ir", Family: FamilyGemini,
		InputPrice: 0.4, OutputPrice: 1.5, ImagePrice: 0.0006575,
		apiKeyEnv: "METIS_API_KEY",
	},
	"sonar": {
		Name: "sonar", BaseURL: perplexityBaseURL, Family: FamilyPerplexity,
		InputPrice: 0.1, OutputPrice: 0.1,
		apiKeyEnv: "PERPLEXITY_API_KEY",
	},
	"grok-2": {
		Name: "grok-2", BaseURL: metisBaseURL, Family: FamilyOpenAI,
		InputPrice: 0.25, OutputPrice: 1.5,
		apiKeyEnv: "METIS_API_KEY",
	},
	"metis-bot": {
		Name: "metis-bot", BaseURL: "https://api.metisai.ir", Family: FamilyMetisBot,
		// the bot API reports no usage, so calls on this path cost zero
		apiKeyEnv: "METIS_API_KEY",
	},
}

// Resolve looks up an engine profile by model name (case-insensitive).
// It returns UnknownEngineError for names outside the catalog.
func Resolve(name string) (*Profile, error) {
	profile, ok := catalog[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, &UnknownEngineError{Name: name}
	}
	return profile, nil
}

// Names returns the sorted set of known engine names
func Names() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
