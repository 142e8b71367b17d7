package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ufilesorg/promptly/internal/cache"
	"github.com/ufilesorg/promptly/internal/engine"
	"github.com/ufilesorg/promptly/internal/imaging"
	"github.com/ufilesorg/promptly/internal/llm"
	"github.com/ufilesorg/promptly/internal/logger"
	"github.com/ufilesorg/promptly/internal/prompt"
	"github.com/ufilesorg/promptly/internal/strapi"
)

const (
	// DefaultTemperature keeps completions near-deterministic, which
	// suits structured-answer extraction
	DefaultTemperature = 0.1

	imageBudgetKB = 100
)

// Dispatcher is the provider dispatch contract consumed by the service
type Dispatcher interface {
	Dispatch(ctx context.Context, req *llm.Request, modelName, engineOverride string) (*llm.Response, *engine.Profile, error)
}

// Encoder is the image encoding contract consumed by the service
type Encoder interface {
	Encode(ctx context.Context, imageURL string, opts imaging.Options) (string, error)
}

// AnswerOptions tunes a single pipeline call
type AnswerOptions struct {
	Engine      string            // overrides the template's model
	ImageURLs   []string          // ordered vision inputs
	Variables   map[string]string // render variables
	MaxTokens   int
	Temperature *float64 // nil means DefaultTemperature
	HighRes     bool     // disable the low-detail image hint
}

// TemplateStore is the listing contract consumed by the search path
type TemplateStore interface {
	ListTemplates(ctx context.Context, keys []string) ([]strapi.Template, error)
}

// AnswerService runs the full render-dispatch-normalize pipeline
type AnswerService struct {
	renderer   *prompt.Renderer
	store      TemplateStore
	encoder    Encoder
	dispatcher Dispatcher
	answers    *cache.Answers
	answerTTL  time.Duration
}

// NewAnswerService creates the pipeline service
func NewAnswerService(renderer *prompt.Renderer, store TemplateStore, encoder Encoder, dispatcher Dispatcher, answers *cache.Answers, answerTTL time.Duration) *AnswerService {
	return &AnswerService{
		renderer:   renderer,
		store:      store,
		encoder:    encoder,
		dispatcher: dispatcher,
		answers:    answers,
		answerTTL:  answerTTL,
	}
}

// AnswerWithAI renders the template for key, dispatches it to the
// resolved provider and returns the normalized answer. Results are
// cached by the full call signature.
func (s *AnswerService) AnswerWithAI(ctx context.Context, key string, opts AnswerOptions) (llm.Answer, error) {
	temperature := DefaultTemperature
	if opts.Temperature != nil {
		temperature = *opts.Temperature
	}
	signature := cache.Signature(cache.SignatureInput{
		TemplateKey: key,
		Variables:   opts.Variables,
		Engine:      opts.Engine,
		ImageURLs:   opts.ImageURLs,
		MaxTokens:   opts.MaxTokens,
		Temperature: temperature,
		HighRes:     opts.HighRes,
	})

	return s.answers.GetOrCompute(ctx, signature, s.answerTTL, func(ctx context.Context) (llm.Answer, error) {
		rendered, err := s.renderer.Render(ctx, key, opts.Variables)
		if err != nil {
			return nil, err
		}
		answer, err := s.answer(ctx, rendered, opts)
		if err != nil {
			logger.Error("AI request failed for key=%s images=%s: %v",
				key, strings.Join(opts.ImageURLs, ","), err)
			return nil, err
		}
		return answer, nil
	})
}

// RawAnswer runs the pipeline on an ad-hoc system/user prompt without
// a template fetch. Raw calls are not cached.
func (s *AnswerService) RawAnswer(ctx context.Context, system, user string, opts AnswerOptions) (llm.Answer, error) {
	rendered := &prompt.Rendered{
		System:    system,
		User:      user,
		ModelName: prompt.DefaultModel,
	}
	return s.answer(ctx, rendered, opts)
}

// TemplateFields exposes the placeholder names of a stored template
func (s *AnswerService) TemplateFields(ctx context.Context, key string) ([]string, error) {
	return s.renderer.TemplateFields(ctx, key)
}

func (s *AnswerService) answer(ctx context.Context, rendered *prompt.Rendered, opts AnswerOptions) (llm.Answer, error) {
	selector := rendered.ModelName
	if opts.Engine != "" {
		selector = opts.Engine
	}
	profile, err := engine.Resolve(selector)
	if err != nil {
		return nil, err
	}

	images, err := s.encodeImages(ctx, profile.Family, opts.ImageURLs)
	if err != nil {
		return nil, err
	}

	temperature := DefaultTemperature
	if opts.Temperature != nil {
		temperature = *opts.Temperature
	}

	req := &llm.Request{
		System:      rendered.System,
		User:        rendered.User,
		Images:      images,
		LowRes:      !opts.HighRes,
		MaxTokens:   opts.MaxTokens,
		Temperature: temperature,
	}

	start := time.Now()
	resp, profile, err := s.dispatcher.Dispatch(ctx, req, rendered.ModelName, opts.Engine)
	if err != nil {
		return nil, err
	}
	logger.Info("model=%s answered in %.2fs", profile.Name, time.Since(start).Seconds())

	coins := profile.Cost(resp.Usage.PromptTokens, resp.Usage.CompletionTokens, len(opts.ImageURLs))
	return llm.Normalize(resp.Text, coins, profile.Name), nil
}

// encodeImages downloads and encodes every image concurrently while
// preserving the caller-supplied order, since order affects prompt
// semantics
func (s *AnswerService) encodeImages(ctx context.Context, family engine.Family, imageURLs []string) ([]string, error) {
	if len(imageURLs) == 0 {
		return nil, nil
	}

	opts := imaging.Options{
		MaxKB: imageBudgetKB,
		// the OpenAI family wants data URIs, Gemini wants bare base64
		IncludeHeader: family != engine.FamilyGemini,
	}

	encoded := make([]string, len(imageURLs))
	errs := make([]error, len(imageURLs))

	var wg sync.WaitGroup
	for i, imageURL := range imageURLs {
		wg.Add(1)
		go func(i int, imageURL string) {
			defer wg.Done()
			encoded[i], errs[i] = s.encoder.Encode(ctx, imageURL, opts)
		}(i, imageURL)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return encoded, nil
}

// ListTemplates searches the template store by key substrings
func (s *AnswerService) ListTemplates(ctx context.Context, keys []string) ([]strapi.Template, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("at least one search key is required")
	}
	return s.store.ListTemplates(ctx, keys)
}
