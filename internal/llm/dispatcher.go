package llm

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/ufilesorg/promptly/internal/engine"
	"github.com/ufilesorg/promptly/internal/logger"
)

const (
	// DefaultMaxAttempts is how many times a provider call is tried
	DefaultMaxAttempts = 3
	// DefaultRetryDelay is the fixed pause between attempts
	DefaultRetryDelay = 5 * time.Second

	defaultRatePerSec = 10
)

// Dispatcher routes a request to the provider registered for the
// resolved engine family, under a retry policy and a per-engine rate
// limit
type Dispatcher struct {
	providers  map[engine.Family]Provider
	attempts   int
	retryDelay time.Duration

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewDispatcher creates a dispatcher with the default retry policy
func NewDispatcher(providers map[engine.Family]Provider) *Dispatcher {
	return &Dispatcher{
		providers:  providers,
		attempts:   DefaultMaxAttempts,
		retryDelay: DefaultRetryDelay,
		limiters:   make(map[string]*rate.Limiter),
	}
}

// SetRetryPolicy overrides the attempt count and delay
func (d *Dispatcher) SetRetryPolicy(attempts int, delay time.Duration) {
	d.attempts = attempts
	d.retryDelay = delay
}

// Dispatch resolves the engine for modelName (or engineOverride when
// set), then performs the call with up to three attempts and a fixed
// delay between them. On success it returns the raw response and the
// resolved profile so the caller can price the usage.
func (d *Dispatcher) Dispatch(ctx context.Context, req *Request, modelName, engineOverride string) (*Response, *engine.Profile, error) {
	selector := modelName
	if engineOverride != "" {
		selector = engineOverride
	}

	profile, err := engine.Resolve(selector)
	if err != nil {
		return nil, nil, err
	}

	provider, ok := d.providers[profile.Family]
	if !ok {
		return nil, nil, &ProviderCallError{
			Provider: string(profile.Family),
			Err:      &engine.UnknownEngineError{Name: selector},
		}
	}

	if err := d.limiter(profile).Wait(ctx); err != nil {
		return nil, nil, &ProviderCallError{Provider: provider.Name(), Err: err}
	}

	var lastErr error
	for attempt := 1; attempt <= d.attempts; attempt++ {
		resp, err := provider.Call(ctx, profile, req)
		if err == nil {
			if attempt > 1 {
				logger.Info("%s call succeeded on attempt %d", provider.Name(), attempt)
			}
			return resp, profile, nil
		}

		lastErr = err
		logger.Warning("%s attempt %d/%d failed: %v", provider.Name(), attempt, d.attempts, err)

		if attempt < d.attempts {
			select {
			case <-time.After(d.retryDelay):
			case <-ctx.Done():
				return nil, nil, &ProviderCallError{Provider: provider.Name(), Err: ctx.Err()}
			}
		}
	}

	return nil, nil, &ProviderCallError{Provider: provider.Name(), Err: lastErr}
}

func (d *Dispatcher) limiter(profile *engine.Profile) *rate.Limiter {
	d.mu.Lock()
	defer d.mu.Unlock()

	limiter, ok := d.limiters[profile.Name]
	if !ok {
		perSec := profile.RatePerSec
		if perSec <= 0 {
			perSec = defaultRatePerSec
		}
		limiter = rate.NewLimiter(rate.Limit(perSec), int(perSec))
		d.limiters[profile.Name] = limiter
	}
	return limiter
}
