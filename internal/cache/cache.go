package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ufilesorg/promptly/internal/llm"
	"github.com/ufilesorg/promptly/internal/logger"
)

// SignatureInput carries every request parameter that can change the
// provider's answer. Anything new that influences the output belongs
// in here, so a cached answer is never served across a parameter
// change.
type SignatureInput struct {
	TemplateKey string
	Variables   map[string]string
	Engine      string
	ImageURLs   []string
	MaxTokens   int
	Temperature float64
	HighRes     bool
}

// Signature derives a deterministic cache key: template key, all
// render variables (sorted by name), the engine selector, the ordered
// image URL list, and the dispatch tunables.
func Signature(in SignatureInput) string {
	names := make([]string, 0, len(in.Variables))
	for name := range in.Variables {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "key=%s;", in.TemplateKey)
	for _, name := range names {
		fmt.Fprintf(&b, "%s=%s;", name, in.Variables[name])
	}
	fmt.Fprintf(&b, "engine=%s;", in.Engine)
	for _, url := range in.ImageURLs {
		fmt.Fprintf(&b, "image=%s;", url)
	}
	fmt.Fprintf(&b, "max_tokens=%d;temperature=%g;high_res=%t;",
		in.MaxTokens, in.Temperature, in.HighRes)

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

type entry struct {
	answer  llm.Answer
	expires time.Time
}

// Answers memoizes pipeline results for a bounded time window. Entries
// are only ever inserted or expired, never mutated, so concurrent
// callers at worst recompute and overwrite with an equivalent value.
type Answers struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewAnswers creates an empty answer cache
func NewAnswers() *Answers {
	return &Answers{entries: make(map[string]entry)}
}

// Get returns the cached answer for a signature, if still fresh
func (c *Answers) Get(signature string) (llm.Answer, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[signature]
	if !ok || time.Now().After(e.expires) {
		return nil, false
	}
	return e.answer, true
}

// Set stores an answer under a signature for the given window
func (c *Answers) Set(signature string, answer llm.Answer, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[signature] = entry{answer: answer, expires: time.Now().Add(ttl)}
}

// GetOrCompute returns the cached answer for a signature, or runs
// computeFn and caches its result. Concurrent cold-cache callers may
// both compute; the duplicate work is accepted rather than serialized.
func (c *Answers) GetOrCompute(ctx context.Context, signature string, ttl time.Duration, computeFn func(context.Context) (llm.Answer, error)) (llm.Answer, error) {
	if answer, ok := c.Get(signature); ok {
		return answer, nil
	}

	answer, err := computeFn(ctx)
	if err != nil {
		return nil, err
	}

	c.Set(signature, answer, ttl)
	return answer, nil
}

// Sweep drops expired entries and returns how many were removed.
// Lookups already ignore stale entries; sweeping just frees memory.
func (c *Answers) Sweep() int {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for signature, e := range c.entries {
		if now.After(e.expires) {
			delete(c.entries, signature)
			removed++
		}
	}
	if removed > 0 {
		logger.Debug("answer cache sweep removed %d entries", removed)
	}
	return removed
}

// Len returns the number of stored entries, expired or not
func (c *Answers) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
