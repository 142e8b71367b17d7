package strapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// Template is a prompt template fetched from the remote store
type Template struct {
	Key       string `json:"key"`
	System    string `json:"system"`
	User      string `json:"user"`
	ModelName string `json:"model_name,omitempty"`
	ImageURL  string `json:"image_url,omitempty"`
}

// TemplateNotFoundError is returned when an exact key lookup matches
// zero rows, or more than one (ambiguity is an error, not a pick-first)
type TemplateNotFoundError struct {
	Key     string
	Matches int
}

func (e *TemplateNotFoundError) Error() string {
	if e.Matches > 1 {
		return fmt.Sprintf("template key %q is ambiguous (%d matches)", e.Key, e.Matches)
	}
	return fmt.Sprintf("template key %q not found", e.Key)
}

// envelope is the store's response wrapper
type envelope struct {
	Data []struct {
		Attributes Template `json:"attributes"`
	} `json:"data"`
}

type cacheEntry struct {
	templates []Template
	expires   time.Time
}

// Client fetches prompt templates from the remote store with a
// read-through TTL cache
type Client struct {
	baseURL string
	token   string
	ttl     time.Duration
	client  *http.Client

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

// New creates a new template store client
func New(baseURL, token string, ttl time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		ttl:     ttl,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		cache: make(map[string]cacheEntry),
	}
}

// FetchTemplate returns the template with exactly the given key
func (c *Client) FetchTemplate(ctx context.Context, key string) (*Template, error) {
	cacheKey := "eq:" + key
	if templates, ok := c.cached(cacheKey); ok {
		return c.exactly(key, templates)
	}

	params := url.Values{}
	params.Set("filters[key][$eq]", key)

	templates, err := c.request(ctx, params)
	if err != nil {
		return nil, err
	}
	c.store(cacheKey, templates)

	return c.exactly(key, templates)
}

// ListTemplates returns every template whose key contains any of the
// given substrings. Results are the store's rows as-is, not deduplicated.
func (c *Client) ListTemplates(ctx context.Context, keys []string) ([]Template, error) {
	cacheKey := "contains:" + fmt.Sprint(keys)
	if templates, ok := c.cached(cacheKey); ok {
		return templates, nil
	}

	params := url.Values{}
	for i, key := range keys {
		params.Set(fmt.Sprintf("filters[$and][%d][key][$contains]", i), key)
	}

	templates, err := c.request(ctx, params)
	if err != nil {
		return nil, err
	}
	c.store(cacheKey, templates)

	return templates, nil
}

func (c *Client) exactly(key string, templates []Template) (*Template, error) {
	if len(templates) != 1 {
		return nil, &TemplateNotFoundError{Key: key, Matches: len(templates)}
	}
	t := templates[0]
	return &t, nil
}

func (c *Client) request(ctx context.Context, params url.Values) ([]Template, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("template store request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("template store error: %s", string(body))
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	templates := make([]Template, 0, len(env.Data))
	for _, row := range env.Data {
		templates = append(templates, row.Attributes)
	}
	return templates, nil
}

func (c *Client) cached(key string) ([]Template, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.cache[key]
	if !ok || time.Now().After(entry.expires) {
		return nil, false
	}
	return entry.templates, true
}

func (c *Client) store(key string, templates []Template) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[key] = cacheEntry{
		templates: templates,
		expires:   time.Now().Add(c.ttl),
	}
}
