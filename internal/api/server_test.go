package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ufilesorg/promptly/internal/cache"
	"github.com/ufilesorg/promptly/internal/config"
	"github.com/ufilesorg/promptly/internal/engine"
	"github.com/ufilesorg/promptly/internal/imaging"
	"github.com/ufilesorg/promptly/internal/llm"
	"github.com/ufilesorg/promptly/internal/prompt"
	"github.com/ufilesorg/promptly/internal/services"
	"github.com/ufilesorg/promptly/internal/strapi"
)

type stubStore struct {
	templates map[string]*strapi.Template
}

func (s *stubStore) FetchTemplate(ctx context.Context, key string) (*strapi.Template, error) {
	tpl, ok := s.templates[key]
	if !ok {
		return nil, &strapi.TemplateNotFoundError{Key: key}
	}
	return tpl, nil
}

func (s *stubStore) ListTemplates(ctx context.Context, keys []string) ([]strapi.Template, error) {
	var out []strapi.Template
	for _, tpl := range s.templates {
		out = append(out, *tpl)
	}
	return out, nil
}

type stubDispatcher struct {
	calls int
	text  string
}

func (s *stubDispatcher) Dispatch(ctx context.Context, req *llm.Request, modelName, engineOverride string) (*llm.Response, *engine.Profile, error) {
	s.calls++
	selector := modelName
	if engineOverride != "" {
		selector = engineOverride
	}
	profile, err := engine.Resolve(selector)
	if err != nil {
		return nil, nil, err
	}
	return &llm.Response{Text: s.text}, profile, nil
}

type stubEncoder struct{}

func (stubEncoder) Encode(ctx context.Context, imageURL string, opts imaging.Options) (string, error) {
	return "ZmFrZQ==", nil
}

func newTestServer(dispatcher *stubDispatcher, templates ...*strapi.Template) *Server {
	store := &stubStore{templates: make(map[string]*strapi.Template)}
	for _, tpl := range templates {
		store.templates[tpl.Key] = tpl
	}
	answers := services.NewAnswerService(
		prompt.New(store), store, stubEncoder{}, dispatcher, cache.NewAnswers(), time.Hour)
	return NewServer(config.Default(), answers, services.NewTranslateService(answers))
}

func doJSON(t *testing.T, srv *Server, method, path string, body interface{}) (*httptest.ResponseRecorder, APIResponse) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	var envelope APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return rec, envelope
}

func TestHealth(t *testing.T) {
	srv := newTestServer(&stubDispatcher{})

	rec, envelope := doJSON(t, srv, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, envelope.Success)
}

func TestAnswerEndpoint(t *testing.T) {
	dispatcher := &stubDispatcher{text: `{"summary": "fine"}`}
	srv := newTestServer(dispatcher, &strapi.Template{
		Key: "summarize", User: "summarize {text}", ModelName: "gpt-4o",
	})

	rec, envelope := doJSON(t, srv, http.MethodPost, "/ai/summarize", map[string]interface{}{
		"data": map[string]string{"text": "long article"},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	require.True(t, envelope.Success)

	answer := envelope.Data.(map[string]interface{})
	assert.Equal(t, "fine", answer["summary"])
	assert.Equal(t, "gpt-4o", answer["model"])
	assert.Equal(t, 1, dispatcher.calls)
}

func TestAnswerEndpointTemplateNotFound(t *testing.T) {
	srv := newTestServer(&stubDispatcher{})

	rec, envelope := doJSON(t, srv, http.MethodPost, "/ai/nope", map[string]interface{}{})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, envelope.Success)
	assert.Contains(t, envelope.Message, "nope")
}

func TestAnswerEndpointUnknownEngine(t *testing.T) {
	srv := newTestServer(&stubDispatcher{text: "x"}, &strapi.Template{Key: "k", User: "u"})

	rec, envelope := doJSON(t, srv, http.MethodPost, "/ai/k", map[string]interface{}{
		"engine": "gpt-9000",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, envelope.Message, "gpt-9000")
}

func TestVisionEndpointRequiresImages(t *testing.T) {
	srv := newTestServer(&stubDispatcher{}, &strapi.Template{Key: "k", User: "u"})

	rec, envelope := doJSON(t, srv, http.MethodPost, "/ai/vision/k", map[string]interface{}{
		"data": map[string]string{},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, envelope.Success)
}

func TestVisionEndpoint(t *testing.T) {
	dispatcher := &stubDispatcher{text: "a red bicycle"}
	srv := newTestServer(dispatcher, &strapi.Template{Key: "describe", User: "what is this", ModelName: "gpt-4o"})

	rec, envelope := doJSON(t, srv, http.MethodPost, "/ai/vision/describe", map[string]interface{}{
		"image_urls": []string{"https://img.example/bike.jpg"},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	require.True(t, envelope.Success)
	answer := envelope.Data.(map[string]interface{})
	assert.Equal(t, "a red bicycle", answer["answer"])
}

func TestTranslateEndpointShortCircuit(t *testing.T) {
	dispatcher := &stubDispatcher{}
	srv := newTestServer(dispatcher)

	rec, envelope := doJSON(t, srv, http.MethodPost, "/ai/translate", map[string]interface{}{
		"text":            "Hello there, I hope you are having a wonderful day today.",
		"target_language": "English",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	require.True(t, envelope.Success)

	data := envelope.Data.(map[string]interface{})
	assert.Equal(t, false, data["translated"])
	assert.NotEmpty(t, data["text"])
	assert.Equal(t, 0, dispatcher.calls)
}

func TestSearchEndpoint(t *testing.T) {
	srv := newTestServer(&stubDispatcher{},
		&strapi.Template{Key: "blog-title", ModelName: "gpt-4o-mini"})

	rec, envelope := doJSON(t, srv, http.MethodPost, "/ai/search", map[string]interface{}{
		"keys": []string{"blog"},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	require.True(t, envelope.Success)

	hits := envelope.Data.([]interface{})
	require.Len(t, hits, 1)
	assert.Equal(t, "blog-title", hits[0].(map[string]interface{})["key"])
}

func TestSearchEndpointRejectsEmptyKeys(t *testing.T) {
	srv := newTestServer(&stubDispatcher{})

	rec, _ := doJSON(t, srv, http.MethodPost, "/ai/search", map[string]interface{}{
		"keys": []string{},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTemplateFieldsEndpoint(t *testing.T) {
	srv := newTestServer(&stubDispatcher{}, &strapi.Template{
		Key: "greet", System: "talk like {persona}", User: "greet {name} in {lang}",
	})

	rec, envelope := doJSON(t, srv, http.MethodGet, "/ai/greet/fields", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.True(t, envelope.Success)

	data := envelope.Data.(map[string]interface{})
	assert.Equal(t, "greet", data["key"])
	assert.Equal(t, []interface{}{"lang", "name", "persona"}, data["fields"])
}

func TestRawEndpoint(t *testing.T) {
	dispatcher := &stubDispatcher{text: "pong"}
	srv := newTestServer(dispatcher)

	rec, envelope := doJSON(t, srv, http.MethodPost, "/ai/raw", map[string]interface{}{
		"system": "you answer ping with pong",
		"user":   "ping",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	require.True(t, envelope.Success)
	answer := envelope.Data.(map[string]interface{})
	assert.Equal(t, "pong", answer["answer"])
}

func TestRawEndpointRequiresUser(t *testing.T) {
	srv := newTestServer(&stubDispatcher{})

	rec, _ := doJSON(t, srv, http.MethodPost, "/ai/raw", map[string]interface{}{
		"system": "no user text",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
