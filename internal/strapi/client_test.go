package strapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv, New(srv.URL, "test-token", 10*time.Minute)
}

func respond(w http.ResponseWriter, templates ...Template) {
	fmt.Fprint(w, `{"data":[`)
	for i, tpl := range templates {
		if i > 0 {
			fmt.Fprint(w, ",")
		}
		fmt.Fprintf(w, `{"attributes":{"key":%q,"system":%q,"user":%q,"model_name":%q}}`,
			tpl.Key, tpl.System, tpl.User, tpl.ModelName)
	}
	fmt.Fprint(w, `]}`)
}

func TestFetchTemplate(t *testing.T) {
	var gotAuth, gotFilter string
	_, client := newStore(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotFilter = r.URL.Query().Get("filters[key][$eq]")
		respond(w, Template{Key: "greet", System: "sys", User: "hello {name}", ModelName: "gpt-4o"})
	})

	tpl, err := client.FetchTemplate(context.Background(), "greet")
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, "greet", gotFilter)
	assert.Equal(t, "hello {name}", tpl.User)
	assert.Equal(t, "gpt-4o", tpl.ModelName)
}

func TestFetchTemplateNotFound(t *testing.T) {
	_, client := newStore(t, func(w http.ResponseWriter, r *http.Request) {
		respond(w)
	})

	_, err := client.FetchTemplate(context.Background(), "missing")
	var notFound *TemplateNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "missing", notFound.Key)
	assert.Zero(t, notFound.Matches)
}

func TestFetchTemplateAmbiguous(t *testing.T) {
	_, client := newStore(t, func(w http.ResponseWriter, r *http.Request) {
		respond(w,
			Template{Key: "dup", User: "a"},
			Template{Key: "dup", User: "b"},
		)
	})

	_, err := client.FetchTemplate(context.Background(), "dup")
	var notFound *TemplateNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, 2, notFound.Matches)
}

func TestFetchTemplateCaches(t *testing.T) {
	var calls atomic.Int32
	_, client := newStore(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		respond(w, Template{Key: "greet", User: "hi"})
	})

	for i := 0; i < 3; i++ {
		_, err := client.FetchTemplate(context.Background(), "greet")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestListTemplates(t *testing.T) {
	var query string
	_, client := newStore(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		respond(w,
			Template{Key: "translate", User: "a"},
			Template{Key: "translate_fa", User: "b"},
		)
	})

	templates, err := client.ListTemplates(context.Background(), []string{"translate"})
	require.NoError(t, err)
	require.Len(t, templates, 2)
	assert.Equal(t, "translate", templates[0].Key)
	assert.Contains(t, query, "translate")
}

func TestStoreErrorPropagates(t *testing.T) {
	_, client := newStore(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	_, err := client.FetchTemplate(context.Background(), "greet")
	require.Error(t, err)
	var notFound *TemplateNotFoundError
	assert.False(t, errors.As(err, &notFound))
}
