package generate_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rvielma/cultivar/internal/generate"
	"github.com/rvielma/cultivar/pkg/domain"
)

func testPrompt() *domain.GenerationPrompt {
	return &domain.GenerationPrompt{
		System:    "You write short supportive chat lines.",
		TargetKey: "bot.greet.morning",
		Variants:  2,
	}
}

func newClient(t *testing.T, srv *httptest.Server, cfg generate.Config) *generate.Client {
	t.Helper()
	cfg.BaseURL = srv.URL
	cfg.Backoff = time.Millisecond
	return generate.NewClient(cfg, generate.WithAPIKey("test-key"), generate.WithHTTPClient(srv.Client()))
}

func TestGenerate_OpenAIShape(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/chat/completions", r.URL.Path)
		content, _ := json.Marshal(map[string]any{"variants": []string{"Morning!", "Hey, good morning."}})
		resp := map[string]any{"choices": []map[string]any{
			{"message": map[string]any{"content": string(content)}},
		}}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	c := newClient(t, srv, generate.Config{Provider: generate.ProviderOpenAI, Model: "gpt-4o-mini"})
	res, err := c.Generate(context.Background(), testPrompt())
	require.NoError(t, err)

	assert.Equal(t, []string{"Morning!", "Hey, good morning."}, res.Variants)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "gpt-4o-mini", res.Model)
	assert.NotEmpty(t, res.Raw)
	assert.NotEmpty(t, res.Request)
}

func TestGenerate_DirectShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/", r.URL.Path)
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{"variants": []string{"one", "two"}}))
	}))
	defer srv.Close()

	c := newClient(t, srv, generate.Config{Provider: generate.ProviderDirect})
	res, err := c.Generate(context.Background(), testPrompt())
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, res.Variants)
}

func TestGenerate_CompletionShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/completions", r.URL.Path)
		resp := map[string]any{"choices": []map[string]any{{"text": "one"}, {"text": "two"}}}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	c := newClient(t, srv, generate.Config{Provider: generate.ProviderCompletion})
	res, err := c.Generate(context.Background(), testPrompt())
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, res.Variants)
}

func TestGenerate_StripsRejectedSamplingParam(t *testing.T) {
	temp := 0.7
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		body, _ := io.ReadAll(r.Body)
		var req map[string]any
		require.NoError(t, json.Unmarshal(body, &req))

		if _, has := req["temperature"]; has {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"message":"Unsupported parameter: 'temperature'"}}`))
			return
		}
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{"variants": []string{"ok"}}))
	}))
	defer srv.Close()

	c := newClient(t, srv, generate.Config{Provider: generate.ProviderDirect, Temperature: &temp})
	res, err := c.Generate(context.Background(), testPrompt())
	require.NoError(t, err)
	assert.Equal(t, []string{"ok"}, res.Variants)
	assert.Equal(t, 2, calls)

	var sent map[string]any
	require.NoError(t, json.Unmarshal(res.Request, &sent))
	_, has := sent["temperature"]
	assert.False(t, has)
}

func TestGenerate_RetriesTransientFailures(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{"variants": []string{"finally"}}))
	}))
	defer srv.Close()

	c := newClient(t, srv, generate.Config{Provider: generate.ProviderDirect, MaxRetries: 3})
	res, err := c.Generate(context.Background(), testPrompt())
	require.NoError(t, err)
	assert.Equal(t, []string{"finally"}, res.Variants)
	assert.Equal(t, 3, calls)
}

func TestGenerate_ExhaustsRetriesThenFails(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newClient(t, srv, generate.Config{Provider: generate.ProviderDirect, MaxRetries: 2})
	_, err := c.Generate(context.Background(), testPrompt())
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "after 3 attempts")
}

func TestGenerate_NonRetryableClientError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad credential"}}`))
	}))
	defer srv.Close()

	c := newClient(t, srv, generate.Config{Provider: generate.ProviderDirect, MaxRetries: 3})
	_, err := c.Generate(context.Background(), testPrompt())
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestGenerate_MissingCredential(t *testing.T) {
	c := generate.NewClient(generate.Config{Provider: generate.ProviderDirect, BaseURL: "http://127.0.0.1:0"},
		generate.WithAPIKey(""))
	_, err := c.Generate(context.Background(), testPrompt())
	require.Error(t, err)
	assert.Contains(t, err.Error(), generate.APIKeyEnv)
}

func TestMock_Deterministic(t *testing.T) {
	m := generate.NewMock()
	a, err := m.Generate(context.Background(), testPrompt())
	require.NoError(t, err)
	b, err := m.Generate(context.Background(), testPrompt())
	require.NoError(t, err)

	assert.Equal(t, a.Variants, b.Variants)
	assert.Len(t, a.Variants, 2)
	assert.Contains(t, a.Variants[0], "bot.greet.morning")
	assert.Equal(t, "mock", a.Provider)
}
