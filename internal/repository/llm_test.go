package repo

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"ai_chess/internal/adapters"
	"ai_chess/internal/bootstrap"
	"ai_chess/internal/errors"
)

func newRepo(t *testing.T, provider, baseUrl string) *LlmRepo {
	adapter, err := adapters.NewLlmAdapter(adapters.LlmOptions{
		Provider:    provider,
		Model:       "test-model",
		ApiKey:      "test-key",
		BaseUrl:     baseUrl,
		MaxTokens:   100,
		Temperature: 0.7,
	})
	require.NoError(t, err)
	return NewLlmRepository(adapter, zaptest.NewLogger(t).Sugar())
}

func TestLlmRepo_OpenAICompatible(t *testing.T) {
	req := require.New(t)

	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req.True(strings.HasSuffix(r.URL.Path, "/chat/completions"))
		req.Equal("Bearer test-key", r.Header.Get("Authorization"))
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","model":"test-model",
			"choices":[{"index":0,"message":{"role":"assistant","content":"  {\"move\": \"e2e4\"}\n"},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	repo := newRepo(t, "openai", server.URL)
	resp, err := repo.SendRequestToLlm(context.Background(), "system", "position")

	req.NoError(err)
	req.Equal(`{"move": "e2e4"}`, resp)
	req.Equal("test-model", body["model"])
	req.Len(body["messages"], 2)
}

func TestLlmRepo_Anthropic(t *testing.T) {
	req := require.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req.True(strings.HasSuffix(r.URL.Path, "/v1/messages"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_1","type":"message","role":"assistant","model":"test-model",
			"content":[{"type":"text","text":"Nf3"}],"stop_reason":"end_turn",
			"usage":{"input_tokens":10,"output_tokens":2}}`))
	}))
	defer server.Close()

	repo := newRepo(t, "anthropic", server.URL)
	resp, err := repo.SendRequestToLlm(context.Background(), "system", "position")

	req.NoError(err)
	req.Equal("Nf3", resp)
}

func TestLlmRepo_Mistral(t *testing.T) {
	req := require.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req.True(strings.HasSuffix(r.URL.Path, "/v1/chat/completions"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","created":1,"model":"test-model",
			"choices":[{"index":0,"message":{"role":"assistant","content":"d2d4"},"finish_reason":"stop"}],
			"usage":{"prompt_tokens":1,"completion_tokens":1,"total_tokens":2}}`))
	}))
	defer server.Close()

	repo := newRepo(t, "mistral", server.URL)
	resp, err := repo.SendRequestToLlm(context.Background(), "system", "position")

	req.NoError(err)
	req.Equal("d2d4", resp)
}

func TestLlmRepo_EmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","choices":[{"index":0,"message":{"role":"assistant","content":"   "}}]}`))
	}))
	defer server.Close()

	_, err := newRepo(t, "openai", server.URL).SendRequestToLlm(context.Background(), "system", "position")
	require.ErrorIs(t, err, errors.ErrEmptyLlmResponse)
}

func TestLlmRepo_MistralHonoursContext(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := newRepo(t, "mistral", server.URL).SendRequestToLlm(ctx, "system", "position")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLlmFactory(t *testing.T) {
	req := require.New(t)
	cfg := &bootstrap.Config{GroqApiKey: "gsk", LlmMaxTokens: 100, LlmTemperature: 0.7}
	factory := NewLlmFactory(cfg, zaptest.NewLogger(t).Sugar())

	repo, err := factory.New("groq", "")
	req.NoError(err)
	req.Equal(adapters.DefaultModels["groq"], repo.Model())

	_, err = factory.New("anthropic", "")
	req.ErrorIs(err, errors.ErrNoAPIKey)
}
