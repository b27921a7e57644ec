package adapters

import (
	"testing"

	"github.com/stretchr/testify/require"

	"ai_chess/internal/errors"
)

func TestNewLlmAdapter(t *testing.T) {
	cases := []struct {
		provider string
		model    string
		want     string
	}{
		{provider: "groq", want: "llama-3.3-70b-versatile"},
		{provider: "GROQ", model: "llama3-8b-8192", want: "llama3-8b-8192"},
		{provider: "openai", want: "gpt-4o-mini"},
		{provider: "anthropic", want: "claude-sonnet-4-20250514"},
		{provider: "mistral", want: "mistral-large-latest"},
	}

	for _, tc := range cases {
		t.Run(tc.provider, func(t *testing.T) {
			req := require.New(t)
			adapter, err := NewLlmAdapter(LlmOptions{Provider: tc.provider, Model: tc.model, ApiKey: "key"})
			req.NoError(err)
			req.Equal(tc.want, adapter.Model)

			switch adapter.Provider {
			case ProviderGroq, ProviderOpenAI:
				req.NotNil(adapter.OpenAI)
			case ProviderAnthropic:
				req.NotNil(adapter.Anthropic)
			case ProviderMistral:
				req.NotNil(adapter.Mistral)
			}
		})
	}
}

func TestNewLlmAdapter_Errors(t *testing.T) {
	_, err := NewLlmAdapter(LlmOptions{Provider: "groq"})
	require.ErrorIs(t, err, errors.ErrNoAPIKey)

	_, err = NewLlmAdapter(LlmOptions{Provider: "ollama", ApiKey: "key"})
	require.ErrorIs(t, err, errors.ErrUnknownProvider)
}
