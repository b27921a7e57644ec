package adapters

import (
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/gage-technologies/mistral-go"
	"github.com/sashabaranov/go-openai"

	"ai_chess/internal/errors"
)

const (
	ProviderGroq      = "groq"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderMistral   = "mistral"

	GroqBaseUrl = "https://api.groq.com/openai/v1"

	mistralRetries = 2
	mistralTimeout = 60 * time.Second
)

var DefaultModels = map[string]string{
	ProviderGroq:      "llama-3.3-70b-versatile",
	ProviderOpenAI:    "gpt-4o-mini",
	ProviderAnthropic: "claude-sonnet-4-20250514",
	ProviderMistral:   "mistral-large-latest",
}

type LlmOptions struct {
	Provider    string
	Model       string
	ApiKey      string
	BaseUrl     string
	MaxTokens   int
	Temperature float64
}

// LlmAdapter holds the client for exactly one provider.
type LlmAdapter struct {
	Provider    string
	Model       string
	MaxTokens   int
	Temperature float64

	OpenAI    *openai.Client
	Anthropic *anthropic.Client
	Mistral   *mistral.MistralClient
}

func NewLlmAdapter(opts LlmOptions) (*LlmAdapter, error) {
	provider := strings.ToLower(strings.TrimSpace(opts.Provider))
	defaultModel, ok := DefaultModels[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errors.ErrUnknownProvider, opts.Provider)
	}
	if opts.ApiKey == "" {
		return nil, fmt.Errorf("%w: %s", errors.ErrNoAPIKey, provider)
	}

	adapter := &LlmAdapter{
		Provider:    provider,
		Model:       opts.Model,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}
	if adapter.Model == "" {
		adapter.Model = defaultModel
	}

	switch provider {
	case ProviderGroq, ProviderOpenAI:
		cfg := openai.DefaultConfig(opts.ApiKey)
		switch {
		case opts.BaseUrl != "":
			cfg.BaseURL = opts.BaseUrl
		case provider == ProviderGroq:
			cfg.BaseURL = GroqBaseUrl
		}
		adapter.OpenAI = openai.NewClientWithConfig(cfg)
	case ProviderAnthropic:
		clientOpts := []option.RequestOption{option.WithAPIKey(opts.ApiKey)}
		if opts.BaseUrl != "" {
			clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseUrl))
		}
		client := anthropic.NewClient(clientOpts...)
		adapter.Anthropic = &client
	case ProviderMistral:
		if opts.BaseUrl != "" {
			adapter.Mistral = mistral.NewMistralClient(opts.ApiKey, opts.BaseUrl, mistralRetries, mistralTimeout)
		} else {
			adapter.Mistral = mistral.NewMistralClientDefault(opts.ApiKey)
		}
	}

	return adapter, nil
}
