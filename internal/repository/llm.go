package repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/gage-technologies/mistral-go"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"ai_chess/internal/adapters"
	"ai_chess/internal/bootstrap"
	"ai_chess/internal/errors"
)

type LlmRepo struct {
	adapter *adapters.LlmAdapter
	log     *zap.SugaredLogger
}

func NewLlmRepository(adapter *adapters.LlmAdapter, log *zap.SugaredLogger) *LlmRepo {
	return &LlmRepo{adapter: adapter, log: log}
}

func (l *LlmRepo) Model() string {
	return l.adapter.Model
}

func (l *LlmRepo) SendRequestToLlm(ctx context.Context, systemPrompt, request string) (string, error) {
	var (
		response string
		err      error
	)
	switch l.adapter.Provider {
	case adapters.ProviderGroq, adapters.ProviderOpenAI:
		response, err = l.chatOpenAI(ctx, systemPrompt, request)
	case adapters.ProviderAnthropic:
		response, err = l.chatAnthropic(ctx, systemPrompt, request)
	case adapters.ProviderMistral:
		response, err = l.chatMistral(ctx, systemPrompt, request)
	default:
		return "", fmt.Errorf("%w: %s", errors.ErrUnknownProvider, l.adapter.Provider)
	}
	if err != nil {
		l.log.Errorw("send request to llm", "provider", l.adapter.Provider, "model", l.adapter.Model, "error", err)
		return "", fmt.Errorf("%s request: %w", l.adapter.Provider, err)
	}

	response = strings.TrimSpace(response)
	if response == "" {
		return "", errors.ErrEmptyLlmResponse
	}
	l.log.Debugw("llm response", "provider", l.adapter.Provider, "response", response)
	return response, nil
}

func (l *LlmRepo) chatOpenAI(ctx context.Context, systemPrompt, request string) (string, error) {
	resp, err := l.adapter.OpenAI.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: l.adapter.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: request},
		},
		MaxTokens:   l.adapter.MaxTokens,
		Temperature: float32(l.adapter.Temperature),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.ErrEmptyLlmResponse
	}
	return resp.Choices[0].Message.Content, nil
}

func (l *LlmRepo) chatAnthropic(ctx context.Context, systemPrompt, request string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(l.adapter.Model),
		MaxTokens:   int64(l.adapter.MaxTokens),
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(request))},
		Temperature: anthropic.Float(l.adapter.Temperature),
	}
	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: systemPrompt}}
	}

	resp, err := l.adapter.Anthropic.Messages.New(ctx, params)
	if err != nil {
		return "", err
	}

	var out strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	return out.String(), nil
}

// chatMistral runs the blocking client call in a goroutine so ctx can
// abandon it.
func (l *LlmRepo) chatMistral(ctx context.Context, systemPrompt, request string) (string, error) {
	params := mistral.DefaultChatRequestParams
	params.MaxTokens = l.adapter.MaxTokens
	params.Temperature = l.adapter.Temperature

	type result struct {
		content string
		err     error
	}
	ch := make(chan result, 1)
	go func() {
		resp, err := l.adapter.Mistral.Chat(l.adapter.Model, []mistral.ChatMessage{
			{Role: mistral.RoleSystem, Content: systemPrompt},
			{Role: mistral.RoleUser, Content: request},
		}, &params)
		if err != nil {
			ch <- result{err: err}
			return
		}
		if len(resp.Choices) == 0 {
			ch <- result{err: errors.ErrEmptyLlmResponse}
			return
		}
		ch <- result{content: fmt.Sprintf("%v", resp.Choices[0].Message.Content)}
	}()

	select {
	case r := <-ch:
		return r.content, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// LlmFactory builds provider clients from the configured keys.
type LlmFactory struct {
	cfg *bootstrap.Config
	log *zap.SugaredLogger
}

func NewLlmFactory(cfg *bootstrap.Config, log *zap.SugaredLogger) *LlmFactory {
	return &LlmFactory{cfg: cfg, log: log}
}

func (f *LlmFactory) New(provider, model string) (*LlmRepo, error) {
	var baseUrl string
	if provider == adapters.ProviderOpenAI {
		baseUrl = f.cfg.OpenAiBaseUrl
	}
	adapter, err := adapters.NewLlmAdapter(adapters.LlmOptions{
		Provider:    provider,
		Model:       model,
		ApiKey:      f.cfg.ApiKey(provider),
		BaseUrl:     baseUrl,
		MaxTokens:   f.cfg.LlmMaxTokens,
		Temperature: f.cfg.LlmTemperature,
	})
	if err != nil {
		return nil, err
	}
	return NewLlmRepository(adapter, f.log), nil
}
