// Package openai adapts the OpenAI chat completions API to the llm.Adapter
// boundary.
package openai

import (
	"context"
	"errors"
	"net/http"

	gopenai "github.com/sashabaranov/go-openai"

	"github.com/sonoralabs/sonora/pkg/llm"
	"github.com/sonoralabs/sonora/pkg/resilience"
)

type Options struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float32
}

type Adapter struct {
	client *gopenai.Client
	opts   Options
}

func NewAdapter(opts Options) (*Adapter, error) {
	if opts.APIKey == "" {
		return nil, errors.New("openai: missing api key")
	}
	if opts.Model == "" {
		opts.Model = gopenai.GPT4oMini
	}
	cfg := gopenai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	return &Adapter{client: gopenai.NewClientWithConfig(cfg), opts: opts}, nil
}

func (a *Adapter) Name() string { return "openai" }

func (a *Adapter) Generate(ctx context.Context, req llm.Request) (llm.Response, error) {
	messages := make([]gopenai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, gopenai.ChatCompletionMessage{
			Role:    gopenai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, gopenai.ChatCompletionMessage{
		Role:    gopenai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	resp, err := a.client.CreateChatCompletion(ctx, gopenai.ChatCompletionRequest{
		Model:       a.opts.Model,
		Messages:    messages,
		Temperature: a.opts.Temperature,
	})
	if err != nil {
		var apiErr *gopenai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return llm.Response{}, resilience.RateLimitError{Provider: "openai", Message: apiErr.Message}
		}
		return llm.Response{}, err
	}
	if len(resp.Choices) == 0 {
		return llm.Response{}, errors.New("openai: empty response")
	}
	choice := resp.Choices[0]
	return llm.Response{
		Text:         choice.Message.Content,
		FinishReason: string(choice.FinishReason),
		Usage: llm.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

var _ llm.Adapter = (*Adapter)(nil)
