// Package mock provides a scripted language model adapter for tests and
// offline runs.
package mock

import (
	"context"
	"sync"

	"github.com/sonoralabs/sonora/pkg/llm"
)

type LLMConfig struct {
	// Responses are returned in order; the last one repeats once the
	// script is exhausted.
	Responses []string
	Errs      []error
}

type LLMAdapter struct {
	cfg   LLMConfig
	mu    sync.Mutex
	calls int
}

func NewLLMAdapter(cfg LLMConfig) *LLMAdapter {
	if len(cfg.Responses) == 0 {
		cfg.Responses = []string{"{}"}
	}
	return &LLMAdapter{cfg: cfg}
}

func (a *LLMAdapter) Name() string { return "mock_llm" }

func (a *LLMAdapter) Calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

func (a *LLMAdapter) Generate(ctx context.Context, req llm.Request) (llm.Response, error) {
	a.mu.Lock()
	i := a.calls
	a.calls++
	a.mu.Unlock()
	if i < len(a.cfg.Errs) && a.cfg.Errs[i] != nil {
		return llm.Response{}, a.cfg.Errs[i]
	}
	if i >= len(a.cfg.Responses) {
		i = len(a.cfg.Responses) - 1
	}
	return llm.Response{Text: a.cfg.Responses[i], FinishReason: "stop"}, nil
}

var _ llm.Adapter = (*LLMAdapter)(nil)
