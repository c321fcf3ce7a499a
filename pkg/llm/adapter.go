// Package llm defines the adapter boundary between the planner and any
// concrete language model provider.
package llm

import "context"

// Request is a single completion request. The system prompt describes the
// available tools; the user prompt carries the raw query.
type Request struct {
	System string
	Prompt string
}

type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

type Response struct {
	Text         string
	Usage        Usage
	FinishReason string
}

type Adapter interface {
	Generate(ctx context.Context, req Request) (Response, error)
	Name() string
}
