package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sonoralabs/sonora/pkg/metrics"
	"github.com/sonoralabs/sonora/pkg/resilience"
)

type scriptedAdapter struct {
	errs  []error
	text  string
	calls int
}

func (s *scriptedAdapter) Name() string { return "scripted" }

func (s *scriptedAdapter) Generate(ctx context.Context, req Request) (Response, error) {
	s.calls++
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return Response{}, err
		}
	}
	return Response{Text: s.text}, nil
}

var _ Adapter = (*scriptedAdapter)(nil)

func TestRetrySucceedsAfterTransientFailure(t *testing.T) {
	rl := resilience.RateLimitError{Provider: "scripted", Message: "slow down"}
	adapter := &scriptedAdapter{errs: []error{rl, nil}, text: "ok"}
	cfg := RetryConfig{MaxAttempts: 3, Sleep: func(time.Duration) {}}

	resp, err := Retry(context.Background(), cfg, func(ctx context.Context) (Response, error) {
		return adapter.Generate(ctx, Request{Prompt: "hello"})
	})
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if resp.Text != "ok" {
		t.Fatalf("text = %q", resp.Text)
	}
	if adapter.calls != 2 {
		t.Fatalf("calls = %d, want 2", adapter.calls)
	}
}

func TestRetryGivesUp(t *testing.T) {
	rl := resilience.RateLimitError{Provider: "scripted"}
	adapter := &scriptedAdapter{errs: []error{rl, rl}}
	cfg := RetryConfig{MaxAttempts: 2, Sleep: func(time.Duration) {}}

	_, err := Retry(context.Background(), cfg, func(ctx context.Context) (Response, error) {
		return adapter.Generate(ctx, Request{})
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if adapter.calls != 2 {
		t.Fatalf("calls = %d, want 2", adapter.calls)
	}
}

func TestRetryFailsFastOnNonTransientError(t *testing.T) {
	adapter := &scriptedAdapter{errs: []error{errors.New("invalid api key")}}
	cfg := RetryConfig{MaxAttempts: 5, Sleep: func(time.Duration) {}}

	_, err := Retry(context.Background(), cfg, func(ctx context.Context) (Response, error) {
		return adapter.Generate(ctx, Request{})
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if adapter.calls != 1 {
		t.Fatalf("calls = %d, want 1", adapter.calls)
	}
}

func TestRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Retry(ctx, RetryConfig{}, func(ctx context.Context) (Response, error) {
		t.Fatal("fn should not run after cancel")
		return Response{}, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}

func TestRetryAdapterRetriesBehindSingleCall(t *testing.T) {
	rl := resilience.RateLimitError{Provider: "scripted", Message: "slow down"}
	adapter := &scriptedAdapter{errs: []error{rl, nil}, text: "ok"}
	wrapped := NewRetryAdapter(adapter, RetryConfig{MaxAttempts: 3, Sleep: func(time.Duration) {}})

	resp, err := wrapped.Generate(context.Background(), Request{Prompt: "hello"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if resp.Text != "ok" {
		t.Fatalf("text = %q", resp.Text)
	}
	if adapter.calls != 2 {
		t.Fatalf("inner calls = %d, want 2", adapter.calls)
	}
	if wrapped.Name() != "scripted" {
		t.Fatalf("name = %q", wrapped.Name())
	}
}

func TestCircuitBreakerOpensOnRateLimits(t *testing.T) {
	rl := resilience.RateLimitError{Provider: "scripted", Message: "slow down"}
	adapter := &scriptedAdapter{errs: []error{rl, rl, rl}}
	breaker := resilience.NewCircuitBreaker(3, time.Minute)
	obs := metrics.NewMemoryObserver()
	wrapped := NewCircuitBreakerAdapter(adapter, breaker)
	wrapped.SetObserver(obs)

	for i := 0; i < 3; i++ {
		if _, err := wrapped.Generate(context.Background(), Request{}); err == nil {
			t.Fatalf("call %d: expected rate limit error", i)
		}
	}
	_, err := wrapped.Generate(context.Background(), Request{})
	if !resilience.IsRateLimit(err) {
		t.Fatalf("expected breaker denial, got %v", err)
	}
	if adapter.calls != 3 {
		t.Fatalf("inner called %d times after breaker opened", adapter.calls)
	}

	denied := false
	for _, ev := range obs.Events {
		if ev.Name == metrics.EventBreakerDenied {
			denied = true
		}
	}
	if !denied {
		t.Fatal("no breaker denial event")
	}
}
