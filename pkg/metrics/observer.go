package metrics

import "time"

// Event names emitted by the engine, planner, executor, and LLM adapters.
const (
	EventPlanGenerated = "plan_generated"
	EventPlanEmpty     = "plan_empty"
	EventStepApplied   = "step_applied"
	EventStepSkipped   = "step_skipped"
	EventStepSanitized = "step_sanitized"
	EventRunCompleted  = "run_completed"
	EventLLMGenerate   = "llm_generate"
	EventRateLimit     = "rate_limit"
	EventBreakerOpen   = "breaker_open"
	EventBreakerClose  = "breaker_close"
	EventBreakerDenied = "breaker_denied"
)

type MetricsEvent struct {
	Name   string
	Time   time.Time
	Value  float64
	Tags   map[string]string
	Fields map[string]any
}

type Observer interface {
	RecordEvent(ev MetricsEvent)
}

type Flusher interface {
	Flush() error
}

type NoopObserver struct{}

func (NoopObserver) RecordEvent(MetricsEvent) {}
