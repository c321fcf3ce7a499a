// Package executor applies a plan to an audio buffer, one step at a time,
// isolating every per-step failure so a bad step never aborts the chain.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cast"

	"github.com/sonoralabs/sonora/pkg/audio"
	"github.com/sonoralabs/sonora/pkg/metrics"
	"github.com/sonoralabs/sonora/pkg/plan"
	"github.com/sonoralabs/sonora/pkg/tools"
)

// StepStatus classifies the outcome of one plan step.
type StepStatus string

const (
	StatusApplied           StepStatus = "applied"
	StatusUnknownTool       StepStatus = "unknown_tool"
	StatusInvalidParameters StepStatus = "invalid_parameters"
	StatusToolError         StepStatus = "tool_error"
)

// StepRecord is one entry of the execution trace.
type StepRecord struct {
	Tool      string
	Params    tools.Params
	Status    StepStatus
	Err       string
	Warnings  []string
	Sanitized int
	Clipped   int
	Duration  time.Duration
}

// Applied reports whether the step changed the buffer.
func (r StepRecord) Applied() bool { return r.Status == StatusApplied }

// Trace records what actually happened during one run. It is returned to
// the caller and never mutated afterwards.
type Trace struct {
	ID    string
	Steps []StepRecord
}

// FullyApplied reports whether every step succeeded.
func (t Trace) FullyApplied() bool {
	for _, s := range t.Steps {
		if !s.Applied() {
			return false
		}
	}
	return true
}

type Options struct {
	Observer metrics.Observer
	Logger   *slog.Logger
}

// Runner executes plans against the registry. One runner serves one
// session; the registry it reads is populated before the first run.
type Runner struct {
	reg *tools.Registry
	obs metrics.Observer
	log *slog.Logger
}

func NewRunner(reg *tools.Registry, opts Options) *Runner {
	obs := opts.Observer
	if obs == nil {
		obs = metrics.NoopObserver{}
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Runner{reg: reg, obs: obs, log: log}
}

// Run applies the plan in order and returns the final buffer plus the
// trace. It always terminates and always returns a usable buffer: a step
// that cannot run is skipped and the previous buffer carried forward, so
// the degenerate case is output equals input.
func (r *Runner) Run(ctx context.Context, in audio.Buffer, p plan.Plan) (audio.Buffer, Trace) {
	trace := Trace{ID: uuid.NewString()}
	current := in
	for _, step := range p.Steps {
		record := r.runStep(ctx, &current, step, trace.ID)
		trace.Steps = append(trace.Steps, record)
	}
	r.obs.RecordEvent(metrics.MetricsEvent{
		Name:   metrics.EventRunCompleted,
		Time:   time.Now(),
		Value:  float64(len(trace.Steps)),
		Tags:   map[string]string{"trace_id": trace.ID},
		Fields: map[string]any{"audio_seconds": current.Duration()},
	})
	return current, trace
}

func (r *Runner) runStep(ctx context.Context, current *audio.Buffer, step plan.Step, traceID string) StepRecord {
	started := time.Now()
	record := StepRecord{Tool: tools.Normalize(step.Tool)}

	entry, err := r.reg.Resolve(step.Tool)
	if err != nil {
		record.Status = StatusUnknownTool
		record.Err = err.Error()
		r.finish(&record, started, traceID)
		return record
	}

	params, warnings, err := buildParams(entry.Descriptor, step.Params)
	record.Warnings = warnings
	if err != nil {
		record.Status = StatusInvalidParameters
		record.Err = err.Error()
		r.finish(&record, started, traceID)
		return record
	}
	record.Params = params

	out, err := invoke(ctx, entry.Capability, *current, params)
	if err != nil {
		record.Status = StatusToolError
		record.Err = err.Error()
		r.finish(&record, started, traceID)
		return record
	}

	record.Sanitized = audio.Sanitize(out.Samples)
	record.Clipped = audio.Clip(out.Samples)
	if record.Sanitized > 0 {
		r.obs.RecordEvent(metrics.MetricsEvent{
			Name:  metrics.EventStepSanitized,
			Time:  time.Now(),
			Value: float64(record.Sanitized),
			Tags:  map[string]string{"tool": record.Tool, "trace_id": traceID},
		})
	}
	record.Status = StatusApplied
	*current = out
	r.finish(&record, started, traceID)
	return record
}

func (r *Runner) finish(record *StepRecord, started time.Time, traceID string) {
	record.Duration = time.Since(started)
	name := metrics.EventStepApplied
	if record.Status != StatusApplied {
		name = metrics.EventStepSkipped
	}
	r.obs.RecordEvent(metrics.MetricsEvent{
		Name:  name,
		Time:  time.Now(),
		Value: float64(record.Duration.Milliseconds()),
		Tags: map[string]string{
			"tool":     record.Tool,
			"status":   string(record.Status),
			"trace_id": traceID,
		},
	})
	if record.Status != StatusApplied {
		r.log.Warn("step skipped",
			"tool", record.Tool,
			"status", string(record.Status),
			"error", record.Err,
		)
	}
}

// invoke runs a capability inside a panic boundary. A panicking tool is an
// internal fault of that tool, not of the chain; the input buffer is left
// untouched because capabilities receive a clone.
func invoke(ctx context.Context, cap tools.Capability, in audio.Buffer, params tools.Params) (out audio.Buffer, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("tool panic: %v", rec)
		}
	}()
	out, err = cap(ctx, in.Clone(), params)
	if err != nil {
		return audio.Buffer{}, err
	}
	if out.Rate <= 0 {
		return audio.Buffer{}, fmt.Errorf("tool returned invalid sample rate %d", out.Rate)
	}
	return out, nil
}

// buildParams validates raw plan parameters against the descriptor: unknown
// keys are dropped with a warning, missing keys take the declared default,
// and values coerce leniently to the declared type. A value that cannot
// coerce at all fails the whole step.
func buildParams(desc tools.Descriptor, raw map[string]any) (tools.Params, []string, error) {
	params := make(tools.Params, len(desc.Parameters))
	var warnings []string

	var unknown []string
	for key := range raw {
		if _, ok := desc.Parameters[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	for _, key := range unknown {
		warnings = append(warnings, fmt.Sprintf("dropped unknown parameter %q", key))
	}

	for name, spec := range desc.Parameters {
		value, ok := raw[name]
		if !ok {
			if spec.Default != nil {
				params[name] = spec.Default
			}
			continue
		}
		coerced, err := coerce(value, spec.Type)
		if err != nil {
			return nil, warnings, fmt.Errorf("parameter %q: %w", name, err)
		}
		params[name] = coerced
	}
	return params, warnings, nil
}

func coerce(value any, t tools.ParamType) (any, error) {
	switch t {
	case tools.TypeNumber:
		n, err := cast.ToFloat64E(value)
		if err != nil {
			return nil, fmt.Errorf("expected number, got %T", value)
		}
		return n, nil
	case tools.TypeString:
		s, err := cast.ToStringE(value)
		if err != nil {
			return nil, fmt.Errorf("expected string, got %T", value)
		}
		return s, nil
	case tools.TypeBool:
		b, err := cast.ToBoolE(value)
		if err != nil {
			return nil, fmt.Errorf("expected bool, got %T", value)
		}
		return b, nil
	default:
		return value, nil
	}
}
