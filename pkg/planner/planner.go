// Package planner turns a natural language request into a validated tool
// plan by prompting a language model and parsing whatever comes back.
package planner

import (
	"context"
	"log/slog"
	"time"

	"github.com/sonoralabs/sonora/pkg/errorsx"
	"github.com/sonoralabs/sonora/pkg/llm"
	"github.com/sonoralabs/sonora/pkg/metrics"
	"github.com/sonoralabs/sonora/pkg/plan"
	"github.com/sonoralabs/sonora/pkg/redact"
	"github.com/sonoralabs/sonora/pkg/tools"
)

type Options struct {
	Metadata map[string]tools.Metadata
	Observer metrics.Observer
	Logger   *slog.Logger
}

type Planner struct {
	adapter llm.Adapter
	reg     *tools.Registry
	meta    map[string]tools.Metadata
	obs     metrics.Observer
	log     *slog.Logger
	system  string
}

func New(adapter llm.Adapter, reg *tools.Registry, opts Options) *Planner {
	obs := opts.Observer
	if obs == nil {
		obs = metrics.NoopObserver{}
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Planner{
		adapter: adapter,
		reg:     reg,
		meta:    opts.Metadata,
		obs:     obs,
		log:     log,
		system:  renderSystemPrompt(reg, opts.Metadata),
	}
}

// SystemPrompt returns the rendered tool catalog, mainly for inspection.
func (p *Planner) SystemPrompt() string { return p.system }

// Plan asks the model for a plan and reduces the answer to steps the
// registry can actually run. The adapter is called once per query; retry
// behavior belongs to whatever adapter the caller hands in. Everything
// short of a failed model call degrades to an empty plan.
func (p *Planner) Plan(ctx context.Context, query string) (plan.Plan, error) {
	started := time.Now()
	resp, err := p.adapter.Generate(ctx, llm.Request{System: p.system, Prompt: query})
	p.obs.RecordEvent(metrics.MetricsEvent{
		Name:  metrics.EventLLMGenerate,
		Time:  time.Now(),
		Value: float64(time.Since(started).Milliseconds()),
		Tags:  map[string]string{"provider": p.adapter.Name()},
	})
	if err != nil {
		p.log.Error("plan generation failed", "query", redact.Text(query), "error", err)
		p.emitPlan(plan.Plan{})
		return plan.Plan{}, errorsx.Wrap(err, errorsx.ReasonLLMGenerate)
	}

	raw, ok := plan.Extract(resp.Text)
	if !ok {
		p.log.Warn("no plan object in model output", "query", redact.Text(query))
		p.emitPlan(plan.Plan{})
		return plan.Plan{}, nil
	}
	decoded, err := plan.Decode(raw)
	if err != nil {
		p.log.Warn("plan decode failed", "query", redact.Text(query), "error", err)
		p.emitPlan(plan.Plan{})
		return plan.Plan{}, nil
	}
	validated := plan.Validate(decoded, p.reg)
	if dropped := decoded.Len() - validated.Len(); dropped > 0 {
		p.log.Warn("dropped unrunnable steps", "count", dropped)
	}
	p.emitPlan(validated)
	return validated, nil
}

func (p *Planner) emitPlan(pl plan.Plan) {
	name := metrics.EventPlanGenerated
	if pl.Empty() {
		name = metrics.EventPlanEmpty
	}
	p.obs.RecordEvent(metrics.MetricsEvent{
		Name:  name,
		Time:  time.Now(),
		Value: float64(pl.Len()),
		Tags:  map[string]string{"provider": p.adapter.Name()},
	})
}
