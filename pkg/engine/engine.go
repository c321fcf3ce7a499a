// Package engine wires the registry, planner, and executor into one
// query-to-audio entry point.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/sonoralabs/sonora/pkg/audio"
	"github.com/sonoralabs/sonora/pkg/effects"
	"github.com/sonoralabs/sonora/pkg/executor"
	"github.com/sonoralabs/sonora/pkg/llm"
	"github.com/sonoralabs/sonora/pkg/logging"
	"github.com/sonoralabs/sonora/pkg/metrics"
	"github.com/sonoralabs/sonora/pkg/observers"
	"github.com/sonoralabs/sonora/pkg/plan"
	"github.com/sonoralabs/sonora/pkg/planner"
	"github.com/sonoralabs/sonora/pkg/redact"
	"github.com/sonoralabs/sonora/pkg/tools"
)

// Result is everything one processed query produces.
type Result struct {
	Plan   plan.Plan
	Buffer audio.Buffer
	Trace  executor.Trace
	Notes  []tools.Note
}

type Engine struct {
	cfg     Config
	reg     *tools.Registry
	planner *planner.Planner
	runner  *executor.Runner
	obs     metrics.Observer
	log     *slog.Logger

	metricsFile *os.File
	asyncObs    *metrics.AsyncObserver
	timeline    *observers.TimelineObserver
	usage       *observers.UsageObserver
}

// New builds an engine from config: built-in capabilities, tool metadata,
// the configured llm provider, and the observer chain.
func New(cfg Config, providers *ProviderRegistry, log *slog.Logger) (*Engine, error) {
	if providers == nil {
		providers = DefaultProviders()
	}
	if log == nil {
		log = slog.Default()
	}
	redact.SetEnabled(cfg.Privacy.RedactPII)

	e := &Engine{cfg: cfg, log: log}
	if err := e.buildObserver(); err != nil {
		return nil, err
	}

	e.reg = tools.NewRegistry()
	if err := effects.Register(e.reg); err != nil {
		e.Close()
		return nil, err
	}

	meta, err := tools.LoadMetadata(cfg.Tools.MetadataPath)
	if err != nil {
		e.Close()
		return nil, err
	}
	adapter, err := providers.BuildLLM(cfg.Vendors.LLM.Provider, cfg)
	if err != nil {
		e.Close()
		return nil, err
	}
	if cb, ok := adapter.(*llm.CircuitBreakerAdapter); ok {
		cb.SetObserver(e.obs)
	}
	adapter = llm.NewRetryAdapter(adapter, llm.RetryConfig{
		MaxAttempts: cfg.Planner.MaxAttempts,
		BaseDelay:   time.Duration(cfg.Planner.RetryBackoffMS) * time.Millisecond,
	})

	e.planner = planner.New(adapter, e.reg, planner.Options{
		Metadata: meta,
		Observer: e.obs,
		Logger:   logging.NewComponentLogger(log, "planner"),
	})
	e.runner = executor.NewRunner(e.reg, executor.Options{
		Observer: e.obs,
		Logger:   logging.NewComponentLogger(log, "executor"),
	})
	return e, nil
}

func (e *Engine) buildObserver() error {
	inner := []metrics.Observer{observers.NewLoggerObserver(e.log)}
	if path := e.cfg.Observability.MetricsPath; path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		e.metricsFile = f
		inner = append(inner, metrics.NewJSONLObserver(f))
	}
	if dir := e.cfg.Observability.ArtifactsDir; dir != "" {
		if days := e.cfg.Observability.RetentionDays; days > 0 {
			if removed, err := observers.PurgeArtifacts(dir, time.Duration(days)*24*time.Hour); err != nil {
				e.log.Warn("artifact purge failed", "error", err)
			} else if removed > 0 {
				e.log.Info("purged old artifacts", "count", removed)
			}
		}
		e.timeline = observers.NewTimelineObserver(dir)
		e.usage = observers.NewUsageObserver(dir)
		inner = append(inner, e.timeline, e.usage)
	}
	var obs metrics.Observer = observers.NewMultiObserver(inner...)
	if rate := e.cfg.Observability.SampleRate; rate > 0 && rate < 1 {
		obs = metrics.NewSamplingObserver(obs, rate)
	}
	e.asyncObs = metrics.NewAsyncObserver(obs, e.cfg.Observability.AsyncBuffer)
	e.obs = e.asyncObs
	return nil
}

// Registry exposes the tool registry, mainly so callers can register extra
// capabilities before processing.
func (e *Engine) Registry() *tools.Registry { return e.reg }

// Process turns a query into a plan, runs it against the buffer, and
// returns the processed audio with the full trace. A failed plan
// generation degrades to an empty plan so the caller always gets audio
// back; the error reports the degradation.
func (e *Engine) Process(ctx context.Context, query string, in audio.Buffer) (Result, error) {
	notes := tools.NewNotes()
	ctx = tools.WithNotes(ctx, notes)

	p, err := e.planner.Plan(ctx, query)
	if err != nil {
		e.log.Warn("continuing with empty plan", "error", err)
	}
	out, trace := e.runner.Run(ctx, in, p)
	return Result{Plan: p, Buffer: out, Trace: trace, Notes: notes.All()}, err
}

// RunTool applies a single capability directly, bypassing the planner.
func (e *Engine) RunTool(ctx context.Context, name string, params map[string]any, in audio.Buffer) (Result, error) {
	notes := tools.NewNotes()
	ctx = tools.WithNotes(ctx, notes)

	p := plan.Plan{Steps: []plan.Step{{Tool: name, Params: params}}}
	out, trace := e.runner.Run(ctx, in, p)
	return Result{Plan: p, Buffer: out, Trace: trace, Notes: notes.All()}, nil
}

// Close flushes the observer chain and releases the metrics sinks.
func (e *Engine) Close() error {
	if e.asyncObs != nil {
		e.asyncObs.Close()
	}
	var err error
	if e.timeline != nil {
		err = errors.Join(err, e.timeline.Close())
	}
	if e.usage != nil {
		err = errors.Join(err, e.usage.Close())
	}
	if e.metricsFile != nil {
		err = errors.Join(err, e.metricsFile.Close())
	}
	return err
}
