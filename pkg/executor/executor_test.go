package executor

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/sonoralabs/sonora/pkg/audio"
	"github.com/sonoralabs/sonora/pkg/metrics"
	"github.com/sonoralabs/sonora/pkg/plan"
	"github.com/sonoralabs/sonora/pkg/tools"
)

func gainCapability(ctx context.Context, in audio.Buffer, p tools.Params) (audio.Buffer, error) {
	db := p.Float("gain_db", 0)
	factor := float32(math.Pow(10, db/20))
	for i := range in.Samples {
		in.Samples[i] *= factor
	}
	return in, nil
}

func newTestRegistry(t *testing.T) *tools.Registry {
	t.Helper()
	reg := tools.NewRegistry()
	entries := []tools.Entry{
		{
			Descriptor: tools.Descriptor{
				Name:        "gain",
				Description: "scales amplitude by a decibel amount",
				Parameters: map[string]tools.ParamSpec{
					"gain_db": {Description: "gain in dB", Type: tools.TypeNumber, Default: 0.0},
				},
			},
			Capability: gainCapability,
		},
		{
			Descriptor: tools.Descriptor{
				Name:        "invert",
				Description: "flips polarity",
			},
			Capability: func(ctx context.Context, in audio.Buffer, p tools.Params) (audio.Buffer, error) {
				for i := range in.Samples {
					in.Samples[i] = -in.Samples[i]
				}
				return in, nil
			},
		},
		{
			Descriptor: tools.Descriptor{Name: "broken"},
			Capability: func(ctx context.Context, in audio.Buffer, p tools.Params) (audio.Buffer, error) {
				return audio.Buffer{}, errors.New("hardware on fire")
			},
		},
		{
			Descriptor: tools.Descriptor{Name: "panicky"},
			Capability: func(ctx context.Context, in audio.Buffer, p tools.Params) (audio.Buffer, error) {
				panic("unexpected sample layout")
			},
		},
		{
			Descriptor: tools.Descriptor{Name: "nanmaker"},
			Capability: func(ctx context.Context, in audio.Buffer, p tools.Params) (audio.Buffer, error) {
				in.Samples[0] = float32(math.NaN())
				in.Samples[1] = float32(math.Inf(1))
				return in, nil
			},
		},
	}
	for _, e := range entries {
		if err := reg.Register(e.Descriptor, e.Capability); err != nil {
			t.Fatalf("register %s: %v", e.Descriptor.Name, err)
		}
	}
	return reg
}

func testBuffer() audio.Buffer {
	return audio.Buffer{Samples: []float32{0.1, -0.2, 0.3, -0.4}, Rate: 16000}
}

func TestRunAppliesGain(t *testing.T) {
	runner := NewRunner(newTestRegistry(t), Options{})
	p := plan.Plan{Steps: []plan.Step{{Tool: "gain", Params: map[string]any{"gain_db": 6.0}}}}

	out, trace := runner.Run(context.Background(), testBuffer(), p)

	if !trace.FullyApplied() {
		t.Fatalf("trace not fully applied: %+v", trace.Steps)
	}
	want := float32(0.1 * 1.9952623)
	if math.Abs(float64(out.Samples[0]-want)) > 1e-4 {
		t.Fatalf("sample = %v, want ~%v", out.Samples[0], want)
	}
	if trace.ID == "" {
		t.Fatal("trace has no id")
	}
}

func TestRunEmptyPlanIsIdentity(t *testing.T) {
	runner := NewRunner(newTestRegistry(t), Options{})
	in := testBuffer()

	out, trace := runner.Run(context.Background(), in, plan.Plan{})

	if len(trace.Steps) != 0 {
		t.Fatalf("expected no steps, got %d", len(trace.Steps))
	}
	for i := range in.Samples {
		if out.Samples[i] != in.Samples[i] {
			t.Fatalf("sample %d changed: %v != %v", i, out.Samples[i], in.Samples[i])
		}
	}
}

func TestRunSkipsUnknownTool(t *testing.T) {
	runner := NewRunner(newTestRegistry(t), Options{})
	p := plan.Plan{Steps: []plan.Step{
		{Tool: "reverse_entropy"},
		{Tool: "invert"},
	}}

	out, trace := runner.Run(context.Background(), testBuffer(), p)

	if trace.Steps[0].Status != StatusUnknownTool {
		t.Fatalf("step 0 status = %s", trace.Steps[0].Status)
	}
	if trace.Steps[1].Status != StatusApplied {
		t.Fatalf("step 1 status = %s", trace.Steps[1].Status)
	}
	if out.Samples[0] != -0.1 {
		t.Fatalf("invert not applied after skip: %v", out.Samples[0])
	}
}

func TestRunToolErrorCarriesBufferForward(t *testing.T) {
	runner := NewRunner(newTestRegistry(t), Options{})
	p := plan.Plan{Steps: []plan.Step{{Tool: "broken"}, {Tool: "invert"}}}

	out, trace := runner.Run(context.Background(), testBuffer(), p)

	if trace.Steps[0].Status != StatusToolError {
		t.Fatalf("step 0 status = %s", trace.Steps[0].Status)
	}
	if trace.Steps[0].Err == "" {
		t.Fatal("step 0 missing error text")
	}
	if out.Samples[0] != -0.1 {
		t.Fatalf("buffer not carried into next step: %v", out.Samples[0])
	}
}

func TestRunRecoversFromPanic(t *testing.T) {
	runner := NewRunner(newTestRegistry(t), Options{})
	in := testBuffer()
	p := plan.Plan{Steps: []plan.Step{{Tool: "panicky"}}}

	out, trace := runner.Run(context.Background(), in, p)

	if trace.Steps[0].Status != StatusToolError {
		t.Fatalf("status = %s", trace.Steps[0].Status)
	}
	if out.Samples[0] != in.Samples[0] {
		t.Fatal("panicking tool mutated output")
	}
}

func TestRunSanitizesNonFiniteOutput(t *testing.T) {
	obs := metrics.NewMemoryObserver()
	runner := NewRunner(newTestRegistry(t), Options{Observer: obs})
	p := plan.Plan{Steps: []plan.Step{{Tool: "nanmaker"}}}

	out, trace := runner.Run(context.Background(), testBuffer(), p)

	if trace.Steps[0].Status != StatusApplied {
		t.Fatalf("status = %s", trace.Steps[0].Status)
	}
	if trace.Steps[0].Sanitized != 2 {
		t.Fatalf("sanitized = %d, want 2", trace.Steps[0].Sanitized)
	}
	if out.Samples[0] != 0 || out.Samples[1] != 0 {
		t.Fatalf("non-finite samples survive: %v %v", out.Samples[0], out.Samples[1])
	}
	found := false
	for _, ev := range obs.Events {
		if ev.Name == metrics.EventStepSanitized {
			found = true
		}
	}
	if !found {
		t.Fatal("no sanitize event recorded")
	}
}

func TestRunOrderMatters(t *testing.T) {
	reg := newTestRegistry(t)
	clip := tools.Descriptor{Name: "halve"}
	err := reg.Register(clip, func(ctx context.Context, in audio.Buffer, p tools.Params) (audio.Buffer, error) {
		for i := range in.Samples {
			in.Samples[i] *= 0.5
		}
		return in, nil
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	runner := NewRunner(reg, Options{})
	in := audio.Buffer{Samples: []float32{0.9}, Rate: 16000}

	gainFirst := plan.Plan{Steps: []plan.Step{
		{Tool: "gain", Params: map[string]any{"gain_db": 12.0}},
		{Tool: "halve"},
	}}
	halveFirst := plan.Plan{Steps: []plan.Step{
		{Tool: "halve"},
		{Tool: "gain", Params: map[string]any{"gain_db": 12.0}},
	}}

	a, _ := runner.Run(context.Background(), in.Clone(), gainFirst)
	b, _ := runner.Run(context.Background(), in.Clone(), halveFirst)

	// Gain first clips at 1.0 before halving; halving first leaves headroom.
	if a.Samples[0] == b.Samples[0] {
		t.Fatalf("expected order to matter, both %v", a.Samples[0])
	}
}

func TestBuildParamsDefaultsAndWarnings(t *testing.T) {
	desc := tools.Descriptor{
		Name: "gain",
		Parameters: map[string]tools.ParamSpec{
			"gain_db": {Type: tools.TypeNumber, Default: 3.0},
		},
	}

	params, warnings, err := buildParams(desc, map[string]any{"volume": 10})
	if err != nil {
		t.Fatalf("buildParams: %v", err)
	}
	if got := params.Float("gain_db", 0); got != 3.0 {
		t.Fatalf("default not applied: %v", got)
	}
	if len(warnings) != 1 {
		t.Fatalf("warnings = %v", warnings)
	}
}

func TestBuildParamsLenientCoercion(t *testing.T) {
	desc := tools.Descriptor{
		Name: "gain",
		Parameters: map[string]tools.ParamSpec{
			"gain_db": {Type: tools.TypeNumber},
		},
	}

	params, _, err := buildParams(desc, map[string]any{"gain_db": "6.5"})
	if err != nil {
		t.Fatalf("buildParams: %v", err)
	}
	if got := params.Float("gain_db", 0); got != 6.5 {
		t.Fatalf("coerced value = %v", got)
	}

	if _, _, err := buildParams(desc, map[string]any{"gain_db": "loud"}); err == nil {
		t.Fatal("expected coercion failure")
	}
}

func TestRunInvalidParametersSkipsStep(t *testing.T) {
	runner := NewRunner(newTestRegistry(t), Options{})
	in := testBuffer()
	p := plan.Plan{Steps: []plan.Step{{Tool: "gain", Params: map[string]any{"gain_db": "very"}}}}

	out, trace := runner.Run(context.Background(), in, p)

	if trace.Steps[0].Status != StatusInvalidParameters {
		t.Fatalf("status = %s", trace.Steps[0].Status)
	}
	if out.Samples[0] != in.Samples[0] {
		t.Fatal("skipped step mutated buffer")
	}
}
