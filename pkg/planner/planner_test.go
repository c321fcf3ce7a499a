package planner

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sonoralabs/sonora/pkg/audio"
	"github.com/sonoralabs/sonora/pkg/metrics"
	"github.com/sonoralabs/sonora/pkg/providers/mock"
	"github.com/sonoralabs/sonora/pkg/tools"
)

func passthrough(ctx context.Context, in audio.Buffer, p tools.Params) (audio.Buffer, error) {
	return in, nil
}

func newTestRegistry(t *testing.T) *tools.Registry {
	t.Helper()
	reg := tools.NewRegistry()
	descs := []tools.Descriptor{
		{
			Name:        "gain",
			Description: "scales amplitude",
			Parameters: map[string]tools.ParamSpec{
				"gain_db": {Description: "gain in dB", Type: tools.TypeNumber, Default: 0.0},
			},
		},
		{Name: "invert", Description: "flips polarity"},
	}
	for _, d := range descs {
		if err := reg.Register(d, passthrough); err != nil {
			t.Fatalf("register %s: %v", d.Name, err)
		}
	}
	return reg
}

func TestPlanHappyPath(t *testing.T) {
	adapter := mock.NewLLMAdapter(mock.LLMConfig{
		Responses: []string{"Sure! ```json\n{\"gain\": {\"gain_db\": 6}, \"invert\": {}}\n```"},
	})
	p := New(adapter, newTestRegistry(t), Options{})

	got, err := p.Plan(context.Background(), "louder and flipped")
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if got.Len() != 2 {
		t.Fatalf("steps = %d, want 2", got.Len())
	}
	if got.Steps[0].Tool != "gain" || got.Steps[1].Tool != "invert" {
		t.Fatalf("steps = %+v", got.Steps)
	}
	if got.Steps[0].Params["gain_db"] != float64(6) {
		t.Fatalf("gain_db = %v", got.Steps[0].Params["gain_db"])
	}
}

func TestPlanDropsUnknownTools(t *testing.T) {
	adapter := mock.NewLLMAdapter(mock.LLMConfig{
		Responses: []string{`{"summon_bass": {}, "invert": {}}`},
	})
	p := New(adapter, newTestRegistry(t), Options{})

	got, err := p.Plan(context.Background(), "more bass")
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if got.Len() != 1 || got.Steps[0].Tool != "invert" {
		t.Fatalf("steps = %+v", got.Steps)
	}
}

func TestPlanNoJSONFallsBackToEmpty(t *testing.T) {
	adapter := mock.NewLLMAdapter(mock.LLMConfig{
		Responses: []string{"I cannot help with that."},
	})
	obs := metrics.NewMemoryObserver()
	p := New(adapter, newTestRegistry(t), Options{Observer: obs})

	got, err := p.Plan(context.Background(), "what is the weather")
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if !got.Empty() {
		t.Fatalf("expected empty plan, got %+v", got.Steps)
	}
	found := false
	for _, ev := range obs.Events {
		if ev.Name == metrics.EventPlanEmpty {
			found = true
		}
	}
	if !found {
		t.Fatal("no empty-plan event recorded")
	}
}

func TestPlanAdapterFailureReturnsEmptyPlanAndError(t *testing.T) {
	adapter := mock.NewLLMAdapter(mock.LLMConfig{
		Errs: []error{errors.New("down")},
	})
	p := New(adapter, newTestRegistry(t), Options{})

	got, err := p.Plan(context.Background(), "louder")
	if err == nil {
		t.Fatal("expected error")
	}
	if !got.Empty() {
		t.Fatalf("expected empty plan, got %+v", got.Steps)
	}
	if adapter.Calls() != 1 {
		t.Fatalf("calls = %d, want exactly 1", adapter.Calls())
	}
}

func TestSystemPromptListsToolsInOrder(t *testing.T) {
	p := New(mock.NewLLMAdapter(mock.LLMConfig{}), newTestRegistry(t), Options{
		Metadata: map[string]tools.Metadata{
			"gain": {UseCases: []string{"make quiet audio audible"}},
		},
	})

	prompt := p.SystemPrompt()
	gainAt := strings.Index(prompt, "- gain:")
	invertAt := strings.Index(prompt, "- invert:")
	if gainAt < 0 || invertAt < 0 || gainAt > invertAt {
		t.Fatalf("tool catalog out of order:\n%s", prompt)
	}
	if !strings.Contains(prompt, "make quiet audio audible") {
		t.Fatal("metadata use case missing from prompt")
	}
	if !strings.Contains(prompt, "gain_db (number, default 0)") {
		t.Fatalf("parameter line missing:\n%s", prompt)
	}
}
