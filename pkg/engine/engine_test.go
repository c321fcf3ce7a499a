package engine

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sonoralabs/sonora/pkg/audio"
	"github.com/sonoralabs/sonora/pkg/executor"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func mockConfig(t *testing.T, responses ...string) Config {
	t.Helper()
	cfg := Config{
		Environment: "test",
		Audio:       AudioConfig{SampleRate: 16000},
		Vendors: VendorsConfig{
			LLM: VendorConfig{
				Provider: "mock",
				Settings: map[string]any{"responses": responses},
			},
		},
		Planner: PlannerConfig{MaxAttempts: 1},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("config: %v", err)
	}
	return cfg
}

func TestLoadConfigDefaultsAndEnvExpansion(t *testing.T) {
	t.Setenv("TEST_LLM_KEY", "sk-test")
	path := writeConfig(t, `
vendors:
  llm:
    provider: openai
    settings:
      api_key: ${TEST_LLM_KEY}
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Audio.SampleRate != 16000 {
		t.Fatalf("sample rate default = %d", cfg.Audio.SampleRate)
	}
	if cfg.Planner.MaxAttempts != 3 {
		t.Fatalf("planner attempts default = %d", cfg.Planner.MaxAttempts)
	}
	if got := cfg.Vendors.LLM.Settings["api_key"]; got != "sk-test" {
		t.Fatalf("api_key = %v, env not expanded", got)
	}
	if !cfg.Privacy.RedactPII {
		t.Fatal("redaction should default on")
	}
}

func TestLoadConfigRequiresProvider(t *testing.T) {
	path := writeConfig(t, "log_level: debug\n")
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestBuildLLMUnknownProvider(t *testing.T) {
	cfg := mockConfig(t)
	cfg.Vendors.LLM.Provider = "quantum"
	if _, err := DefaultProviders().BuildLLM(cfg.Vendors.LLM.Provider, cfg); err == nil {
		t.Fatal("expected error for unregistered provider")
	}
}

func TestBuildLLMOpenAIRejectsUnknownSettings(t *testing.T) {
	cfg := mockConfig(t)
	cfg.Vendors.LLM.Provider = "openai"
	cfg.Vendors.LLM.Settings = map[string]any{"api_key": "sk", "tempo": 1}
	if _, err := DefaultProviders().BuildLLM("openai", cfg); err == nil {
		t.Fatal("expected unknown settings error")
	}
}

func TestProcessEndToEnd(t *testing.T) {
	cfg := mockConfig(t, `{"gain": {"gain_db": 20}}`)
	eng, err := New(cfg, nil, nil)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	defer eng.Close()

	in := audio.Buffer{Samples: []float32{0.05}, Rate: 16000}
	res, err := eng.Process(context.Background(), "make it louder", in)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if res.Plan.Len() != 1 {
		t.Fatalf("plan steps = %d", res.Plan.Len())
	}
	if !res.Trace.FullyApplied() {
		t.Fatalf("trace: %+v", res.Trace.Steps)
	}
	want := float32(0.5)
	if diff := res.Buffer.Samples[0] - want; diff > 1e-4 || diff < -1e-4 {
		t.Fatalf("sample = %v, want ~%v", res.Buffer.Samples[0], want)
	}
}

func TestProcessDegradesToEmptyPlanOnBadModelOutput(t *testing.T) {
	cfg := mockConfig(t, "no tools for you")
	eng, err := New(cfg, nil, nil)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	defer eng.Close()

	in := audio.Buffer{Samples: []float32{0.3}, Rate: 16000}
	res, err := eng.Process(context.Background(), "anything", in)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if !res.Plan.Empty() {
		t.Fatalf("plan = %+v", res.Plan.Steps)
	}
	if res.Buffer.Samples[0] != 0.3 {
		t.Fatal("buffer changed with empty plan")
	}
}

func TestProcessCollectsCapabilityNotes(t *testing.T) {
	cfg := mockConfig(t, `{"list_capabilities": {}}`)
	eng, err := New(cfg, nil, nil)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	defer eng.Close()

	res, err := eng.Process(context.Background(), "what can you do", audio.Sine(440, 0.1, 16000, 0.1))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(res.Notes) != 1 {
		t.Fatalf("notes = %+v", res.Notes)
	}
	if !strings.Contains(res.Notes[0].Message, "gain") {
		t.Fatalf("listing missing gain:\n%s", res.Notes[0].Message)
	}
}

func TestRunToolBypassesPlanner(t *testing.T) {
	cfg := mockConfig(t)
	eng, err := New(cfg, nil, nil)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	defer eng.Close()

	in := audio.Buffer{Samples: []float32{0.2}, Rate: 16000}
	res, err := eng.RunTool(context.Background(), "invert", nil, in)
	if err != nil {
		t.Fatalf("run tool: %v", err)
	}
	if res.Buffer.Samples[0] != -0.2 {
		t.Fatalf("sample = %v", res.Buffer.Samples[0])
	}
	if res.Trace.Steps[0].Status != executor.StatusApplied {
		t.Fatalf("status = %s", res.Trace.Steps[0].Status)
	}
}
