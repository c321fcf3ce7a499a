package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/sonoralabs/sonora/pkg/configutil"
	"github.com/sonoralabs/sonora/pkg/errorsx"
	"github.com/sonoralabs/sonora/pkg/llm"
	"github.com/sonoralabs/sonora/pkg/providers/mock"
	"github.com/sonoralabs/sonora/pkg/providers/openai"
	"github.com/sonoralabs/sonora/pkg/resilience"
)

type LLMFactory func(cfg Config) (llm.Adapter, error)

// ProviderRegistry maps provider names from config to adapter factories.
type ProviderRegistry struct {
	llm map[string]LLMFactory
}

func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{llm: make(map[string]LLMFactory)}
}

func (r *ProviderRegistry) RegisterLLM(name string, factory LLMFactory) {
	r.llm[strings.ToLower(strings.TrimSpace(name))] = factory
}

func (r *ProviderRegistry) BuildLLM(provider string, cfg Config) (llm.Adapter, error) {
	fn := r.llm[strings.ToLower(strings.TrimSpace(provider))]
	if fn == nil {
		return nil, errorsx.Wrap(fmt.Errorf("llm provider not registered: %s", provider), errorsx.ReasonConfigValidate)
	}
	return fn(cfg)
}

type openAISettings struct {
	APIKey            string  `mapstructure:"api_key"`
	Model             string  `mapstructure:"model"`
	BaseURL           string  `mapstructure:"base_url"`
	Temperature       float64 `mapstructure:"temperature"`
	UseCircuitBreaker *bool   `mapstructure:"use_circuit_breaker"`
	CircuitThreshold  int     `mapstructure:"circuit_threshold"`
	CircuitCooldownMs int     `mapstructure:"circuit_cooldown_ms"`
}

type mockLLMSettings struct {
	Responses []string `mapstructure:"responses"`
}

// DefaultProviders returns a registry with the built-in llm providers.
func DefaultProviders() *ProviderRegistry {
	reg := NewProviderRegistry()

	reg.RegisterLLM("openai", func(cfg Config) (llm.Adapter, error) {
		if err := configutil.ValidateSettings(cfg.Vendors.LLM.Settings, configutil.Schema{
			Required: []string{"api_key"},
			Optional: []string{"model", "base_url", "temperature", "use_circuit_breaker", "circuit_threshold", "circuit_cooldown_ms"},
		}); err != nil {
			return nil, errorsx.Wrap(fmt.Errorf("vendors.llm.settings: %w", err), errorsx.ReasonConfigValidate)
		}
		var settings openAISettings
		if err := configutil.DecodeSettings(cfg.Vendors.LLM.Settings, &settings); err != nil {
			return nil, err
		}
		if err := configutil.RequireString(settings.APIKey, "vendors.llm.settings.api_key"); err != nil {
			return nil, errorsx.Wrap(err, errorsx.ReasonConfigValidate)
		}
		adapter, err := openai.NewAdapter(openai.Options{
			APIKey:      settings.APIKey,
			Model:       settings.Model,
			BaseURL:     settings.BaseURL,
			Temperature: float32(settings.Temperature),
		})
		if err != nil {
			return nil, err
		}
		if !configutil.BoolValue(settings.UseCircuitBreaker, true) {
			return adapter, nil
		}
		threshold := settings.CircuitThreshold
		if threshold == 0 {
			threshold = 3
		}
		cooldown := settings.CircuitCooldownMs
		if cooldown == 0 {
			cooldown = 30000
		}
		breaker := resilience.NewCircuitBreaker(threshold, time.Duration(cooldown)*time.Millisecond)
		return llm.NewCircuitBreakerAdapter(adapter, breaker), nil
	})

	reg.RegisterLLM("mock", func(cfg Config) (llm.Adapter, error) {
		if err := configutil.ValidateSettings(cfg.Vendors.LLM.Settings, configutil.Schema{
			Optional: []string{"responses"},
		}); err != nil {
			return nil, errorsx.Wrap(fmt.Errorf("vendors.llm.settings: %w", err), errorsx.ReasonConfigValidate)
		}
		var settings mockLLMSettings
		if err := configutil.DecodeSettings(cfg.Vendors.LLM.Settings, &settings); err != nil {
			return nil, err
		}
		return mock.NewLLMAdapter(mock.LLMConfig{Responses: settings.Responses}), nil
	})

	return reg
}
