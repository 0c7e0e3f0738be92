package llm

import (
	"fmt"
	"os"
	"time"
)

// Provider names accepted in Config.Provider.
const (
	ProviderGemini     = "gemini"
	ProviderOpenAI     = "openai"
	ProviderAnthropic  = "anthropic"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
	// ProviderNone disables AI generation. Math worksheets are then built
	// locally and the other subjects are unavailable.
	ProviderNone = "none"
)

// Config holds all LLM provider configuration. Field tags follow the
// config file layout under the "llm" key.
type Config struct {
	Provider string `mapstructure:"provider" yaml:"provider"`

	Gemini     GeminiConfig     `mapstructure:"gemini" yaml:"gemini"`
	OpenAI     OpenAIConfig     `mapstructure:"openai" yaml:"openai"`
	Anthropic  AnthropicConfig  `mapstructure:"anthropic" yaml:"anthropic"`
	OpenRouter OpenRouterConfig `mapstructure:"openrouter" yaml:"openrouter"`
	Retry      RetryConfig      `mapstructure:"retry" yaml:"retry"`

	// Timeout bounds a single generation including retries.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key" yaml:"api_key,omitempty"`
	Model  string `mapstructure:"model" yaml:"model"`
}

type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key" yaml:"api_key,omitempty"`
	Model   string `mapstructure:"model" yaml:"model"`
	BaseURL string `mapstructure:"base_url" yaml:"base_url,omitempty"`
}

type AnthropicConfig struct {
	APIKey  string `mapstructure:"api_key" yaml:"api_key,omitempty"`
	Model   string `mapstructure:"model" yaml:"model"`
	BaseURL string `mapstructure:"base_url" yaml:"base_url,omitempty"`
}

type OpenRouterConfig struct {
	APIKey  string `mapstructure:"api_key" yaml:"api_key,omitempty"`
	Model   string `mapstructure:"model" yaml:"model"`
	BaseURL string `mapstructure:"base_url" yaml:"base_url,omitempty"`
}

// RetryConfig configures backoff for transient provider failures.
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts" yaml:"max_attempts"`
	InitialWait time.Duration `mapstructure:"initial_wait" yaml:"initial_wait"`
	MaxWait     time.Duration `mapstructure:"max_wait" yaml:"max_wait"`
	Multiplier  float64       `mapstructure:"multiplier" yaml:"multiplier"`
}

// DefaultGeminiModel is the model the worksheet prompts were tuned on.
const DefaultGeminiModel = "gemini-3-flash-preview"

// DefaultConfig returns a Config with no provider selected.
func DefaultConfig() Config {
	return Config{
		Provider: "",
		Gemini: GeminiConfig{
			Model: DefaultGeminiModel,
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		OpenRouter: OpenRouterConfig{
			Model: "google/gemini-2.5-flash",
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 60 * time.Second,
	}
}

// DiscoverConfig probes the vendors' standard API key variables in
// priority order (Gemini, OpenAI, Anthropic, OpenRouter) and selects the
// first provider whose key is set. It fills keys into base and leaves
// every other field alone.
func DiscoverConfig(base Config) (Config, bool) {
	cfg := base
	if k := os.Getenv("GEMINI_API_KEY"); k != "" {
		cfg.Provider = ProviderGemini
		cfg.Gemini.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("OPENAI_API_KEY"); k != "" {
		cfg.Provider = ProviderOpenAI
		cfg.OpenAI.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("ANTHROPIC_API_KEY"); k != "" {
		cfg.Provider = ProviderAnthropic
		cfg.Anthropic.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("OPENROUTER_API_KEY"); k != "" {
		cfg.Provider = ProviderOpenRouter
		cfg.OpenRouter.APIKey = k
		return cfg, true
	}
	return base, false
}

// Validate checks that the selected provider has its API key set.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderAnthropic:
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("llm.anthropic.api_key is required for the anthropic provider")
		}
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("llm.openai.api_key is required for the openai provider")
		}
	case ProviderGemini:
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("llm.gemini.api_key is required for the gemini provider")
		}
	case ProviderOpenRouter:
		if c.OpenRouter.APIKey == "" {
			return fmt.Errorf("llm.openrouter.api_key is required for the openrouter provider")
		}
	case ProviderMock, ProviderNone, "":
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	return nil
}

// Enabled reports whether a real provider is selected.
func (c Config) Enabled() bool {
	return c.Provider != "" && c.Provider != ProviderNone
}
