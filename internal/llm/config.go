package llm

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds all LLM provider configuration. Every provider with a key
// contributes to the model chain, Gemini first.
type Config struct {
	Gemini     GeminiConfig
	OpenAI     OpenAIConfig
	Anthropic  AnthropicConfig
	OpenRouter OpenRouterConfig

	// Mock replaces every provider with a MockProvider. Used by tests
	// and offline demos.
	Mock bool

	// Timeout bounds a single model attempt. Default: 30s.
	Timeout time.Duration

	MaxTokens   int
	Temperature float64
	TopP        float64
	TopK        int
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string
	Models []string // Default: DefaultGeminiModels
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string
	Model   string // Default: "gpt-4o-mini"
	BaseURL string // Optional. Override for compatible APIs.
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey string
	Model  string // Default: "claude-haiku"
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string
	Model   string // Default: "google/gemini-2.0-flash-exp"
	BaseURL string // Default: "https://openrouter.ai/api/v1"
}

// DefaultConfig returns a Config with sensible defaults and no keys.
func DefaultConfig() Config {
	return Config{
		Gemini:      GeminiConfig{Models: DefaultGeminiModels},
		OpenAI:      OpenAIConfig{Model: "gpt-4o-mini"},
		Anthropic:   AnthropicConfig{Model: "claude-haiku"},
		OpenRouter:  OpenRouterConfig{Model: "google/gemini-2.0-flash-exp"},
		Timeout:     30 * time.Second,
		MaxTokens:   1024,
		Temperature: 0.7,
		TopP:        0.95,
		TopK:        40,
	}
}

// ConfigFromEnv builds a Config from environment variables. EXAMPREP_*
// variables win over the vendors' conventional names.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	cfg.Gemini.APIKey = firstEnv("EXAMPREP_GEMINI_API_KEY", "GEMINI_API_KEY")
	if m := os.Getenv("EXAMPREP_GEMINI_MODELS"); m != "" {
		cfg.Gemini.Models = splitList(m)
	}

	cfg.OpenAI.APIKey = firstEnv("EXAMPREP_OPENAI_API_KEY", "OPENAI_API_KEY")
	if m := os.Getenv("EXAMPREP_OPENAI_MODEL"); m != "" {
		cfg.OpenAI.Model = m
	}
	if u := os.Getenv("EXAMPREP_OPENAI_BASE_URL"); u != "" {
		cfg.OpenAI.BaseURL = u
	}

	cfg.Anthropic.APIKey = firstEnv("EXAMPREP_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")
	if m := os.Getenv("EXAMPREP_ANTHROPIC_MODEL"); m != "" {
		cfg.Anthropic.Model = m
	}

	cfg.OpenRouter.APIKey = firstEnv("EXAMPREP_OPENROUTER_API_KEY", "OPENROUTER_API_KEY")
	if m := os.Getenv("EXAMPREP_OPENROUTER_MODEL"); m != "" {
		cfg.OpenRouter.Model = m
	}

	if os.Getenv("EXAMPREP_LLM_PROVIDER") == "mock" {
		cfg.Mock = true
	}
	if t := os.Getenv("EXAMPREP_LLM_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil && d > 0 {
			cfg.Timeout = d
		} else {
			fmt.Fprintf(os.Stderr, "warning: ignoring EXAMPREP_LLM_TIMEOUT=%q\n", t)
		}
	}

	return cfg
}

// HasCredentials reports whether any remote provider can be reached.
func (c Config) HasCredentials() bool {
	return c.Mock || c.Gemini.APIKey != "" || c.OpenAI.APIKey != "" ||
		c.Anthropic.APIKey != "" || c.OpenRouter.APIKey != ""
}

// Validate checks the parts of the config that have no safe default.
func (c Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("LLM timeout must be positive, got %s", c.Timeout)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("LLM max tokens must be positive, got %d", c.MaxTokens)
	}
	if c.Gemini.APIKey != "" && len(c.Gemini.Models) == 0 {
		return fmt.Errorf("EXAMPREP_GEMINI_MODELS is empty")
	}
	return nil
}

func firstEnv(names ...string) string {
	for _, n := range names {
		if v := os.Getenv(n); v != "" {
			return v
		}
	}
	return ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
