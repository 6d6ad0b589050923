package llm

import (
	"fmt"
	"os"
	"time"

	"github.com/abhisek/studyreport/internal/retry"
)

// Provider names accepted by Config.Provider.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

const envPrefix = "STUDYREPORT_"

// Config selects and configures the topic-classification model.
type Config struct {
	Provider string

	Anthropic  ProviderConfig
	OpenAI     ProviderConfig
	Gemini     ProviderConfig
	OpenRouter ProviderConfig
	Retry      retry.Config

	// Timeout bounds one classification call, retries included.
	Timeout time.Duration
}

// ProviderConfig is the per-provider credential and model.
type ProviderConfig struct {
	APIKey  string
	Model   string
	BaseURL string // optional; OpenAI-compatible endpoints only
}

// DefaultConfig returns small, inexpensive models for every provider.
func DefaultConfig() Config {
	return Config{
		Provider:   ProviderAnthropic,
		Anthropic:  ProviderConfig{Model: "claude-haiku-4-5"},
		OpenAI:     ProviderConfig{Model: "gpt-4o-mini"},
		Gemini:     ProviderConfig{Model: "gemini-2.0-flash"},
		OpenRouter: ProviderConfig{Model: "google/gemini-2.0-flash-001", BaseURL: openRouterBaseURL},
		Retry:      retry.DefaultConfig(),
		Timeout:    20 * time.Second,
	}
}

// ConfigFromEnv reads STUDYREPORT_LLM_PROVIDER and the
// STUDYREPORT_<PROVIDER>_{API_KEY,MODEL,BASE_URL} variables over the
// defaults. When no provider is named, the first standard vendor key
// found in the environment picks one.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	readProvider := func(name string, pc *ProviderConfig) {
		if k := os.Getenv(envPrefix + name + "_API_KEY"); k != "" {
			pc.APIKey = k
		}
		if m := os.Getenv(envPrefix + name + "_MODEL"); m != "" {
			pc.Model = m
		}
		if u := os.Getenv(envPrefix + name + "_BASE_URL"); u != "" {
			pc.BaseURL = u
		}
	}
	readProvider("ANTHROPIC", &cfg.Anthropic)
	readProvider("OPENAI", &cfg.OpenAI)
	readProvider("GEMINI", &cfg.Gemini)
	readProvider("OPENROUTER", &cfg.OpenRouter)

	if p := os.Getenv(envPrefix + "LLM_PROVIDER"); p != "" {
		cfg.Provider = p
		return cfg
	}
	discover(&cfg)
	return cfg
}

// discover falls back to the vendors' own key variables.
func discover(cfg *Config) {
	candidates := []struct {
		env      string
		provider string
		pc       *ProviderConfig
	}{
		{"ANTHROPIC_API_KEY", ProviderAnthropic, &cfg.Anthropic},
		{"OPENAI_API_KEY", ProviderOpenAI, &cfg.OpenAI},
		{"GEMINI_API_KEY", ProviderGemini, &cfg.Gemini},
		{"OPENROUTER_API_KEY", ProviderOpenRouter, &cfg.OpenRouter},
	}
	for _, c := range candidates {
		if c.pc.APIKey != "" {
			cfg.Provider = c.provider
			return
		}
	}
	for _, c := range candidates {
		if k := os.Getenv(c.env); k != "" {
			cfg.Provider = c.provider
			c.pc.APIKey = k
			return
		}
	}
}

func (c Config) selected() (*ProviderConfig, bool) {
	switch c.Provider {
	case ProviderAnthropic:
		return &c.Anthropic, true
	case ProviderOpenAI:
		return &c.OpenAI, true
	case ProviderGemini:
		return &c.Gemini, true
	case ProviderOpenRouter:
		return &c.OpenRouter, true
	}
	return nil, false
}

// Validate checks that the selected provider is known and has a key.
func (c Config) Validate() error {
	if c.Provider == ProviderMock {
		return nil
	}
	pc, ok := c.selected()
	if !ok {
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if pc.APIKey == "" {
		return fmt.Errorf("%s%s_API_KEY is required for the %s provider", envPrefix, upper(c.Provider), c.Provider)
	}
	if pc.Model == "" {
		return fmt.Errorf("no model configured for the %s provider", c.Provider)
	}
	return nil
}

func upper(s string) string {
	b := []byte(s)
	for i, ch := range b {
		if 'a' <= ch && ch <= 'z' {
			b[i] = ch - 'a' + 'A'
		}
	}
	return string(b)
}
