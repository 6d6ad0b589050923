package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestMockProviderReplaysScript(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"a":1}`), Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockResponse{Err: &ErrRateLimit{}},
	)
	ctx := context.Background()

	resp, err := mock.Generate(ctx, Request{System: "sys"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != `{"a":1}` || resp.Usage.InputTokens != 10 || resp.StopReason != stopEnd {
		t.Fatalf("unexpected response: %+v", resp)
	}

	var rl *ErrRateLimit
	if _, err := mock.Generate(ctx, Request{}); !errors.As(err, &rl) {
		t.Fatalf("expected *ErrRateLimit, got %v", err)
	}

	var unavailable *ErrProviderUnavailable
	if _, err := mock.Generate(ctx, Request{}); !errors.As(err, &unavailable) {
		t.Fatalf("expected *ErrProviderUnavailable once exhausted, got %v", err)
	}

	mock.Push(MockResponse{Content: json.RawMessage(`{}`)})
	if _, err := mock.Generate(ctx, Request{}); err != nil {
		t.Fatalf("pushed response: %v", err)
	}

	calls := mock.Calls()
	if len(calls) != 4 || calls[0].System != "sys" {
		t.Fatalf("unexpected calls: %+v", calls)
	}
	if mock.ModelID() != ProviderMock {
		t.Fatalf("ModelID = %q", mock.ModelID())
	}
}

func TestPurpose(t *testing.T) {
	if got := PurposeFrom(context.Background()); got != "unknown" {
		t.Fatalf("default purpose = %q", got)
	}
	ctx := WithPurpose(context.Background(), PurposeTopics)
	if got := PurposeFrom(ctx); got != PurposeTopics {
		t.Fatalf("purpose = %q", got)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"anthropic with key", func(c *Config) { c.Anthropic.APIKey = "k" }, ""},
		{"anthropic without key", func(c *Config) {}, "STUDYREPORT_ANTHROPIC_API_KEY"},
		{"openrouter without key", func(c *Config) { c.Provider = ProviderOpenRouter }, "STUDYREPORT_OPENROUTER_API_KEY"},
		{"gemini with key", func(c *Config) { c.Provider = ProviderGemini; c.Gemini.APIKey = "k" }, ""},
		{"mock", func(c *Config) { c.Provider = ProviderMock }, ""},
		{"unknown", func(c *Config) { c.Provider = "bard" }, "unknown LLM provider"},
		{"empty model", func(c *Config) { c.OpenAI = ProviderConfig{APIKey: "k"}; c.Provider = ProviderOpenAI }, "no model"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfigFromEnv(t *testing.T) {
	for _, k := range []string{"ANTHROPIC_API_KEY", "OPENAI_API_KEY", "GEMINI_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(k, "")
		t.Setenv("STUDYREPORT_"+k, "")
	}
	t.Setenv("STUDYREPORT_LLM_PROVIDER", "")

	t.Run("explicit provider", func(t *testing.T) {
		t.Setenv("STUDYREPORT_LLM_PROVIDER", "openai")
		t.Setenv("STUDYREPORT_OPENAI_API_KEY", "sk-test")
		t.Setenv("STUDYREPORT_OPENAI_MODEL", "gpt-4o")
		cfg := ConfigFromEnv()
		if cfg.Provider != ProviderOpenAI || cfg.OpenAI.APIKey != "sk-test" || cfg.OpenAI.Model != "gpt-4o" {
			t.Fatalf("unexpected config: %+v", cfg)
		}
	})

	t.Run("discovered from vendor key", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "g-key")
		cfg := ConfigFromEnv()
		if cfg.Provider != ProviderGemini || cfg.Gemini.APIKey != "g-key" {
			t.Fatalf("unexpected config: %+v", cfg)
		}
	})

	t.Run("prefixed key wins discovery", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "g-key")
		t.Setenv("STUDYREPORT_OPENROUTER_API_KEY", "or-key")
		cfg := ConfigFromEnv()
		if cfg.Provider != ProviderOpenRouter {
			t.Fatalf("provider = %q", cfg.Provider)
		}
	})
}

func TestNewProviderMock(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = ProviderMock
	p, err := NewProvider(context.Background(), cfg, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := p.(*MockProvider); !ok {
		t.Fatalf("expected *MockProvider, got %T", p)
	}

	cfg.Provider = ProviderOpenAI
	if _, err := NewProvider(context.Background(), cfg, nil, nil); err == nil {
		t.Fatal("expected missing key error")
	}
}
