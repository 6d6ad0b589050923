package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
)

func anthropicServer(t *testing.T, status int, body map[string]any) *AnthropicProvider {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)

	p, err := NewAnthropicProvider(ProviderConfig{APIKey: "test-key", Model: "claude-haiku", BaseURL: srv.URL},
		option.WithMaxRetries(0))
	if err != nil {
		t.Fatalf("NewAnthropicProvider: %v", err)
	}
	return p
}

func anthropicMessage(text, stop string) map[string]any {
	return map[string]any{
		"id":          "msg_test",
		"type":        "message",
		"role":        "assistant",
		"content":     []map[string]any{{"type": "text", "text": text}},
		"model":       "claude-haiku-4-5",
		"stop_reason": stop,
		"usage":       map[string]any{"input_tokens": 50, "output_tokens": 12},
	}
}

func anthropicError(kind string) map[string]any {
	return map[string]any{"type": "error", "error": map[string]any{"type": kind, "message": kind}}
}

func TestAnthropicProviderStructuredAnswer(t *testing.T) {
	p := anthropicServer(t, http.StatusOK, anthropicMessage(`{"topics":["grammar"]}`, "end_turn"))

	resp, err := p.Generate(context.Background(), Request{
		System:    "label topics",
		Messages:  []Message{{Role: RoleUser, Content: "english grammar notes"}},
		Schema:    topicsSchema(),
		MaxTokens: 128,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != `{"topics":["grammar"]}` {
		t.Fatalf("content = %s", resp.Content)
	}
	if resp.Usage.TotalTokens != 62 || resp.StopReason != stopEnd {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if p.ModelID() != "claude-haiku-4-5" {
		t.Fatalf("alias not resolved: %q", p.ModelID())
	}
}

func TestAnthropicProviderErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   map[string]any
		check  func(error) bool
	}{
		{"rate limit", http.StatusTooManyRequests, anthropicError("rate_limit_error"), isA[*ErrRateLimit]},
		{"server error", http.StatusInternalServerError, anthropicError("api_error"), isA[*ErrProviderUnavailable]},
		{"schema mismatch", http.StatusOK, anthropicMessage(`{"subjects":[]}`, "end_turn"), isA[*ErrInvalidResponse]},
		{"truncated", http.StatusOK, anthropicMessage(`{"topics":["gra`, "max_tokens"), isA[*ErrMaxTokensExceeded]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := anthropicServer(t, tt.status, tt.body)
			_, err := p.Generate(context.Background(), Request{
				Messages:  []Message{{Role: RoleUser, Content: "x"}},
				Schema:    topicsSchema(),
				MaxTokens: 64,
			})
			if err == nil || !tt.check(err) {
				t.Fatalf("unexpected error: %T (%v)", err, err)
			}
		})
	}
}

func isA[T error](err error) bool {
	var target T
	return errors.As(err, &target)
}

func TestNewAnthropicProviderRequiresKey(t *testing.T) {
	if _, err := NewAnthropicProvider(ProviderConfig{Model: "claude-haiku"}); err == nil {
		t.Fatal("expected error without API key")
	}
}
