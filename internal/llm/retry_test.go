package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/abhisek/studyreport/internal/retry"
)

func fastRetry() retry.Config {
	return retry.Config{MaxAttempts: 3, InitialWait: time.Millisecond, MaxWait: 5 * time.Millisecond, Multiplier: 2}
}

var okResponse = MockResponse{Content: json.RawMessage(`{"ok":true}`)}

func TestRetryProvider(t *testing.T) {
	down := MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}}
	invalid := MockResponse{Err: &ErrInvalidResponse{Err: errors.New("bad")}}

	tests := []struct {
		name      string
		script    []MockResponse
		wantCalls int
		wantErr   bool
	}{
		{"first try", []MockResponse{okResponse}, 1, false},
		{"transient then ok", []MockResponse{down, okResponse}, 2, false},
		{"exhausted", []MockResponse{down, down, down, okResponse}, 3, true},
		{"max tokens not retried", []MockResponse{{Err: &ErrMaxTokensExceeded{}}, okResponse}, 1, true},
		{"invalid retried once", []MockResponse{invalid, invalid, okResponse}, 2, true},
		{"invalid then ok", []MockResponse{invalid, okResponse}, 2, false},
		{"rate limit", []MockResponse{{Err: &ErrRateLimit{RetryAfter: time.Millisecond}}, okResponse}, 2, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockProvider(tt.script...)
			resp, err := WithRetry(mock, fastRetry()).Generate(context.Background(), Request{})
			if got := len(mock.Calls()); got != tt.wantCalls {
				t.Fatalf("calls = %d, want %d", got, tt.wantCalls)
			}
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(resp.Content) != `{"ok":true}` {
				t.Fatalf("content = %s", resp.Content)
			}
		})
	}
}

func TestRetryProviderStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	mock := NewMockProvider(MockResponse{Err: context.Canceled}, okResponse)

	_, err := WithRetry(mock, fastRetry()).Generate(ctx, Request{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(mock.Calls()) != 1 {
		t.Fatalf("expected a single call, got %d", len(mock.Calls()))
	}
}

func TestRateLimitRetryAfter(t *testing.T) {
	err := &ErrRateLimit{RetryAfter: 3 * time.Second}
	if got := retry.Backoff(fastRetry(), 0, err); got != 3*time.Second {
		t.Fatalf("backoff = %s, want 3s", got)
	}
}
