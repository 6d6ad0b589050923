package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func topicsSchema() *Schema {
	return &Schema{
		Name: "test-topics",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"topics": map[string]any{
					"type":     "array",
					"minItems": 1,
					"maxItems": 3,
					"items":    map[string]any{"type": "string", "minLength": 1},
				},
				"level": map[string]any{"type": "string", "enum": []any{"basic", "advanced"}},
			},
			"required": []any{"topics"},
		},
	}
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"topics":["grammar","vocabulary"],"level":"basic"}`, false},
		{"optional omitted", `{"topics":["grammar"]}`, false},
		{"missing required", `{"level":"basic"}`, true},
		{"wrong item type", `{"topics":[1,2]}`, true},
		{"too many items", `{"topics":["a","b","c","d"]}`, true},
		{"empty list", `{"topics":[]}`, true},
		{"enum violation", `{"topics":["a"],"level":"expert"}`, true},
		{"malformed", `{topics:}`, true},
		{"empty body", ``, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(topicsSchema(), json.RawMessage(tt.raw))
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var invalid *ErrInvalidResponse
			if !errors.As(err, &invalid) {
				t.Fatalf("expected *ErrInvalidResponse, got %T (%v)", err, err)
			}
			if string(invalid.Content) != tt.raw {
				t.Fatalf("content not preserved: %q", invalid.Content)
			}
		})
	}
}

func TestValidateResponseNilSchema(t *testing.T) {
	if err := validateResponse(nil, json.RawMessage(`not even json`)); err != nil {
		t.Fatalf("nil schema should accept anything, got %v", err)
	}
}
