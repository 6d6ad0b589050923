package topics

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/abhisek/studyreport/internal/llm"
	"github.com/abhisek/studyreport/internal/logger"
)

const maxPromptChars = 4000

// TopicSchema defines the JSON schema for LLM topic classification.
var TopicSchema = &llm.Schema{
	Name:        "study-topics",
	Description: "Ordered list of study topics found in a learner's notes",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"topics": map[string]any{
				"type":        "array",
				"minItems":    1,
				"maxItems":    5,
				"items":       map[string]any{"type": "string", "minLength": 1},
				"description": "Short topic labels, most central first",
			},
		},
		"required":             []any{"topics"},
		"additionalProperties": false,
	},
}

const topicSystemPrompt = `You label study material with short topic names.

Instructions:
- Return between 1 and 5 topics, most central first.
- Each topic is two to four lowercase words, e.g. "reading comprehension".
- Use only what the text supports. Do not add commentary.`

// LLMClassifier asks a provider for topics and falls back to another
// classifier on any failure or empty answer.
type LLMClassifier struct {
	provider llm.Provider
	fallback Classifier
	log      *logger.Logger
}

// NewLLMClassifier wraps provider. fallback defaults to the built-in
// keyword classifier.
func NewLLMClassifier(provider llm.Provider, fallback Classifier, log *logger.Logger) *LLMClassifier {
	if fallback == nil {
		fallback = NewKeywordClassifier(nil)
	}
	return &LLMClassifier{
		provider: provider,
		fallback: fallback,
		log:      logger.OrNop(log).With("service", "LLMClassifier"),
	}
}

type topicOutput struct {
	Topics []string `json:"topics"`
}

// Classify implements Classifier.
func (c *LLMClassifier) Classify(ctx context.Context, text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return c.fallback.Classify(ctx, text)
	}
	topics, err := c.ask(ctx, text)
	if err != nil {
		c.log.Warn("llm topic classification failed, using fallback", "error", err)
		return c.fallback.Classify(ctx, text)
	}
	return topics, nil
}

func (c *LLMClassifier) ask(ctx context.Context, text string) ([]string, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeTopics)
	resp, err := c.provider.Generate(ctx, llm.Request{
		System:      topicSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: truncate(text, maxPromptChars)}},
		Schema:      TopicSchema,
		MaxTokens:   128,
		Temperature: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("generate topics: %w", err)
	}

	var out topicOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("parse topics: %w", err)
	}
	topics := make([]string, 0, len(out.Topics))
	seen := make(map[string]bool, len(out.Topics))
	for _, t := range out.Topics {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		topics = append(topics, t)
	}
	if len(topics) == 0 {
		return nil, ErrNoTopics
	}
	return topics, nil
}

// truncate cuts s to at most n bytes without splitting the rune at the cut.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for i := 0; i < utf8.UTFMax-1 && n > 0 && !utf8.RuneStart(s[n]); i++ {
		n--
	}
	return s[:n]
}
