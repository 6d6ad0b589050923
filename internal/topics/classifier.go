// Package topics infers study topics from free text and scores per-topic
// mastery.
package topics

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNoTopics is returned when a classifier derives an empty topic list.
var ErrNoTopics = errors.New("no topics derived")

// Classifier maps learning text to an ordered topic list, most relevant first.
type Classifier interface {
	Classify(ctx context.Context, text string) ([]string, error)
}

//go:embed topics.yaml
var defaultTable []byte

// Rule selects Topics when any of Keywords occurs in the text.
type Rule struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
	Topics   []string `yaml:"topics"`
}

// Table is the keyword classifier's rule set.
type Table struct {
	Fallback []string `yaml:"fallback"`
	Rules    []Rule   `yaml:"rules"`
}

// Validate rejects tables that could produce an empty topic list.
func (t *Table) Validate() error {
	if len(t.Fallback) == 0 {
		return fmt.Errorf("topic table: fallback topics required")
	}
	for i, r := range t.Rules {
		if len(r.Keywords) == 0 || len(r.Topics) == 0 {
			return fmt.Errorf("topic table: rule %d (%q) needs keywords and topics", i, r.Name)
		}
	}
	return nil
}

// ParseTable decodes and validates a YAML rule table.
func ParseTable(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse topic table: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	for i := range t.Rules {
		for j, k := range t.Rules[i].Keywords {
			t.Rules[i].Keywords[j] = strings.ToLower(k)
		}
	}
	return &t, nil
}

// DefaultTable returns the built-in rule table.
func DefaultTable() *Table {
	t, err := ParseTable(defaultTable)
	if err != nil {
		panic(err)
	}
	return t
}

// LoadTable reads a rule table from path, or returns the built-in table
// when path is empty.
func LoadTable(path string) (*Table, error) {
	if path == "" {
		return DefaultTable(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read topic table: %w", err)
	}
	return ParseTable(data)
}

// KeywordClassifier is the heuristic Classifier backed by a Table.
type KeywordClassifier struct {
	table *Table
}

// NewKeywordClassifier returns a classifier over table (nil means built-in).
func NewKeywordClassifier(table *Table) *KeywordClassifier {
	if table == nil {
		table = DefaultTable()
	}
	return &KeywordClassifier{table: table}
}

// Classify returns the topics of the first matching rule, else the fallback.
func (k *KeywordClassifier) Classify(_ context.Context, text string) ([]string, error) {
	return k.Match(text), nil
}

// Match is Classify without the context.
func (k *KeywordClassifier) Match(text string) []string {
	lower := strings.ToLower(text)
	for _, r := range k.table.Rules {
		for _, kw := range r.Keywords {
			if strings.Contains(lower, kw) {
				return append([]string(nil), r.Topics...)
			}
		}
	}
	return append([]string(nil), k.table.Fallback...)
}
