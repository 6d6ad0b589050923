package learning

import "strings"

// CategoryCounts tallies a user's stored content for one category.
type CategoryCounts struct {
	Notes   int `json:"notes"`
	Records int `json:"records"`
}

// Snapshot is the per-request aggregate of a user's stored learning data.
// It is built fresh for every report and never persisted.
type Snapshot struct {
	UserID   string
	Category string // empty when collected across all categories

	NotesText   string
	RecordsText string
	Goal        *Goal

	// Attempts are the most recent quiz attempts, newest first.
	Attempts []QuizAttempt

	CategoryCounts map[string]CategoryCounts

	// Degraded names the sources that failed and were replaced by empty defaults.
	Degraded []string
}

// LearningText joins note and record text for topic inference.
func (s *Snapshot) LearningText() string {
	parts := make([]string, 0, 2)
	if t := strings.TrimSpace(s.NotesText); t != "" {
		parts = append(parts, t)
	}
	if t := strings.TrimSpace(s.RecordsText); t != "" {
		parts = append(parts, t)
	}
	return strings.Join(parts, "\n")
}

// PriorPercents returns the score percentages of up to n attempts, newest first.
func (s *Snapshot) PriorPercents(n int) []float64 {
	out := make([]float64, 0, min(n, len(s.Attempts)))
	for i := 0; i < len(s.Attempts) && i < n; i++ {
		out = append(out, s.Attempts[i].Percent())
	}
	return out
}

// PriorProgress returns the recorded progress values of up to n attempts, newest first.
func (s *Snapshot) PriorProgress(n int) []float64 {
	out := make([]float64, 0, min(n, len(s.Attempts)))
	for i := 0; i < len(s.Attempts) && i < n; i++ {
		out = append(out, s.Attempts[i].ProgressPercent)
	}
	return out
}
