package learning

import "time"

// CategoryProgress is the durable per (user, category) rollup.
type CategoryProgress struct {
	Category            string    `json:"category"`
	ProgressPercent     float64   `json:"progress"`
	PreviousWeekPercent float64   `json:"previousWeekProgress"`
	QuizCount           int       `json:"quizCount"`
	AverageScore        float64   `json:"averageScore"`
	LastQuizDate        time.Time `json:"lastQuizDate"`

	// LastAttemptID makes re-applying the same attempt a no-op.
	LastAttemptID string `json:"lastAttemptId,omitempty"`
}

// ProgressSummary is the per-user container of category rollups for one
// reporting period.
type ProgressSummary struct {
	UserID         string             `json:"userId"`
	Period         string             `json:"period"`
	OverallPercent float64            `json:"overallProgress"`
	Categories     []CategoryProgress `json:"categories"`
	Narrative      string             `json:"narrative"`
	Version        int64              `json:"version"`
	UpdatedAt      time.Time          `json:"updatedAt"`
}

// Category returns the rollup for the named category, or nil.
func (s *ProgressSummary) Category(name string) *CategoryProgress {
	if s == nil {
		return nil
	}
	for i := range s.Categories {
		if s.Categories[i].Category == name {
			return &s.Categories[i]
		}
	}
	return nil
}
