// Package report assembles the structured quiz report and renders it as
// localized narrative text.
package report

import (
	"math"
	"time"

	"github.com/abhisek/studyreport/internal/badges"
	"github.com/abhisek/studyreport/internal/diagnosis"
	"github.com/abhisek/studyreport/internal/learning"
	"github.com/abhisek/studyreport/internal/pattern"
	"github.com/abhisek/studyreport/internal/plan"
	"github.com/abhisek/studyreport/internal/progress"
	"github.com/abhisek/studyreport/internal/topics"
)

// TestType labels the kind of quiz a report covers.
const TestType = "quiz"

// Meta identifies what a report is about.
type Meta struct {
	AttemptID       string    `json:"attemptId"`
	UserID          string    `json:"userId"`
	Category        string    `json:"category"`
	GoalSubject     string    `json:"goalSubject,omitempty"`
	GoalTargetLevel string    `json:"goalTargetLevel,omitempty"`
	TestType        string    `json:"testType"`
	Sequence        int       `json:"testCount"`
	Date            time.Time `json:"date"`

	// Degraded lists data sources that were unavailable for this report.
	Degraded []string `json:"degradedSources,omitempty"`
}

// ScoreBlock is the raw result.
type ScoreBlock struct {
	Score   int     `json:"score"`
	Total   int     `json:"total"`
	Percent float64 `json:"percent"`
}

// Milestone points at the next 10-point progress step and the goal.
type Milestone struct {
	NextPercent float64    `json:"nextPercent"`
	TargetDate  time.Time  `json:"targetDate"`
	GoalEndDate *time.Time `json:"goalEndDate,omitempty"`

	// OnTrack is set only when the goal has an end date.
	OnTrack *bool `json:"onTrack,omitempty"`
}

// Report is created once per quiz attempt and never changed afterwards.
type Report struct {
	Meta         Meta                    `json:"meta"`
	Score        ScoreBlock              `json:"score"`
	Progress     progress.Estimate       `json:"progress"`
	TopicMastery []topics.Mastery        `json:"topicMastery"`
	WrongAnswers []diagnosis.WrongAnswer `json:"wrongAnalysis"`
	Patterns     pattern.Analysis        `json:"patterns"`
	ActionPlan   plan.Plan               `json:"actionPlan"`
	Milestone    Milestone               `json:"milestone"`
	Badges       []badges.Badge          `json:"badges"`

	// Narrative is the rendered text, filled in after assembly.
	Narrative string `json:"narrative,omitempty"`
}

// Parts are the analysis outputs a report is assembled from.
type Parts struct {
	Attempt  learning.QuizAttempt
	Goal     *learning.Goal
	Degraded []string
	Progress progress.Estimate
	Mastery  []topics.Mastery
	Wrong    []diagnosis.WrongAnswer
	Patterns pattern.Analysis
	Plan     plan.Plan
	Badges   []badges.Badge
}

// Assemble builds the Report. Nil lists become empty lists.
func Assemble(p Parts) *Report {
	r := &Report{
		Meta: Meta{
			AttemptID: p.Attempt.ID,
			UserID:    p.Attempt.UserID,
			Category:  p.Attempt.Category,
			TestType:  TestType,
			Sequence:  p.Attempt.Sequence,
			Date:      p.Attempt.TakenAt,
			Degraded:  p.Degraded,
		},
		Score: ScoreBlock{
			Score:   p.Attempt.Score,
			Total:   p.Attempt.Total,
			Percent: p.Attempt.Percent(),
		},
		Progress:     p.Progress,
		TopicMastery: orEmpty(p.Mastery),
		WrongAnswers: orEmpty(p.Wrong),
		Patterns:     p.Patterns,
		ActionPlan:   p.Plan,
		Badges:       orEmpty(p.Badges),
	}
	if p.Goal != nil {
		r.Meta.GoalSubject = p.Goal.Subject
		r.Meta.GoalTargetLevel = p.Goal.TargetLevel
	}
	r.Milestone = milestone(p.Progress, p.Goal)
	return r
}

func milestone(est progress.Estimate, goal *learning.Goal) Milestone {
	m := Milestone{
		NextPercent: NextMilestone(est.CurrentPercent),
		TargetDate:  est.CompletionDate,
	}
	if goal != nil && !goal.EndDate.IsZero() {
		end := goal.EndDate
		onTrack := !est.CompletionDate.After(end)
		m.GoalEndDate = &end
		m.OnTrack = &onTrack
	}
	return m
}

// NextMilestone returns the next multiple of ten above current, capped at 100.
func NextMilestone(current float64) float64 {
	return math.Min(100, math.Floor(current/10)*10+10)
}

func orEmpty[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}
