// Package plan builds the 7-day action plan and its companions (practice
// set sizing, next-test scheduling, reflection prompts) from the analysis
// of one quiz attempt.
package plan

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/abhisek/studyreport/internal/pattern"
	"github.com/abhisek/studyreport/internal/topics"
)

// DayMinutes is the static time budget for days 1-7.
var DayMinutes = [7]int{40, 45, 40, 35, 50, 40, 20}

// Difficulty tiers for the practice set.
const (
	DifficultyFoundational = "foundational"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

const (
	minPractice = 5
	maxPractice = 15
	lowRatio    = 0.6
	highRatio   = 0.8
)

// Input is what the plan is built from.
type Input struct {
	Score int
	Total int

	// WrongTopics are the topics of the wrong-answer analyses, in order.
	WrongTopics []string

	Mastery []topics.Mastery
	Pattern pattern.Analysis

	// ProgressDelta is the change in smoothed progress for this attempt.
	ProgressDelta float64

	Now time.Time
}

// DayPlan is one day of the action plan.
type DayPlan struct {
	Day        int      `json:"day"`
	Focus      string   `json:"focus"`
	Activities []string `json:"activities"`
	Minutes    int      `json:"minutes"`
}

// PracticeSet sizes the next practice session.
type PracticeSet struct {
	Questions  int    `json:"questions"`
	Difficulty string `json:"difficulty"`
}

// NextTest schedules the next quiz.
type NextTest struct {
	Date      time.Time `json:"date"`
	DaysUntil int       `json:"daysUntil"`
	Focus     []string  `json:"focus"`
}

// Reflection pairs a reflective question with a habit tip.
type Reflection struct {
	Prompt   string `json:"prompt"`
	HabitTip string `json:"habitTip"`
}

// Plan is the action-plan block of a report. Lists are never nil.
type Plan struct {
	Days        []DayPlan   `json:"days"`
	MicroGoals  []string    `json:"microGoals"`
	Resources   []string    `json:"resources"`
	Practice    PracticeSet `json:"practiceSet"`
	Bottlenecks []string    `json:"bottlenecks"`
	NextTest    NextTest    `json:"nextTest"`
	FocusAreas  []string    `json:"focusAreas"`
	Reflection  Reflection  `json:"reflection"`
}

// Generate builds a Plan. rng only drives the reflection prompt and habit
// tip choice; a nil rng picks the first entry of each pool.
func Generate(in Input, rng *rand.Rand) Plan {
	ratio := 0.0
	if in.Total > 0 {
		ratio = float64(in.Score) / float64(in.Total)
	}
	weakest := weakestTopic(in.Mastery, in.WrongTopics)
	focus := FocusAreas(in.WrongTopics)

	p := Plan{
		Days:        days(ratio, len(in.WrongTopics), weakest),
		MicroGoals:  microGoals(ratio, len(in.WrongTopics), weakest),
		Resources:   resources(ratio, weakest),
		Practice:    Practice(in.Score, in.Total),
		Bottlenecks: Bottlenecks(in.Pattern, weakest),
		FocusAreas:  focus,
		Reflection:  reflect(in.Pattern, ratio, in.ProgressDelta, rng),
	}
	daysUntil := NextTestDays(ratio)
	p.NextTest = NextTest{
		Date:      in.Now.AddDate(0, 0, daysUntil),
		DaysUntil: daysUntil,
		Focus:     focus,
	}
	return p
}

func days(ratio float64, wrong int, weakest string) []DayPlan {
	var d1 DayPlan
	if wrong > 0 {
		d1 = DayPlan{Focus: "wrong-answer review", Activities: []string{
			fmt.Sprintf("Re-solve the %d missed question(s) without looking at the answers", wrong),
			"Write one line on why each original answer was wrong",
		}}
	} else {
		d1 = DayPlan{Focus: "summary review", Activities: []string{
			"Summarize the quiz material on one page",
			"List the two ideas you are least sure about",
		}}
	}

	var d2 DayPlan
	if ratio < lowRatio {
		d2 = DayPlan{Focus: "concept rebuild", Activities: []string{
			fmt.Sprintf("Rebuild the basics of %s from your notes", weakest),
			"Work three introductory examples step by step",
		}}
	} else {
		d2 = DayPlan{Focus: "timed practice", Activities: []string{
			"Solve a short set under a time limit",
			"Review any item that took longer than expected",
		}}
	}

	out := []DayPlan{
		d1,
		d2,
		{Focus: "practice", Activities: []string{"Complete the recommended practice set"}},
		{Focus: "weak-topic focus", Activities: []string{fmt.Sprintf("Targeted drills on %s", weakest)}},
		{Focus: "comprehensive review", Activities: []string{"Review all topics covered this week", "Redo earlier mistakes"}},
		{Focus: "applied practice", Activities: []string{"Apply the material to a new problem or small project"}},
		{Focus: "next-cycle planning", Activities: []string{"Check this week's goals and set next week's"}},
	}
	for i := range out {
		out[i].Day = i + 1
		out[i].Minutes = DayMinutes[i]
	}
	return out
}

func microGoals(ratio float64, wrong int, weakest string) []string {
	switch {
	case ratio < lowRatio:
		goals := []string{
			fmt.Sprintf("Explain the key idea of %s without notes", weakest),
			"Study at least 30 minutes on five days this week",
		}
		if wrong > 0 {
			goals = append(goals, fmt.Sprintf("Re-solve all %d missed questions correctly", wrong))
		}
		return goals
	case ratio < highRatio:
		return []string{
			fmt.Sprintf("Raise %s mastery by 10 points", weakest),
			"Finish one timed practice set with at least 80% accuracy",
		}
	default:
		return []string{
			"Keep accuracy above 80% on the next test",
			"Attempt one advanced problem per day",
		}
	}
}

func resources(ratio float64, weakest string) []string {
	switch {
	case ratio < lowRatio:
		return []string{
			fmt.Sprintf("Introductory explanation of %s", weakest),
			"Worked examples with full solutions",
			"Flashcards for key terms",
		}
	case ratio < highRatio:
		return []string{
			fmt.Sprintf("Practice problems on %s", weakest),
			"Summary sheet of common mistakes",
		}
	default:
		return []string{
			"Advanced or mixed-topic problem sets",
			"Past exams under timed conditions",
		}
	}
}

// Practice sizes the practice set: clamp(5, 15, total-score+3) questions,
// with difficulty from the score ratio.
func Practice(score, total int) PracticeSet {
	n := min(maxPractice, max(minPractice, total-score+3))
	ratio := 0.0
	if total > 0 {
		ratio = float64(score) / float64(total)
	}
	diff := DifficultyFoundational
	switch {
	case ratio >= highRatio:
		diff = DifficultyAdvanced
	case ratio >= lowRatio:
		diff = DifficultyIntermediate
	}
	return PracticeSet{Questions: n, Difficulty: diff}
}

// NextTestDays returns 7, 8 or 9 days for high, middle and low score ratios.
func NextTestDays(ratio float64) int {
	switch {
	case ratio >= highRatio:
		return 7
	case ratio >= lowRatio:
		return 8
	default:
		return 9
	}
}

// Bottlenecks derives limiting factors from the pattern analysis.
func Bottlenecks(a pattern.Analysis, weakest string) []string {
	out := []string{}
	for _, w := range a.Weaknesses {
		switch w {
		case pattern.LabelDeclining:
			out = append(out, "recent scores are falling")
		case pattern.LabelInconsistent:
			out = append(out, "uneven study rhythm between tests")
		case pattern.LabelLowAccuracy:
			out = append(out, "foundational concepts are not yet secure")
		case pattern.LabelTopicGaps:
			out = append(out, fmt.Sprintf("specific gaps in %s", weakest))
		}
	}
	return out
}

// FocusAreas returns the distinct wrong-answer topics, or generic areas
// when there were no wrong answers.
func FocusAreas(wrongTopics []string) []string {
	seen := make(map[string]bool, len(wrongTopics))
	out := []string{}
	for _, t := range wrongTopics {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return []string{"overall review", "advanced application"}
	}
	return out
}

// weakestTopic is the lowest-mastery topic, else the first wrong topic.
func weakestTopic(mastery []topics.Mastery, wrongTopics []string) string {
	if len(mastery) > 0 {
		w := mastery[0]
		for _, m := range mastery[1:] {
			if m.Mastery < w.Mastery {
				w = m
			}
		}
		return w.Topic
	}
	if len(wrongTopics) > 0 {
		return wrongTopics[0]
	}
	return "the core material"
}
