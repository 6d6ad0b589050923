// Package pattern detects trend, tier and consistency patterns in a user's
// recent quiz scores.
package pattern

import "github.com/abhisek/studyreport/internal/progress"

// DefaultWindow is the number of prior scores inspected.
const DefaultWindow = 5

// Trend directions.
const (
	TrendImproving = "improving"
	TrendDeclining = "declining"
	TrendStable    = "stable"
	TrendUnknown   = "unknown"
)

// Labels emitted into the strength, weakness and risk lists.
const (
	LabelImproving     = "improving trend"
	LabelDeclining     = "declining trend"
	LabelHighAccuracy  = "high accuracy"
	LabelCoreGrasp     = "solid grasp of core material"
	LabelPartial       = "partial understanding"
	LabelTopicGaps     = "gaps in some topics"
	LabelLowAccuracy   = "low accuracy"
	LabelConsistent    = "consistent performer"
	LabelInconsistent  = "inconsistent performance"
	RiskGoalCompletion = "goal completion at risk"
)

const (
	declineThreshold     = 2.0
	consistentVariance   = 25.0
	inconsistentVariance = 225.0
)

// Analysis is the pattern block of a report. Lists are never nil.
type Analysis struct {
	Trend         string   `json:"trend"`
	Strengths     []string `json:"strengths"`
	Weaknesses    []string `json:"weaknesses"`
	SystemicRisks []string `json:"systemicRisks"`

	// Variance is the population variance of the window including the
	// current score, or -1 with fewer than three scores.
	Variance float64 `json:"variance"`
}

// Analyze inspects up to window prior score percentages (newest first) and
// the current score. window <= 0 means DefaultWindow.
func Analyze(prior []float64, score, total, window int) Analysis {
	if window <= 0 {
		window = DefaultWindow
	}
	if len(prior) > window {
		prior = prior[:window]
	}
	current := progress.Instant(score, total)

	a := Analysis{
		Trend:         TrendUnknown,
		Strengths:     []string{},
		Weaknesses:    []string{},
		SystemicRisks: []string{},
		Variance:      -1,
	}

	if len(prior) >= 2 {
		newest, oldest := prior[0], prior[len(prior)-1]
		switch {
		case newest > oldest:
			a.Trend = TrendImproving
			a.Strengths = append(a.Strengths, LabelImproving)
		case oldest-newest > declineThreshold:
			a.Trend = TrendDeclining
			a.Weaknesses = append(a.Weaknesses, LabelDeclining)
		default:
			a.Trend = TrendStable
		}
	}

	switch {
	case current >= 80:
		a.Strengths = append(a.Strengths, LabelHighAccuracy, LabelCoreGrasp)
	case current >= 60:
		a.Strengths = append(a.Strengths, LabelPartial)
		a.Weaknesses = append(a.Weaknesses, LabelTopicGaps)
	default:
		a.Weaknesses = append(a.Weaknesses, LabelLowAccuracy)
		a.SystemicRisks = append(a.SystemicRisks, RiskGoalCompletion)
	}

	scores := append([]float64{current}, prior...)
	if len(scores) >= 3 {
		a.Variance = variance(scores)
		switch {
		case a.Variance < consistentVariance:
			a.Strengths = append(a.Strengths, LabelConsistent)
		case a.Variance > inconsistentVariance:
			a.Weaknesses = append(a.Weaknesses, LabelInconsistent)
		}
	}
	return a
}

func variance(xs []float64) float64 {
	mean := 0.0
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	v := 0.0
	for _, x := range xs {
		v += (x - mean) * (x - mean)
	}
	return v / float64(len(xs))
}
