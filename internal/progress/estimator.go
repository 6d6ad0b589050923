// Package progress turns quiz scores into a smoothed, confidence-weighted
// progress percentage and a completion-date estimate.
package progress

import (
	"fmt"
	"math"
	"time"
)

const (
	// MaxAlpha caps the weight of a new observation so history is never
	// fully discarded.
	MaxAlpha = 0.7

	// TargetPercent is the progress level treated as "complete".
	TargetPercent = 90.0

	// DeltaWindow is how many recent progress deltas feed the trend.
	DeltaWindow = 3

	minStep  = 1.0
	minDelta = 0.5
)

// Confidence is a qualitative reliability label for an estimate.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Alpha returns the smoothing weight for the attempt with the given
// sequence number.
func Alpha(sequence int) float64 {
	return math.Min(MaxAlpha, 0.2+0.1*float64(min(max(sequence, 0), 5)))
}

// ConfidenceFor maps an attempt sequence number to a confidence label.
func ConfidenceFor(sequence int) Confidence {
	switch {
	case sequence <= 2:
		return ConfidenceLow
	case sequence <= 4:
		return ConfidenceMedium
	default:
		return ConfidenceHigh
	}
}

// Input holds everything Estimate needs.
type Input struct {
	Score int
	Total int

	// Previous is the prior cumulative progress, nil when none exists.
	Previous *float64

	Sequence int

	// History is the recorded progress of prior attempts, newest first.
	History []float64

	Now time.Time
}

// Estimate is the progress block of a report.
type Estimate struct {
	InstantPercent  float64    `json:"instantPercent"`
	CurrentPercent  float64    `json:"currentProgressPercent"`
	PreviousPercent *float64   `json:"previousProgressPercent"`
	DeltaPercent    float64    `json:"deltaPercent"`
	Alpha           float64    `json:"alpha"`
	Confidence      Confidence `json:"confidence"`
	AverageDelta    float64    `json:"averageDelta"`
	DaysToComplete  int        `json:"daysToComplete"`
	CompletionDate  time.Time  `json:"estimatedCompletionDate"`
	Rationale       string     `json:"rationale"`
}

// Instant returns 100*score/total.
func Instant(score, total int) float64 {
	if total <= 0 {
		return 0
	}
	return 100 * float64(score) / float64(total)
}

// Calculate produces the progress estimate. It never fails; without a
// previous value the instant score is used directly.
func Calculate(in Input) Estimate {
	instant := Instant(in.Score, in.Total)
	alpha := Alpha(in.Sequence)

	est := Estimate{
		InstantPercent: instant,
		Alpha:          alpha,
		Confidence:     ConfidenceFor(in.Sequence),
	}

	if in.Previous == nil {
		est.CurrentPercent = instant
		est.DeltaPercent = instant
		est.Rationale = fmt.Sprintf(
			"no previous progress; using the instant score %.1f%% (alpha %.2f not applied)",
			instant, alpha)
	} else {
		prev := *in.Previous
		blend := alpha*instant + (1-alpha)*prev
		// Rounding must not push the value outside the two inputs.
		est.CurrentPercent = clamp(math.Round(blend), math.Min(prev, instant), math.Max(prev, instant))
		est.PreviousPercent = &prev
		est.DeltaPercent = est.CurrentPercent - prev
		est.Rationale = fmt.Sprintf(
			"alpha %.2f at attempt %d: %.2f x %.1f%% (instant) + %.2f x %.1f%% (previous) = %.1f%%",
			alpha, in.Sequence, alpha, instant, 1-alpha, prev, est.CurrentPercent)
	}

	est.AverageDelta = averageDelta(est.CurrentPercent, est.DeltaPercent, in.History)
	est.DaysToComplete = DaysToComplete(est.CurrentPercent, est.AverageDelta)
	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}
	est.CompletionDate = now.AddDate(0, 0, est.DaysToComplete)
	return est
}

// averageDelta averages the positive deltas over the last DeltaWindow
// attempts when all of them are positive; otherwise it falls back to the
// current delta floored at minStep.
func averageDelta(current, currentDelta float64, history []float64) float64 {
	series := append([]float64{current}, history...)
	var positives []float64
	for i := 0; i < DeltaWindow && i+1 < len(series); i++ {
		if d := series[i] - series[i+1]; d > 0 {
			positives = append(positives, d)
		}
	}
	if len(positives) < DeltaWindow {
		return math.Max(minStep, currentDelta)
	}
	sum := 0.0
	for _, d := range positives {
		sum += d
	}
	return sum / float64(len(positives))
}

// DaysToComplete returns ceil(remaining / max(0.5, avgDelta) * 2) where
// remaining is the distance to TargetPercent.
func DaysToComplete(current, avgDelta float64) int {
	remaining := math.Max(0, TargetPercent-current)
	return int(math.Ceil(remaining / math.Max(minDelta, avgDelta) * 2))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
