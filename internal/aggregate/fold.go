// Package aggregate folds per-attempt results into the durable per-user
// progress summary.
package aggregate

import (
	"slices"
	"time"

	"github.com/abhisek/studyreport/internal/learning"
)

// Update is the result of one report, as seen by the aggregator.
type Update struct {
	AttemptID string
	Category  string

	// Score is the raw score; AverageScore is a running mean of it.
	Score int

	ProgressPercent float64
	Narrative       string
	At              time.Time
}

// Apply folds u into s and returns the new summary. It reports false, and
// returns s unchanged, when u was already the last attempt applied to its
// category. s is not modified.
func Apply(s learning.ProgressSummary, u Update) (learning.ProgressSummary, bool) {
	cat := learning.NormalizeCategory(u.Category)
	out := clone(s)

	cp := out.Category(cat)
	if cp == nil {
		out.Categories = append(out.Categories, learning.CategoryProgress{Category: cat})
		cp = &out.Categories[len(out.Categories)-1]
	} else if u.AttemptID != "" && cp.LastAttemptID == u.AttemptID {
		return s, false
	}

	n := float64(cp.QuizCount)
	cp.AverageScore = (cp.AverageScore*n + float64(u.Score)) / (n + 1)
	cp.QuizCount++
	cp.ProgressPercent = u.ProgressPercent
	cp.LastQuizDate = u.At
	cp.LastAttemptID = u.AttemptID

	if u.Narrative != "" {
		out.Narrative = u.Narrative
	}
	out.OverallPercent = Overall(out.Categories)
	return out, true
}

// ApplyAll folds updates, oldest first. Updates up to and including the
// one last applied to its category are skipped, so re-running a batch that
// was already stored is a no-op.
func ApplyAll(s learning.ProgressSummary, updates []Update) (learning.ProgressSummary, bool) {
	start := 0
	for i := len(updates) - 1; i >= 0; i-- {
		u := updates[i]
		cp := s.Category(learning.NormalizeCategory(u.Category))
		if cp != nil && u.AttemptID != "" && cp.LastAttemptID == u.AttemptID {
			start = i + 1
			break
		}
	}

	changed := false
	for _, u := range updates[start:] {
		var ok bool
		if s, ok = Apply(s, u); ok {
			changed = true
		}
	}
	return s, changed
}

// Rollover starts a new reporting period. Categories carry over, with
// PreviousWeekPercent set to the progress they closed the old period at.
// The returned summary has Version 0 so it is stored as a new row.
func Rollover(s learning.ProgressSummary, period string) learning.ProgressSummary {
	if s.Period == period {
		return s
	}
	out := clone(s)
	out.Period = period
	out.Version = 0
	for i := range out.Categories {
		out.Categories[i].PreviousWeekPercent = out.Categories[i].ProgressPercent
	}
	return out
}

// Merge folds category from into learning.DefaultCategory. Counts add,
// averages and progress are weighted by quiz count, and the later last-quiz
// date wins. Merging a missing category or the default itself is a no-op.
func Merge(s learning.ProgressSummary, from string) learning.ProgressSummary {
	from = learning.NormalizeCategory(from)
	if from == learning.DefaultCategory || s.Category(from) == nil {
		return s
	}
	out := clone(s)
	src := *out.Category(from)
	out.Categories = slices.DeleteFunc(out.Categories, func(c learning.CategoryProgress) bool {
		return c.Category == from
	})

	dst := out.Category(learning.DefaultCategory)
	if dst == nil {
		src.Category = learning.DefaultCategory
		out.Categories = append(out.Categories, src)
	} else {
		total := dst.QuizCount + src.QuizCount
		if total > 0 {
			wd, ws := float64(dst.QuizCount), float64(src.QuizCount)
			dst.AverageScore = (dst.AverageScore*wd + src.AverageScore*ws) / float64(total)
			dst.ProgressPercent = (dst.ProgressPercent*wd + src.ProgressPercent*ws) / float64(total)
			dst.PreviousWeekPercent = (dst.PreviousWeekPercent*wd + src.PreviousWeekPercent*ws) / float64(total)
		}
		dst.QuizCount = total
		if src.LastQuizDate.After(dst.LastQuizDate) {
			dst.LastQuizDate = src.LastQuizDate
			dst.LastAttemptID = src.LastAttemptID
		}
	}
	out.OverallPercent = Overall(out.Categories)
	return out
}

// Overall is the quiz-count-weighted mean progress across categories.
func Overall(cats []learning.CategoryProgress) float64 {
	var sum, n float64
	for _, c := range cats {
		sum += c.ProgressPercent * float64(c.QuizCount)
		n += float64(c.QuizCount)
	}
	if n == 0 {
		return 0
	}
	return sum / n
}

// Batch computes a category rollup from all of its updates at once.
// Applying the same updates one at a time yields the same count and average.
func Batch(category string, updates []Update) learning.CategoryProgress {
	cp := learning.CategoryProgress{Category: learning.NormalizeCategory(category)}
	sum := 0.0
	for _, u := range updates {
		sum += float64(u.Score)
		cp.QuizCount++
		cp.ProgressPercent = u.ProgressPercent
		cp.LastQuizDate = u.At
		cp.LastAttemptID = u.AttemptID
	}
	if cp.QuizCount > 0 {
		cp.AverageScore = sum / float64(cp.QuizCount)
	}
	return cp
}

func clone(s learning.ProgressSummary) learning.ProgressSummary {
	s.Categories = slices.Clone(s.Categories)
	return s
}
