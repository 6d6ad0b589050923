package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/studyreport/internal/learning"
)

var t0 = time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

func TestApply_FirstAttemptCreatesCategory(t *testing.T) {
	s, ok := Apply(learning.ProgressSummary{UserID: "u1"}, Update{
		AttemptID: "a1", Category: "programming", Score: 5, ProgressPercent: 50, At: t0,
	})
	require.True(t, ok)
	cp := s.Category("programming")
	require.NotNil(t, cp)
	assert.Equal(t, 1, cp.QuizCount)
	assert.Equal(t, 5.0, cp.AverageScore)
	assert.Equal(t, 50.0, cp.ProgressPercent)
	assert.Equal(t, t0, cp.LastQuizDate)
	assert.Equal(t, 50.0, s.OverallPercent)
}

func TestApply_IdempotentPerAttempt(t *testing.T) {
	u := Update{AttemptID: "a1", Category: "x", Score: 5, ProgressPercent: 50, At: t0}
	s, _ := Apply(learning.ProgressSummary{}, u)
	again, ok := Apply(s, u)
	assert.False(t, ok)
	assert.Equal(t, 1, again.Category("x").QuizCount)
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	s, _ := Apply(learning.ProgressSummary{}, Update{AttemptID: "a1", Category: "x", Score: 5, At: t0})
	_, _ = Apply(s, Update{AttemptID: "a2", Category: "x", Score: 9, At: t0})
	assert.Equal(t, 1, s.Categories[0].QuizCount)
}

func TestApply_MatchesBatch(t *testing.T) {
	updates := []Update{
		{AttemptID: "a1", Score: 3, ProgressPercent: 30, At: t0},
		{AttemptID: "a2", Score: 7, ProgressPercent: 45, At: t0.Add(time.Hour)},
		{AttemptID: "a3", Score: 8, ProgressPercent: 60, At: t0.Add(2 * time.Hour)},
		{AttemptID: "a4", Score: 2, ProgressPercent: 50, At: t0.Add(3 * time.Hour)},
	}
	s := learning.ProgressSummary{}
	for _, u := range updates {
		u.Category = "english"
		s, _ = Apply(s, u)
	}
	got := s.Category("english")
	want := Batch("english", updates)
	assert.Equal(t, want.QuizCount, got.QuizCount)
	assert.InDelta(t, want.AverageScore, got.AverageScore, 1e-9)
	assert.Equal(t, want.ProgressPercent, got.ProgressPercent)
	assert.Equal(t, want.LastQuizDate, got.LastQuizDate)
	assert.InDelta(t, 5.0, got.AverageScore, 1e-9)
}

func TestApplyAll_FoldsBacklogOnce(t *testing.T) {
	s, _ := Apply(learning.ProgressSummary{}, Update{AttemptID: "a1", Category: "x", Score: 4, ProgressPercent: 40, At: t0})
	batch := []Update{
		{AttemptID: "a2", Category: "x", Score: 6, ProgressPercent: 48, At: t0.Add(time.Hour)},
		{AttemptID: "a3", Category: "x", Score: 8, ProgressPercent: 60, At: t0.Add(2 * time.Hour)},
	}

	s, ok := ApplyAll(s, batch)
	require.True(t, ok)
	cp := s.Category("x")
	assert.Equal(t, 3, cp.QuizCount)
	assert.InDelta(t, 6.0, cp.AverageScore, 1e-9)
	assert.Equal(t, 60.0, cp.ProgressPercent)
	assert.Equal(t, "a3", cp.LastAttemptID)

	again, ok := ApplyAll(s, batch)
	assert.False(t, ok)
	assert.Equal(t, 3, again.Category("x").QuizCount)

	// A batch whose head was stored earlier folds only the rest.
	s, ok = ApplyAll(s, append(batch, Update{AttemptID: "a4", Category: "x", Score: 2, ProgressPercent: 50, At: t0.Add(3 * time.Hour)}))
	require.True(t, ok)
	assert.Equal(t, 4, s.Category("x").QuizCount)
	assert.InDelta(t, 5.0, s.Category("x").AverageScore, 1e-9)
}

func TestOverallIsWeighted(t *testing.T) {
	cats := []learning.CategoryProgress{
		{Category: "a", ProgressPercent: 80, QuizCount: 3},
		{Category: "b", ProgressPercent: 40, QuizCount: 1},
	}
	assert.Equal(t, 70.0, Overall(cats))
	assert.Zero(t, Overall(nil))
}

func TestRollover(t *testing.T) {
	s := learning.ProgressSummary{
		UserID: "u1", Period: "2026-W42", Version: 4,
		Categories: []learning.CategoryProgress{{Category: "x", ProgressPercent: 55, QuizCount: 2}},
	}
	same := Rollover(s, "2026-W42")
	assert.Equal(t, int64(4), same.Version)

	next := Rollover(s, "2026-W43")
	assert.Equal(t, "2026-W43", next.Period)
	assert.Zero(t, next.Version)
	assert.Equal(t, 55.0, next.Categories[0].PreviousWeekPercent)
	assert.Equal(t, 2, next.Categories[0].QuizCount)
	assert.Zero(t, s.Categories[0].PreviousWeekPercent, "input untouched")
}

func TestMerge(t *testing.T) {
	later := t0.Add(24 * time.Hour)
	s := learning.ProgressSummary{Categories: []learning.CategoryProgress{
		{Category: learning.DefaultCategory, ProgressPercent: 40, AverageScore: 4, QuizCount: 1, LastQuizDate: t0, LastAttemptID: "g1"},
		{Category: "history", ProgressPercent: 70, AverageScore: 7, QuizCount: 3, LastQuizDate: later, LastAttemptID: "h3"},
	}}
	m := Merge(s, "History")
	require.Len(t, m.Categories, 1)
	g := m.Categories[0]
	assert.Equal(t, learning.DefaultCategory, g.Category)
	assert.Equal(t, 4, g.QuizCount)
	assert.InDelta(t, 6.25, g.AverageScore, 1e-9)
	assert.InDelta(t, 62.5, g.ProgressPercent, 1e-9)
	assert.Equal(t, later, g.LastQuizDate)
	assert.Equal(t, "h3", g.LastAttemptID)
	assert.InDelta(t, 62.5, m.OverallPercent, 1e-9)
}

func TestMergeRenamesWhenNoDefault(t *testing.T) {
	s := learning.ProgressSummary{Categories: []learning.CategoryProgress{{Category: "art", QuizCount: 2, ProgressPercent: 30}}}
	m := Merge(s, "art")
	require.Len(t, m.Categories, 1)
	assert.Equal(t, learning.DefaultCategory, m.Categories[0].Category)
	assert.Equal(t, 2, m.Categories[0].QuizCount)

	assert.Equal(t, s, Merge(s, "missing"))
	assert.Equal(t, m, Merge(m, learning.DefaultCategory))
}
