// Package collector gathers a user's stored learning data into a Snapshot.
package collector

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/studyreport/internal/learning"
	"github.com/abhisek/studyreport/internal/logger"
)

// Source names as they appear in Snapshot.Degraded.
const (
	SourceNotes    = "notes"
	SourceRecords  = "records"
	SourceGoal     = "goal"
	SourceAttempts = "attempts"
)

// NoteSource lists study notes.
type NoteSource interface {
	ListNotes(ctx context.Context, userID string) ([]learning.Note, error)
}

// RecordSource lists study records.
type RecordSource interface {
	ListRecords(ctx context.Context, userID string) ([]learning.Record, error)
}

// GoalSource reads the latest learning goal.
type GoalSource interface {
	LatestGoal(ctx context.Context, userID string) (*learning.Goal, error)
}

// AttemptSource lists recent quiz attempts, newest first.
type AttemptSource interface {
	ListRecentAttempts(ctx context.Context, userID, category string, limit int) ([]learning.QuizAttempt, error)
}

// Collector builds snapshots from four independent sources.
type Collector struct {
	log      *logger.Logger
	notes    NoteSource
	records  RecordSource
	goals    GoalSource
	attempts AttemptSource
	limit    int
}

// New returns a Collector reading up to historyLimit attempts.
func New(log *logger.Logger, notes NoteSource, records RecordSource, goals GoalSource, attempts AttemptSource, historyLimit int) *Collector {
	if historyLimit <= 0 {
		historyLimit = 10
	}
	return &Collector{
		log:      logger.OrNop(log).With("service", "Collector"),
		notes:    notes,
		records:  records,
		goals:    goals,
		attempts: attempts,
		limit:    historyLimit,
	}
}

// Collect queries all sources concurrently. A failing source contributes an
// empty default and is listed in Snapshot.Degraded; Collect itself never fails.
// An empty category collects across all categories.
func (c *Collector) Collect(ctx context.Context, userID, category string) *learning.Snapshot {
	if category != "" {
		category = learning.NormalizeCategory(category)
	}
	snap := &learning.Snapshot{
		UserID:         userID,
		Category:       category,
		CategoryCounts: map[string]learning.CategoryCounts{},
	}

	var (
		mu       sync.Mutex
		notes    []learning.Note
		records  []learning.Record
		goal     *learning.Goal
		attempts []learning.QuizAttempt
	)
	degrade := func(source string, err error) {
		c.log.Warn("learning source unavailable", "user_id", userID, "source", source, "error", err)
		mu.Lock()
		snap.Degraded = append(snap.Degraded, source)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := safeCall(func() ([]learning.Note, error) { return c.notes.ListNotes(gctx, userID) })
		if err != nil {
			degrade(SourceNotes, err)
			return nil
		}
		notes = v
		return nil
	})
	g.Go(func() error {
		v, err := safeCall(func() ([]learning.Record, error) { return c.records.ListRecords(gctx, userID) })
		if err != nil {
			degrade(SourceRecords, err)
			return nil
		}
		records = v
		return nil
	})
	g.Go(func() error {
		v, err := safeCall(func() (*learning.Goal, error) { return c.goals.LatestGoal(gctx, userID) })
		if err != nil {
			degrade(SourceGoal, err)
			return nil
		}
		goal = v
		return nil
	})
	g.Go(func() error {
		v, err := safeCall(func() ([]learning.QuizAttempt, error) {
			return c.attempts.ListRecentAttempts(gctx, userID, category, c.limit)
		})
		if err != nil {
			degrade(SourceAttempts, err)
			return nil
		}
		attempts = v
		return nil
	})
	_ = g.Wait()
	slices.Sort(snap.Degraded)

	var noteText, recordText []string
	for _, n := range notes {
		cat := learning.NormalizeCategory(n.Category)
		counts := snap.CategoryCounts[cat]
		counts.Notes++
		snap.CategoryCounts[cat] = counts
		if category != "" && cat != category {
			continue
		}
		noteText = append(noteText, joinNonEmpty(" ", n.Title, n.Content))
	}
	for _, r := range records {
		cat := learning.NormalizeCategory(r.Category)
		counts := snap.CategoryCounts[cat]
		counts.Records++
		snap.CategoryCounts[cat] = counts
		if category != "" && cat != category {
			continue
		}
		recordText = append(recordText, joinNonEmpty(" ", r.Subject, r.Memo))
	}

	snap.NotesText = strings.Join(noteText, "\n")
	snap.RecordsText = strings.Join(recordText, "\n")
	snap.Goal = goal
	snap.Attempts = attempts
	return snap
}

// safeCall converts a panicking source into an error.
func safeCall[T any](fn func() (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("source panicked: %v", r)
		}
	}()
	return fn()
}

func joinNonEmpty(sep string, parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
