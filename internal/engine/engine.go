// Package engine is the entry point of report generation: it validates a
// quiz submission, runs the analysis pipeline, persists the attempt with
// its report and updates the user's progress summary.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/studyreport/internal/aggregate"
	"github.com/abhisek/studyreport/internal/badges"
	"github.com/abhisek/studyreport/internal/diagnosis"
	"github.com/abhisek/studyreport/internal/learning"
	"github.com/abhisek/studyreport/internal/lock"
	"github.com/abhisek/studyreport/internal/logger"
	"github.com/abhisek/studyreport/internal/pattern"
	"github.com/abhisek/studyreport/internal/plan"
	"github.com/abhisek/studyreport/internal/progress"
	"github.com/abhisek/studyreport/internal/report"
	"github.com/abhisek/studyreport/internal/retry"
	"github.com/abhisek/studyreport/internal/store"
	"github.com/abhisek/studyreport/internal/topics"
)

// Collector builds the learning snapshot for a request.
type Collector interface {
	Collect(ctx context.Context, userID, category string) *learning.Snapshot
}

// SummaryReader reads the user's progress summary.
type SummaryReader interface {
	GetSummary(ctx context.Context, userID string) (*learning.ProgressSummary, error)
}

// Recorder folds results into the progress summary.
type Recorder interface {
	Record(ctx context.Context, userID string, updates ...aggregate.Update) (*learning.ProgressSummary, error)
	MergeCategory(ctx context.Context, userID, category string) (*learning.ProgressSummary, error)
}

// Deps wires an Engine.
type Deps struct {
	Log        *logger.Logger
	Collector  Collector
	Attempts   store.AttemptRepo
	Summaries  SummaryReader
	Categories store.CategoryRepo
	Recorder   Recorder
	Locker     lock.Locker
	Classifier topics.Classifier
	Renderer   *report.Renderer

	LockTTL       time.Duration
	SaveRetry     retry.Config
	PatternWindow int
	HistoryLimit  int

	// Now and NewRand default to time.Now and a time-seeded PCG source.
	Now     func() time.Time
	NewRand func() *rand.Rand
}

// Engine generates and serves quiz reports.
type Engine struct {
	Deps
	log *logger.Logger
}

// New validates deps and fills defaults.
func New(d Deps) (*Engine, error) {
	switch {
	case d.Collector == nil:
		return nil, fmt.Errorf("engine: collector required")
	case d.Attempts == nil:
		return nil, fmt.Errorf("engine: attempt store required")
	case d.Summaries == nil:
		return nil, fmt.Errorf("engine: summary store required")
	case d.Categories == nil:
		return nil, fmt.Errorf("engine: category store required")
	case d.Recorder == nil:
		return nil, fmt.Errorf("engine: recorder required")
	case d.Locker == nil:
		return nil, fmt.Errorf("engine: locker required")
	case d.Classifier == nil:
		return nil, fmt.Errorf("engine: classifier required")
	case d.Renderer == nil:
		return nil, fmt.Errorf("engine: renderer required")
	}
	if d.LockTTL <= 0 {
		d.LockTTL = 30 * time.Second
	}
	if d.SaveRetry.MaxAttempts <= 0 {
		d.SaveRetry = retry.DefaultConfig()
	}
	if d.PatternWindow <= 0 {
		d.PatternWindow = pattern.DefaultWindow
	}
	if d.HistoryLimit <= 0 {
		d.HistoryLimit = 10
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.NewRand == nil {
		d.NewRand = func() *rand.Rand {
			seed := uint64(time.Now().UnixNano())
			return rand.New(rand.NewPCG(seed, seed>>1|1))
		}
	}
	return &Engine{Deps: d, log: logger.OrNop(d.Log).With("service", "Engine")}, nil
}

const lockPoll = 20 * time.Millisecond

func reportLockKey(userID, category string) string {
	return "report:" + userID + ":" + category
}

// GenerateReport runs the full pipeline for one quiz submission.
//
// A *ValidationError means nothing was computed. A *PersistenceError is
// returned together with the computed report when storing it failed.
func (e *Engine) GenerateReport(ctx context.Context, req GenerateRequest) (*report.Report, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	lease, err := e.Locker.Acquire(ctx, reportLockKey(req.UserID, req.Category), e.LockTTL)
	if errors.Is(err, lock.ErrNotAcquired) {
		return nil, ErrDuplicateRequest
	}
	if err != nil {
		return nil, fmt.Errorf("acquire report lock: %w", err)
	}
	defer e.release(ctx, lease)

	now := e.Now().UTC()
	log := e.log.With("user_id", req.UserID, "category", req.Category)

	snap := e.Collector.Collect(ctx, req.UserID, req.Category)

	topicList, err := e.Classifier.Classify(ctx, snap.LearningText())
	if err != nil {
		return nil, fmt.Errorf("classify topics: %w", err)
	}
	if len(topicList) == 0 {
		return nil, &ValidationError{Field: "topics", Reason: "no topics could be derived from learning data", Err: topics.ErrNoTopics}
	}

	stored, counted := e.countAttempts(ctx, log, req.UserID, req.Category, snap)
	seq := req.Sequence
	if seq == 0 {
		seq = stored + 1
	}
	base := e.progressBase(ctx, log, req.UserID, req.Category, stored, counted, snap)

	rng := e.NewRand()
	est := progress.Calculate(progress.Input{
		Score:    req.Score,
		Total:    req.Total,
		Previous: base.previous,
		Sequence: seq,
		History:  snap.PriorProgress(progress.DeltaWindow),
		Now:      now,
	})
	mastery := topics.ScoreMastery(topicList, req.Score, req.Total, rng)
	wrong := diagnosis.AnalyzeWrongAnswers(req.WrongIndices, topicList)
	pat := pattern.Analyze(snap.PriorPercents(e.PatternWindow), req.Score, req.Total, e.PatternWindow)
	pl := plan.Generate(plan.Input{
		Score:         req.Score,
		Total:         req.Total,
		WrongTopics:   diagnosis.Topics(wrong),
		Mastery:       mastery,
		Pattern:       pat,
		ProgressDelta: est.DeltaPercent,
		Now:           now,
	}, rng)

	attempt := learning.QuizAttempt{
		ID:              uuid.NewString(),
		UserID:          req.UserID,
		Category:        req.Category,
		Sequence:        seq,
		Score:           req.Score,
		Total:           req.Total,
		WrongIndices:    append([]int{}, req.WrongIndices...),
		TakenAt:         now,
		ProgressPercent: est.CurrentPercent,
	}
	rep := report.Assemble(report.Parts{
		Attempt:  attempt,
		Goal:     snap.Goal,
		Degraded: snap.Degraded,
		Progress: est,
		Mastery:  mastery,
		Wrong:    wrong,
		Patterns: pat,
		Plan:     pl,
		Badges: badges.Award(badges.Input{
			Score:           req.Score,
			Total:           req.Total,
			Sequence:        seq,
			HistoryLength:   len(snap.Attempts),
			ProgressPercent: est.CurrentPercent,
		}),
	})
	rep.Narrative = e.Renderer.Render(rep)

	if len(base.backlog) > 0 {
		log.Warn("folding attempts missing from progress summary", "count", len(base.backlog))
	}
	if err := e.persist(ctx, attempt, rep, base.backlog); err != nil {
		log.Error("report computed but not persisted", "attempt_id", attempt.ID, "error", err)
		return rep, err
	}
	log.Info("report generated", "attempt_id", attempt.ID, "sequence", seq, "progress", est.CurrentPercent)
	return rep, nil
}

// persist stores the attempt with its report, then folds backlog and the
// attempt into the progress summary in one write.
func (e *Engine) persist(ctx context.Context, attempt learning.QuizAttempt, rep *report.Report, backlog []aggregate.Update) error {
	raw, err := json.Marshal(rep)
	if err != nil {
		return &PersistenceError{Op: "encode_report", Err: err}
	}

	err = retry.Do(ctx, e.SaveRetry, nil, func(ctx context.Context) error {
		return e.Attempts.SaveAttemptAndReport(ctx, attempt, raw)
	})
	if err != nil {
		return &PersistenceError{Op: "save_attempt_and_report", Err: err}
	}

	update := updateFor(attempt)
	update.Narrative = rep.Narrative
	updates := append(slices.Clip(backlog), update)
	err = retry.Do(ctx, e.SaveRetry, nil, func(ctx context.Context) error {
		_, err := e.Recorder.Record(ctx, attempt.UserID, updates...)
		return err
	})
	if err != nil {
		return &PersistenceError{Op: "save_progress_summary", Err: err}
	}
	return nil
}

// countAttempts returns the number of stored attempts in the category. When
// the count query fails it falls back to the snapshot history and reports
// false.
func (e *Engine) countAttempts(ctx context.Context, log *logger.Logger, userID, category string, snap *learning.Snapshot) (int, bool) {
	n, err := e.Attempts.CountAttempts(ctx, userID, category)
	if err != nil {
		log.Warn("count attempts failed, using snapshot history", "error", err)
		return len(snap.Attempts), false
	}
	return n, true
}

// progressState is what a new attempt builds on: the progress it smooths
// against and the stored attempts the summary has not folded yet, oldest
// first.
type progressState struct {
	previous *float64
	backlog  []aggregate.Update
}

// progressBase reads the category rollup. Attempts stored beyond the
// rollup's quiz count were saved when a summary write failed; they are
// returned as backlog and the newest of them supplies the previous value.
func (e *Engine) progressBase(ctx context.Context, log *logger.Logger, userID, category string, stored int, counted bool, snap *learning.Snapshot) progressState {
	var st progressState
	summary, err := e.Summaries.GetSummary(ctx, userID)
	if err != nil {
		log.Warn("progress summary unavailable", "error", err)
		counted = false
	}

	cp := summary.Category(category)
	folded := 0
	if cp != nil {
		folded = cp.QuizCount
	}
	if counted && stored > folded {
		missed, err := e.Attempts.ListRecentAttempts(ctx, userID, category, stored-folded)
		if err != nil {
			log.Warn("list unfolded attempts", "error", err)
		}
		for i := len(missed) - 1; i >= 0; i-- {
			st.backlog = append(st.backlog, updateFor(missed[i]))
		}
		if len(missed) > 0 {
			v := missed[0].ProgressPercent
			st.previous = &v
			return st
		}
	}

	switch {
	case cp != nil && cp.QuizCount > 0:
		v := cp.ProgressPercent
		st.previous = &v
	case len(snap.Attempts) > 0:
		v := snap.Attempts[0].ProgressPercent
		st.previous = &v
	}
	return st
}

func updateFor(a learning.QuizAttempt) aggregate.Update {
	return aggregate.Update{
		AttemptID:       a.ID,
		Category:        a.Category,
		Score:           a.Score,
		ProgressPercent: a.ProgressPercent,
		At:              a.TakenAt,
	}
}

// CategoryView is the stored state of one category.
type CategoryView struct {
	Category      string                     `json:"category"`
	LatestReport  *report.Report             `json:"latestReport"`
	Progress      *learning.CategoryProgress `json:"progress"`
	RecentHistory []learning.QuizAttempt     `json:"recentHistory"`
}

// CategoryReport returns the latest report, rollup and recent attempts of
// a category. Missing pieces are nil or empty.
func (e *Engine) CategoryReport(ctx context.Context, userID, category string) (*CategoryView, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, &ValidationError{Field: "UserID", Reason: "is required"}
	}
	category = learning.NormalizeCategory(category)

	view := &CategoryView{Category: category, RecentHistory: []learning.QuizAttempt{}}

	stored, err := e.Attempts.LatestReport(ctx, userID, category)
	if err != nil {
		return nil, fmt.Errorf("load latest report: %w", err)
	}
	if stored != nil {
		var rep report.Report
		if err := json.Unmarshal(stored.Report, &rep); err != nil {
			return nil, fmt.Errorf("decode report %s: %w", stored.Attempt.ID, err)
		}
		view.LatestReport = &rep
	}

	summary, err := e.Summaries.GetSummary(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load progress summary: %w", err)
	}
	if cp := summary.Category(category); cp != nil {
		c := *cp
		view.Progress = &c
	}

	history, err := e.Attempts.ListRecentAttempts(ctx, userID, category, e.HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	if history != nil {
		view.RecentHistory = history
	}
	return view, nil
}

// Progress returns the user's current progress summary. A user with no
// attempts gets an empty summary.
func (e *Engine) Progress(ctx context.Context, userID string) (*learning.ProgressSummary, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, &ValidationError{Field: "UserID", Reason: "is required"}
	}
	summary, err := e.Summaries.GetSummary(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load progress summary: %w", err)
	}
	if summary == nil {
		return &learning.ProgressSummary{
			UserID:     userID,
			Period:     learning.Period(e.Now()),
			Categories: []learning.CategoryProgress{},
		}, nil
	}
	return summary, nil
}

// DeleteCategory moves everything in category to the default category and
// merges its progress rollup. The default category cannot be deleted.
func (e *Engine) DeleteCategory(ctx context.Context, userID, category string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return &ValidationError{Field: "UserID", Reason: "is required"}
	}
	category = learning.NormalizeCategory(category)
	if category == learning.DefaultCategory {
		return &ValidationError{Field: "Category", Reason: "the default category cannot be deleted"}
	}

	lease, err := e.Locker.Acquire(ctx, reportLockKey(userID, category), e.LockTTL)
	if errors.Is(err, lock.ErrNotAcquired) {
		return ErrDuplicateRequest
	}
	if err != nil {
		return fmt.Errorf("acquire report lock: %w", err)
	}
	defer e.release(ctx, lease)

	// Generation in the default category must not read counts or progress
	// between the reassign and the merge.
	into, err := lock.AcquireWait(ctx, e.Locker, reportLockKey(userID, learning.DefaultCategory), e.LockTTL, lockPoll)
	if err != nil {
		return fmt.Errorf("acquire report lock of %q: %w", learning.DefaultCategory, err)
	}
	defer e.release(ctx, into)

	moved, err := e.Categories.ReassignCategory(ctx, userID, category, learning.DefaultCategory)
	if err != nil {
		return fmt.Errorf("reassign category %q: %w", category, err)
	}
	if _, err := e.Recorder.MergeCategory(ctx, userID, category); err != nil {
		return fmt.Errorf("merge progress of %q: %w", category, err)
	}
	e.log.Info("category deleted", "user_id", userID, "category", category, "attempts_moved", moved)
	return nil
}

func (e *Engine) release(ctx context.Context, lease lock.Lease) {
	if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
		e.log.Warn("release report lock", "error", err)
	}
}

