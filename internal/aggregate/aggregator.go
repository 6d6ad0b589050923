package aggregate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/studyreport/internal/learning"
	"github.com/abhisek/studyreport/internal/lock"
	"github.com/abhisek/studyreport/internal/logger"
	"github.com/abhisek/studyreport/internal/retry"
	"github.com/abhisek/studyreport/internal/store"
)

const lockPoll = 20 * time.Millisecond

// SummaryStore reads and compare-and-swaps progress summaries.
type SummaryStore interface {
	GetSummary(ctx context.Context, userID string) (*learning.ProgressSummary, error)
	SaveSummary(ctx context.Context, s *learning.ProgressSummary) error
}

// Aggregator serialises summary updates per user through a lock and
// retries lost compare-and-swap races.
type Aggregator struct {
	log     *logger.Logger
	store   SummaryStore
	locker  lock.Locker
	lockTTL time.Duration
	retry   retry.Config
	now     func() time.Time
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// WithRetry overrides the conflict retry policy.
func WithRetry(cfg retry.Config) Option {
	return func(a *Aggregator) { a.retry = cfg }
}

// WithLockTTL overrides the per-user lock TTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(a *Aggregator) { a.lockTTL = ttl }
}

// New creates an Aggregator.
func New(log *logger.Logger, st SummaryStore, locker lock.Locker, opts ...Option) *Aggregator {
	a := &Aggregator{
		log:     logger.OrNop(log).With("service", "Aggregator"),
		store:   st,
		locker:  locker,
		lockTTL: 30 * time.Second,
		retry: retry.Config{
			MaxAttempts: 5,
			InitialWait: 10 * time.Millisecond,
			MaxWait:     500 * time.Millisecond,
			Multiplier:  2.0,
		},
		now: time.Now,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Record applies updates, oldest first, to the user's summary for the
// current period in one write and returns the stored result.
func (a *Aggregator) Record(ctx context.Context, userID string, updates ...Update) (*learning.ProgressSummary, error) {
	return a.mutate(ctx, userID, func(s learning.ProgressSummary) (learning.ProgressSummary, bool) {
		return ApplyAll(s, updates)
	})
}

// MergeCategory folds category into the default category.
func (a *Aggregator) MergeCategory(ctx context.Context, userID, category string) (*learning.ProgressSummary, error) {
	return a.mutate(ctx, userID, func(s learning.ProgressSummary) (learning.ProgressSummary, bool) {
		if s.Category(learning.NormalizeCategory(category)) == nil {
			return s, false
		}
		return Merge(s, category), true
	})
}

func (a *Aggregator) mutate(ctx context.Context, userID string, fn func(learning.ProgressSummary) (learning.ProgressSummary, bool)) (*learning.ProgressSummary, error) {
	lease, err := lock.AcquireWait(ctx, a.locker, "progress:"+userID, a.lockTTL, lockPoll)
	if err != nil {
		return nil, fmt.Errorf("lock progress summary: %w", err)
	}
	defer func() {
		if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
			a.log.Warn("release progress lock", "user_id", userID, "error", err)
		}
	}()

	var result *learning.ProgressSummary
	isConflict := func(err error) bool { return errors.Is(err, store.ErrVersionConflict) }
	err = retry.Do(ctx, a.retry, isConflict, func(ctx context.Context) error {
		now := a.now().UTC()
		cur, err := a.store.GetSummary(ctx, userID)
		if err != nil {
			return fmt.Errorf("load progress summary: %w", err)
		}
		base := learning.ProgressSummary{UserID: userID, Period: learning.Period(now)}
		if cur != nil {
			base = Rollover(*cur, learning.Period(now))
		}

		next, changed := fn(base)
		if !changed {
			result = &next
			return nil
		}
		next.UpdatedAt = now
		if err := a.store.SaveSummary(ctx, &next); err != nil {
			if errors.Is(err, store.ErrVersionConflict) {
				a.log.Debug("progress summary conflict, retrying", "user_id", userID)
				return err
			}
			return fmt.Errorf("save progress summary: %w", err)
		}
		result = &next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
