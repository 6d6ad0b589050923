package aggregate

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/studyreport/internal/learning"
	"github.com/abhisek/studyreport/internal/lock"
	"github.com/abhisek/studyreport/internal/logger"
	"github.com/abhisek/studyreport/internal/store"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	s, err := store.Open(fmt.Sprintf("file:agg_%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordCreatesAndUpdates(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	agg := New(logger.Nop(), st.ProgressRepo(), lock.NewMemoryLocker(), WithClock(func() time.Time { return t0 }))

	s, err := agg.Record(ctx, "u1", Update{AttemptID: "a1", Category: "programming", Score: 5, ProgressPercent: 50, At: t0})
	require.NoError(t, err)
	assert.EqualValues(t, 1, s.Version)
	assert.Equal(t, "2026-W42", s.Period)

	_, err = agg.Record(ctx, "u1", Update{AttemptID: "a2", Category: "programming", Score: 9, ProgressPercent: 70, At: t0, Narrative: "latest"})
	require.NoError(t, err)

	// Replaying a2 is a no-op.
	_, err = agg.Record(ctx, "u1", Update{AttemptID: "a2", Category: "programming", Score: 9, ProgressPercent: 70, At: t0})
	require.NoError(t, err)

	got, err := st.ProgressRepo().GetSummary(ctx, "u1")
	require.NoError(t, err)
	cp := got.Category("programming")
	require.NotNil(t, cp)
	assert.Equal(t, 2, cp.QuizCount)
	assert.Equal(t, 7.0, cp.AverageScore)
	assert.Equal(t, 70.0, cp.ProgressPercent)
	assert.Equal(t, "latest", got.Narrative)
	assert.EqualValues(t, 2, got.Version)
}

func TestRecordFoldsBatchInOneWrite(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	agg := New(logger.Nop(), st.ProgressRepo(), lock.NewMemoryLocker(), WithClock(func() time.Time { return t0 }))

	s, err := agg.Record(ctx, "u1",
		Update{AttemptID: "a1", Category: "math", Score: 4, ProgressPercent: 40, At: t0},
		Update{AttemptID: "a2", Category: "math", Score: 8, ProgressPercent: 56, At: t0, Narrative: "second"},
	)
	require.NoError(t, err)
	assert.EqualValues(t, 1, s.Version)
	cp := s.Category("math")
	require.NotNil(t, cp)
	assert.Equal(t, 2, cp.QuizCount)
	assert.Equal(t, 6.0, cp.AverageScore)
	assert.Equal(t, "a2", cp.LastAttemptID)
	assert.Equal(t, "second", s.Narrative)
}

func TestRecordRollsOverPeriod(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	clock := t0
	agg := New(logger.Nop(), st.ProgressRepo(), lock.NewMemoryLocker(), WithClock(func() time.Time { return clock }))

	_, err := agg.Record(ctx, "u1", Update{AttemptID: "a1", Category: "x", Score: 4, ProgressPercent: 40, At: clock})
	require.NoError(t, err)

	clock = t0.AddDate(0, 0, 7)
	s, err := agg.Record(ctx, "u1", Update{AttemptID: "a2", Category: "x", Score: 8, ProgressPercent: 60, At: clock})
	require.NoError(t, err)
	assert.Equal(t, "2026-W43", s.Period)
	cp := s.Category("x")
	assert.Equal(t, 40.0, cp.PreviousWeekPercent)
	assert.Equal(t, 2, cp.QuizCount)
}

func TestRecordConcurrentNoLostUpdates(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	agg := New(logger.Nop(), st.ProgressRepo(), lock.NewMemoryLocker(), WithClock(func() time.Time { return t0 }))

	const n = 12
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := agg.Record(ctx, "u1", Update{AttemptID: fmt.Sprintf("a%d", i), Category: "math", Score: 6, ProgressPercent: 60, At: t0})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := st.ProgressRepo().GetSummary(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, n, got.Category("math").QuizCount)
}

// conflictOnce wraps a SummaryStore and loses the first save race.
type conflictOnce struct {
	SummaryStore
	mu    sync.Mutex
	fired bool
	saves int
}

func (c *conflictOnce) SaveSummary(ctx context.Context, s *learning.ProgressSummary) error {
	c.mu.Lock()
	c.saves++
	fire := !c.fired
	c.fired = true
	c.mu.Unlock()
	if fire {
		return store.ErrVersionConflict
	}
	return c.SummaryStore.SaveSummary(ctx, s)
}

func TestRecordRetriesOnConflict(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	cs := &conflictOnce{SummaryStore: st.ProgressRepo()}
	agg := New(logger.Nop(), cs, lock.NewMemoryLocker(), WithClock(func() time.Time { return t0 }))

	s, err := agg.Record(ctx, "u1", Update{AttemptID: "a1", Category: "x", Score: 1, ProgressPercent: 10, At: t0})
	require.NoError(t, err)
	assert.Equal(t, 2, cs.saves)
	assert.Equal(t, 1, s.Category("x").QuizCount)
}

func TestMergeCategory(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	agg := New(logger.Nop(), st.ProgressRepo(), lock.NewMemoryLocker(), WithClock(func() time.Time { return t0 }))

	_, err := agg.Record(ctx, "u1", Update{AttemptID: "a1", Category: "history", Score: 6, ProgressPercent: 60, At: t0})
	require.NoError(t, err)
	_, err = agg.Record(ctx, "u1", Update{AttemptID: "a2", Category: "", Score: 2, ProgressPercent: 20, At: t0})
	require.NoError(t, err)

	s, err := agg.MergeCategory(ctx, "u1", "history")
	require.NoError(t, err)
	require.Len(t, s.Categories, 1)
	assert.Equal(t, 2, s.Categories[0].QuizCount)
	assert.Equal(t, 4.0, s.Categories[0].AverageScore)

	// Unknown categories are left alone.
	s, err = agg.MergeCategory(ctx, "u1", "nope")
	require.NoError(t, err)
	assert.Len(t, s.Categories, 1)
}

func TestRecordLockTimeout(t *testing.T) {
	st := openStore(t)
	locker := lock.NewMemoryLocker()
	held, err := locker.Acquire(context.Background(), "progress:u1", time.Minute)
	require.NoError(t, err)
	defer held.Release(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	agg := New(logger.Nop(), st.ProgressRepo(), locker)
	_, err = agg.Record(ctx, "u1", Update{AttemptID: "a1", Score: 1})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
