package lock

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/studyreport/internal/logger"
)

func TestMemoryLockerExclusive(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryLocker()

	lease, err := m.Acquire(ctx, "report:u1:math", time.Minute)
	require.NoError(t, err)

	_, err = m.Acquire(ctx, "report:u1:math", time.Minute)
	assert.ErrorIs(t, err, ErrNotAcquired)

	other, err := m.Acquire(ctx, "report:u1:english", time.Minute)
	require.NoError(t, err)
	require.NoError(t, other.Release(ctx))

	require.NoError(t, lease.Release(ctx))
	require.NoError(t, lease.Release(ctx))

	again, err := m.Acquire(ctx, "report:u1:math", time.Minute)
	require.NoError(t, err)
	require.NoError(t, again.Release(ctx))
}

func TestMemoryLockerExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
	m := NewMemoryLocker()
	m.now = func() time.Time { return now }

	stale, err := m.Acquire(ctx, "k", time.Second)
	require.NoError(t, err)

	now = now.Add(2 * time.Second)
	fresh, err := m.Acquire(ctx, "k", time.Second)
	require.NoError(t, err)

	// The expired lease must not release the new holder.
	require.NoError(t, stale.Release(ctx))
	_, err = m.Acquire(ctx, "k", time.Second)
	assert.ErrorIs(t, err, ErrNotAcquired)
	require.NoError(t, fresh.Release(ctx))
}

func TestMemoryLockerConcurrent(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryLocker()

	var wins atomic.Int32
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := m.Acquire(ctx, "k", time.Minute); err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, wins.Load())
}

func TestAcquireWait(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryLocker()
	lease, err := m.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)

	go func() {
		time.Sleep(20 * time.Millisecond)
		lease.Release(ctx)
	}()
	got, err := AcquireWait(ctx, m, "k", time.Minute, 5*time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, got.Release(ctx))

	held, err := m.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)
	defer held.Release(ctx)
	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = AcquireWait(short, m, "k", time.Minute, 5*time.Millisecond)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestRedisLocker(t *testing.T) {
	addr := os.Getenv("STUDYREPORT_REDIS_ADDR")
	if addr == "" {
		t.Skip("STUDYREPORT_REDIS_ADDR not set")
	}
	ctx := context.Background()
	rdb := goredis.NewClient(&goredis.Options{Addr: addr})
	defer rdb.Close()
	l := NewRedisLockerFromClient(logger.Nop(), rdb, "studyreport:test:")

	lease, err := l.Acquire(ctx, "k", 5*time.Second)
	require.NoError(t, err)
	_, err = l.Acquire(ctx, "k", 5*time.Second)
	assert.ErrorIs(t, err, ErrNotAcquired)
	require.NoError(t, lease.Release(ctx))

	again, err := l.Acquire(ctx, "k", 5*time.Second)
	require.NoError(t, err)
	require.NoError(t, again.Release(ctx))
}
