// Package lock provides keyed, TTL-bounded mutual exclusion used to reject
// duplicate concurrent report generations and to serialise per-user
// progress updates.
package lock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotAcquired is returned when the key is already held.
var ErrNotAcquired = errors.New("lock not acquired")

// Lease is a held lock. Release is safe to call more than once.
type Lease interface {
	Release(ctx context.Context) error
}

// Locker acquires keyed leases. Acquire never blocks waiting for a holder;
// it returns ErrNotAcquired immediately.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (Lease, error)
}

// AcquireWait retries Acquire until it succeeds or ctx is done.
func AcquireWait(ctx context.Context, l Locker, key string, ttl, poll time.Duration) (Lease, error) {
	for {
		lease, err := l.Acquire(ctx, key, ttl)
		if !errors.Is(err, ErrNotAcquired) {
			return lease, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(poll):
		}
	}
}

// MemoryLocker is an in-process Locker for single-instance deployments.
type MemoryLocker struct {
	mu   sync.Mutex
	held map[string]memoryEntry
	now  func() time.Time
}

type memoryEntry struct {
	token   string
	expires time.Time
}

// NewMemoryLocker returns an empty MemoryLocker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[string]memoryEntry), now: time.Now}
}

// Acquire takes key for ttl. Expired holders are evicted.
func (m *MemoryLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (Lease, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if e, ok := m.held[key]; ok && now.Before(e.expires) {
		return nil, ErrNotAcquired
	}
	token := uuid.NewString()
	m.held[key] = memoryEntry{token: token, expires: now.Add(ttl)}
	return &memoryLease{locker: m, key: key, token: token}, nil
}

type memoryLease struct {
	locker *MemoryLocker
	key    string
	token  string
	once   sync.Once
}

func (l *memoryLease) Release(context.Context) error {
	l.once.Do(func() {
		l.locker.mu.Lock()
		defer l.locker.mu.Unlock()
		// A lease that expired and was re-acquired by someone else must not
		// release the new holder.
		if e, ok := l.locker.held[l.key]; ok && e.token == l.token {
			delete(l.locker.held, l.key)
		}
	})
	return nil
}
