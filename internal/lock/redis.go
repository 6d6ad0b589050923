package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/abhisek/studyreport/internal/logger"
)

// releaseScript deletes the key only if it still holds our token.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker is a Locker shared by every instance pointing at the same Redis.
type RedisLocker struct {
	log    *logger.Logger
	rdb    goredis.UniversalClient
	prefix string
}

// RedisOptions configures NewRedisLocker.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string // default "studyreport:lock:"
}

// NewRedisLocker connects to Redis and verifies the connection.
func NewRedisLocker(ctx context.Context, log *logger.Logger, opts RedisOptions) (*RedisLocker, error) {
	if opts.Addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisLockerFromClient(log, rdb, opts.Prefix), nil
}

// NewRedisLockerFromClient wraps an existing client.
func NewRedisLockerFromClient(log *logger.Logger, rdb goredis.UniversalClient, prefix string) *RedisLocker {
	if prefix == "" {
		prefix = "studyreport:lock:"
	}
	return &RedisLocker{
		log:    logger.OrNop(log).With("service", "RedisLocker"),
		rdb:    rdb,
		prefix: prefix,
	}
}

// Acquire sets the key with NX and a TTL.
func (r *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (Lease, error) {
	token := uuid.NewString()
	ok, err := r.rdb.SetNX(ctx, r.prefix+key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redis setnx %s: %w", key, err)
	}
	if !ok {
		return nil, ErrNotAcquired
	}
	r.log.Debug("lock acquired", "key", key, "ttl", ttl)
	return &redisLease{locker: r, key: r.prefix + key, token: token}, nil
}

// Close closes the underlying client.
func (r *RedisLocker) Close() error {
	return r.rdb.Close()
}

type redisLease struct {
	locker *RedisLocker
	key    string
	token  string
}

func (l *redisLease) Release(ctx context.Context) error {
	if err := releaseScript.Run(ctx, l.locker.rdb, []string{l.key}, l.token).Err(); err != nil {
		return fmt.Errorf("redis release %s: %w", l.key, err)
	}
	return nil
}
