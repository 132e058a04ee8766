// Package redis provides a BatchLock backed by Redis, so that batch runs
// against one index are exclusive across hosts.
//
// The lock is a key set with NX and a TTL holding a random owner token.
// While held, the TTL is refreshed in the background; release and refresh
// only act if the token still matches.
package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/archie/internal/core/domain"
	"github.com/custodia-labs/archie/internal/core/ports/driven"
	"github.com/custodia-labs/archie/internal/logger"
)

// Ensure Lock implements the interface.
var _ driven.BatchLock = (*Lock)(nil)

// DefaultTTL is the lock lifetime without refresh.
const DefaultTTL = 30 * time.Second

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

var refreshScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// Lock hands out named locks stored under "<namespace>:lock:<name>".
type Lock struct {
	rdb       *redis.Client
	namespace string
	ttl       time.Duration
}

// NewLock creates a Redis lock. A zero ttl uses DefaultTTL.
func NewLock(opts *redis.Options, namespace string, ttl time.Duration) (*Lock, error) {
	if namespace == "" {
		return nil, fmt.Errorf("%w: lock namespace cannot be empty", domain.ErrInvalidInput)
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Lock{
		rdb:       redis.NewClient(opts),
		namespace: namespace,
		ttl:       ttl,
	}, nil
}

// Close closes the Redis connection.
func (l *Lock) Close() error {
	return l.rdb.Close()
}

// Ping verifies Redis connectivity.
func (l *Lock) Ping(ctx context.Context) error {
	return l.rdb.Ping(ctx).Err()
}

// Key returns the Redis key for a lock name.
func (l *Lock) Key(name string) string {
	return l.namespace + ":lock:" + name
}

// Acquire takes the named lock or fails with domain.ErrBatchInProgress.
// The returned release function stops the refresh and deletes the key; it
// returns domain.ErrLockNotHeld if the lock had already expired or been
// taken over.
func (l *Lock) Acquire(ctx context.Context, name string) (func(context.Context) error, error) {
	key := l.Key(name)
	token := uuid.New().String()

	ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: lock %s is held", domain.ErrBatchInProgress, key)
	}

	refreshCtx, stop := context.WithCancel(context.WithoutCancel(ctx))
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		l.keepAlive(refreshCtx, key, token)
	}()

	var once sync.Once
	release := func(ctx context.Context) error {
		err := domain.ErrLockNotHeld
		once.Do(func() {
			stop()
			wg.Wait()

			n, rerr := releaseScript.Run(ctx, l.rdb, []string{key}, token).Int()
			switch {
			case rerr != nil:
				err = fmt.Errorf("failed to release lock %s: %w", key, rerr)
			case n == 0:
				err = domain.ErrLockNotHeld
			default:
				err = nil
			}
		})
		return err
	}
	return release, nil
}

// keepAlive extends the TTL every third of its lifetime until ctx ends or
// the lock is lost.
func (l *Lock) keepAlive(ctx context.Context, key, token string) {
	ticker := time.NewTicker(l.ttl / 3)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := refreshScript.Run(ctx, l.rdb, []string{key}, token, l.ttl.Milliseconds()).Int()
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.Warn("Failed to refresh lock %s: %v", key, err)
				continue
			}
			if n == 0 {
				logger.Warn("Lock %s was lost", key)
				return
			}
		}
	}
}
