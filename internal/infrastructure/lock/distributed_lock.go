package lock

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/NICANORKYAMBA/bank-system-sub000/internal/ledger"
)

var ErrLockFailed = errors.New("failed to acquire distributed lock")

// DistributedLock is a redis SETNX lock with expiry. The value identifies
// the holder so that release never deletes a lock taken over by someone
// else after expiry.
type DistributedLock struct {
	client     *redis.Client
	key        string
	value      string
	expiration time.Duration
}

func NewDistributedLock(client *redis.Client, key, value string, expiration time.Duration) *DistributedLock {
	return &DistributedLock{
		client:     client,
		key:        key,
		value:      value,
		expiration: expiration,
	}
}

// TryLock attempts a single non-blocking acquire.
func (l *DistributedLock) TryLock(ctx context.Context) (bool, error) {
	return l.client.SetNX(ctx, l.key, l.value, l.expiration).Result()
}

// Lock acquires with retries, giving up after maxRetries attempts.
func (l *DistributedLock) Lock(ctx context.Context, retryInterval time.Duration, maxRetries int) error {
	for i := 0; i < maxRetries; i++ {
		success, err := l.TryLock(ctx)
		if err != nil {
			return err
		}
		if success {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryInterval):
		}
	}
	return ErrLockFailed
}

// Unlock releases the lock only if this holder still owns it. The
// check-and-delete must be atomic, hence the Lua script.
func (l *DistributedLock) Unlock(ctx context.Context) error {
	script := `
		if redis.call("GET", KEYS[1]) == ARGV[1] then
			return redis.call("DEL", KEYS[1])
		else
			return 0
		end
	`
	_, err := l.client.Eval(ctx, script, []string{l.key}, l.value).Result()
	return err
}

// Factory adapts the redis lock to the engine's Locker interface.
type Factory struct {
	client        *redis.Client
	expiration    time.Duration
	retryInterval time.Duration
	maxRetries    int
}

func NewFactory(client *redis.Client, expiration, retryInterval time.Duration, maxRetries int) *Factory {
	return &Factory{
		client:        client,
		expiration:    expiration,
		retryInterval: retryInterval,
		maxRetries:    maxRetries,
	}
}

var _ ledger.Locker = (*Factory)(nil)

func (f *Factory) Acquire(ctx context.Context, key, owner string) (func(context.Context), error) {
	l := NewDistributedLock(f.client, key, owner, f.expiration)
	if err := l.Lock(ctx, f.retryInterval, f.maxRetries); err != nil {
		return nil, err
	}
	return func(ctx context.Context) {
		if err := l.Unlock(ctx); err != nil {
			log.Printf("[Lock] release %s: %v", key, err)
		}
	}, nil
}
