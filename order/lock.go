package order

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Locker serialises work on one order
type Locker interface {
	// Lock blocks until the lock for key is held or ctx is done. The returned
	// function releases it.
	Lock(ctx context.Context, key string) (func(), error)
}

// KeyedMutex is an in-process Locker. Different keys never contend.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	ch   chan struct{}
	refs int
}

// NewKeyedMutex creates an in-process locker
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*keyedLock)}
}

func (k *KeyedMutex) Lock(ctx context.Context, key string) (func(), error) {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyedLock{ch: make(chan struct{}, 1)}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	select {
	case l.ch <- struct{}{}:
		return func() { k.release(key, l) }, nil
	case <-ctx.Done():
		k.mu.Lock()
		k.drop(key, l)
		k.mu.Unlock()
		return nil, ctx.Err()
	}
}

func (k *KeyedMutex) release(key string, l *keyedLock) {
	<-l.ch
	k.mu.Lock()
	k.drop(key, l)
	k.mu.Unlock()
}

// drop must be called with k.mu held
func (k *KeyedMutex) drop(key string, l *keyedLock) {
	l.refs--
	if l.refs == 0 {
		delete(k.locks, key)
	}
}

// size is the number of keys currently tracked
func (k *KeyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}

// ErrLockNotAcquired is returned when a redis lock stays held past the wait budget
var ErrLockNotAcquired = errors.New("order lock not acquired")

var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisLocker is a Locker shared by every replica of the service
type RedisLocker struct {
	client    redis.UniversalClient
	prefix    string
	ttl       time.Duration
	retryWait time.Duration
	maxWait   time.Duration
}

// NewRedisLocker creates a locker on client. ttl bounds how long a crashed
// holder can block an order.
func NewRedisLocker(client redis.UniversalClient, ttl time.Duration) *RedisLocker {
	return &RedisLocker{
		client:    client,
		prefix:    "ceca:order-lock:",
		ttl:       ttl,
		retryWait: 50 * time.Millisecond,
		maxWait:   10 * time.Second,
	}
}

func (r *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := r.prefix + key
	token := uuid.New().String()
	deadline := time.Now().Add(r.maxWait)

	for {
		ok, err := r.client.SetNX(ctx, redisKey, token, r.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("redis lock %s: %w", key, err)
		}
		if ok {
			return func() {
				// released with a fresh context so a cancelled request still unlocks
				releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				_ = releaseScript.Run(releaseCtx, r.client, []string{redisKey}, token).Err()
			}, nil
		}

		if time.Now().After(deadline) {
			return nil, ErrLockNotAcquired
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(r.retryWait):
		}
	}
}
