// Package publock serializes publish attempts per portfolio. The local
// directory rename sequence is not atomic, so two concurrent publishes for
// the same portfolio must never interleave.
package publock

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"foliohost/internal/util"
)

// ErrLocked is returned when a publish is already running for the portfolio.
var ErrLocked = errors.New("publish already in progress")

// DefaultTTL bounds how long a crashed publisher can hold a lock.
const DefaultTTL = 2 * time.Minute

// Locker grants exclusive publish access per key.
type Locker interface {
	// Acquire returns a release func, or ErrLocked when the key is held.
	Acquire(ctx context.Context, key string) (func(), error)
}

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker implements Locker across processes with SET NX + TTL.
type RedisLocker struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisLocker creates a Redis-backed distributed locker.
func NewRedisLocker(addr, password, prefix string, ttl time.Duration) (*RedisLocker, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("publish locker redis addr is required")
	}
	if prefix = strings.TrimSpace(prefix); prefix == "" {
		prefix = "foliohost:publock"
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisLocker{
		client: redis.NewClient(&redis.Options{Addr: addr, Password: password}),
		prefix: prefix,
		ttl:    ttl,
	}, nil
}

// Acquire takes the lock or fails fast with ErrLocked. The stored token
// guards release so an expired holder cannot delete a successor's lock.
func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	token := util.NewID()
	fullKey := l.prefix + ":" + key
	ok, err := l.client.SetNX(ctx, fullKey, token, l.ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLocked
	}
	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = releaseScript.Run(releaseCtx, l.client, []string{fullKey}, token).Err()
	}, nil
}

// MemoryLocker implements Locker in-process. Used by tests and single-node
// deployments without Redis.
type MemoryLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewMemoryLocker initializes an empty in-process locker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[string]struct{})}
}

func (l *MemoryLocker) Acquire(_ context.Context, key string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, taken := l.held[key]; taken {
		return nil, ErrLocked
	}
	l.held[key] = struct{}{}
	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
	}, nil
}
