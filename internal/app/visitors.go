package app

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const visitorTTL = 24 * time.Hour

// VisitorTracker answers whether a visitor was already seen for a subdomain
// within the tracking window. Drives the unique-visitor counter.
type VisitorTracker interface {
	FirstSeen(ctx context.Context, subdomain, visitor string) (bool, error)
}

// HashVisitor reduces a client IP to a short stable token so raw addresses
// are never stored.
func HashVisitor(ip string) string {
	sum := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(sum[:8])
}

// RedisVisitors tracks visitors in a per-subdomain set with a rolling TTL.
type RedisVisitors struct {
	client *redis.Client
	prefix string
}

func NewRedisVisitors(client *redis.Client, prefix string) *RedisVisitors {
	if prefix == "" {
		prefix = "foliohost:visitors"
	}
	return &RedisVisitors{client: client, prefix: prefix}
}

func (v *RedisVisitors) FirstSeen(ctx context.Context, subdomain, visitor string) (bool, error) {
	key := v.prefix + ":" + subdomain
	added, err := v.client.SAdd(ctx, key, visitor).Result()
	if err != nil {
		return false, err
	}
	_ = v.client.Expire(ctx, key, visitorTTL).Err()
	return added == 1, nil
}

// MemoryVisitors is the in-process tracker for tests and single-node runs.
// Entries are never expired; the process lifetime bounds the window.
type MemoryVisitors struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewMemoryVisitors() *MemoryVisitors {
	return &MemoryVisitors{seen: make(map[string]struct{})}
}

func (v *MemoryVisitors) FirstSeen(_ context.Context, subdomain, visitor string) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	key := subdomain + ":" + visitor
	if _, ok := v.seen[key]; ok {
		return false, nil
	}
	v.seen[key] = struct{}{}
	return true, nil
}
