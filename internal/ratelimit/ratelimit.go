// Package ratelimit bounds request rates per client key, in process or shared through Redis.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// Result describes one Allow decision
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Time
}

// Limiter decides whether key may make another request
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
	Close() error
}

// RedisLimiter is a fixed window counter shared by every server instance
type RedisLimiter struct {
	redis  *redis.Client
	limit  int
	window time.Duration
	now    func() time.Time
}

// NewRedisLimiter connects to redisURL and pings it
func NewRedisLimiter(ctx context.Context, redisURL string, limit int, window time.Duration) (*RedisLimiter, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &RedisLimiter{redis: client, limit: limit, window: window, now: time.Now}, nil
}

func (rl *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	now := rl.now()
	slot := now.UnixNano() / int64(rl.window)
	windowKey := fmt.Sprintf("ratelimit:%s:%d", key, slot)

	pipe := rl.redis.Pipeline()
	incr := pipe.Incr(ctx, windowKey)
	pipe.Expire(ctx, windowKey, rl.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, fmt.Errorf("rate limit check: %w", err)
	}

	count := int(incr.Val())
	return Result{
		Allowed:   count <= rl.limit,
		Limit:     rl.limit,
		Remaining: max(rl.limit-count, 0),
		Reset:     time.Unix(0, (slot+1)*int64(rl.window)),
	}, nil
}

func (rl *RedisLimiter) Close() error {
	return rl.redis.Close()
}

// maxIdleKeys bounds the memory limiter's key map before idle entries are pruned
const maxIdleKeys = 10000

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryLimiter is a token bucket per key, local to this process
type MemoryLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    int
	window   time.Duration
	every    rate.Limit
	now      func() time.Time
}

// NewMemoryLimiter allows limit requests per window with bursts up to limit
func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		visitors: make(map[string]*visitor),
		limit:    limit,
		window:   window,
		every:    rate.Every(window / time.Duration(limit)),
		now:      time.Now,
	}
}

func (m *MemoryLimiter) Allow(ctx context.Context, key string) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	v, ok := m.visitors[key]
	if !ok {
		if len(m.visitors) >= maxIdleKeys {
			m.prune(now)
		}
		v = &visitor{limiter: rate.NewLimiter(m.every, m.limit)}
		m.visitors[key] = v
	}
	v.lastSeen = now

	allowed := v.limiter.AllowN(now, 1)
	remaining := int(v.limiter.TokensAt(now))
	return Result{
		Allowed:   allowed,
		Limit:     m.limit,
		Remaining: max(remaining, 0),
		Reset:     now.Add(m.window),
	}, nil
}

func (m *MemoryLimiter) prune(now time.Time) {
	for key, v := range m.visitors {
		if now.Sub(v.lastSeen) > m.window {
			delete(m.visitors, key)
		}
	}
}

func (m *MemoryLimiter) Close() error { return nil }
