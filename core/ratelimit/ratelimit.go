package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"realtor/core/config"
	"realtor/core/logger"
	"realtor/core/router"

	"github.com/go-redis/redis/v8"
	"golang.org/x/time/rate"
)

// Limiter decides whether a caller identified by key may proceed
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// MemoryLimiter is a per-key token bucket kept in process
type MemoryLimiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	visitors  map[string]*visitor
	idleAfter time.Duration
	lastSweep time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewMemoryLimiter allows perMinute requests per key, refilled evenly
func NewMemoryLimiter(perMinute int) *MemoryLimiter {
	if perMinute <= 0 {
		perMinute = 1
	}
	return &MemoryLimiter{
		limit:     rate.Every(time.Minute / time.Duration(perMinute)),
		burst:     perMinute,
		visitors:  make(map[string]*visitor),
		idleAfter: 10 * time.Minute,
		lastSweep: time.Now(),
	}
}

func (m *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if now.Sub(m.lastSweep) > m.idleAfter {
		for k, v := range m.visitors {
			if now.Sub(v.lastSeen) > m.idleAfter {
				delete(m.visitors, k)
			}
		}
		m.lastSweep = now
	}

	v, ok := m.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(m.limit, m.burst)}
		m.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1), nil
}

// RedisLimiter is a fixed-window counter shared between instances
type RedisLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
	prefix string
}

func NewRedisLimiter(client *redis.Client, perMinute int) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		limit:  int64(perMinute),
		window: time.Minute,
		prefix: "realtor:ratelimit:",
	}
}

func (r *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	bucket := time.Now().UnixNano() / int64(r.window)
	redisKey := fmt.Sprintf("%s%s:%d", r.prefix, key, bucket)

	count, err := r.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := r.client.Expire(ctx, redisKey, r.window).Err(); err != nil {
			return false, err
		}
	}
	return count <= r.limit, nil
}

// NewRedisClient connects and pings
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 2 * time.Second,
	})

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return rdb, nil
}

// New prefers Redis when REDIS_ADDR is set and reachable
func New(cfg *config.Config, log logger.Logger) Limiter {
	if cfg.RedisAddr != "" {
		client, err := NewRedisClient(context.Background(), cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err == nil {
			log.Info("Rate limiting backed by Redis", logger.String("addr", cfg.RedisAddr))
			return NewRedisLimiter(client, cfg.IntakeRateLimit)
		}
		log.Warn("Redis unavailable, falling back to in-memory rate limiting", logger.Err(err))
	}
	return NewMemoryLimiter(cfg.IntakeRateLimit)
}

// Middleware rejects POSTs over the limit with 429. Keys are client IP plus
// path. Limiter errors let the request through.
func Middleware(l Limiter, log logger.Logger) router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c *router.Context) error {
			if c.Request.Method != http.MethodPost {
				return next(c)
			}

			ok, err := l.Allow(c.Request.Context(), c.ClientIP()+":"+c.Request.URL.Path)
			if err != nil {
				log.Warn("rate limiter failed", logger.Err(err))
				return next(c)
			}
			if !ok {
				c.Header("Retry-After", "60")
				return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "Too many requests, try again shortly"})
			}
			return next(c)
		}
	}
}
