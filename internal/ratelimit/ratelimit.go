package ratelimit

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"blog-service/internal/shared/httpx"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RedisLimiter is a fixed window counter shared by every instance that talks
// to the same Redis.
type RedisLimiter struct {
	R      *redis.Client
	Limit  int64
	Window time.Duration
}

// NewRedis allows burst requests per window of burst/rps seconds, which keeps
// the long run average at rps.
func NewRedis(r *redis.Client, rps, burst int) *RedisLimiter {
	if rps <= 0 {
		rps = 1
	}
	if burst < 1 {
		burst = 1
	}
	window := time.Duration(burst) * time.Second / time.Duration(rps)
	if window < time.Second {
		window = time.Second
	}
	return &RedisLimiter{R: r, Limit: int64(burst), Window: window}
}

// Allow starts the window on the first hit of a key. A counter left without a
// TTL gets one on the next call.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := "rl:" + key
	n, err := l.R.Incr(ctx, k).Result()
	if err != nil {
		return false, err
	}
	if n == 1 {
		if err := l.R.Expire(ctx, k, l.Window).Err(); err != nil {
			return false, err
		}
	} else if ttl, err := l.R.TTL(ctx, k).Result(); err == nil && ttl == -1 {
		_ = l.R.Expire(ctx, k, l.Window).Err()
	}
	return n <= l.Limit, nil
}

// LocalLimiter keeps one token bucket per key in process memory.
type LocalLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
	maxKeys  int
}

func NewLocal(rps, burst int) *LocalLimiter {
	if burst < 1 {
		burst = 1
	}
	return &LocalLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(rps),
		burst:    burst,
		maxKeys:  10000,
	}
}

func (l *LocalLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	lim, ok := l.limiters[key]
	if !ok {
		if len(l.limiters) >= l.maxKeys {
			l.limiters = make(map[string]*rate.Limiter)
		}
		lim = rate.NewLimiter(l.rate, l.burst)
		l.limiters[key] = lim
	}
	l.mu.Unlock()
	return lim.Allow(), nil
}

// Middleware limits by authenticated user when there is one, else by client IP.
// Limiter failures let the request through.
func Middleware(l Limiter, scope string, log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := scope + ":" + clientKey(r)
			ok, err := l.Allow(r.Context(), key)
			if err != nil {
				log.WithError(err).Warn("rate limiter unavailable")
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				log.WithFields(logrus.Fields{"key": key, "path": r.URL.Path}).Error("Too many requests")
				httpx.WriteError(w, http.StatusTooManyRequests, "Too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request) string {
	if uid, err := httpx.UserFromCtx(r); err == nil {
		return "user:" + uid
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
