package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// RateLimitConfig defines rate limiting configuration
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate
	RequestsPerSecond float64
	// Burst allows temporary bursts above the rate
	Burst int
}

// DefaultRateLimitConfig returns default rate limit settings
func DefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		RequestsPerSecond: 10,
		Burst:             50,
	}
}

// LoginRateLimitConfig returns the stricter per-IP limit applied to logins
func LoginRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		RequestsPerSecond: 10.0 / 60,
		Burst:             5,
	}
}

// perMinute is the fixed-window budget equivalent to the config
func (c *RateLimitConfig) perMinute() int64 {
	return int64(c.RequestsPerSecond*60) + int64(c.Burst)
}

// Limiter decides whether the request identified by key may proceed
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimiter is an in-process token bucket per key
type RateLimiter struct {
	config   *RateLimitConfig
	limiters map[string]*limiterEntry
	mu       sync.Mutex
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(config *RateLimitConfig) *RateLimiter {
	if config == nil {
		config = DefaultRateLimitConfig()
	}
	return &RateLimiter{
		config:   config,
		limiters: make(map[string]*limiterEntry),
	}
}

// Allow checks if a request is allowed for the given key
func (rl *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	rl.mu.Lock()
	e, ok := rl.limiters[key]
	if !ok {
		burst := rl.config.Burst
		if burst < 1 {
			burst = 1
		}
		e = &limiterEntry{limiter: rate.NewLimiter(rate.Limit(rl.config.RequestsPerSecond), burst)}
		rl.limiters[key] = e
	}
	e.lastSeen = time.Now()
	rl.mu.Unlock()

	return e.limiter.Allow(), nil
}

// Cleanup removes limiters idle for longer than maxIdle
func (rl *RateLimiter) Cleanup(maxIdle time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-maxIdle)
	for key, e := range rl.limiters {
		if e.lastSeen.Before(cutoff) {
			delete(rl.limiters, key)
		}
	}
}

// StartCleanup periodically drops idle limiters until ctx is done
func (rl *RateLimiter) StartCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rl.Cleanup(2 * interval)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// DistributedRateLimiter shares a fixed one-minute window across instances
// through Redis
type DistributedRateLimiter struct {
	redis  *redis.Client
	config *RateLimitConfig
	prefix string
}

// NewDistributedRateLimiter creates a new Redis-backed rate limiter
func NewDistributedRateLimiter(redisClient *redis.Client, config *RateLimitConfig, prefix string) *DistributedRateLimiter {
	if config == nil {
		config = DefaultRateLimitConfig()
	}
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &DistributedRateLimiter{
		redis:  redisClient,
		config: config,
		prefix: prefix,
	}
}

// Allow counts the request in the current window. On Redis errors the
// request is allowed and the error returned.
func (rl *DistributedRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := fmt.Sprintf("%s:%s", rl.prefix, key)

	count, err := rl.redis.Incr(ctx, redisKey).Result()
	if err != nil {
		return true, fmt.Errorf("redis error: %w", err)
	}

	// First hit opens the window
	if count == 1 {
		if err := rl.redis.Expire(ctx, redisKey, time.Minute).Err(); err != nil {
			return true, fmt.Errorf("redis error: %w", err)
		}
	}

	return count <= rl.config.perMinute(), nil
}

// Reset clears the counter for a key
func (rl *DistributedRateLimiter) Reset(ctx context.Context, key string) error {
	redisKey := fmt.Sprintf("%s:%s", rl.prefix, key)
	return rl.redis.Del(ctx, redisKey).Err()
}

// RateLimitMiddleware limits callers by user when a caller context is
// present and by client IP otherwise
type RateLimitMiddleware struct {
	limiter  Limiter
	log      *logrus.Logger
	name     string
	recorder LimitRecorder

	// Forwarding headers are honoured only from peers in these networks
	trustedProxies []*net.IPNet
}

// LimitRecorder counts rejected requests per limiter name
type LimitRecorder interface {
	RecordRateLimited(limiter string)
}

// NewRateLimitMiddleware creates a new rate limit middleware
func NewRateLimitMiddleware(limiter Limiter, log *logrus.Logger) *RateLimitMiddleware {
	if log == nil {
		log = logrus.New()
	}
	return &RateLimitMiddleware{limiter: limiter, log: log, name: "default"}
}

// WithRecorder reports rejections under name
func (m *RateLimitMiddleware) WithRecorder(name string, recorder LimitRecorder) *RateLimitMiddleware {
	if name != "" {
		m.name = name
	}
	m.recorder = recorder
	return m
}

// WithTrustedProxies lets peers inside nets name the client through
// X-Forwarded-For or X-Real-IP. Without it the peer address is the key.
func (m *RateLimitMiddleware) WithTrustedProxies(nets []*net.IPNet) *RateLimitMiddleware {
	m.trustedProxies = nets
	return m
}

// Handler wraps an HTTP handler with rate limiting
func (m *RateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var key string
		if session := GetSession(r); session != nil {
			key = "user:" + session.UserID.String()
		} else {
			key = "ip:" + m.clientIP(r)
		}

		allowed, err := m.limiter.Allow(r.Context(), key)
		if err != nil {
			// Fail open
			m.log.WithError(err).Warn("rate limiter unavailable")
		}
		if !allowed {
			if m.recorder != nil {
				m.recorder.RecordRateLimited(m.name)
			}
			rateLimitExceeded(w)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func rateLimitExceeded(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", "60")
	w.WriteHeader(http.StatusTooManyRequests)
	w.Write([]byte(`{"error":"rate limit exceeded","retry_after":60}`))
}

// clientIP returns the peer address unless the peer is a trusted proxy. For
// a trusted peer the client is the rightmost X-Forwarded-For hop that is not
// itself trusted, since hops to the left of it are client supplied.
func (m *RateLimitMiddleware) clientIP(r *http.Request) string {
	peer := remoteHost(r.RemoteAddr)
	if !m.isTrusted(peer) {
		return peer
	}

	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		hops := strings.Split(forwarded, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if hop != "" && !m.isTrusted(hop) {
				return hop
			}
		}
	}

	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	return peer
}

func (m *RateLimitMiddleware) isTrusted(addr string) bool {
	ip := net.ParseIP(addr)
	if ip == nil {
		return false
	}
	for _, n := range m.trustedProxies {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

func remoteHost(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
