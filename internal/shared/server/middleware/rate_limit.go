package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"careerlift-backend/internal/shared/server/respond"
)

// RateLimitRule is a token bucket: Rate tokens per second, up to Burst.
// A non-positive field disables limiting.
type RateLimitRule struct {
	Rate  float64
	Burst int
}

func (r RateLimitRule) disabled() bool { return r.Rate <= 0 || r.Burst <= 0 }

// DefaultBucketIdleTTL is how long an unused bucket is kept before it is swept.
const DefaultBucketIdleTTL = 10 * time.Minute

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one bucket per client and scope. Buckets idle longer than IdleTTL
// are swept on Allow, at most once per IdleTTL.
type RateLimiter struct {
	IdleTTL time.Duration

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
	now       func() time.Time
}

func NewRateLimiter(now func() time.Time) *RateLimiter {
	if now == nil {
		now = time.Now
	}
	return &RateLimiter{IdleTTL: DefaultBucketIdleTTL, buckets: make(map[string]*bucket), now: now}
}

// RateLimit throttles each client IP within scope. Identity headers are chosen by the
// client, so they never pick the bucket.
func RateLimit(limiter *RateLimiter, scope string, rule RateLimitRule) gin.HandlerFunc {
	if limiter == nil {
		limiter = NewRateLimiter(nil)
	}
	return func(c *gin.Context) {
		ok, wait := limiter.Allow(scope+"|"+c.ClientIP(), rule)
		if ok {
			c.Next()
			return
		}
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
		respond.Error(c, http.StatusTooManyRequests, "rate_limited", "Too many requests. Please retry later.", gin.H{
			"retryAfterMs": wait.Milliseconds(),
		})
	}
}

// Allow takes one token for key. When the bucket is empty it reports how long until the
// next token, never less than one second.
func (l *RateLimiter) Allow(key string, rule RateLimitRule) (bool, time.Duration) {
	if l == nil || rule.disabled() {
		return true, 0
	}
	now := l.now()

	l.mu.Lock()
	l.sweep(now)
	b, found := l.buckets[key]
	if !found {
		b = &bucket{lim: rate.NewLimiter(rate.Limit(rule.Rate), rule.Burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	lim := b.lim
	l.mu.Unlock()

	res := lim.ReserveN(now, 1)
	if !res.OK() {
		return false, time.Second
	}
	delay := res.DelayFrom(now)
	if delay <= 0 {
		return true, 0
	}
	res.CancelAt(now)
	if delay < time.Second {
		delay = time.Second
	}
	return false, delay
}

// sweep drops idle buckets. Callers hold l.mu.
func (l *RateLimiter) sweep(now time.Time) {
	ttl := l.IdleTTL
	if ttl <= 0 || now.Sub(l.lastSweep) < ttl {
		return
	}
	l.lastSweep = now
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) >= ttl {
			delete(l.buckets, key)
		}
	}
}
