package server

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	limiterIdle      = 10 * time.Minute
	limiterMaxScopes = 10000
)

type scopeBucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// scopeLimiter hands out one token bucket per scope. A non-positive rate
// disables limiting. Buckets idle for longer than idle are dropped, and the
// map never holds more than maxScopes buckets.
type scopeLimiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	idle      time.Duration
	maxScopes int
	now       func() time.Time
	lastSweep time.Time
	buckets   map[string]*scopeBucket
}

func newScopeLimiter(perSecond float64, burst int) *scopeLimiter {
	if burst < 1 {
		burst = 1
	}
	return &scopeLimiter{
		limit:     rate.Limit(perSecond),
		burst:     burst,
		idle:      limiterIdle,
		maxScopes: limiterMaxScopes,
		now:       time.Now,
		buckets:   map[string]*scopeBucket{},
	}
}

func (l *scopeLimiter) enabled() bool {
	return l.limit > 0
}

func (l *scopeLimiter) allow(scope string) bool {
	if !l.enabled() {
		return true
	}
	l.mu.Lock()
	now := l.now()
	if now.Sub(l.lastSweep) >= l.idle {
		l.sweep(now)
	}
	b, ok := l.buckets[scope]
	if !ok {
		if len(l.buckets) >= l.maxScopes {
			l.evictOldest()
		}
		b = &scopeBucket{lim: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[scope] = b
	}
	b.seen = now
	l.mu.Unlock()
	return b.lim.AllowN(now, 1)
}

// sweep drops buckets not used within idle. Callers hold mu.
func (l *scopeLimiter) sweep(now time.Time) {
	for scope, b := range l.buckets {
		if now.Sub(b.seen) > l.idle {
			delete(l.buckets, scope)
		}
	}
	l.lastSweep = now
}

// evictOldest drops the least recently used bucket. Callers hold mu.
func (l *scopeLimiter) evictOldest() {
	var (
		oldest string
		at     time.Time
		found  bool
	)
	for scope, b := range l.buckets {
		if !found || b.seen.Before(at) {
			oldest, at, found = scope, b.seen, true
		}
	}
	if found {
		delete(l.buckets, oldest)
	}
}

func (l *scopeLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// retryAfter is the wait in whole seconds for one token.
func (l *scopeLimiter) retryAfter() int {
	return max(1, int(math.Ceil(1/float64(l.limit))))
}

func (s *Server) allow(c *gin.Context, scope string) bool {
	if s.limiter.allow(scope) {
		return true
	}
	c.Header("Retry-After", strconv.Itoa(s.limiter.retryAfter()))
	c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
	return false
}
