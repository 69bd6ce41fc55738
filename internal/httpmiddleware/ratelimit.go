package httpmiddleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"qrattendance/internal/apperror"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter keeps one token bucket per client IP.
type IPRateLimiter struct {
	mu    sync.Mutex
	ips   map[string]*visitor
	limit rate.Limit
	burst int
	now   func() time.Time
}

// NewIPRateLimiter allows perMinute requests per IP, with bursts up to perMinute.
func NewIPRateLimiter(perMinute int) *IPRateLimiter {
	if perMinute <= 0 {
		perMinute = 120
	}
	return &IPRateLimiter{
		ips:   make(map[string]*visitor),
		limit: rate.Limit(float64(perMinute) / 60),
		burst: perMinute,
		now:   time.Now,
	}
}

func (l *IPRateLimiter) limiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	v, ok := l.ips[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.ips[key] = v
	}
	v.lastSeen = l.now()
	return v.limiter
}

// Allow consumes one token for key.
func (l *IPRateLimiter) Allow(key string) bool {
	return l.limiter(key).Allow()
}

// Sweep drops keys not seen for idle and reports how many were removed.
func (l *IPRateLimiter) Sweep(idle time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := l.now().Add(-idle)
	removed := 0
	for key, v := range l.ips {
		if v.lastSeen.Before(cutoff) {
			delete(l.ips, key)
			removed++
		}
	}
	return removed
}

// Len is the number of tracked keys.
func (l *IPRateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.ips)
}

// StartSweeper runs Sweep every interval until ctx is done.
func (l *IPRateLimiter) StartSweeper(ctx context.Context, interval, idle time.Duration) {
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				l.Sweep(idle)
			case <-ctx.Done():
				return
			}
		}
	}()
}

var errTooManyRequests = apperror.New("TOO_MANY_REQUESTS", "Too many requests", http.StatusTooManyRequests)

// GinMiddleware rejects requests over the per-IP limit with 429.
func (l *IPRateLimiter) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ip == "" {
			ip = "unknown"
		}
		if !l.Allow(ip) {
			c.AbortWithStatusJSON(errTooManyRequests.HTTPStatus, errTooManyRequests)
			return
		}
		c.Next()
	}
}
