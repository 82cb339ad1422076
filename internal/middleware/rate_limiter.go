package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"barpos/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ── API rate limiter ──────────────────────────────────────────────────────────
// Fixed window per client IP. Terminals on the floor share one NAT address, so
// the limit is sized for the whole bar, not for a single device.

type rateEntry struct {
	count     int
	windowEnd time.Time
}

// RateLimiter keeps per-IP counters; Purge runs until ctx is done.
type RateLimiter struct {
	mu      sync.Mutex
	entries map[string]*rateEntry
	limit   int
	window  time.Duration
	now     func() time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		entries: make(map[string]*rateEntry),
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
}

// allow counts one request from ip and reports whether it is within limit.
func (l *RateLimiter) allow(ip string) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[ip]
	if !ok || now.After(e.windowEnd) {
		e = &rateEntry{windowEnd: now.Add(l.window)}
		l.entries[ip] = e
	}
	e.count++
	return e.count <= l.limit, e.windowEnd
}

func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.limit <= 0 {
			c.Next()
			return
		}
		ok, windowEnd := l.allow(c.ClientIP())
		if !ok {
			c.Header("Retry-After", windowEnd.UTC().Format(http.TimeFormat))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Muitas requisições. Tente novamente em instantes."))
			return
		}
		c.Next()
	}
}

// Purge drops expired windows every interval until ctx is cancelled.
func (l *RateLimiter) Purge(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.mu.Lock()
			now := l.now()
			purged := 0
			for ip, e := range l.entries {
				if now.After(e.windowEnd) {
					delete(l.entries, ip)
					purged++
				}
			}
			remaining := len(l.entries)
			l.mu.Unlock()
			if purged > 0 {
				log.Debug().Int("purged", purged).Int("remaining", remaining).Msg("rate limiter entries purged")
			}
		}
	}
}
