package httpapi

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// userLimiter hands out one token bucket per user. Buckets idle for longer
// than idleTTL are dropped.
type userLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	entries map[string]*limiterEntry
	swept   time.Time
}

type limiterEntry struct {
	lim  *rate.Limiter
	seen time.Time
}

// newUserLimiter allows perMinute events per user per minute. It returns nil
// when perMinute is not positive, which disables limiting.
func newUserLimiter(perMinute int) *userLimiter {
	if perMinute <= 0 {
		return nil
	}
	return &userLimiter{
		limit:   rate.Limit(float64(perMinute) / 60),
		burst:   perMinute,
		idleTTL: 10 * time.Minute,
		entries: make(map[string]*limiterEntry),
	}
}

func (l *userLimiter) Allow(key string, now time.Time) bool {
	if l == nil {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.swept) > l.idleTTL {
		for k, e := range l.entries {
			if now.Sub(e.seen) > l.idleTTL {
				delete(l.entries, k)
			}
		}
		l.swept = now
	}

	e, ok := l.entries[key]
	if !ok {
		e = &limiterEntry{lim: rate.NewLimiter(l.limit, l.burst)}
		l.entries[key] = e
	}
	e.seen = now
	return e.lim.AllowN(now, 1)
}
