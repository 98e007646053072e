package middleware

import (
	"sync"

	"golang.org/x/time/rate"

	"github.com/rising-ai-tgbot-go/internal/config"
)

// RateLimiter enforces a per-user token bucket.
type RateLimiter struct {
	mu       sync.RWMutex
	limiters map[int64]*rate.Limiter
	limit    rate.Limit
	burst    int
	enabled  bool
}

func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[int64]*rate.Limiter),
		limit:    rate.Limit(float64(cfg.RequestsPerMinute) / 60.0),
		burst:    cfg.Burst,
		enabled:  cfg.Enabled,
	}
}

// Allow reports whether the user may proceed right now.
func (r *RateLimiter) Allow(userID int64) bool {
	if !r.enabled {
		return true
	}
	return r.limiterFor(userID).Allow()
}

func (r *RateLimiter) limiterFor(userID int64) *rate.Limiter {
	r.mu.RLock()
	l, ok := r.limiters[userID]
	r.mu.RUnlock()
	if ok {
		return l
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Another goroutine may have created it between the locks.
	if l, ok := r.limiters[userID]; ok {
		return l
	}
	l = rate.NewLimiter(r.limit, r.burst)
	r.limiters[userID] = l
	return l
}
