package middleware

import (
	"sync"
	"testing"

	"github.com/rising-ai-tgbot-go/internal/config"
)

func TestRateLimiterBurstThenBlock(t *testing.T) {
	rl := NewRateLimiter(config.RateLimitConfig{
		Enabled:           true,
		RequestsPerMinute: 6,
		Burst:             3,
	})

	for i := 0; i < 3; i++ {
		if !rl.Allow(1) {
			t.Fatalf("request %d inside burst was rejected", i+1)
		}
	}
	if rl.Allow(1) {
		t.Fatal("request past the burst was allowed")
	}
}

func TestRateLimiterIsPerUser(t *testing.T) {
	rl := NewRateLimiter(config.RateLimitConfig{
		Enabled:           true,
		RequestsPerMinute: 6,
		Burst:             1,
	})
	if !rl.Allow(1) {
		t.Fatal("first user's first request rejected")
	}
	if !rl.Allow(2) {
		t.Fatal("second user throttled by first user's bucket")
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	rl := NewRateLimiter(config.RateLimitConfig{Enabled: false, RequestsPerMinute: 1, Burst: 1})
	for i := 0; i < 50; i++ {
		if !rl.Allow(9) {
			t.Fatal("disabled limiter rejected a request")
		}
	}
}

func TestRateLimiterConcurrentAccess(t *testing.T) {
	rl := NewRateLimiter(config.RateLimitConfig{
		Enabled:           true,
		RequestsPerMinute: 60000,
		Burst:             100000,
	})
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			rl.Allow(id % 5)
		}(int64(i))
	}
	wg.Wait()
}
