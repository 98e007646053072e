package cache

import (
	"testing"
	"time"

	"github.com/rising-ai-tgbot-go/internal/config"
)

func newTestCache(enabled bool) *ResponseCache {
	return NewResponseCache(config.CacheConfig{
		Enabled: enabled,
		TTL:     time.Minute,
		MaxSize: 100,
	})
}

func TestCacheHitAndMiss(t *testing.T) {
	c := newTestCache(true)
	if c.Get("what is go", "m1") != nil {
		t.Fatal("unexpected hit on empty cache")
	}
	c.Set("what is go", "m1", "a language")
	entry := c.Get("what is go", "m1")
	if entry == nil || entry.Answer != "a language" {
		t.Fatalf("expected hit, got %+v", entry)
	}
}

// The same question under a different model is a different entry.
func TestCacheKeyIncludesModel(t *testing.T) {
	c := newTestCache(true)
	c.Set("q", "m1", "from m1")
	if c.Get("q", "m2") != nil {
		t.Fatal("model name not part of the key")
	}
}

func TestCacheNormalizesQuestion(t *testing.T) {
	c := newTestCache(true)
	c.Set("What is GO  ", "m1", "a language")
	if c.Get("what is go", "m1") == nil {
		t.Fatal("normalized lookup missed")
	}
}

func TestCacheDisabled(t *testing.T) {
	c := newTestCache(false)
	c.Set("q", "m", "a")
	if c.Get("q", "m") != nil {
		t.Fatal("disabled cache returned a hit")
	}
}

func TestCacheFlush(t *testing.T) {
	c := newTestCache(true)
	c.Set("q", "m", "a")
	c.Flush()
	if c.Get("q", "m") != nil {
		t.Fatal("entry survived flush")
	}
}
