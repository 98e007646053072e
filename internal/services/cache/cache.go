package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/rising-ai-tgbot-go/internal/config"
	"github.com/rising-ai-tgbot-go/internal/models"
)

// ResponseCache memoizes question/answer pairs so identical questions
// skip search and generation entirely. Keyed on the normalized
// question plus the model, different models never share entries.
type ResponseCache struct {
	cache   *gocache.Cache
	enabled bool
	maxSize int
}

func NewResponseCache(cfg config.CacheConfig) *ResponseCache {
	return &ResponseCache{
		cache:   gocache.New(cfg.TTL, cfg.TTL/2),
		enabled: cfg.Enabled,
		maxSize: cfg.MaxSize,
	}
}

func cacheKey(question, model string) string {
	normalized := strings.ToLower(strings.TrimSpace(question))
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%s", normalized, model)))
	return hex.EncodeToString(sum[:])
}

// Get returns a cached answer, or nil on miss.
func (c *ResponseCache) Get(question, model string) *models.CacheEntry {
	if !c.enabled {
		return nil
	}
	v, ok := c.cache.Get(cacheKey(question, model))
	if !ok {
		return nil
	}
	entry := v.(models.CacheEntry)
	return &entry
}

// Set stores an answer unless the cache is full.
func (c *ResponseCache) Set(question, model, answer string) {
	if !c.enabled {
		return
	}
	if c.maxSize > 0 && c.cache.ItemCount() >= c.maxSize {
		return
	}
	c.cache.SetDefault(cacheKey(question, model), models.CacheEntry{
		Question:  question,
		Answer:    answer,
		Model:     model,
		CreatedAt: time.Now(),
	})
}

// Flush drops every entry.
func (c *ResponseCache) Flush() {
	c.cache.Flush()
}

// Len reports the live entry count.
func (c *ResponseCache) Len() int {
	return c.cache.ItemCount()
}
