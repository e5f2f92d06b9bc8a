package services

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// ResponseCache keeps raw response bodies keyed by request target. Entries expire after the configured TTL.
//
// Request targets are deterministic, so equal queries with equal options share an entry.
type ResponseCache struct {
	lru *expirable.LRU[string, []byte]
}

// NewResponseCache creates a cache holding at most size entries. A non-positive ttl disables expiry.
func NewResponseCache(size int, ttl time.Duration) *ResponseCache {
	if size <= 0 {
		size = 128
	}
	return &ResponseCache{lru: expirable.NewLRU[string, []byte](size, nil, ttl)}
}

// Get returns a copy of the cached body for key.
func (c *ResponseCache) Get(key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	body, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	return append([]byte(nil), body...), true
}

// Add stores a copy of body under key.
func (c *ResponseCache) Add(key string, body []byte) {
	if c == nil {
		return
	}
	c.lru.Add(key, append([]byte(nil), body...))
}

// Len returns the number of live entries.
func (c *ResponseCache) Len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}

// Purge removes every entry.
func (c *ResponseCache) Purge() {
	if c == nil {
		return
	}
	c.lru.Purge()
}
