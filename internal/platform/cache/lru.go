package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const DefaultLRUCapacity = 256

// LRU is an in-process Store that evicts the least recently used entry once
// capacity is reached. A zero ttl keeps entries until evicted.
type LRU struct {
	items *expirable.LRU[string, []byte]
}

func NewLRU(capacity int, ttl time.Duration) *LRU {
	if capacity <= 0 {
		capacity = DefaultLRUCapacity
	}
	if ttl < 0 {
		ttl = 0
	}
	return &LRU{items: expirable.NewLRU[string, []byte](capacity, nil, ttl)}
}

func (c *LRU) Name() string { return "lru" }

func (c *LRU) Get(_ context.Context, key string) ([]byte, bool, error) {
	val, ok := c.items.Get(key)
	return val, ok, nil
}

func (c *LRU) Set(_ context.Context, key string, val []byte) error {
	c.items.Add(key, val)
	return nil
}

// Len counts entries, including expired ones not yet swept.
func (c *LRU) Len() int { return c.items.Len() }

func (c *LRU) Close() error {
	c.items.Purge()
	return nil
}
