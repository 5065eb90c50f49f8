package tiles

import (
	"image"

	lru "github.com/hashicorp/golang-lru"
)

// DefaultCacheSize is used when a cache is asked for a non-positive size.
const DefaultCacheSize = 256

// Cache keeps decoded tiles by key, evicting the least recently used one
// once full. It is safe for concurrent use.
type Cache struct {
	lru *lru.Cache
}

func NewCache(limit int) *Cache {
	if limit <= 0 {
		limit = DefaultCacheSize
	}
	// lru.New only fails for a non-positive size
	c, _ := lru.New(limit)
	return &Cache{lru: c}
}

func (c *Cache) Get(key string) (image.Image, bool) {
	v, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	return v.(image.Image), true
}

func (c *Cache) Set(key string, img image.Image) {
	c.lru.Add(key, img)
}

func (c *Cache) Len() int {
	return c.lru.Len()
}

func (c *Cache) Clear() {
	c.lru.Purge()
}
