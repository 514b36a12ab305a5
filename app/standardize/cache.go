package standardize

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru"
)

// Cache memoizes resolved canonical pairs keyed on the exact raw input
// string. Capacity-bounded; the least recently used entry is evicted when
// full. Never persisted.
type Cache struct {
	entries *lru.Cache
}

func NewCache(size int) (*Cache, error) {
	entries, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}

	return &Cache{entries: entries}, nil
}

func (c *Cache) Get(key string) (Result, bool) {
	value, ok := c.entries.Get(key)
	if !ok {
		return Result{}, false
	}

	return value.(Result), true
}

func (c *Cache) Add(key string, result Result) {
	c.entries.Add(key, result)
}

func (c *Cache) Len() int {
	return c.entries.Len()
}
