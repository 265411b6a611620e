package giellamorph

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedTransducer memoises lookups of a pure transducer in a bounded LRU.
type CachedTransducer struct {
	next  Transducer
	cache *lru.Cache[string, []Reading]
}

// NewCachedTransducer wraps next with an LRU of size entries.
func NewCachedTransducer(next Transducer, size int) (*CachedTransducer, error) {
	cache, err := lru.New[string, []Reading](size)
	if err != nil {
		return nil, fmt.Errorf("create lookup cache: %w", err)
	}
	return &CachedTransducer{next: next, cache: cache}, nil
}

// Lookup implements Transducer. Errors are not cached.
func (c *CachedTransducer) Lookup(input string) ([]Reading, error) {
	if readings, ok := c.cache.Get(input); ok {
		return readings, nil
	}
	readings, err := c.next.Lookup(input)
	if err != nil {
		return nil, err
	}
	c.cache.Add(input, readings)
	return readings, nil
}

// Len returns the number of cached inputs.
func (c *CachedTransducer) Len() int {
	return c.cache.Len()
}
