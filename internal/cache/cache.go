// Package cache provides the bounded, key-addressed store the collection
// keeps decoded objects in. Implementations are safe for concurrent use.
package cache

import (
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

var ErrInvalidPolicy = errors.New("invalid cache policy")

// DefaultSize is the capacity used when none is configured
const DefaultSize = 1000

// Cache is a bounded key-value store
type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Add(key K, value V)
	Len() int
	Purge()
}

// Policy names an eviction policy
type Policy string

const (
	PolicyLRU Policy = "lru" // least recently used
	Policy2Q  Policy = "2q"  // two-queue, resists scans of one-off keys
)

// ParsePolicy converts a string to a Policy, defaulting to PolicyLRU for
// the empty string
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicyLRU:
		return PolicyLRU, nil
	case Policy2Q:
		return Policy2Q, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPolicy, s)
	}
}

// New creates a cache with the given policy. size <= 0 uses DefaultSize.
func New[K comparable, V any](policy Policy, size int) (Cache[K, V], error) {
	if size <= 0 {
		size = DefaultSize
	}

	switch policy {
	case "", PolicyLRU:
		c, err := lru.New[K, V](size)
		if err != nil {
			return nil, fmt.Errorf("create lru cache: %w", err)
		}
		return &lruCache[K, V]{c: c}, nil
	case Policy2Q:
		c, err := lru.New2Q[K, V](size)
		if err != nil {
			return nil, fmt.Errorf("create 2q cache: %w", err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidPolicy, policy)
	}
}

// lruCache drops the eviction result of lru.Cache.Add
type lruCache[K comparable, V any] struct {
	c *lru.Cache[K, V]
}

func (l *lruCache[K, V]) Get(key K) (V, bool) { return l.c.Get(key) }
func (l *lruCache[K, V]) Add(key K, value V)  { l.c.Add(key, value) }
func (l *lruCache[K, V]) Len() int            { return l.c.Len() }
func (l *lruCache[K, V]) Purge()              { l.c.Purge() }
