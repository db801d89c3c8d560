package grammar

import (
	"sync"

	"github.com/zeebo/xxh3"
)

// cache holds compiled rules keyed by the hash of their pattern. Rules are
// immutable, so a cached rule can be shared by every registry that asks for
// the same pattern.
var cache sync.Map // map[uint64]*Rule

// Cached returns the compiled rule for pattern, compiling it on first use.
// Patterns that fail to compile are not cached.
func Cached(pattern string) (*Rule, error) {
	key := xxh3.HashString(pattern)

	if v, ok := cache.Load(key); ok {
		if r := v.(*Rule); r.Pattern == pattern {
			return r, nil
		}

		// Hash collision: compile without caching.
		return Compile(pattern)
	}

	r, err := Compile(pattern)
	if err != nil {
		return nil, err
	}

	actual, _ := cache.LoadOrStore(key, r)

	return actual.(*Rule), nil
}
