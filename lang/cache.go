package lang

import (
	"sync"
	"sync/atomic"

	"github.com/zeebo/xxh3"
)

// maxCacheEntries bounds the parse cache; it is cleared when full.
const maxCacheEntries = 4096

var (
	// parseCache maps the xxh3 hash of a source text to its syntax tree.
	parseCache sync.Map
	cacheLen   atomic.Int64
)

type cached struct {
	src  string
	node *Node
}

// parseCached parses src, reusing the tree of an identical earlier source.
// Stored bodies are resolved on every reference, so they are parsed once.
func parseCached(src string) (*Node, error) {
	h := xxh3.HashString(src)

	if v, ok := parseCache.Load(h); ok {
		if c := v.(cached); c.src == src {
			return c.node, nil
		}

		return Parse(src) // hash collision
	}

	n, err := Parse(src)
	if err != nil {
		return nil, err
	}

	if cacheLen.Load() >= maxCacheEntries {
		ClearCache()
	}

	if _, loaded := parseCache.LoadOrStore(h, cached{src: src, node: n}); !loaded {
		cacheLen.Add(1)
	}

	return n, nil
}

// ClearCache discards all cached syntax trees.
func ClearCache() {
	parseCache.Clear()
	cacheLen.Store(0)
}
