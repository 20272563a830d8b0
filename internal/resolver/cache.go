package resolver

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	language "github.com/hanpama/scalarlink/internal/language"
	"github.com/hanpama/scalarlink/internal/scalarpath"
)

// cacheKey identifies resolved paths: a document, and the operation of it
// that runs. A nil op stands for every operation of the document.
type cacheKey struct {
	doc *language.QueryDocument
	op  *language.OperationDefinition
}

func (k cacheKey) String() string { return fmt.Sprintf("%p/%p", k.doc, k.op) }

type pathCache interface {
	get(k cacheKey) ([]scalarpath.ResolvedPath, bool)
	add(k cacheKey, paths []scalarpath.ResolvedPath)
	len() int
}

// mapCache never evicts. It suits documents parsed once at startup.
type mapCache struct {
	mu sync.RWMutex
	m  map[cacheKey][]scalarpath.ResolvedPath
}

func newMapCache() *mapCache {
	return &mapCache{m: make(map[cacheKey][]scalarpath.ResolvedPath)}
}

func (c *mapCache) get(k cacheKey) ([]scalarpath.ResolvedPath, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.m[k]
	return p, ok
}

func (c *mapCache) add(k cacheKey, paths []scalarpath.ResolvedPath) {
	c.mu.Lock()
	c.m[k] = paths
	c.mu.Unlock()
}

func (c *mapCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}

type lruCache struct {
	c *lru.Cache[cacheKey, []scalarpath.ResolvedPath]
}

func newLRUCache(size int) *lruCache {
	c, err := lru.New[cacheKey, []scalarpath.ResolvedPath](size)
	if err != nil {
		// only returned for size <= 0, which New rules out
		panic(err)
	}
	return &lruCache{c: c}
}

func (c *lruCache) get(k cacheKey) ([]scalarpath.ResolvedPath, bool) {
	return c.c.Get(k)
}

func (c *lruCache) add(k cacheKey, paths []scalarpath.ResolvedPath) {
	c.c.Add(k, paths)
}

func (c *lruCache) len() int { return c.c.Len() }
