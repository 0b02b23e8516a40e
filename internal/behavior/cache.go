package behavior

import (
	"fmt"
	"sync"

	"github.com/HEXmodular/Audio-Blocks-Playground-sub000/internal/graph"
)

// ErrNoBehavior reports a definition that carries no executable logic and
// has no native registration. The executor treats such instances as
// backend-managed and skips them before ever resolving a behavior, so
// seeing this error means a caller bypassed that check.
var ErrNoBehavior = fmt.Errorf("definition has no behavior")

type cacheEntry struct {
	sourceHash string
	fn         Func
}

// Cache resolves the compiled behavior for each instance exactly once and
// keeps it keyed by instance id. An entry is recompiled when the
// definition's logic source hash changes, and can be evicted individually
// (Evict) or in bulk (Clear).
//
// Thread-safety: all methods are safe for concurrent use, though the
// executor's cooperative scheduling means resolution is effectively
// single-threaded.
type Cache struct {
	mu       sync.Mutex
	registry *Registry
	compile  func(source string) (Func, error)
	entries  map[string]cacheEntry
	compiles int64
}

// NewCache creates a cache resolving against the given native registry.
// A nil registry is valid (every behavior comes from compiled sources).
func NewCache(registry *Registry) *Cache {
	return &Cache{
		registry: registry,
		compile:  CompileCUE,
		entries:  make(map[string]cacheEntry),
	}
}

// WithCompiler overrides the source compiler. Tests use this to count
// compilations or to stub compilation entirely.
func (c *Cache) WithCompiler(compile func(source string) (Func, error)) *Cache {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.compile = compile
	return c
}

// Resolve returns the behavior for an instance. Resolution order: the
// native registry by definition id, then the compiled-source cache by
// instance id. Returns ErrNoBehavior when the definition has neither.
func (c *Cache) Resolve(inst *graph.BlockInstance, def *graph.BlockDefinition) (Func, error) {
	if c.registry != nil {
		if fn, ok := c.registry.Lookup(def.ID); ok {
			return fn, nil
		}
	}
	if def.LogicSource == "" {
		return nil, ErrNoBehavior
	}

	hash := graph.SourceHash(def.LogicSource)

	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[inst.ID]; ok && entry.sourceHash == hash {
		return entry.fn, nil
	}

	fn, err := c.compile(def.LogicSource)
	if err != nil {
		return nil, fmt.Errorf("compile behavior for %s: %w", inst.ID, err)
	}
	c.entries[inst.ID] = cacheEntry{sourceHash: hash, fn: fn}
	c.compiles++
	return fn, nil
}

// Evict drops one instance's compiled entry. The next Resolve recompiles.
func (c *Cache) Evict(instanceID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, instanceID)
}

// Clear drops every compiled entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// Len returns the number of cached entries. Used for testing.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Compiles returns how many compilations the cache has performed.
// Used for testing cache correctness.
func (c *Cache) Compiles() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.compiles
}
