package inspector

import (
	"context"
	"strconv"
	"sync"
	"typeinspector/internal/core/ports"
	"typeinspector/internal/shared/observability"

	"golang.org/x/sync/singleflight"
)

// ResolveFunc computes a result on a cache miss.
type ResolveFunc func(ctx context.Context, buffer ports.BufferID, offset int) TypeQueryResult

// Cache memoizes results per buffer position. Concurrent misses of one key
// share a single resolution.
type Cache struct {
	resolve ResolveFunc
	group   singleflight.Group

	mu     sync.Mutex
	store  resultStore
	gens   map[ports.BufferID]uint64
	epoch  uint64
	closed bool
}

// NewCache creates an empty cache. capacity <= 0 keeps every entry.
func NewCache(resolve ResolveFunc, capacity int) *Cache {
	var store resultStore = make(mapStore)
	if capacity > 0 {
		store = newLRUStore(capacity)
	}
	return &Cache{
		resolve: resolve,
		store:   store,
		gens:    make(map[ports.BufferID]uint64),
	}
}

// GetOrCompute returns the cached result for key, resolving it on the
// calling goroutine on a miss.
func (c *Cache) GetOrCompute(ctx context.Context, key BufferPositionKey) TypeQueryResult {
	c.mu.Lock()
	if v, ok := c.store.get(key); ok {
		c.mu.Unlock()
		observability.CacheHitsTotal.Inc()
		return v
	}
	gen, epoch := c.gens[key.Buffer], c.epoch
	c.mu.Unlock()
	observability.CacheMissesTotal.Inc()

	// A flight only serves callers that observed the same buffer generation;
	// a miss after invalidation never joins a resolution of the old text.
	v, _, _ := c.group.Do(flightKey(key, gen, epoch), func() (any, error) {
		if v, ok := c.Get(key); ok {
			return v, nil
		}

		result := c.resolve(ctx, key.Buffer, key.Offset)
		c.put(key, result, gen, epoch)
		return result, nil
	})
	return v.(TypeQueryResult)
}

func (c *Cache) Get(key BufferPositionKey) (TypeQueryResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.get(key)
}

// put stores result unless the buffer was invalidated or the cache cleared
// since the resolution started.
func (c *Cache) put(key BufferPositionKey, result TypeQueryResult, gen, epoch uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.gens[key.Buffer] != gen || c.epoch != epoch {
		return
	}
	before := c.store.len()
	if c.store.put(key, result) {
		observability.CacheEvictionsTotal.Inc()
	}
	observability.CacheEntries.Add(float64(c.store.len() - before))
}

// InvalidateBuffer drops every entry of buffer and returns how many went.
func (c *Cache) InvalidateBuffer(buffer ports.BufferID) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[buffer]++
	dropped := 0
	for _, key := range c.store.keys() {
		if key.Buffer == buffer && c.store.remove(key) {
			dropped++
		}
	}
	observability.CacheInvalidationsTotal.Add(float64(dropped))
	observability.CacheEntries.Sub(float64(dropped))
	return dropped
}

func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearLocked()
}

func (c *Cache) clearLocked() {
	observability.CacheEntries.Sub(float64(c.store.len()))
	c.store.clear()
	c.epoch++
}

// close drops the table; later resolutions are returned but not stored.
func (c *Cache) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.clearLocked()
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.len()
}

func flightKey(key BufferPositionKey, gen, epoch uint64) string {
	return string(key.Buffer) + "\x00" + strconv.Itoa(key.Offset) +
		"\x00" + strconv.FormatUint(gen, 10) + "\x00" + strconv.FormatUint(epoch, 10)
}
