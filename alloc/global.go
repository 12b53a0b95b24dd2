package alloc

import "sync"

// globalTier caches blocks larger than Threshold for all workers.
// The mutex is held only around cache push, pop and clear.
type globalTier struct {
	mu    sync.Mutex
	cache *sizeCache
	stats tierCounters
}

func (g *globalTier) pop(size int) ([]byte, bool) {
	g.mu.Lock()
	buf, ok := g.cache.pop(size)
	if ok {
		g.stats.syncCached(g.cache)
	}
	g.mu.Unlock()

	if ok {
		g.stats.hits.Inc()
	} else {
		g.stats.misses.Inc()
	}
	return buf, ok
}

func (g *globalTier) push(buf []byte) {
	g.mu.Lock()
	g.cache.push(buf)
	g.stats.syncCached(g.cache)
	g.mu.Unlock()
	g.stats.frees.Inc()
}

// clear empties the cache and returns the evicted buffers.
func (g *globalTier) clear() [][]byte {
	g.mu.Lock()
	evicted := make([][]byte, 0, g.cache.blocks)
	g.cache.drain(func(buf []byte) {
		evicted = append(evicted, buf)
	})
	g.stats.syncCached(g.cache)
	g.mu.Unlock()
	g.stats.cleanups.Inc()
	return evicted
}

func (g *globalTier) histogram(t *classTable) []ClassStats {
	g.mu.Lock()
	defer g.mu.Unlock()
	return t.histogram(g.cache)
}
