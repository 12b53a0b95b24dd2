package alloc

import "go.uber.org/atomic"

// Tier identifies which cache serves a block size.
type Tier uint8

const (
	// TierLocal is the per-worker, unsynchronized cache for sizes <= Threshold.
	TierLocal Tier = iota + 1
	// TierGlobal is the shared, mutex-guarded cache for sizes > Threshold.
	TierGlobal
)

func (t Tier) String() string {
	switch t {
	case TierLocal:
		return "local"
	case TierGlobal:
		return "global"
	default:
		return "unknown"
	}
}

// tierCounters are updated by the owning tier and read lock-free by Stats.
type tierCounters struct {
	hits         atomic.Int64
	misses       atomic.Int64
	frees        atomic.Int64
	cleanups     atomic.Int64
	freshBytes   atomic.Int64
	cachedBlocks atomic.Int64
	cachedBytes  atomic.Int64
}

// syncCached publishes the cache occupancy.
func (c *tierCounters) syncCached(cache *sizeCache) {
	c.cachedBlocks.Store(int64(cache.blocks))
	c.cachedBytes.Store(cache.bytes)
}

func (c *tierCounters) snapshot() TierStats {
	return TierStats{
		Hits:         c.hits.Load(),
		Misses:       c.misses.Load(),
		Frees:        c.frees.Load(),
		Cleanups:     c.cleanups.Load(),
		FreshBytes:   c.freshBytes.Load(),
		CachedBlocks: c.cachedBlocks.Load(),
		CachedBytes:  c.cachedBytes.Load(),
	}
}

// retire folds the cumulative counters of a closed Local into c.
func (c *tierCounters) retire(from *tierCounters) {
	c.hits.Add(from.hits.Load())
	c.misses.Add(from.misses.Load())
	c.frees.Add(from.frees.Load())
	c.cleanups.Add(from.cleanups.Load())
	c.freshBytes.Add(from.freshBytes.Load())
}

// TierStats is a point-in-time view of one tier.
type TierStats struct {
	Hits         int64 `json:"hits"`          // allocations served from the cache
	Misses       int64 `json:"misses"`        // allocations served by the source
	Frees        int64 `json:"frees"`         // blocks returned to the cache
	Cleanups     int64 `json:"cleanups"`      // cache clears
	FreshBytes   int64 `json:"fresh_bytes"`   // bytes drawn from the source
	CachedBlocks int64 `json:"cached_blocks"` // blocks currently cached
	CachedBytes  int64 `json:"cached_bytes"`  // bytes currently cached
}

// HitRate returns hits / (hits + misses), or 0 before any allocation.
func (s TierStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

func (s TierStats) add(o TierStats) TierStats {
	s.Hits += o.Hits
	s.Misses += o.Misses
	s.Frees += o.Frees
	s.Cleanups += o.Cleanups
	s.FreshBytes += o.FreshBytes
	s.CachedBlocks += o.CachedBlocks
	s.CachedBytes += o.CachedBytes
	return s
}

// Stats is a snapshot of the whole allocator.
type Stats struct {
	Local  TierStats `json:"local"`  // summed over open and closed locals
	Global TierStats `json:"global"`
	Locals int       `json:"locals"` // open Local handles

	// Classes buckets the global cache by DefaultClasses.
	Classes []ClassStats `json:"classes,omitempty"`
}
