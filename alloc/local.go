package alloc

import "fmt"

// Local is a worker's view of the allocator: its own unsynchronized cache
// for sizes up to Threshold, plus the shared global tier for larger sizes.
//
// A Local must be used from one goroutine at a time. Small-size operations
// never touch the global lock.
type Local struct {
	a      *Allocator
	cache  *sizeCache
	stats  tierCounters
	closed bool
}

// Allocator returns the allocator l belongs to.
func (l *Local) Allocator() *Allocator {
	return l.a
}

// Alloc returns a block of exactly size bytes. A block reused from a cache
// may contain stale bytes; a fresh one is zero-filled.
//
// Alloc panics with ErrNegativeSize for size < 0 and with an error wrapping
// ErrOutOfMemory when the source cannot supply memory.
func (l *Local) Alloc(size int) *Block {
	l.checkOpen()
	if size < 0 {
		panic(fmt.Errorf("%w: %d", ErrNegativeSize, size))
	}

	if size <= Threshold {
		if buf, ok := l.cache.pop(size); ok {
			l.stats.hits.Inc()
			l.stats.syncCached(l.cache)
			return newBlock(buf)
		}
		l.stats.misses.Inc()
		l.stats.freshBytes.Add(int64(size))
		return newBlock(l.a.fresh(size, TierLocal))
	}

	g := &l.a.global
	if buf, ok := g.pop(size); ok {
		return newBlock(buf)
	}
	g.stats.freshBytes.Add(int64(size))
	return newBlock(l.a.fresh(size, TierGlobal))
}

// Free hands b back to the cache for its size. The caller must not use b
// afterwards. Freeing a handle twice returns ErrReleased; a nil block is a no-op.
func (l *Local) Free(b *Block) error {
	l.checkOpen()
	if b == nil {
		return nil
	}
	buf, ok := b.take()
	if !ok {
		return ErrReleased
	}

	if len(buf) <= Threshold {
		l.cache.push(buf)
		l.stats.frees.Inc()
		l.stats.syncCached(l.cache)
		return nil
	}
	l.a.global.push(buf)
	return nil
}

// Cleanup clears this worker's cache and the global cache. Blocks owned by
// live containers are not affected. Intended for teardown.
func (l *Local) Cleanup() {
	l.checkOpen()
	l.drain()
	l.stats.cleanups.Inc()
	l.a.Cleanup()
}

// Close drains the local cache back to the source and detaches l from the
// allocator's statistics. Close is idempotent; any other use afterwards panics.
func (l *Local) Close() {
	if l.closed {
		return
	}
	l.drain()
	l.a.unregister(l)
	l.closed = true
	l.a.logger().Debug("local tier closed")
}

// Stats returns the counters of this worker's tier.
func (l *Local) Stats() TierStats {
	return l.stats.snapshot()
}

// Classes buckets this worker's cache by DefaultClasses.
func (l *Local) Classes() []ClassStats {
	return l.a.classes.histogram(l.cache)
}

func (l *Local) drain() {
	n := l.cache.blocks
	l.cache.drain(l.a.source.Free)
	l.stats.syncCached(l.cache)
	if n > 0 {
		l.a.logger().Debug("local cache cleared", "blocks", n)
	}
}

func (l *Local) checkOpen() {
	if l.closed {
		panic(ErrClosed)
	}
}
