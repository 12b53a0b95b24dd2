// Package alloc provides a two-tier size-class block allocator.
//
// # Overview
//
// Blocks are exact-size byte buffers. Released blocks are cached by size and
// handed out again, most recently released first, to later requests of the
// identical size. Only a cache miss reaches the underlying Source.
//
// # Tiers
//
//   - Local tier: one unsynchronized cache per worker (a Local), used for
//     sizes <= Threshold (256 bytes). Never takes a lock.
//   - Global tier: one cache shared by all workers behind a single mutex,
//     used for sizes > Threshold. The lock is held only for the cache
//     push/pop, never while the source allocates.
//
// # Usage Example
//
//	a := alloc.New(nil)
//	l := a.NewLocal()
//	defer l.Close()
//
//	b := l.Alloc(64) // local tier
//	copy(b.Bytes(), payload)
//	if err := l.Free(b); err != nil {
//	    return err // ErrReleased: b was already freed
//	}
//
//	big := l.Alloc(4096) // global tier
//	_ = l.Free(big)
//
//	// Teardown, after all containers are gone
//	l.Cleanup()
//
// # Block Contents
//
// Fresh blocks are zero-filled. Reused blocks are not: they hold whatever the
// previous owner wrote. Consumers must track which bytes are initialized.
//
// # Sources
//
// HeapSource (default) allocates with make. MmapSource maps large requests as
// anonymous memory on unix platforms so that Cleanup returns them to the OS.
// A source that cannot allocate panics with ErrOutOfMemory; the allocator
// treats this as fatal and does not retry.
//
// # Thread Safety
//
// Allocator is safe for concurrent use. A Local belongs to one goroutine;
// carry it with WithLocal / LocalFrom rather than sharing it. Cleanup is a
// teardown operation and must not race with containers still in use.
//
// # Debug Logging
//
// Set TIERKIT_LOG_ALLOC=1 to log every cache miss at debug level.
package alloc
