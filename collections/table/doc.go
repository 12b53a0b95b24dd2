// Package table implements an open-addressing hash table stored in a single
// block from a tierkit allocator.
//
// # Layout
//
// The block is an array of fixed-size entries:
//
//	[occupied:1][key:kc.Size()][value:vc.Size()]
//
// Keys and values are encoded by codecs, and placed by a keys.Hasher.
//
// # Probing
//
// A key's home slot is Hash(k) mod Cap(). Lookups step forward one slot at a
// time, wrapping at the end, until they find the key or an unoccupied entry.
// There are no tombstones: Delete rebuilds the table at the same capacity so
// every remaining entry stays reachable from its home slot.
//
// # Growth
//
// Inserting a new key that would bring the load factor to 0.7 or above first
// rehashes into a block of twice the capacity. After any Set, Len()/Cap() is
// below 0.7.
//
// # Recycled Blocks
//
// Blocks may come from an allocator cache with stale contents. Every block a
// table acquires has all occupancy flags cleared before use.
//
// # Thread Safety
//
// A Table allocates through its alloc.Local and must stay on that Local's
// goroutine.
package table
