package alloc

// Source is the raw byte-allocation primitive the allocator draws fresh
// blocks from and hands evicted blocks back to.
//
// Alloc must return a zero-filled buffer of exactly size bytes, or panic
// with an error wrapping ErrOutOfMemory. Free receives only buffers that
// the same Source returned.
type Source interface {
	Alloc(size int) []byte
	Free(buf []byte)
}

// HeapSource allocates from the Go heap. Free is a no-op; the garbage
// collector reclaims buffers once the caches drop them.
type HeapSource struct{}

// Alloc implements Source.
func (HeapSource) Alloc(size int) []byte {
	return make([]byte, size)
}

// Free implements Source.
func (HeapSource) Free([]byte) {}

// DefaultMinMmap is the smallest request MmapSource maps directly.
const DefaultMinMmap = 4096
