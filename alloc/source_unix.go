//go:build linux || darwin || freebsd

package alloc

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// MmapSource maps requests of at least MinSize bytes as anonymous private
// memory and serves smaller ones from the heap. Mapped memory lives outside
// the Go heap, so Cleanup returns it to the OS.
type MmapSource struct {
	MinSize int
	heap    HeapSource
}

// NewMmapSource returns an MmapSource. minSize <= 0 selects DefaultMinMmap.
func NewMmapSource(minSize int) *MmapSource {
	if minSize <= 0 {
		minSize = DefaultMinMmap
	}
	return &MmapSource{MinSize: minSize}
}

// Alloc implements Source.
func (s *MmapSource) Alloc(size int) []byte {
	if size < s.MinSize {
		return s.heap.Alloc(size)
	}
	buf, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		panic(fmt.Errorf("%w: mmap %d bytes: %v", ErrOutOfMemory, size, err))
	}
	return buf
}

// Free implements Source.
func (s *MmapSource) Free(buf []byte) {
	if len(buf) < s.MinSize {
		return
	}
	// munmap fails only for buffers this source never mapped.
	_ = unix.Munmap(buf)
}
