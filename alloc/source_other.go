//go:build !linux && !darwin && !freebsd

package alloc

// MmapSource falls back to the Go heap on platforms without anonymous mmap.
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
	return s.heap.Alloc(size)
}

// Free implements Source.
func (s *MmapSource) Free(buf []byte) {
	s.heap.Free(buf)
}
