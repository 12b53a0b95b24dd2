//go:build linux || darwin || freebsd

package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMmapSource_AllocFree(t *testing.T) {
	src := NewMmapSource(0)
	require.Equal(t, DefaultMinMmap, src.MinSize)

	mapped := src.Alloc(3 * DefaultMinMmap)
	require.Len(t, mapped, 3*DefaultMinMmap)
	require.Equal(t, make([]byte, len(mapped)), mapped)
	mapped[len(mapped)-1] = 1
	src.Free(mapped)

	small := src.Alloc(100)
	require.Len(t, small, 100)
	src.Free(small)
}

func TestMmapSource_WithAllocator(t *testing.T) {
	a := New(&Config{Source: NewMmapSource(Threshold + 1)})
	l := a.NewLocal()
	defer l.Close()

	b := l.Alloc(8192)
	copy(b.Bytes(), "mapped")
	require.NoError(t, l.Free(b))

	again := l.Alloc(8192)
	require.Equal(t, "mapped", string(again.Bytes()[:6]))
	require.NoError(t, l.Free(again))

	l.Cleanup()
	require.Zero(t, a.Stats().Global.CachedBlocks)
}
