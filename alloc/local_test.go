package alloc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func newTestLocal(t testing.TB) (*Allocator, *Local) {
	t.Helper()
	a := New(nil)
	l := a.NewLocal()
	t.Cleanup(l.Close)
	return a, l
}

// TestLocal_ReuseSameSize checks that a freed block is handed back to the
// next request of the identical size, most recent first.
func TestLocal_ReuseSameSize(t *testing.T) {
	testCases := []struct {
		name string
		size int
	}{
		{"local tier", 64},
		{"threshold", Threshold},
		{"global tier", Threshold + 1},
		{"page", 4096},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, l := newTestLocal(t)

			first := l.Alloc(tc.size)
			second := l.Alloc(tc.size)
			firstBuf := first.Bytes()
			secondBuf := second.Bytes()
			require.NoError(t, l.Free(first))
			require.NoError(t, l.Free(second))

			got := l.Alloc(tc.size)
			require.Equal(t, tc.size, got.Size())
			assert.Same(t, &secondBuf[0], &got.Bytes()[0], "LIFO: last freed comes back first")

			got2 := l.Alloc(tc.size)
			assert.Same(t, &firstBuf[0], &got2.Bytes()[0])
		})
	}
}

func TestLocal_SizesAreExact(t *testing.T) {
	_, l := newTestLocal(t)

	b := l.Alloc(40)
	require.NoError(t, l.Free(b))

	other := l.Alloc(48)
	require.Equal(t, 48, other.Size())
	require.Equal(t, int64(0), l.Stats().Hits, "a 40-byte block must not serve a 48-byte request")
}

func TestLocal_FreshBlocksAreZeroed(t *testing.T) {
	_, l := newTestLocal(t)

	for _, size := range []int{1, 100, Threshold, 1000} {
		b := l.Alloc(size)
		require.Len(t, b.Bytes(), size)
		require.Equal(t, make([]byte, size), b.Bytes())
	}
}

func TestLocal_ReusedBlockKeepsContents(t *testing.T) {
	_, l := newTestLocal(t)

	b := l.Alloc(16)
	copy(b.Bytes(), "stale")
	require.NoError(t, l.Free(b))

	again := l.Alloc(16)
	require.Equal(t, "stale", string(again.Bytes()[:5]))
}

func TestLocal_ZeroSize(t *testing.T) {
	_, l := newTestLocal(t)

	b := l.Alloc(0)
	require.Equal(t, 0, b.Size())
	require.NoError(t, l.Free(b))
}

func TestLocal_NegativeSizePanics(t *testing.T) {
	_, l := newTestLocal(t)

	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok)
		require.ErrorIs(t, err, ErrNegativeSize)
	}()
	l.Alloc(-1)
}

func TestLocal_DoubleFree(t *testing.T) {
	_, l := newTestLocal(t)

	b := l.Alloc(32)
	require.NoError(t, l.Free(b))
	require.True(t, b.Released())
	require.ErrorIs(t, l.Free(b), ErrReleased)

	_, err := b.Copy()
	require.ErrorIs(t, err, ErrReleased)
	require.PanicsWithError(t, ErrReleased.Error(), func() { b.Bytes() })

	require.Equal(t, int64(1), l.Stats().Frees, "the second Free must not cache the buffer again")
	require.NoError(t, l.Free(nil))
}

// TestLocal_SmallPathNeverLocks holds the global lock while another goroutine
// allocates and frees small blocks.
func TestLocal_SmallPathNeverLocks(t *testing.T) {
	a := New(nil)

	a.global.mu.Lock()
	done := make(chan struct{})
	go func() {
		defer close(done)
		l := a.NewLocal()
		defer l.Close()
		for size := 1; size <= Threshold; size++ {
			b := l.Alloc(size)
			if err := l.Free(b); err != nil {
				panic(err)
			}
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		a.global.mu.Unlock()
		t.Fatal("small allocations blocked on the global lock")
	}
	a.global.mu.Unlock()
}

func TestLocal_Routing(t *testing.T) {
	a, l := newTestLocal(t)

	small := l.Alloc(Threshold)
	large := l.Alloc(Threshold + 1)
	require.NoError(t, l.Free(small))
	require.NoError(t, l.Free(large))

	require.Equal(t, int64(1), l.Stats().CachedBlocks)
	require.Equal(t, int64(Threshold), l.Stats().CachedBytes)

	st := a.Stats()
	require.Equal(t, int64(1), st.Global.CachedBlocks)
	require.Equal(t, int64(Threshold+1), st.Global.CachedBytes)
	require.Equal(t, int64(1), st.Global.Misses)
}

// TestLocal_SharedGlobalTier frees a large block on one Local and allocates
// it on another.
func TestLocal_SharedGlobalTier(t *testing.T) {
	a := New(nil)
	l1 := a.NewLocal()
	defer l1.Close()
	l2 := a.NewLocal()
	defer l2.Close()

	b := l1.Alloc(1024)
	buf := b.Bytes()
	require.NoError(t, l1.Free(b))

	got := l2.Alloc(1024)
	require.Same(t, &buf[0], &got.Bytes()[0])
	require.Equal(t, int64(1), a.Stats().Global.Hits)
}

func TestLocal_Cleanup(t *testing.T) {
	a, l := newTestLocal(t)

	require.NoError(t, l.Free(l.Alloc(16)))
	require.NoError(t, l.Free(l.Alloc(2048)))

	l.Cleanup()

	require.Zero(t, l.Stats().CachedBlocks)
	st := a.Stats()
	require.Zero(t, st.Global.CachedBlocks)
	require.Zero(t, st.Global.CachedBytes)
	require.Equal(t, int64(1), l.Stats().Cleanups)
	require.Equal(t, int64(1), st.Global.Cleanups)

	// Caches start empty again: next requests miss.
	l.Alloc(16)
	l.Alloc(2048)
	require.Equal(t, int64(0), l.Stats().Hits)
	require.Equal(t, int64(0), a.Stats().Global.Hits)
}

func TestLocal_CleanupKeepsLiveBlocks(t *testing.T) {
	_, l := newTestLocal(t)

	live := l.Alloc(64)
	copy(live.Bytes(), "owned")
	l.Cleanup()

	require.False(t, live.Released())
	require.Equal(t, "owned", string(live.Bytes()[:5]))
	require.NoError(t, l.Free(live))
}

func TestLocal_Close(t *testing.T) {
	a := New(nil)
	l := a.NewLocal()

	require.NoError(t, l.Free(l.Alloc(8)))
	require.Equal(t, 1, a.Stats().Locals)

	l.Close()
	l.Close()

	st := a.Stats()
	require.Equal(t, 0, st.Locals)
	require.Equal(t, int64(1), st.Local.Misses, "closed locals keep contributing their totals")
	require.Equal(t, int64(1), st.Local.Frees)
	require.Zero(t, st.Local.CachedBlocks)

	require.PanicsWithError(t, ErrClosed.Error(), func() { l.Alloc(8) })
}

func TestLocal_Context(t *testing.T) {
	_, l := newTestLocal(t)

	_, ok := LocalFrom(context.Background())
	require.False(t, ok)

	ctx := WithLocal(context.Background(), l)
	got, ok := LocalFrom(ctx)
	require.True(t, ok)
	require.Same(t, l, got)
}

// TestAllocator_ConcurrentWorkers runs workers with their own Locals against
// the shared global tier.
func TestAllocator_ConcurrentWorkers(t *testing.T) {
	a := New(nil)

	const workers = 8
	g, ctx := errgroup.WithContext(context.Background())
	for w := range workers {
		g.Go(func() error {
			l := a.NewLocal()
			defer l.Close()
			ctx := WithLocal(ctx, l)

			for i := range 500 {
				size := 16 + (i*37+w)%2000
				lt, _ := LocalFrom(ctx)
				b := lt.Alloc(size)
				b.Bytes()[0] = byte(w)
				if err := lt.Free(b); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	st := a.Stats()
	require.Equal(t, 0, st.Locals)
	total := st.Local.Hits + st.Local.Misses + st.Global.Hits + st.Global.Misses
	require.Equal(t, int64(workers*500), total)
	require.Equal(t, st.Global.Hits+st.Global.Misses, st.Global.Frees)
}
