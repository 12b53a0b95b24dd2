package array

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/tierkit/alloc"
	"github.com/joshuapare/tierkit/codec"
)

func newLocal(t testing.TB) *alloc.Local {
	t.Helper()
	l := alloc.New(nil).NewLocal()
	t.Cleanup(l.Close)
	return l
}

// TestArray_ConcreteScenario appends 1..5 and checks growth from 4 to 8.
func TestArray_ConcreteScenario(t *testing.T) {
	a := New(newLocal(t), codec.Int64(), nil)
	defer a.Free()

	require.Equal(t, 4, a.Cap())
	for v := range int64(5) {
		a.Append(v + 1)
	}

	require.Equal(t, 8, a.Cap())
	require.Equal(t, 5, a.Len())
	got, err := a.Get(4)
	require.NoError(t, err)
	require.Equal(t, int64(5), got)
	require.Equal(t, "Array[1 2 3 4 5]", a.String())
}

// TestArray_GrowthPreservesOrder checks order and capacity across many doublings.
func TestArray_GrowthPreservesOrder(t *testing.T) {
	a := New(newLocal(t), codec.Int64(), nil)
	defer a.Free()

	for n := 1; n <= 300; n++ {
		a.Append(int64(n * 3))

		want := DefaultCapacity
		for want < n {
			want *= 2
		}
		require.Equal(t, want, a.Cap(), "capacity after %d appends", n)
	}

	for i := range 300 {
		v, err := a.Get(i)
		require.NoError(t, err)
		require.Equal(t, int64((i+1)*3), v, "index %d", i)
	}
}

func TestArray_InitialCapacity(t *testing.T) {
	a := New(newLocal(t), codec.Int32(), &Options[int32]{InitialCapacity: 3})
	defer a.Free()

	require.Equal(t, 3, a.Cap())
	for v := range int32(4) {
		a.Append(v)
	}
	require.Equal(t, 6, a.Cap())

	require.Panics(t, func() {
		New(newLocal(t), codec.Int32(), &Options[int32]{InitialCapacity: -1})
	})
}

func TestArray_IndexOutOfRange(t *testing.T) {
	a := New(newLocal(t), codec.Int64(), nil)
	defer a.Free()
	a.Append(10)

	testCases := []int{-1, 1, 4, 100}
	for _, i := range testCases {
		_, err := a.Get(i)
		require.ErrorIs(t, err, ErrIndexOutOfRange, "Get(%d)", i)
		require.ErrorIs(t, a.Set(i, 1), ErrIndexOutOfRange, "Set(%d)", i)
	}

	// State is untouched by failed operations.
	require.Equal(t, 1, a.Len())
	v, err := a.Get(0)
	require.NoError(t, err)
	require.Equal(t, int64(10), v)
}

func TestArray_Set(t *testing.T) {
	a := New(newLocal(t), codec.String(8), nil)
	defer a.Free()

	a.Append("one")
	a.Append("two")
	require.NoError(t, a.Set(1, "deux"))

	require.Equal(t, []string{"one", "deux"}, a.Values())
}

// TestArray_DropHook counts destructions: none on growth, one per Set,
// one per live element on Free.
func TestArray_DropHook(t *testing.T) {
	var dropped []int64
	a := New(newLocal(t), codec.Int64(), &Options[int64]{
		Drop: func(v int64) { dropped = append(dropped, v) },
	})

	for v := range int64(10) {
		a.Append(v)
	}
	assert.Empty(t, dropped, "growth must move elements, not destroy them")

	require.NoError(t, a.Set(3, 33))
	require.Equal(t, []int64{3}, dropped)

	dropped = nil
	a.Free()
	require.Equal(t, []int64{0, 1, 2, 33, 4, 5, 6, 7, 8, 9}, dropped)

	a.Free()
	require.Len(t, dropped, 10, "second Free must be a no-op")
}

func TestArray_UseAfterFree(t *testing.T) {
	a := New(newLocal(t), codec.Int64(), nil)
	a.Free()

	require.PanicsWithError(t, ErrFreed.Error(), func() { a.Append(1) })
	require.PanicsWithError(t, ErrFreed.Error(), func() { _, _ = a.Get(0) })
	require.PanicsWithError(t, ErrFreed.Error(), func() { _ = a.Len() })
	require.Equal(t, "Array(freed)", a.String())
}

// TestArray_RecycledBlock builds an array on a block that still carries
// bytes from its previous owner.
func TestArray_RecycledBlock(t *testing.T) {
	l := newLocal(t)

	dirty := l.Alloc(DefaultCapacity * 8)
	for i := range dirty.Bytes() {
		dirty.Bytes()[i] = 0xAB
	}
	require.NoError(t, l.Free(dirty))

	a := New(l, codec.Int64(), nil)
	defer a.Free()

	require.Equal(t, 0, a.Len())
	a.Append(7)
	require.Equal(t, []int64{7}, a.Values())
}

func TestArray_ReusesFreedStorage(t *testing.T) {
	l := newLocal(t)

	a := New(l, codec.Int64(), nil)
	for v := range int64(5) {
		a.Append(v)
	}
	a.Free()

	before := l.Stats()
	b := New(l, codec.Int64(), nil)
	defer b.Free()
	after := l.Stats()

	require.Equal(t, before.Hits+1, after.Hits, "4-slot block should come from the local cache")
}

func TestArray_All(t *testing.T) {
	a := New(newLocal(t), codec.Float64(), nil)
	defer a.Free()
	a.Append(0.5)
	a.Append(1.5)
	a.Append(2.5)

	var idx []int
	var vals []float64
	for i, v := range a.All() {
		idx = append(idx, i)
		vals = append(vals, v)
		if i == 1 {
			break
		}
	}
	require.Equal(t, []int{0, 1}, idx)
	require.Equal(t, []float64{0.5, 1.5}, vals)
}

func TestArray_LargeElementsUseGlobalTier(t *testing.T) {
	l := newLocal(t)
	a := New(l, codec.String(126), nil) // 128-byte slots, 512-byte block
	for range 8 {
		a.Append("x")
	}
	a.Free()

	st := l.Allocator().Stats()
	require.Positive(t, st.Global.Frees)
	require.Positive(t, st.Global.CachedBlocks)
}

// TestArray_SetEncodeFailure keeps the old element when the new one does not fit.
func TestArray_SetEncodeFailure(t *testing.T) {
	var dropped []string
	a := New(newLocal(t), codec.String(4), &Options[string]{
		Drop: func(v string) { dropped = append(dropped, v) },
	})
	a.Append("one")

	require.Panics(t, func() { _ = a.Set(0, "toolong") })
	require.Empty(t, dropped, "nothing is destroyed when encoding fails")
	v, err := a.Get(0)
	require.NoError(t, err)
	require.Equal(t, "one", v)

	a.Free()
	require.Equal(t, []string{"one"}, dropped)
}
