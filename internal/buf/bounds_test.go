package buf

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddOverflowSafe(t *testing.T) {
	sum, ok := AddOverflowSafe(10, 5)
	require.True(t, ok)
	require.Equal(t, 15, sum)

	_, ok = AddOverflowSafe(math.MaxInt, 1)
	require.False(t, ok, "adding to MaxInt must overflow")
	_, ok = AddOverflowSafe(math.MinInt, -1)
	require.False(t, ok, "subtracting from MinInt must underflow")
}

func TestMulOverflowSafe(t *testing.T) {
	n, ok := MulOverflowSafe(8, 17)
	require.True(t, ok)
	require.Equal(t, 136, n)

	n, ok = MulOverflowSafe(0, math.MaxInt)
	require.True(t, ok)
	require.Zero(t, n)

	_, ok = MulOverflowSafe(math.MaxInt/2, 3)
	require.False(t, ok)
	_, ok = MulOverflowSafe(-1, 3)
	require.False(t, ok)
}

func TestBlockSize_PanicsOnOverflow(t *testing.T) {
	require.Equal(t, 64, BlockSize(8, 8))
	require.Panics(t, func() { BlockSize(math.MaxInt, 2) })
}

func TestSlotRange(t *testing.T) {
	off, end, err := SlotRange(40, 2, 10)
	require.NoError(t, err)
	require.Equal(t, 20, off)
	require.Equal(t, 30, end)

	_, _, err = SlotRange(40, 4, 10)
	require.ErrorContains(t, err, "bounds")
	_, _, err = SlotRange(40, -1, 10)
	require.ErrorContains(t, err, "negative")
	_, _, err = SlotRange(40, 0, 0)
	require.ErrorContains(t, err, "slot size")
	_, _, err = SlotRange(40, math.MaxInt, 2)
	require.ErrorContains(t, err, "overflow")
}

func TestSlot_CapsCapacity(t *testing.T) {
	data := []byte{0, 1, 2, 3, 4, 5}
	s := Slot(data, 1, 2)
	require.Equal(t, []byte{2, 3}, s)
	require.Equal(t, 2, cap(s), "a slot must not be able to grow into its neighbour")
	require.Panics(t, func() { Slot(data, 3, 2) })
}

func TestSlice(t *testing.T) {
	data := []byte{0, 1, 2, 3, 4}
	got, ok := Slice(data, 1, 3)
	require.True(t, ok)
	require.Equal(t, []byte{1, 2, 3}, got)

	_, ok = Slice(data, 4, 2)
	require.False(t, ok)
	_, ok = Slice(data, -1, 1)
	require.False(t, ok)
	_, ok = Slice(data, 1, -1)
	require.False(t, ok)
}
