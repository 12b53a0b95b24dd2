package keys

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInt64_Consistency(t *testing.T) {
	h := Int64()
	require.Equal(t, h.Hash(42), h.Hash(42))
	require.NotEqual(t, h.Hash(1), h.Hash(2))
	require.True(t, h.Equal(-7, -7))
	require.False(t, h.Equal(7, -7))
}

func TestUint64_Consistency(t *testing.T) {
	h := Uint64()
	require.Equal(t, h.Hash(math.MaxUint64), h.Hash(math.MaxUint64))
	require.True(t, h.Equal(3, 3))
}

func TestFloat64_SignedZero(t *testing.T) {
	h := Float64()
	negZero := math.Copysign(0, -1)
	require.True(t, h.Equal(0, negZero))
	require.Equal(t, h.Hash(0), h.Hash(negZero))
}

func TestFloat64_NaNNeverEqual(t *testing.T) {
	h := Float64()
	nan := math.NaN()
	require.False(t, h.Equal(nan, nan))
}

func TestString(t *testing.T) {
	h := String()
	require.Equal(t, h.Hash("alpha"), h.Hash("alpha"))
	require.NotEqual(t, h.Hash("alpha"), h.Hash("Alpha"))
	require.False(t, h.Equal("alpha", "Alpha"))
}

func TestFoldedString_CaseInsensitive(t *testing.T) {
	h := FoldedString()
	testCases := []string{"services", "SERVICES", "Services", "sErViCeS"}
	for _, k := range testCases {
		require.True(t, h.Equal("Services", k), k)
		require.Equal(t, h.Hash("Services"), h.Hash(k), k)
	}
	require.True(t, h.Equal("ÉCOLE", "école"))
	require.Equal(t, h.Hash("ÉCOLE"), h.Hash("école"))
	require.False(t, h.Equal("services", "service"))
}

func TestFunc(t *testing.T) {
	calls := 0
	h := Func(func(k int) uint64 {
		calls++
		return uint64(k % 3)
	}, func(a, b int) bool { return a == b })

	require.Equal(t, uint64(1), h.Hash(4))
	require.True(t, h.Equal(4, 4))
	require.Equal(t, 1, calls)
}
